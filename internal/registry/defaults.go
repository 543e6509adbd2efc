package registry

import "github.com/zinincorp/taskpool/internal/domain"

// seedDefaults installs the built-in worker roster and keyword vocabulary.
// The roster mirrors the fixed set of specialized workers the pool
// coordinates; ranks define the deterministic tie-break order among equally
// scored workers.
func (r *Registry) seedDefaults() {
	defaults := []*domain.Worker{
		{
			Key:  "manager",
			Name: "Operations Manager",
			Rank: 1,
			Tags: []string{
				"strategy", "delegation", "coordination", "review",
				"report", "planning", "escalation",
			},
		},
		{
			Key:  "accountant",
			Name: "Accountant",
			Rank: 2,
			Tags: []string{
				"finance", "budget", "revenue", "portfolio", "crypto",
				"banking", "billing", "costs", "forex", "transactions",
			},
		},
		{
			Key:  "automator",
			Name: "Infrastructure Automator",
			Rank: 3,
			Tags: []string{
				"architecture", "infrastructure", "mcp", "code", "api",
				"health", "deployment", "testing", "audit", "security",
				"devops", "monitoring",
			},
		},
		{
			Key:  "smm",
			Name: "Social Media Manager",
			Rank: 4,
			Tags: []string{
				"content", "linkedin", "threads", "post", "podcast",
				"social", "copywriting", "seo", "brand",
			},
		},
		{
			Key:  "designer",
			Name: "Designer",
			Rank: 5,
			Tags: []string{
				"design", "visual", "image", "infographic", "chart",
				"video", "branding", "ui", "ux",
			},
		},
		{
			Key:  "cpo",
			Name: "Chief Product Officer",
			Rank: 6,
			Tags: []string{
				"product", "backlog", "sprint", "feature", "roadmap",
				"metrics", "analytics", "kpi",
			},
		},
	}

	for _, w := range defaults {
		r.workers[w.Key] = w
	}

	// Keyword vocabulary: words whose presence in task text implies a tag.
	// Every competency tag is also its own keyword.
	r.vocab = map[string][]string{
		"finance":        {"finance", "budget", "p&l", "balance", "revenue", "income", "expense"},
		"revenue":        {"revenue", "mrr", "subscription", "monetization"},
		"crypto":         {"crypto", "bitcoin", "btc", "eth", "portfolio", "defi", "token"},
		"content":        {"content", "post", "article", "publication", "copywriting"},
		"linkedin":       {"linkedin"},
		"threads":        {"threads"},
		"podcast":        {"podcast", "audio"},
		"design":         {"design", "visual", "image", "infographic", "banner"},
		"infrastructure": {"infrastructure", "deploy", "docker", "server"},
		"mcp":            {"mcp"},
		"api":            {"api", "integration", "webhook", "endpoint"},
		"code":           {"code", "refactor", "bug", "fix", "test"},
		"architecture":   {"architecture", "system"},
		"product":        {"product", "feature", "backlog", "roadmap", "sprint"},
		"strategy":       {"strategy", "plan", "vision"},
		"social":         {"smm", "social"},
		"brand":          {"brand", "branding"},
		"seo":            {"seo", "optimization", "meta"},
		"audit":          {"audit", "review"},
		"monitoring":     {"monitoring", "alert", "health"},
		"metrics":        {"metrics", "analytics", "kpi"},
		"report":         {"report", "summary"},
		"testing":        {"testing", "qa"},
		"security":       {"security", "vulnerability"},
		"video":          {"video"},
		"budget":         {"budget"},
		"billing":        {"billing", "invoice"},
	}
}
