package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zinincorp/taskpool/internal/domain"
)

// formatTask renders a full task card for show-style commands.
func formatTask(t *domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", t.ID, t.Title)
	status := string(t.Status)
	if t.Superseded {
		status += " (superseded)"
	}
	fmt.Fprintf(&b, "  status:    %s\n", status)
	fmt.Fprintf(&b, "  priority:  %d\n", t.Priority)
	if t.Description != "" {
		fmt.Fprintf(&b, "  details:   %s\n", t.Description)
	}
	if t.Assignee != "" {
		fmt.Fprintf(&b, "  assignee:  %s (by %s, confidence %.2f)\n", t.Assignee, t.AssignedBy, t.Confidence)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "  tags:      %s\n", strings.Join(t.Tags, ", "))
	}
	if len(t.BlockedBy) > 0 {
		fmt.Fprintf(&b, "  blocked by: %s\n", strings.Join(t.BlockedBy, ", "))
	}
	if t.BlockReason != "" {
		fmt.Fprintf(&b, "  reason:    %s\n", t.BlockReason)
	}
	if len(t.Blocks) > 0 {
		fmt.Fprintf(&b, "  blocks:    %s\n", strings.Join(t.Blocks, ", "))
	}
	if t.Result != "" {
		fmt.Fprintf(&b, "  result:    %s\n", t.Result)
	}
	fmt.Fprintf(&b, "  created:   %s\n", t.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "  updated:   %s\n", t.UpdatedAt.Format("2006-01-02 15:04"))
	return b.String()
}

// formatTaskLine renders a one-line listing entry.
func formatTaskLine(t *domain.Task) string {
	assignee := t.Assignee
	if assignee == "" {
		assignee = "-"
	}
	status := string(t.Status)
	if t.Superseded {
		status = "SUPERSEDED"
	}
	return fmt.Sprintf("%s  %-12s p%d  %-12s %s", t.ID, status, t.Priority, assignee, t.Title)
}

// formatSummary renders the status counts, stable order.
func formatSummary(summary map[string]int) string {
	keys := make([]string, 0, len(summary))
	for k := range summary {
		if k != "total" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Task pool summary\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  %-12s %d\n", k, summary[k])
	}
	fmt.Fprintf(&b, "  %-12s %d\n", "total", summary["total"])
	return b.String()
}
