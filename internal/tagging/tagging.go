// Package tagging derives competency tags from free task text.
//
// Extraction is a pure function of the text and the registry vocabulary:
// the same text against the same vocabulary always yields the same tag set,
// and extraction has no side effects. The vocabulary itself is data owned by
// the competency registry, so it can be reloaded without touching this code.
package tagging

import (
	"sort"
	"strings"
)

// Extract returns the competency tags implied by text.
//
// Every vocabulary keyword is matched case-insensitively as a substring of
// the text; each keyword found contributes its tag to the result (union, not
// first-match). The result is sorted and de-duplicated; it may be empty.
func Extract(text string, vocabulary map[string][]string) []string {
	if text == "" || len(vocabulary) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	found := make(map[string]struct{})
	for tag, keywords := range vocabulary {
		for _, kw := range keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(kw)) {
				found[tag] = struct{}{}
				break
			}
		}
	}
	if len(found) == 0 {
		return nil
	}

	tags := make([]string, 0, len(found))
	for tag := range found {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
