package util

import "strings"

// Fields splits s on whitespace and drops duplicates, keeping first-seen order.
func Fields(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range strings.Fields(s) {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
