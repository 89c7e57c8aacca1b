// Package strings holds small helpers for comma-separated settings.
package strings

import (
	"strings"
)

// SplitList splits a comma-separated value, trims each entry and drops empty
// and repeated entries. Order of first appearance is kept.
func SplitList(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for part := range strings.SplitSeq(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
