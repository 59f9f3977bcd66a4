// Package strings holds small helpers for list-valued settings.
package strings

import "strings"

// CleanList trims every value, drops blanks and keeps the first occurrence
// of each remaining value. With fold set, values are lowercased first so
// "Redis" and "redis" collapse. Order is preserved; nil stays nil.
func CleanList(values []string, fold bool) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if fold {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SplitList splits a comma-separated value and cleans the parts.
func SplitList(value string, fold bool) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return CleanList(strings.Split(value, ","), fold)
}
