// Package strings provides string slice utilities.
package strings

import (
	"strings"
)

// Dedupe trims each value, applies normalize and drops empty results and
// repeats. Order of first occurrence is preserved. A nil normalize keeps the
// trimmed value as is.
func Dedupe(values []string, normalize func(string) string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))

	for _, v := range values {
		v = strings.TrimSpace(v)
		if normalize != nil {
			v = normalize(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// DedupeUpper is Dedupe with upper-casing, for country codes.
func DedupeUpper(values []string) []string {
	return Dedupe(values, strings.ToUpper)
}
