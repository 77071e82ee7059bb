package utils

import "strings"

// ToStringSlice flattens a decoded JSON value into its string entries.
// A lone string becomes a one-element slice; non-string entries are dropped.
func ToStringSlice(v any) []string {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// FirstString returns the first non-blank string found in v.
func FirstString(v any) (string, bool) {
	for _, s := range ToStringSlice(v) {
		if s = strings.TrimSpace(s); s != "" {
			return s, true
		}
	}
	return "", false
}
