package directory

import "strings"

// Slug lowercases s and collapses every run of characters outside [a-z0-9]
// into a single hyphen, without leading or trailing hyphens.
func Slug(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}

// SplitList splits a multi-valued cell on commas and semicolons, dropping
// empty pieces and keeping order and duplicates.
func SplitList(value string) []string {
	pieces := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})

	out := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if trimmed := strings.TrimSpace(piece); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
