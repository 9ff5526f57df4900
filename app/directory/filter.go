package directory

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DetectTagMode reports primary mode when any entry carries a main tag.
func DetectTagMode(entries []Entry) TagMode {
	for _, entry := range entries {
		if entry.MainTag != "" {
			return TagModePrimary
		}
	}
	return TagModeLegacy
}

// Filter returns the entries matching every stage of state. The input is never
// modified; identical inputs always give an identical result.
func Filter(entries []Entry, state FilterState) []Entry {
	wanted := make(map[string]struct{}, len(state.SelectedTags))
	for _, tag := range state.SelectedTags {
		wanted[Slug(tag)] = struct{}{}
	}
	query := strings.ToLower(strings.TrimSpace(state.Query))

	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if len(wanted) > 0 && !matchesTags(entry, state.TagMode, wanted) {
			continue
		}
		if query != "" && !strings.Contains(searchText(entry), query) {
			continue
		}
		out = append(out, entry)
	}

	if state.Sort == SortTitle {
		SortByTitle(out)
	}

	return out
}

func matchesTags(entry Entry, mode TagMode, wanted map[string]struct{}) bool {
	if mode == TagModePrimary {
		if entry.MainTag == "" {
			return false
		}
		_, ok := wanted[Slug(entry.MainTag)]
		return ok
	}

	for _, category := range entry.LegacyCategories {
		if _, ok := wanted[Slug(category)]; ok {
			return true
		}
	}
	return false
}

func searchText(entry Entry) string {
	parts := make([]string, 0, 3+len(entry.HiddenTags)+len(entry.LegacyCategories))
	parts = append(parts, entry.Title, entry.Description, entry.MainTag)
	parts = append(parts, entry.HiddenTags...)
	parts = append(parts, entry.LegacyCategories...)
	return strings.ToLower(strings.Join(parts, "\n"))
}

// SortByTitle orders entries by title, ignoring case, with row order breaking ties.
func SortByTitle(entries []Entry) {
	collator := newCollator()
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := collator.CompareString(a.Title, b.Title); c != 0 {
			return c
		}
		return cmp.Compare(a.Row, b.Row)
	})
}

// ToggleTag adds tag to the selection, or removes it when a tag with the same
// slug is already selected.
func ToggleTag(selected []string, tag string) []string {
	slug := Slug(tag)
	out := make([]string, 0, len(selected)+1)
	removed := false
	for _, existing := range selected {
		if Slug(existing) == slug {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	if !removed {
		out = append(out, tag)
	}
	return out
}

// Collators keep internal buffers, so each caller gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}
