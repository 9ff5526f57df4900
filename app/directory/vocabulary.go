package directory

import "slices"

// Vocabulary lists the distinct filterable tags of a collection, sorted.
// Tags that share a slug are listed once, under their first spelling.
func Vocabulary(entries []Entry, mode TagMode) []string {
	seen := make(map[string]struct{})
	tags := []string{}

	add := func(tag string) {
		if tag == "" {
			return
		}
		key := Slug(tag)
		if key == "" {
			key = tag
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}

	for _, entry := range entries {
		if mode == TagModePrimary {
			add(entry.MainTag)
			continue
		}
		for _, category := range entry.LegacyCategories {
			add(category)
		}
	}

	collator := newCollator()
	slices.SortStableFunc(tags, collator.CompareString)

	return tags
}
