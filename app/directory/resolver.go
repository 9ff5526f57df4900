package directory

import "strings"

// DefaultCandidates returns the built-in header aliases, most specific first.
func DefaultCandidates() Candidates {
	return Candidates{
		FieldTitle:       {"Name", "Title", "Name (with url hyperlinked)", "Project", "Project Name"},
		FieldLink:        {"URL", "Link", "Website", "Homepage"},
		FieldDescription: {"Description", "Summary", "About"},
		FieldCategories:  {"Category", "Categories"},
		FieldMainTag:     {"Main Tag", "MainTag", "Primary Tag", "Tag"},
		FieldHiddenTags:  {"Hidden Tags", "HiddenTags", "Search Tags", "Tags", "Keywords"},
		FieldLogoURL:     {"Logo URL", "LogoURL", "Logo Link"},
		FieldImage:       {"Logo", "Image", "Icon"},
	}
}

// Merge returns a copy of c where every field present in overrides replaces
// the built-in list.
func (c Candidates) Merge(overrides Candidates) Candidates {
	merged := make(Candidates, len(c))
	for field, names := range c {
		merged[field] = names
	}
	for field, names := range overrides {
		if len(names) > 0 {
			merged[field] = names
		}
	}
	return merged
}

// Resolve matches each field's candidates against the headers of one feed.
// Matching trims and ignores case on both sides; the first candidate present wins.
func Resolve(headers []string, candidates Candidates) Resolution {
	present := make(map[string]string, len(headers))
	for _, header := range headers {
		key := normalizeHeader(header)
		if _, seen := present[key]; !seen {
			present[key] = header
		}
	}

	resolution := make(Resolution)
	for _, field := range Fields {
		for _, candidate := range candidates[field] {
			if header, ok := present[normalizeHeader(candidate)]; ok {
				resolution[field] = header
				break
			}
		}
	}

	return resolution
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
