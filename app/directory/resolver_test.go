package directory

import "testing"

func TestResolve_CaseAndWhitespaceInsensitive(t *testing.T) {
	headers := []string{" name ", "Url", "DESCRIPTION", "Category"}

	res := Resolve(headers, DefaultCandidates())

	expected := map[Field]string{
		FieldTitle:       " name ",
		FieldLink:        "Url",
		FieldDescription: "DESCRIPTION",
		FieldCategories:  "Category",
	}
	for field, header := range expected {
		got, ok := res.Header(field)
		if !ok || got != header {
			t.Errorf("Expected %s to resolve to %q, got %q (ok=%v)", field, header, got, ok)
		}
	}

	for _, field := range []Field{FieldMainTag, FieldHiddenTags, FieldLogoURL, FieldImage} {
		if _, ok := res.Header(field); ok {
			t.Errorf("Expected %s to be unresolved", field)
		}
	}
}

func TestResolve_PriorityOrder(t *testing.T) {
	candidates := Candidates{FieldTitle: {"Title", "Name"}}

	res := Resolve([]string{"Name", "Title"}, candidates)

	if got, _ := res.Header(FieldTitle); got != "Title" {
		t.Errorf("Expected first declared candidate 'Title' to win, got %q", got)
	}
}

func TestResolve_DeclaredCandidatesOnly(t *testing.T) {
	headers := []string{"name", "Url", "desc"}

	res := Resolve(headers, Candidates{FieldDescription: {"Description"}})
	if _, ok := res.Header(FieldDescription); ok {
		t.Error("Expected description to be absent when 'desc' is not a candidate")
	}

	res = Resolve(headers, Candidates{FieldDescription: {"Description", " Desc "}})
	if got, ok := res.Header(FieldDescription); !ok || got != "desc" {
		t.Errorf("Expected description to resolve to 'desc', got %q (ok=%v)", got, ok)
	}
}

func TestCandidates_Merge(t *testing.T) {
	merged := DefaultCandidates().Merge(Candidates{
		FieldDescription: {"Blurb"},
		FieldLink:        nil,
	})

	if got := merged[FieldDescription]; len(got) != 1 || got[0] != "Blurb" {
		t.Errorf("Expected override for description, got %v", got)
	}
	if got := merged[FieldLink]; len(got) == 0 || got[0] != "URL" {
		t.Errorf("Expected empty override to keep defaults for link, got %v", got)
	}
}
