package directory

import (
	"reflect"
	"testing"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Art", "art"},
		{" Art ", "art"},
		{"ART", "art"},
		{"Art Club", "art-club"},
		{"--Nouns  DAO!!", "nouns-dao"},
		{"a__b..c", "a-b-c"},
		{"Café 42", "caf-42"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Errorf("Slug(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSlug_Idempotent(t *testing.T) {
	inputs := []string{"Art Club", " -x- ", "Ünïcode Ñame", "a--b", "123 Go!", "https://www.example.com/page?q=1", ""}
	for _, in := range inputs {
		once := Slug(in)
		if twice := Slug(once); twice != once {
			t.Errorf("Slug is not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSplitList(t *testing.T) {
	cases := map[string][]string{
		"Art, Events":          {"Art", "Events"},
		"Art;Events , Art":     {"Art", "Events", "Art"},
		" , ; ,":               {},
		"":                     {},
		"Single":               {"Single"},
		"  Padded  ;; Second ": {"Padded", "Second"},
	}

	for in, want := range cases {
		if got := SplitList(in); !reflect.DeepEqual(got, want) {
			t.Errorf("SplitList(%q): expected %v, got %v", in, want, got)
		}
	}
}
