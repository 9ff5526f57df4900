package directory

// Field is a logical column the normalizer knows how to use.
type Field string

const (
	FieldTitle       Field = "title"
	FieldLink        Field = "link"
	FieldDescription Field = "description"
	FieldCategories  Field = "categories"
	FieldMainTag     Field = "mainTag"
	FieldHiddenTags  Field = "hiddenTags"
	FieldLogoURL     Field = "logoUrl"
	FieldImage       Field = "image"
)

var Fields = []Field{
	FieldTitle,
	FieldLink,
	FieldDescription,
	FieldCategories,
	FieldMainTag,
	FieldHiddenTags,
	FieldLogoURL,
	FieldImage,
}

// Candidates lists, per field, the acceptable header names in priority order.
type Candidates map[Field][]string

// Resolution maps a field to the header it matched in one particular feed.
// Unresolved fields are absent.
type Resolution map[Field]string

func (r Resolution) Header(field Field) (string, bool) {
	header, ok := r[field]
	return header, ok
}

type Entry struct {
	Key              string   `json:"key"`
	Row              int      `json:"row"`
	Title            string   `json:"title"`
	Link             string   `json:"link"`
	Description      string   `json:"description"`
	MainTag          string   `json:"main_tag"`
	HiddenTags       []string `json:"hidden_tags"`
	LegacyCategories []string `json:"legacy_categories"`
	Image            string   `json:"image"`
}

type TagMode string

const (
	TagModePrimary TagMode = "primary"
	TagModeLegacy  TagMode = "legacy"
)

type SortMode string

const (
	SortSource SortMode = "source"
	SortTitle  SortMode = "az"
)

func ParseSortMode(s string) (SortMode, bool) {
	switch SortMode(s) {
	case SortSource:
		return SortSource, true
	case SortTitle:
		return SortTitle, true
	default:
		return "", false
	}
}

type FilterState struct {
	SelectedTags []string
	Query        string
	TagMode      TagMode
	Sort         SortMode
}
