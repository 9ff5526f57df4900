package directory

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/lysyi3m/sheet-dir/app/sheet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const DefaultLogoPath = "/logos/%s.png"

type NormalizeOptions struct {
	// LogoPath is a fmt template receiving the title slug.
	LogoPath string
}

func (o NormalizeOptions) logoPath() string {
	if o.LogoPath == "" {
		return DefaultLogoPath
	}
	return o.LogoPath
}

type row struct {
	cells      map[Field]string
	index      int
	title      string
	titleFound bool
	opts       NormalizeOptions
}

type rule func(r *row) string

var titleRules = []rule{
	func(r *row) string { return r.cells[FieldTitle] },
	func(r *row) string { return hostname(r.cells[FieldLink]) },
}

var imageRules = []rule{
	func(r *row) string { return r.cells[FieldLogoURL] },
	func(r *row) string { return r.cells[FieldImage] },
	func(r *row) string {
		if !r.titleFound {
			return ""
		}
		slug := Slug(r.title)
		if slug == "" {
			return ""
		}
		return fmt.Sprintf(r.opts.logoPath(), slug)
	},
}

func firstOf(r *row, rules []rule) string {
	for _, apply := range rules {
		if value := apply(r); value != "" {
			return value
		}
	}
	return ""
}

// Normalize turns one raw record into an Entry. It never fails: missing or
// odd cells fall back to derived values.
func Normalize(record sheet.RawRecord, rowIndex int, res Resolution, opts NormalizeOptions) Entry {
	r := &row{
		cells: extractCells(record, res),
		index: rowIndex,
		opts:  opts,
	}

	if text, href, ok := parseAnchor(r.cells[FieldTitle]); ok {
		r.cells[FieldTitle] = text
		if r.cells[FieldLink] == "" {
			r.cells[FieldLink] = href
		}
	}

	r.title = firstOf(r, titleRules)
	r.titleFound = r.title != ""
	if !r.titleFound {
		r.title = "Untitled " + strconv.Itoa(rowIndex+1)
		slog.Debug("Row has no title or usable link, using placeholder", "row", rowIndex, "title", r.title)
	}

	var mainTag string
	if tags := SplitList(r.cells[FieldMainTag]); len(tags) > 0 {
		mainTag = tags[0]
	}

	return Entry{
		Key:              Slug(r.title) + "-" + strconv.Itoa(rowIndex),
		Row:              rowIndex,
		Title:            r.title,
		Link:             r.cells[FieldLink],
		Description:      r.cells[FieldDescription],
		MainTag:          mainTag,
		HiddenTags:       SplitList(r.cells[FieldHiddenTags]),
		LegacyCategories: SplitList(r.cells[FieldCategories]),
		Image:            firstOf(r, imageRules),
	}
}

// NormalizeAll normalizes every record of a table, in order.
func NormalizeAll(table sheet.Table, res Resolution, opts NormalizeOptions) []Entry {
	entries := make([]Entry, 0, len(table.Records))
	for i, record := range table.Records {
		entries = append(entries, Normalize(record, i, res, opts))
	}
	return entries
}

func extractCells(record sheet.RawRecord, res Resolution) map[Field]string {
	cells := make(map[Field]string, len(Fields))
	for _, field := range Fields {
		header, ok := res.Header(field)
		if !ok {
			cells[field] = ""
			continue
		}
		cells[field] = strings.TrimSpace(record[header])
	}
	return cells
}

// hostname returns the link's host without a leading "www.", or "" when the
// link is not an absolute URL.
func hostname(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// parseAnchor extracts text and href from a cell holding an HTML link,
// as some sheet exports keep the hyperlink markup of the name column.
func parseAnchor(cell string) (string, string, bool) {
	if !strings.Contains(cell, "<a") {
		return "", "", false
	}

	tokenizer := html.NewTokenizer(strings.NewReader(cell))
	var href string
	var text strings.Builder
	inAnchor := false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return "", "", false
		case html.StartTagToken:
			token := tokenizer.Token()
			if token.DataAtom != atom.A || inAnchor {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key == "href" {
					href = strings.TrimSpace(attr.Val)
				}
			}
			inAnchor = true
		case html.TextToken:
			if inAnchor {
				text.Write(tokenizer.Text())
			}
		case html.EndTagToken:
			token := tokenizer.Token()
			if token.DataAtom == atom.A && inAnchor {
				title := strings.TrimSpace(text.String())
				if title == "" && href == "" {
					return "", "", false
				}
				return title, href, true
			}
		}
	}
}
