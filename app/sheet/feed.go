package sheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

var feedHeaders = []string{"Title", "Link", "Description", "Category", "Image"}

// ParseFeed turns RSS/Atom items into the same record shape a sheet export has,
// so the rest of the pipeline does not care where rows came from.
func ParseFeed(data []byte) (Table, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	table := Table{Headers: feedHeaders}
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		record := RawRecord{
			"Title":       item.Title,
			"Link":        item.Link,
			"Description": item.Description,
			"Category":    strings.Join(item.Categories, ", "),
			"Image":       "",
		}
		if item.Image != nil {
			record["Image"] = item.Image.URL
		}
		table.Records = append(table.Records, record)
	}

	if len(table.Records) == 0 {
		return Table{}, ErrEmptyFeed
	}

	return table, nil
}
