package sheet

import (
	"errors"
	"testing"
)

func TestParseFeed_RSSItems(t *testing.T) {
	data := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Projects</title>
    <link>https://example.com</link>
    <description>Directory</description>
    <item>
      <title>Art Club</title>
      <link>https://x.io</link>
      <description>Makes art</description>
      <category>Art</category>
      <category>Events</category>
    </item>
    <item>
      <title>Radio</title>
      <link>https://radio.example</link>
    </item>
  </channel>
</rss>`

	table, err := ParseFormat(FormatRSS, []byte(data))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(table.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(table.Records))
	}

	first := table.Records[0]
	if first["Title"] != "Art Club" {
		t.Errorf("Expected Title 'Art Club', got '%s'", first["Title"])
	}
	if first["Category"] != "Art, Events" {
		t.Errorf("Expected joined categories 'Art, Events', got '%s'", first["Category"])
	}
	if table.Records[1]["Category"] != "" {
		t.Errorf("Expected empty Category, got '%s'", table.Records[1]["Category"])
	}
}

func TestParseFeed_Errors(t *testing.T) {
	if _, err := ParseFeed([]byte("not a feed")); !errors.Is(err, ErrMalformedFeed) {
		t.Errorf("Expected ErrMalformedFeed, got: %v", err)
	}

	empty := `<?xml version="1.0"?><rss version="2.0"><channel><title>x</title></channel></rss>`
	if _, err := ParseFeed([]byte(empty)); !errors.Is(err, ErrEmptyFeed) {
		t.Errorf("Expected ErrEmptyFeed, got: %v", err)
	}
}
