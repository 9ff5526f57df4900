package sheet

import "errors"

var (
	ErrMalformedFeed = errors.New("malformed feed")
	ErrEmptyFeed     = errors.New("feed has no data rows")
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatRSS Format = "rss"
)

// RawRecord maps a header, exactly as it appears in the feed, to its cell value.
type RawRecord map[string]string

// Table is a decoded feed. Records are in feed order.
type Table struct {
	Headers []string
	Records []RawRecord
}
