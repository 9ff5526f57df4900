package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func ParseFormat(format Format, data []byte) (Table, error) {
	switch format {
	case FormatCSV, "":
		return Parse(data)
	case FormatRSS:
		return ParseFeed(data)
	default:
		return Table{}, fmt.Errorf("unsupported feed format %q", format)
	}
}

// Parse decodes comma-separated text whose first row is the header. Empty
// lines are skipped; a row of bare delimiters is still a row.
func Parse(data []byte) (Table, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(bytes.NewReader(data), decoder))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, ErrEmptyFeed
	}
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	table := Table{Headers: headers}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
		}
		table.Records = append(table.Records, toRecord(headers, row))
	}

	if len(table.Records) == 0 {
		return Table{}, ErrEmptyFeed
	}

	return table, nil
}

func toRecord(headers, row []string) RawRecord {
	record := make(RawRecord, len(headers))
	for i, header := range headers {
		if _, seen := record[header]; seen {
			continue
		}
		value := ""
		if i < len(row) {
			value = row[i]
		}
		record[header] = value
	}
	return record
}
