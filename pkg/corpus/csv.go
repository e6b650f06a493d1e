package corpus

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVOptions names the columns LoadCSV reads.
type CSVOptions struct {
	Column     string
	ItemColumn string
}

// LoadCSV reads a header-first CSV file. Short rows yield empty values
// rather than errors.
func LoadCSV(r io.Reader, opts CSVOptions) ([]Record, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && string(b) == "\xef\xbb\xbf" {
		br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	column := opts.Column
	if column == "" {
		column = "content"
	}
	contentIdx := indexOf(header, column)
	if contentIdx < 0 {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrColumnNotFound, column, strings.Join(header, ", "))
	}
	itemIdx := -1
	if opts.ItemColumn != "" {
		if itemIdx = indexOf(header, opts.ItemColumn); itemIdx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, opts.ItemColumn)
		}
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := Record{Content: field(row, contentIdx)}
		if itemIdx >= 0 {
			rec.Item = strings.TrimSpace(field(row, itemIdx))
		}
		records = append(records, rec)
	}
	return records, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
