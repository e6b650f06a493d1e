// Package corpus loads review comments from CSV, JSON Lines and HTML files.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrColumnNotFound is returned when a requested column or field is absent
// from the header.
var ErrColumnNotFound = errors.New("column not found")

// ErrUnsupportedFormat is returned by LoadFile for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported corpus format")

// Record is one comment and the item (film, product, page) it belongs to.
type Record struct {
	Item    string `json:"item"`
	Content string `json:"content"`
}

// Options controls LoadFile.
type Options struct {
	// Column holds the comment text. Defaults to "content".
	Column string
	// ItemColumn, when set, names the column holding the item name.
	ItemColumn string
	// Item labels every record when ItemColumn is empty.
	Item string
	// PageURL is the base URL handed to the HTML extractor.
	PageURL string
}

func (o Options) column() string {
	if o.Column == "" {
		return "content"
	}
	return o.Column
}

// LoadFile reads a corpus file, choosing the format by extension:
// .csv, .jsonl/.ndjson or .html/.htm.
func LoadFile(path string, opts Options) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		records, err = LoadCSV(f, CSVOptions{Column: opts.column(), ItemColumn: opts.ItemColumn})
	case ".jsonl", ".ndjson":
		records, err = LoadJSONL(f, opts.column(), opts.ItemColumn)
	case ".html", ".htm":
		pageURL := opts.PageURL
		if pageURL == "" {
			pageURL = "file://" + filepath.ToSlash(path)
		}
		records, err = LoadHTML(f, pageURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	if opts.ItemColumn == "" && opts.Item != "" {
		for i := range records {
			records[i].Item = opts.Item
		}
	}
	return records, nil
}

// Contents returns the comment text of every record, in order.
func Contents(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Content
	}
	return out
}

// ForItem returns the records belonging to item.
func ForItem(records []Record, item string) []Record {
	var out []Record
	for _, r := range records {
		if r.Item == item {
			out = append(out, r)
		}
	}
	return out
}

// Items returns the distinct item names in first-seen order.
func Items(records []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if seen[r.Item] {
			continue
		}
		seen[r.Item] = true
		out = append(out, r.Item)
	}
	return out
}
