package corpus

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
)

var (
	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses
// (<rp>...</rp>). Readability keeps every text node, so without this
// "<ruby>漢字<rt>かんじ</rt></ruby>" would come out as "漢字かんじ".
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	cleaned = reRP.ReplaceAll(cleaned, []byte{})
	return cleaned
}

// LoadHTML extracts the main text of a review page. Every non-empty line of
// the extracted text becomes a record; the page title is the item.
func LoadHTML(r io.Reader, pageURL string) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(SanitizeRuby(data)), u)
	if err != nil {
		return nil, fmt.Errorf("readability extraction failed: %w", err)
	}

	title := strings.TrimSpace(article.Title)
	var records []Record
	for _, line := range strings.Split(article.TextContent, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		records = append(records, Record{Item: title, Content: line})
	}
	return records, nil
}
