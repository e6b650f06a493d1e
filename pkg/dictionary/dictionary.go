// Package dictionary loads and fetches word lists: stopword lists and user
// dictionaries for the segmenter.
package dictionary

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadWordList reads a word list from path. See ParseWordList for formats.
func LoadWordList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	words, err := ParseWordList(f)
	if err != nil {
		return nil, fmt.Errorf("parse word list %s: %w", path, err)
	}
	return words, nil
}

// ParseWordList reads either JSON (an array of strings or an object
// {"words": [...]}) or plain text with one word per line. In plain text, the
// first whitespace-separated field of each line is the word, so frequency
// columns are ignored; blank lines and lines starting with # are skipped.
// Words are trimmed and deduplicated, keeping file order.
func ParseWordList(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return parseJSONWords(trimmed)
	}

	var words []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.Fields(line)[0])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return dedupe(words), nil
}

func parseJSONWords(data []byte) ([]string, error) {
	// Try the object wrapper first { "words": [...] }
	var wrapped struct {
		Words []string `json:"words"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Words) > 0 {
		return dedupe(wrapped.Words), nil
	}

	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("failed to parse word list as object or array: %w", err)
	}
	return dedupe(words), nil
}

func dedupe(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
