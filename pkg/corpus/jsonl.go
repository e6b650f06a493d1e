package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/japaniel/semnet/pkg/semnet"
)

// LoadJSONL reads one JSON object per line. The comment text is taken from
// field and the item from itemField (if non-empty). Non-string values are
// coerced to text; null and missing values become the empty string. A field
// absent from every object is reported as ErrColumnNotFound.
func LoadJSONL(r io.Reader, field, itemField string) ([]Record, error) {
	if field == "" {
		field = "content"
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []Record
	lineNo := 0
	found := false
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		v, ok := obj[field]
		found = found || ok
		rec := Record{Content: semnet.Text(v)}
		if itemField != "" {
			rec.Item = strings.TrimSpace(semnet.Text(obj[itemField]))
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(records) > 0 && !found {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, field)
	}
	return records, nil
}
