// Package semnet turns raw review comments into filtered word tokens.
//
// A Normalizer folds, cleans and segments a comment, then drops short tokens
// and stopwords. The result feeds the co-occurrence network builder in
// package network.
package semnet

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Version returns the current version of the package.
func Version() string { return "0.2.0" }

// nonWord matches everything that is neither a word character (letter, mark,
// digit, underscore in any script) nor whitespace.
var nonWord = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s]+`)

// Clean applies NFKC folding and removes punctuation and symbols. Removed runs
// are not replaced by spaces, so "好看!真的" becomes "好看真的".
func Clean(text string) string {
	if text == "" {
		return ""
	}
	return nonWord.ReplaceAllString(norm.NFKC.String(text), "")
}

// Text converts an arbitrary comment value to the string that gets tokenized.
// nil and NaN (missing cells in spreadsheet exports) become the empty string.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		if math.IsNaN(float64(x)) {
			return ""
		}
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}
