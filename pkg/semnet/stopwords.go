package semnet

import "sort"

// DefaultStopwords is the stopword list used when none is configured: common
// Chinese function words that carry no topical meaning in reviews.
var DefaultStopwords = []string{"的", "了", "和", "是", "就", "都", "而", "及", "与", "着"}

// StopwordSet is an immutable set of tokens excluded from every count.
// The zero value is an empty set.
type StopwordSet struct {
	words map[string]struct{}
}

// NewStopwordSet builds a set from the given words. Empty strings are ignored.
func NewStopwordSet(words ...string) StopwordSet {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		m[w] = struct{}{}
	}
	return StopwordSet{words: m}
}

// DefaultStopwordSet returns a set holding DefaultStopwords.
func DefaultStopwordSet() StopwordSet {
	return NewStopwordSet(DefaultStopwords...)
}

// Contains reports whether token is a stopword.
func (s StopwordSet) Contains(token string) bool {
	_, ok := s.words[token]
	return ok
}

// Len returns the number of stopwords.
func (s StopwordSet) Len() int { return len(s.words) }

// Union returns a new set with the words of s and the extra words.
func (s StopwordSet) Union(extra ...string) StopwordSet {
	all := make([]string, 0, len(s.words)+len(extra))
	for w := range s.words {
		all = append(all, w)
	}
	return NewStopwordSet(append(all, extra...)...)
}

// Words returns the stopwords in sorted order.
func (s StopwordSet) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
