package semnet

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinLength is the shortest token (in runes) that survives filtering.
// Single characters are mostly particles and noise in review text.
const DefaultMinLength = 2

// Normalizer turns one comment into an ordered list of filtered tokens.
// It holds no mutable state and is safe for concurrent use when its
// Segmenter is.
type Normalizer struct {
	seg       Segmenter
	stopwords StopwordSet
	minLength int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithSegmenter sets the segmenter. The default is the Chinese segmenter.
func WithSegmenter(s Segmenter) Option {
	return func(n *Normalizer) { n.seg = s }
}

// WithStopwords replaces the default stopword set.
func WithStopwords(s StopwordSet) Option {
	return func(n *Normalizer) { n.stopwords = s }
}

// WithMinLength sets the minimum token length in runes. Values below 1 are
// treated as 1.
func WithMinLength(l int) Option {
	return func(n *Normalizer) {
		if l < 1 {
			l = 1
		}
		n.minLength = l
	}
}

// NewNormalizer creates a Normalizer. Without WithSegmenter it loads the
// Chinese dictionary segmenter, which is the only step that can fail.
func NewNormalizer(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{
		stopwords: DefaultStopwordSet(),
		minLength: DefaultMinLength,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.seg == nil {
		seg, err := NewChineseSegmenter(nil)
		if err != nil {
			return nil, err
		}
		n.seg = seg
	}
	return n, nil
}

// Stopwords returns the stopword set in use.
func (n *Normalizer) Stopwords() StopwordSet { return n.stopwords }

// MinLength returns the minimum token length in runes.
func (n *Normalizer) MinLength() int { return n.minLength }

// Normalize cleans and segments text and returns the tokens that are long
// enough and not stopwords, in segmentation order. Repeated tokens are kept.
// Empty input yields an empty result.
func (n *Normalizer) Normalize(text string) []string {
	cleaned := Clean(text)
	if strings.TrimSpace(cleaned) == "" {
		return nil
	}

	var tokens []string
	for _, w := range n.seg.Segment(cleaned) {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if utf8.RuneCountInString(w) < n.minLength {
			continue
		}
		if n.stopwords.Contains(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// NormalizeValue coerces v with Text and normalizes the result.
func (n *Normalizer) NormalizeValue(v any) []string {
	return n.Normalize(Text(v))
}
