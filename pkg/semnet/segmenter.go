package semnet

import (
	"fmt"
	"strings"

	"github.com/go-ego/gse"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Segmenter splits cleaned text into word-level units.
type Segmenter interface {
	Segment(text string) []string
}

// Supported segmenter languages.
const (
	LanguageChinese    = "zh"
	LanguageJapanese   = "ja"
	LanguageWhitespace = "whitespace"
)

// userWordFrequency is the dictionary weight given to user words so the
// segmenter prefers them over splitting them apart.
const userWordFrequency = 1000

// NewSegmenter returns the segmenter for language. userWords are added to the
// dictionary of segmenters that support one (currently zh).
func NewSegmenter(language string, userWords []string) (Segmenter, error) {
	switch strings.ToLower(language) {
	case "", LanguageChinese:
		return NewChineseSegmenter(userWords)
	case LanguageJapanese:
		return NewJapaneseSegmenter()
	case LanguageWhitespace:
		return WhitespaceSegmenter{}, nil
	default:
		return nil, fmt.Errorf("unsupported segmenter language %q (use zh, ja or whitespace)", language)
	}
}

// ChineseSegmenter segments Chinese text with gse's embedded simplified
// Chinese dictionary and HMM for out-of-vocabulary words.
type ChineseSegmenter struct {
	seg *gse.Segmenter
}

// NewChineseSegmenter loads the embedded dictionary and registers userWords.
func NewChineseSegmenter(userWords []string) (*ChineseSegmenter, error) {
	seg, err := gse.NewEmbed("zh_s")
	if err != nil {
		return nil, fmt.Errorf("load gse dictionary: %w", err)
	}
	for _, w := range userWords {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		seg.AddToken(w, userWordFrequency)
	}
	return &ChineseSegmenter{seg: &seg}, nil
}

// Segment implements Segmenter.
func (c *ChineseSegmenter) Segment(text string) []string {
	return c.seg.Cut(text, true)
}

// JapaneseSegmenter segments Japanese text with kagome and the IPA dictionary.
type JapaneseSegmenter struct {
	t *tokenizer.Tokenizer
}

// NewJapaneseSegmenter creates a kagome tokenizer instance.
func NewJapaneseSegmenter() (*JapaneseSegmenter, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &JapaneseSegmenter{t: t}, nil
}

// Segment implements Segmenter. Tokens are surface forms in text order.
func (j *JapaneseSegmenter) Segment(text string) []string {
	tokens := j.t.Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		out = append(out, token.Surface)
	}
	return out
}

// WhitespaceSegmenter splits on Unicode whitespace. It suits text that is
// already segmented or written in a space-delimited script.
type WhitespaceSegmenter struct{}

// Segment implements Segmenter.
func (WhitespaceSegmenter) Segment(text string) []string {
	return strings.Fields(text)
}
