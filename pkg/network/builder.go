// Package network builds weighted co-occurrence graphs from review comments.
//
// Build runs two passes over the corpus. The first counts token frequencies
// and picks the vocabulary; the second counts, per comment, every pair of
// distinct vocabulary tokens. Pairs below the minimum weight are pruned. The
// output is fully determined by the inputs: ties in frequency keep the order in
// which tokens first appear, and edges are sorted.
package network

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/japaniel/semnet/pkg/semnet"
	"github.com/japaniel/semnet/pkg/workerpool"
)

// Tokenizer turns one comment into tokens. *semnet.Normalizer implements it.
type Tokenizer interface {
	Normalize(text string) []string
}

// Builder builds co-occurrence graphs with a fixed tokenizer.
type Builder struct {
	Tokenizer Tokenizer
	// Logger receives a debug summary of each build. nil means no logging.
	Logger *slog.Logger
	// Workers is the number of goroutines segmenting comments. Values below
	// 2 segment on the calling goroutine. The Tokenizer must be safe for
	// concurrent use when Workers > 1.
	Workers int
}

// NewBuilder creates a Builder using t.
func NewBuilder(t Tokenizer) *Builder {
	return &Builder{Tokenizer: t}
}

// Build tokenizes comments and returns the pruned co-occurrence graph.
// An empty corpus yields an empty graph. Invalid parameters return an error
// wrapping ErrInvalidParameter before any work is done.
func (b *Builder) Build(comments []string, p Params) (*Graph, error) {
	return b.BuildContext(context.Background(), comments, p)
}

// BuildContext is Build with cancellation of the segmentation pass.
func (b *Builder) BuildContext(ctx context.Context, comments []string, p Params) (*Graph, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if b.Tokenizer == nil {
		return nil, fmt.Errorf("network builder has no tokenizer")
	}

	// Frequency pass. Token lists are kept for the pairing pass and added in
	// comment order so first-seen ranks do not depend on scheduling.
	perComment, err := workerpool.Map(ctx, b.Workers, comments, b.Tokenizer.Normalize)
	if err != nil {
		return nil, err
	}
	freq := NewFrequencyTable()
	for _, tokens := range perComment {
		freq.Add(tokens...)
	}

	vocab := freq.Vocabulary(p)
	inVocab := make(map[string]struct{}, len(vocab))
	for _, tc := range vocab {
		inVocab[tc.Token] = struct{}{}
	}

	// Pairing pass.
	pairs := NewPairCounter()
	for _, tokens := range perComment {
		var kept []string
		for _, t := range tokens {
			if _, ok := inVocab[t]; ok {
				kept = append(kept, t)
			}
		}
		if len(kept) < 2 {
			continue
		}
		pairs.AddComment(kept)
	}

	edges := pairs.Edges(p.MinWeight, p.WeightMultiplier)

	g := &Graph{
		Nodes: make([]Node, len(vocab)),
		Edges: edges,
		Stats: Stats{
			Comments:       len(comments),
			Tokens:         freq.Total(),
			DistinctTokens: freq.Len(),
			CandidatePairs: pairs.Len(),
			PrunedPairs:    pairs.Len() - len(edges),
		},
	}
	for i, tc := range vocab {
		g.Nodes[i] = Node{Token: tc.Token, Frequency: tc.Count}
	}

	if b.Logger != nil {
		b.Logger.Debug("co-occurrence network built",
			"comments", g.Stats.Comments,
			"tokens", g.Stats.Tokens,
			"distinct_tokens", g.Stats.DistinctTokens,
			"nodes", g.NodeCount(),
			"edges", g.EdgeCount(),
			"pruned_pairs", g.Stats.PrunedPairs,
			"policy", p.Policy.String(),
		)
	}
	return g, nil
}

// BuildValues coerces arbitrary comment values with semnet.Text and builds
// the graph.
func (b *Builder) BuildValues(values []any, p Params) (*Graph, error) {
	comments := make([]string, len(values))
	for i, v := range values {
		comments[i] = semnet.Text(v)
	}
	return b.Build(comments, p)
}

// Build builds a graph with the default Chinese normalizer and the
// unconditional top-N vocabulary policy.
func Build(comments []string, minWeight float64, topN int, weightMultiplier float64) (*Graph, error) {
	p := Params{MinWeight: minWeight, TopN: topN, WeightMultiplier: weightMultiplier}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n, err := semnet.NewNormalizer()
	if err != nil {
		return nil, err
	}
	return NewBuilder(n).Build(comments, p)
}
