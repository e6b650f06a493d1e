package network

import "sort"

// Pair is an unordered token pair stored with A < B.
type Pair struct {
	A, B string
}

// NewPair returns the canonical pair for x and y.
func NewPair(x, y string) Pair {
	if x > y {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// PairCounter counts, per token pair, the comments in which both tokens
// appear.
type PairCounter struct {
	counts map[Pair]int
}

// NewPairCounter returns an empty counter.
func NewPairCounter() *PairCounter {
	return &PairCounter{counts: make(map[Pair]int)}
}

// AddComment counts one comment for every pair of distinct tokens in it.
// Repeated tokens are collapsed first, so a pair gains at most one per call.
func (c *PairCounter) AddComment(tokens []string) {
	unique := dedupe(tokens)
	sort.Strings(unique)

	for i := 0; i < len(unique); i++ {
		for j := i + 1; j < len(unique); j++ {
			c.counts[Pair{A: unique[i], B: unique[j]}]++
		}
	}
}

// Count returns the number of comments containing both x and y.
func (c *PairCounter) Count(x, y string) int {
	return c.counts[NewPair(x, y)]
}

// Len returns the number of pairs seen in any comment.
func (c *PairCounter) Len() int { return len(c.counts) }

// Edges returns the pairs whose weight, count times multiplier, is at least
// minWeight, sorted by (Source, Target). The weight is computed with a single
// multiplication so it does not drift with the number of comments.
func (c *PairCounter) Edges(minWeight, multiplier float64) []Edge {
	edges := make([]Edge, 0, len(c.counts))
	for p, n := range c.counts {
		w := float64(n) * multiplier
		if w < minWeight {
			continue
		}
		edges = append(edges, Edge{Source: p.A, Target: p.B, Weight: w})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}

// dedupe returns the distinct tokens in first-seen order.
func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
