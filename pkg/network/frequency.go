package network

import "sort"

// TermCount is a token with its corpus frequency.
type TermCount struct {
	Token string
	Count int
}

// FrequencyTable counts token occurrences across a corpus and remembers the
// order in which tokens were first seen.
type FrequencyTable struct {
	counts map[string]int
	order  []string
	total  int
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{counts: make(map[string]int)}
}

// Add counts every token, including repeats.
func (f *FrequencyTable) Add(tokens ...string) {
	for _, t := range tokens {
		if _, ok := f.counts[t]; !ok {
			f.order = append(f.order, t)
		}
		f.counts[t]++
		f.total++
	}
}

// Count returns the frequency of token.
func (f *FrequencyTable) Count(token string) int { return f.counts[token] }

// Len returns the number of distinct tokens.
func (f *FrequencyTable) Len() int { return len(f.order) }

// Total returns the number of token occurrences.
func (f *FrequencyTable) Total() int { return f.total }

// Ranked returns all tokens by descending frequency. Equal frequencies keep
// first-seen order.
func (f *FrequencyTable) Ranked() []TermCount {
	out := make([]TermCount, len(f.order))
	for i, t := range f.order {
		out[i] = TermCount{Token: t, Count: f.counts[t]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Vocabulary selects the graph vocabulary from the table according to p.
func (f *FrequencyTable) Vocabulary(p Params) []TermCount {
	ranked := f.Ranked()
	if p.Policy == PolicyTopNMinFrequency {
		eligible := ranked[:0]
		for _, tc := range ranked {
			if float64(tc.Count) >= p.MinWeight {
				eligible = append(eligible, tc)
			}
		}
		ranked = eligible
	}
	if len(ranked) > p.TopN {
		ranked = ranked[:p.TopN]
	}
	return ranked
}
