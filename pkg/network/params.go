package network

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidParameter is wrapped by every parameter validation failure.
var ErrInvalidParameter = errors.New("invalid parameter")

// VocabularyPolicy decides which tokens are eligible for the vocabulary.
type VocabularyPolicy int

const (
	// PolicyTopN takes the TopN most frequent tokens unconditionally.
	PolicyTopN VocabularyPolicy = iota
	// PolicyTopNMinFrequency only considers tokens whose frequency is at
	// least MinWeight, then takes the TopN most frequent of those.
	PolicyTopNMinFrequency
)

func (p VocabularyPolicy) String() string {
	switch p {
	case PolicyTopN:
		return "top-n"
	case PolicyTopNMinFrequency:
		return "top-n-min-frequency"
	default:
		return fmt.Sprintf("VocabularyPolicy(%d)", int(p))
	}
}

// ParsePolicy maps a policy name ("top-n", "top-n-min-frequency") to its value.
func ParsePolicy(s string) (VocabularyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "top-n", "topn":
		return PolicyTopN, nil
	case "top-n-min-frequency", "min-frequency":
		return PolicyTopNMinFrequency, nil
	default:
		return PolicyTopN, fmt.Errorf("%w: unknown vocabulary policy %q", ErrInvalidParameter, s)
	}
}

// Params controls one network build.
type Params struct {
	// MinWeight is the smallest accumulated pair weight kept as an edge.
	MinWeight float64
	// TopN bounds the vocabulary size.
	TopN int
	// WeightMultiplier is added to a pair once per comment it co-occurs in.
	WeightMultiplier float64
	// Policy selects the vocabulary eligibility rule.
	Policy VocabularyPolicy
}

// DefaultParams returns the parameters the review explorer starts with.
func DefaultParams() Params {
	return Params{
		MinWeight:        2,
		TopN:             50,
		WeightMultiplier: 1,
		Policy:           PolicyTopN,
	}
}

// Validate rejects parameters that would produce a meaningless graph.
func (p Params) Validate() error {
	if p.TopN <= 0 {
		return fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidParameter, p.TopN)
	}
	if !isFinite(p.MinWeight) || p.MinWeight < 0 {
		return fmt.Errorf("%w: min_weight must be a non-negative number, got %v", ErrInvalidParameter, p.MinWeight)
	}
	if !isFinite(p.WeightMultiplier) || p.WeightMultiplier <= 0 {
		return fmt.Errorf("%w: weight_multiplier must be a positive number, got %v", ErrInvalidParameter, p.WeightMultiplier)
	}
	if p.Policy != PolicyTopN && p.Policy != PolicyTopNMinFrequency {
		return fmt.Errorf("%w: unknown vocabulary policy %d", ErrInvalidParameter, int(p.Policy))
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
