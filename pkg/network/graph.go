package network

// Node is a vocabulary token sized by its corpus frequency.
type Node struct {
	Token     string `json:"name"`
	Frequency int    `json:"frequency"`
}

// Edge connects two vocabulary tokens. Source sorts before Target.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Stats summarizes the work behind a Graph.
type Stats struct {
	Comments       int `json:"comments"`
	Tokens         int `json:"tokens"`
	DistinctTokens int `json:"distinct_tokens"`
	CandidatePairs int `json:"candidate_pairs"`
	PrunedPairs    int `json:"pruned_pairs"`
}

// Graph is the weighted co-occurrence network handed to renderers.
// Nodes are in vocabulary rank order; edges are sorted by (Source, Target).
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Stats Stats  `json:"stats"`
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Node looks up the node for token.
func (g *Graph) Node(token string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Token == token {
			return n, true
		}
	}
	return Node{}, false
}

// Weight returns the weight of the edge between a and b in either order.
func (g *Graph) Weight(a, b string) (float64, bool) {
	p := NewPair(a, b)
	for _, e := range g.Edges {
		if e.Source == p.A && e.Target == p.B {
			return e.Weight, true
		}
	}
	return 0, false
}

// Degree returns the number of edges touching token.
func (g *Graph) Degree(token string) int {
	d := 0
	for _, e := range g.Edges {
		if e.Source == token || e.Target == token {
			d++
		}
	}
	return d
}

// MaxFrequency returns the largest node frequency, or 0 for an empty graph.
func (g *Graph) MaxFrequency() int {
	max := 0
	for _, n := range g.Nodes {
		if n.Frequency > max {
			max = n.Frequency
		}
	}
	return max
}
