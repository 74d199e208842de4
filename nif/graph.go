package nif

import "github.com/knakk/rdf"

// Graph is an append-only, deduplicated triple accumulator. It is created
// once per run and handed explicitly through the pipeline; adding an
// identical triple more than once is a no-op, so rebuilding a document into
// the same graph cannot grow it.
type Graph struct {
	triples []rdf.Triple
	seen    map[string]struct{}
}

func NewGraph() *Graph {
	return &Graph{seen: make(map[string]struct{})}
}

func (g *Graph) Add(t rdf.Triple) {
	key := t.Serialize(rdf.NTriples)
	if _, dup := g.seen[key]; dup {
		return
	}
	g.seen[key] = struct{}{}
	g.triples = append(g.triples, t)
}

func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns the accumulated triples in insertion order.
func (g *Graph) Triples() []rdf.Triple {
	out := make([]rdf.Triple, len(g.triples))
	copy(out, g.triples)
	return out
}
