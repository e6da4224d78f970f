// Package graph merges concepts and relations into a weighted concept graph
// and exports it for rendering.
package graph

import (
	"github.com/poiesic/conceptmap/core"
)

// DefaultScale is the node size contributed by each concept occurrence.
const DefaultScale = 100

// Option configures Build.
type Option func(*builder)

type builder struct {
	scale       int
	defaultSize int // 0 means "same as scale"
}

// WithScale sets the size contributed by each concept occurrence.
// Non-positive values fall back to DefaultScale.
func WithScale(scale int) Option {
	return func(b *builder) {
		if scale <= 0 {
			scale = DefaultScale
		}
		b.scale = scale
	}
}

// WithDefaultSize sets the size of nodes introduced only by a relation,
// such as a verb related to a noun. Default is the scale.
func WithDefaultSize(size int) Option {
	return func(b *builder) {
		if size < 0 {
			size = 0
		}
		b.defaultSize = size
	}
}

// Build merges concepts and relations into a graph.
//
// Every concept becomes a node sized count x scale, in the concept table's
// order. Every relation adds its weight to the matching edge (respecting
// directedness) or inserts it; endpoints missing from the node set are
// added with the default size. Final weights do not depend on the order of
// relations. Nil inputs are treated as empty.
func Build(concepts *core.ConceptTable, relations core.RelationList, directed bool, opts ...Option) *core.Graph {
	b := &builder{scale: DefaultScale}
	for _, opt := range opts {
		opt(b)
	}
	defaultSize := b.defaultSize
	if defaultSize == 0 {
		defaultSize = b.scale
	}

	g := core.NewGraph(directed)

	if concepts != nil {
		for _, tc := range conceptsInOrder(concepts) {
			g.AddNode(tc.Term, tc.Count*b.scale)
		}
	}

	for _, r := range relations {
		if r.Source == r.Target || r.Weight <= 0 {
			continue
		}
		g.AddNode(r.Source, defaultSize)
		g.AddNode(r.Target, defaultSize)
		g.AddEdgeWeight(r.Source, r.Target, r.Weight)
	}

	return g
}

func conceptsInOrder(concepts *core.ConceptTable) []core.TermCount {
	keys := concepts.Keys()
	result := make([]core.TermCount, len(keys))
	for i, k := range keys {
		result[i] = core.TermCount{Term: k, Count: concepts.Count(k)}
	}
	return result
}
