package extract

import (
	"slices"

	"github.com/poiesic/conceptmap/core"
)

// ExtractRelations derives relations between concepts using the given strategy.
//
// When concepts is non-nil only tokens whose key is in the table act as
// concepts, which lets callers restrict the graph to a subset such as the
// most frequent terms. A nil table admits every token that qualifies.
//
// The result is sorted by descending weight; relations with equal weight
// keep the order in which they were first observed. An unknown strategy
// yields an empty list.
func ExtractRelations(tokens []core.Token, concepts *core.ConceptTable, strategy core.Strategy) core.RelationList {
	acc := newAccumulator(strategy.Directed())

	switch strategy {
	case core.StrategyDependency:
		dependencyRelations(tokens, concepts, acc)
	case core.StrategyCooccurrence:
		cooccurrenceRelations(tokens, concepts, acc)
	}

	return acc.relations()
}

// isConcept reports whether tok acts as a concept under the optional filter.
func isConcept(tok core.Token, concepts *core.ConceptTable) bool {
	if !tok.IsConcept() {
		return false
	}
	return concepts == nil || concepts.Has(key(tok))
}

// dependencyRelations relates every concept to its direct syntactic children.
// Verb children and noun children produce a relation concept -> child.
func dependencyRelations(tokens []core.Token, concepts *core.ConceptTable, acc *accumulator) {
	children := make(map[int][]int)
	for i, tok := range tokens {
		if tok.HasHead() {
			children[tok.Head] = append(children[tok.Head], i)
		}
	}

	for i, tok := range tokens {
		if !isConcept(tok, concepts) {
			continue
		}
		for _, c := range children[i] {
			child := tokens[c]
			switch child.POS {
			case core.POSVerb, core.POSNoun:
				acc.add(key(tok), key(child))
			}
		}
	}
}

// cooccurrenceRelations relates every pair of concepts sharing a sentence.
// Duplicate mentions are kept, so a concept mentioned twice next to another
// relates to it twice.
func cooccurrenceRelations(tokens []core.Token, concepts *core.ConceptTable, acc *accumulator) {
	var (
		sentence = -1
		mentions []string
	)

	flush := func() {
		for i := 0; i < len(mentions); i++ {
			for j := i + 1; j < len(mentions); j++ {
				acc.add(mentions[i], mentions[j])
			}
		}
		mentions = mentions[:0]
	}

	for _, tok := range tokens {
		if tok.Sentence != sentence {
			flush()
			sentence = tok.Sentence
		}
		if isConcept(tok, concepts) {
			mentions = append(mentions, key(tok))
		}
	}
	flush()
}

// pair identifies a relation. Undirected pairs are stored in canonical order.
type pair struct {
	a, b string
}

// accumulator sums repeated observations of the same pair.
type accumulator struct {
	directed bool
	index    map[pair]int
	list     core.RelationList
}

func newAccumulator(directed bool) *accumulator {
	return &accumulator{
		directed: directed,
		index:    make(map[pair]int),
	}
}

// add records one observation of source related to target.
// Self-relations are dropped.
func (a *accumulator) add(source, target string) {
	if source == target {
		return
	}

	p := pair{a: source, b: target}
	if !a.directed && target < source {
		p = pair{a: target, b: source}
	}

	if idx, ok := a.index[p]; ok {
		a.list[idx].Weight++
		return
	}
	a.index[p] = len(a.list)
	a.list = append(a.list, core.Relation{Source: source, Target: target, Weight: 1})
}

func (a *accumulator) relations() core.RelationList {
	result := slices.Clone(a.list)
	slices.SortStableFunc(result, func(x, y core.Relation) int {
		return y.Weight - x.Weight
	})
	return result
}
