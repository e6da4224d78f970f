package pipeline

import "github.com/poiesic/conceptmap/core"

// Request is one document to analyze.
type Request struct {
	// Text is the raw input. It is prepared with normalize.Prepare before annotation.
	Text string

	// Language is the language of Text.
	Language core.Language

	// Strategy selects how relations are inferred.
	// Empty means the pipeline default.
	Strategy core.Strategy
}

// Result holds everything derived from one document.
type Result struct {
	// Language and Strategy are the values the document was analyzed with.
	Language core.Language
	Strategy core.Strategy

	// Text is the prepared input handed to the annotator. Punctuation is kept
	// so the annotator can segment sentences.
	Text string

	Tokens    []core.Token
	Concepts  *core.ConceptTable
	Relations core.RelationList
	Graph     *core.Graph
}

// Empty reports whether the document produced no concepts and no graph.
// Empty input is not an error; callers decide whether to warn.
func (r *Result) Empty() bool {
	return r.Concepts.Len() == 0 && r.Graph.NodeCount() == 0
}

// TopTerms returns the n most frequent concepts, ties in first-seen order.
// n <= 0 returns every concept.
func (r *Result) TopTerms(n int) []core.TermCount {
	return r.Concepts.Top(n)
}
