package extract

import (
	"strings"
	"testing"

	"github.com/poiesic/conceptmap/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tok(text string, pos core.POS, stop bool, sentence, head int) core.Token {
	return core.Token{
		Text:     text,
		Lower:    strings.ToLower(text),
		POS:      pos,
		IsStop:   stop,
		Sentence: sentence,
		Head:     head,
	}
}

// catAndMouse is "The cat chased the mouse. The mouse ran."
func catAndMouse() []core.Token {
	return []core.Token{
		tok("The", core.POSOther, true, 0, 1),
		tok("cat", core.POSNoun, false, 0, 2),
		tok("chased", core.POSVerb, false, 0, core.NoHead),
		tok("the", core.POSOther, true, 0, 4),
		tok("mouse", core.POSNoun, false, 0, 2),
		tok("The", core.POSOther, true, 1, 6),
		tok("mouse", core.POSNoun, false, 1, 7),
		tok("ran", core.POSVerb, false, 1, core.NoHead),
	}
}

// bicycle is "La bicicleta es un medio de transporte."
func bicycle() []core.Token {
	return []core.Token{
		tok("La", core.POSOther, true, 0, 1),
		tok("bicicleta", core.POSNoun, false, 0, core.NoHead),
		tok("es", core.POSVerb, true, 0, 1),
		tok("un", core.POSOther, true, 0, 4),
		tok("medio", core.POSNoun, false, 0, 2),
		tok("de", core.POSOther, true, 0, 6),
		tok("transporte", core.POSNoun, false, 0, 4),
	}
}

func TestExtractConcepts(t *testing.T) {
	t.Run("counts nouns by lowercase form", func(t *testing.T) {
		table := ExtractConcepts(catAndMouse())
		assert.Equal(t, map[string]int{"cat": 1, "mouse": 2}, table.Map())
		assert.Equal(t, []core.TermCount{{Term: "mouse", Count: 2}, {Term: "cat", Count: 1}}, table.Sorted())
	})

	t.Run("merges proper noun case variants", func(t *testing.T) {
		tokens := []core.Token{
			tok("Paris", core.POSPropn, false, 0, core.NoHead),
			tok("PARIS", core.POSPropn, false, 0, core.NoHead),
			{Text: "paris", POS: core.POSPropn, Head: core.NoHead},
		}
		table := ExtractConcepts(tokens)
		assert.Equal(t, map[string]int{"paris": 3}, table.Map())
	})

	t.Run("skips stop words and non-nouns", func(t *testing.T) {
		tokens := []core.Token{
			tok("cosa", core.POSNoun, true, 0, core.NoHead),
			tok("corre", core.POSVerb, false, 0, core.NoHead),
			tok("rápido", core.POSOther, false, 0, core.NoHead),
		}
		assert.Equal(t, 0, ExtractConcepts(tokens).Len())
	})

	t.Run("empty input", func(t *testing.T) {
		table := ExtractConcepts(nil)
		require.NotNil(t, table)
		assert.Equal(t, 0, table.Len())
	})
}

func TestExtractRelations_Cooccurrence(t *testing.T) {
	tokens := catAndMouse()
	rels := ExtractRelations(tokens, ExtractConcepts(tokens), core.StrategyCooccurrence)

	assert.Equal(t, core.RelationList{{Source: "cat", Target: "mouse", Weight: 1}}, rels)
}

func TestExtractRelations_CooccurrenceAccumulates(t *testing.T) {
	// "Cat mouse cat. Mouse cat."
	tokens := []core.Token{
		tok("Cat", core.POSNoun, false, 0, core.NoHead),
		tok("mouse", core.POSNoun, false, 0, core.NoHead),
		tok("cat", core.POSNoun, false, 0, core.NoHead),
		tok("Mouse", core.POSNoun, false, 1, core.NoHead),
		tok("cat", core.POSNoun, false, 1, core.NoHead),
	}

	rels := ExtractRelations(tokens, nil, core.StrategyCooccurrence)

	// Sentence 0 pairs: (cat,mouse) (cat,cat: dropped) (mouse,cat); sentence 1: (mouse,cat).
	require.Len(t, rels, 1)
	assert.Equal(t, "cat", rels[0].Source)
	assert.Equal(t, "mouse", rels[0].Target)
	assert.Equal(t, 3, rels[0].Weight)
}

func TestExtractRelations_CooccurrenceOrdering(t *testing.T) {
	// "A B. C D. C D."
	tokens := []core.Token{
		tok("a", core.POSNoun, false, 0, core.NoHead),
		tok("b", core.POSNoun, false, 0, core.NoHead),
		tok("c", core.POSNoun, false, 1, core.NoHead),
		tok("d", core.POSNoun, false, 1, core.NoHead),
		tok("e", core.POSNoun, false, 2, core.NoHead),
		tok("f", core.POSNoun, false, 2, core.NoHead),
		tok("c", core.POSNoun, false, 3, core.NoHead),
		tok("d", core.POSNoun, false, 3, core.NoHead),
	}

	rels := ExtractRelations(tokens, nil, core.StrategyCooccurrence)

	assert.Equal(t, core.RelationList{
		{Source: "c", Target: "d", Weight: 2},
		{Source: "a", Target: "b", Weight: 1},
		{Source: "e", Target: "f", Weight: 1},
	}, rels)
}

func TestExtractRelations_Dependency(t *testing.T) {
	tokens := bicycle()
	rels := ExtractRelations(tokens, ExtractConcepts(tokens), core.StrategyDependency)

	assert.Equal(t, core.RelationList{
		{Source: "bicicleta", Target: "es", Weight: 1},
		{Source: "medio", Target: "transporte", Weight: 1},
	}, rels)
}

func TestExtractRelations_DependencyDirectChildrenOnly(t *testing.T) {
	// casa <- puerta <- llave: llave is a grandchild of casa.
	tokens := []core.Token{
		tok("casa", core.POSNoun, false, 0, core.NoHead),
		tok("puerta", core.POSNoun, false, 0, 0),
		tok("llave", core.POSNoun, false, 0, 1),
		tok("abre", core.POSVerb, false, 0, 2),
		tok("grande", core.POSOther, false, 0, 0),
	}

	rels := ExtractRelations(tokens, nil, core.StrategyDependency)

	assert.Equal(t, core.RelationList{
		{Source: "casa", Target: "puerta", Weight: 1},
		{Source: "puerta", Target: "llave", Weight: 1},
		{Source: "llave", Target: "abre", Weight: 1},
	}, rels)
}

func TestExtractRelations_DependencyAccumulatesAndDropsSelfLoops(t *testing.T) {
	tokens := []core.Token{
		tok("perro", core.POSNoun, false, 0, core.NoHead),
		tok("ladra", core.POSVerb, false, 0, 0),
		tok("perro", core.POSNoun, false, 1, core.NoHead),
		tok("ladra", core.POSVerb, false, 1, 2),
		tok("Perro", core.POSNoun, false, 1, 2),
	}

	rels := ExtractRelations(tokens, nil, core.StrategyDependency)

	assert.Equal(t, core.RelationList{{Source: "perro", Target: "ladra", Weight: 2}}, rels)
}

func TestExtractRelations_ConceptFilter(t *testing.T) {
	tokens := catAndMouse()
	only := core.NewConceptTable()
	only.Add("mouse")

	rels := ExtractRelations(tokens, only, core.StrategyCooccurrence)
	assert.Empty(t, rels)
}

func TestExtractRelations_EmptyInput(t *testing.T) {
	for _, s := range []core.Strategy{core.StrategyDependency, core.StrategyCooccurrence} {
		t.Run(s.String(), func(t *testing.T) {
			assert.Empty(t, ExtractRelations(nil, core.NewConceptTable(), s))
		})
	}
}

func TestExtractRelations_UnknownStrategy(t *testing.T) {
	assert.Empty(t, ExtractRelations(catAndMouse(), nil, core.Strategy("window")))
}

func TestExtractRelations_Properties(t *testing.T) {
	// Three sentences with repeated mentions and a dependency tree.
	tokens := []core.Token{
		tok("Ana", core.POSPropn, false, 0, 1),
		tok("compra", core.POSVerb, false, 0, core.NoHead),
		tok("pan", core.POSNoun, false, 0, 1),
		tok("y", core.POSOther, true, 0, 4),
		tok("leche", core.POSNoun, false, 0, 2),
		tok("pan", core.POSNoun, false, 1, core.NoHead),
		tok("ana", core.POSPropn, false, 1, 5),
		tok("pan", core.POSNoun, false, 1, 5),
		tok("leche", core.POSNoun, false, 2, core.NoHead),
		tok("sabe", core.POSVerb, false, 2, 8),
	}

	for _, s := range []core.Strategy{core.StrategyDependency, core.StrategyCooccurrence} {
		t.Run(s.String(), func(t *testing.T) {
			concepts := ExtractConcepts(tokens)
			first := ExtractRelations(tokens, concepts, s)
			second := ExtractRelations(tokens, concepts, s)

			assert.Equal(t, first, second, "extraction must be deterministic")

			for _, r := range first {
				assert.NotEqual(t, r.Source, r.Target, "self-loop %v", r)
				assert.GreaterOrEqual(t, r.Weight, 1)
			}

			assert.Equal(t, observations(tokens, s), first.TotalWeight(),
				"merging must not drop observations")
		})
	}
}

// observations counts relation emissions before merging.
func observations(tokens []core.Token, s core.Strategy) int {
	n := 0
	switch s {
	case core.StrategyDependency:
		for i, parent := range tokens {
			if !parent.IsConcept() {
				continue
			}
			for _, child := range tokens {
				if child.Head != i || key(child) == key(parent) {
					continue
				}
				if child.POS == core.POSVerb || child.POS == core.POSNoun {
					n++
				}
			}
		}
	case core.StrategyCooccurrence:
		bySentence := map[int][]string{}
		for _, tk := range tokens {
			if tk.IsConcept() {
				bySentence[tk.Sentence] = append(bySentence[tk.Sentence], key(tk))
			}
		}
		for _, mentions := range bySentence {
			for i := range mentions {
				for j := i + 1; j < len(mentions); j++ {
					if mentions[i] != mentions[j] {
						n++
					}
				}
			}
		}
	}
	return n
}
