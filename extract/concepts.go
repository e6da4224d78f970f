package extract

import (
	"strings"

	"github.com/poiesic/conceptmap/core"
)

// ExtractConcepts counts the tokens that qualify as concepts.
// The returned table lists concepts in the order they first appear.
func ExtractConcepts(tokens []core.Token) *core.ConceptTable {
	table := core.NewConceptTable()
	for _, tok := range tokens {
		if tok.IsConcept() {
			table.Add(key(tok))
		}
	}
	return table
}

// key returns the lowercase key a token is counted and related under.
func key(tok core.Token) string {
	if tok.Lower != "" {
		return tok.Lower
	}
	return strings.ToLower(tok.Text)
}
