package core

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
// It keys cached annotations so identical inputs resolve to the same entry.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Language identifies the language of the analyzed text.
// The set of languages is closed; see ParseLanguage.
type Language string

const (
	// LanguageSpanish is Spanish ("es").
	LanguageSpanish Language = "es"
	// LanguageEnglish is English ("en").
	LanguageEnglish Language = "en"
)

// Languages lists every supported language in a stable order.
var Languages = []Language{LanguageSpanish, LanguageEnglish}

// ParseLanguage converts a language code to a Language.
// Codes are matched case-insensitively after trimming whitespace.
func ParseLanguage(code string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(code)))
	if err := ValidateLanguage(lang); err != nil {
		return "", err
	}
	return lang, nil
}

// String returns the language code.
func (l Language) String() string {
	return string(l)
}

// POS is the coarse part-of-speech class of a token.
// Only the classes the extractors care about are distinguished.
type POS int

const (
	// POSOther covers every tag that is not a noun, proper noun or verb.
	POSOther POS = iota
	// POSNoun is a common noun (UD "NOUN").
	POSNoun
	// POSPropn is a proper noun (UD "PROPN").
	POSPropn
	// POSVerb is a verb (UD "VERB").
	POSVerb
)

// ParsePOS maps a Universal Dependencies tag to a POS.
// Unknown or empty tags map to POSOther.
func ParsePOS(tag string) POS {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "NOUN":
		return POSNoun
	case "PROPN":
		return POSPropn
	case "VERB":
		return POSVerb
	default:
		return POSOther
	}
}

// String returns the Universal Dependencies tag for the POS.
func (p POS) String() string {
	switch p {
	case POSNoun:
		return "NOUN"
	case POSPropn:
		return "PROPN"
	case POSVerb:
		return "VERB"
	default:
		return "OTHER"
	}
}

// IsNominal reports whether the POS is a noun or a proper noun.
func (p POS) IsNominal() bool {
	return p == POSNoun || p == POSPropn
}

// NoHead marks a token without a dependency parent (a sentence root,
// or a token from an annotator that does not parse dependencies).
const NoHead = -1

// Token is a single annotated token produced by an annotator.
// Tokens are produced once per input text and are not modified afterwards.
type Token struct {
	Text     string // Surface text as it appears in the input
	Lower    string // Lowercase form of Text
	POS      POS
	IsStop   bool // Stop-word flag from the language dictionary
	Sentence int  // 0-based sentence index, non-decreasing across a sequence
	Head     int  // Index of the dependency parent in the same sequence, or NoHead
}

// HasHead reports whether the token has a dependency parent.
func (t Token) HasHead() bool {
	return t.Head != NoHead
}

// IsConcept reports whether the token qualifies as a concept:
// a noun or proper noun that is not a stop word.
func (t Token) IsConcept() bool {
	return t.POS.IsNominal() && !t.IsStop
}

// Strategy selects how relations between concepts are derived.
type Strategy string

const (
	// StrategyDependency relates concepts to their direct syntactic children.
	// Relations are directed.
	StrategyDependency Strategy = "dependency"
	// StrategyCooccurrence relates concepts appearing in the same sentence.
	// Relations are undirected.
	StrategyCooccurrence Strategy = "cooccurrence"
)

// ParseStrategy converts a strategy name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	switch s {
	case StrategyDependency, StrategyCooccurrence:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, name)
	}
}

// Directed reports whether graphs built with this strategy are directed.
func (s Strategy) Directed() bool {
	return s == StrategyDependency
}

// String returns the strategy name.
func (s Strategy) String() string {
	return string(s)
}
