// Package normalize canonicalizes raw text before linguistic annotation.
//
// Two forms are produced. Prepare only composes the text to NFC and
// collapses whitespace, so punctuation survives for sentence
// segmentation; it is what the annotator sees. Normalize additionally
// drops every rune that is not a letter, a digit or whitespace; it is
// applied to each annotated token's surface form. Case is preserved by
// both.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical form of raw.
//
// Accented letters are kept: the input is composed to NFC first so that a
// base letter followed by a combining accent becomes a single letter rune
// instead of leaving a stray mark behind. Punctuation and symbols are
// removed without inserting a space, so "e-mail" becomes "email".
// Removing a rune can leave a composable pair side by side, so the
// filtered text is composed again.
// Leading and trailing whitespace is trimmed.
//
// Normalize is total and idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	return norm.NFC.String(collapse(norm.NFC.String(raw), keepWord))
}

// Prepare composes raw to NFC and collapses every run of whitespace to a
// single space, trimming the ends. Punctuation is kept.
func Prepare(raw string) string {
	if raw == "" {
		return ""
	}
	return collapse(norm.NFC.String(raw), keepAny)
}

func keepWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func keepAny(r rune) bool {
	return unicode.IsPrint(r) || unicode.IsMark(r)
}

// collapse writes the runes accepted by keep, with whitespace runs
// reduced to one space between kept runes.
func collapse(s string, keep func(rune) bool) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case keep(r):
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
