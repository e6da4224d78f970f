package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
		{"collapses whitespace", "The  cat\n\tchased", "The cat chased"},
		{"strips punctuation", "The cat chased the mouse. The mouse ran!", "The cat chased the mouse The mouse ran"},
		{"keeps accents", "La bicicleta es un medio ecológico, ¿verdad?", "La bicicleta es un medio ecológico verdad"},
		{"keeps digits", "Año 2024: 3 ruedas", "Año 2024 3 ruedas"},
		{"preserves case", "ÁRBOL Niño", "ÁRBOL Niño"},
		{"composes decomposed accents", "ecolo\u0301gico", "ecológico"},
		{"joins across removed symbols", "e-mail", "email"},
		{"trims edges", "  hola mundo  ", "hola mundo"},
		{"punctuation between spaces", "gato - ratón", "gato ratón"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"The cat chased the mouse. The mouse ran.",
		"  ¡Hola!\n\n¿Qué tal?  ",
		"ecolo\u0301gico — transporte",
		"a b c",
		"tabs\tand\r\nnewlines",
		"emoji 🚲 bicycle",
		"ÑANDÚ ñandú",
		"\u1100.\u1161",
		"\u1100\u200b\u1161 \u1100-\u1161\u11a8",
		"e\u00b7\u0301",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_ComposesAcrossRemovedRunes(t *testing.T) {
	// Hangul jamo split by a full stop compose once the stop is removed.
	assert.Equal(t, "\uac00", Normalize("\u1100.\u1161"))
}

func TestPrepare(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"keeps sentence terminators", "The cat chased the mouse.  The mouse ran.", "The cat chased the mouse. The mouse ran."},
		{"collapses whitespace", "  ¿Qué\n\ttal?  ", "¿Qué tal?"},
		{"composes decomposed accents", "ecolo\u0301gico.", "ecológico."},
		{"drops control runes", "a\x00b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Prepare(tt.in))
		})
	}
}

func TestPrepare_NormalizeAgrees(t *testing.T) {
	for _, in := range []string{"La bicicleta, es un medio.", "e-mail\n\nAño 2024!", "ecolo\u0301gico"} {
		assert.Equal(t, Normalize(in), Normalize(Prepare(in)), "input %q", in)
	}
}
