package storage

import (
	"testing"

	"github.com/poiesic/conceptmap/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTokens() []core.Token {
	return []core.Token{
		{Text: "La", Lower: "la", POS: core.POSOther, IsStop: true, Sentence: 0, Head: 1},
		{Text: "bicicleta", Lower: "bicicleta", POS: core.POSNoun, Sentence: 0, Head: 2},
		{Text: "es", Lower: "es", POS: core.POSVerb, IsStop: true, Sentence: 0, Head: core.NoHead},
		{Text: "Ecológico", Lower: "ecológico", POS: core.POSOther, Sentence: 1, Head: core.NoHead},
	}
}

func TestMarshalTokens(t *testing.T) {
	tokens := sampleTokens()

	data := MarshalTokens(tokens)
	require.NotEmpty(t, data)
	assert.Equal(t, tokensVersion, data[0])

	got, err := UnmarshalTokens(data)
	require.NoError(t, err)
	assert.Equal(t, tokens, got)
}

func TestMarshalTokens_Empty(t *testing.T) {
	data := MarshalTokens(nil)

	got, err := UnmarshalTokens(data)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnmarshalTokens_Errors(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		_, err := UnmarshalTokens(nil)
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("unknown version", func(t *testing.T) {
		data := MarshalTokens(sampleTokens())
		data[0] = 99
		_, err := UnmarshalTokens(data)
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("truncated", func(t *testing.T) {
		data := MarshalTokens(sampleTokens())
		_, err := UnmarshalTokens(data[:len(data)-3])
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		data := append(MarshalTokens(sampleTokens()), 0)
		_, err := UnmarshalTokens(data)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}

func TestTokenMUS_Size(t *testing.T) {
	for _, tok := range sampleTokens() {
		buf := make([]byte, TokenMUS.Size(tok))
		assert.Equal(t, len(buf), TokenMUS.Marshal(tok, buf))
	}
}
