// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/conceptmap/core"
)

// tokensVersion prefixes every serialized token sequence.
const tokensVersion byte = 1

// TokenMUS serializes a single core.Token in MUS format.
var TokenMUS = tokenMUS{}

type tokenMUS struct{}

// Marshal writes t into bs and returns the number of bytes used.
// bs must be at least Size(t) long.
func (tokenMUS) Marshal(t core.Token, bs []byte) (n int) {
	n = ord.String.Marshal(t.Text, bs)
	n += ord.String.Marshal(t.Lower, bs[n:])
	n += varint.Int.Marshal(int(t.POS), bs[n:])
	n += ord.Bool.Marshal(t.IsStop, bs[n:])
	n += varint.Int.Marshal(t.Sentence, bs[n:])
	n += varint.Int.Marshal(t.Head, bs[n:])
	return n
}

// Unmarshal reads a token from bs.
func (tokenMUS) Unmarshal(bs []byte) (t core.Token, n int, err error) {
	var (
		m   int
		pos int
	)
	t.Text, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	t.Lower, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	pos, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	t.POS = core.POS(pos)
	t.IsStop, m, err = ord.Bool.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	t.Sentence, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	t.Head, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	return
}

// Size returns the number of bytes Marshal needs for t.
func (tokenMUS) Size(t core.Token) (size int) {
	size = ord.String.Size(t.Text)
	size += ord.String.Size(t.Lower)
	size += varint.Int.Size(int(t.POS))
	size += ord.Bool.Size(t.IsStop)
	size += varint.Int.Size(t.Sentence)
	return size + varint.Int.Size(t.Head)
}

// MarshalTokens serializes a token sequence to bytes.
// The layout is a version byte, the token count and the tokens in order.
func MarshalTokens(tokens []core.Token) []byte {
	size := 1 + varint.Int.Size(len(tokens))
	for _, t := range tokens {
		size += TokenMUS.Size(t)
	}

	buf := make([]byte, size)
	buf[0] = tokensVersion
	n := 1 + varint.Int.Marshal(len(tokens), buf[1:])
	for _, t := range tokens {
		n += TokenMUS.Marshal(t, buf[n:])
	}
	return buf
}

// UnmarshalTokens deserializes a token sequence produced by MarshalTokens.
func UnmarshalTokens(data []byte) ([]core.Token, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedData
	}
	if data[0] != tokensVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data[0])
	}

	count, m, err := varint.Int.Unmarshal(data[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: token count: %w", ErrSerializationFailed, err)
	}
	if count < 0 || count > len(data) {
		return nil, fmt.Errorf("%w: token count %d", ErrSerializationFailed, count)
	}

	n := 1 + m
	tokens := make([]core.Token, 0, count)
	for i := range count {
		t, m, err := TokenMUS.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: token %d: %w", ErrSerializationFailed, i, err)
		}
		n += m
		tokens = append(tokens, t)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return tokens, nil
}
