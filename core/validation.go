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


package core

import (
	"fmt"
	"slices"
)

// ValidateLanguage checks that a Language is one of the supported codes.
func ValidateLanguage(lang Language) error {
	if !slices.Contains(Languages, lang) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, string(lang))
	}
	return nil
}

// ValidateTokens validates a token sequence according to annotation rules.
//
// Validation rules:
//   - Sentence indexes must be non-negative and non-decreasing
//   - Head must be NoHead or an index inside the sequence other than the token itself
//
// NOT validated:
//   - Lower and IsStop (filled in by the annotator after the backend runs)
//   - Heads crossing sentence boundaries (backends never produce them)
func ValidateTokens(tokens []Token) error {
	prev := 0
	for i, tok := range tokens {
		if tok.Sentence < prev {
			return fmt.Errorf("%w: %w: token %d has sentence %d after %d",
				ErrInvalidTokens, ErrSentenceOrder, i, tok.Sentence, prev)
		}
		prev = tok.Sentence

		if tok.Head == NoHead {
			continue
		}
		if tok.Head < 0 || tok.Head >= len(tokens) || tok.Head == i {
			return fmt.Errorf("%w: %w: token %d has head %d",
				ErrInvalidTokens, ErrHeadOutOfRange, i, tok.Head)
		}
	}
	return nil
}
