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

import "errors"

// Analysis errors surfaced to callers of the pipeline.
var (
	// ErrUnsupportedLanguage indicates no model exists for the requested language.
	// It is fatal for the request and is never retried.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrModelUnavailable indicates the language model is missing or broken
	// after one acquisition attempt. It is fatal for the request.
	ErrModelUnavailable = errors.New("language model unavailable")
)

// Domain validation errors
var (
	// ErrInvalidStrategy indicates an unknown relation strategy name.
	ErrInvalidStrategy = errors.New("invalid relation strategy")

	// ErrInvalidTokens indicates a token sequence failed validation.
	ErrInvalidTokens = errors.New("invalid token sequence")

	// ErrSentenceOrder indicates sentence indexes decrease within a sequence.
	ErrSentenceOrder = errors.New("sentence index must be non-decreasing")

	// ErrHeadOutOfRange indicates a dependency head points outside the sequence.
	ErrHeadOutOfRange = errors.New("dependency head out of range")
)
