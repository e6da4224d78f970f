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


package annotate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/conceptmap/core"
	"github.com/poiesic/conceptmap/normalize"
	"github.com/poiesic/conceptmap/storage"
)

// Annotator produces annotated token sequences from prepared text.
// It is safe for concurrent use.
type Annotator struct {
	registry *Registry
	cache    storage.AnnotationRepository
	logger   *slog.Logger
}

// Option is a functional option for configuring an Annotator.
type Option func(*Annotator) error

// WithCache stores annotator output in repo and reuses it for identical input.
func WithCache(repo storage.AnnotationRepository) Option {
	return func(a *Annotator) error {
		a.cache = repo
		return nil
	}
}

// WithLogger sets the logger used by the annotator.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Annotator) error {
		if logger != nil {
			a.logger = logger
		}
		return nil
	}
}

// NewAnnotator creates an annotator that runs the models held by registry.
func NewAnnotator(registry *Registry, opts ...Option) (*Annotator, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}

	a := &Annotator{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.logger = a.logger.With("component", "annotator")
	return a, nil
}

// Registry returns the model registry used by the annotator.
func (a *Annotator) Registry() *Registry {
	return a.registry
}

// Annotate tokenizes, tags and parses text in the given language.
//
// The language is checked before any model work; an unsupported language
// fails with core.ErrUnsupportedLanguage and no tokens. Text should keep
// its punctuation (see normalize.Prepare) so the model can find sentence
// boundaries. Text without any letter or digit yields an empty sequence
// without loading a model. Model failures wrap core.ErrModelUnavailable.
// The returned tokens are finalized (see Finalize) and always pass
// core.ValidateTokens.
func (a *Annotator) Annotate(ctx context.Context, text string, lang core.Language) ([]core.Token, error) {
	modelName, err := a.registry.ModelName(lang)
	if err != nil {
		return nil, err
	}
	if normalize.Normalize(text) == "" {
		return []core.Token{}, nil
	}

	key := a.cacheKey(modelName, lang, text)
	if tokens, ok := a.cached(ctx, key); ok {
		return tokens, nil
	}

	model, err := a.registry.Model(ctx, lang)
	if err != nil {
		return nil, err
	}

	raw, err := model.Annotate(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w: %s: %w", core.ErrModelUnavailable, ErrAnnotationFailed, modelName, err)
	}

	tokens := Finalize(raw, lang)
	if err := core.ValidateTokens(tokens); err != nil {
		return nil, fmt.Errorf("%w: %w: %s: %w", core.ErrModelUnavailable, ErrAnnotationFailed, modelName, err)
	}

	a.logger.Debug("annotated text", "language", lang, "model", modelName, "tokens", len(tokens))
	a.store(ctx, key, tokens)
	return tokens, nil
}

// Finalize turns backend output into the canonical token sequence.
//
// Each surface form is passed through normalize.Normalize; tokens left
// empty (punctuation, symbols) are dropped. A head that pointed at a
// dropped token is moved up to that token's own head until a kept token
// or the root is reached. Lower is the lowercase surface form and IsStop
// comes from the stop-word dictionary of lang. Heads that point outside
// the sequence or at the token itself become core.NoHead. Sentence
// indexes are clamped so they never decrease and renumbered from zero
// without gaps, so a sentence made only of punctuation disappears.
// The input is not modified.
func Finalize(raw []core.Token, lang core.Language) []core.Token {
	texts := make([]string, len(raw))
	index := make([]int, len(raw))
	kept := 0
	for i, tok := range raw {
		texts[i] = normalize.Normalize(tok.Text)
		index[i] = -1
		if texts[i] != "" {
			index[i] = kept
			kept++
		}
	}

	tokens := make([]core.Token, 0, kept)
	last, sentence := 0, -1
	for i, tok := range raw {
		if index[i] < 0 {
			continue
		}
		tok.Text = texts[i]
		tok.Lower = strings.ToLower(tok.Text)
		tok.IsStop = IsStopWord(lang, tok.Lower)

		if sentence < 0 || tok.Sentence > last {
			sentence++
		}
		last = max(last, tok.Sentence)
		tok.Sentence = sentence

		tok.Head = resolveHead(raw, index, i)
		tokens = append(tokens, tok)
	}
	return tokens
}

// resolveHead returns the new index of the nearest kept ancestor of raw[i],
// or core.NoHead.
func resolveHead(raw []core.Token, index []int, i int) int {
	head := raw[i].Head
	for steps := 0; steps < len(raw); steps++ {
		if head < 0 || head >= len(raw) || head == i {
			return core.NoHead
		}
		if index[head] >= 0 {
			return index[head]
		}
		head = raw[head].Head
	}
	return core.NoHead
}

func (a *Annotator) cacheKey(modelName string, lang core.Language, text string) core.ID {
	return core.IDFromContent(strings.Join([]string{a.registry.BackendName(), modelName, string(lang), text}, "\x00"))
}

func (a *Annotator) cached(ctx context.Context, key core.ID) ([]core.Token, bool) {
	if a.cache == nil {
		return nil, false
	}
	tokens, err := a.cache.GetAnnotation(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.logger.Warn("annotation cache read failed", "err", err)
		}
		return nil, false
	}
	if core.ValidateTokens(tokens) != nil {
		a.logger.Warn("discarding invalid cached annotation", "key", key)
		return nil, false
	}
	a.logger.Debug("annotation cache hit", "key", key, "tokens", len(tokens))
	return tokens, true
}

func (a *Annotator) store(ctx context.Context, key core.ID, tokens []core.Token) {
	if a.cache == nil {
		return
	}
	if err := a.cache.PutAnnotation(ctx, key, tokens); err != nil {
		a.logger.Warn("annotation cache write failed", "err", err)
	}
}
