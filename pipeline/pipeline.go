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


package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/conceptmap/annotate"
	"github.com/poiesic/conceptmap/core"
	"github.com/poiesic/conceptmap/extract"
	"github.com/poiesic/conceptmap/graph"
	"github.com/poiesic/conceptmap/normalize"
)

// Annotator produces annotated tokens for normalized text.
// *annotate.Annotator implements it.
type Annotator interface {
	Annotate(ctx context.Context, text string, lang core.Language) ([]core.Token, error)
}

// Pipeline orchestrates normalization, annotation, extraction and graph building.
// It is safe for concurrent use.
type Pipeline struct {
	annotator   Annotator
	strategy    core.Strategy
	scale       int
	defaultSize int
	pool        *ants.Pool
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithStrategy sets the relation strategy used when a request names none.
// Default is core.StrategyDependency.
func WithStrategy(strategy core.Strategy) Option {
	return func(p *Pipeline) error {
		s, err := core.ParseStrategy(string(strategy))
		if err != nil {
			return err
		}
		p.strategy = s
		return nil
	}
}

// WithScale sets the node size per concept occurrence.
// Zero keeps graph.DefaultScale.
func WithScale(scale int) Option {
	return func(p *Pipeline) error {
		if scale < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidScale, scale)
		}
		p.scale = scale
		return nil
	}
}

// WithDefaultSize sets the size of nodes created for relation endpoints that
// are not concepts. Zero means the scale.
func WithDefaultSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidScale, size)
		}
		p.defaultSize = size
		return nil
	}
}

// WithPoolSize sets the worker pool size for batch analysis.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new analysis pipeline.
func NewPipeline(annotator Annotator, opts ...Option) (*Pipeline, error) {
	if annotator == nil {
		return nil, ErrAnnotatorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		annotator: annotator,
		strategy:  core.StrategyDependency,
		pool:      pool,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "pipeline")

	return p, nil
}

// Strategy returns the default relation strategy.
func (p *Pipeline) Strategy() core.Strategy {
	return p.strategy
}

// Analyze runs the whole pipeline on one document.
//
// The language and strategy are checked before any work. Annotation
// failures are returned unchanged, so callers can test them with
// errors.Is against core.ErrUnsupportedLanguage and
// core.ErrModelUnavailable. No partial result is returned on error.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (*Result, error) {
	strategy, err := p.resolve(req.Language, req.Strategy)
	if err != nil {
		return nil, err
	}

	text := normalize.Prepare(req.Text)
	tokens, err := p.annotator.Annotate(ctx, text, req.Language)
	if err != nil {
		return nil, err
	}

	result := p.build(req.Language, strategy, text, tokens)
	p.logger.Debug("analyzed document",
		"language", req.Language,
		"strategy", strategy,
		"tokens", len(tokens),
		"concepts", result.Concepts.Len(),
		"relations", len(result.Relations),
		"nodes", result.Graph.NodeCount(),
		"edges", result.Graph.EdgeCount())
	return result, nil
}

// AnalyzeTokens runs extraction and graph building on tokens annotated
// elsewhere, such as a CoNLL-U file. Lower and IsStop are recomputed for
// lang and broken heads are dropped before extraction.
func (p *Pipeline) AnalyzeTokens(lang core.Language, tokens []core.Token, strategy core.Strategy) (*Result, error) {
	strategy, err := p.resolve(lang, strategy)
	if err != nil {
		return nil, err
	}

	tokens = annotate.Finalize(tokens, lang)
	if err := core.ValidateTokens(tokens); err != nil {
		return nil, err
	}
	return p.build(lang, strategy, "", tokens), nil
}

// AnalyzeBatch analyzes independent documents concurrently on the worker pool.
//
// The returned slice is parallel to reqs; entries for failed documents are
// nil. Failures are joined into the returned error, each wrapped with the
// index of its document.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, reqs []Request) ([]*Result, error) {
	results := make([]*Result, len(reqs))
	errs := make([]error, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[i] = fmt.Errorf("document %d: %w", i, err)
				return
			}
			result, err := p.Analyze(ctx, req)
			if err != nil {
				errs[i] = fmt.Errorf("document %d: %w", i, err)
				return
			}
			results[i] = result
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = fmt.Errorf("document %d: %w", i, submitErr)
		}
	}
	wg.Wait()

	err := errors.Join(errs...)
	if err != nil {
		p.logger.Warn("batch analysis finished with errors", "documents", len(reqs), "err", err)
	}
	return results, err
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// resolve validates the language and picks the strategy for a request.
func (p *Pipeline) resolve(lang core.Language, strategy core.Strategy) (core.Strategy, error) {
	if err := core.ValidateLanguage(lang); err != nil {
		return "", err
	}
	if strategy == "" {
		return p.strategy, nil
	}
	return core.ParseStrategy(string(strategy))
}

func (p *Pipeline) build(lang core.Language, strategy core.Strategy, text string, tokens []core.Token) *Result {
	concepts := extract.ExtractConcepts(tokens)
	relations := extract.ExtractRelations(tokens, concepts, strategy)
	g := graph.Build(concepts, relations, strategy.Directed(),
		graph.WithScale(p.scale),
		graph.WithDefaultSize(p.defaultSize))

	return &Result{
		Language:  lang,
		Strategy:  strategy,
		Text:      text,
		Tokens:    tokens,
		Concepts:  concepts,
		Relations: relations,
		Graph:     g,
	}
}
