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


// Package conceptmap turns free text into weighted concept graphs.
//
// Open wires the annotation backend, the optional annotation cache, the
// model registry and the analysis pipeline from a config.Config:
//
//	cm, err := conceptmap.Open(conceptmap.WithConfig(cfg))
//	if err != nil { ... }
//	defer cm.Close()
//	result, err := cm.Analyze(ctx, pipeline.Request{Text: "La bicicleta es un medio de transporte."})
package conceptmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/conceptmap/annotate"
	"github.com/poiesic/conceptmap/annotate/llm"
	"github.com/poiesic/conceptmap/annotate/spacy"
	"github.com/poiesic/conceptmap/config"
	"github.com/poiesic/conceptmap/core"
	"github.com/poiesic/conceptmap/normalize"
	"github.com/poiesic/conceptmap/pipeline"
	"github.com/poiesic/conceptmap/storage"
	"github.com/poiesic/conceptmap/storage/badger"
)

// ConceptMap owns every component needed to analyze documents.
type ConceptMap struct {
	config    *config.Config
	registry  *annotate.Registry
	annotator *annotate.Annotator
	pipeline  *pipeline.Pipeline
	cache     storage.AnnotationRepository
	ownsCache bool
	logger    *slog.Logger
}

// Option configures Open.
type Option func(*options)

type options struct {
	config  *config.Config
	backend annotate.Backend
	cache   storage.AnnotationRepository
	logger  *slog.Logger
}

// WithConfig sets the configuration. Default is config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithBackend replaces the backend named by the configuration.
func WithBackend(backend annotate.Backend) Option {
	return func(o *options) {
		o.backend = backend
	}
}

// WithCache uses repo as the annotation cache instead of opening the
// configured cache directory. The caller keeps ownership of repo.
func WithCache(repo storage.AnnotationRepository) Option {
	return func(o *options) {
		o.cache = repo
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open builds a ConceptMap. Models are loaded lazily on first use.
func Open(opts ...Option) (*ConceptMap, error) {
	o := &options{
		config: config.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	cfg := o.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	annotateConfig := cfg.AnnotateConfig()
	if err := annotateConfig.Validate(); err != nil {
		return nil, err
	}

	backend := o.backend
	if backend == nil {
		var err error
		backend, err = newBackend(annotateConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s backend: %w", annotateConfig.Backend, err)
		}
	}

	registry, err := annotate.NewRegistry(backend,
		annotate.WithModels(modelNames(annotateConfig, backend.Name())),
		annotate.WithRegistryLogger(o.logger))
	if err != nil {
		return nil, err
	}

	cm := &ConceptMap{
		config:   cfg,
		registry: registry,
		cache:    o.cache,
		logger:   o.logger.With("component", "conceptmap"),
	}

	if cm.cache == nil && cfg.Cache.Dir != "" {
		cache, err := badger.OpenAnnotationRepository(cfg.Cache.Dir, badger.WithTTL(cfg.Cache.TTL))
		if err != nil {
			registry.Close()
			return nil, fmt.Errorf("failed to open annotation cache: %w", err)
		}
		cm.cache = cache
		cm.ownsCache = true
	}

	annotatorOpts := []annotate.Option{annotate.WithLogger(o.logger)}
	if cm.cache != nil {
		annotatorOpts = append(annotatorOpts, annotate.WithCache(cm.cache))
	}
	cm.annotator, err = annotate.NewAnnotator(registry, annotatorOpts...)
	if err != nil {
		cm.Close()
		return nil, err
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithStrategy(cfg.Strategy),
		pipeline.WithScale(cfg.Scale),
		pipeline.WithDefaultSize(cfg.DefaultSize),
		pipeline.WithLogger(o.logger),
	}
	if cfg.PoolSize > 0 {
		pipelineOpts = append(pipelineOpts, pipeline.WithPoolSize(cfg.PoolSize))
	}
	cm.pipeline, err = pipeline.NewPipeline(cm.annotator, pipelineOpts...)
	if err != nil {
		cm.Close()
		return nil, err
	}

	cm.logger.Debug("opened",
		"backend", backend.Name(),
		"language", cfg.Language,
		"strategy", cfg.Strategy,
		"cache", cm.cache != nil)
	return cm, nil
}

func newBackend(cfg *annotate.Config) (annotate.Backend, error) {
	switch cfg.Backend {
	case annotate.BackendLLM:
		return llm.NewBackend(cfg)
	default:
		return spacy.NewBackend(cfg)
	}
}

// modelNames returns the registry mapping. The llm backend serves every
// language with the one chat model.
func modelNames(cfg *annotate.Config, backend string) map[core.Language]string {
	if backend != llm.Name || cfg.LLMModel == "" {
		return cfg.Models
	}
	models := make(map[core.Language]string, len(core.Languages))
	for _, lang := range core.Languages {
		models[lang] = cfg.LLMModel
	}
	return models
}

// Config returns the validated configuration.
func (cm *ConceptMap) Config() *config.Config {
	return cm.config
}

// Pipeline returns the analysis pipeline.
func (cm *ConceptMap) Pipeline() *pipeline.Pipeline {
	return cm.pipeline
}

// Analyze analyzes one document. An empty request language means the
// configured default.
func (cm *ConceptMap) Analyze(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	return cm.pipeline.Analyze(ctx, cm.withDefaults(req))
}

// AnalyzeBatch analyzes documents concurrently. See pipeline.Pipeline.AnalyzeBatch.
func (cm *ConceptMap) AnalyzeBatch(ctx context.Context, reqs []pipeline.Request) ([]*pipeline.Result, error) {
	filled := make([]pipeline.Request, len(reqs))
	for i, req := range reqs {
		filled[i] = cm.withDefaults(req)
	}
	return cm.pipeline.AnalyzeBatch(ctx, filled)
}

// AnalyzeTokens analyzes tokens annotated elsewhere.
func (cm *ConceptMap) AnalyzeTokens(lang core.Language, tokens []core.Token, strategy core.Strategy) (*pipeline.Result, error) {
	if lang == "" {
		lang = cm.config.Language
	}
	return cm.pipeline.AnalyzeTokens(lang, tokens, strategy)
}

// Annotate prepares text and returns its annotated tokens without
// extracting anything.
func (cm *ConceptMap) Annotate(ctx context.Context, text string, lang core.Language) ([]core.Token, error) {
	if lang == "" {
		lang = cm.config.Language
	}
	return cm.annotator.Annotate(ctx, normalize.Prepare(text), lang)
}

// Acquire fetches the model for lang from its source.
func (cm *ConceptMap) Acquire(ctx context.Context, lang core.Language) error {
	if lang == "" {
		lang = cm.config.Language
	}
	return cm.registry.Acquire(ctx, lang)
}

// Close releases the pipeline, unloads models and closes an owned cache.
func (cm *ConceptMap) Close() error {
	if cm.pipeline != nil {
		cm.pipeline.Release()
	}

	var errs []error
	if err := cm.registry.Close(); err != nil {
		cm.logger.Error("error closing model registry", "err", err)
		errs = append(errs, err)
	}
	if cm.ownsCache {
		if err := cm.cache.Close(); err != nil {
			cm.logger.Error("error closing annotation cache", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (cm *ConceptMap) withDefaults(req pipeline.Request) pipeline.Request {
	if req.Language == "" {
		req.Language = cm.config.Language
	}
	return req
}
