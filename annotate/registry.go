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
	"maps"
	"sync"

	"github.com/poiesic/conceptmap/core"
	"golang.org/x/sync/singleflight"
)

// Registry lazily loads one model per language and keeps it for the life
// of the process.
//
// Concurrent first uses of a language collapse into a single load. Once a
// model is loaded, lookups only take the read lock. Models are closed by
// Close and never evicted before that.
type Registry struct {
	backend Backend
	models  map[core.Language]string
	logger  *slog.Logger

	mu     sync.RWMutex
	loaded map[core.Language]Model
	closed bool

	group singleflight.Group
}

// RegistryOption is a functional option for configuring a Registry.
type RegistryOption func(*Registry) error

// WithModels replaces the language to model name mapping.
// Languages missing from the map are reported as unsupported.
func WithModels(models map[core.Language]string) RegistryOption {
	return func(r *Registry) error {
		for lang, name := range models {
			if err := core.ValidateLanguage(lang); err != nil {
				return err
			}
			if name == "" {
				return fmt.Errorf("empty model name for language %q", lang)
			}
		}
		r.models = maps.Clone(models)
		return nil
	}
}

// WithRegistryLogger sets the logger used by the registry.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) error {
		if logger != nil {
			r.logger = logger
		}
		return nil
	}
}

// NewRegistry creates a registry over the given backend.
// Without WithModels the registry uses DefaultModels.
func NewRegistry(backend Backend, opts ...RegistryOption) (*Registry, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}

	r := &Registry{
		backend: backend,
		models:  DefaultModels(),
		logger:  slog.Default(),
		loaded:  make(map[core.Language]Model),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "model-registry", "backend", backend.Name())
	return r, nil
}

// BackendName returns the name of the underlying backend.
func (r *Registry) BackendName() string {
	return r.backend.Name()
}

// ModelName returns the model configured for a language.
// Returns core.ErrUnsupportedLanguage for languages without a model.
func (r *Registry) ModelName(lang core.Language) (string, error) {
	if err := core.ValidateLanguage(lang); err != nil {
		return "", err
	}
	name, ok := r.models[lang]
	if !ok {
		return "", fmt.Errorf("%w: no model configured for %q", core.ErrUnsupportedLanguage, string(lang))
	}
	return name, nil
}

// Loaded reports whether the model for a language is in memory.
func (r *Registry) Loaded(lang core.Language) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loaded[lang]
	return ok
}

// Model returns the model for a language, loading it on first use.
//
// If the backend reports the model missing, the registry acquires it once
// and loads again. Failures are wrapped in core.ErrModelUnavailable and are
// not cached.
//
// The shared load is not tied to any one caller's context. A caller whose
// ctx ends first gets ctx.Err() unchanged while the load goes on for the
// other waiters.
func (r *Registry) Model(ctx context.Context, lang core.Language) (Model, error) {
	name, err := r.ModelName(lang)
	if err != nil {
		return nil, err
	}

	if m, err := r.lookup(lang); m != nil || err != nil {
		return m, err
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(string(lang), func() (any, error) {
		if m, err := r.lookup(lang); m != nil || err != nil {
			return m, err
		}

		m, err := r.load(loadCtx, lang, name)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			m.Close()
			return nil, ErrRegistryClosed
		}
		r.loaded[lang] = m
		return m, nil
	})

	select {
	case <-ctx.Done():
		r.logger.Debug("stopped waiting for model", "language", lang, "model", name, "err", ctx.Err())
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			r.logger.Debug("shared model load", "language", lang, "model", name)
		}
		return res.Val.(Model), nil
	}
}

// Acquire asks the backend to install the model for a language.
// It does not load the model.
func (r *Registry) Acquire(ctx context.Context, lang core.Language) error {
	name, err := r.ModelName(lang)
	if err != nil {
		return err
	}
	r.logger.Info("acquiring model", "language", lang, "model", name)
	if err := r.backend.Acquire(ctx, lang, name); err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrModelUnavailable, name, err)
	}
	return nil
}

// Close closes every loaded model. The registry cannot be used afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	for lang, m := range r.loaded {
		if err := m.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s model: %w", lang, err))
		}
	}
	clear(r.loaded)
	return errors.Join(errs...)
}

func (r *Registry) lookup(lang core.Language) (Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	return r.loaded[lang], nil
}

func (r *Registry) load(ctx context.Context, lang core.Language, name string) (Model, error) {
	logger := r.logger.With("language", lang, "model", name)

	m, err := r.backend.Load(ctx, lang, name)
	if err == nil {
		logger.Info("model loaded")
		return m, nil
	}
	if !errors.Is(err, ErrModelMissing) {
		logger.Error("failed to load model", "err", err)
		return nil, fmt.Errorf("%w: %s: %w", core.ErrModelUnavailable, name, err)
	}

	logger.Warn("model missing, acquiring", "err", err)
	if err := r.backend.Acquire(ctx, lang, name); err != nil {
		logger.Error("failed to acquire model", "err", err)
		return nil, fmt.Errorf("%w: %s: %w", core.ErrModelUnavailable, name, err)
	}

	m, err = r.backend.Load(ctx, lang, name)
	if err != nil {
		logger.Error("failed to load model after acquisition", "err", err)
		return nil, fmt.Errorf("%w: %s: %w", core.ErrModelUnavailable, name, err)
	}
	logger.Info("model loaded after acquisition")
	return m, nil
}
