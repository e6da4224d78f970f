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


package spacy

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/poiesic/conceptmap/annotate"
	"github.com/poiesic/conceptmap/core"
)

// Name is the backend name used in annotation cache keys.
const Name = "spacy"

// Backend implements annotate.Backend by running spaCy in worker processes.
type Backend struct {
	python  string
	workDir string
	logger  *slog.Logger

	start startFunc
	run   runFunc
}

var _ annotate.Backend = (*Backend)(nil)

// runFunc runs a command to completion and returns its combined output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// newBackend is an internal constructor that returns the concrete type.
func newBackend(config *annotate.Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	workDir := config.WorkDir
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "conceptmap")
	}

	return &Backend{
		python:  config.PythonPath,
		workDir: workDir,
		logger:  slog.Default().With("component", "spacy-backend"),
		start:   startProcess,
		run:     runCommand,
	}, nil
}

// NewBackend creates a spaCy backend using the provided configuration.
//
// Returns annotate.Backend interface to enforce abstraction.
func NewBackend(config *annotate.Config) (annotate.Backend, error) {
	return newBackend(config)
}

// Name returns "spacy".
func (b *Backend) Name() string {
	return Name
}

// Load starts a worker process for the named pipeline.
func (b *Backend) Load(ctx context.Context, lang core.Language, model string) (annotate.Model, error) {
	script, err := b.extractScript()
	if err != nil {
		return nil, err
	}

	proc, err := b.start(ctx, b.python, script)
	if err != nil {
		return nil, fmt.Errorf("start spacy worker: %w", err)
	}

	w, err := newWorker(proc, model, b.logger.With("language", lang, "model", model))
	if err != nil {
		proc.stop()
		return nil, err
	}
	return w, nil
}

// Acquire downloads the named pipeline with spaCy's own downloader.
func (b *Backend) Acquire(ctx context.Context, lang core.Language, model string) error {
	b.logger.Info("downloading spacy model", "language", lang, "model", model)

	output, err := b.run(ctx, b.python, "-m", "spacy", "download", model)
	if err != nil {
		return fmt.Errorf("spacy download %s: %s: %w", model, bytes.TrimSpace(output), err)
	}

	b.logger.Info("spacy model downloaded", "model", model)
	return nil
}

// extractScript writes the embedded worker script to the work directory
// unless an identical copy is already there.
func (b *Backend) extractScript() (string, error) {
	if err := os.MkdirAll(b.workDir, 0755); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}

	path := filepath.Join(b.workDir, workerScriptName)
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, embeddedWorkerScript) {
		return path, nil
	}

	b.logger.Debug("extracting worker script", "path", path)
	if err := os.WriteFile(path, embeddedWorkerScript, 0755); err != nil {
		return "", fmt.Errorf("write worker script: %w", err)
	}
	return path, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
