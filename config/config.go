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


// Package config loads conceptmap settings from a YAML file.
//
// A missing file is not an error: every field has a default and the file
// only overrides what it names. Command-line flags override the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/poiesic/conceptmap/annotate"
	"github.com/poiesic/conceptmap/core"
	"go.yaml.in/yaml/v3"
)

// DefaultFile is the file Load reads when no path is given.
const DefaultFile = "conceptmap.yaml"

// ErrInvalidConfig indicates a configuration value is out of range or unknown.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the top-level configuration.
type Config struct {
	// Language is the default document language.
	Language core.Language `yaml:"language"`

	// Strategy is the default relation strategy.
	Strategy core.Strategy `yaml:"strategy"`

	// Scale is the node size per concept occurrence. 0 means the graph default.
	Scale int `yaml:"scale"`

	// DefaultSize is the size of nodes that are relation endpoints only.
	// 0 means Scale.
	DefaultSize int `yaml:"default_size"`

	// PoolSize bounds concurrent documents in batch analysis.
	// 0 means half the CPUs.
	PoolSize int `yaml:"pool_size"`

	Annotator AnnotatorConfig `yaml:"annotator"`
	Cache     CacheConfig     `yaml:"cache"`
}

// AnnotatorConfig selects and tunes the annotation backend.
type AnnotatorConfig struct {
	Backend    string            `yaml:"backend"`
	Models     map[string]string `yaml:"models"`
	Python     string            `yaml:"python"`
	WorkDir    string            `yaml:"work_dir"`
	LLM        LLMConfig         `yaml:"llm"`
	MaxRetries int               `yaml:"max_retries"`
	RetryDelay time.Duration     `yaml:"retry_delay"`
}

// LLMConfig points the llm backend at an OpenAI-compatible server.
type LLMConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
	Token string `yaml:"token"`
}

// CacheConfig controls the on-disk annotation cache.
type CacheConfig struct {
	// Dir is the badger directory. Empty disables caching.
	Dir string `yaml:"dir"`

	// TTL expires cached annotations. 0 keeps them forever.
	TTL time.Duration `yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	ac := annotate.DefaultConfig()
	models := make(map[string]string, len(ac.Models))
	for lang, model := range ac.Models {
		models[lang.String()] = model
	}

	return &Config{
		Language: core.LanguageSpanish,
		Strategy: core.StrategyDependency,
		Annotator: AnnotatorConfig{
			Backend: ac.Backend,
			Models:  models,
			Python:  ac.PythonPath,
			LLM: LLMConfig{
				Host:  ac.LLMHost,
				Model: ac.LLMModel,
				Token: ac.LLMToken,
			},
			MaxRetries: ac.MaxRetries,
			RetryDelay: ac.RetryDelay,
		},
	}
}

// Load reads the configuration at path over the defaults.
// An empty path reads DefaultFile when it exists.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and canonicalizes names.
func (c *Config) Validate() error {
	lang, err := core.ParseLanguage(string(c.Language))
	if err != nil {
		return fmt.Errorf("%w: language: %w", ErrInvalidConfig, err)
	}
	c.Language = lang

	strategy, err := core.ParseStrategy(string(c.Strategy))
	if err != nil {
		return fmt.Errorf("%w: strategy: %w", ErrInvalidConfig, err)
	}
	c.Strategy = strategy

	if c.Scale < 0 {
		return fmt.Errorf("%w: scale must not be negative", ErrInvalidConfig)
	}
	if c.DefaultSize < 0 {
		return fmt.Errorf("%w: default_size must not be negative", ErrInvalidConfig)
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("%w: pool_size must not be negative", ErrInvalidConfig)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must not be negative", ErrInvalidConfig)
	}

	if err := c.AnnotateConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// AnnotateConfig converts the annotator section to an annotate.Config.
// Model keys that are not language codes are passed through so that
// annotate.Config.Validate reports them.
func (c *Config) AnnotateConfig() *annotate.Config {
	models := make(map[core.Language]string, len(c.Annotator.Models))
	for code, model := range c.Annotator.Models {
		models[core.Language(strings.ToLower(strings.TrimSpace(code)))] = model
	}

	return &annotate.Config{
		Backend:    c.Annotator.Backend,
		Models:     models,
		PythonPath: c.Annotator.Python,
		WorkDir:    c.Annotator.WorkDir,
		LLMHost:    c.Annotator.LLM.Host,
		LLMModel:   c.Annotator.LLM.Model,
		LLMToken:   c.Annotator.LLM.Token,
		MaxRetries: c.Annotator.MaxRetries,
		RetryDelay: c.Annotator.RetryDelay,
	}
}
