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
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/poiesic/conceptmap/core"
)

// Backend names accepted by Config.Backend.
const (
	BackendSpacy = "spacy"
	BackendLLM   = "llm"
)

// Config holds configuration for annotation backends.
type Config struct {
	// Backend selects the annotation backend: "spacy" or "llm".
	Backend string

	// Models maps each supported language to the model that annotates it.
	// Example: {"es": "es_core_news_sm", "en": "en_core_web_sm"}
	Models map[core.Language]string

	// PythonPath is the interpreter used to run the spaCy worker.
	PythonPath string

	// WorkDir is where the spaCy worker script is extracted.
	// Empty means a directory under os.TempDir.
	WorkDir string

	// LLMHost is the base URL of an OpenAI-compatible chat API.
	// Example: "http://localhost:11434/v1"
	LLMHost string

	// LLMModel is the chat model used by the llm backend.
	// When set it replaces the per-language model names for that backend.
	LLMModel string

	// LLMToken is the API token. Local servers accept "none".
	LLMToken string

	// MaxRetries is the number of attempts for transport failures.
	// Default: 3
	MaxRetries int

	// RetryDelay is the base delay between attempts, doubled on each retry.
	// Default: 1s
	RetryDelay time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend selects the annotation backend.
func WithBackend(name string) ConfigOption {
	return func(c *Config) {
		c.Backend = name
	}
}

// WithModel sets the model used for one language.
func WithModel(lang core.Language, model string) ConfigOption {
	return func(c *Config) {
		c.Models[lang] = model
	}
}

// WithPythonPath sets the Python interpreter for the spaCy worker.
func WithPythonPath(path string) ConfigOption {
	return func(c *Config) {
		c.PythonPath = path
	}
}

// WithWorkDir sets the directory the spaCy worker script is extracted to.
func WithWorkDir(dir string) ConfigOption {
	return func(c *Config) {
		c.WorkDir = dir
	}
}

// WithLLMHost sets the chat API base URL.
func WithLLMHost(host string) ConfigOption {
	return func(c *Config) {
		c.LLMHost = host
	}
}

// WithLLMModel sets the chat model.
func WithLLMModel(model string) ConfigOption {
	return func(c *Config) {
		c.LLMModel = model
	}
}

// WithLLMToken sets the chat API token.
func WithLLMToken(token string) ConfigOption {
	return func(c *Config) {
		c.LLMToken = token
	}
}

// WithRetry sets the attempt count and base delay for transport retries.
func WithRetry(maxRetries int, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
		c.RetryDelay = delay
	}
}

// DefaultModels returns the spaCy model names for every supported language.
func DefaultModels() map[core.Language]string {
	return map[core.Language]string{
		core.LanguageSpanish: "es_core_news_sm",
		core.LanguageEnglish: "en_core_web_sm",
	}
}

// DefaultConfig returns a Config using the spaCy backend with the small
// pipelines for every supported language.
func DefaultConfig() *Config {
	return &Config{
		Backend:    BackendSpacy,
		Models:     DefaultModels(),
		PythonPath: "python3",
		LLMHost:    "http://localhost:11434/v1",
		LLMModel:   "qwen2.5:3b",
		LLMToken:   "none",
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBackend(BackendLLM),
//	    WithLLMHost("http://localhost:9100"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Models = maps.Clone(c.Models)
	return &clone
}

// Normalize ensures the configuration is in a canonical form.
// Backend names are lowercased and the /v1 suffix required by
// OpenAI-compatible APIs is added to LLMHost.
func (c *Config) Normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.LLMHost != "" && !strings.HasSuffix(c.LLMHost, "/v1") {
		c.LLMHost = strings.TrimSuffix(c.LLMHost, "/") + "/v1"
	}
	if c.LLMToken == "" {
		c.LLMToken = "none"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Backend {
	case BackendSpacy:
		if c.PythonPath == "" {
			return errors.New("annotate config: PythonPath is required for the spacy backend")
		}
	case BackendLLM:
		if c.LLMHost == "" {
			return errors.New("annotate config: LLMHost is required for the llm backend")
		}
		if c.LLMModel == "" {
			return errors.New("annotate config: LLMModel is required for the llm backend")
		}
	default:
		return errors.New("annotate config: Backend must be one of spacy, llm")
	}

	for lang, model := range c.Models {
		if err := core.ValidateLanguage(lang); err != nil {
			return errors.New("annotate config: Models has unsupported language " + lang.String())
		}
		if model == "" {
			return errors.New("annotate config: Models has empty model name for " + lang.String())
		}
	}
	if c.MaxRetries < 1 {
		return errors.New("annotate config: MaxRetries must be greater than 0")
	}
	if c.RetryDelay < 0 {
		return errors.New("annotate config: RetryDelay must not be negative")
	}
	return nil
}
