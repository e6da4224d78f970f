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


package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/poiesic/conceptmap/annotate"
	"github.com/poiesic/conceptmap/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Name is the backend name used in annotation cache keys.
const Name = "llm"

// maxParseAttempts bounds how often a malformed response is requested again.
const maxParseAttempts = 3

// ErrMalformedResponse indicates the chat model never produced parseable JSON.
var ErrMalformedResponse = errors.New("malformed annotation response")

// clientFunc creates a chat client for a model name.
type clientFunc func(model string) (llms.Model, error)

// Backend implements annotate.Backend using OpenAI-compatible chat APIs.
type Backend struct {
	newClient  clientFunc
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

var _ annotate.Backend = (*Backend)(nil)

// newBackend is an internal constructor that returns the concrete type.
func newBackend(config *annotate.Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	host, token := config.LLMHost, config.LLMToken
	return &Backend{
		newClient: func(model string) (llms.Model, error) {
			return openai.New(
				openai.WithBaseURL(host),
				openai.WithToken(token),
				openai.WithModel(model),
			)
		},
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
		logger:     slog.Default().With("component", "llm-backend"),
	}, nil
}

// NewBackend creates a chat model backend using the provided configuration.
//
// Returns annotate.Backend interface to enforce abstraction.
func NewBackend(config *annotate.Config) (annotate.Backend, error) {
	return newBackend(config)
}

// Name returns "llm".
func (b *Backend) Name() string {
	return Name
}

// Load creates a client for the chat model. No request is made until the
// first annotation.
func (b *Backend) Load(ctx context.Context, lang core.Language, model string) (annotate.Model, error) {
	client, err := b.newClient(model)
	if err != nil {
		return nil, err
	}
	return &Model{
		client:     client,
		lang:       lang,
		prompt:     buildSystemPrompt(lang),
		maxRetries: b.maxRetries,
		retryDelay: b.retryDelay,
		logger:     b.logger.With("language", lang, "model", model),
	}, nil
}

// Acquire always fails; chat models are managed by the server.
func (b *Backend) Acquire(ctx context.Context, lang core.Language, model string) error {
	return fmt.Errorf("%w: %s", annotate.ErrAcquireUnsupported, Name)
}

// Model annotates text in one language with a chat model.
type Model struct {
	client     llms.Model
	lang       core.Language
	prompt     string
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

var _ annotate.Model = (*Model)(nil)

// token is an internal type used for JSON unmarshaling.
// It matches the structure requested from the model.
type token struct {
	Text     string `json:"text"`
	POS      string `json:"pos"`
	Head     *int   `json:"head"`
	Sentence int    `json:"sent"`
}

// annotation is the wrapper structure for the model's JSON response.
type annotation struct {
	Tokens []token `json:"tokens"`
}

// Annotate asks the chat model for the annotation of text.
func (m *Model) Annotate(ctx context.Context, text string) ([]core.Token, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(m.prompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= maxParseAttempts; attempt++ {
		var response *llms.ContentResponse
		err := annotate.RetryWithBackoff(ctx, func() error {
			var err error
			response, err = m.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
			return classify(err)
		}, m.maxRetries, m.retryDelay)
		if err != nil {
			m.logger.Error("failed to generate content", "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			m.logger.Debug("no choices returned from model")
			return []core.Token{}, nil
		}

		tokens, err := parseResponse(response.Choices[0].Content)
		if err != nil {
			lastErr = err
			m.logger.Warn("error parsing annotation response", "attempt", attempt, "err", err)
			continue
		}

		m.logger.Debug("annotated text", "tokens", len(tokens))
		return tokens, nil
	}

	m.logger.Error("failed to parse annotation response after retries", "err", lastErr)
	return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, lastErr)
}

// Close is a no-op; the HTTP client holds no per-model resources.
func (m *Model) Close() error {
	return nil
}

// statusCode matches the HTTP status in errors from OpenAI-compatible clients.
var statusCode = regexp.MustCompile(`status code: (\d{3})`)

// classify marks client errors as permanent. A rejected request (bad
// model name, bad token) fails the same way on every attempt. Timeouts
// and rate limits stay retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	match := statusCode.FindStringSubmatch(err.Error())
	if match == nil {
		return err
	}
	code, _ := strconv.Atoi(match[1])
	if code >= 400 && code < 500 && code != http.StatusRequestTimeout && code != http.StatusTooManyRequests {
		return annotate.Permanent(err)
	}
	return err
}

// parseResponse converts a raw model response into tokens.
// Missing heads become core.NoHead.
func parseResponse(raw string) ([]core.Token, error) {
	text := repairJSON(stripCodeFences(raw))

	var result annotation
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, err
	}

	tokens := make([]core.Token, 0, len(result.Tokens))
	for _, t := range result.Tokens {
		head := core.NoHead
		if t.Head != nil {
			head = *t.Head
		}
		tokens = append(tokens, core.Token{
			Text:     t.Text,
			POS:      core.ParsePOS(t.POS),
			Sentence: t.Sentence,
			Head:     head,
		})
	}
	return tokens, nil
}
