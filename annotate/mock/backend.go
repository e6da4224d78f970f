package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/poiesic/conceptmap/annotate"
	"github.com/poiesic/conceptmap/core"
)

// MockBackend is a test double for annotate.Backend.
// It is safe for concurrent use.
type MockBackend struct {
	// Tags maps lowercase words to the POS the default model assigns.
	// Set it up before the first Load.
	Tags map[string]core.POS

	// LoadFunc is called by Load if set.
	LoadFunc func(ctx context.Context, lang core.Language, model string) (annotate.Model, error)

	// AcquireFunc is called by Acquire if set.
	AcquireFunc func(ctx context.Context, lang core.Language, model string) error

	// AnnotateFunc replaces the default annotation of models created by Load.
	AnnotateFunc func(ctx context.Context, lang core.Language, text string) ([]core.Token, error)

	mu           sync.Mutex
	missing      map[core.Language]bool
	loadCount    int
	acquireCount int
	models       []*MockModel
}

var _ annotate.Backend = (*MockBackend)(nil)

// NewMockBackend creates a mock backend with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Tags:    make(map[string]core.POS),
		missing: make(map[core.Language]bool),
	}
}

// Name returns "mock".
func (b *MockBackend) Name() string {
	return "mock"
}

// SetMissing marks the model of a language as not installed.
func (b *MockBackend) SetMissing(lang core.Language, missing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.missing[lang] = missing
}

// Load returns a new MockModel, or an error wrapping annotate.ErrModelMissing
// when the language is marked missing.
func (b *MockBackend) Load(ctx context.Context, lang core.Language, model string) (annotate.Model, error) {
	b.mu.Lock()
	b.loadCount++
	missing := b.missing[lang]
	b.mu.Unlock()

	if b.LoadFunc != nil {
		return b.LoadFunc(ctx, lang, model)
	}
	if missing {
		return nil, fmt.Errorf("%w: %s", annotate.ErrModelMissing, model)
	}

	m := NewMockModel(lang, b.Tags)
	m.AnnotateFunc = b.AnnotateFunc

	b.mu.Lock()
	b.models = append(b.models, m)
	b.mu.Unlock()
	return m, nil
}

// Acquire clears the missing mark of a language.
func (b *MockBackend) Acquire(ctx context.Context, lang core.Language, model string) error {
	b.mu.Lock()
	b.acquireCount++
	b.mu.Unlock()

	if b.AcquireFunc != nil {
		return b.AcquireFunc(ctx, lang, model)
	}
	b.SetMissing(lang, false)
	return nil
}

// LoadCount returns the number of times Load was called.
func (b *MockBackend) LoadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadCount
}

// AcquireCount returns the number of times Acquire was called.
func (b *MockBackend) AcquireCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.acquireCount
}

// Models returns the models created by Load.
func (b *MockBackend) Models() []*MockModel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*MockModel(nil), b.models...)
}

// Reset clears call counts, missing marks, created models and custom functions.
func (b *MockBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadCount = 0
	b.acquireCount = 0
	b.models = nil
	clear(b.missing)
	b.LoadFunc = nil
	b.AcquireFunc = nil
	b.AnnotateFunc = nil
}

// MockModel is a test double for annotate.Model.
type MockModel struct {
	// AnnotateFunc is called by Annotate if set.
	AnnotateFunc func(ctx context.Context, lang core.Language, text string) ([]core.Token, error)

	lang core.Language
	tags map[string]core.POS

	mu        sync.Mutex
	callCount int
	closed    bool
}

var _ annotate.Model = (*MockModel)(nil)

// NewMockModel creates a mock model that tags words from tags.
func NewMockModel(lang core.Language, tags map[string]core.POS) *MockModel {
	return &MockModel{lang: lang, tags: tags}
}

// Annotate splits text on whitespace, splits leading and trailing
// punctuation off each word into tokens of its own and tags words from the
// lexicon. A token containing ".", "!" or "?" ends its sentence. Tokens
// have no head.
func (m *MockModel) Annotate(ctx context.Context, text string) ([]core.Token, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.AnnotateFunc != nil {
		return m.AnnotateFunc(ctx, m.lang, text)
	}

	var tokens []core.Token
	sentence := 0
	emit := func(s string, pos core.POS) {
		if s == "" {
			return
		}
		tokens = append(tokens, core.Token{Text: s, POS: pos, Sentence: sentence, Head: core.NoHead})
	}

	for _, w := range strings.Fields(text) {
		word := strings.TrimLeftFunc(w, unicode.IsPunct)
		lead := w[:len(w)-len(word)]
		bare := strings.TrimRightFunc(word, unicode.IsPunct)
		trail := word[len(bare):]

		emit(lead, core.POSOther)
		emit(bare, m.tags[strings.ToLower(bare)])
		emit(trail, core.POSOther)
		if strings.ContainsAny(trail, ".!?") || (bare == "" && strings.ContainsAny(lead, ".!?")) {
			sentence++
		}
	}
	if tokens == nil {
		tokens = []core.Token{}
	}
	return tokens, nil
}

// Close marks the model closed.
func (m *MockModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockModel) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// CallCount returns the number of times Annotate was called.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
