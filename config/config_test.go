package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/conceptmap/annotate"
	"github.com/poiesic/conceptmap/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, core.LanguageSpanish, cfg.Language)
	assert.Equal(t, core.StrategyDependency, cfg.Strategy)
	assert.Equal(t, annotate.BackendSpacy, cfg.Annotator.Backend)
	assert.Equal(t, "es_core_news_sm", cfg.Annotator.Models["es"])
	assert.Empty(t, cfg.Cache.Dir)
}

func TestParse(t *testing.T) {
	input := `
language: EN
strategy: cooccurrence
scale: 10
pool_size: 2
annotator:
  backend: llm
  models:
    es: es_core_news_md
  llm:
    host: http://localhost:9100
    model: llama3
  retry_delay: 250ms
cache:
  dir: /var/cache/conceptmap
  ttl: 24h
`
	cfg, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, core.LanguageEnglish, cfg.Language)
	assert.Equal(t, core.StrategyCooccurrence, cfg.Strategy)
	assert.Equal(t, 10, cfg.Scale)
	assert.Equal(t, 2, cfg.PoolSize)
	assert.Equal(t, "llama3", cfg.Annotator.LLM.Model)
	assert.Equal(t, 250*time.Millisecond, cfg.Annotator.RetryDelay)
	assert.Equal(t, 3, cfg.Annotator.MaxRetries, "unset keys keep defaults")
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)

	t.Run("model map merges with defaults", func(t *testing.T) {
		assert.Equal(t, "es_core_news_md", cfg.Annotator.Models["es"])
		assert.Equal(t, "en_core_web_sm", cfg.Annotator.Models["en"])
	})
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unsupported language", "language: fr"},
		{"unknown strategy", "strategy: window"},
		{"negative scale", "scale: -1"},
		{"negative pool", "pool_size: -2"},
		{"negative ttl", "cache:\n  ttl: -1h"},
		{"unknown backend", "annotator:\n  backend: stanza"},
		{"model for unsupported language", "annotator:\n  models:\n    fr: fr_core_news_sm"},
		{"empty model name", "annotator:\n  models:\n    es: \"\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	t.Run("unknown key", func(t *testing.T) {
		_, err := Parse(strings.NewReader("langauge: es"))
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(dir, "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("language: en\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, core.LanguageEnglish, cfg.Language)
	})

	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("default file missing falls back to defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("default file present", func(t *testing.T) {
		wd := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(wd, DefaultFile), []byte("scale: 7\n"), 0o644))
		t.Chdir(wd)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Scale)
	})

	t.Run("bad file reports path", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("strategy: window\n"), 0o644))

		_, err := Load(path)
		require.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), path)
	})
}

func TestAnnotateConfig(t *testing.T) {
	cfg := Default()
	cfg.Annotator.Models = map[string]string{" ES ": "es_dep_news_trf"}
	cfg.Annotator.WorkDir = "/tmp/work"

	ac := cfg.AnnotateConfig()
	assert.Equal(t, map[core.Language]string{core.LanguageSpanish: "es_dep_news_trf"}, ac.Models)
	assert.Equal(t, "/tmp/work", ac.WorkDir)
	assert.Equal(t, "python3", ac.PythonPath)
	require.NoError(t, ac.Validate())
}
