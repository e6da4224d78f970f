package annotate_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/conceptmap/annotate"
	"github.com/poiesic/conceptmap/annotate/mock"
	"github.com/poiesic/conceptmap/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_RequiresBackend(t *testing.T) {
	_, err := annotate.NewRegistry(nil)
	assert.ErrorIs(t, err, annotate.ErrBackendRequired)
}

func TestNewRegistry_InvalidModels(t *testing.T) {
	_, err := annotate.NewRegistry(mock.NewMockBackend(),
		annotate.WithModels(map[core.Language]string{"fr": "fr_core_news_sm"}))
	assert.ErrorIs(t, err, core.ErrUnsupportedLanguage)

	_, err = annotate.NewRegistry(mock.NewMockBackend(),
		annotate.WithModels(map[core.Language]string{core.LanguageEnglish: ""}))
	assert.Error(t, err)
}

func TestRegistry_ModelName(t *testing.T) {
	registry, err := annotate.NewRegistry(mock.NewMockBackend(),
		annotate.WithModels(map[core.Language]string{core.LanguageEnglish: "en_core_web_md"}))
	require.NoError(t, err)

	name, err := registry.ModelName(core.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "en_core_web_md", name)

	_, err = registry.ModelName(core.LanguageSpanish)
	assert.ErrorIs(t, err, core.ErrUnsupportedLanguage, "language without a configured model")

	_, err = registry.ModelName("fr")
	assert.ErrorIs(t, err, core.ErrUnsupportedLanguage)
}

func TestRegistry_LoadsOnce(t *testing.T) {
	backend := mock.NewMockBackend()
	registry, err := annotate.NewRegistry(backend)
	require.NoError(t, err)
	defer registry.Close()

	ctx := context.Background()
	assert.False(t, registry.Loaded(core.LanguageEnglish))

	m1, err := registry.Model(ctx, core.LanguageEnglish)
	require.NoError(t, err)
	m2, err := registry.Model(ctx, core.LanguageEnglish)
	require.NoError(t, err)

	assert.Same(t, m1, m2)
	assert.True(t, registry.Loaded(core.LanguageEnglish))
	assert.Equal(t, 1, backend.LoadCount())
	assert.Zero(t, backend.AcquireCount())
}

func TestRegistry_ConcurrentFirstUse(t *testing.T) {
	backend := mock.NewMockBackend()
	release := make(chan struct{})
	backend.LoadFunc = func(ctx context.Context, lang core.Language, model string) (annotate.Model, error) {
		<-release
		return mock.NewMockModel(lang, nil), nil
	}

	registry, err := annotate.NewRegistry(backend)
	require.NoError(t, err)
	defer registry.Close()

	const workers = 16
	var wg sync.WaitGroup
	models := make([]annotate.Model, workers)
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			models[i], errs[i] = registry.Model(context.Background(), core.LanguageSpanish)
		}()
	}

	// Give the goroutines time to pile up behind the first load.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Same(t, models[0], models[i])
	}
	assert.Equal(t, 1, backend.LoadCount())
}

func TestRegistry_CancelledWaiterDoesNotFailLoad(t *testing.T) {
	backend := mock.NewMockBackend()
	started := make(chan struct{})
	release := make(chan struct{})
	var loadErr error
	backend.LoadFunc = func(ctx context.Context, lang core.Language, model string) (annotate.Model, error) {
		close(started)
		<-release
		loadErr = ctx.Err()
		return mock.NewMockModel(lang, nil), nil
	}

	registry, err := annotate.NewRegistry(backend)
	require.NoError(t, err)
	defer registry.Close()

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := registry.Model(ctx, core.LanguageEnglish)
		firstErr <- err
	}()
	<-started

	var second annotate.Model
	var secondErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		second, secondErr = registry.Model(context.Background(), core.LanguageEnglish)
	}()

	cancel()
	err = <-firstErr
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, core.ErrModelUnavailable)

	close(release)
	<-done
	require.NoError(t, secondErr)
	assert.NotNil(t, second)
	assert.NoError(t, loadErr, "load runs detached from the first caller")
	assert.True(t, registry.Loaded(core.LanguageEnglish))
	assert.Equal(t, 1, backend.LoadCount())
}

func TestRegistry_AcquiresMissingModelOnce(t *testing.T) {
	backend := mock.NewMockBackend()
	backend.SetMissing(core.LanguageSpanish, true)

	registry, err := annotate.NewRegistry(backend)
	require.NoError(t, err)
	defer registry.Close()

	m, err := registry.Model(context.Background(), core.LanguageSpanish)
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Equal(t, 1, backend.AcquireCount())
	assert.Equal(t, 2, backend.LoadCount())
}

func TestRegistry_ModelUnavailable(t *testing.T) {
	t.Run("acquisition fails", func(t *testing.T) {
		backend := mock.NewMockBackend()
		backend.SetMissing(core.LanguageEnglish, true)
		backend.AcquireFunc = func(ctx context.Context, lang core.Language, model string) error {
			return errors.New("network unreachable")
		}

		registry, err := annotate.NewRegistry(backend)
		require.NoError(t, err)
		defer registry.Close()

		_, err = registry.Model(context.Background(), core.LanguageEnglish)
		assert.ErrorIs(t, err, core.ErrModelUnavailable)
		assert.Equal(t, 1, backend.AcquireCount())
		assert.False(t, registry.Loaded(core.LanguageEnglish))
	})

	t.Run("still missing after acquisition", func(t *testing.T) {
		backend := mock.NewMockBackend()
		backend.SetMissing(core.LanguageEnglish, true)
		backend.AcquireFunc = func(ctx context.Context, lang core.Language, model string) error {
			return nil
		}

		registry, err := annotate.NewRegistry(backend)
		require.NoError(t, err)
		defer registry.Close()

		_, err = registry.Model(context.Background(), core.LanguageEnglish)
		assert.ErrorIs(t, err, core.ErrModelUnavailable)
		assert.ErrorIs(t, err, annotate.ErrModelMissing)
		assert.Equal(t, 1, backend.AcquireCount(), "exactly one acquisition")
		assert.Equal(t, 2, backend.LoadCount())
	})

	t.Run("broken model is not acquired", func(t *testing.T) {
		backend := mock.NewMockBackend()
		backend.LoadFunc = func(ctx context.Context, lang core.Language, model string) (annotate.Model, error) {
			return nil, errors.New("corrupt model")
		}

		registry, err := annotate.NewRegistry(backend)
		require.NoError(t, err)
		defer registry.Close()

		_, err = registry.Model(context.Background(), core.LanguageEnglish)
		assert.ErrorIs(t, err, core.ErrModelUnavailable)
		assert.Zero(t, backend.AcquireCount())
	})

	t.Run("failures are not cached", func(t *testing.T) {
		backend := mock.NewMockBackend()
		backend.SetMissing(core.LanguageEnglish, true)
		backend.AcquireFunc = func(ctx context.Context, lang core.Language, model string) error {
			return annotate.ErrAcquireUnsupported
		}

		registry, err := annotate.NewRegistry(backend)
		require.NoError(t, err)
		defer registry.Close()

		_, err = registry.Model(context.Background(), core.LanguageEnglish)
		require.ErrorIs(t, err, annotate.ErrAcquireUnsupported)

		backend.SetMissing(core.LanguageEnglish, false)
		_, err = registry.Model(context.Background(), core.LanguageEnglish)
		assert.NoError(t, err)
	})
}

func TestRegistry_UnsupportedLanguageSkipsBackend(t *testing.T) {
	backend := mock.NewMockBackend()
	registry, err := annotate.NewRegistry(backend)
	require.NoError(t, err)
	defer registry.Close()

	_, err = registry.Model(context.Background(), "fr")
	assert.ErrorIs(t, err, core.ErrUnsupportedLanguage)
	assert.Zero(t, backend.LoadCount())
}

func TestRegistry_Acquire(t *testing.T) {
	backend := mock.NewMockBackend()
	registry, err := annotate.NewRegistry(backend)
	require.NoError(t, err)
	defer registry.Close()

	require.NoError(t, registry.Acquire(context.Background(), core.LanguageSpanish))
	assert.Equal(t, 1, backend.AcquireCount())
	assert.False(t, registry.Loaded(core.LanguageSpanish))

	backend.AcquireFunc = func(ctx context.Context, lang core.Language, model string) error {
		return annotate.ErrAcquireUnsupported
	}
	err = registry.Acquire(context.Background(), core.LanguageSpanish)
	assert.ErrorIs(t, err, core.ErrModelUnavailable)
	assert.ErrorIs(t, err, annotate.ErrAcquireUnsupported)
}

func TestRegistry_Close(t *testing.T) {
	backend := mock.NewMockBackend()
	registry, err := annotate.NewRegistry(backend)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = registry.Model(ctx, core.LanguageSpanish)
	require.NoError(t, err)
	_, err = registry.Model(ctx, core.LanguageEnglish)
	require.NoError(t, err)

	require.NoError(t, registry.Close())
	for _, m := range backend.Models() {
		assert.True(t, m.Closed())
	}

	_, err = registry.Model(ctx, core.LanguageSpanish)
	assert.ErrorIs(t, err, annotate.ErrRegistryClosed)
	assert.NoError(t, registry.Close(), "second close is a no-op")
}
