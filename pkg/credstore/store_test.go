package credstore_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/credstore"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	t.Run("starts empty", func(t *testing.T) {
		t.Parallel()
		store := credstore.NewMemoryStore()
		token, ok := store.Token()
		assert.False(t, ok)
		assert.Empty(t, token)
	})

	t.Run("save then read", func(t *testing.T) {
		t.Parallel()
		store := credstore.NewMemoryStore()
		require.NoError(t, store.Save("tok-123"))

		token, ok := store.Token()
		assert.True(t, ok)
		assert.Equal(t, "tok-123", token)
	})

	t.Run("rejects empty token", func(t *testing.T) {
		t.Parallel()
		store := credstore.NewMemoryStore()
		assert.ErrorIs(t, store.Save(""), credstore.ErrEmptyToken)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		t.Parallel()
		store := credstore.NewMemoryStore()
		require.NoError(t, store.Save("tok-123"))
		require.NoError(t, store.Clear())
		require.NoError(t, store.Clear())

		_, ok := store.Token()
		assert.False(t, ok)
	})

	t.Run("concurrent clear and save do not corrupt state", func(t *testing.T) {
		t.Parallel()
		store := credstore.NewMemoryStore()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_ = store.Save("tok")
			}()
			go func() {
				defer wg.Done()
				_ = store.Clear()
			}()
		}
		wg.Wait()

		// Whichever write won, the store must be in one of the two valid states.
		token, ok := store.Token()
		if ok {
			assert.Equal(t, "tok", token)
		} else {
			assert.Empty(t, token)
		}
	})
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	t.Run("persists across instances", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "auth", "token")

		store, err := credstore.NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.Save("tok-file"))

		reopened, err := credstore.NewFileStore(path)
		require.NoError(t, err)
		token, ok := reopened.Token()
		assert.True(t, ok)
		assert.Equal(t, "tok-file", token)
	})

	t.Run("clear removes token file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "token")

		store, err := credstore.NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.Save("tok"))
		require.NoError(t, store.Clear())
		require.NoError(t, store.Clear())

		_, ok := store.Token()
		assert.False(t, ok)
	})

	t.Run("empty path rejected", func(t *testing.T) {
		t.Parallel()
		_, err := credstore.NewFileStore("")
		assert.ErrorIs(t, err, credstore.ErrStorePath)
	})

	t.Run("rejects empty token", func(t *testing.T) {
		t.Parallel()
		store, err := credstore.NewFileStore(filepath.Join(t.TempDir(), "token"))
		require.NoError(t, err)
		assert.ErrorIs(t, store.Save(""), credstore.ErrEmptyToken)
	})
}
