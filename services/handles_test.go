package services

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

func TestHandleRegistryAcquireRelease(t *testing.T) {
	registry := NewHandleRegistry()

	handle := registry.Acquire("l1", pdfBytes)
	assert.True(t, strings.HasPrefix(handle, "blob:"))
	assert.True(t, registry.IsLive(handle))

	content, err := registry.Open(handle)
	require.NoError(t, err)
	assert.Equal(t, "l1", content.LessonID)
	assert.Equal(t, "application/pdf", content.MimeType)

	require.NoError(t, registry.Release(handle))
	assert.ErrorIs(t, registry.Release(handle), ErrHandleReleased)
	assert.ErrorIs(t, registry.Release("blob:unknown"), ErrHandleNotFound)

	_, err = registry.Open(handle)
	assert.ErrorIs(t, err, ErrHandleReleased)

	stats := registry.Stats()
	assert.EqualValues(t, 1, stats.Acquired)
	assert.EqualValues(t, 1, stats.Released)
	assert.Zero(t, stats.Live)
}

func TestHandleRegistryOneHandlePerLesson(t *testing.T) {
	registry := NewHandleRegistry()

	first := registry.Acquire("l1", []byte("one"))
	second := registry.Acquire("l1", []byte("two"))

	assert.NotEqual(t, first, second)
	assert.False(t, registry.IsLive(first), "re-acquiring releases the previous handle")
	assert.True(t, registry.IsLive(second))

	current, ok := registry.HandleFor("l1")
	require.True(t, ok)
	assert.Equal(t, second, current)

	registry.ReleaseLesson("l1")
	registry.ReleaseLesson("l1")
	_, ok = registry.HandleFor("l1")
	assert.False(t, ok)

	stats := registry.Stats()
	assert.EqualValues(t, 2, stats.Acquired)
	assert.EqualValues(t, 2, stats.Released)
}

func TestHandleRegistryConcurrentReleaseAll(t *testing.T) {
	registry := NewHandleRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			registry.Acquire("lesson-"+strings.Repeat("x", i%5), []byte("data"))
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 5, registry.Stats().Live)

	registry.ReleaseAll()
	stats := registry.Stats()
	assert.Zero(t, stats.Live)
	assert.Equal(t, stats.Acquired, stats.Released, "every acquire is matched by exactly one release")
}

func TestHandleRegistryForgetsOldTombstones(t *testing.T) {
	registry := NewHandleRegistry()
	registry.limit = 2

	first := registry.Acquire("l1", []byte("one"))
	second := registry.Acquire("l1", []byte("two"))
	third := registry.Acquire("l1", []byte("three"))
	registry.ReleaseLesson("l1")

	assert.Len(t, registry.released, 2)
	assert.ErrorIs(t, registry.Release(first), ErrHandleNotFound, "oldest tombstone is dropped")
	assert.ErrorIs(t, registry.Release(second), ErrHandleReleased)
	assert.ErrorIs(t, registry.Release(third), ErrHandleReleased)

	stats := registry.Stats()
	assert.EqualValues(t, 3, stats.Acquired)
	assert.EqualValues(t, 3, stats.Released)
}
