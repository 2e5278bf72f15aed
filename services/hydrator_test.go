package services

import (
	"context"
	"testing"

	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrateRestoresHandlesAfterReload(t *testing.T) {
	ctx := context.Background()
	records := NewMemoryRecordStore()
	blobs := NewMemoryBlobStore(0)

	first := newTestCatalog(t, records, blobs)
	_, err := first.UploadLessonContent(ctx, "c1", "m1", "l1", []byte("video"))
	require.NoError(t, err)
	_, err = first.UploadLessonContent(ctx, "c1", "m1", "l2", pdfBytes)
	require.NoError(t, err)
	_, err = first.UpdateLesson(ctx, "c1", "m2", "l3", dto.UpdateLessonRequest{IsLocal: boolPtr(true)})
	require.NoError(t, err)
	first.Shutdown()

	// A new session starts from the stored snapshot with blank local URLs.
	second := newTestCatalog(t, records, blobs)
	lesson, _, _ := second.Lesson("c1", "l1")
	assert.Empty(t, lesson.URL)

	var notified int
	second.OnChange(func([]model.Course) { notified++ })

	report := second.Hydrate(ctx)
	assert.Equal(t, 2, report.Hydrated)
	assert.Equal(t, []string{"l3"}, report.Missing)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 1, notified)

	for _, id := range []string{"l1", "l2"} {
		lesson, _, err := second.Lesson("c1", id)
		require.NoError(t, err)
		assert.True(t, second.Handles().IsLive(lesson.URL))
	}
	l3, _, _ := second.Lesson("c1", "l3")
	assert.Empty(t, l3.URL, "orphaned local lessons stay unplayable")

	content, err := second.Handles().Open(mustLessonURL(t, second, "l2"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", content.MimeType)
}

func TestHydrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog(t, NewMemoryRecordStore(), NewMemoryBlobStore(0))

	for _, target := range [][2]string{{"m1", "l1"}, {"m2", "l3"}, {"m2", "l4"}} {
		_, err := catalog.UploadLessonContent(ctx, "c1", target[0], target[1], []byte("data"))
		require.NoError(t, err)
	}

	catalog.Hydrate(ctx)
	before := mustLessonURL(t, catalog, "l1")
	catalog.Hydrate(ctx)

	stats := catalog.Handles().Stats()
	assert.EqualValues(t, 3, stats.Live, "exactly one live handle per local lesson")
	assert.Equal(t, stats.Acquired-stats.Released, stats.Live)
	assert.False(t, catalog.Handles().IsLive(before), "the previous handle is released before re-minting")
	assert.True(t, catalog.Handles().IsLive(mustLessonURL(t, catalog, "l1")))
}

func TestHydrateWithoutLocalLessonsDoesNotNotify(t *testing.T) {
	catalog := newTestCatalog(t, NewMemoryRecordStore(), NewMemoryBlobStore(0))

	var notified int
	catalog.OnChange(func([]model.Course) { notified++ })

	report := catalog.Hydrate(context.Background())
	assert.Zero(t, report.Hydrated)
	assert.Zero(t, notified)
}

func TestHydrateUnavailableBlobStore(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog(t, NewMemoryRecordStore(), UnavailableBlobStore{})

	_, err := catalog.UpdateLesson(ctx, "c1", "m1", "l1", dto.UpdateLessonRequest{IsLocal: boolPtr(true)})
	require.NoError(t, err)

	report := catalog.Hydrate(ctx)
	assert.Equal(t, []string{"l1"}, report.Failed)
	assert.Len(t, catalog.Courses(), 2, "catalog reads are unaffected")
}

func mustLessonURL(t *testing.T, catalog *CatalogService, lessonID string) string {
	t.Helper()
	for _, course := range catalog.Courses() {
		for _, lesson := range course.FlatLessons() {
			if lesson.ID == lessonID {
				return lesson.URL
			}
		}
	}
	t.Fatalf("lesson %s not found", lessonID)
	return ""
}
