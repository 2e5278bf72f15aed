package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T, records RecordStore, blobs BlobStore) *CatalogService {
	t.Helper()
	catalog := NewCatalogService(records, blobs, NewHandleRegistry())
	require.NoError(t, catalog.Load(context.Background()))
	t.Cleanup(catalog.Shutdown)
	return catalog
}

func lessonIDs(lessons []model.Lesson) []string {
	ids := make([]string, len(lessons))
	for i, l := range lessons {
		ids[i] = l.ID
	}
	return ids
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestCatalogLoadSeedsDefaults(t *testing.T) {
	records := NewMemoryRecordStore()
	catalog := newTestCatalog(t, records, NewMemoryBlobStore(0))

	courses := catalog.Courses()
	require.Len(t, courses, 2)
	assert.Equal(t, "c1", courses[0].ID)
	assert.Equal(t, []string{"l1", "l2", "l3", "l4"}, lessonIDs(courses[0].FlatLessons()))

	_, ok, err := records.Get(context.Background(), shared.RecordCourses)
	require.NoError(t, err)
	assert.True(t, ok, "an absent catalog is seeded and saved")
}

func TestCatalogLoadUnreadableKeepsStoredValue(t *testing.T) {
	ctx := context.Background()
	records := NewMemoryRecordStore()
	require.NoError(t, records.Set(ctx, shared.RecordCourses, "{not json"))

	catalog := newTestCatalog(t, records, NewMemoryBlobStore(0))
	assert.Len(t, catalog.Courses(), 2)

	value, _, _ := records.Get(ctx, shared.RecordCourses)
	assert.Equal(t, "{not json", value)
}

func TestCatalogReadsAreCopies(t *testing.T) {
	catalog := newTestCatalog(t, NewMemoryRecordStore(), NewMemoryBlobStore(0))

	course, err := catalog.Course("c1")
	require.NoError(t, err)
	course.Modules[0].Lessons[0].Title = "changed"

	again, _ := catalog.Course("c1")
	assert.Equal(t, "Course Orientation", again.Modules[0].Lessons[0].Title)

	_, err = catalog.Course("missing")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCatalogNeighborsCrossModules(t *testing.T) {
	catalog := newTestCatalog(t, NewMemoryRecordStore(), NewMemoryBlobStore(0))

	prev, next, err := catalog.Neighbors("c1", "l2")
	require.NoError(t, err)
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, "l1", prev.ID)
	assert.Equal(t, "l3", next.ID)

	prev, _, err = catalog.Neighbors("c1", "l1")
	require.NoError(t, err)
	assert.Nil(t, prev)

	_, next, err = catalog.Neighbors("c1", "l4")
	require.NoError(t, err)
	assert.Nil(t, next)

	_, _, err = catalog.Neighbors("c1", "nope")
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestCatalogCourseModuleLessonLifecycle(t *testing.T) {
	ctx := context.Background()
	records := NewMemoryRecordStore()
	catalog := newTestCatalog(t, records, NewMemoryBlobStore(0))

	var notified int
	catalog.OnChange(func([]model.Course) { notified++ })

	course, err := catalog.AddCourse(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New Course", course.Title)
	assert.Empty(t, course.Modules)

	updated, err := catalog.UpdateCourseDetails(ctx, course.ID, dto.UpdateCourseRequest{Title: strPtr("Go Basics")})
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", updated.Title)
	assert.Equal(t, course.Batch, updated.Batch)

	module, err := catalog.AddModule(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonDefaultDynamic, module.DefaultLessonType)

	lesson, err := catalog.AddLesson(ctx, course.ID, module.ID)
	require.NoError(t, err)
	assert.False(t, lesson.IsLocal)

	_, err = catalog.UpdateModule(ctx, course.ID, module.ID, dto.UpdateModuleRequest{DefaultLessonType: strPtr(model.LessonDefaultStatic)})
	require.NoError(t, err)
	static, err := catalog.AddLesson(ctx, course.ID, module.ID)
	require.NoError(t, err)
	assert.True(t, static.IsLocal, "static modules create local lessons")

	edited, err := catalog.UpdateLesson(ctx, course.ID, module.ID, lesson.ID, dto.UpdateLessonRequest{
		Title:    strPtr("Intro"),
		Type:     strPtr(model.LessonTypePDF),
		URL:      strPtr("https://example.com/intro.pdf"),
		Duration: floatPtr(0),
		IsLocked: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Intro", edited.Title)
	assert.Equal(t, "https://example.com/intro.pdf", edited.URL)
	assert.True(t, edited.IsLocked)

	assert.Equal(t, 7, notified)

	// A fresh service over the same records sees every change.
	reloaded := newTestCatalog(t, records, NewMemoryBlobStore(0))
	got, err := reloaded.Course(course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", got.Title)
	assert.Equal(t, []string{lesson.ID, static.ID}, lessonIDs(got.FlatLessons()))

	require.NoError(t, catalog.DeleteModule(ctx, course.ID, module.ID))
	require.NoError(t, catalog.DeleteCourse(ctx, course.ID))
	_, err = catalog.Course(course.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	assert.ErrorIs(t, catalog.DeleteCourse(ctx, course.ID), ErrCourseNotFound)
	_, err = catalog.AddLesson(ctx, "c1", "missing")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestCatalogReorder(t *testing.T) {
	ctx := context.Background()
	records := NewMemoryRecordStore()
	catalog := newTestCatalog(t, records, NewMemoryBlobStore(0))

	require.NoError(t, catalog.ReorderLessons(ctx, "c1", "m1", 0, 1))
	course, _ := catalog.Course("c1")
	assert.Equal(t, []string{"l2", "l1"}, lessonIDs(course.Modules[0].Lessons))

	require.NoError(t, catalog.ReorderModules(ctx, "c1", 1, 0))
	course, _ = catalog.Course("c1")
	assert.Equal(t, "m2", course.Modules[0].ID)
	assert.Equal(t, "m1", course.Modules[1].ID)
}

func TestCatalogReorderOutOfRangeIsNoop(t *testing.T) {
	ctx := context.Background()
	records := newFlakyRecordStore()
	catalog := newTestCatalog(t, records, NewMemoryBlobStore(0))

	before := catalog.Courses()
	stored, _, _ := records.Get(ctx, shared.RecordCourses)
	writes := records.Sets()

	cases := []struct{ from, to int }{{-1, 0}, {0, 2}, {5, 0}, {0, -3}}
	for _, tc := range cases {
		require.NoError(t, catalog.ReorderModules(ctx, "c1", tc.from, tc.to))
		require.NoError(t, catalog.ReorderLessons(ctx, "c1", "m1", tc.from, tc.to))
	}
	require.NoError(t, catalog.ReorderLessons(ctx, "c1", "missing", 0, 1))

	assert.Equal(t, before, catalog.Courses())
	after, _, _ := records.Get(ctx, shared.RecordCourses)
	assert.Equal(t, stored, after)
	assert.Equal(t, writes, records.Sets(), "no-op reorders never write")
}

func TestCatalogFailedPersistLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	records := newFlakyRecordStore()
	blobs := NewMemoryBlobStore(0)
	catalog := newTestCatalog(t, records, blobs)

	_, err := catalog.UploadLessonContent(ctx, "c1", "m1", "l1", []byte("video"))
	require.NoError(t, err)

	var notified int
	catalog.OnChange(func([]model.Course) { notified++ })

	before := catalog.Courses()
	stored, _, _ := records.Get(ctx, shared.RecordCourses)
	records.FailWrites(true)

	assert.Error(t, catalog.DeleteCourse(ctx, "c1"))
	_, err = catalog.AddModule(ctx, "c1")
	assert.Error(t, err)
	assert.Error(t, catalog.DeleteLesson(ctx, "c1", "m1", "l1"))

	catalog.WaitForCleanup()
	assert.Equal(t, before, catalog.Courses())
	after, _, _ := records.Get(ctx, shared.RecordCourses)
	assert.Equal(t, stored, after)
	assert.Zero(t, notified)

	_, ok, _ := blobs.Get(ctx, "l1")
	assert.True(t, ok, "cleanup only runs after the catalog write succeeds")
	lesson, _, _ := catalog.Lesson("c1", "l1")
	assert.True(t, catalog.Handles().IsLive(lesson.URL))
}

func TestCatalogDeleteLessonCascades(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore(0)
	catalog := newTestCatalog(t, NewMemoryRecordStore(), blobs)

	lesson, err := catalog.UploadLessonContent(ctx, "c1", "m1", "l1", []byte("video"))
	require.NoError(t, err)
	require.True(t, lesson.IsLocal)
	handle := lesson.URL

	require.NoError(t, catalog.DeleteLesson(ctx, "c1", "m1", "l1"))

	course, _ := catalog.Course("c1")
	assert.Equal(t, []string{"l2"}, lessonIDs(course.Modules[0].Lessons), "lesson leaves the module synchronously")
	assert.False(t, catalog.Handles().IsLive(handle))

	catalog.WaitForCleanup()
	_, ok, err := blobs.Get(ctx, "l1")
	require.NoError(t, err)
	assert.False(t, ok)

	stats := catalog.Handles().Stats()
	assert.Equal(t, stats.Acquired, stats.Released)
}

func TestCatalogDeleteCourseCascades(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore(0)
	catalog := newTestCatalog(t, NewMemoryRecordStore(), blobs)

	for _, target := range [][2]string{{"m1", "l1"}, {"m2", "l3"}} {
		_, err := catalog.UploadLessonContent(ctx, "c1", target[0], target[1], []byte("data"))
		require.NoError(t, err)
	}
	_, err := catalog.UploadLessonContent(ctx, "c2", "m3", "l5", []byte("kept"))
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteCourse(ctx, "c1"))
	catalog.WaitForCleanup()

	count, err := blobs.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.EqualValues(t, 1, catalog.Handles().Stats().Live)
}

func TestCatalogCascadeCleanupFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog(t, NewMemoryRecordStore(), UnavailableBlobStore{})

	_, err := catalog.UpdateLesson(ctx, "c1", "m1", "l1", dto.UpdateLessonRequest{IsLocal: boolPtr(true)})
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteModule(ctx, "c1", "m1"), "blob failures never fail the structural delete")
	catalog.WaitForCleanup()

	course, _ := catalog.Course("c1")
	assert.Len(t, course.Modules, 1)
}

func TestCatalogUploadFailureKeepsLessonRemote(t *testing.T) {
	ctx := context.Background()
	records := NewMemoryRecordStore()
	catalog := newTestCatalog(t, records, NewMemoryBlobStore(4))

	_, err := catalog.UploadLessonContent(ctx, "c1", "m1", "l1", []byte("too large for quota"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))

	lesson, _, err := catalog.Lesson("c1", "l1")
	require.NoError(t, err)
	assert.False(t, lesson.IsLocal)
	assert.Contains(t, lesson.URL, "BigBuckBunny")
	assert.Zero(t, catalog.Handles().Stats().Acquired)

	unavailable := newTestCatalog(t, NewMemoryRecordStore(), UnavailableBlobStore{})
	_, err = unavailable.UploadLessonContent(ctx, "c1", "m1", "l1", []byte("x"))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestCatalogUploadPersistsWithoutHandle(t *testing.T) {
	ctx := context.Background()
	records := NewMemoryRecordStore()
	catalog := newTestCatalog(t, records, NewMemoryBlobStore(0))

	lesson, err := catalog.UploadLessonContent(ctx, "c1", "m1", "l2", pdfBytes)
	require.NoError(t, err)
	assert.True(t, catalog.Handles().IsLive(lesson.URL))

	value, _, _ := records.Get(ctx, shared.RecordCourses)
	var stored []model.Course
	require.NoError(t, shared.UnmarshalString(value, &stored))
	l2 := stored[0].Modules[0].Lessons[1]
	assert.True(t, l2.IsLocal)
	assert.Empty(t, l2.URL, "session handles are never persisted")
}

func TestCatalogReuploadFailedPersistKeepsPreviousContent(t *testing.T) {
	ctx := context.Background()
	records := newFlakyRecordStore()
	blobs := NewMemoryBlobStore(0)
	catalog := newTestCatalog(t, records, blobs)

	original, err := catalog.UploadLessonContent(ctx, "c1", "m1", "l1", []byte("original"))
	require.NoError(t, err)

	records.FailWrites(true)
	_, err = catalog.UploadLessonContent(ctx, "c1", "m1", "l1", []byte("replacement"))
	require.Error(t, err)
	catalog.WaitForCleanup()

	stored, ok, err := blobs.Get(ctx, "l1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "original", string(stored))

	lesson, _, err := catalog.Lesson("c1", "l1")
	require.NoError(t, err)
	assert.Equal(t, original.URL, lesson.URL)
	content, err := catalog.Handles().Open(lesson.URL)
	require.NoError(t, err)
	assert.Equal(t, "original", string(content.Data))
}

func TestCatalogFirstUploadFailedPersistDropsContent(t *testing.T) {
	ctx := context.Background()
	records := newFlakyRecordStore()
	blobs := NewMemoryBlobStore(0)
	catalog := newTestCatalog(t, records, blobs)

	records.FailWrites(true)
	_, err := catalog.UploadLessonContent(ctx, "c1", "m1", "l1", []byte("video"))
	require.Error(t, err)
	catalog.WaitForCleanup()

	_, ok, err := blobs.Get(ctx, "l1")
	require.NoError(t, err)
	assert.False(t, ok)

	lesson, _, err := catalog.Lesson("c1", "l1")
	require.NoError(t, err)
	assert.False(t, lesson.IsLocal)
}

func TestCatalogSwitchLocalToRemoteDropsContent(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore(0)
	catalog := newTestCatalog(t, NewMemoryRecordStore(), blobs)

	local, err := catalog.UploadLessonContent(ctx, "c1", "m1", "l1", []byte("video"))
	require.NoError(t, err)

	ignored, err := catalog.UpdateLesson(ctx, "c1", "m1", "l1", dto.UpdateLessonRequest{URL: strPtr("https://example.com/x.mp4")})
	require.NoError(t, err)
	assert.Equal(t, local.URL, ignored.URL, "a local lesson's URL is its handle")

	remote, err := catalog.UpdateLesson(ctx, "c1", "m1", "l1", dto.UpdateLessonRequest{
		IsLocal: boolPtr(false),
		URL:     strPtr("https://example.com/x.mp4"),
	})
	require.NoError(t, err)
	assert.False(t, remote.IsLocal)
	assert.Equal(t, "https://example.com/x.mp4", remote.URL)
	assert.False(t, catalog.Handles().IsLive(local.URL))

	catalog.WaitForCleanup()
	_, ok, _ := blobs.Get(ctx, "l1")
	assert.False(t, ok)
}

func TestCatalogClearReseeds(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog(t, NewMemoryRecordStore(), NewMemoryBlobStore(0))

	_, err := catalog.UploadLessonContent(ctx, "c1", "m1", "l1", []byte("video"))
	require.NoError(t, err)
	require.NoError(t, catalog.DeleteCourse(ctx, "c2"))

	require.NoError(t, catalog.Clear(ctx))
	assert.Len(t, catalog.Courses(), 2)
	assert.Zero(t, catalog.Handles().Stats().Live)
}

func TestMove(t *testing.T) {
	out, ok := move([]string{"a", "b", "c"}, 0, 2)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "c", "a"}, out)

	out, ok = move([]string{"a", "b", "c"}, 2, 0)
	require.True(t, ok)
	assert.Equal(t, []string{"c", "a", "b"}, out)

	_, ok = move([]string{"a"}, 0, 1)
	assert.False(t, ok)
}
