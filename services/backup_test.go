package services

import (
	"context"
	"testing"
	"time"

	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backupFixture struct {
	records  *flakyRecordStore
	catalog  *CatalogService
	progress *ProgressService
	backup   *BackupService
}

func newBackupFixture(t *testing.T) backupFixture {
	t.Helper()
	records := newFlakyRecordStore()
	catalog := newTestCatalog(t, records, NewMemoryBlobStore(0))
	progress := newTestProgress(t, records, catalog)
	backup := NewBackupService(records, catalog, progress)
	backup.now = func() time.Time { return fixedNow }
	return backupFixture{records: records, catalog: catalog, progress: progress, backup: backup}
}

func TestBackupExportSkipsAbsentRecords(t *testing.T) {
	f := newBackupFixture(t)

	doc, err := f.backup.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0", doc.Version)
	assert.Equal(t, fixedNow.UTC().Format(time.RFC3339Nano), doc.Timestamp)
	require.NotNil(t, doc.Courses)
	assert.Nil(t, doc.Progress, "progress was never written")
	assert.Nil(t, doc.Users)
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newBackupFixture(t)

	course, err := f.catalog.AddCourse(ctx)
	require.NoError(t, err)
	_, err = f.catalog.UpdateCourseDetails(ctx, course.ID, dto.UpdateCourseRequest{Title: strPtr("Rust")})
	require.NoError(t, err)
	require.NoError(t, f.catalog.ReorderLessons(ctx, "c1", "m2", 1, 0))
	_, err = f.progress.RecordProgress(ctx, "c1", "l1", 300, 600, false)
	require.NoError(t, err)
	_, err = f.progress.MarkComplete(ctx, "c1", "l2")
	require.NoError(t, err)
	require.NoError(t, f.records.Set(ctx, shared.RecordUsers, `[{"id":"u1","role":"admin"}]`))

	wantCourses := f.catalog.Courses()
	wantProgress := f.progress.Snapshot()

	data, err := f.backup.ExportJSON(ctx)
	require.NoError(t, err)

	require.NoError(t, f.records.Clear(ctx))
	require.NoError(t, f.catalog.Reload(ctx))
	f.progress.Clear()
	require.NotEqual(t, wantCourses, f.catalog.Courses())

	require.NoError(t, f.backup.Import(ctx, data))
	assert.Equal(t, wantCourses, f.catalog.Courses())
	assert.Equal(t, wantProgress, f.progress.Snapshot())

	users, ok, err := f.records.Get(ctx, shared.RecordUsers)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"u1","role":"admin"}]`, users)
}

func TestBackupImportPartialDocument(t *testing.T) {
	ctx := context.Background()
	f := newBackupFixture(t)

	_, err := f.progress.RecordProgress(ctx, "c1", "l1", 300, 600, false)
	require.NoError(t, err)

	progress := model.ProgressMap{"c2": {"l5": {Status: model.StatusCompleted, Timestamp: 1200, LastUpdated: 1}}}
	encoded, err := shared.MarshalString(progress)
	require.NoError(t, err)
	doc, err := shared.Marshal(model.Backup{Progress: &encoded, Version: "1.0"})
	require.NoError(t, err)

	require.NoError(t, f.backup.Import(ctx, doc))
	assert.Equal(t, progress, f.progress.Snapshot())
	assert.Len(t, f.catalog.Courses(), 2, "records missing from the document are left alone")
}

func TestBackupImportRejectsMalformedDocuments(t *testing.T) {
	ctx := context.Background()
	f := newBackupFixture(t)

	_, err := f.progress.RecordProgress(ctx, "c1", "l1", 300, 600, false)
	require.NoError(t, err)
	before, _, _ := f.records.Get(ctx, shared.RecordCourses)
	beforeProgress := f.progress.Snapshot()
	writes := f.records.Sets()

	docs := map[string]string{
		"not json":         "definitely not json",
		"array":            `[1, 2, 3]`,
		"truncated":        `{"courses": "[]"`,
		"courses shape":    `{"courses": "{\"id\": 1}", "version": "1.0"}`,
		"progress shape":   `{"progress": "[1,2]", "version": "1.0"}`,
		"users not json":   `{"users": "{oops", "version": "1.0"}`,
		"courses not text": `{"courses": 42}`,
		"courses null":     `{"courses": "null", "version": "1.0"}`,
		"progress null":    `{"progress": "null", "version": "1.0"}`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			err := f.backup.Import(ctx, []byte(doc))
			assert.ErrorIs(t, err, ErrMalformedBackup)
		})
	}

	after, _, _ := f.records.Get(ctx, shared.RecordCourses)
	assert.Equal(t, before, after)
	assert.Equal(t, beforeProgress, f.progress.Snapshot())
	assert.Equal(t, writes, f.records.Sets())
}

func TestBackupImportFailedWriteChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newBackupFixture(t)

	data, err := f.backup.ExportJSON(ctx)
	require.NoError(t, err)
	require.NoError(t, f.catalog.DeleteCourse(ctx, "c2"))

	f.records.FailWrites(true)
	assert.Error(t, f.backup.Import(ctx, data))
	assert.Len(t, f.catalog.Courses(), 1)
}
