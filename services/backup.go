package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
)

// BackupService exports and restores the durable records as one JSON document.
type BackupService struct {
	appContext.DefaultService

	records  RecordStore
	catalog  *CatalogService
	progress *ProgressService
	now      func() time.Time
}

const BACKUP_SVC = "backup_svc"

func NewBackupService(records RecordStore, catalog *CatalogService, progress *ProgressService) *BackupService {
	return &BackupService{
		records:  records,
		catalog:  catalog,
		progress: progress,
		now:      time.Now,
	}
}

func (svc BackupService) Id() string {
	return BACKUP_SVC
}

func (svc *BackupService) Start() error {
	if svc.records == nil {
		svc.records = svc.Service(STORAGE_SVC).(*StorageService).Records()
	}
	if svc.catalog == nil {
		svc.catalog = svc.Service(CATALOG_SVC).(*CatalogService)
	}
	if svc.progress == nil {
		svc.progress = svc.Service(PROGRESS_SVC).(*ProgressService)
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return nil
}

func (svc *BackupService) Shutdown() {}

// Export copies the stored records verbatim. Records that were never written are omitted.
func (svc *BackupService) Export(ctx context.Context) (*model.Backup, error) {
	backup := &model.Backup{
		Timestamp: svc.now().UTC().Format(time.RFC3339Nano),
		Version:   shared.BackupVersion,
	}

	fields := map[string]**string{
		shared.RecordCourses:  &backup.Courses,
		shared.RecordUsers:    &backup.Users,
		shared.RecordProgress: &backup.Progress,
	}
	for key, field := range fields {
		value, ok, err := svc.records.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if ok {
			v := value
			*field = &v
		}
	}
	return backup, nil
}

// ExportJSON renders the backup document the way it is downloaded.
func (svc *BackupService) ExportJSON(ctx context.Context) ([]byte, error) {
	backup, err := svc.Export(ctx)
	if err != nil {
		return nil, err
	}
	return shared.JSON().MarshalIndent(backup, "", "  ")
}

// Import restores every record present in the document in one write, then reloads the catalog
// and progress. A document that does not parse or has the wrong shape changes nothing.
func (svc *BackupService) Import(ctx context.Context, data []byte) error {
	records, err := parseBackup(data)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	if err := svc.records.SetMany(ctx, records); err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}

	if err := svc.catalog.Reload(ctx); err != nil {
		return err
	}
	if err := svc.progress.Reload(ctx); err != nil {
		return err
	}

	log.WithField("records", len(records)).Info("Backup restored")
	return nil
}

func parseBackup(data []byte) (map[string]string, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedBackup)
	}

	var backup model.Backup
	if err := shared.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
	}

	records := make(map[string]string)

	if backup.Courses != nil && *backup.Courses != "" {
		var courses []model.Course
		if err := shared.UnmarshalString(*backup.Courses, &courses); err != nil {
			return nil, fmt.Errorf("%w: courses: %v", ErrMalformedBackup, err)
		}
		if courses == nil {
			return nil, fmt.Errorf("%w: courses must be a list", ErrMalformedBackup)
		}
		records[shared.RecordCourses] = *backup.Courses
	}

	if backup.Progress != nil && *backup.Progress != "" {
		var progress model.ProgressMap
		if err := shared.UnmarshalString(*backup.Progress, &progress); err != nil {
			return nil, fmt.Errorf("%w: progress: %v", ErrMalformedBackup, err)
		}
		if progress == nil {
			return nil, fmt.Errorf("%w: progress must be an object", ErrMalformedBackup)
		}
		records[shared.RecordProgress] = *backup.Progress
	}

	if backup.Users != nil && *backup.Users != "" {
		var users interface{}
		if err := shared.UnmarshalString(*backup.Users, &users); err != nil {
			return nil, fmt.Errorf("%w: users: %v", ErrMalformedBackup, err)
		}
		records[shared.RecordUsers] = *backup.Users
	}

	return records, nil
}
