package services

import (
	"context"
	"errors"
	"fmt"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learnhub/dto"
	log "github.com/sirupsen/logrus"
)

// MaintenanceService reports storage usage and wipes everything on request.
type MaintenanceService struct {
	appContext.DefaultService

	storage  *StorageService
	catalog  *CatalogService
	progress *ProgressService
}

const MAINTENANCE_SVC = "maintenance_svc"

func NewMaintenanceService(storage *StorageService, catalog *CatalogService, progress *ProgressService) *MaintenanceService {
	return &MaintenanceService{storage: storage, catalog: catalog, progress: progress}
}

func (svc MaintenanceService) Id() string {
	return MAINTENANCE_SVC
}

func (svc *MaintenanceService) Start() error {
	if svc.storage == nil {
		svc.storage = svc.Service(STORAGE_SVC).(*StorageService)
	}
	if svc.catalog == nil {
		svc.catalog = svc.Service(CATALOG_SVC).(*CatalogService)
	}
	if svc.progress == nil {
		svc.progress = svc.Service(PROGRESS_SVC).(*ProgressService)
	}
	return nil
}

func (svc *MaintenanceService) Shutdown() {}

// StorageStats counts stored records and blobs, and the blob bytes where the driver can tell. An unavailable blob store is reported, not failed.
func (svc *MaintenanceService) StorageStats(ctx context.Context) (*dto.StorageStatsResponse, error) {
	records, err := svc.storage.Records().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	stats := &dto.StorageStatsResponse{
		RecordDriver:   svc.storage.RecordDriver(),
		BlobDriver:     svc.storage.BlobDriver(),
		Records:        records,
		BlobsAvailable: true,
		Handles:        svc.catalog.Handles().Stats(),
	}

	blobs, err := svc.storage.Blobs().Count(ctx)
	recordBlobOp("count", err)
	switch {
	case errors.Is(err, ErrStorageUnavailable):
		stats.BlobsAvailable = false
	case err != nil:
		return nil, fmt.Errorf("failed to count blobs: %w", err)
	default:
		stats.Blobs = blobs
	}

	if sizer, ok := svc.storage.Blobs().(BlobSizer); ok && stats.BlobsAvailable {
		size, err := sizer.TotalSize(ctx)
		recordBlobOp("size", err)
		if err != nil {
			return nil, fmt.Errorf("failed to measure blobs: %w", err)
		}
		stats.BlobBytes = size
	}
	return stats, nil
}

// ClearAll deletes every record and blob, releases all handles and starts over from the
// default catalog with no progress.
func (svc *MaintenanceService) ClearAll(ctx context.Context) error {
	svc.catalog.WaitForCleanup()

	if err := svc.storage.Records().Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	err := svc.storage.Blobs().Clear(ctx)
	recordBlobOp("clear", err)
	if err != nil && !errors.Is(err, ErrStorageUnavailable) {
		return fmt.Errorf("failed to clear content: %w", err)
	}

	svc.progress.Clear()
	if err := svc.catalog.Clear(ctx); err != nil {
		return err
	}

	log.Warn("All stored data cleared")
	return nil
}
