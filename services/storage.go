package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// RecordStore is the key-value port holding the durable named records
// (catalog snapshot, progress snapshot, users, session). Every write replaces a whole record.
type RecordStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes every record or none of them.
	SetMany(ctx context.Context, records map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}

// BlobStore is the port for lesson content keyed by lesson ID. Get of a missing key reports
// ok=false with a nil error and Delete of a missing key succeeds.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}

// BlobSizer is implemented by blob stores that can report how many bytes they hold.
type BlobSizer interface {
	TotalSize(ctx context.Context) (int64, error)
}

const (
	DriverMemory   = "memory"
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMinIO    = "minio"
	DriverNone     = "none"
)

type StorageService struct {
	appContext.DefaultService

	recordDriver string
	blobDriver   string
	blobQuota    int64

	records RecordStore
	blobs   BlobStore
}

const STORAGE_SVC = "storage_svc"

// NewStorageService builds a storage service around explicit drivers, bypassing configuration.
func NewStorageService(records RecordStore, blobs BlobStore) *StorageService {
	return &StorageService{records: records, blobs: blobs}
}

func (svc StorageService) Id() string {
	return STORAGE_SVC
}

func (svc *StorageService) Configure(ctx *appContext.Context) error {
	svc.recordDriver = os.Getenv("RECORD_DRIVER")
	if svc.recordDriver == "" {
		svc.recordDriver = DriverSqlite
	}

	svc.blobDriver = os.Getenv("BLOB_DRIVER")
	if svc.blobDriver == "" {
		svc.blobDriver = DriverSqlite
	}

	if quota := os.Getenv("BLOB_QUOTA_BYTES"); quota != "" {
		var err error
		if svc.blobQuota, err = strconv.ParseInt(quota, 10, 64); err != nil {
			return fmt.Errorf("invalid BLOB_QUOTA_BYTES: %w", err)
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *StorageService) Start() error {
	if svc.records == nil {
		records, err := svc.openRecords()
		if err != nil {
			return err
		}
		svc.records = records
	}

	if svc.blobs == nil {
		blobs, err := svc.openBlobs()
		if err != nil {
			// Catalog and progress use the record store; only local content is lost.
			log.WithFields(log.Fields{
				"driver": svc.blobDriver,
				"error":  err.Error(),
			}).Warn("Blob store could not be opened, local content disabled")
			blobs = UnavailableBlobStore{Cause: err}
		}
		svc.blobs = blobs
	}

	log.WithFields(log.Fields{
		"records": svc.recordDriver,
		"blobs":   svc.blobDriver,
	}).Info("Storage drivers ready")
	return nil
}

func (svc *StorageService) openRecords() (RecordStore, error) {
	switch svc.recordDriver {
	case DriverMemory:
		return NewMemoryRecordStore(), nil
	case DriverSqlite, DriverPostgres:
		return svc.Service(SQLITE_SVC).(*SqliteService).RecordRepository(), nil
	case DriverRedis:
		return svc.Service(REDIS_SVC).(*RedisService), nil
	default:
		return nil, fmt.Errorf("unknown record driver %q", svc.recordDriver)
	}
}

func (svc *StorageService) openBlobs() (BlobStore, error) {
	switch svc.blobDriver {
	case DriverMemory:
		return NewMemoryBlobStore(svc.blobQuota), nil
	case DriverSqlite, DriverPostgres:
		return svc.Service(SQLITE_SVC).(*SqliteService).BlobRepository(), nil
	case DriverMinIO:
		return svc.Service(MINIO_SVC).(*MinIOService), nil
	case DriverNone:
		return nil, ErrStorageUnavailable
	default:
		return nil, fmt.Errorf("unknown blob driver %q", svc.blobDriver)
	}
}

func (svc *StorageService) Shutdown() {}

func (svc *StorageService) Records() RecordStore {
	return svc.records
}

func (svc *StorageService) Blobs() BlobStore {
	return svc.blobs
}

// RecordDriver and BlobDriver report the configured driver names.
func (svc *StorageService) RecordDriver() string {
	return svc.recordDriver
}

func (svc *StorageService) BlobDriver() string {
	return svc.blobDriver
}

// ==================== UNAVAILABLE BLOB STORE ====================

// UnavailableBlobStore stands in when the blob backend cannot be opened.
type UnavailableBlobStore struct {
	Cause error
}

func (s UnavailableBlobStore) err() error {
	if s.Cause == nil || s.Cause == ErrStorageUnavailable {
		return ErrStorageUnavailable
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, s.Cause)
}

func (s UnavailableBlobStore) Put(context.Context, string, []byte) error { return s.err() }

func (s UnavailableBlobStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, s.err()
}

func (s UnavailableBlobStore) Delete(context.Context, string) error { return s.err() }

func (s UnavailableBlobStore) Count(context.Context) (int64, error) { return 0, s.err() }

func (s UnavailableBlobStore) Clear(context.Context) error { return s.err() }

// ==================== MEMORY DRIVERS ====================

type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[string]string
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[string]string)}
}

func (s *MemoryRecordStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.records[key]
	return value, ok, nil
}

func (s *MemoryRecordStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = value
	return nil
}

func (s *MemoryRecordStore) SetMany(_ context.Context, records map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range records {
		s.records[key] = value
	}
	return nil
}

func (s *MemoryRecordStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.records, key)
	}
	return nil
}

func (s *MemoryRecordStore) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

func (s *MemoryRecordStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]string)
	return nil
}

// MemoryBlobStore keeps blobs in process memory. A positive quota caps the total stored bytes.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	size  int64
	quota int64
}

func NewMemoryBlobStore(quota int64) *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte), quota: quota}
}

func (s *MemoryBlobStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.size - int64(len(s.blobs[key])) + int64(len(data))
	if s.quota > 0 && next > s.quota {
		return fmt.Errorf("%w: %d of %d bytes", ErrQuotaExceeded, next, s.quota)
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[key] = stored
	s.size = next
	return nil
}

func (s *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (s *MemoryBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.size -= int64(len(s.blobs[key]))
	delete(s.blobs, key)
	return nil
}

func (s *MemoryBlobStore) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.blobs)), nil
}

func (s *MemoryBlobStore) TotalSize(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size, nil
}

func (s *MemoryBlobStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs = make(map[string][]byte)
	s.size = 0
	return nil
}
