package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/lac-hong-legacy/learnhub/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlobRepository struct {
	BaseRepository
}

func NewBlobRepository(db *gorm.DB) *BlobRepository {
	return &BlobRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *BlobRepository) Put(ctx context.Context, key string, data []byte) error {
	blob := model.StoredBlob{
		Key:       key,
		Data:      data,
		Size:      int64(len(data)),
		UpdatedAt: time.Now(),
	}

	err := ds.withContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "size", "updated_at"}),
	}).Create(&blob).Error
	return classifyWriteError(err)
}

func (ds *BlobRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var blob model.StoredBlob
	err := ds.withContext(ctx).Where("key = ?", key).First(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob.Data, true, nil
}

func (ds *BlobRepository) Delete(ctx context.Context, key string) error {
	return ds.withContext(ctx).Where("key = ?", key).Delete(&model.StoredBlob{}).Error
}

func (ds *BlobRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := ds.withContext(ctx).Model(&model.StoredBlob{}).Count(&count).Error
	return count, err
}

func (ds *BlobRepository) Clear(ctx context.Context) error {
	return ds.withContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.StoredBlob{}).Error
}

// TotalSize reports the stored content size in bytes.
func (ds *BlobRepository) TotalSize(ctx context.Context) (int64, error) {
	var total int64
	err := ds.withContext(ctx).Model(&model.StoredBlob{}).Select("COALESCE(SUM(size), 0)").Scan(&total).Error
	return total, err
}
