package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/lac-hong-legacy/learnhub/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecordRepository struct {
	BaseRepository
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *RecordRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var record model.StoredRecord
	err := ds.withContext(ctx).Where("key = ?", key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return record.Value, true, nil
}

func (ds *RecordRepository) Set(ctx context.Context, key, value string) error {
	return upsertRecords(ds.withContext(ctx), map[string]string{key: value})
}

func (ds *RecordRepository) SetMany(ctx context.Context, records map[string]string) error {
	if len(records) == 0 {
		return nil
	}
	return ds.withContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsertRecords(tx, records)
	})
}

func upsertRecords(db *gorm.DB, records map[string]string) error {
	now := time.Now()
	rows := make([]model.StoredRecord, 0, len(records))
	for key, value := range records {
		rows = append(rows, model.StoredRecord{Key: key, Value: value, UpdatedAt: now})
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	return classifyWriteError(err)
}

func (ds *RecordRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return ds.withContext(ctx).Where("key IN ?", keys).Delete(&model.StoredRecord{}).Error
}

func (ds *RecordRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := ds.withContext(ctx).Model(&model.StoredRecord{}).Count(&count).Error
	return count, err
}

func (ds *RecordRepository) Clear(ctx context.Context) error {
	return ds.withContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.StoredRecord{}).Error
}
