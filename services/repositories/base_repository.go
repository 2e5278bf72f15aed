package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/lac-hong-legacy/learnhub/shared"
	"gorm.io/gorm"
)

// BaseRepository provides common database functionality
type BaseRepository struct {
	db *gorm.DB
}

func NewBaseRepository(db *gorm.DB) BaseRepository {
	return BaseRepository{db: db}
}

// DB returns the underlying database connection
func (r *BaseRepository) DB() *gorm.DB {
	return r.db
}

func (r *BaseRepository) withContext(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// classifyWriteError maps driver errors for full disks or databases onto the shared taxonomy.
func classifyWriteError(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "database or disk is full"),
		strings.Contains(msg, "disk full"),
		strings.Contains(msg, "no space left"),
		strings.Contains(msg, "could not extend file"):
		return fmt.Errorf("%w: %v", shared.ErrQuotaExceeded, err)
	default:
		return fmt.Errorf("%w: %v", shared.ErrWriteFailure, err)
	}
}
