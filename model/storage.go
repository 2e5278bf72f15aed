package model

import "time"

// StoredRecord is one durable named record (a whole JSON document).
type StoredRecord struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (StoredRecord) TableName() string {
	return "records"
}

// StoredBlob is the binary content of one local lesson, keyed by lesson ID.
type StoredBlob struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Data      []byte    `gorm:"not null"`
	Size      int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (StoredBlob) TableName() string {
	return "blobs"
}
