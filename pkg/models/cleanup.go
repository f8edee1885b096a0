package models

import "time"

// StorageCleanup queues object-storage keys whose physical delete failed
// during a cascade. Metadata is the source of truth for what exists, so a
// failed physical delete never blocks the tree operation; the sweep in
// pkg/cron retries these until the bytes are gone.
type StorageCleanup struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	FacilityID int64  `gorm:"not null;index"`
	StorageKey string `gorm:"not null;uniqueIndex"`
	Attempts   int    `gorm:"not null;default:0"`
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (StorageCleanup) TableName() string {
	return "storage_cleanups"
}
