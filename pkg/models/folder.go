package models

import (
	"time"

	"github.com/facilidrive/facilidrive/internal/category"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Folder is a node of the per-facility document tree. Path and Category are
// denormalized: Path caches the ancestor-name chain and Category caches the
// nearest categorized ancestor's tag. Both are recomputed by every
// structural write path; neither is a source of truth for parentage.
type Folder struct {
	ID         string             `gorm:"type:uuid;primaryKey"`
	FacilityID int64              `gorm:"not null;index:idx_folders_facility_parent,priority:1"`
	ParentID   *string            `gorm:"type:uuid;index:idx_folders_facility_parent,priority:2"`
	Name       string             `gorm:"not null"`
	Path       string             `gorm:"not null;index"`
	Depth      int                `gorm:"not null;default:1"`
	Category   *category.Category `gorm:"type:text;index"`
	CreatedBy  int64              `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Folder) TableName() string {
	return "folders"
}

func (f *Folder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
