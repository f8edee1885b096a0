package models

import (
	"time"

	"github.com/facilidrive/facilidrive/internal/category"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is a document row. FolderID nil means the file sits at the facility
// document root. FilePath is the opaque object-storage key; it is generated
// from facility/folder/token, never from the untrusted OriginalName.
type File struct {
	ID            string             `gorm:"type:uuid;primaryKey"`
	FacilityID    int64              `gorm:"not null;index:idx_files_facility_folder,priority:1"`
	FolderID      *string            `gorm:"type:uuid;index:idx_files_facility_folder,priority:2"`
	OriginalName  string             `gorm:"not null"`
	StoredName    string             `gorm:"not null"`
	FilePath      string             `gorm:"not null"`
	FileSize      int64              `gorm:"not null"`
	MimeType      string             `gorm:"not null"`
	FileExtension string             `gorm:"not null"`
	Category      *category.Category `gorm:"type:text;index"`
	UploadedBy    int64              `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (File) TableName() string {
	return "files"
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
