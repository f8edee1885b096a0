package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/facilidrive/facilidrive/internal/cache"
	"github.com/facilidrive/facilidrive/internal/config"
	"github.com/facilidrive/facilidrive/internal/database"
	"github.com/facilidrive/facilidrive/internal/locker"
	"github.com/facilidrive/facilidrive/internal/storage"
	"github.com/facilidrive/facilidrive/pkg/schemas"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	cnf      *config.Config
	store    *storage.MemoryGateway
	folders  *FolderService
	files    *FileService
	category *CategoryService
}

func newTestEnv(tb testing.TB) *testEnv {
	db := database.NewTestDatabase(tb)
	cnf := &config.Config{
		Drive: config.DriveConfig{
			MaxDepth:          10,
			MaxFileSize:       100 * 1024 * 1024,
			MaxFilesPerUpload: 20,
			MaxFilesPerFolder: 1000,
			AllowedExtensions: []string{"pdf", "txt", "jpg", "png", "csv"},
			AllowedMimeTypes:  []string{"application/*", "image/*", "text/*"},
			CleanupInterval:   time.Hour,
		},
	}
	cacher := cache.NewMemoryCache(1024 * 1024)
	locks := locker.New()
	store := storage.NewMemoryGateway()
	logger := zap.NewNop().Sugar()

	return &testEnv{
		db:       db,
		cnf:      cnf,
		store:    store,
		folders:  NewFolderService(db, cnf, cacher, locks, store, logger),
		files:    NewFileService(db, cnf, cacher, locks, store, logger),
		category: NewCategoryService(db, cnf, cacher, locks, logger),
	}
}

func (e *testEnv) mustCreateFolder(tb testing.TB, facilityID int64, name string, parentID *string) *schemas.FolderOut {
	tb.Helper()
	out, apperr := e.folders.CreateFolder(context.Background(), facilityID, 1, &schemas.FolderIn{
		Name:     name,
		ParentID: parentID,
	})
	if apperr != nil {
		tb.Fatalf("create folder %q: %v", name, apperr.Error)
	}
	return out
}

func (e *testEnv) mustUpload(tb testing.TB, facilityID int64, folderID *string, name, content string) *schemas.FileOut {
	tb.Helper()
	out, apperr := e.files.Upload(context.Background(), facilityID, 1, folderID,
		name, strings.NewReader(content), int64(len(content)), "application/pdf")
	if apperr != nil {
		tb.Fatalf("upload %q: %v", name, apperr.Error)
	}
	return out
}
