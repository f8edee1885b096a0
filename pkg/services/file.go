package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/facilidrive/facilidrive/internal/cache"
	"github.com/facilidrive/facilidrive/internal/config"
	"github.com/facilidrive/facilidrive/internal/database"
	"github.com/facilidrive/facilidrive/internal/locker"
	"github.com/facilidrive/facilidrive/internal/naming"
	"github.com/facilidrive/facilidrive/internal/storage"
	"github.com/facilidrive/facilidrive/pkg/mapper"
	"github.com/facilidrive/facilidrive/pkg/models"
	"github.com/facilidrive/facilidrive/pkg/schemas"
	"github.com/facilidrive/facilidrive/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FileService struct {
	db     *gorm.DB
	cnf    *config.Config
	cache  cache.Cacher
	locks  *locker.FacilityLocker
	store  storage.Gateway
	logger *zap.SugaredLogger
}

func NewFileService(
	db *gorm.DB,
	cnf *config.Config,
	cacher cache.Cacher,
	locks *locker.FacilityLocker,
	store storage.Gateway,
	logger *zap.SugaredLogger) *FileService {
	return &FileService{db: db, cnf: cnf, cache: cacher, locks: locks, store: store, logger: logger}
}

// Upload validates and stores a single file. The object is written to the
// gateway first; the metadata row commits after, and a metadata failure rolls
// the object back best-effort so no orphan survives the request.
func (fs *FileService) Upload(ctx context.Context, facilityID, userID int64, folderID *string, name string, r io.Reader, size int64, declaredMime string) (*schemas.FileOut, *types.AppError) {
	if err := naming.Validate(name); err != nil {
		return nil, appError(err)
	}
	ext := naming.Extension(name)
	if err := fs.validateFile(ext, size, declaredMime); err != nil {
		return nil, appError(err)
	}

	unlock := fs.locks.Lock(facilityID)
	defer unlock()

	db := fs.db.WithContext(ctx)

	var folder *models.Folder
	if folderID != nil {
		var err error
		folder, err = getFolderScoped(db, facilityID, *folderID)
		if err != nil {
			return nil, appError(err)
		}
	}

	exists, err := fileNameExists(db, facilityID, folderID, name, "")
	if err != nil {
		return nil, appError(err)
	}
	if exists {
		return nil, appError(duplicateNameError(name))
	}

	var count int64
	countQuery := db.Model(&models.File{}).Where("facility_id = ?", facilityID)
	if folderID == nil {
		countQuery = countQuery.Where("folder_id IS NULL")
	} else {
		countQuery = countQuery.Where("folder_id = ?", *folderID)
	}
	if err := countQuery.Count(&count).Error; err != nil {
		return nil, appError(err)
	}
	if count >= int64(fs.cnf.Drive.MaxFilesPerFolder) {
		return nil, appError(fmt.Errorf("%w: folder holds the maximum of %d files", ErrFileValidation, fs.cnf.Drive.MaxFilesPerFolder))
	}

	storedName := uuid.NewString()
	if ext != "" {
		storedName += "." + ext
	}
	key := objectKey(facilityID, folderID, storedName)

	if err := fs.store.Put(ctx, key, r, size, declaredMime); err != nil {
		fs.logger.Errorw("object upload failed", "facility", facilityID, "key", key, "err", err)
		return nil, appError(fmt.Errorf("%w: %v", ErrStorageFailure, err))
	}

	file := models.File{
		FacilityID:    facilityID,
		FolderID:      folderID,
		OriginalName:  name,
		StoredName:    storedName,
		FilePath:      key,
		FileSize:      size,
		MimeType:      declaredMime,
		FileExtension: ext,
		UploadedBy:    userID,
	}
	if folder != nil {
		file.Category = folder.Category
	}
	if err := db.Create(&file).Error; err != nil {
		if delErr := fs.store.Delete(ctx, key); delErr != nil {
			fs.logger.Errorw("rollback delete failed", "key", key, "err", delErr)
		}
		if database.IsKeyConflictErr(err) {
			return nil, appError(duplicateNameError(name))
		}
		return nil, appError(err)
	}

	return mapper.ToFileOut(&file), nil
}

func (fs *FileService) MoveFile(ctx context.Context, facilityID int64, fileID string, in *schemas.FileMove) (*schemas.FileOut, *types.AppError) {
	unlock := fs.locks.Lock(facilityID)
	defer unlock()

	db := fs.db.WithContext(ctx)

	file, err := getFileScoped(db, facilityID, fileID)
	if err != nil {
		return nil, appError(err)
	}

	var dest *models.Folder
	if in.FolderID != nil {
		dest, err = getFolderScoped(db, facilityID, *in.FolderID)
		if err != nil {
			return nil, appError(err)
		}
	}

	exists, err := fileNameExists(db, facilityID, in.FolderID, file.OriginalName, file.ID)
	if err != nil {
		return nil, appError(err)
	}
	if exists {
		return nil, appError(duplicateNameError(file.OriginalName))
	}

	updates := map[string]interface{}{"folder_id": in.FolderID}
	if dest != nil {
		updates["category"] = dest.Category
	} else {
		updates["category"] = nil
	}
	if err := db.Model(&models.File{}).
		Where("facility_id = ?", facilityID).Where("id = ?", file.ID).
		Updates(updates).Error; err != nil {
		if database.IsKeyConflictErr(err) {
			return nil, appError(duplicateNameError(file.OriginalName))
		}
		return nil, appError(err)
	}

	file.FolderID = in.FolderID
	if dest != nil {
		file.Category = dest.Category
	} else {
		file.Category = nil
	}
	return mapper.ToFileOut(file), nil
}

// DeleteFile removes the metadata row first, then the object. A failed
// physical delete is queued for the cleanup sweep and surfaced as a warning.
func (fs *FileService) DeleteFile(ctx context.Context, facilityID int64, fileID string) (*schemas.DeleteResult, *types.AppError) {
	unlock := fs.locks.Lock(facilityID)
	defer unlock()

	db := fs.db.WithContext(ctx)

	file, err := getFileScoped(db, facilityID, fileID)
	if err != nil {
		return nil, appError(err)
	}

	if err := db.Where("facility_id = ?", facilityID).Where("id = ?", file.ID).
		Delete(&models.File{}).Error; err != nil {
		return nil, appError(err)
	}

	result := &schemas.DeleteResult{Files: 1}
	if err := fs.store.Delete(ctx, file.FilePath); err != nil {
		fs.logger.Warnw("physical delete failed, queued for cleanup",
			"facility", facilityID, "key", file.FilePath, "err", err)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: physical delete failed, queued for retry", file.OriginalName))
		cleanup := models.StorageCleanup{
			FacilityID: facilityID,
			StorageKey: file.FilePath,
			LastError:  err.Error(),
		}
		if qErr := db.Create(&cleanup).Error; qErr != nil && !database.IsKeyConflictErr(qErr) {
			fs.logger.Errorw("cleanup enqueue failed", "key", file.FilePath, "err", qErr)
		}
	}
	return result, nil
}

func (fs *FileService) ListFiles(ctx context.Context, facilityID int64, folderID *string) (*schemas.FileListResponse, *types.AppError) {
	db := fs.db.WithContext(ctx)

	if folderID != nil {
		if _, err := getFolderScoped(db, facilityID, *folderID); err != nil {
			return nil, appError(err)
		}
	}

	query := db.Where("facility_id = ?", facilityID)
	if folderID == nil {
		query = query.Where("folder_id IS NULL")
	} else {
		query = query.Where("folder_id = ?", *folderID)
	}

	var files []models.File
	if err := query.Order("original_name").Find(&files).Error; err != nil {
		return nil, appError(err)
	}

	res := &schemas.FileListResponse{Files: make([]schemas.FileOut, 0, len(files))}
	for i := range files {
		res.Files = append(res.Files, *mapper.ToFileOut(&files[i]))
	}
	return res, nil
}

// Download returns the file metadata and an open object stream. The caller
// owns closing the reader.
func (fs *FileService) Download(ctx context.Context, facilityID int64, fileID string) (*schemas.FileOut, io.ReadCloser, *types.AppError) {
	file, err := getFileScoped(fs.db.WithContext(ctx), facilityID, fileID)
	if err != nil {
		return nil, nil, appError(err)
	}

	rc, err := fs.store.Get(ctx, file.FilePath)
	if err != nil {
		if err == storage.ErrNotFound {
			fs.logger.Errorw("object missing for live file", "facility", facilityID, "key", file.FilePath)
			return nil, nil, appError(database.ErrNotFound)
		}
		return nil, nil, appError(fmt.Errorf("%w: %v", ErrStorageFailure, err))
	}
	return mapper.ToFileOut(file), rc, nil
}

func (fs *FileService) validateFile(ext string, size int64, mimeType string) error {
	if size <= 0 || size > fs.cnf.Drive.MaxFileSize {
		return fmt.Errorf("%w: size must be between 1 byte and %d bytes", ErrFileValidation, fs.cnf.Drive.MaxFileSize)
	}
	if len(fs.cnf.Drive.AllowedExtensions) > 0 {
		ok := false
		for _, allowed := range fs.cnf.Drive.AllowedExtensions {
			if ext == strings.ToLower(allowed) {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: extension %q is not allowed", ErrFileValidation, ext)
		}
	}
	if len(fs.cnf.Drive.AllowedMimeTypes) > 0 && !mimeAllowed(mimeType, fs.cnf.Drive.AllowedMimeTypes) {
		return fmt.Errorf("%w: mime type %q is not allowed", ErrFileValidation, mimeType)
	}
	return nil
}

// mimeAllowed matches "type/subtype" against patterns like "image/*".
func mimeAllowed(mimeType string, patterns []string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	for _, p := range patterns {
		p = strings.ToLower(p)
		if p == "*" || p == "*/*" || p == mimeType {
			return true
		}
		if prefix, ok := strings.CutSuffix(p, "/*"); ok &&
			strings.HasPrefix(mimeType, prefix+"/") {
			return true
		}
	}
	return false
}

func objectKey(facilityID int64, folderID *string, storedName string) string {
	scope := "root"
	if folderID != nil {
		scope = *folderID
	}
	return fmt.Sprintf("facilities/%d/%s/%s", facilityID, scope, storedName)
}
