package services

import (
	"context"
	"fmt"

	"github.com/facilidrive/facilidrive/pkg/models"
	"github.com/facilidrive/facilidrive/pkg/schemas"
	"github.com/facilidrive/facilidrive/pkg/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeleteFolderSubtree removes a folder, its descendants and every file they
// contain. Physical object deletes run first, while the metadata is still
// intact and the request can be cancelled without loss; the metadata then
// falls in a single transaction. A failed physical delete is queued in
// storage_cleanups and reported as a warning, never as a request failure.
func (fs *FolderService) DeleteFolderSubtree(ctx context.Context, facilityID int64, folderID string) (*schemas.DeleteResult, *types.AppError) {
	unlock := fs.locks.Lock(facilityID)
	defer unlock()

	db := fs.db.WithContext(ctx)

	if _, err := getFolderScoped(db, facilityID, folderID); err != nil {
		return nil, appError(err)
	}

	subtree, err := subtreeIDs(db, facilityID, folderID, fs.cnf.Drive.MaxDepth)
	if err != nil {
		return nil, appError(err)
	}

	var files []models.File
	if err := db.Select("id", "file_path", "original_name").
		Where("facility_id = ?", facilityID).Where("folder_id IN ?", subtree).
		Find(&files).Error; err != nil {
		return nil, appError(err)
	}

	var (
		warnings []string
		cleanups []models.StorageCleanup
	)
	for i := range files {
		if err := ctx.Err(); err != nil {
			return nil, appError(err)
		}
		if err := fs.store.Delete(ctx, files[i].FilePath); err != nil {
			fs.logger.Warnw("physical delete failed, queued for cleanup",
				"facility", facilityID, "key", files[i].FilePath, "err", err)
			warnings = append(warnings, fmt.Sprintf("%s: physical delete failed, queued for retry", files[i].OriginalName))
			cleanups = append(cleanups, models.StorageCleanup{
				FacilityID: facilityID,
				StorageKey: files[i].FilePath,
				LastError:  err.Error(),
			})
		}
	}

	var folderCount, fileCount int64
	err = db.Transaction(func(tx *gorm.DB) error {
		if len(cleanups) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&cleanups).Error; err != nil {
				return err
			}
		}
		res := tx.Where("facility_id = ?", facilityID).Where("folder_id IN ?", subtree).
			Delete(&models.File{})
		if res.Error != nil {
			return res.Error
		}
		fileCount = res.RowsAffected

		// Files go first, then folders deepest-first, so the
		// self-referential parent constraint never trips.
		for i := len(subtree) - 1; i >= 0; i-- {
			res = tx.Where("facility_id = ?", facilityID).Where("id = ?", subtree[i]).
				Delete(&models.Folder{})
			if res.Error != nil {
				return res.Error
			}
			folderCount += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, appError(err)
	}

	fs.cache.Delete(folderCacheKeys(facilityID, subtree)...)

	fs.logger.Infow("folder subtree deleted",
		"facility", facilityID, "folder", folderID,
		"folders", folderCount, "files", fileCount, "warnings", len(warnings))

	return &schemas.DeleteResult{Folders: folderCount, Files: fileCount, Warnings: warnings}, nil
}
