package services

import (
	"fmt"

	"github.com/facilidrive/facilidrive/internal/database"
	"github.com/facilidrive/facilidrive/internal/tree"
	"github.com/facilidrive/facilidrive/pkg/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Every query in this file carries the facility id. The facility is the
// tenancy boundary: a folder or file of another facility must be
// indistinguishable from one that never existed, so scoped lookups answer
// ErrNotFound for both cases.

// Ids come straight from URL params. Malformed text would error inside the
// uuid column comparison (a 500 on Postgres), so it is rejected as NotFound
// up front, same as an id that never existed.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func getFolderScoped(db *gorm.DB, facilityID int64, folderID string) (*models.Folder, error) {
	if !validID(folderID) {
		return nil, database.ErrNotFound
	}
	var folder models.Folder
	err := db.Where("facility_id = ?", facilityID).Where("id = ?", folderID).First(&folder).Error
	if err != nil {
		if database.IsRecordNotFoundErr(err) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &folder, nil
}

func getFileScoped(db *gorm.DB, facilityID int64, fileID string) (*models.File, error) {
	if !validID(fileID) {
		return nil, database.ErrNotFound
	}
	var file models.File
	err := db.Where("facility_id = ?", facilityID).Where("id = ?", fileID).First(&file).Error
	if err != nil {
		if database.IsRecordNotFoundErr(err) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

// folderLookup adapts scoped folder reads to the path builder. Missing ids
// resolve to nil so the builder can report the broken chain itself.
func folderLookup(db *gorm.DB, facilityID int64) tree.Lookup {
	return func(id string) (*tree.Node, error) {
		folder, err := getFolderScoped(db, facilityID, id)
		if err != nil {
			if database.IsRecordNotFoundErr(err) {
				return nil, nil
			}
			return nil, err
		}
		return folderNode(folder), nil
	}
}

func folderNode(folder *models.Folder) *tree.Node {
	return &tree.Node{ID: folder.ID, ParentID: folder.ParentID, Name: folder.Name}
}

type folderChildLister struct {
	db         *gorm.DB
	facilityID int64
}

func (l folderChildLister) ListChildIDs(parentIDs []string) ([]string, error) {
	var ids []string
	err := l.db.Model(&models.Folder{}).
		Where("facility_id = ?", l.facilityID).
		Where("parent_id IN ?", parentIDs).
		Order("depth").Order("path").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// subtreeIDs resolves folder plus all of its descendants, breadth-first.
func subtreeIDs(db *gorm.DB, facilityID int64, folderID string, maxDepth int) ([]string, error) {
	descendants, err := tree.Descendants(folderID, maxDepth+1, folderChildLister{db: db, facilityID: facilityID})
	if err != nil {
		return nil, err
	}
	return append([]string{folderID}, descendants...), nil
}

// siblingFolderExists reports a name collision among the children of
// parentID (nil for root level), ignoring excludeID.
func siblingFolderExists(db *gorm.DB, facilityID int64, parentID *string, name, excludeID string) (bool, error) {
	query := db.Model(&models.Folder{}).
		Where("facility_id = ?", facilityID).
		Where("name = ?", name)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func fileNameExists(db *gorm.DB, facilityID int64, folderID *string, name, excludeID string) (bool, error) {
	query := db.Model(&models.File{}).
		Where("facility_id = ?", facilityID).
		Where("original_name = ?", name)
	if folderID == nil {
		query = query.Where("folder_id IS NULL")
	} else {
		query = query.Where("folder_id = ?", *folderID)
	}
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func duplicateNameError(name string) error {
	return fmt.Errorf("%w: %q already exists here", ErrDuplicateName, name)
}

func folderCacheKey(facilityID int64, folderID string) string {
	return fmt.Sprintf("folders:%d:%s", facilityID, folderID)
}

func folderCacheKeys(facilityID int64, folderIDs []string) []string {
	keys := make([]string, len(folderIDs))
	for i, id := range folderIDs {
		keys[i] = folderCacheKey(facilityID, id)
	}
	return keys
}
