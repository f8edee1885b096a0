package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/facilidrive/facilidrive/internal/cache"
	"github.com/facilidrive/facilidrive/internal/category"
	"github.com/facilidrive/facilidrive/internal/config"
	"github.com/facilidrive/facilidrive/internal/database"
	"github.com/facilidrive/facilidrive/internal/locker"
	"github.com/facilidrive/facilidrive/internal/naming"
	"github.com/facilidrive/facilidrive/internal/storage"
	"github.com/facilidrive/facilidrive/internal/tree"
	"github.com/facilidrive/facilidrive/pkg/mapper"
	"github.com/facilidrive/facilidrive/pkg/models"
	"github.com/facilidrive/facilidrive/pkg/schemas"
	"github.com/facilidrive/facilidrive/pkg/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FolderService owns the per-facility folder tree. Structural mutations
// (create, rename, move, delete) run inside the facility lock so the
// acyclicity and uniqueness checks hold through the write.
type FolderService struct {
	db     *gorm.DB
	cnf    *config.Config
	cache  cache.Cacher
	locks  *locker.FacilityLocker
	store  storage.Gateway
	logger *zap.SugaredLogger
}

func NewFolderService(
	db *gorm.DB,
	cnf *config.Config,
	cacher cache.Cacher,
	locks *locker.FacilityLocker,
	store storage.Gateway,
	logger *zap.SugaredLogger) *FolderService {
	return &FolderService{db: db, cnf: cnf, cache: cacher, locks: locks, store: store, logger: logger}
}

func (fs *FolderService) CreateFolder(ctx context.Context, facilityID, userID int64, in *schemas.FolderIn) (*schemas.FolderOut, *types.AppError) {
	if err := naming.Validate(in.Name); err != nil {
		return nil, appError(err)
	}

	unlock := fs.locks.Lock(facilityID)
	defer unlock()

	db := fs.db.WithContext(ctx)

	var (
		parent *models.Folder
		depth  = 1
		cat    *category.Category
		path   = in.Name
	)
	if in.ParentID != nil {
		var err error
		parent, err = getFolderScoped(db, facilityID, *in.ParentID)
		if err != nil {
			return nil, appError(err)
		}
		if parent.Depth+1 > fs.cnf.Drive.MaxDepth {
			return nil, appError(fmt.Errorf("%w: depth limit is %d", ErrDepthExceeded, fs.cnf.Drive.MaxDepth))
		}
		depth = parent.Depth + 1
		cat = parent.Category

		// The parent path is rebuilt from the live ancestor chain rather
		// than trusted from the cached column.
		parentPath, err := tree.BuildPath(folderNode(parent), folderLookup(db, facilityID))
		if err != nil {
			fs.logger.Errorw("path build failed", "facility", facilityID, "folder", parent.ID, "err", err)
			return nil, appError(err)
		}
		path = parentPath + "/" + in.Name
	}

	exists, err := siblingFolderExists(db, facilityID, in.ParentID, in.Name, "")
	if err != nil {
		return nil, appError(err)
	}
	if exists {
		return nil, appError(duplicateNameError(in.Name))
	}

	folder := models.Folder{
		FacilityID: facilityID,
		ParentID:   in.ParentID,
		Name:       in.Name,
		Path:       path,
		Depth:      depth,
		Category:   cat,
		CreatedBy:  userID,
	}
	if err := db.Create(&folder).Error; err != nil {
		if database.IsKeyConflictErr(err) {
			return nil, appError(duplicateNameError(in.Name))
		}
		return nil, appError(err)
	}

	return mapper.ToFolderOut(&folder), nil
}

func (fs *FolderService) RenameFolder(ctx context.Context, facilityID int64, folderID string, in *schemas.FolderRename) (*schemas.FolderOut, *types.AppError) {
	if err := naming.Validate(in.Name); err != nil {
		return nil, appError(err)
	}

	unlock := fs.locks.Lock(facilityID)
	defer unlock()

	db := fs.db.WithContext(ctx)

	folder, err := getFolderScoped(db, facilityID, folderID)
	if err != nil {
		return nil, appError(err)
	}
	if folder.Name == in.Name {
		return mapper.ToFolderOut(folder), nil
	}

	exists, err := siblingFolderExists(db, facilityID, folder.ParentID, in.Name, folder.ID)
	if err != nil {
		return nil, appError(err)
	}
	if exists {
		return nil, appError(duplicateNameError(in.Name))
	}

	oldPath := folder.Path
	newPath := strings.TrimSuffix(oldPath, folder.Name) + in.Name

	subtree, err := subtreeIDs(db, facilityID, folder.ID, fs.cnf.Drive.MaxDepth)
	if err != nil {
		return nil, appError(err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Folder{}).
			Where("facility_id = ?", facilityID).Where("id = ?", folder.ID).
			Updates(map[string]interface{}{"name": in.Name, "path": newPath}).Error; err != nil {
			return err
		}
		return rewritePathPrefix(tx, facilityID, subtree[1:], oldPath, newPath, 0)
	})
	if err != nil {
		if database.IsKeyConflictErr(err) {
			return nil, appError(duplicateNameError(in.Name))
		}
		return nil, appError(err)
	}

	fs.cache.Delete(folderCacheKeys(facilityID, subtree)...)

	folder.Name = in.Name
	folder.Path = newPath
	folder.UpdatedAt = time.Now().UTC()
	return mapper.ToFolderOut(folder), nil
}

func (fs *FolderService) MoveFolder(ctx context.Context, facilityID int64, folderID string, in *schemas.FolderMove) (*schemas.FolderOut, *types.AppError) {
	unlock := fs.locks.Lock(facilityID)
	defer unlock()

	db := fs.db.WithContext(ctx)

	folder, err := getFolderScoped(db, facilityID, folderID)
	if err != nil {
		return nil, appError(err)
	}

	var parent *models.Folder
	if in.ParentID != nil {
		if *in.ParentID == folder.ID {
			return nil, appError(ErrCyclicMove)
		}
		parent, err = getFolderScoped(db, facilityID, *in.ParentID)
		if err != nil {
			return nil, appError(err)
		}
	}

	subtree, err := subtreeIDs(db, facilityID, folder.ID, fs.cnf.Drive.MaxDepth)
	if err != nil {
		return nil, appError(err)
	}
	if in.ParentID != nil {
		for _, id := range subtree[1:] {
			if id == *in.ParentID {
				return nil, appError(ErrCyclicMove)
			}
		}
	}

	exists, err := siblingFolderExists(db, facilityID, in.ParentID, folder.Name, folder.ID)
	if err != nil {
		return nil, appError(err)
	}
	if exists {
		return nil, appError(duplicateNameError(folder.Name))
	}

	newDepth := 1
	newPath := folder.Name
	var cat *category.Category
	if parent != nil {
		newDepth = parent.Depth + 1
		cat = parent.Category
		parentPath, err := tree.BuildPath(folderNode(parent), folderLookup(db, facilityID))
		if err != nil {
			fs.logger.Errorw("path build failed", "facility", facilityID, "folder", parent.ID, "err", err)
			return nil, appError(err)
		}
		newPath = parentPath + "/" + folder.Name
	}

	height, err := subtreeHeight(db, facilityID, folder, subtree)
	if err != nil {
		return nil, appError(err)
	}
	if newDepth+height > fs.cnf.Drive.MaxDepth {
		return nil, appError(fmt.Errorf("%w: depth limit is %d", ErrDepthExceeded, fs.cnf.Drive.MaxDepth))
	}

	oldPath := folder.Path
	depthDelta := newDepth - folder.Depth

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Folder{}).
			Where("facility_id = ?", facilityID).Where("id = ?", folder.ID).
			Updates(map[string]interface{}{
				"parent_id": in.ParentID,
				"path":      newPath,
				"depth":     newDepth,
				"category":  cat,
			}).Error; err != nil {
			return err
		}
		if err := rewritePathPrefix(tx, facilityID, subtree[1:], oldPath, newPath, depthDelta); err != nil {
			return err
		}
		// Category inheritance overwrites the whole moved subtree, folders
		// and files alike: nearest categorized ancestor wins.
		if len(subtree) > 1 {
			if err := tx.Model(&models.Folder{}).
				Where("facility_id = ?", facilityID).Where("id IN ?", subtree[1:]).
				Update("category", cat).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.File{}).
			Where("facility_id = ?", facilityID).Where("folder_id IN ?", subtree).
			Update("category", cat).Error
	})
	if err != nil {
		if database.IsKeyConflictErr(err) {
			return nil, appError(duplicateNameError(folder.Name))
		}
		return nil, appError(err)
	}

	fs.cache.Delete(folderCacheKeys(facilityID, subtree)...)

	folder.ParentID = in.ParentID
	folder.Path = newPath
	folder.Depth = newDepth
	folder.Category = cat
	folder.UpdatedAt = time.Now().UTC()
	return mapper.ToFolderOut(folder), nil
}

func (fs *FolderService) GetFolder(ctx context.Context, facilityID int64, folderID string) (*schemas.FolderOut, *types.AppError) {
	key := folderCacheKey(facilityID, folderID)

	out := &schemas.FolderOut{}
	if err := fs.cache.Get(key, out); err == nil {
		return out, nil
	}

	folder, err := getFolderScoped(fs.db.WithContext(ctx), facilityID, folderID)
	if err != nil {
		return nil, appError(err)
	}
	out = mapper.ToFolderOut(folder)
	fs.cache.Set(key, out, time.Hour)
	return out, nil
}

func (fs *FolderService) ListChildren(ctx context.Context, facilityID int64, parentID *string) (*schemas.FolderListResponse, *types.AppError) {
	db := fs.db.WithContext(ctx)

	if parentID != nil {
		if _, err := getFolderScoped(db, facilityID, *parentID); err != nil {
			return nil, appError(err)
		}
	}

	query := db.Where("facility_id = ?", facilityID)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}

	var folders []models.Folder
	if err := query.Order("name").Find(&folders).Error; err != nil {
		return nil, appError(err)
	}

	res := &schemas.FolderListResponse{Folders: make([]schemas.FolderOut, 0, len(folders))}
	for i := range folders {
		res.Folders = append(res.Folders, *mapper.ToFolderOut(&folders[i]))
	}
	return res, nil
}

// ListSubtree returns the flattened descendant listing of a folder,
// shallowest first.
func (fs *FolderService) ListSubtree(ctx context.Context, facilityID int64, folderID string) (*schemas.SubtreeResponse, *types.AppError) {
	db := fs.db.WithContext(ctx)

	if _, err := getFolderScoped(db, facilityID, folderID); err != nil {
		return nil, appError(err)
	}
	subtree, err := subtreeIDs(db, facilityID, folderID, fs.cnf.Drive.MaxDepth)
	if err != nil {
		return nil, appError(err)
	}

	var folders []models.Folder
	if err := db.Where("facility_id = ?", facilityID).Where("id IN ?", subtree).
		Order("depth").Order("path").Find(&folders).Error; err != nil {
		return nil, appError(err)
	}

	res := &schemas.SubtreeResponse{Folders: make([]schemas.FolderOut, 0, len(folders))}
	for i := range folders {
		res.Folders = append(res.Folders, *mapper.ToFolderOut(&folders[i]))
	}
	return res, nil
}

// Breadcrumb resolves the display trail for a folder from the live
// ancestor chain.
func (fs *FolderService) Breadcrumb(ctx context.Context, facilityID int64, folderID string) (*schemas.BreadcrumbOut, *types.AppError) {
	db := fs.db.WithContext(ctx)

	folder, err := getFolderScoped(db, facilityID, folderID)
	if err != nil {
		return nil, appError(err)
	}

	segments := []schemas.BreadcrumbSegment{{ID: folder.ID, Name: folder.Name}}
	visited := map[string]struct{}{folder.ID: {}}
	current := folder
	for current.ParentID != nil {
		parent, err := getFolderScoped(db, facilityID, *current.ParentID)
		if err != nil {
			if database.IsRecordNotFoundErr(err) {
				return nil, appError(tree.ErrCorruptTree)
			}
			return nil, appError(err)
		}
		if _, seen := visited[parent.ID]; seen {
			return nil, appError(tree.ErrCorruptTree)
		}
		visited[parent.ID] = struct{}{}
		segments = append([]schemas.BreadcrumbSegment{{ID: parent.ID, Name: parent.Name}}, segments...)
		current = parent
	}

	return &schemas.BreadcrumbOut{Path: folder.Path, Segments: segments}, nil
}

// rewritePathPrefix rebases the cached path of every listed descendant from
// oldPath to newPath and shifts its depth by depthDelta.
func rewritePathPrefix(tx *gorm.DB, facilityID int64, descendantIDs []string, oldPath, newPath string, depthDelta int) error {
	if len(descendantIDs) == 0 {
		return nil
	}
	var rows []models.Folder
	if err := tx.Select("id", "path", "depth").
		Where("facility_id = ?", facilityID).Where("id IN ?", descendantIDs).
		Find(&rows).Error; err != nil {
		return err
	}
	for i := range rows {
		if !strings.HasPrefix(rows[i].Path, oldPath+"/") {
			return tree.ErrCorruptTree
		}
		updates := map[string]interface{}{
			"path": newPath + rows[i].Path[len(oldPath):],
		}
		if depthDelta != 0 {
			updates["depth"] = rows[i].Depth + depthDelta
		}
		if err := tx.Model(&models.Folder{}).
			Where("facility_id = ?", facilityID).Where("id = ?", rows[i].ID).
			Updates(updates).Error; err != nil {
			return err
		}
	}
	return nil
}

// subtreeHeight is the number of levels below folder within its subtree.
func subtreeHeight(db *gorm.DB, facilityID int64, folder *models.Folder, subtree []string) (int, error) {
	if len(subtree) <= 1 {
		return 0, nil
	}
	var maxDepth int
	err := db.Model(&models.Folder{}).
		Where("facility_id = ?", facilityID).Where("id IN ?", subtree).
		Select("MAX(depth)").Scan(&maxDepth).Error
	if err != nil {
		return 0, err
	}
	return maxDepth - folder.Depth, nil
}
