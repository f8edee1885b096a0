package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/facilidrive/facilidrive/internal/cache"
	"github.com/facilidrive/facilidrive/internal/category"
	"github.com/facilidrive/facilidrive/internal/config"
	"github.com/facilidrive/facilidrive/internal/locker"
	"github.com/facilidrive/facilidrive/pkg/models"
	"github.com/facilidrive/facilidrive/pkg/schemas"
	"github.com/facilidrive/facilidrive/pkg/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryService struct {
	db     *gorm.DB
	cnf    *config.Config
	cache  cache.Cacher
	locks  *locker.FacilityLocker
	logger *zap.SugaredLogger
}

func NewCategoryService(db *gorm.DB, cnf *config.Config, cacher cache.Cacher, locks *locker.FacilityLocker, logger *zap.SugaredLogger) *CategoryService {
	return &CategoryService{db: db, cnf: cnf, cache: cacher, locks: locks, logger: logger}
}

// TagSubtree overwrites the category of a folder, all of its descendants and
// every file they contain.
func (cs *CategoryService) TagSubtree(ctx context.Context, facilityID int64, in *schemas.TagSubtree) (*schemas.TagResult, *types.AppError) {
	cat, err := category.Parse(in.Category)
	if err != nil {
		return nil, appError(fmt.Errorf("%w: %v", ErrFileValidation, err))
	}

	unlock := cs.locks.Lock(facilityID)
	defer unlock()

	db := cs.db.WithContext(ctx)

	if _, err := getFolderScoped(db, facilityID, in.RootID); err != nil {
		return nil, appError(err)
	}
	subtree, err := subtreeIDs(db, facilityID, in.RootID, cs.cnf.Drive.MaxDepth)
	if err != nil {
		return nil, appError(err)
	}

	result := &schemas.TagResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Folder{}).
			Where("facility_id = ?", facilityID).Where("id IN ?", subtree).
			Update("category", cat)
		if res.Error != nil {
			return res.Error
		}
		result.Folders = res.RowsAffected

		res = tx.Model(&models.File{}).
			Where("facility_id = ?", facilityID).Where("folder_id IN ?", subtree).
			Update("category", cat)
		if res.Error != nil {
			return res.Error
		}
		result.Files = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, appError(err)
	}

	cs.cache.Delete(folderCacheKeys(facilityID, subtree)...)

	cs.logger.Infow("subtree tagged",
		"facility", facilityID, "root", in.RootID, "category", cat,
		"folders", result.Folders, "files", result.Files)
	return result, nil
}

// Backfill tags legacy trees by root folder name. Only untagged rows are
// touched, so re-running the same mapping is a no-op: a root that already
// carries a category is skipped, and within a matched subtree only rows with
// NULL category receive the new tag.
func (cs *CategoryService) Backfill(ctx context.Context, in *schemas.BackfillIn) (*schemas.BackfillOut, *types.AppError) {
	mapping := make(map[string]category.Category, len(in.Mapping))
	for name, raw := range in.Mapping {
		cat, err := category.Parse(raw)
		if err != nil {
			return nil, appError(fmt.Errorf("%w: %v", ErrFileValidation, err))
		}
		mapping[name] = cat
	}

	db := cs.db.WithContext(ctx)

	var facilities []int64
	if in.FacilityID != nil {
		facilities = []int64{*in.FacilityID}
	} else {
		if err := db.Model(&models.Folder{}).
			Distinct("facility_id").Order("facility_id").
			Pluck("facility_id", &facilities).Error; err != nil {
			return nil, appError(err)
		}
	}

	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)

	out := &schemas.BackfillOut{}
	for _, facilityID := range facilities {
		if err := ctx.Err(); err != nil {
			return nil, appError(err)
		}
		if err := cs.backfillFacility(ctx, facilityID, names, mapping, out); err != nil {
			return nil, appError(err)
		}
	}

	cs.logger.Infow("backfill finished",
		"facilities", len(facilities), "roots", out.RootsMatched,
		"folders", out.Folders, "files", out.Files)
	return out, nil
}

func (cs *CategoryService) backfillFacility(ctx context.Context, facilityID int64, names []string, mapping map[string]category.Category, out *schemas.BackfillOut) error {
	unlock := cs.locks.Lock(facilityID)
	defer unlock()

	db := cs.db.WithContext(ctx)

	for _, name := range names {
		var roots []models.Folder
		err := db.Where("facility_id = ?", facilityID).
			Where("parent_id IS NULL").
			Where("name = ?", name).
			Where("category IS NULL").
			Find(&roots).Error
		if err != nil {
			return err
		}

		cat := mapping[name]
		for i := range roots {
			subtree, err := subtreeIDs(db, facilityID, roots[i].ID, cs.cnf.Drive.MaxDepth)
			if err != nil {
				return err
			}
			err = db.Transaction(func(tx *gorm.DB) error {
				res := tx.Model(&models.Folder{}).
					Where("facility_id = ?", facilityID).Where("id IN ?", subtree).
					Where("category IS NULL").
					Update("category", cat)
				if res.Error != nil {
					return res.Error
				}
				out.Folders += res.RowsAffected

				res = tx.Model(&models.File{}).
					Where("facility_id = ?", facilityID).Where("folder_id IN ?", subtree).
					Where("category IS NULL").
					Update("category", cat)
				if res.Error != nil {
					return res.Error
				}
				out.Files += res.RowsAffected
				return nil
			})
			if err != nil {
				return err
			}
			cs.cache.Delete(folderCacheKeys(facilityID, subtree)...)
			out.RootsMatched++
		}
	}
	return nil
}

// Stats aggregates folder and file counts per category for one facility.
// Untagged rows report under the pseudo-category "main".
func (cs *CategoryService) Stats(ctx context.Context, facilityID int64) (*schemas.CategoryStatsResponse, *types.AppError) {
	db := cs.db.WithContext(ctx)

	type folderRow struct {
		Category *string
		Count    int64
	}
	var folderRows []folderRow
	if err := db.Model(&models.Folder{}).
		Select("category", "COUNT(*) AS count").
		Where("facility_id = ?", facilityID).
		Group("category").
		Scan(&folderRows).Error; err != nil {
		return nil, appError(err)
	}

	type fileRow struct {
		Category *string
		Count    int64
		Total    int64
	}
	var fileRows []fileRow
	if err := db.Model(&models.File{}).
		Select("category", "COUNT(*) AS count", "COALESCE(SUM(file_size), 0) AS total").
		Where("facility_id = ?", facilityID).
		Group("category").
		Scan(&fileRows).Error; err != nil {
		return nil, appError(err)
	}

	byCategory := map[string]*schemas.CategoryStats{}
	key := func(c *string) string {
		if c == nil {
			return "main"
		}
		return *c
	}
	get := func(name string) *schemas.CategoryStats {
		if s, ok := byCategory[name]; ok {
			return s
		}
		s := &schemas.CategoryStats{Category: name}
		byCategory[name] = s
		return s
	}
	for _, row := range folderRows {
		get(key(row.Category)).Folders = row.Count
	}
	for _, row := range fileRows {
		s := get(key(row.Category))
		s.Files = row.Count
		s.TotalSize = row.Total
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	res := &schemas.CategoryStatsResponse{Stats: make([]schemas.CategoryStats, 0, len(names))}
	for _, name := range names {
		res.Stats = append(res.Stats, *byCategory[name])
	}
	return res, nil
}
