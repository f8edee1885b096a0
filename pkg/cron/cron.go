package cron

import (
	"context"
	"time"

	"github.com/facilidrive/facilidrive/internal/config"
	"github.com/facilidrive/facilidrive/internal/storage"
	"github.com/facilidrive/facilidrive/pkg/models"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sweepBatchSize = 100

// CronService runs the storage cleanup sweep: queued object keys whose
// physical delete failed during a cascade are retried until the bytes are
// gone.
type CronService struct {
	db     *gorm.DB
	store  storage.Gateway
	cnf    *config.Config
	logger *zap.SugaredLogger
}

func NewCronService(db *gorm.DB, store storage.Gateway, cnf *config.Config, logger *zap.SugaredLogger) *CronService {
	return &CronService{db: db, store: store, cnf: cnf, logger: logger}
}

func (c *CronService) StartCronJobs(ctx context.Context) *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.UTC)

	scheduler.Every(c.cnf.Drive.CleanupInterval).Do(func() {
		if err := c.SweepStorageCleanups(ctx); err != nil {
			c.logger.Errorw("storage cleanup sweep failed", "err", err)
		}
	})

	scheduler.StartAsync()
	return scheduler
}

// SweepStorageCleanups drains the queue in batches. A key that fails again
// stays queued with its attempt count bumped.
func (c *CronService) SweepStorageCleanups(ctx context.Context) error {
	db := c.db.WithContext(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var batch []models.StorageCleanup
		if err := db.Order("updated_at").Limit(sweepBatchSize).Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		var retained int
		for i := range batch {
			entry := &batch[i]
			if err := c.store.Delete(ctx, entry.StorageKey); err != nil {
				retained++
				c.logger.Warnw("cleanup retry failed",
					"key", entry.StorageKey, "attempts", entry.Attempts+1, "err", err)
				if uErr := db.Model(entry).Updates(map[string]interface{}{
					"attempts":   entry.Attempts + 1,
					"last_error": err.Error(),
				}).Error; uErr != nil {
					return uErr
				}
				continue
			}
			if err := db.Delete(entry).Error; err != nil {
				return err
			}
		}

		c.logger.Infow("storage cleanup sweep",
			"processed", len(batch), "retained", retained)

		// Everything left in this batch failed again; stop instead of
		// hammering a dead endpoint.
		if retained == len(batch) {
			return nil
		}
		if len(batch) < sweepBatchSize {
			return nil
		}
	}
}
