package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/facilidrive/facilidrive/api"
	"github.com/facilidrive/facilidrive/internal/cache"
	"github.com/facilidrive/facilidrive/internal/config"
	"github.com/facilidrive/facilidrive/internal/database"
	"github.com/facilidrive/facilidrive/internal/locker"
	"github.com/facilidrive/facilidrive/internal/logging"
	"github.com/facilidrive/facilidrive/internal/storage"
	"github.com/facilidrive/facilidrive/pkg/controller"
	"github.com/facilidrive/facilidrive/pkg/cron"
	"github.com/facilidrive/facilidrive/pkg/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewRun() *cobra.Command {
	cnf := &config.Config{}
	loader := config.NewConfigLoader()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the document store server",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.InitializeConfig(cmd); err != nil {
				return err
			}
			return loader.Load(cnf)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApplication(cnf)
		},
	}

	config.AddCommonFlags(cmd.Flags(), cnf)
	cmd.Flags().IntVarP(&cnf.Server.Port, "server-port", "p", 8080, "Server port")
	cmd.Flags().DurationVar(&cnf.Server.GracefulShutdown, "server-graceful-shutdown", 15*time.Second, "Graceful shutdown timeout")
	cmd.Flags().DurationVar(&cnf.Server.ReadTimeout, "server-read-timeout", time.Minute, "Server read timeout")
	cmd.Flags().DurationVar(&cnf.Server.WriteTimeout, "server-write-timeout", 5*time.Minute, "Server write timeout")
	return cmd
}

func runApplication(cnf *config.Config) error {
	level, err := zapcore.ParseLevel(cnf.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	logging.SetConfig(&logging.Config{
		Level:    level,
		FilePath: cnf.Log.File,
	})
	logger := logging.DefaultLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDatabase(&cnf.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := database.MigrateDB(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	store, err := newGateway(ctx, cnf, logger)
	if err != nil {
		return err
	}

	cacher := cache.NewCache(ctx, &cnf.Cache)
	locks := locker.New()

	folderService := services.NewFolderService(db, cnf, cacher, locks, store, logger)
	fileService := services.NewFileService(db, cnf, cacher, locks, store, logger)
	categoryService := services.NewCategoryService(db, cnf, cacher, locks, logger)

	ctrl := controller.NewController(cnf, folderService, fileService, categoryService)
	router := api.NewRouter(ctrl, logger.Desugar())

	if cnf.Drive.CleanupEnable {
		scheduler := cron.NewCronService(db, store, cnf, logger).StartCronJobs(ctx)
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cnf.Server.Port),
		Handler:      router,
		ReadTimeout:  cnf.Server.ReadTimeout,
		WriteTimeout: cnf.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("server started at http://localhost:%d", cnf.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("server failed", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cnf.Server.GracefulShutdown)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newGateway picks the object store. Without an endpoint the in-memory
// gateway backs small single-node setups; uploads then do not survive a
// restart.
func newGateway(ctx context.Context, cnf *config.Config, logger *zap.SugaredLogger) (storage.Gateway, error) {
	if cnf.Storage.Endpoint == "" {
		logger.Warnf("no storage endpoint configured, using in-memory object store")
		return storage.NewMemoryGateway(), nil
	}
	gw, err := storage.NewMinioGateway(&cnf.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	if err := gw.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	return gw, nil
}
