package api

import (
	"time"

	"github.com/facilidrive/facilidrive/internal/category"
	"github.com/facilidrive/facilidrive/pkg/controller"
	"github.com/facilidrive/facilidrive/pkg/middleware"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func NewRouter(ctrl *controller.Controller, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	registerValidations()

	r := gin.New()
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(middleware.Cors())

	api := r.Group("/api")
	api.Use(middleware.Authenticate())

	folders := api.Group("/folders")
	{
		folders.GET("", ctrl.ListFolders)
		folders.POST("", ctrl.CreateFolder)
		folders.GET("/:folderID", ctrl.GetFolder)
		folders.PATCH("/:folderID", ctrl.RenameFolder)
		folders.POST("/:folderID/move", ctrl.MoveFolder)
		folders.DELETE("/:folderID", ctrl.DeleteFolder)
		folders.GET("/:folderID/breadcrumb", ctrl.FolderBreadcrumb)
		folders.GET("/:folderID/tree", ctrl.FolderSubtree)
	}

	files := api.Group("/files")
	{
		files.GET("", ctrl.ListFiles)
		files.POST("", ctrl.UploadFiles)
		files.GET("/:fileID/download", ctrl.DownloadFile)
		files.POST("/:fileID/move", ctrl.MoveFile)
		files.DELETE("/:fileID", ctrl.DeleteFile)
	}

	categories := api.Group("/categories")
	{
		categories.POST("/tag", ctrl.TagCategory)
		categories.POST("/backfill", ctrl.BackfillCategories)
		categories.GET("/stats", ctrl.CategoryStats)
	}

	return r
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return category.Category(fl.Field().String()).Valid()
		})
	}
}
