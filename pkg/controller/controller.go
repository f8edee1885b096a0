package controller

import (
	"github.com/facilidrive/facilidrive/internal/config"
	"github.com/facilidrive/facilidrive/pkg/services"
)

type Controller struct {
	cnf             *config.Config
	FolderService   *services.FolderService
	FileService     *services.FileService
	CategoryService *services.CategoryService
}

func NewController(
	cnf *config.Config,
	folderService *services.FolderService,
	fileService *services.FileService,
	categoryService *services.CategoryService) *Controller {
	return &Controller{
		cnf:             cnf,
		FolderService:   folderService,
		FileService:     fileService,
		CategoryService: categoryService,
	}
}
