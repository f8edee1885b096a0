package controller

import (
	"net/http"

	"github.com/facilidrive/facilidrive/pkg/httputil"
	"github.com/facilidrive/facilidrive/pkg/middleware"
	"github.com/facilidrive/facilidrive/pkg/schemas"
	"github.com/gin-gonic/gin"
)

func (ctrl *Controller) ListFolders(c *gin.Context) {
	id := middleware.GetIdentity(c)

	var parentID *string
	if v := c.Query("parentId"); v != "" {
		parentID = &v
	}

	res, err := ctrl.FolderService.ListChildren(c, id.FacilityID, parentID)
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctrl *Controller) CreateFolder(c *gin.Context) {
	id := middleware.GetIdentity(c)

	var in schemas.FolderIn
	if err := c.ShouldBindJSON(&in); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	res, err := ctrl.FolderService.CreateFolder(c, id.FacilityID, id.UserID, &in)
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (ctrl *Controller) GetFolder(c *gin.Context) {
	id := middleware.GetIdentity(c)

	res, err := ctrl.FolderService.GetFolder(c, id.FacilityID, c.Param("folderID"))
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctrl *Controller) RenameFolder(c *gin.Context) {
	id := middleware.GetIdentity(c)

	var in schemas.FolderRename
	if err := c.ShouldBindJSON(&in); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	res, err := ctrl.FolderService.RenameFolder(c, id.FacilityID, c.Param("folderID"), &in)
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctrl *Controller) MoveFolder(c *gin.Context) {
	id := middleware.GetIdentity(c)

	var in schemas.FolderMove
	if err := c.ShouldBindJSON(&in); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	res, err := ctrl.FolderService.MoveFolder(c, id.FacilityID, c.Param("folderID"), &in)
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctrl *Controller) DeleteFolder(c *gin.Context) {
	id := middleware.GetIdentity(c)

	res, err := ctrl.FolderService.DeleteFolderSubtree(c, id.FacilityID, c.Param("folderID"))
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctrl *Controller) FolderBreadcrumb(c *gin.Context) {
	id := middleware.GetIdentity(c)

	res, err := ctrl.FolderService.Breadcrumb(c, id.FacilityID, c.Param("folderID"))
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctrl *Controller) FolderSubtree(c *gin.Context) {
	id := middleware.GetIdentity(c)

	res, err := ctrl.FolderService.ListSubtree(c, id.FacilityID, c.Param("folderID"))
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}
