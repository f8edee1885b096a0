package controller

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/facilidrive/facilidrive/pkg/httputil"
	"github.com/facilidrive/facilidrive/pkg/middleware"
	"github.com/facilidrive/facilidrive/pkg/schemas"
	"github.com/gin-gonic/gin"
)

func (ctrl *Controller) ListFiles(c *gin.Context) {
	id := middleware.GetIdentity(c)

	var folderID *string
	if v := c.Query("folderId"); v != "" {
		folderID = &v
	}

	res, err := ctrl.FileService.ListFiles(c, id.FacilityID, folderID)
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}

// UploadFiles accepts a multipart request with one or more parts under the
// "files" field. Each file succeeds or fails on its own; the response carries
// a per-file outcome.
func (ctrl *Controller) UploadFiles(c *gin.Context) {
	id := middleware.GetIdentity(c)

	var folderID *string
	if v := c.Query("folderId"); v != "" {
		folderID = &v
	}

	form, err := c.MultipartForm()
	if err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		httputil.NewError(c, http.StatusBadRequest, fmt.Errorf("no files in request"))
		return
	}
	if len(headers) > ctrl.cnf.Drive.MaxFilesPerUpload {
		httputil.NewError(c, http.StatusBadRequest,
			fmt.Errorf("too many files, limit is %d per request", ctrl.cnf.Drive.MaxFilesPerUpload))
		return
	}

	res := &schemas.UploadResponse{Results: make([]schemas.UploadOutcome, 0, len(headers))}
	for _, header := range headers {
		outcome := schemas.UploadOutcome{Name: header.Filename}

		src, err := header.Open()
		if err != nil {
			outcome.Error = err.Error()
			res.Results = append(res.Results, outcome)
			continue
		}
		out, apperr := ctrl.FileService.Upload(c, id.FacilityID, id.UserID, folderID,
			header.Filename, src, header.Size, header.Header.Get("Content-Type"))
		src.Close()
		if apperr != nil {
			outcome.Error = apperr.Error.Error()
		} else {
			outcome.File = out
		}
		res.Results = append(res.Results, outcome)
	}

	c.JSON(http.StatusOK, res)
}

func (ctrl *Controller) DownloadFile(c *gin.Context) {
	id := middleware.GetIdentity(c)

	file, rc, err := ctrl.FileService.Download(c, id.FacilityID, c.Param("fileID"))
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(file.Name)))
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, rc, nil)
}

func (ctrl *Controller) MoveFile(c *gin.Context) {
	id := middleware.GetIdentity(c)

	var in schemas.FileMove
	if err := c.ShouldBindJSON(&in); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	res, err := ctrl.FileService.MoveFile(c, id.FacilityID, c.Param("fileID"), &in)
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctrl *Controller) DeleteFile(c *gin.Context) {
	id := middleware.GetIdentity(c)

	res, err := ctrl.FileService.DeleteFile(c, id.FacilityID, c.Param("fileID"))
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}
