package controller

import (
	"net/http"

	"github.com/facilidrive/facilidrive/pkg/httputil"
	"github.com/facilidrive/facilidrive/pkg/middleware"
	"github.com/facilidrive/facilidrive/pkg/schemas"
	"github.com/gin-gonic/gin"
)

func (ctrl *Controller) TagCategory(c *gin.Context) {
	id := middleware.GetIdentity(c)

	var in schemas.TagSubtree
	if err := c.ShouldBindJSON(&in); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	res, err := ctrl.CategoryService.TagSubtree(c, id.FacilityID, &in)
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}

// BackfillCategories runs the legacy root-name backfill. Over HTTP the run is
// always scoped to the caller's facility; the cross-facility variant is only
// reachable from the CLI.
func (ctrl *Controller) BackfillCategories(c *gin.Context) {
	id := middleware.GetIdentity(c)

	var in schemas.BackfillIn
	if err := c.ShouldBindJSON(&in); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}
	in.FacilityID = &id.FacilityID

	res, err := ctrl.CategoryService.Backfill(c, &in)
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctrl *Controller) CategoryStats(c *gin.Context) {
	id := middleware.GetIdentity(c)

	res, err := ctrl.CategoryService.Stats(c, id.FacilityID)
	if err != nil {
		httputil.NewError(c, err.Code, err.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}
