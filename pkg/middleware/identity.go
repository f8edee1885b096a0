package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/facilidrive/facilidrive/pkg/httputil"
	"github.com/gin-gonic/gin"
)

const (
	facilityHeader = "X-Facility-Id"
	userHeader     = "X-User-Id"

	identityKey = "identity"
)

// Identity is the caller resolved by the fronting auth proxy. The facility id
// scopes every query downstream; handlers never read the headers directly.
type Identity struct {
	FacilityID int64
	UserID     int64
}

func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		facilityID, err := headerInt64(c, facilityHeader)
		if err != nil {
			httputil.NewError(c, http.StatusUnauthorized, err)
			return
		}
		userID, err := headerInt64(c, userHeader)
		if err != nil {
			httputil.NewError(c, http.StatusUnauthorized, err)
			return
		}
		c.Set(identityKey, &Identity{FacilityID: facilityID, UserID: userID})
		c.Next()
	}
}

func GetIdentity(c *gin.Context) *Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*Identity); ok {
			return id
		}
	}
	return nil
}

func headerInt64(c *gin.Context, name string) (int64, error) {
	raw := c.GetHeader(name)
	if raw == "" {
		return 0, errors.New("missing " + name + " header")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, errors.New("invalid " + name + " header")
	}
	return v, nil
}
