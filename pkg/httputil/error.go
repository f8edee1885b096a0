package httputil

import "github.com/gin-gonic/gin"

type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewError writes the error payload and aborts the chain.
func NewError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, HTTPError{
		Code:    status,
		Message: err.Error(),
	})
}
