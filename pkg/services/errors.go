package services

import (
	"errors"
	"net/http"

	"github.com/facilidrive/facilidrive/internal/database"
	"github.com/facilidrive/facilidrive/internal/naming"
	"github.com/facilidrive/facilidrive/internal/tree"
	"github.com/facilidrive/facilidrive/pkg/types"
)

var (
	ErrDuplicateName  = errors.New("duplicate name")
	ErrDepthExceeded  = errors.New("max folder depth exceeded")
	ErrCyclicMove     = errors.New("cannot move a folder into its own subtree")
	ErrFileValidation = errors.New("file rejected")
	ErrStorageFailure = errors.New("storage failure")
)

// appError maps service errors to HTTP codes. Structural validation errors
// are user-correctable 4xx; CorruptTree and unexpected store errors stay
// generic 500s so the caller never sees internal detail.
func appError(err error) *types.AppError {
	var code int
	switch {
	case errors.Is(err, database.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrDuplicateName):
		code = http.StatusConflict
	case errors.Is(err, naming.ErrInvalidName),
		errors.Is(err, ErrDepthExceeded),
		errors.Is(err, ErrCyclicMove),
		errors.Is(err, ErrFileValidation):
		code = http.StatusBadRequest
	case errors.Is(err, ErrStorageFailure):
		code = http.StatusBadGateway
	case errors.Is(err, tree.ErrCorruptTree):
		code = http.StatusInternalServerError
	default:
		code = http.StatusInternalServerError
	}
	return &types.AppError{Error: err, Code: code}
}
