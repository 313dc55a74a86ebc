package handler

import (
	"errors"
	"net/http"
	"strings"

	"Itemizer/internal/model"
	"Itemizer/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidParams = "invalid params"
	msgNotModified   = "Not Modified"
	msgInternal      = "Internal Server Error"
)

// status maps a service error onto an HTTP status. invalid is used for
// validation and conflict failures.
func status(err error, invalid int) int {
	var v *model.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &v), errors.Is(err, service.ErrConflict):
		return invalid
	}
	return http.StatusInternalServerError
}

// message strips the sentinel prefix from a wrapped service error.
func message(err error) string {
	for _, sentinel := range []error{service.ErrNotFound, service.ErrUnauthorized, service.ErrForbidden, service.ErrConflict} {
		if errors.Is(err, sentinel) {
			if msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": "); msg != "" {
				return msg
			}
		}
	}
	return err.Error()
}

func fail(c *gin.Context, err error, invalid int) {
	_ = c.Error(err)
	code := status(err, invalid)
	switch code {
	case http.StatusInternalServerError:
		c.JSON(code, gin.H{"error": msgInternal})
	case http.StatusNotModified:
		c.JSON(code, gin.H{"error": msgNotModified})
	default:
		c.JSON(code, gin.H{"error": message(err)})
	}
}

// createFailed answers a failed create or action with 422 for rule
// violations.
func createFailed(c *gin.Context, err error) {
	fail(c, err, http.StatusUnprocessableEntity)
}

// patchFailed answers a failed partial update with 304 for rule violations.
func patchFailed(c *gin.Context, err error) {
	fail(c, err, http.StatusNotModified)
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msgInvalidParams})
}
