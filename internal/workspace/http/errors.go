package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

// respondError maps the domain error taxonomy onto status codes. The wrapped
// detail (entity kind + id, or stage + cause) rides along as the error body.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrPreconditionFailed):
		status = http.StatusPreconditionFailed
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}
