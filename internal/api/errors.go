package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/luanafs/clube/internal/engine"
	"github.com/luanafs/clube/internal/repository"
	"go.uber.org/zap"
)

// respondError maps the engine's error taxonomy onto HTTP statuses. Only
// unclassified errors are logged at error level; the rest are expected
// outcomes of the workflow, not faults.
func respondError(c *gin.Context, logger *zap.Logger, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, engine.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid state"})
	case errors.Is(err, engine.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, repository.ErrConcurrency):
		// The whole use-case is safe to retry; tell the client so.
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "busy, retry"})
	default:
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
