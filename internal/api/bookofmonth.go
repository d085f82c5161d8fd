package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/engine"
	"github.com/luanafs/clube/internal/middleware"
	"github.com/luanafs/clube/internal/repository"
	"go.uber.org/zap"
)

// BookOfMonthHandler exposes a group's book-of-the-month log.
type BookOfMonthHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewBookOfMonthHandler(eng *engine.Engine, logger *zap.Logger) *BookOfMonthHandler {
	return &BookOfMonthHandler{engine: eng, logger: logger}
}

type setBookOfMonthRequest struct {
	BookID string `json:"book_id" binding:"required,max=64"`
}

// Set handles POST /v1/groups/:id/book-of-month
func (h *BookOfMonthHandler) Set(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	var req setBookOfMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	selection, err := h.engine.SetBookOfMonth(c.Request.Context(), middleware.GetUserID(c), groupID, req.BookID)
	if err != nil {
		respondError(c, h.logger, err, "failed to set book of month")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"current": selection})
}

// Get handles GET /v1/groups/:id/book-of-month: the current selection
// plus the history it was resolved from. A group with no selection yet
// returns nulls rather than 404.
func (h *BookOfMonthHandler) Get(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := middleware.GetUserID(c)
	history, err := h.engine.BookOfMonthHistory(c.Request.Context(), userID, groupID)
	if err != nil {
		respondError(c, h.logger, err, "failed to get book of month")
		return
	}

	current, err := h.engine.CurrentBookOfMonth(c.Request.Context(), userID, groupID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, h.logger, err, "failed to get book of month")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current": current,
		"history": history,
	})
}
