package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/engine"
	"github.com/luanafs/clube/internal/middleware"
	"github.com/luanafs/clube/internal/repository"
	"go.uber.org/zap"
)

// ClubBookHandler covers club books, activation, room chat and artifacts.
type ClubBookHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewClubBookHandler(eng *engine.Engine, logger *zap.Logger) *ClubBookHandler {
	return &ClubBookHandler{engine: eng, logger: logger}
}

type createClubBookRequest struct {
	BookID   string `json:"book_id" binding:"required,max=64"`
	Title    string `json:"title" binding:"required,max=255"`
	Author   string `json:"author" binding:"required,max=255"`
	ColorKey string `json:"color_key" binding:"required"`
}

// Create handles POST /v1/club-books
func (h *ClubBookHandler) Create(c *gin.Context) {
	var req createClubBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clubBook, err := h.engine.CreateClubBook(c.Request.Context(), middleware.GetUserID(c),
		req.BookID, req.Title, req.Author, req.ColorKey)
	if err != nil {
		respondError(c, h.logger, err, "failed to create club book")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"club_book": clubBook})
}

// List handles GET /v1/club-books
func (h *ClubBookHandler) List(c *gin.Context) {
	books, err := h.engine.ListClubBooks(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "failed to list club books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"club_books": books})
}

// Active handles GET /v1/club-books/active. No active book is a null
// payload, not an error.
func (h *ClubBookHandler) Active(c *gin.Context) {
	clubBook, err := h.engine.ActiveClubBook(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"club_book": nil})
			return
		}
		respondError(c, h.logger, err, "failed to get active club book")
		return
	}

	c.JSON(http.StatusOK, gin.H{"club_book": clubBook})
}

// Activate handles POST /v1/club-books/:id/activate
func (h *ClubBookHandler) Activate(c *gin.Context) {
	clubBookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid club book id"})
		return
	}

	clubBook, err := h.engine.ActivateClubBook(c.Request.Context(), middleware.GetUserID(c), clubBookID)
	if err != nil {
		respondError(c, h.logger, err, "failed to activate club book")
		return
	}

	c.JSON(http.StatusOK, gin.H{"club_book": clubBook})
}

// Deactivate handles POST /v1/club-books/:id/deactivate
func (h *ClubBookHandler) Deactivate(c *gin.Context) {
	clubBookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid club book id"})
		return
	}

	if err := h.engine.DeactivateClubBook(c.Request.Context(), middleware.GetUserID(c), clubBookID); err != nil {
		respondError(c, h.logger, err, "failed to deactivate club book")
		return
	}

	c.Status(http.StatusNoContent)
}

type postMessageRequest struct {
	Text string `json:"text" binding:"required,max=4000"`
}

// PostMessage handles POST /v1/club-books/:id/messages
func (h *ClubBookHandler) PostMessage(c *gin.Context) {
	clubBookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid club book id"})
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.engine.PostClubBookMessage(c.Request.Context(), middleware.GetUserID(c), clubBookID, req.Text)
	if err != nil {
		respondError(c, h.logger, err, "failed to post message")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// ListMessages handles GET /v1/club-books/:id/messages?after=&limit=&order=
func (h *ClubBookHandler) ListMessages(c *gin.Context) {
	clubBookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid club book id"})
		return
	}

	var after time.Time
	if raw := strings.TrimSpace(c.Query("after")); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			after = t
		}
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	descending := strings.EqualFold(c.Query("order"), "desc")

	messages, err := h.engine.ListClubBookMessages(c.Request.Context(), clubBookID, after, limit, descending)
	if err != nil {
		respondError(c, h.logger, err, "failed to list messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type addArtifactRequest struct {
	FileName string `json:"file_name" binding:"required,max=255"`
	MimeType string `json:"mime_type" binding:"required,max=127"`
	Size     int64  `json:"size" binding:"min=0"`
	URL      string `json:"url" binding:"required,max=2000"`
}

// AddArtifact handles POST /v1/club-books/:id/artifacts
func (h *ClubBookHandler) AddArtifact(c *gin.Context) {
	clubBookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid club book id"})
		return
	}

	var req addArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	artifact, err := h.engine.AddClubBookArtifact(c.Request.Context(), middleware.GetUserID(c), clubBookID,
		req.FileName, req.MimeType, req.Size, req.URL)
	if err != nil {
		respondError(c, h.logger, err, "failed to add artifact")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"artifact": artifact})
}

// ListArtifacts handles GET /v1/club-books/:id/artifacts
func (h *ClubBookHandler) ListArtifacts(c *gin.Context) {
	clubBookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid club book id"})
		return
	}

	artifacts, err := h.engine.ListClubBookArtifacts(c.Request.Context(), clubBookID)
	if err != nil {
		respondError(c, h.logger, err, "failed to list artifacts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifacts": artifacts})
}
