package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/engine"
	"github.com/luanafs/clube/internal/middleware"
	"go.uber.org/zap"
)

// InviteHandler covers invite issuance, rotation, revocation, lookup and
// acceptance.
type InviteHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewInviteHandler(eng *engine.Engine, logger *zap.Logger) *InviteHandler {
	return &InviteHandler{engine: eng, logger: logger}
}

// Create handles POST /v1/groups/:id/invite
func (h *InviteHandler) Create(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	invite, err := h.engine.CreateInvite(c.Request.Context(), middleware.GetUserID(c), groupID)
	if err != nil {
		respondError(c, h.logger, err, "failed to create invite")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invite": invite})
}

// Rotate handles POST /v1/groups/:id/invite/rotate
func (h *InviteHandler) Rotate(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	invite, err := h.engine.RotateInvite(c.Request.Context(), middleware.GetUserID(c), groupID)
	if err != nil {
		respondError(c, h.logger, err, "failed to rotate invite")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invite": invite})
}

// Revoke handles POST /v1/invites/:inviteId/revoke
func (h *InviteHandler) Revoke(c *gin.Context) {
	inviteID, err := uuid.Parse(c.Param("inviteId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invite id"})
		return
	}

	if err := h.engine.RevokeInvite(c.Request.Context(), middleware.GetUserID(c), inviteID); err != nil {
		respondError(c, h.logger, err, "failed to revoke invite")
		return
	}

	c.Status(http.StatusNoContent)
}

// Lookup handles GET /v1/invites/:inviteId. Public, so a recipient can
// see what they were invited to before logging in.
func (h *InviteHandler) Lookup(c *gin.Context) {
	inviteID, err := uuid.Parse(c.Param("inviteId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invite id"})
		return
	}

	view, err := h.engine.LookupInvite(c.Request.Context(), inviteID)
	if err != nil {
		respondError(c, h.logger, err, "failed to look up invite")
		return
	}

	c.JSON(http.StatusOK, view)
}

// Decline handles POST /v1/invites/:inviteId/decline
func (h *InviteHandler) Decline(c *gin.Context) {
	inviteID, err := uuid.Parse(c.Param("inviteId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invite id"})
		return
	}

	if err := h.engine.DeclineInvite(c.Request.Context(), inviteID, middleware.GetUserID(c)); err != nil {
		respondError(c, h.logger, err, "failed to decline invite")
		return
	}

	c.Status(http.StatusNoContent)
}

// Accept handles POST /v1/invites/:inviteId/accept
func (h *InviteHandler) Accept(c *gin.Context) {
	inviteID, err := uuid.Parse(c.Param("inviteId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invite id"})
		return
	}

	membership, err := h.engine.AcceptInvite(c.Request.Context(), inviteID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to accept invite")
		return
	}

	c.JSON(http.StatusOK, gin.H{"membership": membership})
}
