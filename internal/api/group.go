package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/engine"
	"github.com/luanafs/clube/internal/middleware"
	"github.com/luanafs/clube/internal/models"
	"go.uber.org/zap"
)

// GroupHandler covers group lifecycle, membership actions, and join
// requests.
type GroupHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewGroupHandler(eng *engine.Engine, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{engine: eng, logger: logger}
}

type createGroupRequest struct {
	Name        string `json:"name" binding:"required,max=80"`
	Description string `json:"description" binding:"max=200"`
}

// Create handles POST /v1/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	group, err := h.engine.CreateGroup(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		respondError(c, h.logger, err, "failed to create group")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"group": group})
}

// List handles GET /v1/groups: the caller's groups, newest first.
func (h *GroupHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groups, err := h.engine.ListGroupsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to list groups")
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// Get handles GET /v1/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	group, err := h.engine.GetGroup(c.Request.Context(), groupID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to get group")
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": group})
}

// Standing handles GET /v1/groups/:id/me
func (h *GroupHandler) Standing(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	standing, err := h.engine.GroupStanding(c.Request.Context(), groupID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to get standing")
		return
	}

	c.JSON(http.StatusOK, standing)
}

// Join handles POST /v1/groups/:id/join by filing a join request.
func (h *GroupHandler) Join(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	request, err := h.engine.RequestToJoin(c.Request.Context(), groupID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to request to join")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// Leave handles POST /v1/groups/:id/leave
func (h *GroupHandler) Leave(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	if err := h.engine.LeaveGroup(c.Request.Context(), groupID, middleware.GetUserID(c)); err != nil {
		respondError(c, h.logger, err, "failed to leave group")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMembers handles GET /v1/groups/:id/members
func (h *GroupHandler) ListMembers(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	members, err := h.engine.ListMembers(c.Request.Context(), groupID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to list members")
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ChangeRole handles PUT /v1/groups/:id/members/:userId/role
func (h *GroupHandler) ChangeRole(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.ChangeMemberRole(c.Request.Context(), middleware.GetUserID(c), groupID, userID, role); err != nil {
		respondError(c, h.logger, err, "failed to change role")
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveMember handles DELETE /v1/groups/:id/members/:userId
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.engine.RemoveMember(c.Request.Context(), middleware.GetUserID(c), groupID, userID); err != nil {
		respondError(c, h.logger, err, "failed to remove member")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListRequests handles GET /v1/groups/:id/requests
func (h *GroupHandler) ListRequests(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	requests, err := h.engine.ListPendingRequests(c.Request.Context(), middleware.GetUserID(c), groupID)
	if err != nil {
		respondError(c, h.logger, err, "failed to list requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// ApproveRequest handles POST /v1/groups/:id/requests/:requestId/approve
func (h *GroupHandler) ApproveRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	if err := h.engine.ApproveJoinRequest(c.Request.Context(), middleware.GetUserID(c), requestID); err != nil {
		respondError(c, h.logger, err, "failed to approve request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DenyRequest handles POST /v1/groups/:id/requests/:requestId/deny
func (h *GroupHandler) DenyRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	if err := h.engine.DenyJoinRequest(c.Request.Context(), middleware.GetUserID(c), requestID); err != nil {
		respondError(c, h.logger, err, "failed to deny request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
