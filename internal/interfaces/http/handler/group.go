package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/splitledger/backend/internal/application/ledger"
)

// GroupHandler handles group and membership API endpoints
type GroupHandler struct {
	BaseHandler
	groupService *ledgerapp.GroupService
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupService *ledgerapp.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// RegisterRoutes registers group routes on the given router group
func (h *GroupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	groups := rg.Group("/groups")
	{
		groups.POST("", h.Create)
		groups.GET("", h.ListMine)
		groups.GET("/:id", h.GetByID)
		groups.PUT("/:id", h.Update)
		groups.GET("/:id/members", h.ListMembers)
		groups.POST("/:id/members", h.AddMember)
		groups.DELETE("/:id/members/:userID", h.RemoveMember)
		groups.POST("/:id/leave", h.Leave)
	}
}

// Create creates a new group with the caller as admin
func (h *GroupHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ledgerapp.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.CreatedBy = userID

	group, err := h.groupService.CreateGroup(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, group)
}

// ListMine lists the groups the caller belongs to
func (h *GroupHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	groups, err := h.groupService.ListUserGroups(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, groups)
}

// GetByID retrieves a group by its ID
func (h *GroupHandler) GetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	group, err := h.groupService.GetGroup(c.Request.Context(), groupID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, group)
}

// Update renames a group
func (h *GroupHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	var req ledgerapp.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.groupService.UpdateGroup(c.Request.Context(), groupID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, group)
}

// ListMembers lists the members of a group
func (h *GroupHandler) ListMembers(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	members, err := h.groupService.ListMembers(c.Request.Context(), groupID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, members)
}

// AddMember adds a user to a group
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	var req ledgerapp.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	member, err := h.groupService.AddMember(c.Request.Context(), groupID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, member)
}

// RemoveMember removes a settled member from a group
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	requesterID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	targetID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	if err := h.groupService.RemoveMember(c.Request.Context(), groupID, requesterID, targetID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Leave removes the caller from a group if their balance is settled
func (h *GroupHandler) Leave(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid group ID format")
		return
	}

	if err := h.groupService.LeaveGroup(c.Request.Context(), groupID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
