package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/splitledger/backend/internal/application/ledger"
)

// BalanceHandler handles balance and settlement-suggestion API endpoints
type BalanceHandler struct {
	BaseHandler
	balanceService *ledgerapp.BalanceService
}

// NewBalanceHandler creates a new BalanceHandler
func NewBalanceHandler(balanceService *ledgerapp.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// RegisterRoutes registers balance routes on the given router group
func (h *BalanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/groups/:id/balances", h.GroupBalances)
	rg.GET("/groups/:id/balances/me", h.MyBalance)
	rg.GET("/groups/:id/balances/simplified", h.Simplified)
	rg.GET("/groups/:id/can-leave", h.CanLeave)
}

// GroupBalances returns the net balance of every group member
func (h *BalanceHandler) GroupBalances(c *gin.Context) {
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

	balances, err := h.balanceService.GetGroupBalances(c.Request.Context(), groupID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balances)
}

// MyBalance returns the caller's net balance in a group
func (h *BalanceHandler) MyBalance(c *gin.Context) {
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

	balance, err := h.balanceService.GetUserGroupBalance(c.Request.Context(), groupID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balance)
}

// Simplified returns a minimal set of transfers that settles the group
func (h *BalanceHandler) Simplified(c *gin.Context) {
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

	transfers, err := h.balanceService.GetSimplifiedBalances(c.Request.Context(), groupID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transfers)
}

// CanLeaveResponse reports whether the caller may leave a group
type CanLeaveResponse struct {
	CanLeave bool `json:"can_leave"`
}

// CanLeave reports whether the caller's balance allows leaving the group
func (h *BalanceHandler) CanLeave(c *gin.Context) {
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

	canLeave, err := h.balanceService.CanLeave(c.Request.Context(), groupID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CanLeaveResponse{CanLeave: canLeave})
}
