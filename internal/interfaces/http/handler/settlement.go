package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/splitledger/backend/internal/application/ledger"
	"github.com/splitledger/backend/internal/interfaces/http/dto"
)

// SettlementHandler handles settlement API endpoints
type SettlementHandler struct {
	BaseHandler
	settlementService *ledgerapp.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService *ledgerapp.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// RegisterRoutes registers settlement routes on the given router group
func (h *SettlementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settlements := rg.Group("/settlements")
	{
		settlements.POST("", h.Create)
		settlements.GET("/:id", h.GetByID)
		settlements.DELETE("/:id", h.Delete)
	}
	rg.GET("/groups/:id/settlements", h.ListByGroup)
}

// Create records a repayment between two members
func (h *SettlementHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ledgerapp.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.CreatedBy = userID

	settlement, err := h.settlementService.CreateSettlement(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, settlement)
}

// GetByID retrieves a settlement
func (h *SettlementHandler) GetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	settlementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid settlement ID format")
		return
	}

	settlement, err := h.settlementService.GetSettlement(c.Request.Context(), settlementID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, settlement)
}

// Delete removes a settlement
func (h *SettlementHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	settlementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid settlement ID format")
		return
	}

	if err := h.settlementService.DeleteSettlement(c.Request.Context(), settlementID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListByGroup lists a group's settlements, newest first
func (h *SettlementHandler) ListByGroup(c *gin.Context) {
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

	paging := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&paging); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	settlements, err := h.settlementService.ListGroupSettlements(c.Request.Context(), groupID, userID, paging.Limit, paging.Offset)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, settlements, paging.Limit, paging.Offset, len(settlements))
}
