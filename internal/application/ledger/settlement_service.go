package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/splitledger/backend/internal/domain/ledger"
	"github.com/splitledger/backend/internal/domain/shared"
	"github.com/splitledger/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// SettlementService provides application-level settlement operations
type SettlementService struct {
	settlements ledger.SettlementRepository
	balances    ledger.BalanceRepository
	members     ledger.MembershipOracle
	invalidator ledger.BalanceInvalidator
	logger      *zap.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	settlements ledger.SettlementRepository,
	balances ledger.BalanceRepository,
	members ledger.MembershipOracle,
	invalidator ledger.BalanceInvalidator,
	logger *zap.Logger,
) *SettlementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementService{
		settlements: settlements,
		balances:    balances,
		members:     members,
		invalidator: invalidator,
		logger:      logger,
	}
}

// CreateSettlementRequest represents a request to record a settlement
type CreateSettlementRequest struct {
	GroupID        uuid.UUID       `json:"group_id" binding:"required"`
	PaidBy         uuid.UUID       `json:"paid_by" binding:"required"`
	PaidTo         uuid.UUID       `json:"paid_to" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Description    string          `json:"description"`
	SettlementDate time.Time       `json:"settlement_date"`
	CreatedBy      uuid.UUID       `json:"-"` // Set from JWT context, not from request body
}

// SettlementResponse represents a settlement in API responses
type SettlementResponse struct {
	ID             uuid.UUID       `json:"id"`
	GroupID        uuid.UUID       `json:"group_id"`
	PaidBy         uuid.UUID       `json:"paid_by"`
	PaidTo         uuid.UUID       `json:"paid_to"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	SettlementDate time.Time       `json:"settlement_date"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toSettlementResponse(s *ledger.Settlement) *SettlementResponse {
	return &SettlementResponse{
		ID:             s.ID,
		GroupID:        s.GroupID,
		PaidBy:         s.PaidBy,
		PaidTo:         s.PaidTo,
		Amount:         s.Amount,
		Description:    s.Description,
		SettlementDate: s.SettlementDate,
		CreatedAt:      s.CreatedAt,
	}
}

// CreateSettlement records a payment between two group members and evicts
// their cached balances. Both parties must belong to the group.
func (s *SettlementService) CreateSettlement(ctx context.Context, req CreateSettlementRequest) (*SettlementResponse, error) {
	if err := s.requireMembers(ctx, req.GroupID, req.CreatedBy, req.PaidBy, req.PaidTo); err != nil {
		return nil, err
	}

	settlement, err := ledger.NewSettlement(
		req.GroupID,
		req.PaidBy,
		req.PaidTo,
		valueobject.NewMoneyINR(req.Amount),
		req.Description,
		req.SettlementDate,
	)
	if err != nil {
		return nil, err
	}

	// A payer who is already owed money is probably settling in the wrong
	// direction. Record it anyway, the ledger is append-only fact.
	if payerBalance, err := s.balances.UserBalance(ctx, req.GroupID, req.PaidBy); err == nil {
		if payerBalance.GreaterThanOrEqual(decimal.New(1, -2)) {
			s.logger.Warn("settlement recorded by a payer with a positive balance",
				zap.String("group_id", req.GroupID.String()),
				zap.String("paid_by", req.PaidBy.String()),
				zap.String("payer_balance", payerBalance.StringFixed(2)))
		}
	}

	if err := s.settlements.Create(ctx, settlement); err != nil {
		return nil, err
	}
	s.invalidate(ctx, settlement.GroupID, settlement.AffectedUsers())

	return toSettlementResponse(settlement), nil
}

// DeleteSettlement removes a settlement. Only a party to the settlement or
// a group admin may delete it.
func (s *SettlementService) DeleteSettlement(ctx context.Context, settlementID, requesterID uuid.UUID) error {
	settlement, err := s.settlements.FindByID(ctx, settlementID)
	if err != nil {
		return err
	}

	if !settlement.IsParty(requesterID) {
		isAdmin, err := s.members.IsAdmin(ctx, settlement.GroupID, requesterID)
		if err != nil {
			return err
		}
		if !isAdmin {
			return shared.NewDomainError("FORBIDDEN", "Only a settlement party or a group admin can delete this settlement")
		}
	}

	if err := s.settlements.Delete(ctx, settlementID); err != nil {
		return err
	}
	s.invalidate(ctx, settlement.GroupID, settlement.AffectedUsers())

	return nil
}

// GetSettlement returns one settlement; the requester must be a group member
func (s *SettlementService) GetSettlement(ctx context.Context, settlementID, requesterID uuid.UUID) (*SettlementResponse, error) {
	settlement, err := s.settlements.FindByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMembers(ctx, settlement.GroupID, requesterID); err != nil {
		return nil, err
	}
	return toSettlementResponse(settlement), nil
}

// ListGroupSettlements returns the group's settlements, newest first
func (s *SettlementService) ListGroupSettlements(ctx context.Context, groupID, requesterID uuid.UUID, limit, offset int) ([]*SettlementResponse, error) {
	if err := s.requireMembers(ctx, groupID, requesterID); err != nil {
		return nil, err
	}

	settlements, err := s.settlements.FindByGroup(ctx, groupID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*SettlementResponse, len(settlements))
	for i, st := range settlements {
		responses[i] = toSettlementResponse(st)
	}
	return responses, nil
}

func (s *SettlementService) requireMembers(ctx context.Context, groupID uuid.UUID, userIDs ...uuid.UUID) error {
	for _, userID := range userIDs {
		ok, err := s.members.IsMember(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return shared.NewDomainError("NOT_MEMBER", "User is not a member of this group")
		}
	}
	return nil
}

func (s *SettlementService) invalidate(ctx context.Context, groupID uuid.UUID, users ledger.AffectedUsers) {
	if err := s.invalidator.Invalidate(ctx, groupID, users); err != nil {
		s.logger.Warn("balance cache invalidation failed",
			zap.String("group_id", groupID.String()),
			zap.Int("affected_users", len(users)),
			zap.Error(err))
	}
}
