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

// ExpenseService provides application-level expense operations
type ExpenseService struct {
	expenses    ledger.ExpenseRepository
	members     ledger.MembershipOracle
	invalidator ledger.BalanceInvalidator
	logger      *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenses ledger.ExpenseRepository,
	members ledger.MembershipOracle,
	invalidator ledger.BalanceInvalidator,
	logger *zap.Logger,
) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{
		expenses:    expenses,
		members:     members,
		invalidator: invalidator,
		logger:      logger,
	}
}

// SplitRequest is one participant's share in an expense request
type SplitRequest struct {
	UserID     uuid.UUID        `json:"user_id" binding:"required"`
	Amount     decimal.Decimal  `json:"amount"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

// CreateExpenseRequest represents a request to create an expense
type CreateExpenseRequest struct {
	GroupID     uuid.UUID       `json:"group_id" binding:"required"`
	PaidBy      uuid.UUID       `json:"paid_by" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
	SplitType   string          `json:"split_type" binding:"required"`
	Splits      []SplitRequest  `json:"splits" binding:"required"`
	ExpenseDate time.Time       `json:"expense_date"`
	CreatedBy   uuid.UUID       `json:"-"` // Set from JWT context, not from request body
}

// UpdateExpenseRequest represents a partial update of an expense. Every
// field is optional; absent fields keep their stored values. Supplying any
// of amount, split type or splits triggers a full split replacement, with
// the missing pieces taken from the stored expense.
type UpdateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	SplitType   *string          `json:"split_type,omitempty"`
	Splits      []SplitRequest   `json:"splits,omitempty"`
	ExpenseDate *time.Time       `json:"expense_date,omitempty"`
}

// ExpenseSplitResponse represents one split in API responses
type ExpenseSplitResponse struct {
	UserID     uuid.UUID        `json:"user_id"`
	Amount     decimal.Decimal  `json:"amount"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          uuid.UUID              `json:"id"`
	GroupID     uuid.UUID              `json:"group_id"`
	PaidBy      uuid.UUID              `json:"paid_by"`
	Amount      decimal.Decimal        `json:"amount"`
	Description string                 `json:"description"`
	ExpenseDate time.Time              `json:"expense_date"`
	SplitType   string                 `json:"split_type"`
	CreatedBy   uuid.UUID              `json:"created_by"`
	Splits      []ExpenseSplitResponse `json:"splits"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func toExpenseResponse(e *ledger.Expense) *ExpenseResponse {
	splits := make([]ExpenseSplitResponse, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = ExpenseSplitResponse{
			UserID:     s.UserID,
			Amount:     s.Amount,
			Percentage: s.Percentage,
		}
	}
	return &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PaidBy:      e.PaidBy,
		Amount:      e.Amount,
		Description: e.Description,
		ExpenseDate: e.ExpenseDate,
		SplitType:   e.SplitType.String(),
		CreatedBy:   e.CreatedBy,
		Splits:      splits,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toSplitInputs(reqs []SplitRequest) []ledger.SplitInput {
	inputs := make([]ledger.SplitInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = ledger.SplitInput{
			UserID:     r.UserID,
			Amount:     r.Amount,
			Percentage: r.Percentage,
		}
	}
	return inputs
}

// storedSplitInputs rebuilds split inputs from an expense's persisted splits
// so a partial update can re-resolve them against a new amount or type.
// Amounts are carried only for EXACT (EQUAL and PERCENTAGE shares are
// re-derived, so a changed amount doesn't trip the consistency checks).
func storedSplitInputs(splits []ledger.ExpenseSplit, splitType ledger.SplitType) []ledger.SplitInput {
	inputs := make([]ledger.SplitInput, len(splits))
	for i, s := range splits {
		in := ledger.SplitInput{UserID: s.UserID}
		switch splitType {
		case ledger.SplitTypeExact:
			in.Amount = s.Amount
		case ledger.SplitTypePercentage:
			in.Percentage = s.Percentage
		}
		inputs[i] = in
	}
	return inputs
}

// CreateExpense validates membership of everyone involved, persists the
// expense with its splits atomically and evicts affected cached balances.
func (s *ExpenseService) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*ExpenseResponse, error) {
	if err := s.requireMembers(ctx, req.GroupID, req.CreatedBy, req.PaidBy); err != nil {
		return nil, err
	}
	for _, split := range req.Splits {
		if err := s.requireMembers(ctx, req.GroupID, split.UserID); err != nil {
			return nil, err
		}
	}

	expense, err := ledger.NewExpense(
		req.GroupID,
		req.PaidBy,
		valueobject.NewMoneyINR(req.Amount),
		req.Description,
		ledger.SplitType(req.SplitType),
		toSplitInputs(req.Splits),
		req.ExpenseDate,
		req.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, err
	}
	s.invalidate(ctx, expense.GroupID, expense.AffectedUsers())

	return toExpenseResponse(expense), nil
}

// UpdateExpense applies a partial update. Amount, split type and splits are
// replaced together in one atomic write when any of them is supplied;
// scalar-only updates leave the splits untouched. Only the creator or a
// group admin may update. Balances cached for both the old and the new
// participant sets are evicted.
func (s *ExpenseService) UpdateExpense(ctx context.Context, expenseID, requesterID uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.expenses.FindByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeMutation(ctx, expense.GroupID, expense.CreatedBy, requesterID); err != nil {
		return nil, err
	}
	for _, split := range req.Splits {
		if err := s.requireMembers(ctx, expense.GroupID, split.UserID); err != nil {
			return nil, err
		}
	}

	// Users in the old splits lose their stake too, so capture them before
	// the replacement.
	affected := expense.AffectedUsers()

	if req.Amount != nil || req.SplitType != nil || req.Splits != nil {
		amount := expense.Amount
		if req.Amount != nil {
			amount = *req.Amount
		}
		splitType := expense.SplitType
		if req.SplitType != nil {
			splitType = ledger.SplitType(*req.SplitType)
		}
		inputs := toSplitInputs(req.Splits)
		if req.Splits == nil {
			inputs = storedSplitInputs(expense.Splits, splitType)
		}

		if err := expense.Replace(valueobject.NewMoneyINR(amount), splitType, inputs); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if err := expense.SetDescription(*req.Description); err != nil {
			return nil, err
		}
	}
	if req.ExpenseDate != nil {
		expense.SetExpenseDate(*req.ExpenseDate)
	}

	if err := s.expenses.Update(ctx, expense); err != nil {
		return nil, err
	}
	s.invalidate(ctx, expense.GroupID, affected.Union(expense.AffectedUsers()))

	return toExpenseResponse(expense), nil
}

// DeleteExpense removes the expense and its splits. Only the creator or a
// group admin may delete.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID, requesterID uuid.UUID) error {
	expense, err := s.expenses.FindByID(ctx, expenseID)
	if err != nil {
		return err
	}

	if err := s.authorizeMutation(ctx, expense.GroupID, expense.CreatedBy, requesterID); err != nil {
		return err
	}

	if err := s.expenses.Delete(ctx, expenseID); err != nil {
		return err
	}
	s.invalidate(ctx, expense.GroupID, expense.AffectedUsers())

	return nil
}

// GetExpense returns one expense; the requester must be a group member
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID, requesterID uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.expenses.FindByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMembers(ctx, expense.GroupID, requesterID); err != nil {
		return nil, err
	}
	return toExpenseResponse(expense), nil
}

// ListGroupExpenses returns the group's expenses, newest first
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, groupID, requesterID uuid.UUID, limit, offset int) ([]*ExpenseResponse, error) {
	if err := s.requireMembers(ctx, groupID, requesterID); err != nil {
		return nil, err
	}

	expenses, err := s.expenses.FindByGroup(ctx, groupID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		responses[i] = toExpenseResponse(e)
	}
	return responses, nil
}

// requireMembers verifies every given user belongs to the group
func (s *ExpenseService) requireMembers(ctx context.Context, groupID uuid.UUID, userIDs ...uuid.UUID) error {
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

// authorizeMutation allows the record's creator or a group admin
func (s *ExpenseService) authorizeMutation(ctx context.Context, groupID, createdBy, requesterID uuid.UUID) error {
	if requesterID == createdBy {
		return nil
	}
	isAdmin, err := s.members.IsAdmin(ctx, groupID, requesterID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return shared.NewDomainError("FORBIDDEN", "Only the creator or a group admin can modify this expense")
	}
	return nil
}

// invalidate evicts cached balances after a committed write. Eviction
// failure is logged and discarded; the write has already succeeded.
func (s *ExpenseService) invalidate(ctx context.Context, groupID uuid.UUID, users ledger.AffectedUsers) {
	if err := s.invalidator.Invalidate(ctx, groupID, users); err != nil {
		s.logger.Warn("balance cache invalidation failed",
			zap.String("group_id", groupID.String()),
			zap.Int("affected_users", len(users)),
			zap.Error(err))
	}
}
