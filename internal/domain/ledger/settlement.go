package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/splitledger/backend/internal/domain/shared"
	"github.com/splitledger/backend/internal/domain/shared/valueobject"
)

// Settlement records a direct payment from one group member to another,
// reducing the payer's debt toward the payee.
type Settlement struct {
	shared.BaseEntity
	GroupID        uuid.UUID       `json:"group_id"`
	PaidBy         uuid.UUID       `json:"paid_by"`
	PaidTo         uuid.UUID       `json:"paid_to"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	SettlementDate time.Time       `json:"settlement_date"`
}

// NewSettlement creates a new settlement between two distinct members
func NewSettlement(
	groupID uuid.UUID,
	paidBy uuid.UUID,
	paidTo uuid.UUID,
	amount valueobject.Money,
	description string,
	settlementDate time.Time,
) (*Settlement, error) {
	if groupID == uuid.Nil || paidBy == uuid.Nil || paidTo == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION", "Group, payer and payee IDs cannot be empty")
	}
	if paidBy == paidTo {
		return nil, shared.NewDomainError("VALIDATION", "Payer and payee must be different users")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION", "Amount must be positive")
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("VALIDATION", "Description cannot exceed 500 characters")
	}
	if settlementDate.IsZero() {
		settlementDate = time.Now()
	}

	return &Settlement{
		BaseEntity:     shared.NewBaseEntity(),
		GroupID:        groupID,
		PaidBy:         paidBy,
		PaidTo:         paidTo,
		Amount:         amount.Round().Amount(),
		Description:    description,
		SettlementDate: settlementDate,
	}, nil
}

// IsParty reports whether the user is the payer or payee of this settlement
func (s *Settlement) IsParty(userID uuid.UUID) bool {
	return s.PaidBy == userID || s.PaidTo == userID
}

// AffectedUsers returns the set of users whose balance this settlement
// touches: the payer and the payee.
func (s *Settlement) AffectedUsers() AffectedUsers {
	return NewAffectedUsers(s.PaidBy, s.PaidTo)
}
