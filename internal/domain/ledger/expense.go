package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/splitledger/backend/internal/domain/shared"
	"github.com/splitledger/backend/internal/domain/shared/valueobject"
)

// SplitType represents how an expense is divided among participants
type SplitType string

const (
	SplitTypeEqual      SplitType = "EQUAL"
	SplitTypeExact      SplitType = "EXACT"
	SplitTypePercentage SplitType = "PERCENTAGE"
)

// IsValid checks if the split type is a valid SplitType
func (t SplitType) IsValid() bool {
	switch t {
	case SplitTypeEqual, SplitTypeExact, SplitTypePercentage:
		return true
	}
	return false
}

// String returns the string representation of SplitType
func (t SplitType) String() string {
	return string(t)
}

// Epsilon is the tolerance for monetary comparisons: one cent.
var Epsilon = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// Settled reports whether an amount is within one cent of zero
func Settled(amount decimal.Decimal) bool {
	return amount.Abs().LessThan(Epsilon)
}

// ExpenseSplit is one participant's assigned share of an expense
type ExpenseSplit struct {
	shared.BaseEntity
	ExpenseID  uuid.UUID        `json:"expense_id"`
	UserID     uuid.UUID        `json:"user_id"`
	Amount     decimal.Decimal  `json:"amount"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

// SplitInput is a caller-supplied split before validation/normalization
type SplitInput struct {
	UserID     uuid.UUID
	Amount     decimal.Decimal
	Percentage *decimal.Decimal
}

// Expense represents a shared expense aggregate root.
// It owns its splits; splits are persisted and replaced together with it.
type Expense struct {
	shared.BaseEntity
	GroupID     uuid.UUID       `json:"group_id"`
	PaidBy      uuid.UUID       `json:"paid_by"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ExpenseDate time.Time       `json:"expense_date"`
	SplitType   SplitType       `json:"split_type"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	Splits      []ExpenseSplit  `json:"splits"`
}

// NewExpense creates a new expense with validated, normalized splits.
// The amount is rounded to storage precision before splits are resolved.
func NewExpense(
	groupID uuid.UUID,
	paidBy uuid.UUID,
	amount valueobject.Money,
	description string,
	splitType SplitType,
	inputs []SplitInput,
	expenseDate time.Time,
	createdBy uuid.UUID,
) (*Expense, error) {
	if groupID == uuid.Nil || paidBy == uuid.Nil || createdBy == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION", "Group, payer and creator IDs cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION", "Amount must be positive")
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("VALIDATION", "Description cannot exceed 500 characters")
	}
	if !splitType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION", "Invalid split type")
	}
	if expenseDate.IsZero() {
		expenseDate = time.Now()
	}

	rounded := amount.Round().Amount()
	splits, err := ResolveSplits(splitType, rounded, inputs)
	if err != nil {
		return nil, err
	}

	expense := &Expense{
		BaseEntity:  shared.NewBaseEntity(),
		GroupID:     groupID,
		PaidBy:      paidBy,
		Amount:      rounded,
		Description: description,
		ExpenseDate: expenseDate,
		SplitType:   splitType,
		CreatedBy:   createdBy,
	}
	expense.attachSplits(splits)
	return expense, nil
}

// Replace swaps the expense's amount, split type and splits as one unit.
// Old splits are discarded; the repository persists the replacement
// atomically with any scalar field change.
func (e *Expense) Replace(amount valueobject.Money, splitType SplitType, inputs []SplitInput) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("VALIDATION", "Amount must be positive")
	}
	if !splitType.IsValid() {
		return shared.NewDomainError("VALIDATION", "Invalid split type")
	}

	rounded := amount.Round().Amount()
	splits, err := ResolveSplits(splitType, rounded, inputs)
	if err != nil {
		return err
	}

	e.Amount = rounded
	e.SplitType = splitType
	e.attachSplits(splits)
	e.Touch()
	return nil
}

// SetDescription updates the description
func (e *Expense) SetDescription(description string) error {
	if len(description) > 500 {
		return shared.NewDomainError("VALIDATION", "Description cannot exceed 500 characters")
	}
	e.Description = description
	e.Touch()
	return nil
}

// SetExpenseDate updates the expense date
func (e *Expense) SetExpenseDate(date time.Time) {
	e.ExpenseDate = date
	e.Touch()
}

// attachSplits binds resolved splits to this expense
func (e *Expense) attachSplits(splits []ExpenseSplit) {
	for i := range splits {
		splits[i].ExpenseID = e.ID
	}
	e.Splits = splits
}

// Participants returns the user IDs of all split participants
func (e *Expense) Participants() []uuid.UUID {
	ids := make([]uuid.UUID, len(e.Splits))
	for i, s := range e.Splits {
		ids[i] = s.UserID
	}
	return ids
}

// AffectedUsers returns the set of users whose balance this expense touches:
// the payer plus every split participant.
func (e *Expense) AffectedUsers() AffectedUsers {
	set := NewAffectedUsers(e.PaidBy)
	for _, s := range e.Splits {
		set.Add(s.UserID)
	}
	return set
}

// ResolveSplits validates the caller-supplied splits against the split type
// and returns the final per-participant shares. All returned amounts are
// rounded to storage precision and their sum is less than one cent away from
// the expense amount (exactly equal, for EQUAL).
func ResolveSplits(splitType SplitType, amount decimal.Decimal, inputs []SplitInput) ([]ExpenseSplit, error) {
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("VALIDATION", "At least one participant is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(inputs))
	for _, in := range inputs {
		if in.UserID == uuid.Nil {
			return nil, shared.NewDomainError("VALIDATION", "Participant user ID cannot be empty")
		}
		if _, dup := seen[in.UserID]; dup {
			return nil, shared.NewDomainError("VALIDATION", fmt.Sprintf("Duplicate participant %s", in.UserID))
		}
		seen[in.UserID] = struct{}{}
	}

	switch splitType {
	case SplitTypeEqual:
		ids := make([]uuid.UUID, len(inputs))
		for i, in := range inputs {
			ids[i] = in.UserID
		}
		return computeEqualSplits(amount, ids), nil
	case SplitTypeExact:
		return resolveExactSplits(amount, inputs)
	case SplitTypePercentage:
		return resolvePercentageSplits(amount, inputs)
	default:
		return nil, shared.NewDomainError("VALIDATION", "Invalid split type")
	}
}

// computeEqualSplits divides the amount evenly across participants. The
// rounding remainder goes to a single deterministically chosen participant:
// the one with the lowest user ID, regardless of the order the caller listed
// them in, so the result is canonical for a given participant set.
func computeEqualSplits(amount decimal.Decimal, participants []uuid.UUID) []ExpenseSplit {
	ids := make([]uuid.UUID, len(participants))
	copy(ids, participants)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	n := decimal.NewFromInt(int64(len(ids)))
	base := amount.Div(n).RoundDown(2)
	remainder := amount.Sub(base.Mul(n))

	splits := make([]ExpenseSplit, len(ids))
	for i, id := range ids {
		share := base
		if i == 0 {
			share = share.Add(remainder)
		}
		splits[i] = ExpenseSplit{
			BaseEntity: shared.NewBaseEntity(),
			UserID:     id,
			Amount:     share,
		}
	}
	return splits
}

// resolveExactSplits requires the caller-supplied amounts to sum to the
// expense amount. The tolerance is strictly below one cent, matching Settled.
func resolveExactSplits(amount decimal.Decimal, inputs []SplitInput) ([]ExpenseSplit, error) {
	total := decimal.Zero
	splits := make([]ExpenseSplit, len(inputs))
	for i, in := range inputs {
		share := in.Amount.Round(2)
		if share.IsNegative() {
			return nil, shared.NewDomainError("VALIDATION", "Split amounts cannot be negative")
		}
		total = total.Add(share)
		splits[i] = ExpenseSplit{
			BaseEntity: shared.NewBaseEntity(),
			UserID:     in.UserID,
			Amount:     share,
		}
	}
	if diff := total.Sub(amount).Abs(); diff.GreaterThanOrEqual(Epsilon) {
		return nil, shared.NewDomainError("VALIDATION",
			fmt.Sprintf("Sum of exact amounts (%s) must equal expense amount (%s)", total.StringFixed(2), amount.StringFixed(2)))
	}
	return splits, nil
}

// resolvePercentageSplits requires percentages summing to 100, with the same
// strict sub-cent tolerance as exact splits. A supplied amount must be
// consistent with its percentage of the
// total; an omitted (zero) amount is derived from the percentage.
func resolvePercentageSplits(amount decimal.Decimal, inputs []SplitInput) ([]ExpenseSplit, error) {
	totalPct := decimal.Zero
	splits := make([]ExpenseSplit, len(inputs))
	for i, in := range inputs {
		if in.Percentage == nil {
			return nil, shared.NewDomainError("VALIDATION",
				fmt.Sprintf("Percentage is required for user %s", in.UserID))
		}
		pct := *in.Percentage
		if pct.IsNegative() {
			return nil, shared.NewDomainError("VALIDATION", "Percentages cannot be negative")
		}
		totalPct = totalPct.Add(pct)

		expected := amount.Mul(pct).Div(hundred).Round(2)
		share := in.Amount.Round(2)
		if share.IsZero() {
			share = expected
		} else if share.Sub(expected).Abs().GreaterThanOrEqual(Epsilon) {
			return nil, shared.NewDomainError("VALIDATION",
				fmt.Sprintf("Amount for user %s doesn't match percentage", in.UserID))
		}

		p := pct
		splits[i] = ExpenseSplit{
			BaseEntity: shared.NewBaseEntity(),
			UserID:     in.UserID,
			Amount:     share,
			Percentage: &p,
		}
	}
	if diff := totalPct.Sub(hundred).Abs(); diff.GreaterThanOrEqual(Epsilon) {
		return nil, shared.NewDomainError("VALIDATION",
			fmt.Sprintf("Sum of percentages (%s%%) must equal 100%%", totalPct.StringFixed(2)))
	}
	return splits, nil
}
