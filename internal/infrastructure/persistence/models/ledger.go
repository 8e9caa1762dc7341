package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/splitledger/backend/internal/domain/ledger"
)

// GroupModel is the persistence model for groups
type GroupModel struct {
	BaseModel
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName specifies the table name for GroupModel
func (GroupModel) TableName() string {
	return "groups"
}

// ToDomain converts GroupModel to domain Group
func (m *GroupModel) ToDomain() *ledger.Group {
	return &ledger.Group{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		CreatedBy:  m.CreatedBy,
	}
}

// FromDomain populates GroupModel from domain Group
func (m *GroupModel) FromDomain(g *ledger.Group) {
	m.FromDomainBaseEntity(g.BaseEntity)
	m.Name = g.Name
	m.CreatedBy = g.CreatedBy
}

// GroupMemberModel is the persistence model for group memberships
type GroupMemberModel struct {
	BaseModel
	GroupID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_members_group_user"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_members_group_user;index"`
	Role     string    `gorm:"type:varchar(20);not null;default:'member'"`
	JoinedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for GroupMemberModel
func (GroupMemberModel) TableName() string {
	return "group_members"
}

// ToDomain converts GroupMemberModel to domain Membership
func (m *GroupMemberModel) ToDomain() *ledger.Membership {
	return &ledger.Membership{
		BaseEntity: m.BaseModel.ToDomain(),
		GroupID:    m.GroupID,
		UserID:     m.UserID,
		Role:       ledger.MemberRole(m.Role),
		JoinedAt:   m.JoinedAt,
	}
}

// FromDomain populates GroupMemberModel from domain Membership
func (m *GroupMemberModel) FromDomain(membership *ledger.Membership) {
	m.FromDomainBaseEntity(membership.BaseEntity)
	m.GroupID = membership.GroupID
	m.UserID = membership.UserID
	m.Role = membership.Role.String()
	m.JoinedAt = membership.JoinedAt
}

// ExpenseModel is the persistence model for expenses
type ExpenseModel struct {
	BaseModel
	GroupID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	PaidBy      uuid.UUID           `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	Description string              `gorm:"type:varchar(500)"`
	ExpenseDate time.Time           `gorm:"not null;index"`
	SplitType   string              `gorm:"type:varchar(20);not null"`
	CreatedBy   uuid.UUID           `gorm:"type:uuid;not null"`
	Splits      []ExpenseSplitModel `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for ExpenseModel
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts ExpenseModel to domain Expense
func (m *ExpenseModel) ToDomain() *ledger.Expense {
	splits := make([]ledger.ExpenseSplit, len(m.Splits))
	for i := range m.Splits {
		splits[i] = *m.Splits[i].ToDomain()
	}
	return &ledger.Expense{
		BaseEntity:  m.BaseModel.ToDomain(),
		GroupID:     m.GroupID,
		PaidBy:      m.PaidBy,
		Amount:      m.Amount,
		Description: m.Description,
		ExpenseDate: m.ExpenseDate,
		SplitType:   ledger.SplitType(m.SplitType),
		CreatedBy:   m.CreatedBy,
		Splits:      splits,
	}
}

// FromDomain populates ExpenseModel from domain Expense
func (m *ExpenseModel) FromDomain(e *ledger.Expense) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.GroupID = e.GroupID
	m.PaidBy = e.PaidBy
	m.Amount = e.Amount
	m.Description = e.Description
	m.ExpenseDate = e.ExpenseDate
	m.SplitType = e.SplitType.String()
	m.CreatedBy = e.CreatedBy

	m.Splits = make([]ExpenseSplitModel, len(e.Splits))
	for i := range e.Splits {
		m.Splits[i].FromDomain(&e.Splits[i])
	}
}

// ExpenseSplitModel is the persistence model for expense splits
type ExpenseSplitModel struct {
	BaseModel
	ExpenseID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Percentage *decimal.Decimal `gorm:"type:decimal(5,2)"`
}

// TableName specifies the table name for ExpenseSplitModel
func (ExpenseSplitModel) TableName() string {
	return "expense_splits"
}

// ToDomain converts ExpenseSplitModel to domain ExpenseSplit
func (m *ExpenseSplitModel) ToDomain() *ledger.ExpenseSplit {
	return &ledger.ExpenseSplit{
		BaseEntity: m.BaseModel.ToDomain(),
		ExpenseID:  m.ExpenseID,
		UserID:     m.UserID,
		Amount:     m.Amount,
		Percentage: m.Percentage,
	}
}

// FromDomain populates ExpenseSplitModel from domain ExpenseSplit
func (m *ExpenseSplitModel) FromDomain(s *ledger.ExpenseSplit) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.ExpenseID = s.ExpenseID
	m.UserID = s.UserID
	m.Amount = s.Amount
	m.Percentage = s.Percentage
}

// SettlementModel is the persistence model for settlements
type SettlementModel struct {
	BaseModel
	GroupID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaidBy         uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaidTo         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description    string          `gorm:"type:varchar(500)"`
	SettlementDate time.Time       `gorm:"not null;index"`
}

// TableName specifies the table name for SettlementModel
func (SettlementModel) TableName() string {
	return "settlements"
}

// ToDomain converts SettlementModel to domain Settlement
func (m *SettlementModel) ToDomain() *ledger.Settlement {
	return &ledger.Settlement{
		BaseEntity:     m.BaseModel.ToDomain(),
		GroupID:        m.GroupID,
		PaidBy:         m.PaidBy,
		PaidTo:         m.PaidTo,
		Amount:         m.Amount,
		Description:    m.Description,
		SettlementDate: m.SettlementDate,
	}
}

// FromDomain populates SettlementModel from domain Settlement
func (m *SettlementModel) FromDomain(s *ledger.Settlement) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.GroupID = s.GroupID
	m.PaidBy = s.PaidBy
	m.PaidTo = s.PaidTo
	m.Amount = s.Amount
	m.Description = s.Description
	m.SettlementDate = s.SettlementDate
}
