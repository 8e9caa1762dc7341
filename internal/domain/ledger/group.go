package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/splitledger/backend/internal/domain/shared"
)

// MemberRole represents a user's role within a group
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// IsValid checks if the role is a valid MemberRole
func (r MemberRole) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// String returns the string representation of MemberRole
func (r MemberRole) String() string {
	return string(r)
}

// Group represents a set of users sharing expenses
type Group struct {
	shared.BaseEntity
	Name      string    `json:"name"`
	CreatedBy uuid.UUID `json:"created_by"`
}

// NewGroup creates a new group. The creator is expected to be added as an
// admin member in the same transaction that persists the group.
func NewGroup(name string, createdBy uuid.UUID) (*Group, error) {
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION", "Group name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("VALIDATION", "Group name cannot exceed 100 characters")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION", "Creator user ID cannot be empty")
	}
	return &Group{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		CreatedBy:  createdBy,
	}, nil
}

// Rename changes the group name
func (g *Group) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("VALIDATION", "Group name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("VALIDATION", "Group name cannot exceed 100 characters")
	}
	g.Name = name
	g.Touch()
	return nil
}

// Membership ties a user to a group with a role.
// Uniqueness: one membership per (group, user).
type Membership struct {
	shared.BaseEntity
	GroupID  uuid.UUID  `json:"group_id"`
	UserID   uuid.UUID  `json:"user_id"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joined_at"`
}

// NewMembership creates a new membership
func NewMembership(groupID, userID uuid.UUID, role MemberRole) (*Membership, error) {
	if groupID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION", "Group and user IDs cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("VALIDATION", "Member role is not valid")
	}
	return &Membership{
		BaseEntity: shared.NewBaseEntity(),
		GroupID:    groupID,
		UserID:     userID,
		Role:       role,
		JoinedAt:   time.Now(),
	}, nil
}

// IsAdmin returns true if the membership carries the admin role
func (m *Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}
