package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/splitledger/backend/internal/domain/ledger"
	"github.com/splitledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// GroupService provides application-level group and membership operations
type GroupService struct {
	groups   ledger.GroupRepository
	members  ledger.MembershipOracle
	balances ledger.BalanceRepository
	logger   *zap.Logger
}

// NewGroupService creates a new GroupService
func NewGroupService(
	groups ledger.GroupRepository,
	members ledger.MembershipOracle,
	balances ledger.BalanceRepository,
	logger *zap.Logger,
) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{
		groups:   groups,
		members:  members,
		balances: balances,
		logger:   logger,
	}
}

// CreateGroupRequest represents a request to create a group
type CreateGroupRequest struct {
	Name      string    `json:"name" binding:"required"`
	CreatedBy uuid.UUID `json:"-"` // Set from JWT context, not from request body
}

// UpdateGroupRequest represents a request to rename a group
type UpdateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddMemberRequest represents a request to add a member to a group
type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Role   string    `json:"role"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MembershipResponse represents a group membership in API responses
type MembershipResponse struct {
	GroupID  uuid.UUID `json:"group_id"`
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func toGroupResponse(g *ledger.Group) *GroupResponse {
	return &GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func toMembershipResponse(m *ledger.Membership) *MembershipResponse {
	return &MembershipResponse{
		GroupID:  m.GroupID,
		UserID:   m.UserID,
		Role:     m.Role.String(),
		JoinedAt: m.JoinedAt,
	}
}

// CreateGroup creates a group with the creator as its first admin
func (s *GroupService) CreateGroup(ctx context.Context, req CreateGroupRequest) (*GroupResponse, error) {
	group, err := ledger.NewGroup(req.Name, req.CreatedBy)
	if err != nil {
		return nil, err
	}

	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}
	return toGroupResponse(group), nil
}

// GetGroup returns one group; the requester must be a member
func (s *GroupService) GetGroup(ctx context.Context, groupID, requesterID uuid.UUID) (*GroupResponse, error) {
	if err := s.requireMember(ctx, groupID, requesterID); err != nil {
		return nil, err
	}

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return toGroupResponse(group), nil
}

// ListUserGroups returns all groups the user belongs to
func (s *GroupService) ListUserGroups(ctx context.Context, userID uuid.UUID) ([]*GroupResponse, error) {
	groups, err := s.groups.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		responses[i] = toGroupResponse(g)
	}
	return responses, nil
}

// ListMembers returns the group's memberships; the requester must be a member
func (s *GroupService) ListMembers(ctx context.Context, groupID, requesterID uuid.UUID) ([]*MembershipResponse, error) {
	if err := s.requireMember(ctx, groupID, requesterID); err != nil {
		return nil, err
	}

	memberships, err := s.groups.Members(ctx, groupID)
	if err != nil {
		return nil, err
	}

	responses := make([]*MembershipResponse, len(memberships))
	for i, m := range memberships {
		responses[i] = toMembershipResponse(m)
	}
	return responses, nil
}

// UpdateGroup renames the group; admins only
func (s *GroupService) UpdateGroup(ctx context.Context, groupID, requesterID uuid.UUID, req UpdateGroupRequest) (*GroupResponse, error) {
	if err := s.requireAdmin(ctx, groupID, requesterID); err != nil {
		return nil, err
	}

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := group.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return toGroupResponse(group), nil
}

// AddMember adds a user to the group; admins only. The role defaults to
// member when the request leaves it empty.
func (s *GroupService) AddMember(ctx context.Context, groupID, requesterID uuid.UUID, req AddMemberRequest) (*MembershipResponse, error) {
	if err := s.requireAdmin(ctx, groupID, requesterID); err != nil {
		return nil, err
	}

	already, err := s.members.IsMember(ctx, groupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, shared.NewDomainError("VALIDATION", "User is already a member of this group")
	}

	role := ledger.MemberRole(req.Role)
	if req.Role == "" {
		role = ledger.RoleMember
	}
	membership, err := ledger.NewMembership(groupID, req.UserID, role)
	if err != nil {
		return nil, err
	}

	if err := s.groups.AddMember(ctx, membership); err != nil {
		return nil, err
	}
	return toMembershipResponse(membership), nil
}

// LeaveGroup removes the requester from the group, refused while their
// balance is unsettled.
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID uuid.UUID) error {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return err
	}

	balance, err := s.balances.UserBalance(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ledger.Settled(balance) {
		return shared.NewDomainError("UNSETTLED_BALANCE", "Settle your balance before leaving the group")
	}

	return s.groups.RemoveMember(ctx, groupID, userID)
}

// RemoveMember removes another user from the group; admins only, and still
// subject to the settled-balance rule.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, requesterID, userID uuid.UUID) error {
	if err := s.requireAdmin(ctx, groupID, requesterID); err != nil {
		return err
	}
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return err
	}

	balance, err := s.balances.UserBalance(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ledger.Settled(balance) {
		return shared.NewDomainError("UNSETTLED_BALANCE", "Member's balance must be settled before removal")
	}

	return s.groups.RemoveMember(ctx, groupID, userID)
}

func (s *GroupService) requireMember(ctx context.Context, groupID, userID uuid.UUID) error {
	ok, err := s.members.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewDomainError("NOT_MEMBER", "User is not a member of this group")
	}
	return nil
}

func (s *GroupService) requireAdmin(ctx context.Context, groupID, userID uuid.UUID) error {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return err
	}
	isAdmin, err := s.members.IsAdmin(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return shared.NewDomainError("FORBIDDEN", "Only a group admin can perform this action")
	}
	return nil
}
