package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/splitledger/backend/internal/domain/ledger"
	"github.com/splitledger/backend/internal/domain/shared"
	"github.com/splitledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormGroupRepository implements GroupRepository and MembershipOracle using GORM
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GormGroupRepository
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

// FindByID finds a group by its ID
func (r *GormGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Group, error) {
	var model models.GroupModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser finds all groups a user belongs to
func (r *GormGroupRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Group, error) {
	var groupModels []models.GroupModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", userID).
		Order("groups.created_at DESC").
		Find(&groupModels).Error; err != nil {
		return nil, err
	}

	groups := make([]*ledger.Group, len(groupModels))
	for i := range groupModels {
		groups[i] = groupModels[i].ToDomain()
	}
	return groups, nil
}

// Members returns all memberships of a group
func (r *GormGroupRepository) Members(ctx context.Context, groupID uuid.UUID) ([]*ledger.Membership, error) {
	var memberModels []models.GroupMemberModel
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&memberModels).Error; err != nil {
		return nil, err
	}

	memberships := make([]*ledger.Membership, len(memberModels))
	for i := range memberModels {
		memberships[i] = memberModels[i].ToDomain()
	}
	return memberships, nil
}

// Create persists the group and its creator's admin membership atomically
func (r *GormGroupRepository) Create(ctx context.Context, group *ledger.Group) error {
	var model models.GroupModel
	model.FromDomain(group)

	membership, err := ledger.NewMembership(group.ID, group.CreatedBy, ledger.RoleAdmin)
	if err != nil {
		return err
	}
	var memberModel models.GroupMemberModel
	memberModel.FromDomain(membership)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		return tx.Create(&memberModel).Error
	})
}

// Update persists changes to a group
func (r *GormGroupRepository) Update(ctx context.Context, group *ledger.Group) error {
	var model models.GroupModel
	model.FromDomain(group)

	result := r.db.WithContext(ctx).Model(&models.GroupModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"name":       model.Name,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddMember persists a membership
func (r *GormGroupRepository) AddMember(ctx context.Context, membership *ledger.Membership) error {
	var model models.GroupMemberModel
	model.FromDomain(membership)
	return r.db.WithContext(ctx).Create(&model).Error
}

// RemoveMember deletes a membership
func (r *GormGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMemberModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IsMember implements MembershipOracle
func (r *GormGroupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.GroupMemberModel{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsAdmin implements MembershipOracle
func (r *GormGroupRepository) IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.GroupMemberModel{}).
		Where("group_id = ? AND user_id = ? AND role = ?", groupID, userID, ledger.RoleAdmin.String()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
