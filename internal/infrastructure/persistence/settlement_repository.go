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

// GormSettlementRepository implements SettlementRepository using GORM
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewGormSettlementRepository creates a new GormSettlementRepository
func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// FindByID finds a settlement by its ID
func (r *GormSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Settlement, error) {
	var model models.SettlementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByGroup finds a group's settlements, newest first
func (r *GormSettlementRepository) FindByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*ledger.Settlement, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var settlementModels []models.SettlementModel
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("settlement_date DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&settlementModels).Error; err != nil {
		return nil, err
	}

	settlements := make([]*ledger.Settlement, len(settlementModels))
	for i := range settlementModels {
		settlements[i] = settlementModels[i].ToDomain()
	}
	return settlements, nil
}

// Create persists a settlement
func (r *GormSettlementRepository) Create(ctx context.Context, settlement *ledger.Settlement) error {
	var model models.SettlementModel
	model.FromDomain(settlement)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Delete removes a settlement
func (r *GormSettlementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SettlementModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
