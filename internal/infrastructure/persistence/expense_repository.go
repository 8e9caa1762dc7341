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

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense with its splits by ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Preload("Splits").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByGroup finds a group's expenses with their splits, newest first
func (r *GormExpenseRepository) FindByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*ledger.Expense, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var expenseModels []models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Preload("Splits").
		Where("group_id = ?", groupID).
		Order("expense_date DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&expenseModels).Error; err != nil {
		return nil, err
	}

	expenses := make([]*ledger.Expense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = expenseModels[i].ToDomain()
	}
	return expenses, nil
}

// Create persists the expense and its splits in one transaction
func (r *GormExpenseRepository) Create(ctx context.Context, expense *ledger.Expense) error {
	var model models.ExpenseModel
	model.FromDomain(expense)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&model).Error
	})
}

// Update replaces the expense row and its entire split set in one
// transaction. Old splits are deleted and the validated new ones inserted;
// any failure rolls the whole replacement back.
func (r *GormExpenseRepository) Update(ctx context.Context, expense *ledger.Expense) error {
	var model models.ExpenseModel
	model.FromDomain(expense)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ExpenseModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]any{
				"group_id":     model.GroupID,
				"paid_by":      model.PaidBy,
				"amount":       model.Amount,
				"description":  model.Description,
				"expense_date": model.ExpenseDate,
				"split_type":   model.SplitType,
				"updated_at":   model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		if err := tx.Where("expense_id = ?", model.ID).
			Delete(&models.ExpenseSplitModel{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.Splits).Error
	})
}

// Delete removes the expense; its splits cascade
func (r *GormExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", id).
			Delete(&models.ExpenseSplitModel{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.ExpenseModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}
