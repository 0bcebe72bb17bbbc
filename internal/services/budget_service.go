package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finova/internal/errors"
	"finova/internal/finance"
	"finova/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// ListBudgets returns every budget ordered by category.
func (s *budgetService) ListBudgets(ctx context.Context) ([]models.Budget, error) {
	var budgets []models.Budget
	if err := s.db.WithContext(ctx).Order("category ASC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// SetBudget creates or updates the ceiling for category. A zero limit removes
// the budget and returns nil.
func (s *budgetService) SetBudget(ctx context.Context, category string, limit decimal.Decimal) (*models.Budget, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if limit.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must not be negative")
	}

	if limit.IsZero() {
		if err := s.db.WithContext(ctx).Where("category = ?", category).Delete(&models.Budget{}).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, nil
	}

	var budget models.Budget
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("category = ?", category).First(&budget).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			budget = models.Budget{Category: category, LimitAmount: limit.Round(2)}
			err = tx.Create(&budget).Error
		case err == nil:
			budget.LimitAmount = limit.Round(2)
			err = tx.Save(&budget).Error
		}
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// GetBudgetProgress compares the month's expenses visible under owner with
// the standing budgets.
func (s *budgetService) GetBudgetProgress(ctx context.Context, month finance.Month, owner models.Owner) ([]finance.BudgetStatus, error) {
	expenses, err := monthExpenses(s.db.WithContext(ctx), month, owner)
	if err != nil {
		return nil, err
	}
	budgets, err := s.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	return finance.BudgetProgress(finance.SpendingByCategory(expenses), budgets), nil
}

// monthExpenses loads the expenses dated in month and visible under owner.
func monthExpenses(db *gorm.DB, month finance.Month, owner models.Owner) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := db.Scopes(ownerScope(owner)).
		Where("type = ? AND date >= ? AND date <= ?", models.TransactionTypeExpense, month.FirstDay(), month.LastDay()).
		Order("date ASC").
		Find(&txs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txs, nil
}
