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

// savingsGoalService handles savings goals.
type savingsGoalService struct {
	db        *gorm.DB
	household models.Household
}

// NewSavingsGoalService creates a new SavingsGoalServicer.
func NewSavingsGoalService(db *gorm.DB, household models.Household) SavingsGoalServicer {
	return &savingsGoalService{db: db, household: household}
}

// ListGoals returns the goals visible under owner with their progress.
func (s *savingsGoalService) ListGoals(ctx context.Context, owner models.Owner) ([]finance.GoalStatus, error) {
	var goals []models.SavingsGoal
	if err := s.db.WithContext(ctx).Scopes(ownerScope(owner)).Order("name ASC").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return finance.GoalProgress(goals), nil
}

// UpsertGoal creates the goal named name or overwrites its amounts and owner.
func (s *savingsGoalService) UpsertGoal(ctx context.Context, name string, target, current decimal.Decimal, owner models.Owner) (*models.SavingsGoal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal name is required")
	}
	if !target.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
	}
	if current.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current amount must not be negative")
	}
	if owner == "" {
		owner = models.OwnerBoth
	}
	if !s.household.IsValidOwner(owner) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "owner must be a household member or Both")
	}

	var goal models.SavingsGoal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ?", name).First(&goal).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		goal.Name = name
		goal.TargetAmount = target.Round(2)
		goal.CurrentAmount = current.Round(2)
		goal.Owner = owner
		if err := tx.Save(&goal).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// DeleteGoal deletes a savings goal by ID
func (s *savingsGoalService) DeleteGoal(ctx context.Context, id string) error {
	var goal models.SavingsGoal
	if err := findByID(s.db.WithContext(ctx), &goal, id, apperrors.ErrSavingsGoalNotFound); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
