package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finova/internal/errors"
	"finova/internal/finance"
	"finova/internal/models"
)

// investmentService handles investment-related business logic.
type investmentService struct {
	db        *gorm.DB
	household models.Household
	now       func() time.Time
}

// NewInvestmentService creates a new InvestmentServicer.
func NewInvestmentService(db *gorm.DB, household models.Household) InvestmentServicer {
	return &investmentService{db: db, household: household, now: time.Now}
}

func validInvestmentType(t models.InvestmentType) bool {
	return t == models.InvestmentTypeGeneral || t == models.InvestmentTypeEmergency
}

// historyOrder loads operations oldest first.
func historyOrder(db *gorm.DB) *gorm.DB {
	return db.Order("date ASC").Order("created_at ASC")
}

// CreateInvestment creates an investment seeded with one contribution of in.Amount.
func (s *investmentService) CreateInvestment(ctx context.Context, in CreateInvestmentInput) (*models.Investment, error) {
	// Validate input
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "investment name is required")
	}
	if !validInvestmentType(in.Type) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "investment type must be general or emergency")
	}
	if !s.household.IsValidOwner(in.Owner) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "owner must be a household member or Both")
	}
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.Goal != nil && !in.Goal.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal must be greater than zero")
	}

	date := in.Date
	if date.IsZero() {
		date = models.DateOf(s.now())
	}
	var goal *decimal.Decimal
	if in.Goal != nil {
		g := in.Goal.Round(2)
		goal = &g
	}

	investment := &models.Investment{
		Name:  name,
		Type:  in.Type,
		Owner: in.Owner,
		Goal:  goal,
		History: []models.InvestmentOperation{
			{Date: date, Amount: in.Amount.Round(2), Operation: models.OperationContribution},
		},
	}
	investment.CurrentAmount = investment.Balance()

	if err := s.db.WithContext(ctx).Create(investment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return investment, nil
}

// ListInvestments returns the investments visible under owner with their history.
func (s *investmentService) ListInvestments(ctx context.Context, owner models.Owner) ([]models.Investment, error) {
	var investments []models.Investment
	if err := s.db.WithContext(ctx).
		Scopes(ownerScope(owner)).
		Preload("History", historyOrder).
		Order("name ASC").
		Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return investments, nil
}

// GetInvestmentByID retrieves an investment with its history.
func (s *investmentService) GetInvestmentByID(ctx context.Context, id string) (*models.Investment, error) {
	var investment models.Investment
	if err := findByID(s.db.WithContext(ctx).Preload("History", historyOrder), &investment, id, apperrors.ErrInvestmentNotFound); err != nil {
		return nil, err
	}
	return &investment, nil
}

// RecordOperation appends a contribution or withdrawal and recomputes the
// current amount from the full history. A withdrawal larger than the current
// amount is rejected.
func (s *investmentService) RecordOperation(ctx context.Context, id string, operation models.OperationType, amount decimal.Decimal, date models.Date) (*models.Investment, error) {
	if operation != models.OperationContribution && operation != models.OperationWithdrawal {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "operation must be contribution or withdrawal")
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if date.IsZero() {
		date = models.DateOf(s.now())
	}

	var investment models.Investment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findByID(tx.Preload("History", historyOrder), &investment, id, apperrors.ErrInvestmentNotFound); err != nil {
			return err
		}
		if operation == models.OperationWithdrawal && amount.GreaterThan(investment.Balance()) {
			return apperrors.ErrInsufficientFunds
		}

		op := models.InvestmentOperation{
			InvestmentID: investment.ID,
			Date:         date,
			Amount:       amount.Round(2),
			Operation:    operation,
		}
		if err := tx.Create(&op).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		investment.History = append(investment.History, op)
		investment.SortHistory()
		investment.CurrentAmount = investment.Balance()

		if err := tx.Model(&investment).Update("current_amount", investment.CurrentAmount).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &investment, nil
}

// DeleteInvestment deletes an investment and its history.
func (s *investmentService) DeleteInvestment(ctx context.Context, id string) error {
	var investment models.Investment
	if err := findByID(s.db.WithContext(ctx), &investment, id, apperrors.ErrInvestmentNotFound); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("investment_id = ?", investment.ID).Delete(&models.InvestmentOperation{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&investment).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetEvolution returns the cumulative value curve of the investments visible
// under owner.
func (s *investmentService) GetEvolution(ctx context.Context, owner models.Owner) ([]finance.EvolutionPoint, error) {
	investments, err := s.ListInvestments(ctx, owner)
	if err != nil {
		return nil, err
	}
	return finance.InvestmentEvolution(investments), nil
}
