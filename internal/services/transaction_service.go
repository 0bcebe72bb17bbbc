package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	apperrors "finova/internal/errors"
	"finova/internal/events"
	"finova/internal/finance"
	"finova/internal/models"
	"finova/internal/pagination"
)

// transactionSortColumns are the columns a list request may sort by.
var transactionSortColumns = []string{"date", "amount", "description", "created_at"}

// transactionService handles transaction-related business logic.
type transactionService struct {
	db                *gorm.DB
	household         models.Household
	publisher         events.Publisher
	labelInstallments bool
}

// NewTransactionService creates a new TransactionServicer. labelInstallments
// appends " (i/N)" to the descriptions of fanned-out recurring transactions.
func NewTransactionService(db *gorm.DB, household models.Household, publisher events.Publisher, labelInstallments bool) TransactionServicer {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &transactionService{
		db:                db,
		household:         household,
		publisher:         publisher,
		labelInstallments: labelInstallments,
	}
}

// transactionCreatedPayload is the body of a TransactionCreated event.
type transactionCreatedPayload struct {
	IDs               []string `json:"ids"`
	Owner             string   `json:"owner"`
	RecurrenceGroupID *string  `json:"recurrence_group_id,omitempty"`
}

// CreateTransaction validates and persists a transaction. A recurring
// transaction with N months persists N instances; with 0 months it persists
// one instance that monthly reconciliation carries forward.
func (s *transactionService) CreateTransaction(ctx context.Context, in CreateTransactionInput) ([]models.Transaction, error) {
	// Validate input
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !validTransactionType(in.Type) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense")
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if !s.household.IsValidOwner(in.Owner) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "owner must be a household member or Both")
	}
	if in.Date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}
	if !validPaymentMethod(in.PaymentMethod) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown payment method")
	}
	if in.RecurringMonths < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "recurring_months must not be negative")
	}

	months := in.RecurringMonths
	if !in.IsRecurring {
		months = 0
	}
	isPaid := in.PaymentMethod.DefaultPaid()
	if in.IsPaid != nil {
		isPaid = *in.IsPaid
	}

	tx := models.Transaction{
		Description:     description,
		Amount:          in.Amount.Round(2),
		Type:            in.Type,
		Category:        strings.TrimSpace(in.Category),
		Owner:           in.Owner,
		Date:            in.Date,
		IsRecurring:     in.IsRecurring,
		RecurringMonths: months,
		PaymentMethod:   in.PaymentMethod,
		IsPaid:          isPaid,
	}
	// The submitted row plus one copy per following month.
	rows := finance.Expand(tx, months+1, finance.ExpandOptions{LabelInstallments: s.labelInstallments})

	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	payload := transactionCreatedPayload{Owner: string(in.Owner), RecurrenceGroupID: rows[0].RecurrenceGroupID}
	for _, row := range rows {
		payload.IDs = append(payload.IDs, row.ID)
	}
	publishEvent(ctx, s.publisher, events.TransactionCreated, payload)

	return rows, nil
}

// ListTransactions retrieves a paginated, filtered list of transactions.
func (s *transactionService) ListTransactions(ctx context.Context, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Transaction{}).Scopes(ownerScope(filter.Owner))
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order(page.OrderClause(transactionSortColumns, "date DESC")).
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("(LOWER(description) LIKE ? OR LOWER(category) LIKE ?)", like, like)
	} else if f.Month != nil {
		q = q.Where("date >= ? AND date <= ?", f.Month.FirstDay(), f.Month.LastDay())
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.IsPaid != nil {
		q = q.Where("is_paid = ?", *f.IsPaid)
	}
	return q
}

// ListAll returns every transaction ordered by date.
func (s *transactionService) ListAll(ctx context.Context) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.WithContext(ctx).Order("date ASC").Order("created_at ASC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetTransactionByID retrieves a transaction by ID
func (s *transactionService) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := findByID(s.db.WithContext(ctx), &transaction, id, apperrors.ErrTransactionNotFound); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// UpdateTransaction edits a transaction. is_paid is left as it is even when
// the payment method changes.
func (s *transactionService) UpdateTransaction(ctx context.Context, id string, in UpdateTransactionInput) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
		}
		transaction.Description = description
	}
	if in.Amount != nil {
		if !in.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		transaction.Amount = in.Amount.Round(2)
	}
	if in.Type != nil {
		if !validTransactionType(*in.Type) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense")
		}
		transaction.Type = *in.Type
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
		}
		transaction.Category = category
	}
	if in.Date != nil {
		if in.Date.IsZero() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
		}
		transaction.Date = *in.Date
	}
	if in.PaymentMethod != nil {
		if !validPaymentMethod(*in.PaymentMethod) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown payment method")
		}
		transaction.PaymentMethod = *in.PaymentMethod
	}

	if err := s.db.WithContext(ctx).Save(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// ToggleStatus flips is_paid.
func (s *transactionService) ToggleStatus(ctx context.Context, id string) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	transaction.IsPaid = !transaction.IsPaid
	if err := s.db.WithContext(ctx).Model(transaction).Update("is_paid", transaction.IsPaid).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// DeleteTransaction hard-deletes a transaction by ID
func (s *transactionService) DeleteTransaction(ctx context.Context, id string) error {
	transaction, err := s.GetTransactionByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	publishEvent(ctx, s.publisher, events.TransactionDeleted, map[string]string{"id": transaction.ID})
	return nil
}

// ReconcileMonth persists the recurring instances missing from month in one
// insert and returns them. Running it twice for the same month inserts nothing
// the second time.
func (s *transactionService) ReconcileMonth(ctx context.Context, month finance.Month, owner models.Owner) ([]models.Transaction, error) {
	var copies []models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var window []models.Transaction
		if err := tx.Where("date >= ? AND date <= ?", month.Prev().FirstDay(), month.LastDay()).
			Order("date ASC").Order("created_at ASC").
			Find(&window).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		copies = finance.ReconcileMonth(window, month, owner)
		if len(copies) == 0 {
			return nil
		}
		if err := tx.Create(&copies).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, events.MonthReconciled, map[string]any{
		"month":   month.String(),
		"owner":   owner,
		"created": len(copies),
	})
	return copies, nil
}
