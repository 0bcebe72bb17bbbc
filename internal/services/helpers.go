package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "finova/internal/errors"
	"finova/internal/events"
	"finova/internal/logger"
	"finova/internal/models"
	"finova/internal/uuid"
)

// findByID loads a row by primary key, mapping a missing row (or a malformed
// id) to notFound.
func findByID(db *gorm.DB, dest interface{}, id string, notFound *apperrors.AppError) error {
	if !uuid.IsValid(id) {
		return notFound
	}
	if err := db.Where("id = ?", id).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// publishEvent emits a domain event. Delivery failures are logged and never
// fail the calling operation.
func publishEvent(ctx context.Context, publisher events.Publisher, t events.Type, payload any) {
	if publisher == nil {
		return
	}
	event, err := events.NewEvent(t, payload)
	if err != nil {
		logger.Get().Warnw("Failed to encode event", "type", t, "error", err)
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Get().Warnw("Failed to publish event", "type", t, "event_id", event.ID, "error", err)
	}
}

// ownerScope restricts q to rows visible under owner. "Both" and empty pass
// everything through.
func ownerScope(owner models.Owner) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if owner == "" || owner == models.OwnerBoth {
			return q
		}
		return q.Where("owner = ?", owner)
	}
}

func validTransactionType(t models.TransactionType) bool {
	return t == models.TransactionTypeIncome || t == models.TransactionTypeExpense
}

func validPaymentMethod(m models.PaymentMethod) bool {
	switch m {
	case models.PaymentMethodCash, models.PaymentMethodInstantTransfer,
		models.PaymentMethodCard, models.PaymentMethodInvoice:
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
