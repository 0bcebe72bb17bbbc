package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "finova/internal/errors"
	"finova/internal/events"
	"finova/internal/finance"
	"finova/internal/logger"
	"finova/internal/models"
)

// JobRunner executes background jobs, inline or from the queue consumer.
type JobRunner interface {
	Run(ctx context.Context, job events.Job) error
}

type jobRunner struct {
	transactions TransactionServicer
	advice       AdviceServicer
	household    models.Household
	now          func() time.Time
}

// NewJobRunner creates a JobRunner over the transaction and advice services.
func NewJobRunner(transactions TransactionServicer, advice AdviceServicer, household models.Household) JobRunner {
	return &jobRunner{transactions: transactions, advice: advice, household: household, now: time.Now}
}

// Run executes job. A weekly advice job without an owner covers the shared
// scope and each member.
func (r *jobRunner) Run(ctx context.Context, job events.Job) error {
	log := logger.Named("jobs")

	switch job.Kind {
	case events.JobReconcileMonth:
		month := finance.CurrentMonth(r.now())
		if job.Month != "" {
			m, err := finance.ParseMonth(job.Month)
			if err != nil {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be in YYYY-MM format")
			}
			month = m
		}
		owner := job.Owner
		if owner == "" {
			owner = models.OwnerBoth
		}
		created, err := r.transactions.ReconcileMonth(ctx, month, owner)
		if err != nil {
			return err
		}
		log.Infow("reconciled month", "job", job.ID, "month", month.String(), "owner", owner, "created", len(created))
		return nil

	case events.JobWeeklyAdvice:
		owners := []models.Owner{job.Owner}
		if job.Owner == "" {
			owners = append([]models.Owner{models.OwnerBoth}, r.household.Members()...)
		}
		var errs []error
		for _, owner := range owners {
			report, generated, err := r.advice.EnsureWeekly(ctx, owner)
			if err != nil {
				errs = append(errs, fmt.Errorf("weekly advice for %s: %w", owner, err))
				continue
			}
			log.Infow("weekly advice ready", "job", job.ID, "owner", owner, "week", report.WeekOf.String(), "generated", generated)
		}
		return errors.Join(errs...)

	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown job kind %q", job.Kind))
	}
}
