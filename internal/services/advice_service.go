package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finova/internal/advisor"
	apperrors "finova/internal/errors"
	"finova/internal/events"
	"finova/internal/finance"
	"finova/internal/logger"
	"finova/internal/models"
	"finova/internal/notify"
	"finova/internal/pagination"
)

// generationTimeout bounds a shared weekly generation, which outlives the
// request that started it.
const generationTimeout = 90 * time.Second

// adviceService generates and stores weekly advice reports.
type adviceService struct {
	db             *gorm.DB
	advisor        advisor.Advisor
	household      models.Household
	currencySymbol string
	publisher      events.Publisher
	notifier       notify.Notifier
	now            func() time.Time
	inflight       singleflight.Group
	sharedTimeout  time.Duration
}

// NewAdviceService creates a new AdviceServicer. Nil publisher or notifier
// disable events and notifications.
func NewAdviceService(
	db *gorm.DB,
	adv advisor.Advisor,
	household models.Household,
	currencySymbol string,
	publisher events.Publisher,
	notifier notify.Notifier,
) AdviceServicer {
	if adv == nil {
		adv = advisor.Unconfigured{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &adviceService{
		db:             db,
		advisor:        adv,
		household:      household,
		currencySymbol: currencySymbol,
		publisher:      publisher,
		notifier:       notifier,
		now:            time.Now,
		sharedTimeout:  generationTimeout,
	}
}

func (s *adviceService) normalizeOwner(owner models.Owner) (models.Owner, error) {
	if owner == "" {
		return models.OwnerBoth, nil
	}
	if !s.household.IsValidOwner(owner) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "owner must be a household member or Both")
	}
	return owner, nil
}

type ensureResult struct {
	report  *models.AdviceReport
	created bool
}

// EnsureWeekly returns this week's report for owner, generating it first when
// none is stored. Concurrent callers in this process share one generation;
// across processes the unique (owner, week_of) index keeps the first insert.
func (s *adviceService) EnsureWeekly(ctx context.Context, owner models.Owner) (*models.AdviceReport, bool, error) {
	owner, err := s.normalizeOwner(owner)
	if err != nil {
		return nil, false, err
	}
	week := finance.WeekOf(s.now())

	if report, err := s.findReport(ctx, owner, week); err == nil {
		return report, false, nil
	} else if !errors.Is(err, apperrors.ErrReportNotFound) {
		return nil, false, err
	}

	v, err, _ := s.inflight.Do(string(owner)+"|"+week.String(), func() (interface{}, error) {
		// Waiting callers share this result, so one caller going away must
		// not cancel it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sharedTimeout)
		defer cancel()

		if report, err := s.findReport(ctx, owner, week); err == nil {
			return ensureResult{report: report}, nil
		}

		content, err := s.generate(ctx, owner)
		if err != nil {
			return nil, err
		}
		report := models.AdviceReport{Owner: owner, WeekOf: week, Content: content, Model: s.advisor.Model()}
		res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&report)
		if res.Error != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		stored, err := s.findReport(ctx, owner, week)
		if err != nil {
			return nil, err
		}
		created := res.RowsAffected > 0
		if created {
			s.announce(ctx, *stored)
		}
		return ensureResult{report: stored, created: created}, nil
	})
	if err != nil {
		return nil, false, err
	}
	result := v.(ensureResult)
	return result.report, result.created, nil
}

// Regenerate always calls the generator and overwrites this week's report.
func (s *adviceService) Regenerate(ctx context.Context, owner models.Owner) (*models.AdviceReport, error) {
	owner, err := s.normalizeOwner(owner)
	if err != nil {
		return nil, err
	}
	week := finance.WeekOf(s.now())

	content, err := s.generate(ctx, owner)
	if err != nil {
		return nil, err
	}
	report := models.AdviceReport{Owner: owner, WeekOf: week, Content: content, Model: s.advisor.Model()}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "week_of"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "model", "updated_at"}),
	}).Create(&report).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	stored, err := s.findReport(ctx, owner, week)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, *stored)
	return stored, nil
}

// ListHistory returns the stored reports of owner, newest week first.
func (s *adviceService) ListHistory(ctx context.Context, owner models.Owner, page pagination.PageRequest) (*pagination.PageResponse[models.AdviceReport], error) {
	owner, err := s.normalizeOwner(owner)
	if err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.AdviceReport{}).Where("owner = ?", owner)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var reports []models.AdviceReport
	if err := base.Scopes(pagination.Paginate(page)).Order("week_of DESC").Find(&reports).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(reports, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetByWeek returns the report of the week containing week.
func (s *adviceService) GetByWeek(ctx context.Context, owner models.Owner, week models.Date) (*models.AdviceReport, error) {
	owner, err := s.normalizeOwner(owner)
	if err != nil {
		return nil, err
	}
	if week.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "week is required")
	}
	return s.findReport(ctx, owner, finance.WeekOf(week.Time()))
}

// SuggestFromURL drafts a transaction from a product page.
func (s *adviceService) SuggestFromURL(ctx context.Context, rawURL string) (*advisor.ProductSuggestion, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a valid http(s) URL is required")
	}

	var names []string
	if err := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("type = ?", models.CategoryTypeExpense).
		Order("name ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	suggestion, err := s.advisor.ExtractProduct(ctx, parsed.String(), names)
	if err != nil {
		return nil, mapAdvisorError(err)
	}
	return &suggestion, nil
}

func (s *adviceService) findReport(ctx context.Context, owner models.Owner, week models.Date) (*models.AdviceReport, error) {
	var report models.AdviceReport
	if err := s.db.WithContext(ctx).Where("owner = ? AND week_of = ?", owner, week).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReportNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &report, nil
}

// generate builds the report summary for owner and asks the advisor for the
// advice text. Only the summary leaves the process.
func (s *adviceService) generate(ctx context.Context, owner models.Owner) (string, error) {
	today := models.DateOf(s.now())

	var txs []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("date >= ?", today.AddDays(-finance.LongWindowDays)).
		Order("date ASC").
		Find(&txs).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var investments []models.Investment
	if err := s.db.WithContext(ctx).Find(&investments).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	report := finance.BuildReport(txs, investments, today, s.household, owner)
	prompt, err := finance.RenderPrompt(report, s.currencySymbol)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	content, err := s.advisor.Generate(ctx, prompt)
	if err != nil {
		return "", mapAdvisorError(err)
	}
	return content, nil
}

// announce publishes and posts a freshly stored report. Failures are logged.
func (s *adviceService) announce(ctx context.Context, report models.AdviceReport) {
	publishEvent(ctx, s.publisher, events.AdviceGenerated, map[string]any{
		"id":      report.ID,
		"owner":   report.Owner,
		"week_of": report.WeekOf.String(),
		"model":   report.Model,
	})
	if err := s.notifier.NotifyAdvice(ctx, report); err != nil {
		logger.Get().Warnw("Failed to post advice notification", "report_id", report.ID, "error", err)
	}
}

// mapAdvisorError converts generator failures to API errors.
func mapAdvisorError(err error) error {
	switch {
	case errors.Is(err, advisor.ErrNotConfigured):
		return apperrors.Wrap(apperrors.ErrAdvisorNotConfigured, err)
	case errors.Is(err, advisor.ErrInvalidCredential):
		return apperrors.Wrap(apperrors.ErrAdvisorInvalidCredential, err)
	case errors.Is(err, advisor.ErrEmptyResponse):
		return apperrors.Wrap(apperrors.ErrAdvisorEmptyResponse, err)
	case errors.Is(err, advisor.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrAdvisorTimeout, err)
	default:
		return apperrors.Wrap(apperrors.ErrAdvisorFailed, err)
	}
}
