package services

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"finova/internal/advisor"
	"finova/internal/finance"
	"finova/internal/models"
	"finova/internal/pagination"
	"finova/internal/session"
)

// SessionServicer defines the contract for the household password gate.
type SessionServicer interface {
	Login(ctx context.Context, password string, owner models.Owner) (*SessionToken, error)
	Update(ctx context.Context, current session.Context, owner *models.Owner, privacyMode *bool) (*SessionToken, error)
	Household() models.Household
}

// SessionToken is an issued session with its view state.
type SessionToken struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   session.Context `json:"session"`
}

// TransactionFilter holds optional filter parameters for listing transactions.
// A non-empty Search replaces the Month scope.
type TransactionFilter struct {
	Month    *finance.Month
	Owner    models.Owner
	Search   string
	Type     *models.TransactionType
	Category string
	IsPaid   *bool
}

// CreateTransactionInput is a transaction submission. IsPaid overrides the
// payment-method default when set.
type CreateTransactionInput struct {
	Description     string
	Amount          decimal.Decimal
	Type            models.TransactionType
	Category        string
	Owner           models.Owner
	Date            models.Date
	IsRecurring     bool
	RecurringMonths int
	PaymentMethod   models.PaymentMethod
	IsPaid          *bool
}

// UpdateTransactionInput holds the editable transaction fields. Nil fields are
// left unchanged; is_paid is never recomputed from the payment method.
type UpdateTransactionInput struct {
	Description   *string
	Amount        *decimal.Decimal
	Type          *models.TransactionType
	Category      *string
	Date          *models.Date
	PaymentMethod *models.PaymentMethod
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, in CreateTransactionInput) ([]models.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	ListAll(ctx context.Context) ([]models.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, in UpdateTransactionInput) (*models.Transaction, error)
	ToggleStatus(ctx context.Context, id string) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ReconcileMonth(ctx context.Context, month finance.Month, owner models.Owner) ([]models.Transaction, error)
}

// OrphanCategory is a category name used by transactions without a matching
// Category row.
type OrphanCategory struct {
	Name       string              `json:"name"`
	Type       models.CategoryType `json:"type"`
	Count      int64               `json:"count"`
	Suggestion string              `json:"suggestion,omitempty"`
}

// RenameResult reports a completed rename cascade.
type RenameResult struct {
	Category            *models.Category `json:"category"`
	TransactionsUpdated int64            `json:"transactions_updated"`
	BudgetUpdated       bool             `json:"budget_updated"`
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, name string, categoryType models.CategoryType, isEssential bool) (*models.Category, error)
	ListCategories(ctx context.Context, categoryType *models.CategoryType) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*models.Category, error)
	RenameCategory(ctx context.Context, id, newName string) (*RenameResult, error)
	DeleteCategory(ctx context.Context, id string) error
	ToggleEssential(ctx context.Context, id string) (*models.Category, error)
	RestoreDefaults(ctx context.Context) (int, error)
	FindOrphans(ctx context.Context) ([]OrphanCategory, error)
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	ListBudgets(ctx context.Context) ([]models.Budget, error)
	SetBudget(ctx context.Context, category string, limit decimal.Decimal) (*models.Budget, error)
	GetBudgetProgress(ctx context.Context, month finance.Month, owner models.Owner) ([]finance.BudgetStatus, error)
}

// SavingsGoalServicer defines the contract for savings goals.
type SavingsGoalServicer interface {
	ListGoals(ctx context.Context, owner models.Owner) ([]finance.GoalStatus, error)
	UpsertGoal(ctx context.Context, name string, target, current decimal.Decimal, owner models.Owner) (*models.SavingsGoal, error)
	DeleteGoal(ctx context.Context, id string) error
}

// CreateInvestmentInput is a new investment seeded with one contribution.
type CreateInvestmentInput struct {
	Name   string
	Type   models.InvestmentType
	Owner  models.Owner
	Amount decimal.Decimal
	Goal   *decimal.Decimal
	Date   models.Date
}

// InvestmentServicer defines the contract for investment-related business logic.
type InvestmentServicer interface {
	CreateInvestment(ctx context.Context, in CreateInvestmentInput) (*models.Investment, error)
	ListInvestments(ctx context.Context, owner models.Owner) ([]models.Investment, error)
	GetInvestmentByID(ctx context.Context, id string) (*models.Investment, error)
	RecordOperation(ctx context.Context, id string, operation models.OperationType, amount decimal.Decimal, date models.Date) (*models.Investment, error)
	DeleteInvestment(ctx context.Context, id string) error
	GetEvolution(ctx context.Context, owner models.Owner) ([]finance.EvolutionPoint, error)
}

// Dashboard is the month overview.
type Dashboard struct {
	Month            string                   `json:"month"`
	Owner            models.Owner             `json:"owner"`
	Totals           finance.Totals           `json:"totals"`
	PreviousTotals   finance.Totals           `json:"previous_totals"`
	IncomeVariation  *float64                 `json:"income_variation"`
	ExpenseVariation *float64                 `json:"expense_variation"`
	BalanceVariation *float64                 `json:"balance_variation"`
	Spending         []finance.CategoryTotal  `json:"spending_by_category"`
	EssentialSpent   decimal.Decimal          `json:"essential_spent"`
	PendingBills     finance.Pending          `json:"pending_bills"`
	Budgets          []finance.BudgetStatus   `json:"budgets"`
	AtRisk           []finance.BudgetStatus   `json:"at_risk"`
	Goals            []finance.GoalStatus     `json:"goals"`
	Evolution        []finance.EvolutionPoint `json:"investment_evolution"`
	PortfolioTotal   decimal.Decimal          `json:"portfolio_total"`
	EmergencyFund    decimal.Decimal          `json:"emergency_fund"`
}

// DashboardServicer defines the contract for the month overview.
type DashboardServicer interface {
	GetDashboard(ctx context.Context, month finance.Month, owner models.Owner) (*Dashboard, error)
}

// AdviceServicer defines the contract for weekly advice reports.
type AdviceServicer interface {
	EnsureWeekly(ctx context.Context, owner models.Owner) (*models.AdviceReport, bool, error)
	Regenerate(ctx context.Context, owner models.Owner) (*models.AdviceReport, error)
	ListHistory(ctx context.Context, owner models.Owner, page pagination.PageRequest) (*pagination.PageResponse[models.AdviceReport], error)
	GetByWeek(ctx context.Context, owner models.Owner, week models.Date) (*models.AdviceReport, error)
	SuggestFromURL(ctx context.Context, url string) (*advisor.ProductSuggestion, error)
}

// ExportServicer defines the contract for transaction exports.
type ExportServicer interface {
	WriteCSV(ctx context.Context, w io.Writer, filter finance.Filter) (int, error)
	ExportToSheets(ctx context.Context, filter finance.Filter) (int, error)
}
