package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"finova/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Household members used across fixtures.
const (
	MemberA models.Owner = "Ana"
	MemberB models.Owner = "Bruno"
)

// Household is the two-member household used in tests.
var Household = models.Household{MemberA: MemberA, MemberB: MemberB}

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date parses a YYYY-MM-DD literal, failing the test on error.
func Date(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("invalid fixture date %q: %v", s, err)
	}
	return d
}

// Amount parses a decimal literal.
func Amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// TransactionOption tweaks a transaction fixture before it is saved.
type TransactionOption func(*models.Transaction)

// WithOwner sets the transaction owner.
func WithOwner(owner models.Owner) TransactionOption {
	return func(tx *models.Transaction) { tx.Owner = owner }
}

// WithCategory sets the transaction category.
func WithCategory(name string) TransactionOption {
	return func(tx *models.Transaction) { tx.Category = name }
}

// WithDescription sets the transaction description.
func WithDescription(desc string) TransactionOption {
	return func(tx *models.Transaction) { tx.Description = desc }
}

// Recurring marks the transaction as recurring.
func Recurring(months int) TransactionOption {
	return func(tx *models.Transaction) {
		tx.IsRecurring = true
		tx.RecurringMonths = months
	}
}

// Paid sets is_paid.
func Paid(paid bool) TransactionOption {
	return func(tx *models.Transaction) { tx.IsPaid = paid }
}

// CreateTestTransaction saves a card-paid transaction owned by MemberA.
func CreateTestTransaction(t *testing.T, db *gorm.DB, txType models.TransactionType, amount, date string, opts ...TransactionOption) *models.Transaction {
	t.Helper()

	category := "Market"
	if txType == models.TransactionTypeIncome {
		category = "Salary"
	}
	tx := &models.Transaction{
		Description:   fmt.Sprintf("Transaction %d", nextID()),
		Amount:        Amount(amount),
		Type:          txType,
		Category:      category,
		Owner:         MemberA,
		Date:          Date(t, date),
		PaymentMethod: models.PaymentMethodCard,
	}
	for _, opt := range opts {
		opt(tx)
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestCategory saves a non-system category.
func CreateTestCategory(t *testing.T, db *gorm.DB, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Type: categoryType}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSystemCategory saves a system category.
func CreateTestSystemCategory(t *testing.T, db *gorm.DB, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Type: categoryType, IsSystem: true}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test system category: %v", err)
	}
	return category
}

// CreateTestBudget saves a budget row.
func CreateTestBudget(t *testing.T, db *gorm.DB, category, limit string) *models.Budget {
	t.Helper()
	budget := &models.Budget{Category: category, LimitAmount: Amount(limit)}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestInvestment saves an investment seeded with one contribution.
func CreateTestInvestment(t *testing.T, db *gorm.DB, invType models.InvestmentType, owner models.Owner, seed, date string) *models.Investment {
	t.Helper()
	inv := &models.Investment{
		Name:          fmt.Sprintf("Investment %d", nextID()),
		Type:          invType,
		Owner:         owner,
		CurrentAmount: Amount(seed),
		History: []models.InvestmentOperation{
			{Date: Date(t, date), Amount: Amount(seed), Operation: models.OperationContribution},
		},
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("failed to create test investment: %v", err)
	}
	return inv
}

// CreateTestAdviceReport saves a stored weekly report.
func CreateTestAdviceReport(t *testing.T, db *gorm.DB, owner models.Owner, weekOf, content string) *models.AdviceReport {
	t.Helper()
	report := &models.AdviceReport{Owner: owner, WeekOf: Date(t, weekOf), Content: content, Model: "test-model"}
	if err := db.Create(report).Error; err != nil {
		t.Fatalf("failed to create test advice report: %v", err)
	}
	return report
}
