package services

import (
	"context"
	"testing"
	"time"

	"finova/internal/finance"
	"finova/internal/models"
	"finova/internal/testutil"
)

func TestGetDashboard(t *testing.T) {
	ctx := context.Background()
	feb := finance.Month{Year: 2024, Month: time.February}

	t.Run("aggregates_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDashboardService(db)

		testutil.CreateTestSystemCategory(t, db, "Market", models.CategoryTypeExpense)
		db.Model(&models.Category{}).Where("name = ?", "Market").Update("is_essential", true)
		testutil.CreateTestBudget(t, db, "Market", "100")

		testutil.CreateTestTransaction(t, db, models.TransactionTypeIncome, "1000", "2024-01-05")
		testutil.CreateTestTransaction(t, db, models.TransactionTypeExpense, "200", "2024-01-10")
		testutil.CreateTestTransaction(t, db, models.TransactionTypeIncome, "1500", "2024-02-05")
		testutil.CreateTestTransaction(t, db, models.TransactionTypeExpense, "150", "2024-02-10")
		testutil.CreateTestTransaction(t, db, models.TransactionTypeExpense, "60", "2024-02-12", testutil.WithCategory("Leisure"), testutil.Paid(true))
		testutil.CreateTestInvestment(t, db, models.InvestmentTypeEmergency, testutil.MemberA, "300", "2024-01-01")
		testutil.CreateTestInvestment(t, db, models.InvestmentTypeGeneral, testutil.MemberB, "200", "2024-01-02")

		d, err := svc.GetDashboard(ctx, feb, models.OwnerBoth)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, "1500", d.Totals.Income)
		testutil.AssertDecimal(t, "210", d.Totals.Expenses)
		testutil.AssertDecimal(t, "1290", d.Totals.Balance)
		testutil.AssertDecimal(t, "800", d.PreviousTotals.Balance)
		if d.IncomeVariation == nil || *d.IncomeVariation != 50 {
			t.Errorf("expected income variation 50, got %v", d.IncomeVariation)
		}
		if len(d.Spending) != 2 || d.Spending[0].Category != "Market" {
			t.Errorf("expected Market ranked first, got %+v", d.Spending)
		}
		testutil.AssertDecimal(t, "150", d.EssentialSpent)
		testutil.AssertDecimal(t, "150", d.PendingBills.Total)
		if len(d.AtRisk) != 1 || d.AtRisk[0].Category != "Market" {
			t.Errorf("expected Market at risk, got %+v", d.AtRisk)
		}
		testutil.AssertDecimal(t, "500", d.PortfolioTotal)
		testutil.AssertDecimal(t, "300", d.EmergencyFund)
		if len(d.Evolution) != 2 {
			t.Errorf("expected 2 evolution points, got %d", len(d.Evolution))
		}
	})

	t.Run("empty_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDashboardService(db)

		d, err := svc.GetDashboard(ctx, feb, "")
		testutil.AssertNoError(t, err)
		if d.Owner != models.OwnerBoth {
			t.Errorf("expected owner Both, got %s", d.Owner)
		}
		testutil.AssertDecimal(t, "0", d.Totals.Balance)
		if d.IncomeVariation != nil {
			t.Error("expected nil variation when the previous month is empty")
		}
	})

	t.Run("owner_scope", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDashboardService(db)

		testutil.CreateTestTransaction(t, db, models.TransactionTypeExpense, "150", "2024-02-10")
		testutil.CreateTestTransaction(t, db, models.TransactionTypeExpense, "70", "2024-02-11", testutil.WithOwner(testutil.MemberB))
		testutil.CreateTestInvestment(t, db, models.InvestmentTypeGeneral, testutil.MemberB, "200", "2024-01-02")

		d, err := svc.GetDashboard(ctx, feb, testutil.MemberB)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "70", d.Totals.Expenses)
		testutil.AssertDecimal(t, "200", d.PortfolioTotal)
	})
}
