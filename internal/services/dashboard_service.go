package services

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "finova/internal/errors"
	"finova/internal/finance"
	"finova/internal/models"
)

// dashboardService assembles the month overview.
type dashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db}
}

// GetDashboard loads the month, the previous month and the standing
// collections concurrently, then aggregates them.
func (s *dashboardService) GetDashboard(ctx context.Context, month finance.Month, owner models.Owner) (*Dashboard, error) {
	var (
		txs         []models.Transaction
		budgets     []models.Budget
		goals       []models.SavingsGoal
		investments []models.Investment
		categories  []models.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Scopes(ownerScope(owner)).
			Where("date >= ? AND date <= ?", month.Prev().FirstDay(), month.LastDay()).
			Order("date ASC").Order("created_at ASC").
			Find(&txs).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Order("category ASC").Find(&budgets).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Scopes(ownerScope(owner)).Order("name ASC").Find(&goals).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Scopes(ownerScope(owner)).Preload("History", historyOrder).Find(&investments).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("type = ? AND is_essential = ?", models.CategoryTypeExpense, true).Find(&categories).Error
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	current := finance.FilterTransactions(txs, finance.Filter{Month: month, Owner: owner})
	totals := finance.MonthlyTotals(txs, month, owner)
	previous := finance.MonthlyTotals(txs, month.Prev(), owner)
	spending := finance.SpendingByCategory(current)
	budgetStatus := finance.BudgetProgress(spending, budgets)

	if owner == "" {
		owner = models.OwnerBoth
	}
	d := &Dashboard{
		Month:            month.String(),
		Owner:            owner,
		Totals:           totals,
		PreviousTotals:   previous,
		IncomeVariation:  finance.Variation(totals.Income, previous.Income),
		ExpenseVariation: finance.Variation(totals.Expenses, previous.Expenses),
		BalanceVariation: finance.Variation(totals.Balance, previous.Balance),
		Spending:         finance.RankSpending(spending),
		EssentialSpent:   decimal.Zero,
		PendingBills:     finance.PendingBills(txs, month, owner),
		Budgets:          budgetStatus,
		AtRisk:           finance.AtRisk(budgetStatus),
		Goals:            finance.GoalProgress(goals),
		Evolution:        finance.InvestmentEvolution(investments),
		PortfolioTotal:   decimal.Zero,
		EmergencyFund:    decimal.Zero,
	}

	for _, c := range categories {
		d.EssentialSpent = d.EssentialSpent.Add(spending[c.Name])
	}
	for _, inv := range investments {
		d.PortfolioTotal = d.PortfolioTotal.Add(inv.CurrentAmount)
		if inv.Type == models.InvestmentTypeEmergency {
			d.EmergencyFund = d.EmergencyFund.Add(inv.CurrentAmount)
		}
	}
	return d, nil
}
