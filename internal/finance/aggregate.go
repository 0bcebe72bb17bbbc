package finance

import (
	"sort"

	"finova/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals is the income/expense summary of a set of transactions.
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// SumTotals totals every transaction in txs regardless of date or owner.
func SumTotals(txs []models.Transaction) Totals {
	income, expenses := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case models.TransactionTypeIncome:
			income = income.Add(tx.Amount)
		case models.TransactionTypeExpense:
			expenses = expenses.Add(tx.Amount)
		}
	}
	return Totals{Income: income, Expenses: expenses, Balance: income.Sub(expenses)}
}

// MonthlyTotals totals the transactions dated in month and visible under owner.
func MonthlyTotals(txs []models.Transaction, month Month, owner models.Owner) Totals {
	return SumTotals(inMonth(txs, month, owner))
}

// Variation returns the percentage change from previous to current, or nil
// when previous is zero.
func Variation(current, previous decimal.Decimal) *float64 {
	if previous.IsZero() {
		return nil
	}
	pct, _ := current.Sub(previous).Div(previous).Mul(hundred).Float64()
	return &pct
}

// SpendingByCategory sums expense amounts by category name.
func SpendingByCategory(txs []models.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		out[tx.Category] = out[tx.Category].Add(tx.Amount)
	}
	return out
}

// RankSpending orders a category spending map by descending total, then name.
func RankSpending(spending map[string]decimal.Decimal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(spending))
	for name, total := range spending {
		out = append(out, CategoryTotal{Category: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Pending is the list of unpaid expenses in scope and their total.
type Pending struct {
	Items []models.Transaction `json:"items"`
	Total decimal.Decimal      `json:"total"`
}

// PendingBills returns the unpaid expenses of month visible under owner,
// earliest date first.
func PendingBills(txs []models.Transaction, month Month, owner models.Owner) Pending {
	items := make([]models.Transaction, 0)
	total := decimal.Zero
	for _, tx := range inMonth(txs, month, owner) {
		if !tx.IsExpense() || tx.IsPaid {
			continue
		}
		items = append(items, tx)
		total = total.Add(tx.Amount)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.Before(items[j].Date)
	})
	return Pending{Items: items, Total: total}
}

// BudgetStatus is the spending of one category against its ceiling.
// Limit is zero when the category has no budget.
type BudgetStatus struct {
	Category   string          `json:"category"`
	Spent      decimal.Decimal `json:"spent"`
	Limit      decimal.Decimal `json:"limit"`
	Percentage float64         `json:"percentage"`
	OverBudget bool            `json:"over_budget"`
}

// BudgetProgress pairs spending with budgets. Every budgeted category and
// every category with spending appears once, sorted by name.
func BudgetProgress(spending map[string]decimal.Decimal, budgets []models.Budget) []BudgetStatus {
	limits := make(map[string]decimal.Decimal, len(budgets))
	for _, b := range budgets {
		limits[b.Category] = b.LimitAmount
	}

	names := make([]string, 0, len(limits)+len(spending))
	for name := range limits {
		names = append(names, name)
	}
	for name := range spending {
		if _, ok := limits[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]BudgetStatus, 0, len(names))
	for _, name := range names {
		spent := spending[name]
		limit := limits[name]
		status := BudgetStatus{Category: name, Spent: spent, Limit: limit}
		if limit.IsPositive() {
			status.Percentage, _ = spent.Div(limit).Mul(hundred).Round(2).Float64()
			status.OverBudget = spent.GreaterThan(limit)
		}
		out = append(out, status)
	}
	return out
}

// AtRisk returns the statuses that exceed their budget.
func AtRisk(statuses []BudgetStatus) []BudgetStatus {
	out := make([]BudgetStatus, 0)
	for _, s := range statuses {
		if s.OverBudget {
			out = append(out, s)
		}
	}
	return out
}

// GoalStatus is the progress of one savings goal.
type GoalStatus struct {
	Goal       models.SavingsGoal `json:"goal"`
	Percentage float64            `json:"percentage"`
	Remaining  decimal.Decimal    `json:"remaining"`
	Reached    bool               `json:"reached"`
}

// GoalProgress computes completion for each goal, preserving input order.
// Percentage is capped at 100 and Remaining never goes below zero.
func GoalProgress(goals []models.SavingsGoal) []GoalStatus {
	out := make([]GoalStatus, 0, len(goals))
	for _, g := range goals {
		status := GoalStatus{Goal: g, Remaining: decimal.Max(g.TargetAmount.Sub(g.CurrentAmount), decimal.Zero)}
		if g.TargetAmount.IsPositive() {
			pct := decimal.Min(g.CurrentAmount.Div(g.TargetAmount).Mul(hundred), hundred)
			status.Percentage, _ = pct.Round(2).Float64()
			status.Reached = !g.CurrentAmount.LessThan(g.TargetAmount)
		}
		out = append(out, status)
	}
	return out
}

// EvolutionPoint is one step of the cumulative investment series.
type EvolutionPoint struct {
	Date            models.Date     `json:"date"`
	CumulativeValue decimal.Decimal `json:"cumulative_value"`
}

// MaxEvolutionPoints bounds the length of the evolution series.
const MaxEvolutionPoints = 20

// InvestmentEvolution flattens every operation of every investment into a
// date-ordered running total. Withdrawals reduce the total. Only the most
// recent MaxEvolutionPoints points are kept.
func InvestmentEvolution(investments []models.Investment) []EvolutionPoint {
	ops := make([]models.InvestmentOperation, 0)
	for _, inv := range investments {
		ops = append(ops, inv.History...)
	}
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].Date.Before(ops[j].Date)
	})

	points := make([]EvolutionPoint, 0, len(ops))
	running := decimal.Zero
	for _, op := range ops {
		running = running.Add(op.Signed())
		points = append(points, EvolutionPoint{Date: op.Date, CumulativeValue: running})
	}
	if len(points) > MaxEvolutionPoints {
		points = points[len(points)-MaxEvolutionPoints:]
	}
	return points
}

func inMonth(txs []models.Transaction, month Month, owner models.Owner) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if month.Contains(tx.Date) && tx.Owner.Matches(owner) {
			out = append(out, tx)
		}
	}
	return out
}
