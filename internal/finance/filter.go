package finance

import (
	"strings"

	"finova/internal/models"
)

// Filter is the transaction list view: month scope, owner scope and a free
// text search. A non-empty Search replaces the month scope.
type Filter struct {
	Month  Month
	Owner  models.Owner
	Search string
}

// FilterTransactions applies f, preserving input order.
func FilterTransactions(txs []models.Transaction, f Filter) []models.Transaction {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Owner.Matches(f.Owner) {
			continue
		}
		if term != "" {
			if !strings.Contains(strings.ToLower(tx.Description), term) &&
				!strings.Contains(strings.ToLower(tx.Category), term) {
				continue
			}
		} else if !f.Month.Contains(tx.Date) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// FilterInvestments keeps the investments visible under owner.
func FilterInvestments(investments []models.Investment, owner models.Owner) []models.Investment {
	out := make([]models.Investment, 0, len(investments))
	for _, inv := range investments {
		if inv.Owner.Matches(owner) {
			out = append(out, inv)
		}
	}
	return out
}
