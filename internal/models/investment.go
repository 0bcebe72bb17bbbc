package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// InvestmentType classifies a holding
type InvestmentType string

const (
	InvestmentTypeGeneral   InvestmentType = "general"
	InvestmentTypeEmergency InvestmentType = "emergency"
)

// Investment represents a tracked savings or investment position.
// CurrentAmount is derived from History on every write.
type Investment struct {
	Base
	Name          string                `gorm:"not null" json:"name"`
	Type          InvestmentType        `gorm:"not null" json:"type"`
	Owner         Owner                 `gorm:"not null;index" json:"owner"`
	CurrentAmount decimal.Decimal       `gorm:"type:decimal(14,2);not null;default:0" json:"current_amount"`
	Goal          *decimal.Decimal      `gorm:"type:decimal(14,2)" json:"goal,omitempty"`
	History       []InvestmentOperation `gorm:"foreignKey:InvestmentID;constraint:OnDelete:CASCADE" json:"history"`
}

// OperationType is the direction of an investment operation
type OperationType string

const (
	OperationContribution OperationType = "contribution"
	OperationWithdrawal   OperationType = "withdrawal"
)

// InvestmentOperation is one dated contribution or withdrawal.
type InvestmentOperation struct {
	Base
	InvestmentID string          `gorm:"type:uuid;not null;index" json:"investment_id"`
	Date         Date            `gorm:"type:date;not null" json:"date"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Operation    OperationType   `gorm:"not null" json:"operation"`
}

// Signed returns the operation's effect on the balance.
func (op InvestmentOperation) Signed() decimal.Decimal {
	if op.Operation == OperationWithdrawal {
		return op.Amount.Neg()
	}
	return op.Amount
}

// Balance returns sum(contributions) - sum(withdrawals).
func (i Investment) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, op := range i.History {
		total = total.Add(op.Signed())
	}
	return total
}

// SortHistory orders History by date, keeping insertion order for equal dates.
func (i *Investment) SortHistory() {
	sort.SliceStable(i.History, func(a, b int) bool {
		return i.History[a].Date.Before(i.History[b].Date)
	})
}
