package models

import "github.com/shopspring/decimal"

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// PaymentMethod represents how a transaction was settled
type PaymentMethod string

const (
	PaymentMethodCash            PaymentMethod = "cash"
	PaymentMethodInstantTransfer PaymentMethod = "instant_transfer"
	PaymentMethodCard            PaymentMethod = "card"
	PaymentMethodInvoice         PaymentMethod = "invoice"
)

// DefaultPaid reports whether a transaction settled with m is considered paid
// when it is created. Cash and instant transfers settle immediately.
func (m PaymentMethod) DefaultPaid() bool {
	return m == PaymentMethodCash || m == PaymentMethodInstantTransfer
}

// Transaction represents a single income or expense entry in the ledger.
// Category is referenced by name and is not foreign-key enforced.
type Transaction struct {
	Base
	Description       string          `gorm:"not null" json:"description"`
	Amount            decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Type              TransactionType `gorm:"not null;index" json:"type"`
	Category          string          `gorm:"not null;index" json:"category"`
	Owner             Owner           `gorm:"not null;index" json:"owner"`
	Date              Date            `gorm:"type:date;not null;index" json:"date"`
	IsRecurring       bool            `gorm:"not null;default:false" json:"is_recurring"`
	RecurringMonths   int             `gorm:"not null;default:0" json:"recurring_months"`
	PaymentMethod     PaymentMethod   `gorm:"not null" json:"payment_method"`
	IsPaid            bool            `gorm:"not null;default:false" json:"is_paid"`
	RecurrenceGroupID *string         `gorm:"type:uuid;index" json:"recurrence_group_id,omitempty"`
}

// IsExpense reports whether t is an expense.
func (t Transaction) IsExpense() bool { return t.Type == TransactionTypeExpense }

// IsIncome reports whether t is an income.
func (t Transaction) IsIncome() bool { return t.Type == TransactionTypeIncome }
