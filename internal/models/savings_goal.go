package models

import "github.com/shopspring/decimal"

// SavingsGoal is a named savings target tracked independently of investments.
type SavingsGoal struct {
	Base
	Name          string          `gorm:"not null;uniqueIndex" json:"name"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"current_amount"`
	Owner         Owner           `gorm:"not null" json:"owner"`
}
