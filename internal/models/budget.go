package models

import "github.com/shopspring/decimal"

// Budget is a standing monthly spending ceiling for an expense category.
type Budget struct {
	Base
	Category    string          `gorm:"not null;uniqueIndex" json:"category"`
	LimitAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"limit_amount"`
}
