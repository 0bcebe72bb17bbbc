package models

// AdviceReport is one generated weekly advice document. There is at most one
// per owner scope and week.
type AdviceReport struct {
	Base
	Owner   Owner  `gorm:"not null;uniqueIndex:idx_advice_owner_week" json:"owner"`
	WeekOf  Date   `gorm:"type:date;not null;uniqueIndex:idx_advice_owner_week" json:"week_of"`
	Content string `gorm:"type:text;not null" json:"content"`
	Model   string `json:"model"`
}
