package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents a transaction category. Names are unique per type.
type Category struct {
	Base
	Name        string       `gorm:"not null;uniqueIndex:idx_categories_type_name" json:"name"`
	Type        CategoryType `gorm:"not null;uniqueIndex:idx_categories_type_name" json:"type"`
	IsSystem    bool         `gorm:"not null;default:false" json:"is_system"`
	IsEssential bool         `gorm:"not null;default:false" json:"is_essential"`
}

// DefaultCategory describes a seeded system category.
type DefaultCategory struct {
	Name        string
	Type        CategoryType
	IsEssential bool
}

// DefaultCategories is the system category set seeded on first run and by
// restore-defaults.
var DefaultCategories = []DefaultCategory{
	{Name: "Salary", Type: CategoryTypeIncome},
	{Name: "Freelance", Type: CategoryTypeIncome},
	{Name: "Investments", Type: CategoryTypeIncome},
	{Name: "Gifts", Type: CategoryTypeIncome},
	{Name: "Other Income", Type: CategoryTypeIncome},
	{Name: "Housing", Type: CategoryTypeExpense, IsEssential: true},
	{Name: "Market", Type: CategoryTypeExpense, IsEssential: true},
	{Name: "Transport", Type: CategoryTypeExpense, IsEssential: true},
	{Name: "Health", Type: CategoryTypeExpense, IsEssential: true},
	{Name: "Education", Type: CategoryTypeExpense, IsEssential: true},
	{Name: "Utilities", Type: CategoryTypeExpense, IsEssential: true},
	{Name: "Restaurants", Type: CategoryTypeExpense},
	{Name: "Leisure", Type: CategoryTypeExpense},
	{Name: "Shopping", Type: CategoryTypeExpense},
	{Name: "Subscriptions", Type: CategoryTypeExpense},
	{Name: "Travel", Type: CategoryTypeExpense},
	{Name: "Pets", Type: CategoryTypeExpense},
	{Name: "Other Expenses", Type: CategoryTypeExpense},
}
