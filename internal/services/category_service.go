package services

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finova/internal/errors"
	"finova/internal/events"
	"finova/internal/models"
)

// maxSuggestionDistance is the largest edit distance, relative to the longer
// name, at which an orphan gets a suggested category.
const maxSuggestionDistance = 0.4

// categoryService handles category-related business logic.
type categoryService struct {
	db        *gorm.DB
	publisher events.Publisher
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, publisher events.Publisher) CategoryServicer {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &categoryService{db: db, publisher: publisher}
}

func validCategoryType(t models.CategoryType) bool {
	return t == models.CategoryTypeIncome || t == models.CategoryTypeExpense
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(ctx context.Context, name string, categoryType models.CategoryType, isEssential bool) (*models.Category, error) {
	// Validate input
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !validCategoryType(categoryType) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}

	// Check if a category with the same name already exists for this type
	exists, err := s.nameTaken(s.db.WithContext(ctx), name, categoryType, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.Category{Name: name, Type: categoryType, IsEssential: isEssential}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

func (s *categoryService) nameTaken(db *gorm.DB, name string, categoryType models.CategoryType, exceptID string) (bool, error) {
	q := db.Model(&models.Category{}).Where("name = ? AND type = ?", name, categoryType)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// ListCategories returns categories ordered by type and name, optionally
// restricted to one type.
func (s *categoryService) ListCategories(ctx context.Context, categoryType *models.CategoryType) ([]models.Category, error) {
	q := s.db.WithContext(ctx)
	if categoryType != nil {
		q = q.Where("type = ?", *categoryType)
	}

	var categories []models.Category
	if err := q.Order("type ASC").Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID
func (s *categoryService) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := findByID(s.db.WithContext(ctx), &category, id, apperrors.ErrCategoryNotFound); err != nil {
		return nil, err
	}
	return &category, nil
}

// RenameCategory renames a category and, in the same database transaction,
// every transaction of the same type filed under the old name and the budget
// row of that name. When the new name already has a budget, the old row is
// dropped and the existing one kept.
func (s *categoryService) RenameCategory(ctx context.Context, id, newName string) (*RenameResult, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := &RenameResult{Category: category}
	if category.Name == newName {
		return result, nil
	}
	oldName := category.Name

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := s.nameTaken(tx, newName, category.Type, category.ID)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.ErrDuplicateCategory
		}

		category.Name = newName
		if err := tx.Model(category).Update("name", newName).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		res := tx.Model(&models.Transaction{}).
			Where("type = ? AND category = ?", models.TransactionType(category.Type), oldName).
			Update("category", newName)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		result.TransactionsUpdated = res.RowsAffected

		if category.Type != models.CategoryTypeExpense {
			return nil
		}
		var existing int64
		if err := tx.Model(&models.Budget{}).Where("category = ?", newName).Count(&existing).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if existing > 0 {
			if err := tx.Where("category = ?", oldName).Delete(&models.Budget{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return nil
		}
		res = tx.Model(&models.Budget{}).Where("category = ?", oldName).Update("category", newName)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		result.BudgetUpdated = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, events.CategoryRenamed, map[string]any{
		"id":                   category.ID,
		"type":                 category.Type,
		"old_name":             oldName,
		"new_name":             newName,
		"transactions_updated": result.TransactionsUpdated,
	})
	return result, nil
}

// DeleteCategory deletes a non-system category. Transactions keep the name.
func (s *categoryService) DeleteCategory(ctx context.Context, id string) error {
	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if category.IsSystem {
		return apperrors.ErrCategorySystem
	}
	if err := s.db.WithContext(ctx).Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ToggleEssential flips is_essential.
func (s *categoryService) ToggleEssential(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.IsEssential = !category.IsEssential
	if err := s.db.WithContext(ctx).Model(category).Update("is_essential", category.IsEssential).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// RestoreDefaults inserts the missing system categories and returns how many
// were created. Existing names are left untouched.
func (s *categoryService) RestoreDefaults(ctx context.Context) (int, error) {
	rows := make([]models.Category, 0, len(models.DefaultCategories))
	for _, d := range models.DefaultCategories {
		rows = append(rows, models.Category{Name: d.Name, Type: d.Type, IsSystem: true, IsEssential: d.IsEssential})
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}, {Name: "type"}}, DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return int(res.RowsAffected), nil
}

// FindOrphans lists transaction category names that have no category row of
// the same type, with the closest existing name as a suggestion.
func (s *categoryService) FindOrphans(ctx context.Context) ([]OrphanCategory, error) {
	type usageRow struct {
		Name  string
		Type  models.TransactionType
		Count int64
	}
	var usage []usageRow
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("category AS name, type, COUNT(*) AS count").
		Group("category, type").
		Scan(&usage).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	categories, err := s.ListCategories(ctx, nil)
	if err != nil {
		return nil, err
	}
	known := make(map[models.CategoryType]map[string]struct{})
	for _, c := range categories {
		if known[c.Type] == nil {
			known[c.Type] = make(map[string]struct{})
		}
		known[c.Type][c.Name] = struct{}{}
	}

	orphans := make([]OrphanCategory, 0)
	for _, u := range usage {
		categoryType := models.CategoryType(u.Type)
		if _, ok := known[categoryType][u.Name]; ok {
			continue
		}
		orphans = append(orphans, OrphanCategory{
			Name:       u.Name,
			Type:       categoryType,
			Count:      u.Count,
			Suggestion: closestName(u.Name, categoryType, categories),
		})
	}
	sort.Slice(orphans, func(i, j int) bool {
		if orphans[i].Type != orphans[j].Type {
			return orphans[i].Type < orphans[j].Type
		}
		return orphans[i].Name < orphans[j].Name
	})
	return orphans, nil
}

// closestName returns the category of the given type nearest to name by
// case-insensitive edit distance, or "" when none is close enough.
func closestName(name string, categoryType models.CategoryType, categories []models.Category) string {
	best, bestScore := "", maxSuggestionDistance
	target := strings.ToLower(name)
	for _, c := range categories {
		if c.Type != categoryType {
			continue
		}
		candidate := strings.ToLower(c.Name)
		longest := len(target)
		if len(candidate) > longest {
			longest = len(candidate)
		}
		if longest == 0 {
			continue
		}
		score := float64(levenshtein.ComputeDistance(target, candidate)) / float64(longest)
		if score < bestScore {
			best, bestScore = c.Name, score
		}
	}
	return best
}
