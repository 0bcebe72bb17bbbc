package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "finova/internal/errors"
	"finova/internal/models"
	"finova/internal/services"
)

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn  func(name string, categoryType models.CategoryType, isEssential bool) (*models.Category, error)
	listCategoriesFn  func(categoryType *models.CategoryType) ([]models.Category, error)
	getCategoryFn     func(id string) (*models.Category, error)
	renameCategoryFn  func(id, newName string) (*services.RenameResult, error)
	deleteCategoryFn  func(id string) error
	toggleEssentialFn func(id string) (*models.Category, error)
	restoreDefaultsFn func() (int, error)
	findOrphansFn     func() ([]services.OrphanCategory, error)
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func (m *mockCategoryService) CreateCategory(_ context.Context, name string, categoryType models.CategoryType, isEssential bool) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(name, categoryType, isEssential)
	}
	return &models.Category{Name: name, Type: categoryType}, nil
}

func (m *mockCategoryService) ListCategories(_ context.Context, categoryType *models.CategoryType) ([]models.Category, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(categoryType)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(_ context.Context, id string) (*models.Category, error) {
	if m.getCategoryFn != nil {
		return m.getCategoryFn(id)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) RenameCategory(_ context.Context, id, newName string) (*services.RenameResult, error) {
	if m.renameCategoryFn != nil {
		return m.renameCategoryFn(id, newName)
	}
	return &services.RenameResult{Category: &models.Category{Name: newName}}, nil
}

func (m *mockCategoryService) DeleteCategory(_ context.Context, id string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(id)
	}
	return nil
}

func (m *mockCategoryService) ToggleEssential(_ context.Context, id string) (*models.Category, error) {
	if m.toggleEssentialFn != nil {
		return m.toggleEssentialFn(id)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) RestoreDefaults(_ context.Context) (int, error) {
	if m.restoreDefaultsFn != nil {
		return m.restoreDefaultsFn()
	}
	return 0, nil
}

func (m *mockCategoryService) FindOrphans(_ context.Context) ([]services.OrphanCategory, error) {
	if m.findOrphansFn != nil {
		return m.findOrphansFn()
	}
	return []services.OrphanCategory{}, nil
}

const categoryID = "01890a5d-ac96-774b-bcce-b302099a8058"

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	api := protectedGroup(r, "Ana")
	api.POST("/categories", handler.CreateCategory)
	api.GET("/categories", handler.ListCategories)
	api.GET("/categories/orphans", handler.FindOrphans)
	api.POST("/categories/restore-defaults", handler.RestoreDefaults)
	api.PUT("/categories/:id", handler.RenameCategory)
	api.DELETE("/categories/:id", handler.DeleteCategory)
	api.POST("/categories/:id/toggle-essential", handler.ToggleEssential)
	return r
}

// --- tests ---

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var essential bool
		svc := &mockCategoryService{
			createCategoryFn: func(name string, categoryType models.CategoryType, isEssential bool) (*models.Category, error) {
				essential = isEssential
				return &models.Category{Name: name, Type: categoryType, IsEssential: isEssential}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))
		rec := doRequest(r, http.MethodPost, "/categories", `{"name":"Gym","type":"expense","is_essential":true}`)
		assertStatus(t, rec, http.StatusCreated)
		if !essential {
			t.Error("expected is_essential to be passed through")
		}
		cat := parseJSON(t, rec)["category"].(map[string]interface{})
		if cat["name"] != "Gym" {
			t.Errorf("expected name Gym, got %v", cat["name"])
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))
		rec := doRequest(r, http.MethodPost, "/categories", `{"name":"Gym","type":"transfer"}`)
		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 409 on duplicate", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(string, models.CategoryType, bool) (*models.Category, error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))
		rec := doRequest(r, http.MethodPost, "/categories", `{"name":"Market","type":"expense"}`)
		assertStatus(t, rec, http.StatusConflict)
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CATEGORY")
	})
}

func TestCategoryHandler_ListCategories(t *testing.T) {
	t.Run("passes type filter", func(t *testing.T) {
		var got *models.CategoryType
		svc := &mockCategoryService{
			listCategoriesFn: func(categoryType *models.CategoryType) ([]models.Category, error) {
				got = categoryType
				return []models.Category{{Name: "Salary"}}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))
		rec := doRequest(r, http.MethodGet, "/categories?type=income", "")
		assertStatus(t, rec, http.StatusOK)
		if got == nil || *got != models.CategoryTypeIncome {
			t.Errorf("expected income filter, got %v", got)
		}
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))
		rec := doRequest(r, http.MethodGet, "/categories?type=both", "")
		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestCategoryHandler_RenameCategory(t *testing.T) {
	t.Run("returns cascade result", func(t *testing.T) {
		svc := &mockCategoryService{
			renameCategoryFn: func(id, newName string) (*services.RenameResult, error) {
				if id != categoryID {
					t.Errorf("unexpected id %s", id)
				}
				return &services.RenameResult{
					Category:            &models.Category{Name: newName},
					TransactionsUpdated: 3,
					BudgetUpdated:       true,
				}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))
		rec := doRequest(r, http.MethodPut, "/categories/"+categoryID, `{"name":"Groceries"}`)
		assertStatus(t, rec, http.StatusOK)
		result := parseJSON(t, rec)
		if result["transactions_updated"] != float64(3) || result["budget_updated"] != true {
			t.Errorf("unexpected result %v", result)
		}
	})

	t.Run("returns 400 when name is missing", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))
		rec := doRequest(r, http.MethodPut, "/categories/"+categoryID, `{}`)
		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("returns 409 for system category", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(string) error { return apperrors.ErrCategorySystem },
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))
		rec := doRequest(r, http.MethodDelete, "/categories/"+categoryID, "")
		assertStatus(t, rec, http.StatusConflict)
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_SYSTEM")
	})

	t.Run("returns message on success", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))
		rec := doRequest(r, http.MethodDelete, "/categories/"+categoryID, "")
		assertStatus(t, rec, http.StatusOK)
		if parseJSON(t, rec)["message"] != "Category deleted successfully" {
			t.Error("unexpected message")
		}
	})
}

func TestCategoryHandler_Maintenance(t *testing.T) {
	t.Run("restore defaults reports count", func(t *testing.T) {
		svc := &mockCategoryService{restoreDefaultsFn: func() (int, error) { return 5, nil }}
		r := setupCategoryRouter(NewCategoryHandler(svc))
		rec := doRequest(r, http.MethodPost, "/categories/restore-defaults", "")
		assertStatus(t, rec, http.StatusOK)
		if parseJSON(t, rec)["restored"] != float64(5) {
			t.Error("expected restored 5")
		}
	})

	t.Run("orphans lists suggestions", func(t *testing.T) {
		svc := &mockCategoryService{
			findOrphansFn: func() ([]services.OrphanCategory, error) {
				return []services.OrphanCategory{{Name: "Markt", Type: models.CategoryTypeExpense, Count: 2, Suggestion: "Market"}}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))
		rec := doRequest(r, http.MethodGet, "/categories/orphans", "")
		assertStatus(t, rec, http.StatusOK)
		orphans := parseJSON(t, rec)["orphans"].([]interface{})
		if len(orphans) != 1 || orphans[0].(map[string]interface{})["suggestion"] != "Market" {
			t.Errorf("unexpected orphans %v", orphans)
		}
	})

	t.Run("toggle essential returns category", func(t *testing.T) {
		svc := &mockCategoryService{
			toggleEssentialFn: func(string) (*models.Category, error) {
				return &models.Category{Name: "Leisure", IsEssential: true}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))
		rec := doRequest(r, http.MethodPost, "/categories/"+categoryID+"/toggle-essential", "")
		assertStatus(t, rec, http.StatusOK)
	})
}
