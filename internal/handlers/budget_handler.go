package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finova/internal/errors"
	"finova/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// SetBudgetRequest sets or clears the monthly limit of an expense category.
// A zero limit removes the budget.
type SetBudgetRequest struct {
	Category string          `json:"category" binding:"required,max=100"`
	Limit    decimal.Decimal `json:"limit" binding:"dnonnegative"`
}

// ListBudgets returns the budgets with their progress for a month.
// @Summary     List budgets
// @Description Get all category budgets and their spending progress for a month
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM, default current)"
// @Param       owner query string false "Owner scope (default session owner)"
// @Success     200 {object} map[string]interface{} "Budgets and progress"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	owner, err := ownerFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := parseMonthQuery(c, "month")
	if err != nil {
		respondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	budgets, err := h.budgetService.ListBudgets(ctx)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.budgetService.GetBudgetProgress(ctx, month, owner)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets, "progress": progress, "month": month.String()})
}

// SetBudget sets or clears a category budget.
// @Summary     Set a budget
// @Description Set the monthly limit of an expense category. A zero limit removes the budget.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetBudgetRequest true "Category and limit"
// @Success     200 {object} map[string]models.Budget "Budget saved"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [put]
func (h *BudgetHandler) SetBudget(c *gin.Context) {
	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.SetBudget(c.Request.Context(), req.Category, req.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if budget == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Budget removed successfully"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"budget": budget})
}
