package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finova/internal/errors"
	"finova/internal/models"
	"finova/internal/services"
)

// SavingsGoalHandler handles savings goal requests.
type SavingsGoalHandler struct {
	goalService services.SavingsGoalServicer
}

// NewSavingsGoalHandler creates a new SavingsGoalHandler.
func NewSavingsGoalHandler(goalService services.SavingsGoalServicer) *SavingsGoalHandler {
	return &SavingsGoalHandler{goalService: goalService}
}

// UpsertGoalRequest creates a goal or replaces the one with the same name.
type UpsertGoalRequest struct {
	Name          string          `json:"name" binding:"required,max=100"`
	TargetAmount  decimal.Decimal `json:"target_amount" binding:"dpositive"`
	CurrentAmount decimal.Decimal `json:"current_amount" binding:"dnonnegative"`
	Owner         models.Owner    `json:"owner"`
}

// ListGoals returns savings goals with their progress.
// @Summary     List savings goals
// @Description Get savings goals visible under the owner scope with completion progress
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       owner query string false "Owner scope (default session owner)"
// @Success     200 {object} map[string][]finance.GoalStatus "Goals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [get]
func (h *SavingsGoalHandler) ListGoals(c *gin.Context) {
	owner, err := ownerFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := h.goalService.ListGoals(c.Request.Context(), owner)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// UpsertGoal creates or updates a savings goal by name.
// @Summary     Save a savings goal
// @Description Create a goal, or update the target and current amount of the goal with the same name
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpsertGoalRequest true "Goal details"
// @Success     200 {object} map[string]models.SavingsGoal "Saved goal"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [put]
func (h *SavingsGoalHandler) UpsertGoal(c *gin.Context) {
	var req UpsertGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.UpsertGoal(c.Request.Context(), req.Name, req.TargetAmount, req.CurrentAmount, req.Owner)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal removes a savings goal.
// @Summary     Delete a savings goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} map[string]string "Goal deleted"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [delete]
func (h *SavingsGoalHandler) DeleteGoal(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Savings goal deleted successfully"})
}
