package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finova/internal/errors"
	"finova/internal/models"
	"finova/internal/services"
)

// InvestmentHandler handles investment-related requests.
type InvestmentHandler struct {
	investmentService services.InvestmentServicer
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(investmentService services.InvestmentServicer) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService}
}

// CreateInvestmentRequest represents the request payload for adding an investment.
// Amount seeds the first contribution, dated Date or today.
type CreateInvestmentRequest struct {
	Name   string                `json:"name" binding:"required,min=1,max=200"`
	Type   models.InvestmentType `json:"type" binding:"required,investment_type"`
	Owner  models.Owner          `json:"owner"`
	Amount decimal.Decimal       `json:"amount" binding:"dpositive"`
	Goal   *decimal.Decimal      `json:"goal" binding:"omitempty,dpositive"`
	Date   string                `json:"date" binding:"omitempty,calendar_date"`
}

// RecordOperationRequest represents a contribution or withdrawal.
type RecordOperationRequest struct {
	Operation models.OperationType `json:"operation" binding:"required,investment_operation"`
	Amount    decimal.Decimal      `json:"amount" binding:"dpositive"`
	Date      string               `json:"date" binding:"omitempty,calendar_date"`
}

// CreateInvestment handles adding a new investment.
// @Summary     Add an investment
// @Description Create an investment seeded with one contribution
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateInvestmentRequest true "Investment details"
// @Success     201 {object} map[string]models.Investment "Investment created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments [post]
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	sc, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.CreateInvestmentInput{
		Name:   req.Name,
		Type:   req.Type,
		Owner:  req.Owner,
		Amount: req.Amount,
		Goal:   req.Goal,
	}
	if in.Owner == "" {
		in.Owner = sc.Owner
	}
	if req.Date != "" {
		date, err := parseDate("date", req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		in.Date = date
	}

	investment, err := h.investmentService.CreateInvestment(c.Request.Context(), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"investment": investment})
}

// ListInvestments returns investments visible under the owner scope.
// @Summary     List investments
// @Description Get investments with their operation history
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       owner query string false "Owner scope (default session owner)"
// @Success     200 {object} map[string][]models.Investment "Investments"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments [get]
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	owner, err := ownerFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investments, err := h.investmentService.ListInvestments(c.Request.Context(), owner)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investments": investments})
}

// GetInvestment returns one investment with its history.
// @Summary     Get investment by ID
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Investment ID"
// @Success     200 {object} map[string]models.Investment "Investment details"
// @Failure     400 {object} ErrorResponse "Invalid investment ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments/{id} [get]
func (h *InvestmentHandler) GetInvestment(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	investment, err := h.investmentService.GetInvestmentByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// RecordOperation records a contribution or withdrawal.
// @Summary     Record an operation
// @Description Add a contribution or withdrawal. Withdrawals cannot exceed the current amount.
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Investment ID"
// @Param       request body RecordOperationRequest true "Operation details"
// @Success     200 {object} map[string]models.Investment "Updated investment"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Failure     422 {object} ErrorResponse "Insufficient funds"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments/{id}/operations [post]
func (h *InvestmentHandler) RecordOperation(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date := models.DateOf(now())
	if req.Date != "" {
		if date, err = parseDate("date", req.Date); err != nil {
			respondWithError(c, err)
			return
		}
	}

	investment, err := h.investmentService.RecordOperation(c.Request.Context(), id, req.Operation, req.Amount, date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// DeleteInvestment removes an investment and its history.
// @Summary     Delete an investment
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Investment ID"
// @Success     200 {object} map[string]string "Investment deleted"
// @Failure     400 {object} ErrorResponse "Invalid investment ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments/{id} [delete]
func (h *InvestmentHandler) DeleteInvestment(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.investmentService.DeleteInvestment(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Investment deleted successfully"})
}

// GetEvolution returns the cumulative portfolio series.
// @Summary     Investment evolution
// @Description Cumulative value after each operation across all visible investments, most recent points only
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       owner query string false "Owner scope (default session owner)"
// @Success     200 {object} map[string][]finance.EvolutionPoint "Evolution"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments/evolution [get]
func (h *InvestmentHandler) GetEvolution(c *gin.Context) {
	owner, err := ownerFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	points, err := h.investmentService.GetEvolution(c.Request.Context(), owner)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"evolution": points})
}
