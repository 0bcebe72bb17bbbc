package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finova/internal/errors"
	"finova/internal/pagination"
	"finova/internal/services"
)

// AdviceHandler serves weekly advice reports and product suggestions.
type AdviceHandler struct {
	adviceService services.AdviceServicer
}

// NewAdviceHandler creates a new AdviceHandler.
func NewAdviceHandler(adviceService services.AdviceServicer) *AdviceHandler {
	return &AdviceHandler{adviceService: adviceService}
}

// SuggestRequest carries a product page URL to draft a transaction from.
type SuggestRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// CurrentReport returns this week's report, generating it on first access.
// @Summary     Current weekly report
// @Description Return this week's advice report for the owner scope, generating it when none exists yet
// @Tags        advice
// @Produce     json
// @Security    BearerAuth
// @Param       owner query string false "Owner scope (default session owner)"
// @Success     200 {object} map[string]interface{} "Report and whether it was generated by this call"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Advisor failure"
// @Failure     503 {object} ErrorResponse "Advisor not configured"
// @Failure     504 {object} ErrorResponse "Advisor timeout"
// @Router      /advice/current [get]
func (h *AdviceHandler) CurrentReport(c *gin.Context) {
	owner, err := ownerFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, generated, err := h.adviceService.EnsureWeekly(c.Request.Context(), owner)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report, "generated": generated})
}

// Regenerate replaces this week's report.
// @Summary     Regenerate weekly report
// @Description Generate this week's advice report again, replacing the stored one
// @Tags        advice
// @Produce     json
// @Security    BearerAuth
// @Param       owner query string false "Owner scope (default session owner)"
// @Success     200 {object} map[string]models.AdviceReport "Report"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Advisor failure"
// @Failure     503 {object} ErrorResponse "Advisor not configured"
// @Failure     504 {object} ErrorResponse "Advisor timeout"
// @Router      /advice/regenerate [post]
func (h *AdviceHandler) Regenerate(c *gin.Context) {
	owner, err := ownerFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.adviceService.Regenerate(c.Request.Context(), owner)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// ListHistory returns past reports.
// @Summary     Report history
// @Description Paginated past advice reports for the owner scope, newest first
// @Tags        advice
// @Produce     json
// @Security    BearerAuth
// @Param       owner     query string false "Owner scope (default session owner)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 50, max 200)"
// @Success     200 {object} pagination.PageResponse[models.AdviceReport] "Reports"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /advice [get]
func (h *AdviceHandler) ListHistory(c *gin.Context) {
	owner, err := ownerFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.adviceService.ListHistory(c.Request.Context(), owner, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetByWeek returns the report of the week containing a date.
// @Summary     Report by week
// @Tags        advice
// @Produce     json
// @Security    BearerAuth
// @Param       week  path  string true  "Any date of the week (YYYY-MM-DD)"
// @Param       owner query string false "Owner scope (default session owner)"
// @Success     200 {object} map[string]models.AdviceReport "Report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Report not found"
// @Router      /advice/{week} [get]
func (h *AdviceHandler) GetByWeek(c *gin.Context) {
	owner, err := ownerFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	week, err := parseDate("week", c.Param("week"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.adviceService.GetByWeek(c.Request.Context(), owner, week)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// Suggest drafts a transaction from a product page URL.
// @Summary     Suggest a transaction
// @Description Ask the advisor to extract description, price and a matching expense category from a product URL
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SuggestRequest true "Product URL"
// @Success     200 {object} map[string]advisor.ProductSuggestion "Suggestion"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Advisor failure"
// @Failure     503 {object} ErrorResponse "Advisor not configured"
// @Router      /transactions/suggest [post]
func (h *AdviceHandler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	suggestion, err := h.adviceService.SuggestFromURL(c.Request.Context(), req.URL)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}
