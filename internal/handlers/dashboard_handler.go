package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finova/internal/services"
)

// DashboardHandler serves the month overview.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard returns the month overview.
// @Summary     Get dashboard
// @Description Totals, month-over-month variation, spending by category, pending bills, budgets, goals and portfolio for a month
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (YYYY-MM, default current)"
// @Param       owner query string false "Owner scope (default session owner)"
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
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

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), month, owner)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
