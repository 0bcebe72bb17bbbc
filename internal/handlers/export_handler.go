package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"finova/internal/finance"
	"finova/internal/services"
)

// ExportHandler serves CSV downloads and spreadsheet exports of the
// transaction view.
type ExportHandler struct {
	exportService services.ExportServicer
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService services.ExportServicer) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func exportFilter(c *gin.Context) (finance.Filter, error) {
	owner, err := ownerFilter(c)
	if err != nil {
		return finance.Filter{}, err
	}
	month, err := parseMonthQuery(c, "month")
	if err != nil {
		return finance.Filter{}, err
	}
	return finance.Filter{Month: month, Owner: owner, Search: c.Query("search")}, nil
}

// ExportCSV downloads the current view as CSV
// @Summary     Export transactions as CSV
// @Description Download the month (or search) view as a CSV attachment
// @Tags        export
// @Produce     text/csv
// @Security    BearerAuth
// @Param       month  query string false "Month (YYYY-MM, default current)"
// @Param       search query string false "Search term; replaces the month scope"
// @Param       owner  query string false "Owner scope (default session owner)"
// @Success     200 {file} file "CSV file"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/export [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	filter, err := exportFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if _, err := h.exportService.WriteCSV(c.Request.Context(), &buf, filter); err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+finance.ExportFileName(filter.Month)+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportSheets appends the current view to the configured spreadsheet
// @Summary     Export transactions to Google Sheets
// @Description Append the month (or search) view to the configured spreadsheet
// @Tags        export
// @Produce     json
// @Security    BearerAuth
// @Param       month  query string false "Month (YYYY-MM, default current)"
// @Param       search query string false "Search term; replaces the month scope"
// @Param       owner  query string false "Owner scope (default session owner)"
// @Success     200 {object} map[string]int "Rows exported"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Export not configured"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/export/sheets [post]
func (h *ExportHandler) ExportSheets(c *gin.Context) {
	filter, err := exportFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	n, err := h.exportService.ExportToSheets(c.Request.Context(), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": n})
}
