package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "finova/internal/errors"
	"finova/internal/finance"
	"finova/internal/services"
)

type mockExportService struct {
	writeCSVFn       func(w io.Writer, filter finance.Filter) (int, error)
	exportToSheetsFn func(filter finance.Filter) (int, error)
}

var _ services.ExportServicer = (*mockExportService)(nil)

func (m *mockExportService) WriteCSV(_ context.Context, w io.Writer, filter finance.Filter) (int, error) {
	if m.writeCSVFn != nil {
		return m.writeCSVFn(w, filter)
	}
	return 0, nil
}

func (m *mockExportService) ExportToSheets(_ context.Context, filter finance.Filter) (int, error) {
	if m.exportToSheetsFn != nil {
		return m.exportToSheetsFn(filter)
	}
	return 0, nil
}

func setupExportRouter(handler *ExportHandler) *gin.Engine {
	r := gin.New()
	api := protectedGroup(r, "Both")
	api.GET("/transactions/export", handler.ExportCSV)
	api.POST("/transactions/export/sheets", handler.ExportSheets)
	return r
}

func TestExportHandler_ExportCSV(t *testing.T) {
	t.Run("returns csv attachment", func(t *testing.T) {
		var got finance.Filter
		svc := &mockExportService{
			writeCSVFn: func(w io.Writer, filter finance.Filter) (int, error) {
				got = filter
				_, _ = io.WriteString(w, "Date,Description\n")
				return 0, nil
			},
		}
		r := setupExportRouter(NewExportHandler(svc))
		rec := doRequest(r, http.MethodGet, "/transactions/export?month=2024-02", "")
		assertStatus(t, rec, http.StatusOK)

		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("expected text/csv content type, got %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "finova_report_2024-02.csv") {
			t.Errorf("unexpected content disposition %q", cd)
		}
		if rec.Body.String() != "Date,Description\n" {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
		if got.Owner != "Both" || got.Month.String() != "2024-02" {
			t.Errorf("unexpected filter %+v", got)
		}
	})

	t.Run("returns json error when export fails", func(t *testing.T) {
		svc := &mockExportService{
			writeCSVFn: func(io.Writer, finance.Filter) (int, error) {
				return 0, apperrors.ErrInternalServer
			},
		}
		r := setupExportRouter(NewExportHandler(svc))
		rec := doRequest(r, http.MethodGet, "/transactions/export", "")
		assertStatus(t, rec, http.StatusInternalServerError)
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})
}

func TestExportHandler_ExportSheets(t *testing.T) {
	t.Run("returns row count", func(t *testing.T) {
		svc := &mockExportService{
			exportToSheetsFn: func(filter finance.Filter) (int, error) {
				if filter.Search != "rent" {
					t.Errorf("expected search rent, got %q", filter.Search)
				}
				return 4, nil
			},
		}
		r := setupExportRouter(NewExportHandler(svc))
		rec := doRequest(r, http.MethodPost, "/transactions/export/sheets?search=rent", "")
		assertStatus(t, rec, http.StatusOK)
		if parseJSON(t, rec)["rows"] != float64(4) {
			t.Errorf("expected 4 rows")
		}
	})

	t.Run("returns 503 when not configured", func(t *testing.T) {
		svc := &mockExportService{
			exportToSheetsFn: func(finance.Filter) (int, error) {
				return 0, apperrors.ErrExportNotConfigured
			},
		}
		r := setupExportRouter(NewExportHandler(svc))
		rec := doRequest(r, http.MethodPost, "/transactions/export/sheets", "")
		assertStatus(t, rec, http.StatusServiceUnavailable)
		assertErrorCode(t, parseJSON(t, rec), "EXPORT_NOT_CONFIGURED")
	})
}
