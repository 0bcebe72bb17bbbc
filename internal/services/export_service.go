package services

import (
	"context"
	"fmt"
	"io"

	apperrors "finova/internal/errors"
	"finova/internal/finance"
	"finova/internal/models"
	"finova/internal/sheets"
)

// exportService renders the filtered transaction view as CSV or appends it to
// a spreadsheet.
type exportService struct {
	transactions TransactionServicer
	exporter     sheets.Exporter
}

// NewExportService creates a new ExportServicer. A nil exporter disables the
// spreadsheet export.
func NewExportService(transactions TransactionServicer, exporter sheets.Exporter) ExportServicer {
	return &exportService{transactions: transactions, exporter: exporter}
}

func (s *exportService) view(ctx context.Context, filter finance.Filter) ([]models.Transaction, error) {
	all, err := s.transactions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return finance.FilterTransactions(all, filter), nil
}

// WriteCSV writes the filtered view to w and returns the number of rows.
func (s *exportService) WriteCSV(ctx context.Context, w io.Writer, filter finance.Filter) (int, error) {
	txs, err := s.view(ctx, filter)
	if err != nil {
		return 0, err
	}
	if err := finance.WriteCSV(w, txs); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return len(txs), nil
}

// ExportToSheets appends the filtered view to the configured spreadsheet.
func (s *exportService) ExportToSheets(ctx context.Context, filter finance.Filter) (int, error) {
	if s.exporter == nil {
		return 0, apperrors.ErrExportNotConfigured
	}
	txs, err := s.view(ctx, filter)
	if err != nil {
		return 0, err
	}

	title := fmt.Sprintf("finova report %s", filter.Month)
	if filter.Search != "" {
		title = fmt.Sprintf("finova search %q", filter.Search)
	}
	n, err := s.exporter.Export(ctx, title, txs)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return n, nil
}
