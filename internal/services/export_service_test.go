package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"finova/internal/finance"
	"finova/internal/models"
	"finova/internal/testutil"
)

// recordingExporter keeps the last exported view.
type recordingExporter struct {
	title string
	txs   []models.Transaction
	err   error
}

func (r *recordingExporter) Export(_ context.Context, title string, txs []models.Transaction) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.title, r.txs = title, txs
	return len(txs), nil
}

func TestExportCSV(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	txSvc, _ := newTestTransactionService(db)
	svc := NewExportService(txSvc, nil)

	testutil.CreateTestTransaction(t, db, models.TransactionTypeExpense, "12.5", "2024-01-05", testutil.WithDescription("Rice, beans"))
	testutil.CreateTestTransaction(t, db, models.TransactionTypeIncome, "1000", "2024-01-06", testutil.Paid(true))
	testutil.CreateTestTransaction(t, db, models.TransactionTypeExpense, "99", "2024-02-01")

	var buf bytes.Buffer
	n, err := svc.WriteCSV(context.Background(), &buf, finance.Filter{Month: finance.Month{Year: 2024, Month: time.January}})
	testutil.AssertNoError(t, err)
	if n != 2 {
		t.Errorf("expected 2 rows, got %d", n)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "date,description,amount,type,category,owner,payment_method,status" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], `"Rice, beans"`) || !strings.HasSuffix(lines[1], "pending") {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "paid") {
		t.Errorf("unexpected second row %q", lines[2])
	}
}

func TestExportToSheets(t *testing.T) {
	ctx := context.Background()

	t.Run("not_configured", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc, _ := newTestTransactionService(db)

		_, err := NewExportService(txSvc, nil).ExportToSheets(ctx, finance.Filter{})
		testutil.AssertAppError(t, err, "EXPORT_NOT_CONFIGURED")
	})

	t.Run("exports_filtered_view", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc, _ := newTestTransactionService(db)
		exporter := &recordingExporter{}
		svc := NewExportService(txSvc, exporter)

		testutil.CreateTestTransaction(t, db, models.TransactionTypeExpense, "10", "2024-01-05", testutil.WithOwner(testutil.MemberB))
		testutil.CreateTestTransaction(t, db, models.TransactionTypeExpense, "20", "2024-01-06")

		n, err := svc.ExportToSheets(ctx, finance.Filter{Month: finance.Month{Year: 2024, Month: time.January}, Owner: testutil.MemberB})
		testutil.AssertNoError(t, err)
		if n != 1 || len(exporter.txs) != 1 {
			t.Errorf("expected 1 exported row, got %d", n)
		}
		if exporter.title != "finova report 2024-01" {
			t.Errorf("unexpected title %q", exporter.title)
		}
	})

	t.Run("exporter_failure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc, _ := newTestTransactionService(db)

		_, err := NewExportService(txSvc, &recordingExporter{err: errors.New("quota")}).ExportToSheets(ctx, finance.Filter{})
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")
	})
}
