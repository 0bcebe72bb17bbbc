package finance

import (
	"encoding/csv"
	"fmt"
	"io"

	"finova/internal/models"
)

// CSVHeader is the column order of the transaction export.
var CSVHeader = []string{"date", "description", "amount", "type", "category", "owner", "payment_method", "status"}

// CSVRecords converts txs to export rows, header first.
func CSVRecords(txs []models.Transaction) [][]string {
	rows := make([][]string, 0, len(txs)+1)
	rows = append(rows, CSVHeader)
	for _, tx := range txs {
		rows = append(rows, []string{
			tx.Date.String(),
			tx.Description,
			tx.Amount.StringFixed(2),
			string(tx.Type),
			tx.Category,
			string(tx.Owner),
			string(tx.PaymentMethod),
			PaymentStatus(tx),
		})
	}
	return rows
}

// PaymentStatus renders is_paid as "paid" or "pending".
func PaymentStatus(tx models.Transaction) string {
	if tx.IsPaid {
		return "paid"
	}
	return "pending"
}

// WriteCSV writes the export of txs to w.
func WriteCSV(w io.Writer, txs []models.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(CSVRecords(txs)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ExportFileName names the export file of a month view.
func ExportFileName(month Month) string {
	return fmt.Sprintf("finova_report_%s.csv", month)
}
