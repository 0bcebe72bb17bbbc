// Package sheets appends transaction exports to a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"finova/internal/finance"
	"finova/internal/models"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Exporter writes a transaction view somewhere outside the service.
type Exporter interface {
	Export(ctx context.Context, title string, txs []models.Transaction) (int, error)
}

// valueAppender is the slice of the Sheets API the client uses.
type valueAppender interface {
	Append(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
}

// Client appends rows to one sheet of a spreadsheet.
type Client struct {
	api           valueAppender
	spreadsheetID string
	sheetName     string
}

var _ Exporter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account key file.
func New(ctx context.Context, spreadsheetID, sheetName, serviceAccountFile string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if sheetName == "" {
		sheetName = "Transactions"
	}

	credentials, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{api: googleAppender{svc: svc}, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// Export appends a title row, the CSV header and one row per transaction.
// It returns the number of transaction rows written.
func (c *Client) Export(ctx context.Context, title string, txs []models.Transaction) (int, error) {
	records := finance.CSVRecords(txs)
	values := make([][]interface{}, 0, len(records)+1)
	values = append(values, []interface{}{title})
	for _, record := range records {
		row := make([]interface{}, len(record))
		for i, cell := range record {
			row[i] = cell
		}
		values = append(values, row)
	}

	rng := fmt.Sprintf("%s!A:H", quoteSheetName(c.sheetName))
	if err := c.api.Append(ctx, c.spreadsheetID, rng, values); err != nil {
		return 0, fmt.Errorf("append rows: %w", err)
	}
	return len(txs), nil
}

// quoteSheetName wraps names containing spaces or quotes in A1 notation quotes.
func quoteSheetName(name string) string {
	if strings.ContainsAny(name, " '!") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

type googleAppender struct {
	svc *gsheet.Service
}

func (g googleAppender) Append(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := g.svc.Spreadsheets.Values.Append(spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}
