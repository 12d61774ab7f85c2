package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tracker/internal/core"
)

// SheetsExporter mirrors the snapshot to a Google Sheets tab as an optional
// alternative to the CSV download. The tab ends up with exactly the CSV
// columns, one expense per row.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsExporter builds a Sheets client from explicit credentials JSON, or
// from Application Default Credentials when credentialsJSON is empty.
func NewSheetsExporter(ctx context.Context, spreadsheetID, sheetName, credentialsJSON string) (*SheetsExporter, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if sheetName = strings.TrimSpace(sheetName); sheetName == "" {
		sheetName = "Expenses"
	}

	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}
	if credentialsJSON != "" {
		opts = append(opts, goption.WithCredentialsJSON([]byte(credentialsJSON)))
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// Export replaces the sheet's contents with the current snapshot.
func (x *SheetsExporter) Export(ctx context.Context, expenses []core.Expense) error {
	_, err := x.svc.Spreadsheets.Values.Clear(x.spreadsheetID, x.sheetName, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet %q: %w", x.sheetName, err)
	}

	values := make([][]interface{}, 0, len(expenses)+1)
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	values = append(values, header)

	for _, e := range expenses {
		row := Row(e)
		cells := make([]interface{}, len(row))
		for i, c := range row {
			cells[i] = c
		}
		values = append(values, cells)
	}

	_, err = x.svc.Spreadsheets.Values.Update(x.spreadsheetID, x.sheetName+"!A1", &gsheet.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet %q: %w", x.sheetName, err)
	}

	slog.InfoContext(ctx, "Snapshot exported to Google Sheets",
		"spreadsheet_id", x.spreadsheetID,
		"sheet", x.sheetName,
		"rows", len(expenses))

	return nil
}
