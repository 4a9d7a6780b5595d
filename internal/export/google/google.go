// Package google exports month reports to a Google Sheets spreadsheet
// using Service Account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bilancio/internal/engine"
	ports "bilancio/internal/export"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ReportWriter = (*Client)(nil)

// NewClient creates a Sheets exporter for one spreadsheet. Credentials
// come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewClient(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Budget"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteMonthReport rewrites the month's block in the sheet. Each month
// occupies a contiguous block found by scanning column A for the month
// key; a missing month is appended at the bottom.
func (c *Client) WriteMonthReport(ctx context.Context, report engine.MonthReport) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rows := ReportRows(report)

	startRow, endRow, err := c.findMonthBlock(ctx, string(report.Month))
	if err != nil {
		return err
	}

	if startRow > 0 && endRow >= startRow {
		// Clear the old block first so a shrinking report leaves no tail.
		clearRange := fmt.Sprintf("%s!A%d:E%d", c.sheetName, startRow, endRow)
		if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
			Context(ctx).Do(); err != nil {
			return fmt.Errorf("clear %s: %w", clearRange, err)
		}
		writeRange := fmt.Sprintf("%s!A%d:E%d", c.sheetName, startRow, startRow+len(rows)-1)
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{Values: rows}).
			ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
			return fmt.Errorf("update %s: %w", writeRange, err)
		}
	} else {
		appendRange := fmt.Sprintf("%s!A:E", c.sheetName)
		if _, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, appendRange, &gsheet.ValueRange{Values: rows}).
			ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do(); err != nil {
			return fmt.Errorf("append to %s: %w", appendRange, err)
		}
	}

	slog.InfoContext(ctx, "Exported month report",
		"month", report.Month,
		"rows", len(rows),
		"spreadsheet_id", c.spreadsheetID,
		"sheet", c.sheetName)
	return nil
}

// findMonthBlock scans column A for the month's header row and returns
// its 1-based start and end rows, or (0, 0) when the month is absent.
// A block ends at the next month header or at the end of the data.
func (c *Client) findMonthBlock(ctx context.Context, month string) (int, int, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", rng, err)
	}

	start := 0
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(fmt.Sprint(row[0]))
		if start == 0 {
			if cell == month {
				start = i + 1
			}
			continue
		}
		if isMonthHeader(cell) {
			return start, i, nil
		}
	}
	if start == 0 {
		return 0, 0, nil
	}
	return start, len(resp.Values), nil
}

// isMonthHeader reports whether a cell looks like a "YYYY-MM" key.
func isMonthHeader(cell string) bool {
	if len(cell) != 7 || cell[4] != '-' {
		return false
	}
	for i, r := range cell {
		if i == 4 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
