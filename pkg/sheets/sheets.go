// Package sheets wraps the Google Sheets API for the single spreadsheet the
// pipeline works against: the APP export, the cleaned Trier rows and the
// reconciliation output all live in worksheets of one document.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	retryAttempts = 3
	retryDelay    = 2 * time.Second
)

// Client reads and overwrites worksheets of one spreadsheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	logger        *log.Logger
}

// New authenticates with a service-account credentials JSON, the same blob
// the workflow passes through the GSA_CREDENTIALS environment variable.
func New(ctx context.Context, credentialsJSON []byte, spreadsheetID string, logger *log.Logger) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

// ReadRows fetches a whole worksheet as trimmed string cells.
func (c *Client) ReadRows(ctx context.Context, worksheet string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %s: %w", worksheet, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, r := range resp.Values {
		row := make([]string, len(r))
		for i, cellValue := range r {
			row[i] = fmt.Sprint(cellValue)
		}
		rows = append(rows, row)
	}

	c.logger.Debug("read worksheet", "worksheet", worksheet, "rows", len(rows))
	return rows, nil
}

// Overwrite clears the worksheet and writes the rows, creating the
// worksheet first when the spreadsheet does not have it yet.
func (c *Client) Overwrite(ctx context.Context, worksheet string, rows [][]interface{}) error {
	if err := c.ensureWorksheet(ctx, worksheet); err != nil {
		return err
	}

	err := c.withRetry(func() error {
		_, err := c.svc.Spreadsheets.Values.
			Clear(c.spreadsheetID, worksheet, &sheets.ClearValuesRequest{}).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("clearing worksheet %s: %w", worksheet, err)
	}

	body := &sheets.ValueRange{Values: rows}
	err = c.withRetry(func() error {
		_, err := c.svc.Spreadsheets.Values.
			Update(c.spreadsheetID, worksheet, body).
			ValueInputOption("USER_ENTERED").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("updating worksheet %s: %w", worksheet, err)
	}

	c.logger.Info("worksheet updated", "worksheet", worksheet, "rows", len(rows))
	return nil
}

func (c *Client) ensureWorksheet(ctx context.Context, worksheet string) error {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("fetching spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == worksheet {
			return nil
		}
	}

	c.logger.Info("creating worksheet", "worksheet", worksheet)
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: worksheet,
					GridProperties: &sheets.GridProperties{
						RowCount:    1000,
						ColumnCount: 20,
					},
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("creating worksheet %s: %w", worksheet, err)
	}
	return nil
}

// withRetry re-runs fn on transient 5xx responses; the Sheets API
// sporadically returns 500 during large updates.
func (c *Client) withRetry(fn func() error) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		var gerr *googleapi.Error
		if !errors.As(err, &gerr) || gerr.Code < 500 {
			return err
		}
		c.logger.Warn("sheets api error, retrying", "attempt", attempt, "code", gerr.Code)
		time.Sleep(retryDelay)
	}
	return err
}
