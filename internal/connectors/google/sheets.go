package google

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"
)

// SheetsClient wraps the Sheets API with rate limiting for tab discovery
// and range reads.
type SheetsClient struct {
	svc     *sheets.Service
	limiter *RateLimiter
}

// NewSheetsClient creates a rate-limited Sheets client.
func NewSheetsClient(svc *sheets.Service, limiter *RateLimiter) *SheetsClient {
	return &SheetsClient{svc: svc, limiter: limiter}
}

// TabTitles returns the titles of every tab in a spreadsheet, in sheet
// order.
func (c *SheetsClient) TabTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ss, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		if IsRateLimited(err) {
			c.limiter.RecordRateLimitError(0)
		}
		return nil, WrapError(err)
	}

	titles := make([]string, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

// ReadRange reads a tab range in A1 notation and returns the cells as
// strings. Non-string cell values (numbers, booleans) are formatted with
// fmt.Sprint.
func (c *SheetsClient) ReadRange(ctx context.Context, spreadsheetID, tab, cellRange string) ([][]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	readRange := fmt.Sprintf("'%s'!%s", tab, cellRange)
	res, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).
		Context(ctx).
		Do()
	if err != nil {
		if IsRateLimited(err) {
			c.limiter.RecordRateLimitError(0)
		}
		return nil, WrapError(err)
	}

	rows := make([][]string, 0, len(res.Values))
	for _, raw := range res.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}
