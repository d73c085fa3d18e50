package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"askcents/internal/core"
	"askcents/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var _ sheets.Exporter = (*Client)(nil)

// Client appends insights reports to a Google spreadsheet. Rows go to a
// year-prefixed sheet, e.g. "2025 Insights".
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	now           func() time.Time
}

// Options configures a Client.
type Options struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	creds, err := credentialsJSON(opts.ServiceAccountJSON, opts.ServiceAccountFile)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "component", "sheets", "sheet", opts.SheetName)
	return NewWithService(svc, opts.SpreadsheetID, opts.SheetName), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	if sheetName == "" {
		sheetName = "Insights"
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetBase: sheetName, now: time.Now}
}

// credentialsJSON resolves inline credentials first, then the file.
func credentialsJSON(inline, file string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// ExportCategories appends one row per category below the existing data.
func (c *Client) ExportCategories(ctx context.Context, vm core.InsightsViewModel) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	now := c.now()
	rows := sheets.CategoryRows(vm, now)
	if len(rows) == 0 {
		return "", nil
	}

	sheet := yearPrefixedName(c.sheetBase, now.Year())
	rng := fmt.Sprintf("%s!A:E", quoteSheet(sheet))
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Exported insights report",
		"component", "sheets",
		"range", ref,
		"rows", len(rows))
	return ref, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with
// a four-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if len(base) >= 5 && base[4] == ' ' {
		if _, err := strconv.Atoi(base[:4]); err == nil {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

// quoteSheet wraps a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
