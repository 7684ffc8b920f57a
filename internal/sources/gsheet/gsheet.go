// Package gsheet reads the registry and collections tables from a
// Google spreadsheet using service account credentials. Both tabs must
// carry the same headers as the CSV exports; values are read formatted
// so amounts and periods arrive as the text the cleaning step expects.
package gsheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"cartorios/internal/core"
	"cartorios/internal/sources"
)

// Client reads both tables from one spreadsheet.
type Client struct {
	svc              *gsheet.Service
	spreadsheetID    string
	registrySheet    string
	collectionsSheet string
}

var (
	_ sources.RegistryReader    = (*Client)(nil)
	_ sources.CollectionsReader = (*Client)(nil)
)

// New builds a client for the given spreadsheet and tab names.
func New(ctx context.Context, spreadsheetID, registrySheet, collectionsSheet string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if registrySheet == "" {
		registrySheet = "Cartorios"
	}
	if collectionsSheet == "" {
		collectionsSheet = "Arrecadacao"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:              svc,
		spreadsheetID:    spreadsheetID,
		registrySheet:    registrySheet,
		collectionsSheet: collectionsSheet,
	}, nil
}

// NewFromEnv creates a client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Optional tab names:
// GOOGLE_REGISTRY_SHEET_NAME, GOOGLE_COLLECTIONS_SHEET_NAME.
func NewFromEnv(ctx context.Context) (*Client, error) {
	return New(ctx,
		strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		strings.TrimSpace(os.Getenv("GOOGLE_REGISTRY_SHEET_NAME")),
		strings.TrimSpace(os.Getenv("GOOGLE_COLLECTIONS_SHEET_NAME")))
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
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
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ReadOffices implements sources.RegistryReader.
func (c *Client) ReadOffices(ctx context.Context) ([]core.Office, error) {
	header, rows, err := c.readSheet(ctx, c.registrySheet)
	if err != nil {
		return nil, err
	}
	offices, err := sources.OfficesFromTable(header, rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", c.registrySheet, err)
	}
	slog.InfoContext(ctx, "Registry loaded from spreadsheet",
		"sheet", c.registrySheet, "offices", len(offices))
	return offices, nil
}

// ReadCollections implements sources.CollectionsReader.
func (c *Client) ReadCollections(ctx context.Context) ([]core.RawCollection, error) {
	header, rows, err := c.readSheet(ctx, c.collectionsSheet)
	if err != nil {
		return nil, err
	}
	raw, err := sources.CollectionsFromTable(header, rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", c.collectionsSheet, err)
	}
	slog.InfoContext(ctx, "Collections loaded from spreadsheet",
		"sheet", c.collectionsSheet, "rows", len(raw))
	return raw, nil
}

// readSheet fetches a whole tab as formatted strings and splits off the
// header row.
func (c *Client) readSheet(ctx context.Context, sheet string) ([]string, [][]string, error) {
	if c.svc == nil {
		return nil, nil, fmt.Errorf("%w: sheets service not initialized", sources.ErrSourceUnavailable)
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet).
		ValueRenderOption("FORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read sheet %s: %v", sources.ErrSourceUnavailable, sheet, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet %s is empty", sources.ErrSourceUnavailable, sheet)
	}

	header := toStrings(resp.Values[0])
	rows := make([][]string, 0, len(resp.Values)-1)
	for _, v := range resp.Values[1:] {
		rows = append(rows, toStrings(v))
	}
	return header, rows, nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprintf("%v", v)
	}
	return out
}
