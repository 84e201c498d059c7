// Package sheetstore is the spreadsheet driver: tables are worksheets in one
// Google Sheets workbook. The authorization handshake happens once at
// construction; the resulting client is the session the service layer holds
// for the life of the process.
package sheetstore

import (
	"context"
	"encoding/base64"
	"fmt"

	"crm-service/pkg/config"
	"crm-service/pkg/store"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Store is an authorized session against one workbook.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
}

// New decodes the base64 service-account credentials and builds the Sheets
// client. Credential decode/parse failures and authorization failures both
// surface as store.ErrConnection.
func New(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.Store.SpreadsheetID == "" {
		return nil, fmt.Errorf("%w: SPREADSHEET_ID is not set", store.ErrConnection)
	}

	credsJSON, err := base64.StdEncoding.DecodeString(cfg.Store.CredentialsB64)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding credentials: %v", store.ErrConnection, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, credsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing credentials: %v", store.ErrConnection, err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrConnection, err)
	}

	return &Store{svc: svc, spreadsheetID: cfg.Store.SpreadsheetID}, nil
}

// Table verifies the worksheet exists in the workbook metadata.
func (s *Store) Table(ctx context.Context, name string) (store.Table, error) {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrConnection, err)
	}

	for _, sheet := range ss.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == name {
			return &table{store: s, name: name}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", store.ErrTableNotFound, name)
}

// Close is a no-op; the Sheets client holds no connection to tear down.
func (s *Store) Close() error { return nil }

type table struct {
	store *Store
	name  string
}

func (t *table) Name() string { return t.name }

// Rows reads A2:Z, skipping the header row by range.
func (t *table) Rows(ctx context.Context) ([][]string, error) {
	resp, err := t.store.svc.Spreadsheets.Values.
		Get(t.store.spreadsheetID, t.rangeFrom(2)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrRead, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *table) Append(ctx context.Context, row []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{cells(row)}}
	_, err := t.store.svc.Spreadsheets.Values.
		Append(t.store.spreadsheetID, t.rangeFrom(1), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrWrite, err)
	}
	return nil
}

// Update rewrites one row in place. Data-row index 0 lives at sheet row 2.
func (t *table) Update(ctx context.Context, index int, row []string) error {
	if index < 0 {
		return fmt.Errorf("%w: row %d out of range in %q", store.ErrWrite, index, t.name)
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{cells(row)}}
	_, err := t.store.svc.Spreadsheets.Values.
		Update(t.store.spreadsheetID, t.rangeFrom(index+2), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrWrite, err)
	}
	return nil
}

// rangeFrom builds an open-ended A1 range starting at the given sheet row.
// The sheet name is quoted so worksheet titles with spaces resolve.
func (t *table) rangeFrom(sheetRow int) string {
	return fmt.Sprintf("'%s'!A%d:Z", t.name, sheetRow)
}

func cells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}
