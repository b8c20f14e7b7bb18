package rowsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
)

// Worksheet tab names, overridable per tab via BHS_SHEET_<FAMILY> env vars
const (
	defaultLedgerTab       = "Ledger"
	defaultSalesTab        = "Sales"
	defaultItemsTab        = "Items"
	defaultTransfersTab    = "Transfers"
	defaultTransactionsTab = "Transactions"
)

// SheetsSource loads row families from a Google Sheets spreadsheet, one
// worksheet tab per family
type SheetsSource struct {
	svc           *gsheet.Service
	spreadsheetID string

	ledgerTab       string
	salesTab        string
	itemsTab        string
	transfersTab    string
	transactionsTab string
}

// Ensure interface conformance
var _ Source = (*SheetsSource)(nil)

// NewSheets creates a SheetsSource for the given spreadsheet. Credentials
// come from the environment: either an OAuth client + token pair
// (GOOGLE_OAUTH_CLIENT_JSON/GOOGLE_OAUTH_CLIENT_FILE with
// GOOGLE_OAUTH_TOKEN_JSON/GOOGLE_OAUTH_TOKEN_FILE) or service-account
// credentials (GOOGLE_CREDENTIALS_JSON or GOOGLE_APPLICATION_CREDENTIALS).
func NewSheets(ctx context.Context, spreadsheetID string) (*SheetsSource, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsSource{
		svc:             svc,
		spreadsheetID:   spreadsheetID,
		ledgerTab:       tabName("BHS_SHEET_LEDGER", defaultLedgerTab),
		salesTab:        tabName("BHS_SHEET_SALES", defaultSalesTab),
		itemsTab:        tabName("BHS_SHEET_ITEMS", defaultItemsTab),
		transfersTab:    tabName("BHS_SHEET_TRANSFERS", defaultTransfersTab),
		transactionsTab: tabName("BHS_SHEET_TRANSACTIONS", defaultTransactionsTab),
	}, nil
}

func tabName(env, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	return fallback
}

// newSheetsService initializes the Sheets client. OAuth client+token is
// preferred; service-account credentials are the fallback.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))

	if clientJSON != "" || clientFile != "" {
		var b []byte
		var err error
		if clientJSON != "" {
			b = []byte(clientJSON)
		} else {
			b, err = os.ReadFile(clientFile)
			if err != nil {
				return nil, fmt.Errorf("read oauth client file: %w", err)
			}
		}

		cfg, err := google.ConfigFromJSON(b, gsheet.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("oauth config: %w", err)
		}

		tok, err := loadOAuthToken()
		if err != nil {
			return nil, err
		}

		return gsheet.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
	}

	if credsJSON := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON")); credsJSON != "" {
		return gsheet.NewService(ctx,
			option.WithCredentialsJSON([]byte(credsJSON)),
			option.WithScopes(gsheet.SpreadsheetsScope))
	}
	if credsFile := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); credsFile != "" {
		return gsheet.NewService(ctx,
			option.WithCredentialsFile(credsFile),
			option.WithScopes(gsheet.SpreadsheetsScope))
	}

	return nil, errors.New("missing Google credentials (set GOOGLE_OAUTH_CLIENT_JSON/FILE + token, GOOGLE_CREDENTIALS_JSON, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// loadOAuthToken reads the stored OAuth token from the environment
func loadOAuthToken() (*oauth2.Token, error) {
	tokenJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_JSON"))
	tokenFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"))

	var b []byte
	switch {
	case tokenJSON != "":
		b = []byte(tokenJSON)
	case tokenFile != "":
		var err error
		b, err = os.ReadFile(tokenFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth token file: %w", err)
		}
	default:
		return nil, errors.New("missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE)")
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(b, tok); err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	return tok, nil
}

// Load fetches every row family from its worksheet tab
func (s *SheetsSource) Load(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{
		Ledger: models.NewLedgerSet(nil),
		Sales:  models.NewSalesSet(nil),
	}

	if records, err := s.readTab(ctx, s.ledgerTab); err != nil {
		return nil, err
	} else if len(records) > 0 {
		entries, err := parseLedgerRows(records, s.ledgerTab)
		if err != nil {
			return nil, err
		}
		ds.Ledger = models.NewLedgerSet(entries)
	}

	if records, err := s.readTab(ctx, s.salesTab); err != nil {
		return nil, err
	} else if len(records) > 0 {
		invoices, err := parseSalesRows(records, s.salesTab)
		if err != nil {
			return nil, err
		}
		ds.Sales = models.NewSalesSet(invoices)
	}

	if records, err := s.readTab(ctx, s.itemsTab); err != nil {
		return nil, err
	} else if len(records) > 0 {
		items, err := parseItemRows(records, s.itemsTab)
		if err != nil {
			return nil, err
		}
		ds.Items = items
	}

	if records, err := s.readTab(ctx, s.transfersTab); err != nil {
		return nil, err
	} else if len(records) > 0 {
		transfers, err := parseTransferRows(records, s.transfersTab)
		if err != nil {
			return nil, err
		}
		ds.Transfers = transfers
	}

	if records, err := s.readTab(ctx, s.transactionsTab); err != nil {
		return nil, err
	} else if len(records) > 0 {
		txns, err := parseTransactionRows(records, s.transactionsTab)
		if err != nil {
			return nil, err
		}
		ds.Transactions = txns
	}

	log.Printf("Loaded dataset from spreadsheet %s: %d ledger, %d sales, %d items, %d transfers, %d transactions",
		s.spreadsheetID, ds.Ledger.Len(), ds.Sales.Len(), len(ds.Items), len(ds.Transfers), len(ds.Transactions))

	return ds, nil
}

// readTab fetches a whole worksheet tab as string records
func (s *SheetsSource) readTab(ctx context.Context, tab string) ([][]string, error) {
	rng := fmt.Sprintf("%s!A:Z", tab)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	records := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cols := make([]string, len(row))
		for i, v := range row {
			cols[i] = strings.TrimSpace(fmt.Sprint(v))
		}
		records = append(records, cols)
	}
	return records, nil
}

// AppendStockTransaction appends a transaction row to the transactions tab
func (s *SheetsSource) AppendStockTransaction(ctx context.Context, tx models.StockTransaction) error {
	row := []any{
		tx.ID,
		tx.Date.Format("2006-01-02"),
		tx.SKU,
		tx.Warehouse,
		string(tx.Kind),
		tx.Pieces,
		tx.Notes,
	}
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	rng := fmt.Sprintf("%s!A:G", s.transactionsTab)

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", s.transactionsTab, err)
	}

	log.Printf("Appended stock transaction %s to spreadsheet tab %s", tx.ID, s.transactionsTab)
	return nil
}
