package rowsource

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
	"github.com/MEDSABRY98/bhs-reports/internal/services/storage"
)

// Row family file names inside the data directory
const (
	ledgerFile       = "ledger.csv"
	salesFile        = "sales.csv"
	itemsFile        = "items.csv"
	transfersFile    = "transfers.csv"
	transactionsFile = "transactions.csv"
)

// transactionsHeader is written when transactions.csv is created on first append
var transactionsHeader = []string{"ID", "Date", "SKU", "Warehouse", "Type", "Pieces", "Notes"}

// CSVSource loads row families from CSV files in the data directory,
// reading through the encrypted-at-rest store
type CSVSource struct {
	dir   string
	store *storage.Store
}

// Ensure interface conformance
var _ Source = (*CSVSource)(nil)

// NewCSV creates a CSVSource for the given data directory
func NewCSV(dir string, store *storage.Store) *CSVSource {
	return &CSVSource{dir: dir, store: store}
}

// Load reads every row family. Missing files yield empty families so a
// partially populated data directory still serves its dashboards.
func (s *CSVSource) Load(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{
		Ledger: models.NewLedgerSet(nil),
		Sales:  models.NewSalesSet(nil),
	}

	if records, ok, err := s.readCSV(ledgerFile); err != nil {
		return nil, err
	} else if ok {
		entries, err := parseLedgerRows(records, ledgerFile)
		if err != nil {
			return nil, err
		}
		ds.Ledger = models.NewLedgerSet(entries)
	}

	if records, ok, err := s.readCSV(salesFile); err != nil {
		return nil, err
	} else if ok {
		invoices, err := parseSalesRows(records, salesFile)
		if err != nil {
			return nil, err
		}
		ds.Sales = models.NewSalesSet(invoices)
	}

	if records, ok, err := s.readCSV(itemsFile); err != nil {
		return nil, err
	} else if ok {
		items, err := parseItemRows(records, itemsFile)
		if err != nil {
			return nil, err
		}
		ds.Items = items
	}

	if records, ok, err := s.readCSV(transfersFile); err != nil {
		return nil, err
	} else if ok {
		transfers, err := parseTransferRows(records, transfersFile)
		if err != nil {
			return nil, err
		}
		ds.Transfers = transfers
	}

	if records, ok, err := s.readCSV(transactionsFile); err != nil {
		return nil, err
	} else if ok {
		txns, err := parseTransactionRows(records, transactionsFile)
		if err != nil {
			return nil, err
		}
		ds.Transactions = txns
	}

	log.Printf("Loaded dataset from %s: %d ledger, %d sales, %d items, %d transfers, %d transactions",
		s.dir, ds.Ledger.Len(), ds.Sales.Len(), len(ds.Items), len(ds.Transfers), len(ds.Transactions))

	return ds, nil
}

// readCSV reads all records of a row file. ok is false if the file does
// not exist.
func (s *CSVSource) readCSV(name string) ([][]string, bool, error) {
	path := filepath.Join(s.dir, name)
	if _, err := s.store.Stat(path); os.IsNotExist(err) {
		return nil, false, nil
	}

	f, err := s.store.OpenFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", name, err)
	}

	return records, true, nil
}

// AppendStockTransaction appends a transaction row, creating the file
// with a header when absent. The whole file is rewritten so the store's
// at-rest encryption stays intact.
func (s *CSVSource) AppendStockTransaction(ctx context.Context, tx models.StockTransaction) error {
	records, ok, err := s.readCSV(transactionsFile)
	if err != nil {
		return err
	}
	if !ok || len(records) == 0 {
		records = [][]string{transactionsHeader}
	}

	records = append(records, []string{
		tx.ID,
		tx.Date.Format("2006-01-02"),
		tx.SKU,
		tx.Warehouse,
		string(tx.Kind),
		fmt.Sprintf("%d", tx.Pieces),
		tx.Notes,
	})

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("encode %s: %w", transactionsFile, err)
	}

	path := filepath.Join(s.dir, transactionsFile)
	if err := s.store.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", transactionsFile, err)
	}

	log.Printf("Appended stock transaction %s (%s %d pcs of %s)", tx.ID, tx.Kind, tx.Pieces, tx.SKU)
	return nil
}
