package rowsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
	"github.com/MEDSABRY98/bhs-reports/internal/services/storage"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Date", "Date"},
		{"Transaction Date", "Date"},
		{"INVOICE NO", "Number"},
		{"customer name", "Customer"},
		{"Matching ID", "Matching"},
		{"Payment Method", "Method"},
		{"Pcs Per Ctn", "PcsInCtn"},
		{"from warehouse", "From"},
		{"  Unknown Header  ", "Unknown Header"},
	}

	for _, tt := range tests {
		if got := normalizeColumnName(tt.input); got != tt.expected {
			t.Errorf("normalizeColumnName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2024-03-15", "2024-03-15"},
		{"15/03/2024", "2024-03-15"}, // day first
		{"5/3/2024", "2024-03-05"},
		{"Mar 15, 2024", "2024-03-15"},
		{"garbage", "0001-01-01"},
	}

	for _, tt := range tests {
		got := parseDate(tt.input)
		if got.Format("2006-01-02") != tt.expected {
			t.Errorf("parseDate(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.expected)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"1500", "1500", true},
		{"1,500.25", "1500.25", true},
		{"$2,000", "2000", true},
		{"(1,500.00)", "-1500", true},
		{"", "0", false},
		{"n/a", "0", false},
	}

	for _, tt := range tests {
		got, ok := parseAmount(tt.input)
		if ok != tt.ok {
			t.Errorf("parseAmount(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if tt.ok && got.String() != tt.expected {
			t.Errorf("parseAmount(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestParseEntryKindFallback(t *testing.T) {
	tests := []struct {
		typeCell string
		number   string
		expected models.EntryKind
	}{
		{"invoice", "", models.KindInvoice},
		{"OB", "", models.KindInvoice},
		{"Payment", "", models.KindPayment},
		{"receipt", "", models.KindPayment},
		// Fallback: rows with a number are invoices
		{"", "SAL-2024-001", models.KindInvoice},
		{"", "", models.KindPayment},
	}

	for _, tt := range tests {
		if got := parseEntryKind(tt.typeCell, tt.number); got != tt.expected {
			t.Errorf("parseEntryKind(%q, %q) = %q, want %q", tt.typeCell, tt.number, got, tt.expected)
		}
	}
}

func TestParseLedgerRowsSkipsBadRows(t *testing.T) {
	records := [][]string{
		{"Date", "Customer", "Number", "Type", "Amount", "Matching"},
		{"2024-01-10", "Al Noor Trading", "SAL-2024-001", "invoice", "1,200.00", "M-1"},
		{"not a date", "Broken Row", "", "payment", "100", ""},
		{"2024-02-01", "Al Noor Trading", "", "payment", "not money", "M-1"},
		{"2024-02-05", "Al Noor Trading", "", "payment", "500", "M-1"},
	}

	entries, err := parseLedgerRows(records, "test")
	if err != nil {
		t.Fatalf("parseLedgerRows: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (bad rows skipped), got %d", len(entries))
	}
	if entries[0].Kind != models.KindInvoice || entries[1].Kind != models.KindPayment {
		t.Errorf("kinds = %q, %q; want invoice, payment", entries[0].Kind, entries[1].Kind)
	}
	if entries[1].ID == "" {
		t.Error("entries without an ID cell should get a synthesized one")
	}
}

func TestParseLedgerRowsMissingColumns(t *testing.T) {
	records := [][]string{
		{"Customer", "Amount"},
		{"Al Noor Trading", "100"},
	}
	if _, err := parseLedgerRows(records, "test"); err == nil {
		t.Error("expected error for missing Date column")
	}
}

func newTestCSVSource(t *testing.T) (*CSVSource, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.New(dir)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	return NewCSV(dir, store), dir
}

func TestCSVSourceLoadMissingFiles(t *testing.T) {
	src, _ := newTestCSVSource(t)

	ds, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Ledger.Len() != 0 || ds.Sales.Len() != 0 || len(ds.Items) != 0 {
		t.Error("empty data directory should yield an empty dataset")
	}
}

func TestCSVSourceLoad(t *testing.T) {
	src, dir := newTestCSVSource(t)

	ledger := "Date,Customer Name,Invoice No,Type,Amount,Matching ID\n" +
		"2024-01-10,Al Noor Trading,SAL-2024-001,invoice,\"1,200.00\",M-1\n" +
		"2024-02-05,Al Noor Trading,,payment,500,M-1\n"
	if err := os.WriteFile(filepath.Join(dir, "ledger.csv"), []byte(ledger), 0644); err != nil {
		t.Fatal(err)
	}

	items := "SKU,Item Name,Warehouse,Pieces,Pcs Per Ctn\nCHP-001,Chipsy Salt 50g,Main,240,20\n"
	if err := os.WriteFile(filepath.Join(dir, "items.csv"), []byte(items), 0644); err != nil {
		t.Fatal(err)
	}

	ds, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if ds.Ledger.Len() != 2 {
		t.Errorf("ledger rows = %d, want 2", ds.Ledger.Len())
	}
	if ds.Ledger.Invoices().Len() != 1 || ds.Ledger.Payments().Len() != 1 {
		t.Errorf("kinds = %d invoices, %d payments; want 1, 1",
			ds.Ledger.Invoices().Len(), ds.Ledger.Payments().Len())
	}
	if len(ds.Items) != 1 || ds.Items[0].PcsInCtn != 20 {
		t.Errorf("items not parsed: %+v", ds.Items)
	}
}

func TestCSVSourceAppendStockTransaction(t *testing.T) {
	src, _ := newTestCSVSource(t)

	tx := models.StockTransaction{
		ID:        "tx-1",
		Date:      time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		SKU:       "CHP-001",
		Warehouse: "Main",
		Kind:      models.StockOut,
		Pieces:    20,
		Notes:     "shop sale",
	}

	if err := src.AppendStockTransaction(context.Background(), tx); err != nil {
		t.Fatalf("AppendStockTransaction: %v", err)
	}

	ds, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(ds.Transactions))
	}
	got := ds.Transactions[0]
	if got.ID != "tx-1" || got.Kind != models.StockOut || got.Pieces != 20 {
		t.Errorf("roundtripped transaction = %+v", got)
	}

	// Second append keeps the first row
	tx.ID = "tx-2"
	if err := src.AppendStockTransaction(context.Background(), tx); err != nil {
		t.Fatalf("second AppendStockTransaction: %v", err)
	}
	ds, _ = src.Load(context.Background())
	if len(ds.Transactions) != 2 {
		t.Errorf("transactions after second append = %d, want 2", len(ds.Transactions))
	}
}

// fakeSource counts loads for cache tests
type fakeSource struct {
	loads int
	data  *Dataset
}

func (f *fakeSource) Load(ctx context.Context) (*Dataset, error) {
	f.loads++
	return f.data, nil
}

func (f *fakeSource) AppendStockTransaction(ctx context.Context, tx models.StockTransaction) error {
	return nil
}

func TestCachedSourceServesFromCache(t *testing.T) {
	fake := &fakeSource{data: &Dataset{Ledger: models.NewLedgerSet(nil), Sales: models.NewSalesSet(nil)}}
	cached := NewCached(fake, time.Minute)

	ctx := context.Background()
	if _, err := cached.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if fake.loads != 1 {
		t.Errorf("loads = %d, want 1 (second read served from cache)", fake.loads)
	}

	// An append invalidates the cache
	if err := cached.AppendStockTransaction(ctx, models.StockTransaction{}); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if fake.loads != 2 {
		t.Errorf("loads after append = %d, want 2", fake.loads)
	}
}
