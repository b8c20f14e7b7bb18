package inventory

import (
	"testing"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
)

func TestCartonBreakdown(t *testing.T) {
	tests := []struct {
		name    string
		pieces  int
		pcsCtn  int
		cartons int
		loose   int
	}{
		{"exact cartons", 48, 12, 4, 0},
		{"with loose pieces", 50, 12, 4, 2},
		{"less than one carton", 7, 12, 0, 7},
		{"zero pieces", 0, 12, 0, 0},
		{"not carton packed", 37, 0, 0, 37},
		{"negative carton size", 37, -3, 0, 37},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cartons, loose := CartonBreakdown(tt.pieces, tt.pcsCtn)
			if cartons != tt.cartons || loose != tt.loose {
				t.Errorf("CartonBreakdown(%d, %d) = (%d, %d), want (%d, %d)",
					tt.pieces, tt.pcsCtn, cartons, loose, tt.cartons, tt.loose)
			}
		})
	}
}

func TestBuildStockAppliesTransfers(t *testing.T) {
	items := []models.Item{
		{SKU: "CHP-001", Name: "Chipsy Salt 50g", Warehouse: "Main", Pieces: 100, PcsInCtn: 20},
	}
	transfers := []models.Transfer{
		{SKU: "CHP-001", From: "Main", To: "Branch", Pieces: 30},
	}

	stocks := BuildStock(items, transfers, nil)

	if len(stocks) != 2 {
		t.Fatalf("expected 2 stock rows, got %d", len(stocks))
	}

	byWarehouse := make(map[string]Stock)
	for _, s := range stocks {
		byWarehouse[s.Warehouse] = s
	}

	if got := byWarehouse["Main"].Pieces; got != 70 {
		t.Errorf("Main pieces = %d, want 70", got)
	}
	if got := byWarehouse["Branch"].Pieces; got != 30 {
		t.Errorf("Branch pieces = %d, want 30", got)
	}
	if got := byWarehouse["Main"].Cartons; got != 3 {
		t.Errorf("Main cartons = %d, want 3", got)
	}
	if got := byWarehouse["Main"].LoosePieces; got != 10 {
		t.Errorf("Main loose = %d, want 10", got)
	}
}

func TestBuildStockAppliesTransactions(t *testing.T) {
	items := []models.Item{
		{SKU: "CHP-002", Name: "Chipsy Cheese 50g", Warehouse: "Main", Pieces: 40, PcsInCtn: 20},
	}
	txns := []models.StockTransaction{
		{SKU: "CHP-002", Warehouse: "Main", Kind: models.StockIn, Pieces: 20},
		{SKU: "CHP-002", Warehouse: "Main", Kind: models.StockOut, Pieces: 5},
		// Unknown SKUs are ignored
		{SKU: "NOPE", Warehouse: "Main", Kind: models.StockIn, Pieces: 99},
	}

	stocks := BuildStock(items, nil, txns)

	if len(stocks) != 1 {
		t.Fatalf("expected 1 stock row, got %d", len(stocks))
	}
	if stocks[0].Pieces != 55 {
		t.Errorf("pieces = %d, want 55", stocks[0].Pieces)
	}
}

func TestBuildStockCaseInsensitiveKeys(t *testing.T) {
	items := []models.Item{
		{SKU: "chp-003", Name: "Chipsy BBQ", Warehouse: "MAIN", Pieces: 10, PcsInCtn: 10},
	}
	transfers := []models.Transfer{
		{SKU: "CHP-003", From: "main", To: "Branch", Pieces: 4},
	}

	stocks := BuildStock(items, transfers, nil)

	byWarehouse := make(map[string]int)
	for _, s := range stocks {
		byWarehouse[s.Warehouse] = s.Pieces
	}
	if byWarehouse["MAIN"] != 6 {
		t.Errorf("MAIN pieces = %d, want 6 (keys should be case-insensitive)", byWarehouse["MAIN"])
	}
}

func TestTotals(t *testing.T) {
	stocks := []Stock{
		{Pieces: 50, Cartons: 4},
		{Pieces: 30, Cartons: 1},
	}
	pieces, cartons := Totals(stocks)
	if pieces != 80 || cartons != 5 {
		t.Errorf("Totals = (%d, %d), want (80, 5)", pieces, cartons)
	}
}

func TestValidateTransaction(t *testing.T) {
	valid := models.StockTransaction{
		SKU: "CHP-001", Warehouse: "Main", Kind: models.StockIn, Pieces: 5,
	}
	if err := ValidateTransaction(valid); err != nil {
		t.Errorf("valid transaction rejected: %v", err)
	}

	tests := []struct {
		name string
		tx   models.StockTransaction
	}{
		{"missing sku", models.StockTransaction{Warehouse: "Main", Kind: models.StockIn, Pieces: 5}},
		{"missing warehouse", models.StockTransaction{SKU: "CHP-001", Kind: models.StockIn, Pieces: 5}},
		{"bad kind", models.StockTransaction{SKU: "CHP-001", Warehouse: "Main", Kind: "adjust", Pieces: 5}},
		{"zero pieces", models.StockTransaction{SKU: "CHP-001", Warehouse: "Main", Kind: models.StockOut, Pieces: 0}},
		{"negative pieces", models.StockTransaction{SKU: "CHP-001", Warehouse: "Main", Kind: models.StockOut, Pieces: -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateTransaction(tt.tx); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}
