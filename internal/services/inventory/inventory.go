// Package inventory computes warehouse stock positions from the item,
// transfer and transaction row families.
package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
)

// Stock is an item's computed position at one warehouse
type Stock struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Warehouse   string `json:"warehouse"`
	Pieces      int    `json:"pieces"`
	PcsInCtn    int    `json:"pcs_in_ctn"`
	Cartons     int    `json:"cartons"`
	LoosePieces int    `json:"loose_pieces"`
}

// CartonBreakdown splits a piece count into whole cartons plus loose
// pieces. A non-positive carton size means the item is not carton-packed
// and everything stays loose.
func CartonBreakdown(pieces, pcsInCtn int) (cartons, loose int) {
	if pcsInCtn <= 0 {
		return 0, pieces
	}
	return pieces / pcsInCtn, pieces % pcsInCtn
}

// BuildStock applies transfers and stock transactions to the item rows
// and returns per-warehouse positions sorted by SKU then warehouse.
// Movements referencing unknown SKUs are ignored; movements into a
// warehouse where the item has no row create one.
func BuildStock(items []models.Item, transfers []models.Transfer, txns []models.StockTransaction) []Stock {
	type key struct{ sku, warehouse string }

	pieces := make(map[key]int)
	meta := make(map[string]models.Item)  // per SKU: name, carton size
	warehouses := make(map[string]string) // normalized -> display name
	known := make(map[string]bool)

	seeWarehouse := func(name string) string {
		norm := normalize(name)
		if _, ok := warehouses[norm]; !ok {
			warehouses[norm] = strings.TrimSpace(name)
		}
		return norm
	}

	for _, item := range items {
		k := key{normalize(item.SKU), seeWarehouse(item.Warehouse)}
		pieces[k] += item.Pieces
		if _, ok := meta[normalize(item.SKU)]; !ok {
			meta[normalize(item.SKU)] = item
		}
		known[normalize(item.SKU)] = true
	}

	for _, tr := range transfers {
		sku := normalize(tr.SKU)
		if !known[sku] {
			continue
		}
		pieces[key{sku, seeWarehouse(tr.From)}] -= tr.Pieces
		pieces[key{sku, seeWarehouse(tr.To)}] += tr.Pieces
	}

	for _, tx := range txns {
		sku := normalize(tx.SKU)
		if !known[sku] {
			continue
		}
		k := key{sku, seeWarehouse(tx.Warehouse)}
		switch tx.Kind {
		case models.StockIn:
			pieces[k] += tx.Pieces
		case models.StockOut:
			pieces[k] -= tx.Pieces
		}
	}

	stocks := make([]Stock, 0, len(pieces))
	for k, count := range pieces {
		item := meta[k.sku]
		cartons, loose := CartonBreakdown(count, item.PcsInCtn)
		stocks = append(stocks, Stock{
			SKU:         item.SKU,
			Name:        item.Name,
			Warehouse:   warehouses[k.warehouse],
			Pieces:      count,
			PcsInCtn:    item.PcsInCtn,
			Cartons:     cartons,
			LoosePieces: loose,
		})
	}

	sort.Slice(stocks, func(i, j int) bool {
		if stocks[i].SKU != stocks[j].SKU {
			return stocks[i].SKU < stocks[j].SKU
		}
		return stocks[i].Warehouse < stocks[j].Warehouse
	})

	return stocks
}

// Totals sums a stock list into overall pieces and cartons
func Totals(stocks []Stock) (pieces, cartons int) {
	for _, s := range stocks {
		pieces += s.Pieces
		cartons += s.Cartons
	}
	return pieces, cartons
}

// ValidateTransaction rejects malformed stock movements before they are
// appended to the row store
func ValidateTransaction(tx models.StockTransaction) error {
	if strings.TrimSpace(tx.SKU) == "" {
		return fmt.Errorf("sku is required")
	}
	if strings.TrimSpace(tx.Warehouse) == "" {
		return fmt.Errorf("warehouse is required")
	}
	if tx.Kind != models.StockIn && tx.Kind != models.StockOut {
		return fmt.Errorf("kind must be %q or %q", models.StockIn, models.StockOut)
	}
	if tx.Pieces <= 0 {
		return fmt.Errorf("pieces must be positive")
	}
	return nil
}

// normalize canonicalizes SKU/warehouse keys for matching
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
