package models

import "time"

// Item is a stock item as exported from the inventory sheet. Pieces is
// the on-hand count at the item's home warehouse before transfers and
// transactions are applied.
type Item struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Warehouse string `json:"warehouse"`
	Pieces    int    `json:"pieces"`
	PcsInCtn  int    `json:"pcs_in_ctn"`
}

// Transfer moves pieces of one SKU between warehouses
type Transfer struct {
	Date      time.Time `json:"date"`
	SKU       string    `json:"sku"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Pieces    int       `json:"pieces"`
	Reference string    `json:"reference,omitempty"`
}

// StockTransactionKind is the direction of a stock movement
type StockTransactionKind string

const (
	StockIn  StockTransactionKind = "in"
	StockOut StockTransactionKind = "out"
)

// StockTransaction is a single stock movement recorded against a warehouse
type StockTransaction struct {
	ID        string               `json:"id"`
	Date      time.Time            `json:"date"`
	SKU       string               `json:"sku"`
	Warehouse string               `json:"warehouse"`
	Kind      StockTransactionKind `json:"kind"`
	Pieces    int                  `json:"pieces"`
	Notes     string               `json:"notes,omitempty"`
}
