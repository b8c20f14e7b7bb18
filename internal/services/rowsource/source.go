// Package rowsource loads the spreadsheet-shaped row families the
// dashboards aggregate over. The row store is opaque: a CSV directory
// and a Google Sheets spreadsheet are interchangeable behind Source.
package rowsource

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
)

// Dataset holds every row family the dashboards consume
type Dataset struct {
	Ledger       *models.LedgerSet
	Sales        *models.SalesSet
	Items        []models.Item
	Transfers    []models.Transfer
	Transactions []models.StockTransaction
}

// Source is a row store returning the full dataset and accepting
// appended stock transactions
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
	AppendStockTransaction(ctx context.Context, tx models.StockTransaction) error
}

// columnMappings maps lowercase export header variants to standard names
var columnMappings = map[string][]string{
	"Date":      {"date", "transaction date", "invoice date", "posted date", "entry date"},
	"Customer":  {"customer", "customer name", "client", "account", "party"},
	"Number":    {"number", "invoice", "invoice no", "invoice number", "doc no", "document", "receipt no"},
	"Type":      {"type", "kind", "entry type", "row type"},
	"Amount":    {"amount", "value", "total", "net amount"},
	"Matching":  {"matching", "matching id", "match", "allocation", "settles"},
	"Method":    {"method", "payment method", "mode", "channel"},
	"Notes":     {"notes", "note", "memo", "remarks", "description"},
	"ID":        {"id", "ref", "uid"},
	"SKU":       {"sku", "item code", "code", "product code"},
	"Name":      {"name", "item", "item name", "product", "product name"},
	"Warehouse": {"warehouse", "store", "branch", "location"},
	"Pieces":    {"pieces", "pcs", "qty", "quantity", "units"},
	"PcsInCtn":  {"pcsinctn", "pcs in ctn", "pcs per ctn", "pieces per carton", "carton size", "pack size"},
	"From":      {"from", "from warehouse", "source warehouse"},
	"To":        {"to", "to warehouse", "destination warehouse"},
	"Reference": {"reference", "transfer no", "voucher"},
	"Items":     {"items", "line items", "lines"},
}

// normalizeColumnName maps an export header to our standard name
func normalizeColumnName(col string) string {
	lowered := strings.ToLower(strings.TrimSpace(col))
	for standard, variants := range columnMappings {
		for _, variant := range variants {
			if lowered == variant {
				return standard
			}
		}
	}
	return strings.TrimSpace(col)
}

// buildColumnIndex creates a normalized column index from a header row.
// First match wins for duplicate headers.
func buildColumnIndex(header []string) map[string]int {
	colIndex := make(map[string]int)
	for i, col := range header {
		normalized := normalizeColumnName(col)
		if _, exists := colIndex[normalized]; !exists {
			colIndex[normalized] = i
		}
	}
	return colIndex
}

// field returns the trimmed cell under a standard column, or ""
func field(record []string, colIndex map[string]int, name string) string {
	idx, ok := colIndex[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseDate tries the export date formats, day-first for slashed dates
func parseDate(s string) time.Time {
	formats := []string{
		"2006-01-02",
		"02/01/2006",
		"2/1/2006",
		"2006/01/02",
		"02-01-2006",
		"Jan 2, 2006",
		"2 Jan 2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}

	return time.Time{}
}

// parseAmount parses a money cell, handling separators and parentheses
// for negatives: "(1,500.00)" -> -1500.00
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}

	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// parseInt parses a piece-count cell
func parseInt(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, _ := strconv.Atoi(s)
	return n
}

// parseEntryKind maps Type cell values onto invoice/payment. An empty
// value falls back to the row shape: rows with a number are invoices.
func parseEntryKind(typeCell, number string) models.EntryKind {
	switch strings.ToLower(strings.TrimSpace(typeCell)) {
	case "invoice", "inv", "sale", "return", "ob", "opening", "opening balance":
		return models.KindInvoice
	case "payment", "pay", "receipt", "collection", "cash receipt":
		return models.KindPayment
	}
	if strings.TrimSpace(number) != "" {
		return models.KindInvoice
	}
	return models.KindPayment
}

// parseLedgerRows converts raw records (header first) into ledger entries
func parseLedgerRows(records [][]string, source string) ([]models.LedgerEntry, error) {
	if len(records) == 0 {
		return nil, nil
	}

	colIndex := buildColumnIndex(records[0])
	if _, ok := colIndex["Date"]; !ok {
		return nil, fmt.Errorf("%s: missing required column: Date", source)
	}
	if _, ok := colIndex["Amount"]; !ok {
		return nil, fmt.Errorf("%s: missing required column: Amount", source)
	}

	var entries []models.LedgerEntry
	for lineNum, record := range records[1:] {
		date := parseDate(field(record, colIndex, "Date"))
		if date.IsZero() {
			log.Printf("Warning: %s row %d: could not parse date %q, skipping", source, lineNum+2, field(record, colIndex, "Date"))
			continue
		}

		amount, ok := parseAmount(field(record, colIndex, "Amount"))
		if !ok {
			log.Printf("Warning: %s row %d: could not parse amount %q, skipping", source, lineNum+2, field(record, colIndex, "Amount"))
			continue
		}

		number := field(record, colIndex, "Number")
		entry := models.LedgerEntry{
			ID:       field(record, colIndex, "ID"),
			Date:     date,
			Customer: field(record, colIndex, "Customer"),
			Number:   number,
			Kind:     parseEntryKind(field(record, colIndex, "Type"), number),
			Amount:   amount,
			Matching: field(record, colIndex, "Matching"),
			Method:   field(record, colIndex, "Method"),
			Notes:    field(record, colIndex, "Notes"),
			Source:   source,
		}
		if entry.ID == "" {
			entry.ID = fmt.Sprintf("%s:%d", source, lineNum+2)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// parseSalesRows converts raw records into sales invoices
func parseSalesRows(records [][]string, source string) ([]models.SalesInvoice, error) {
	if len(records) == 0 {
		return nil, nil
	}

	colIndex := buildColumnIndex(records[0])
	if _, ok := colIndex["Date"]; !ok {
		return nil, fmt.Errorf("%s: missing required column: Date", source)
	}
	if _, ok := colIndex["Amount"]; !ok {
		return nil, fmt.Errorf("%s: missing required column: Amount", source)
	}

	var invoices []models.SalesInvoice
	for lineNum, record := range records[1:] {
		date := parseDate(field(record, colIndex, "Date"))
		if date.IsZero() {
			log.Printf("Warning: %s row %d: could not parse date %q, skipping", source, lineNum+2, field(record, colIndex, "Date"))
			continue
		}

		amount, ok := parseAmount(field(record, colIndex, "Amount"))
		if !ok {
			log.Printf("Warning: %s row %d: could not parse amount %q, skipping", source, lineNum+2, field(record, colIndex, "Amount"))
			continue
		}

		invoices = append(invoices, models.SalesInvoice{
			Date:     date,
			Number:   field(record, colIndex, "Number"),
			Customer: field(record, colIndex, "Customer"),
			Amount:   amount,
			Items:    parseInt(field(record, colIndex, "Items")),
			Source:   source,
		})
	}

	return invoices, nil
}

// parseItemRows converts raw records into stock items
func parseItemRows(records [][]string, source string) ([]models.Item, error) {
	if len(records) == 0 {
		return nil, nil
	}

	colIndex := buildColumnIndex(records[0])
	if _, ok := colIndex["SKU"]; !ok {
		return nil, fmt.Errorf("%s: missing required column: SKU", source)
	}

	var items []models.Item
	for lineNum, record := range records[1:] {
		sku := field(record, colIndex, "SKU")
		if sku == "" {
			log.Printf("Warning: %s row %d: empty SKU, skipping", source, lineNum+2)
			continue
		}

		items = append(items, models.Item{
			SKU:       sku,
			Name:      field(record, colIndex, "Name"),
			Warehouse: field(record, colIndex, "Warehouse"),
			Pieces:    parseInt(field(record, colIndex, "Pieces")),
			PcsInCtn:  parseInt(field(record, colIndex, "PcsInCtn")),
		})
	}

	return items, nil
}

// parseTransferRows converts raw records into warehouse transfers
func parseTransferRows(records [][]string, source string) ([]models.Transfer, error) {
	if len(records) == 0 {
		return nil, nil
	}

	colIndex := buildColumnIndex(records[0])
	if _, ok := colIndex["SKU"]; !ok {
		return nil, fmt.Errorf("%s: missing required column: SKU", source)
	}

	var transfers []models.Transfer
	for lineNum, record := range records[1:] {
		sku := field(record, colIndex, "SKU")
		if sku == "" {
			log.Printf("Warning: %s row %d: empty SKU, skipping", source, lineNum+2)
			continue
		}

		transfers = append(transfers, models.Transfer{
			Date:      parseDate(field(record, colIndex, "Date")),
			SKU:       sku,
			From:      field(record, colIndex, "From"),
			To:        field(record, colIndex, "To"),
			Pieces:    parseInt(field(record, colIndex, "Pieces")),
			Reference: field(record, colIndex, "Reference"),
		})
	}

	return transfers, nil
}

// parseTransactionRows converts raw records into stock transactions
func parseTransactionRows(records [][]string, source string) ([]models.StockTransaction, error) {
	if len(records) == 0 {
		return nil, nil
	}

	colIndex := buildColumnIndex(records[0])
	if _, ok := colIndex["SKU"]; !ok {
		return nil, fmt.Errorf("%s: missing required column: SKU", source)
	}

	var txns []models.StockTransaction
	for lineNum, record := range records[1:] {
		sku := field(record, colIndex, "SKU")
		if sku == "" {
			log.Printf("Warning: %s row %d: empty SKU, skipping", source, lineNum+2)
			continue
		}

		kind := models.StockTransactionKind(strings.ToLower(field(record, colIndex, "Type")))
		if kind != models.StockIn && kind != models.StockOut {
			log.Printf("Warning: %s row %d: unknown transaction type %q, skipping", source, lineNum+2, field(record, colIndex, "Type"))
			continue
		}

		txns = append(txns, models.StockTransaction{
			ID:        field(record, colIndex, "ID"),
			Date:      parseDate(field(record, colIndex, "Date")),
			SKU:       sku,
			Warehouse: field(record, colIndex, "Warehouse"),
			Kind:      kind,
			Pieces:    parseInt(field(record, colIndex, "Pieces")),
			Notes:     field(record, colIndex, "Notes"),
		})
	}

	return txns, nil
}
