// Package inventory serves the chipsy stock dashboard: per-warehouse
// balances, transfer history and manual stock transactions.
package inventory

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpx "github.com/MEDSABRY98/bhs-reports/internal/http"
	"github.com/MEDSABRY98/bhs-reports/internal/models"
	"github.com/MEDSABRY98/bhs-reports/internal/services/export"
	svc "github.com/MEDSABRY98/bhs-reports/internal/services/inventory"
	"github.com/MEDSABRY98/bhs-reports/internal/services/rowsource"
)

var source rowsource.Source

// Initialize sets up the inventory package with required dependencies
func Initialize(src rowsource.Source) {
	source = src
}

// RegisterRoutes registers all inventory routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/chipsy", handleStock)
	r.Get("/api/chipsy/transfers", handleTransfers)
	r.Post("/api/chipsy/transaction", handleTransaction)
	r.Get("/api/chipsy/export", handleExport)
}

func handleStock(w http.ResponseWriter, r *http.Request) {
	data, err := source.Load(r.Context())
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	stocks := svc.BuildStock(data.Items, data.Transfers, data.Transactions)

	if warehouse := r.URL.Query().Get("warehouse"); warehouse != "" {
		filtered := make([]svc.Stock, 0, len(stocks))
		for _, s := range stocks {
			if strings.EqualFold(s.Warehouse, warehouse) {
				filtered = append(filtered, s)
			}
		}
		stocks = filtered
	}

	pieces, cartons := svc.Totals(stocks)
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"stocks":       stocks,
		"totalPieces":  pieces,
		"totalCartons": cartons,
	})
}

func handleTransfers(w http.ResponseWriter, r *http.Request) {
	data, err := source.Load(r.Context())
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	transfers := data.Transfers
	if sku := r.URL.Query().Get("sku"); sku != "" {
		filtered := make([]models.Transfer, 0, len(transfers))
		for _, t := range transfers {
			if strings.EqualFold(t.SKU, sku) {
				filtered = append(filtered, t)
			}
		}
		transfers = filtered
	}

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"transfers": transfers,
		"count":     len(transfers),
	})
}

// transactionRequest is the POST body for a manual stock movement
type transactionRequest struct {
	Date      string `json:"date"`
	SKU       string `json:"sku"`
	Warehouse string `json:"warehouse"`
	Kind      string `json:"kind"`
	Pieces    int    `json:"pieces"`
	Notes     string `json:"notes"`
}

func handleTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httpx.ErrorResponse(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	tx := models.StockTransaction{
		ID:        uuid.New().String(),
		Date:      date,
		SKU:       strings.TrimSpace(req.SKU),
		Warehouse: strings.TrimSpace(req.Warehouse),
		Kind:      models.StockTransactionKind(strings.ToLower(strings.TrimSpace(req.Kind))),
		Pieces:    req.Pieces,
		Notes:     strings.TrimSpace(req.Notes),
	}

	if err := svc.ValidateTransaction(tx); err != nil {
		httpx.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := source.AppendStockTransaction(r.Context(), tx); err != nil {
		httpx.ErrorResponse(w, "Error saving transaction: "+err.Error(), http.StatusInternalServerError)
		return
	}

	httpx.JSON(w, http.StatusCreated, tx)
}

func handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := source.Load(r.Context())
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	stocks := svc.BuildStock(data.Items, data.Transfers, data.Transactions)

	file, filename, err := export.StockWorkbook(stocks)
	if err != nil {
		httpx.ErrorResponse(w, "Error building workbook: "+err.Error(), http.StatusInternalServerError)
		return
	}

	httpx.Attachment(w, file, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}
