// Package receipts serves the cash receipts dashboard.
package receipts

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	httpx "github.com/MEDSABRY98/bhs-reports/internal/http"
	"github.com/MEDSABRY98/bhs-reports/internal/models"
	"github.com/MEDSABRY98/bhs-reports/internal/services/rowsource"
	svc "github.com/MEDSABRY98/bhs-reports/internal/services/receipts"
)

var source rowsource.Source

// Initialize sets up the receipts package with required dependencies
func Initialize(src rowsource.Source) {
	source = src
}

// RegisterRoutes registers all receipts routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/receipts/daily", handleDaily)
	r.Get("/api/receipts/methods", handleMethods)
	r.Get("/api/receipts/recent", handleRecent)
}

// filteredLedger applies the shared date-range query parameters
func filteredLedger(r *http.Request) (*models.LedgerSet, error) {
	data, err := source.Load(r.Context())
	if err != nil {
		return nil, err
	}

	set := data.Ledger
	start, end := httpx.ParseDateRange(
		r.URL.Query().Get("start"),
		r.URL.Query().Get("end"),
		set.MinDate(),
		set.MaxDate(),
	)
	return set.FilterByDateRange(start, end), nil
}

func handleDaily(w http.ResponseWriter, r *http.Request) {
	set, err := filteredLedger(r)
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	days := svc.Daily(set)

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"days":  days,
		"count": len(days),
	})
}

func handleMethods(w http.ResponseWriter, r *http.Request) {
	set, err := filteredLedger(r)
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"methods": svc.ByMethod(set),
	})
}

func handleRecent(w http.ResponseWriter, r *http.Request) {
	set, err := filteredLedger(r)
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"receipts": svc.Recent(set, limit),
	})
}
