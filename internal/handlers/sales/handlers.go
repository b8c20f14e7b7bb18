// Package sales serves the sales-reporting dashboard.
package sales

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	httpx "github.com/MEDSABRY98/bhs-reports/internal/http"
	"github.com/MEDSABRY98/bhs-reports/internal/models"
	"github.com/MEDSABRY98/bhs-reports/internal/services/export"
	"github.com/MEDSABRY98/bhs-reports/internal/services/rowsource"
	svc "github.com/MEDSABRY98/bhs-reports/internal/services/sales"
)

var source rowsource.Source

// Initialize sets up the sales package with required dependencies
func Initialize(src rowsource.Source) {
	source = src
}

// RegisterRoutes registers all sales routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/sales/summary", handleSummary)
	r.Get("/api/sales/monthly", handleMonthly)
	r.Get("/api/sales/customers", handleTopCustomers)
	r.Get("/api/sales/invoices", handleInvoices)
	r.Get("/api/sales/export", handleExport)
}

// filteredSales applies the shared date-range query parameters
func filteredSales(r *http.Request) (*models.SalesSet, error) {
	data, err := source.Load(r.Context())
	if err != nil {
		return nil, err
	}

	set := data.Sales
	start, end := httpx.ParseDateRange(
		r.URL.Query().Get("start"),
		r.URL.Query().Get("end"),
		set.MinDate(),
		set.MaxDate(),
	)
	return set.FilterByDateRange(start, end), nil
}

func handleSummary(w http.ResponseWriter, r *http.Request) {
	set, err := filteredSales(r)
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	httpx.JSON(w, http.StatusOK, svc.Summarize(set))
}

func handleMonthly(w http.ResponseWriter, r *http.Request) {
	set, err := filteredSales(r)
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"months": svc.MonthlySeries(set),
	})
}

func handleTopCustomers(w http.ResponseWriter, r *http.Request) {
	set, err := filteredSales(r)
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"customers": svc.TopCustomers(set, limit),
	})
}

func handleInvoices(w http.ResponseWriter, r *http.Request) {
	set, err := filteredSales(r)
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if customer := r.URL.Query().Get("customer"); customer != "" {
		set = set.FilterByCustomer(customer)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		set = set.FilterBySearch(search)
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	if perPage < 1 {
		perPage = 25
	}

	totalCount := set.Len()
	totalPages := set.TotalPages(perPage)
	if page > totalPages && totalPages > 0 {
		page = totalPages
	}

	pageSet := set.SortByDateDesc().Paginate(page, perPage)

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"invoices":   pageSet.Invoices,
		"page":       page,
		"perPage":    perPage,
		"totalPages": totalPages,
		"totalCount": totalCount,
	})
}

func handleExport(w http.ResponseWriter, r *http.Request) {
	set, err := filteredSales(r)
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	file, filename, err := export.SalesWorkbook(set)
	if err != nil {
		httpx.ErrorResponse(w, "Error building workbook: "+err.Error(), http.StatusInternalServerError)
		return
	}

	httpx.Attachment(w, file, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}
