// Package payments serves the collections dashboard: payment
// classification, period aggregates with rolling averages, customer
// closure rates and account statements.
package payments

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MEDSABRY98/bhs-reports/internal/config"
	httpx "github.com/MEDSABRY98/bhs-reports/internal/http"
	"github.com/MEDSABRY98/bhs-reports/internal/models"
	"github.com/MEDSABRY98/bhs-reports/internal/services/export"
	"github.com/MEDSABRY98/bhs-reports/internal/services/ledger"
	"github.com/MEDSABRY98/bhs-reports/internal/services/rowsource"
)

var (
	source rowsource.Source
	cfg    *config.Config
)

// Initialize sets up the payments package with required dependencies
func Initialize(src rowsource.Source, c *config.Config) {
	source = src
	cfg = c
}

// RegisterRoutes registers all payments routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/payments/classification", handleClassification)
	r.Get("/api/payments/periods/{period}", handlePeriods)
	r.Get("/api/payments/customers", handleCustomers)
	r.Get("/api/payments/customer/{customer}/statement", handleStatement)
	r.Get("/api/payments/customer/{customer}/statement.pdf", handleStatementPDF)
	r.Get("/api/payments/charts/data/{chartType}", handleChartData)
	r.Get("/api/payments/export", handleExport)
}

// requestYear reads the year query parameter, defaulting to the current year
func requestYear(r *http.Request) (int, bool) {
	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		return time.Now().Year(), true
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1900 || year > 9999 {
		return 0, false
	}
	return year, true
}

func handleClassification(w http.ResponseWriter, r *http.Request) {
	data, err := source.Load(r.Context())
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	year, ok := requestYear(r)
	if !ok {
		httpx.ErrorResponse(w, "invalid year", http.StatusBadRequest)
		return
	}

	httpx.JSON(w, http.StatusOK, ledger.Classify(data.Ledger, year))
}

func handlePeriods(w http.ResponseWriter, r *http.Request) {
	data, err := source.Load(r.Context())
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	period, err := ledger.ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		httpx.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	set := data.Ledger
	start, end := httpx.ParseDateRange(
		r.URL.Query().Get("start"),
		r.URL.Query().Get("end"),
		set.MinDate(),
		set.MaxDate(),
	)
	set = set.FilterByDateRange(start, end)

	window := period.DefaultWindow()
	if windowStr := r.URL.Query().Get("window"); windowStr != "" {
		parsed, err := strconv.Atoi(windowStr)
		if err != nil || parsed < 1 {
			httpx.ErrorResponse(w, "invalid window", http.StatusBadRequest)
			return
		}
		window = parsed
	}

	buckets := ledger.BucketPayments(set, period)

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"period":         period,
		"window":         window,
		"buckets":        buckets,
		"rollingAverage": ledger.RollingAverage(buckets, window),
	})
}

func handleCustomers(w http.ResponseWriter, r *http.Request) {
	data, err := source.Load(r.Context())
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	year, ok := requestYear(r)
	if !ok {
		httpx.ErrorResponse(w, "invalid year", http.StatusBadRequest)
		return
	}

	c := ledger.Classify(data.Ledger, year)

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"year":      c.Year,
		"customers": c.Customers,
	})
}

// statementSet returns the customer's ledger rows in date order, or nil
// with a written error response
func statementSet(w http.ResponseWriter, r *http.Request) (string, *models.LedgerSet) {
	data, err := source.Load(r.Context())
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return "", nil
	}

	customer := chi.URLParam(r, "customer")
	set := data.Ledger.FilterByCustomer(customer)
	if set.Len() == 0 {
		httpx.ErrorResponse(w, "unknown customer", http.StatusNotFound)
		return "", nil
	}

	return customer, set.SortByDate()
}

func handleStatement(w http.ResponseWriter, r *http.Request) {
	customer, set := statementSet(w, r)
	if set == nil {
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"customer":  customer,
		"entries":   set.Entries,
		"invoiced":  set.Invoices().SumAmount(),
		"collected": set.Payments().SumAmount(),
	})
}

func handleStatementPDF(w http.ResponseWriter, r *http.Request) {
	customer, set := statementSet(w, r)
	if set == nil {
		return
	}

	file, filename, err := export.CustomerStatement(customer, set, cfg.FontFile)
	if err != nil {
		httpx.ErrorResponse(w, "Error building statement: "+err.Error(), http.StatusInternalServerError)
		return
	}

	httpx.Attachment(w, file, filename, "application/pdf")
}

func handleChartData(w http.ResponseWriter, r *http.Request) {
	data, err := source.Load(r.Context())
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	year, ok := requestYear(r)
	if !ok {
		httpx.ErrorResponse(w, "invalid year", http.StatusBadRequest)
		return
	}

	chartType := chi.URLParam(r, "chartType")
	switch chartType {
	case "classification":
		httpx.JSON(w, http.StatusOK, classificationChart(data.Ledger, year))
	case "collections":
		period := ledger.PeriodMonthly
		if p, err := ledger.ParsePeriod(r.URL.Query().Get("period")); err == nil {
			period = p
		}
		httpx.JSON(w, http.StatusOK, collectionsChart(data.Ledger, period))
	case "closure":
		httpx.JSON(w, http.StatusOK, closureChart(data.Ledger, year))
	default:
		httpx.ErrorResponse(w, "unknown chart type: "+chartType, http.StatusBadRequest)
	}
}

// classificationChart is a pie of collected cash by category
func classificationChart(set *models.LedgerSet, year int) map[string]interface{} {
	c := ledger.Classify(set, year)

	labels := make([]string, 0, len(c.Breakdowns))
	values := make([]float64, 0, len(c.Breakdowns))
	for _, b := range c.Breakdowns {
		labels = append(labels, string(b.Category))
		values = append(values, b.Total.InexactFloat64())
	}

	return map[string]interface{}{
		"data": []map[string]interface{}{
			{
				"type":   "pie",
				"labels": labels,
				"values": values,
				"hole":   0.4,
			},
		},
		"layout": map[string]interface{}{
			"title": map[string]interface{}{"text": "Collections by category"},
		},
	}
}

// collectionsChart is a bar series of bucketed collections with the
// rolling average overlaid as a line
func collectionsChart(set *models.LedgerSet, period ledger.Period) map[string]interface{} {
	buckets := ledger.BucketPayments(set, period)
	averages := ledger.RollingAverage(buckets, period.DefaultWindow())

	labels := make([]string, 0, len(buckets))
	totals := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		labels = append(labels, b.Label)
		totals = append(totals, b.Total.InexactFloat64())
	}

	return map[string]interface{}{
		"data": []map[string]interface{}{
			{
				"type": "bar",
				"name": "Collected",
				"x":    labels,
				"y":    totals,
			},
			{
				"type": "scatter",
				"mode": "lines",
				"name": "Rolling average",
				"x":    labels,
				"y":    averages,
			},
		},
		"layout": map[string]interface{}{
			"title":   map[string]interface{}{"text": "Collections over time"},
			"barmode": "group",
		},
	}
}

// closureChart is a bar of closure rates for the customers with the
// largest outstanding balances
func closureChart(set *models.LedgerSet, year int) map[string]interface{} {
	c := ledger.Classify(set, year)

	customers := c.Customers
	if len(customers) > 15 {
		customers = customers[:15]
	}

	labels := make([]string, 0, len(customers))
	rates := make([]float64, 0, len(customers))
	for _, cc := range customers {
		labels = append(labels, cc.Customer)
		rates = append(rates, cc.ClosurePct)
	}

	return map[string]interface{}{
		"data": []map[string]interface{}{
			{
				"type": "bar",
				"name": "Closure %",
				"x":    labels,
				"y":    rates,
			},
		},
		"layout": map[string]interface{}{
			"title": map[string]interface{}{"text": "Customer closure rates"},
			"yaxis": map[string]interface{}{"range": []float64{0, 100}},
		},
	}
}

func handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := source.Load(r.Context())
	if err != nil {
		httpx.ErrorResponse(w, "Error loading data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	year, ok := requestYear(r)
	if !ok {
		httpx.ErrorResponse(w, "invalid year", http.StatusBadRequest)
		return
	}

	file, filename, err := export.CollectionsWorkbook(ledger.Classify(data.Ledger, year))
	if err != nil {
		httpx.ErrorResponse(w, "Error building workbook: "+err.Error(), http.StatusInternalServerError)
		return
	}

	httpx.Attachment(w, file, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}
