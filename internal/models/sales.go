package models

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SalesInvoice is a row from the sales register. Returns carry the RSAL
// number prefix and are stored with positive amounts; reporting code
// subtracts them.
type SalesInvoice struct {
	Date     time.Time       `json:"date"`
	Number   string          `json:"number"`
	Customer string          `json:"customer"`
	Amount   decimal.Decimal `json:"amount"`
	Items    int             `json:"items,omitempty"`
	Source   string          `json:"source,omitempty"`
}

// NumberPrefix returns the leading letters of the invoice number, uppercased
func (si *SalesInvoice) NumberPrefix() string {
	n := strings.TrimSpace(si.Number)
	end := 0
	for end < len(n) {
		c := n[end]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			break
		}
		end++
	}
	return strings.ToUpper(n[:end])
}

// IsReturn reports whether the invoice is a sales return
func (si *SalesInvoice) IsReturn() bool {
	return si.NumberPrefix() == PrefixReturn
}

// SalesSet wraps a slice of sales invoices with filtering/aggregation methods
type SalesSet struct {
	Invoices []SalesInvoice
}

// NewSalesSet creates a SalesSet from a slice
func NewSalesSet(invoices []SalesInvoice) *SalesSet {
	return &SalesSet{Invoices: invoices}
}

// Len returns the number of invoices
func (ss *SalesSet) Len() int {
	return len(ss.Invoices)
}

// FilterByDateRange returns invoices within the date range (inclusive)
func (ss *SalesSet) FilterByDateRange(start, end time.Time) *SalesSet {
	result := &SalesSet{}
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, end.Location())

	for _, si := range ss.Invoices {
		if !si.Date.Before(startDay) && !si.Date.After(endDay) {
			result.Invoices = append(result.Invoices, si)
		}
	}
	return result
}

// FilterByCustomer returns invoices for the given customer (case-insensitive)
func (ss *SalesSet) FilterByCustomer(customer string) *SalesSet {
	result := &SalesSet{}
	want := strings.ToLower(strings.TrimSpace(customer))
	for _, si := range ss.Invoices {
		if strings.ToLower(strings.TrimSpace(si.Customer)) == want {
			result.Invoices = append(result.Invoices, si)
		}
	}
	return result
}

// FilterBySearch returns invoices matching the term in customer or number
func (ss *SalesSet) FilterBySearch(search string) *SalesSet {
	result := &SalesSet{}
	term := strings.ToLower(search)
	for _, si := range ss.Invoices {
		if strings.Contains(strings.ToLower(si.Customer), term) ||
			strings.Contains(strings.ToLower(si.Number), term) {
			result.Invoices = append(result.Invoices, si)
		}
	}
	return result
}

// Returns returns only RSAL invoices
func (ss *SalesSet) Returns() *SalesSet {
	result := &SalesSet{}
	for _, si := range ss.Invoices {
		if si.IsReturn() {
			result.Invoices = append(result.Invoices, si)
		}
	}
	return result
}

// Standard returns only SAL invoices
func (ss *SalesSet) Standard() *SalesSet {
	result := &SalesSet{}
	for _, si := range ss.Invoices {
		if si.NumberPrefix() == PrefixSale {
			result.Invoices = append(result.Invoices, si)
		}
	}
	return result
}

// SumAmount returns the sum of all invoice amounts
func (ss *SalesSet) SumAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, si := range ss.Invoices {
		sum = sum.Add(si.Amount)
	}
	return sum
}

// GroupByMonth groups invoices by month ("2006-01")
func (ss *SalesSet) GroupByMonth() map[string]*SalesSet {
	result := make(map[string]*SalesSet)
	for _, si := range ss.Invoices {
		month := si.Date.Format("2006-01")
		if result[month] == nil {
			result[month] = &SalesSet{}
		}
		result[month].Invoices = append(result[month].Invoices, si)
	}
	return result
}

// GroupByCustomer groups invoices by trimmed customer name
func (ss *SalesSet) GroupByCustomer() map[string]*SalesSet {
	result := make(map[string]*SalesSet)
	for _, si := range ss.Invoices {
		name := strings.TrimSpace(si.Customer)
		if name == "" {
			name = "Unknown"
		}
		if result[name] == nil {
			result[name] = &SalesSet{}
		}
		result[name].Invoices = append(result[name].Invoices, si)
	}
	return result
}

// SortByDateDesc sorts invoices by date descending
func (ss *SalesSet) SortByDateDesc() *SalesSet {
	sorted := make([]SalesInvoice, len(ss.Invoices))
	copy(sorted, ss.Invoices)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return &SalesSet{Invoices: sorted}
}

// MinDate returns the earliest invoice date
func (ss *SalesSet) MinDate() time.Time {
	if len(ss.Invoices) == 0 {
		return time.Time{}
	}
	minDate := ss.Invoices[0].Date
	for _, si := range ss.Invoices[1:] {
		if si.Date.Before(minDate) {
			minDate = si.Date
		}
	}
	return minDate
}

// MaxDate returns the latest invoice date
func (ss *SalesSet) MaxDate() time.Time {
	if len(ss.Invoices) == 0 {
		return time.Time{}
	}
	maxDate := ss.Invoices[0].Date
	for _, si := range ss.Invoices[1:] {
		if si.Date.After(maxDate) {
			maxDate = si.Date
		}
	}
	return maxDate
}

// Paginate returns a slice of invoices for the given page
func (ss *SalesSet) Paginate(page, perPage int) *SalesSet {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}

	start := (page - 1) * perPage
	if start >= len(ss.Invoices) {
		return &SalesSet{}
	}

	end := start + perPage
	if end > len(ss.Invoices) {
		end = len(ss.Invoices)
	}

	return &SalesSet{Invoices: ss.Invoices[start:end]}
}

// TotalPages returns the number of pages for the given page size
func (ss *SalesSet) TotalPages(perPage int) int {
	if perPage < 1 {
		perPage = 25
	}
	return (len(ss.Invoices) + perPage - 1) / perPage
}
