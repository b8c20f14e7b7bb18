package models

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind distinguishes invoice rows from payment rows
type EntryKind string

const (
	KindInvoice EntryKind = "invoice"
	KindPayment EntryKind = "payment"
)

// Invoice number prefixes used by the ledger
const (
	PrefixSale    = "SAL"  // standard sales invoice
	PrefixReturn  = "RSAL" // sales return
	PrefixOpening = "OB"   // synthetic opening-balance row
)

// LedgerEntry is a single receivables-ledger row: either an invoice
// (SAL/RSAL/OB number prefix) or a payment carrying a free-text matching
// key that associates it with the invoice(s) it settles.
type LedgerEntry struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	Customer string          `json:"customer"`
	Number   string          `json:"number"`
	Kind     EntryKind       `json:"kind"`
	Amount   decimal.Decimal `json:"amount"`
	Matching string          `json:"matching,omitempty"`
	Method   string          `json:"method,omitempty"` // payments: cash, bank, cheque
	Notes    string          `json:"notes,omitempty"`
	Source   string          `json:"source,omitempty"`
}

// NumberPrefix returns the leading letters of the entry number, uppercased.
// "rsal-2024-0013" -> "RSAL".
func (e *LedgerEntry) NumberPrefix() string {
	n := strings.TrimSpace(e.Number)
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

// IsOpening reports whether the entry is an opening-balance invoice row
func (e *LedgerEntry) IsOpening() bool {
	return e.Kind == KindInvoice && e.NumberPrefix() == PrefixOpening
}

// IsReturn reports whether the entry is a sales return invoice row
func (e *LedgerEntry) IsReturn() bool {
	return e.Kind == KindInvoice && e.NumberPrefix() == PrefixReturn
}

// IsSale reports whether the entry is a standard sales invoice row.
// NumberPrefix consumes all leading letters, so RSAL numbers never
// collide with SAL here.
func (e *LedgerEntry) IsSale() bool {
	return e.Kind == KindInvoice && e.NumberPrefix() == PrefixSale
}

// MatchingKey returns the normalized matching key, empty if unset
func (e *LedgerEntry) MatchingKey() string {
	return strings.ToLower(strings.TrimSpace(e.Matching))
}

// LedgerSet wraps a slice of ledger entries with filtering/aggregation methods
type LedgerSet struct {
	Entries []LedgerEntry
}

// NewLedgerSet creates a LedgerSet from a slice
func NewLedgerSet(entries []LedgerEntry) *LedgerSet {
	return &LedgerSet{Entries: entries}
}

// Len returns the number of entries
func (ls *LedgerSet) Len() int {
	return len(ls.Entries)
}

// Invoices returns only invoice rows
func (ls *LedgerSet) Invoices() *LedgerSet {
	return ls.FilterByKind(KindInvoice)
}

// Payments returns only payment rows
func (ls *LedgerSet) Payments() *LedgerSet {
	return ls.FilterByKind(KindPayment)
}

// FilterByKind returns entries of the specified kind
func (ls *LedgerSet) FilterByKind(kind EntryKind) *LedgerSet {
	result := &LedgerSet{}
	for _, e := range ls.Entries {
		if e.Kind == kind {
			result.Entries = append(result.Entries, e)
		}
	}
	return result
}

// FilterByCustomer returns entries for the given customer (case-insensitive)
func (ls *LedgerSet) FilterByCustomer(customer string) *LedgerSet {
	result := &LedgerSet{}
	want := strings.ToLower(strings.TrimSpace(customer))
	for _, e := range ls.Entries {
		if strings.ToLower(strings.TrimSpace(e.Customer)) == want {
			result.Entries = append(result.Entries, e)
		}
	}
	return result
}

// FilterByDateRange returns entries within the date range (inclusive)
func (ls *LedgerSet) FilterByDateRange(start, end time.Time) *LedgerSet {
	result := &LedgerSet{}
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, end.Location())

	for _, e := range ls.Entries {
		if !e.Date.Before(startDay) && !e.Date.After(endDay) {
			result.Entries = append(result.Entries, e)
		}
	}
	return result
}

// FilterBySearch returns entries matching the term in customer, number or notes
func (ls *LedgerSet) FilterBySearch(search string) *LedgerSet {
	result := &LedgerSet{}
	term := strings.ToLower(search)
	for _, e := range ls.Entries {
		if strings.Contains(strings.ToLower(e.Customer), term) ||
			strings.Contains(strings.ToLower(e.Number), term) ||
			strings.Contains(strings.ToLower(e.Notes), term) {
			result.Entries = append(result.Entries, e)
		}
	}
	return result
}

// SumAmount returns the sum of all entry amounts
func (ls *LedgerSet) SumAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range ls.Entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// GroupByCustomer groups entries by trimmed customer name
func (ls *LedgerSet) GroupByCustomer() map[string]*LedgerSet {
	result := make(map[string]*LedgerSet)
	for _, e := range ls.Entries {
		name := strings.TrimSpace(e.Customer)
		if name == "" {
			name = "Unknown"
		}
		if result[name] == nil {
			result[name] = &LedgerSet{}
		}
		result[name].Entries = append(result[name].Entries, e)
	}
	return result
}

// GroupByMatching groups entries by normalized matching key. Entries
// without a matching key are omitted.
func (ls *LedgerSet) GroupByMatching() map[string]*LedgerSet {
	result := make(map[string]*LedgerSet)
	for _, e := range ls.Entries {
		key := e.MatchingKey()
		if key == "" {
			continue
		}
		if result[key] == nil {
			result[key] = &LedgerSet{}
		}
		result[key].Entries = append(result[key].Entries, e)
	}
	return result
}

// SortByDate sorts entries by date ascending
func (ls *LedgerSet) SortByDate() *LedgerSet {
	sorted := make([]LedgerEntry, len(ls.Entries))
	copy(sorted, ls.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return &LedgerSet{Entries: sorted}
}

// SortByDateDesc sorts entries by date descending
func (ls *LedgerSet) SortByDateDesc() *LedgerSet {
	sorted := make([]LedgerEntry, len(ls.Entries))
	copy(sorted, ls.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return &LedgerSet{Entries: sorted}
}

// MinDate returns the earliest entry date
func (ls *LedgerSet) MinDate() time.Time {
	if len(ls.Entries) == 0 {
		return time.Time{}
	}
	minDate := ls.Entries[0].Date
	for _, e := range ls.Entries[1:] {
		if e.Date.Before(minDate) {
			minDate = e.Date
		}
	}
	return minDate
}

// MaxDate returns the latest entry date
func (ls *LedgerSet) MaxDate() time.Time {
	if len(ls.Entries) == 0 {
		return time.Time{}
	}
	maxDate := ls.Entries[0].Date
	for _, e := range ls.Entries[1:] {
		if e.Date.After(maxDate) {
			maxDate = e.Date
		}
	}
	return maxDate
}

// Customers returns a sorted list of unique customer names
func (ls *LedgerSet) Customers() []string {
	seen := make(map[string]bool)
	for _, e := range ls.Entries {
		name := strings.TrimSpace(e.Customer)
		if name == "" {
			name = "Unknown"
		}
		seen[name] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paginate returns a slice of entries for the given page
func (ls *LedgerSet) Paginate(page, perPage int) *LedgerSet {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}

	start := (page - 1) * perPage
	if start >= len(ls.Entries) {
		return &LedgerSet{}
	}

	end := start + perPage
	if end > len(ls.Entries) {
		end = len(ls.Entries)
	}

	return &LedgerSet{Entries: ls.Entries[start:end]}
}

// TotalPages returns the number of pages for the given page size
func (ls *LedgerSet) TotalPages(perPage int) int {
	if perPage < 1 {
		perPage = 25
	}
	return (len(ls.Entries) + perPage - 1) / perPage
}

// Copy creates a shallow copy of the LedgerSet
func (ls *LedgerSet) Copy() *LedgerSet {
	copied := make([]LedgerEntry, len(ls.Entries))
	copy(copied, ls.Entries)
	return &LedgerSet{Entries: copied}
}
