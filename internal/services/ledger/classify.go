// Package ledger implements the payment-classification and
// period-aggregation pass behind the collections dashboard.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
)

// Category buckets a payment by the invoices its matching key settles
type Category string

const (
	CategoryOpening Category = "opening_balance"
	CategoryCurrent Category = "current_year"
	CategoryPrior   Category = "prior_years"
	CategoryAdvance Category = "advance"
)

// categoryOrder fixes the presentation order of breakdowns
var categoryOrder = []Category{CategoryOpening, CategoryCurrent, CategoryPrior, CategoryAdvance}

// Breakdown is one classification bucket
type Breakdown struct {
	Category   Category        `json:"category"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

// CustomerClosure summarizes one customer's receivables position
type CustomerClosure struct {
	Customer       string          `json:"customer"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Invoiced       decimal.Decimal `json:"invoiced"` // SAL minus RSAL
	Collected      decimal.Decimal `json:"collected"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	ClosurePct     float64         `json:"closure_pct"`
}

// Classification is the full result of classifying a ledger's payments
// against its invoices for a given year
type Classification struct {
	Year           int               `json:"year"`
	TotalCollected decimal.Decimal   `json:"total_collected"`
	PaymentCount   int               `json:"payment_count"`
	UnmatchedCount int               `json:"unmatched_count"`
	Breakdowns     []Breakdown       `json:"breakdowns"`
	Customers      []CustomerClosure `json:"customers"`
}

// Classify matches every payment in the set to the invoice(s) sharing
// its matching key and buckets it: opening balance when an OB row is
// matched, current year when a matched invoice is dated in year, prior
// years otherwise, advance when nothing matches. Breakdown percentages
// sum to exactly 100 whenever anything was collected.
func Classify(set *models.LedgerSet, year int) *Classification {
	invoices := set.Invoices()
	payments := set.Payments()

	index := invoices.GroupByMatching()

	totals := make(map[Category]decimal.Decimal)
	counts := make(map[Category]int)
	totalCollected := decimal.Zero
	unmatched := 0

	for _, p := range payments.Entries {
		cat := classifyPayment(&p, index, year)
		totals[cat] = totals[cat].Add(p.Amount)
		counts[cat]++
		totalCollected = totalCollected.Add(p.Amount)
		if cat == CategoryAdvance {
			unmatched++
		}
	}

	result := &Classification{
		Year:           year,
		TotalCollected: totalCollected,
		PaymentCount:   payments.Len(),
		UnmatchedCount: unmatched,
		Breakdowns:     buildBreakdowns(totals, counts, totalCollected),
		Customers:      buildClosures(invoices, payments),
	}

	return result
}

// classifyPayment buckets a single payment. When a matching key settles
// several invoices the strongest claim wins: OB, then current year,
// then prior years.
func classifyPayment(p *models.LedgerEntry, index map[string]*models.LedgerSet, year int) Category {
	key := p.MatchingKey()
	if key == "" {
		return CategoryAdvance
	}

	matched, ok := index[key]
	if !ok || matched.Len() == 0 {
		return CategoryAdvance
	}

	sawCurrent := false
	for _, inv := range matched.Entries {
		if inv.IsOpening() {
			return CategoryOpening
		}
		if inv.Date.Year() == year {
			sawCurrent = true
		}
	}

	if sawCurrent {
		return CategoryCurrent
	}
	return CategoryPrior
}

// buildBreakdowns turns bucket totals into ordered breakdowns whose
// percentages sum to exactly 100. The rounding residual lands on the
// largest bucket.
func buildBreakdowns(totals map[Category]decimal.Decimal, counts map[Category]int, total decimal.Decimal) []Breakdown {
	breakdowns := make([]Breakdown, 0, len(categoryOrder))
	for _, cat := range categoryOrder {
		breakdowns = append(breakdowns, Breakdown{
			Category: cat,
			Total:    totals[cat],
			Count:    counts[cat],
		})
	}

	if total.IsZero() {
		return breakdowns
	}

	hundred := decimal.NewFromInt(100)
	assigned := decimal.Zero
	largest := 0
	for i := range breakdowns {
		pct := breakdowns[i].Total.Div(total).Mul(hundred).Round(2)
		breakdowns[i].Percentage = pct.InexactFloat64()
		assigned = assigned.Add(pct)
		if breakdowns[i].Total.GreaterThan(breakdowns[largest].Total) {
			largest = i
		}
	}

	residual := hundred.Sub(assigned)
	if !residual.IsZero() {
		adjusted := decimal.NewFromFloat(breakdowns[largest].Percentage).Add(residual)
		breakdowns[largest].Percentage = adjusted.InexactFloat64()
	}

	return breakdowns
}

// buildClosures computes per-customer receivables positions, sorted by
// outstanding balance descending
func buildClosures(invoices, payments *models.LedgerSet) []CustomerClosure {
	byCustomerInv := invoices.GroupByCustomer()
	byCustomerPay := payments.GroupByCustomer()

	names := make(map[string]bool)
	for name := range byCustomerInv {
		names[name] = true
	}
	for name := range byCustomerPay {
		names[name] = true
	}

	closures := make([]CustomerClosure, 0, len(names))
	for name := range names {
		opening := decimal.Zero
		invoiced := decimal.Zero
		if set, ok := byCustomerInv[name]; ok {
			for _, inv := range set.Entries {
				switch {
				case inv.IsOpening():
					opening = opening.Add(inv.Amount)
				case inv.IsReturn():
					invoiced = invoiced.Sub(inv.Amount)
				default:
					invoiced = invoiced.Add(inv.Amount)
				}
			}
		}

		collected := decimal.Zero
		if set, ok := byCustomerPay[name]; ok {
			collected = set.SumAmount()
		}

		owed := opening.Add(invoiced)
		closure := CustomerClosure{
			Customer:       name,
			OpeningBalance: opening,
			Invoiced:       invoiced,
			Collected:      collected,
			Outstanding:    owed.Sub(collected),
		}
		if owed.IsPositive() {
			closure.ClosurePct = collected.Div(owed).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		}

		closures = append(closures, closure)
	}

	sort.Slice(closures, func(i, j int) bool {
		if !closures[i].Outstanding.Equal(closures[j].Outstanding) {
			return closures[i].Outstanding.GreaterThan(closures[j].Outstanding)
		}
		return closures[i].Customer < closures[j].Customer
	})

	return closures
}
