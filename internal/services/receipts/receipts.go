// Package receipts aggregates cash receipts (payment rows) by day and
// by settlement method.
package receipts

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
)

// DayTotal is one day's collected cash
type DayTotal struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// MethodTotal is one settlement method's share of collections
type MethodTotal struct {
	Method     string          `json:"method"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

// Daily returns per-day receipt totals sorted chronologically
func Daily(set *models.LedgerSet) []DayTotal {
	byDay := make(map[string]*DayTotal)

	for _, p := range set.Payments().Entries {
		key := p.Date.Format("2006-01-02")
		d, ok := byDay[key]
		if !ok {
			d = &DayTotal{Date: key, Total: decimal.Zero}
			byDay[key] = d
		}
		d.Total = d.Total.Add(p.Amount)
		d.Count++
	}

	days := make([]DayTotal, 0, len(byDay))
	for _, d := range byDay {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})

	return days
}

// ByMethod returns receipt totals per settlement method with each
// method's share of the total, largest first. Rows without a method are
// grouped under "unspecified".
func ByMethod(set *models.LedgerSet) []MethodTotal {
	byMethod := make(map[string]*MethodTotal)
	total := decimal.Zero

	for _, p := range set.Payments().Entries {
		method := strings.ToLower(strings.TrimSpace(p.Method))
		if method == "" {
			method = "unspecified"
		}
		m, ok := byMethod[method]
		if !ok {
			m = &MethodTotal{Method: method, Total: decimal.Zero}
			byMethod[method] = m
		}
		m.Total = m.Total.Add(p.Amount)
		m.Count++
		total = total.Add(p.Amount)
	}

	methods := make([]MethodTotal, 0, len(byMethod))
	for _, m := range byMethod {
		if total.IsPositive() {
			m.Percentage = m.Total.Div(total).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		}
		methods = append(methods, *m)
	}
	sort.Slice(methods, func(i, j int) bool {
		if !methods[i].Total.Equal(methods[j].Total) {
			return methods[i].Total.GreaterThan(methods[j].Total)
		}
		return methods[i].Method < methods[j].Method
	})

	return methods
}

// Recent returns the n most recent receipts, newest first
func Recent(set *models.LedgerSet, n int) []models.LedgerEntry {
	if n < 1 {
		n = 10
	}

	payments := set.Payments().SortByDateDesc()
	if payments.Len() > n {
		return payments.Entries[:n]
	}
	return payments.Entries
}
