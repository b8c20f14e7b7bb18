// Package sales computes the sales-reporting aggregates: gross/net
// totals, monthly series and top customers.
package sales

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
)

// Summary is the sales dashboard headline block
type Summary struct {
	GrossSales   decimal.Decimal `json:"gross_sales"`
	Returns      decimal.Decimal `json:"returns"`
	NetSales     decimal.Decimal `json:"net_sales"`
	InvoiceCount int             `json:"invoice_count"`
	ReturnCount  int             `json:"return_count"`
	AvgInvoice   decimal.Decimal `json:"avg_invoice"`
}

// MonthlyTotal is one month of the sales series
type MonthlyTotal struct {
	Month   string          `json:"month"`
	Gross   decimal.Decimal `json:"gross"`
	Returns decimal.Decimal `json:"returns"`
	Net     decimal.Decimal `json:"net"`
	Count   int             `json:"count"`
}

// CustomerTotal is one customer's net sales
type CustomerTotal struct {
	Customer string          `json:"customer"`
	Net      decimal.Decimal `json:"net"`
	Count    int             `json:"count"`
}

// Summarize computes headline totals. Returns (RSAL) are recorded with
// positive amounts and subtracted here.
func Summarize(set *models.SalesSet) *Summary {
	standard := set.Standard()
	returns := set.Returns()

	gross := standard.SumAmount()
	returned := returns.SumAmount()

	s := &Summary{
		GrossSales:   gross,
		Returns:      returned,
		NetSales:     gross.Sub(returned),
		InvoiceCount: standard.Len(),
		ReturnCount:  returns.Len(),
	}
	if s.InvoiceCount > 0 {
		s.AvgInvoice = gross.Div(decimal.NewFromInt(int64(s.InvoiceCount))).Round(2)
	}

	return s
}

// MonthlySeries returns per-month totals sorted chronologically
func MonthlySeries(set *models.SalesSet) []MonthlyTotal {
	byMonth := set.GroupByMonth()

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	series := make([]MonthlyTotal, 0, len(months))
	for _, m := range months {
		monthSet := byMonth[m]
		gross := monthSet.Standard().SumAmount()
		returned := monthSet.Returns().SumAmount()
		series = append(series, MonthlyTotal{
			Month:   m,
			Gross:   gross,
			Returns: returned,
			Net:     gross.Sub(returned),
			Count:   monthSet.Len(),
		})
	}

	return series
}

// TopCustomers returns the n customers with the highest net sales
func TopCustomers(set *models.SalesSet, n int) []CustomerTotal {
	if n < 1 {
		n = 10
	}

	byCustomer := set.GroupByCustomer()

	totals := make([]CustomerTotal, 0, len(byCustomer))
	for name, custSet := range byCustomer {
		gross := custSet.Standard().SumAmount()
		returned := custSet.Returns().SumAmount()
		totals = append(totals, CustomerTotal{
			Customer: name,
			Net:      gross.Sub(returned),
			Count:    custSet.Len(),
		})
	}

	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].Net.Equal(totals[j].Net) {
			return totals[i].Net.GreaterThan(totals[j].Net)
		}
		return totals[i].Customer < totals[j].Customer
	})

	if len(totals) > n {
		totals = totals[:n]
	}

	return totals
}
