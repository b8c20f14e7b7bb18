package sales

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
)

func inv(dateStr, number, customer, amt string) models.SalesInvoice {
	d, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		panic(err)
	}
	return models.SalesInvoice{
		Date:     d,
		Number:   number,
		Customer: customer,
		Amount:   decimal.RequireFromString(amt),
	}
}

func TestSummarize(t *testing.T) {
	set := models.NewSalesSet([]models.SalesInvoice{
		inv("2024-01-10", "SAL-2024-001", "Al Noor Trading", "1000"),
		inv("2024-01-15", "SAL-2024-002", "Delta Foods", "500"),
		inv("2024-01-20", "RSAL-2024-001", "Al Noor Trading", "200"),
	})

	s := Summarize(set)

	if s.GrossSales.String() != "1500" {
		t.Errorf("GrossSales = %s, want 1500", s.GrossSales)
	}
	if s.Returns.String() != "200" {
		t.Errorf("Returns = %s, want 200", s.Returns)
	}
	if s.NetSales.String() != "1300" {
		t.Errorf("NetSales = %s, want 1300", s.NetSales)
	}
	if s.InvoiceCount != 2 || s.ReturnCount != 1 {
		t.Errorf("counts = (%d, %d), want (2, 1)", s.InvoiceCount, s.ReturnCount)
	}
	if s.AvgInvoice.String() != "750" {
		t.Errorf("AvgInvoice = %s, want 750", s.AvgInvoice)
	}
}

// RSAL numbers must never be counted as SAL: the prefix check consumes
// all leading letters.
func TestReturnPrefixNotMistakenForSale(t *testing.T) {
	set := models.NewSalesSet([]models.SalesInvoice{
		inv("2024-01-10", "RSAL-2024-009", "Delta Foods", "300"),
	})

	s := Summarize(set)

	if !s.GrossSales.IsZero() {
		t.Errorf("GrossSales = %s, want 0 (RSAL is a return)", s.GrossSales)
	}
	if s.Returns.String() != "300" {
		t.Errorf("Returns = %s, want 300", s.Returns)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(models.NewSalesSet(nil))
	if !s.NetSales.IsZero() || !s.AvgInvoice.IsZero() {
		t.Errorf("empty set should produce zero summary, got net=%s avg=%s", s.NetSales, s.AvgInvoice)
	}
}

func TestMonthlySeries(t *testing.T) {
	set := models.NewSalesSet([]models.SalesInvoice{
		inv("2024-02-10", "SAL-2024-010", "A", "400"),
		inv("2024-01-05", "SAL-2024-001", "A", "1000"),
		inv("2024-01-22", "RSAL-2024-001", "A", "100"),
	})

	series := MonthlySeries(set)

	if len(series) != 2 {
		t.Fatalf("expected 2 months, got %d", len(series))
	}
	if series[0].Month != "2024-01" || series[1].Month != "2024-02" {
		t.Errorf("months not chronological: %s, %s", series[0].Month, series[1].Month)
	}
	if series[0].Net.String() != "900" {
		t.Errorf("2024-01 net = %s, want 900", series[0].Net)
	}
	if series[1].Net.String() != "400" {
		t.Errorf("2024-02 net = %s, want 400", series[1].Net)
	}
}

func TestTopCustomers(t *testing.T) {
	set := models.NewSalesSet([]models.SalesInvoice{
		inv("2024-01-10", "SAL-2024-001", "Big Buyer", "5000"),
		inv("2024-01-11", "SAL-2024-002", "Small Shop", "100"),
		inv("2024-01-12", "SAL-2024-003", "Mid Market", "800"),
		inv("2024-01-13", "RSAL-2024-001", "Big Buyer", "500"),
	})

	top := TopCustomers(set, 2)

	if len(top) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(top))
	}
	if top[0].Customer != "Big Buyer" || top[0].Net.String() != "4500" {
		t.Errorf("top[0] = %s/%s, want Big Buyer/4500", top[0].Customer, top[0].Net)
	}
	if top[1].Customer != "Mid Market" {
		t.Errorf("top[1] = %s, want Mid Market", top[1].Customer)
	}
}
