package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func invoice(dateStr, customer, number, matching, amt string) models.LedgerEntry {
	return models.LedgerEntry{
		Date:     date(dateStr),
		Customer: customer,
		Number:   number,
		Kind:     models.KindInvoice,
		Amount:   amount(amt),
		Matching: matching,
	}
}

func payment(dateStr, customer, matching, amt string) models.LedgerEntry {
	return models.LedgerEntry{
		Date:     date(dateStr),
		Customer: customer,
		Kind:     models.KindPayment,
		Amount:   amount(amt),
		Matching: matching,
	}
}

func TestClassifyPaymentCategories(t *testing.T) {
	set := models.NewLedgerSet([]models.LedgerEntry{
		invoice("2024-01-01", "Al Noor Trading", "OB-2024-001", "alnoor-ob", "5000"),
		invoice("2024-03-10", "Al Noor Trading", "SAL-2024-012", "alnoor-mar", "1200"),
		invoice("2023-11-02", "Delta Foods", "SAL-2023-180", "delta-nov23", "900"),
		payment("2024-02-01", "Al Noor Trading", "alnoor-ob", "2000"),
		payment("2024-03-20", "Al Noor Trading", "alnoor-mar", "1200"),
		payment("2024-04-05", "Delta Foods", "delta-nov23", "900"),
		payment("2024-04-09", "Delta Foods", "", "300"),
	})

	c := Classify(set, 2024)

	want := map[Category]string{
		CategoryOpening: "2000",
		CategoryCurrent: "1200",
		CategoryPrior:   "900",
		CategoryAdvance: "300",
	}

	for _, b := range c.Breakdowns {
		if b.Total.String() != want[b.Category] {
			t.Errorf("category %s total = %s, want %s", b.Category, b.Total, want[b.Category])
		}
	}

	if c.TotalCollected.String() != "4400" {
		t.Errorf("TotalCollected = %s, want 4400", c.TotalCollected)
	}
	if c.PaymentCount != 4 {
		t.Errorf("PaymentCount = %d, want 4", c.PaymentCount)
	}
	if c.UnmatchedCount != 1 {
		t.Errorf("UnmatchedCount = %d, want 1", c.UnmatchedCount)
	}
}

func TestClassifyOpeningWinsOverCurrent(t *testing.T) {
	// One matching key settling both an OB row and a current-year
	// invoice counts as opening-balance collection.
	set := models.NewLedgerSet([]models.LedgerEntry{
		invoice("2024-01-01", "Al Noor Trading", "OB-2024-001", "shared", "5000"),
		invoice("2024-02-01", "Al Noor Trading", "SAL-2024-003", "shared", "800"),
		payment("2024-02-15", "Al Noor Trading", "shared", "1000"),
	})

	c := Classify(set, 2024)

	for _, b := range c.Breakdowns {
		switch b.Category {
		case CategoryOpening:
			if b.Total.String() != "1000" {
				t.Errorf("opening total = %s, want 1000", b.Total)
			}
		default:
			if !b.Total.IsZero() {
				t.Errorf("category %s total = %s, want 0", b.Category, b.Total)
			}
		}
	}
}

func TestClassifyMatchingKeyNormalization(t *testing.T) {
	set := models.NewLedgerSet([]models.LedgerEntry{
		invoice("2024-05-01", "Delta Foods", "SAL-2024-044", "  Delta-MAY ", "700"),
		payment("2024-05-20", "Delta Foods", "delta-may", "700"),
	})

	c := Classify(set, 2024)

	for _, b := range c.Breakdowns {
		if b.Category == CategoryCurrent && b.Total.String() != "700" {
			t.Errorf("current-year total = %s, want 700 (matching keys should be case/space insensitive)", b.Total)
		}
		if b.Category == CategoryAdvance && !b.Total.IsZero() {
			t.Errorf("advance total = %s, want 0", b.Total)
		}
	}
}

func TestClassifyPercentagesSumToHundred(t *testing.T) {
	// Three-way split that does not divide evenly: residual must land
	// on the largest bucket so percentages still sum to exactly 100.
	set := models.NewLedgerSet([]models.LedgerEntry{
		invoice("2024-01-01", "A", "OB-2024-001", "a-ob", "1000"),
		invoice("2024-02-01", "B", "SAL-2024-002", "b-cur", "1000"),
		invoice("2022-02-01", "C", "SAL-2022-002", "c-old", "1000"),
		payment("2024-03-01", "A", "a-ob", "100"),
		payment("2024-03-02", "B", "b-cur", "100"),
		payment("2024-03-03", "C", "c-old", "100"),
	})

	c := Classify(set, 2024)

	sum := decimal.Zero
	for _, b := range c.Breakdowns {
		sum = sum.Add(decimal.NewFromFloat(b.Percentage))
	}
	if !sum.Equal(decimal.NewFromInt(100)) {
		t.Errorf("percentages sum to %s, want exactly 100", sum)
	}
}

func TestClassifyEmptyLedger(t *testing.T) {
	c := Classify(models.NewLedgerSet(nil), 2024)

	if !c.TotalCollected.IsZero() {
		t.Errorf("TotalCollected = %s, want 0", c.TotalCollected)
	}
	if len(c.Breakdowns) != 4 {
		t.Fatalf("expected 4 breakdowns, got %d", len(c.Breakdowns))
	}
	for _, b := range c.Breakdowns {
		if b.Percentage != 0 {
			t.Errorf("category %s percentage = %v, want 0 for empty ledger", b.Category, b.Percentage)
		}
	}
}

func TestCustomerClosures(t *testing.T) {
	set := models.NewLedgerSet([]models.LedgerEntry{
		invoice("2024-01-01", "Al Noor Trading", "OB-2024-001", "alnoor-ob", "5000"),
		invoice("2024-03-10", "Al Noor Trading", "SAL-2024-012", "alnoor-mar", "1200"),
		invoice("2024-03-18", "Al Noor Trading", "RSAL-2024-002", "", "200"),
		payment("2024-02-01", "Al Noor Trading", "alnoor-ob", "3000"),
	})

	c := Classify(set, 2024)

	if len(c.Customers) != 1 {
		t.Fatalf("expected 1 customer closure, got %d", len(c.Customers))
	}

	cl := c.Customers[0]
	if cl.OpeningBalance.String() != "5000" {
		t.Errorf("OpeningBalance = %s, want 5000", cl.OpeningBalance)
	}
	if cl.Invoiced.String() != "1000" {
		t.Errorf("Invoiced = %s, want 1000 (1200 SAL - 200 RSAL)", cl.Invoiced)
	}
	if cl.Collected.String() != "3000" {
		t.Errorf("Collected = %s, want 3000", cl.Collected)
	}
	if cl.Outstanding.String() != "3000" {
		t.Errorf("Outstanding = %s, want 3000", cl.Outstanding)
	}
	if cl.ClosurePct != 50 {
		t.Errorf("ClosurePct = %v, want 50", cl.ClosurePct)
	}
}

func TestCustomerClosuresSortedByOutstanding(t *testing.T) {
	set := models.NewLedgerSet([]models.LedgerEntry{
		invoice("2024-01-01", "Small Shop", "SAL-2024-001", "", "100"),
		invoice("2024-01-01", "Big Buyer", "SAL-2024-002", "", "9000"),
		invoice("2024-01-01", "Mid Market", "SAL-2024-003", "", "500"),
	})

	c := Classify(set, 2024)

	want := []string{"Big Buyer", "Mid Market", "Small Shop"}
	if len(c.Customers) != len(want) {
		t.Fatalf("expected %d closures, got %d", len(want), len(c.Customers))
	}
	for i, name := range want {
		if c.Customers[i].Customer != name {
			t.Errorf("closure[%d] = %s, want %s", i, c.Customers[i].Customer, name)
		}
	}
}
