package receipts

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
)

func pay(dateStr, customer, method, amt string) models.LedgerEntry {
	d, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		panic(err)
	}
	return models.LedgerEntry{
		Date:     d,
		Customer: customer,
		Kind:     models.KindPayment,
		Amount:   decimal.RequireFromString(amt),
		Method:   method,
	}
}

func TestDaily(t *testing.T) {
	set := models.NewLedgerSet([]models.LedgerEntry{
		pay("2024-03-02", "A", "cash", "100"),
		pay("2024-03-01", "B", "bank", "250"),
		pay("2024-03-02", "C", "cash", "50"),
	})

	days := Daily(set)

	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Date != "2024-03-01" || days[0].Total.String() != "250" {
		t.Errorf("days[0] = %s/%s, want 2024-03-01/250", days[0].Date, days[0].Total)
	}
	if days[1].Date != "2024-03-02" || days[1].Total.String() != "150" || days[1].Count != 2 {
		t.Errorf("days[1] = %s/%s/%d, want 2024-03-02/150/2", days[1].Date, days[1].Total, days[1].Count)
	}
}

func TestByMethod(t *testing.T) {
	set := models.NewLedgerSet([]models.LedgerEntry{
		pay("2024-03-01", "A", "Cash", "300"),
		pay("2024-03-02", "B", "cash", "100"),
		pay("2024-03-03", "C", "cheque", "100"),
		pay("2024-03-04", "D", "", "0"),
	})

	methods := ByMethod(set)

	if len(methods) != 3 {
		t.Fatalf("expected 3 methods, got %d", len(methods))
	}
	if methods[0].Method != "cash" || methods[0].Total.String() != "400" {
		t.Errorf("methods[0] = %s/%s, want cash/400", methods[0].Method, methods[0].Total)
	}
	if methods[0].Percentage != 80 {
		t.Errorf("cash share = %v, want 80", methods[0].Percentage)
	}
	if methods[1].Method != "cheque" || methods[1].Percentage != 20 {
		t.Errorf("methods[1] = %s/%v, want cheque/20", methods[1].Method, methods[1].Percentage)
	}
	if methods[2].Method != "unspecified" {
		t.Errorf("methods[2] = %s, want unspecified", methods[2].Method)
	}
}

func TestRecent(t *testing.T) {
	set := models.NewLedgerSet([]models.LedgerEntry{
		pay("2024-03-01", "A", "cash", "1"),
		pay("2024-03-05", "B", "cash", "2"),
		pay("2024-03-03", "C", "cash", "3"),
	})

	recent := Recent(set, 2)

	if len(recent) != 2 {
		t.Fatalf("expected 2 receipts, got %d", len(recent))
	}
	if recent[0].Customer != "B" || recent[1].Customer != "C" {
		t.Errorf("recent order = %s, %s; want B, C", recent[0].Customer, recent[1].Customer)
	}
}
