package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
)

// Period is a bucketing window for collections
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ParsePeriod validates a period query value
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// DefaultWindow is the rolling-average window used when the request
// does not name one
func (p Period) DefaultWindow() int {
	switch p {
	case PeriodDaily:
		return 7
	case PeriodWeekly:
		return 4
	case PeriodMonthly:
		return 3
	default:
		return 1
	}
}

// Bucket is one period window of collections
type Bucket struct {
	Label string          `json:"label"`
	Start time.Time       `json:"start"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// BucketPayments groups the set's payment rows into period windows,
// sorted chronologically. Weeks are ISO weeks.
func BucketPayments(set *models.LedgerSet, period Period) []Bucket {
	byLabel := make(map[string]*Bucket)

	for _, p := range set.Payments().Entries {
		label, start := periodKey(p.Date, period)
		b, ok := byLabel[label]
		if !ok {
			b = &Bucket{Label: label, Start: start, Total: decimal.Zero}
			byLabel[label] = b
		}
		b.Total = b.Total.Add(p.Amount)
		b.Count++
	}

	buckets := make([]Bucket, 0, len(byLabel))
	for _, b := range byLabel {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})

	return buckets
}

// periodKey returns the bucket label and canonical start time for a date
func periodKey(t time.Time, period Period) (string, time.Time) {
	switch period {
	case PeriodWeekly:
		year, week := t.ISOWeek()
		// Monday of the ISO week
		start := t
		for start.Weekday() != time.Monday {
			start = start.AddDate(0, 0, -1)
		}
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, t.Location())
		return fmt.Sprintf("%d-W%02d", year, week), start
	case PeriodMonthly:
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return t.Format("2006-01"), start
	case PeriodYearly:
		start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
		return t.Format("2006"), start
	default: // daily
		start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return t.Format("2006-01-02"), start
	}
}

// RollingAverage returns the trailing mean of bucket totals over the
// given window. The window expands at the head so the series has the
// same length as the input.
func RollingAverage(buckets []Bucket, window int) []float64 {
	if window < 1 {
		window = 1
	}

	averages := make([]float64, len(buckets))
	sum := decimal.Zero
	for i := range buckets {
		sum = sum.Add(buckets[i].Total)
		if i >= window {
			sum = sum.Sub(buckets[i-window].Total)
		}

		n := i + 1
		if n > window {
			n = window
		}
		averages[i] = sum.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
	}

	return averages
}
