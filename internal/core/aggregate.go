package core

import (
	"sort"
	"time"
)

type (
	// MonthlyPoint is one bucket of the monthly spending series.
	MonthlyPoint struct {
		Month  string // short month name, "Jan".."Dec"
		Amount Money
	}

	// BreakdownEntry is the per-category rollup for a date range. Percentage
	// is the category's share of total expenses in the range, rounded half up
	// to a whole percent.
	BreakdownEntry struct {
		CategoryID int64
		Name       string
		Icon       string
		Color      string
		Total      Money
		Count      int
		Percentage int
	}

	// Summary carries period totals. Net may be negative.
	Summary struct {
		Income       Money
		Expense      Money
		Net          Money
		IncomeCount  int
		ExpenseCount int
	}
)

// Derived views are recomputed in full from the current transaction set on
// every read. There is deliberately no incremental or cached aggregation
// state; at personal-finance volumes full recomputation stays cheap and
// staleness becomes impossible by construction.

// MonthlySeries buckets expense transactions of targetYear by calendar month
// of the transaction date. All twelve months are reported in calendar order;
// months without activity report zero.
func MonthlySeries(txns []Transaction, targetYear int) []MonthlyPoint {
	var totals [12]int64
	for _, tx := range txns {
		if tx.Type != Expense {
			continue
		}
		if tx.Date.Year() != targetYear {
			continue
		}
		totals[int(tx.Date.Month())-1] += tx.Amount.Cents
	}
	series := make([]MonthlyPoint, 12)
	for i := 0; i < 12; i++ {
		series[i] = MonthlyPoint{
			Month:  time.Month(i + 1).String()[:3],
			Amount: Money{Cents: totals[i]},
		}
	}
	return series
}

// CategoryBreakdown groups expense transactions dated within [start, end) by
// their resolved canonical category. Legacy free-text references and
// canonical ids that resolve to the same category merge into one bucket.
// Entries are sorted by total descending, ties broken by category id
// ascending so the result is deterministic.
func CategoryBreakdown(txns []Transaction, reg *Registry, start, end time.Time) []BreakdownEntry {
	type bucket struct {
		cat   Category
		total int64
		count int
	}
	buckets := make(map[int64]*bucket)
	for _, tx := range txns {
		if tx.Type != Expense {
			continue
		}
		if tx.Date.Before(start) || !tx.Date.Before(end) {
			continue
		}
		cat := reg.Resolve(tx.CategoryRef)
		b, ok := buckets[cat.ID]
		if !ok {
			b = &bucket{cat: cat}
			buckets[cat.ID] = b
		}
		b.total += tx.Amount.Cents
		b.count++
	}

	var rangeTotal int64
	entries := make([]BreakdownEntry, 0, len(buckets))
	for _, b := range buckets {
		rangeTotal += b.total
		entries = append(entries, BreakdownEntry{
			CategoryID: b.cat.ID,
			Name:       b.cat.Name,
			Icon:       b.cat.Icon,
			Color:      b.cat.Color,
			Total:      Money{Cents: b.total},
			Count:      b.count,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total.Cents != entries[j].Total.Cents {
			return entries[i].Total.Cents > entries[j].Total.Cents
		}
		return entries[i].CategoryID < entries[j].CategoryID
	})
	for i := range entries {
		entries[i].Percentage = roundedPercent(entries[i].Total.Cents, rangeTotal)
	}
	return entries
}

// Summarize totals income and expense transactions dated within [start, end).
func Summarize(txns []Transaction, start, end time.Time) Summary {
	var s Summary
	for _, tx := range txns {
		if tx.Date.Before(start) || !tx.Date.Before(end) {
			continue
		}
		switch tx.Type {
		case Income:
			s.Income.Cents += tx.Amount.Cents
			s.IncomeCount++
		case Expense:
			s.Expense.Cents += tx.Amount.Cents
			s.ExpenseCount++
		}
	}
	s.Net = Money{Cents: s.Income.Cents - s.Expense.Cents}
	return s
}

// MonthRange returns the [start, end) bounds of a calendar month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// roundedPercent computes part/whole as a whole percentage with half-up
// rounding. A zero whole yields 0, never a division by zero. The per-entry
// rounding means a breakdown's percentages can sum to slightly over or under
// 100; that drift is accepted rather than normalized away.
func roundedPercent(part, whole int64) int {
	if whole <= 0 {
		return 0
	}
	return int((part*100 + whole/2) / whole)
}
