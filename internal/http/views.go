package http

import (
	"spendwise/internal/core"
	"spendwise/internal/services"
)

// View types shape the JSON payloads. Amounts are reported both in cents
// (exact) and in units (convenient for display).

type transactionView struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	AmountCents int64   `json:"amount_cents"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Icon        string  `json:"icon"`
}

func toTransactionView(tx core.Transaction) transactionView {
	return transactionView{
		ID:          tx.ID,
		Type:        string(tx.Type),
		AmountCents: tx.Amount.Cents,
		Amount:      tx.Amount.Units(),
		Category:    tx.CategoryRef,
		Description: tx.Description,
		Date:        tx.Date.UTC().Format("2006-01-02"),
		Icon:        tx.Icon,
	}
}

type transactionListView struct {
	Transactions []transactionView `json:"transactions"`
	Total        int64             `json:"total"`
	Limit        int               `json:"limit,omitempty"`
	Offset       int               `json:"offset,omitempty"`
}

type categoryView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	Type      string `json:"type"`
	IsDefault bool   `json:"is_default"`
	IsActive  bool   `json:"is_active"`
}

func toCategoryView(c core.Category) categoryView {
	return categoryView{
		ID:        c.ID,
		Name:      c.Name,
		Icon:      c.Icon,
		Color:     c.Color,
		Type:      string(c.Type),
		IsDefault: c.IsDefault,
		IsActive:  c.IsActive,
	}
}

func toCategoryViews(categories []core.Category) []categoryView {
	out := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryView(c))
	}
	return out
}

type summaryView struct {
	IncomeCents  int64   `json:"income_cents"`
	ExpenseCents int64   `json:"expense_cents"`
	NetCents     int64   `json:"net_cents"`
	Income       float64 `json:"income"`
	Expense      float64 `json:"expense"`
	Net          float64 `json:"net"`
	IncomeCount  int     `json:"income_count"`
	ExpenseCount int     `json:"expense_count"`
}

func toSummaryView(s core.Summary) summaryView {
	return summaryView{
		IncomeCents:  s.Income.Cents,
		ExpenseCents: s.Expense.Cents,
		NetCents:     s.Net.Cents,
		Income:       s.Income.Units(),
		Expense:      s.Expense.Units(),
		Net:          s.Net.Units(),
		IncomeCount:  s.IncomeCount,
		ExpenseCount: s.ExpenseCount,
	}
}

type monthlyPointView struct {
	Month       string  `json:"month"`
	AmountCents int64   `json:"amount_cents"`
	Amount      float64 `json:"amount"`
}

func toMonthlySeriesView(series []core.MonthlyPoint) []monthlyPointView {
	out := make([]monthlyPointView, 0, len(series))
	for _, p := range series {
		out = append(out, monthlyPointView{
			Month:       p.Month,
			AmountCents: p.Amount.Cents,
			Amount:      p.Amount.Units(),
		})
	}
	return out
}

type breakdownEntryView struct {
	CategoryID int64   `json:"category_id"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon"`
	Color      string  `json:"color"`
	TotalCents int64   `json:"total_cents"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage int     `json:"percentage"`
}

func toBreakdownView(entries []core.BreakdownEntry) []breakdownEntryView {
	out := make([]breakdownEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, breakdownEntryView{
			CategoryID: e.CategoryID,
			Name:       e.Name,
			Icon:       e.Icon,
			Color:      e.Color,
			TotalCents: e.Total.Cents,
			Total:      e.Total.Units(),
			Count:      e.Count,
			Percentage: e.Percentage,
		})
	}
	return out
}

type progressEntryView struct {
	CategoryID   int64   `json:"category_id"`
	Name         string  `json:"name"`
	Icon         string  `json:"icon"`
	Color        string  `json:"color"`
	TotalCents   int64   `json:"total_cents"`
	Total        float64 `json:"total"`
	CeilingCents int64   `json:"ceiling_cents"`
	Percent      int     `json:"percent"`
}

func toProgressView(entries []core.CategoryProgress) []progressEntryView {
	out := make([]progressEntryView, 0, len(entries))
	for _, p := range entries {
		out = append(out, progressEntryView{
			CategoryID:   p.CategoryID,
			Name:         p.Name,
			Icon:         p.Icon,
			Color:        p.Color,
			TotalCents:   p.Total.Cents,
			Total:        p.Total.Units(),
			CeilingCents: p.CeilingCents,
			Percent:      p.Percent,
		})
	}
	return out
}

type usageStatView struct {
	Category         categoryView `json:"category"`
	TransactionCount int64        `json:"transaction_count"`
}

func toUsageStatsView(stats []services.UsageStat) []usageStatView {
	out := make([]usageStatView, 0, len(stats))
	for _, st := range stats {
		out = append(out, usageStatView{
			Category:         toCategoryView(st.Category),
			TransactionCount: st.Count,
		})
	}
	return out
}
