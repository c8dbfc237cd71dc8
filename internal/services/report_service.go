package services

import (
	"context"
	"fmt"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/storage"
)

// ReportService computes derived views over an owner's ledger. Every view is
// recomputed in full from current storage state on each call.
type ReportService struct {
	storage *storage.SQLiteRepository
	budget  core.BudgetConfig
}

func NewReportService(storage *storage.SQLiteRepository, budget core.BudgetConfig) *ReportService {
	return &ReportService{
		storage: storage,
		budget:  budget,
	}
}

// MonthlyReport bundles the derived views for one calendar month.
type MonthlyReport struct {
	OwnerID   string
	Year      int
	Month     time.Month
	Summary   core.Summary
	Breakdown []core.BreakdownEntry
	Progress  []core.CategoryProgress
}

// MonthlySeries returns the owner's per-month expense totals for a year.
func (s *ReportService) MonthlySeries(ctx context.Context, ownerID string, year int) ([]core.MonthlyPoint, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	txns, err := s.storage.ListTransactions(ctx, ownerID, storage.TransactionFilter{
		From: from,
		To:   from.AddDate(1, 0, 0),
		Type: core.Expense,
	})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return core.MonthlySeries(txns, year), nil
}

// Breakdown returns the per-category expense rollup for [start, end).
func (s *ReportService) Breakdown(ctx context.Context, ownerID string, start, end time.Time) ([]core.BreakdownEntry, error) {
	txns, reg, err := s.load(ctx, ownerID, start, end)
	if err != nil {
		return nil, err
	}
	return core.CategoryBreakdown(txns, reg, start, end), nil
}

// Summary returns the income/expense/net totals for [start, end).
func (s *ReportService) Summary(ctx context.Context, ownerID string, start, end time.Time) (core.Summary, error) {
	txns, err := s.storage.ListTransactions(ctx, ownerID, storage.TransactionFilter{From: start, To: end})
	if err != nil {
		return core.Summary{}, fmt.Errorf("load transactions: %w", err)
	}
	return core.Summarize(txns, start, end), nil
}

// Progress evaluates budget progress per category for one calendar month.
func (s *ReportService) Progress(ctx context.Context, ownerID string, year int, month time.Month) ([]core.CategoryProgress, error) {
	start, end := core.MonthRange(year, month)
	breakdown, err := s.Breakdown(ctx, ownerID, start, end)
	if err != nil {
		return nil, err
	}
	return core.ProgressByCategory(breakdown, s.budget)
}

// Monthly assembles the full report for one calendar month, the unit the
// export worker ships out.
func (s *ReportService) Monthly(ctx context.Context, ownerID string, year int, month time.Month) (MonthlyReport, error) {
	start, end := core.MonthRange(year, month)

	txns, reg, err := s.load(ctx, ownerID, start, end)
	if err != nil {
		return MonthlyReport{}, err
	}

	breakdown := core.CategoryBreakdown(txns, reg, start, end)
	progress, err := core.ProgressByCategory(breakdown, s.budget)
	if err != nil {
		return MonthlyReport{}, err
	}

	return MonthlyReport{
		OwnerID:   ownerID,
		Year:      year,
		Month:     month,
		Summary:   core.Summarize(txns, start, end),
		Breakdown: breakdown,
		Progress:  progress,
	}, nil
}

func (s *ReportService) load(ctx context.Context, ownerID string, start, end time.Time) ([]core.Transaction, *core.Registry, error) {
	txns, err := s.storage.ListTransactions(ctx, ownerID, storage.TransactionFilter{From: start, To: end})
	if err != nil {
		return nil, nil, fmt.Errorf("load transactions: %w", err)
	}
	categories, err := s.storage.ListCategories(ctx, ownerID, false)
	if err != nil {
		return nil, nil, fmt.Errorf("load categories: %w", err)
	}
	return txns, core.NewRegistry(categories), nil
}
