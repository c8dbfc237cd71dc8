// Package worker exports computed monthly reports in response to ledger
// events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/services"
	"spendwise/internal/sheets"
	"spendwise/internal/storage"
)

// ReportWorker recomputes and exports an owner's monthly report whenever
// their ledger changes.
type ReportWorker struct {
	storage  *storage.SQLiteRepository
	reports  *services.ReportService
	exporter sheets.ReportExporter
}

func NewReportWorker(storage *storage.SQLiteRepository, reports *services.ReportService, exporter sheets.ReportExporter) *ReportWorker {
	return &ReportWorker{
		storage:  storage,
		reports:  reports,
		exporter: exporter,
	}
}

// HandleLedgerEvent processes one ledger event from AMQP. The affected month
// is taken from the transaction when it still exists; deletions and resets
// fall back to the current month.
func (w *ReportWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	year, month := w.eventPeriod(ctx, msg)

	if err := w.export(ctx, msg.OwnerID, year, month); err != nil {
		return fmt.Errorf("export report for %s: %w", msg.OwnerID, err)
	}
	return nil
}

func (w *ReportWorker) eventPeriod(ctx context.Context, msg *amqp.LedgerEventMessage) (int, time.Month) {
	if msg.Entity == amqp.EntityTransaction && msg.ID > 0 &&
		(msg.Op == amqp.OpCreated || msg.Op == amqp.OpUpdated) {
		tx, err := w.storage.GetTransaction(ctx, msg.OwnerID, msg.ID)
		if err == nil {
			return tx.Date.Year(), tx.Date.Month()
		}
		if !errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Could not load transaction for event, using current month",
				"owner_id", msg.OwnerID, "id", msg.ID, "error", err)
		}
	}
	now := time.Now().UTC()
	return now.Year(), now.Month()
}

// ExportAll exports the current month's report for every owner on record.
// This is a backup mechanism in case AMQP messages are lost.
func (w *ReportWorker) ExportAll(ctx context.Context) error {
	owners, err := w.storage.ListOwners(ctx)
	if err != nil {
		return fmt.Errorf("list owners: %w", err)
	}
	if len(owners) == 0 {
		return nil
	}

	now := time.Now().UTC()
	errorCount := 0
	for _, owner := range owners {
		if err := w.export(ctx, owner, now.Year(), now.Month()); err != nil {
			slog.ErrorContext(ctx, "Failed to export report", "owner_id", owner, "error", err)
			errorCount++
		}
	}

	slog.InfoContext(ctx, "Periodic export completed",
		"owners", len(owners),
		"errors", errorCount)
	return nil
}

func (w *ReportWorker) export(ctx context.Context, ownerID string, year int, month time.Month) error {
	report, err := w.reports.Monthly(ctx, ownerID, year, month)
	if err != nil {
		return fmt.Errorf("compute monthly report: %w", err)
	}

	ref, err := w.exporter.Export(ctx, report)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	slog.InfoContext(ctx, "Report exported",
		"owner_id", ownerID,
		"year", year,
		"month", int(month),
		"report_ref", ref)
	return nil
}
