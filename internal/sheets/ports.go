package sheets

import (
	"context"

	"spendwise/internal/services"
)

// Ports for outbound adapters.
type (
	// ReportExporter ships a computed monthly report to an external sink.
	ReportExporter interface {
		Export(ctx context.Context, report services.MonthlyReport) (ref string, err error)
	}
)
