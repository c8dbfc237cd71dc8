// Package memory provides an in-process report sink, used in tests and when
// no Google Sheets credentials are configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"spendwise/internal/services"
)

type Store struct {
	mu      sync.Mutex
	reports []services.MonthlyReport
}

func New() *Store {
	return &Store{}
}

// Export stores the report and returns a synthetic reference.
func (s *Store) Export(_ context.Context, report services.MonthlyReport) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Reports returns a copy of everything exported so far.
func (s *Store) Reports() []services.MonthlyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]services.MonthlyReport(nil), s.reports...)
}
