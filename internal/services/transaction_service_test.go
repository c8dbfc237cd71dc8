package services

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/storage"
)

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// seededLedger creates a repo with the stock categories installed for alice
// and returns the repo plus the seeded set keyed by name.
func seededLedger(t *testing.T) (*storage.SQLiteRepository, map[string]core.Category) {
	t.Helper()
	repo := newTestStorage(t)
	seeded, err := repo.SeedDefaultCategories(context.Background(), "alice")
	if err != nil {
		t.Fatalf("SeedDefaultCategories() error = %v", err)
	}
	byName := make(map[string]core.Category, len(seeded))
	for _, c := range seeded {
		byName[c.Name] = c
	}
	return repo, byName
}

func TestTransactionService_Append(t *testing.T) {
	repo, cats := seededLedger(t)
	svc := NewTransactionService(repo, nil)
	ctx := context.Background()

	food := cats["Food & Dining"]
	tx := core.Transaction{
		OwnerID:     "alice",
		Type:        core.Expense,
		Amount:      core.Money{Cents: 4_200},
		CategoryRef: strconv.FormatInt(food.ID, 10),
		Description: "weekly groceries",
		Date:        time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC),
	}

	created, err := svc.Append(ctx, tx)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if created.ID == 0 {
		t.Error("expected assigned id")
	}
	// Icon is derived from the resolved category.
	if created.Icon != food.Icon {
		t.Errorf("icon = %q, want %q", created.Icon, food.Icon)
	}
}

func TestTransactionService_AppendRejectsInvalid(t *testing.T) {
	repo, cats := seededLedger(t)
	svc := NewTransactionService(repo, nil)
	ctx := context.Background()

	valid := core.Transaction{
		OwnerID:     "alice",
		Type:        core.Expense,
		Amount:      core.Money{Cents: 1_000},
		CategoryRef: strconv.FormatInt(cats["Shopping"].ID, 10),
		Description: "socks",
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		mutate  func(*core.Transaction)
		wantErr error
	}{
		{"zero amount", func(tx *core.Transaction) { tx.Amount.Cents = 0 }, core.ErrInvalidAmount},
		{"negative amount", func(tx *core.Transaction) { tx.Amount.Cents = -500 }, core.ErrInvalidAmount},
		{"empty description", func(tx *core.Transaction) { tx.Description = "   " }, core.ErrEmptyDescription},
		{"bad type", func(tx *core.Transaction) { tx.Type = "transfer" }, core.ErrInvalidType},
		{
			"income into expense category",
			func(tx *core.Transaction) { tx.Type = core.Income },
			core.ErrCategoryTypeMismatch,
		},
		{
			"expense into income category",
			func(tx *core.Transaction) { tx.CategoryRef = "Income" },
			core.ErrCategoryTypeMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			if _, err := svc.Append(ctx, tx); !errors.Is(err, tt.wantErr) {
				t.Errorf("Append() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Nothing was persisted by the rejected attempts.
	txns, total, err := svc.List(ctx, "alice", storage.TransactionFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(txns) != 0 || total != 0 {
		t.Errorf("ledger has %d transactions after rejections, want 0", total)
	}
}

func TestTransactionService_AppendLegacyLabel(t *testing.T) {
	repo, _ := seededLedger(t)
	svc := NewTransactionService(repo, nil)
	ctx := context.Background()

	// "Bills" is not a category name; it only resolves through the legacy
	// table. The raw reference is stored untouched.
	created, err := svc.Append(ctx, core.Transaction{
		OwnerID:     "alice",
		Type:        core.Expense,
		Amount:      core.Money{Cents: 9_000},
		CategoryRef: "Bills",
		Description: "electricity",
		Date:        time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if created.CategoryRef != "Bills" {
		t.Errorf("stored ref = %q, want Bills", created.CategoryRef)
	}
	// Utilities' bulb, via legacy resolution.
	if created.Icon != "💡" {
		t.Errorf("icon = %q, want 💡", created.Icon)
	}
}

func TestTransactionService_UpdateAndRemove(t *testing.T) {
	repo, cats := seededLedger(t)
	svc := NewTransactionService(repo, nil)
	ctx := context.Background()

	created, err := svc.Append(ctx, core.Transaction{
		OwnerID:     "alice",
		Type:        core.Expense,
		Amount:      core.Money{Cents: 2_000},
		CategoryRef: strconv.FormatInt(cats["Entertainment"].ID, 10),
		Description: "cinema",
		Date:        time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	created.Amount = core.Money{Cents: 2_600}
	created.Icon = ""
	updated, err := svc.Update(ctx, created)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Amount.Cents != 2_600 {
		t.Errorf("amount = %d, want 2600", updated.Amount.Cents)
	}
	if updated.Icon != cats["Entertainment"].Icon {
		t.Errorf("icon = %q, want %q", updated.Icon, cats["Entertainment"].Icon)
	}

	if err := svc.Remove(ctx, "alice", created.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := svc.Remove(ctx, "alice", created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Remove() error = %v, want ErrNotFound", err)
	}
}

func TestTransactionService_Reset(t *testing.T) {
	repo, cats := seededLedger(t)
	svc := NewTransactionService(repo, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Append(ctx, core.Transaction{
			OwnerID:     "alice",
			Type:        core.Expense,
			Amount:      core.Money{Cents: 1_000},
			CategoryRef: strconv.FormatInt(cats["Shopping"].ID, 10),
			Description: "stuff",
			Date:        time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	removed, err := svc.Reset(ctx, "alice")
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}

	// Categories survive a reset.
	catSvc := NewCategoryService(repo, nil)
	active, err := catSvc.List(ctx, "alice", false)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(active) != len(core.DefaultCategories()) {
		t.Errorf("categories after reset = %d, want %d", len(active), len(core.DefaultCategories()))
	}
}
