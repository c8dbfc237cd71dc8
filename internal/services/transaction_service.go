package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/storage"
)

// TransactionService manages an owner's transaction ledger.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Append validates and stores a new transaction. The category reference is
// checked against the owner's registry: a reference that directly denotes a
// category must match the transaction type, while free-text legacy labels
// are stored as-is and resolved at aggregation time. The display icon is
// derived from the resolved category when the caller supplies none.
func (s *TransactionService) Append(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.Description = strings.TrimSpace(tx.Description)
	tx.CategoryRef = strings.TrimSpace(tx.CategoryRef)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	reg, err := s.registry(ctx, tx.OwnerID)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := checkCategoryType(reg, tx); err != nil {
		return core.Transaction{}, err
	}
	if strings.TrimSpace(tx.Icon) == "" {
		tx.Icon = reg.IconFor(tx.CategoryRef)
	}

	created, err := s.storage.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishEvent(ctx, created.OwnerID, amqp.OpCreated, created.ID)
	return created, nil
}

// Update replaces an existing transaction with new validated content.
func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.Description = strings.TrimSpace(tx.Description)
	tx.CategoryRef = strings.TrimSpace(tx.CategoryRef)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	reg, err := s.registry(ctx, tx.OwnerID)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := checkCategoryType(reg, tx); err != nil {
		return core.Transaction{}, err
	}
	if strings.TrimSpace(tx.Icon) == "" {
		tx.Icon = reg.IconFor(tx.CategoryRef)
	}

	if err := s.storage.UpdateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, err
	}
	updated, err := s.storage.GetTransaction(ctx, tx.OwnerID, tx.ID)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishEvent(ctx, updated.OwnerID, amqp.OpUpdated, updated.ID)
	return updated, nil
}

// Remove deletes one transaction.
func (s *TransactionService) Remove(ctx context.Context, ownerID string, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, ownerID, id); err != nil {
		return err
	}

	s.publishEvent(ctx, ownerID, amqp.OpDeleted, id)
	return nil
}

// Reset clears the owner's entire transaction history. Categories survive.
func (s *TransactionService) Reset(ctx context.Context, ownerID string) (int64, error) {
	removed, err := s.storage.DeleteAllTransactions(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	s.publishEvent(ctx, ownerID, amqp.OpReset, 0)
	return removed, nil
}

// Get fetches one transaction.
func (s *TransactionService) Get(ctx context.Context, ownerID string, id int64) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, ownerID, id)
}

// List returns the owner's transactions matching the filter, newest first,
// along with the unpaginated match count.
func (s *TransactionService) List(ctx context.Context, ownerID string, f storage.TransactionFilter) ([]core.Transaction, int64, error) {
	txns, err := s.storage.ListTransactions(ctx, ownerID, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.storage.CountTransactions(ctx, ownerID, f)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

func (s *TransactionService) registry(ctx context.Context, ownerID string) (*core.Registry, error) {
	categories, err := s.storage.ListCategories(ctx, ownerID, false)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return core.NewRegistry(categories), nil
}

// checkCategoryType rejects transactions whose reference denotes an existing
// category of the opposite type. References that only resolve through the
// legacy table or the fallback are exempt; they never pointed at a concrete
// category choice.
func checkCategoryType(reg *core.Registry, tx core.Transaction) error {
	if cat, ok := reg.Lookup(tx.CategoryRef); ok && cat.Type != tx.Type {
		return core.ErrCategoryTypeMismatch
	}
	return nil
}

func (s *TransactionService) publishEvent(ctx context.Context, ownerID, op string, id int64) {
	if s.amqpClient == nil {
		return
	}
	msg := amqp.NewLedgerEventMessage(ownerID, amqp.EntityTransaction, op, id)
	if err := s.amqpClient.PublishLedgerEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"owner_id", ownerID, "op", op, "id", id, "error", err)
	}
}
