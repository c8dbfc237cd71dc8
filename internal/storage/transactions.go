package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"spendwise/internal/core"
)

// TransactionFilter narrows ListTransactions results. Zero values mean
// "no constraint". Search matches description substrings case-insensitively.
type TransactionFilter struct {
	From       time.Time
	To         time.Time
	Type       core.TransactionType
	CategoryID int64
	Search     string
	Limit      int
	Offset     int
}

const transactionColumns = `id, owner_id, type, amount_cents, category_ref, description, tx_date, icon`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var tx core.Transaction
	var cents int64
	var dateStr string
	if err := row.Scan(&tx.ID, &tx.OwnerID, &tx.Type, &cents, &tx.CategoryRef, &tx.Description, &dateStr, &tx.Icon); err != nil {
		return core.Transaction{}, err
	}
	tx.Amount = core.Money{Cents: cents}
	date, err := parseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
	}
	tx.Date = date
	return tx, nil
}

// CreateTransaction appends a validated transaction and returns it with the
// storage-assigned id.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (owner_id, type, amount_cents, category_ref, description, tx_date, icon)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.OwnerID, string(tx.Type), tx.Amount.Cents, tx.CategoryRef, tx.Description, formatDate(tx.Date), tx.Icon)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	tx.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"owner_id", tx.OwnerID,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents,
		"category_ref", tx.CategoryRef)

	return tx, nil
}

// GetTransaction fetches one transaction of the acting owner.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, ownerID string, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE owner_id = ? AND id = ?`,
		ownerID, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return tx, nil
}

// UpdateTransaction replaces the mutable fields of an existing transaction.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET type = ?, amount_cents = ?, category_ref = ?, description = ?, tx_date = ?, icon = ?,
		     updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE owner_id = ? AND id = ?`,
		string(tx.Type), tx.Amount.Cents, tx.CategoryRef, tx.Description, formatDate(tx.Date), tx.Icon,
		tx.OwnerID, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", tx.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", tx.ID, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteTransaction removes one transaction of the acting owner.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id, "owner_id", ownerID)
	return nil
}

// DeleteAllTransactions clears the owner's transaction history ("reset").
// Categories are untouched; derived views drop to zero on the next read.
func (r *SQLiteRepository) DeleteAllTransactions(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE owner_id = ?`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("reset transactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset transactions: %w", err)
	}
	slog.InfoContext(ctx, "Transactions reset", "owner_id", ownerID, "removed", n)
	return n, nil
}

// ListTransactions returns the owner's transactions matching the filter,
// newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID string, f TransactionFilter) ([]core.Transaction, error) {
	var (
		where = []string{"owner_id = ?"}
		args  = []any{ownerID}
	)
	if !f.From.IsZero() {
		where = append(where, "tx_date >= ?")
		args = append(args, formatDate(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "tx_date < ?")
		args = append(args, formatDate(f.To))
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.CategoryID != 0 {
		where = append(where, "category_ref = ?")
		args = append(args, fmt.Sprintf("%d", f.CategoryID))
	}
	if f.Search != "" {
		where = append(where, "description LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(f.Search)+"%")
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY tx_date DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// CountTransactions returns how many of the owner's rows match the filter.
func (r *SQLiteRepository) CountTransactions(ctx context.Context, ownerID string, f TransactionFilter) (int64, error) {
	f.Limit = 0
	f.Offset = 0
	var (
		where = []string{"owner_id = ?"}
		args  = []any{ownerID}
	)
	if !f.From.IsZero() {
		where = append(where, "tx_date >= ?")
		args = append(args, formatDate(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "tx_date < ?")
		args = append(args, formatDate(f.To))
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.CategoryID != 0 {
		where = append(where, "category_ref = ?")
		args = append(args, fmt.Sprintf("%d", f.CategoryID))
	}
	if f.Search != "" {
		where = append(where, "description LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(f.Search)+"%")
	}
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE `+strings.Join(where, " AND "), args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// ListOwners returns every owner with at least one transaction on record.
func (r *SQLiteRepository) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT owner_id FROM transactions ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		out = append(out, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	return out, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
