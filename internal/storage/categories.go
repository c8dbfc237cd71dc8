package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"spendwise/internal/core"
)

const categoryColumns = `id, owner_id, name, icon, color, type, is_default, is_active`

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var c core.Category
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Icon, &c.Color, &c.Type, &c.IsDefault, &c.IsActive); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// CreateCategory inserts a new active category. The duplicate check and the
// insert run in one SQL transaction so two concurrent creates with the same
// name cannot both succeed.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var n int64
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM categories
			 WHERE owner_id = ? AND is_active = 1 AND name = ? COLLATE NOCASE`,
			c.OwnerID, c.Name).Scan(&n)
		if err != nil {
			return fmt.Errorf("check category name: %w", err)
		}
		if n > 0 {
			return core.ErrDuplicateName
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO categories (owner_id, name, icon, color, type, is_default, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, 1)`,
			c.OwnerID, c.Name, c.Icon, c.Color, string(c.Type), c.IsDefault)
		if err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("category id: %w", err)
		}
		c.ID = id
		c.IsActive = true
		return nil
	})
	if err != nil {
		return core.Category{}, err
	}

	slog.InfoContext(ctx, "Category created",
		"id", c.ID, "owner_id", c.OwnerID, "name", c.Name, "type", c.Type)
	return c, nil
}

// GetCategory fetches one category of the acting owner, active or not.
func (r *SQLiteRepository) GetCategory(ctx context.Context, ownerID string, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE owner_id = ? AND id = ?`,
		ownerID, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

// ListCategories returns the owner's categories ordered by id. With
// activeOnly set, soft-deleted rows are skipped.
func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID string, activeOnly bool) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE owner_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// UpdateCategory replaces the mutable fields of an existing category. The
// duplicate-name check excludes the row being updated.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var n int64
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM categories
			 WHERE owner_id = ? AND is_active = 1 AND id != ? AND name = ? COLLATE NOCASE`,
			c.OwnerID, c.ID, c.Name).Scan(&n)
		if err != nil {
			return fmt.Errorf("check category name: %w", err)
		}
		if n > 0 {
			return core.ErrDuplicateName
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE categories
			 SET name = ?, icon = ?, color = ?, type = ?,
			     updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
			 WHERE owner_id = ? AND id = ? AND is_active = 1`,
			c.Name, c.Icon, c.Color, string(c.Type), c.OwnerID, c.ID)
		if err != nil {
			return fmt.Errorf("update category %d: %w", c.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update category %d: %w", c.ID, err)
		}
		if affected == 0 {
			return core.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category updated", "id", c.ID, "owner_id", c.OwnerID, "name", c.Name)
	return nil
}

// SoftDeleteCategory marks a category inactive. It refuses when any of the
// owner's transactions still reference the category, reporting the count.
// Deleting an already inactive category is a no-op.
func (r *SQLiteRepository) SoftDeleteCategory(ctx context.Context, ownerID string, id int64) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+categoryColumns+` FROM categories WHERE owner_id = ? AND id = ?`,
			ownerID, id)
		c, err := scanCategory(row)
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get category %d: %w", id, err)
		}
		if !c.IsActive {
			return nil
		}

		refs, err := countReferences(ctx, tx, ownerID, c.ID, c.Name)
		if err != nil {
			return err
		}
		if refs > 0 {
			return &core.ReferenceError{CategoryID: c.ID, Count: refs}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE categories
			 SET is_active = 0, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
			 WHERE owner_id = ? AND id = ?`,
			ownerID, id)
		if err != nil {
			return fmt.Errorf("deactivate category %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category deactivated", "id", id, "owner_id", ownerID)
	return nil
}

// CountTransactionsReferencing counts the owner's transactions whose
// category_ref resolves to the category: by canonical id, by name, or by a
// legacy label mapping to the name.
func (r *SQLiteRepository) CountTransactionsReferencing(ctx context.Context, ownerID string, categoryID int64, name string) (int64, error) {
	return countReferences(ctx, r.db, ownerID, categoryID, name)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func countReferences(ctx context.Context, q querier, ownerID string, categoryID int64, name string) (int64, error) {
	// A transaction references the category through its id, its name, or any
	// legacy label that resolves to the name.
	refs := append([]string{strconv.FormatInt(categoryID, 10), name}, core.LegacyAliases(name)...)

	args := make([]any, 0, len(refs)+1)
	args = append(args, ownerID)
	for _, ref := range refs {
		args = append(args, ref)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(refs)), ", ")

	var n int64
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions
		 WHERE owner_id = ? AND category_ref COLLATE NOCASE IN (`+placeholders+`)`,
		args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count category references: %w", err)
	}
	return n, nil
}

// SeedDefaultCategories installs the stock category set for an owner that has
// none yet. Owners with any categories, active or not, are left untouched, so
// the call is idempotent.
func (r *SQLiteRepository) SeedDefaultCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	var seeded bool
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var n int64
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM categories WHERE owner_id = ?`, ownerID).Scan(&n); err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		if n > 0 {
			return nil
		}
		for _, c := range core.DefaultCategories() {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO categories (owner_id, name, icon, color, type, is_default, is_active)
				 VALUES (?, ?, ?, ?, ?, 1, 1)`,
				ownerID, c.Name, c.Icon, c.Color, string(c.Type))
			if err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if seeded {
		slog.InfoContext(ctx, "Default categories seeded", "owner_id", ownerID)
	}
	return r.ListCategories(ctx, ownerID, true)
}
