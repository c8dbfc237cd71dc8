// Package services orchestrates domain operations across storage and AMQP.
// Each mutation persists first; the ledger event is published after the
// commit and never fails the request.
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

// CategoryService manages an owner's category set.
type CategoryService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewCategoryService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *CategoryService {
	return &CategoryService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Create registers a new category. A missing color falls back to the stock
// accent; the name collides case-insensitively with active categories only.
func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if strings.TrimSpace(c.Color) == "" {
		c.Color = core.DefaultCategoryColor
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	created, err := s.storage.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}

	s.publishEvent(ctx, created.OwnerID, amqp.EntityCategory, amqp.OpCreated, created.ID)
	return created, nil
}

// Update replaces the mutable fields of an active category.
func (s *CategoryService) Update(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if strings.TrimSpace(c.Color) == "" {
		c.Color = core.DefaultCategoryColor
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	if err := s.storage.UpdateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}

	updated, err := s.storage.GetCategory(ctx, c.OwnerID, c.ID)
	if err != nil {
		return core.Category{}, err
	}

	s.publishEvent(ctx, updated.OwnerID, amqp.EntityCategory, amqp.OpUpdated, updated.ID)
	return updated, nil
}

// Delete marks a category inactive. It fails with a ReferenceError while
// transactions still reference the category.
func (s *CategoryService) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := s.storage.SoftDeleteCategory(ctx, ownerID, id); err != nil {
		return err
	}

	s.publishEvent(ctx, ownerID, amqp.EntityCategory, amqp.OpDeleted, id)
	return nil
}

// Get fetches one category, active or not.
func (s *CategoryService) Get(ctx context.Context, ownerID string, id int64) (core.Category, error) {
	return s.storage.GetCategory(ctx, ownerID, id)
}

// List returns the owner's categories, optionally including soft-deleted
// ones.
func (s *CategoryService) List(ctx context.Context, ownerID string, includeInactive bool) ([]core.Category, error) {
	return s.storage.ListCategories(ctx, ownerID, !includeInactive)
}

// Seed installs the stock category set for owners that have none yet.
func (s *CategoryService) Seed(ctx context.Context, ownerID string) ([]core.Category, error) {
	return s.storage.SeedDefaultCategories(ctx, ownerID)
}

// Registry builds the resolution registry over the owner's full category
// set, inactive entries included.
func (s *CategoryService) Registry(ctx context.Context, ownerID string) (*core.Registry, error) {
	categories, err := s.storage.ListCategories(ctx, ownerID, false)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return core.NewRegistry(categories), nil
}

// UsageStats reports, for each active category, how many transactions
// reference it.
type UsageStat struct {
	Category core.Category
	Count    int64
}

func (s *CategoryService) UsageStats(ctx context.Context, ownerID string) ([]UsageStat, error) {
	categories, err := s.storage.ListCategories(ctx, ownerID, true)
	if err != nil {
		return nil, err
	}
	stats := make([]UsageStat, 0, len(categories))
	for _, c := range categories {
		n, err := s.storage.CountTransactionsReferencing(ctx, ownerID, c.ID, c.Name)
		if err != nil {
			return nil, err
		}
		stats = append(stats, UsageStat{Category: c, Count: n})
	}
	return stats, nil
}

func (s *CategoryService) publishEvent(ctx context.Context, ownerID, entity, op string, id int64) {
	if s.amqpClient == nil {
		return
	}
	msg := amqp.NewLedgerEventMessage(ownerID, entity, op, id)
	if err := s.amqpClient.PublishLedgerEvent(ctx, msg); err != nil {
		// The mutation is already committed; a lost event only delays the
		// next export.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"owner_id", ownerID, "entity", entity, "op", op, "id", id, "error", err)
	}
}

// Close closes storage and AMQP connections
func (s *CategoryService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close category service: %v", errs)
	}

	return nil
}
