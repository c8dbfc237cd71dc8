package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	MaxDescriptionLen  = 200
	MaxCategoryNameLen = 30

	// DefaultCategoryColor is applied when a category is created without one.
	DefaultCategoryColor = "#00D9FF"

	// FallbackIcon is used when neither the transaction nor its resolved
	// category carries a display glyph.
	FallbackIcon = "📁"
)

type (
	TransactionType string

	// Transaction is a single dated income or expense record. Amount is
	// always positive; the sign of the movement is carried by Type.
	Transaction struct {
		ID          int64
		OwnerID     string
		Type        TransactionType
		Amount      Money
		CategoryRef string // canonical category id or legacy free-text label
		Description string
		Date        time.Time
		Icon        string
	}

	// Category is a canonical spending/income bucket owned by one account.
	Category struct {
		ID        int64
		OwnerID   string
		Name      string
		Icon      string
		Color     string
		Type      TransactionType
		IsDefault bool
		IsActive  bool
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyDescription     = errors.New("empty description")
	ErrDescriptionTooLong   = errors.New("description too long")
	ErrInvalidType          = errors.New("type must be income or expense")
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")
	ErrInvalidName          = errors.New("invalid category name")
	ErrInvalidIcon          = errors.New("category icon is required")
	ErrInvalidColor         = errors.New("color must be a hex color code")
	ErrDuplicateName        = errors.New("category with this name already exists")
	ErrHasReferences        = errors.New("category has referencing transactions")
	ErrNotFound             = errors.New("not found")
	ErrInvalidBudget        = errors.New("budget ceiling must be positive")
)

// ReferenceError reports a blocked category deletion together with the
// number of transactions still referencing it.
type ReferenceError struct {
	CategoryID int64
	Count      int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("category %d has %d referencing transactions", e.CategoryID, e.Count)
}

func (e *ReferenceError) Unwrap() error { return ErrHasReferences }

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColor reports whether s is a #RRGGBB hex color.
func ValidColor(s string) bool {
	return colorPattern.MatchString(s)
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(tx.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(tx.Description) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if tx.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" || len(name) > MaxCategoryNameLen {
		return ErrInvalidName
	}
	if strings.TrimSpace(c.Icon) == "" {
		return ErrInvalidIcon
	}
	if !ValidColor(c.Color) {
		return ErrInvalidColor
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}
