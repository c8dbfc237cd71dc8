package core

import (
	"sort"
	"strconv"
	"strings"
)

// legacyLabels maps free-text category labels, as written by older clients,
// to the canonical category names of the default set. The repo migrated from
// storing category names on transactions to referencing category ids; both
// forms still appear in stored data and must resolve identically.
var legacyLabels = map[string]string{
	"Bills":          "Utilities",
	"Utilities":      "Utilities",
	"Electricity":    "Utilities",
	"House":          "Utilities",
	"Food":           "Food & Dining",
	"Food & Dining":  "Food & Dining",
	"Restaurant":     "Food & Dining",
	"Groceries":      "Food & Dining",
	"Transport":      "Transportation",
	"Transportation": "Transportation",
	"Entertainment":  "Entertainment",
	"Shopping":       "Shopping",
	"Healthcare":     "Healthcare",
	"Education":      "Education",
	"Income":         "Income",
	"Salary":         "Income",
}

// LegacyAliases lists the free-text labels that resolve to the named
// category, the name itself excluded. Stored transactions may still carry
// these labels, so they count as references to the category.
func LegacyAliases(name string) []string {
	var aliases []string
	for label, canonical := range legacyLabels {
		if canonical == name && label != name {
			aliases = append(aliases, label)
		}
	}
	sort.Strings(aliases)
	return aliases
}

// DefaultCategoryName is the designated fallback for category references
// that resolve to nothing. Unmapped legacy labels land here.
const DefaultCategoryName = "Utilities"

// DefaultCategories is the seed set installed once per owner. Icons and
// colors are fixed; ids are assigned by storage.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Income", Icon: "💰", Color: "#10B981", Type: Income, IsDefault: true, IsActive: true},
		{Name: "Food & Dining", Icon: "🍔", Color: "#F97316", Type: Expense, IsDefault: true, IsActive: true},
		{Name: "Transportation", Icon: "🚕", Color: "#A855F7", Type: Expense, IsDefault: true, IsActive: true},
		{Name: "Entertainment", Icon: "🎬", Color: "#EC4899", Type: Expense, IsDefault: true, IsActive: true},
		{Name: "Utilities", Icon: "💡", Color: "#3B82F6", Type: Expense, IsDefault: true, IsActive: true},
		{Name: "Shopping", Icon: "🛍️", Color: "#00D9FF", Type: Expense, IsDefault: true, IsActive: true},
		{Name: "Healthcare", Icon: "🏥", Color: "#EF4444", Type: Expense, IsDefault: true, IsActive: true},
		{Name: "Education", Icon: "📚", Color: "#8B5CF6", Type: Expense, IsDefault: true, IsActive: true},
	}
}

// Registry resolves category references (canonical ids or legacy free-text
// labels) to exactly one category of the owning account. Resolution is total:
// unresolvable references fall back to the default category so that every
// transaction is categorizable. Aggregation code only ever sees the resolved
// category and stays ignorant of the legacy/canonical distinction.
type Registry struct {
	byID   map[int64]Category
	byName map[string]Category
	def    Category
	hasDef bool
}

// NewRegistry builds a registry over the owner's full category set,
// inactive categories included: historical transactions must keep resolving
// after a soft delete.
func NewRegistry(categories []Category) *Registry {
	r := &Registry{
		byID:   make(map[int64]Category, len(categories)),
		byName: make(map[string]Category, len(categories)),
	}
	for _, c := range categories {
		r.byID[c.ID] = c
		r.byName[c.Name] = c
		if c.Name == DefaultCategoryName {
			r.def = c
			r.hasDef = true
		}
	}
	if !r.hasDef {
		// Fall back to any active expense category, then to a synthetic
		// bucket so resolution still cannot fail on an empty registry.
		for _, c := range categories {
			if c.IsActive && c.Type == Expense {
				r.def = c
				r.hasDef = true
				break
			}
		}
	}
	if !r.hasDef {
		r.def = Category{Name: "Uncategorized", Icon: FallbackIcon, Type: Expense, IsActive: true}
	}
	return r
}

// Resolve maps a category reference to a canonical category. Lookup order:
// numeric canonical id, exact name, legacy-label table, default category.
// It never fails; resolving the same reference twice yields the same result.
func (r *Registry) Resolve(ref string) Category {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if c, ok := r.byID[id]; ok {
			return c
		}
	}
	if c, ok := r.byName[ref]; ok {
		return c
	}
	if name, ok := legacyLabels[ref]; ok {
		if c, ok := r.byName[name]; ok {
			return c
		}
	}
	return r.def
}

// Lookup resolves a reference that directly denotes a category, by numeric
// id or exact name. Unlike Resolve it does not consult the legacy-label
// table or the default fallback.
func (r *Registry) Lookup(ref string) (Category, bool) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if c, ok := r.byID[id]; ok {
			return c, true
		}
	}
	c, ok := r.byName[ref]
	return c, ok
}

// IconFor derives the display glyph for a category reference.
func (r *Registry) IconFor(ref string) string {
	if icon := strings.TrimSpace(r.Resolve(ref).Icon); icon != "" {
		return icon
	}
	return FallbackIcon
}

// Default returns the configured fallback category.
func (r *Registry) Default() Category {
	return r.def
}
