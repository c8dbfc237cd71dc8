package core

import (
	"slices"
	"strconv"
	"testing"
)

func seededRegistry() *Registry {
	cats := DefaultCategories()
	for i := range cats {
		cats[i].ID = int64(i + 1)
		cats[i].OwnerID = "owner-1"
	}
	return NewRegistry(cats)
}

func TestResolveCanonicalID(t *testing.T) {
	reg := seededRegistry()
	got := reg.Resolve("2")
	if got.Name != "Food & Dining" {
		t.Fatalf("id 2 should resolve to Food & Dining, got %q", got.Name)
	}
}

func TestResolveLegacyLabels(t *testing.T) {
	reg := seededRegistry()
	cases := map[string]string{
		"Food":           "Food & Dining",
		"Food & Dining":  "Food & Dining",
		"Utilities":      "Utilities",
		"Bills":          "Utilities",
		"Transportation": "Transportation",
		"Transport":      "Transportation",
		"Salary":         "Income",
	}
	for ref, want := range cases {
		if got := reg.Resolve(ref); got.Name != want {
			t.Fatalf("%q resolved to %q, want %q", ref, got.Name, want)
		}
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	reg := seededRegistry()
	for _, ref := range []string{"Food", "nonsense", "3", "Bills"} {
		first := reg.Resolve(ref)
		second := reg.Resolve(ref)
		if first.ID != second.ID {
			t.Fatalf("%q resolved to different categories: %d then %d", ref, first.ID, second.ID)
		}
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	reg := seededRegistry()
	got := reg.Resolve("Totally Unknown Label")
	if got.Name != DefaultCategoryName {
		t.Fatalf("unknown label should fall back to %q, got %q", DefaultCategoryName, got.Name)
	}
	// A numeric ref with no matching category falls back too.
	if got := reg.Resolve("9999"); got.Name != DefaultCategoryName {
		t.Fatalf("unknown id should fall back to %q, got %q", DefaultCategoryName, got.Name)
	}
}

func TestResolveNeverFailsOnEmptyRegistry(t *testing.T) {
	reg := NewRegistry(nil)
	got := reg.Resolve("anything")
	if got.Name == "" {
		t.Fatalf("empty registry should still resolve to a named bucket")
	}
}

func TestResolveInactiveCategoryStillResolvable(t *testing.T) {
	cats := DefaultCategories()
	for i := range cats {
		cats[i].ID = int64(i + 1)
	}
	// Soft-deleted Entertainment must keep resolving for historical rows.
	cats[3].IsActive = false
	reg := NewRegistry(cats)
	if got := reg.Resolve(strconv.FormatInt(cats[3].ID, 10)); got.Name != "Entertainment" {
		t.Fatalf("inactive category should resolve by id, got %q", got.Name)
	}
}

func TestLookupDirectReferencesOnly(t *testing.T) {
	reg := seededRegistry()

	if c, ok := reg.Lookup("2"); !ok || c.Name != "Food & Dining" {
		t.Fatalf("Lookup by id = %q, %v", c.Name, ok)
	}
	if c, ok := reg.Lookup("Food & Dining"); !ok || c.ID != 2 {
		t.Fatalf("Lookup by name = %d, %v", c.ID, ok)
	}
	// Legacy labels and unknown references do not match; Resolve handles those.
	for _, ref := range []string{"Bills", "Groceries", "9999", "nonsense"} {
		if _, ok := reg.Lookup(ref); ok {
			t.Fatalf("Lookup(%q) should not match", ref)
		}
	}
}

func TestLegacyAliases(t *testing.T) {
	got := LegacyAliases("Food & Dining")
	want := []string{"Food", "Groceries", "Restaurant"}
	if !slices.Equal(got, want) {
		t.Fatalf("LegacyAliases(Food & Dining) = %v, want %v", got, want)
	}

	if got := LegacyAliases("Shopping"); len(got) != 0 {
		t.Fatalf("Shopping has no aliases, got %v", got)
	}

	// The category's own name never appears among its aliases.
	if slices.Contains(LegacyAliases("Utilities"), "Utilities") {
		t.Fatal("aliases must exclude the canonical name itself")
	}
}

func TestIconFor(t *testing.T) {
	reg := seededRegistry()
	if got := reg.IconFor("Food"); got != "🍔" {
		t.Fatalf("Food icon = %q", got)
	}
	if got := NewRegistry(nil).IconFor("anything"); got != FallbackIcon {
		t.Fatalf("expected fallback icon, got %q", got)
	}
}

func TestDefaultCategoriesSeedSet(t *testing.T) {
	cats := DefaultCategories()
	if len(cats) != 8 {
		t.Fatalf("expected 8 default categories, got %d", len(cats))
	}
	var incomes int
	for _, c := range cats {
		if err := c.Validate(); err != nil {
			t.Fatalf("default category %q invalid: %v", c.Name, err)
		}
		if !c.IsDefault || !c.IsActive {
			t.Fatalf("default category %q must be default and active", c.Name)
		}
		if c.Type == Income {
			incomes++
		}
	}
	if incomes != 1 {
		t.Fatalf("expected exactly one income default, got %d", incomes)
	}
}
