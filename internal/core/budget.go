package core

// DefaultBudgetCeilingCents is the spending limit applied to a category when
// no override is configured: 1000 currency units.
const DefaultBudgetCeilingCents int64 = 100_000

// BudgetConfig maps categories to spending ceilings. Overrides are keyed by
// category name; anything else uses the default ceiling.
type BudgetConfig struct {
	DefaultCeilingCents int64
	Overrides           map[string]int64
}

// NewBudgetConfig returns a config with the standard default ceiling.
func NewBudgetConfig() BudgetConfig {
	return BudgetConfig{DefaultCeilingCents: DefaultBudgetCeilingCents}
}

// CeilingFor returns the configured ceiling for a category name.
func (b BudgetConfig) CeilingFor(name string) int64 {
	if c, ok := b.Overrides[name]; ok {
		return c
	}
	if b.DefaultCeilingCents > 0 {
		return b.DefaultCeilingCents
	}
	return DefaultBudgetCeilingCents
}

// CategoryProgress reports how far a category's period total has advanced
// toward its budget ceiling.
type CategoryProgress struct {
	CategoryID   int64
	Name         string
	Icon         string
	Color        string
	Total        Money
	CeilingCents int64
	Percent      int
}

// Progress maps a period total against a budget ceiling to a bounded
// percentage: min(total/ceiling*100, 100), half-up rounded. It is
// monotonically non-decreasing in total and always within [0, 100].
// A non-positive ceiling is a configuration error.
func Progress(totalCents, ceilingCents int64) (int, error) {
	if ceilingCents <= 0 {
		return 0, ErrInvalidBudget
	}
	if totalCents <= 0 {
		return 0, nil
	}
	pct := int((totalCents*100 + ceilingCents/2) / ceilingCents)
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}

// ProgressByCategory evaluates budget progress for each breakdown entry.
func ProgressByCategory(entries []BreakdownEntry, cfg BudgetConfig) ([]CategoryProgress, error) {
	out := make([]CategoryProgress, 0, len(entries))
	for _, e := range entries {
		ceiling := cfg.CeilingFor(e.Name)
		pct, err := Progress(e.Total.Cents, ceiling)
		if err != nil {
			return nil, err
		}
		out = append(out, CategoryProgress{
			CategoryID:   e.CategoryID,
			Name:         e.Name,
			Icon:         e.Icon,
			Color:        e.Color,
			Total:        e.Total,
			CeilingCents: ceiling,
			Percent:      pct,
		})
	}
	return out, nil
}
