/*
engine.go - Pure derivation over the store mirrors

PURPOSE:
  Converts raw day entries plus per-year configuration into the figures
  consumers render: prorated entitlement, total available, per-category
  day counts, and remaining vacation balance. Holds no state of its own;
  every call is a fresh pull from the current store snapshots, so derived
  figures can never go stale behind a cache.

KEY INSIGHT:
  YearSummary builds its figures by construction, not by re-derivation:
  totalAvailable = entitlement + carryover and remaining = totalAvailable
  - vacationUsed are computed once from the same inputs, so the displayed
  numbers cannot drift apart.

FAILURE SEMANTICS:
  Read functions never fail. An unconfigured year contributes a zero base
  entitlement; a stored date outside the requested year is excluded, not
  an error — the stores are the sole writers and enforce validity at
  write time.

SEE ALSO:
  - resolve.go: The personal-over-global join point this engine counts
    through
*/
package absence

import (
	"github.com/shopspring/decimal"
)

// Engine derives accounting figures from the store snapshots.
type Engine struct {
	Years      *YearConfigStore
	Employment *EmploymentStore
	Carryover  *CarryoverLedger
	Resolver   Resolver
}

// EntitlementForYear is the base entitlement of the year scaled by the
// person's proration fraction. Unrounded; rounding is a presentation
// concern. An unconfigured year yields zero.
func (e *Engine) EntitlementForYear(person PersonID, year int) decimal.Decimal {
	cfg, ok := e.Years.Get(year)
	if !ok {
		return decimal.Zero
	}
	base := decimal.NewFromInt(int64(cfg.BaseEntitlementDays))
	return base.Mul(e.Employment.Get(person, year).ProratedFraction())
}

// TotalAvailable is the entitlement plus the carried-forward balance.
func (e *Engine) TotalAvailable(person PersonID, year int) decimal.Decimal {
	carry := decimal.NewFromInt(int64(e.Carryover.Get(person, year)))
	return e.EntitlementForYear(person, year).Add(carry)
}

// CategoryCount counts the days of the year that resolve to the category
// for the person: the union of personal-entry dates and global-override
// dates, resolved through the single join point.
func (e *Engine) CategoryCount(person PersonID, year int, category Category) int {
	count := 0
	for _, d := range e.resolvedDates(person, year) {
		if c, ok := e.Resolver.ResolvedCategory(person, d); ok && c == category {
			count++
		}
	}
	return count
}

// Remaining is the vacation balance left after planned vacation days.
func (e *Engine) Remaining(person PersonID, year int) decimal.Decimal {
	used := decimal.NewFromInt(int64(e.CategoryCount(person, year, CategoryVacation)))
	return e.TotalAvailable(person, year).Sub(used)
}

// resolvedDates is the deduplicated union of the person's entry dates and
// the global override dates within the year.
func (e *Engine) resolvedDates(person PersonID, year int) []Date {
	seen := make(map[Date]struct{})
	var dates []Date
	for _, d := range e.Resolver.Personal.DatesInYear(person, year) {
		if _, dup := seen[d]; !dup {
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
	}
	for _, d := range e.Resolver.Global.DatesInYear(year) {
		if _, dup := seen[d]; !dup {
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
	}
	return dates
}

// =============================================================================
// YEAR SUMMARY - The one aggregate view consumers render
// =============================================================================

// YearSummary is internally consistent by construction:
// TotalAvailable == Entitlement + Carryover and
// Remaining == TotalAvailable - VacationUsed always hold.
type YearSummary struct {
	Person         PersonID
	Year           int
	Carryover      int
	Entitlement    decimal.Decimal
	TotalAvailable decimal.Decimal
	VacationUsed   int
	Remaining      decimal.Decimal
	TrainingDays   int
	TeamDays       int
}

// YearSummary computes the aggregate view for one person-year in a single
// pass over the resolved dates.
func (e *Engine) YearSummary(person PersonID, year int) YearSummary {
	var vacation, training, team int
	for _, d := range e.resolvedDates(person, year) {
		c, ok := e.Resolver.ResolvedCategory(person, d)
		if !ok {
			continue
		}
		switch c {
		case CategoryVacation:
			vacation++
		case CategoryTraining:
			training++
		case CategoryTeamDay:
			team++
		}
	}

	carryover := e.Carryover.Get(person, year)
	entitlement := e.EntitlementForYear(person, year)
	total := entitlement.Add(decimal.NewFromInt(int64(carryover)))
	remaining := total.Sub(decimal.NewFromInt(int64(vacation)))

	return YearSummary{
		Person:         person,
		Year:           year,
		Carryover:      carryover,
		Entitlement:    entitlement,
		TotalAvailable: total,
		VacationUsed:   vacation,
		Remaining:      remaining,
		TrainingDays:   training,
		TeamDays:       team,
	}
}
