/*
Package absence is the core leave accounting engine.

PURPOSE:
  Tracks per-person leave entitlements across configured years: vacation,
  training, internal team days, and holidays, reconciled against yearly base
  entitlements, employment fraction (full-time/part-time), and carry-over
  balances brought forward from prior years.

KEY CONCEPTS IN THIS FILE (types.go):
  - Category: What a marked calendar day counts as
  - Person: A tracked team member with a display order
  - YearConfig: Per-year base entitlement + holiday-import flag
  - EmploymentRecord: Full-time/part-time shape for one person-year
  - Named defaults: absent records have explicit, documented meanings

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for prorated entitlements, never float
  2. Explicit defaults: a missing employment record IS full-time 100%,
     encoded once as DefaultEmployment, not scattered as literals
  3. Type safety: PersonID and Category are distinct named types

SEE ALSO:
  - engine.go: Derivation of entitlement, totals and per-category counts
  - resolve.go: Personal-over-global category resolution
*/
package absence

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// PersonID identifies a tracked person. Opaque; assigned on creation.
type PersonID string

// =============================================================================
// CATEGORY - What a marked day counts as
// =============================================================================

type Category string

const (
	CategoryVacation Category = "vacation"
	CategoryTraining Category = "training"
	CategoryTeamDay  Category = "team-day"
	CategoryHoliday  Category = "holiday"
)

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryVacation, CategoryTraining, CategoryTeamDay, CategoryHoliday:
		return true
	}
	return false
}

// GlobalAllowed reports whether c may be applied organization-wide.
// Vacation and training are always person-specific.
func (c Category) GlobalAllowed() bool {
	return c == CategoryTeamDay || c == CategoryHoliday
}

// =============================================================================
// PERSON - Tracked team member
// =============================================================================

// Person is a tracked team member. Position is the display ordering slot;
// lower comes first.
type Person struct {
	ID       PersonID
	Name     string
	Position int
}

// =============================================================================
// YEAR CONFIG - Per-year accounting parameters
// =============================================================================

// YearConfig holds the parameters of one accounting year. At most one config
// exists per year.
type YearConfig struct {
	Year                int
	BaseEntitlementDays int
	HolidaysImported    bool
}

// =============================================================================
// EMPLOYMENT - Full-time/part-time shape for one person-year
// =============================================================================

type EmploymentType string

const (
	FullTime EmploymentType = "full-time"
	PartTime EmploymentType = "part-time"
)

// EmploymentRecord describes how a person is employed in one year.
// DaysPerWeek is 0 for full-time (not applicable) and 1..5 for part-time.
type EmploymentRecord struct {
	Type        EmploymentType
	Percentage  int
	DaysPerWeek int
}

// DefaultEmployment is the record assumed when none has been saved:
// full-time at 100%, no days-per-week reduction.
func DefaultEmployment() EmploymentRecord {
	return EmploymentRecord{Type: FullTime, Percentage: 100, DaysPerWeek: 0}
}

// Validate checks the proration-rule invariants:
//
//	full-time  => percentage == 100 and no daysPerWeek
//	part-time  => percentage in [0,100] and daysPerWeek in [1,5]
func (r EmploymentRecord) Validate() error {
	switch r.Type {
	case FullTime:
		if r.Percentage != 100 {
			return &InvalidEmploymentError{Record: r, Reason: "full-time requires percentage 100"}
		}
		if r.DaysPerWeek != 0 {
			return &InvalidEmploymentError{Record: r, Reason: "full-time must not set days per week"}
		}
	case PartTime:
		if r.Percentage < 0 || r.Percentage > 100 {
			return &InvalidEmploymentError{Record: r, Reason: "percentage must be between 0 and 100"}
		}
		if r.DaysPerWeek < 1 || r.DaysPerWeek > 5 {
			return &InvalidEmploymentError{Record: r, Reason: "part-time requires days per week between 1 and 5"}
		}
	default:
		return &InvalidEmploymentError{Record: r, Reason: "unknown employment type"}
	}
	return nil
}

var (
	five    = decimal.NewFromInt(5)
	hundred = decimal.NewFromInt(100)
)

// ProratedFraction is the multiplier applied to a base entitlement.
// Full-time: percentage/100. Part-time: (daysPerWeek/5) × (percentage/100) —
// percentage models hours-per-day reduction, daysPerWeek models days-per-week
// reduction, and both apply.
func (r EmploymentRecord) ProratedFraction() decimal.Decimal {
	pct := decimal.NewFromInt(int64(r.Percentage)).Div(hundred)
	if r.Type == PartTime {
		return decimal.NewFromInt(int64(r.DaysPerWeek)).Div(five).Mul(pct)
	}
	return pct
}
