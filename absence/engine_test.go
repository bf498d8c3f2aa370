package absence_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/warp/absence-engine/absence"
	"github.com/warp/absence-engine/store/memory"
)

func decimalFromInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

// =============================================================================
// TEST HELPERS
// =============================================================================

// newTestTracker wires a tracker over an in-memory adapter. The stores fold
// their own writes synchronously, so tests do not need the Run loops.
func newTestTracker(t *testing.T) *absence.Tracker {
	t.Helper()
	return absence.NewTracker(memory.New())
}

func addPerson(t *testing.T, tr *absence.Tracker, name string) absence.PersonID {
	t.Helper()
	p, err := tr.Persons.Add(context.Background(), name)
	require.NoError(t, err)
	return p.ID
}

func configureYear(t *testing.T, tr *absence.Tracker, year, base int) {
	t.Helper()
	require.NoError(t, tr.Years.Add(context.Background(), year, base))
}

// =============================================================================
// ENTITLEMENT / PRORATION
// =============================================================================

func TestEntitlement_FullTimeEqualsBase(t *testing.T) {
	// GIVEN: Year 2025 with 30 base days and a person with no saved
	//        employment record
	// WHEN: Deriving the entitlement
	// THEN: Absent record means full-time 100%, so entitlement == base

	tr := newTestTracker(t)
	configureYear(t, tr, 2025, 30)
	person := addPerson(t, tr, "Ada")

	got := tr.Engine.EntitlementForYear(person, 2025)
	require.True(t, got.Equal(decimalFromInt(30)), "got %s", got)
}

func TestEntitlement_PartTimeCompoundsBothReductions(t *testing.T) {
	// GIVEN: 30 base days, part-time 4 days/week at 80%
	// WHEN: Deriving the entitlement
	// THEN: 30 × (4/5) × (80/100) = 19.2, exact and unrounded

	ctx := context.Background()
	tr := newTestTracker(t)
	configureYear(t, tr, 2025, 30)
	person := addPerson(t, tr, "Edsger")

	require.NoError(t, tr.Employment.Save(ctx, person, 2025, absence.EmploymentRecord{
		Type:        absence.PartTime,
		Percentage:  80,
		DaysPerWeek: 4,
	}))

	got := tr.Engine.EntitlementForYear(person, 2025)
	require.Equal(t, "19.2", got.String())
}

func TestEntitlement_UnconfiguredYearIsZero(t *testing.T) {
	tr := newTestTracker(t)
	person := addPerson(t, tr, "Ada")

	require.True(t, tr.Engine.EntitlementForYear(person, 1999).IsZero())
}

func TestTotalAvailable_AddsCarryover(t *testing.T) {
	// GIVEN: 19.2 prorated entitlement and 5 carried-over days
	// THEN: Total available is 24.2

	ctx := context.Background()
	tr := newTestTracker(t)
	configureYear(t, tr, 2025, 30)
	person := addPerson(t, tr, "Edsger")

	_, err := tr.SaveYearlyData(ctx, person, 2025, 5, absence.EmploymentRecord{
		Type:        absence.PartTime,
		Percentage:  80,
		DaysPerWeek: 4,
	})
	require.NoError(t, err)

	require.Equal(t, "24.2", tr.Engine.TotalAvailable(person, 2025).String())
}

// =============================================================================
// COUNTING AND RESOLUTION
// =============================================================================

func TestRemaining_SubtractsVacationDaysOnly(t *testing.T) {
	// GIVEN: 24.2 available, three vacation days and one training day marked
	// WHEN: Deriving the remaining balance
	// THEN: Only vacation days consume it: 24.2 - 3 = 21.2

	ctx := context.Background()
	tr := newTestTracker(t)
	configureYear(t, tr, 2025, 30)
	person := addPerson(t, tr, "Edsger")

	_, err := tr.SaveYearlyData(ctx, person, 2025, 5, absence.EmploymentRecord{
		Type:        absence.PartTime,
		Percentage:  80,
		DaysPerWeek: 4,
	})
	require.NoError(t, err)

	for _, day := range []int{2, 3, 4} { // Mon-Wed in June 2025
		d := absence.NewDate(2025, time.June, day)
		require.NoError(t, tr.DayEntries.Set(ctx, person, d, absence.CategoryVacation))
	}
	require.NoError(t, tr.DayEntries.Set(ctx, person,
		absence.NewDate(2025, time.June, 5), absence.CategoryTraining))

	require.Equal(t, "21.2", tr.Engine.Remaining(person, 2025).String())
}

func TestResolution_PersonalEntryWinsOverGlobalDay(t *testing.T) {
	// GIVEN: Dec 24 2025 (a Wednesday) is a global team day, and one person
	//        marked it as personal vacation
	// WHEN: Counting categories for both persons
	// THEN: The personal entry wins for its owner; everyone else gets the
	//       global category

	ctx := context.Background()
	tr := newTestTracker(t)
	configureYear(t, tr, 2025, 30)
	withEntry := addPerson(t, tr, "Quinn")
	without := addPerson(t, tr, "Robin")

	christmasEve := absence.NewDate(2025, time.December, 24)
	require.NoError(t, tr.GlobalDays.Set(ctx, christmasEve, absence.CategoryTeamDay))
	require.NoError(t, tr.DayEntries.Set(ctx, withEntry, christmasEve, absence.CategoryVacation))

	require.Equal(t, 1, tr.Engine.CategoryCount(withEntry, 2025, absence.CategoryVacation))
	require.Equal(t, 0, tr.Engine.CategoryCount(withEntry, 2025, absence.CategoryTeamDay))

	require.Equal(t, 0, tr.Engine.CategoryCount(without, 2025, absence.CategoryVacation))
	require.Equal(t, 1, tr.Engine.CategoryCount(without, 2025, absence.CategoryTeamDay))
}

func TestResolution_DateWithBothSourcesCountsOnce(t *testing.T) {
	// A date present in both maps must not be double-counted.

	ctx := context.Background()
	tr := newTestTracker(t)
	configureYear(t, tr, 2025, 30)
	person := addPerson(t, tr, "Ada")

	d := absence.NewDate(2025, time.December, 24)
	require.NoError(t, tr.GlobalDays.Set(ctx, d, absence.CategoryTeamDay))
	require.NoError(t, tr.DayEntries.Set(ctx, person, d, absence.CategoryTeamDay))

	require.Equal(t, 1, tr.Engine.CategoryCount(person, 2025, absence.CategoryTeamDay))
}

func TestCategoryCount_ScopedToYear(t *testing.T) {
	// Entries in other years never leak into a year's counts.

	ctx := context.Background()
	tr := newTestTracker(t)
	configureYear(t, tr, 2025, 30)
	person := addPerson(t, tr, "Ada")

	require.NoError(t, tr.DayEntries.Set(ctx, person,
		absence.NewDate(2024, time.June, 3), absence.CategoryVacation))
	require.NoError(t, tr.DayEntries.Set(ctx, person,
		absence.NewDate(2025, time.June, 3), absence.CategoryVacation))

	require.Equal(t, 1, tr.Engine.CategoryCount(person, 2025, absence.CategoryVacation))
	require.Equal(t, 1, tr.Engine.CategoryCount(person, 2024, absence.CategoryVacation))
}

// =============================================================================
// YEAR SUMMARY
// =============================================================================

func TestYearSummary_InternallyConsistent(t *testing.T) {
	// GIVEN: A part-time person with carryover, vacation, training, and a
	//        global team day
	// WHEN: Building the year summary
	// THEN: total == entitlement + carryover and
	//       remaining == total - vacationUsed hold exactly

	ctx := context.Background()
	tr := newTestTracker(t)
	configureYear(t, tr, 2025, 30)
	person := addPerson(t, tr, "Edsger")

	_, err := tr.SaveYearlyData(ctx, person, 2025, 5, absence.EmploymentRecord{
		Type:        absence.PartTime,
		Percentage:  80,
		DaysPerWeek: 4,
	})
	require.NoError(t, err)

	require.NoError(t, tr.DayEntries.Set(ctx, person,
		absence.NewDate(2025, time.June, 2), absence.CategoryVacation))
	require.NoError(t, tr.DayEntries.Set(ctx, person,
		absence.NewDate(2025, time.June, 3), absence.CategoryVacation))
	require.NoError(t, tr.DayEntries.Set(ctx, person,
		absence.NewDate(2025, time.July, 15), absence.CategoryTraining))
	require.NoError(t, tr.GlobalDays.Set(ctx,
		absence.NewDate(2025, time.December, 24), absence.CategoryTeamDay))

	s := tr.Engine.YearSummary(person, 2025)

	require.Equal(t, 5, s.Carryover)
	require.Equal(t, "19.2", s.Entitlement.String())
	require.Equal(t, "24.2", s.TotalAvailable.String())
	require.Equal(t, 2, s.VacationUsed)
	require.Equal(t, "22.2", s.Remaining.String())
	require.Equal(t, 1, s.TrainingDays)
	require.Equal(t, 1, s.TeamDays)

	require.True(t, s.TotalAvailable.Equal(s.Entitlement.Add(decimalFromInt(s.Carryover))))
	require.True(t, s.Remaining.Equal(s.TotalAvailable.Sub(decimalFromInt(s.VacationUsed))))
}

func TestYearSummary_EmptyPersonYearIsAllZero(t *testing.T) {
	tr := newTestTracker(t)
	s := tr.Engine.YearSummary("nobody", 2025)

	require.True(t, s.Entitlement.IsZero())
	require.True(t, s.TotalAvailable.IsZero())
	require.True(t, s.Remaining.IsZero())
	require.Zero(t, s.VacationUsed)
	require.Zero(t, s.TrainingDays)
	require.Zero(t, s.TeamDays)
}
