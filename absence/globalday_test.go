package absence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warp/absence-engine/absence"
)

func TestGlobalDay_RejectsWeekend(t *testing.T) {
	// GIVEN: Jan 4 2025 is a Saturday
	// WHEN: Setting it as a global holiday
	// THEN: The write is rejected before reaching the sync layer

	tr := newTestTracker(t)
	saturday := absence.NewDate(2025, time.January, 4)

	err := tr.GlobalDays.Set(context.Background(), saturday, absence.CategoryHoliday)
	require.ErrorIs(t, err, absence.ErrWeekendRejected)
	require.True(t, absence.IsValidation(err))

	_, ok := tr.GlobalDays.Get(saturday)
	require.False(t, ok)
}

func TestGlobalDay_RejectsNonexistentDate(t *testing.T) {
	tr := newTestTracker(t)
	feb30 := absence.NewDate(2025, time.February, 30)

	err := tr.GlobalDays.Set(context.Background(), feb30, absence.CategoryHoliday)
	require.ErrorIs(t, err, absence.ErrDayOutOfRange)
}

func TestGlobalDay_RejectsPersonOnlyCategories(t *testing.T) {
	// Vacation and training are always personal; only team days and
	// holidays may apply organization-wide.

	tr := newTestTracker(t)
	weekday := absence.NewDate(2025, time.March, 10)

	for _, c := range []absence.Category{absence.CategoryVacation, absence.CategoryTraining} {
		err := tr.GlobalDays.Set(context.Background(), weekday, c)
		require.ErrorIs(t, err, absence.ErrInvalidCategory, "category %s", c)
	}
}

func TestGlobalDay_SetOverwritesAndDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	d := absence.NewDate(2025, time.March, 10)

	require.NoError(t, tr.GlobalDays.Set(ctx, d, absence.CategoryTeamDay))
	require.NoError(t, tr.GlobalDays.Set(ctx, d, absence.CategoryHoliday))

	c, ok := tr.GlobalDays.Get(d)
	require.True(t, ok)
	require.Equal(t, absence.CategoryHoliday, c)

	require.NoError(t, tr.GlobalDays.Delete(ctx, d))
	_, ok = tr.GlobalDays.Get(d)
	require.False(t, ok)

	// Deleting again is a successful no-op.
	require.NoError(t, tr.GlobalDays.Delete(ctx, d))
}

func TestGlobalDay_BatchSetIsAllOrNothing(t *testing.T) {
	// GIVEN: A batch where one date falls on a Saturday
	// WHEN: Importing the batch
	// THEN: The whole batch is rejected, the error lists the offender, and
	//       none of the valid dates were written either

	ctx := context.Background()
	tr := newTestTracker(t)

	saturday := absence.NewDate(2025, time.January, 4)
	dates := []absence.Date{
		absence.NewDate(2025, time.January, 1),
		saturday,
		absence.NewDate(2025, time.May, 1),
	}

	err := tr.GlobalDays.BatchSet(ctx, 2025, dates, absence.CategoryHoliday)
	require.ErrorIs(t, err, absence.ErrBatchValidationFailed)

	var batchErr *absence.BatchValidationError
	require.True(t, errors.As(err, &batchErr))
	require.Len(t, batchErr.Rejected, 1)
	require.Equal(t, saturday, batchErr.Rejected[0].Date)
	require.ErrorIs(t, batchErr.Rejected[0].Reason, absence.ErrWeekendRejected)

	require.Empty(t, tr.GlobalDays.DatesInYear(2025))
}

func TestGlobalDay_BatchSetRejectsDatesOutsideYear(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	err := tr.GlobalDays.BatchSet(ctx, 2025,
		[]absence.Date{absence.NewDate(2024, time.December, 25)}, absence.CategoryHoliday)

	var batchErr *absence.BatchValidationError
	require.True(t, errors.As(err, &batchErr))
	require.ErrorIs(t, batchErr.Rejected[0].Reason, absence.ErrDayOutOfRange)
}

func TestGlobalDay_BatchSetWritesAllDates(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	dates := []absence.Date{
		absence.NewDate(2025, time.May, 1),
		absence.NewDate(2025, time.January, 1),
		absence.NewDate(2025, time.December, 25),
	}
	require.NoError(t, tr.GlobalDays.BatchSet(ctx, 2025, dates, absence.CategoryHoliday))

	got := tr.GlobalDays.DatesInYear(2025)
	require.Equal(t, []absence.Date{
		absence.NewDate(2025, time.January, 1),
		absence.NewDate(2025, time.May, 1),
		absence.NewDate(2025, time.December, 25),
	}, got, "DatesInYear must be sorted")
}

func TestDayEntry_AllowsWeekendsAndAllCategories(t *testing.T) {
	// Personal entries have no weekend restriction; someone may well mark a
	// Saturday for a training weekend.

	ctx := context.Background()
	tr := newTestTracker(t)
	person := addPerson(t, tr, "Ada")
	saturday := absence.NewDate(2025, time.January, 4)

	require.NoError(t, tr.DayEntries.Set(ctx, person, saturday, absence.CategoryTraining))

	c, ok := tr.DayEntries.Get(person, saturday)
	require.True(t, ok)
	require.Equal(t, absence.CategoryTraining, c)
}

func TestDayEntry_RejectsUnknownCategoryAndBadDate(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	person := addPerson(t, tr, "Ada")

	err := tr.DayEntries.Set(ctx, person, absence.NewDate(2025, time.March, 10), "sabbatical")
	require.ErrorIs(t, err, absence.ErrInvalidCategory)

	err = tr.DayEntries.Set(ctx, person, absence.NewDate(2025, time.February, 30), absence.CategoryVacation)
	require.ErrorIs(t, err, absence.ErrDayOutOfRange)
}

func TestDayEntry_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	person := addPerson(t, tr, "Ada")
	d := absence.NewDate(2025, time.March, 10)

	require.NoError(t, tr.DayEntries.Set(ctx, person, d, absence.CategoryVacation))
	require.NoError(t, tr.DayEntries.Delete(ctx, person, d))
	require.NoError(t, tr.DayEntries.Delete(ctx, person, d))

	_, ok := tr.DayEntries.Get(person, d)
	require.False(t, ok)
}
