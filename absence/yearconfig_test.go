package absence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warp/absence-engine/absence"
)

func TestYearConfig_AddAndList(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	require.NoError(t, tr.Years.Add(ctx, 2026, 28))
	require.NoError(t, tr.Years.Add(ctx, 2024, 30))
	require.NoError(t, tr.Years.Add(ctx, 2025, 30))

	require.Equal(t, []int{2024, 2025, 2026}, tr.Years.ListConfiguredYears())

	cfg, ok := tr.Years.Get(2026)
	require.True(t, ok)
	require.Equal(t, 28, cfg.BaseEntitlementDays)
	require.False(t, cfg.HolidaysImported)
}

func TestYearConfig_DuplicateYearRejected(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	require.NoError(t, tr.Years.Add(ctx, 2025, 30))
	err := tr.Years.Add(ctx, 2025, 25)
	require.ErrorIs(t, err, absence.ErrDuplicateYear)

	// The original config survives untouched.
	cfg, _ := tr.Years.Get(2025)
	require.Equal(t, 30, cfg.BaseEntitlementDays)
}

func TestYearConfig_NegativeEntitlementRejected(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	require.ErrorIs(t, tr.Years.Add(ctx, 2025, -1), absence.ErrNegativeEntitlement)

	require.NoError(t, tr.Years.Add(ctx, 2025, 30))
	require.ErrorIs(t, tr.Years.Update(ctx, 2025, -5), absence.ErrNegativeEntitlement)
}

func TestYearConfig_UpdateRequiresExistingYear(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	require.ErrorIs(t, tr.Years.Update(ctx, 2025, 28), absence.ErrNotFound)

	require.NoError(t, tr.Years.Add(ctx, 2025, 30))
	require.NoError(t, tr.Years.Update(ctx, 2025, 28))

	cfg, _ := tr.Years.Get(2025)
	require.Equal(t, 28, cfg.BaseEntitlementDays)
}

func TestYearConfig_HolidaysImportedFlag(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	require.ErrorIs(t, tr.Years.SetHolidaysImported(ctx, 2025, true), absence.ErrNotFound)

	require.NoError(t, tr.Years.Add(ctx, 2025, 30))
	require.NoError(t, tr.Years.SetHolidaysImported(ctx, 2025, true))
	// Idempotent: same value again is a no-op, not an error.
	require.NoError(t, tr.Years.SetHolidaysImported(ctx, 2025, true))

	cfg, _ := tr.Years.Get(2025)
	require.True(t, cfg.HolidaysImported)

	require.NoError(t, tr.Years.SetHolidaysImported(ctx, 2025, false))
	cfg, _ = tr.Years.Get(2025)
	require.False(t, cfg.HolidaysImported)
}
