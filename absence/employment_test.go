package absence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warp/absence-engine/absence"
)

func TestEmploymentRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rec     absence.EmploymentRecord
		wantErr bool
	}{
		{"full-time default", absence.DefaultEmployment(), false},
		{"full-time below 100", absence.EmploymentRecord{Type: absence.FullTime, Percentage: 80}, true},
		{"full-time with days per week", absence.EmploymentRecord{Type: absence.FullTime, Percentage: 100, DaysPerWeek: 4}, true},
		{"part-time valid", absence.EmploymentRecord{Type: absence.PartTime, Percentage: 80, DaysPerWeek: 4}, false},
		{"part-time zero percent", absence.EmploymentRecord{Type: absence.PartTime, Percentage: 0, DaysPerWeek: 3}, false},
		{"part-time over 100", absence.EmploymentRecord{Type: absence.PartTime, Percentage: 120, DaysPerWeek: 4}, true},
		{"part-time negative percent", absence.EmploymentRecord{Type: absence.PartTime, Percentage: -10, DaysPerWeek: 4}, true},
		{"part-time zero days", absence.EmploymentRecord{Type: absence.PartTime, Percentage: 80, DaysPerWeek: 0}, true},
		{"part-time six days", absence.EmploymentRecord{Type: absence.PartTime, Percentage: 80, DaysPerWeek: 6}, true},
		{"unknown type", absence.EmploymentRecord{Type: "contractor", Percentage: 100}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, absence.ErrInvalidEmployment)

			var detail *absence.InvalidEmploymentError
			require.True(t, errors.As(err, &detail))
			require.NotEmpty(t, detail.Reason)
		})
	}
}

func TestEmploymentRecord_ProratedFraction(t *testing.T) {
	tests := []struct {
		name string
		rec  absence.EmploymentRecord
		want string
	}{
		{"full-time 100%", absence.DefaultEmployment(), "1"},
		{"part-time 5 days 100%", absence.EmploymentRecord{Type: absence.PartTime, Percentage: 100, DaysPerWeek: 5}, "1"},
		{"part-time 4 days 100%", absence.EmploymentRecord{Type: absence.PartTime, Percentage: 100, DaysPerWeek: 4}, "0.8"},
		{"part-time 4 days 80%", absence.EmploymentRecord{Type: absence.PartTime, Percentage: 80, DaysPerWeek: 4}, "0.64"},
		{"part-time 3 days 50%", absence.EmploymentRecord{Type: absence.PartTime, Percentage: 50, DaysPerWeek: 3}, "0.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.rec.ProratedFraction().String())
		})
	}
}

func TestEmploymentStore_AbsentRecordIsFullTime(t *testing.T) {
	tr := newTestTracker(t)
	require.Equal(t, absence.DefaultEmployment(), tr.Employment.Get("nobody", 2025))
}

func TestEmploymentStore_SaveRejectsInvalidBeforeWrite(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	person := addPerson(t, tr, "Ada")

	bad := absence.EmploymentRecord{Type: absence.PartTime, Percentage: 80, DaysPerWeek: 9}
	require.ErrorIs(t, tr.Employment.Save(ctx, person, 2025, bad), absence.ErrInvalidEmployment)

	// Nothing was stored; the default still applies.
	require.Equal(t, absence.DefaultEmployment(), tr.Employment.Get(person, 2025))
}

func TestEmploymentStore_RecordsAreScopedPerYear(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	person := addPerson(t, tr, "Edsger")

	partTime := absence.EmploymentRecord{Type: absence.PartTime, Percentage: 80, DaysPerWeek: 4}
	require.NoError(t, tr.Employment.Save(ctx, person, 2025, partTime))

	require.Equal(t, partTime, tr.Employment.Get(person, 2025))
	require.Equal(t, absence.DefaultEmployment(), tr.Employment.Get(person, 2026))
}

func TestCarryoverLedger_DefaultsToZeroAndAllowsNegative(t *testing.T) {
	// A negative carryover models owed days; the ledger stores it as given.

	ctx := context.Background()
	tr := newTestTracker(t)
	person := addPerson(t, tr, "Ada")

	require.Zero(t, tr.Carryover.Get(person, 2025))

	require.NoError(t, tr.Carryover.Save(ctx, person, 2025, -3))
	require.Equal(t, -3, tr.Carryover.Get(person, 2025))

	require.NoError(t, tr.Carryover.Save(ctx, person, 2025, 7))
	require.Equal(t, 7, tr.Carryover.Get(person, 2025))
}
