/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the tracker with realistic
	data for demos. Each scenario creates persons, a configured year, and
	day entries that demonstrate specific features.

AVAILABLE SCENARIOS:

	small-team:     Three persons, one configured year, a few entries
	part-time-mix:  Full-time and part-time persons showing proration
	holiday-import: A year with public holidays batch-imported

HOW SCENARIOS WORK:
 1. Configure the current year
 2. Create persons
 3. Save yearly data (carryover, employment)
 4. Set personal entries and global overrides

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "part-time-mix"}

NOTE:

	Scenarios write into the live store without clearing it first. Only
	use against a fresh development database.

SEE ALSO:
  - handlers.go: writeJSON / writeError helpers
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/absence-engine/absence"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-team",
		Name:        "Small Team",
		Description: "Three persons with a configured year and a handful of entries",
	},
	{
		ID:          "part-time-mix",
		Name:        "Part-Time Mix",
		Description: "Full-time and part-time employment showing prorated entitlement",
	},
	{
		ID:          "holiday-import",
		Name:        "Holiday Import",
		Description: "A year with public holidays batch-imported as global days",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:   h.currentScenario,
		Name: h.currentScenario,
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	var err error
	switch req.ScenarioID {
	case "small-team":
		err = h.loadSmallTeamScenario(ctx)
	case "part-time-mix":
		err = h.loadPartTimeMixScenario(ctx)
	case "holiday-import":
		err = h.loadHolidayImportScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSmallTeamScenario(ctx context.Context) error {
	year := time.Now().Year()
	if err := h.ensureYear(ctx, year, 30); err != nil {
		return err
	}

	persons := make([]absence.Person, 0, 3)
	for _, name := range []string{"Ada", "Grace", "Linus"} {
		p, err := h.Tracker.Persons.Add(ctx, name)
		if err != nil {
			return err
		}
		persons = append(persons, p)
	}

	// Ada took a week of vacation in June.
	for day := 1; day <= 5; day++ {
		d := absence.NewDate(year, time.June, day)
		if d.IsWeekend() {
			continue
		}
		if err := h.Tracker.DayEntries.Set(ctx, persons[0].ID, d, absence.CategoryVacation); err != nil {
			return err
		}
	}
	// Grace carries five days over from last year.
	_, err := h.Tracker.SaveYearlyData(ctx, persons[1].ID, year, 5, absence.DefaultEmployment())
	return err
}

func (h *Handler) loadPartTimeMixScenario(ctx context.Context) error {
	year := time.Now().Year()
	if err := h.ensureYear(ctx, year, 30); err != nil {
		return err
	}

	full, err := h.Tracker.Persons.Add(ctx, "Margaret")
	if err != nil {
		return err
	}
	part, err := h.Tracker.Persons.Add(ctx, "Edsger")
	if err != nil {
		return err
	}

	if _, err := h.Tracker.SaveYearlyData(ctx, full.ID, year, 0, absence.DefaultEmployment()); err != nil {
		return err
	}
	// 4 days a week at 80%: 30 * (4/5) * 0.8 = 19.2 days.
	_, err = h.Tracker.SaveYearlyData(ctx, part.ID, year, 2, absence.EmploymentRecord{
		Type:        absence.PartTime,
		Percentage:  80,
		DaysPerWeek: 4,
	})
	return err
}

func (h *Handler) loadHolidayImportScenario(ctx context.Context) error {
	year := time.Now().Year()
	if err := h.ensureYear(ctx, year, 28); err != nil {
		return err
	}

	// Fixed-date holidays that fall on a weekday this year.
	candidates := []absence.Date{
		absence.NewDate(year, time.January, 1),
		absence.NewDate(year, time.May, 1),
		absence.NewDate(year, time.October, 3),
		absence.NewDate(year, time.December, 25),
		absence.NewDate(year, time.December, 26),
	}
	var dates []absence.Date
	for _, d := range candidates {
		if !d.IsWeekend() {
			dates = append(dates, d)
		}
	}

	if err := h.Tracker.GlobalDays.BatchSet(ctx, year, dates, absence.CategoryHoliday); err != nil {
		return err
	}
	return h.Tracker.Years.SetHolidaysImported(ctx, year, true)
}

func (h *Handler) ensureYear(ctx context.Context, year, entitlement int) error {
	err := h.Tracker.Years.Add(ctx, year, entitlement)
	if errors.Is(err, absence.ErrDuplicateYear) {
		return nil
	}
	return err
}
