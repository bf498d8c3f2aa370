/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  internal domain model from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DATES:
  Calendar dates cross the API as {year, month, day} triples with month
  as a ZERO-BASED index (0 = January, 11 = December), never as formatted
  strings. Decimal figures (entitlement, remaining) are serialized as
  JSON numbers; the engine keeps them unrounded and conversion happens
  only here.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/absence-engine/absence"
)

// =============================================================================
// DATES
// =============================================================================

// DateDTO is a calendar day with a zero-based month index.
type DateDTO struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (d DateDTO) toDate() absence.Date {
	return absence.DateFromMonthIndex(d.Year, d.Month, d.Day)
}

func toDateDTO(d absence.Date) DateDTO {
	return DateDTO{Year: d.Year, Month: d.MonthIndex(), Day: d.Day}
}

// =============================================================================
// YEARS
// =============================================================================

type YearConfigDTO struct {
	Year                int  `json:"year"`
	BaseEntitlementDays int  `json:"base_entitlement_days"`
	HolidaysImported    bool `json:"holidays_imported"`
}

type AddYearRequest struct {
	Year                int `json:"year"`
	BaseEntitlementDays int `json:"base_entitlement_days"`
}

type UpdateYearRequest struct {
	BaseEntitlementDays int `json:"base_entitlement_days"`
}

type ImportStatusRequest struct {
	Imported bool `json:"imported"`
}

// =============================================================================
// PERSONS
// =============================================================================

type PersonDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type CreatePersonRequest struct {
	Name string `json:"name"`
}

type RenamePersonRequest struct {
	Name string `json:"name"`
}

type ReorderPersonsRequest struct {
	IDs []string `json:"ids"`
}

// =============================================================================
// YEARLY DATA
// =============================================================================

type EmploymentDTO struct {
	Type        string `json:"type"`
	Percentage  int    `json:"percentage"`
	DaysPerWeek int    `json:"days_per_week,omitempty"`
}

type YearlyDataRequest struct {
	CarryoverDays int           `json:"carryover_days"`
	Employment    EmploymentDTO `json:"employment"`
}

// YearlySaveResultDTO reports each half of the save independently so the
// caller can render partial success.
type YearlySaveResultDTO struct {
	CarryoverSaved  bool   `json:"carryover_saved"`
	EmploymentSaved bool   `json:"employment_saved"`
	CarryoverError  string `json:"carryover_error,omitempty"`
	EmploymentError string `json:"employment_error,omitempty"`
}

// =============================================================================
// DAY ENTRIES AND GLOBAL OVERRIDES
// =============================================================================

type SetDayRequest struct {
	Date     DateDTO `json:"date"`
	Category string  `json:"category"`
}

type DeleteDayRequest struct {
	Date DateDTO `json:"date"`
}

type BatchGlobalDaysRequest struct {
	Dates    []DateDTO `json:"dates"`
	Category string    `json:"category"`
}

type GlobalDayDTO struct {
	Date     DateDTO `json:"date"`
	Category string  `json:"category"`
}

// RejectedDateDTO names one date refused by a batch and why.
type RejectedDateDTO struct {
	Date   DateDTO `json:"date"`
	Reason string  `json:"reason"`
}

type BatchRejectedResponse struct {
	Error    string            `json:"error"`
	Rejected []RejectedDateDTO `json:"rejected"`
}

// =============================================================================
// SUMMARY
// =============================================================================

// YearSummaryDTO mirrors absence.YearSummary. The identity
// total_available == entitlement + carryover and
// remaining == total_available - vacation_used holds by construction.
type YearSummaryDTO struct {
	PersonID       string  `json:"person_id"`
	Year           int     `json:"year"`
	Carryover      int     `json:"carryover"`
	Entitlement    float64 `json:"entitlement"`
	TotalAvailable float64 `json:"total_available"`
	VacationUsed   int     `json:"vacation_used"`
	Remaining      float64 `json:"remaining"`
	TrainingDays   int     `json:"training_days"`
	TeamDays       int     `json:"team_days"`
}

func toYearSummaryDTO(s absence.YearSummary) YearSummaryDTO {
	return YearSummaryDTO{
		PersonID:       string(s.Person),
		Year:           s.Year,
		Carryover:      s.Carryover,
		Entitlement:    s.Entitlement.InexactFloat64(),
		TotalAvailable: s.TotalAvailable.InexactFloat64(),
		VacationUsed:   s.VacationUsed,
		Remaining:      s.Remaining.InexactFloat64(),
		TrainingDays:   s.TrainingDays,
		TeamDays:       s.TeamDays,
	}
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
