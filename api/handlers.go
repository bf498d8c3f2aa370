/*
handlers.go - HTTP API handlers for the absence tracker

PURPOSE:
  Exposes the accounting engine via REST. Handles HTTP request/response
  and JSON serialization, delegates everything else to the domain layer.

ENDPOINTS:
  Years:
    GET    /api/years                          List configured years
    POST   /api/years                          Configure a year
    PUT    /api/years/{year}                   Update base entitlement
    DELETE /api/years/{year}                   Delete year + cascade
    PUT    /api/years/{year}/holidays-imported Set import-status flag

  Persons:
    GET    /api/persons                        List (display order)
    POST   /api/persons                        Create
    PUT    /api/persons/{id}                   Rename
    DELETE /api/persons/{id}                   Delete + cascade
    PUT    /api/persons/order                  Reorder

  Yearly data / day entries:
    PUT    /api/persons/{id}/years/{year}/yearly-data  Two-flag save
    GET    /api/persons/{id}/years/{year}/summary      Aggregate figures
    PUT    /api/persons/{id}/days                      Set personal entry
    DELETE /api/persons/{id}/days                      Remove entry

  Global days:
    GET    /api/years/{year}/global-days       List overrides of the year
    PUT    /api/years/{year}/global-days       Set one override
    DELETE /api/years/{year}/global-days       Remove one override
    POST   /api/years/{year}/global-days/batch Atomic import

ERROR HANDLING:
  - 400: validation rejections (weekend, day out of range, employment
         shape, unknown category), reported before any write happens
  - 404: unconfigured year / unknown person
  - 409: duplicate year
  - 422: batch validation failure, with the rejected dates listed
  - 503: sync layer unavailable

SEE ALSO:
  - dto.go: Request/response structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/absence-engine/absence"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds the domain dependencies for all HTTP handlers.
type Handler struct {
	Tracker *absence.Tracker

	// Track currently loaded demo scenario
	currentScenario string
}

func NewHandler(tracker *absence.Tracker) *Handler {
	return &Handler{Tracker: tracker}
}

// =============================================================================
// YEAR HANDLERS
// =============================================================================

// ListYears returns the configured years, ascending.
func (h *Handler) ListYears(w http.ResponseWriter, r *http.Request) {
	years := h.Tracker.Years.ListConfiguredYears()
	dtos := make([]YearConfigDTO, 0, len(years))
	for _, y := range years {
		cfg, _ := h.Tracker.Years.Get(y)
		dtos = append(dtos, YearConfigDTO{
			Year:                cfg.Year,
			BaseEntitlementDays: cfg.BaseEntitlementDays,
			HolidaysImported:    cfg.HolidaysImported,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddYear configures a new accounting year.
func (h *Handler) AddYear(w http.ResponseWriter, r *http.Request) {
	var req AddYearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Tracker.Years.Add(r.Context(), req.Year, req.BaseEntitlementDays); err != nil {
		writeDomainError(w, "Failed to add year", err)
		return
	}
	writeJSON(w, http.StatusCreated, YearConfigDTO{
		Year:                req.Year,
		BaseEntitlementDays: req.BaseEntitlementDays,
	})
}

// UpdateYear changes the base entitlement of a configured year.
func (h *Handler) UpdateYear(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var req UpdateYearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Tracker.Years.Update(r.Context(), year, req.BaseEntitlementDays); err != nil {
		writeDomainError(w, "Failed to update year", err)
		return
	}
	cfg, _ := h.Tracker.Years.Get(year)
	writeJSON(w, http.StatusOK, YearConfigDTO{
		Year:                cfg.Year,
		BaseEntitlementDays: cfg.BaseEntitlementDays,
		HolidaysImported:    cfg.HolidaysImported,
	})
}

// DeleteYear removes a year config and cascades over every dependent
// record. The UI asks for confirmation before calling this.
func (h *Handler) DeleteYear(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	if err := h.Tracker.DeleteYearConfig(r.Context(), year); err != nil {
		writeDomainError(w, "Failed to delete year", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetHolidaysImported flips the per-year import-status flag.
func (h *Handler) SetHolidaysImported(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var req ImportStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Tracker.Years.SetHolidaysImported(r.Context(), year, req.Imported); err != nil {
		writeDomainError(w, "Failed to set import status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PERSON HANDLERS
// =============================================================================

// ListPersons returns all persons in display order.
func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	persons := h.Tracker.Persons.List()
	dtos := make([]PersonDTO, 0, len(persons))
	for _, p := range persons {
		dtos = append(dtos, PersonDTO{ID: string(p.ID), Name: p.Name, Position: p.Position})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePerson adds a person at the end of the current order.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	person, err := h.Tracker.Persons.Add(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, "Failed to create person", err)
		return
	}
	writeJSON(w, http.StatusCreated, PersonDTO{
		ID: string(person.ID), Name: person.Name, Position: person.Position,
	})
}

// RenamePerson changes a person's display name.
func (h *Handler) RenamePerson(w http.ResponseWriter, r *http.Request) {
	id := absence.PersonID(chi.URLParam(r, "id"))
	var req RenamePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Tracker.Persons.Rename(r.Context(), id, req.Name); err != nil {
		writeDomainError(w, "Failed to rename person", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePerson removes a person and all their records in every year.
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id := absence.PersonID(chi.URLParam(r, "id"))
	if err := h.Tracker.DeletePerson(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete person", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderPersons applies a new display order.
func (h *Handler) ReorderPersons(w http.ResponseWriter, r *http.Request) {
	var req ReorderPersonsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ids := make([]absence.PersonID, len(req.IDs))
	for i, id := range req.IDs {
		ids[i] = absence.PersonID(id)
	}
	if err := h.Tracker.Persons.Reorder(r.Context(), ids); err != nil {
		writeDomainError(w, "Failed to reorder persons", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// YEARLY DATA / SUMMARY HANDLERS
// =============================================================================

// SaveYearlyData saves carryover and employment for one person-year.
// The two writes are independent; the response reports both outcomes.
func (h *Handler) SaveYearlyData(w http.ResponseWriter, r *http.Request) {
	id := absence.PersonID(chi.URLParam(r, "id"))
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var req YearlyDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp := absence.EmploymentRecord{
		Type:        absence.EmploymentType(req.Employment.Type),
		Percentage:  req.Employment.Percentage,
		DaysPerWeek: req.Employment.DaysPerWeek,
	}
	res, err := h.Tracker.SaveYearlyData(r.Context(), id, year, req.CarryoverDays, emp)
	if err != nil {
		writeDomainError(w, "Yearly data rejected", err)
		return
	}

	dto := YearlySaveResultDTO{
		CarryoverSaved:  res.CarryoverSaved,
		EmploymentSaved: res.EmploymentSaved,
	}
	if res.CarryoverErr != nil {
		dto.CarryoverError = res.CarryoverErr.Error()
	}
	if res.EmploymentErr != nil {
		dto.EmploymentError = res.EmploymentErr.Error()
	}
	status := http.StatusOK
	if !res.CarryoverSaved || !res.EmploymentSaved {
		// Partial success is a first-class outcome, not a 500.
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, dto)
}

// GetYearSummary returns the aggregate figures for one person-year.
func (h *Handler) GetYearSummary(w http.ResponseWriter, r *http.Request) {
	id := absence.PersonID(chi.URLParam(r, "id"))
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	if _, exists := h.Tracker.Persons.Get(id); !exists {
		writeError(w, http.StatusNotFound, "Person not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toYearSummaryDTO(h.Tracker.Engine.YearSummary(id, year)))
}

// =============================================================================
// PERSONAL DAY ENTRY HANDLERS
// =============================================================================

// SetDayEntry stores a personal day entry, overriding any global setting
// on that date for this person.
func (h *Handler) SetDayEntry(w http.ResponseWriter, r *http.Request) {
	id := absence.PersonID(chi.URLParam(r, "id"))
	var req SetDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	err := h.Tracker.DayEntries.Set(r.Context(), id, req.Date.toDate(), absence.Category(req.Category))
	if err != nil {
		writeDomainError(w, "Failed to set day entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDayEntry removes a personal day entry. Idempotent.
func (h *Handler) DeleteDayEntry(w http.ResponseWriter, r *http.Request) {
	id := absence.PersonID(chi.URLParam(r, "id"))
	var req DeleteDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Tracker.DayEntries.Delete(r.Context(), id, req.Date.toDate()); err != nil {
		writeDomainError(w, "Failed to delete day entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// GLOBAL DAY HANDLERS
// =============================================================================

// ListGlobalDays returns the overrides of one year, sorted by date.
func (h *Handler) ListGlobalDays(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	dates := h.Tracker.GlobalDays.DatesInYear(year)
	dtos := make([]GlobalDayDTO, 0, len(dates))
	for _, d := range dates {
		c, _ := h.Tracker.GlobalDays.Get(d)
		dtos = append(dtos, GlobalDayDTO{Date: toDateDTO(d), Category: string(c)})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SetGlobalDay stores one organization-wide override.
func (h *Handler) SetGlobalDay(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var req SetDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date := req.Date.toDate()
	if !date.InYear(year) {
		writeError(w, http.StatusBadRequest, "Date does not belong to year", nil)
		return
	}

	if err := h.Tracker.GlobalDays.Set(r.Context(), date, absence.Category(req.Category)); err != nil {
		writeDomainError(w, "Failed to set global day", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteGlobalDay removes one override. Idempotent.
func (h *Handler) DeleteGlobalDay(w http.ResponseWriter, r *http.Request) {
	if _, ok := yearParam(w, r); !ok {
		return
	}
	var req DeleteDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Tracker.GlobalDays.Delete(r.Context(), req.Date.toDate()); err != nil {
		writeDomainError(w, "Failed to delete global day", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BatchSetGlobalDays imports a set of overrides atomically. One invalid
// date rejects the whole batch; the response lists every rejection.
func (h *Handler) BatchSetGlobalDays(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var req BatchGlobalDaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	dates := make([]absence.Date, len(req.Dates))
	for i, d := range req.Dates {
		dates[i] = d.toDate()
	}
	err := h.Tracker.GlobalDays.BatchSet(r.Context(), year, dates, absence.Category(req.Category))
	if err != nil {
		var batchErr *absence.BatchValidationError
		if errors.As(err, &batchErr) {
			resp := BatchRejectedResponse{Error: "Batch rejected, nothing was written"}
			for _, rej := range batchErr.Rejected {
				resp.Rejected = append(resp.Rejected, RejectedDateDTO{
					Date:   toDateDTO(rej.Date),
					Reason: rej.Reason.Error(),
				})
			}
			writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
		writeDomainError(w, "Failed to import global days", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, false
	}
	return year, true
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, absence.ErrDuplicateYear):
		writeError(w, http.StatusConflict, message, err)
	case absence.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case absence.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, absence.ErrPersistenceUnavailable):
		writeError(w, http.StatusServiceUnavailable, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
