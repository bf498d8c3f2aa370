/*
errors.go - Centralized error types for the accounting engine

PURPOSE:
  All error kinds in one place. Validation failures are detected before any
  write is attempted and never reach the persistence layer; persistence
  failures are surfaced unchanged (no retry, no silent fallback).

ERROR CATEGORIES:
  1. Validation errors - date, weekend, range, employment-shape violations
  2. Lookup errors     - year/person/record absent where required
  3. Persistence errors - sync layer unavailable or lacking a capability

USAGE:
  if errors.Is(err, absence.ErrWeekendRejected) { ... }

  var batchErr *absence.BatchValidationError
  if errors.As(err, &batchErr) {
      // batchErr.Rejected lists the offending dates
  }
*/
package absence

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateYear is returned when adding a config for an already
	// configured year. At most one config exists per year.
	ErrDuplicateYear = errors.New("year already configured")

	// ErrNotFound is returned when a year, person, or record is absent
	// where its presence is required.
	ErrNotFound = errors.New("not found")

	// ErrInvalidEmployment is returned when an employment record violates
	// the proration-rule invariants.
	ErrInvalidEmployment = errors.New("invalid employment record")

	// ErrInvalidCategory is returned for an unknown category, or a
	// person-only category used organization-wide.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrWeekendRejected is returned when a global day override targets a
	// Saturday or Sunday.
	ErrWeekendRejected = errors.New("global day overrides cannot fall on a weekend")

	// ErrDayOutOfRange is returned when a date does not exist in its
	// month/year (e.g. Feb 30).
	ErrDayOutOfRange = errors.New("day does not exist in month")

	// ErrBatchValidationFailed is returned when any date in a batch is
	// invalid; the whole batch is rejected and nothing is written.
	ErrBatchValidationFailed = errors.New("batch validation failed")

	// ErrPersistenceUnavailable is returned when the sync layer cannot be
	// reached. Retry policy belongs to the caller, not this engine.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrBatchUnsupported is returned when an atomic multi-key operation is
	// requested against an adapter without batch support.
	ErrBatchUnsupported = errors.New("operation requires a batch-capable sync adapter")

	// ErrNegativeEntitlement is returned when a year config carries a
	// negative base entitlement.
	ErrNegativeEntitlement = errors.New("base entitlement must not be negative")

	// ErrEmptyName is returned when creating or renaming a person with an
	// empty display name.
	ErrEmptyName = errors.New("person name must not be empty")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidEmploymentError reports which invariant an employment record broke.
type InvalidEmploymentError struct {
	Record EmploymentRecord
	Reason string
}

func (e *InvalidEmploymentError) Error() string {
	return fmt.Sprintf("invalid employment record (%s, %d%%, %d days/week): %s",
		e.Record.Type, e.Record.Percentage, e.Record.DaysPerWeek, e.Reason)
}

func (e *InvalidEmploymentError) Unwrap() error { return ErrInvalidEmployment }

// RejectedDate pairs an offending batch date with the reason it was refused.
type RejectedDate struct {
	Date   Date
	Reason error
}

// BatchValidationError reports every rejected date of a failed batch.
// The batch is all-or-nothing: one rejection means zero writes.
type BatchValidationError struct {
	Category Category
	Rejected []RejectedDate
}

func (e *BatchValidationError) Error() string {
	return fmt.Sprintf("batch of %s days rejected: %d invalid date(s), first %s (%v)",
		e.Category, len(e.Rejected), e.Rejected[0].Date, e.Rejected[0].Reason)
}

func (e *BatchValidationError) Unwrap() error { return ErrBatchValidationFailed }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is a pre-write validation rejection
// (client input problem, never a persistence fault).
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidEmployment) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrWeekendRejected) ||
		errors.Is(err, ErrDayOutOfRange) ||
		errors.Is(err, ErrBatchValidationFailed) ||
		errors.Is(err, ErrNegativeEntitlement) ||
		errors.Is(err, ErrEmptyName)
}

// IsNotFound returns true if the error indicates a missing year or person.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
