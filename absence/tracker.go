/*
tracker.go - Aggregate wiring of the stores and cross-store operations

PURPOSE:
  Owns the operations no single store can perform alone:

  1. Cascade deletes. Removing a year config (or a person) must take every
     dependent record with it, and readers must never observe the config
     gone while dependents remain. Both cascades collect the affected keys
     from the store mirrors and commit them as ONE WriteBatch.

  2. The yearly save. Saving a person's yearly data is two independent
     writes (carryover, employment) with independent outcomes. Partial
     success is a first-class result, not an error: the caller learns
     which half committed.

USAGE:
  tracker := absence.NewTracker(adapter)
  go tracker.Start(ctx)       // fold in external changes
  tracker.Persons.Add(ctx, "Ada")

SEE ALSO:
  - engine.go: Derivation layer exposed as tracker.Engine
*/
package absence

import (
	"context"
)

// Tracker bundles the stores, the resolver, and the engine over one sync
// adapter.
type Tracker struct {
	adapter SyncAdapter

	Persons    *PersonDirectory
	Years      *YearConfigStore
	Employment *EmploymentStore
	Carryover  *CarryoverLedger
	GlobalDays *GlobalDayStore
	DayEntries *DayEntryStore
	Engine     *Engine
}

func NewTracker(adapter SyncAdapter) *Tracker {
	t := &Tracker{
		adapter:    adapter,
		Persons:    NewPersonDirectory(adapter),
		Years:      NewYearConfigStore(adapter),
		Employment: NewEmploymentStore(adapter),
		Carryover:  NewCarryoverLedger(adapter),
		GlobalDays: NewGlobalDayStore(adapter),
		DayEntries: NewDayEntryStore(adapter),
	}
	t.Engine = &Engine{
		Years:      t.Years,
		Employment: t.Employment,
		Carryover:  t.Carryover,
		Resolver:   Resolver{Personal: t.DayEntries, Global: t.GlobalDays},
	}
	return t
}

// Resolver returns the single personal-over-global join point.
func (t *Tracker) Resolver() Resolver {
	return t.Engine.Resolver
}

// Start launches the subscription loops of all stores and blocks until
// ctx is done. The loops replay current state first, so mirrors converge
// with durable storage shortly after Start.
func (t *Tracker) Start(ctx context.Context) {
	run := func(f func(context.Context) error) { go f(ctx) }
	run(t.Persons.Run)
	run(t.Years.Run)
	run(t.Employment.Run)
	run(t.Carryover.Run)
	run(t.GlobalDays.Run)
	run(t.DayEntries.Run)
	<-ctx.Done()
}

// =============================================================================
// CASCADE DELETES - One atomic batch per cascade
// =============================================================================

// DeleteYearConfig removes a year config together with every employment,
// carryover, global-day and day-entry record scoped to the year, for all
// persons, as one atomic unit. Fails with ErrNotFound if the year is
// unconfigured. Irreversible; confirmation is the caller's concern.
func (t *Tracker) DeleteYearConfig(ctx context.Context, year int) error {
	if _, ok := t.Years.Get(year); !ok {
		return ErrNotFound
	}
	batch, err := batcher(t.adapter)
	if err != nil {
		return err
	}

	keys := []string{yearConfigKey(year)}
	keys = append(keys, t.Employment.keysForYear(year)...)
	keys = append(keys, t.Carryover.keysForYear(year)...)
	keys = append(keys, t.GlobalDays.keysForYear(year)...)
	keys = append(keys, t.DayEntries.keysForYear(year)...)

	if err := batch.WriteBatch(ctx, deletions(keys)); err != nil {
		return err
	}

	t.Years.forgetYear(year)
	t.Employment.forgetYear(year)
	t.Carryover.forgetYear(year)
	t.GlobalDays.forgetYear(year)
	t.DayEntries.forgetYear(year)
	return nil
}

// DeletePerson removes a person and every per-person record across all
// years as one atomic unit. Fails with ErrNotFound for an unknown person.
func (t *Tracker) DeletePerson(ctx context.Context, id PersonID) error {
	if _, ok := t.Persons.Get(id); !ok {
		return ErrNotFound
	}
	batch, err := batcher(t.adapter)
	if err != nil {
		return err
	}

	keys := []string{personKey(id)}
	keys = append(keys, t.Employment.keysForPerson(id)...)
	keys = append(keys, t.Carryover.keysForPerson(id)...)
	keys = append(keys, t.DayEntries.keysForPerson(id)...)

	if err := batch.WriteBatch(ctx, deletions(keys)); err != nil {
		return err
	}

	t.Persons.forgetPerson(id)
	t.Employment.forgetPerson(id)
	t.Carryover.forgetPerson(id)
	t.DayEntries.forgetPerson(id)
	return nil
}

func deletions(keys []string) []Mutation {
	muts := make([]Mutation, 0, len(keys))
	for _, k := range keys {
		muts = append(muts, Mutation{Key: k})
	}
	return muts
}

// =============================================================================
// YEARLY SAVE - Two independent writes, two independent outcomes
// =============================================================================

// YearlySaveResult reports which halves of a yearly save committed.
// Callers render partial success from the flags; the per-part errors say
// why a half did not commit.
type YearlySaveResult struct {
	CarryoverSaved  bool
	EmploymentSaved bool
	CarryoverErr    error
	EmploymentErr   error
}

// SaveYearlyData persists a person's carryover and employment record for
// one year. The employment shape is validated before anything is written;
// a validation failure means zero writes and a non-nil error. After
// validation the two writes are independent: either may fail while the
// other commits, and the result reports both outcomes with a nil error.
func (t *Tracker) SaveYearlyData(ctx context.Context, person PersonID, year int, carryoverDays int, emp EmploymentRecord) (YearlySaveResult, error) {
	if err := emp.Validate(); err != nil {
		return YearlySaveResult{}, err
	}

	var res YearlySaveResult
	if err := t.Carryover.Save(ctx, person, year, carryoverDays); err != nil {
		res.CarryoverErr = err
	} else {
		res.CarryoverSaved = true
	}
	if err := t.Employment.Save(ctx, person, year, emp); err != nil {
		res.EmploymentErr = err
	} else {
		res.EmploymentSaved = true
	}
	return res, nil
}
