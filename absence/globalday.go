/*
globalday.go - Organization-wide day overrides

PURPOSE:
  A per-year map of calendar date to category that applies to every person
  who has no personal entry on that date. Only team days and holidays can
  be organization-wide; vacation and training are always personal.

VALIDATION (before any write):
  - category must be team-day or holiday       -> ErrInvalidCategory
  - date must exist in its month/year          -> ErrDayOutOfRange
  - date must fall on a weekday (Mon-Fri)      -> ErrWeekendRejected

BATCH SEMANTICS:
  BatchSet is all-or-nothing. One invalid date rejects the whole batch with
  BatchValidationError (carrying every rejected date) and zero writes reach
  the sync layer. The commit itself rides on the adapter's WriteBatch so
  readers never observe a partially applied import.
*/
package absence

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const globalDayPrefix = "globalday/"

type globalDayDoc struct {
	Category Category `json:"category"`
}

// GlobalDayStore keeps organization-wide day overrides.
type GlobalDayStore struct {
	adapter SyncAdapter

	mu   sync.RWMutex
	days map[Date]Category
}

func NewGlobalDayStore(adapter SyncAdapter) *GlobalDayStore {
	return &GlobalDayStore{
		adapter: adapter,
		days:    make(map[Date]Category),
	}
}

func (s *GlobalDayStore) Run(ctx context.Context) error {
	events, err := s.adapter.Subscribe(ctx, globalDayPrefix)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.apply(ev)
		}
	}
}

// parseGlobalDayKey decodes "globalday/<year>/<MM-DD>".
func parseGlobalDayKey(key string) (Date, bool) {
	parts := strings.SplitN(strings.TrimPrefix(key, globalDayPrefix), "/", 2)
	if len(parts) != 2 {
		return Date{}, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, false
	}
	month, day, ok := parseMonthDay(parts[1])
	if !ok {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

func (s *GlobalDayStore) apply(ev Event) {
	date, ok := parseGlobalDayKey(ev.Key)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Record == nil {
		delete(s.days, date)
		return
	}
	var doc globalDayDoc
	if err := json.Unmarshal(ev.Record, &doc); err != nil {
		return
	}
	s.days[date] = doc.Category
}

// Get returns the override for a date, ok=false if none is set.
func (s *GlobalDayStore) Get(date Date) (Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.days[date]
	return c, ok
}

// validateGlobal runs the pre-write checks shared by Set and BatchSet.
func validateGlobal(date Date, category Category) error {
	if !category.GlobalAllowed() {
		return ErrInvalidCategory
	}
	if !date.Exists() {
		return ErrDayOutOfRange
	}
	if date.IsWeekend() {
		return ErrWeekendRejected
	}
	return nil
}

// Set stores an organization-wide override, unconditionally replacing any
// prior override for that date.
func (s *GlobalDayStore) Set(ctx context.Context, date Date, category Category) error {
	if err := validateGlobal(date, category); err != nil {
		return err
	}

	doc, err := json.Marshal(globalDayDoc{Category: category})
	if err != nil {
		return err
	}
	if err := s.adapter.Write(ctx, globalDayKey(date), doc); err != nil {
		return err
	}

	s.mu.Lock()
	s.days[date] = category
	s.mu.Unlock()
	return nil
}

// Delete removes an override. Idempotent: deleting an absent entry is a
// successful no-op, not an error.
func (s *GlobalDayStore) Delete(ctx context.Context, date Date) error {
	if err := s.adapter.Write(ctx, globalDayKey(date), nil); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.days, date)
	s.mu.Unlock()
	return nil
}

// BatchSet applies Set across all dates atomically. Dates must belong to
// the given year. If any date is invalid the whole batch fails with
// BatchValidationError and nothing is written.
func (s *GlobalDayStore) BatchSet(ctx context.Context, year int, dates []Date, category Category) error {
	var rejected []RejectedDate
	for _, d := range dates {
		err := validateGlobal(d, category)
		if err == nil && !d.InYear(year) {
			err = ErrDayOutOfRange
		}
		if err != nil {
			rejected = append(rejected, RejectedDate{Date: d, Reason: err})
		}
	}
	if len(rejected) > 0 {
		return &BatchValidationError{Category: category, Rejected: rejected}
	}

	batch, err := batcher(s.adapter)
	if err != nil {
		return err
	}

	doc, err := json.Marshal(globalDayDoc{Category: category})
	if err != nil {
		return err
	}
	muts := make([]Mutation, 0, len(dates))
	for _, d := range dates {
		muts = append(muts, Mutation{Key: globalDayKey(d), Record: doc})
	}
	if err := batch.WriteBatch(ctx, muts); err != nil {
		return err
	}

	s.mu.Lock()
	for _, d := range dates {
		s.days[d] = category
	}
	s.mu.Unlock()
	return nil
}

// DatesInYear returns every overridden date of the year, sorted. Stored
// dates outside the year are excluded defensively.
func (s *GlobalDayStore) DatesInYear(year int) []Date {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dates []Date
	for d := range s.days {
		if d.InYear(year) {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func (s *GlobalDayStore) keysForYear(year int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for d := range s.days {
		if d.InYear(year) {
			keys = append(keys, globalDayKey(d))
		}
	}
	return keys
}

func (s *GlobalDayStore) forgetYear(year int) {
	s.mu.Lock()
	for d := range s.days {
		if d.InYear(year) {
			delete(s.days, d)
		}
	}
	s.mu.Unlock()
}
