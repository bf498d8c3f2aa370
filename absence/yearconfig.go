/*
yearconfig.go - Per-year base entitlement and import-status metadata

PURPOSE:
  One document per configured accounting year: the base vacation
  entitlement in days and whether statutory holidays have been imported
  for it. At most one config per year; adding a second fails with
  ErrDuplicateYear.

Deleting a year cascades over every per-year record of every person.
That cascade is owned by the Tracker (it spans stores); this store only
knows its own keys.

SEE ALSO:
  - tracker.go: DeleteYearConfig cascade
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

const yearConfigPrefix = "year/"

type yearConfigDoc struct {
	Year                int  `json:"year"`
	BaseEntitlementDays int  `json:"base_entitlement_days"`
	HolidaysImported    bool `json:"holidays_imported"`
}

// YearConfigStore keeps the set of configured accounting years.
type YearConfigStore struct {
	adapter SyncAdapter

	mu    sync.RWMutex
	years map[int]YearConfig
}

func NewYearConfigStore(adapter SyncAdapter) *YearConfigStore {
	return &YearConfigStore{
		adapter: adapter,
		years:   make(map[int]YearConfig),
	}
}

// Run subscribes to the sync layer and folds changes into the mirror until
// ctx is done. Call it once, from a goroutine.
func (s *YearConfigStore) Run(ctx context.Context) error {
	events, err := s.adapter.Subscribe(ctx, yearConfigPrefix)
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

func (s *YearConfigStore) apply(ev Event) {
	tail := strings.TrimPrefix(ev.Key, yearConfigPrefix)
	year, err := strconv.Atoi(tail)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Record == nil {
		delete(s.years, year)
		return
	}
	var doc yearConfigDoc
	if err := json.Unmarshal(ev.Record, &doc); err != nil {
		return
	}
	s.years[year] = YearConfig{
		Year:                doc.Year,
		BaseEntitlementDays: doc.BaseEntitlementDays,
		HolidaysImported:    doc.HolidaysImported,
	}
}

// ListConfiguredYears returns the configured years in ascending order.
func (s *YearConfigStore) ListConfiguredYears() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	years := make([]int, 0, len(s.years))
	for y := range s.years {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Get returns the config for a year, ok=false if the year is unconfigured.
func (s *YearConfigStore) Get(year int) (YearConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.years[year]
	return cfg, ok
}

// Add configures a new year. Fails with ErrDuplicateYear if a config for
// the year already exists.
func (s *YearConfigStore) Add(ctx context.Context, year, baseEntitlementDays int) error {
	if baseEntitlementDays < 0 {
		return ErrNegativeEntitlement
	}
	s.mu.Lock()
	if _, exists := s.years[year]; exists {
		s.mu.Unlock()
		return ErrDuplicateYear
	}
	s.mu.Unlock()

	cfg := YearConfig{Year: year, BaseEntitlementDays: baseEntitlementDays}
	return s.write(ctx, cfg)
}

// Update changes the base entitlement of an existing year. Fails with
// ErrNotFound if the year is unconfigured.
func (s *YearConfigStore) Update(ctx context.Context, year, baseEntitlementDays int) error {
	if baseEntitlementDays < 0 {
		return ErrNegativeEntitlement
	}
	s.mu.RLock()
	cfg, ok := s.years[year]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	cfg.BaseEntitlementDays = baseEntitlementDays
	return s.write(ctx, cfg)
}

// SetHolidaysImported flips the import-status flag. Idempotent; fails with
// ErrNotFound if the year is unconfigured.
func (s *YearConfigStore) SetHolidaysImported(ctx context.Context, year int, imported bool) error {
	s.mu.RLock()
	cfg, ok := s.years[year]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if cfg.HolidaysImported == imported {
		return nil
	}

	cfg.HolidaysImported = imported
	return s.write(ctx, cfg)
}

func (s *YearConfigStore) write(ctx context.Context, cfg YearConfig) error {
	rec, err := json.Marshal(yearConfigDoc{
		Year:                cfg.Year,
		BaseEntitlementDays: cfg.BaseEntitlementDays,
		HolidaysImported:    cfg.HolidaysImported,
	})
	if err != nil {
		return err
	}
	if err := s.adapter.Write(ctx, yearConfigKey(cfg.Year), rec); err != nil {
		return err
	}

	s.mu.Lock()
	s.years[cfg.Year] = cfg
	s.mu.Unlock()
	return nil
}

// forgetYear drops a year from the mirror after a committed cascade.
func (s *YearConfigStore) forgetYear(year int) {
	s.mu.Lock()
	delete(s.years, year)
	s.mu.Unlock()
}
