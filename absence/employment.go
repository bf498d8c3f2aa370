/*
employment.go - Per-person-per-year employment records

PURPOSE:
  Stores how each person is employed in each year: full-time or part-time,
  the percentage, and for part-time the contracted days per week. Get never
  fails: an absent record means DefaultEmployment (full-time, 100%).

VALIDATION:
  Save rejects records violating the proration invariants before any write
  (see EmploymentRecord.Validate). Invalid shapes never reach the sync
  layer.
*/
package absence

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

const employmentPrefix = "employment/"

type employmentDoc struct {
	Type        EmploymentType `json:"type"`
	Percentage  int            `json:"percentage"`
	DaysPerWeek int            `json:"days_per_week,omitempty"`
}

type yearPerson struct {
	Year   int
	Person PersonID
}

// EmploymentStore keeps one employment record per (person, year).
type EmploymentStore struct {
	adapter SyncAdapter

	mu      sync.RWMutex
	records map[yearPerson]EmploymentRecord
}

func NewEmploymentStore(adapter SyncAdapter) *EmploymentStore {
	return &EmploymentStore{
		adapter: adapter,
		records: make(map[yearPerson]EmploymentRecord),
	}
}

func (s *EmploymentStore) Run(ctx context.Context) error {
	events, err := s.adapter.Subscribe(ctx, employmentPrefix)
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

func (s *EmploymentStore) apply(ev Event) {
	year, person, ok := parseYearPerson(strings.TrimPrefix(ev.Key, employmentPrefix))
	if !ok {
		return
	}
	k := yearPerson{Year: year, Person: person}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Record == nil {
		delete(s.records, k)
		return
	}
	var doc employmentDoc
	if err := json.Unmarshal(ev.Record, &doc); err != nil {
		return
	}
	s.records[k] = EmploymentRecord{
		Type:        doc.Type,
		Percentage:  doc.Percentage,
		DaysPerWeek: doc.DaysPerWeek,
	}
}

// Get returns the employment record for a person-year. Never fails: an
// absent record is DefaultEmployment.
func (s *EmploymentStore) Get(person PersonID, year int) EmploymentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[yearPerson{Year: year, Person: person}]; ok {
		return rec
	}
	return DefaultEmployment()
}

// Save overwrites the record for (person, year). Fails with
// ErrInvalidEmployment (wrapped with the broken invariant) before writing.
func (s *EmploymentStore) Save(ctx context.Context, person PersonID, year int, rec EmploymentRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	doc, err := json.Marshal(employmentDoc{
		Type:        rec.Type,
		Percentage:  rec.Percentage,
		DaysPerWeek: rec.DaysPerWeek,
	})
	if err != nil {
		return err
	}
	if err := s.adapter.Write(ctx, employmentKey(year, person), doc); err != nil {
		return err
	}

	s.mu.Lock()
	s.records[yearPerson{Year: year, Person: person}] = rec
	s.mu.Unlock()
	return nil
}

// keysForYear returns the sync keys of every record scoped to the year.
func (s *EmploymentStore) keysForYear(year int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.records {
		if k.Year == year {
			keys = append(keys, employmentKey(k.Year, k.Person))
		}
	}
	return keys
}

// keysForPerson returns the sync keys of every record for the person,
// across all years.
func (s *EmploymentStore) keysForPerson(person PersonID) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.records {
		if k.Person == person {
			keys = append(keys, employmentKey(k.Year, k.Person))
		}
	}
	return keys
}

func (s *EmploymentStore) forgetYear(year int) {
	s.mu.Lock()
	for k := range s.records {
		if k.Year == year {
			delete(s.records, k)
		}
	}
	s.mu.Unlock()
}

func (s *EmploymentStore) forgetPerson(person PersonID) {
	s.mu.Lock()
	for k := range s.records {
		if k.Person == person {
			delete(s.records, k)
		}
	}
	s.mu.Unlock()
}
