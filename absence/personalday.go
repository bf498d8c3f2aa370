/*
personalday.go - Person-specific day entries

PURPOSE:
  The person-specific source of truth: a sparse map of (person, date) to
  category. A personal entry always wins over a global override on the
  same date; that precedence lives in resolve.go, the only place allowed
  to join the two maps.

  Unlike global overrides, personal entries accept all four categories and
  may fall on any existing date. Set overwrites unconditionally; Delete is
  an idempotent no-op when the entry is absent.
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

const dayEntryPrefix = "dayentry/"

type dayEntryDoc struct {
	Category Category `json:"category"`
}

type personDate struct {
	Person PersonID
	Date   Date
}

// DayEntryStore keeps personal day entries.
type DayEntryStore struct {
	adapter SyncAdapter

	mu      sync.RWMutex
	entries map[personDate]Category
}

func NewDayEntryStore(adapter SyncAdapter) *DayEntryStore {
	return &DayEntryStore{
		adapter: adapter,
		entries: make(map[personDate]Category),
	}
}

func (s *DayEntryStore) Run(ctx context.Context) error {
	events, err := s.adapter.Subscribe(ctx, dayEntryPrefix)
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

// parseDayEntryKey decodes "dayentry/<year>/<personID>/<MM-DD>".
func parseDayEntryKey(key string) (PersonID, Date, bool) {
	parts := strings.SplitN(strings.TrimPrefix(key, dayEntryPrefix), "/", 3)
	if len(parts) != 3 || parts[1] == "" {
		return "", Date{}, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", Date{}, false
	}
	month, day, ok := parseMonthDay(parts[2])
	if !ok {
		return "", Date{}, false
	}
	return PersonID(parts[1]), Date{Year: year, Month: month, Day: day}, true
}

func (s *DayEntryStore) apply(ev Event) {
	person, date, ok := parseDayEntryKey(ev.Key)
	if !ok {
		return
	}
	k := personDate{Person: person, Date: date}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Record == nil {
		delete(s.entries, k)
		return
	}
	var doc dayEntryDoc
	if err := json.Unmarshal(ev.Record, &doc); err != nil {
		return
	}
	s.entries[k] = doc.Category
}

// Get returns the personal entry for (person, date), ok=false if absent.
func (s *DayEntryStore) Get(person PersonID, date Date) (Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.entries[personDate{Person: person, Date: date}]
	return c, ok
}

// Set overwrites the entry for (person, date) unconditionally.
func (s *DayEntryStore) Set(ctx context.Context, person PersonID, date Date, category Category) error {
	if !category.Valid() {
		return ErrInvalidCategory
	}
	if !date.Exists() {
		return ErrDayOutOfRange
	}

	doc, err := json.Marshal(dayEntryDoc{Category: category})
	if err != nil {
		return err
	}
	if err := s.adapter.Write(ctx, dayEntryKey(person, date), doc); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[personDate{Person: person, Date: date}] = category
	s.mu.Unlock()
	return nil
}

// Delete removes the entry. Idempotent.
func (s *DayEntryStore) Delete(ctx context.Context, person PersonID, date Date) error {
	if err := s.adapter.Write(ctx, dayEntryKey(person, date), nil); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.entries, personDate{Person: person, Date: date})
	s.mu.Unlock()
	return nil
}

// DatesInYear returns every date the person has an entry for in the year,
// sorted. Stored dates outside the year are excluded defensively.
func (s *DayEntryStore) DatesInYear(person PersonID, year int) []Date {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dates []Date
	for k := range s.entries {
		if k.Person == person && k.Date.InYear(year) {
			dates = append(dates, k.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func (s *DayEntryStore) keysForYear(year int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.entries {
		if k.Date.InYear(year) {
			keys = append(keys, dayEntryKey(k.Person, k.Date))
		}
	}
	return keys
}

func (s *DayEntryStore) keysForPerson(person PersonID) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.entries {
		if k.Person == person {
			keys = append(keys, dayEntryKey(k.Person, k.Date))
		}
	}
	return keys
}

func (s *DayEntryStore) forgetYear(year int) {
	s.mu.Lock()
	for k := range s.entries {
		if k.Date.InYear(year) {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()
}

func (s *DayEntryStore) forgetPerson(person PersonID) {
	s.mu.Lock()
	for k := range s.entries {
		if k.Person == person {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()
}
