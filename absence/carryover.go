/*
carryover.go - Leave balance carried forward from the prior year

PURPOSE:
  One integer per (person, year): the "Resturlaub" explicitly brought into
  the year. Not derived from the prior year's remaining balance — it is an
  independently editable figure. May be negative (an over-drawn balance
  carried forward); no bounds are enforced. Get defaults to 0.
*/
package absence

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

const carryoverPrefix = "carryover/"

type carryoverDoc struct {
	Days int `json:"days"`
}

// CarryoverLedger keeps the carried-forward day balances.
type CarryoverLedger struct {
	adapter SyncAdapter

	mu   sync.RWMutex
	days map[yearPerson]int
}

func NewCarryoverLedger(adapter SyncAdapter) *CarryoverLedger {
	return &CarryoverLedger{
		adapter: adapter,
		days:    make(map[yearPerson]int),
	}
}

func (s *CarryoverLedger) Run(ctx context.Context) error {
	events, err := s.adapter.Subscribe(ctx, carryoverPrefix)
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

func (s *CarryoverLedger) apply(ev Event) {
	year, person, ok := parseYearPerson(strings.TrimPrefix(ev.Key, carryoverPrefix))
	if !ok {
		return
	}
	k := yearPerson{Year: year, Person: person}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Record == nil {
		delete(s.days, k)
		return
	}
	var doc carryoverDoc
	if err := json.Unmarshal(ev.Record, &doc); err != nil {
		return
	}
	s.days[k] = doc.Days
}

// Get returns the carried-forward days for a person-year, 0 if unset.
func (s *CarryoverLedger) Get(person PersonID, year int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.days[yearPerson{Year: year, Person: person}]
}

// Save unconditionally overwrites the carryover. Negative values are legal.
func (s *CarryoverLedger) Save(ctx context.Context, person PersonID, year, days int) error {
	doc, err := json.Marshal(carryoverDoc{Days: days})
	if err != nil {
		return err
	}
	if err := s.adapter.Write(ctx, carryoverKey(year, person), doc); err != nil {
		return err
	}

	s.mu.Lock()
	s.days[yearPerson{Year: year, Person: person}] = days
	s.mu.Unlock()
	return nil
}

func (s *CarryoverLedger) keysForYear(year int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.days {
		if k.Year == year {
			keys = append(keys, carryoverKey(k.Year, k.Person))
		}
	}
	return keys
}

func (s *CarryoverLedger) keysForPerson(person PersonID) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.days {
		if k.Person == person {
			keys = append(keys, carryoverKey(k.Year, k.Person))
		}
	}
	return keys
}

func (s *CarryoverLedger) forgetYear(year int) {
	s.mu.Lock()
	for k := range s.days {
		if k.Year == year {
			delete(s.days, k)
		}
	}
	s.mu.Unlock()
}

func (s *CarryoverLedger) forgetPerson(person PersonID) {
	s.mu.Lock()
	for k := range s.days {
		if k.Person == person {
			delete(s.days, k)
		}
	}
	s.mu.Unlock()
}
