/*
person.go - The directory of tracked persons

PURPOSE:
  Create, rename, and reorder persons. Deletion cascades over every
  per-person record in every store and therefore lives on the Tracker,
  which can see all stores; this directory only removes its own document.

  Ordering is an explicit position slot per person (drag-and-drop style),
  persisted with the person document. List returns persons sorted by
  position, name as tie-break.
*/
package absence

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const personPrefix = "person/"

type personDoc struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// PersonDirectory keeps the tracked persons and their display order.
type PersonDirectory struct {
	adapter SyncAdapter

	mu      sync.RWMutex
	persons map[PersonID]Person
}

func NewPersonDirectory(adapter SyncAdapter) *PersonDirectory {
	return &PersonDirectory{
		adapter: adapter,
		persons: make(map[PersonID]Person),
	}
}

func (s *PersonDirectory) Run(ctx context.Context) error {
	events, err := s.adapter.Subscribe(ctx, personPrefix)
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

func (s *PersonDirectory) apply(ev Event) {
	id := PersonID(strings.TrimPrefix(ev.Key, personPrefix))
	if id == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Record == nil {
		delete(s.persons, id)
		return
	}
	var doc personDoc
	if err := json.Unmarshal(ev.Record, &doc); err != nil {
		return
	}
	s.persons[id] = Person{ID: id, Name: doc.Name, Position: doc.Position}
}

// List returns all persons ordered by position, then name.
func (s *PersonDirectory) List() []Person {
	s.mu.RLock()
	defer s.mu.RUnlock()

	persons := make([]Person, 0, len(s.persons))
	for _, p := range s.persons {
		persons = append(persons, p)
	}
	sort.Slice(persons, func(i, j int) bool {
		if persons[i].Position != persons[j].Position {
			return persons[i].Position < persons[j].Position
		}
		return persons[i].Name < persons[j].Name
	})
	return persons
}

// Get returns a person by ID.
func (s *PersonDirectory) Get(id PersonID) (Person, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[id]
	return p, ok
}

// Add creates a person at the end of the current order.
func (s *PersonDirectory) Add(ctx context.Context, name string) (Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Person{}, ErrEmptyName
	}

	s.mu.RLock()
	position := 0
	for _, p := range s.persons {
		if p.Position >= position {
			position = p.Position + 1
		}
	}
	s.mu.RUnlock()

	person := Person{ID: PersonID(uuid.NewString()), Name: name, Position: position}
	if err := s.write(ctx, person); err != nil {
		return Person{}, err
	}
	return person, nil
}

// Rename changes a person's display name. Fails with ErrNotFound.
func (s *PersonDirectory) Rename(ctx context.Context, id PersonID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	s.mu.RLock()
	person, ok := s.persons[id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	person.Name = name
	return s.write(ctx, person)
}

// Reorder assigns positions following the given ID order. Every ID must
// exist; IDs not listed keep their positions.
func (s *PersonDirectory) Reorder(ctx context.Context, ids []PersonID) error {
	s.mu.RLock()
	ordered := make([]Person, 0, len(ids))
	for _, id := range ids {
		p, ok := s.persons[id]
		if !ok {
			s.mu.RUnlock()
			return ErrNotFound
		}
		ordered = append(ordered, p)
	}
	s.mu.RUnlock()

	for i, p := range ordered {
		if p.Position == i {
			continue
		}
		p.Position = i
		if err := s.write(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *PersonDirectory) write(ctx context.Context, p Person) error {
	rec, err := json.Marshal(personDoc{ID: string(p.ID), Name: p.Name, Position: p.Position})
	if err != nil {
		return err
	}
	if err := s.adapter.Write(ctx, personKey(p.ID), rec); err != nil {
		return err
	}

	s.mu.Lock()
	s.persons[p.ID] = p
	s.mu.Unlock()
	return nil
}

// forgetPerson drops a person from the mirror after a committed cascade.
func (s *PersonDirectory) forgetPerson(id PersonID) {
	s.mu.Lock()
	delete(s.persons, id)
	s.mu.Unlock()
}
