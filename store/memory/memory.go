/*
Package memory provides an in-memory SyncAdapter for tests and development.

PURPOSE:
  Implements the full sync contract (read, write, subscribe, atomic batch)
  against a plain map. Subscriptions replay the current state of matching
  keys before streaming live changes, the same contract the durable
  adapters honor, so store behavior is identical against either.

DELIVERY:
  Events are fanned out on buffered channels. A subscriber that falls far
  behind may miss intermediate states; it re-syncs from the replay on
  resubscribe, which is the contract's reconnect story.
*/
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/warp/absence-engine/absence"
)

const subscriberBuffer = 256

// Adapter is an in-memory document store.
type Adapter struct {
	mu   sync.RWMutex
	docs map[string]absence.Record
	subs map[int]*subscriber
	next int
}

type subscriber struct {
	prefix string
	ch     chan absence.Event
}

func New() *Adapter {
	return &Adapter{
		docs: make(map[string]absence.Record),
		subs: make(map[int]*subscriber),
	}
}

// Read returns the document at key, ok=false if absent.
func (a *Adapter) Read(_ context.Context, key string) (absence.Record, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rec, ok := a.docs[key]
	if !ok {
		return nil, false, nil
	}
	return cloneRecord(rec), true, nil
}

// Write stores the document at key; a nil record removes the key.
func (a *Adapter) Write(_ context.Context, key string, rec absence.Record) error {
	a.mu.Lock()
	if rec == nil {
		delete(a.docs, key)
	} else {
		a.docs[key] = cloneRecord(rec)
	}
	a.publishLocked(absence.Event{Key: key, Record: cloneRecord(rec)})
	a.mu.Unlock()
	return nil
}

// WriteBatch applies all mutations under one lock: readers observe either
// none or all of them.
func (a *Adapter) WriteBatch(_ context.Context, muts []absence.Mutation) error {
	a.mu.Lock()
	for _, m := range muts {
		if m.Record == nil {
			delete(a.docs, m.Key)
		} else {
			a.docs[m.Key] = cloneRecord(m.Record)
		}
	}
	for _, m := range muts {
		a.publishLocked(absence.Event{Key: m.Key, Record: cloneRecord(m.Record)})
	}
	a.mu.Unlock()
	return nil
}

// Subscribe replays current state for the prefix, then streams changes
// until ctx is done.
func (a *Adapter) Subscribe(ctx context.Context, prefix string) (<-chan absence.Event, error) {
	a.mu.Lock()

	// Replay buffer must hold the full snapshot plus live headroom.
	var keys []string
	for k := range a.docs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	sub := &subscriber{
		prefix: prefix,
		ch:     make(chan absence.Event, len(keys)+subscriberBuffer),
	}
	for _, k := range keys {
		sub.ch <- absence.Event{Key: k, Record: cloneRecord(a.docs[k])}
	}

	id := a.next
	a.next++
	a.subs[id] = sub
	a.mu.Unlock()

	go func() {
		<-ctx.Done()
		a.mu.Lock()
		delete(a.subs, id)
		close(sub.ch)
		a.mu.Unlock()
	}()

	return sub.ch, nil
}

func (a *Adapter) publishLocked(ev absence.Event) {
	for _, sub := range a.subs {
		if !strings.HasPrefix(ev.Key, sub.prefix) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// Slow consumer; it re-syncs on resubscribe.
		}
	}
}

func cloneRecord(rec absence.Record) absence.Record {
	if rec == nil {
		return nil
	}
	out := make(absence.Record, len(rec))
	copy(out, rec)
	return out
}
