/*
sync.go - Contract between the stores and the durable sync layer

PURPOSE:
  The engine does not own persistence. It consumes exactly three primitives
  from its sync collaborator: read a document by key, write (or remove) a
  document, and subscribe to changes under a key prefix. The accounting
  semantics are reproducible against any store satisfying this contract.

KEYSPACE:
  Documents live in one flat keyspace, namespace- and year-first so that a
  year cascade is prefix-shaped:

    person/<personID>
    year/<year>
    employment/<year>/<personID>
    carryover/<year>/<personID>
    globalday/<year>/<MM-DD>
    dayentry/<year>/<personID>/<MM-DD>

SUBSCRIPTIONS:
  Subscribe first replays the current state of every matching key as put
  events, then streams live changes. The feed is restartable: a consumer
  that reconnects re-syncs from the replay. Stores fold events into an
  in-memory mirror; their own writes are applied to the mirror
  synchronously, so a store always reads its own writes.

ATOMIC BATCHES:
  WriteBatch is a capability extension, not part of the base contract.
  The two operations that need cross-key atomicity (batch day setting and
  cascade deletes) require it and fail with ErrBatchUnsupported rather
  than degrade to a partially visible sequence of writes.

IMPLEMENTATIONS:
  - store/memory: in-memory, for tests and development
  - store/sqlite: durable single-table document store

SEE ALSO:
  - tracker.go: The two cascade operations built on WriteBatch
*/
package absence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// SYNC ADAPTER - The three primitives
// =============================================================================

// Record is an opaque serialized document. The stores encode and decode it;
// adapters move it around unchanged.
type Record []byte

// Event is one observed change. A nil Record means the key was removed.
type Event struct {
	Key    string
	Record Record
}

// SyncAdapter is the minimal persistence contract.
type SyncAdapter interface {
	// Read returns the document at key, or ok=false if absent.
	Read(ctx context.Context, key string) (Record, bool, error)

	// Write stores the document at key. A nil record removes the key.
	// Last write wins; there is no versioning.
	Write(ctx context.Context, key string, rec Record) error

	// Subscribe streams changes for keys with the given prefix: first a
	// replay of current state, then live changes. The channel closes when
	// ctx is done or the adapter shuts down.
	Subscribe(ctx context.Context, prefix string) (<-chan Event, error)
}

// Mutation is one entry of an atomic batch. A nil Record is a removal.
type Mutation struct {
	Key    string
	Record Record
}

// BatchAdapter extends SyncAdapter with all-or-nothing multi-key writes.
type BatchAdapter interface {
	SyncAdapter

	// WriteBatch applies every mutation atomically: readers observe either
	// none or all of them.
	WriteBatch(ctx context.Context, muts []Mutation) error
}

// batcher returns the adapter's batch capability or ErrBatchUnsupported.
func batcher(a SyncAdapter) (BatchAdapter, error) {
	b, ok := a.(BatchAdapter)
	if !ok {
		return nil, ErrBatchUnsupported
	}
	return b, nil
}

// =============================================================================
// KEY CONSTRUCTION / PARSING
// =============================================================================

func personKey(id PersonID) string { return "person/" + string(id) }

func yearConfigKey(year int) string { return fmt.Sprintf("year/%d", year) }

func employmentKey(year int, id PersonID) string {
	return fmt.Sprintf("employment/%d/%s", year, id)
}

func carryoverKey(year int, id PersonID) string {
	return fmt.Sprintf("carryover/%d/%s", year, id)
}

func globalDayKey(d Date) string {
	return fmt.Sprintf("globalday/%d/%02d-%02d", d.Year, int(d.Month), d.Day)
}

func dayEntryKey(id PersonID, d Date) string {
	return fmt.Sprintf("dayentry/%d/%s/%02d-%02d", d.Year, id, int(d.Month), d.Day)
}

// parseYearPerson splits "<year>/<personID>" (the tail of employment and
// carryover keys).
func parseYearPerson(tail string) (int, PersonID, bool) {
	parts := strings.SplitN(tail, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return 0, "", false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}
	return year, PersonID(parts[1]), true
}

// parseMonthDay splits "MM-DD".
func parseMonthDay(s string) (time.Month, int, bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	d, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return time.Month(m), d, true
}
