/*
Package sqlite provides the durable SyncAdapter backed by SQLite.

PURPOSE:
  Implements the sync contract over a single document table. The engine's
  semantics are transport-agnostic; this adapter only moves opaque JSON
  documents and fans out change events to in-process subscribers.

SCHEMA:
  docs(key TEXT PRIMARY KEY, doc TEXT NOT NULL)

  Keys are the namespace/year-first strings defined by the absence
  package, so prefix scans (subscription replay) are a single LIKE over
  the primary key.

ATOMIC BATCHES:
  WriteBatch runs inside one SQL transaction; events are published only
  after commit, so subscribers never observe a half-applied cascade or
  holiday import.

WAL MODE:
  Opened with WAL so readers do not block the single writer.

FAILURE MAPPING:
  Database-level failures are wrapped with absence.ErrPersistenceUnavailable
  and surfaced unchanged; retry policy belongs to the caller.

SEE ALSO:
  - absence/sync.go: The contract this adapter implements
  - store/memory: The in-memory counterpart used in tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/warp/absence-engine/absence"
)

const subscriberBuffer = 256

// Adapter is a SQLite-backed document store.
type Adapter struct {
	db *sql.DB

	mu   sync.Mutex
	subs map[int]*subscriber
	next int
}

type subscriber struct {
	prefix string
	ch     chan absence.Event
}

// New opens (or creates) the database at path. Use ":memory:" for an
// in-memory database.
func New(path string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", absence.ErrPersistenceUnavailable, path, err)
	}

	a := &Adapter{db: db, subs: make(map[int]*subscriber)}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// Close closes the database and all subscriber channels.
func (a *Adapter) Close() error {
	a.mu.Lock()
	for id, sub := range a.subs {
		delete(a.subs, id)
		close(sub.ch)
	}
	a.mu.Unlock()
	return a.db.Close()
}

func (a *Adapter) migrate() error {
	_, err := a.db.Exec(`CREATE TABLE IF NOT EXISTS docs (
		key TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("%w: migrate: %v", absence.ErrPersistenceUnavailable, err)
	}
	return nil
}

// Read returns the document at key, ok=false if absent.
func (a *Adapter) Read(ctx context.Context, key string) (absence.Record, bool, error) {
	var doc string
	err := a.db.QueryRowContext(ctx, `SELECT doc FROM docs WHERE key = ?`, key).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: read %s: %v", absence.ErrPersistenceUnavailable, key, err)
	}
	return absence.Record(doc), true, nil
}

// Write stores the document at key; a nil record removes the key.
func (a *Adapter) Write(ctx context.Context, key string, rec absence.Record) error {
	var err error
	if rec == nil {
		_, err = a.db.ExecContext(ctx, `DELETE FROM docs WHERE key = ?`, key)
	} else {
		_, err = a.db.ExecContext(ctx,
			`INSERT INTO docs (key, doc) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET doc = excluded.doc`,
			key, string(rec))
	}
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", absence.ErrPersistenceUnavailable, key, err)
	}

	a.publish(absence.Event{Key: key, Record: rec})
	return nil
}

// WriteBatch applies all mutations in one SQL transaction. Events are
// published only after commit.
func (a *Adapter) WriteBatch(ctx context.Context, muts []absence.Mutation) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin batch: %v", absence.ErrPersistenceUnavailable, err)
	}
	for _, m := range muts {
		if m.Record == nil {
			_, err = tx.ExecContext(ctx, `DELETE FROM docs WHERE key = ?`, m.Key)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO docs (key, doc) VALUES (?, ?)
				 ON CONFLICT(key) DO UPDATE SET doc = excluded.doc`,
				m.Key, string(m.Record))
		}
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: batch write %s: %v", absence.ErrPersistenceUnavailable, m.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit batch: %v", absence.ErrPersistenceUnavailable, err)
	}

	for _, m := range muts {
		a.publish(absence.Event{Key: m.Key, Record: m.Record})
	}
	return nil
}

// Subscribe replays the stored state for the prefix, then streams changes
// until ctx is done.
func (a *Adapter) Subscribe(ctx context.Context, prefix string) (<-chan absence.Event, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT key, doc FROM docs WHERE key LIKE ? ORDER BY key`, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("%w: subscribe %s: %v", absence.ErrPersistenceUnavailable, prefix, err)
	}
	defer rows.Close()

	var replay []absence.Event
	for rows.Next() {
		var key, doc string
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, fmt.Errorf("%w: subscribe %s: %v", absence.ErrPersistenceUnavailable, prefix, err)
		}
		replay = append(replay, absence.Event{Key: key, Record: absence.Record(doc)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: subscribe %s: %v", absence.ErrPersistenceUnavailable, prefix, err)
	}

	sub := &subscriber{
		prefix: prefix,
		ch:     make(chan absence.Event, len(replay)+subscriberBuffer),
	}
	for _, ev := range replay {
		sub.ch <- ev
	}

	a.mu.Lock()
	id := a.next
	a.next++
	a.subs[id] = sub
	a.mu.Unlock()

	go func() {
		<-ctx.Done()
		a.mu.Lock()
		if _, live := a.subs[id]; live {
			delete(a.subs, id)
			close(sub.ch)
		}
		a.mu.Unlock()
	}()

	return sub.ch, nil
}

func (a *Adapter) publish(ev absence.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, sub := range a.subs {
		if !strings.HasPrefix(ev.Key, sub.prefix) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			logrus.WithField("key", ev.Key).Warn("sqlite sync: dropping event for slow subscriber")
		}
	}
}

// Keys returns all stored keys with the prefix, sorted. Diagnostic helper
// for developer tooling; not part of the sync contract.
func (a *Adapter) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT key FROM docs WHERE key LIKE ? ORDER BY key`, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("%w: keys %s: %v", absence.ErrPersistenceUnavailable, prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: keys %s: %v", absence.ErrPersistenceUnavailable, prefix, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: keys %s: %v", absence.ErrPersistenceUnavailable, prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}
