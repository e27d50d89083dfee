// Package record implements the service record repository in process memory.
// It owns the id -> record mapping, allocates and retires ids, and tracks the
// per-record revision that entity tags are derived from.
package record

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/google/uuid"

	"github.com/heartmarshall/civic-registry/internal/domain"
)

// entry holds the current version of one record. Versions are immutable once
// stored, so readers load the pointer without locking.
type entry struct {
	mu      sync.Mutex // serializes writers of this record
	cur     atomic.Pointer[domain.ServiceRecord]
	removed bool // guarded by mu
}

// Repo is an in-memory service record repository safe for concurrent use.
//
// Writers of different records run in parallel; writers of the same record
// are serialized by the record's own mutex. Snapshot readers exclude writers
// through the commit gate so a snapshot never mixes pre- and post-mutation
// states of different records. Get never blocks on writers.
type Repo struct {
	mu      sync.RWMutex       // guards index and retired
	index   *linkedhashmap.Map // id -> *entry, in insertion order
	retired map[string]struct{}

	// commit is held shared by every mutation and exclusively by the group
	// of in-flight snapshots. A snapshot does not join a running group while
	// a mutation is waiting, so the group drains and writers get through.
	commit         sync.RWMutex
	gateMu         sync.Mutex
	gate           *sync.Cond // signals on gateMu
	snapshots      int
	held           bool // commit is locked for the current group
	writersWaiting int

	now   func() time.Time
	newID func() string
}

// Option configures a Repo.
type Option func(*Repo)

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Repo) { r.now = now }
}

// WithIDGenerator overrides id allocation. Generated ids that collide with a
// live or retired id are discarded and the generator is called again.
func WithIDGenerator(gen func() string) Option {
	return func(r *Repo) { r.newID = gen }
}

// New creates an empty repository.
func New(opts ...Option) *Repo {
	r := &Repo{
		index:   linkedhashmap.New(),
		retired: make(map[string]struct{}),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	r.gate = sync.NewCond(&r.gateMu)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns the current version of a record.
// Returns domain.ErrNotFound if the id is unknown or was deleted.
func (r *Repo) GetByID(_ context.Context, id string) (domain.ServiceRecord, error) {
	e, ok := r.lookup(id)
	if !ok {
		return domain.ServiceRecord{}, domain.ErrNotFound
	}
	return *e.cur.Load(), nil
}

// Snapshot returns a consistent copy of every live record in insertion order.
func (r *Repo) Snapshot(_ context.Context) []domain.ServiceRecord {
	r.beginSnapshot()
	defer r.endSnapshot()

	r.mu.RLock()
	defer r.mu.RUnlock()

	values := r.index.Values()
	out := make([]domain.ServiceRecord, 0, len(values))
	for _, v := range values {
		out = append(out, *v.(*entry).cur.Load())
	}
	return out
}

// Count returns the number of live records.
func (r *Repo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index.Size()
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new record built from attrs with a freshly allocated id,
// revision 1 and UpdatedAt set to now. Attributes must already be validated.
func (r *Repo) Create(_ context.Context, attrs domain.Attributes) (domain.ServiceRecord, error) {
	r.beginWrite()
	defer r.commit.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := domain.ServiceRecord{
		ID:        r.allocateIDLocked(),
		UpdatedAt: r.now().UTC(),
		Revision:  1,
	}.WithAttributes(attrs)

	e := &entry{}
	e.cur.Store(&rec)
	r.index.Put(rec.ID, e)

	return rec, nil
}

// Update applies fn to the current version of a record and stores the result
// as the next revision. If fn returns an error the record is left untouched
// and the error is returned as is. fn cannot change ID, Revision or UpdatedAt.
// Returns domain.ErrNotFound if the id is unknown or was deleted.
func (r *Repo) Update(_ context.Context, id string, fn func(domain.ServiceRecord) (domain.ServiceRecord, error)) (domain.ServiceRecord, error) {
	r.beginWrite()
	defer r.commit.RUnlock()

	e, ok := r.lookup(id)
	if !ok {
		return domain.ServiceRecord{}, domain.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed {
		return domain.ServiceRecord{}, domain.ErrNotFound
	}

	cur := *e.cur.Load()
	next, err := fn(cur)
	if err != nil {
		return domain.ServiceRecord{}, err
	}

	next.ID = cur.ID
	next.Revision = cur.Revision + 1
	next.UpdatedAt = r.stamp(cur.UpdatedAt)
	e.cur.Store(&next)

	return next, nil
}

// Delete removes a record and retires its id permanently.
// Returns domain.ErrNotFound if the id is unknown or was already deleted.
func (r *Repo) Delete(_ context.Context, id string) error {
	r.beginWrite()
	defer r.commit.RUnlock()

	e, ok := r.lookup(id)
	if !ok {
		return domain.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed {
		return domain.ErrNotFound
	}

	r.mu.Lock()
	r.index.Remove(id)
	r.retired[id] = struct{}{}
	r.mu.Unlock()

	e.removed = true
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) lookup(id string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.index.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

func (r *Repo) allocateIDLocked() string {
	for {
		id := r.newID()
		if _, live := r.index.Get(id); live {
			continue
		}
		if _, dead := r.retired[id]; dead {
			continue
		}
		return id
	}
}

// stamp returns the current time, never earlier than prev.
func (r *Repo) stamp(prev time.Time) time.Time {
	now := r.now().UTC()
	if now.Before(prev) {
		return prev
	}
	return now
}

// beginWrite takes the commit lock shared. While it waits, new snapshots
// queue instead of extending the current group.
func (r *Repo) beginWrite() {
	r.gateMu.Lock()
	r.writersWaiting++
	r.gateMu.Unlock()

	r.commit.RLock()

	r.gateMu.Lock()
	r.writersWaiting--
	r.gate.Broadcast()
	r.gateMu.Unlock()
}

// The first snapshot of a group takes the commit lock for the whole group
// and the last one out releases it. sync.RWMutex allows unlocking from a
// different goroutine than the one that locked.
func (r *Repo) beginSnapshot() {
	r.gateMu.Lock()
	for r.snapshots > 0 && r.writersWaiting > 0 {
		r.gate.Wait()
	}
	r.snapshots++
	if r.snapshots == 1 {
		r.gateMu.Unlock()
		r.commit.Lock()

		r.gateMu.Lock()
		r.held = true
		r.gate.Broadcast()
		r.gateMu.Unlock()
		return
	}
	for !r.held {
		r.gate.Wait()
	}
	r.gateMu.Unlock()
}

func (r *Repo) endSnapshot() {
	r.gateMu.Lock()
	r.snapshots--
	if r.snapshots == 0 {
		r.held = false
		r.commit.Unlock()
		r.gate.Broadcast()
	}
	r.gateMu.Unlock()
}
