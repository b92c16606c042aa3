package cmdlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of entries a Ring keeps by default.
const DefaultCapacity = 50

// Ring keeps the last N entries in submission order and optionally forwards
// every entry to a Store.
type Ring struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	store   Store
	now     func() time.Time
}

// NewRing returns a ring holding at most capacity entries. Non-positive
// capacities use DefaultCapacity. store may be nil.
func NewRing(capacity int, store Store) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{size: capacity, store: store, now: time.Now}
}

// Add stamps e with an ID and timestamp when missing, keeps it and forwards
// it to the store. The entry is kept even when the store fails.
func (r *Ring) Add(ctx context.Context, e Entry) (Entry, error) {
	r.mu.Lock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now()
	}
	r.entries = append(r.entries, e)
	if over := len(r.entries) - r.size; over > 0 {
		r.entries = append(r.entries[:0:0], r.entries[over:]...)
	}
	store := r.store
	r.mu.Unlock()

	if store == nil {
		return e, nil
	}
	return e, store.Append(ctx, e)
}

// Entries returns a copy of the kept entries, oldest first.
func (r *Ring) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Query filters the kept entries. It never reaches the store.
func (r *Ring) Query(_ context.Context, q Query) ([]Entry, error) {
	var out []Entry
	for _, e := range r.Entries() {
		if q.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len returns the number of kept entries.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Capacity returns the maximum number of kept entries.
func (r *Ring) Capacity() int { return r.size }

// Close closes the underlying store, if any.
func (r *Ring) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}
