// Package packagebuf is the bounded FIFO of uploadable aggregates with
// aging (spec §3/§4.D, component D).
//
// Ported from the original firmware's package_store.rs (PackageEntity,
// push/snapshot_with_age/drain over a Mutex<Vec<PackageEntity>>), but
// capped at CAP_P with head-drop-on-overflow per spec §3 and §9's explicit
// "the spec chooses head-drop" resolution — the original's Vec was
// unbounded.
package packagebuf

import (
	"sync"
	"time"
)

// DefaultCapacity is CAP_P from spec §3.
const DefaultCapacity = 64

// Entity is one period's aggregate record.
type Entity struct {
	Count        uint32
	AgeInSeconds uint64
	LastSeen     time.Time
}

func newEntity(count uint32, now time.Time) Entity {
	return Entity{Count: count, AgeInSeconds: 0, LastSeen: now}
}

// updateAge adds the elapsed time since LastSeen to AgeInSeconds,
// saturating at the uint64 max, then resets LastSeen to now.
func (e *Entity) updateAge(now time.Time) {
	delta := now.Sub(e.LastSeen)
	if delta < 0 {
		delta = 0
	}
	secs := uint64(delta / time.Second)

	sum := e.AgeInSeconds + secs
	if sum < e.AgeInSeconds { // overflow
		sum = ^uint64(0)
	}
	e.AgeInSeconds = sum
	e.LastSeen = now
}

// Buffer is a capacity-bounded FIFO of Entity, guarded by a mutex playing
// the role of the spec's critical-section primitive.
type Buffer struct {
	mu       sync.Mutex
	entries  []Entity
	capacity int
	now      func() time.Time
}

// New creates a Buffer with the given capacity. A non-positive capacity
// falls back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		entries:  make([]Entity, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// withClock lets tests substitute a deterministic clock; unexported because
// no production caller needs a clock other than wall time.
func (b *Buffer) withClock(now func() time.Time) *Buffer {
	b.now = now
	return b
}

// Push appends a new Entity for count. If the buffer is already at
// capacity, the oldest entry is evicted first (head-drop) per spec §3/§9.
func (b *Buffer) Push(count uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) >= b.capacity {
		b.entries = b.entries[1:]
	}
	b.entries = append(b.entries, newEntity(count, b.now()))
}

// Len returns the current number of entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// SnapshotWithAge ages every entry by (now - last_seen), resets last_seen to
// now, then returns a copy of the sequence in FIFO order.
func (b *Buffer) SnapshotWithAge() []Entity {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for i := range b.entries {
		b.entries[i].updateAge(now)
	}

	out := make([]Entity, len(b.entries))
	copy(out, b.entries)
	return out
}

// Drain empties the buffer.
func (b *Buffer) Drain() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = b.entries[:0]
}
