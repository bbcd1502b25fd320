// Package fingerprintbuf is the bounded sequence of recent classifier Codes
// (spec §3, component B). It is pushed to from the capture callback, which
// may run from interrupt/driver-callback context (spec §5), so Push must
// never block for long and never allocate beyond the fixed backing array.
//
// Grounded on the original firmware's fingerprint_store.rs (push/drain/
// snapshot over a heapless::Vec behind a CriticalSectionRawMutex) and on
// wmap's internal/core/services/device_registry.go convention of guarding
// shared maps with a plain mutex as the "critical section" primitive.
package fingerprintbuf

import (
	"sync"

	"github.com/daugt/trailsense-edge/internal/classifier"
)

// DefaultCapacity is CAP_F from spec §3.
const DefaultCapacity = 2048

// Buffer is a bounded, mutex-guarded sequence of classifier.Code values.
type Buffer struct {
	mu       sync.Mutex
	codes    []classifier.Code
	capacity int
}

// New creates a Buffer with the given capacity. A non-positive capacity
// falls back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		codes:    make([]classifier.Code, 0, capacity),
		capacity: capacity,
	}
}

// Push appends a code. It reports false — without mutating the buffer —
// when the buffer is already at capacity; the spec requires overflow to be
// rejected and surfaced as a warning by the caller, never silently evicted.
func (b *Buffer) Push(c classifier.Code) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.codes) >= b.capacity {
		return false
	}
	b.codes = append(b.codes, c)
	return true
}

// Len returns the current number of buffered codes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.codes)
}

// Snapshot returns a copy of the buffered codes in FIFO order, leaving the
// buffer untouched.
func (b *Buffer) Snapshot() []classifier.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]classifier.Code, len(b.codes))
	copy(out, b.codes)
	return out
}

// Drain atomically empties the buffer.
func (b *Buffer) Drain() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.codes = b.codes[:0]
}
