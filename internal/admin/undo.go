package admin

import (
	"sync"
	"time"

	"github.com/dnbdoctor/labelops/internal/domain"
)

// DeletedEntry pairs a subscriber snapshot with its deletion time. The
// snapshot carries everything needed to re-create the subscriber on undo.
type DeletedEntry struct {
	Subscriber domain.Subscriber `json:"subscriber"`
	DeletedAt  time.Time         `json:"deletedAt"`
}

// UndoBuffer holds recently deleted subscribers for a grace window so an
// accidental delete can be reversed. Entries past the expiry are purged by
// a background sweep and are also filtered out on read, so a slow sweep
// never resurfaces an expired entry.
type UndoBuffer struct {
	mu      sync.Mutex
	entries []DeletedEntry
	expiry  time.Duration

	stop chan struct{}
	once sync.Once
}

// NewUndoBuffer creates a buffer with the given expiry and starts a sweep
// loop at the given interval. Call Close to stop the sweep.
func NewUndoBuffer(expiry, sweepEvery time.Duration) *UndoBuffer {
	b := &UndoBuffer{
		expiry: expiry,
		stop:   make(chan struct{}),
	}
	go b.sweepLoop(sweepEvery)
	return b
}

func (b *UndoBuffer) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.purge(time.Now())
		case <-b.stop:
			return
		}
	}
}

// Add records a freshly deleted subscriber.
func (b *UndoBuffer) Add(sub domain.Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, DeletedEntry{Subscriber: sub, DeletedAt: time.Now()})
}

// Entries returns the non-expired entries, newest last.
func (b *UndoBuffer) Entries() []DeletedEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	cutoff := time.Now().Add(-b.expiry)
	out := make([]DeletedEntry, 0, len(b.entries))
	for _, e := range b.entries {
		if e.DeletedAt.After(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// Take removes and returns the entry for the given subscriber id, if it is
// still present and unexpired.
func (b *UndoBuffer) Take(subscriberID string) (DeletedEntry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cutoff := time.Now().Add(-b.expiry)
	for i, e := range b.entries {
		if e.Subscriber.ID == subscriberID && e.DeletedAt.After(cutoff) {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return e, true
		}
	}
	return DeletedEntry{}, false
}

func (b *UndoBuffer) purge(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cutoff := now.Add(-b.expiry)
	kept := b.entries[:0]
	for _, e := range b.entries {
		if e.DeletedAt.After(cutoff) {
			kept = append(kept, e)
		}
	}
	b.entries = kept
}

// Close stops the sweep loop.
func (b *UndoBuffer) Close() {
	b.once.Do(func() { close(b.stop) })
}
