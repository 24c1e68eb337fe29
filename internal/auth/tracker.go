package auth

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Defaults for NewFailureTracker.
const (
	DefaultFailureTrackerSize      = 4096
	DefaultFailureTrackerWindow    = 5 * time.Minute
	DefaultFailureTrackerThreshold = 5
)

// FailureTracker counts invalid credentials per client key. A key is
// forgotten once no failure was seen for the window, and the oldest keys are
// evicted when the tracker is full.
type FailureTracker struct {
	mu        sync.Mutex
	counts    *expirable.LRU[string, int]
	threshold int
}

// NewFailureTracker returns a tracker. Non-positive arguments take the
// package defaults.
func NewFailureTracker(size int, window time.Duration, threshold int) *FailureTracker {
	if size <= 0 {
		size = DefaultFailureTrackerSize
	}

	if window <= 0 {
		window = DefaultFailureTrackerWindow
	}

	if threshold <= 0 {
		threshold = DefaultFailureTrackerThreshold
	}

	return &FailureTracker{
		counts:    expirable.NewLRU[string, int](size, nil, window),
		threshold: threshold,
	}
}

// Hit records a failure for key and reports whether this failure reached the
// threshold. It is true once per streak.
func (t *FailureTracker) Hit(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, _ := t.counts.Get(key)
	n++
	t.counts.Add(key, n)

	return n == t.threshold
}

// Count returns the current streak of key.
func (t *FailureTracker) Count(key string) int {
	n, _ := t.counts.Peek(key)

	return n
}

// Reset forgets key.
func (t *FailureTracker) Reset(key string) {
	t.counts.Remove(key)
}
