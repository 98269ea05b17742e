package course

import (
	"sync"
	"time"
)

// RateLimit tracks request timestamps over a sliding window.
type RateLimit struct {
	mu       sync.Mutex
	window   time.Duration
	maxReqs  int
	requests []time.Time
	now      func() time.Time
}

// NewRateLimit allows maxReqs requests per window.
func NewRateLimit(maxReqs int, window time.Duration) *RateLimit {
	return &RateLimit{
		window:  window,
		maxReqs: maxReqs,
		now:     time.Now,
	}
}

// prune drops timestamps older than the window. Must be called with mu held.
func (r *RateLimit) prune() {
	cutoff := r.now().Add(-r.window)
	i := 0
	for i < len(r.requests) && r.requests[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		r.requests = r.requests[i:]
	}
}

// Take records a request if one is allowed right now and reports whether
// it did.
func (r *RateLimit) Take() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	if len(r.requests) >= r.maxReqs {
		return false
	}
	r.requests = append(r.requests, r.now())
	return true
}

// Remaining returns how many requests can still be made in the current window.
func (r *RateLimit) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	return max(r.maxReqs-len(r.requests), 0)
}

// WaitDuration returns how long until another request is allowed; zero if
// one is allowed now.
func (r *RateLimit) WaitDuration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	if len(r.requests) == 0 || len(r.requests) < r.maxReqs {
		return 0
	}
	return max(r.requests[0].Add(r.window).Sub(r.now()), 0)
}
