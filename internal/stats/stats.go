package stats

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saviobatista/route-planner/internal/log"
	"github.com/saviobatista/route-planner/internal/types"
)

// Store persists statistics snapshots
type Store interface {
	StoreEditStats(ctx context.Context, s *types.EditStats) error
}

// Stats tracks route editing statistics. It satisfies route.Recorder.
type Stats struct {
	mutations []uint64
	rejected  []uint64
	index     map[string]int

	commits          uint64
	discardedCommits uint64

	startTime time.Time

	store Store
	lg    *log.Logger
	mu    sync.RWMutex
}

// New creates a new Stats instance
func New(lg *log.Logger) *Stats {
	index := make(map[string]int, len(types.EditKinds))
	for i, k := range types.EditKinds {
		index[string(k)] = i
	}
	return &Stats{
		mutations: make([]uint64, len(types.EditKinds)),
		rejected:  make([]uint64, len(types.EditKinds)),
		index:     index,
		startTime: time.Now(),
		lg:        lg,
	}
}

// SetStore sets the persistence target
func (s *Stats) SetStore(store Store) {
	s.mu.Lock()
	s.store = store
	s.mu.Unlock()
}

// RecordMutation counts a successful edit. Unknown ops are ignored.
func (s *Stats) RecordMutation(op string) {
	if i, ok := s.index[op]; ok {
		atomic.AddUint64(&s.mutations[i], 1)
	}
}

// RecordRejected counts a rejected edit. Unknown ops are ignored.
func (s *Stats) RecordRejected(op string) {
	if i, ok := s.index[op]; ok {
		atomic.AddUint64(&s.rejected[i], 1)
	}
}

// RecordCommit counts a debounced drag commit that was applied
func (s *Stats) RecordCommit() {
	atomic.AddUint64(&s.commits, 1)
}

// RecordDiscardedCommit counts a debounced drag commit whose target had
// gone away
func (s *Stats) RecordDiscardedCommit() {
	atomic.AddUint64(&s.discardedCommits, 1)
}

// Snapshot returns a copy of the current counters
func (s *Stats) Snapshot() *types.EditStats {
	snap := &types.EditStats{
		Time:             time.Now(),
		Mutations:        make([]uint64, len(s.mutations)),
		Rejected:         make([]uint64, len(s.rejected)),
		Commits:          atomic.LoadUint64(&s.commits),
		DiscardedCommits: atomic.LoadUint64(&s.discardedCommits),
		Uptime:           time.Since(s.startTime),
	}
	for i := range s.mutations {
		snap.Mutations[i] = atomic.LoadUint64(&s.mutations[i])
		snap.Rejected[i] = atomic.LoadUint64(&s.rejected[i])
	}
	return snap
}

// Persist stores the current statistics
func (s *Stats) Persist(ctx context.Context) error {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return fmt.Errorf("stats store not set")
	}
	return store.StoreEditStats(ctx, s.Snapshot())
}

// String returns a string representation of the statistics
func (s *Stats) String() string {
	snap := s.Snapshot()

	var b strings.Builder
	for i, k := range types.EditKinds {
		fmt.Fprintf(&b, "%s: %d applied, %d rejected\n", k, snap.Mutations[i], snap.Rejected[i])
	}
	fmt.Fprintf(&b, "Drag Commits: %d\n", snap.Commits)
	fmt.Fprintf(&b, "Discarded Commits: %d\n", snap.DiscardedCommits)
	fmt.Fprintf(&b, "Uptime: %s", snap.Uptime.Round(time.Second))
	return b.String()
}

// StartPersistence starts periodic persistence of statistics
func (s *Stats) StartPersistence(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final persistence before shutdown, on a fresh context
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.Persist(final); err != nil {
				s.lg.Warn("failed to persist final statistics", "error", err)
			}
			cancel()
			return
		case <-ticker.C:
			if err := s.Persist(ctx); err != nil {
				s.lg.Warn("failed to persist statistics", "error", err)
			}
		}
	}
}

// StartReporting logs a statistics summary every interval
func (s *Stats) StartReporting(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := s.Snapshot()
			var applied, rejected uint64
			for i := range snap.Mutations {
				applied += snap.Mutations[i]
				rejected += snap.Rejected[i]
			}
			s.lg.Info("edit statistics",
				"applied", applied,
				"rejected", rejected,
				"commits", snap.Commits,
				"discarded_commits", snap.DiscardedCommits,
				"uptime", snap.Uptime.Round(time.Second).String(),
			)
		}
	}
}
