// Package jobs implements the job-in-flight guard and job identity helpers
// for sync and backfill triggers.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/regpulse-io/regpulse/internal/store"
	"github.com/regpulse-io/regpulse/pkg/types"
)

// ErrJobRunning indicates a job of the requested type is already in flight.
var ErrJobRunning = errors.New("a sync job is already running")

// Guard performs the advisory running-job check before a trigger. The check
// and the remote trigger's own insert are not atomic; two concurrent
// requests can both pass. True serialization belongs to the remote trigger
// procedure, which this check only front-runs to give operators a clean 409.
type Guard struct {
	store store.Store
}

// NewGuard creates a job guard over the given store.
func NewGuard(st store.Store) *Guard {
	return &Guard{store: st}
}

// CheckIdle returns ErrJobRunning when a RUNNING sync log of the given
// trigger type exists. TriggerAny matches any running job.
func (g *Guard) CheckIdle(ctx context.Context, trigger types.TriggerType) error {
	count, err := g.store.RunningSyncCount(ctx, trigger)
	if err != nil {
		return fmt.Errorf("checking running jobs: %w", err)
	}
	if count > 0 {
		return ErrJobRunning
	}
	return nil
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewJobID returns a lexicographically sortable job identifier.
func NewJobID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// EstimateBackfill returns the human-readable duration estimate for a
// backfill window: one minute per started week.
func EstimateBackfill(days int) string {
	minutes := (days + 6) / 7
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
