package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regpulse-io/regpulse/internal/testutil"
	"github.com/regpulse-io/regpulse/pkg/types"
)

func TestCheckIdle_NoRunningJobs(t *testing.T) {
	st := testutil.NewMockStore()
	st.AddSyncLog(types.SyncLog{ID: "s1", Status: types.SyncCompleted, TriggerType: types.TriggerManual, CreatedAt: time.Now()})

	g := NewGuard(st)
	assert.NoError(t, g.CheckIdle(context.Background(), types.TriggerAny))
}

func TestCheckIdle_RunningJobBlocks(t *testing.T) {
	st := testutil.NewMockStore()
	st.AddSyncLog(types.SyncLog{ID: "s1", Status: types.SyncRunning, TriggerType: types.TriggerManual, CreatedAt: time.Now()})

	g := NewGuard(st)
	err := g.CheckIdle(context.Background(), types.TriggerAny)
	assert.ErrorIs(t, err, ErrJobRunning)
}

func TestCheckIdle_TriggerTypeScoped(t *testing.T) {
	st := testutil.NewMockStore()
	st.AddSyncLog(types.SyncLog{ID: "s1", Status: types.SyncRunning, TriggerType: types.TriggerManual, CreatedAt: time.Now()})

	g := NewGuard(st)

	// A running manual sync does not block a backfill-scoped check.
	assert.NoError(t, g.CheckIdle(context.Background(), types.TriggerBackfill))
	assert.ErrorIs(t, g.CheckIdle(context.Background(), types.TriggerManual), ErrJobRunning)
}

func TestNewJobID_UniqueAndSortable(t *testing.T) {
	a := NewJobID()
	b := NewJobID()

	require.NotEqual(t, a, b)
	assert.Len(t, a, 26)
	assert.Less(t, a, b)
}

func TestEstimateBackfill(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{1, "1 minute"},
		{7, "1 minute"},
		{8, "2 minutes"},
		{30, "5 minutes"},
		{365, "53 minutes"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateBackfill(tt.days), "days=%d", tt.days)
	}
}
