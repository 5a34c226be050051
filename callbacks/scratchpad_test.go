package callbacks_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/effective-security/toolrouter/callbacks"
	"github.com/effective-security/toolrouter/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchpad(t *testing.T) {
	callbacks.TimeNowFn = func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}
	defer func() { callbacks.TimeNowFn = time.Now }()

	sp := callbacks.NewScratchpad(callbacks.ModeVerbose)

	// without a session nothing is collected
	emit(context.Background(), sp)
	stats, trace := sp.EndRun(context.Background())
	assert.Nil(t, stats)
	assert.Nil(t, trace)

	sc := session.New("s1")
	ctx := session.WithContext(context.Background(), sc)
	sp.StartRun(ctx)

	emit(ctx, sp)

	stats, trace = sp.EndRun(ctx)
	require.NotNil(t, stats)
	assert.Equal(t, "s1", stats.SessionID)
	assert.Equal(t, sc.RunID(), stats.RunID)
	assert.Equal(t, "model", stats.Source)
	assert.Equal(t, uint32(3), stats.PlanSteps)
	assert.Equal(t, uint32(2), stats.StepsStarted)
	assert.Equal(t, uint32(1), stats.StepsSucceeded)
	assert.Equal(t, uint32(1), stats.StepsFailed)
	assert.Equal(t, uint32(1), stats.ToolNotFound)

	text := string(trace)
	prefix := "2026-01-02 03:04:05 s1." + sc.RunID() + " "
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, prefix), line)
	}
	assert.Contains(t, text, "*** Run Started ***")
	assert.Contains(t, text, "math *** Step Start *** 1")
	assert.Contains(t, text, "math Output: 4")
	assert.Contains(t, text, "*** Tool Not Found *** unknown")
	assert.Contains(t, text, "finance *** Step Error *** feed down")
	assert.Contains(t, text, "Steps: 3, Started: 2, Succeeded: 1, Failed: 1, Not Found: 1")

	// the run is removed
	stats, _ = sp.EndRun(ctx)
	assert.Nil(t, stats)
}
