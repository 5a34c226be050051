package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/effective-security/toolrouter/session"
	"github.com/effective-security/toolrouter/tools"
)

var TimeNowFn = time.Now

// RunStats are the counters of a single request
type RunStats struct {
	SessionID string
	RunID     string
	Source    string

	Duration       time.Duration
	PlanSteps      uint32
	StepsStarted   uint32
	StepsSucceeded uint32
	StepsFailed    uint32
	ToolNotFound   uint32
}

// Scratchpad collects a transcript and stats for each run.
// Runs are identified by the session context.
type Scratchpad struct {
	runs map[string]*run
	mode Mode
	lock sync.Mutex
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{
		runs: make(map[string]*run),
		mode: mode,
	}
}

// StartRun starts a run for the session in the context.
// The context must carry a session, otherwise the events are ignored.
func (l *Scratchpad) StartRun(ctx context.Context) {
	sc := session.FromContext(ctx)
	if sc == nil {
		return
	}

	r := &run{
		stats: RunStats{
			SessionID: sc.ID(),
			RunID:     sc.RunID(),
		},
		sc:      sc,
		started: time.Now(),
	}

	l.lock.Lock()
	l.runs[sc.RunID()] = r
	l.lock.Unlock()

	r.print("*** Run Started ***")
}

// EndRun removes the run and returns its stats and transcript
func (l *Scratchpad) EndRun(ctx context.Context) (*RunStats, []byte) {
	r := l.getRun(ctx)
	if r == nil {
		return nil, nil
	}

	l.lock.Lock()
	delete(l.runs, r.sc.RunID())
	l.lock.Unlock()

	r.lock.Lock()
	stats := r.stats
	r.lock.Unlock()
	stats.Duration = time.Since(r.started)

	r.print(fmt.Sprintf("Steps: %d, Started: %d, Succeeded: %d, Failed: %d, Not Found: %d",
		stats.PlanSteps,
		stats.StepsStarted,
		stats.StepsSucceeded,
		stats.StepsFailed,
		stats.ToolNotFound,
	))
	r.print(fmt.Sprintf("*** Run Ended. Duration: %s ***", stats.Duration))

	r.lock.Lock()
	defer r.lock.Unlock()
	return &stats, r.w.Bytes()
}

func (l *Scratchpad) getRun(ctx context.Context) *run {
	sc := session.FromContext(ctx)
	if sc == nil {
		return nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	return l.runs[sc.RunID()]
}

func (l *Scratchpad) OnPlanReady(ctx context.Context, source string, calls []tools.Call) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}
	r.lock.Lock()
	r.stats.Source = source
	r.lock.Unlock()
	atomic.AddUint32(&r.stats.PlanSteps, uint32(len(calls)))

	r.print("*** Plan ***", source, fmt.Sprintf("%d steps", len(calls)))
	if l.mode == ModeVerbose {
		for i, call := range calls {
			r.print(fmt.Sprintf("%d.", i+1), call.String())
		}
	}
}

func (l *Scratchpad) OnStepStart(ctx context.Context, step int, call tools.Call) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.StepsStarted, 1)
	r.print(call.Tool, "*** Step Start ***", fmt.Sprintf("%d", step))
	r.print(call.Tool, "Input:", call.Arguments.String())
}

func (l *Scratchpad) OnStepEnd(ctx context.Context, step int, call tools.Call, res *tools.Result) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.StepsSucceeded, 1)
	if l.mode == ModeVerbose {
		r.print(call.Tool, "Output:", res.Text())
	}
	r.print(call.Tool, "*** Step End ***", fmt.Sprintf("%d", step))
}

func (l *Scratchpad) OnStepError(ctx context.Context, step int, call tools.Call, res *tools.Result) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.StepsFailed, 1)
	r.print(call.Tool, "*** Step Error ***", res.Message)
}

func (l *Scratchpad) OnToolNotFound(ctx context.Context, step int, call tools.Call) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.ToolNotFound, 1)
	r.print("*** Tool Not Found ***", call.Tool)
}

type run struct {
	sc      session.Context
	w       bytes.Buffer
	started time.Time
	lock    sync.Mutex
	stats   RunStats
}

// print writes the entries to the run's output.
// The entries are written in the following format:
// [timestamp sessionID.runID] entry entry\n
func (r *run) print(entries ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	ts := TimeNowFn().Format("2006-01-02 15:04:05")

	_, _ = r.w.WriteString(ts)
	_, _ = r.w.WriteString(" ")
	_, _ = r.w.WriteString(r.sc.ID())
	_, _ = r.w.WriteString(".")
	_, _ = r.w.WriteString(r.sc.RunID())
	_, _ = r.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = r.w.WriteString(" ")
		}
		_, _ = r.w.WriteString(entry)
	}
	_, _ = r.w.WriteString("\n")
}
