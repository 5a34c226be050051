// Package workflow executes plans step by step against the tool registry.
//
// Steps run strictly in plan order. A failing step never aborts the plan:
// adapter errors, panics and timeouts become error results, unknown tools
// are skipped, and every attempted invocation is written to the audit trail.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/audit"
	"github.com/effective-security/toolrouter/pkg/metricskey"
	"github.com/effective-security/toolrouter/planner"
	"github.com/effective-security/toolrouter/session"
	"github.com/effective-security/toolrouter/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolrouter", "workflow")

// DefaultStepTimeout is the maximum duration of a single step
const DefaultStepTimeout = 30 * time.Second

// NoResults is the aggregate text when no step succeeded
const NoResults = "No results were produced."

// StepResult is the outcome of a single plan step
type StepResult struct {
	Step   int           `json:"step" yaml:"step"`
	Call   tools.Call    `json:"call" yaml:"call"`
	Result *tools.Result `json:"result,omitempty" yaml:"result,omitempty"`

	// Found is false when the tool is not registered
	Found bool `json:"found" yaml:"found"`
	// Audit is the audit record of the step, if it was stored
	Audit *audit.Record `json:"audit,omitempty" yaml:"audit,omitempty"`
}

// Response is the aggregate of a plan execution
type Response struct {
	SessionID string        `json:"session_id" yaml:"session_id"`
	Text      string        `json:"text" yaml:"text"`
	Steps     []*StepResult `json:"steps" yaml:"steps"`
	Attempted int           `json:"attempted" yaml:"attempted"`
	Succeeded int           `json:"succeeded" yaml:"succeeded"`
}

// Summary returns a one-line description of the execution
func (r *Response) Summary() string {
	return fmt.Sprintf("workflow completed: %d/%d steps succeeded", r.Succeeded, len(r.Steps))
}

// Option configures the Executor
type Option func(*Executor)

// WithStepTimeout sets the per-step timeout
func WithStepTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.stepTimeout = d
		}
	}
}

// WithCallback sets the step events receiver
func WithCallback(cb tools.Callback) Option {
	return func(e *Executor) {
		e.callback = cb
	}
}

// Executor runs plans
type Executor struct {
	registry    *tools.Registry
	recorder    *audit.Recorder
	callback    tools.Callback
	stepTimeout time.Duration
}

// New returns an executor.
// The recorder is optional, without it nothing is audited.
func New(registry *tools.Registry, recorder *audit.Recorder, opts ...Option) *Executor {
	e := &Executor{
		registry:    registry,
		recorder:    recorder,
		stepTimeout: DefaultStepTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recorder returns the audit recorder
func (e *Executor) Recorder() *audit.Recorder {
	return e.recorder
}

// Registry returns the tool registry
func (e *Executor) Registry() *tools.Registry {
	return e.registry
}

// Execute runs every step of the plan in order and aggregates the outputs
func (e *Executor) Execute(ctx context.Context, plan *planner.Plan, sessionID string) *Response {
	sessionID = session.OrDefault(sessionID)
	if session.FromContext(ctx) == nil {
		ctx = session.WithContext(ctx, session.New(sessionID))
	}
	started := time.Now()

	steps := plan.Steps()
	if e.callback != nil {
		e.callback.OnPlanReady(ctx, plan.Source(), steps)
	}

	resp := &Response{
		SessionID: sessionID,
		Steps:     make([]*StepResult, 0, len(steps)),
	}
	var texts []string

	for i, call := range steps {
		sr := e.step(ctx, i+1, call, sessionID)
		resp.Steps = append(resp.Steps, sr)
		if !sr.Found {
			continue
		}
		resp.Attempted++
		if sr.Result.IsSuccess() {
			resp.Succeeded++
			texts = append(texts, sr.Result.Text())
		}
	}

	if len(texts) > 0 {
		resp.Text = strings.Join(texts, "\n")
	} else {
		resp.Text = NoResults
	}

	logger.ContextKV(ctx, xlog.INFO,
		"status", "executed",
		"session", sessionID,
		"source", plan.Source(),
		"steps", len(steps),
		"attempted", resp.Attempted,
		"succeeded", resp.Succeeded,
		"elapsed", time.Since(started).String(),
	)
	return resp
}

func (e *Executor) step(ctx context.Context, step int, call tools.Call, sessionID string) *StepResult {
	sr := &StepResult{
		Step: step,
		Call: call,
	}

	tool, ok := e.registry.Get(call.Tool)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, call.Tool)
		logger.ContextKV(ctx, xlog.WARNING,
			"reason", "tool_not_found",
			"step", step,
			"tool", call.Tool,
		)
		if e.callback != nil {
			e.callback.OnToolNotFound(ctx, step, call)
		}
		return sr
	}
	sr.Found = true

	if e.callback != nil {
		e.callback.OnStepStart(ctx, step, call)
	}

	started := time.Now()
	res := e.invoke(ctx, tool, call)
	metricskey.PerfToolCall.MeasureSince(started, tool.Name())
	sr.Result = res

	if res.IsSuccess() {
		metricskey.StatsToolCallsSucceeded.IncrCounter(1, tool.Name())
		if e.callback != nil {
			e.callback.OnStepEnd(ctx, step, call, res)
		}
	} else {
		metricskey.StatsToolCallsFailed.IncrCounter(1, tool.Name())
		if e.callback != nil {
			e.callback.OnStepError(ctx, step, call, res)
		}
	}

	if e.recorder != nil {
		sr.Audit = e.recorder.Record(ctx, sessionID, tool.Name(), call.Arguments.String(), res.String(), string(res.Status))
	}
	return sr
}

// invoke calls the tool with the step timeout,
// converting returned errors, panics and timeouts to error results
func (e *Executor) invoke(ctx context.Context, tool tools.Tool, call tools.Call) (res *tools.Result) {
	ctx, cancel := context.WithTimeout(ctx, e.stepTimeout)
	defer cancel()

	type outcome struct {
		res *tools.Result
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if v := recover(); v != nil {
				done <- outcome{err: errors.Newf("panic: %v", v)}
			}
		}()
		r, err := tool.Invoke(ctx, call.Arguments.Clone())
		done <- outcome{res: r, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return e.timedOut(tool)
		}
		if o.err != nil {
			logger.ContextKV(ctx, xlog.ERROR,
				"reason", "invoke",
				"tool", tool.Name(),
				"err", o.err.Error(),
			)
			return tools.Failure(o.err.Error())
		}
		if o.res == nil {
			return tools.Failure("no result")
		}
		return o.res
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return e.timedOut(tool)
		}
		return tools.Failure(ctx.Err().Error())
	}
}

func (e *Executor) timedOut(tool tools.Tool) *tools.Result {
	return tools.Failuref("%s timed out after %s", tool.Name(), e.stepTimeout)
}
