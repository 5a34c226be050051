package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/toolrouter/tools"
	"github.com/effective-security/xlog"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ tools.Callback = (*Noop)(nil)
	_ tools.Callback = (*Printer)(nil)
	_ tools.Callback = (*PackageLogger)(nil)
	_ tools.Callback = (*Fanout)(nil)
	_ tools.Callback = (*Scratchpad)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []tools.Callback
}

func NewFanout(callbacks ...tools.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback tools.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnPlanReady(ctx context.Context, source string, calls []tools.Call) {
	for _, callback := range l.callbacks {
		callback.OnPlanReady(ctx, source, calls)
	}
}

func (l *Fanout) OnStepStart(ctx context.Context, step int, call tools.Call) {
	for _, callback := range l.callbacks {
		callback.OnStepStart(ctx, step, call)
	}
}

func (l *Fanout) OnStepEnd(ctx context.Context, step int, call tools.Call, res *tools.Result) {
	for _, callback := range l.callbacks {
		callback.OnStepEnd(ctx, step, call, res)
	}
}

func (l *Fanout) OnStepError(ctx context.Context, step int, call tools.Call, res *tools.Result) {
	for _, callback := range l.callbacks {
		callback.OnStepError(ctx, step, call, res)
	}
}

func (l *Fanout) OnToolNotFound(ctx context.Context, step int, call tools.Call) {
	for _, callback := range l.callbacks {
		callback.OnToolNotFound(ctx, step, call)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnPlanReady(ctx context.Context, source string, calls []tools.Call) {}
func (l *Noop) OnStepStart(ctx context.Context, step int, call tools.Call) {}
func (l *Noop) OnStepEnd(ctx context.Context, step int, call tools.Call, res *tools.Result) {}
func (l *Noop) OnStepError(ctx context.Context, step int, call tools.Call, res *tools.Result) {}
func (l *Noop) OnToolNotFound(ctx context.Context, step int, call tools.Call) {}

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnPlanReady(ctx context.Context, source string, calls []tools.Call) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Plan: %d steps (%s)\n", len(calls), source)
	if l.Mode == ModeVerbose {
		for i, call := range calls {
			fmt.Fprintf(l.Out, "  %d. %s\n", i+1, call.String())
		}
	}
}

func (l *Printer) OnStepStart(ctx context.Context, step int, call tools.Call) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Step Start: %d %s\n", step, call.Tool)
	fmt.Fprintf(l.Out, "Input: %s\n", call.Arguments.String())
}

func (l *Printer) OnStepEnd(ctx context.Context, step int, call tools.Call, res *tools.Result) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Step End: %d %s\n", step, call.Tool)
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Output: %s\n", res.Text())
	}
}

func (l *Printer) OnStepError(ctx context.Context, step int, call tools.Call, res *tools.Result) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Step Error: %d %s: %s\n", step, call.Tool, res.Message)
}

func (l *Printer) OnToolNotFound(ctx context.Context, step int, call tools.Call) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Not Found: %d %s\n", step, call.Tool)
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnPlanReady(ctx context.Context, source string, calls []tools.Call) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "plan_ready",
		"source", source,
		"steps", len(calls),
	)
}

func (l *PackageLogger) OnStepStart(ctx context.Context, step int, call tools.Call) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "step_start",
		"step", step,
		"tool", call.Tool,
		"input", call.Arguments.String(),
	)
}

func (l *PackageLogger) OnStepEnd(ctx context.Context, step int, call tools.Call, res *tools.Result) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "step_end",
		"step", step,
		"tool", call.Tool,
		"output", res.Text(),
	)
}

func (l *PackageLogger) OnStepError(ctx context.Context, step int, call tools.Call, res *tools.Result) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "step_error",
		"step", step,
		"tool", call.Tool,
		"err", res.Message,
	)
}

func (l *PackageLogger) OnToolNotFound(ctx context.Context, step int, call tools.Call) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_not_found",
		"step", step,
		"tool", call.Tool,
	)
}
