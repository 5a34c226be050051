package callbacks_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/effective-security/toolrouter/callbacks"
	"github.com/effective-security/toolrouter/tools"
	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
)

func emit(ctx context.Context, cb tools.Callback) {
	calls := []tools.Call{
		tools.NewCall(tools.MathTool, tools.ArgExpression, "2+2"),
		tools.NewCall("unknown", "x", "y"),
		tools.NewCall(tools.FinanceTool, tools.ArgTicker, "AAPL"),
	}
	cb.OnPlanReady(ctx, "model", calls)
	cb.OnStepStart(ctx, 1, calls[0])
	cb.OnStepEnd(ctx, 1, calls[0], tools.Success("4"))
	cb.OnToolNotFound(ctx, 2, calls[1])
	cb.OnStepStart(ctx, 3, calls[2])
	cb.OnStepError(ctx, 3, calls[2], tools.Failure("feed down"))
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	emit(context.Background(), callbacks.NewPrinter(&buf, callbacks.ModeVerbose))

	res := buf.String()
	assert.Contains(t, res, "Plan: 3 steps (model)")
	assert.Contains(t, res, `  1. math {"expression":"2+2"}`)
	assert.Contains(t, res, "Step Start: 1 math")
	assert.Contains(t, res, `Input: {"expression":"2+2"}`)
	assert.Contains(t, res, "Step End: 1 math")
	assert.Contains(t, res, "Output: 4")
	assert.Contains(t, res, "Tool Not Found: 2 unknown")
	assert.Contains(t, res, "Step Error: 3 finance: feed down")

	buf.Reset()
	emit(context.Background(), callbacks.NewPrinter(&buf, callbacks.ModeDefault))
	assert.NotContains(t, buf.String(), "Output: 4")
	assert.NotContains(t, buf.String(), "  1. math")
}

func TestFanout(t *testing.T) {
	var b1, b2 bytes.Buffer
	f := callbacks.NewFanout(callbacks.NewPrinter(&b1, callbacks.ModeDefault))
	f.Add(callbacks.NewPrinter(&b2, callbacks.ModeDefault))
	f.Add(callbacks.NewNoop())
	f.Add(callbacks.NewPackageLogger(xlog.NewPackageLogger("github.com/effective-security/toolrouter", "callbacks_test")))

	emit(context.Background(), f)
	assert.NotEmpty(t, b1.String())
	assert.Equal(t, b1.String(), b2.String())
}
