package audit

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/pkg/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolrouter", "audit")

// Recorder writes audit records on behalf of the workflow.
// Storage failures are logged and never returned to the caller.
type Recorder struct {
	sink Sink
	name string
}

// NewRecorder returns a recorder over the sink
func NewRecorder(sink Sink) *Recorder {
	return &Recorder{
		sink: sink,
		name: SinkName(sink),
	}
}

// SinkName returns the name of the sink for logs and metrics
func SinkName(sink Sink) string {
	if n, ok := sink.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", sink)
}

// Sink returns the underlying sink
func (r *Recorder) Sink() Sink {
	return r.sink
}

// Record appends a new record and returns it.
// It returns nil if the record could not be stored.
func (r *Recorder) Record(ctx context.Context, sessionID, tool, input, output, status string) *Record {
	rec := NewRecord(sessionID, tool, input, output, status)
	if err := r.append(ctx, rec); err != nil {
		metricskey.StatsAuditWritesFailed.IncrCounter(1, r.name)
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "append",
			"sink", r.name,
			"session", sessionID,
			"tool", tool,
			"err", err.Error(),
		)
		return nil
	}
	return rec
}

func (r *Recorder) append(ctx context.Context, rec *Record) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errors.Newf("audit sink panic: %v", v)
		}
	}()
	return r.sink.Append(ctx, rec)
}

// QueryRecent returns up to limit records, most recent first
func (r *Recorder) QueryRecent(ctx context.Context, limit int) ([]*Record, error) {
	return r.sink.QueryRecent(ctx, limit)
}

// Close closes the sink if it holds resources
func (r *Recorder) Close() error {
	if c, ok := r.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
