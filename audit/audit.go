// Package audit provides the append-only audit trail of tool invocations.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=audit.go -destination=../mocks/mockaudit/audit_mock.gen.go -package mockaudit

const (
	// DefaultLimit is used by QueryRecent when the requested limit is not positive
	DefaultLimit = 5
	// MaxLimit caps the number of records returned by QueryRecent
	MaxLimit = 1000
)

// TimeNowFn is used to stamp new records
var TimeNowFn = time.Now

// Record is an immutable audit entry
type Record struct {
	ID        string    `json:"id" yaml:"id" toml:"id"`
	SessionID string    `json:"session_id" yaml:"session_id" toml:"session_id"`
	ToolName  string    `json:"tool" yaml:"tool" toml:"tool"`
	Input     string    `json:"input" yaml:"input" toml:"input"`
	Output    string    `json:"output" yaml:"output" toml:"output"`
	Status    string    `json:"status" yaml:"status" toml:"status"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp" toml:"timestamp"`
}

// NewRecord returns a new record with a random ID and the current time
func NewRecord(sessionID, tool, input, output, status string) *Record {
	return &Record{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		ToolName:  tool,
		Input:     input,
		Output:    output,
		Status:    status,
		Timestamp: TimeNowFn().UTC(),
	}
}

// Sink is the storage of audit records
type Sink interface {
	// Append persists the record
	Append(ctx context.Context, rec *Record) error
	// QueryRecent returns up to limit records, most recent first
	QueryRecent(ctx context.Context, limit int) ([]*Record, error)
}

// NormalizeLimit applies DefaultLimit and MaxLimit
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
