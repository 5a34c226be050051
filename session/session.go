// Package session carries the session identifier through a request so that
// every audit record written while serving it can be correlated.
package session

import (
	"context"
	"strconv"
	"strings"

	"github.com/effective-security/x/values"
	"github.com/effective-security/xdb/pkg/flake"
)

// DefaultID is used by transport entry points when the caller does not supply a session
const DefaultID = "default"

// Context is the immutable session context
type Context interface {
	// ID returns the session identifier
	ID() string
	// RunID returns the identifier of the current request within the session
	RunID() string
}

type sessionContext struct {
	id    string
	runID string
}

func (c *sessionContext) ID() string {
	return c.id
}

func (c *sessionContext) RunID() string {
	return c.runID
}

// New returns a session context for the given ID.
// A new flake ID is generated when id is empty.
func New(id string) Context {
	return &sessionContext{
		id:    values.StringsCoalesce(strings.TrimSpace(id), NewID()),
		runID: NewID(),
	}
}

// NewID generates a new session ID using the flake ID generator.
func NewID() string {
	return strconv.FormatUint(flake.DefaultIDGenerator.NextID(), 10)
}

// OrDefault returns id, or DefaultID when id is blank
func OrDefault(id string) string {
	return values.StringsCoalesce(strings.TrimSpace(id), DefaultID)
}

type contextKey int

const (
	keyContext contextKey = iota
)

// WithContext returns a new context with the session value
func WithContext(ctx context.Context, sc Context) context.Context {
	return context.WithValue(ctx, keyContext, sc)
}

// FromContext retrieves the session from the context
func FromContext(ctx context.Context) Context {
	if v, ok := ctx.Value(keyContext).(Context); ok {
		return v
	}
	return nil
}

// ID retrieves the session ID from the provided context.
// If the context does not carry a session, it returns an empty string.
func ID(ctx context.Context) string {
	if v := FromContext(ctx); v != nil {
		return v.ID()
	}
	return ""
}
