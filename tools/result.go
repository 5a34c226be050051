package tools

import (
	"fmt"

	"github.com/effective-security/toolrouter/pkg/llmutils"
)

// Status of a tool invocation
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the normalized outcome of a tool invocation
type Result struct {
	Status  Status `json:"status" yaml:"status"`
	Payload any    `json:"payload,omitempty" yaml:"payload,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Success returns a successful result with the payload
func Success(payload any) *Result {
	return &Result{
		Status:  StatusSuccess,
		Payload: payload,
	}
}

// Failure returns an error result with the message
func Failure(message string) *Result {
	return &Result{
		Status:  StatusError,
		Message: message,
	}
}

// Failuref returns an error result with the formatted message
func Failuref(format string, args ...any) *Result {
	return Failure(fmt.Sprintf(format, args...))
}

// IsSuccess returns true if the result is not nil and succeeded
func (r *Result) IsSuccess() bool {
	return r != nil && r.Status == StatusSuccess
}

// Text returns the textual form of the payload.
// Payloads implementing fmt.Stringer use their own form,
// other structured payloads are rendered as JSON.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	switch p := r.Payload.(type) {
	case nil:
		return ""
	case string:
		return p
	case fmt.Stringer:
		return p.String()
	default:
		return llmutils.ToJSON(p)
	}
}

// String returns the representation recorded in the audit trail
func (r *Result) String() string {
	if r == nil {
		return ""
	}
	if r.IsSuccess() {
		return r.Text()
	}
	return "error: " + r.Message
}
