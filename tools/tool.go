package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

//go:generate mockgen -source=tool.go -destination=../mocks/mocktools/tools_mock.gen.go -package mocktools

// Canonical tool names
const (
	ResearchTool = "research"
	MathTool     = "math"
	AuditTool    = "audit"
	FinanceTool  = "finance"
)

// Argument keys understood by the built-in tools
const (
	ArgQuery      = "query"
	ArgExpression = "expression"
	ArgAction     = "action"
	ArgLimit      = "limit"
	ArgTicker     = "ticker"
)

var (
	// ErrInvalidArgument is returned when a required argument is missing or malformed
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDuplicateTool is returned when a name or alias is already registered
	ErrDuplicateTool = errors.New("tool already registered")
)

// Tool is a named capability with a uniform invocation contract.
type Tool interface {
	// Name returns the canonical name of the Tool.
	Name() string
	// Description returns a one-line description of the tool, to be used in the planner prompt.
	Description() string
	// Parameters returns the invocation schema of the tool.
	Parameters() *jsonschema.Schema
	// Invoke executes the tool.
	// Expected domain failures are reported as a Result with error status,
	// a returned error means the adapter itself failed.
	Invoke(ctx context.Context, args Arguments) (*Result, error)
}

// Callback receives workflow step events.
type Callback interface {
	// OnPlanReady is called once before the first step of a plan is executed
	OnPlanReady(ctx context.Context, source string, calls []Call)
	OnStepStart(ctx context.Context, step int, call Call)
	OnStepEnd(ctx context.Context, step int, call Call, res *Result)
	OnStepError(ctx context.Context, step int, call Call, res *Result)
	OnToolNotFound(ctx context.Context, step int, call Call)
}

// Arguments is the flat argument map of a tool invocation
type Arguments map[string]string

// Get returns the trimmed value of the argument
func (a Arguments) Get(key string) string {
	return strings.TrimSpace(a[key])
}

// Require returns the trimmed value of the argument,
// or ErrInvalidArgument if it is missing or blank
func (a Arguments) Require(key string) (string, error) {
	v := a.Get(key)
	if v == "" {
		return "", errors.Mark(errors.Newf("%s is required", key), ErrInvalidArgument)
	}
	return v, nil
}

// Clone returns a copy of the arguments
func (a Arguments) Clone() Arguments {
	if a == nil {
		return nil
	}
	c := make(Arguments, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// String returns JSON representation with sorted keys
func (a Arguments) String() string {
	if len(a) == 0 {
		return "{}"
	}
	js, _ := json.Marshal(map[string]string(a))
	return string(js)
}

// Call is a single tool invocation produced by the router or a plan step
type Call struct {
	Tool      string    `json:"tool" yaml:"tool"`
	Arguments Arguments `json:"args" yaml:"args"`
}

// NewCall returns a Call with a single argument
func NewCall(tool, key, value string) Call {
	return Call{
		Tool:      tool,
		Arguments: Arguments{key: value},
	}
}

func (c Call) String() string {
	return c.Tool + " " + c.Arguments.String()
}
