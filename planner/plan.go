package planner

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/pkg/llmutils"
	"github.com/effective-security/toolrouter/tools"
)

// Plan sources
const (
	// SourceModel is a plan produced by the reasoning collaborator
	SourceModel = "model"
	// SourceFallback is the single research step used when planning fails
	SourceFallback = "fallback"
	// SourceRouter is a single step chosen by the classifier or an entry point
	SourceRouter = "router"
)

// Plan is an immutable, non-empty ordered list of tool calls
type Plan struct {
	steps  []tools.Call
	source string
}

// NewPlan returns a plan with copies of the calls
func NewPlan(source string, calls ...tools.Call) (*Plan, error) {
	if len(calls) == 0 {
		return nil, errors.New("plan must have at least one step")
	}
	return &Plan{
		steps:  cloneCalls(calls),
		source: source,
	}, nil
}

// SingleStep returns a one-step plan
func SingleStep(source string, call tools.Call) *Plan {
	return &Plan{
		steps:  cloneCalls([]tools.Call{call}),
		source: source,
	}
}

// Fallback returns the research plan for the raw request
func Fallback(raw string) *Plan {
	return SingleStep(SourceFallback, tools.NewCall(tools.ResearchTool, tools.ArgQuery, raw))
}

// Steps returns a copy of the steps
func (p *Plan) Steps() []tools.Call {
	return cloneCalls(p.steps)
}

// Len returns the number of steps
func (p *Plan) Len() int {
	return len(p.steps)
}

// Source returns how the plan was produced
func (p *Plan) Source() string {
	return p.source
}

// String returns JSON representation of the steps
func (p *Plan) String() string {
	return llmutils.ToJSON(p.steps)
}

func cloneCalls(calls []tools.Call) []tools.Call {
	res := make([]tools.Call, len(calls))
	for i, c := range calls {
		res[i] = tools.Call{
			Tool:      c.Tool,
			Arguments: c.Arguments.Clone(),
		}
	}
	return res
}
