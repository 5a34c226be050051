package orchestrator

import (
	"strings"

	"github.com/effective-security/toolrouter/tools"
)

// Entry point names exposed by the transport
const (
	EntryOrchestrator = "orchestrator_main"
	EntryResearch     = "research_agent"
	EntryMath         = "math_agent"
	EntryAudit        = "audit_tool"
	EntryFinance      = "finance_agent"
)

// Argument names of the entry points, in addition to the tool arguments
const (
	ArgComplexQuery = "complex_query"
	ArgSessionID    = "session_id"
)

// Param describes an entry point argument
type Param struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
}

// EntryPoint is a named operation of the service
type EntryPoint struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Tool        string  `json:"tool,omitempty" yaml:"tool,omitempty"`
	Params      []Param `json:"params" yaml:"params"`
}

// Label returns the tool name used in error messages, e.g. Research
func (e EntryPoint) Label() string {
	name := e.Tool
	if name == "" {
		name = "orchestrator"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

var sessionParam = Param{
	Name:        ArgSessionID,
	Description: "Session identifier used to correlate audit records.",
	Default:     "default",
}

var entryPoints = []EntryPoint{
	{
		Name: EntryOrchestrator,
		Description: "Use this for complex or compound requests. " +
			"It plans the steps, runs the tools in order and combines their outputs.",
		Params: []Param{
			{Name: ArgComplexQuery, Description: "The request in natural language.", Required: true},
			sessionParam,
		},
	},
	{
		Name:        EntryResearch,
		Description: "Answers general knowledge questions without calculations or planning.",
		Tool:        tools.ResearchTool,
		Params: []Param{
			{Name: tools.ArgQuery, Description: "The research question.", Required: true},
			sessionParam,
		},
	},
	{
		Name:        EntryMath,
		Description: "Solves math and physics expressions, e.g. '5.972e24 / 2' or 'sin(pi/4)'.",
		Tool:        tools.MathTool,
		Params: []Param{
			{Name: tools.ArgExpression, Description: "The expression to evaluate.", Required: true},
			sessionParam,
		},
	},
	{
		Name:        EntryAudit,
		Description: "Returns the most recent audit records of tool invocations.",
		Tool:        tools.AuditTool,
		Params: []Param{
			{Name: tools.ArgAction, Description: "The action to perform, only 'view' is supported.", Default: "view"},
			{Name: tools.ArgLimit, Description: "Maximum number of records to return.", Default: "5"},
			sessionParam,
		},
	},
	{
		Name:        EntryFinance,
		Description: "Returns the stock price for a ticker symbol, e.g. AAPL.",
		Tool:        tools.FinanceTool,
		Params: []Param{
			{Name: tools.ArgTicker, Description: "The ticker symbol.", Required: true},
			sessionParam,
		},
	},
}

// EntryPoints returns the entry points of the service
func EntryPoints() []EntryPoint {
	list := make([]EntryPoint, len(entryPoints))
	copy(list, entryPoints)
	return list
}

// LookupEntryPoint returns the entry point by name
func LookupEntryPoint(name string) (EntryPoint, bool) {
	for _, e := range entryPoints {
		if e.Name == name {
			return e, true
		}
	}
	return EntryPoint{}, false
}

// EntryForTool returns the entry point serving the tool
func EntryForTool(tool string) (EntryPoint, bool) {
	for _, e := range entryPoints {
		if e.Tool != "" && e.Tool == tool {
			return e, true
		}
	}
	return EntryPoint{}, false
}

// Aliases returns the entry point names of the tools, keyed by alias
func Aliases() map[string]string {
	m := make(map[string]string)
	for _, e := range entryPoints {
		if e.Tool != "" {
			m[e.Name] = e.Tool
		}
	}
	return m
}
