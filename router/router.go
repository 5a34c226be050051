// Package router classifies a request either into a single tool call
// or into a deferral to the plan generator.
//
// Rules are evaluated in order over the lower-cased text and the first match wins:
//
//	math      any math keyword, the expression is the text without "solve"
//	audit     "log" or "history", action=view
//	compound  "and" or "then", deferred to the plan generator
//	finance   any finance keyword, the ticker is the last word of the original text
//	research  everything else, the query is the original text
//
// Keywords are matched as substrings.
package router

import (
	"strings"

	"github.com/effective-security/toolrouter/pkg/metricskey"
	"github.com/effective-security/toolrouter/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolrouter", "router")

// Default keyword sets
var (
	DefaultMathKeywords     = []string{"calc", "solve", "+", "*", "physics", "math"}
	DefaultAuditKeywords    = []string{"log", "history"}
	DefaultCompoundKeywords = []string{"and", "then"}
	DefaultFinanceKeywords  = []string{"stock", "price", "market", "share"}
)

// Request is a raw user request
type Request struct {
	Text      string
	SessionID string
}

// Outcome of the classification, either SingleTool or Defer
type Outcome interface {
	// Route returns the name of the route for logs and metrics
	Route() string
	outcome()
}

// SingleTool routes the request to one tool
type SingleTool struct {
	Call    tools.Call
	Request Request
}

// Route returns the tool name
func (s SingleTool) Route() string { return s.Call.Tool }
func (SingleTool) outcome()        {}

// Defer hands the request to the plan generator
type Defer struct {
	Request Request
}

// RouteCompound is the route name of deferred requests
const RouteCompound = "compound"

// Route returns RouteCompound
func (Defer) Route() string { return RouteCompound }
func (Defer) outcome()      {}

// Config specifies keyword overrides, empty lists keep the defaults
type Config struct {
	MathKeywords     []string `json:"math_keywords,omitempty" yaml:"math_keywords,omitempty"`
	AuditKeywords    []string `json:"audit_keywords,omitempty" yaml:"audit_keywords,omitempty"`
	CompoundKeywords []string `json:"compound_keywords,omitempty" yaml:"compound_keywords,omitempty"`
	FinanceKeywords  []string `json:"finance_keywords,omitempty" yaml:"finance_keywords,omitempty"`
}

type rule struct {
	name     string
	keywords []string
	build    func(req Request, lowered string) Outcome
}

// Classifier is an immutable ordered rule table
type Classifier struct {
	rules []rule
}

// New returns a classifier with default keywords
func New() *Classifier {
	return NewWithConfig(nil)
}

// NewWithConfig returns a classifier with keyword overrides
func NewWithConfig(cfg *Config) *Classifier {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Classifier{
		rules: []rule{
			{name: tools.MathTool, keywords: keywords(cfg.MathKeywords, DefaultMathKeywords), build: mathCall},
			{name: tools.AuditTool, keywords: keywords(cfg.AuditKeywords, DefaultAuditKeywords), build: auditCall},
			{name: RouteCompound, keywords: keywords(cfg.CompoundKeywords, DefaultCompoundKeywords), build: deferred},
			{name: tools.FinanceTool, keywords: keywords(cfg.FinanceKeywords, DefaultFinanceKeywords), build: financeCall},
		},
	}
}

func keywords(override, def []string) []string {
	list := override
	if len(list) == 0 {
		list = def
	}
	res := make([]string, 0, len(list))
	for _, k := range list {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			res = append(res, k)
		}
	}
	return res
}

// Classify returns the outcome for the request, it never fails
func (c *Classifier) Classify(req Request) Outcome {
	lowered := strings.ToLower(req.Text)

	var out Outcome
	for _, r := range c.rules {
		if containsAny(lowered, r.keywords) {
			out = r.build(req, lowered)
			break
		}
	}
	if out == nil {
		out = researchCall(req, lowered)
	}

	metricskey.StatsRequestsClassified.IncrCounter(1, out.Route())
	logger.KV(xlog.DEBUG,
		"status", "classified",
		"session", req.SessionID,
		"route", out.Route(),
	)
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func mathCall(req Request, lowered string) Outcome {
	expression := strings.TrimSpace(strings.ReplaceAll(lowered, "solve", ""))
	return SingleTool{
		Call:    tools.NewCall(tools.MathTool, tools.ArgExpression, expression),
		Request: req,
	}
}

func auditCall(req Request, _ string) Outcome {
	return SingleTool{
		Call:    tools.NewCall(tools.AuditTool, tools.ArgAction, "view"),
		Request: req,
	}
}

func deferred(req Request, _ string) Outcome {
	return Defer{Request: req}
}

// financeCall takes the last word of the original text as the ticker,
// "what is the market price" yields "price"
func financeCall(req Request, _ string) Outcome {
	var ticker string
	if fields := strings.Fields(req.Text); len(fields) > 0 {
		ticker = fields[len(fields)-1]
	}
	return SingleTool{
		Call:    tools.NewCall(tools.FinanceTool, tools.ArgTicker, ticker),
		Request: req,
	}
}

func researchCall(req Request, _ string) Outcome {
	return SingleTool{
		Call:    tools.NewCall(tools.ResearchTool, tools.ArgQuery, req.Text),
		Request: req,
	}
}

// Keywords returns the keywords of the route, or nil for unknown routes
func (c *Classifier) Keywords(route string) []string {
	for _, r := range c.rules {
		if r.name == route {
			return append([]string(nil), r.keywords...)
		}
	}
	return nil
}
