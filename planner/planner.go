// Package planner turns a compound request into an ordered plan of tool calls
// with the help of the reasoning collaborator. It never fails: without a
// collaborator, or when the answer cannot be parsed, the plan is a single
// research step over the raw request.
package planner

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/pkg/llmutils"
	"github.com/effective-security/toolrouter/pkg/metricskey"
	"github.com/effective-security/toolrouter/pkg/prompts"
	"github.com/effective-security/toolrouter/reasoning"
	"github.com/effective-security/toolrouter/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolrouter", "planner")

// Fallback reasons
const (
	ReasonNotConfigured = "not_configured"
	ReasonCollaborator  = "collaborator_error"
	ReasonParse         = "parse_error"
)

const systemPrompt = `You are the planning engine of an enterprise assistant.
Break the user request into an ordered list of tool calls.

Available tools:
{{- range .tools }}
- {{ .Name }}: {{ .Description }}
{{- end }}

Tool arguments:
{{- range .tools }}
- {{ .Name }}: {{ .Args | join ", " }}
{{- end }}

Example:
Request: Research Apple and check its price
Plan: [{"tool":"research","args":{"query":"Apple Inc"}},{"tool":"finance","args":{"ticker":"AAPL"}}]

Return ONLY a JSON array of objects with "tool" and "args" fields, without explanation.`

var promptTemplate = prompts.Must("planner", systemPrompt)

type toolPrompt struct {
	Name        string
	Description string
	Args        []string
}

// Generator produces plans
type Generator struct {
	registry     *tools.Registry
	collaborator reasoning.Collaborator
}

// New returns a plan generator.
// The collaborator is optional.
func New(registry *tools.Registry, collaborator reasoning.Collaborator) *Generator {
	return &Generator{
		registry:     registry,
		collaborator: collaborator,
	}
}

// Prompt returns the system instructions describing the registry tools
func (g *Generator) Prompt() (string, error) {
	var list []toolPrompt
	for _, d := range g.registry.Descriptors() {
		tp := toolPrompt{
			Name:        d.Name,
			Description: d.Description,
		}
		if d.Parameters != nil && d.Parameters.Properties != nil {
			for pair := d.Parameters.Properties.Oldest(); pair != nil; pair = pair.Next() {
				tp.Args = append(tp.Args, pair.Key)
			}
		}
		list = append(list, tp)
	}
	return promptTemplate.Format(map[string]any{
		"tools": list,
	})
}

// Generate returns the plan for the raw request
func (g *Generator) Generate(ctx context.Context, raw string) *Plan {
	started := time.Now()
	plan := g.generate(ctx, raw)

	metricskey.PerfPlanGeneration.MeasureSince(started, plan.Source())
	metricskey.StatsPlansGenerated.IncrCounter(1, plan.Source())
	logger.ContextKV(ctx, xlog.INFO,
		"status", "plan_generated",
		"source", plan.Source(),
		"steps", plan.Len(),
	)
	return plan
}

func (g *Generator) generate(ctx context.Context, raw string) *Plan {
	if !reasoning.IsConfigured(g.collaborator) {
		return g.fallback(ctx, raw, ReasonNotConfigured, nil)
	}

	system, err := g.Prompt()
	if err != nil {
		return g.fallback(ctx, raw, ReasonCollaborator, err)
	}

	response, err := g.collaborator.Complete(ctx, system, raw)
	if err != nil {
		return g.fallback(ctx, raw, ReasonCollaborator, err)
	}

	steps, err := ParseSteps(response)
	if err != nil {
		return g.fallback(ctx, raw, ReasonParse, err)
	}

	plan, err := NewPlan(SourceModel, steps...)
	if err != nil {
		return g.fallback(ctx, raw, ReasonParse, err)
	}
	return plan
}

func (g *Generator) fallback(ctx context.Context, raw, reason string, err error) *Plan {
	metricskey.StatsPlanFallbacks.IncrCounter(1, reason)
	kv := []any{
		"status", "fallback",
		"reason", reason,
	}
	if err != nil {
		kv = append(kv, "err", err.Error())
	}
	logger.ContextKV(ctx, xlog.WARNING, kv...)
	return Fallback(raw)
}

type rawStep struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// ParseSteps parses the collaborator response as a JSON array of {tool, args}.
// Code fences and text around the array are ignored,
// non-string argument values are converted to strings.
func ParseSteps(response string) ([]tools.Call, error) {
	cleaned := llmutils.CleanJSON([]byte(llmutils.TrimBackticks(response)))

	var list []rawStep
	if err := json.Unmarshal(cleaned, &list); err != nil {
		return nil, errors.Wrap(err, "invalid plan")
	}
	if len(list) == 0 {
		return nil, errors.New("empty plan")
	}

	calls := make([]tools.Call, 0, len(list))
	for i, s := range list {
		name := strings.TrimSpace(s.Tool)
		if name == "" {
			return nil, errors.Errorf("step %d: tool is required", i+1)
		}
		args := make(tools.Arguments, len(s.Args))
		for k, v := range s.Args {
			args[k] = stringify(v)
		}
		calls = append(calls, tools.Call{Tool: name, Arguments: args})
	}
	return calls, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return llmutils.ToJSON(val)
	}
}
