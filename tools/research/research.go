// Package research implements the open-domain research tool.
package research

import (
	"context"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/pkg/prompts"
	"github.com/effective-security/toolrouter/pkg/schema"
	"github.com/effective-security/toolrouter/reasoning"
	"github.com/effective-security/toolrouter/tools"
	"github.com/effective-security/xlog"
	"github.com/invopop/jsonschema"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolrouter/tools", "research")

// Sources of an answer
const (
	SourceKnowledgeBase = "knowledge-base"
	SourceModel         = "model"
)

// DefaultTemperature is used for research completions
const DefaultTemperature = 0.7

const systemPrompt = `You are an Enterprise Research Assistant.
Answer the question accurately and concisely for a business audience.
{{- if .documents }}
Use the following context documents. If they do not contain the answer, say what is missing.
{{ range $i, $doc := .documents }}
[{{ add1 $i }}] {{ $doc }}
{{ end }}
{{- end }}`

var promptTemplate = prompts.Must("research", systemPrompt)

// Retriever returns context documents for a query
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]string, error)
}

// Request is the tool input
type Request struct {
	Query string `json:"query" yaml:"query" jsonschema:"title=Query,description=The research question."`
}

// Answer is the tool payload
type Answer struct {
	Text       string   `json:"answer" yaml:"answer"`
	Source     string   `json:"source" yaml:"source"`
	References []string `json:"references,omitempty" yaml:"references,omitempty"`
}

// String returns the answer text
func (a *Answer) String() string {
	return a.Text
}

// Tool answers open questions with the reasoning collaborator
type Tool struct {
	collaborator reasoning.Collaborator
	retriever    Retriever
	params       *jsonschema.Schema
}

var _ tools.Tool = (*Tool)(nil)

// New returns the research tool.
// Both collaborator and retriever are optional.
func New(collaborator reasoning.Collaborator, retriever Retriever) *Tool {
	return &Tool{
		collaborator: collaborator,
		retriever:    retriever,
		params:       schema.MustNew(reflect.TypeOf(Request{})).Parameters,
	}
}

func (t *Tool) Name() string {
	return tools.ResearchTool
}

func (t *Tool) Description() string {
	return "Answers open-domain and enterprise research questions; use for anything that is not arithmetic, audit logs or stock prices."
}

func (t *Tool) Parameters() *jsonschema.Schema {
	return t.params
}

// Invoke answers args[query]
func (t *Tool) Invoke(ctx context.Context, args tools.Arguments) (*tools.Result, error) {
	query, err := args.Require(tools.ArgQuery)
	if err != nil {
		return tools.Failure(err.Error()), nil
	}
	if !reasoning.IsConfigured(t.collaborator) {
		return tools.Failure(reasoning.ErrNotConfigured.Error()), nil
	}

	var docs []string
	if t.retriever != nil {
		docs, err = t.retriever.Retrieve(ctx, query)
		if err != nil {
			logger.ContextKV(ctx, xlog.WARNING,
				"reason", "retrieve",
				"query", query,
				"err", err.Error(),
			)
			docs = nil
		}
	}

	system, err := promptTemplate.Format(map[string]any{
		"documents": docs,
	})
	if err != nil {
		return nil, err
	}

	text, err := t.collaborator.Complete(ctx, strings.TrimSpace(system), query)
	if err != nil {
		if errors.Is(err, reasoning.ErrTimeout) || errors.Is(err, reasoning.ErrEmptyResponse) {
			return tools.Failure(err.Error()), nil
		}
		return nil, err
	}

	answer := &Answer{
		Text:   text,
		Source: SourceModel,
	}
	if len(docs) > 0 {
		answer.Source = SourceKnowledgeBase
		answer.References = docs
	}
	return tools.Success(answer), nil
}
