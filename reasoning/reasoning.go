// Package reasoning provides the text-completion collaborator used by the
// plan generator and the research tool.
package reasoning

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/pkg/llms"
	"github.com/effective-security/toolrouter/pkg/llmutils"
	"github.com/effective-security/toolrouter/pkg/metricskey"
	"github.com/effective-security/xlog"
)

//go:generate mockgen -source=reasoning.go -destination=../mocks/mockreasoning/reasoning_mock.gen.go -package mockreasoning

var logger = xlog.NewPackageLogger("github.com/effective-security/toolrouter", "reasoning")

var (
	// ErrNotConfigured is returned when no model is available
	ErrNotConfigured = errors.New("reasoning collaborator is not configured")
	// ErrTimeout is returned when the model did not answer in time
	ErrTimeout = errors.New("reasoning collaborator timed out")
	// ErrEmptyResponse is returned when the model answered with no content
	ErrEmptyResponse = errors.New("reasoning collaborator returned empty response")
)

// DefaultTimeout bounds a single completion
const DefaultTimeout = 30 * time.Second

// Collaborator completes a user text under system instructions
type Collaborator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CompleteFunc adapts a function to Collaborator
type CompleteFunc func(ctx context.Context, system, user string) (string, error)

// Complete calls f
func (f CompleteFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// Option configures the model collaborator
type Option func(*options)

type options struct {
	agent       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// WithAgent sets the name reported in logs and metrics
func WithAgent(agent string) Option {
	return func(o *options) {
		o.agent = agent
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float64) Option {
	return func(o *options) {
		o.temperature = t
	}
}

// WithMaxTokens limits the response size
func WithMaxTokens(n int) Option {
	return func(o *options) {
		o.maxTokens = n
	}
}

// WithTimeout bounds a single completion
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Model is a Collaborator backed by an LLM
type Model struct {
	model llms.Model
	opts  options
}

// New returns a collaborator using the model
func New(model llms.Model, opts ...Option) *Model {
	m := &Model{
		model: model,
		opts: options{
			agent:   "reasoning",
			timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(&m.opts)
	}
	return m
}

// Complete sends the system instructions and the user text to the model
// and returns the text of the response.
func (m *Model) Complete(ctx context.Context, system, user string) (string, error) {
	if m == nil || m.model == nil {
		return "", ErrNotConfigured
	}

	modelName := m.model.GetName()
	agent := m.opts.agent

	var messages []llms.Message
	if system != "" {
		messages = append(messages, llms.MessageFromTextParts(llms.RoleSystem, system))
	}
	messages = append(messages, llms.MessageFromTextParts(llms.RoleHuman, user))

	callOpts := []llms.CallOption{
		llms.WithTemperature(m.opts.temperature),
	}
	if m.opts.maxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(m.opts.maxTokens))
	}

	ctx, cancel := context.WithTimeout(ctx, m.opts.timeout)
	defer cancel()

	metricskey.StatsLLMBytesSent.IncrCounter(float64(llmutils.CountMessagesContentSize(messages)), agent, modelName)

	resp, err := m.model.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			metricskey.StatsReasoningCallsFailed.IncrCounter(1, agent, "timeout")
			logger.ContextKV(ctx, xlog.WARNING,
				"reason", "timeout",
				"agent", agent,
				"model", modelName,
				"timeout", m.opts.timeout.String(),
			)
			return "", errors.Mark(errors.Wrapf(err, "no response in %s", m.opts.timeout), ErrTimeout)
		}
		metricskey.StatsReasoningCallsFailed.IncrCounter(1, agent, "error")
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "generate_content",
			"agent", agent,
			"model", modelName,
			"err", err.Error(),
		)
		return "", errors.WithMessagef(err, "%s: model %s failed", agent, modelName)
	}

	metricskey.StatsLLMBytesReceived.IncrCounter(float64(llmutils.CountResponseContentSize(resp)), agent, modelName)
	in, out, total := llmutils.CountTokens(resp)
	metricskey.StatsLLMInputTokens.IncrCounter(float64(in), agent, modelName)
	metricskey.StatsLLMOutputTokens.IncrCounter(float64(out), agent, modelName)
	metricskey.StatsLLMTotalTokens.IncrCounter(float64(total), agent, modelName)

	content := strings.TrimSpace(resp.Content())
	if content == "" {
		metricskey.StatsReasoningCallsFailed.IncrCounter(1, agent, "empty")
		return "", ErrEmptyResponse
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "completed",
		"agent", agent,
		"model", modelName,
		"input_tokens", in,
		"output_tokens", out,
	)
	return content, nil
}

// IsConfigured returns false for nil collaborators
// and for models without an underlying LLM
func IsConfigured(c Collaborator) bool {
	if c == nil {
		return false
	}
	if m, ok := c.(*Model); ok {
		return m != nil && m.model != nil
	}
	return true
}
