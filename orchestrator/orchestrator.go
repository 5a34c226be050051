// Package orchestrator exposes the router entry points.
//
// Requests arrive either through a named entry point, as the transport does,
// or as raw text through Handle, which classifies the text locally and
// defers compound requests to the planner.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/audit"
	"github.com/effective-security/toolrouter/callbacks"
	"github.com/effective-security/toolrouter/encoding"
	"github.com/effective-security/toolrouter/pkg/metricskey"
	"github.com/effective-security/toolrouter/planner"
	"github.com/effective-security/toolrouter/router"
	"github.com/effective-security/toolrouter/session"
	"github.com/effective-security/toolrouter/tools"
	"github.com/effective-security/toolrouter/workflow"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolrouter", "orchestrator")

// ErrUnknownEntryPoint is returned for names that are not entry points
var ErrUnknownEntryPoint = errors.New("unknown entry point")

// Reply is the outcome of a handled request
type Reply struct {
	// Route is the classified route, a tool name or compound
	Route string `json:"route" yaml:"route"`
	// Entry is the entry point that served the request
	Entry string `json:"entry" yaml:"entry"`
	Text  string `json:"text" yaml:"text"`
	// Stats and Trace are set when tracing is enabled
	Stats *callbacks.RunStats `json:"stats,omitempty" yaml:"stats,omitempty"`
	Trace string              `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// Service dispatches requests to the planner, the executor and the tools
type Service struct {
	classifier *router.Classifier
	planner    *planner.Generator
	executor   *workflow.Executor
	encoder    encoding.Encoder
	scratchpad *callbacks.Scratchpad
}

// ServiceOption configures the Service
type ServiceOption func(*Service)

// WithEncoder sets the encoder of structured payloads, JSON by default
func WithEncoder(enc encoding.Encoder) ServiceOption {
	return func(s *Service) {
		s.encoder = enc
	}
}

// WithScratchpad enables run transcripts in replies.
// The scratchpad must also receive the executor callbacks.
func WithScratchpad(sp *callbacks.Scratchpad) ServiceOption {
	return func(s *Service) {
		s.scratchpad = sp
	}
}

// NewService returns the service
func NewService(classifier *router.Classifier, gen *planner.Generator, executor *workflow.Executor, opts ...ServiceOption) *Service {
	s := &Service{
		classifier: classifier,
		planner:    gen,
		executor:   executor,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.encoder == nil {
		s.encoder, _ = encoding.New(encoding.FormatDefault)
	}
	return s
}

// Registry returns the tool registry
func (s *Service) Registry() *tools.Registry {
	return s.executor.Registry()
}

// Recorder returns the audit recorder
func (s *Service) Recorder() *audit.Recorder {
	return s.executor.Recorder()
}

// Classifier returns the intent classifier
func (s *Service) Classifier() *router.Classifier {
	return s.classifier
}

// Close releases the audit sink
func (s *Service) Close() error {
	if r := s.Recorder(); r != nil {
		return r.Close()
	}
	return nil
}

// Handle classifies the raw request and serves it with the matching entry point
func (s *Service) Handle(ctx context.Context, req router.Request) (*Reply, error) {
	sc := session.New(session.OrDefault(req.SessionID))
	ctx = session.WithContext(ctx, sc)

	outcome := s.classifier.Classify(req)
	reply := &Reply{Route: outcome.Route()}

	var (
		entry string
		args  tools.Arguments
	)
	switch o := outcome.(type) {
	case router.SingleTool:
		e, ok := EntryForTool(o.Call.Tool)
		if !ok {
			return nil, errors.Mark(errors.Newf("no entry point for tool: %s", o.Call.Tool), ErrUnknownEntryPoint)
		}
		entry = e.Name
		args = o.Call.Arguments.Clone()
	case router.Defer:
		entry = EntryOrchestrator
		args = tools.Arguments{ArgComplexQuery: o.Request.Text}
	}
	reply.Entry = entry

	if s.scratchpad != nil {
		s.scratchpad.StartRun(ctx)
	}

	text, err := s.Dispatch(ctx, entry, args, sc.ID())

	if s.scratchpad != nil {
		stats, trace := s.scratchpad.EndRun(ctx)
		reply.Stats = stats
		reply.Trace = string(trace)
	}
	if err != nil {
		return nil, err
	}
	reply.Text = text
	return reply, nil
}

// Dispatch serves the named entry point.
// Tool failures are returned as text, an error is returned only for unknown entry points.
func (s *Service) Dispatch(ctx context.Context, entry string, args tools.Arguments, sessionID string) (string, error) {
	ep, ok := LookupEntryPoint(entry)
	if !ok {
		return "", errors.Mark(errors.Newf("unknown entry point: %s", entry), ErrUnknownEntryPoint)
	}

	sessionID = session.OrDefault(sessionID)
	if session.FromContext(ctx) == nil {
		ctx = session.WithContext(ctx, session.New(sessionID))
	}

	logger.ContextKV(ctx, xlog.INFO,
		"entry", entry,
		"session", sessionID,
	)

	if ep.Tool == "" {
		return s.orchestrate(ctx, args.Get(ArgComplexQuery), sessionID), nil
	}
	return s.single(ctx, ep, args, sessionID), nil
}

func (s *Service) orchestrate(ctx context.Context, query, sessionID string) string {
	defer metricskey.PerfWorkflowRun.MeasureSince(time.Now(), router.RouteCompound)

	plan := s.planner.Generate(ctx, query)
	resp := s.executor.Execute(ctx, plan, sessionID)

	if r := s.Recorder(); r != nil {
		status := tools.StatusSuccess
		if resp.Succeeded == 0 {
			status = tools.StatusError
		}
		r.Record(ctx, sessionID, EntryOrchestrator, query, resp.Summary(), string(status))
	}
	return resp.Text
}

func (s *Service) single(ctx context.Context, ep EntryPoint, args tools.Arguments, sessionID string) string {
	defer metricskey.PerfWorkflowRun.MeasureSince(time.Now(), ep.Tool)

	call := tools.Call{
		Tool:      ep.Tool,
		Arguments: toolArguments(args),
	}
	resp := s.executor.Execute(ctx, planner.SingleStep(planner.SourceRouter, call), sessionID)

	prefix := ep.Label() + " Error: "
	sr := resp.Steps[0]
	if !sr.Found {
		return prefix + "tool is not available"
	}
	if !sr.Result.IsSuccess() {
		if strings.HasPrefix(sr.Result.Message, prefix) {
			return sr.Result.Message
		}
		return prefix + sr.Result.Message
	}

	text, err := s.render(sr.Result.Payload)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "encode",
			"entry", ep.Name,
			"err", err.Error(),
		)
		return sr.Result.Text()
	}
	return text
}

func (s *Service) render(payload any) (string, error) {
	if payload == nil {
		return "", nil
	}
	return encoding.Encode(s.encoder, payload)
}

// toolArguments drops the transport arguments
func toolArguments(args tools.Arguments) tools.Arguments {
	res := args.Clone()
	delete(res, ArgSessionID)
	return res
}
