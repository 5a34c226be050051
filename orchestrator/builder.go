package orchestrator

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/audit"
	"github.com/effective-security/toolrouter/callbacks"
	"github.com/effective-security/toolrouter/config"
	"github.com/effective-security/toolrouter/encoding"
	"github.com/effective-security/toolrouter/pkg/llmfactory"
	"github.com/effective-security/toolrouter/planner"
	"github.com/effective-security/toolrouter/reasoning"
	"github.com/effective-security/toolrouter/router"
	"github.com/effective-security/toolrouter/tools"
	"github.com/effective-security/toolrouter/tools/auditview"
	"github.com/effective-security/toolrouter/tools/finance"
	"github.com/effective-security/toolrouter/tools/mathsolver"
	"github.com/effective-security/toolrouter/tools/research"
	"github.com/effective-security/toolrouter/tools/tavily"
	"github.com/effective-security/toolrouter/workflow"
	"github.com/effective-security/xlog"
)

// Model components
const (
	ComponentPlanner  = "planner"
	ComponentResearch = "research"
)

// Builder assembles a Service from the configuration
type Builder struct {
	cfg *config.Config

	// Factory overrides the model factory, used in tests
	Factory llmfactory.Factory
	// Sink overrides the audit sink, used in tests
	Sink audit.Sink
	// Retriever overrides the research knowledge source, used in tests
	Retriever research.Retriever
	// Seed of the simulated market data, current time when zero
	Seed uint64
	// Callback receives step events in addition to the logger
	Callback tools.Callback
}

// NewBuilder returns a builder for the configuration
func NewBuilder(cfg *config.Config) *Builder {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Builder{cfg: cfg}
}

// Build returns the service
func (b *Builder) Build(ctx context.Context) (*Service, error) {
	cfg := b.cfg

	enc, err := encoding.New(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	sink := b.Sink
	if sink == nil {
		sink, err = audit.New(ctx, &cfg.Audit)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to create audit sink")
		}
	}
	recorder := audit.NewRecorder(sink)

	plannerModel, researchModel := b.collaborators()

	retriever := b.Retriever
	if retriever == nil {
		if r, err := tavily.New(cfg.Research.TavilyAPIKey); err == nil {
			retriever = r.WithMaxDocuments(cfg.Research.MaxDocuments)
		} else {
			logger.KV(xlog.INFO, "status", "research_without_retriever", "reason", err.Error())
		}
	}

	seed := b.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	registry, err := tools.NewRegistry(
		research.New(researchModel, retriever),
		mathsolver.New(),
		auditview.New(recorder),
		finance.New(seed),
	)
	if err != nil {
		return nil, err
	}
	for alias, name := range Aliases() {
		if err = registry.RegisterAlias(alias, name); err != nil {
			return nil, err
		}
	}

	fanout := callbacks.NewFanout(callbacks.NewPackageLogger(logger))
	if b.Callback != nil {
		fanout.Add(b.Callback)
	}
	var opts []ServiceOption
	if cfg.Executor.Trace {
		sp := callbacks.NewScratchpad(callbacks.ModeVerbose)
		fanout.Add(sp)
		opts = append(opts, WithScratchpad(sp))
	}
	opts = append(opts, WithEncoder(enc))

	executor := workflow.New(registry, recorder,
		workflow.WithStepTimeout(cfg.Executor.StepTimeout.Duration()),
		workflow.WithCallback(fanout),
	)

	return NewService(
		router.NewWithConfig(&cfg.Router),
		planner.New(registry, plannerModel),
		executor,
		opts...,
	), nil
}

// collaborators returns the planner and research collaborators,
// nil when no model is configured
func (b *Builder) collaborators() (plannerModel, researchModel reasoning.Collaborator) {
	cfg := b.cfg
	factory := b.Factory
	if factory == nil {
		if !cfg.HasLLM() {
			logger.KV(xlog.NOTICE, "status", "no_llm_configured")
			return nil, nil
		}
		factory = llmfactory.New(cfg.LLM)
	}

	if !cfg.Planner.Disabled {
		if m, err := factory.ToolModel(ComponentPlanner, cfg.Planner.Models...); err == nil {
			plannerModel = reasoning.New(m,
				reasoning.WithAgent(ComponentPlanner),
				reasoning.WithTemperature(0),
				reasoning.WithTimeout(cfg.Planner.Timeout.Duration()),
			)
		} else {
			logger.KV(xlog.ERROR, "reason", "planner_model", "err", err.Error())
		}
	}

	temperature := research.DefaultTemperature
	if cfg.Research.Temperature != nil {
		temperature = *cfg.Research.Temperature
	}
	if m, err := factory.ToolModel(ComponentResearch, cfg.Research.Models...); err == nil {
		researchModel = reasoning.New(m,
			reasoning.WithAgent(ComponentResearch),
			reasoning.WithTemperature(temperature),
			reasoning.WithTimeout(cfg.Research.Timeout.Duration()),
		)
	} else {
		logger.KV(xlog.ERROR, "reason", "research_model", "err", err.Error())
	}
	return plannerModel, researchModel
}
