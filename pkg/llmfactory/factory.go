package llmfactory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/pkg/llms"
	"github.com/effective-security/toolrouter/pkg/llms/anthropic"
	"github.com/effective-security/toolrouter/pkg/llms/bedrock"
	"github.com/effective-security/toolrouter/pkg/llms/googleai"
	"github.com/effective-security/toolrouter/pkg/llms/openai"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolrouter", "llmfactory")

// DefaultToolModels is the key of ToolModels used for components without own mapping
const DefaultToolModels = "default"

// NewLLM creates the model for the provider, tests replace it
var NewLLM = CreateLLM

// Factory creates and caches the models of the configured providers
type Factory interface {
	// DefaultModel returns the default model of the default provider
	DefaultModel() (llms.Model, error)
	// ModelByType returns the model of the first provider of the type:
	// OPEN_AI, AZURE, ANTHROPIC, GOOGLEAI, BEDROCK, PERPLEXITY
	ModelByType(providerType string) (llms.Model, error)
	// ModelByName returns the first of the named models offered by a provider,
	// or the default model
	ModelByName(preferredModels ...string) (llms.Model, error)
	// ToolModel returns the model mapped to a component, e.g. planner or research
	ToolModel(toolName string, preferredModels ...string) (llms.Model, error)
}

// Load returns the factory for the config file
func Load(location string) (Factory, error) {
	cfg, err := LoadConfig(location)
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

type constructor func(cfg *ProviderConfig, model string) (llms.Model, error)

var constructors = map[string]constructor{
	"OPENAI":     openAICompatible(openai.APITypeOpenAI),
	"OPEN_AI":    openAICompatible(openai.APITypeOpenAI),
	"AZURE":      openAICompatible(openai.APITypeAzure),
	"PERPLEXITY": openAICompatible(openai.APITypePerplexity),
	"ANTHROPIC":  newAnthropic,
	"GOOGLEAI":   newGoogleAI,
	"BEDROCK":    newBedrock,
}

// CreateLLM returns a model of the provider,
// the first of preferredModels offered by the provider or its default model
func CreateLLM(cfg *ProviderConfig, preferredModels ...string) (llms.Model, error) {
	typ := strings.ToUpper(cfg.OpenAI.APIType)
	create, ok := constructors[typ]
	if !ok {
		return nil, errors.Errorf("unsupported provider type: %s", typ)
	}
	return create(cfg, cfg.FindModel(preferredModels...))
}

func openAICompatible(apiType openai.APIType) constructor {
	return func(cfg *ProviderConfig, model string) (llms.Model, error) {
		opts := []openai.Option{
			openai.WithAPIType(apiType),
			openai.WithModel(model),
		}
		if cfg.Token != "" {
			opts = append(opts, openai.WithToken(cfg.Token))
		}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		switch apiType {
		case openai.APITypeAzure:
			opts = append(opts, openai.WithAPIVersion(cfg.OpenAI.APIVersion))
		case openai.APITypeOpenAI:
			if cfg.OpenAI.OrgID != "" {
				opts = append(opts, openai.WithOrganization(cfg.OpenAI.OrgID))
			}
		}
		return openai.New(opts...)
	}
}

func newAnthropic(cfg *ProviderConfig, model string) (llms.Model, error) {
	opts := []anthropic.Option{anthropic.WithModel(model)}
	if cfg.Token != "" {
		opts = append(opts, anthropic.WithToken(cfg.Token))
	}
	return anthropic.New(opts...)
}

func newGoogleAI(cfg *ProviderConfig, model string) (llms.Model, error) {
	opts := []googleai.Option{googleai.WithDefaultModel(model)}
	if cfg.Token != "" {
		opts = append(opts, googleai.WithAPIKey(cfg.Token))
	}
	return googleai.New(context.Background(), opts...)
}

func newBedrock(cfg *ProviderConfig, model string) (llms.Model, error) {
	opts := []bedrock.Option{bedrock.WithModel(model)}
	if cfg.Region != "" {
		opts = append(opts, bedrock.WithRegion(cfg.Region))
	}
	return bedrock.New(opts...)
}

type factory struct {
	cfg             *Config
	defaultProvider *ProviderConfig
	toolModels      map[string][]string

	lock   sync.Mutex
	byType map[string]llms.Model
	byName map[string]llms.Model
}

// New returns a factory for the config.
// The default provider is the one named by DefaultProvider, or the first one.
func New(cfg *Config) Factory {
	f := &factory{
		cfg:        cfg,
		toolModels: make(map[string][]string, len(cfg.ToolModels)),
		byType:     make(map[string]llms.Model),
		byName:     make(map[string]llms.Model),
	}
	for k, v := range cfg.ToolModels {
		f.toolModels[k] = slices.Clone(v)
	}

	for _, p := range cfg.Providers {
		if cfg.DefaultProvider != "" && p.Name == cfg.DefaultProvider {
			f.defaultProvider = p
			break
		}
	}
	if f.defaultProvider == nil && len(cfg.Providers) > 0 {
		f.defaultProvider = cfg.Providers[0]
	}
	return f
}

func (f *factory) DefaultModel() (llms.Model, error) {
	if f.defaultProvider == nil {
		return nil, errors.New("no providers configured")
	}
	return NewLLM(f.defaultProvider, f.defaultProvider.DefaultModel)
}

func (f *factory) ModelByType(providerType string) (llms.Model, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if m, ok := f.byType[providerType]; ok {
		return m, nil
	}

	idx := slices.IndexFunc(f.cfg.Providers, func(p *ProviderConfig) bool {
		return p.OpenAI.APIType == providerType
	})
	if idx < 0 {
		return nil, errors.Errorf("provider not found for type: %s", providerType)
	}

	p := f.cfg.Providers[idx]
	m, err := NewLLM(p)
	if err != nil {
		return nil, err
	}
	logCreated(p, m)
	f.byType[providerType] = m
	return m, nil
}

func (f *factory) ModelByName(modelNames ...string) (llms.Model, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, name := range modelNames {
		if m, ok := f.byName[name]; ok {
			return m, nil
		}
		for _, p := range f.cfg.Providers {
			if !slices.Contains(p.AvailableModels, name) {
				continue
			}
			m, err := NewLLM(p, modelNames...)
			if err != nil {
				logger.KV(xlog.ERROR,
					"reason", "create_llm",
					"provider", p.Name,
					"type", p.OpenAI.APIType,
					"models", modelNames,
					"err", err.Error(),
				)
				continue
			}
			logCreated(p, m)
			f.byName[name] = m
			return m, nil
		}
	}
	return f.DefaultModel()
}

// ToolModel resolves the component mapping, then the default mapping,
// then the preferred models
func (f *factory) ToolModel(toolName string, preferredModels ...string) (llms.Model, error) {
	for _, key := range []string{toolName, DefaultToolModels} {
		if names, ok := f.toolModels[key]; ok {
			return f.ModelByName(names...)
		}
	}
	return f.ModelByName(preferredModels...)
}

func logCreated(p *ProviderConfig, m llms.Model) {
	logger.KV(xlog.DEBUG,
		"status", "created_llm",
		"provider", p.Name,
		"type", p.OpenAI.APIType,
		"model", m.GetName(),
	)
}
