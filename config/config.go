// Package config loads the router configuration.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/audit"
	"github.com/effective-security/toolrouter/encoding"
	"github.com/effective-security/toolrouter/pkg/llmfactory"
	"github.com/effective-security/toolrouter/router"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
	"github.com/go-playground/validator/v10"
)

// DefaultTimeout is used for the reasoning collaborator and the executor steps
const DefaultTimeout = 30 * time.Second

// Config of the router
type Config struct {
	// LLM specifies the model providers, optional
	LLM *llmfactory.Config `json:"llm,omitempty" yaml:"llm,omitempty"`

	Planner  Planner       `json:"planner" yaml:"planner"`
	Research Research      `json:"research" yaml:"research"`
	Executor Executor      `json:"executor" yaml:"executor"`
	Router   router.Config `json:"router" yaml:"router"`
	Audit    audit.Config  `json:"audit" yaml:"audit"`
	Output   Output        `json:"output" yaml:"output"`
	Logging  Logging       `json:"logging" yaml:"logging"`
}

// Planner specifies the plan generator
type Planner struct {
	// Disabled turns off the reasoning collaborator for planning,
	// every compound request gets the research fallback plan
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	// Models are the preferred model names
	Models []string `json:"models,omitempty" yaml:"models,omitempty"`
	// Timeout of the planning call
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"gte=0"`
}

// Research specifies the research tool
type Research struct {
	// Models are the preferred model names
	Models []string `json:"models,omitempty" yaml:"models,omitempty"`
	// Timeout of the reasoning call
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"gte=0"`
	// Temperature of the reasoning call, 0.7 by default
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	// TavilyAPIKey enables web search context, TAVILY_API_KEY is used when empty
	TavilyAPIKey string `json:"tavily_api_key,omitempty" yaml:"tavily_api_key,omitempty"`
	// MaxDocuments limits the retrieved context documents
	MaxDocuments int `json:"max_documents,omitempty" yaml:"max_documents,omitempty" validate:"gte=0"`
}

// Executor specifies the workflow executor
type Executor struct {
	// StepTimeout is the maximum duration of a plan step
	StepTimeout Duration `json:"step_timeout,omitempty" yaml:"step_timeout,omitempty" validate:"gte=0"`
	// Trace collects a transcript of each run
	Trace bool `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// Output specifies how structured payloads are returned
type Output struct {
	Format string `json:"format,omitempty" yaml:"format,omitempty" validate:"omitempty,oneof=json yaml toml text"`
}

// Logging specifies the log output
type Logging struct {
	// Level is one of TRACE|DEBUG|INFO|NOTICE|WARNING|ERROR|CRITICAL
	Level string `json:"level,omitempty" yaml:"level,omitempty" validate:"omitempty,oneof=TRACE DEBUG INFO NOTICE WARNING ERROR CRITICAL"`
	// File is the log file, stderr when empty
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// Default returns the configuration used without a file
func Default() *Config {
	cfg := new(Config)
	cfg.SetDefaults()
	return cfg
}

// Load returns the configuration from the file,
// or the defaults when file is empty
func Load(file string) (*Config, error) {
	if file == "" {
		return Default(), nil
	}

	cfg := new(Config)
	if err := configloader.UnmarshalAndExpand(file, cfg); err != nil {
		return nil, errors.WithMessagef(err, "failed to load config %s", file)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults fills the empty values
func (c *Config) SetDefaults() {
	c.Planner.Timeout = durationOr(c.Planner.Timeout, DefaultTimeout)
	c.Research.Timeout = durationOr(c.Research.Timeout, DefaultTimeout)
	c.Executor.StepTimeout = durationOr(c.Executor.StepTimeout, DefaultTimeout)
	c.Audit.Backend = strings.ToLower(values.StringsCoalesce(c.Audit.Backend, audit.BackendMemory))
	c.Output.Format = strings.ToLower(values.StringsCoalesce(c.Output.Format, encoding.FormatDefault))
	c.Logging.Level = strings.ToUpper(values.StringsCoalesce(c.Logging.Level, "INFO"))
}

// Validate returns an error if the configuration is invalid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.WithMessage(err, "invalid configuration")
	}
	if c.Audit.Backend == audit.BackendRedis && c.Audit.RedisURL == "" {
		return errors.New("invalid configuration: audit.redis_url is required for redis backend")
	}
	return nil
}

// OverrideFormat sets the output format, when not empty, and validates it
func (c *Config) OverrideFormat(format string) error {
	if format == "" {
		return nil
	}
	c.Output.Format = strings.ToLower(format)
	return c.Validate()
}

// HasLLM returns true if at least one model provider is configured
func (c *Config) HasLLM() bool {
	return c.LLM != nil && len(c.LLM.Providers) > 0
}

func durationOr(d Duration, def time.Duration) Duration {
	if d > 0 {
		return d
	}
	return Duration(def)
}
