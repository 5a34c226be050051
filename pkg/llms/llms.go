package llms

import (
	"context"
)

// ProviderType is the type of provider.
type ProviderType string

const (
	// ProviderAnthropic is the type of provider.
	ProviderAnthropic ProviderType = "ANTHROPIC"
	// ProviderAzure is the type of provider.
	ProviderAzure ProviderType = "AZURE"
	// ProviderBedrock is the type of provider.
	ProviderBedrock ProviderType = "BEDROCK"
	// ProviderGoogleAI is the type of provider.
	ProviderGoogleAI ProviderType = "GOOGLEAI"
	// ProviderOpenAI is the type of provider.
	ProviderOpenAI ProviderType = "OPENAI"
	// ProviderPerplexity is the type of provider.
	ProviderPerplexity ProviderType = "PERPLEXITY"
)

//go:generate mockgen -source=llms.go -destination=../../mocks/mockllms/llms_mock.gen.go -package mockllms

// Model is an interface chat models implement.
type Model interface {
	// GetName returns the model name used for requests.
	GetName() string
	// GetProviderType returns the type of provider.
	GetProviderType() ProviderType
	// GenerateContent asks the model to generate content from a sequence of
	// messages.
	GenerateContent(ctx context.Context, messages []Message, options ...CallOption) (*ContentResponse, error)
}

// Capability is a bitmask indicating supported features of an LLM provider.
type Capability uint64

const (
	// CapabilityText is basic text or chat generation
	CapabilityText Capability = 1 << iota
	// CapabilityJSONResponse is JSON output mode
	CapabilityJSONResponse
	// CapabilitySystemPrompt is a separate system instruction
	CapabilitySystemPrompt
	// CapabilityTemperature is sampling temperature control
	CapabilityTemperature
)

var providerCapabilities = map[ProviderType]Capability{
	ProviderOpenAI: CapabilityText |
		CapabilityJSONResponse |
		CapabilitySystemPrompt |
		CapabilityTemperature,

	ProviderAzure: CapabilityText |
		CapabilityJSONResponse |
		CapabilitySystemPrompt |
		CapabilityTemperature,

	ProviderPerplexity: CapabilityText |
		CapabilitySystemPrompt |
		CapabilityTemperature,

	ProviderAnthropic: CapabilityText |
		CapabilitySystemPrompt |
		CapabilityTemperature,

	ProviderGoogleAI: CapabilityText |
		CapabilityJSONResponse |
		CapabilitySystemPrompt |
		CapabilityTemperature,

	// Use Bedrock with Anthropic or Titan models
	ProviderBedrock: CapabilityText |
		CapabilitySystemPrompt |
		CapabilityTemperature,
}

// ProviderCapabilities returns the capabilities of the provider.
func ProviderCapabilities(pt ProviderType) Capability {
	return providerCapabilities[pt]
}

// Supports returns true if the provider supports the capability.
func (p ProviderType) Supports(cap Capability) bool {
	return ProviderCapabilities(p)&cap != 0
}
