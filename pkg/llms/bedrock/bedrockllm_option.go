package bedrock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// ConverseAPI is the subset of the Bedrock runtime client used by the LLM.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Option is an option for the Bedrock LLM.
type Option func(*options)

type options struct {
	modelID   string
	region    string
	maxTokens int
	client    ConverseAPI
}

// WithModel allows setting a custom modelId.
func WithModel(modelID string) Option {
	return func(o *options) {
		o.modelID = modelID
	}
}

// WithRegion overrides the region from the default AWS configuration.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithMaxTokens sets the default maximum number of tokens to generate.
func WithMaxTokens(n int) Option {
	return func(o *options) {
		o.maxTokens = n
	}
}

// WithClient allows setting a custom Bedrock runtime client,
// by default the client is created from the default AWS configuration.
func WithClient(client ConverseAPI) Option {
	return func(o *options) {
		o.client = client
	}
}
