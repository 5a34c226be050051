package bedrock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/pkg/llms"
	"github.com/effective-security/x/values"
)

const (
	// ModelAnthropicClaudeHaiku is the default model.
	ModelAnthropicClaudeHaiku = "anthropic.claude-3-5-haiku-20241022-v1:0"
	// ModelAmazonNovaLite is Amazon Nova Lite.
	ModelAmazonNovaLite = "amazon.nova-lite-v1:0"

	defaultMaxTokens = 2048
)

// ErrEmptyResponse is returned when Converse returns no text.
var ErrEmptyResponse = errors.New("bedrock: no response")

// LLM is a Bedrock LLM implementation backed by the Converse API.
type LLM struct {
	modelID   string
	maxTokens int
	client    ConverseAPI
}

var _ llms.Model = (*LLM)(nil)

// New creates a new Bedrock LLM implementation.
func New(opts ...Option) (*LLM, error) {
	o := &options{
		modelID:   ModelAnthropicClaudeHaiku,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.client == nil {
		var loadOpts []func(*config.LoadOptions) error
		if o.region != "" {
			loadOpts = append(loadOpts, config.WithRegion(o.region))
		}
		cfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, errors.Wrap(err, "bedrock: failed to load AWS config")
		}
		o.client = bedrockruntime.NewFromConfig(cfg)
	}

	return &LLM{
		modelID:   o.modelID,
		maxTokens: o.maxTokens,
		client:    o.client,
	}, nil
}

// GetName implements the Model interface.
func (l *LLM) GetName() string {
	return l.modelID
}

// GetProviderType implements the Model interface.
func (l *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderBedrock
}

// GenerateContent implements llms.Model.
func (l *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.NewCallOptions(options...)

	input, err := l.buildInput(messages, opts)
	if err != nil {
		return nil, err
	}

	out, err := l.client.Converse(ctx, input)
	if err != nil {
		return nil, errors.Wrap(err, "bedrock: converse failed")
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, ErrEmptyResponse
	}

	choice := &llms.ContentChoice{
		StopReason: string(out.StopReason),
	}
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			choice.Content += text.Value
		}
	}
	if choice.Content == "" {
		return nil, ErrEmptyResponse
	}
	if out.Usage != nil {
		choice.GenerationInfo = map[string]any{
			"InputTokens":  int64(aws.ToInt32(out.Usage.InputTokens)),
			"OutputTokens": int64(aws.ToInt32(out.Usage.OutputTokens)),
			"TotalTokens":  int64(aws.ToInt32(out.Usage.TotalTokens)),
		}
	}

	return &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}, nil
}

func (l *LLM) buildInput(messages []llms.Message, opts *llms.CallOptions) (*bedrockruntime.ConverseInput, error) {
	system, rest := llms.SplitSystem(messages)

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(values.StringsCoalesce(opts.Model, l.modelID)),
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens: aws.Int32(int32(values.NumbersCoalesce(opts.MaxTokens, l.maxTokens))),
		},
	}
	if opts.Temperature != nil {
		input.InferenceConfig.Temperature = aws.Float32(float32(*opts.Temperature))
	}
	if opts.TopP > 0 {
		input.InferenceConfig.TopP = aws.Float32(float32(opts.TopP))
	}
	if len(opts.StopWords) > 0 {
		input.InferenceConfig.StopSequences = opts.StopWords
	}
	if system != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: system},
		}
	}

	for _, m := range rest {
		var role types.ConversationRole
		switch m.Role {
		case llms.RoleHuman, llms.RoleGeneric:
			role = types.ConversationRoleUser
		case llms.RoleAI:
			role = types.ConversationRoleAssistant
		default:
			return nil, errors.Wrapf(llms.ErrUnexpectedRole, "bedrock: role %s", m.Role)
		}
		input.Messages = append(input.Messages, types.Message{
			Role: role,
			Content: []types.ContentBlock{
				&types.ContentBlockMemberText{Value: m.GetContent()},
			},
		})
	}
	return input, nil
}
