package openai

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/pkg/llms"
	"github.com/effective-security/x/values"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
)

var (
	// ErrEmptyResponse is returned when the OpenAI API returns no choices.
	ErrEmptyResponse = errors.New("openai: no response")
	// ErrMissingToken is returned when the API key is not configured.
	ErrMissingToken = errors.New("openai: missing API key, set it in the OPENAI_API_KEY environment variable")
)

// LLM is an OpenAI compatible chat completion model.
type LLM struct {
	client  openai.Client
	model   string
	apiType APIType
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI LLM.
func New(opts ...Option) (*LLM, error) {
	o := &options{
		token:        os.Getenv(tokenEnvVarName),
		model:        os.Getenv(modelEnvVarName),
		baseURL:      os.Getenv(baseURLEnvVarName),
		organization: os.Getenv(organizationEnvVarName),
		apiType:      APITypeOpenAI,
		maxRetries:   2,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.token == "" {
		return nil, ErrMissingToken
	}
	o.model = values.StringsCoalesce(o.model, DefaultChatModel)

	reqOpts := []option.RequestOption{
		option.WithMaxRetries(o.maxRetries),
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}

	switch o.apiType {
	case APITypeAzure:
		if o.baseURL == "" {
			return nil, errors.New("openai: base URL is required for Azure")
		}
		reqOpts = append(reqOpts,
			azure.WithEndpoint(o.baseURL, values.StringsCoalesce(o.apiVersion, DefaultAPIVersion)),
			azure.WithAPIKey(o.token),
		)
	default:
		reqOpts = append(reqOpts, option.WithAPIKey(o.token))
		if o.baseURL != "" {
			reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
		}
		if o.organization != "" {
			reqOpts = append(reqOpts, option.WithOrganization(o.organization))
		}
	}

	return &LLM{
		client:  openai.NewClient(reqOpts...),
		model:   o.model,
		apiType: o.apiType,
	}, nil
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.model
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	switch o.apiType {
	case APITypeAzure:
		return llms.ProviderAzure
	case APITypePerplexity:
		return llms.ProviderPerplexity
	}
	return llms.ProviderOpenAI
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.NewCallOptions(options...)

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, mc := range messages {
		text := mc.GetContent()
		switch mc.Role {
		case llms.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(text))
		case llms.RoleAI:
			msgs = append(msgs, openai.AssistantMessage(text))
		case llms.RoleHuman, llms.RoleGeneric:
			msgs = append(msgs, openai.UserMessage(text))
		default:
			return nil, errors.Wrapf(llms.ErrUnexpectedRole, "role %s", mc.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(values.StringsCoalesce(opts.Model, o.model)),
		Messages: msgs,
	}
	if opts.Temperature != nil {
		params.Temperature = openai.Float(*opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.TopP > 0 {
		params.TopP = openai.Float(opts.TopP)
	}
	if opts.Seed != 0 {
		params.Seed = openai.Int(int64(opts.Seed))
	}
	if len(opts.StopWords) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: opts.StopWords}
	}

	result, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "openai: chat completion failed")
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	resp := &llms.ContentResponse{
		Choices: make([]*llms.ContentChoice, 0, len(result.Choices)),
	}
	for i, c := range result.Choices {
		choice := &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
		}
		// usage is reported once per request
		if i == 0 {
			choice.GenerationInfo = map[string]any{
				"InputTokens":  result.Usage.PromptTokens,
				"OutputTokens": result.Usage.CompletionTokens,
				"TotalTokens":  result.Usage.TotalTokens,
			}
		}
		resp.Choices = append(resp.Choices, choice)
	}
	return resp, nil
}
