// Package googleai implements a provider for Google Gemini models.
// See https://ai.google.dev/ for more details.
package googleai

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/pkg/llms"
	"github.com/effective-security/x/values"
	"google.golang.org/genai"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// ErrNoContentInResponse is returned when the model returns no candidates.
var ErrNoContentInResponse = errors.New("googleai: no content in generation response")

// GoogleAI is a type that represents a Google AI API client.
type GoogleAI struct {
	client *genai.Client
	opts   Options
}

var _ llms.Model = (*GoogleAI)(nil)

// New creates a new GoogleAI client.
func New(ctx context.Context, opts ...Option) (*GoogleAI, error) {
	clientOptions := DefaultOptions()
	for _, opt := range opts {
		opt(&clientOptions)
	}
	if clientOptions.APIKey == "" {
		return nil, errors.New("googleai: missing API key, set it in the GOOGLE_API_KEY environment variable")
	}

	cfg := &genai.ClientConfig{
		APIKey:     clientOptions.APIKey,
		HTTPClient: clientOptions.HTTPClient,
		Backend:    genai.BackendGeminiAPI,
	}
	if clientOptions.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: clientOptions.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "googleai: failed to create client")
	}
	return &GoogleAI{
		client: client,
		opts:   clientOptions,
	}, nil
}

// GetName implements the Model interface.
func (g *GoogleAI) GetName() string {
	return g.opts.DefaultModel
}

// GetProviderType implements the Model interface.
func (g *GoogleAI) GetProviderType() llms.ProviderType {
	return llms.ProviderGoogleAI
}

// GenerateContent implements the Model interface.
func (g *GoogleAI) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.NewCallOptions(options...)

	contents, cfg, err := g.buildRequest(messages, opts)
	if err != nil {
		return nil, err
	}

	model := values.StringsCoalesce(opts.Model, g.opts.DefaultModel)
	result, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "googleai: failed to generate content")
	}
	return convertResponse(result)
}

func (g *GoogleAI) buildRequest(messages []llms.Message, opts *llms.CallOptions) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	system, rest := llms.SplitSystem(messages)

	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		var role string
		switch m.Role {
		case llms.RoleHuman, llms.RoleGeneric:
			role = roleUser
		case llms.RoleAI:
			role = roleModel
		default:
			return nil, nil, errors.Wrapf(llms.ErrUnexpectedRole, "googleai: role %s", m.Role)
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.GetContent()}},
		})
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(values.NumbersCoalesce(opts.MaxTokens, g.opts.DefaultMaxTokens)),
		StopSequences:   opts.StopWords,
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Role:  roleUser,
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if opts.Temperature != nil {
		t := float32(*opts.Temperature)
		cfg.Temperature = &t
	}
	if opts.TopP > 0 {
		p := float32(opts.TopP)
		cfg.TopP = &p
	}
	return contents, cfg, nil
}

func convertResponse(result *genai.GenerateContentResponse) (*llms.ContentResponse, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, ErrNoContentInResponse
	}

	var usage map[string]any
	if md := result.UsageMetadata; md != nil {
		usage = map[string]any{
			"InputTokens":  int64(md.PromptTokenCount),
			"OutputTokens": int64(md.CandidatesTokenCount),
			"TotalTokens":  int64(md.TotalTokenCount),
		}
	}

	resp := &llms.ContentResponse{}
	for _, c := range result.Candidates {
		choice := &llms.ContentChoice{
			StopReason:     string(c.FinishReason),
			GenerationInfo: usage,
		}
		if c.Content != nil {
			for _, p := range c.Content.Parts {
				if p != nil {
					choice.Content += p.Text
				}
			}
		}
		resp.Choices = append(resp.Choices, choice)
		// usage is reported once per request
		usage = nil
	}
	return resp, nil
}
