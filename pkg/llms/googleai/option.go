package googleai

import (
	"net/http"
	"os"
)

// Options is a set of options for GoogleAI clients.
type Options struct {
	DefaultModel     string
	DefaultMaxTokens int
	APIKey           string
	BaseURL          string
	HTTPClient       *http.Client
}

// DefaultOptions returns the defaults, the API key is taken from GOOGLE_API_KEY.
func DefaultOptions() Options {
	return Options{
		DefaultModel:     "gemini-2.5-flash",
		DefaultMaxTokens: 8192,
		APIKey:           os.Getenv("GOOGLE_API_KEY"),
	}
}

type Option func(*Options)

// WithAPIKey passes the API KEY (token) to the client.
func WithAPIKey(apiKey string) Option {
	return func(opts *Options) {
		opts.APIKey = apiKey
	}
}

// WithDefaultModel passes a default content model name to the client.
func WithDefaultModel(defaultModel string) Option {
	return func(opts *Options) {
		opts.DefaultModel = defaultModel
	}
}

// WithDefaultMaxTokens sets the maximum token count for the model.
func WithDefaultMaxTokens(maxTokens int) Option {
	return func(opts *Options) {
		opts.DefaultMaxTokens = maxTokens
	}
}

// WithBaseURL overrides the Gemini API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(opts *Options) {
		opts.BaseURL = baseURL
	}
}

// WithHTTPClient allows setting a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}
