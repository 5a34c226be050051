package llms

// CallOption configures a single GenerateContent call
type CallOption func(*CallOptions)

// CallOptions of a call, providers ignore what they do not support
type CallOptions struct {
	// Model overrides the model of the provider
	Model     string
	MaxTokens int
	// Temperature is nil for the provider default
	Temperature *float64
	StopWords   []string
	TopP        float64
	// Seed is honoured by OpenAI compatible providers only
	Seed int
}

// NewCallOptions returns the options with opts applied
func NewCallOptions(opts ...CallOption) *CallOptions {
	o := new(CallOptions)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithModel overrides the model
func WithModel(model string) CallOption {
	return func(o *CallOptions) { o.Model = model }
}

// WithMaxTokens limits the size of the response
func WithMaxTokens(n int) CallOption {
	return func(o *CallOptions) { o.MaxTokens = n }
}

// WithTemperature sets the sampling temperature, 0 for the most deterministic output
func WithTemperature(t float64) CallOption {
	return func(o *CallOptions) { o.Temperature = &t }
}

// WithStopWords stops the generation on any of the words
func WithStopWords(words []string) CallOption {
	return func(o *CallOptions) { o.StopWords = words }
}

// WithTopP sets nucleus sampling
func WithTopP(p float64) CallOption {
	return func(o *CallOptions) { o.TopP = p }
}

// WithSeed requests deterministic sampling
func WithSeed(seed int) CallOption {
	return func(o *CallOptions) { o.Seed = seed }
}
