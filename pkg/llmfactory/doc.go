// Package llmfactory provides configuration and lookup of the language models
// used by the planner and the research tool, supporting multiple providers
// (OpenAI, Azure, Perplexity, Anthropic, Google AI, Bedrock).
package llmfactory
