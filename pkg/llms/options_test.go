package llms_test

import (
	"testing"

	"github.com/effective-security/toolrouter/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	opts := llms.NewCallOptions(
		llms.WithModel("test"),
		llms.WithMaxTokens(100),
		llms.WithTemperature(0.5),
		llms.WithStopWords([]string{"stop"}),
		llms.WithTopP(0.5),
		llms.WithSeed(123),
	)

	assert.Equal(t, "test", opts.Model)
	assert.Equal(t, 100, opts.MaxTokens)
	require.NotNil(t, opts.Temperature)
	assert.Equal(t, 0.5, *opts.Temperature)
	assert.Equal(t, []string{"stop"}, opts.StopWords)
	assert.Equal(t, 0.5, opts.TopP)
	assert.Equal(t, 123, opts.Seed)

	assert.Nil(t, llms.NewCallOptions().Temperature)
}
