package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/effective-security/toolrouter/pkg/llms"
	"github.com/effective-security/toolrouter/pkg/llms/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionResponse = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [
		{
			"index": 0,
			"message": {"role": "assistant", "content": "[{\"tool\":\"math\",\"args\":{\"expression\":\"2+2\"}}]"},
			"finish_reason": "stop"
		}
	],
	"usage": {"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20}
}`

func Test_GenerateContent(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer fakekey", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionResponse))
	}))
	defer server.Close()

	llm, err := openai.New(
		openai.WithToken("fakekey"),
		openai.WithBaseURL(server.URL),
		openai.WithModel("gpt-4o-mini"),
		openai.WithMaxRetries(0),
	)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", llm.GetName())
	assert.Equal(t, llms.ProviderOpenAI, llm.GetProviderType())

	resp, err := llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "plan the request"),
		llms.MessageFromTextParts(llms.RoleHuman, "solve 2+2 and then research it"),
	}, llms.WithTemperature(0), llms.WithMaxTokens(256))
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, `[{"tool":"math","args":{"expression":"2+2"}}]`, resp.Choices[0].Content)
	assert.Equal(t, "stop", resp.Choices[0].StopReason)
	assert.EqualValues(t, 12, resp.Choices[0].GenerationInfo["InputTokens"])
	assert.EqualValues(t, 20, resp.Choices[0].GenerationInfo["TotalTokens"])

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 0, got["temperature"])
	assert.EqualValues(t, 256, got["max_completion_tokens"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func Test_GenerateContentError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	llm, err := openai.New(
		openai.WithToken("fakekey"),
		openai.WithBaseURL(server.URL),
		openai.WithMaxRetries(0),
	)
	require.NoError(t, err)
	assert.Equal(t, openai.DefaultChatModel, llm.GetName())

	_, err = llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "hello"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai: chat completion failed")
}

func Test_New(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := openai.New()
	assert.ErrorIs(t, err, openai.ErrMissingToken)

	_, err = openai.New(openai.WithToken("key"), openai.WithAPIType(openai.APITypeAzure))
	assert.EqualError(t, err, "openai: base URL is required for Azure")

	llm, err := openai.New(
		openai.WithToken("key"),
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithBaseURL("https://example.openai.azure.com"),
		openai.WithModel("gpt-4o"),
	)
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderAzure, llm.GetProviderType())

	llm, err = openai.New(openai.WithToken("key"), openai.WithAPIType(openai.APITypePerplexity))
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderPerplexity, llm.GetProviderType())
}
