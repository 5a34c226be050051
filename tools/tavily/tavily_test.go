package tavily_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/effective-security/toolrouter/tools/tavily"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Retriever(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req tavilyModels.SearchRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		assert.NoError(t, err)

		assert.Equal(t, "What is capital of France", req.Query)

		resp := map[string]any{
			"results": []map[string]any{
				{"title": "Test Result", "url": "https://example.com", "content": "Test content", "score": 0.9},
				{"title": "Second", "url": "https://example.org", "content": "More content", "score": 0.5},
			},
		}
		if req.IncludeAnswer {
			resp["answer"] = "Paris"
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	ctx := context.Background()

	r, err := tavily.New("testkey")
	require.NoError(t, err)
	r.WithBaseURL(server.URL).WithHTTPClient(server.Client()).WithMaxDocuments(1)

	_, err = r.Retrieve(ctx, " ")
	assert.EqualError(t, err, "invalid request: empty query")

	docs, err := r.Retrieve(ctx, "What is capital of France")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "ANSWER: Paris", docs[0])
	assert.Equal(t, "TITLE: Test Result\nURL: https://example.com\nCONTENT: Test content", docs[1])
}

func Test_RetrieverErrors(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	_, err := tavily.New("")
	assert.EqualError(t, err, "TAVILY_API_KEY is not set")

	t.Setenv("TAVILY_API_KEY", "fromenv")
	_, err = tavily.New("")
	require.NoError(t, err)

	r, err := tavily.New("key")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Retrieve(ctx, "query")
	assert.EqualError(t, err, "search cancelled: context canceled")
}
