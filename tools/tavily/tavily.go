// Package tavily provides a web search knowledge source for the research tool.
package tavily

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	tavilygo "github.com/diverged/tavily-go"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/effective-security/x/values"
)

// DefaultTimeout bounds a single search request
const DefaultTimeout = 30 * time.Second

// Retriever searches the web for documents relevant to a research query
type Retriever struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxDocs    int
}

// New returns a retriever for the API key,
// TAVILY_API_KEY environment variable is used when apiKey is empty.
func New(apiKey string) (*Retriever, error) {
	apiKey = values.StringsCoalesce(apiKey, os.Getenv("TAVILY_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("TAVILY_API_KEY is not set")
	}
	return &Retriever{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		maxDocs:    5,
	}, nil
}

// WithBaseURL overrides the API endpoint
func (t *Retriever) WithBaseURL(baseURL string) *Retriever {
	t.baseURL = baseURL
	return t
}

// WithHTTPClient overrides the HTTP client
func (t *Retriever) WithHTTPClient(client *http.Client) *Retriever {
	t.httpClient = client
	return t
}

// WithMaxDocuments limits the number of search results returned as documents
func (t *Retriever) WithMaxDocuments(n int) *Retriever {
	if n > 0 {
		t.maxDocs = n
	}
	return t
}

// Retrieve returns the aggregated answer, if any, followed by the search results
func (t *Retriever) Retrieve(ctx context.Context, query string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("invalid request: empty query")
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "search cancelled")
	}

	client := tavilygo.NewClient(t.apiKey)
	if t.baseURL != "" {
		client.BaseURL = t.baseURL
	}
	if t.httpClient != nil {
		client.HTTPClient = t.httpClient
	}

	searchReq := tavilyModels.SearchRequest{
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
	}

	type searchResult struct {
		docs []string
		err  error
	}
	// the client does not accept a context
	done := make(chan searchResult, 1)
	go func() {
		resp, err := tavilygo.Search(client, searchReq)
		if err != nil {
			done <- searchResult{err: err}
			return
		}

		var docs []string
		if resp.Answer != "" {
			docs = append(docs, "ANSWER: "+resp.Answer)
		}
		for i, r := range resp.Results {
			if i >= t.maxDocs {
				break
			}
			docs = append(docs, fmt.Sprintf("TITLE: %s\nURL: %s\nCONTENT: %s", r.Title, r.URL, r.Content))
		}
		done <- searchResult{docs: docs}
	}()

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "search cancelled")
	case res := <-done:
		if res.err != nil {
			return nil, errors.Wrap(res.err, "failed to perform search")
		}
		return res.docs, nil
	}
}
