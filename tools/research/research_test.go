package research_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/mocks/mockreasoning"
	"github.com/effective-security/toolrouter/reasoning"
	"github.com/effective-security/toolrouter/tools"
	"github.com/effective-security/toolrouter/tools/research"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type retrieverFunc func(ctx context.Context, query string) ([]string, error)

func (f retrieverFunc) Retrieve(ctx context.Context, query string) ([]string, error) {
	return f(ctx, query)
}

func TestTool_Describe(t *testing.T) {
	tool := research.New(nil, nil)
	assert.Equal(t, "research", tool.Name())
	assert.NotEmpty(t, tool.Description())

	params := tool.Parameters()
	require.NotNil(t, params)
	assert.Equal(t, []string{"query"}, params.Required)
}

func TestTool_Invoke(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query", func(t *testing.T) {
		res, err := research.New(nil, nil).Invoke(ctx, tools.Arguments{})
		require.NoError(t, err)
		assert.False(t, res.IsSuccess())
		assert.Equal(t, "query is required", res.Message)
	})

	t.Run("not configured", func(t *testing.T) {
		res, err := research.New(nil, nil).Invoke(ctx, tools.Arguments{"query": "Apple"})
		require.NoError(t, err)
		assert.False(t, res.IsSuccess())
		assert.Equal(t, "reasoning collaborator is not configured", res.Message)
	})

	t.Run("model answer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c := mockreasoning.NewMockCollaborator(ctrl)
		c.EXPECT().Complete(gomock.Any(), gomock.Any(), "Who founded Apple?").
			DoAndReturn(func(_ context.Context, system, _ string) (string, error) {
				assert.Contains(t, system, "You are an Enterprise Research Assistant.")
				assert.NotContains(t, system, "context documents")
				return "Steve Jobs and Steve Wozniak", nil
			})

		res, err := research.New(c, nil).Invoke(ctx, tools.Arguments{"query": "Who founded Apple?"})
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
		assert.Equal(t, "Steve Jobs and Steve Wozniak", res.Text())

		answer, ok := res.Payload.(*research.Answer)
		require.True(t, ok)
		assert.Equal(t, research.SourceModel, answer.Source)
		assert.Empty(t, answer.References)
	})

	t.Run("knowledge base", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c := mockreasoning.NewMockCollaborator(ctrl)
		c.EXPECT().Complete(gomock.Any(), gomock.Any(), "Apple revenue").
			DoAndReturn(func(_ context.Context, system, _ string) (string, error) {
				assert.Contains(t, system, "context documents")
				assert.Contains(t, system, "[1] doc one")
				assert.Contains(t, system, "[2] doc two")
				return "About 390B USD", nil
			})

		r := retrieverFunc(func(_ context.Context, query string) ([]string, error) {
			assert.Equal(t, "Apple revenue", query)
			return []string{"doc one", "doc two"}, nil
		})

		res, err := research.New(c, r).Invoke(ctx, tools.Arguments{"query": "Apple revenue"})
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
		answer := res.Payload.(*research.Answer)
		assert.Equal(t, research.SourceKnowledgeBase, answer.Source)
		assert.Equal(t, []string{"doc one", "doc two"}, answer.References)
	})

	t.Run("retriever failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c := mockreasoning.NewMockCollaborator(ctrl)
		c.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return("answer", nil)

		r := retrieverFunc(func(context.Context, string) ([]string, error) {
			return nil, errors.New("search is down")
		})
		res, err := research.New(c, r).Invoke(ctx, tools.Arguments{"query": "q"})
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
		assert.Equal(t, research.SourceModel, res.Payload.(*research.Answer).Source)
	})

	t.Run("collaborator failures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c := mockreasoning.NewMockCollaborator(ctrl)
		gomock.InOrder(
			c.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return("", reasoning.ErrTimeout),
			c.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("connection refused")),
		)
		tool := research.New(c, nil)

		res, err := tool.Invoke(ctx, tools.Arguments{"query": "q"})
		require.NoError(t, err)
		assert.Equal(t, "reasoning collaborator timed out", res.Message)

		_, err = tool.Invoke(ctx, tools.Arguments{"query": "q"})
		assert.EqualError(t, err, "connection refused")
	})
}
