package reasoning_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/mocks/mockllms"
	"github.com/effective-security/toolrouter/pkg/llms"
	"github.com/effective-security/toolrouter/reasoning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestComplete(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mockllms.NewMockModel(ctrl)
	model.EXPECT().GetName().Return("gpt-4o-mini").AnyTimes()

	model.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
			require.Len(t, messages, 2)
			assert.Equal(t, llms.RoleSystem, messages[0].Role)
			assert.Equal(t, "be precise", messages[0].GetContent())
			assert.Equal(t, llms.RoleHuman, messages[1].Role)
			assert.Equal(t, "what is go", messages[1].GetContent())

			opts := llms.NewCallOptions(options...)
			require.NotNil(t, opts.Temperature)
			assert.Equal(t, 0.7, *opts.Temperature)
			assert.Equal(t, 128, opts.MaxTokens)

			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)

			return &llms.ContentResponse{
				Choices: []*llms.ContentChoice{
					{
						Content: " Go is a language. ",
						GenerationInfo: map[string]any{
							"InputTokens":  int64(5),
							"OutputTokens": int64(4),
							"TotalTokens":  int64(9),
						},
					},
				},
			}, nil
		})

	c := reasoning.New(model,
		reasoning.WithAgent("research"),
		reasoning.WithTemperature(0.7),
		reasoning.WithMaxTokens(128),
		reasoning.WithTimeout(time.Second),
	)
	assert.True(t, reasoning.IsConfigured(c))

	text, err := c.Complete(context.Background(), "be precise", "what is go")
	require.NoError(t, err)
	assert.Equal(t, "Go is a language.", text)
}

func TestComplete_NoSystem(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mockllms.NewMockModel(ctrl)
	model.EXPECT().GetName().Return("m").AnyTimes()
	model.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
			require.Len(t, messages, 1)
			opts := llms.NewCallOptions(options...)
			require.NotNil(t, opts.Temperature)
			assert.Zero(t, *opts.Temperature)
			assert.Zero(t, opts.MaxTokens)
			return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "ok"}}}, nil
		})

	text, err := reasoning.New(model).Complete(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestComplete_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		var m *reasoning.Model
		_, err := m.Complete(ctx, "s", "u")
		assert.True(t, errors.Is(err, reasoning.ErrNotConfigured))

		_, err = reasoning.New(nil).Complete(ctx, "s", "u")
		assert.True(t, errors.Is(err, reasoning.ErrNotConfigured))
		assert.False(t, reasoning.IsConfigured(reasoning.New(nil)))
		assert.False(t, reasoning.IsConfigured(nil))
		assert.True(t, reasoning.IsConfigured(reasoning.CompleteFunc(func(context.Context, string, string) (string, error) {
			return "", nil
		})))
	})

	t.Run("empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		model := mockllms.NewMockModel(ctrl)
		model.EXPECT().GetName().Return("m").AnyTimes()
		model.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "  "}}}, nil)

		_, err := reasoning.New(model).Complete(ctx, "s", "u")
		assert.True(t, errors.Is(err, reasoning.ErrEmptyResponse))
	})

	t.Run("failed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		model := mockllms.NewMockModel(ctrl)
		model.EXPECT().GetName().Return("m").AnyTimes()
		model.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("401 unauthorized"))

		_, err := reasoning.New(model, reasoning.WithAgent("planner")).Complete(ctx, "s", "u")
		require.Error(t, err)
		assert.EqualError(t, err, "planner: model m failed: 401 unauthorized")
		assert.False(t, errors.Is(err, reasoning.ErrTimeout))
	})

	t.Run("timeout", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		model := mockllms.NewMockModel(ctrl)
		model.EXPECT().GetName().Return("m").AnyTimes()
		model.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})

		_, err := reasoning.New(model, reasoning.WithTimeout(10*time.Millisecond)).Complete(ctx, "s", "u")
		require.Error(t, err)
		assert.True(t, errors.Is(err, reasoning.ErrTimeout))
	})
}

func TestCompleteFunc(t *testing.T) {
	var c reasoning.Collaborator = reasoning.CompleteFunc(func(_ context.Context, system, user string) (string, error) {
		return system + "|" + user, nil
	})
	text, err := c.Complete(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a|b", text)
}
