package auditview_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/audit"
	"github.com/effective-security/toolrouter/mocks/mockaudit"
	"github.com/effective-security/toolrouter/tools"
	"github.com/effective-security/toolrouter/tools/auditview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestTool(t *testing.T) {
	ctx := context.Background()
	sink := audit.NewMemorySink(0)
	for i := 1; i <= 7; i++ {
		require.NoError(t, sink.Append(ctx, audit.NewRecord("s1", "math", fmt.Sprintf("in%d", i), "", "success")))
	}

	tool := auditview.New(sink)
	assert.Equal(t, "audit", tool.Name())
	assert.NotEmpty(t, tool.Description())
	assert.Empty(t, tool.Parameters().Required)

	res, err := tool.Invoke(ctx, tools.Arguments{})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, "Logs found: 5", res.Text())
	logs := res.Payload.(auditview.Logs)
	assert.Equal(t, "in7", logs[0].Input)

	res, err = tool.Invoke(ctx, tools.Arguments{"action": "VIEW", "limit": "2"})
	require.NoError(t, err)
	assert.Equal(t, "Logs found: 2", res.Text())

	res, err = tool.Invoke(ctx, tools.Arguments{"action": "delete"})
	require.NoError(t, err)
	assert.False(t, res.IsSuccess())
	assert.Equal(t, "unsupported action: delete", res.Message)

	res, err = tool.Invoke(ctx, tools.Arguments{"limit": "ten"})
	require.NoError(t, err)
	assert.Equal(t, "limit must be an integer: ten", res.Message)
}

func TestTool_QueryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mockaudit.NewMockSink(ctrl)
	sink.EXPECT().QueryRecent(gomock.Any(), 5).Return(nil, errors.New("db locked"))

	_, err := auditview.New(sink).Invoke(context.Background(), tools.Arguments{"action": "view"})
	assert.EqualError(t, err, "db locked")
}
