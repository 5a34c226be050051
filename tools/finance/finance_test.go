package finance_test

import (
	"context"
	"testing"

	"github.com/effective-security/toolrouter/tools"
	"github.com/effective-security/toolrouter/tools/finance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTool(t *testing.T) {
	ctx := context.Background()
	tool := finance.New(42)
	assert.Equal(t, "finance", tool.Name())
	assert.NotEmpty(t, tool.Description())
	assert.Equal(t, []string{"ticker"}, tool.Parameters().Required)

	res, err := tool.Invoke(ctx, tools.Arguments{"ticker": " aapl "})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, "AAPL: 175.50 USD", res.Text())

	res, err = tool.Invoke(ctx, tools.Arguments{"ticker": "GOOGL"})
	require.NoError(t, err)
	q := res.Payload.(*finance.Quote)
	assert.Equal(t, 140.20, q.Price)
	assert.Empty(t, q.Note)

	res, err = tool.Invoke(ctx, tools.Arguments{})
	require.NoError(t, err)
	assert.False(t, res.IsSuccess())
	assert.Equal(t, "ticker is required", res.Message)
}

func TestTool_Simulated(t *testing.T) {
	ctx := context.Background()
	tool := finance.New(7)

	for i := 0; i < 20; i++ {
		res, err := tool.Invoke(ctx, tools.Arguments{"ticker": "msft"})
		require.NoError(t, err)
		q := res.Payload.(*finance.Quote)
		assert.Equal(t, "MSFT", q.Ticker)
		assert.Equal(t, "USD", q.Currency)
		assert.Equal(t, finance.SimulatedNote, q.Note)
		assert.GreaterOrEqual(t, q.Price, finance.MinSimulatedPrice)
		assert.LessOrEqual(t, q.Price, finance.MaxSimulatedPrice)
		assert.Contains(t, res.Text(), "MSFT: ")
		assert.Contains(t, res.Text(), " USD (Simulated Data)")
	}

	// same seed, same sequence
	a := finance.New(99).Quote("PRICE")
	b := finance.New(99).Quote("PRICE")
	assert.Equal(t, a.Price, b.Price)
}
