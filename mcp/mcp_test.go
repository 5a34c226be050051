package mcp_test

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/config"
	"github.com/effective-security/toolrouter/encoding"
	"github.com/effective-security/toolrouter/mcp"
	"github.com/effective-security/toolrouter/orchestrator"
	"github.com/effective-security/toolrouter/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatcher struct {
	entry     string
	args      tools.Arguments
	sessionID string
	err       error
}

func (d *dispatcher) Dispatch(_ context.Context, entry string, args tools.Arguments, sessionID string) (string, error) {
	d.entry = entry
	d.args = args
	d.sessionID = sessionID
	if d.err != nil {
		return "", d.err
	}
	return "ok: " + entry, nil
}

func TestArguments(t *testing.T) {
	args := mcp.Arguments(map[string]any{
		"ticker": "AAPL",
		"limit":  float64(5),
		"flag":   true,
		"empty":  nil,
		"list":   []any{"a", "b"},
	})
	assert.Equal(t, tools.Arguments{
		"ticker": "AAPL",
		"limit":  "5",
		"flag":   "true",
		"list":   `["a","b"]`,
	}, args)
}

func TestClient_Dispatcher(t *testing.T) {
	ctx := context.Background()
	d := &dispatcher{}

	c, err := mcp.NewInProcess(ctx, mcp.NewServer(d, "test"), "test")
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, mcp.ServerName, c.Server)
	assert.ElementsMatch(t, []string{"orchestrator_main", "research_agent", "math_agent", "audit_tool", "finance_agent"}, c.Tools)

	text, err := c.Call(ctx, orchestrator.EntryFinance, map[string]string{"ticker": "MSFT"}, "s1")
	require.NoError(t, err)
	assert.Equal(t, "ok: finance_agent", text)
	assert.Equal(t, orchestrator.EntryFinance, d.entry)
	assert.Equal(t, tools.Arguments{"ticker": "MSFT"}, d.args)
	assert.Equal(t, "s1", d.sessionID)

	d.err = errors.New("unknown entry point: finance_agent")
	_, err = c.Call(ctx, orchestrator.EntryFinance, nil, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, mcp.ErrToolFailed))
	assert.False(t, errors.Is(err, mcp.ErrTransport))
	assert.Contains(t, err.Error(), "unknown entry point: finance_agent")
	assert.Empty(t, d.sessionID)
}

func TestClient_Service(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	ctx := context.Background()

	cfg := config.Default()
	cfg.Output.Format = encoding.FormatText
	b := orchestrator.NewBuilder(cfg)
	b.Seed = 7
	svc, err := b.Build(ctx)
	require.NoError(t, err)
	defer svc.Close()

	c, err := mcp.NewInProcess(ctx, mcp.NewServer(svc, "test"), "test")
	require.NoError(t, err)
	defer c.Close()

	tcases := []struct {
		entry string
		args  map[string]string
		exp   string
	}{
		{orchestrator.EntryMath, map[string]string{"expression": "sqrt(16) + 2*3"}, "Calculation Result: 10"},
		{orchestrator.EntryFinance, map[string]string{"ticker": "AAPL"}, "AAPL: 175.50 USD"},
		{orchestrator.EntryResearch, map[string]string{"query": "what is MCP"}, "Research Error: "},
		{orchestrator.EntryAudit, map[string]string{"action": "view"}, "Logs found: 3"},
	}
	for _, tc := range tcases {
		t.Run(tc.entry, func(t *testing.T) {
			text, err := c.Call(ctx, tc.entry, tc.args, "mcp")
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(text, tc.exp), text)
		})
	}

	records, err := svc.Recorder().QueryRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 4)
	for _, r := range records {
		assert.Equal(t, "mcp", r.SessionID)
	}
}
