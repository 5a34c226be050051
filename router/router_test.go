package router_test

import (
	"testing"

	"github.com/effective-security/toolrouter/router"
	"github.com/effective-security/toolrouter/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func single(t *testing.T, out router.Outcome) tools.Call {
	t.Helper()
	s, ok := out.(router.SingleTool)
	require.True(t, ok, "expected SingleTool, got %T", out)
	return s.Call
}

func TestClassify(t *testing.T) {
	c := router.New()

	tcases := []struct {
		text string
		tool string
		key  string
		exp  string
	}{
		{"solve 2+2", tools.MathTool, tools.ArgExpression, "2+2"},
		{"Solve 3*4", tools.MathTool, tools.ArgExpression, "3*4"},
		{"calc sqrt(16)", tools.MathTool, tools.ArgExpression, "calc sqrt(16)"},
		{"physics of motion", tools.MathTool, tools.ArgExpression, "physics of motion"},
		{"math homework", tools.MathTool, tools.ArgExpression, "math homework"},
		{"show me the logs", tools.AuditTool, tools.ArgAction, "view"},
		{"History please", tools.AuditTool, tools.ArgAction, "view"},
		{"what is the price of AAPL", tools.FinanceTool, tools.ArgTicker, "AAPL"},
		{"stock GOOGL", tools.FinanceTool, tools.ArgTicker, "GOOGL"},
		{"what is the market price", tools.FinanceTool, tools.ArgTicker, "price"},
		{"Who is the CEO of Apple?", tools.ResearchTool, tools.ArgQuery, "Who is the CEO of Apple?"},
		{"", tools.ResearchTool, tools.ArgQuery, ""},
	}
	for _, tc := range tcases {
		t.Run(tc.text, func(t *testing.T) {
			call := single(t, c.Classify(router.Request{Text: tc.text, SessionID: "s1"}))
			assert.Equal(t, tc.tool, call.Tool)
			assert.Equal(t, tools.Arguments{tc.key: tc.exp}, call.Arguments)
		})
	}
}

// The ticker is the last word of the request, which is not always a ticker.
func TestClassify_NaiveTicker(t *testing.T) {
	c := router.New()

	call := single(t, c.Classify(router.Request{Text: "price of the market today"}))
	assert.Equal(t, tools.FinanceTool, call.Tool)
	assert.Equal(t, "today", call.Arguments[tools.ArgTicker])

	call = single(t, c.Classify(router.Request{Text: "what is the market price"}))
	assert.Equal(t, "price", call.Arguments[tools.ArgTicker])
}

func TestClassify_Order(t *testing.T) {
	c := router.New()

	// compound wins over finance
	out := c.Classify(router.Request{Text: "Research Apple and check its stock price", SessionID: "s2"})
	d, ok := out.(router.Defer)
	require.True(t, ok, "expected Defer, got %T", out)
	assert.Equal(t, "Research Apple and check its stock price", d.Request.Text)
	assert.Equal(t, "s2", d.Request.SessionID)
	assert.Equal(t, router.RouteCompound, out.Route())

	_, ok = c.Classify(router.Request{Text: "look up the market then summarize"}).(router.Defer)
	assert.True(t, ok)

	// math and audit come before compound
	assert.Equal(t, tools.MathTool, single(t, c.Classify(router.Request{Text: "solve 2+2 and 3+3"})).Tool)
	assert.Equal(t, tools.AuditTool, single(t, c.Classify(router.Request{Text: "log and history"})).Tool)

	// math comes before audit
	assert.Equal(t, tools.MathTool, single(t, c.Classify(router.Request{Text: "calc log10(100)"})).Tool)

	// substring match: "candy" contains "and"
	_, ok = c.Classify(router.Request{Text: "candy"}).(router.Defer)
	assert.True(t, ok)
}

func TestClassify_Idempotent(t *testing.T) {
	c := router.New()
	for _, text := range []string{"solve 2+2", "what is the price of AAPL", "who are you", "a and b"} {
		first := c.Classify(router.Request{Text: text, SessionID: "s"})
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, c.Classify(router.Request{Text: text, SessionID: "s"}))
		}
	}
}

func TestClassify_Config(t *testing.T) {
	c := router.NewWithConfig(&router.Config{
		FinanceKeywords: []string{" Ticker ", ""},
		MathKeywords:    []string{"compute"},
	})
	assert.Equal(t, []string{"ticker"}, c.Keywords(tools.FinanceTool))
	assert.Equal(t, router.DefaultAuditKeywords, c.Keywords(tools.AuditTool))
	assert.Nil(t, c.Keywords("unknown"))

	call := single(t, c.Classify(router.Request{Text: "ticker MSFT"}))
	assert.Equal(t, tools.FinanceTool, call.Tool)
	assert.Equal(t, "MSFT", call.Arguments[tools.ArgTicker])

	// default math keywords are replaced
	call = single(t, c.Classify(router.Request{Text: "stock 1+1"}))
	assert.Equal(t, tools.ResearchTool, call.Tool)

	call = single(t, c.Classify(router.Request{Text: "compute 1+1"}))
	assert.Equal(t, tools.MathTool, call.Tool)
}
