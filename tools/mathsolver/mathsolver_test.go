package mathsolver_test

import (
	"context"
	"testing"

	"github.com/effective-security/toolrouter/tools"
	"github.com/effective-security/toolrouter/tools/mathsolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tcases := []struct {
		expr string
		exp  string
	}{
		{"2+2", "4"},
		{"2 * (3 + 4)", "14"},
		{"10 / 4", "2.5"},
		{"sqrt(16)", "4"},
		{"pow(2, 10)", "1024"},
		{"round(2.6)", "3"},
		{"max(1, 5, 3)", "5"},
		{"abs(-7)", "7"},
		{"pi", "3.141592653589793"},
		{"calculate 3*3?", "9"},
		{"What is 6 - 10", "-4"},
		{"2 > 1", "true"},
	}
	for _, tc := range tcases {
		t.Run(tc.expr, func(t *testing.T) {
			v, err := mathsolver.Evaluate(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, v)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	for _, e := range []string{"", "calc", "2 +", "1/0", "unknown(1)", `"text"`} {
		_, err := mathsolver.Evaluate(e)
		assert.Error(t, err, e)
	}

	_, err := mathsolver.Evaluate("  ?")
	assert.EqualError(t, err, "empty expression")
}

func TestEvaluate_IntegerOverflow(t *testing.T) {
	for _, e := range []string{
		"9223372036854775807 + 1",
		"-9223372036854775807 - 2",
		"4611686018427387904 * 2",
		"(9223372036854775807 + 1) % 7",
	} {
		v, err := mathsolver.Evaluate(e)
		require.Error(t, err, "%s returned %s", e, v)
		assert.Contains(t, err.Error(), "integer overflow")
	}

	v, err := mathsolver.Evaluate("9223372036854775806 + 1")
	require.NoError(t, err)
	assert.Equal(t, "9223372036854775807", v)

	v, err = mathsolver.Evaluate("-9223372036854775807 - 1")
	require.NoError(t, err)
	assert.Equal(t, "-9223372036854775808", v)

	v, err = mathsolver.Evaluate("17 % 5 * 3")
	require.NoError(t, err)
	assert.Equal(t, "6", v)

	res, err := mathsolver.New().Invoke(context.Background(), tools.Arguments{"expression": "9223372036854775807 + 1"})
	require.NoError(t, err)
	assert.False(t, res.IsSuccess())
	assert.Equal(t, "Math Error: integer overflow: result does not fit in 64 bits", res.Message)
}

func TestLatex(t *testing.T) {
	tcases := []struct {
		expr string
		exp  string
	}{
		{"2+2", "2 + 2"},
		{"2 * (3 + 4)", `2 \cdot \left(3 + 4\right)`},
		{"10 / 4", `\frac{10}{4}`},
		{"sqrt(16) * pi", `\sqrt{16} \cdot \pi`},
		{"pow(2, 10)", "2^{10}"},
		{"abs(-7)", `\left|-7\right|`},
		{"sin(x) + log10(100)", `\sin\left(x\right) + \log_{10}\left(100\right)`},
		{"6 - (1 - 2)", `6 - \left(1 - 2\right)`},
		{"calculate 7 % 3?", `7 \bmod 3`},
		{"2 +", "2 +"},
	}
	for _, tc := range tcases {
		t.Run(tc.expr, func(t *testing.T) {
			assert.Equal(t, tc.exp, mathsolver.Latex(tc.expr))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "2+2", mathsolver.Normalize(" Calculate 2+2 = "))
	assert.Equal(t, "sqrt(9)", mathsolver.Normalize("compute sqrt(9)?"))
	assert.Equal(t, "1.5*2", mathsolver.Normalize("1.5*2."))
}

func TestTool(t *testing.T) {
	ctx := context.Background()
	tool := mathsolver.New()
	assert.Equal(t, "math", tool.Name())
	assert.NotEmpty(t, tool.Description())
	assert.Equal(t, []string{"expression"}, tool.Parameters().Required)

	res, err := tool.Invoke(ctx, tools.Arguments{"expression": "2+2"})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, "Calculation Result: 4", res.Text())
	calc := res.Payload.(*mathsolver.Calculation)
	assert.Equal(t, "2+2", calc.Expression)
	assert.Equal(t, "4", calc.Result)
	assert.Equal(t, "2 + 2", calc.Latex)

	res, err = tool.Invoke(ctx, tools.Arguments{"expression": "2 +"})
	require.NoError(t, err)
	assert.False(t, res.IsSuccess())
	assert.Contains(t, res.Message, "Math Error: ")

	res, err = tool.Invoke(ctx, tools.Arguments{})
	require.NoError(t, err)
	assert.Equal(t, "Math Error: expression is required", res.Message)
}
