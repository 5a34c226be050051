// Package mathsolver implements the math tool: evaluation of arithmetic
// expressions with the common elementary functions.
package mathsolver

import (
	"context"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/pkg/schema"
	"github.com/effective-security/toolrouter/tools"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/invopop/jsonschema"
)

// Request is the tool input
type Request struct {
	Expression string `json:"expression" yaml:"expression" jsonschema:"title=Expression,description=Arithmetic expression to evaluate,example=sqrt(16) + 2*3"`
}

// Calculation is the tool payload
type Calculation struct {
	Expression string `json:"expression" yaml:"expression"`
	Result     string `json:"result" yaml:"result"`
	Latex      string `json:"latex" yaml:"latex"`
}

func (c *Calculation) String() string {
	return "Calculation Result: " + c.Result
}

// abs, ceil, floor, round, min and max are expr builtins
var env = map[string]any{
	"pi":    math.Pi,
	"e":     math.E,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sqrt":  math.Sqrt,
	"exp":   math.Exp,
	"ln":    math.Log,
	"log":   math.Log,
	"log10": math.Log10,
	"pow":   math.Pow,
}

var prefixes = []string{"calculate", "compute", "calc", "what is", "evaluate"}

// Tool evaluates arithmetic expressions
type Tool struct {
	params *jsonschema.Schema
}

var _ tools.Tool = (*Tool)(nil)

// New returns the math tool
func New() *Tool {
	return &Tool{
		params: schema.MustNew(reflect.TypeOf(Request{})).Parameters,
	}
}

func (t *Tool) Name() string {
	return tools.MathTool
}

func (t *Tool) Description() string {
	return "Evaluates arithmetic expressions, for example 2+2 or sqrt(16)*pi; supports sin cos tan sqrt exp ln log10 pow abs floor ceil round min max."
}

func (t *Tool) Parameters() *jsonschema.Schema {
	return t.params
}

// Invoke evaluates args[expression]
func (t *Tool) Invoke(_ context.Context, args tools.Arguments) (*tools.Result, error) {
	expression, err := args.Require(tools.ArgExpression)
	if err != nil {
		return tools.Failure("Math Error: " + err.Error()), nil
	}

	value, err := Evaluate(expression)
	if err != nil {
		return tools.Failure("Math Error: " + err.Error()), nil
	}
	return tools.Success(&Calculation{
		Expression: expression,
		Result:     value,
		Latex:      Latex(expression),
	}), nil
}

// Normalize removes the verbs and punctuation that commonly surround an expression
func Normalize(expression string) string {
	s := strings.TrimSpace(strings.ToLower(expression))
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(s, p); ok {
			s = strings.TrimSpace(rest)
			break
		}
	}
	s = strings.TrimRight(s, "?=. ")
	return strings.TrimSpace(s)
}

// Evaluate returns the formatted value of the expression
func Evaluate(expression string) (string, error) {
	normalized := Normalize(expression)
	if normalized == "" {
		return "", errors.New("empty expression")
	}

	program, err := expr.Compile(normalized, expr.Env(env))
	if err != nil {
		return "", errors.New(firstLine(err.Error()))
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return "", errors.New(firstLine(err.Error()))
	}
	if n, ok := out.(int); ok && overflows(normalized, n) {
		return "", errors.New("integer overflow: result does not fit in 64 bits")
	}
	return format(out)
}

// floatEnv evaluates the same expression with every integer promoted to float64
var floatEnv = func() map[string]any {
	m := map[string]any{"mod": math.Mod}
	for k, v := range env {
		m[k] = v
	}
	return m
}()

// promoteIntegers rewrites integer literals to floats, and % to mod()
type promoteIntegers struct{}

func (promoteIntegers) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IntegerNode:
		ast.Patch(node, &ast.FloatNode{Value: float64(n.Value)})
	case *ast.BinaryNode:
		if n.Operator == "%" {
			ast.Patch(node, &ast.CallNode{
				Callee:    &ast.IdentifierNode{Value: "mod"},
				Arguments: []ast.Node{n.Left, n.Right},
			})
		}
	}
}

// overflows reports whether the int64 result n wrapped around, by comparing
// it with the float64 evaluation of the expression.
func overflows(expression string, n int) bool {
	program, err := expr.Compile(expression, expr.Env(floatEnv), expr.Patch(promoteIntegers{}))
	if err != nil {
		return false
	}
	out, err := expr.Run(program, floatEnv)
	if err != nil {
		return false
	}
	f, ok := out.(float64)
	if !ok || math.IsNaN(f) {
		return false
	}
	if math.IsInf(f, 0) {
		return true
	}
	return math.Abs(float64(n)-f) > 1e-6*math.Max(1, math.Abs(f))
}

func format(v any) (string, error) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", errors.Errorf("result is not a finite number: %v", n)
		}
		if math.Abs(n) < 1e21 {
			return strconv.FormatFloat(n, 'f', -1, 64), nil
		}
		return strconv.FormatFloat(n, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(n), nil
	default:
		return "", errors.Errorf("expression did not produce a number: %v", v)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
