package mathsolver

import (
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var latexFuncs = map[string]string{
	"sin":   `\sin`,
	"cos":   `\cos`,
	"tan":   `\tan`,
	"asin":  `\arcsin`,
	"acos":  `\arccos`,
	"atan":  `\arctan`,
	"exp":   `\exp`,
	"ln":    `\ln`,
	"log":   `\log`,
	"log10": `\log_{10}`,
	"min":   `\min`,
	"max":   `\max`,
}

var latexOps = map[string]string{
	"*":   ` \cdot `,
	"%":   ` \bmod `,
	"<=":  ` \leq `,
	">=":  ` \geq `,
	"!=":  ` \neq `,
	"==":  ` = `,
	"&&":  ` \land `,
	"and": ` \land `,
	"||":  ` \lor `,
	"or":  ` \lor `,
}

// Latex renders the expression as LaTeX.
// The normalized expression is returned as is when it cannot be parsed.
func Latex(expression string) string {
	normalized := Normalize(expression)
	tree, err := parser.Parse(normalized)
	if err != nil {
		return normalized
	}
	return latex(tree.Node)
}

func latex(node ast.Node) string {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return strconv.Itoa(n.Value)
	case *ast.FloatNode:
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	case *ast.BoolNode:
		return `\text{` + strconv.FormatBool(n.Value) + `}`
	case *ast.IdentifierNode:
		if n.Value == "pi" {
			return `\pi`
		}
		return n.Value
	case *ast.UnaryNode:
		if n.Operator == "!" || n.Operator == "not" {
			return `\neg ` + latex(n.Node)
		}
		return n.Operator + group(n.Node)
	case *ast.BinaryNode:
		return latexBinary(n)
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			return latexCall(id.Value, n.Arguments)
		}
	case *ast.BuiltinNode:
		return latexCall(n.Name, n.Arguments)
	}
	return node.String()
}

func latexBinary(n *ast.BinaryNode) string {
	switch n.Operator {
	case "/":
		return `\frac{` + latex(n.Left) + `}{` + latex(n.Right) + `}`
	case "**", "^":
		return power(n.Left, n.Right)
	case "+":
		return latex(n.Left) + " + " + latex(n.Right)
	case "-":
		return latex(n.Left) + " - " + group(n.Right)
	}
	op, ok := latexOps[n.Operator]
	if !ok {
		op = " " + n.Operator + " "
	}
	if n.Operator == "*" || n.Operator == "%" {
		return group(n.Left) + op + group(n.Right)
	}
	return latex(n.Left) + op + latex(n.Right)
}

func latexCall(name string, args []ast.Node) string {
	switch {
	case name == "sqrt" && len(args) == 1:
		return `\sqrt{` + latex(args[0]) + `}`
	case name == "abs" && len(args) == 1:
		return `\left|` + latex(args[0]) + `\right|`
	case name == "floor" && len(args) == 1:
		return `\lfloor ` + latex(args[0]) + ` \rfloor`
	case name == "ceil" && len(args) == 1:
		return `\lceil ` + latex(args[0]) + ` \rceil`
	case name == "pow" && len(args) == 2:
		return power(args[0], args[1])
	}

	fn, ok := latexFuncs[name]
	if !ok {
		fn = `\operatorname{` + name + `}`
	}
	list := make([]string, len(args))
	for i, a := range args {
		list[i] = latex(a)
	}
	return fn + `\left(` + strings.Join(list, ", ") + `\right)`
}

func power(base, exp ast.Node) string {
	return group(base) + `^{` + latex(exp) + `}`
}

// group wraps compound operands in parentheses
func group(node ast.Node) string {
	switch n := node.(type) {
	case *ast.BinaryNode:
		if n.Operator != "/" {
			return `\left(` + latex(n) + `\right)`
		}
	case *ast.UnaryNode:
		return `\left(` + latex(n) + `\right)`
	}
	return latex(node)
}
