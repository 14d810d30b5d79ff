package xsd

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// AssertionEvaluator re-evaluates a captured XPathExpression against one
// instance node. XSD 1.1 assertions and type alternative tests are XPath
// 2.0 boolean expressions; this package carries no XPath engine of its own
// (§9, a deliberate Non-goal), so evaluation is delegated entirely to an
// injected implementation. ExprAssertionEvaluator below is the non-normative
// default: it treats the captured expression text as an expr-lang program
// over a small variable surface, not real XPath. Swap in a real XPath 2.0
// engine for conformant assertion support.
type AssertionEvaluator interface {
	Eval(x XPathExpression, vars map[string]any) (bool, error)
}

// ExprAssertionEvaluator adapts github.com/expr-lang/expr as a stand-in
// XPath evaluator. It compiles once per distinct expression text and caches
// the program, matching the teacher's general preference for precompiling
// rule expressions rather than re-parsing per call.
type ExprAssertionEvaluator struct {
	programs map[string]*vm.Program
}

func NewExprAssertionEvaluator() *ExprAssertionEvaluator {
	return &ExprAssertionEvaluator{programs: map[string]*vm.Program{}}
}

func (e *ExprAssertionEvaluator) Eval(x XPathExpression, vars map[string]any) (bool, error) {
	prog, ok := e.programs[x.Expression]
	if !ok {
		var err error
		prog, err = expr.Compile(x.Expression, expr.Env(vars), expr.AsBool())
		if err != nil {
			return false, fmt.Errorf("xsd: assertion %q failed to compile: %w", x.Expression, err)
		}
		e.programs[x.Expression] = prog
	}
	out, err := expr.Run(prog, vars)
	if err != nil {
		return false, fmt.Errorf("xsd: assertion %q failed to evaluate: %w", x.Expression, err)
	}
	b, _ := out.(bool)
	return b, nil
}
