// Package yangpath evaluates XPath 1.0 path expressions over YANG
// instance-data and schema trees.
//
// YANG (RFC 7950) uses XPath for its "when", "must", leafref and
// instance-identifier statements. This package implements the subset those
// statements need, on YANG's data model rather than an XML document:
//   - Compiled expressions: tokens plus precedence annotations, no AST
//   - Value evaluation over instance data, with document-order node-sets
//   - Schema analysis (Atomize) returning the schema nodes an expression
//     can reference, without any instance data
//   - The YANG function extensions: deref, derived-from,
//     derived-from-or-self, bit-is-set, enum-value, re-match, current
//   - "when" dependency tracking with a retry signal for constraints that
//     cannot be decided yet
//
// # Quick Start
//
//	// Compile once, evaluate many times
//	expr, err := yangpath.Compile("../interface[name = 'eth0']/enabled")
//	set, err := eval.Eval(ctx, expr, node)
//
//	// One-shot evaluation
//	set, err := yangpath.Eval("count(address) > 1", node,
//	    yangpath.WithModule(mod),
//	)
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/yangml/yangpath/pkg/parser
//   - Evaluator: github.com/yangml/yangpath/pkg/evaluator
//   - Trees: github.com/yangml/yangpath/pkg/tree
//   - Types: github.com/yangml/yangpath/pkg/types
package yangpath

import (
	"context"
	"fmt"
	"time"

	"github.com/yangml/yangpath/pkg/evaluator"
	"github.com/yangml/yangpath/pkg/parser"
	"github.com/yangml/yangpath/pkg/tree"
	"github.com/yangml/yangpath/pkg/types"
)

// Version returns the current version of yangpath.
func Version() string {
	return "v0.1.0-dev"
}

// Re-exported option constructors, so one-shot callers only import this
// package.
var (
	WithModule  = evaluator.WithModule
	WithMode    = evaluator.WithMode
	WithScope   = evaluator.WithScope
	WithCaching = evaluator.WithCaching
	WithTimeout = evaluator.WithTimeout
	WithLogger  = evaluator.WithLogger
)

// Compile compiles an XPath expression for repeated evaluation.
//
// The compiled expression can be evaluated multiple times against different
// trees. It is safe for concurrent use.
//
// Example:
//
//	expr, err := yangpath.Compile("../type = 'optical'")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	set, _ := eval.Eval(ctx, expr, node)
func Compile(expr string, opts ...parser.CompileOption) (*types.Expression, error) {
	return parser.Compile(expr, opts...)
}

// Eval is a convenience function that compiles and evaluates an expression
// in a single call, with ctxNode as the context node.
//
// For repeated evaluations of the same expression, use Compile and an
// Evaluator instead.
func Eval(expr string, ctxNode *tree.DataNode, opts ...evaluator.EvalOption) (*evaluator.Set, error) {
	compiled, err := Compile(expr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	eval := evaluator.New(opts...)
	return eval.Eval(ctx, compiled, ctxNode)
}

// EvalWithContext evaluates an expression with a custom context.
func EvalWithContext(ctx context.Context, expr string, ctxNode *tree.DataNode, opts ...evaluator.EvalOption) (*evaluator.Set, error) {
	compiled, err := Compile(expr)
	if err != nil {
		return nil, err
	}

	eval := evaluator.New(opts...)
	return eval.Eval(ctx, compiled, ctxNode)
}

// Atomize compiles and analyzes an expression against the schema tree with
// ctxSNode as the context, returning the schema nodes it can reference.
func Atomize(expr string, ctxSNode *tree.SchemaNode, opts ...evaluator.EvalOption) (*evaluator.Set, error) {
	compiled, err := Compile(expr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	eval := evaluator.New(opts...)
	return eval.Atomize(ctx, compiled, ctxSNode)
}

// MustCompile is like Compile but panics if the expression cannot be
// compiled. It simplifies safe initialization of global variables.
func MustCompile(expr string) *types.Expression {
	compiled, err := Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("yangpath: Compile(%q): %v", expr, err))
	}
	return compiled
}
