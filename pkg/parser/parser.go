// Package parser compiles XPath expressions into the token-and-repeat form
// evaluated by pkg/evaluator.
//
// The compiler runs in two passes over the source:
//   - Lexer: tokenizes the input with context-sensitive disambiguation of
//     identifiers (name test vs node type vs function name vs operator
//     keyword).
//   - Reparser: validates the token stream against the operator-precedence
//     grammar and annotates every left-most token of a repeating production
//     with the repeating levels, so evaluation needs no grammar recursion.
//
// Both passes report structural problems as coded [types.Error] values
// carrying the byte offset and offending token.
package parser

import (
	"github.com/yangml/yangpath/pkg/types"
)

// defaultMaxDepth bounds expression nesting (parens, brackets, function
// arguments). Grammar levels multiply this, so the call stack stays shallow.
const defaultMaxDepth = 512

// Parse compiles an XPath expression.
//
// The returned Expression is immutable and safe for concurrent use; compile
// once, evaluate many times.
//
// Example:
//
//	expr, err := parser.Parse("../interface[name = 'eth0']/enabled")
func Parse(query string) (*types.Expression, error) {
	return Compile(query)
}

// Compile compiles an XPath expression with options.
func Compile(query string, opts ...CompileOption) (*types.Expression, error) {
	options := CompileOptions{MaxDepth: defaultMaxDepth}
	for _, opt := range opts {
		opt(&options)
	}

	tokens, err := Tokenize(query)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, types.NewError(types.ErrUnexpectedEnd, "empty expression", 0)
	}

	exp := types.NewExpression(query, tokens)
	r := &reparser{exp: exp, maxDepth: options.MaxDepth}
	if err := r.reparse(); err != nil {
		return nil, err
	}
	return exp, nil
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits expression nesting depth to prevent stack overflow.
	MaxDepth int
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}
