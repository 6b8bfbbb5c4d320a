// Package types defines the core type system shared by the yangpath
// parser and evaluator.
//
// This package contains type definitions for:
//   - Expression: compiled XPath expressions (tokens + repeat annotations)
//   - Token: lexical tokens with source positions
//   - ExprType: the operator-precedence levels of the grammar
//   - Error types: structured errors with codes
package types

// ExprType identifies one level of the XPath operator-precedence grammar.
//
// The numeric order matters: outer levels have smaller values. The reparser
// records, per token, which levels begin repeating there; the evaluator
// selects the outermost unconsumed level by comparing these values.
type ExprType uint8

const (
	ExprNone ExprType = iota
	ExprOr
	ExprAnd
	ExprEquality
	ExprRelational
	ExprAdditive
	ExprMultiplicative
	ExprUnary
	ExprUnion
)

// String returns the grammar production name of the level.
func (et ExprType) String() string {
	switch et {
	case ExprOr:
		return "OrExpr"
	case ExprAnd:
		return "AndExpr"
	case ExprEquality:
		return "EqualityExpr"
	case ExprRelational:
		return "RelationalExpr"
	case ExprAdditive:
		return "AdditiveExpr"
	case ExprMultiplicative:
		return "MultiplicativeExpr"
	case ExprUnary:
		return "UnaryExpr"
	case ExprUnion:
		return "UnionExpr"
	default:
		return "Expr"
	}
}

// Expression represents a compiled XPath expression.
//
// An Expression holds the original source, the token array produced by the
// lexer and, for every token that starts a repeating production, the list of
// precedence levels repeating there. It is immutable once built and safe for
// concurrent use by multiple goroutines; the evaluator walks it with its own
// cursor and never modifies it.
type Expression struct {
	source string
	tokens []Token
	repeat [][]ExprType
}

// NewExpression creates an Expression from a token stream.
// The repeat annotations are added afterwards by the reparser.
func NewExpression(source string, tokens []Token) *Expression {
	return &Expression{
		source: source,
		tokens: tokens,
		repeat: make([][]ExprType, len(tokens)),
	}
}

// Source returns the original source of the expression.
func (e *Expression) Source() string {
	return e.source
}

// TokenCount returns the number of tokens in the expression.
func (e *Expression) TokenCount() int {
	return len(e.tokens)
}

// Token returns the token at index i.
func (e *Expression) Token(i int) Token {
	return e.tokens[i]
}

// TokenValue returns the source text of the token at index i.
func (e *Expression) TokenValue(i int) string {
	t := e.tokens[i]
	return e.source[t.Position : t.Position+t.Length]
}

// Repeat returns the repeat list of the token at index i. Entries run from
// the innermost repeating level to the outermost, so a consumer looking for
// the outermost level still inside a given one scans from the back.
func (e *Expression) Repeat(i int) []ExprType {
	return e.repeat[i]
}

// PushRepeat records one more repetition of level et starting at token i.
// Called by the reparser only; an Expression must not be modified once it is
// shared.
func (e *Expression) PushRepeat(i int, et ExprType) {
	e.repeat[i] = append(e.repeat[i], et)
}

// String returns the expression source.
func (e *Expression) String() string {
	return e.source
}
