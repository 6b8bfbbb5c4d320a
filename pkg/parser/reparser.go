package parser

import (
	"fmt"

	"github.com/yangml/yangpath/pkg/types"
)

// reparser validates the token stream against the XPath operator-precedence
// grammar and annotates repetition points.
//
// It walks the tokens exactly once. At every point where a production of the
// precedence chain (Or > And > Equality > Relational > Additive >
// Multiplicative > Unary > Union > Path) repeats, it appends the repeating
// level to the repeat list of the production's left-most token. The
// evaluator later loops according to those counts instead of re-deriving
// the grammar.
//
// The cursor is a plain integer field; every reparse method advances it and
// returns an error on structural violations.
type reparser struct {
	exp      *types.Expression
	pos      int
	depth    int
	maxDepth int
}

// reparse validates the whole expression and fills in repeat annotations.
func (r *reparser) reparse() error {
	if err := r.reparseOrExpr(); err != nil {
		return err
	}
	if r.pos < r.exp.TokenCount() {
		return r.errUnexpectedToken()
	}
	return nil
}

// OrExpr := AndExpr ( 'or' AndExpr )*
func (r *reparser) reparseOrExpr() error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.leave()

	prev := r.pos
	if err := r.reparseAndExpr(); err != nil {
		return err
	}
	for r.curIsKeyword(types.TokenOperatorLog, "or") {
		r.exp.PushRepeat(prev, types.ExprOr)
		r.pos++
		if err := r.reparseAndExpr(); err != nil {
			return err
		}
	}
	return nil
}

// AndExpr := EqualityExpr ( 'and' EqualityExpr )*
func (r *reparser) reparseAndExpr() error {
	prev := r.pos
	if err := r.reparseEqualityExpr(); err != nil {
		return err
	}
	for r.curIsKeyword(types.TokenOperatorLog, "and") {
		r.exp.PushRepeat(prev, types.ExprAnd)
		r.pos++
		if err := r.reparseEqualityExpr(); err != nil {
			return err
		}
	}
	return nil
}

// EqualityExpr := RelationalExpr ( ('='|'!=') RelationalExpr )*
func (r *reparser) reparseEqualityExpr() error {
	prev := r.pos
	if err := r.reparseRelationalExpr(); err != nil {
		return err
	}
	for r.curIs(types.TokenOperatorEqual) || r.curIs(types.TokenOperatorNEqual) {
		r.exp.PushRepeat(prev, types.ExprEquality)
		r.pos++
		if err := r.reparseRelationalExpr(); err != nil {
			return err
		}
	}
	return nil
}

// RelationalExpr := AdditiveExpr ( ('<'|'>'|'<='|'>=') AdditiveExpr )*
func (r *reparser) reparseRelationalExpr() error {
	prev := r.pos
	if err := r.reparseAdditiveExpr(); err != nil {
		return err
	}
	for r.curIs(types.TokenOperatorComp) {
		r.exp.PushRepeat(prev, types.ExprRelational)
		r.pos++
		if err := r.reparseAdditiveExpr(); err != nil {
			return err
		}
	}
	return nil
}

// AdditiveExpr := MultiplicativeExpr ( ('+'|'-') MultiplicativeExpr )*
func (r *reparser) reparseAdditiveExpr() error {
	prev := r.pos
	if err := r.reparseMultiplicativeExpr(); err != nil {
		return err
	}
	for r.curIsKeyword(types.TokenOperatorMath, "+") || r.curIsKeyword(types.TokenOperatorMath, "-") {
		r.exp.PushRepeat(prev, types.ExprAdditive)
		r.pos++
		if err := r.reparseMultiplicativeExpr(); err != nil {
			return err
		}
	}
	return nil
}

// MultiplicativeExpr := UnaryExpr ( ('*'|'div'|'mod') UnaryExpr )*
func (r *reparser) reparseMultiplicativeExpr() error {
	prev := r.pos
	if err := r.reparseUnaryExpr(); err != nil {
		return err
	}
	for r.curIsKeyword(types.TokenOperatorMath, "*") ||
		r.curIsKeyword(types.TokenOperatorMath, "div") ||
		r.curIsKeyword(types.TokenOperatorMath, "mod") {
		r.exp.PushRepeat(prev, types.ExprMultiplicative)
		r.pos++
		if err := r.reparseUnaryExpr(); err != nil {
			return err
		}
	}
	return nil
}

// UnaryExpr := UnionExpr | '-' UnaryExpr
//
// One repeat entry is pushed at the first '-' token per leading minus, so
// the evaluator knows how many negations to fold.
func (r *reparser) reparseUnaryExpr() error {
	prev := r.pos
	for r.curIsKeyword(types.TokenOperatorMath, "-") {
		r.exp.PushRepeat(prev, types.ExprUnary)
		r.pos++
	}
	return r.reparseUnionExpr()
}

// UnionExpr := PathExpr ( '|' PathExpr )*
func (r *reparser) reparseUnionExpr() error {
	prev := r.pos
	if err := r.reparsePathExpr(); err != nil {
		return err
	}
	for r.curIs(types.TokenOperatorUnion) {
		r.exp.PushRepeat(prev, types.ExprUnion)
		r.pos++
		if err := r.reparsePathExpr(); err != nil {
			return err
		}
	}
	return nil
}

// PathExpr := LocationPath
//           | FilterExpr ( ('/'|'//') RelativeLocationPath )?
//
// FilterExpr := PrimaryExpr Predicate*
func (r *reparser) reparsePathExpr() error {
	if r.pos >= r.exp.TokenCount() {
		return r.errUnexpectedEnd()
	}

	switch r.exp.Token(r.pos).Type {
	case types.TokenParenOpen:
		r.pos++
		if err := r.reparseOrExpr(); err != nil {
			return err
		}
		if err := r.expect(types.TokenParenClose); err != nil {
			return err
		}
		return r.reparseFilterTail()

	case types.TokenDot, types.TokenDotDot, types.TokenAt,
		types.TokenNameTest, types.TokenNodeType:
		return r.reparseRelativeLocationPath()

	case types.TokenOperatorPath:
		// Absolute path: '/' alone selects the root.
		r.pos++
		if r.pos >= r.exp.TokenCount() || !r.curStartsStep() {
			return nil
		}
		return r.reparseRelativeLocationPath()

	case types.TokenOperatorRecPath:
		r.pos++
		return r.reparseRelativeLocationPath()

	case types.TokenFunctionName:
		if err := r.reparseFunctionCall(); err != nil {
			return err
		}
		return r.reparseFilterTail()

	case types.TokenLiteral, types.TokenNumber:
		r.pos++
		return r.reparseFilterTail()

	default:
		return r.errUnexpectedToken()
	}
}

// reparseFilterTail handles the predicates and the optional path
// continuation that may follow a primary expression.
func (r *reparser) reparseFilterTail() error {
	for r.curIs(types.TokenBracketOpen) {
		if err := r.reparsePredicate(); err != nil {
			return err
		}
	}
	if r.curIs(types.TokenOperatorPath) || r.curIs(types.TokenOperatorRecPath) {
		r.pos++
		return r.reparseRelativeLocationPath()
	}
	return nil
}

// RelativeLocationPath := Step ( ('/'|'//') Step )*
//
// Step := '.' | '..' | '@' NameTest | NameTest | NodeType '(' ')' ,
// each followed by any number of predicates.
func (r *reparser) reparseRelativeLocationPath() error {
	for {
		if r.pos >= r.exp.TokenCount() {
			return r.errUnexpectedEnd()
		}

		switch r.exp.Token(r.pos).Type {
		case types.TokenDot, types.TokenDotDot:
			r.pos++
		case types.TokenAt:
			r.pos++
			if r.pos >= r.exp.TokenCount() {
				return r.errUnexpectedEnd()
			}
			if !r.curIs(types.TokenNameTest) {
				return r.errExpected(types.TokenNameTest)
			}
			r.pos++
		case types.TokenNameTest:
			r.pos++
		case types.TokenNodeType:
			r.pos++
			if err := r.expect(types.TokenParenOpen); err != nil {
				return err
			}
			if err := r.expect(types.TokenParenClose); err != nil {
				return err
			}
		default:
			return r.errUnexpectedToken()
		}

		for r.curIs(types.TokenBracketOpen) {
			if err := r.reparsePredicate(); err != nil {
				return err
			}
		}

		if !r.curIs(types.TokenOperatorPath) && !r.curIs(types.TokenOperatorRecPath) {
			return nil
		}
		r.pos++
	}
}

// Predicate := '[' Expr ']'
func (r *reparser) reparsePredicate() error {
	if err := r.expect(types.TokenBracketOpen); err != nil {
		return err
	}
	if err := r.reparseOrExpr(); err != nil {
		return err
	}
	return r.expect(types.TokenBracketClose)
}

// FunctionCall := FunctionName '(' ( Expr ( ',' Expr )* )? ')'
//
// The argument count is checked against the fixed arity table; violations
// name the function token and its position.
func (r *reparser) reparseFunctionCall() error {
	fnTok := r.pos
	name := r.exp.TokenValue(fnTok)
	min, max, ok := FunctionArity(name)
	if !ok {
		return types.NewError(types.ErrUnknownFunction,
			fmt.Sprintf("unknown function %q", name),
			r.exp.Token(fnTok).Position).WithToken(name)
	}
	r.pos++

	if err := r.expect(types.TokenParenOpen); err != nil {
		return err
	}

	argc := 0
	if !r.curIs(types.TokenParenClose) {
		if err := r.reparseOrExpr(); err != nil {
			return err
		}
		argc = 1
		for r.curIs(types.TokenComma) {
			r.pos++
			if err := r.reparseOrExpr(); err != nil {
				return err
			}
			argc++
		}
	}

	if err := r.expect(types.TokenParenClose); err != nil {
		return err
	}

	if argc < min || (max >= 0 && argc > max) {
		return types.NewError(types.ErrArgumentCount,
			fmt.Sprintf("function %q called with %d arguments, expected %s",
				name, argc, arityString(min, max)),
			r.exp.Token(fnTok).Position).WithToken(name)
	}
	return nil
}

func arityString(min, max int) string {
	switch {
	case max < 0:
		return fmt.Sprintf("at least %d", min)
	case min == max:
		return fmt.Sprintf("%d", min)
	default:
		return fmt.Sprintf("%d to %d", min, max)
	}
}

// Cursor helpers

func (r *reparser) curIs(tt types.TokenType) bool {
	return r.pos < r.exp.TokenCount() && r.exp.Token(r.pos).Type == tt
}

func (r *reparser) curIsKeyword(tt types.TokenType, value string) bool {
	return r.curIs(tt) && r.exp.TokenValue(r.pos) == value
}

// curStartsStep reports whether the current token can start a location step.
func (r *reparser) curStartsStep() bool {
	switch r.exp.Token(r.pos).Type {
	case types.TokenDot, types.TokenDotDot, types.TokenAt,
		types.TokenNameTest, types.TokenNodeType:
		return true
	default:
		return false
	}
}

func (r *reparser) expect(tt types.TokenType) error {
	if r.pos >= r.exp.TokenCount() {
		return r.errUnexpectedEnd()
	}
	if r.exp.Token(r.pos).Type != tt {
		return r.errExpected(tt)
	}
	r.pos++
	return nil
}

func (r *reparser) errUnexpectedEnd() error {
	return types.NewError(types.ErrUnexpectedEnd,
		"unexpected end of expression", len(r.exp.Source()))
}

func (r *reparser) errUnexpectedToken() error {
	tok := r.exp.Token(r.pos)
	return types.NewError(types.ErrUnexpectedToken,
		fmt.Sprintf("unexpected token %s", tok.Type),
		tok.Position).WithToken(r.exp.TokenValue(r.pos))
}

func (r *reparser) errExpected(tt types.TokenType) error {
	tok := r.exp.Token(r.pos)
	return types.NewError(types.ErrExpectedToken,
		fmt.Sprintf("expected %s, found %s", tt, tok.Type),
		tok.Position).WithToken(r.exp.TokenValue(r.pos))
}

// enter/leave bound the recursion depth of nested expressions.

func (r *reparser) enter() error {
	r.depth++
	if r.maxDepth > 0 && r.depth > r.maxDepth {
		pos := len(r.exp.Source())
		if r.pos < r.exp.TokenCount() {
			pos = r.exp.Token(r.pos).Position
		}
		return types.NewError(types.ErrUnexpectedToken,
			fmt.Sprintf("expression exceeds maximum nesting depth %d", r.maxDepth), pos)
	}
	return nil
}

func (r *reparser) leave() {
	r.depth--
}
