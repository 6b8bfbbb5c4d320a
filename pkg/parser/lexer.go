package parser

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/yangml/yangpath/pkg/types"
)

const eof = -1

// Lexer converts an XPath expression into a token stream.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string        // Input string being scanned
	length  int           // Length of input string
	start   int           // Start position of current token
	current int           // Current position in input
	width   int           // Width of last rune read
	tokens  []types.Token // Emitted tokens
	err     error         // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Tokenize scans the whole input and returns the token stream.
//
// Two classes of token require context to classify:
//
//   - an identifier followed by "(" is reclassified, when the "(" is seen,
//     as a node type (exactly "node", "text" or "comment") or a function name;
//   - an identifier that spells "or", "and", "div" or "mod", and "*", are
//     operators only when the previous token can end an operand, otherwise
//     they are name tests.
func Tokenize(input string) ([]types.Token, error) {
	l := NewLexer(input)
	for l.next() {
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.tokens, nil
}

// next scans one token. It returns false at end of input or on error.
func (l *Lexer) next() bool {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return false
	}

	switch ch {
	case '(':
		// An identifier directly before "(" is a node type or function name.
		l.reclassifyName()
		l.emit(types.TokenParenOpen)
	case ')':
		l.emit(types.TokenParenClose)
	case '[':
		l.emit(types.TokenBracketOpen)
	case ']':
		l.emit(types.TokenBracketClose)
	case '@':
		l.emit(types.TokenAt)
	case ',':
		l.emit(types.TokenComma)
	case '|':
		l.emit(types.TokenOperatorUnion)
	case '+', '-':
		l.emit(types.TokenOperatorMath)
	case '=':
		l.emit(types.TokenOperatorEqual)
	case '!':
		if !l.acceptRune('=') {
			return l.errorf(types.ErrInvalidChar, "invalid character '!'")
		}
		l.emit(types.TokenOperatorNEqual)
	case '<', '>':
		l.acceptRune('=')
		l.emit(types.TokenOperatorComp)
	case '/':
		if l.acceptRune('/') {
			l.emit(types.TokenOperatorRecPath)
		} else {
			l.emit(types.TokenOperatorPath)
		}
	case '.':
		if isDigit(l.peekRune()) {
			l.backup()
			return l.scanNumber()
		}
		if l.acceptRune('.') {
			l.emit(types.TokenDotDot)
		} else {
			l.emit(types.TokenDot)
		}
	case '\'', '"':
		return l.scanLiteral(ch)
	case '*':
		// "*" is multiplication after an operand, a wildcard name test
		// otherwise.
		if l.prevEndsOperand() {
			l.emit(types.TokenOperatorMath)
		} else {
			l.emit(types.TokenNameTest)
		}
	default:
		if isDigit(ch) {
			l.backup()
			return l.scanNumber()
		}
		if isNameStartChar(ch) {
			l.backup()
			return l.scanName()
		}
		return l.errorf(types.ErrInvalidChar, "invalid character %q", ch)
	}
	return true
}

// scanLiteral reads a quoted literal. The opening quote has been consumed.
func (l *Lexer) scanLiteral(quote rune) bool {
	l.ignore()
	for {
		switch l.nextRune() {
		case quote:
			l.backup()
			l.emit(types.TokenLiteral)
			l.acceptRune(quote)
			l.ignore()
			return true
		case eof:
			return l.errorf(types.ErrLiteralNotClosed, "unterminated string literal")
		}
	}
}

// scanNumber reads an integer or decimal number. No exponent notation.
func (l *Lexer) scanNumber() bool {
	l.acceptAll(isDigit)
	if l.acceptRune('.') {
		l.acceptAll(isDigit)
	}
	l.emit(types.TokenNumber)
	return true
}

// scanName reads an NCName-based token: a name test (optionally prefixed,
// with "prefix:*" wildcard support) or an operator keyword.
func (l *Lexer) scanName() bool {
	l.acceptAll(isNameChar)

	// Operator keywords are recognized only in operator position.
	if l.prevEndsOperand() {
		switch l.input[l.start:l.current] {
		case "or", "and":
			l.emit(types.TokenOperatorLog)
			return true
		case "div", "mod":
			l.emit(types.TokenOperatorMath)
			return true
		}
	}

	// Optional ":name" or ":*" suffix for prefixed name tests.
	if l.acceptRune(':') {
		if !l.acceptRune('*') && !l.acceptAll(isNameChar) {
			return l.errorf(types.ErrInvalidChar, "missing name after prefix")
		}
	}

	l.emit(types.TokenNameTest)
	return true
}

// reclassifyName turns the previously emitted name test, if it directly
// precedes the "(" being scanned, into a node type or function name token.
func (l *Lexer) reclassifyName() {
	if len(l.tokens) == 0 {
		return
	}
	prev := &l.tokens[len(l.tokens)-1]
	if prev.Type != types.TokenNameTest {
		return
	}
	switch l.input[prev.Position : prev.Position+prev.Length] {
	case "node", "text", "comment":
		prev.Type = types.TokenNodeType
	default:
		prev.Type = types.TokenFunctionName
	}
}

// prevEndsOperand reports whether the previously emitted token can be the
// last token of an operand. At the start of the expression, and after an
// operator, "(", "[" or ",", the answer is no.
func (l *Lexer) prevEndsOperand() bool {
	if len(l.tokens) == 0 {
		return false
	}
	switch l.tokens[len(l.tokens)-1].Type {
	case types.TokenParenClose, types.TokenBracketClose, types.TokenDot,
		types.TokenDotDot, types.TokenNameTest, types.TokenNumber,
		types.TokenLiteral:
		return true
	default:
		return false
	}
}

// Helper methods

func (l *Lexer) emit(tt types.TokenType) {
	l.tokens = append(l.tokens, types.Token{
		Type:     tt,
		Position: l.start,
		Length:   l.current - l.start,
	})
	l.width = 0
	l.start = l.current
}

func (l *Lexer) errorf(code types.ErrorCode, format string, args ...any) bool {
	l.err = types.NewError(code, fmt.Sprintf(format, args...), l.start)
	return false
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) peekRune() rune {
	r := l.nextRune()
	if r != eof {
		l.backup()
	}
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
	l.width = 0
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameStartChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return isNameStartChar(r) || r == '-' || r == '.' || isDigit(r)
}
