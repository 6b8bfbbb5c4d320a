package types

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenNone TokenType = iota
	TokenError

	// Grouping symbols
	TokenParenOpen    // (
	TokenParenClose   // )
	TokenBracketOpen  // [
	TokenBracketClose // ]

	// Basic symbols
	TokenDot    // .
	TokenDotDot // ..
	TokenAt     // @
	TokenComma  // ,

	// Names
	TokenNameTest     // name, prefix:name, *, prefix:*
	TokenNodeType     // node, text, comment (followed by "(")
	TokenFunctionName // any other identifier followed by "("

	// Operators
	TokenOperatorLog     // and, or
	TokenOperatorEqual   // =
	TokenOperatorNEqual  // !=
	TokenOperatorComp    // <, <=, >, >=
	TokenOperatorMath    // +, -, *, div, mod
	TokenOperatorUnion   // |
	TokenOperatorPath    // /
	TokenOperatorRecPath // //

	// Literals
	TokenLiteral // 'string' or "string"
	TokenNumber  // 123, 3.14
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenNone:
		return "(none)"
	case TokenError:
		return "(error)"
	case TokenParenOpen:
		return "("
	case TokenParenClose:
		return ")"
	case TokenBracketOpen:
		return "["
	case TokenBracketClose:
		return "]"
	case TokenDot:
		return "."
	case TokenDotDot:
		return ".."
	case TokenAt:
		return "@"
	case TokenComma:
		return ","
	case TokenNameTest:
		return "(name test)"
	case TokenNodeType:
		return "(node type)"
	case TokenFunctionName:
		return "(function name)"
	case TokenOperatorLog:
		return "(logic operator)"
	case TokenOperatorEqual:
		return "="
	case TokenOperatorNEqual:
		return "!="
	case TokenOperatorComp:
		return "(comparison operator)"
	case TokenOperatorMath:
		return "(math operator)"
	case TokenOperatorUnion:
		return "|"
	case TokenOperatorPath:
		return "/"
	case TokenOperatorRecPath:
		return "//"
	case TokenLiteral:
		return "(literal)"
	case TokenNumber:
		return "(number)"
	default:
		return "(unknown)"
	}
}

// Token represents a lexical token in an XPath expression.
// The token value is a slice of the expression source, addressed
// by byte offset and length.
type Token struct {
	Type     TokenType // Type of the token
	Position int       // Starting byte offset in the source
	Length   int       // Length of the token in bytes
}
