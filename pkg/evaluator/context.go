package evaluator

import (
	"context"
	"strings"

	"github.com/yangml/yangpath/pkg/tree"
	"github.com/yangml/yangpath/pkg/types"
)

// Mode selects the context restriction of an evaluation.
type Mode uint8

const (
	// ModePlain is an unrestricted query.
	ModePlain Mode = iota
	// ModeWhen evaluates a "when" constraint: the root is restricted to
	// configuration when the declaring node is configuration, and crossing
	// a node with a pending "when" yields the retry signal.
	ModeWhen
	// ModeMust evaluates a "must" constraint: same root restriction as
	// ModeWhen, no retry semantics.
	ModeMust
)

// Scope selects RPC input/output visibility.
type Scope uint8

const (
	// ScopeAll makes both RPC input and output subtrees visible.
	ScopeAll Scope = iota
	// ScopeInput hides RPC/action output subtrees.
	ScopeInput
	// ScopeOutput hides RPC/action input subtrees.
	ScopeOutput
)

// evaluation is the per-call state of one expression walk: the token
// cursor, the context node, the root restriction, and the predicate
// position/size bindings. It lives for exactly one Eval or Atomize call.
type evaluation struct {
	ctx context.Context
	e   *Evaluator
	exp *types.Expression
	pos int // token cursor

	mode   Mode
	scope  Scope
	schema bool // schema analysis (Atomize) instead of value evaluation
	curMod *tree.Module

	// Data evaluation context.
	ctxNode  *tree.DataNode
	rootKind NodeKind
	order    *docOrder

	// Original, un-stepped context entry (for current()) and the current
	// context entry (updated per predicate iteration, read by the no-arg
	// string/number/name functions).
	origNode *tree.DataNode
	origKind NodeKind
	cnode    NodeEntry

	// Schema analysis context: the original context schema node (for
	// current()) and the current one, updated per schema predicate.
	// A nil csnode stands for the schema root.
	ctxSNode *tree.SchemaNode
	csnode   *tree.SchemaNode

	// position()/last() bindings of the nearest enclosing predicate.
	// Zero means "no predicate context" (position() = last() = 1).
	cpos, csize int
}

// tokenErr builds a type error pointing at the current token.
func (ev *evaluation) tokenErr(code types.ErrorCode, msg string) error {
	pos := len(ev.exp.Source())
	token := ""
	if ev.pos < ev.exp.TokenCount() {
		pos = ev.exp.Token(ev.pos).Position
		token = ev.exp.TokenValue(ev.pos)
	}
	return types.NewError(code, msg, pos).WithToken(token)
}

// checkCancel surfaces context cancellation between dispatch steps.
func (ev *evaluation) checkCancel() error {
	select {
	case <-ev.ctx.Done():
		return ev.ctx.Err()
	default:
		return nil
	}
}

// warnArgType emits the non-fatal schema-analysis diagnostic for an
// argument whose declared type cannot satisfy the consuming function. The
// computed schema-node-set is not affected.
func (ev *evaluation) warnArgType(fn, expected string, arg *Set) {
	ev.e.logger.Warn("function argument type mismatch",
		"function", fn,
		"expected", expected,
		"actual", arg.Type.String(),
		"expr", ev.exp.Source())
}

// nameTest is a parsed name test: an optional module qualifier (wildcard
// when Module is nil and WildModule is set) and a name or wildcard.
type nameTest struct {
	Module     *tree.Module
	Name       string
	WildModule bool
	WildName   bool
}

// parseNameTest resolves the name-test token value against the current
// module's import table. An unprefixed name matches any module; an
// unresolvable prefix is a hard error.
func (ev *evaluation) parseNameTest(value string, position int) (nameTest, error) {
	if value == "*" {
		return nameTest{WildModule: true, WildName: true}, nil
	}
	if i := strings.IndexByte(value, ':'); i >= 0 {
		prefix, name := value[:i], value[i+1:]
		var mod *tree.Module
		if ev.curMod != nil {
			mod = ev.curMod.ResolvePrefix(prefix)
		}
		if mod == nil {
			return nameTest{}, types.NewError(types.ErrUnknownPrefix,
				"unknown module prefix "+prefix, position).WithToken(value)
		}
		if name == "*" {
			return nameTest{Module: mod, WildName: true}, nil
		}
		return nameTest{Module: mod, Name: name}, nil
	}
	return nameTest{WildModule: true, Name: value}, nil
}

// matches reports whether the qualified name (mod, name) satisfies the test.
func (t *nameTest) matches(mod *tree.Module, name string) bool {
	if !t.WildModule && t.Module != mod {
		return false
	}
	return t.WildName || t.Name == name
}
