package evaluator

import (
	"math"

	"github.com/yangml/yangpath/pkg/tree"
	"github.com/yangml/yangpath/pkg/types"
)

// The dispatcher. It walks the token array with an integer cursor, consuming
// the repeat annotations the reparser recorded: no tree is ever built, the
// precedence structure is replayed from the per-token repeat lists.
//
// Every eval method accepts a nil set, meaning "advance the cursor over this
// production without computing anything". That is how the skipped operand of
// a short-circuited 'or'/'and' is passed over, and how predicates over an
// empty node-set keep the cursor in sync.

// run evaluates the whole expression and returns the result set.
func (ev *evaluation) run() (*Set, error) {
	set := NewSet()
	if err := ev.evalExprSelect(types.ExprNone, set); err != nil {
		return nil, err
	}
	return set, nil
}

// evalExprSelect dispatches on the repeat list of the current token: among
// the levels repeating here that are strictly inside etype, the outermost
// one is selected. The list is ordered innermost first, so the scan stops at
// the first entry not inside etype and takes its predecessor. No applicable
// level means the token starts a plain path expression.
func (ev *evaluation) evalExprSelect(etype types.ExprType, set *Set) error {
	if err := ev.checkCancel(); err != nil {
		return err
	}

	next := types.ExprNone
	count := 0
	if ev.pos < ev.exp.TokenCount() {
		reps := ev.exp.Repeat(ev.pos)
		i := 0
		for i < len(reps) && reps[i] > etype {
			i++
		}
		if i > 0 {
			next = reps[i-1]
			for j := i; j > 0 && reps[j-1] == next; j-- {
				count++
			}
		}
	}

	switch next {
	case types.ExprOr:
		return ev.evalOrExpr(count, set)
	case types.ExprAnd:
		return ev.evalAndExpr(count, set)
	case types.ExprEquality:
		return ev.evalEqualityExpr(count, set)
	case types.ExprRelational:
		return ev.evalRelationalExpr(count, set)
	case types.ExprAdditive:
		return ev.evalAdditiveExpr(count, set)
	case types.ExprMultiplicative:
		return ev.evalMultiplicativeExpr(count, set)
	case types.ExprUnary:
		return ev.evalUnaryExpr(count, set)
	case types.ExprUnion:
		return ev.evalUnionExpr(count, set)
	default:
		return ev.evalPathExpr(set)
	}
}

// foldSchemaOperand folds a finished operand of a scalar-producing operator
// into the schema result: the operand's value is discarded, every schema
// node it atomized is kept, and nothing remains in context because the
// operator's result is not a node-set.
func foldSchemaOperand(set, tmp *Set) {
	if set.Type != SetSchemaNodes {
		set.setSchemaSet()
	}
	if tmp != nil && tmp.Type == SetSchemaNodes {
		set.mergeSNodes(tmp)
	}
	set.clearSNodeCtx()
}

// evalOrExpr evaluates count+1 operands joined by 'or'. Once an operand is
// true the remaining ones are passed over without being computed, but their
// tokens are still consumed.
func (ev *evaluation) evalOrExpr(count int, set *Set) error {
	if err := ev.evalExprSelect(types.ExprOr, set); err != nil {
		return err
	}
	if set != nil && !ev.schema {
		set.setBoolean(set.toBoolean())
	}
	for ; count > 0; count-- {
		ev.pos++ // 'or'
		if set == nil {
			if err := ev.evalExprSelect(types.ExprOr, nil); err != nil {
				return err
			}
			continue
		}
		if ev.schema {
			tmp := NewSet()
			if err := ev.evalExprSelect(types.ExprOr, tmp); err != nil {
				return err
			}
			foldSchemaOperand(set, tmp)
			continue
		}
		if set.Bool {
			if err := ev.evalExprSelect(types.ExprOr, nil); err != nil {
				return err
			}
			continue
		}
		tmp := NewSet()
		if err := ev.evalExprSelect(types.ExprOr, tmp); err != nil {
			return err
		}
		set.setBoolean(tmp.toBoolean())
	}
	return nil
}

// evalAndExpr evaluates count+1 operands joined by 'and', short-circuiting
// on the first false operand.
func (ev *evaluation) evalAndExpr(count int, set *Set) error {
	if err := ev.evalExprSelect(types.ExprAnd, set); err != nil {
		return err
	}
	if set != nil && !ev.schema {
		set.setBoolean(set.toBoolean())
	}
	for ; count > 0; count-- {
		ev.pos++ // 'and'
		if set == nil {
			if err := ev.evalExprSelect(types.ExprAnd, nil); err != nil {
				return err
			}
			continue
		}
		if ev.schema {
			tmp := NewSet()
			if err := ev.evalExprSelect(types.ExprAnd, tmp); err != nil {
				return err
			}
			foldSchemaOperand(set, tmp)
			continue
		}
		if !set.Bool {
			if err := ev.evalExprSelect(types.ExprAnd, nil); err != nil {
				return err
			}
			continue
		}
		tmp := NewSet()
		if err := ev.evalExprSelect(types.ExprAnd, tmp); err != nil {
			return err
		}
		set.setBoolean(tmp.toBoolean())
	}
	return nil
}

func (ev *evaluation) evalEqualityExpr(count int, set *Set) error {
	if err := ev.evalExprSelect(types.ExprEquality, set); err != nil {
		return err
	}
	for ; count > 0; count-- {
		op := "="
		if ev.exp.Token(ev.pos).Type == types.TokenOperatorNEqual {
			op = "!="
		}
		ev.pos++
		if set == nil {
			if err := ev.evalExprSelect(types.ExprEquality, nil); err != nil {
				return err
			}
			continue
		}
		tmp := NewSet()
		if err := ev.evalExprSelect(types.ExprEquality, tmp); err != nil {
			return err
		}
		if ev.schema {
			foldSchemaOperand(set, tmp)
			continue
		}
		set.setBoolean(ev.compareSets(set, op, tmp))
	}
	return nil
}

func (ev *evaluation) evalRelationalExpr(count int, set *Set) error {
	if err := ev.evalExprSelect(types.ExprRelational, set); err != nil {
		return err
	}
	for ; count > 0; count-- {
		op := ev.exp.TokenValue(ev.pos)
		ev.pos++
		if set == nil {
			if err := ev.evalExprSelect(types.ExprRelational, nil); err != nil {
				return err
			}
			continue
		}
		tmp := NewSet()
		if err := ev.evalExprSelect(types.ExprRelational, tmp); err != nil {
			return err
		}
		if ev.schema {
			foldSchemaOperand(set, tmp)
			continue
		}
		set.setBoolean(ev.compareSets(set, op, tmp))
	}
	return nil
}

func (ev *evaluation) evalAdditiveExpr(count int, set *Set) error {
	if err := ev.evalExprSelect(types.ExprAdditive, set); err != nil {
		return err
	}
	for ; count > 0; count-- {
		op := ev.exp.TokenValue(ev.pos)
		ev.pos++
		if set == nil {
			if err := ev.evalExprSelect(types.ExprAdditive, nil); err != nil {
				return err
			}
			continue
		}
		tmp := NewSet()
		if err := ev.evalExprSelect(types.ExprAdditive, tmp); err != nil {
			return err
		}
		if ev.schema {
			foldSchemaOperand(set, tmp)
			continue
		}
		l, r := set.toNumber(ev.order), tmp.toNumber(ev.order)
		if op == "+" {
			set.setNumber(l + r)
		} else {
			set.setNumber(l - r)
		}
	}
	return nil
}

func (ev *evaluation) evalMultiplicativeExpr(count int, set *Set) error {
	if err := ev.evalExprSelect(types.ExprMultiplicative, set); err != nil {
		return err
	}
	for ; count > 0; count-- {
		op := ev.exp.TokenValue(ev.pos)
		ev.pos++
		if set == nil {
			if err := ev.evalExprSelect(types.ExprMultiplicative, nil); err != nil {
				return err
			}
			continue
		}
		tmp := NewSet()
		if err := ev.evalExprSelect(types.ExprMultiplicative, tmp); err != nil {
			return err
		}
		if ev.schema {
			foldSchemaOperand(set, tmp)
			continue
		}
		l, r := set.toNumber(ev.order), tmp.toNumber(ev.order)
		switch op {
		case "*":
			set.setNumber(l * r)
		case "div":
			// IEEE division: x div 0 yields an infinity or NaN.
			set.setNumber(l / r)
		default: // mod
			set.setNumber(math.Mod(l, r))
		}
	}
	return nil
}

// evalUnaryExpr consumes count leading minus tokens and negates the operand
// when their number is odd.
func (ev *evaluation) evalUnaryExpr(count int, set *Set) error {
	ev.pos += count
	if err := ev.evalExprSelect(types.ExprUnary, set); err != nil {
		return err
	}
	if set == nil {
		return nil
	}
	if ev.schema {
		foldSchemaOperand(set, nil)
		return nil
	}
	n := set.toNumber(ev.order)
	if count%2 != 0 {
		n = -n
	}
	set.setNumber(n)
	return nil
}

// evalUnionExpr merges count+1 node-set operands in document order. Schema
// analysis merges schema entries instead; both sides' contexts stay live
// because the union's result is still a node-set.
func (ev *evaluation) evalUnionExpr(count int, set *Set) error {
	if err := ev.evalExprSelect(types.ExprUnion, set); err != nil {
		return err
	}
	for ; count > 0; count-- {
		ev.pos++ // '|'
		if set == nil {
			if err := ev.evalExprSelect(types.ExprUnion, nil); err != nil {
				return err
			}
			continue
		}
		tmp := NewSet()
		if err := ev.evalExprSelect(types.ExprUnion, tmp); err != nil {
			return err
		}
		if ev.schema {
			if set.Type != SetSchemaNodes || tmp.Type != SetSchemaNodes {
				return ev.tokenErr(types.ErrNotNodeSet,
					"union requires node-set operands")
			}
			set.mergeSNodes(tmp)
			continue
		}
		if set.Type != SetNodes || tmp.Type != SetNodes {
			return ev.tokenErr(types.ErrNotNodeSet,
				"union requires node-set operands")
		}
		set.mergeUnion(tmp, ev.order)
	}
	return nil
}

// evalPathExpr evaluates a primary expression or location path, plus any
// trailing predicates and path continuation.
func (ev *evaluation) evalPathExpr(set *Set) error {
	if ev.pos >= ev.exp.TokenCount() {
		return types.NewError(types.ErrUnexpectedEnd,
			"unexpected end of expression", len(ev.exp.Source()))
	}

	switch ev.exp.Token(ev.pos).Type {
	case types.TokenParenOpen:
		ev.pos++
		if err := ev.evalExprSelect(types.ExprNone, set); err != nil {
			return err
		}
		ev.pos++ // ')'
		return ev.evalFilterTail(set)

	case types.TokenDot, types.TokenDotDot, types.TokenAt,
		types.TokenNameTest, types.TokenNodeType:
		if set != nil {
			ev.seedContext(set)
		}
		return ev.evalRelativeLocationPath(set, false)

	case types.TokenOperatorPath:
		ev.pos++
		if set != nil {
			if ev.schema {
				ev.moveToSNodeRoot(set)
			} else {
				ev.moveToRoot(set)
			}
		}
		if ev.pos >= ev.exp.TokenCount() || !ev.curStartsStep() {
			return nil
		}
		return ev.evalRelativeLocationPath(set, false)

	case types.TokenOperatorRecPath:
		ev.pos++
		if set != nil {
			if ev.schema {
				ev.moveToSNodeRoot(set)
			} else {
				ev.moveToRoot(set)
			}
		}
		return ev.evalRelativeLocationPath(set, true)

	case types.TokenFunctionName:
		if err := ev.evalFunctionCall(set); err != nil {
			return err
		}
		return ev.evalFilterTail(set)

	case types.TokenLiteral:
		// The literal token spans the text between the quotes.
		if set != nil {
			set.setString(ev.exp.TokenValue(ev.pos))
		}
		ev.pos++
		return ev.evalFilterTail(set)

	case types.TokenNumber:
		if set != nil {
			set.setNumber(strToNum(ev.exp.TokenValue(ev.pos)))
		}
		ev.pos++
		return ev.evalFilterTail(set)

	default:
		return ev.tokenErr(types.ErrUnexpectedToken,
			"unexpected token in path expression")
	}
}

// seedContext initializes a fresh set with the current context node, the
// starting point of a relative location path.
func (ev *evaluation) seedContext(set *Set) {
	if ev.schema {
		set.setSchemaSet()
		if ev.csnode == nil {
			set.addSNode(nil, ev.rootKind, SCtxStart)
		} else {
			set.addSNode(ev.csnode, NodeElem, SCtxStart)
		}
		return
	}
	set.setNodeSet()
	set.addNode(ev.cnode)
}

func (ev *evaluation) curStartsStep() bool {
	switch ev.exp.Token(ev.pos).Type {
	case types.TokenDot, types.TokenDotDot, types.TokenAt,
		types.TokenNameTest, types.TokenNodeType:
		return true
	default:
		return false
	}
}

// evalFilterTail applies the predicates and the optional path continuation
// following a primary expression.
func (ev *evaluation) evalFilterTail(set *Set) error {
	for ev.pos < ev.exp.TokenCount() &&
		ev.exp.Token(ev.pos).Type == types.TokenBracketOpen {
		if err := ev.evalPredicate(set); err != nil {
			return err
		}
	}
	if ev.pos < ev.exp.TokenCount() {
		switch ev.exp.Token(ev.pos).Type {
		case types.TokenOperatorPath:
			ev.pos++
			return ev.evalRelativeLocationPath(set, false)
		case types.TokenOperatorRecPath:
			ev.pos++
			return ev.evalRelativeLocationPath(set, true)
		}
	}
	return nil
}

// evalRelativeLocationPath applies one step after another, with allDesc
// carrying the '//' flag into the next step.
func (ev *evaluation) evalRelativeLocationPath(set *Set, allDesc bool) error {
	for {
		if err := ev.checkCancel(); err != nil {
			return err
		}

		switch ev.exp.Token(ev.pos).Type {
		case types.TokenDot:
			ev.pos++
			if set != nil {
				if err := ev.moveSelf(set, allDesc); err != nil {
					return err
				}
			}

		case types.TokenDotDot:
			ev.pos++
			if set != nil {
				if allDesc {
					if err := ev.moveSelf(set, true); err != nil {
						return err
					}
				}
				if err := ev.moveParent(set); err != nil {
					return err
				}
			}

		case types.TokenAt:
			ev.pos++ // '@'
			value := ev.exp.TokenValue(ev.pos)
			position := ev.exp.Token(ev.pos).Position
			ev.pos++
			if set != nil {
				t, err := ev.parseNameTest(value, position)
				if err != nil {
					return err
				}
				if allDesc {
					if err := ev.moveSelf(set, true); err != nil {
						return err
					}
				}
				if ev.schema {
					if err := ev.moveToSNodeAttr(set, t); err != nil {
						return err
					}
				} else if err := ev.moveToAttr(set, t); err != nil {
					return err
				}
			}

		case types.TokenNameTest:
			value := ev.exp.TokenValue(ev.pos)
			position := ev.exp.Token(ev.pos).Position
			ev.pos++
			if set != nil {
				t, err := ev.parseNameTest(value, position)
				if err != nil {
					return err
				}
				if err := ev.moveChild(set, t, allDesc); err != nil {
					return err
				}
			}

		case types.TokenNodeType:
			name := ev.exp.TokenValue(ev.pos)
			ev.pos += 3 // name '(' ')'
			if set != nil {
				if err := ev.moveNodeType(set, name, allDesc); err != nil {
					return err
				}
			}
		}

		for ev.pos < ev.exp.TokenCount() &&
			ev.exp.Token(ev.pos).Type == types.TokenBracketOpen {
			if err := ev.evalPredicate(set); err != nil {
				return err
			}
		}

		if ev.pos >= ev.exp.TokenCount() {
			return nil
		}
		switch ev.exp.Token(ev.pos).Type {
		case types.TokenOperatorPath:
			allDesc = false
		case types.TokenOperatorRecPath:
			allDesc = true
		default:
			return nil
		}
		ev.pos++
	}
}

// moveSelf, moveParent and moveChild pick the data or schema twin of the
// respective primitive.

func (ev *evaluation) moveSelf(set *Set, allDesc bool) error {
	if ev.schema {
		return ev.moveToSNodeSelf(set, allDesc)
	}
	return ev.moveToSelf(set, allDesc)
}

func (ev *evaluation) moveParent(set *Set) error {
	if ev.schema {
		return ev.moveToSNodeParent(set)
	}
	return ev.moveToParent(set)
}

func (ev *evaluation) moveChild(set *Set, t nameTest, allDesc bool) error {
	if ev.schema {
		if allDesc {
			return ev.moveToSNodeAllDesc(set, t)
		}
		return ev.moveToSNode(set, t)
	}
	if allDesc {
		return ev.moveToNodeAllDesc(set, t)
	}
	return ev.moveToNode(set, t)
}

// moveNodeType applies a node-type step. node() behaves as an unrestricted
// element test; text() maps leaves to their text node; comment() always
// yields the empty set because the data model has no comment nodes.
func (ev *evaluation) moveNodeType(set *Set, name string, allDesc bool) error {
	switch name {
	case "node":
		return ev.moveChild(set, nameTest{WildModule: true, WildName: true}, allDesc)
	case "text":
		if ev.schema {
			// The text of a leaf is the leaf itself in the schema view.
			return ev.moveToSNodeSelf(set, allDesc)
		}
		if allDesc {
			if err := ev.moveToSelf(set, true); err != nil {
				return err
			}
		}
		return ev.moveToText(set)
	default: // comment
		if ev.schema {
			if err := ev.requireSchemaSet(set); err != nil {
				return err
			}
			set.clearSNodeCtx()
			return nil
		}
		if err := ev.requireNodeSet(set); err != nil {
			return err
		}
		set.replaceNodes(set.Nodes[:0])
		return nil
	}
}

// evalFunctionCall evaluates the arguments left to right, each with the
// surrounding context, then dispatches to the registry. Arity was already
// validated when the expression was compiled.
func (ev *evaluation) evalFunctionCall(set *Set) error {
	nameIdx := ev.pos
	name := ev.exp.TokenValue(nameIdx)
	ev.pos += 2 // function name, '('

	var args []*Set
	if ev.exp.Token(ev.pos).Type != types.TokenParenClose {
		for {
			if set == nil {
				if err := ev.evalExprSelect(types.ExprNone, nil); err != nil {
					return err
				}
			} else {
				arg := NewSet()
				if err := ev.evalExprSelect(types.ExprNone, arg); err != nil {
					return err
				}
				args = append(args, arg)
			}
			if ev.exp.Token(ev.pos).Type != types.TokenComma {
				break
			}
			ev.pos++
		}
	}
	ev.pos++ // ')'

	if set == nil {
		return nil
	}
	fn, ok := getFunction(name)
	if !ok {
		return types.NewError(types.ErrUnknownFunction,
			"unknown function "+name,
			ev.exp.Token(nameIdx).Position).WithToken(name)
	}
	return fn(ev, args, set)
}

// predParent groups node-set entries for predicate evaluation: siblings
// share a parent, text and attribute entries group under their element, and
// root entries form a group of their own.
func predParent(e *NodeEntry) *tree.DataNode {
	switch e.Kind {
	case NodeElem:
		if e.Node != nil {
			return e.Node.Parent()
		}
		return nil
	case NodeText, NodeAttr:
		return e.Node
	default:
		return nil
	}
}

// evalPredicate filters the node-set through one '[...]' predicate. The
// predicate expression is re-evaluated per entry with position() and last()
// bound per distinct parent; a numeric result keeps the entry whose position
// equals the number, any other result goes through the boolean cast. The
// context size is fixed before filtering, so last() keeps its value while
// entries drop out.
func (ev *evaluation) evalPredicate(set *Set) error {
	ev.pos++ // '['
	start := ev.pos

	if set == nil {
		if err := ev.evalExprSelect(types.ExprNone, nil); err != nil {
			return err
		}
		ev.pos++ // ']'
		return nil
	}
	if ev.schema {
		return ev.evalSchemaPredicate(set, start)
	}
	if set.Type != SetNodes {
		return ev.tokenErr(types.ErrNotNodeSet,
			"cannot apply a predicate to a "+set.Type.String())
	}

	set.sortDocOrder(ev.order)
	sizes := make(map[*tree.DataNode]int, 4)
	for i := range set.Nodes {
		sizes[predParent(&set.Nodes[i])]++
	}

	savedNode, savedPos, savedSize := ev.cnode, ev.cpos, ev.csize
	defer func() {
		ev.cnode, ev.cpos, ev.csize = savedNode, savedPos, savedSize
	}()

	counters := make(map[*tree.DataNode]int, len(sizes))
	kept := set.Nodes[:0]
	ran := false
	for i := range set.Nodes {
		e := set.Nodes[i]
		p := predParent(&e)
		counters[p]++

		ev.pos = start
		ev.cnode = e
		ev.cpos = counters[p]
		ev.csize = sizes[p]

		res := NewSet()
		if err := ev.evalExprSelect(types.ExprNone, res); err != nil {
			return err
		}
		ran = true

		keep := false
		if res.Type == SetNumber {
			keep = res.Num == float64(ev.cpos)
		} else {
			keep = res.toBoolean()
		}
		if keep {
			kept = append(kept, e)
		}
	}
	if !ran {
		// Empty context: the tokens still have to be consumed.
		ev.pos = start
		if err := ev.evalExprSelect(types.ExprNone, nil); err != nil {
			return err
		}
	}
	set.replaceNodes(kept)
	ev.pos++ // ']'
	return nil
}

// evalSchemaPredicate atomizes the predicate once per in-context schema
// node. Predicates never narrow the schema context: without instance data
// there is nothing to decide on, so the analysis only folds in whatever the
// predicate expression touches.
func (ev *evaluation) evalSchemaPredicate(set *Set, start int) error {
	if set.Type != SetSchemaNodes {
		return ev.tokenErr(types.ErrNotNodeSet,
			"cannot apply a predicate to a "+set.Type.String())
	}

	saved := ev.csnode
	defer func() { ev.csnode = saved }()

	snap := append([]SchemaEntry(nil), set.SNode...)
	ran := false
	for i := range snap {
		if !inSchemaCtx(&snap[i]) {
			continue
		}
		ev.pos = start
		ev.csnode = snap[i].SNode
		tmp := NewSet()
		if err := ev.evalExprSelect(types.ExprNone, tmp); err != nil {
			return err
		}
		ran = true
		if tmp.Type == SetSchemaNodes {
			tmp.clearSNodeCtx()
			set.mergeSNodes(tmp)
		}
	}
	if !ran {
		ev.pos = start
		if err := ev.evalExprSelect(types.ExprNone, nil); err != nil {
			return err
		}
	}
	ev.pos++ // ']'
	return nil
}

// compareSets implements the XPath comparison rules, including the
// existential semantics over node-sets: a comparison involving a node-set is
// true when some node satisfies it.
func (ev *evaluation) compareSets(a *Set, op string, b *Set) bool {
	equality := op == "=" || op == "!="

	switch {
	case a.Type == SetNodes && b.Type == SetNodes:
		for i := range a.Nodes {
			av := nodeStringValue(&a.Nodes[i])
			for j := range b.Nodes {
				bv := nodeStringValue(&b.Nodes[j])
				if equality {
					if compareStrings(op, av, bv) {
						return true
					}
				} else if compareNumbers(op, strToNum(av), strToNum(bv)) {
					return true
				}
			}
		}
		return false

	case a.Type == SetNodes:
		return ev.compareNodeSetScalar(a, op, b, false)
	case b.Type == SetNodes:
		return ev.compareNodeSetScalar(b, op, a, true)

	default:
		if equality {
			if a.Type == SetBoolean || b.Type == SetBoolean {
				return compareBools(op, a.toBoolean(), b.toBoolean())
			}
			if a.Type == SetNumber || b.Type == SetNumber {
				return compareNumbers(op, a.toNumber(ev.order), b.toNumber(ev.order))
			}
			return compareStrings(op, a.toString(ev.order), b.toString(ev.order))
		}
		return compareNumbers(op, a.toNumber(ev.order), b.toNumber(ev.order))
	}
}

// compareNodeSetScalar compares a node-set against a scalar. flip means the
// scalar is the left operand of the source expression, which matters for the
// ordering operators.
func (ev *evaluation) compareNodeSetScalar(nodes *Set, op string, scalar *Set, flip bool) bool {
	equality := op == "=" || op == "!="
	if equality && scalar.Type == SetBoolean {
		return compareBools(op, nodes.toBoolean(), scalar.Bool)
	}

	for i := range nodes.Nodes {
		sv := nodeStringValue(&nodes.Nodes[i])
		var ok bool
		switch {
		case equality && scalar.Type == SetString:
			ok = compareStrings(op, sv, scalar.Str)
		case flip:
			ok = compareNumbers(op, scalar.toNumber(ev.order), strToNum(sv))
		default:
			ok = compareNumbers(op, strToNum(sv), scalar.toNumber(ev.order))
		}
		if ok {
			return true
		}
	}
	return false
}

// compareNumbers follows IEEE semantics: every comparison with NaN is false
// except !=, which is true.
func compareNumbers(op string, a, b float64) bool {
	switch op {
	case "=":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default: // ">="
		return a >= b
	}
}

func compareStrings(op, a, b string) bool {
	if op == "!=" {
		return a != b
	}
	return a == b
}

func compareBools(op string, a, b bool) bool {
	if op == "!=" {
		return a != b
	}
	return a == b
}

// subEval compiles and evaluates a stored path (a leafref target path or an
// instance-identifier value) against the same document, with ctxNode as the
// context. Used by deref().
func (ev *evaluation) subEval(path string, ctxNode *tree.DataNode) (*Set, error) {
	exp, err := ev.e.compile(path)
	if err != nil {
		return nil, err
	}
	sub := &evaluation{
		ctx:      ev.ctx,
		e:        ev.e,
		exp:      exp,
		mode:     ev.mode,
		scope:    ev.scope,
		curMod:   ev.curMod,
		ctxNode:  ctxNode,
		rootKind: ev.rootKind,
		order:    ev.order,
		origNode: ctxNode,
		origKind: NodeElem,
	}
	if ctxNode == nil {
		sub.origKind = ev.rootKind
	}
	sub.cnode = NodeEntry{Node: ctxNode, Kind: sub.origKind}
	return sub.run()
}

// subAtomize compiles and analyzes a leafref target path with sn as the
// schema context. Used by the schema branch of deref().
func (ev *evaluation) subAtomize(path string, sn *tree.SchemaNode) (*Set, error) {
	exp, err := ev.e.compile(path)
	if err != nil {
		return nil, err
	}
	sub := &evaluation{
		ctx:      ev.ctx,
		e:        ev.e,
		exp:      exp,
		mode:     ev.mode,
		scope:    ev.scope,
		schema:   true,
		curMod:   ev.curMod,
		rootKind: ev.rootKind,
		ctxSNode: sn,
		csnode:   sn,
	}
	return sub.run()
}
