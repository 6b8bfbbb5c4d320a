package evaluator

import (
	"math"
	"strings"

	"github.com/yangml/yangpath/pkg/types"
)

// Node-set, context, boolean and number functions. String functions live in
// fn_string.go, the YANG extensions in fn_yang.go.

// --- Node-set and context functions ---

// fnCount returns the number of nodes in the argument node-set.
func fnCount(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		if args[0].Type != SetSchemaNodes {
			ev.warnArgType("count", "node-set", args[0])
		}
		schemaFnResult(args, set)
		return nil
	}
	if args[0].Type != SetNodes {
		return ev.tokenErr(types.ErrArgumentType,
			"count() requires a node-set argument, got "+args[0].Type.String())
	}
	set.setNumber(float64(len(args[0].Nodes)))
	return nil
}

// fnCurrent returns the original, un-stepped evaluation context node.
func fnCurrent(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		set.setSchemaSet()
		if ev.ctxSNode == nil {
			set.addSNode(nil, ev.rootKind, SCtxOK)
		} else {
			set.addSNode(ev.ctxSNode, NodeElem, SCtxOK)
		}
		return nil
	}
	set.setNodeSet()
	set.addNode(NodeEntry{Node: ev.origNode, Kind: ev.origKind})
	return nil
}

// fnLast returns the context size fixed by the nearest enclosing predicate.
func fnLast(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	size := ev.csize
	if size == 0 {
		size = 1
	}
	set.setNumber(float64(size))
	return nil
}

// fnPosition returns the context position fixed by the nearest enclosing
// predicate.
func fnPosition(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	pos := ev.cpos
	if pos == 0 {
		pos = 1
	}
	set.setNumber(float64(pos))
	return nil
}

// entryName returns the unqualified name of a node-set entry.
func entryName(e *NodeEntry) string {
	switch e.Kind {
	case NodeElem:
		return e.Node.Name()
	case NodeAttr:
		return e.Attr.Name
	default:
		return ""
	}
}

// nameArgEntry picks the entry naming functions operate on: the first node
// of the argument in document order, or the current context node.
func (ev *evaluation) nameArgEntry(args []*Set) (*NodeEntry, error) {
	if len(args) == 0 {
		return &ev.cnode, nil
	}
	if args[0].Type != SetNodes {
		return nil, ev.tokenErr(types.ErrArgumentType,
			"expected a node-set argument, got "+args[0].Type.String())
	}
	if len(args[0].Nodes) == 0 {
		return nil, nil
	}
	args[0].sortDocOrder(ev.order)
	return &args[0].Nodes[0], nil
}

// fnLocalName returns the name of the node without its module qualifier.
func fnLocalName(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		if len(args) > 0 && args[0].Type != SetSchemaNodes {
			ev.warnArgType("local-name", "node-set", args[0])
		}
		schemaFnResult(args, set)
		return nil
	}
	e, err := ev.nameArgEntry(args)
	if err != nil {
		return err
	}
	if e == nil {
		set.setString("")
		return nil
	}
	set.setString(entryName(e))
	return nil
}

// fnName returns the qualified name of the node as "module:name".
func fnName(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		if len(args) > 0 && args[0].Type != SetSchemaNodes {
			ev.warnArgType("name", "node-set", args[0])
		}
		schemaFnResult(args, set)
		return nil
	}
	e, err := ev.nameArgEntry(args)
	if err != nil {
		return err
	}
	if e == nil {
		set.setString("")
		return nil
	}
	name := entryName(e)
	var mod string
	switch e.Kind {
	case NodeElem:
		if m := e.Node.Module(); m != nil {
			mod = m.Name
		}
	case NodeAttr:
		if e.Attr.Module != nil {
			mod = e.Attr.Module.Name
		}
	}
	if mod != "" && name != "" {
		set.setString(mod + ":" + name)
	} else {
		set.setString(name)
	}
	return nil
}

// fnNamespaceURI returns the namespace of the node's module.
func fnNamespaceURI(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		if len(args) > 0 && args[0].Type != SetSchemaNodes {
			ev.warnArgType("namespace-uri", "node-set", args[0])
		}
		schemaFnResult(args, set)
		return nil
	}
	e, err := ev.nameArgEntry(args)
	if err != nil {
		return err
	}
	ns := ""
	if e != nil {
		switch e.Kind {
		case NodeElem:
			if m := e.Node.Module(); m != nil {
				ns = m.Namespace
			}
		case NodeAttr:
			if e.Attr.Module != nil {
				ns = e.Attr.Module.Namespace
			}
		}
	}
	set.setString(ns)
	return nil
}

// --- Boolean functions ---

func fnBoolean(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	set.setBoolean(args[0].toBoolean())
	return nil
}

func fnNot(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	set.setBoolean(!args[0].toBoolean())
	return nil
}

func fnTrue(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	set.setBoolean(true)
	return nil
}

func fnFalse(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	set.setBoolean(false)
	return nil
}

// fnLang walks the context node's ancestors for a "lang" annotation (the
// xml:lang equivalent) and does a case-insensitive comparison that treats
// "-" as a subtag boundary: lang('en') is true for "en" and "en-US" but
// not for "enu".
func fnLang(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		if args[0].Type == SetSchemaNodes {
			ev.warnArgType("lang", "string", args[0])
		}
		schemaFnResult(args, set)
		return nil
	}

	want := strings.ToLower(args[0].toString(ev.order))
	var have string
	for n := ev.cnode.Node; n != nil; n = n.Parent() {
		for _, a := range n.Attrs() {
			if a.Name == "lang" {
				have = strings.ToLower(a.Value)
				break
			}
		}
		if have != "" {
			break
		}
	}
	ok := have != "" && want != "" &&
		strings.HasPrefix(have, want) &&
		(len(have) == len(want) || have[len(want)] == '-')
	set.setBoolean(ok)
	return nil
}

// --- Number functions ---

func fnNumber(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	if len(args) == 0 {
		set.setNumber(strToNum(nodeStringValue(&ev.cnode)))
		return nil
	}
	set.setNumber(args[0].toNumber(ev.order))
	return nil
}

func fnCeiling(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	set.setNumber(math.Ceil(args[0].toNumber(ev.order)))
	return nil
}

func fnFloor(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	set.setNumber(math.Floor(args[0].toNumber(ev.order)))
	return nil
}

// xpathRound implements the XPath round(): floor(x + 0.5), with NaN and
// the infinities passed through, and arguments in (-0.5, -0) rounding to
// negative zero.
func xpathRound(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	if f < 0 && f > -0.5 {
		return math.Copysign(0, -1)
	}
	return math.Floor(f + 0.5)
}

func fnRound(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	set.setNumber(xpathRound(args[0].toNumber(ev.order)))
	return nil
}

// fnSum adds up the number value of every node in the argument node-set.
func fnSum(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		if args[0].Type != SetSchemaNodes {
			ev.warnArgType("sum", "node-set", args[0])
		}
		schemaFnResult(args, set)
		return nil
	}
	if args[0].Type != SetNodes {
		return ev.tokenErr(types.ErrArgumentType,
			"sum() requires a node-set argument, got "+args[0].Type.String())
	}
	total := 0.0
	for i := range args[0].Nodes {
		total += strToNum(nodeStringValue(&args[0].Nodes[i]))
	}
	set.setNumber(total)
	return nil
}
