package evaluator

import (
	"math"
	"regexp"
	"strings"

	"github.com/yangml/yangpath/pkg/tree"
	"github.com/yangml/yangpath/pkg/types"
)

// YANG XPath function extensions (RFC 7950 section 10).

// firstNodeEntry returns the first node of the set in document order, or
// nil for an empty or non-node set.
func (ev *evaluation) firstNodeEntry(s *Set) *NodeEntry {
	if s.Type != SetNodes || len(s.Nodes) == 0 {
		return nil
	}
	s.sortDocOrder(ev.order)
	return &s.Nodes[0]
}

// firstCtxSNode returns the first in-context schema node of the set.
func firstCtxSNode(s *Set) *tree.SchemaNode {
	for i := range s.SNode {
		if inSchemaCtx(&s.SNode[i]) && s.SNode[i].SNode != nil {
			return s.SNode[i].SNode
		}
	}
	return nil
}

// leafType returns the type of a leaf entry, or nil.
func leafType(e *NodeEntry) *tree.Type {
	if e == nil || e.Node == nil || e.Node.Schema == nil {
		return nil
	}
	return e.Node.Schema.Type
}

// fnBitIsSet returns true when the first node of the node-set is a leaf of
// type bits whose value has the named bit set.
func fnBitIsSet(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		if sn := firstCtxSNode(args[0]); sn != nil {
			if sn.Type == nil || sn.Type.Name != "bits" {
				ev.warnArgType("bit-is-set", "leaf of type bits", args[0])
			}
		}
		schemaFnResult(args, set)
		return nil
	}
	if args[0].Type != SetNodes {
		return ev.tokenErr(types.ErrArgumentType,
			"bit-is-set() requires a node-set argument, got "+args[0].Type.String())
	}

	bit := args[1].toString(ev.order)
	result := false
	if e := ev.firstNodeEntry(args[0]); e != nil {
		if t := leafType(e); t != nil && t.Name == "bits" {
			defined := false
			for _, b := range t.Bits {
				if b == bit {
					defined = true
					break
				}
			}
			if defined {
				for _, b := range strings.Fields(e.Node.Value) {
					if b == bit {
						result = true
						break
					}
				}
			}
		}
	}
	set.setBoolean(result)
	return nil
}

// fnDeref follows the first node's leafref or instance-identifier to its
// target: for a leafref, the target path is evaluated relative to the leaf
// and entries whose value equals the leaf value remain; for an
// instance-identifier, the stored path is evaluated from the root.
func fnDeref(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		set.setSchemaSet()
		for _, a := range args {
			if a.Type == SetSchemaNodes {
				set.mergeSNodes(a)
			}
		}
		for i := range set.SNode {
			set.SNode[i].InCtx = SCtxNone
		}
		sn := firstCtxSNode(args[0])
		if sn == nil {
			return nil
		}
		if sn.Type == nil || (sn.Type.Name != "leafref" && sn.Type.Name != "instance-identifier") {
			ev.warnArgType("deref", "leafref or instance-identifier leaf", args[0])
			return nil
		}
		if sn.Type.Name == "leafref" && sn.Type.LeafrefPath != "" {
			// The dereference targets stay in context; everything else
			// atomized by the target path is folded in as visited.
			target, err := ev.subAtomize(sn.Type.LeafrefPath, sn)
			if err != nil {
				return err
			}
			set.mergeSNodes(target)
		}
		return nil
	}

	if args[0].Type != SetNodes {
		return ev.tokenErr(types.ErrArgumentType,
			"deref() requires a node-set argument, got "+args[0].Type.String())
	}

	set.setNodeSet()
	e := ev.firstNodeEntry(args[0])
	t := leafType(e)
	if t == nil {
		return nil
	}

	switch t.Name {
	case "leafref":
		if t.LeafrefPath == "" {
			return nil
		}
		target, err := ev.subEval(t.LeafrefPath, e.Node)
		if err != nil {
			return err
		}
		if target.Type != SetNodes {
			return nil
		}
		for i := range target.Nodes {
			te := target.Nodes[i]
			if nodeStringValue(&te) == e.Node.Value {
				set.addNode(te)
			}
		}
	case "instance-identifier":
		target, err := ev.subEval(e.Node.Value, e.Node)
		if err != nil {
			return err
		}
		if target.Type != SetNodes {
			return nil
		}
		for i := range target.Nodes {
			set.addNode(target.Nodes[i])
		}
	}
	set.sortDocOrder(ev.order)
	return nil
}

// resolveIdentityValue resolves an identityref leaf value against the
// leaf's own module prefix table.
func resolveIdentityValue(e *NodeEntry) *tree.Identity {
	t := leafType(e)
	if t == nil || t.Name != "identityref" {
		return nil
	}
	return e.Node.Module().ResolveIdentity(e.Node.Value)
}

func derivedFrom(ev *evaluation, args []*Set, set *Set, orSelf bool, fname string) error {
	if ev.schema {
		if sn := firstCtxSNode(args[0]); sn != nil {
			if sn.Type == nil || sn.Type.Name != "identityref" {
				ev.warnArgType(fname, "leaf of type identityref", args[0])
			}
		}
		schemaFnResult(args, set)
		return nil
	}
	if args[0].Type != SetNodes {
		return ev.tokenErr(types.ErrArgumentType,
			fname+"() requires a node-set argument, got "+args[0].Type.String())
	}

	var base *tree.Identity
	if ev.curMod != nil {
		base = ev.curMod.ResolveIdentity(args[1].toString(ev.order))
	}
	result := false
	if base != nil {
		for i := range args[0].Nodes {
			id := resolveIdentityValue(&args[0].Nodes[i])
			if id == nil {
				continue
			}
			if (orSelf && id == base) || id.DerivedFrom(base) {
				result = true
				break
			}
		}
	}
	set.setBoolean(result)
	return nil
}

// fnDerivedFrom returns true when any node of the node-set is an
// identityref whose value is derived from the named identity.
func fnDerivedFrom(ev *evaluation, args []*Set, set *Set) error {
	return derivedFrom(ev, args, set, false, "derived-from")
}

// fnDerivedFromOrSelf additionally accepts the named identity itself.
func fnDerivedFromOrSelf(ev *evaluation, args []*Set, set *Set) error {
	return derivedFrom(ev, args, set, true, "derived-from-or-self")
}

// fnEnumValue returns the integer value of the first node's enumeration,
// or NaN when the node is not an enumeration leaf or the value is unknown.
func fnEnumValue(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		if sn := firstCtxSNode(args[0]); sn != nil {
			if sn.Type == nil || sn.Type.Name != "enumeration" {
				ev.warnArgType("enum-value", "leaf of type enumeration", args[0])
			}
		}
		schemaFnResult(args, set)
		return nil
	}
	if args[0].Type != SetNodes {
		return ev.tokenErr(types.ErrArgumentType,
			"enum-value() requires a node-set argument, got "+args[0].Type.String())
	}

	set.setNumber(math.NaN())
	if e := ev.firstNodeEntry(args[0]); e != nil {
		if t := leafType(e); t != nil && t.Name == "enumeration" {
			if v, ok := t.Enums[e.Node.Value]; ok {
				set.setNumber(float64(v))
			}
		}
	}
	return nil
}

// fnReMatch matches the subject against an anchored regular expression,
// per the XSD regex convention of matching the whole string.
func fnReMatch(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	subject := args[0].toString(ev.order)
	pattern := args[1].toString(ev.order)
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return types.NewError(types.ErrArgumentType,
			"invalid regular expression: "+err.Error(), -1).WithCause(err)
	}
	set.setBoolean(re.MatchString(subject))
	return nil
}
