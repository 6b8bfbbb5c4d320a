package evaluator

import (
	"github.com/yangml/yangpath/pkg/tree"
	"github.com/yangml/yangpath/pkg/types"
)

// Move-to primitives over the instance-data tree, one per location-step
// kind. Each mutates the set in place. The schema-tree twins live in
// moveto_schema.go.
//
// All primitives require a node-set operand; applying a location step to a
// scalar is a type error. Crossing a node with a pending "when" in ModeWhen
// yields types.ErrRetry, propagated verbatim.

// requireNodeSet rejects location steps on non-node-set operands.
func (ev *evaluation) requireNodeSet(set *Set) error {
	if set.Type != SetNodes {
		return ev.tokenErr(types.ErrNotNodeSet,
			"cannot apply a location step to a "+set.Type.String())
	}
	return nil
}

// moveToRoot replaces the set with the document root. The root kind
// (unrestricted vs configuration-only) was fixed when the evaluation
// started and propagates through every later subtree filter.
func (ev *evaluation) moveToRoot(set *Set) {
	var root *tree.DataNode
	if ev.ctxNode != nil {
		root = ev.ctxNode.Root()
	}
	set.setNodeSet()
	set.addNode(NodeEntry{Node: root, Kind: ev.rootKind})
}

// visible reports whether a data node participates in this evaluation:
// placeholder nodes under construction are invisible, a configuration root
// hides state nodes, and RPC scoping hides the opposite direction's
// subtree.
func (ev *evaluation) visible(n *tree.DataNode, rootKind NodeKind) bool {
	if n.InUse {
		return false
	}
	if rootKind == NodeRootConfig && !n.IsConfig() {
		return false
	}
	if n.Schema != nil {
		switch n.Schema.Kind {
		case tree.SchemaInput:
			if ev.scope == ScopeOutput {
				return false
			}
		case tree.SchemaOutput:
			if ev.scope == ScopeInput {
				return false
			}
		}
	}
	return true
}

// checkWhen yields the retry signal when a when-mode evaluation crosses a
// node whose own "when" has not been decided yet. The node is neither
// included nor excluded; the whole evaluation is retried later.
func (ev *evaluation) checkWhen(n *tree.DataNode) error {
	if ev.mode == ModeWhen && n.WhenPending {
		return types.ErrRetry
	}
	return nil
}

// childrenOf returns the first node of the entry's child list: top-level
// siblings for a root entry, first child for an element. Text and
// attribute entries have no children, and opaque subtrees are not entered.
func childrenOf(e *NodeEntry) *tree.DataNode {
	switch e.Kind {
	case NodeRoot, NodeRootConfig:
		return e.Node
	case NodeElem:
		if e.Node == nil || e.Node.IsOpaque() {
			return nil
		}
		return e.Node.FirstChild()
	default:
		return nil
	}
}

// moveToNode applies a named child step: for every context entry, its
// children matching the name test become the new context.
func (ev *evaluation) moveToNode(set *Set, t nameTest) error {
	if err := ev.requireNodeSet(set); err != nil {
		return err
	}

	result := NewSet()
	result.setNodeSet()
	for i := range set.Nodes {
		rootKind := ev.rootKind
		for c := childrenOf(&set.Nodes[i]); c != nil; c = c.NextSibling() {
			if !ev.visible(c, rootKind) {
				continue
			}
			if !t.matches(c.Module(), c.Name()) {
				continue
			}
			if err := ev.checkWhen(c); err != nil {
				return err
			}
			result.addNode(NodeEntry{Node: c, Kind: NodeElem})
		}
	}
	set.replaceNodes(result.Nodes)
	set.sortDocOrder(ev.order)
	return nil
}

// moveToNodeAllDesc applies a named descendant step ("//name"): children of
// every descendant-or-self node of each context entry are tested.
func (ev *evaluation) moveToNodeAllDesc(set *Set, t nameTest) error {
	if err := ev.requireNodeSet(set); err != nil {
		return err
	}

	result := NewSet()
	result.setNodeSet()
	for i := range set.Nodes {
		for c := childrenOf(&set.Nodes[i]); c != nil; c = c.NextSibling() {
			if err := ev.collectDesc(result, c, t); err != nil {
				return err
			}
		}
	}
	set.replaceNodes(result.Nodes)
	set.sortDocOrder(ev.order)
	return nil
}

// collectDesc adds n and all its descendants matching the name test.
func (ev *evaluation) collectDesc(result *Set, n *tree.DataNode, t nameTest) error {
	if !ev.visible(n, ev.rootKind) {
		return nil
	}
	if t.matches(n.Module(), n.Name()) {
		if err := ev.checkWhen(n); err != nil {
			return err
		}
		result.addNode(NodeEntry{Node: n, Kind: NodeElem})
	}
	if n.IsOpaque() {
		return nil
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if err := ev.collectDesc(result, c, t); err != nil {
			return err
		}
	}
	return nil
}

// moveToText applies a text() step: leaf elements are replaced by their
// text node, everything else is dropped.
func (ev *evaluation) moveToText(set *Set) error {
	if err := ev.requireNodeSet(set); err != nil {
		return err
	}

	out := set.Nodes[:0]
	for i := range set.Nodes {
		e := set.Nodes[i]
		if e.Kind == NodeElem && e.Node != nil && e.Node.IsLeaf() {
			e.Kind = NodeText
			out = append(out, e)
		}
	}
	set.replaceNodes(out)
	return nil
}

// moveToSelf applies a self step. With allDesc set ("//."), every
// descendant element and leaf text node joins the context; opaque subtrees
// and placeholder nodes are skipped, and the config-root filter is honored.
func (ev *evaluation) moveToSelf(set *Set, allDesc bool) error {
	if err := ev.requireNodeSet(set); err != nil {
		return err
	}
	if !allDesc {
		return nil
	}

	orig := len(set.Nodes)
	for i := 0; i < orig; i++ {
		e := set.Nodes[i]
		for c := childrenOf(&e); c != nil; c = c.NextSibling() {
			if err := ev.addSelfDesc(set, c); err != nil {
				return err
			}
		}
	}
	set.sortDocOrder(ev.order)
	return nil
}

func (ev *evaluation) addSelfDesc(set *Set, n *tree.DataNode) error {
	if !ev.visible(n, ev.rootKind) {
		return nil
	}
	if err := ev.checkWhen(n); err != nil {
		return err
	}
	set.addNode(NodeEntry{Node: n, Kind: NodeElem})
	if n.IsLeaf() {
		set.addNode(NodeEntry{Node: n, Kind: NodeText})
	}
	if n.IsOpaque() {
		return nil
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if err := ev.addSelfDesc(set, c); err != nil {
			return err
		}
	}
	return nil
}

// moveToParent applies a parent step. The document root is its own parent;
// attribute and text entries map back to their element.
func (ev *evaluation) moveToParent(set *Set) error {
	if err := ev.requireNodeSet(set); err != nil {
		return err
	}

	result := NewSet()
	result.setNodeSet()
	for i := range set.Nodes {
		e := set.Nodes[i]
		switch e.Kind {
		case NodeRoot, NodeRootConfig:
			// Root is a fixed point.
			result.addNode(e)
		case NodeText:
			result.addNode(NodeEntry{Node: e.Node, Kind: NodeElem})
		case NodeAttr:
			result.addNode(NodeEntry{Node: e.Node, Kind: NodeElem})
		case NodeElem:
			parent := e.Node.Parent()
			if parent == nil {
				var root *tree.DataNode
				if e.Node != nil {
					root = e.Node.Root()
				}
				result.addNode(NodeEntry{Node: root, Kind: ev.rootKind})
			} else {
				if err := ev.checkWhen(parent); err != nil {
					return err
				}
				result.addNode(NodeEntry{Node: parent, Kind: NodeElem})
			}
		}
	}
	set.replaceNodes(result.Nodes)
	set.sortDocOrder(ev.order)
	return nil
}

// moveToAttr applies an attribute step: element entries are replaced by
// their matching metadata annotations, qualified by the same prefix rules
// as named node tests.
func (ev *evaluation) moveToAttr(set *Set, t nameTest) error {
	if err := ev.requireNodeSet(set); err != nil {
		return err
	}

	result := NewSet()
	result.setNodeSet()
	for i := range set.Nodes {
		e := set.Nodes[i]
		if e.Kind != NodeElem || e.Node == nil {
			continue
		}
		for _, a := range e.Node.Attrs() {
			if t.matches(a.Module, a.Name) {
				result.addNode(NodeEntry{Node: e.Node, Attr: a, Kind: NodeAttr})
			}
		}
	}
	set.replaceNodes(result.Nodes)
	set.sortDocOrder(ev.order)
	return nil
}
