package evaluator

import (
	"log/slog"

	"github.com/yangml/yangpath/pkg/tree"
	"github.com/yangml/yangpath/pkg/types"
)

// Schema-tree twins of the move-to primitives, used by Atomize. They walk
// only the schema: no data tree exists, no document order is defined, and
// there is no retry signal. Entries carry the multi-valued in-context
// marker: a step consumes entries marked in context, produces entries
// marked new, and the dispatcher commits new entries afterwards.
//
// A name test that matches nothing is not an error here; it is reported as
// a non-fatal warning through the evaluator's logger, because the analysis
// exists exactly to surface such dangling references.

// requireSchemaSet rejects location steps on non-schema-set operands.
func (ev *evaluation) requireSchemaSet(set *Set) error {
	if set.Type != SetSchemaNodes {
		return ev.tokenErr(types.ErrNotNodeSet,
			"cannot apply a location step to a "+set.Type.String())
	}
	return nil
}

// inSchemaCtx reports whether the entry is a live context source.
func inSchemaCtx(e *SchemaEntry) bool {
	return e.InCtx == SCtxOK || e.InCtx == SCtxStart
}

// moveToSNodeRoot replaces the schema context with the schema root.
func (ev *evaluation) moveToSNodeRoot(set *Set) {
	set.setSchemaSet()
	set.addSNode(nil, ev.rootKind, SCtxOK)
}

// schemaVisible applies the config-root restriction and RPC scoping to a
// schema node.
func (ev *evaluation) schemaVisible(s *tree.SchemaNode) bool {
	if ev.rootKind == NodeRootConfig && !s.Config {
		return false
	}
	switch s.Kind {
	case tree.SchemaInput:
		return ev.scope != ScopeOutput
	case tree.SchemaOutput:
		return ev.scope != ScopeInput
	}
	return true
}

// forEachSchemaChild visits the addressable data children of parent (nil
// means the schema root). Choice, case, input and output nodes are
// transparent: path expressions name the data nodes inside them.
func (ev *evaluation) forEachSchemaChild(parent *tree.SchemaNode, visit func(*tree.SchemaNode)) {
	var first *tree.SchemaNode
	if parent == nil {
		if ev.schemaRoot() != nil {
			first = ev.schemaRoot()
		}
	} else {
		first = parent.FirstChild()
	}
	for c := first; c != nil; c = c.NextSibling() {
		if !ev.schemaVisible(c) {
			continue
		}
		switch c.Kind {
		case tree.SchemaChoice, tree.SchemaCase, tree.SchemaInput, tree.SchemaOutput:
			ev.forEachSchemaChild(c, visit)
		default:
			visit(c)
		}
	}
}

// schemaRoot returns the first top-level schema node of the analysis tree.
func (ev *evaluation) schemaRoot() *tree.SchemaNode {
	if ev.ctxSNode == nil {
		return nil
	}
	return ev.ctxSNode.Root()
}

// moveToSNode applies a named child step on the schema tree.
func (ev *evaluation) moveToSNode(set *Set, t nameTest) error {
	if err := ev.requireSchemaSet(set); err != nil {
		return err
	}

	found := false
	orig := len(set.SNode)
	for i := 0; i < orig; i++ {
		if !inSchemaCtx(&set.SNode[i]) {
			continue
		}
		parent := set.SNode[i].SNode
		set.SNode[i].InCtx = SCtxNone
		ev.forEachSchemaChild(parent, func(c *tree.SchemaNode) {
			if t.matches(c.Module, c.Name) {
				set.addSNode(c, NodeElem, SCtxNew)
				found = true
			}
		})
	}
	if !found && !t.WildName {
		ev.warnNotFound(t)
	}
	set.commitSNodeCtx()
	return nil
}

// moveToSNodeAllDesc applies a named descendant step on the schema tree.
func (ev *evaluation) moveToSNodeAllDesc(set *Set, t nameTest) error {
	if err := ev.requireSchemaSet(set); err != nil {
		return err
	}

	found := false
	orig := len(set.SNode)
	for i := 0; i < orig; i++ {
		if !inSchemaCtx(&set.SNode[i]) {
			continue
		}
		parent := set.SNode[i].SNode
		set.SNode[i].InCtx = SCtxNone
		ev.collectSchemaDesc(set, parent, t, &found)
	}
	if !found && !t.WildName {
		ev.warnNotFound(t)
	}
	set.commitSNodeCtx()
	return nil
}

func (ev *evaluation) collectSchemaDesc(set *Set, parent *tree.SchemaNode, t nameTest, found *bool) {
	ev.forEachSchemaChild(parent, func(c *tree.SchemaNode) {
		if t.matches(c.Module, c.Name) {
			set.addSNode(c, NodeElem, SCtxNew)
			*found = true
		}
		if !c.IsOpaque() {
			ev.collectSchemaDesc(set, c, t, found)
		}
	})
}

// moveToSNodeSelf applies a self step on the schema tree. With allDesc,
// every descendant data node joins the context.
func (ev *evaluation) moveToSNodeSelf(set *Set, allDesc bool) error {
	if err := ev.requireSchemaSet(set); err != nil {
		return err
	}
	if !allDesc {
		return nil
	}

	orig := len(set.SNode)
	for i := 0; i < orig; i++ {
		if !inSchemaCtx(&set.SNode[i]) {
			continue
		}
		ev.addSchemaSelfDesc(set, set.SNode[i].SNode)
	}
	set.commitSNodeCtx()
	return nil
}

func (ev *evaluation) addSchemaSelfDesc(set *Set, parent *tree.SchemaNode) {
	ev.forEachSchemaChild(parent, func(c *tree.SchemaNode) {
		set.addSNode(c, NodeElem, SCtxNew)
		if !c.IsOpaque() {
			ev.addSchemaSelfDesc(set, c)
		}
	})
}

// moveToSNodeParent applies a parent step on the schema tree. The schema
// root is its own parent.
func (ev *evaluation) moveToSNodeParent(set *Set) error {
	if err := ev.requireSchemaSet(set); err != nil {
		return err
	}

	orig := len(set.SNode)
	for i := 0; i < orig; i++ {
		if !inSchemaCtx(&set.SNode[i]) {
			continue
		}
		sn := set.SNode[i].SNode
		set.SNode[i].InCtx = SCtxNone
		if sn == nil {
			// Root is a fixed point.
			set.addSNode(nil, ev.rootKind, SCtxNew)
			continue
		}
		parent := sn.Parent()
		// Skip transparent schema-only levels.
		for parent != nil {
			switch parent.Kind {
			case tree.SchemaChoice, tree.SchemaCase, tree.SchemaInput, tree.SchemaOutput:
				parent = parent.Parent()
				continue
			}
			break
		}
		if parent == nil {
			set.addSNode(nil, ev.rootKind, SCtxNew)
		} else {
			set.addSNode(parent, NodeElem, SCtxNew)
		}
	}
	set.commitSNodeCtx()
	return nil
}

// moveToSNodeAttr applies an attribute step on the schema tree. Schema
// trees carry no metadata annotations, so the context always empties.
func (ev *evaluation) moveToSNodeAttr(set *Set, t nameTest) error {
	if err := ev.requireSchemaSet(set); err != nil {
		return err
	}
	for i := range set.SNode {
		if inSchemaCtx(&set.SNode[i]) {
			set.SNode[i].InCtx = SCtxNone
		}
	}
	return nil
}

func (ev *evaluation) warnNotFound(t nameTest) {
	name := t.Name
	if t.Module != nil {
		name = t.Module.Name + ":" + name
	}
	ev.e.logger.Warn("schema node not found in any context",
		slog.String("name", name),
		slog.String("expr", ev.exp.Source()))
}
