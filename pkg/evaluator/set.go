package evaluator

import (
	"github.com/yangml/yangpath/pkg/tree"
)

// SetType tags the variant held by a Set.
type SetType uint8

const (
	SetEmpty SetType = iota
	SetBoolean
	SetNumber
	SetString
	SetNodes
	SetSchemaNodes
)

// String returns the XPath name of the set type.
func (st SetType) String() string {
	switch st {
	case SetEmpty:
		return "empty"
	case SetBoolean:
		return "boolean"
	case SetNumber:
		return "number"
	case SetString:
		return "string"
	case SetNodes:
		return "node-set"
	case SetSchemaNodes:
		return "schema-node-set"
	default:
		return "unknown"
	}
}

// NodeKind is the axis type of a node-set entry.
type NodeKind uint8

const (
	// NodeRoot is the unrestricted document root.
	NodeRoot NodeKind = iota
	// NodeRootConfig is the document root filtered to configuration nodes.
	// The restriction propagates through every subtree step.
	NodeRootConfig
	// NodeElem is a data element (container, list entry, leaf, leaf-list entry).
	NodeElem
	// NodeText is the text value of a leaf or leaf-list entry.
	NodeText
	// NodeAttr is a metadata annotation.
	NodeAttr
)

// String returns a short name of the kind.
func (k NodeKind) String() string {
	switch k {
	case NodeRoot:
		return "root"
	case NodeRootConfig:
		return "config root"
	case NodeElem:
		return "element"
	case NodeText:
		return "text"
	case NodeAttr:
		return "attribute"
	default:
		return "unknown"
	}
}

// NodeEntry is one member of a node-set: a non-owning reference into the
// externally owned data tree, its axis kind, and its document position once
// assigned.
type NodeEntry struct {
	Node *tree.DataNode // referenced node; nil only for the root of an empty tree
	Attr *tree.Attr     // set for NodeAttr entries
	Kind NodeKind

	pos  uint32 // document position of Node; 0 while unassigned
	sub  uint16 // attribute declaration index for NodeAttr entries
	rank uint8  // kind rank used as document-order tie break
}

// SCtx is the multi-valued "in context" marker of a schema-node-set entry.
// During schema analysis several hypothetical context states coexist; move-to
// primitives operate on entries marked SCtxOK, produce entries marked
// SCtxNew, and the dispatcher flips SCtxNew to SCtxOK between steps.
type SCtx uint8

const (
	// SCtxNone marks a node atomized along the way but no longer in context.
	SCtxNone SCtx = iota
	// SCtxOK marks a node in the current evaluation context.
	SCtxOK
	// SCtxNew marks a node produced by the step being evaluated.
	SCtxNew
	// SCtxStart marks the original context node, kept for current().
	SCtxStart
)

// SchemaEntry is one member of a schema-node-set.
type SchemaEntry struct {
	SNode *tree.SchemaNode // nil for the root entry
	Kind  NodeKind         // NodeRoot, NodeRootConfig or NodeElem
	InCtx SCtx
}

// hashThreshold is the node-set size at which duplicate detection switches
// from a linear scan to a hash index.
const hashThreshold = 32

type nodeKey struct {
	node *tree.DataNode
	attr *tree.Attr
	kind NodeKind
}

// Set is the evaluator's single working value: a tagged variant over empty,
// boolean, number, string, node-set and schema-node-set.
//
// A Set is created empty at the start of one evaluation, mutated in place as
// location steps and operators are applied, and discarded at the end. It is
// not safe for concurrent use.
type Set struct {
	Type  SetType
	Bool  bool
	Num   float64
	Str   string
	Nodes []NodeEntry
	SNode []SchemaEntry

	ht map[nodeKey]struct{} // duplicate index for large node-sets
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{}
}

// clear resets the set to empty, keeping backing arrays for reuse.
func (s *Set) clear() {
	s.Type = SetEmpty
	s.Bool = false
	s.Num = 0
	s.Str = ""
	s.Nodes = s.Nodes[:0]
	s.SNode = s.SNode[:0]
	s.ht = nil
}

func (s *Set) setBoolean(b bool) {
	s.clear()
	s.Type = SetBoolean
	s.Bool = b
}

func (s *Set) setNumber(n float64) {
	s.clear()
	s.Type = SetNumber
	s.Num = n
}

func (s *Set) setString(str string) {
	s.clear()
	s.Type = SetString
	s.Str = str
}

// setNodeSet resets the set to an empty node-set.
func (s *Set) setNodeSet() {
	s.clear()
	s.Type = SetNodes
}

// setSchemaSet resets the set to an empty schema-node-set.
func (s *Set) setSchemaSet() {
	s.clear()
	s.Type = SetSchemaNodes
}

func (s *Set) key(e NodeEntry) nodeKey {
	return nodeKey{node: e.Node, attr: e.Attr, kind: e.Kind}
}

// contains reports whether an equal (node, attr, kind) entry is present.
func (s *Set) contains(e NodeEntry) bool {
	if s.ht != nil {
		_, ok := s.ht[s.key(e)]
		return ok
	}
	for i := range s.Nodes {
		if s.Nodes[i].Node == e.Node && s.Nodes[i].Attr == e.Attr && s.Nodes[i].Kind == e.Kind {
			return true
		}
	}
	return false
}

// addNode appends a node entry unless it is already present. Returns true
// if the entry was added.
func (s *Set) addNode(e NodeEntry) bool {
	if s.contains(e) {
		return false
	}
	s.Nodes = append(s.Nodes, e)
	if s.ht == nil && len(s.Nodes) >= hashThreshold {
		s.buildIndex()
	} else if s.ht != nil {
		s.ht[s.key(e)] = struct{}{}
	}
	return true
}

// appendNode appends without duplicate checking. Used where the produced
// entries are known distinct; duplicates are permitted transiently and
// removed by the next sort.
func (s *Set) appendNode(e NodeEntry) {
	s.Nodes = append(s.Nodes, e)
	if s.ht != nil {
		s.ht[s.key(e)] = struct{}{}
	}
}

func (s *Set) buildIndex() {
	s.ht = make(map[nodeKey]struct{}, len(s.Nodes)*2)
	for i := range s.Nodes {
		s.ht[s.key(s.Nodes[i])] = struct{}{}
	}
}

// replaceNodes swaps in a new entry slice and rebuilds the index if one is
// active.
func (s *Set) replaceNodes(entries []NodeEntry) {
	s.Nodes = entries
	if s.ht != nil || len(entries) >= hashThreshold {
		s.buildIndex()
	}
}

// findSNode returns the index of the (snode, kind) entry, or -1.
func (s *Set) findSNode(sn *tree.SchemaNode, kind NodeKind) int {
	for i := range s.SNode {
		if s.SNode[i].SNode == sn && s.SNode[i].Kind == kind {
			return i
		}
	}
	return -1
}

// addSNode inserts a schema entry or merges the in-context marker into an
// existing one; merging never downgrades a marker. Returns the entry index.
//
// Schema-node-sets have no document order: union is by schema-node identity
// only, because schema trees are not instantiated.
func (s *Set) addSNode(sn *tree.SchemaNode, kind NodeKind, inCtx SCtx) int {
	if i := s.findSNode(sn, kind); i >= 0 {
		if s.SNode[i].InCtx < inCtx {
			s.SNode[i].InCtx = inCtx
		}
		return i
	}
	s.SNode = append(s.SNode, SchemaEntry{SNode: sn, Kind: kind, InCtx: inCtx})
	return len(s.SNode) - 1
}

// mergeSNodes folds all entries of other into s.
func (s *Set) mergeSNodes(other *Set) {
	for i := range other.SNode {
		e := other.SNode[i]
		inCtx := e.InCtx
		if inCtx == SCtxStart {
			inCtx = SCtxNone
		}
		s.addSNode(e.SNode, e.Kind, inCtx)
	}
}

// clearSNodeCtx retires every entry to atomized-only. Used when an
// expression's value is not a node-set, so no schema node remains in
// context, but everything visited stays recorded.
func (s *Set) clearSNodeCtx() {
	for i := range s.SNode {
		s.SNode[i].InCtx = SCtxNone
	}
}

// commitSNodeCtx flips freshly produced entries into the current context and
// retires entries consumed by the finished step.
func (s *Set) commitSNodeCtx() {
	for i := range s.SNode {
		switch s.SNode[i].InCtx {
		case SCtxNew:
			s.SNode[i].InCtx = SCtxOK
		}
	}
}

// SchemaNodes returns the schema nodes currently in context, plus all nodes
// the expression atomized along the way when all is true.
func (s *Set) SchemaNodes(all bool) []*tree.SchemaNode {
	var out []*tree.SchemaNode
	for i := range s.SNode {
		e := s.SNode[i]
		if e.SNode == nil {
			continue
		}
		if all || e.InCtx == SCtxOK || e.InCtx == SCtxNew || e.InCtx == SCtxStart {
			out = append(out, e.SNode)
		}
	}
	return out
}

// Len returns the number of entries for node-set and schema-node-set values,
// 0 for empty and 1 for scalar values.
func (s *Set) Len() int {
	switch s.Type {
	case SetEmpty:
		return 0
	case SetNodes:
		return len(s.Nodes)
	case SetSchemaNodes:
		return len(s.SNode)
	default:
		return 1
	}
}
