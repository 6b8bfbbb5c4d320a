package evaluator

import (
	"sort"

	"github.com/yangml/yangpath/pkg/tree"
)

// Kind ranks used as document-order tie breaks on the same node: the
// element itself first, then its attributes in declaration order, then its
// text node.
const (
	rankElem uint8 = iota
	rankAttr
	rankText
)

// docOrder lazily assigns document positions to data nodes.
//
// Positions are produced by one depth-first walk from the evaluation root
// and cached. If the comparator is asked about a node outside the cached
// walk the cache is invalidated and rebuilt, so positions always agree with
// a full traversal of the tree currently containing the node.
type docOrder struct {
	root *tree.DataNode
	pos  map[*tree.DataNode]uint32
}

func newDocOrder(root *tree.DataNode) *docOrder {
	return &docOrder{root: root}
}

// position returns the document position of n, walking the tree on first
// use. Position numbering starts at 1; 0 is reserved for the root entries.
func (o *docOrder) position(n *tree.DataNode) uint32 {
	if n == nil {
		return 0
	}
	if o.pos == nil {
		o.walk()
	}
	if p, ok := o.pos[n]; ok {
		return p
	}
	// Node outside the cached walk: the tree changed or the evaluation
	// crossed into a sibling tree. Rebuild from the node's own root.
	o.root = n.Root()
	o.walk()
	return o.pos[n]
}

func (o *docOrder) walk() {
	o.pos = make(map[*tree.DataNode]uint32)
	var next uint32 = 1
	for top := o.root; top != nil; top = top.NextSibling() {
		next = o.walkNode(top, next)
	}
}

func (o *docOrder) walkNode(n *tree.DataNode, next uint32) uint32 {
	o.pos[n] = next
	next++
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		next = o.walkNode(c, next)
	}
	return next
}

// assignPositions fills the position and tie-break fields of every entry.
func (o *docOrder) assignPositions(entries []NodeEntry) {
	for i := range entries {
		e := &entries[i]
		switch e.Kind {
		case NodeRoot, NodeRootConfig:
			e.pos, e.rank, e.sub = 0, rankElem, 0
		case NodeElem:
			e.pos, e.rank, e.sub = o.position(e.Node), rankElem, 0
		case NodeText:
			e.pos, e.rank, e.sub = o.position(e.Node), rankText, 0
		case NodeAttr:
			e.pos, e.rank = o.position(e.Node), rankAttr
			e.sub = 0
			for idx, a := range e.Node.Attrs() {
				if a == e.Attr {
					e.sub = uint16(idx)
					break
				}
			}
		}
	}
}

// entryBefore is the document-order comparator over assigned positions.
func entryBefore(a, b *NodeEntry) bool {
	if a.pos != b.pos {
		return a.pos < b.pos
	}
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.sub < b.sub
}

func entryEqual(a, b *NodeEntry) bool {
	return a.Node == b.Node && a.Attr == b.Attr && a.Kind == b.Kind
}

// sortDocOrder sorts the node-set into document order and removes
// duplicates. Sorting an already sorted set is a no-op; the operation is
// idempotent.
func (s *Set) sortDocOrder(o *docOrder) {
	if s.Type != SetNodes || len(s.Nodes) < 2 {
		return
	}
	o.assignPositions(s.Nodes)
	sort.SliceStable(s.Nodes, func(i, j int) bool {
		return entryBefore(&s.Nodes[i], &s.Nodes[j])
	})

	// Adjacent duplicates collapse after the sort.
	out := s.Nodes[:1]
	for i := 1; i < len(s.Nodes); i++ {
		if !entryEqual(&s.Nodes[i], &out[len(out)-1]) {
			out = append(out, s.Nodes[i])
		}
	}
	s.replaceNodes(out)
}

// mergeUnion merges other into s, preserving document order and removing
// duplicates. Both operands are sorted first, so the merge reuses the
// already-sorted invariant instead of sorting the concatenation.
func (s *Set) mergeUnion(other *Set, o *docOrder) {
	s.sortDocOrder(o)
	other.sortDocOrder(o)
	if len(other.Nodes) == 0 {
		return
	}
	if len(s.Nodes) == 0 {
		s.replaceNodes(append(s.Nodes[:0], other.Nodes...))
		return
	}
	o.assignPositions(s.Nodes)
	o.assignPositions(other.Nodes)

	merged := make([]NodeEntry, 0, len(s.Nodes)+len(other.Nodes))
	i, j := 0, 0
	for i < len(s.Nodes) && j < len(other.Nodes) {
		a, b := &s.Nodes[i], &other.Nodes[j]
		switch {
		case entryEqual(a, b):
			merged = append(merged, *a)
			i++
			j++
		case entryBefore(a, b):
			merged = append(merged, *a)
			i++
		default:
			merged = append(merged, *b)
			j++
		}
	}
	merged = append(merged, s.Nodes[i:]...)
	merged = append(merged, other.Nodes[j:]...)
	s.replaceNodes(merged)
}
