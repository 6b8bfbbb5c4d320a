// Package tree provides the data-tree and schema-tree node model the
// yangpath evaluator navigates.
//
// The evaluator consumes nodes only through the navigation primitives
// defined here (first child, next sibling, parent, attributes, qualified
// name, config flag) and never allocates, frees, or mutates them. Trees are
// built by the surrounding library or, for instance documents, by the YAML
// loader in this package.
package tree

import "strings"

// Module describes a YANG module: its name, XML namespace, and the prefix
// table used to resolve prefixed names inside path expressions.
type Module struct {
	Name      string
	Namespace string
	Prefix    string

	imports    map[string]*Module
	identities map[string]*Identity
}

// NewModule creates a module with the given name, namespace and prefix.
func NewModule(name, namespace, prefix string) *Module {
	return &Module{Name: name, Namespace: namespace, Prefix: prefix}
}

// AddImport registers an imported module under the given prefix.
func (m *Module) AddImport(prefix string, imp *Module) {
	if m.imports == nil {
		m.imports = make(map[string]*Module)
	}
	m.imports[prefix] = imp
}

// ResolvePrefix resolves a prefix against the module's own prefix and its
// import table. Returns nil if the prefix is unknown. The empty prefix
// resolves to the module itself.
func (m *Module) ResolvePrefix(prefix string) *Module {
	if m == nil {
		return nil
	}
	if prefix == "" || prefix == m.Prefix {
		return m
	}
	return m.imports[prefix]
}

// AddIdentity registers an identity defined by this module and returns it.
func (m *Module) AddIdentity(name string, bases ...*Identity) *Identity {
	if m.identities == nil {
		m.identities = make(map[string]*Identity)
	}
	id := &Identity{Module: m, Name: name, Bases: bases}
	m.identities[name] = id
	return id
}

// ResolveIdentity resolves an identity reference value of the form "name"
// or "prefix:name" against this module's prefix table. Returns nil if the
// prefix or the identity is unknown.
func (m *Module) ResolveIdentity(value string) *Identity {
	if m == nil {
		return nil
	}
	target := m
	name := value
	if i := strings.IndexByte(value, ':'); i >= 0 {
		target = m.ResolvePrefix(value[:i])
		if target == nil {
			return nil
		}
		name = value[i+1:]
	}
	return target.identities[name]
}

// Identity is a YANG identity with its inheritance bases.
type Identity struct {
	Module *Module
	Name   string
	Bases  []*Identity
}

// DerivedFrom reports whether i is (transitively) derived from base.
// An identity is not considered derived from itself.
func (i *Identity) DerivedFrom(base *Identity) bool {
	for _, b := range i.Bases {
		if b == base || b.DerivedFrom(base) {
			return true
		}
	}
	return false
}

// Type carries the leaf type information needed by schema analysis and the
// YANG XPath functions (deref, derived-from, bit-is-set, enum-value).
type Type struct {
	Name         string           // base type name: "string", "uint32", "leafref", ...
	LeafrefPath  string           // for "leafref": the target path expression
	IdentityBase *Identity        // for "identityref": the required base
	Bits         []string         // for "bits": defined bit names
	Enums        map[string]int64 // for "enumeration": name to value
}

// SchemaKind identifies the statement kind of a schema node.
type SchemaKind uint8

const (
	SchemaContainer SchemaKind = iota
	SchemaList
	SchemaLeaf
	SchemaLeafList
	SchemaChoice
	SchemaCase
	SchemaAnyData
	SchemaAnyXML
	SchemaRPC
	SchemaAction
	SchemaNotification
	SchemaInput
	SchemaOutput
)

// String returns the YANG statement keyword of the kind.
func (k SchemaKind) String() string {
	switch k {
	case SchemaContainer:
		return "container"
	case SchemaList:
		return "list"
	case SchemaLeaf:
		return "leaf"
	case SchemaLeafList:
		return "leaf-list"
	case SchemaChoice:
		return "choice"
	case SchemaCase:
		return "case"
	case SchemaAnyData:
		return "anydata"
	case SchemaAnyXML:
		return "anyxml"
	case SchemaRPC:
		return "rpc"
	case SchemaAction:
		return "action"
	case SchemaNotification:
		return "notification"
	case SchemaInput:
		return "input"
	case SchemaOutput:
		return "output"
	default:
		return "unknown"
	}
}

// SchemaNode is one node of the compiled schema tree.
type SchemaNode struct {
	Module *Module
	Name   string
	Kind   SchemaKind
	Config bool
	Type   *Type    // leaf/leaf-list type, nil otherwise
	Keys   []string // list key leaf names

	parent      *SchemaNode
	firstChild  *SchemaNode
	lastChild   *SchemaNode
	prevSibling *SchemaNode
	nextSibling *SchemaNode
}

// NewSchemaNode creates a detached schema node. Config defaults to true.
func NewSchemaNode(mod *Module, name string, kind SchemaKind) *SchemaNode {
	return &SchemaNode{Module: mod, Name: name, Kind: kind, Config: true}
}

// Parent returns the parent schema node, or nil for a top-level node.
func (s *SchemaNode) Parent() *SchemaNode { return s.parent }

// FirstChild returns the first child, or nil.
func (s *SchemaNode) FirstChild() *SchemaNode { return s.firstChild }

// NextSibling returns the next sibling, or nil.
func (s *SchemaNode) NextSibling() *SchemaNode { return s.nextSibling }

// FirstSibling returns the first node of s's sibling list.
func (s *SchemaNode) FirstSibling() *SchemaNode {
	n := s
	for n.prevSibling != nil {
		n = n.prevSibling
	}
	return n
}

// Root returns the first node of the top-level sibling list of s's tree.
func (s *SchemaNode) Root() *SchemaNode {
	n := s
	for n.parent != nil {
		n = n.parent
	}
	return n.FirstSibling()
}

// AddChild appends child as the last child of s and returns child.
// The child inherits the config flag unless it was set explicitly false.
func (s *SchemaNode) AddChild(child *SchemaNode) *SchemaNode {
	child.parent = s
	if !s.Config {
		child.Config = false
	}
	if s.lastChild == nil {
		s.firstChild = child
	} else {
		s.lastChild.nextSibling = child
		child.prevSibling = s.lastChild
	}
	s.lastChild = child
	return child
}

// InsertSibling appends sib at the end of s's sibling list and returns sib.
// Used for top-level schema nodes that have no common parent.
func (s *SchemaNode) InsertSibling(sib *SchemaNode) *SchemaNode {
	n := s
	for n.nextSibling != nil {
		n = n.nextSibling
	}
	n.nextSibling = sib
	sib.prevSibling = n
	sib.parent = n.parent
	return sib
}

// IsLeaf reports whether the node carries a text value in data.
func (s *SchemaNode) IsLeaf() bool {
	return s.Kind == SchemaLeaf || s.Kind == SchemaLeafList
}

// IsOpaque reports whether the node's data subtree is opaque to path
// evaluation (anydata/anyxml).
func (s *SchemaNode) IsOpaque() bool {
	return s.Kind == SchemaAnyData || s.Kind == SchemaAnyXML
}

// Attr is a metadata annotation attached to a data node.
type Attr struct {
	Module *Module
	Name   string
	Value  string

	parent *DataNode
}

// Parent returns the data node the attribute is attached to.
func (a *Attr) Parent() *DataNode { return a.parent }

// DataNode is one node of an instance-data tree.
//
// The tree is externally owned; the evaluator holds non-owning references
// and treats every field except WhenPending and InUse as immutable during
// evaluation.
type DataNode struct {
	Schema *SchemaNode
	Value  string // leaf/leaf-list text value

	// WhenPending marks a node whose "when" applicability has not been
	// decided yet by the external validator. Crossing such a node during
	// a when-mode evaluation yields the retry signal.
	WhenPending bool

	// InUse marks a placeholder node under construction elsewhere; it is
	// invisible to path evaluation.
	InUse bool

	parent      *DataNode
	firstChild  *DataNode
	lastChild   *DataNode
	prevSibling *DataNode
	nextSibling *DataNode
	attrs       []*Attr
}

// NewDataNode creates a detached data node for the given schema node.
func NewDataNode(schema *SchemaNode) *DataNode {
	return &DataNode{Schema: schema}
}

// NewLeaf creates a detached leaf data node with a value.
func NewLeaf(schema *SchemaNode, value string) *DataNode {
	return &DataNode{Schema: schema, Value: value}
}

// Parent returns the parent data node, or nil for a top-level node.
func (d *DataNode) Parent() *DataNode { return d.parent }

// FirstChild returns the first child, or nil.
func (d *DataNode) FirstChild() *DataNode { return d.firstChild }

// NextSibling returns the next sibling, or nil.
func (d *DataNode) NextSibling() *DataNode { return d.nextSibling }

// PrevSibling returns the previous sibling, or nil.
func (d *DataNode) PrevSibling() *DataNode { return d.prevSibling }

// FirstSibling returns the first node of d's sibling list (d itself if it
// has no previous sibling).
func (d *DataNode) FirstSibling() *DataNode {
	n := d
	for n.prevSibling != nil {
		n = n.prevSibling
	}
	return n
}

// Root returns the first node of the top-level sibling list of d's tree.
func (d *DataNode) Root() *DataNode {
	n := d
	for n.parent != nil {
		n = n.parent
	}
	return n.FirstSibling()
}

// AddChild appends child as the last child of d and returns child.
func (d *DataNode) AddChild(child *DataNode) *DataNode {
	child.parent = d
	if d.lastChild == nil {
		d.firstChild = child
	} else {
		d.lastChild.nextSibling = child
		child.prevSibling = d.lastChild
	}
	d.lastChild = child
	return child
}

// InsertSibling appends sib at the end of d's sibling list and returns sib.
// Used for top-level nodes that have no common parent.
func (d *DataNode) InsertSibling(sib *DataNode) *DataNode {
	n := d
	for n.nextSibling != nil {
		n = n.nextSibling
	}
	n.nextSibling = sib
	sib.prevSibling = n
	sib.parent = n.parent
	return sib
}

// AddAttr attaches a metadata annotation to d and returns it.
func (d *DataNode) AddAttr(mod *Module, name, value string) *Attr {
	a := &Attr{Module: mod, Name: name, Value: value, parent: d}
	d.attrs = append(d.attrs, a)
	return a
}

// Attrs returns the node's metadata annotations in declaration order.
func (d *DataNode) Attrs() []*Attr { return d.attrs }

// Name returns the node's schema name.
func (d *DataNode) Name() string {
	if d.Schema == nil {
		return ""
	}
	return d.Schema.Name
}

// Module returns the node's module.
func (d *DataNode) Module() *Module {
	if d.Schema == nil {
		return nil
	}
	return d.Schema.Module
}

// IsLeaf reports whether the node carries a text value.
func (d *DataNode) IsLeaf() bool {
	return d.Schema != nil && d.Schema.IsLeaf()
}

// IsConfig reports whether the node represents configuration.
func (d *DataNode) IsConfig() bool {
	return d.Schema == nil || d.Schema.Config
}

// IsOpaque reports whether the node's subtree is opaque to path evaluation.
func (d *DataNode) IsOpaque() bool {
	return d.Schema != nil && d.Schema.IsOpaque()
}

// ChildValue returns the value of the first child leaf with the given name,
// or "" if there is none. Convenience for callers inspecting list keys.
func (d *DataNode) ChildValue(name string) string {
	for c := d.firstChild; c != nil; c = c.nextSibling {
		if c.Name() == name && c.IsLeaf() {
			return c.Value
		}
	}
	return ""
}
