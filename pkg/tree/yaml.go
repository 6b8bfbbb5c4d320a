package tree

import (
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"
)

// LoadYAML builds an instance-data tree from a YAML document.
//
// Without a compiled schema the loader synthesizes schema nodes on the fly:
// mappings become containers, sequences of mappings become list entries,
// sequences of scalars become leaf-lists, and scalars become leaves. Entries
// of the same list share one synthesized schema node. All synthesized nodes
// belong to mod and are config.
//
// The returned node is the first node of the top-level sibling list, or nil
// for an empty document.
func LoadYAML(data []byte, mod *Module) (*DataNode, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode YAML document: %w", err)
	}

	l := &yamlLoader{mod: mod, schemas: make(map[schemaKey]*SchemaNode)}

	var first *DataNode
	for _, key := range sortedKeys(doc) {
		nodes, err := l.build(nil, key, doc[key])
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			if first == nil {
				first = n
			} else {
				first.InsertSibling(n)
			}
		}
	}
	return first, nil
}

type schemaKey struct {
	parent *SchemaNode
	name   string
}

type yamlLoader struct {
	mod     *Module
	schemas map[schemaKey]*SchemaNode
}

// schemaFor returns the synthesized schema node for name under parent,
// creating it with the given kind on first use.
func (l *yamlLoader) schemaFor(parent *SchemaNode, name string, kind SchemaKind) *SchemaNode {
	key := schemaKey{parent: parent, name: name}
	if s, ok := l.schemas[key]; ok {
		return s
	}
	s := NewSchemaNode(l.mod, name, kind)
	if parent != nil {
		parent.AddChild(s)
	}
	l.schemas[key] = s
	return s
}

// build converts one YAML value into data nodes named name under parent.
// Sequences yield one node per entry, everything else exactly one.
func (l *yamlLoader) build(parent *DataNode, name string, value any) ([]*DataNode, error) {
	var parentSchema *SchemaNode
	if parent != nil {
		parentSchema = parent.Schema
	}

	switch v := value.(type) {
	case map[string]any:
		n := NewDataNode(l.schemaFor(parentSchema, name, SchemaContainer))
		attach(parent, n)
		for _, key := range sortedKeys(v) {
			if _, err := l.build(n, key, v[key]); err != nil {
				return nil, err
			}
		}
		return []*DataNode{n}, nil

	case []any:
		var nodes []*DataNode
		for _, item := range v {
			switch item.(type) {
			case map[string]any, []any:
				sub, err := l.build(parent, name, item)
				if err != nil {
					return nil, err
				}
				// Entries of the same sequence share a list schema node.
				for _, n := range sub {
					n.Schema.Kind = SchemaList
				}
				nodes = append(nodes, sub...)
			default:
				n := NewLeaf(l.schemaFor(parentSchema, name, SchemaLeafList), scalarString(item))
				attach(parent, n)
				nodes = append(nodes, n)
			}
		}
		return nodes, nil

	default:
		n := NewLeaf(l.schemaFor(parentSchema, name, SchemaLeaf), scalarString(v))
		attach(parent, n)
		return []*DataNode{n}, nil
	}
}

func attach(parent, child *DataNode) {
	if parent != nil {
		parent.AddChild(child)
	}
}

func scalarString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
