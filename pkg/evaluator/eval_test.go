package evaluator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/yangml/yangpath/pkg/tree"
	"github.com/yangml/yangpath/pkg/types"
)

// fixture is a small interfaces tree:
//
//	interfaces                    (config)
//	└── interface[name]
//	    eth0: mtu=1500 enabled=true  type=net:ethernet flags="up broadcast"
//	          speed=fast peer=eth1   (attrs last-modified=2020, lang=en-US)
//	    eth1: mtu=9000 enabled=false
//	    lo:   mtu=65536
//	state                         (no config)
//	└── counter "42"
type fixture struct {
	mod *tree.Module

	ifs    *tree.DataNode // interfaces container
	state  *tree.DataNode
	eth0   *tree.DataNode
	eth1   *tree.DataNode
	lo     *tree.DataNode
	sIface *tree.SchemaNode
	sName  *tree.SchemaNode
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mod := tree.NewModule("net", "urn:net", "net")
	ifType := mod.AddIdentity("interface-type")
	mod.AddIdentity("ethernet", ifType)

	interfaces := tree.NewSchemaNode(mod, "interfaces", tree.SchemaContainer)
	iface := interfaces.AddChild(tree.NewSchemaNode(mod, "interface", tree.SchemaList))
	iface.Keys = []string{"name"}
	name := iface.AddChild(tree.NewSchemaNode(mod, "name", tree.SchemaLeaf))
	name.Type = &tree.Type{Name: "string"}
	mtu := iface.AddChild(tree.NewSchemaNode(mod, "mtu", tree.SchemaLeaf))
	mtu.Type = &tree.Type{Name: "uint16"}
	enabled := iface.AddChild(tree.NewSchemaNode(mod, "enabled", tree.SchemaLeaf))
	enabled.Type = &tree.Type{Name: "boolean"}
	typ := iface.AddChild(tree.NewSchemaNode(mod, "type", tree.SchemaLeaf))
	typ.Type = &tree.Type{Name: "identityref", IdentityBase: ifType}
	flags := iface.AddChild(tree.NewSchemaNode(mod, "flags", tree.SchemaLeaf))
	flags.Type = &tree.Type{Name: "bits", Bits: []string{"up", "broadcast", "multicast"}}
	speed := iface.AddChild(tree.NewSchemaNode(mod, "speed", tree.SchemaLeaf))
	speed.Type = &tree.Type{Name: "enumeration", Enums: map[string]int64{"slow": 0, "fast": 1}}
	peer := iface.AddChild(tree.NewSchemaNode(mod, "peer", tree.SchemaLeaf))
	peer.Type = &tree.Type{Name: "leafref", LeafrefPath: "../../interface/name"}

	state := tree.NewSchemaNode(mod, "state", tree.SchemaContainer)
	state.Config = false
	counter := state.AddChild(tree.NewSchemaNode(mod, "counter", tree.SchemaLeaf))
	counter.Type = &tree.Type{Name: "uint64"}
	interfaces.InsertSibling(state)

	f := &fixture{mod: mod, sIface: iface, sName: name}

	f.ifs = tree.NewDataNode(interfaces)

	f.eth0 = f.ifs.AddChild(tree.NewDataNode(iface))
	f.eth0.AddChild(tree.NewLeaf(name, "eth0"))
	f.eth0.AddChild(tree.NewLeaf(mtu, "1500"))
	f.eth0.AddChild(tree.NewLeaf(enabled, "true"))
	f.eth0.AddChild(tree.NewLeaf(typ, "net:ethernet"))
	f.eth0.AddChild(tree.NewLeaf(flags, "up broadcast"))
	f.eth0.AddChild(tree.NewLeaf(speed, "fast"))
	f.eth0.AddChild(tree.NewLeaf(peer, "eth1"))
	f.eth0.AddAttr(mod, "last-modified", "2020")
	f.eth0.AddAttr(mod, "lang", "en-US")

	f.eth1 = f.ifs.AddChild(tree.NewDataNode(iface))
	f.eth1.AddChild(tree.NewLeaf(name, "eth1"))
	f.eth1.AddChild(tree.NewLeaf(mtu, "9000"))
	f.eth1.AddChild(tree.NewLeaf(enabled, "false"))

	f.lo = f.ifs.AddChild(tree.NewDataNode(iface))
	f.lo.AddChild(tree.NewLeaf(name, "lo"))
	f.lo.AddChild(tree.NewLeaf(mtu, "65536"))

	f.state = tree.NewDataNode(state)
	f.ifs.InsertSibling(f.state)
	f.state.AddChild(tree.NewLeaf(counter, "42"))

	return f
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (f *fixture) eval(t *testing.T, expr string, ctxNode *tree.DataNode, opts ...EvalOption) *Set {
	t.Helper()
	set, err := f.evalErr(t, expr, ctxNode, opts...)
	if err != nil {
		t.Fatalf("Eval(%q): %v", expr, err)
	}
	return set
}

func (f *fixture) evalErr(t *testing.T, expr string, ctxNode *tree.DataNode, opts ...EvalOption) (*Set, error) {
	t.Helper()
	opts = append([]EvalOption{WithModule(f.mod), WithLogger(testLogger())}, opts...)
	e := New(opts...)
	return e.EvalString(context.Background(), expr, ctxNode)
}

func (f *fixture) wantNumber(t *testing.T, expr string, ctxNode *tree.DataNode, want float64) {
	t.Helper()
	set := f.eval(t, expr, ctxNode)
	if set.Type != SetNumber {
		t.Fatalf("Eval(%q) = %s, want number", expr, set.Type)
	}
	if math.IsNaN(want) {
		if !math.IsNaN(set.Num) {
			t.Errorf("Eval(%q) = %v, want NaN", expr, set.Num)
		}
		return
	}
	if set.Num != want {
		t.Errorf("Eval(%q) = %v, want %v", expr, set.Num, want)
	}
}

func (f *fixture) wantBool(t *testing.T, expr string, ctxNode *tree.DataNode, want bool) {
	t.Helper()
	set := f.eval(t, expr, ctxNode)
	if set.Type != SetBoolean {
		t.Fatalf("Eval(%q) = %s, want boolean", expr, set.Type)
	}
	if set.Bool != want {
		t.Errorf("Eval(%q) = %v, want %v", expr, set.Bool, want)
	}
}

func (f *fixture) wantString(t *testing.T, expr string, ctxNode *tree.DataNode, want string) {
	t.Helper()
	set := f.eval(t, expr, ctxNode)
	if set.Type != SetString {
		t.Fatalf("Eval(%q) = %s, want string", expr, set.Type)
	}
	if set.Str != want {
		t.Errorf("Eval(%q) = %q, want %q", expr, set.Str, want)
	}
}

// wantNodes checks the node-set length and, when first is non-empty, the
// string value of the first node in document order.
func (f *fixture) wantNodes(t *testing.T, expr string, ctxNode *tree.DataNode, length int, first string) {
	t.Helper()
	set := f.eval(t, expr, ctxNode)
	if set.Type != SetNodes {
		t.Fatalf("Eval(%q) = %s, want node-set", expr, set.Type)
	}
	if len(set.Nodes) != length {
		t.Fatalf("Eval(%q): %d nodes, want %d", expr, len(set.Nodes), length)
	}
	if first != "" {
		if err := set.Cast(SetString, ctxNode); err != nil {
			t.Fatalf("Eval(%q): cast: %v", expr, err)
		}
		if set.Str != first {
			t.Errorf("Eval(%q): first value %q, want %q", expr, set.Str, first)
		}
	}
}

func TestEvalArithmetic(t *testing.T) {
	f := newFixture(t)
	f.wantNumber(t, "1 + 1", f.eth0, 2)
	f.wantNumber(t, "7 - 10", f.eth0, -3)
	f.wantNumber(t, "2 * 3 + 4", f.eth0, 10)
	f.wantNumber(t, "2 + 3 * 4", f.eth0, 14)
	f.wantNumber(t, "(2 + 3) * 4", f.eth0, 20)
	f.wantNumber(t, "10 div 4", f.eth0, 2.5)
	f.wantNumber(t, "10 mod 3", f.eth0, 1)
	f.wantNumber(t, "-5 + 3", f.eth0, -2)
	f.wantNumber(t, "- -5", f.eth0, 5)
	f.wantNumber(t, "-mtu", f.eth0, -1500)
	f.wantNumber(t, "mtu mod 7", f.eth0, 2)
	f.wantNumber(t, "number(mtu) div 2", f.eth0, 750)
	f.wantNumber(t, "1 - 2 - 3", f.eth0, -4)
	f.wantNumber(t, "0 div 0", f.eth0, math.NaN())
	f.wantString(t, "string(5 div 0)", f.eth0, "Infinity")
	f.wantString(t, "string(0 div 0)", f.eth0, "NaN")
	f.wantNumber(t, "'3' + '4'", f.eth0, 7)
	f.wantNumber(t, "'x' + 1", f.eth0, math.NaN())
}

func TestEvalComparisons(t *testing.T) {
	f := newFixture(t)
	f.wantBool(t, "'a' = 'a'", f.eth0, true)
	f.wantBool(t, "'a' = 'b'", f.eth0, false)
	f.wantBool(t, "'a' != 'b'", f.eth0, true)
	f.wantBool(t, "1 < 2", f.eth0, true)
	f.wantBool(t, "2 <= 2", f.eth0, true)
	f.wantBool(t, "2 > 3", f.eth0, false)
	f.wantBool(t, "'abc' > 2", f.eth0, false) // NaN comparisons are false
	f.wantBool(t, "'abc' != 2", f.eth0, true)
	f.wantBool(t, "1 = true()", f.eth0, true)
	f.wantBool(t, "1 < 2 = true()", f.eth0, true)

	// Existential node-set semantics.
	f.wantBool(t, "interface/mtu = 9000", f.ifs, true)
	f.wantBool(t, "interface/mtu = 1", f.ifs, false)
	f.wantBool(t, "interface/mtu != 9000", f.ifs, true) // some node differs
	f.wantBool(t, "interface/mtu > 60000", f.ifs, true)
	f.wantBool(t, "mtu = '1500'", f.eth0, true)
	f.wantBool(t, "interface/name = interface/peer", f.ifs, true) // eth1 on both sides
	// Empty node-set compares false against everything but a false boolean.
	f.wantBool(t, "missing = 'x'", f.eth0, false)
	f.wantBool(t, "missing = 0", f.eth0, false)
	f.wantBool(t, "boolean(missing) = false()", f.eth0, true)
}

func TestEvalLogic(t *testing.T) {
	f := newFixture(t)
	f.wantBool(t, "true() and false()", f.eth0, false)
	f.wantBool(t, "true() or false()", f.eth0, true)
	f.wantBool(t, "2 > 3 or 1 < 2", f.eth0, true)
	f.wantBool(t, "a or b or 1", f.eth0, true)
	// Short-circuit: the division is never evaluated.
	f.wantBool(t, "'a' = 'a' or 1 div 0 = 5", f.eth0, true)
	f.wantBool(t, "'a' = 'b' and 1 div 0 = 5", f.eth0, false)
	f.wantBool(t, "mtu and enabled", f.eth0, true)
}

func TestEvalLocationPaths(t *testing.T) {
	f := newFixture(t)
	f.wantNodes(t, ".", f.eth0, 1, "")
	f.wantNodes(t, "..", f.eth0, 1, "")
	f.wantNodes(t, "mtu", f.eth0, 1, "1500")
	f.wantNodes(t, "../interface", f.eth0, 3, "")
	f.wantNodes(t, "/interfaces/interface", f.eth0, 3, "")
	f.wantNodes(t, "/interfaces/interface/name", f.eth0, 3, "eth0")
	f.wantNodes(t, "/", f.eth0, 1, "")
	f.wantNodes(t, "*", f.eth0, 7, "eth0")
	f.wantNodes(t, "net:mtu", f.eth0, 1, "1500")
	f.wantNodes(t, "net:*", f.eth0, 7, "eth0")
	f.wantNodes(t, "missing", f.eth0, 0, "")
	f.wantNodes(t, "//name", f.eth0, 3, "eth0")
	f.wantNodes(t, "//mtu", f.state, 3, "1500")
	f.wantNodes(t, "interface//name", f.ifs, 3, "eth0")
	f.wantNumber(t, "count(//interface)", f.eth0, 3)
	// The root is its own parent.
	f.wantNodes(t, "/..", f.eth0, 1, "")
	// Text and attribute nodes step back to their element.
	f.wantNodes(t, "mtu/text()/..", f.eth0, 1, "1500")
	f.wantNodes(t, "@lang/..", f.eth0, 1, "")
}

func TestEvalNodeTypeSteps(t *testing.T) {
	f := newFixture(t)
	f.wantNodes(t, "mtu/text()", f.eth0, 1, "1500")
	f.wantNumber(t, "count(node())", f.ifs, 3)
	f.wantNumber(t, "count(comment())", f.ifs, 0)
	// text() drops non-leaf entries.
	f.wantNumber(t, "count(/interfaces/text())", f.eth0, 0)
}

func TestEvalUnion(t *testing.T) {
	f := newFixture(t)
	f.wantNodes(t, "interface/name | interface/mtu", f.ifs, 6, "eth0")
	f.wantNodes(t, "mtu | name", f.eth0, 2, "eth0")
	// Overlap collapses.
	f.wantNodes(t, "mtu | mtu | name", f.eth0, 2, "eth0")
}

func TestEvalPredicates(t *testing.T) {
	f := newFixture(t)
	f.wantNodes(t, "interface[name = 'eth0']", f.ifs, 1, "")
	f.wantNodes(t, "interface[name = 'eth0']/mtu", f.ifs, 1, "1500")
	f.wantNodes(t, "../interface[name = 'eth1']", f.eth0, 1, "")
	f.wantNodes(t, "interface[2]", f.ifs, 1, "")
	f.wantNodes(t, "interface[2]/name", f.ifs, 1, "eth1")
	f.wantNodes(t, "interface[last()]/name", f.ifs, 1, "lo")
	f.wantNodes(t, "interface[position() = 2]/name", f.ifs, 1, "eth1")
	f.wantNodes(t, "interface[position() < last()]", f.ifs, 2, "")
	f.wantNodes(t, "interface[mtu > 1500]", f.ifs, 2, "")
	f.wantNodes(t, "interface[mtu > 1500][1]/name", f.ifs, 1, "eth1")
	f.wantNodes(t, "interface[enabled = 'true']/name", f.ifs, 1, "eth0")
	f.wantNodes(t, "interface[missing]", f.ifs, 0, "")
	// Every name is first among its own siblings.
	f.wantNodes(t, "interface/name[1]", f.ifs, 3, "eth0")
	// Predicates on a parenthesized node-set.
	f.wantNodes(t, "(interface)[2]/name", f.ifs, 1, "eth1")
	// current() refers to the original context node inside predicates.
	f.wantNodes(t, "../interface[name != current()/name]", f.eth0, 2, "")
	f.wantNodes(t, "../interface[mtu > current()/mtu]/name", f.eth0, 2, "eth1")
}

func TestEvalAttributes(t *testing.T) {
	f := newFixture(t)
	f.wantNodes(t, "@last-modified", f.eth0, 1, "2020")
	f.wantNodes(t, "@*", f.eth0, 2, "")
	f.wantNodes(t, "@missing", f.eth0, 0, "")
	f.wantBool(t, "@last-modified = '2020'", f.eth0, true)
	f.wantNodes(t, "../interface/@last-modified", f.eth0, 1, "2020")
	f.wantString(t, "string(@last-modified)", f.eth0, "2020")
}

func TestEvalCoreFunctions(t *testing.T) {
	f := newFixture(t)
	f.wantNumber(t, "count(interface)", f.ifs, 3)
	f.wantNumber(t, "count(*)", f.eth0, 7)
	f.wantNumber(t, "sum(interface/mtu)", f.ifs, 76036)
	f.wantNumber(t, "ceiling(1.2)", f.eth0, 2)
	f.wantNumber(t, "floor(1.8)", f.eth0, 1)
	f.wantNumber(t, "round(2.5)", f.eth0, 3)
	f.wantNumber(t, "string-length('héllo')", f.eth0, 5)
	f.wantBool(t, "not(enabled = 'true')", f.eth1, true)
	f.wantBool(t, "boolean(missing)", f.eth0, false)
	f.wantBool(t, "boolean(mtu)", f.eth0, true)
	f.wantString(t, "name(.)", f.eth0, "net:interface")
	f.wantString(t, "local-name(.)", f.eth0, "interface")
	f.wantString(t, "namespace-uri(.)", f.eth0, "urn:net")
	f.wantString(t, "name(..)", f.eth0, "net:interfaces")
	f.wantString(t, "local-name(@last-modified)", f.eth0, "last-modified")
	f.wantString(t, "name(missing)", f.eth0, "")
	f.wantString(t, "local-name(/)", f.eth0, "")
	f.wantBool(t, "lang('en')", f.eth0, true)
	f.wantBool(t, "lang('EN-us')", f.eth0, true)
	f.wantBool(t, "lang('e')", f.eth0, false)
	// The lang annotation is inherited from the ancestor element.
	set := f.eval(t, "mtu[lang('en')]", f.eth0)
	if len(set.Nodes) != 1 {
		t.Errorf("lang() did not inherit from ancestor: %d nodes", len(set.Nodes))
	}
	f.wantBool(t, "lang('en')", f.eth1, false)
	// No-argument forms operate on the context node.
	f.wantString(t, "string()", f.lo, "lo65536")
	f.wantNumber(t, "string-length()", f.eth1, 13) // "eth19000false"
}

func TestEvalStringFunctions(t *testing.T) {
	f := newFixture(t)
	f.wantString(t, "string(mtu)", f.eth0, "1500")
	f.wantString(t, "string(12.50)", f.eth0, "12.5")
	f.wantString(t, "concat('a', 'b', 'c')", f.eth0, "abc")
	f.wantString(t, "concat(name, '/', string(mtu))", f.eth0, "eth0/1500")
	f.wantBool(t, "contains('hello', 'ell')", f.eth0, true)
	f.wantBool(t, "contains('hello', 'xyz')", f.eth0, false)
	f.wantBool(t, "starts-with(name, 'eth')", f.eth0, true)
	f.wantBool(t, "starts-with(name, 'eth')", f.lo, false)
	f.wantString(t, "substring('12345', 2, 3)", f.eth0, "234")
	f.wantString(t, "substring('12345', 2)", f.eth0, "2345")
	f.wantString(t, "substring('12345', 1.5, 2.6)", f.eth0, "234")
	f.wantString(t, "substring('12345', 0)", f.eth0, "12345")
	f.wantString(t, "substring('12345', 0 div 0, 3)", f.eth0, "")
	f.wantString(t, "substring-before('1999/04/01', '/')", f.eth0, "1999")
	f.wantString(t, "substring-after('1999/04/01', '/')", f.eth0, "04/01")
	f.wantString(t, "substring-before('abc', 'x')", f.eth0, "")
	f.wantString(t, "normalize-space('  a  b \t c ')", f.eth0, "a b c")
	f.wantString(t, "translate('bar', 'abc', 'ABC')", f.eth0, "BAr")
	f.wantString(t, "translate('--aaa--', 'abc-', 'ABC')", f.eth0, "AAA")
}

func TestEvalYangFunctions(t *testing.T) {
	f := newFixture(t)
	f.wantBool(t, "bit-is-set(flags, 'up')", f.eth0, true)
	f.wantBool(t, "bit-is-set(flags, 'broadcast')", f.eth0, true)
	f.wantBool(t, "bit-is-set(flags, 'multicast')", f.eth0, false)
	f.wantBool(t, "bit-is-set(flags, 'bogus')", f.eth0, false)
	f.wantBool(t, "bit-is-set(missing, 'up')", f.eth0, false)

	f.wantNumber(t, "enum-value(speed)", f.eth0, 1)
	f.wantNumber(t, "enum-value(name)", f.eth0, math.NaN())
	f.wantNumber(t, "enum-value(missing)", f.eth0, math.NaN())

	f.wantBool(t, "derived-from(type, 'net:interface-type')", f.eth0, true)
	f.wantBool(t, "derived-from(type, 'net:ethernet')", f.eth0, false)
	f.wantBool(t, "derived-from-or-self(type, 'net:ethernet')", f.eth0, true)
	f.wantBool(t, "derived-from(type, 'net:unknown')", f.eth0, false)
	f.wantBool(t, "derived-from(../interface/type, 'net:interface-type')", f.eth0, true)

	f.wantNodes(t, "deref(peer)", f.eth0, 1, "eth1")
	f.wantNodes(t, "deref(peer)/..", f.eth0, 1, "")
	f.wantNodes(t, "deref(missing)", f.eth0, 0, "")
	f.wantNodes(t, "deref(name)", f.eth0, 0, "") // not a leafref

	f.wantBool(t, "re-match(name, 'eth[0-9]')", f.eth0, true)
	f.wantBool(t, "re-match(name, 'eth')", f.eth0, false) // anchored
	f.wantBool(t, "re-match('a.b', 'a\\.b')", f.eth0, true)

	f.wantNodes(t, "current()", f.eth0, 1, "")
	f.wantNodes(t, "current()/mtu", f.eth0, 1, "1500")
}

func TestEvalWhenRetry(t *testing.T) {
	f := newFixture(t)
	f.eth1.WhenPending = true

	_, err := f.evalErr(t, "../interface/mtu", f.eth0, WithMode(ModeWhen))
	if !types.IsRetry(err) {
		t.Fatalf("crossing a when-pending node: err = %v, want retry", err)
	}

	// Plain queries ignore the pending flag.
	f.wantNodes(t, "../interface/mtu", f.eth0, 3, "1500")

	// A when-mode query that never reaches the pending node succeeds.
	if _, err := f.evalErr(t, "mtu", f.eth0, WithMode(ModeWhen)); err != nil {
		t.Fatalf("when-mode query off the pending path: %v", err)
	}
}

func TestEvalConfigRoot(t *testing.T) {
	f := newFixture(t)

	// A constraint on a configuration node only sees configuration.
	set, err := f.evalErr(t, "/state/counter", f.eth0, WithMode(ModeMust))
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Nodes) != 0 {
		t.Errorf("config-rooted must sees %d state nodes, want 0", len(set.Nodes))
	}

	// A plain query sees everything.
	f.wantNodes(t, "/state/counter", f.eth0, 1, "42")

	// A constraint on a state node also sees everything.
	set, err = f.evalErr(t, "/state/counter", f.state, WithMode(ModeMust))
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Nodes) != 1 {
		t.Errorf("state-rooted must sees %d nodes, want 1", len(set.Nodes))
	}
}

func TestEvalInUseInvisible(t *testing.T) {
	f := newFixture(t)
	f.lo.InUse = true
	f.wantNodes(t, "../interface", f.eth0, 2, "")
	f.wantNumber(t, "count(//name)", f.eth0, 2)
}

func TestEvalOpaqueSubtree(t *testing.T) {
	f := newFixture(t)
	any := f.sIface.AddChild(tree.NewSchemaNode(f.mod, "blob", tree.SchemaAnyData))
	blob := f.eth0.AddChild(tree.NewDataNode(any))
	blob.AddChild(tree.NewDataNode(tree.NewSchemaNode(f.mod, "inner", tree.SchemaContainer)))

	// The opaque node itself is addressable, its contents are not.
	f.wantNodes(t, "blob", f.eth0, 1, "")
	f.wantNodes(t, "blob/inner", f.eth0, 0, "")
	f.wantNodes(t, "//inner", f.eth0, 0, "")
}

func TestEvalTypeErrors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		expr string
		code types.ErrorCode
	}{
		{"count(1)", types.ErrArgumentType},
		{"sum('x')", types.ErrArgumentType},
		{"(1)[1]", types.ErrNotNodeSet},
		{"1 | 2", types.ErrNotNodeSet},
		{"'a' | name", types.ErrNotNodeSet},
		{"bad:name", types.ErrUnknownPrefix},
		{"bit-is-set('x', 'up')", types.ErrArgumentType},
	}
	for _, tc := range tests {
		_, err := f.evalErr(t, tc.expr, f.eth0)
		if err == nil {
			t.Errorf("Eval(%q): expected error", tc.expr)
			continue
		}
		var perr *types.Error
		if !errors.As(err, &perr) {
			t.Errorf("Eval(%q): error %T (%v), want *types.Error", tc.expr, err, err)
			continue
		}
		if perr.Code != tc.code {
			t.Errorf("Eval(%q): code %s (%v), want %s", tc.expr, perr.Code, err, tc.code)
		}
	}
}

func TestEvalCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(WithModule(f.mod), WithLogger(testLogger()))
	if _, err := e.EvalString(ctx, "count(//name)", f.eth0); err == nil {
		t.Fatal("canceled context: expected error")
	}
}

func TestEvalNilContextNode(t *testing.T) {
	f := newFixture(t)
	// A nil context node is the root of an empty document.
	f.wantNumber(t, "1 + 1", nil, 2)
	f.wantNodes(t, "anything", nil, 0, "")
	f.wantString(t, "string(.)", nil, "")
}

func TestEvaluatorCaching(t *testing.T) {
	f := newFixture(t)
	e := New(WithModule(f.mod), WithLogger(testLogger()), WithCaching(true))

	if _, err := e.EvalString(context.Background(), "count(interface)", f.ifs); err != nil {
		t.Fatal(err)
	}
	if e.Cache().Len() != 1 {
		t.Fatalf("cache has %d entries, want 1", e.Cache().Len())
	}
	if _, err := e.EvalString(context.Background(), "count(interface)", f.ifs); err != nil {
		t.Fatal(err)
	}
	if e.Cache().Len() != 1 {
		t.Fatalf("cache has %d entries after repeat, want 1", e.Cache().Len())
	}
}
