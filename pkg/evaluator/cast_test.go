package evaluator

import (
	"math"
	"testing"

	"github.com/yangml/yangpath/pkg/tree"
)

func TestStrToNum(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0", 0},
		{"42", 42},
		{"-17", -17},
		{"3.14", 3.14},
		{".5", 0.5},
		{"-.5", -0.5},
		{"  12  ", 12},
		{"\t7\n", 7},
		{"1e3", math.NaN()}, // no exponent notation
		{"0x10", math.NaN()},
		{"", math.NaN()},
		{"abc", math.NaN()},
		{"12abc", math.NaN()},
		{"1.2.3", math.NaN()},
		{"-", math.NaN()},
		{".", math.NaN()},
		{"+1", math.NaN()}, // no unary plus in XPath numbers
	}
	for _, tc := range tests {
		got := strToNum(tc.in)
		if math.IsNaN(tc.want) {
			if !math.IsNaN(got) {
				t.Errorf("strToNum(%q) = %v, want NaN", tc.in, got)
			}
			continue
		}
		if got != tc.want {
			t.Errorf("strToNum(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNumToStr(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-17, "-17"},
		{1.5, "1.5"},
		{1500, "1500"},
		{0.0001, "0.0001"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tc := range tests {
		if got := numToStr(tc.in); got != tc.want {
			t.Errorf("numToStr(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestXpathRound(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{2.5, 3},
		{2.4, 2},
		{-2.5, -2}, // round half toward positive infinity
		{-2.6, -3},
		{0, 0},
	}
	for _, tc := range tests {
		if got := xpathRound(tc.in); got != tc.want {
			t.Errorf("xpathRound(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if got := xpathRound(math.NaN()); !math.IsNaN(got) {
		t.Errorf("xpathRound(NaN) = %v, want NaN", got)
	}
	// Arguments in (-0.5, 0) round to negative zero.
	if got := xpathRound(-0.25); got != 0 || !math.Signbit(got) {
		t.Errorf("xpathRound(-0.25) = %v, want -0", got)
	}
}

func TestSetToBoolean(t *testing.T) {
	s := NewSet()

	s.setNumber(0)
	if s.toBoolean() {
		t.Error("number 0: want false")
	}
	s.setNumber(math.NaN())
	if s.toBoolean() {
		t.Error("NaN: want false")
	}
	s.setNumber(-1)
	if !s.toBoolean() {
		t.Error("number -1: want true")
	}
	s.setString("")
	if s.toBoolean() {
		t.Error("empty string: want false")
	}
	s.setString("false")
	if !s.toBoolean() {
		// The string "false" is non-empty and therefore true.
		t.Error(`string "false": want true`)
	}
	s.setNodeSet()
	if s.toBoolean() {
		t.Error("empty node-set: want false")
	}
	s.addNode(NodeEntry{Kind: NodeRoot})
	if !s.toBoolean() {
		t.Error("non-empty node-set: want true")
	}
}

func TestNodeStringValue(t *testing.T) {
	mod := tree.NewModule("m", "urn:m", "m")
	cont := tree.NewSchemaNode(mod, "c", tree.SchemaContainer)
	leafA := cont.AddChild(tree.NewSchemaNode(mod, "a", tree.SchemaLeaf))
	leafB := cont.AddChild(tree.NewSchemaNode(mod, "b", tree.SchemaLeaf))

	dc := tree.NewDataNode(cont)
	dc.AddChild(tree.NewLeaf(leafA, "one"))
	db := dc.AddChild(tree.NewLeaf(leafB, "two"))

	// An element concatenates descendant text in document order.
	e := NodeEntry{Node: dc, Kind: NodeElem}
	if got := nodeStringValue(&e); got != "onetwo" {
		t.Errorf("element string value = %q, want %q", got, "onetwo")
	}

	txt := NodeEntry{Node: db, Kind: NodeText}
	if got := nodeStringValue(&txt); got != "two" {
		t.Errorf("text string value = %q, want %q", got, "two")
	}

	root := NodeEntry{Node: dc, Kind: NodeRoot}
	if got := nodeStringValue(&root); got != "onetwo" {
		t.Errorf("root string value = %q, want %q", got, "onetwo")
	}

	a := db.AddAttr(mod, "note", "meta")
	ae := NodeEntry{Node: db, Attr: a, Kind: NodeAttr}
	if got := nodeStringValue(&ae); got != "meta" {
		t.Errorf("attr string value = %q, want %q", got, "meta")
	}
}

func TestSetCast(t *testing.T) {
	o := newDocOrder(nil)

	s := NewSet()
	s.setNumber(1500)
	if err := s.cast(SetString, o); err != nil {
		t.Fatalf("cast number to string: %v", err)
	}
	if s.Str != "1500" {
		t.Errorf("cast result %q, want %q", s.Str, "1500")
	}

	// Casting to the same type is a no-op.
	if err := s.cast(SetString, o); err != nil {
		t.Fatalf("cast string to string: %v", err)
	}

	s.setBoolean(true)
	if err := s.cast(SetNumber, o); err != nil {
		t.Fatalf("cast boolean to number: %v", err)
	}
	if s.Num != 1 {
		t.Errorf("cast result %v, want 1", s.Num)
	}

	// Nothing casts to a node-set.
	if err := s.cast(SetNodes, o); err == nil {
		t.Error("cast number to node-set: expected error")
	}

	// Schema-node-sets cannot be cast.
	s.setSchemaSet()
	if err := s.cast(SetBoolean, o); err == nil {
		t.Error("cast schema-node-set: expected error")
	}
}
