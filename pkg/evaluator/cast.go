package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/yangml/yangpath/pkg/tree"
	"github.com/yangml/yangpath/pkg/types"
)

// Casting between the XPath value types. The rules match XPath 1.0
// bit-for-bit where observable, including NaN/Infinity spelling and the
// "first node in document order" rule for node-sets.

// strToNum converts a string to a number per the XPath number() rules:
// optional whitespace, an optional minus sign, and a decimal number with no
// exponent. Anything else is NaN.
func strToNum(s string) float64 {
	t := strings.Trim(s, " \t\n\r")
	if t == "" {
		return math.NaN()
	}
	body := t
	if body[0] == '-' {
		body = body[1:]
	}
	digits := false
	dot := false
	for i := 0; i < len(body); i++ {
		switch {
		case body[i] >= '0' && body[i] <= '9':
			digits = true
		case body[i] == '.' && !dot:
			dot = true
		default:
			return math.NaN()
		}
	}
	if !digits {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// numToStr formats a number per the XPath string() rules: "NaN",
// "Infinity"/"-Infinity", integral values without a fractional part, and
// fixed (never exponential) notation otherwise.
func numToStr(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		// Positive and negative zero both print as "0".
		return "0"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// boolToStr formats a boolean per XPath string().
func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// nodeStringValue returns the XPath string value of a node-set entry:
// for elements and roots the concatenation of all descendant text in
// document order, for text nodes the value itself, for attributes the
// attribute value.
func nodeStringValue(e *NodeEntry) string {
	switch e.Kind {
	case NodeAttr:
		if e.Attr == nil {
			return ""
		}
		return e.Attr.Value
	case NodeText:
		if e.Node == nil {
			return ""
		}
		return e.Node.Value
	case NodeRoot, NodeRootConfig:
		var sb strings.Builder
		for n := e.Node; n != nil; n = n.NextSibling() {
			appendTextValue(&sb, n)
		}
		return sb.String()
	default:
		var sb strings.Builder
		appendTextValue(&sb, e.Node)
		return sb.String()
	}
}

func appendTextValue(sb *strings.Builder, n *tree.DataNode) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		sb.WriteString(n.Value)
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		appendTextValue(sb, c)
	}
}

// toBoolean returns the boolean value of the set: a number is false only
// for 0, -0 and NaN; a string is false only if empty; a node-set is false
// only if empty.
func (s *Set) toBoolean() bool {
	switch s.Type {
	case SetBoolean:
		return s.Bool
	case SetNumber:
		return s.Num != 0 && !math.IsNaN(s.Num)
	case SetString:
		return s.Str != ""
	case SetNodes:
		return len(s.Nodes) > 0
	case SetSchemaNodes:
		return len(s.SNode) > 0
	default:
		return false
	}
}

// toString returns the string value of the set. For node-sets this is the
// string value of the first node in document order, which requires o.
func (s *Set) toString(o *docOrder) string {
	switch s.Type {
	case SetString:
		return s.Str
	case SetBoolean:
		return boolToStr(s.Bool)
	case SetNumber:
		return numToStr(s.Num)
	case SetNodes:
		if len(s.Nodes) == 0 {
			return ""
		}
		s.sortDocOrder(o)
		return nodeStringValue(&s.Nodes[0])
	default:
		return ""
	}
}

// toNumber returns the number value of the set: booleans map to 1/0,
// strings parse per strToNum, node-sets go through their string value.
func (s *Set) toNumber(o *docOrder) float64 {
	switch s.Type {
	case SetNumber:
		return s.Num
	case SetBoolean:
		if s.Bool {
			return 1
		}
		return 0
	case SetString:
		return strToNum(s.Str)
	case SetNodes:
		return strToNum(s.toString(o))
	default:
		return math.NaN()
	}
}

// cast converts the set in place to the target type. Casting a set to its
// own type is a no-op. Schema-node-sets cannot be cast, and nothing can be
// cast to a node-set.
func (s *Set) cast(target SetType, o *docOrder) error {
	if s.Type == target {
		return nil
	}
	if s.Type == SetSchemaNodes || target == SetNodes || target == SetSchemaNodes || target == SetEmpty {
		return types.NewError(types.ErrCastUnsupported,
			"cannot cast "+s.Type.String()+" to "+target.String(), -1)
	}
	switch target {
	case SetBoolean:
		s.setBoolean(s.toBoolean())
	case SetNumber:
		s.setNumber(s.toNumber(o))
	case SetString:
		s.setString(s.toString(o))
	}
	return nil
}
