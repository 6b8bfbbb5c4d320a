package parser

import (
	"errors"
	"testing"

	"github.com/yangml/yangpath/pkg/types"
)

func TestCompileValid(t *testing.T) {
	exprs := []string{
		"1 + 1",
		"a",
		"a/b/c",
		"/",
		"/a/b",
		"//name",
		"../interface[name = 'eth0']/enabled",
		"count(*) > 2",
		"-5 + 3",
		"- -5",
		"a | b | c",
		"(1 + 2) * 3",
		"deref(../ref)/name",
		"string()",
		"concat('a', 'b', 'c')",
		"a[b][c = 1][position() < last()]",
		"a/text()",
		"current()/..",
		"@x = 'v'",
		"//a//b",
		"(a)[1]/b",
		"1 < 2 = true()",
		"a and b or c and d",
		"10 mod 3 div 2",
		"not(../enabled) and ../mtu > 1500",
	}
	for _, src := range exprs {
		if _, err := Compile(src); err != nil {
			t.Errorf("Compile(%q): %v", src, err)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code types.ErrorCode
	}{
		{"empty", "", types.ErrUnexpectedEnd},
		{"whitespace only", "   ", types.ErrUnexpectedEnd},
		{"dangling operator", "1 +", types.ErrUnexpectedEnd},
		{"dangling union", "a |", types.ErrUnexpectedEnd},
		{"unclosed paren", "(1 + 2", types.ErrUnexpectedEnd},
		{"unclosed call", "count(a", types.ErrUnexpectedEnd},
		{"unclosed predicate", "a[1", types.ErrUnexpectedEnd},
		{"empty predicate", "a[]", types.ErrUnexpectedToken},
		{"two operands", "1 2", types.ErrUnexpectedToken},
		{"lone close paren", ")", types.ErrUnexpectedToken},
		{"attribute without name", "@", types.ErrUnexpectedEnd},
		{"node type without parens", "a/text()b", types.ErrUnexpectedToken},
		{"unknown function", "bogus()", types.ErrUnknownFunction},
		{"too few arguments", "substring('a')", types.ErrArgumentCount},
		{"too many arguments", "not(1, 2)", types.ErrArgumentCount},
		{"concat needs two", "concat('a')", types.ErrArgumentCount},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.src)
			if err == nil {
				t.Fatalf("Compile(%q): expected error", tc.src)
			}
			var perr *types.Error
			if !errors.As(err, &perr) {
				t.Fatalf("Compile(%q): error %T, want *types.Error", tc.src, err)
			}
			if perr.Code != tc.code {
				t.Errorf("Compile(%q): code %s (%v), want %s", tc.src, perr.Code, err, tc.code)
			}
		})
	}
}

// TestRepeatAnnotations pins down the repeat lists the evaluator consumes:
// one entry per repetition at the left-most token of the production, inner
// levels first.
func TestRepeatAnnotations(t *testing.T) {
	tests := []struct {
		src   string
		token int
		want  []types.ExprType
	}{
		{"1 + 2 + 3 or x", 0, []types.ExprType{
			types.ExprAdditive, types.ExprAdditive, types.ExprOr,
		}},
		{"-5", 0, []types.ExprType{types.ExprUnary}},
		{"- -5", 0, []types.ExprType{types.ExprUnary, types.ExprUnary}},
		{"a | b", 0, []types.ExprType{types.ExprUnion}},
		{"a and b", 0, []types.ExprType{types.ExprAnd}},
		{"1 = 2 != 3", 0, []types.ExprType{
			types.ExprEquality, types.ExprEquality,
		}},
		{"2 * 3 < 10", 0, []types.ExprType{
			types.ExprMultiplicative, types.ExprRelational,
		}},
		// The operand after the minuses starts the union repeat.
		{"-a | b", 1, []types.ExprType{types.ExprUnion}},
		// Plain path expressions carry no repeats.
		{"a/b/c", 0, nil},
	}
	for _, tc := range tests {
		exp, err := Compile(tc.src)
		if err != nil {
			t.Fatalf("Compile(%q): %v", tc.src, err)
		}
		got := exp.Repeat(tc.token)
		if len(got) != len(tc.want) {
			t.Errorf("Repeat(%q, %d) = %v, want %v", tc.src, tc.token, got, tc.want)
			continue
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("Repeat(%q, %d)[%d] = %v, want %v",
					tc.src, tc.token, i, got[i], tc.want[i])
			}
		}
	}
}

func TestCompileMaxDepth(t *testing.T) {
	deep := ""
	for i := 0; i < 20; i++ {
		deep += "("
	}
	deep += "1"
	for i := 0; i < 20; i++ {
		deep += ")"
	}

	if _, err := Compile(deep); err != nil {
		t.Fatalf("Compile(deep): %v", err)
	}
	if _, err := Compile(deep, WithMaxDepth(5)); err == nil {
		t.Fatal("Compile(deep, WithMaxDepth(5)): expected error")
	}
}

func TestFunctionArity(t *testing.T) {
	tests := []struct {
		fn       string
		min, max int
	}{
		{"true", 0, 0},
		{"not", 1, 1},
		{"substring", 2, 3},
		{"concat", 2, -1},
		{"string", 0, 1},
		{"deref", 1, 1},
		{"derived-from", 2, 2},
	}
	for _, tc := range tests {
		min, max, ok := FunctionArity(tc.fn)
		if !ok {
			t.Errorf("FunctionArity(%q): not found", tc.fn)
			continue
		}
		if min != tc.min || max != tc.max {
			t.Errorf("FunctionArity(%q) = (%d, %d), want (%d, %d)",
				tc.fn, min, max, tc.min, tc.max)
		}
	}
	if _, _, ok := FunctionArity("bogus"); ok {
		t.Error("FunctionArity(bogus): unexpectedly found")
	}
}
