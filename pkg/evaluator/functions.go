package evaluator

import (
	"sync"

	"github.com/yangml/yangpath/pkg/parser"
)

// funcImpl evaluates one built-in function. args hold the already-evaluated
// argument sets; the result replaces set. Every implementation carries two
// branches: the value branch, and a schema-analysis branch selected by
// ev.schema that folds argument schema nodes into the result and emits
// non-fatal type diagnostics instead of computing a value.
type funcImpl func(ev *evaluation, args []*Set, set *Set) error

var (
	builtinFunctions     map[string]funcImpl
	builtinFunctionsOnce sync.Once
)

// initBuiltinFunctions initializes the built-in function registry. Arity is
// not repeated here: the reparser already validated call sites against the
// single arity table in pkg/parser.
func initBuiltinFunctions() {
	builtinFunctionsOnce.Do(func() {
		builtinFunctions = map[string]funcImpl{
			// Node-set and context functions
			"count":         fnCount,
			"current":       fnCurrent,
			"last":          fnLast,
			"local-name":    fnLocalName,
			"name":          fnName,
			"namespace-uri": fnNamespaceURI,
			"position":      fnPosition,

			// Boolean functions
			"boolean": fnBoolean,
			"false":   fnFalse,
			"lang":    fnLang,
			"not":     fnNot,
			"true":    fnTrue,

			// Number functions
			"ceiling": fnCeiling,
			"floor":   fnFloor,
			"number":  fnNumber,
			"round":   fnRound,
			"sum":     fnSum,

			// String functions
			"concat":           fnConcat,
			"contains":         fnContains,
			"normalize-space":  fnNormalizeSpace,
			"starts-with":      fnStartsWith,
			"string":           fnString,
			"string-length":    fnStringLength,
			"substring":        fnSubstring,
			"substring-after":  fnSubstringAfter,
			"substring-before": fnSubstringBefore,
			"translate":        fnTranslate,

			// YANG functions (RFC 7950 section 10)
			"bit-is-set":           fnBitIsSet,
			"deref":                fnDeref,
			"derived-from":         fnDerivedFrom,
			"derived-from-or-self": fnDerivedFromOrSelf,
			"enum-value":           fnEnumValue,
			"re-match":             fnReMatch,
		}

		// The registry and the parser's arity table must describe exactly
		// the same function set; diverging silently would let the reparser
		// accept calls the evaluator cannot dispatch.
		for name := range builtinFunctions {
			if _, _, ok := parser.FunctionArity(name); !ok {
				panic("yangpath: function " + name + " missing from arity table")
			}
		}
	})
}

// getFunction retrieves a built-in function implementation by name.
func getFunction(name string) (funcImpl, bool) {
	initBuiltinFunctions()
	fn, ok := builtinFunctions[name]
	return fn, ok
}

// schemaFnResult is the generic schema branch of a value-returning
// function: the result is not a node-set, so the context empties, but
// every schema node the arguments touched stays in the result as atomized.
func schemaFnResult(args []*Set, set *Set) {
	set.setSchemaSet()
	for _, a := range args {
		if a.Type == SetSchemaNodes {
			set.mergeSNodes(a)
		}
	}
	for i := range set.SNode {
		set.SNode[i].InCtx = SCtxNone
	}
}
