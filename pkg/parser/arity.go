package parser

// funcArity is the fixed arity table of the XPath 1.0 core function library
// plus the YANG extensions of RFC 7950 section 10. A max of -1 means
// unlimited. The reparser validates call sites against this table; the
// evaluator's function registry implements exactly the same set, keyed by
// the same names.
var funcArity = map[string][2]int{
	// XPath 1.0 core
	"boolean":          {1, 1},
	"ceiling":          {1, 1},
	"concat":           {2, -1},
	"contains":         {2, 2},
	"count":            {1, 1},
	"false":            {0, 0},
	"floor":            {1, 1},
	"lang":             {1, 1},
	"last":             {0, 0},
	"local-name":       {0, 1},
	"name":             {0, 1},
	"namespace-uri":    {0, 1},
	"normalize-space":  {0, 1},
	"not":              {1, 1},
	"number":           {0, 1},
	"position":         {0, 0},
	"round":            {1, 1},
	"starts-with":      {2, 2},
	"string":           {0, 1},
	"string-length":    {0, 1},
	"substring":        {2, 3},
	"substring-after":  {2, 2},
	"substring-before": {2, 2},
	"sum":              {1, 1},
	"translate":        {3, 3},
	"true":             {0, 0},

	// YANG extensions (RFC 7950 section 10)
	"bit-is-set":           {2, 2},
	"current":              {0, 0},
	"deref":                {1, 1},
	"derived-from":         {2, 2},
	"derived-from-or-self": {2, 2},
	"enum-value":           {1, 1},
	"re-match":             {2, 2},
}

// FunctionArity returns the minimum and maximum argument count of a
// built-in function. max is -1 for functions without an upper bound.
// ok is false for unknown function names.
func FunctionArity(name string) (min, max int, ok bool) {
	a, ok := funcArity[name]
	return a[0], a[1], ok
}
