package evaluator

// Package evaluator implements XPath 1.0 evaluation over YANG instance-data
// and schema trees.
//
// The evaluator receives a compiled expression from the parser and walks its
// token array directly, consuming the repeat annotations instead of an AST.
// It supports:
//   - Value evaluation over instance data (Eval)
//   - Schema analysis returning the referenced schema nodes (Atomize)
//   - "when"/"must" context restrictions and the retry signal for
//     not-yet-resolved dependencies
//   - Timeout and cancellation via context.Context
//
// # Example
//
//	eval := evaluator.New(evaluator.WithModule(mod))
//	set, err := eval.EvalString(ctx, "../name = 'eth0'", node)
//	if err != nil {
//	    log.Fatal(err)
//	}

import (
	"context"
	"log/slog"
	"time"

	"github.com/yangml/yangpath/pkg/cache"
	"github.com/yangml/yangpath/pkg/parser"
	"github.com/yangml/yangpath/pkg/tree"
	"github.com/yangml/yangpath/pkg/types"
)

// Evaluator evaluates compiled XPath expressions. It is stateless between
// calls apart from the optional expression cache and safe for concurrent
// use.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
	cache  *cache.Cache // non-nil when Caching is enabled
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Module resolves prefixes in name tests and identity arguments.
	// Expressions without prefixes work with a nil Module.
	Module *tree.Module
	// Mode selects the context restriction: plain query, "when" constraint
	// (config-root restriction plus retry semantics) or "must" constraint.
	Mode Mode
	// Scope selects RPC/action input and output visibility.
	Scope Scope
	// Caching enables expression compilation caching for the string entry
	// points. Compiled expressions are cached by source string with LRU
	// eviction; the default cache holds up to 256 entries.
	Caching bool
	// CacheSize sets the maximum number of cached expressions. Only used
	// when Caching is true and no explicit Cache is provided.
	CacheSize int
	// Cache is a custom expression cache. If non-nil, Caching is implicitly
	// enabled.
	Cache *cache.Cache
	// MaxDepth limits expression nesting depth at compile time.
	MaxDepth int
	// Timeout bounds a single evaluation.
	Timeout time.Duration
	// Logger for structured diagnostics; schema analysis reports dangling
	// names and argument type mismatches through it.
	Logger *slog.Logger
}

// EvalOption configures an Evaluator.
type EvalOption func(*EvalOptions)

// WithModule sets the module whose prefix and identity tables resolve
// qualified names.
func WithModule(m *tree.Module) EvalOption {
	return func(o *EvalOptions) { o.Module = m }
}

// WithMode sets the context restriction mode.
func WithMode(m Mode) EvalOption {
	return func(o *EvalOptions) { o.Mode = m }
}

// WithScope sets RPC input/output visibility.
func WithScope(s Scope) EvalOption {
	return func(o *EvalOptions) { o.Scope = s }
}

// WithCaching enables or disables expression caching.
func WithCaching(enabled bool) EvalOption {
	return func(o *EvalOptions) { o.Caching = enabled }
}

// WithCacheSize sets the expression cache capacity.
func WithCacheSize(n int) EvalOption {
	return func(o *EvalOptions) { o.CacheSize = n }
}

// WithCache supplies a shared expression cache.
func WithCache(c *cache.Cache) EvalOption {
	return func(o *EvalOptions) { o.Cache = c }
}

// WithMaxDepth sets the compile-time nesting limit.
func WithMaxDepth(depth int) EvalOption {
	return func(o *EvalOptions) { o.MaxDepth = depth }
}

// WithTimeout bounds each evaluation.
func WithTimeout(d time.Duration) EvalOption {
	return func(o *EvalOptions) { o.Timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) EvalOption {
	return func(o *EvalOptions) { o.Logger = l }
}

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		size := options.CacheSize
		if size <= 0 {
			size = 256
		}
		c = cache.New(size)
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
		cache:  c,
	}
}

// Cache returns the expression cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// compile compiles an expression source, through the cache when enabled.
func (e *Evaluator) compile(src string) (*types.Expression, error) {
	var opts []parser.CompileOption
	if e.opts.MaxDepth > 0 {
		opts = append(opts, parser.WithMaxDepth(e.opts.MaxDepth))
	}
	doCompile := func() (*types.Expression, error) {
		return parser.Compile(src, opts...)
	}
	if e.cache != nil {
		return e.cache.GetOrCompile(src, doCompile)
	}
	return doCompile()
}

// withTimeout applies the configured timeout to ctx.
func (e *Evaluator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.Timeout > 0 {
		return context.WithTimeout(ctx, e.opts.Timeout)
	}
	return ctx, func() {}
}

// rootKindFor decides the root restriction: a "when" or "must" expression
// attached to a configuration node only sees configuration data.
func (e *Evaluator) rootKindFor(config bool) NodeKind {
	if e.opts.Mode != ModePlain && config {
		return NodeRootConfig
	}
	return NodeRoot
}

// Eval evaluates a compiled expression with ctxNode as the context node.
// A nil ctxNode stands for the root of an empty document.
//
// The resulting Set references nodes of the tree containing ctxNode; the
// caller owns the tree and must keep it alive while using the set. In
// ModeWhen the error is types.ErrRetry when the expression crossed a node
// whose own "when" is still undecided.
func (e *Evaluator) Eval(ctx context.Context, expr *types.Expression, ctxNode *tree.DataNode) (*Set, error) {
	if expr == nil || expr.TokenCount() == 0 {
		return nil, types.NewError(types.ErrUnexpectedEnd, "empty expression", 0)
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	rootKind := e.rootKindFor(ctxNode != nil && ctxNode.IsConfig())
	origKind := NodeElem
	if ctxNode == nil {
		origKind = rootKind
	}
	var root *tree.DataNode
	if ctxNode != nil {
		root = ctxNode.Root()
	}

	ev := &evaluation{
		ctx:      ctx,
		e:        e,
		exp:      expr,
		mode:     e.opts.Mode,
		scope:    e.opts.Scope,
		curMod:   e.opts.Module,
		ctxNode:  ctxNode,
		rootKind: rootKind,
		order:    newDocOrder(root),
		origNode: ctxNode,
		origKind: origKind,
		cnode:    NodeEntry{Node: ctxNode, Kind: origKind},
	}
	return ev.run()
}

// EvalString compiles (through the cache when enabled) and evaluates an
// expression in one call.
func (e *Evaluator) EvalString(ctx context.Context, src string, ctxNode *tree.DataNode) (*Set, error) {
	expr, err := e.compile(src)
	if err != nil {
		return nil, err
	}
	return e.Eval(ctx, expr, ctxNode)
}

// Atomize analyzes a compiled expression against the schema tree with
// ctxSNode as the context and returns the schema nodes the expression can
// reference. No instance data is consulted; dangling names and argument
// type mismatches are reported as warnings through the logger, not errors.
//
// A nil ctxSNode stands for the schema root; in that case absolute paths
// resolve to nothing because no schema tree is reachable.
func (e *Evaluator) Atomize(ctx context.Context, expr *types.Expression, ctxSNode *tree.SchemaNode) (*Set, error) {
	if expr == nil || expr.TokenCount() == 0 {
		return nil, types.NewError(types.ErrUnexpectedEnd, "empty expression", 0)
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	ev := &evaluation{
		ctx:      ctx,
		e:        e,
		exp:      expr,
		mode:     e.opts.Mode,
		scope:    e.opts.Scope,
		schema:   true,
		curMod:   e.opts.Module,
		rootKind: e.rootKindFor(ctxSNode != nil && ctxSNode.Config),
		ctxSNode: ctxSNode,
		csnode:   ctxSNode,
	}
	return ev.run()
}

// AtomizeString compiles and analyzes an expression in one call.
func (e *Evaluator) AtomizeString(ctx context.Context, src string, ctxSNode *tree.SchemaNode) (*Set, error) {
	expr, err := e.compile(src)
	if err != nil {
		return nil, err
	}
	return e.Atomize(ctx, expr, ctxSNode)
}

// Cast converts a result set in place to the target type using the XPath
// casting rules. root anchors document order for node-set string values; it
// may be any node of the same tree, or nil for sets without node entries.
func (s *Set) Cast(target SetType, root *tree.DataNode) error {
	var anchor *tree.DataNode
	if root != nil {
		anchor = root.Root()
	}
	return s.cast(target, newDocOrder(anchor))
}
