// Command yangpath evaluates an XPath expression against a YAML instance
// document and prints the result.
//
// The document is loaded with on-the-fly schema synthesis (mappings become
// containers, sequences become lists or leaf-lists), and the expression is
// evaluated with the first top-level node as the context node, so both
// absolute and relative paths work.
//
// Usage:
//
//	yangpath -f config.yaml "/interfaces/interface[name = 'eth0']/mtu"
//	yangpath -f config.yaml "count(//interface)"
//	echo 'a: {b: 1}' | yangpath "/a/b + 1"
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/yangml/yangpath"
	"github.com/yangml/yangpath/pkg/evaluator"
	"github.com/yangml/yangpath/pkg/tree"
)

func main() {
	var (
		file    = flag.String("f", "-", "YAML instance document ('-' for stdin)")
		module  = flag.String("m", "data", "module name for synthesized schema nodes")
		timeout = flag.Duration("t", 30*time.Second, "evaluation timeout")
		verbose = flag.Bool("v", false, "verbose diagnostics")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: yangpath [-f file] [-m module] <expression>")
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(flag.Arg(0), *file, *module, *timeout, logger); err != nil {
		fmt.Fprintln(os.Stderr, "yangpath:", err)
		os.Exit(1)
	}
}

func run(expr, file, module string, timeout time.Duration, logger *slog.Logger) error {
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return err
	}

	mod := tree.NewModule(module, "urn:"+module, module)
	root, err := tree.LoadYAML(data, mod)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	set, err := yangpath.EvalWithContext(ctx, expr, root,
		yangpath.WithModule(mod),
		yangpath.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	printSet(set, root)
	return nil
}

func printSet(set *evaluator.Set, root *tree.DataNode) {
	switch set.Type {
	case evaluator.SetBoolean:
		fmt.Println(set.Bool)
	case evaluator.SetNumber, evaluator.SetString:
		if err := set.Cast(evaluator.SetString, root); err == nil {
			fmt.Println(set.Str)
		}
	case evaluator.SetNodes:
		for i := range set.Nodes {
			e := &set.Nodes[i]
			fmt.Printf("%s = %q\n", entryPath(e), entryValue(e))
		}
	default:
		fmt.Println("(empty)")
	}
}

// entryPath renders a /-separated path from the root to the entry.
func entryPath(e *evaluator.NodeEntry) string {
	if e.Node == nil {
		return "/"
	}
	var parts []string
	for n := e.Node; n != nil; n = n.Parent() {
		parts = append(parts, n.Name())
	}
	var sb strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		sb.WriteByte('/')
		sb.WriteString(parts[i])
	}
	if e.Kind == evaluator.NodeAttr && e.Attr != nil {
		sb.WriteString("/@")
		sb.WriteString(e.Attr.Name)
	}
	return sb.String()
}

func entryValue(e *evaluator.NodeEntry) string {
	if e.Kind == evaluator.NodeAttr && e.Attr != nil {
		return e.Attr.Value
	}
	if e.Node != nil {
		return e.Node.Value
	}
	return ""
}
