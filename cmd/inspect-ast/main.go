// Command inspect-ast prints the syntax tree of a script the way the
// analyzer sees it: one node kind per line with its byte range, followed by
// the declarations hoisted into each block.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/clockwork-dog/lint-no-global-mutations/mutationexec"
	"github.com/dop251/goja/ast"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("inspect-ast", flag.ContinueOnError)
	fs.SetOutput(stderr)
	expr := fs.String("e", "", "script source; read from the file argument when empty")
	scopes := fs.Bool("scopes", true, "print hoisted scopes")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	name, src := "<script>", *expr
	if src == "" {
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "usage: inspect-ast [-e source | file.js]")
			return 2
		}
		name = fs.Arg(0)
		data, err := os.ReadFile(name)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		src = string(data)
	}

	prog, err := nomut.ParseFile(name, src)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	dump(stdout, prog)
	if *scopes {
		if err := dumpScopes(stdout, prog); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	return 0
}

func dump(w io.Writer, prog *nomut.Program) {
	depth := 0
	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		span := prog.Span(n)
		fmt.Fprintf(w, "%s%s %s %s\n", strings.Repeat("  ", depth), nomut.KindOf(n), span, snippet(prog.Text(n)))
		depth++
		for _, c := range nomut.Children(n) {
			visit(c)
		}
		depth--
	}
	visit(prog.AST)
}

func dumpScopes(w io.Writer, prog *nomut.Program) error {
	summaries, err := mutationexec.HoistedScopes(prog)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "scopes:")
	for _, s := range summaries {
		where := "program"
		if s.Start >= 0 {
			line, col := prog.Position(s.Start)
			where = fmt.Sprintf("%d:%d", line, col)
		}
		fmt.Fprintf(w, "  %s vars=[%s] functions=[%s]\n", where, strings.Join(s.Vars, " "), strings.Join(s.Functions, " "))
	}
	return nil
}

// snippet quotes the first line of a node's text, shortened.
func snippet(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + "…"
	}
	if r := []rune(text); len(r) > 40 {
		text = string(r[:40]) + "…"
	}
	return fmt.Sprintf("%q", text)
}
