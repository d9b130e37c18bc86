// Command lint-openapi lints the x-no-global-mutation scripts of an OpenAPI
// document and prints the annotated document.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/clockwork-dog/lint-no-global-mutations/pkg/playground"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lint-openapi", flag.ContinueOnError)
	fs.SetOutput(stderr)
	strict := fs.Bool("strict", true, "fail when a script cannot be analyzed")
	report := fs.Bool("json", false, "print the findings as JSON instead of the annotated document")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var in io.Reader = stdin
	if fs.NArg() > 0 && fs.Arg(0) != "-" {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	result, err := playground.LintOpenAPI(string(data), *strict)
	if err != nil {
		fmt.Fprintln(stderr, strings.TrimRight(err.Error(), "\n"))
		return 2
	}

	if *report {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Findings); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	} else {
		fmt.Fprint(stdout, result.Document)
		for _, f := range result.Findings {
			if f.Rendered != "" {
				fmt.Fprintf(stderr, "%s:\n%s\n", f.Location, f.Rendered)
			}
		}
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	if result.Violations() > 0 {
		return 1
	}
	return 0
}
