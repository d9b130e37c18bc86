package mutationexec

import (
	"context"
	"fmt"

	"github.com/clockwork-dog/lint-no-global-mutations"
)

// AnalyzeSource parses src and analyzes it against globals.
//
// Example:
//
//	globals := map[string]any{"state": map[string]any{"items": []any{}}}
//	result, err := mutationexec.AnalyzeSource(context.Background(), "state.items.push(1)", globals)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range result.Diagnostics {
//	    fmt.Println(d)
//	}
func AnalyzeSource(ctx context.Context, src string, globals any, opts ...Options) (*Result, error) {
	prog, err := nomut.Parse(src)
	if err != nil {
		return nil, err
	}
	return Analyze(ctx, prog, globals, opts...)
}

// Analyze reports every place in prog that could mutate a value reachable
// from globals. globals must be a map with string keys; nested maps and
// slices are the global objects and arrays.
//
// Unsupported constructs fail the analysis with an *UnsupportedError unless
// StrictMode is off. Lint findings are never errors: they are returned as
// Result.Diagnostics.
func Analyze(ctx context.Context, prog *nomut.Program, globals any, opts ...Options) (*Result, error) {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	if err := validateProgram(prog); err != nil {
		return nil, fmt.Errorf("invalid program: %w", err)
	}
	if err := validateGlobals(globals); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	env := newAnalysisEnv(ctx, opt)
	return env.execute(prog, globals)
}

func validateProgram(prog *nomut.Program) error {
	if prog == nil || prog.AST == nil {
		return fmt.Errorf("program cannot be nil")
	}
	return nil
}

// String returns a string representation of the result for debugging.
func (r *Result) String() string {
	if r == nil {
		return "<nil>"
	}
	warnings := ""
	if len(r.Warnings) > 0 {
		warnings = fmt.Sprintf(" (warnings: %d)", len(r.Warnings))
	}
	return fmt.Sprintf("Result{Diagnostics: %d%s}", len(r.Diagnostics), warnings)
}
