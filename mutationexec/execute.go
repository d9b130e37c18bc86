package mutationexec

import (
	"context"
	"fmt"
	"time"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/dop251/goja/ast"
)

// hardCallDepthGuard bounds nesting when no call-depth ceiling is set, so a
// self-recursive program aborts with an error instead of exhausting the
// native stack.
const hardCallDepthGuard = 10000

// analysisEnv is the state of one analysis. Nothing in it outlives the
// call to Analyze.
type analysisEnv struct {
	ctx      context.Context
	opts     Options
	logger   Logger
	execID   string
	warnings []string

	prov    *Provenance
	globals *globalsBuilder
	scopes  map[*nomut.Program]hoistedScopes

	// prog is the program whose syntax is currently evaluated. Function
	// values switch it to the program they were defined in.
	prog *nomut.Program
	// anchors holds host call sites while external callback programs run;
	// diagnostics raised there are reported at anchors[0].
	anchors []nomut.Span

	diags  []Diagnostic
	thrown *Reference

	depth int // nested user-function invocations
	calls int // total user-function invocations

	// budget caps re-entries of each function while it is already on the
	// call chain; 0 means unlimited. Calls to functions not on the chain are
	// never cut by it.
	budget       int
	active       map[ast.Node]int // invocations of each function on the chain
	reentries    map[ast.Node]int
	budgetWarned map[ast.Node]bool

	ceilingWarned bool
}

// newAnalysisEnv creates a new analysis environment.
func newAnalysisEnv(ctx context.Context, opts Options) *analysisEnv {
	var logger Logger
	switch {
	case opts.Logger != nil:
		logger = opts.Logger
	case opts.LogLevel != "":
		logger = NewLogger(ParseLogLevel(opts.LogLevel), nil)
	default:
		logger = discardLogger{}
	}

	// Generate unique analysis ID
	execID := fmt.Sprintf("a%d", time.Now().UnixNano()%1000000)

	prov := newProvenance()
	env := &analysisEnv{
		ctx:      ctx,
		opts:     opts,
		logger:   logger.With(map[string]any{"analysis": execID}),
		execID:   execID,
		warnings: make([]string, 0),
		prov:     prov,
		globals:  newGlobalsBuilder(prov),
		scopes:   make(map[*nomut.Program]hoistedScopes),
		thrown:   NewReference(),

		active:       make(map[ast.Node]int),
		reentries:    make(map[ast.Node]int),
		budgetWarned: make(map[ast.Node]bool),
	}
	if opts.MaxCallDepth > 0 {
		// Safeguard against branching recursion below the ceiling
		env.budget = opts.MaxCallDepth * 1000
	}
	return env
}

// execute analyzes prog against globals.
func (env *analysisEnv) execute(prog *nomut.Program, globals any) (*Result, error) {
	start := time.Now()
	frame := env.globals.frame(globals)

	env.logger.With(map[string]any{
		"globals":    len(frame.bindings),
		"containers": env.prov.Len(),
		"statements": len(prog.AST.Body),
	}).Infof("Starting analysis")

	if _, err := env.runProgram(prog, newStack(frame)); err != nil {
		return nil, err
	}

	diags := dedupeDiagnostics(env.diags)
	env.logger.With(map[string]any{
		"raw":         len(env.diags),
		"diagnostics": len(diags),
		"warnings":    len(env.warnings),
		"calls":       env.calls,
		"elapsed":     time.Since(start),
	}).Infof("Analysis complete")

	return &Result{Diagnostics: diags, Warnings: env.warnings}, nil
}

// runProgram walks a whole program on top of stack and returns what it
// evaluates to: its return statements, or the value of its only expression
// statement.
func (env *analysisEnv) runProgram(prog *nomut.Program, stack *Stack) (*Reference, error) {
	scopes, ok := env.scopes[prog]
	if !ok {
		scopes = buildHoistedScopes(prog)
		env.scopes[prog] = scopes
	}

	prev := env.prog
	env.prog = prog
	defer func() { env.prog = prev }()

	ws := &walkState{
		stack: scopes.lookup(programScopeKey).instantiate(nil, stack, prog),
		ret:   NewReference(),
		fold:  len(prog.AST.Body) == 1,
	}
	if err := env.walkStatements(prog.AST.Body, ws); err != nil {
		return nil, err
	}
	return ws.ret, nil
}

// hoisted returns the hoisted scopes of the current program.
func (env *analysisEnv) hoisted() hoistedScopes {
	scopes, ok := env.scopes[env.prog]
	if !ok {
		panic("no hoisted scopes for the current program")
	}
	return scopes
}

// checkContext reports cancellation of the analysis context.
func (env *analysisEnv) checkContext() error {
	select {
	case <-env.ctx.Done():
		return env.ctx.Err()
	default:
		return nil
	}
}

// addWarning records a precision-loss warning if enabled.
func (env *analysisEnv) addWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	env.logger.Warnf("%s", msg)
	if env.opts.EnableWarnings {
		env.warnings = append(env.warnings, msg)
	}
}

// unsupported handles a construct the analyzer cannot model. In strict mode
// it returns the error; otherwise it records a warning and returns nil.
func (env *analysisEnv) unsupported(code string, n ast.Node) error {
	err := newUnsupportedError(code, env.prog, n)
	if env.opts.StrictMode {
		return err
	}
	env.addWarning("%s", err.Error())
	return nil
}

// anchor returns the range a diagnostic about n is reported at.
func (env *analysisEnv) anchor(n ast.Node) nomut.Span {
	if len(env.anchors) > 0 {
		return env.anchors[0]
	}
	return env.prog.Span(n)
}

// report records a diagnostic about n.
func (env *analysisEnv) report(n ast.Node, message string, path Path) {
	span := env.anchor(n)
	d := Diagnostic{Message: message, Start: span.Start, End: span.End}
	if path != nil {
		d.Path = path.String()
	}
	env.diags = append(env.diags, d)
	env.logger.With(map[string]any{
		"start": d.Start,
		"end":   d.End,
		"node":  nomut.KindOf(n),
	}).Infof("Violation: %s", message)
}

// checkGlobal reports a diagnostic at n if any possibility of ref has
// global provenance. format receives the rendered path.
func (env *analysisEnv) checkGlobal(ref *Reference, n ast.Node, format string) bool {
	path, ok := env.prov.LookupAny(ref)
	if !ok {
		return false
	}
	env.report(n, fmt.Sprintf(format, path), path)
	return true
}
