package mutationexec

import (
	"fmt"

	"github.com/clockwork-dog/lint-no-global-mutations"
)

// Options configures the analysis.
type Options struct {
	// Limits to bound recursion through user functions
	MaxCallDepth int // Max nested user-function invocations; negative means unbounded (default: 100)

	// Behavior flags
	StrictMode     bool // If true, unsupported constructs fail the analysis; if false, they become warnings (default: true)
	EnableWarnings bool // If true, collect precision-loss warnings (default: true)

	// Logging configuration
	LogLevel            string // Log level: "error", "warn", "info", "debug"; empty disables logging (default: "")
	LogMaxPossibilities int    // Max possibilities shown per Reference in logs (default: 5)
	Logger              Logger // Optional logger; overrides LogLevel when set

	// Globals synthesized from JSON Schema (see GlobalsFromSchema)
	MaxSchemaDepth int // Max nesting followed when synthesizing globals (default: 16)

	// CallbackResolver, when set, is asked for external implementations of
	// members reached through the globals graph, e.g. event handlers
	// registered under a path. Each implementation is analyzed against its
	// own globals and invoked with the arguments of the call.
	CallbackResolver CallbackResolver
}

// DefaultOptions returns the default configuration for analysis.
func DefaultOptions() Options {
	return Options{
		MaxCallDepth:        100,
		StrictMode:          true,
		EnableWarnings:      true,
		LogLevel:            "",
		LogMaxPossibilities: 5,
		MaxSchemaDepth:      16,
	}
}

// CallbackResolver returns the implementations registered at a global path.
type CallbackResolver func(path Path) ([]Implementation, error)

// Implementation is external code reachable through the globals graph.
// Program is typically a single arrow or function expression; Globals is the
// globals object it runs against.
type Implementation struct {
	Program *nomut.Program
	Globals any
}

// Diagnostic is one possible mutation of a global value. Start and End are
// byte offsets into the analyzed source, End exclusive.
type Diagnostic struct {
	Message string `json:"message" yaml:"message"`
	Start   int    `json:"start" yaml:"start"`
	End     int    `json:"end" yaml:"end"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Span returns the diagnostic range.
func (d Diagnostic) Span() nomut.Span {
	return nomut.Span{Start: d.Start, End: d.End}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d-%d: %s", d.Start, d.End, d.Message)
}

// Result contains the diagnostics of one analysis.
type Result struct {
	Diagnostics []Diagnostic `json:"diagnostics"` // Deduplicated, ordered by position
	Warnings    []string     `json:"warnings"`    // Precision loss and skipped constructs
}
