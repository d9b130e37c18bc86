package mutationexec

import (
	"errors"
	"fmt"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/dop251/goja/ast"
)

var (
	// ErrUnsupported is wrapped by every UnsupportedError.
	ErrUnsupported = errors.New("unsupported construct")

	// ErrCallDepthExceeded aborts an analysis without a call-depth ceiling
	// once nesting reaches the hard guard.
	ErrCallDepthExceeded = errors.New("call depth exceeded")

	// ErrInvalidGlobals is returned when the globals are not an object.
	ErrInvalidGlobals = errors.New("invalid globals")
)

// Codes of unsupported constructs.
const (
	CodeRestBinding    = "REST_BINDING_ERR"
	CodeAssignBinding  = "ASSIGN_BINDING_ERR"
	CodeSpreadArgument = "SPREAD_ARGUMENT_ERR"
	CodeParamBinding   = "PARAM_BINDING_ERR"
	CodeAssignTarget   = "ASSIGN_TARGET_ERR"
)

var unsupportedMessages = map[string]string{
	CodeRestBinding:    "Unknown rest format, expected Identifier",
	CodeAssignBinding:  "Unknown assignment format, expected Identifier",
	CodeSpreadArgument: "Spread arguments are not supported",
	CodeParamBinding:   "Unknown parameter format, expected Identifier",
	CodeAssignTarget:   "Unknown assignment target, expected Identifier or member expression",
}

// UnsupportedError reports syntax the analyzer cannot model. The analysis
// is incomplete for that input.
type UnsupportedError struct {
	Code  string
	Kind  nomut.NodeKind
	Start int
	End   int
}

func newUnsupportedError(code string, prog *nomut.Program, n ast.Node) *UnsupportedError {
	e := &UnsupportedError{Code: code, Kind: nomut.KindOf(n)}
	if prog != nil && n != nil {
		span := prog.Span(n)
		e.Start, e.End = span.Start, span.End
	}
	return e
}

func (e *UnsupportedError) Error() string {
	msg, ok := unsupportedMessages[e.Code]
	if !ok {
		msg = "unsupported construct"
	}
	return fmt.Sprintf("%s: %s (%s at %d-%d)", e.Code, msg, e.Kind, e.Start, e.End)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}
