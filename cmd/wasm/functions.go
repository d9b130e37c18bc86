//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/clockwork-dog/lint-no-global-mutations/mutationexec"
	"github.com/clockwork-dog/lint-no-global-mutations/pkg/diagfmt"
	"github.com/clockwork-dog/lint-no-global-mutations/pkg/playground"
)

// LintScript analyzes a script against a JSON globals object and returns the
// result as JSON.
func LintScript(src, globalsJSON string, strict bool) (string, error) {
	var globals any
	if err := json.Unmarshal([]byte(globalsJSON), &globals); err != nil {
		return "", fmt.Errorf("failed to parse globals: %w", err)
	}

	opts := mutationexec.DefaultOptions()
	opts.StrictMode = strict
	result, err := mutationexec.AnalyzeSource(context.Background(), src, globals, opts)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(out), nil
}

// FormatDiagnostics renders diagnostics given as JSON against their script.
func FormatDiagnostics(src, diagnosticsJSON string) (string, error) {
	prog, err := nomut.Parse(src)
	if err != nil {
		return "", err
	}
	var diags []mutationexec.Diagnostic
	if err := json.Unmarshal([]byte(diagnosticsJSON), &diags); err != nil {
		return "", fmt.Errorf("failed to parse diagnostics: %w", err)
	}
	return diagfmt.Format(prog, diags, diagfmt.DiagFmtCfg{})
}

// promisify wraps a Go function to return a JavaScript Promise
func promisify(fn func(args []js.Value) (string, error)) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		handler := js.FuncOf(func(this js.Value, promiseArgs []js.Value) any {
			resolve := promiseArgs[0]
			reject := promiseArgs[1]

			go func() {
				result, err := fn(args)
				if err != nil {
					errorConstructor := js.Global().Get("Error")
					reject.Invoke(errorConstructor.New(err.Error()))
					return
				}
				resolve.Invoke(result)
			}()

			return nil
		})

		promiseConstructor := js.Global().Get("Promise")
		return promiseConstructor.New(handler)
	})
}

func main() {
	js.Global().Set("LintScript", promisify(func(args []js.Value) (string, error) {
		if len(args) < 2 || len(args) > 3 {
			return "", fmt.Errorf("LintScript: expected 2 or 3 args (source, globalsJSON, strict?), got %v", len(args))
		}
		strict := len(args) < 3 || args[2].Truthy()
		return LintScript(args[0].String(), args[1].String(), strict)
	}))

	js.Global().Set("FormatDiagnostics", promisify(func(args []js.Value) (string, error) {
		if len(args) != 2 {
			return "", fmt.Errorf("FormatDiagnostics: expected 2 args (source, diagnosticsJSON), got %v", len(args))
		}
		return FormatDiagnostics(args[0].String(), args[1].String())
	}))

	js.Global().Set("LintOpenAPI", promisify(func(args []js.Value) (string, error) {
		if len(args) < 1 || len(args) > 2 {
			return "", fmt.Errorf("LintOpenAPI: expected 1 or 2 args (oasYAML, strict?), got %v", len(args))
		}
		strict := len(args) < 2 || args[1].Truthy()

		result, err := playground.LintOpenAPI(args[0].String(), strict)
		if err != nil {
			return "", err
		}
		jsonBytes, err := json.Marshal(result)
		if err != nil {
			return "", fmt.Errorf("failed to marshal lint report: %w", err)
		}
		return string(jsonBytes), nil
	}))

	// Keep the program running
	<-make(chan bool)
}
