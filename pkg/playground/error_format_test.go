package playground

import (
	"strings"
	"testing"
)

func TestFormatLintErrors(t *testing.T) {
	tests := []struct {
		name     string
		errs     []string
		contains []string
		excludes []string
	}{
		{
			name:     "empty",
			errs:     nil,
			contains: []string{"no additional details"},
		},
		{
			name: "unsupported construct",
			errs: []string{"/components/schemas/State: analysis failed: SPREAD_ARGUMENT_ERR: Spread arguments are not supported (spread at 20-28)"},
			contains: []string{
				"- Unsupported construct (SPREAD_ARGUMENT_ERR)",
				"  Location: /components/schemas/State\n",
				"  Range: bytes 20-28 of the script\n",
				"  How to fix: Pass arguments explicitly",
				"  Details: analysis failed: SPREAD_ARGUMENT_ERR",
			},
		},
		{
			name:     "binding code",
			errs:     []string{"/x: REST_BINDING_ERR: Unknown rest format"},
			contains: []string{"Unsupported construct (REST_BINDING_ERR)", "plain identifiers"},
		},
		{
			name:     "call depth",
			errs:     []string{"/components/schemas/Loop: analysis failed: call depth exceeded"},
			contains: []string{"Maximum call depth exceeded", "Set a finite call depth ceiling"},
			excludes: []string{"Range:"},
		},
		{
			name:     "parse error",
			errs:     []string{"/components/schemas/State: x-no-global-mutation: 'script' is an invalid script: failed to parse script"},
			contains: []string{"The script does not parse."},
		},
		{
			name:     "no location",
			errs:     []string{"walk error: boom"},
			contains: []string{"- Lint error.", "  Details: walk error: boom"},
			excludes: []string{"Location:", "How to fix:"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatLintErrors(tt.errs)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Expected output to contain %q, got:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Expected output not to contain %q, got:\n%s", s, got)
				}
			}
		})
	}
}
