package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-e", "var a = 1;\nfunction f() { var b; a.push(b); }"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{
		"program ",
		"\n  var ",
		"\n  function-declaration ",
		"call [",
		`"a.push(b)"`,
		"scopes:\n  program vars=[a] functions=[f]\n",
		"  2:14 vars=[b] functions=[]\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no input", nil, 2},
		{"parse error", []string{"-e", "function ("}, 1},
		{"missing file", []string{"missing.js"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != tt.code {
				t.Errorf("run() = %d, want %d", code, tt.code)
			}
		})
	}
}

func TestSnippet(t *testing.T) {
	tests := map[string]string{
		"a":                     `"a"`,
		"a\nb":                  `"a…"`,
		strings.Repeat("x", 45): `"` + strings.Repeat("x", 40) + `…"`,
	}
	for in, want := range tests {
		if got := snippet(in); got != want {
			t.Errorf("snippet(%q) = %s, want %s", in, got, want)
		}
	}
}
