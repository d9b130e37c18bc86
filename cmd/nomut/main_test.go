package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clockwork-dog/lint-no-global-mutations/mutationexec"
	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	globals := writeFile(t, dir, "globals.yaml", "globalArr: []\nglobalObj:\n  nested: {a: 1}\n")
	clean := writeFile(t, dir, "clean.js", "const copy = [...globalArr];\ncopy.push(1);\n")
	dirty := writeFile(t, dir, "dirty.js", "globalObj.nested.a = 2;\n")

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout []string
		wantStderr string
	}{
		{
			name:     "clean",
			args:     []string{"-globals", globals, clean},
			wantCode: 0,
		},
		{
			name:       "violation",
			args:       []string{"-globals", globals, "-color", "never", dirty},
			wantCode:   1,
			wantStdout: []string{"error: Cannot assign to property of global value globalObj.nested", "1 | globalObj.nested.a = 2;", "= global: globalObj.nested"},
		},
		{
			name:       "sections",
			args:       []string{"-globals", globals, "-sections", "message", dirty},
			wantCode:   1,
			wantStdout: []string{"error: Cannot assign"},
		},
		{
			name:       "no scripts",
			args:       []string{"-globals", globals},
			wantCode:   2,
			wantStderr: "usage: nomut",
		},
		{
			name:       "unknown format",
			args:       []string{"-format", "xml", dirty},
			wantCode:   2,
			wantStderr: `unknown format "xml"`,
		},
		{
			name:       "invalid section",
			args:       []string{"-sections", "bogus", dirty},
			wantCode:   2,
			wantStderr: "invalid section",
		},
		{
			name:       "missing config",
			args:       []string{"-config", filepath.Join(dir, "missing.yaml"), dirty},
			wantCode:   2,
			wantStderr: "failed to read config",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			if code != tt.wantCode {
				t.Fatalf("run() = %d, want %d\nstdout: %s\nstderr: %s", code, tt.wantCode, stdout.String(), stderr.String())
			}
			for _, s := range tt.wantStdout {
				if !strings.Contains(stdout.String(), s) {
					t.Errorf("Expected stdout to contain %q, got:\n%s", s, stdout.String())
				}
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("Expected stderr to contain %q, got:\n%s", tt.wantStderr, stderr.String())
			}
		})
	}
}

func TestRun_JSON(t *testing.T) {
	dir := t.TempDir()
	globals := writeFile(t, dir, "globals.json", `{"globalArr": []}`)
	script := writeFile(t, dir, "a.js", "globalArr.pop();")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-globals", globals, "-format", "json", script}, &stdout, &stderr); code != 1 {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}

	var got []fileReport
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("json.Unmarshal failed: %v\n%s", err, stdout.String())
	}
	want := []fileReport{{
		File: script,
		Diagnostics: []mutationexec.Diagnostic{{
			Message: "Can't call mutating array instance method on globalArr",
			Start:   0,
			End:     15,
			Path:    "globalArr",
		}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	globals := writeFile(t, dir, "globals.yaml", "globalArr: []\n")
	script := writeFile(t, dir, "a.js", "function f(a) {}\nf(...globalArr);")

	strictOff := writeFile(t, dir, "off.yaml", "globals: "+globals+"\nstrict: false\nformat: yaml\n")
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-config", strictOff, script}, &stdout, &stderr); code != 0 {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "SPREAD_ARGUMENT_ERR") {
		t.Errorf("Expected spread warning in report, got:\n%s", stdout.String())
	}

	// Flags override the file.
	stdout.Reset()
	stderr.Reset()
	if code := run([]string{"-config", strictOff, "-strict=true", script}, &stdout, &stderr); code != 2 {
		t.Fatalf("run() = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "SPREAD_ARGUMENT_ERR") {
		t.Errorf("Expected strict failure, got:\n%s", stderr.String())
	}

	unknown := writeFile(t, dir, "unknown.yaml", "bogus: 1\n")
	if code := run([]string{"-config", unknown, script}, &stdout, &stderr); code != 2 {
		t.Errorf("run() = %d, want 2 for unknown config key", code)
	}
}

func TestLoadGlobals(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "g.yaml", "list: [1, two, 2.5]\nobj:\n  k: v\n  n: {deep: 3}\n")
	got, err := loadGlobals(path)
	if err != nil {
		t.Fatalf("loadGlobals failed: %v", err)
	}
	want := map[string]any{
		"list": []any{1, "two", 2.5},
		"obj":  map[string]any{"k": "v", "n": map[string]any{"deep": 3}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loadGlobals mismatch (-want +got):\n%s", diff)
	}

	empty, err := loadGlobals("")
	if err != nil || len(empty) != 0 {
		t.Errorf("loadGlobals(\"\") = %v, %v", empty, err)
	}
	if _, err := loadGlobals(writeFile(t, dir, "bad.yaml", "- a\n- b\n")); err == nil {
		t.Error("Expected error for a sequence document")
	}
}
