package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/clockwork-dog/lint-no-global-mutations/pkg/playground"
)

const doc = `openapi: 3.1.0
info:
  title: Test
  version: 1.0.0
components:
  schemas:
    State:
      type: object
      x-no-global-mutation: "delete settings.theme;"
      properties:
        settings:
          type: object
          properties:
            theme:
              type: string
`

func TestRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader(doc), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("run() = %d, want 1\nstderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "x-no-global-mutation-result:") {
		t.Errorf("Expected annotated document, got:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "/components/schemas/State:\nerror: Cannot delete property of global value settings") {
		t.Errorf("Expected rendered finding on stderr, got:\n%s", stderr.String())
	}
}

func TestRun_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-json", "-"}, strings.NewReader(doc), &stdout, &stderr); code != 1 {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}
	var findings []playground.Finding
	if err := json.Unmarshal(stdout.Bytes(), &findings); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}
	if len(findings) != 1 || len(findings[0].Diagnostics) != 1 {
		t.Fatalf("Expected one diagnostic, got %+v", findings)
	}
	if got := findings[0].Diagnostics[0].Path; got != "settings" {
		t.Errorf("Path = %q, want settings", got)
	}
}

func TestRun_InvalidDocument(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, strings.NewReader("openapi: ["), &stdout, &stderr); code != 2 {
		t.Errorf("run() = %d, want 2", code)
	}
}
