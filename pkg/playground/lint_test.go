package playground

import (
	"strings"
	"testing"

	"github.com/clockwork-dog/lint-no-global-mutations/mutationexec"
	"github.com/google/go-cmp/cmp"
)

const stateSchema = `openapi: 3.1.0
info:
  title: Test
  version: 1.0.0
components:
  schemas:
    State:
      type: object
      x-no-global-mutation: |
        items.push(1);
        const copy = [...items];
        copy.push(2);
      properties:
        items:
          type: array
          items:
            type: string
        count:
          type: integer
    Clean:
      type: object
      x-no-global-mutation: "const total = items.length + 1;"
      properties:
        items:
          type: array
          items:
            type: string
    Plain:
      type: object
      properties:
        id:
          type: integer
`

func TestLintOpenAPI(t *testing.T) {
	report, err := LintOpenAPI(stateSchema, true)
	if err != nil {
		t.Fatalf("LintOpenAPI failed: %v", err)
	}

	if len(report.Findings) != 2 {
		t.Fatalf("Expected 2 findings, got %d", len(report.Findings))
	}
	byLocation := make(map[string]Finding)
	for _, f := range report.Findings {
		byLocation[f.Location] = f
	}

	state, ok := byLocation["/components/schemas/State"]
	if !ok {
		t.Fatalf("Expected finding for State, got %v", report.Findings)
	}
	want := []mutationexec.Diagnostic{{
		Message: "Can't call mutating array instance method on items",
		Start:   0,
		End:     13,
		Path:    "items",
	}}
	if diff := cmp.Diff(want, state.Diagnostics); diff != "" {
		t.Errorf("Diagnostics mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(state.Rendered, "items.push(1);") {
		t.Errorf("Expected rendered excerpt, got %q", state.Rendered)
	}

	clean := byLocation["/components/schemas/Clean"]
	if len(clean.Diagnostics) != 0 || clean.Rendered != "" {
		t.Errorf("Expected clean finding, got %+v", clean)
	}
	if report.Violations() != 1 {
		t.Errorf("Violations() = %d, want 1", report.Violations())
	}

	if !strings.Contains(report.Document, ResultExtensionName) {
		t.Error("Expected document to carry the result extension")
	}
	if !strings.Contains(report.Document, "message: Can't call mutating array instance method on items") {
		t.Errorf("Expected annotated message in document:\n%s", report.Document)
	}
}

func TestLintOpenAPI_Handlers(t *testing.T) {
	oasYAML := `openapi: 3.1.0
info:
  title: Test
  version: 1.0.0
components:
  schemas:
    Bus:
      type: object
      x-no-global-mutation:
        script: events.emit(log);
        handlers:
          events.emit: "(list) => list.push(1)"
      properties:
        events:
          type: object
        log:
          type: array
          items:
            type: string
`
	report, err := LintOpenAPI(oasYAML, true)
	if err != nil {
		t.Fatalf("LintOpenAPI failed: %v", err)
	}
	if len(report.Findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(report.Findings))
	}
	want := []mutationexec.Diagnostic{{
		Message: "Can't call mutating array instance method on log",
		Start:   0,
		End:     16,
		Path:    "log",
	}}
	if diff := cmp.Diff(want, report.Findings[0].Diagnostics); diff != "" {
		t.Errorf("Diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestLintOpenAPI_Strict(t *testing.T) {
	oasYAML := `openapi: 3.1.0
info:
  title: Test
  version: 1.0.0
components:
  schemas:
    State:
      type: object
      x-no-global-mutation: |
        function f(a) {}
        f(...items);
      properties:
        items:
          type: array
          items:
            type: string
`
	_, err := LintOpenAPI(oasYAML, true)
	if err == nil {
		t.Fatal("Expected strict mode error")
	}
	for _, s := range []string{"Lint failed (strict mode)", "SPREAD_ARGUMENT_ERR", "Location: /components/schemas/State"} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("Expected error to contain %q, got:\n%s", s, err.Error())
		}
	}

	report, err := LintOpenAPI(oasYAML, false)
	if err != nil {
		t.Fatalf("LintOpenAPI failed: %v", err)
	}
	if len(report.Findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(report.Findings))
	}
	warnings := strings.Join(report.Findings[0].Warnings, "\n")
	if !strings.Contains(warnings, "SPREAD_ARGUMENT_ERR") {
		t.Errorf("Expected spread warning, got %q", warnings)
	}
}

func TestLintOpenAPI_InvalidScript(t *testing.T) {
	oasYAML := `openapi: 3.1.0
info:
  title: Test
  version: 1.0.0
components:
  schemas:
    State:
      type: object
      x-no-global-mutation: "const = ;"
      properties:
        id:
          type: integer
`
	report, err := LintOpenAPI(oasYAML, false)
	if err != nil {
		t.Fatalf("LintOpenAPI failed: %v", err)
	}
	if len(report.Findings) != 0 || len(report.Warnings) != 1 {
		t.Fatalf("Expected 1 warning and no findings, got %+v", report)
	}
	if !strings.HasPrefix(report.Warnings[0], "/components/schemas/State: ") {
		t.Errorf("Expected warning located at the schema, got %q", report.Warnings[0])
	}
}

func TestLintOpenAPI_InvalidDocument(t *testing.T) {
	if _, err := LintOpenAPI("not: [valid", true); err == nil {
		t.Error("Expected parse error")
	}
}
