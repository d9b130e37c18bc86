package playground

import (
	"context"
	"fmt"
	"strings"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/clockwork-dog/lint-no-global-mutations/mutationexec"
	"github.com/clockwork-dog/lint-no-global-mutations/pkg/diagfmt"
	"github.com/speakeasy-api/openapi/extensions"
	"github.com/speakeasy-api/openapi/jsonschema/oas3"
	"github.com/speakeasy-api/openapi/openapi"
	"gopkg.in/yaml.v3"
)

// ResultExtensionName is written next to every linted script.
const ResultExtensionName = "x-no-global-mutation-result"

// Finding holds the outcome of one script.
type Finding struct {
	Location    string                    `json:"location"` // JSON pointer of the carrying schema
	Diagnostics []mutationexec.Diagnostic `json:"diagnostics"`
	Warnings    []string                  `json:"warnings,omitempty"`
	Rendered    string                    `json:"rendered,omitempty"`
}

// LintReport contains the annotated document and one finding per script.
type LintReport struct {
	Document string    `json:"document"`
	Findings []Finding `json:"findings"`
	Warnings []string  `json:"warnings"`
}

// Violations returns the number of diagnostics across all findings.
func (r *LintReport) Violations() int {
	n := 0
	for _, f := range r.Findings {
		n += len(f.Diagnostics)
	}
	return n
}

// LintOpenAPI lints every x-no-global-mutation script in an OpenAPI document
// against globals synthesized from the schema carrying it. Each linted
// schema is annotated with x-no-global-mutation-result. In strict mode any
// script that cannot be analyzed fails the whole run.
func LintOpenAPI(oasYAML string, strict bool) (*LintReport, error) {
	ctx := context.Background()

	doc, validationErrs, err := openapi.Unmarshal(ctx, strings.NewReader(oasYAML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	if len(validationErrs) > 0 {
		return nil, fmt.Errorf("OpenAPI validation failed: %v", validationErrs[0])
	}

	report := &LintReport{
		Findings: []Finding{},
		Warnings: []string{},
	}

	type schemaToLint struct {
		schema   *oas3.JSONSchema[oas3.Referenceable]
		location string
	}
	var schemasToLint []schemaToLint
	seen := make(map[string]bool)
	var lintErrors []string

	for item := range openapi.Walk(ctx, doc) {
		err := item.Match(openapi.Matcher{
			Schema: func(schema *oas3.JSONSchema[oas3.Referenceable]) error {
				if schema.GetExtensions() == nil {
					return nil
				}
				if _, ok := schema.GetExtensions().Get(ExtensionName); !ok {
					return nil
				}
				location := string(item.Location.ToJSONPointer())
				if !seen[location] {
					seen[location] = true
					schemasToLint = append(schemasToLint, schemaToLint{schema: schema, location: location})
				}
				return nil
			},
		})
		if err != nil {
			lintErrors = append(lintErrors, fmt.Sprintf("walk error: %v", err))
		}
	}

	opts := mutationexec.DefaultOptions()
	opts.StrictMode = strict
	for _, sl := range schemasToLint {
		finding, err := lintSchema(ctx, sl.schema, sl.location, opts)
		if err != nil {
			lintErrors = append(lintErrors, fmt.Sprintf("%s: %v", sl.location, err))
			continue
		}
		report.Findings = append(report.Findings, *finding)
	}

	if strict && len(lintErrors) > 0 {
		return nil, fmt.Errorf("%s", FormatLintErrors(lintErrors))
	}
	report.Warnings = append(report.Warnings, lintErrors...)

	var buf strings.Builder
	if err := openapi.Marshal(ctx, doc, &buf); err != nil {
		return nil, fmt.Errorf("failed to marshal annotated document: %w", err)
	}
	report.Document = buf.String()

	return report, nil
}

// lintSchema analyzes the script carried by schema and annotates the schema
// with the result.
func lintSchema(ctx context.Context, schema *oas3.JSONSchema[oas3.Referenceable], location string, opts mutationexec.Options) (*Finding, error) {
	node, ok := schema.GetExtensions().Get(ExtensionName)
	if !ok {
		return nil, fmt.Errorf("missing %s", ExtensionName)
	}
	script, err := ParseLintExtension(node)
	if err != nil {
		return nil, err
	}

	schemaValue := schema.GetLeft()
	if schemaValue == nil {
		return nil, fmt.Errorf("schema is a reference or boolean, cannot synthesize globals")
	}
	globals, err := mutationexec.GlobalsFromSchema(schemaValue, opts)
	if err != nil {
		return nil, err
	}

	if len(script.Handlers) > 0 {
		opts.CallbackResolver = handlerResolver(script.Handlers, globals)
	}
	result, err := mutationexec.Analyze(ctx, script.Program, globals, opts)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	finding := &Finding{
		Location:    location,
		Diagnostics: result.Diagnostics,
		Warnings:    result.Warnings,
	}
	if finding.Diagnostics == nil {
		finding.Diagnostics = []mutationexec.Diagnostic{}
	}
	if len(result.Diagnostics) > 0 {
		rendered, err := diagfmt.Format(script.Program, result.Diagnostics, diagfmt.DiagFmtCfg{})
		if err != nil {
			return nil, err
		}
		finding.Rendered = rendered
	}

	if err := annotate(schemaValue, script.Program, result.Diagnostics); err != nil {
		return nil, err
	}
	return finding, nil
}

// handlerResolver serves the handlers registered under a global path. The
// handlers run against the same globals as the script.
func handlerResolver(handlers map[string][]*nomut.Program, globals map[string]any) mutationexec.CallbackResolver {
	return func(path mutationexec.Path) ([]mutationexec.Implementation, error) {
		progs, ok := handlers[path.String()]
		if !ok {
			return nil, nil
		}
		impls := make([]mutationexec.Implementation, 0, len(progs))
		for _, p := range progs {
			impls = append(impls, mutationexec.Implementation{Program: p, Globals: globals})
		}
		return impls, nil
	}
}

type annotation struct {
	Message string `yaml:"message"`
	Path    string `yaml:"path,omitempty"`
	Line    int    `yaml:"line"`
	Column  int    `yaml:"column"`
}

// annotate records the diagnostics on schema under ResultExtensionName.
func annotate(schema *oas3.Schema, prog *nomut.Program, diags []mutationexec.Diagnostic) error {
	entries := make([]annotation, 0, len(diags))
	for _, d := range diags {
		line, col := prog.Position(d.Start)
		entries = append(entries, annotation{Message: d.Message, Path: d.Path, Line: line, Column: col})
	}

	var node yaml.Node
	if err := node.Encode(entries); err != nil {
		return fmt.Errorf("failed to encode %s: %w", ResultExtensionName, err)
	}
	if schema.Extensions == nil {
		schema.Extensions = extensions.New()
	}
	schema.Extensions.Set(ResultExtensionName, &node)
	return nil
}
