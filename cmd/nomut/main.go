// Command nomut reports every place a script could mutate a global value.
//
//	nomut -globals globals.yaml script.js...
//
// The exit status is 1 when any violation is found and 2 on errors.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/clockwork-dog/lint-no-global-mutations/mutationexec"
	"github.com/clockwork-dog/lint-no-global-mutations/pkg/diagfmt"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// fileReport is one script's result in json and yaml output.
type fileReport struct {
	File        string                    `json:"file" yaml:"file"`
	Diagnostics []mutationexec.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Warnings    []string                  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("nomut", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", defaultConfigFile, "config file")
	globalsPath := fs.String("globals", "", "YAML or JSON file holding the globals object")
	maxCallDepth := fs.Int("max-call-depth", 100, "max nested function invocations; negative means unbounded")
	strict := fs.Bool("strict", true, "fail on unsupported constructs")
	warnings := fs.Bool("warnings", true, "print precision-loss warnings")
	logLevel := fs.String("log-level", "", "analysis log level: error, warn, info, debug")
	format := fs.String("format", "text", "output format: text, json, yaml")
	color := fs.String("color", "auto", "colour text output: auto, always, never")
	contextLines := fs.Int("context", 0, "source lines shown around each excerpt")
	sections := fs.String("sections", "", "comma-separated text sections: message, location, excerpt, path")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	explicit := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	cfg, err := loadConfig(*configPath, explicit)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	// Flags override the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "globals":
			cfg.Globals = *globalsPath
		case "max-call-depth":
			cfg.MaxCallDepth = maxCallDepth
		case "strict":
			cfg.Strict = strict
		case "warnings":
			cfg.Warnings = warnings
		case "log-level":
			cfg.LogLevel = *logLevel
		case "format":
			cfg.Format = *format
		case "color":
			cfg.Color = *color
		case "context":
			cfg.Context = *contextLines
		case "sections":
			cfg.Sections = strings.Split(*sections, ",")
		}
	})
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Color == "" {
		cfg.Color = "auto"
	}
	switch cfg.Format {
	case "text", "json", "yaml":
	default:
		fmt.Fprintf(stderr, "unknown format %q\n", cfg.Format)
		return 2
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: nomut [flags] script.js...")
		return 2
	}

	globals, err := loadGlobals(cfg.Globals)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	opts := cfg.options()
	if opts.LogLevel != "" {
		opts.Logger = mutationexec.NewLogger(mutationexec.ParseLogLevel(opts.LogLevel), stderr)
	}
	fmtCfg := cfg.formatConfig(useColor(cfg.Color, stdout))
	if _, err := diagfmt.ValidateConfig(fmtCfg); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	ctx := context.Background()
	var reports []fileReport
	violations := 0
	for _, path := range fs.Args() {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		prog, err := nomut.ParseFile(path, string(src))
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		result, err := mutationexec.Analyze(ctx, prog, globals, opts)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			return 2
		}
		violations += len(result.Diagnostics)

		if cfg.Format == "text" {
			out, err := diagfmt.Format(prog, result.Diagnostics, fmtCfg)
			if err != nil {
				fmt.Fprintln(stderr, err)
				return 2
			}
			if out != "" {
				fmt.Fprintln(stdout, out)
			}
			if opts.EnableWarnings {
				for _, w := range result.Warnings {
					fmt.Fprintf(stderr, "%s: warning: %s\n", path, w)
				}
			}
			continue
		}

		diags := result.Diagnostics
		if diags == nil {
			diags = []mutationexec.Diagnostic{}
		}
		reports = append(reports, fileReport{File: path, Diagnostics: diags, Warnings: result.Warnings})
	}

	switch cfg.Format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		enc.Close()
	}

	if violations > 0 {
		return 1
	}
	return 0
}

// useColor resolves the color setting against the output stream.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
