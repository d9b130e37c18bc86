// Package diagfmt renders no-global-mutation diagnostics for humans: a
// headline, the source location and an excerpt with carets under the
// offending range.
package diagfmt

import (
	"fmt"
	"strings"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/clockwork-dog/lint-no-global-mutations/mutationexec"
	"github.com/mattn/go-runewidth"
)

// DiagFmtCfg selects what Format prints.
type DiagFmtCfg struct {
	Sections []string // subset of "message", "location", "excerpt", "path"; empty means all
	Context  int      // lines of source shown before and after the excerpt
	TabWidth int      // columns a tab advances; 0 means 4
	Color    bool     // wrap headline and carets in ANSI colour
}

var validSections = []string{
	"message",
	"location",
	"excerpt",
	"path",
}

// ValidateConfig normalizes section names and checks the numeric settings.
func ValidateConfig(cfg DiagFmtCfg) (DiagFmtCfg, error) {
	sections := make([]string, len(cfg.Sections))
	for s, section := range cfg.Sections {
		valid := false
		for _, vs := range validSections {
			if strings.EqualFold(section, vs) {
				sections[s] = vs
				valid = true
			}
		}
		if !valid {
			return cfg, fmt.Errorf("invalid section %q; valid sections: %s", section, strings.Join(validSections, ", "))
		}
	}
	if len(sections) == 0 {
		sections = append(sections, validSections...)
	}
	cfg.Sections = sections

	if cfg.Context < 0 {
		return cfg, fmt.Errorf("context must not be negative, got %d", cfg.Context)
	}
	if cfg.TabWidth == 0 {
		cfg.TabWidth = 4
	}
	if cfg.TabWidth < 0 || cfg.TabWidth > 16 {
		return cfg, fmt.Errorf("tab width must be between 1 and 16, got %d", cfg.TabWidth)
	}
	return cfg, nil
}

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Format renders every diagnostic against prog's source, separated by blank
// lines.
func Format(prog *nomut.Program, diags []mutationexec.Diagnostic, cfg DiagFmtCfg) (string, error) {
	cfg, err := ValidateConfig(cfg)
	if err != nil {
		return "", fmt.Errorf("invalid format config: %w", err)
	}
	if prog == nil {
		return "", fmt.Errorf("program cannot be nil")
	}

	f := &formatter{
		cfg:   cfg,
		prog:  prog,
		lines: strings.Split(prog.Source, "\n"),
	}
	parts := make([]string, 0, len(diags))
	for _, d := range diags {
		parts = append(parts, f.diagnostic(d))
	}
	return strings.Join(parts, "\n"), nil
}

type formatter struct {
	cfg   DiagFmtCfg
	prog  *nomut.Program
	lines []string
}

func (f *formatter) has(section string) bool {
	for _, s := range f.cfg.Sections {
		if s == section {
			return true
		}
	}
	return false
}

func (f *formatter) paint(code, s string) string {
	if !f.cfg.Color {
		return s
	}
	return code + s + ansiReset
}

func (f *formatter) diagnostic(d mutationexec.Diagnostic) string {
	var b strings.Builder
	line, col := f.prog.Position(d.Start)
	endLine, endCol := f.prog.Position(d.End)
	gutter := len(fmt.Sprint(min(endLine+f.cfg.Context, len(f.lines))))

	if f.has("message") {
		b.WriteString(f.paint(ansiBold+ansiRed, "error"))
		fmt.Fprintf(&b, ": %s\n", d.Message)
	}
	if f.has("location") {
		name := f.prog.Name
		if name == "" {
			name = "<script>"
		}
		fmt.Fprintf(&b, "%s--> %s:%d:%d\n", strings.Repeat(" ", gutter), name, line, col)
	}
	if f.has("excerpt") {
		pad := strings.Repeat(" ", gutter)
		fmt.Fprintf(&b, "%s |\n", pad)
		first := max(1, line-f.cfg.Context)
		last := min(len(f.lines), endLine+f.cfg.Context)
		for n := first; n <= last; n++ {
			text := f.lines[n-1]
			fmt.Fprintf(&b, "%*d | %s\n", gutter, n, f.expand(text))
			if n < line || n > endLine {
				continue
			}
			from, to := 1, len(text)+1
			if n == line {
				from = col
			}
			if n == endLine {
				to = endCol
			}
			if to <= from {
				to = from + 1
			}
			lead := f.width(text[:min(from-1, len(text))])
			span := f.width(text[:min(to-1, len(text))]) - lead
			if span == 0 {
				span = 1
			}
			carets := f.paint(ansiRed, strings.Repeat("^", span))
			fmt.Fprintf(&b, "%s | %s%s\n", pad, strings.Repeat(" ", lead), carets)
		}
	}
	if f.has("path") && d.Path != "" {
		fmt.Fprintf(&b, "%s = global: %s\n", strings.Repeat(" ", gutter), d.Path)
	}
	return b.String()
}

// expand replaces tabs so excerpt and caret columns agree.
func (f *formatter) expand(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := f.cfg.TabWidth - col%f.cfg.TabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}

// width returns the display width of s once tabs are expanded.
func (f *formatter) width(s string) int {
	return runewidth.StringWidth(f.expand(s))
}
