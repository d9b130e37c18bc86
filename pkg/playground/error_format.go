// Package playground lints the no-global-mutation scripts embedded in
// OpenAPI specifications.
package playground

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	pointerRe = regexp.MustCompile(`^(/[^\s:]*):\s*`)
	codeRe    = regexp.MustCompile(`\b([A-Z]+(?:_[A-Z]+)*_ERR)\b`)
	offsetRe  = regexp.MustCompile(`at (\d+)-(\d+)\)`)
)

// FormatLintErrors turns low-level lint errors into a user-facing message.
func FormatLintErrors(errs []string) string {
	if len(errs) == 0 {
		return "Lint failed, but no additional details were provided."
	}

	var b strings.Builder
	b.WriteString("Lint failed (strict mode).\n")

	for _, e := range errs {
		loc, rest := deriveLocation(e)
		msg, hint := classifyAndHint(rest)

		fmt.Fprintf(&b, "- %s\n", msg)
		if loc != "" {
			fmt.Fprintf(&b, "  Location: %s\n", loc)
		}
		if m := offsetRe.FindStringSubmatch(rest); len(m) == 3 {
			fmt.Fprintf(&b, "  Range: bytes %s-%s of the script\n", m[1], m[2])
		}
		if hint != "" {
			fmt.Fprintf(&b, "  How to fix: %s\n", hint)
		}
		if details := strings.TrimSpace(rest); details != "" {
			fmt.Fprintf(&b, "  Details: %s\n", details)
		}
	}

	return b.String()
}

// deriveLocation splits the JSON pointer prefix off an error.
func deriveLocation(s string) (loc, rest string) {
	if m := pointerRe.FindStringSubmatchIndex(s); m != nil {
		return s[m[2]:m[3]], s[m[1]:]
	}
	return "", s
}

func classifyAndHint(s string) (msg, hint string) {
	if m := codeRe.FindStringSubmatch(s); len(m) == 2 {
		msg = fmt.Sprintf("Unsupported construct (%s). The analyzer cannot prove this code safe.", m[1])
		switch m[1] {
		case "SPREAD_ARGUMENT_ERR":
			hint = `Pass arguments explicitly instead of spreading them into a user function.`
		case "ASSIGN_TARGET_ERR":
			hint = `Assign to a variable or a property; destructuring assignment targets are not supported.`
		default:
			hint = `Use plain identifiers in this binding position, or lint with strict mode off to downgrade this to a warning.`
		}
		return
	}
	if strings.Contains(s, "call depth exceeded") {
		msg = `Maximum call depth exceeded. The script recurses without bound.`
		hint = `Set a finite call depth ceiling.`
		return
	}
	if strings.Contains(s, "invalid script") {
		msg = `The script does not parse.`
		hint = `Check the script for syntax errors; the details show the parser position.`
		return
	}
	if strings.Contains(s, "invalid globals") {
		msg = `The schema does not describe an object, so it cannot provide globals.`
		hint = `Attach the extension to an object schema whose properties are the globals.`
		return
	}
	return "Lint error.", ""
}
