package playground

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"gopkg.in/yaml.v3"
)

// ExtensionName marks a schema whose values are the globals of a script.
const ExtensionName = "x-no-global-mutation"

// LintScript is a parsed x-no-global-mutation extension.
type LintScript struct {
	Program *nomut.Program
	// Handlers maps a global path (e.g. "events.emit") to the scripts
	// registered for it. Each handler is a function expression.
	Handlers map[string][]*nomut.Program
}

// HandlerPaths returns the handler paths in sorted order.
func (s *LintScript) HandlerPaths() []string {
	paths := make([]string, 0, len(s.Handlers))
	for p := range s.Handlers {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ParseLintExtension parses the x-no-global-mutation extension. The value is
// either the script itself or an object with a "script" key and optional
// "handlers".
func ParseLintExtension(yamlNode *yaml.Node) (*LintScript, error) {
	if yamlNode == nil {
		return nil, fmt.Errorf("%s cannot be empty", ExtensionName)
	}

	switch yamlNode.Kind {
	case yaml.ScalarNode:
		prog, err := parseScript("script", yamlNode)
		if err != nil {
			return nil, err
		}
		return &LintScript{Program: prog}, nil
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("%s must be a string or an object", ExtensionName)
	}

	script := &LintScript{}
	// YAML MappingNode stores content as alternating key/value pairs
	for i := 0; i+1 < len(yamlNode.Content); i += 2 {
		keyNode := yamlNode.Content[i]
		valueNode := yamlNode.Content[i+1]

		switch keyNode.Value {
		case "script":
			prog, err := parseScript("script", valueNode)
			if err != nil {
				return nil, err
			}
			script.Program = prog
		case "handlers":
			handlers, err := parseHandlers(valueNode)
			if err != nil {
				return nil, err
			}
			script.Handlers = handlers
		default:
			return nil, fmt.Errorf("%s: unknown key %q", ExtensionName, keyNode.Value)
		}
	}

	if script.Program == nil {
		return nil, fmt.Errorf("%s requires 'script' key", ExtensionName)
	}
	return script, nil
}

func parseHandlers(node *yaml.Node) (map[string][]*nomut.Program, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: 'handlers' must be an object", ExtensionName)
	}

	handlers := make(map[string][]*nomut.Program)
	for i := 0; i+1 < len(node.Content); i += 2 {
		path := strings.TrimSpace(node.Content[i].Value)
		if path == "" {
			return nil, fmt.Errorf("%s: handler path cannot be empty", ExtensionName)
		}
		valueNode := node.Content[i+1]

		sources := []*yaml.Node{valueNode}
		if valueNode.Kind == yaml.SequenceNode {
			sources = valueNode.Content
		}
		for j, src := range sources {
			prog, err := parseScript(fmt.Sprintf("handlers.%s[%d]", path, j), src)
			if err != nil {
				return nil, err
			}
			handlers[path] = append(handlers[path], prog)
		}
	}
	return handlers, nil
}

func parseScript(name string, node *yaml.Node) (*nomut.Program, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%s: '%s' value must be a string", ExtensionName, name)
	}
	src := strings.TrimSpace(node.Value)
	if src == "" {
		return nil, fmt.Errorf("%s: '%s' requires a script", ExtensionName, name)
	}

	prog, err := nomut.ParseFile(name, src)
	if err != nil {
		return nil, fmt.Errorf("%s: '%s' is an invalid script: %w", ExtensionName, name, err)
	}
	return prog, nil
}
