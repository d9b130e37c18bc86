package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/clockwork-dog/lint-no-global-mutations/mutationexec"
	"github.com/clockwork-dog/lint-no-global-mutations/pkg/diagfmt"
	goyaml "github.com/itchyny/go-yaml"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".nomut.yaml"

// config mirrors mutationexec.Options plus output settings. Pointer fields
// distinguish unset keys from zero values.
type config struct {
	Globals        string   `yaml:"globals"`
	MaxCallDepth   *int     `yaml:"maxCallDepth"`
	Strict         *bool    `yaml:"strict"`
	Warnings       *bool    `yaml:"warnings"`
	LogLevel       string   `yaml:"logLevel"`
	MaxSchemaDepth *int     `yaml:"maxSchemaDepth"`
	Format         string   `yaml:"format"`
	Color          string   `yaml:"color"`
	Context        int      `yaml:"context"`
	TabWidth       int      `yaml:"tabWidth"`
	Sections       []string `yaml:"sections"`
}

// loadConfig reads path. A missing default config file is not an error.
func loadConfig(path string, explicit bool) (*config, error) {
	cfg := &config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// options builds the analysis options the config describes.
func (c *config) options() mutationexec.Options {
	opts := mutationexec.DefaultOptions()
	if c.MaxCallDepth != nil {
		opts.MaxCallDepth = *c.MaxCallDepth
	}
	if c.Strict != nil {
		opts.StrictMode = *c.Strict
	}
	if c.Warnings != nil {
		opts.EnableWarnings = *c.Warnings
	}
	if c.MaxSchemaDepth != nil {
		opts.MaxSchemaDepth = *c.MaxSchemaDepth
	}
	opts.LogLevel = c.LogLevel
	return opts
}

func (c *config) formatConfig(color bool) diagfmt.DiagFmtCfg {
	return diagfmt.DiagFmtCfg{
		Sections: c.Sections,
		Context:  c.Context,
		TabWidth: c.TabWidth,
		Color:    color,
	}
}

// loadGlobals reads a YAML or JSON document holding the globals object.
func loadGlobals(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read globals: %w", err)
	}
	var globals map[string]any
	if err := goyaml.Unmarshal(data, &globals); err != nil {
		return nil, fmt.Errorf("failed to parse globals %s: %w", path, err)
	}
	if globals == nil {
		globals = map[string]any{}
	}
	for k, v := range globals {
		globals[k] = normalizeNumbers(v)
	}
	return globals, nil
}

// normalizeNumbers replaces the json.Number literals go-yaml decodes numbers
// into with int or float64.
func normalizeNumbers(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil && int64(int(i)) == i {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		for k, x := range v {
			v[k] = normalizeNumbers(x)
		}
		return v
	case []any:
		for i, x := range v {
			v[i] = normalizeNumbers(x)
		}
		return v
	default:
		return v
	}
}
