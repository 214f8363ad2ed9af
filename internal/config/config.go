// Package config holds the analyzer's constants and the argscope.yaml
// configuration file.
//
// argscope.yaml controls how far the resolver is allowed to go:
//   - dynamic_params enables whole-program search for parameters that have
//     no explicit call site
//   - max_call_sites and max_execution_depth bound that search and nested
//     function execution
//   - natives declares extra native functions by their argument clinic
//     signature
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level argscope.yaml configuration.
type Config struct {
	// DynamicParams enables whole-program call-site search for parameters of
	// functions that are analyzed without a call site.
	DynamicParams bool `yaml:"dynamic_params,omitempty"`

	// MaxCallSites caps how many call sites one dynamic search inspects.
	MaxCallSites int `yaml:"max_call_sites,omitempty"`

	// MaxExecutionDepth caps nested function execution during inference.
	MaxExecutionDepth int `yaml:"max_execution_depth,omitempty"`

	// Natives declares native functions whose parameter shape is given in
	// argument clinic notation.
	Natives []Native `yaml:"natives,omitempty"`
}

// Native describes a native function modeled through its clinic signature.
type Native struct {
	// Name is the callable name, either a plain builtin ("len") or a
	// method of a builtin type ("str.split").
	Name string `yaml:"name"`

	// Signature is the argument clinic notation, e.g. "sep=None, maxsplit=-1".
	Signature string `yaml:"signature"`

	// Returns is the builtin type name of the result ("int", "list", ...).
	// Empty means the call infers to nothing.
	Returns string `yaml:"returns,omitempty"`
}

// Default returns the configuration used when no argscope.yaml is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Marshal returns c in YAML. Equal configurations give equal bytes.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// LoadConfig reads and parses an argscope.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses argscope.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for argscope.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.MaxCallSites < 0 {
		return fmt.Errorf("%s: max_call_sites must not be negative", path)
	}
	if c.MaxExecutionDepth < 0 {
		return fmt.Errorf("%s: max_execution_depth must not be negative", path)
	}

	seen := make(map[string]int)
	for i, n := range c.Natives {
		if n.Name == "" {
			return fmt.Errorf("%s: natives[%d]: name is required", path, i)
		}
		if strings.Count(n.Name, ".") > 1 {
			return fmt.Errorf("%s: natives[%d] (%s): name must be \"func\" or \"type.method\"", path, i, n.Name)
		}
		if prev, ok := seen[n.Name]; ok {
			return fmt.Errorf("%s: natives[%d]: %q already declared at natives[%d]", path, i, n.Name, prev)
		}
		seen[n.Name] = i
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.MaxCallSites == 0 {
		c.MaxCallSites = DefaultMaxCallSites
	}
	if c.MaxExecutionDepth == 0 {
		c.MaxExecutionDepth = DefaultMaxExecutionDepth
	}
}

// Receiver splits a native name into its receiver type and member name.
// Plain builtins have an empty receiver.
func (n Native) Receiver() (string, string) {
	if i := strings.IndexByte(n.Name, '.'); i >= 0 {
		return n.Name[:i], n.Name[i+1:]
	}
	return "", n.Name
}
