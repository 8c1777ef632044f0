package mcpserver

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Access kinds tools are classified by. Defaults are keyed by them.
const (
	AccessRead   = "read"
	AccessWrite  = "write"
	AccessDelete = "delete"
)

// Config is the MCP server configuration loaded from mcp.yaml. Every field
// is optional.
type Config struct {
	Defaults  map[string]AccessDefaults `yaml:"defaults"`
	Groups    map[string]GroupConfig    `yaml:"groups"`
	Overrides map[string]ToolOverride   `yaml:"overrides"`
	Disabled  []string                  `yaml:"disabled"`
}

// AccessDefaults defines default MCP annotations for an access kind.
type AccessDefaults struct {
	ReadOnly    *bool `yaml:"readonly"`
	Destructive *bool `yaml:"destructive"`
	Idempotent  *bool `yaml:"idempotent"`
}

// GroupConfig describes an MCP tool group.
type GroupConfig struct {
	Description string `yaml:"description"`
}

// ToolOverride allows per-tool customization.
type ToolOverride struct {
	Description string `yaml:"description"`
	ReadOnly    *bool  `yaml:"readonly"`
	Destructive *bool  `yaml:"destructive"`
	Idempotent  *bool  `yaml:"idempotent"`
}

// LoadConfig reads and parses the mcp.yaml configuration file. An empty
// path yields the built-in defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return ParseConfig(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses mcp.yaml configuration from raw bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse mcp config: %w", err)
	}

	if cfg.Defaults == nil {
		cfg.Defaults = map[string]AccessDefaults{}
	}
	for access, d := range builtinDefaults() {
		if _, ok := cfg.Defaults[access]; !ok {
			cfg.Defaults[access] = d
		}
	}

	return &cfg, nil
}

func builtinDefaults() map[string]AccessDefaults {
	t, f := true, false
	return map[string]AccessDefaults{
		AccessRead:   {ReadOnly: &t, Destructive: &f, Idempotent: &t},
		AccessWrite:  {ReadOnly: &f, Destructive: &f, Idempotent: &f},
		AccessDelete: {ReadOnly: &f, Destructive: &t, Idempotent: &t},
	}
}

func (c *Config) disabled(tool string) bool {
	return slices.Contains(c.Disabled, tool)
}
