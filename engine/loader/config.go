package loader

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

// RequiredExtensionPolicy selects how a required extension without a handler is treated.
type RequiredExtensionPolicy string

const (
	// PolicyWarn emits a warning and continues with degraded fidelity.
	PolicyWarn RequiredExtensionPolicy = "warn"
	// PolicyError fails the parse with ErrUnknownRequiredExtension.
	PolicyError RequiredExtensionPolicy = "error"
)

// Config is the file form of the loader options.
type Config struct {
	// Path is prepended to every URL passed to Load.
	Path string `yaml:"path"`

	// ResourcePath is the base for buffer and image URIs. Derived from the loaded URL when empty.
	ResourcePath string `yaml:"resource_path"`

	// RequestHeader is sent with every network fetch.
	RequestHeader map[string]string `yaml:"request_header"`

	// DecodeWorkers is the size of the accessor decode pool. Zero decodes inline.
	DecodeWorkers int `yaml:"decode_workers"`

	// RequiredExtensionPolicy is "warn" (default) or "error".
	RequiredExtensionPolicy RequiredExtensionPolicy `yaml:"required_extension_policy"`

	// DisabledPlugins lists extension names whose default plugins are unregistered.
	DisabledPlugins []string `yaml:"disabled_plugins"`
}

// LoadConfig reads and validates a YAML loader config file.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - *Config: the parsed config
//   - error: error if the file cannot be read or is invalid
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read loader config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates YAML loader config content.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Config: the parsed config
//   - error: error if the document is malformed or invalid
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse loader config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and applies defaults.
func (c *Config) Validate() error {
	if c.DecodeWorkers < 0 {
		return errors.New("decode_workers must be >= 0")
	}
	switch c.RequiredExtensionPolicy {
	case "":
		c.RequiredExtensionPolicy = PolicyWarn
	case PolicyWarn, PolicyError:
	default:
		return fmt.Errorf("invalid required_extension_policy %q: want %q or %q", c.RequiredExtensionPolicy, PolicyWarn, PolicyError)
	}
	return nil
}

// header converts RequestHeader to an http.Header.
func (c *Config) header() http.Header {
	if len(c.RequestHeader) == 0 {
		return nil
	}
	h := make(http.Header, len(c.RequestHeader))
	for k, v := range c.RequestHeader {
		h.Set(k, v)
	}
	return h
}
