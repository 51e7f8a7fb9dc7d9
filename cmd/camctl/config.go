package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/camlink-project/camlink-go/pkg/discovery"
)

// Config holds the camctl configuration. Fields map 1:1 onto flags and onto
// the YAML configuration file.
type Config struct {
	// Addr is the bridge address (host:port). Empty triggers mDNS discovery.
	Addr string `yaml:"addr"`

	// SystemID is the target system ID, used with Addr.
	SystemID uint `yaml:"system"`

	// ComponentID is the target component ID, used with Addr.
	ComponentID uint `yaml:"component"`

	// LogLevel selects console verbosity: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// EventLog, when set, writes protocol events to a CBOR log file.
	EventLog string `yaml:"events"`

	// RejectPending rejects requests for command channels that already have
	// an unresolved request, instead of overwriting them.
	RejectPending bool `yaml:"reject_pending"`
}

// DefaultConfig returns the default camctl configuration.
func DefaultConfig() *Config {
	return &Config{
		ComponentID: discovery.DefaultComponentID,
		LogLevel:    "info",
	}
}

// LoadFile overlays values from a YAML file onto the config.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return c.Validate()
}

// Merge replaces this config with the file config, keeping the fields whose
// flags were explicitly set on the command line.
func (c *Config) Merge(file *Config, setFlags map[string]bool) {
	if !setFlags["addr"] {
		c.Addr = file.Addr
	}
	if !setFlags["system"] {
		c.SystemID = file.SystemID
	}
	if !setFlags["component"] {
		c.ComponentID = file.ComponentID
	}
	if !setFlags["log-level"] {
		c.LogLevel = file.LogLevel
	}
	if !setFlags["events"] {
		c.EventLog = file.EventLog
	}
	if !setFlags["reject-pending"] {
		c.RejectPending = file.RejectPending
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.SystemID > 255 {
		return fmt.Errorf("system ID %d out of range (0-255)", c.SystemID)
	}
	if c.ComponentID > 255 {
		return fmt.Errorf("component ID %d out of range (0-255)", c.ComponentID)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q (use: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}
