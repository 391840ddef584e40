// ABOUTME: Configuration loading and parsing for rules-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete rules-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Agent     AgentConfig     `yaml:"agent"`
	Session   SessionConfig   `yaml:"session"`
	Ownership OwnershipConfig `yaml:"ownership"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
	Funnel    bool   `yaml:"funnel"` // Enable public Funnel (implies HTTPS)
}

// AgentConfig holds upstream agent service configuration
type AgentConfig struct {
	URL     string `yaml:"url"`
	APIKey  string `yaml:"api_key"`
	AgentID string `yaml:"agent_id"`
	Space   string `yaml:"space"`

	// Timeout bounds conversation list/get/delete calls. The streaming
	// send call is never bounded here; a hung upstream hangs the request.
	Timeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	CookieName string `yaml:"cookie_name"`
	// Secure forces the Secure cookie attribute even on plain HTTP
	Secure bool `yaml:"secure"`

	MaxAge time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	MaxAgeRaw string `yaml:"max_age"`
}

// OwnershipConfig selects the conversation ownership backend
type OwnershipConfig struct {
	// Backend is "memory" (default, lost on restart) or "sqlite"
	Backend string `yaml:"backend"`
	// Path is the SQLite database path; required for the sqlite backend
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// Server address is required unless Tailscale is enabled
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Agent.URL == "" {
		return fmt.Errorf("agent.url is required")
	}
	if c.Agent.APIKey == "" {
		return fmt.Errorf("agent.api_key is required")
	}
	if c.Agent.AgentID == "" {
		return fmt.Errorf("agent.agent_id is required")
	}

	switch c.Ownership.Backend {
	case "", "memory":
		// default
	case "sqlite":
		if c.Ownership.Path == "" {
			return fmt.Errorf("ownership.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("ownership.backend must be \"memory\" or \"sqlite\", got %q", c.Ownership.Backend)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Agent.TimeoutRaw != "" {
		cfg.Agent.Timeout, err = time.ParseDuration(cfg.Agent.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing agent timeout %q: %w", cfg.Agent.TimeoutRaw, err)
		}
	}

	if cfg.Session.MaxAgeRaw != "" {
		cfg.Session.MaxAge, err = time.ParseDuration(cfg.Session.MaxAgeRaw)
		if err != nil {
			return fmt.Errorf("parsing session max_age %q: %w", cfg.Session.MaxAgeRaw, err)
		}
	}

	return nil
}
