// ABOUTME: Tests for configuration loading, env expansion, and validation
// ABOUTME: Writes temp YAML files and checks parsed values and error cases

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":8080"

agent:
  url: "https://kibana.example.com"
  api_key: "secret-key"
  agent_id: "rules-agent"
  space: "wargames"
  timeout: "45s"

session:
  cookie_name: "judgement_sid"
  max_age: "720h"

ownership:
  backend: "sqlite"
  path: "/tmp/ownership.db"

logging:
  level: "debug"
  format: "json"

metrics:
  enabled: true
  path: "/metrics"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "https://kibana.example.com", cfg.Agent.URL)
	assert.Equal(t, "secret-key", cfg.Agent.APIKey)
	assert.Equal(t, "rules-agent", cfg.Agent.AgentID)
	assert.Equal(t, "wargames", cfg.Agent.Space)
	assert.Equal(t, 45*time.Second, cfg.Agent.Timeout)
	assert.Equal(t, "judgement_sid", cfg.Session.CookieName)
	assert.Equal(t, 720*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, "sqlite", cfg.Ownership.Backend)
	assert.Equal(t, "/tmp/ownership.db", cfg.Ownership.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_AGENT_URL", "https://agents.internal")
	t.Setenv("TEST_AGENT_KEY", "from-env")

	path := writeConfig(t, `
server:
  http_addr: ":8080"
agent:
  url: "${TEST_AGENT_URL}"
  api_key: "${TEST_AGENT_KEY}"
  agent_id: "rules-agent"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://agents.internal", cfg.Agent.URL)
	assert.Equal(t, "from-env", cfg.Agent.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoadInvalidDuration(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: ":8080"
agent:
  url: "https://kibana.example.com"
  api_key: "k"
  agent_id: "a"
  timeout: "not-a-duration"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing agent timeout")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{HTTPAddr: ":8080"},
			Agent:  AgentConfig{URL: "https://x", APIKey: "k", AgentID: "a"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing addr", func(c *Config) { c.Server.HTTPAddr = "" }, "server.http_addr"},
		{"tailscale without hostname", func(c *Config) {
			c.Server.HTTPAddr = ""
			c.Tailscale.Enabled = true
		}, "tailscale.hostname"},
		{"tailscale only", func(c *Config) {
			c.Server.HTTPAddr = ""
			c.Tailscale.Enabled = true
			c.Tailscale.Hostname = "rules-gateway"
		}, ""},
		{"missing agent url", func(c *Config) { c.Agent.URL = "" }, "agent.url"},
		{"missing api key", func(c *Config) { c.Agent.APIKey = "" }, "agent.api_key"},
		{"missing agent id", func(c *Config) { c.Agent.AgentID = "" }, "agent.agent_id"},
		{"sqlite without path", func(c *Config) { c.Ownership.Backend = "sqlite" }, "ownership.path"},
		{"unknown backend", func(c *Config) { c.Ownership.Backend = "redis" }, "ownership.backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVarsUnsetIsEmpty(t *testing.T) {
	os.Unsetenv("DEFINITELY_NOT_SET_12345")
	out := expandEnvVars("value: ${DEFINITELY_NOT_SET_12345}")
	assert.Equal(t, "value: ", out)
}
