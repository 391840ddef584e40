// ABOUTME: Tests for Gateway construction and listener configuration helpers
// ABOUTME: Covers ownership backend selection and tailscale setting resolution

package gateway

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judgement/rules-gateway/internal/config"
	"github.com/judgement/rules-gateway/internal/ownership"
)

func TestNewTrackerBackends(t *testing.T) {
	tr, err := newTracker(&config.Config{})
	require.NoError(t, err)
	assert.IsType(t, &ownership.MemoryTracker{}, tr)
	tr.Close()

	tr, err = newTracker(&config.Config{
		Ownership: config.OwnershipConfig{Backend: "memory"},
	})
	require.NoError(t, err)
	assert.IsType(t, &ownership.MemoryTracker{}, tr)
	tr.Close()

	tr, err = newTracker(&config.Config{
		Ownership: config.OwnershipConfig{
			Backend: "sqlite",
			Path:    filepath.Join(t.TempDir(), "ownership.db"),
		},
	})
	require.NoError(t, err)
	assert.IsType(t, &ownership.SQLiteTracker{}, tr)
	tr.Close()

	_, err = newTracker(&config.Config{
		Ownership: config.OwnershipConfig{Backend: "redis"},
	})
	assert.Error(t, err)
}

func TestResolveTailscaleAuthKey(t *testing.T) {
	t.Setenv("TS_AUTHKEY", "")

	key, err := resolveTailscaleAuthKey("from-config")
	require.NoError(t, err)
	assert.Equal(t, "from-config", key)

	t.Setenv("TS_AUTHKEY", "from-env")
	key, err = resolveTailscaleAuthKey("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)

	// Config wins over the environment.
	key, err = resolveTailscaleAuthKey("from-config")
	require.NoError(t, err)
	assert.Equal(t, "from-config", key)

	t.Setenv("TS_AUTHKEY", "")
	_, err = resolveTailscaleAuthKey("")
	assert.Error(t, err)
}

func TestResolveTailscaleStateDir(t *testing.T) {
	dir, err := resolveTailscaleStateDir("/var/lib/rules-gateway/ts")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/rules-gateway/ts", dir)

	dir, err = resolveTailscaleStateDir("")
	require.NoError(t, err)
	assert.Contains(t, dir, filepath.Join("rules-gateway", "tailscale"))
}
