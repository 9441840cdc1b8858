package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playbill.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090
shutdown_timeout = "2s"

[store]
backend = "sqlite"

[sqlite]
path = "/var/lib/playbill.db"

[log]
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout.Duration)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "/var/lib/playbill.db", cfg.SQLite.Path)
	assert.Equal(t, LogFormatJSON, cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "[neo4j]\nuri = \"bolt://file:7687\"\n")
	t.Setenv("NEO4J_URI", "bolt://env:7687")
	t.Setenv("PORT", "7000")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bolt://env:7687", cfg.Neo4j.URI)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestConfigPathFromEnvironment(t *testing.T) {
	t.Setenv("PLAYBILL_CONFIG", writeConfig(t, "[store]\nbackend = \"memory\"\n"))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.Store.Backend = "postgres"
	cfg.Log.Level = "loud"
	cfg.Metrics.Path = "metrics"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "server.port")
	assert.ErrorContains(t, err, `store.backend "postgres"`)
	assert.ErrorContains(t, err, `log.level "loud"`)
	assert.ErrorContains(t, err, `metrics.path "metrics"`)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "[server\nport = 1"))
	assert.ErrorContains(t, err, "failed to parse TOML")
}
