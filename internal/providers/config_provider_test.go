package providers

import (
	"os"
	"path/filepath"
	"statusdash/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigProvider_Defaults(t *testing.T) {
	conf, err := NewConfigProvider(&structures.CliFlags{})
	require.NoError(t, err)

	assert.Equal(t, "StatusDash", conf.AppName)
	assert.Equal(t, "0.0.0.0", conf.WebServer.Host)
	assert.Equal(t, 8000, conf.WebServer.Port)
	assert.Equal(t, DefaultStateDir, conf.Paths.StateDir)
	assert.Equal(t, filepath.Join(DefaultStateDir, "config.json"), conf.Paths.ConfigFile)
	assert.Equal(t, filepath.Join(DefaultStateDir, "cache"), conf.Paths.CacheDir)
	assert.Equal(t, DefaultConfigTemplate, conf.Paths.ConfigTemplate)
	assert.Equal(t, "info", conf.Logger.Level)
	assert.True(t, conf.Cache.Enabled)
	assert.Equal(t, 5*time.Second, conf.Cache.TTL)
	assert.Equal(t, 15*time.Minute, conf.Widgets.MaxAge)
	assert.Equal(t, time.Minute, conf.Scheduler.HealthInterval)
	assert.Equal(t, time.Hour, conf.Scheduler.SweepInterval)
	assert.True(t, conf.Metrics.Enabled)
}

func TestConfigProvider_StateDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STATUSDASH_STATE_DIR", dir)

	conf, err := NewConfigProvider(&structures.CliFlags{})
	require.NoError(t, err)

	assert.Equal(t, dir, conf.Paths.StateDir)
	assert.Equal(t, filepath.Join(dir, "config.json"), conf.Paths.ConfigFile)
	assert.Equal(t, filepath.Join(dir, "cache"), conf.Paths.CacheDir)
}

func TestConfigProvider_ExplicitPathsWin(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STATUSDASH_STATE_DIR", dir)
	t.Setenv("STATUSDASH_CONFIG_PATH", "/etc/statusdash/config.json")
	t.Setenv("STATUSDASH_CACHE_DIR", "/tmp/statusdash-cache")
	t.Setenv("STATUSDASH_CONFIG_TEMPLATE", "/opt/statusdash/template.json")

	conf, err := NewConfigProvider(&structures.CliFlags{})
	require.NoError(t, err)

	assert.Equal(t, "/etc/statusdash/config.json", conf.Paths.ConfigFile)
	assert.Equal(t, "/tmp/statusdash-cache", conf.Paths.CacheDir)
	assert.Equal(t, "/opt/statusdash/template.json", conf.Paths.ConfigTemplate)
}

func TestConfigProvider_ServerAndSwitchesFromEnv(t *testing.T) {
	t.Setenv("STATUSDASH_HOST", "127.0.0.1")
	t.Setenv("STATUSDASH_PORT", "9090")
	t.Setenv("STATUSDASH_CACHE_ENABLED", "false")
	t.Setenv("STATUSDASH_METRICS_ENABLED", "false")
	t.Setenv("STATUSDASH_LOG_LEVEL", "warn")

	conf, err := NewConfigProvider(&structures.CliFlags{})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", conf.WebServer.Host)
	assert.Equal(t, 9090, conf.WebServer.Port)
	assert.False(t, conf.Cache.Enabled)
	assert.False(t, conf.Metrics.Enabled)
	assert.Equal(t, "warn", conf.Logger.Level)
}

func TestConfigProvider_YamlFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statusdash.yaml")
	yaml := `webServer:
  port: 8181
paths:
  stateDir: ` + dir + `
widgets:
  maxAge: 30m
cache:
  ttl: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, path, conf.Path)
	assert.Equal(t, 8181, conf.WebServer.Port)
	assert.Equal(t, dir, conf.Paths.StateDir)
	assert.Equal(t, 30*time.Minute, conf.Widgets.MaxAge)
	assert.Equal(t, 10*time.Second, conf.Cache.TTL)
}

func TestConfigProvider_MissingYamlIsTolerated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, 8000, conf.WebServer.Port)
}

func TestConfigProvider_InvalidValueFails(t *testing.T) {
	t.Setenv("STATUSDASH_LOG_LEVEL", "chatty")
	_, err := NewConfigProvider(&structures.CliFlags{})
	assert.Error(t, err)
}

func TestConfigProvider_DebugForcesDebugLevel(t *testing.T) {
	conf, err := NewConfigProvider(&structures.CliFlags{DebugMode: true})
	require.NoError(t, err)
	assert.True(t, conf.Debug)
	assert.Equal(t, "debug", conf.Logger.Level)
}
