package persistence

import (
	"os"
	"path/filepath"
	"statusdash/internal/models"
	"statusdash/internal/structures"
	"statusdash/internal/testutil"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dir string) *structures.Config {
	return &structures.Config{
		Paths: structures.Paths{
			StateDir:       dir,
			ConfigFile:     filepath.Join(dir, "config.json"),
			ConfigTemplate: filepath.Join(dir, "template", "default-config.json"),
			CacheDir:       filepath.Join(dir, "cache"),
		},
	}
}

func newTestConfigStore(t *testing.T, conf *structures.Config) (*ConfigStore, *testutil.MockLogger) {
	t.Helper()
	logger := &testutil.MockLogger{}
	store, err := NewConfigStore(conf, NewFileManager(logger), logger)
	require.NoError(t, err)
	return store, logger
}

func fileMode(t *testing.T, path string) os.FileMode {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Mode().Perm()
}

func writeTemplate(t *testing.T, conf *structures.Config, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(conf.Paths.ConfigTemplate), 0755))
	require.NoError(t, os.WriteFile(conf.Paths.ConfigTemplate, data, 0600))
}

func sectionJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestConfigStore_SeedsDefaultsWithoutTemplate(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)

	assert.Equal(t, FileMode, fileMode(t, conf.Paths.ConfigFile))

	doc, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, models.NewDefaultDocument(), doc)
}

func TestConfigStore_CreatesMissingStateDir(t *testing.T) {
	conf := testConfig(t.TempDir())
	conf.Paths.ConfigFile = filepath.Join(conf.Paths.StateDir, "nested", "deeper", "config.json")

	store, _ := newTestConfigStore(t, conf)
	_, err := store.Read()
	assert.NoError(t, err)
}

func TestConfigStore_SeedsFromTemplateVerbatim(t *testing.T) {
	conf := testConfig(t.TempDir())
	doc := models.NewDefaultDocument()
	doc.Display.Timezone = "Europe/Berlin"
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	writeTemplate(t, conf, data)

	store, _ := newTestConfigStore(t, conf)

	onDisk, err := os.ReadFile(conf.Paths.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)
	assert.Equal(t, FileMode, fileMode(t, conf.Paths.ConfigFile))

	read, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", read.Display.Timezone)
}

func TestConfigStore_InvalidTemplateFallsBackToDefaults(t *testing.T) {
	conf := testConfig(t.TempDir())
	writeTemplate(t, conf, []byte(`{"display": {"module_cycle_seconds": 601}}`))

	store, logger := newTestConfigStore(t, conf)

	doc, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, models.NewDefaultDocument(), doc)
	assert.Equal(t, 1, logger.Count("warn"))
}

func TestConfigStore_ExistingFileIsLeftAlone(t *testing.T) {
	conf := testConfig(t.TempDir())
	doc := models.NewDefaultDocument()
	doc.Wifi.Interface = "eth0"
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(conf.Paths.ConfigFile, data, 0600))

	newTestConfigStore(t, conf)

	onDisk, err := os.ReadFile(conf.Paths.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)
	assert.Equal(t, FileMode, fileMode(t, conf.Paths.ConfigFile))
}

// written by an earlier deployment of the dashboard backend
const deployedConfig = `{
  "display": {
    "timezone": "Europe/Madrid",
    "rotation": "left",
    "module_cycle_seconds": 20,
    "modules": [
      {"name": "clock", "enabled": true, "duration_seconds": 20},
      {"name": "weather", "enabled": false, "duration_seconds": 45}
    ]
  },
  "api_keys": {"weather": "owm-123"},
  "mqtt": {"enabled": false, "host": "localhost", "port": 1883, "topic": "pantalla/reloj"},
  "wifi": {"interface": "wlan2"},
  "storm_mode": {"enabled": true, "last_triggered": "2024-08-14T17:45:12.345678Z"},
  "ui": {
    "rotation": {"enabled": true, "duration_sec": 10, "panels": ["news", "moon"]},
    "fixed": {"clock": {"format": "HH:mm"}, "temperature": {"unit": "C"}},
    "map": {"provider": "osm", "center": [40.4168, -3.7038], "zoom": 6, "interactive": false, "controls": false},
    "text": {"scroll": {"news": {"enabled": true, "direction": "left", "speed": "fast", "gap_px": 48}, "forecast": {"enabled": true, "direction": "up", "speed": 1.5, "gap_px": 24}}},
    "layout": "widgets",
    "side_panel": "right"
  }
}`

func TestConfigStore_KeepsExistingDeploymentFile(t *testing.T) {
	conf := testConfig(t.TempDir())
	require.NoError(t, os.WriteFile(conf.Paths.ConfigFile, []byte(deployedConfig), 0644))

	store, logger := newTestConfigStore(t, conf)
	assert.Zero(t, logger.Count("error"))

	matches, err := filepath.Glob(conf.Paths.ConfigFile + ".corrupt-*")
	require.NoError(t, err)
	assert.Empty(t, matches)

	doc, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, 45, doc.Display.Modules[1].DurationSeconds)
	assert.Equal(t, []float64{40.4168, -3.7038}, doc.UI.Map.Center)
	assert.Equal(t, models.SpeedPreset("fast"), doc.UI.Text.Scroll["news"].Speed)
	assert.Equal(t, models.ScrollSpeed{Value: 1.5}, doc.UI.Text.Scroll["forecast"].Speed)
	assert.JSONEq(t, `"widgets"`, string(doc.UI.Extra["layout"]))

	// a ui update in the same shape is accepted and keeps the rest
	_, err = store.Update([]byte(`{"ui": {"rotation": {"enabled": false, "duration_sec": 3600, "panels": []}, "layout": "full"}}`))
	require.NoError(t, err)
	doc, err = store.Read()
	require.NoError(t, err)
	assert.False(t, doc.UI.Rotation.Enabled)
	assert.Equal(t, models.NewDefaultUISettings().Map, doc.UI.Map)
	assert.Equal(t, "owm-123", *doc.APIKeys.Weather)
}

func TestConfigStore_ReadRejectsTrailingBytes(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)

	data, err := os.ReadFile(conf.Paths.ConfigFile)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(conf.Paths.ConfigFile, append(data, "}garbage"...), 0644))

	_, err = store.Read()
	assert.ErrorIs(t, err, ErrConfigCorrupt)
	assert.ErrorIs(t, err, models.ErrTrailingData)
}

func TestConfigStore_CorruptFileQuarantinedAtStartup(t *testing.T) {
	conf := testConfig(t.TempDir())
	require.NoError(t, os.WriteFile(conf.Paths.ConfigFile, []byte("{{{"), 0644))

	store, logger := newTestConfigStore(t, conf)

	doc, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, models.NewDefaultDocument(), doc)
	assert.Equal(t, 1, logger.Count("error"))

	matches, err := filepath.Glob(conf.Paths.ConfigFile + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	kept, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "{{{", string(kept))
}

func TestConfigStore_MissingFileBootstrap(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)
	_, err := store.Apply(&models.DocumentUpdate{Wifi: &models.WifiSettings{Interface: "eth1"}})
	require.NoError(t, err)

	require.NoError(t, os.Remove(conf.Paths.ConfigFile))

	fresh, _ := newTestConfigStore(t, conf)
	doc, err := fresh.Read()
	require.NoError(t, err)
	assert.NoError(t, doc.Validate())
	assert.Equal(t, models.NewDefaultDocument(), doc)
}

func TestConfigStore_ReadDoesNotSelfHeal(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)

	require.NoError(t, os.WriteFile(conf.Paths.ConfigFile, []byte("garbage"), 0644))
	_, err := store.Read()
	assert.ErrorIs(t, err, ErrConfigCorrupt)

	onDisk, err := os.ReadFile(conf.Paths.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, "garbage", string(onDisk))

	require.NoError(t, os.Remove(conf.Paths.ConfigFile))
	_, err = store.Read()
	assert.ErrorIs(t, err, ErrConfigCorrupt)
	_, err = os.Stat(conf.Paths.ConfigFile)
	assert.True(t, os.IsNotExist(err))
}

func TestConfigStore_ReadRejectsOutOfRangeValues(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)

	doc := models.NewDefaultDocument()
	doc.Display.ModuleCycleSeconds = 1000
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(conf.Paths.ConfigFile, data, 0644))

	_, err = store.Read()
	assert.ErrorIs(t, err, ErrConfigCorrupt)
}

func TestConfigStore_UpdateStormModeIsolation(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)

	before, err := store.Read()
	require.NoError(t, err)

	after, err := store.Update([]byte(`{"storm_mode": {"enabled": true, "last_triggered": "2024-07-01T18:00:00Z"}}`))
	require.NoError(t, err)
	assert.True(t, after.StormMode.Enabled)
	require.NotNil(t, after.StormMode.LastTriggered)

	reread, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, after, reread)

	assert.Equal(t, sectionJSON(t, before.Display), sectionJSON(t, reread.Display))
	assert.Equal(t, sectionJSON(t, before.APIKeys), sectionJSON(t, reread.APIKeys))
	assert.Equal(t, sectionJSON(t, before.MQTT), sectionJSON(t, reread.MQTT))
	assert.Equal(t, sectionJSON(t, before.Wifi), sectionJSON(t, reread.Wifi))
	assert.Equal(t, sectionJSON(t, before.UI), sectionJSON(t, reread.UI))
}

func TestConfigStore_UpdateModuleCycleBound(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)

	display := models.NewDefaultDocument().Display
	display.ModuleCycleSeconds = 601
	body, err := json.Marshal(map[string]any{"display": display})
	require.NoError(t, err)

	original, err := os.ReadFile(conf.Paths.ConfigFile)
	require.NoError(t, err)

	_, err = store.Update(body)
	assert.ErrorIs(t, err, ErrConfigValidation)

	unchanged, err := os.ReadFile(conf.Paths.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, original, unchanged)

	display.ModuleCycleSeconds = 600
	body, err = json.Marshal(map[string]any{"display": display})
	require.NoError(t, err)

	doc, err := store.Update(body)
	require.NoError(t, err)
	assert.Equal(t, 600, doc.Display.ModuleCycleSeconds)
}

func TestConfigStore_UpdateRejectsMalformedBody(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)

	for _, body := range []string{"", "[]", `{"display": 5}`, `{"unknown": {}}`} {
		_, err := store.Update([]byte(body))
		assert.ErrorIs(t, err, ErrConfigValidation, body)
	}
}

func TestConfigStore_UpdateOnCorruptFile(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)
	require.NoError(t, os.WriteFile(conf.Paths.ConfigFile, []byte("nope"), 0644))

	_, err := store.Update([]byte(`{"wifi": {"interface": "wlan1"}}`))
	assert.ErrorIs(t, err, ErrConfigCorrupt)
}

func TestConfigStore_UpdateReassertsMode(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)
	require.NoError(t, os.Chmod(conf.Paths.ConfigFile, 0600))

	_, err := store.Update([]byte(`{"wifi": {"interface": "wlan1", "ssid": "home"}}`))
	require.NoError(t, err)
	assert.Equal(t, FileMode, fileMode(t, conf.Paths.ConfigFile))
}

func TestConfigStore_UpdatePreservesUIExtras(t *testing.T) {
	conf := testConfig(t.TempDir())
	data, err := models.MarshalDocument(models.NewDefaultDocument())
	require.NoError(t, err)
	withExtra := strings.Replace(string(data), `"ui": {`, `"ui": {"theme": {"accent": "teal"},`, 1)
	require.NoError(t, os.WriteFile(conf.Paths.ConfigFile, []byte(withExtra), 0644))

	store, _ := newTestConfigStore(t, conf)
	_, err = store.Update([]byte(`{"storm_mode": {"enabled": true}}`))
	require.NoError(t, err)

	doc, err := store.Read()
	require.NoError(t, err)
	assert.JSONEq(t, `{"accent": "teal"}`, string(doc.UI.Extra["theme"]))
}

func TestConfigStore_OmitsNullsOnWrite(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)

	_, err := store.Update([]byte(`{"api_keys": {"weather": "abc", "news": null}}`))
	require.NoError(t, err)

	onDisk, err := os.ReadFile(conf.Paths.ConfigFile)
	require.NoError(t, err)
	assert.NotContains(t, string(onDisk), "null")
	assert.Contains(t, string(onDisk), "\n  \"api_keys\": {\n    \"weather\": \"abc\"\n  }")
}

func TestConfigStore_RoundTrip(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)

	user, pass := "dash", "pw"
	triggered := time.Date(2024, 2, 2, 2, 2, 2, 0, time.UTC)
	want := models.NewDefaultDocument()
	want.Display.Rotation = "random"
	want.MQTT = models.MQTTSettings{Enabled: true, Host: "broker.lan", Port: 8883, Topic: "home/dash", Username: &user, Password: &pass}
	want.StormMode = models.StormModeSettings{Enabled: true, LastTriggered: &triggered}
	want.UI.Map.Center = []float64{-33.86, 151.2}

	_, err := store.Apply(&models.DocumentUpdate{
		Display:   &want.Display,
		APIKeys:   &want.APIKeys,
		MQTT:      &want.MQTT,
		Wifi:      &want.Wifi,
		StormMode: &want.StormMode,
		UI:        &want.UI,
	})
	require.NoError(t, err)

	got, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConfigStore_ApplyValidates(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)

	_, err := store.Apply(&models.DocumentUpdate{MQTT: &models.MQTTSettings{Host: "x", Port: 0, Topic: "t"}})
	assert.ErrorIs(t, err, ErrConfigValidation)
}

func TestConfigStore_NoTempFilesLeft(t *testing.T) {
	conf := testConfig(t.TempDir())
	store, _ := newTestConfigStore(t, conf)
	for i := 0; i < 3; i++ {
		_, err := store.Update([]byte(`{"storm_mode": {"enabled": false}}`))
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(conf.Paths.StateDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), e.Name())
	}
}
