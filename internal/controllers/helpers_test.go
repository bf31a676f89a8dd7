package controllers

import (
	"path/filepath"
	"statusdash/internal/persistence"
	"statusdash/internal/services"
	"statusdash/internal/structures"
	"statusdash/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(dir string) *structures.Config {
	return &structures.Config{
		Paths: structures.Paths{
			StateDir:       dir,
			ConfigFile:     filepath.Join(dir, "config.json"),
			ConfigTemplate: filepath.Join(dir, "missing-template.json"),
			CacheDir:       filepath.Join(dir, "cache"),
		},
		Widgets: structures.WidgetConfig{MaxAge: 15 * time.Minute},
	}
}

// storeFixture wires real file-backed stores under a temp dir.
type storeFixture struct {
	conf    *structures.Config
	config  *persistence.ConfigStore
	cache   *persistence.CacheStore
	widgets *services.WidgetService
	metrics *testutil.MockMetrics
	logger  *testutil.MockLogger
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()
	conf := testConfig(t.TempDir())
	logger := &testutil.MockLogger{}
	files := persistence.NewFileManager(logger)

	config, err := persistence.NewConfigStore(conf, files, logger)
	require.NoError(t, err)
	cache, err := persistence.NewCacheStore(conf, files, logger)
	require.NoError(t, err)
	metrics := testutil.NewMockMetrics()

	return &storeFixture{
		conf:    conf,
		config:  config,
		cache:   cache,
		widgets: services.NewWidgetService(conf, cache, metrics, logger),
		metrics: metrics,
		logger:  logger,
	}
}
