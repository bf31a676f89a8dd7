package providers

import (
	"errors"
	"fmt"
	"path/filepath"
	"statusdash/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultStateDir       = "/var/lib/statusdash"
	DefaultConfigTemplate = "/usr/share/statusdash/default-config.json"
	configFileName        = "config.json"
	cacheDirName          = "cache"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	setDefaults(v)

	v.BindEnv("paths.stateDir", "STATUSDASH_STATE_DIR")
	v.BindEnv("paths.configFile", "STATUSDASH_CONFIG_PATH")
	v.BindEnv("paths.configTemplate", "STATUSDASH_CONFIG_TEMPLATE")
	v.BindEnv("paths.cacheDir", "STATUSDASH_CACHE_DIR")
	v.BindEnv("logger.level", "STATUSDASH_LOG_LEVEL")
	v.BindEnv("webServer.host", "STATUSDASH_HOST")
	v.BindEnv("webServer.port", "STATUSDASH_PORT")
	v.BindEnv("cache.enabled", "STATUSDASH_CACHE_ENABLED")
	v.BindEnv("metrics.enabled", "STATUSDASH_METRICS_ENABLED")

	if flags.ConfigPath != "" {
		filename := filepath.Base(flags.ConfigPath)
		v.AddConfigPath(filepath.Dir(flags.ConfigPath))
		v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
		v.SetConfigType("yaml")

		err := v.ReadInConfig()
		if err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	err := v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	resolvePaths(&conf.Paths)

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "StatusDash"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode
	if conf.Debug {
		conf.Logger.Level = "debug"
	}

	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8000)
	v.SetDefault("paths.stateDir", DefaultStateDir)
	v.SetDefault("paths.configFile", "")
	v.SetDefault("paths.configTemplate", DefaultConfigTemplate)
	v.SetDefault("paths.cacheDir", "")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 8)
	v.SetDefault("cache.ttl", 5*time.Second)
	v.SetDefault("widgets.maxAge", 15*time.Minute)
	v.SetDefault("scheduler.healthInterval", time.Minute)
	v.SetDefault("scheduler.sweepInterval", time.Hour)
	v.SetDefault("scheduler.tempMaxAge", time.Hour)
	v.SetDefault("metrics.enabled", true)
}

// resolvePaths fills the config file and cache dir from the state dir
// when no explicit override was given.
func resolvePaths(p *structures.Paths) {
	if p.ConfigFile == "" {
		p.ConfigFile = filepath.Join(p.StateDir, configFileName)
	}
	if p.CacheDir == "" {
		p.CacheDir = filepath.Join(p.StateDir, cacheDirName)
	}
}
