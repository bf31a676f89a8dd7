package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `mapstructure:"host" yaml:"host" validate:"required"`
	Port int    `mapstructure:"port" yaml:"port" validate:"required|int|min:1|max:65535"`
}

// Paths locates the durable state. Empty ConfigFile and CacheDir are
// resolved against StateDir by the config provider.
type Paths struct {
	StateDir       string `mapstructure:"stateDir" yaml:"stateDir" validate:"required|unixPath"`
	ConfigFile     string `mapstructure:"configFile" yaml:"configFile" validate:"required|unixPath"`
	ConfigTemplate string `mapstructure:"configTemplate" yaml:"configTemplate" validate:"required|unixPath"`
	CacheDir       string `mapstructure:"cacheDir" yaml:"cacheDir" validate:"required|unixPath"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `mapstructure:"mode" yaml:"mode" validate:"required|uint"`
	Dir   string `mapstructure:"dir" yaml:"dir"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Size    int           `mapstructure:"size" yaml:"size"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type WidgetConfig struct {
	MaxAge time.Duration `mapstructure:"maxAge" yaml:"maxAge" validate:"required"`
}

// SchedulerConfig drives background maintenance. A zero interval disables
// the job.
type SchedulerConfig struct {
	HealthInterval time.Duration `mapstructure:"healthInterval" yaml:"healthInterval"`
	SweepInterval  time.Duration `mapstructure:"sweepInterval" yaml:"sweepInterval"`
	TempMaxAge     time.Duration `mapstructure:"tempMaxAge" yaml:"tempMaxAge"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server          `mapstructure:"webServer" yaml:"webServer"`
	Paths     Paths           `mapstructure:"paths" yaml:"paths"`
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Widgets   WidgetConfig    `mapstructure:"widgets" yaml:"widgets"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}
