package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"datalens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Data     DataConfig     `mapstructure:"data"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	GinMode         string        `mapstructure:"gin_mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database connection settings. An empty URL selects the
// directory catalog instead of a SQL database.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // postgres or sqlite3
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// AdminConfig holds the metrics and profiling listener settings
type AdminConfig struct {
	Port    string `mapstructure:"port"`
	Enabled bool   `mapstructure:"enabled"`
}

// DataConfig holds dataset storage settings
type DataConfig struct {
	Dir         string `mapstructure:"dir"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

// AnalysisConfig holds engine defaults and result cache settings
type AnalysisConfig struct {
	Bins             int           `mapstructure:"bins"`
	MaxPoints        int           `mapstructure:"max_points"`
	OutlierMaxValues int           `mapstructure:"outlier_max_values"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	CacheMaxEntries  int           `mapstructure:"cache_max_entries"`

	MaxConcurrentLoads int `mapstructure:"max_concurrent_loads"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// envBindings maps config keys onto the environment variables that set them.
var envBindings = map[string]string{
	"server.port":                   "PORT",
	"server.gin_mode":               "GIN_MODE",
	"server.read_timeout":           "SERVER_READ_TIMEOUT",
	"server.write_timeout":          "SERVER_WRITE_TIMEOUT",
	"server.shutdown_timeout":       "SERVER_SHUTDOWN_TIMEOUT",
	"database.driver":               "DATABASE_DRIVER",
	"database.url":                  "DATABASE_URL",
	"database.max_open_conns":       "DB_MAX_OPEN_CONNS",
	"database.max_idle_conns":       "DB_MAX_IDLE_CONNS",
	"admin.port":                    "PPROF_PORT",
	"admin.enabled":                 "PPROF_ENABLED",
	"data.dir":                      "DATA_DIR",
	"data.max_upload_mb":            "MAX_UPLOAD_MB",
	"analysis.bins":                 "ANALYSIS_BINS",
	"analysis.max_points":           "ANALYSIS_MAX_POINTS",
	"analysis.outlier_max_values":   "ANALYSIS_OUTLIER_MAX_VALUES",
	"analysis.cache_ttl":            "ANALYSIS_CACHE_TTL",
	"analysis.cache_max_entries":    "ANALYSIS_CACHE_MAX_ENTRIES",
	"analysis.max_concurrent_loads": "ANALYSIS_MAX_CONCURRENT_LOADS",
	"log.level":                     "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("admin.port", "6060")
	v.SetDefault("admin.enabled", true)
	v.SetDefault("data.dir", "./data")
	v.SetDefault("data.max_upload_mb", 50)
	v.SetDefault("analysis.bins", 10)
	v.SetDefault("analysis.max_points", 100)
	v.SetDefault("analysis.outlier_max_values", 100)
	v.SetDefault("analysis.cache_ttl", 10*time.Minute)
	v.SetDefault("analysis.cache_max_entries", 256)
	v.SetDefault("analysis.max_concurrent_loads", 4)
	v.SetDefault("log.level", "INFO")
}

// Load reads configuration from defaults, an optional YAML file, a .env file
// and the environment, in increasing order of precedence.
func Load(cfgFile string) (*Config, error) {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "failed to bind %s", env)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to read config file %s", cfgFile))
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to decode configuration"))
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Data.Dir == "" {
		return errors.ConfigInvalid("data directory is required")
	}
	if config.Analysis.Bins < -1 || config.Analysis.Bins > 1000 {
		return errors.ConfigInvalid("analysis bins must be -1 (Sturges) or between 0 and 1000")
	}
	if config.Analysis.MaxPoints < 0 {
		return errors.ConfigInvalid("analysis max points must not be negative")
	}
	if config.Analysis.CacheMaxEntries < 0 {
		return errors.ConfigInvalid("cache max entries must not be negative")
	}
	switch config.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return errors.ConfigInvalid("database driver must be postgres or sqlite3")
	}
	if config.Data.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("max upload size must be positive")
	}
	return nil
}

// UsesDatabase reports whether a SQL catalog is configured.
func (c *Config) UsesDatabase() bool {
	return strings.TrimSpace(c.Database.URL) != ""
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Data.MaxUploadMB) << 20
}

// DataDir returns the absolute dataset directory, creating it if needed.
func (c *Config) DataDir() (string, error) {
	if err := os.MkdirAll(c.Data.Dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create data directory %s", c.Data.Dir)
	}
	return c.Data.Dir, nil
}
