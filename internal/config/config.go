// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Naver   NaverConfig   `yaml:"naver" mapstructure:"naver"`
	KorTour KorTourConfig `yaml:"kortour" mapstructure:"kortour"`
	Seoul   SeoulConfig   `yaml:"seoul" mapstructure:"seoul"`
	KMA     KMAConfig     `yaml:"kma" mapstructure:"kma"`
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the Postgres destination.
type StoreConfig struct {
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NaverConfig holds NCP geocoding API credentials.
type NaverConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
}

// KorTourConfig holds the KorPetTourService2 API key.
type KorTourConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// SeoulConfig holds the Seoul open-data API key.
type SeoulConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// KMAConfig holds the KMA API hub key.
type KMAConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// PathsConfig configures local data directories.
type PathsConfig struct {
	RawDir string `yaml:"raw_dir" mapstructure:"raw_dir"`
	LogDir string `yaml:"log_dir" mapstructure:"log_dir"`
}

// GeocodeConfig configures the address resolution core.
type GeocodeConfig struct {
	Workers       int               `yaml:"workers" mapstructure:"workers"`
	Region        string            `yaml:"region" mapstructure:"region"`
	RateLimit     float64           `yaml:"rate_limit" mapstructure:"rate_limit"`
	Substitutions map[string]string `yaml:"substitutions" mapstructure:"substitutions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ETL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Credential keys default to empty so AutomaticEnv can
	// surface them during Unmarshal.
	v.SetDefault("store.database_url", "")
	v.SetDefault("naver.client_id", "")
	v.SetDefault("naver.client_secret", "")
	v.SetDefault("kortour.key", "")
	v.SetDefault("seoul.key", "")
	v.SetDefault("kma.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 2)
	v.SetDefault("paths.raw_dir", "data/raw")
	v.SetDefault("paths.log_dir", "data/logs")
	v.SetDefault("geocode.workers", 20)
	v.SetDefault("geocode.region", "서울특별시")
	v.SetDefault("geocode.rate_limit", 10.0)
	v.SetDefault("geocode.substitutions", map[string]string{
		"청게천":   "청계천",
		"을지로지하": "을지로 지하",
	})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
