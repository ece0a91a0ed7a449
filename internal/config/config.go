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
	Directory DirectoryConfig `yaml:"directory" mapstructure:"directory"`
	JobBoard  JobBoardConfig  `yaml:"jobboard" mapstructure:"jobboard"`
	Website   WebsiteConfig   `yaml:"website" mapstructure:"website"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Dedup     DedupConfig     `yaml:"dedup" mapstructure:"dedup"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DirectoryConfig configures the catalog/directory API source.
type DirectoryConfig struct {
	Enabled       bool           `yaml:"enabled" mapstructure:"enabled"`
	Key           string         `yaml:"key" mapstructure:"key"`
	BaseURL       string         `yaml:"base_url" mapstructure:"base_url"`
	Locale        string         `yaml:"locale" mapstructure:"locale"`
	Fields        string         `yaml:"fields" mapstructure:"fields"`
	Regions       map[string]int `yaml:"regions" mapstructure:"regions"`
	DefaultRegion int            `yaml:"default_region" mapstructure:"default_region"`
}

// JobBoardConfig configures the job-board API source.
type JobBoardConfig struct {
	Enabled            bool   `yaml:"enabled" mapstructure:"enabled"`
	BaseURL            string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent          string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs        int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestDelayMs     int    `yaml:"request_delay_ms" mapstructure:"request_delay_ms"`
	RateLimitSleepSecs int    `yaml:"rate_limit_sleep_secs" mapstructure:"rate_limit_sleep_secs"`
}

// WebsiteConfig configures the raw website fetch-and-scan source.
type WebsiteConfig struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxSites     int    `yaml:"max_sites" mapstructure:"max_sites"`
	PatternsFile string `yaml:"patterns_file" mapstructure:"patterns_file"`
}

// CacheConfig selects and configures the contact cache backend.
type CacheConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // file, sqlite, postgres
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// DedupConfig configures the vacancy deduplication scorer.
type DedupConfig struct {
	PriorityKeywords []string `yaml:"priority_keywords" mapstructure:"priority_keywords"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)

	v.SetDefault("directory.enabled", true)
	v.SetDefault("directory.base_url", "https://catalog.api.2gis.com/3.0/items")
	v.SetDefault("directory.locale", "ru_RU")
	v.SetDefault("directory.fields", "items.contact_groups,items.address,items.org")
	v.SetDefault("directory.default_region", 1)
	v.SetDefault("directory.regions", map[string]int{
		"москва":          1,
		"санкт-петербург": 2,
		"новосибирск":     32,
		"екатеринбург":    48,
		"нижний новгород": 43,
		"казань":          88,
	})

	v.SetDefault("jobboard.enabled", true)
	v.SetDefault("jobboard.base_url", "https://api.hh.ru")
	v.SetDefault("jobboard.user_agent", defaultUserAgent)
	v.SetDefault("jobboard.timeout_secs", 15)
	v.SetDefault("jobboard.request_delay_ms", 300)
	v.SetDefault("jobboard.rate_limit_sleep_secs", 60)

	v.SetDefault("website.enabled", true)
	v.SetDefault("website.timeout_secs", 10)
	v.SetDefault("website.user_agent", defaultUserAgent)
	v.SetDefault("website.max_sites", 2)

	v.SetDefault("cache.driver", "file")
	v.SetDefault("cache.path", "contacts_search_cache.json")

	v.SetDefault("dedup.priority_keywords", []string{
		"входящие заявки",
		"обработка заявок",
		"crm",
		"битрикс",
		"amocrm",
		"чат",
		"оператор",
		"менеджер по работе с клиентами",
		"support",
		"техподдержка",
		"колл-центр",
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
