// Package config loads notion-blog settings from defaults, an optional YAML
// file and NOTION_BLOG_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variable names, e.g.
// NOTION_BLOG_NOTION_SECRET for notion.secret.
const EnvPrefix = "NOTION_BLOG"

// Config is the full application configuration.
type Config struct {
	Notion  NotionConfig  `mapstructure:"notion"`
	Request RequestConfig `mapstructure:"request"`
	Blog    BlogConfig    `mapstructure:"blog"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Export  ExportConfig  `mapstructure:"export"`
}

type NotionConfig struct {
	Secret     string `mapstructure:"secret"`
	DatabaseID string `mapstructure:"database_id"`
	BaseURL    string `mapstructure:"base_url"`
	Version    string `mapstructure:"version"`
	PageSize   int    `mapstructure:"page_size"`
}

type RequestConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Rate        float64       `mapstructure:"rate"`
}

type BlogConfig struct {
	PageSize int    `mapstructure:"page_size"`
	Locale   string `mapstructure:"locale"`
}

// RedisConfig enables the response cache when Addr is set. TTL applies to
// whole drains, which are stored as single entries.
type RedisConfig struct {
	Addr string        `mapstructure:"addr"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("notion.secret", "")
	v.SetDefault("notion.database_id", "")
	v.SetDefault("notion.base_url", "https://api.notion.com")
	v.SetDefault("notion.version", "2022-06-28")
	v.SetDefault("notion.page_size", 100)
	v.SetDefault("request.timeout", 30*time.Second)
	v.SetDefault("request.max_attempts", 3)
	v.SetDefault("request.rate", 3.0)
	v.SetDefault("blog.page_size", 10)
	v.SetDefault("blog.locale", "und")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("export.dir", "data")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads configuration. An empty path looks for notion-blog.yaml in the
// working directory and tolerates its absence; an explicit path must exist.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("notion-blog")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings every command needs.
func (c Config) Validate() error {
	var errs []error
	if c.Notion.Secret == "" {
		errs = append(errs, errors.New("notion.secret is required"))
	}
	if c.Notion.DatabaseID == "" {
		errs = append(errs, errors.New("notion.database_id is required"))
	}
	if c.Notion.PageSize < 1 || c.Notion.PageSize > 100 {
		errs = append(errs, fmt.Errorf("notion.page_size must be between 1 and 100 (got %d)", c.Notion.PageSize))
	}
	if c.Request.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("request.max_attempts must be >= 1 (got %d)", c.Request.MaxAttempts))
	}
	if c.Request.Timeout <= 0 {
		errs = append(errs, errors.New("request.timeout must be positive"))
	}
	return errors.Join(errs...)
}
