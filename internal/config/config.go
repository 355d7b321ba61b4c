// Package config provides configuration loading and validation for the
// AdCraft service. It reads from a YAML file with ADCRAFT_* environment
// variable overrides and validates the result before any component starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ErrConfiguration indicates the configuration is missing or invalid.
// It is returned before any network call is attempted.
var ErrConfiguration = errors.New("configuration error")

// Config contains all application configuration values.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=1s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s"`
}

// DatabaseConfig controls the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// GeminiConfig controls access to the Gemini text and image models.
type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key" validate:"required"`
	BaseURL           string        `mapstructure:"base_url" validate:"url"`
	APIVersion        string        `mapstructure:"api_version" validate:"required"`
	TextModel         string        `mapstructure:"text_model" validate:"required"`
	ImageModel        string        `mapstructure:"image_model" validate:"required"`
	Temperature       float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxRetries        int           `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelaySeconds int           `mapstructure:"retry_delay_seconds" validate:"min=1,max=60"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout" validate:"min=1s,max=10m"`
	GenerationDelay   time.Duration `mapstructure:"generation_delay" validate:"min=0,max=30s"`
}

// ScraperConfig controls website content extraction.
type ScraperConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" validate:"min=1s,max=5m"`
	UserAgent     string        `mapstructure:"user_agent" validate:"required"`
	UseBrowser    bool          `mapstructure:"use_browser"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl" validate:"min=0"`
	MaxBodyLength int           `mapstructure:"max_body_length" validate:"min=1000"`
}

// StorageConfig controls where generated images are written and how their
// public URLs are formed.
type StorageConfig struct {
	Dir     string `mapstructure:"dir" validate:"required"`
	BaseURL string `mapstructure:"base_url" validate:"required"`
}

// TasksConfig controls background maintenance jobs.
type TasksConfig struct {
	MaintenanceEnabled  bool   `mapstructure:"maintenance_enabled"`
	MaintenanceSchedule string `mapstructure:"maintenance_schedule" validate:"required"`
}

// LoadConfig reads configuration from the given YAML file, applies defaults
// and ADCRAFT_* environment overrides, and validates the result. A missing
// config file is not an error; defaults plus environment cover it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("ADCRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read config file %s: %v", ErrConfiguration, path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.path", "./adcraft.db")

	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.api_version", "v1beta")
	v.SetDefault("gemini.text_model", "gemini-2.5-flash")
	v.SetDefault("gemini.image_model", "gemini-2.5-flash-image")
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.max_retries", 2)
	v.SetDefault("gemini.retry_delay_seconds", 5)
	v.SetDefault("gemini.request_timeout", 4*time.Minute)
	v.SetDefault("gemini.generation_delay", time.Second)

	v.SetDefault("scraper.timeout", 30*time.Second)
	v.SetDefault("scraper.user_agent", "AdCraftBot/1.0 (+https://adcraft.ai; content analysis)")
	v.SetDefault("scraper.use_browser", false)
	v.SetDefault("scraper.cache_ttl", 5*time.Minute)
	v.SetDefault("scraper.max_body_length", 10000)

	v.SetDefault("storage.dir", "./media")
	v.SetDefault("storage.base_url", "/media")

	v.SetDefault("tasks.maintenance_enabled", true)
	v.SetDefault("tasks.maintenance_schedule", "0 4 * * *")
}
