package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jobo-ai/jobo-go/jobo"
)

// EnvPrefix is prepended to every environment override, e.g. JOBO_LOGGING_LEVEL
const EnvPrefix = "JOBO"

// Load loads the configuration from file and environment. A missing config
// file is fine as long as the result validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Short names for the two settings people actually export
	_ = v.BindEnv("jobo.api_key", "JOBO_API_KEY")
	_ = v.BindEnv("jobo.url", "JOBO_BASE_URL", "JOBO_URL")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".jobo"))
		}

		// Check /etc
		v.AddConfigPath("/etc/jobo/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit --config must exist
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Jobo defaults
	v.SetDefault("jobo.url", jobo.DefaultBaseURL)
	v.SetDefault("jobo.api_key", "")
	v.SetDefault("jobo.timeout", jobo.DefaultTimeout)

	// Store defaults
	v.SetDefault("store.path", "jobo.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Jobo.URL == "" {
		return fmt.Errorf("jobo.url is required")
	}

	if strings.TrimSpace(cfg.Jobo.APIKey) == "" || cfg.Jobo.APIKey == "your-api-key-here" {
		return fmt.Errorf("jobo.api_key must be set to a valid API key (or export JOBO_API_KEY)")
	}

	if cfg.Jobo.Timeout <= 0 {
		return fmt.Errorf("jobo.timeout must be positive, got %s", cfg.Jobo.Timeout)
	}

	for name, expression := range cfg.Filter.Presets {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter preset %q is empty", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
