package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	// Empty env values count as unset
	t.Setenv("JOBO_API_KEY", "")
	t.Setenv("JOBO_BASE_URL", "")
	t.Setenv("JOBO_URL", "")

	path := writeConfig(t, `
jobo:
  url: https://jobs.internal.example.com
  api_key: file-key
  timeout: 45s
filter:
  presets:
    remote-go: 'IsRemote && contains(lower(Title), "go")'
store:
  path: /var/lib/jobo/mirror.db
logging:
  level: debug
  format: json
  color: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://jobs.internal.example.com", cfg.Jobo.URL)
	assert.Equal(t, "file-key", cfg.Jobo.APIKey)
	assert.Equal(t, 45*time.Second, cfg.Jobo.Timeout)
	assert.Equal(t, `IsRemote && contains(lower(Title), "go")`, cfg.Filter.Presets["remote-go"])
	assert.Equal(t, "/var/lib/jobo/mirror.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Logging.Color)
}

func TestLoadDefaultsWithEnvKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("JOBO_API_KEY", "env-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Jobo.APIKey)
	assert.Equal(t, "https://api.jobo.ai", cfg.Jobo.URL)
	assert.Equal(t, 30*time.Second, cfg.Jobo.Timeout)
	assert.Equal(t, "jobo.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Logging.Color)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
jobo:
  api_key: file-key
logging:
  level: info
`)
	t.Setenv("JOBO_API_KEY", "env-key")
	t.Setenv("JOBO_BASE_URL", "http://localhost:9000")
	t.Setenv("JOBO_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Jobo.APIKey)
	assert.Equal(t, "http://localhost:9000", cfg.Jobo.URL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Jobo:    JoboConfig{URL: "https://api.jobo.ai", APIKey: "key", Timeout: 30 * time.Second},
			Logging: LoggingConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing url", mutate: func(c *Config) { c.Jobo.URL = "" }, wantErr: "jobo.url is required"},
		{name: "missing api key", mutate: func(c *Config) { c.Jobo.APIKey = " " }, wantErr: "jobo.api_key"},
		{name: "placeholder api key", mutate: func(c *Config) { c.Jobo.APIKey = "your-api-key-here" }, wantErr: "jobo.api_key"},
		{name: "zero timeout", mutate: func(c *Config) { c.Jobo.Timeout = 0 }, wantErr: "jobo.timeout must be positive"},
		{name: "empty preset", mutate: func(c *Config) { c.Filter.Presets = map[string]string{"x": " "} }, wantErr: `filter preset "x" is empty`},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "invalid logging level: trace"},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "invalid logging format: xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
