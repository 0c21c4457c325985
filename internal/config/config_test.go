package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/pogoda/internal"
)

// chdirTemp moves the test into an empty directory so no pogoda.yaml or .env is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	originalDir, _ := os.Getwd()
	tmpDir := t.TempDir()
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(originalDir) })
	return tmpDir
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no config file exists", func(t *testing.T) {
		viper.Reset()
		chdirTemp(t)

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, "", cfg.Bot.Token)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost", cfg.Redis.Host)
		assert.Equal(t, 6379, cfg.Redis.Port)
		assert.Equal(t, "https://wttr.in", cfg.Weather.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.Weather.Timeout)
		assert.Equal(t, 2, cfg.Weather.MaxRetries)
		assert.Equal(t, time.Second, cfg.Weather.RetryBaseDelay)
		assert.Equal(t, 10*time.Minute, cfg.Weather.CacheTTL)
		assert.Equal(t, internal.DefaultUserAgent, cfg.Weather.UserAgent)
		assert.Equal(t, "https://ipapi.co", cfg.Location.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Location.Timeout)
		assert.Equal(t, "ru-RU", cfg.Widget.Language)
		assert.Equal(t, 1.0, cfg.Widget.RateLimit)
		assert.Equal(t, 5, cfg.Widget.RateBurst)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, "", cfg.Metrics.ZipkinEndpoint)
	})

	t.Run("loads from environment variables", func(t *testing.T) {
		viper.Reset()
		chdirTemp(t)

		t.Setenv("PORT", "9000")
		t.Setenv("TELEGRAM_BOT_TOKEN", "test_token_123")
		t.Setenv("REDIS_ENABLED", "true")
		t.Setenv("REDIS_HOST", "redis.example.com")
		t.Setenv("WEATHER_BASE_URL", "http://wttr.local")
		t.Setenv("WEATHER_TIMEOUT", "3s")
		t.Setenv("WEATHER_MAX_RETRIES", "4")
		t.Setenv("LOCATION_TIMEOUT", "1500ms")
		t.Setenv("WIDGET_LANGUAGE", "en-US")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("ZIPKIN_ENDPOINT", "http://zipkin:9411/api/v2/spans")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "test_token_123", cfg.Bot.Token)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "redis.example.com", cfg.Redis.Host)
		assert.Equal(t, "http://wttr.local", cfg.Weather.BaseURL)
		assert.Equal(t, 3*time.Second, cfg.Weather.Timeout)
		assert.Equal(t, 4, cfg.Weather.MaxRetries)
		assert.Equal(t, 1500*time.Millisecond, cfg.Location.Timeout)
		assert.Equal(t, "en-US", cfg.Widget.Language)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "http://zipkin:9411/api/v2/spans", cfg.Metrics.ZipkinEndpoint)
	})

	t.Run("loads from yaml file", func(t *testing.T) {
		viper.Reset()
		dir := chdirTemp(t)

		yaml := []byte("weather:\n  max_retries: 1\n  retry_base_delay: 250ms\nlogging:\n  format: console\n")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "pogoda.yaml"), yaml, 0o600))

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 1, cfg.Weather.MaxRetries)
		assert.Equal(t, 250*time.Millisecond, cfg.Weather.RetryBaseDelay)
		assert.Equal(t, "console", cfg.Logging.Format)
		assert.Equal(t, 10*time.Second, cfg.Weather.Timeout)
	})

	t.Run("loads .env file", func(t *testing.T) {
		viper.Reset()
		dir := chdirTemp(t)

		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WIDGET_RATE_BURST=9\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("WIDGET_RATE_BURST") })

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.Widget.RateBurst)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		viper.Reset()
		chdirTemp(t)

		t.Setenv("WEATHER_MAX_RETRIES", "-1")

		cfg, err := Load()
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "max_retries")
	})
}

func TestSetDefaults(t *testing.T) {
	viper.Reset()

	setDefaults()

	t.Run("weather defaults", func(t *testing.T) {
		assert.Equal(t, "https://wttr.in", viper.GetString("weather.base_url"))
		assert.Equal(t, 10*time.Second, viper.GetDuration("weather.timeout"))
		assert.Equal(t, 2, viper.GetInt("weather.max_retries"))
		assert.Equal(t, time.Second, viper.GetDuration("weather.retry_base_delay"))
	})

	t.Run("location defaults", func(t *testing.T) {
		assert.Equal(t, "https://ipapi.co", viper.GetString("location.base_url"))
		assert.Equal(t, 5*time.Second, viper.GetDuration("location.timeout"))
	})

	t.Run("redis defaults", func(t *testing.T) {
		assert.False(t, viper.GetBool("redis.enabled"))
		assert.Equal(t, "localhost", viper.GetString("redis.host"))
		assert.Equal(t, 6379, viper.GetInt("redis.port"))
		assert.Equal(t, 0, viper.GetInt("redis.db"))
	})

	t.Run("server defaults", func(t *testing.T) {
		assert.Equal(t, 8080, viper.GetInt("server.port"))
		assert.Equal(t, 60*time.Second, viper.GetDuration("server.write_timeout"))
	})

	t.Run("logging defaults", func(t *testing.T) {
		assert.Equal(t, "info", viper.GetString("logging.level"))
		assert.Equal(t, "json", viper.GetString("logging.format"))
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Weather:  WeatherConfig{BaseURL: "https://wttr.in", Timeout: time.Second, MaxRetries: 2},
			Location: LocationConfig{BaseURL: "https://ipapi.co", Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty weather url", mutate: func(c *Config) { c.Weather.BaseURL = "" }, wantErr: "weather.base_url"},
		{name: "zero weather timeout", mutate: func(c *Config) { c.Weather.Timeout = 0 }, wantErr: "weather.timeout"},
		{name: "negative retries", mutate: func(c *Config) { c.Weather.MaxRetries = -1 }, wantErr: "weather.max_retries"},
		{name: "empty location url", mutate: func(c *Config) { c.Location.BaseURL = "" }, wantErr: "location.base_url"},
		{name: "zero location timeout", mutate: func(c *Config) { c.Location.Timeout = 0 }, wantErr: "location.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_HTTPWriteTimeout(t *testing.T) {
	cfg := Config{
		Server:   ServerConfig{WriteTimeout: 30 * time.Second},
		Weather:  WeatherConfig{Timeout: 10 * time.Second, MaxRetries: 2, RetryBaseDelay: time.Second},
		Location: LocationConfig{Timeout: 5 * time.Second},
	}

	// 5s location + 3 x 10s attempts + 1s + 2s backoff
	assert.Equal(t, 38*time.Second, cfg.CycleBudget())

	t.Run("short timeout is raised above the slowest cycle", func(t *testing.T) {
		assert.Equal(t, 43*time.Second, cfg.HTTPWriteTimeout())
	})

	t.Run("longer timeout is kept", func(t *testing.T) {
		long := cfg
		long.Server.WriteTimeout = 2 * time.Minute
		assert.Equal(t, 2*time.Minute, long.HTTPWriteTimeout())
	})

	t.Run("no retries", func(t *testing.T) {
		single := cfg
		single.Weather.MaxRetries = 0
		assert.Equal(t, 15*time.Second, single.CycleBudget())
	})
}
