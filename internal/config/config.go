package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/valpere/pogoda/internal"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Bot      BotConfig      `mapstructure:"bot"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Location LocationConfig `mapstructure:"location"`
	Widget   WidgetConfig   `mapstructure:"widget"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// BotConfig configures the optional Telegram frontend. An empty token disables it.
type BotConfig struct {
	Token string `mapstructure:"token"`
	Debug bool   `mapstructure:"debug"`
}

// RedisConfig configures the weather payload cache. Disabled by default.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WeatherConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	UserAgent      string        `mapstructure:"user_agent"`
}

type LocationConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WidgetConfig struct {
	Language  string  `mapstructure:"language"`
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	ZipkinEndpoint string `mapstructure:"zipkin_endpoint"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	// Configure YAML config file search
	viper.SetConfigName("pogoda")
	viper.SetConfigType("yaml")

	// Add search paths in order of precedence (first found wins)
	viper.AddConfigPath(".")             // ./pogoda.yaml (current directory)
	viper.AddConfigPath("$HOME")         // ~/.pogoda.yaml (home directory)
	viper.AddConfigPath("$HOME/.config") // ~/.config/pogoda.yaml
	viper.AddConfigPath("/etc")          // /etc/pogoda.yaml (system-wide)

	// Environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Map specific environment variables to config keys
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	viper.BindEnv("bot.token", "TELEGRAM_BOT_TOKEN")
	viper.BindEnv("bot.debug", "BOT_DEBUG")

	viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("weather.base_url", "WEATHER_BASE_URL")
	viper.BindEnv("weather.timeout", "WEATHER_TIMEOUT")
	viper.BindEnv("weather.max_retries", "WEATHER_MAX_RETRIES")
	viper.BindEnv("weather.retry_base_delay", "WEATHER_RETRY_BASE_DELAY")
	viper.BindEnv("weather.cache_ttl", "WEATHER_CACHE_TTL")
	viper.BindEnv("weather.user_agent", "WEATHER_USER_AGENT")

	viper.BindEnv("location.base_url", "LOCATION_BASE_URL")
	viper.BindEnv("location.timeout", "LOCATION_TIMEOUT")

	viper.BindEnv("widget.language", "WIDGET_LANGUAGE")
	viper.BindEnv("widget.rate_limit", "WIDGET_RATE_LIMIT")
	viper.BindEnv("widget.rate_burst", "WIDGET_RATE_BURST")

	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("logging.format", "LOG_FORMAT")

	viper.BindEnv("metrics.zipkin_endpoint", "ZIPKIN_ENDPOINT")

	// Set defaults
	setDefaults()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Weather.BaseURL == "" {
		return fmt.Errorf("weather.base_url must not be empty")
	}
	if c.Weather.Timeout <= 0 {
		return fmt.Errorf("weather.timeout must be positive, got %s", c.Weather.Timeout)
	}
	if c.Weather.MaxRetries < 0 {
		return fmt.Errorf("weather.max_retries must not be negative, got %d", c.Weather.MaxRetries)
	}
	if c.Location.BaseURL == "" {
		return fmt.Errorf("location.base_url must not be empty")
	}
	if c.Location.Timeout <= 0 {
		return fmt.Errorf("location.timeout must be positive, got %s", c.Location.Timeout)
	}
	return nil
}

// renderMargin covers page rendering after the slowest lookup.
const renderMargin = 5 * time.Second

// CycleBudget is the longest a widget cycle can take: the geolocation call
// followed by every weather attempt and the waits between them.
func (c *Config) CycleBudget() time.Duration {
	retries := time.Duration(c.Weather.MaxRetries)
	attempts := c.Weather.Timeout * (retries + 1)
	backoff := c.Weather.RetryBaseDelay * retries * (retries + 1) / 2
	return c.Location.Timeout + attempts + backoff
}

// HTTPWriteTimeout is server.write_timeout, raised when needed so a
// response is never cut off before the slowest cycle has finished.
func (c *Config) HTTPWriteTimeout() time.Duration {
	if floor := c.CycleBudget() + renderMargin; c.Server.WriteTimeout < floor {
		return floor
	}
	return c.Server.WriteTimeout
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 60*time.Second)

	// Bot defaults
	viper.SetDefault("bot.debug", false)

	// Redis defaults
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	// Weather defaults
	viper.SetDefault("weather.base_url", "https://wttr.in")
	viper.SetDefault("weather.timeout", 10*time.Second)
	viper.SetDefault("weather.max_retries", 2)
	viper.SetDefault("weather.retry_base_delay", time.Second)
	viper.SetDefault("weather.cache_ttl", 10*time.Minute)
	viper.SetDefault("weather.user_agent", internal.DefaultUserAgent)

	// Location defaults
	viper.SetDefault("location.base_url", "https://ipapi.co")
	viper.SetDefault("location.timeout", 5*time.Second)

	// Widget defaults
	viper.SetDefault("widget.language", internal.DefaultLanguage)
	viper.SetDefault("widget.rate_limit", 1.0)
	viper.SetDefault("widget.rate_burst", 5)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}
