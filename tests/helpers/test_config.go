package helpers

import (
	"time"

	"github.com/valpere/pogoda/internal/config"
)

// GetTestConfig returns a configuration suitable for testing. Retry delays
// are real durations; tests that exercise retries replace the sleep function.
func GetTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:         0,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Bot: config.BotConfig{
			Token: "test_bot_token",
			Debug: true,
		},
		Redis: config.RedisConfig{
			Host: "localhost",
			Port: 6379,
			DB:   1, // Use different DB for tests
		},
		Weather: config.WeatherConfig{
			BaseURL:        "https://wttr.in",
			Timeout:        10 * time.Second,
			MaxRetries:     2,
			RetryBaseDelay: time.Second,
			CacheTTL:       10 * time.Minute,
			UserAgent:      "Pogoda-Test/1.0",
		},
		Location: config.LocationConfig{
			BaseURL: "https://ipapi.co",
			Timeout: 5 * time.Second,
		},
		Widget: config.WidgetConfig{
			Language:  "ru-RU",
			RateLimit: 100,
			RateBurst: 100,
		},
		Logging: config.LoggingConfig{
			Level:  "debug",
			Format: "console",
		},
	}
}
