// Package services provides the business logic layer for Pogoda: the weather
// fetcher, the IP-based location resolver and localization of user-facing
// texts. Each service encapsulates one upstream or concern.
package services

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/valpere/pogoda/internal/config"
	"github.com/valpere/pogoda/internal/locales"
	"github.com/valpere/pogoda/internal/version"
	"github.com/valpere/pogoda/pkg/fetch"
	"github.com/valpere/pogoda/pkg/metrics"
)

// Services is the central container for all business logic services.
//
// Architecture:
//   - Uses dependency injection for all services
//   - Services are initialized once during application startup
//   - Thread-safe and designed for concurrent use
//
// Usage:
//
//	svcs, err := services.New(redis, cfg, logger, metrics)
//	view, err := svcs.Weather.FetchWeather(ctx, "London", "ru-RU")
type Services struct {
	Weather      *WeatherService      // wttr.in lookups with retry and caching
	Location     *LocationService     // ipapi.co city resolution
	Localization *LocalizationService // widget texts
	metrics      *metrics.Metrics
	cacheEnabled bool
	startTime    time.Time // Application start time for uptime calculation
}

// SystemStats is a snapshot reported by the health endpoint.
type SystemStats struct {
	Uptime            time.Duration `json:"-"`
	UptimeSeconds     float64       `json:"uptime_seconds"`
	WidgetRequests    float64       `json:"widget_requests"`
	UpstreamRetries   float64       `json:"upstream_retries"`
	CacheEnabled      bool          `json:"cache_enabled"`
	CacheHitRate      float64       `json:"cache_hit_rate"`
	AvgResponseTimeMs float64       `json:"avg_response_time_ms"`
}

// New creates the services container and loads the embedded translations.
// redis may be nil when caching is disabled.
func New(redis *redis.Client, cfg *config.Config, logger *zerolog.Logger, metricsCollector *metrics.Metrics) (*Services, error) {
	startTime := time.Now()

	userAgent := cfg.Weather.UserAgent
	if userAgent == "" {
		userAgent = version.GetInfo().UserAgent()
	}
	client := fetch.NewClient(&http.Client{}, userAgent)

	localizationService := NewLocalizationService(logger, cfg.Widget.Language)
	if err := localizationService.LoadTranslations(locales.LocalesFS); err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	return &Services{
		Weather:      NewWeatherService(&cfg.Weather, client, redis, metricsCollector, logger),
		Location:     NewLocationService(&cfg.Location, client, metricsCollector, logger),
		Localization: localizationService,
		metrics:      metricsCollector,
		cacheEnabled: redis != nil,
		startTime:    startTime,
	}, nil
}

// Stats reads back the service-level metrics.
func (s *Services) Stats() SystemStats {
	uptime := time.Since(s.startTime)
	return SystemStats{
		Uptime:            uptime,
		UptimeSeconds:     uptime.Seconds(),
		WidgetRequests:    s.metrics.GetCounterTotal(metrics.WidgetRequestsTotal, "", ""),
		UpstreamRetries:   s.metrics.GetCounterTotal(metrics.UpstreamRetriesTotal, "", ""),
		CacheEnabled:      s.cacheEnabled,
		CacheHitRate:      s.metrics.GetCacheHitRate(cacheTypeRedis),
		AvgResponseTimeMs: s.metrics.GetAverageResponseTime(),
	}
}
