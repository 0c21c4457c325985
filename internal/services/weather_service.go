package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/hbollon/go-edlib"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/valpere/pogoda/internal/config"
	"github.com/valpere/pogoda/pkg/fetch"
	"github.com/valpere/pogoda/pkg/metrics"
	"github.com/valpere/pogoda/pkg/weather"
)

const (
	apiWttr           = "wttr"
	cacheTypeRedis    = "redis"
	weatherCacheKey   = "weather:wttr:%s:%s"
	approximateCutoff = 0.7
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the default SleepFunc.
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type WeatherService struct {
	client  *fetch.Client
	redis   *redis.Client
	config  *config.WeatherConfig
	metrics *metrics.Metrics
	logger  *zerolog.Logger
	tracer  trace.Tracer
	sleep   SleepFunc

	cacheLookups atomic.Int64
	cacheHits    atomic.Int64
}

// NewWeatherService creates the weather fetcher. redis may be nil, which
// disables caching.
func NewWeatherService(cfg *config.WeatherConfig, client *fetch.Client, redis *redis.Client, metricsCollector *metrics.Metrics, logger *zerolog.Logger) *WeatherService {
	return &WeatherService{
		client:  client,
		redis:   redis,
		config:  cfg,
		metrics: metricsCollector,
		logger:  logger,
		tracer:  otel.GetTracerProvider().Tracer("pogoda/weather"),
		sleep:   ContextSleep,
	}
}

// SetSleepFunc replaces the delay used between retries.
func (s *WeatherService) SetSleepFunc(fn SleepFunc) {
	s.sleep = fn
}

// FetchWeather looks up city on wttr.in and builds the view model. language
// is an IETF tag; its primary subtag selects localized descriptions. All
// failures are *WeatherError.
func (s *WeatherService) FetchWeather(ctx context.Context, city, language string) (*weather.View, error) {
	city = strings.TrimSpace(city)
	lang := weather.LanguageCode(language)

	ctx, span := s.tracer.Start(ctx, "weather.fetch", trace.WithAttributes(
		attribute.String("city", city),
		attribute.String("lang", lang),
	))
	defer span.End()

	raw, err := s.loadRaw(ctx, span, city, lang)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	view, err := weather.BuildView(raw, city, weather.WithLanguage(lang))
	if err != nil {
		werr := &WeatherError{Kind: WeatherErrRender, City: city, Err: err}
		span.RecordError(werr)
		span.SetStatus(codes.Error, werr.Error())
		return nil, werr
	}
	view.Approximate = isApproximate(city, view.Area)

	span.SetAttributes(attribute.String("area", view.Area))
	s.logger.Debug().
		Str("city", city).
		Str("area", view.Area).
		Bool("approximate", view.Approximate).
		Int("forecast_days", len(view.Forecast)).
		Msg("Weather view built")

	return view, nil
}

// loadRaw returns a structurally valid payload from cache or upstream.
func (s *WeatherService) loadRaw(ctx context.Context, span trace.Span, city, lang string) (*weather.Response, error) {
	cacheKey := fmt.Sprintf(weatherCacheKey, lang, strings.ToLower(city))

	if body, ok := s.cacheGet(ctx, cacheKey); ok {
		if raw, err := weather.Decode(body); err == nil && raw.HasStructure() {
			span.AddEvent("cache.hit")
			return raw, nil
		}
	}

	body, err := s.fetchWithRetry(ctx, span, city, lang)
	if err != nil {
		return nil, err
	}

	raw, err := weather.Decode(body)
	if err != nil {
		return nil, &WeatherError{Kind: WeatherErrInvalidData, City: city, Err: err}
	}
	if !raw.HasStructure() {
		return nil, &WeatherError{Kind: WeatherErrInvalidData, City: city, Err: errors.New("missing current_condition or weather")}
	}

	s.cacheSet(ctx, cacheKey, body)
	return raw, nil
}

// fetchWithRetry retries only transient transport failures, waiting
// RetryBaseDelay*(attempt+1) before each retry.
func (s *WeatherService) fetchWithRetry(ctx context.Context, span trace.Span, city, lang string) ([]byte, error) {
	reqURL := s.buildURL(city, lang)

	for attempt := 0; ; attempt++ {
		start := time.Now()
		resp, err := s.client.Get(ctx, reqURL, s.config.Timeout)
		s.metrics.ObserveHistogram(metrics.UpstreamRequestLatency, time.Since(start).Seconds(), apiWttr)

		if err == nil {
			if !resp.OK() {
				s.metrics.IncrementCounter(metrics.UpstreamRequestsTotal, apiWttr, string(WeatherErrHTTP))
				s.logger.Warn().
					Str("city", city).
					Int("status", resp.StatusCode).
					Msg("Weather service returned non-OK status")
				return nil, &WeatherError{Kind: WeatherErrHTTP, City: city, Status: resp.StatusCode, Attempts: attempt + 1}
			}
			s.metrics.IncrementCounter(metrics.UpstreamRequestsTotal, apiWttr, "ok")
			return resp.Body, nil
		}

		werr := classifyFetchError(city, attempt+1, err)
		s.metrics.IncrementCounter(metrics.UpstreamRequestsTotal, apiWttr, string(werr.Kind))

		var fe *fetch.Error
		if !errors.As(err, &fe) || !fe.Retryable() || attempt >= s.config.MaxRetries {
			s.logger.Error().
				Err(err).
				Str("city", city).
				Int("attempts", attempt+1).
				Str("kind", string(werr.Kind)).
				Msg("Weather request failed")
			return nil, werr
		}

		delay := s.config.RetryBaseDelay * time.Duration(attempt+1)
		s.metrics.IncrementCounter(metrics.UpstreamRetriesTotal, apiWttr)
		span.AddEvent("retry", trace.WithAttributes(
			attribute.Int("attempt", attempt+1),
			attribute.String("delay", delay.String()),
		))
		s.logger.Warn().
			Err(err).
			Str("city", city).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Transient network failure, retrying")

		if err := s.sleep(ctx, delay); err != nil {
			return nil, classifyFetchError(city, attempt+1, &fetch.Error{Kind: contextKind(err), URL: reqURL, Err: err})
		}
	}
}

func (s *WeatherService) buildURL(city, lang string) string {
	query := url.Values{}
	query.Set("format", "j1")
	if lang != "" {
		query.Set("lang", lang)
	}
	return fmt.Sprintf("%s/%s?%s", strings.TrimRight(s.config.BaseURL, "/"), url.PathEscape(city), query.Encode())
}

func contextKind(err error) fetch.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return fetch.KindTimeout
	}
	return fetch.KindCanceled
}

func classifyFetchError(city string, attempts int, err error) *WeatherError {
	kind := WeatherErrNetwork

	var fe *fetch.Error
	if errors.As(err, &fe) {
		switch fe.Kind {
		case fetch.KindTimeout:
			kind = WeatherErrTimeout
		case fetch.KindCanceled:
			kind = WeatherErrCanceled
		}
	}

	return &WeatherError{Kind: kind, City: city, Attempts: attempts, Err: err}
}

func (s *WeatherService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.redis == nil {
		return nil, false
	}

	body, err := s.redis.Get(ctx, key).Bytes()
	lookups := s.cacheLookups.Add(1)
	hits := s.cacheHits.Load()

	switch {
	case err == nil:
		hits = s.cacheHits.Add(1)
		s.metrics.IncrementCounter(metrics.CacheOperationsTotal, cacheTypeRedis, "hit")
	case errors.Is(err, redis.Nil):
		s.metrics.IncrementCounter(metrics.CacheOperationsTotal, cacheTypeRedis, "miss")
	default:
		s.metrics.IncrementCounter(metrics.CacheOperationsTotal, cacheTypeRedis, "error")
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("Weather cache read failed")
	}

	s.metrics.SetGauge(metrics.CacheHitRate, float64(hits)/float64(lookups)*100, cacheTypeRedis)
	return body, err == nil
}

func (s *WeatherService) cacheSet(ctx context.Context, key string, body []byte) {
	if s.redis == nil || s.config.CacheTTL <= 0 {
		return
	}

	if err := s.redis.Set(ctx, key, body, s.config.CacheTTL).Err(); err != nil {
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("Failed to cache weather payload")
	}
}

// isApproximate compares a Latin-script query with the resolved area name.
// Cyrillic queries are resolved to Latin area names, so they are never flagged.
func isApproximate(query, area string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	a := strings.ToLower(strings.TrimSpace(area))
	if q == "" || a == "" || q == a || !isLatin(q) {
		return false
	}

	similarity, err := edlib.StringsSimilarity(q, a, edlib.JaroWinkler)
	if err != nil {
		return false
	}
	return similarity < approximateCutoff
}

func isLatin(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
