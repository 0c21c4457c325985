// Package widget drives one request cycle of the weather widget: it
// validates the query, puts the sink into its loading state, runs the
// lookup and hands the result or a localized error back to the sink.
package widget

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/valpere/pogoda/internal/interfaces"
	"github.com/valpere/pogoda/internal/presenter"
	"github.com/valpere/pogoda/pkg/metrics"
)

// SurfaceWeb is the surface label used unless ForSurface says otherwise.
const SurfaceWeb = "web"

type requestIDKey struct{}

// WithRequestID attaches an id assigned upstream (e.g. by HTTP middleware)
// so the cycle logs under it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id attached by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Widget is safe for concurrent use; all per-cycle state lives in the sink.
type Widget struct {
	fetcher   interfaces.WeatherFetcherInterface
	resolver  interfaces.LocationResolverInterface
	localizer interfaces.LocalizationServiceInterface
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
	surface   string
}

func New(
	fetcher interfaces.WeatherFetcherInterface,
	resolver interfaces.LocationResolverInterface,
	localizer interfaces.LocalizationServiceInterface,
	metricsCollector *metrics.Metrics,
	logger *zerolog.Logger,
) *Widget {
	return &Widget{
		fetcher:   fetcher,
		resolver:  resolver,
		localizer: localizer,
		metrics:   metricsCollector,
		logger:    logger,
		surface:   SurfaceWeb,
	}
}

// ForSurface returns a copy of the widget that labels its metrics and logs
// with surface.
func (w *Widget) ForSurface(surface string) *Widget {
	c := *w
	c.surface = surface
	return &c
}

// Labels returns the renderer texts for language.
func (w *Widget) Labels(ctx context.Context, language string) presenter.Labels {
	return presenter.NewLabels(ctx, w.localizer, language)
}

// Submit runs one request cycle for raw and reports through sink. The sink's
// submit control is reset exactly once on every exit path. The returned
// error is the one already shown on the sink; callers only use it to pick a
// status code.
func (w *Widget) Submit(ctx context.Context, sink presenter.Sink, raw, language string) (err error) {
	start := time.Now()
	ctx, logger := w.cycle(ctx)

	w.metrics.AddGauge(metrics.InflightRequests, 1)
	defer w.metrics.AddGauge(metrics.InflightRequests, -1)

	defer sink.ResetSubmitControl()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Str("query", raw).
				Msg("Recovered from panic in widget cycle")
			err = fmt.Errorf("%w: %v", ErrInternal, r)
			sink.ShowError(w.localizer.T(ctx, language, "error_generic"))
		}
		w.metrics.IncrementCounter(metrics.WidgetRequestsTotal, w.surface, outcome(err))
		w.metrics.ObserveHistogram(metrics.WidgetRequestDuration, time.Since(start).Seconds(), w.surface)
	}()

	city, err := ValidateQuery(raw)
	if err != nil {
		logger.Debug().
			Err(err).
			Str("query", raw).
			Msg("Rejected city query")
		sink.ShowError(w.Message(ctx, language, err))
		return err
	}

	sink.ShowLoading(w.localizer.T(ctx, language, "loading"))

	view, err := w.fetcher.FetchWeather(ctx, city, language)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("city", city).
			Dur("duration", time.Since(start)).
			Msg("Weather lookup failed")
		sink.ShowError(w.Message(ctx, language, err))
		return err
	}

	sink.ShowWeather(view)
	logger.Info().
		Str("city", city).
		Str("area", view.Area).
		Bool("approximate", view.Approximate).
		Dur("duration", time.Since(start)).
		Msg("Weather lookup succeeded")
	return nil
}

// AnswerConsent handles the geolocation prompt. Declining does nothing at
// all. Accepting starts a cycle: it resolves the city for clientIP, fills
// the query and submits it. The submit control is reset exactly once
// either way.
func (w *Widget) AnswerConsent(ctx context.Context, sink presenter.Sink, accepted bool, clientIP, language string) error {
	if !accepted {
		return nil
	}

	ctx, logger := w.cycle(ctx)
	city, err := w.resolver.ResolveCityByIP(ctx, clientIP)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("client_ip", clientIP).
			Msg("Geolocation failed")
		w.metrics.IncrementCounter(metrics.WidgetRequestsTotal, w.surface, outcome(err))
		sink.ShowError(w.Message(ctx, language, err))
		sink.ResetSubmitControl()
		return err
	}

	sink.SetQuery(city)
	return w.Submit(ctx, sink, city, language)
}

// cycle makes sure ctx carries a request id and returns a logger tagged with it.
func (w *Widget) cycle(ctx context.Context) (context.Context, zerolog.Logger) {
	id := RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = WithRequestID(ctx, id)
	}
	return ctx, w.logger.With().
		Str("request_id", id).
		Str("surface", w.surface).
		Logger()
}
