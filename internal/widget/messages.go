package widget

import (
	"context"
	"errors"

	"github.com/valpere/pogoda/internal/services"
	"github.com/valpere/pogoda/pkg/fetch"
	"github.com/valpere/pogoda/pkg/weather"
)

// ErrInternal stands in for a recovered panic.
var ErrInternal = errors.New("widget: internal error")

// Message maps any error to a short localized text. Unknown errors get the
// generic text.
func (w *Widget) Message(ctx context.Context, language string, err error) string {
	var (
		werr *services.WeatherError
		lerr *services.LocationError
		ferr *fetch.Error
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return w.localizer.T(ctx, language, "validation_empty")
	case errors.Is(err, ErrInvalidQuery):
		return w.localizer.T(ctx, language, "validation_invalid")
	case errors.As(err, &werr):
		return w.weatherMessage(ctx, language, werr)
	case errors.As(err, &lerr):
		if lerr.Kind == services.LocationErrUnresolved {
			return w.localizer.T(ctx, language, "location_unresolved")
		}
		return w.localizer.T(ctx, language, "location_error")
	case errors.Is(err, weather.ErrNoCurrent):
		return w.localizer.T(ctx, language, "error_no_current")
	case errors.As(err, &ferr):
		return w.fetchMessage(ctx, language, ferr.Kind)
	default:
		return w.localizer.T(ctx, language, "error_generic")
	}
}

func (w *Widget) weatherMessage(ctx context.Context, language string, err *services.WeatherError) string {
	switch err.Kind {
	case services.WeatherErrHTTP:
		return w.localizer.T(ctx, language, "error_http", err.Status)
	case services.WeatherErrInvalidData:
		return w.localizer.T(ctx, language, "error_invalid_data")
	case services.WeatherErrTimeout:
		return w.localizer.T(ctx, language, "error_timeout")
	case services.WeatherErrNetwork:
		return w.localizer.T(ctx, language, "error_network")
	case services.WeatherErrCanceled:
		return w.localizer.T(ctx, language, "error_canceled")
	case services.WeatherErrRender:
		return w.localizer.T(ctx, language, "error_no_current")
	default:
		return w.localizer.T(ctx, language, "error_generic")
	}
}

func (w *Widget) fetchMessage(ctx context.Context, language string, kind fetch.ErrorKind) string {
	switch kind {
	case fetch.KindTimeout:
		return w.localizer.T(ctx, language, "error_timeout")
	case fetch.KindCanceled:
		return w.localizer.T(ctx, language, "error_canceled")
	default:
		return w.localizer.T(ctx, language, "error_network")
	}
}

// outcome is the metrics label for a finished cycle.
func outcome(err error) string {
	var (
		werr *services.WeatherError
		lerr *services.LocationError
	)

	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrEmptyQuery), errors.Is(err, ErrInvalidQuery):
		return "invalid"
	case errors.Is(err, ErrInternal):
		return "panic"
	case errors.As(err, &werr):
		return string(werr.Kind)
	case errors.As(err, &lerr):
		return "location_" + string(lerr.Kind)
	default:
		return "error"
	}
}
