// Package presenter renders widget request states to output surfaces.
package presenter

import (
	"context"
	"strings"

	"github.com/valpere/pogoda/pkg/weather"
)

// Sink is an output surface for one request cycle. Implementations must not
// panic to the caller.
type Sink interface {
	// ShowLoading disables the submit control and relabels it with message.
	ShowLoading(message string)
	// ShowError restores the submit control and shows message.
	ShowError(message string)
	// ShowWeather restores the submit control and renders view.
	ShowWeather(view *weather.View)
	// ResetSubmitControl re-enables the submit control with its default label.
	ResetSubmitControl()
	// SetQuery fills the query input.
	SetQuery(city string)
}

type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// RequestState holds exactly one state. Message is set for loading and
// error, View only for success.
type RequestState struct {
	State   State
	Message string
	View    *weather.View
}

func Idle() RequestState { return RequestState{State: StateIdle} }

func Loading(message string) RequestState {
	return RequestState{State: StateLoading, Message: message}
}

func Success(view *weather.View) RequestState {
	return RequestState{State: StateSuccess, View: view}
}

func Failure(message string) RequestState {
	return RequestState{State: StateError, Message: message}
}

// Translator resolves localized texts.
type Translator interface {
	T(ctx context.Context, language, key string, args ...any) string
}

// Labels are the localized texts a renderer needs.
type Labels struct {
	Language      string
	SubmitLabel   string
	ForecastTitle string
	Max           string
	Min           string
	NoData        string
	WindUnit      string
	Approximate   string
	GenericError  string
}

func NewLabels(ctx context.Context, tr Translator, language string) Labels {
	return Labels{
		Language:      language,
		SubmitLabel:   tr.T(ctx, language, "submit_label"),
		ForecastTitle: tr.T(ctx, language, "forecast_title"),
		Max:           tr.T(ctx, language, "forecast_max"),
		Min:           tr.T(ctx, language, "forecast_min"),
		NoData:        tr.T(ctx, language, "no_data"),
		WindUnit:      tr.T(ctx, language, "wind_unit"),
		Approximate:   tr.T(ctx, language, "approximate_note"),
		GenericError:  tr.T(ctx, language, "error_generic"),
	}
}

// Value returns v, or the no-data text when v is empty.
func (l Labels) Value(v string) string {
	if strings.TrimSpace(v) == "" {
		return l.NoData
	}
	return v
}

// WithUnit appends unit to a present value; a missing value gets the
// no-data text without a unit.
func (l Labels) WithUnit(v, unit string) string {
	if strings.TrimSpace(v) == "" {
		return l.NoData
	}
	return v + unit
}
