package services

import (
	"fmt"
)

// WeatherErrorKind names a terminal failure of a weather lookup.
type WeatherErrorKind string

const (
	WeatherErrHTTP        WeatherErrorKind = "http"
	WeatherErrInvalidData WeatherErrorKind = "invalid_data"
	WeatherErrTimeout     WeatherErrorKind = "timeout"
	WeatherErrNetwork     WeatherErrorKind = "network"
	WeatherErrCanceled    WeatherErrorKind = "canceled"
	WeatherErrRender      WeatherErrorKind = "render"
)

// WeatherError is returned by WeatherService.FetchWeather.
type WeatherError struct {
	Kind     WeatherErrorKind
	City     string
	Status   int // set for WeatherErrHTTP
	Attempts int
	Err      error
}

func (e *WeatherError) Error() string {
	msg := fmt.Sprintf("weather %q: %s", e.City, e.Kind)
	if e.Kind == WeatherErrHTTP {
		msg = fmt.Sprintf("%s %d", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *WeatherError) Unwrap() error {
	return e.Err
}

// LocationErrorKind names a failure of IP-based city resolution.
type LocationErrorKind string

const (
	LocationErrHTTP       LocationErrorKind = "http"
	LocationErrUnresolved LocationErrorKind = "unresolved"
	LocationErrTransport  LocationErrorKind = "transport"
)

// LocationError is returned by LocationService.ResolveCityByIP.
type LocationError struct {
	Kind   LocationErrorKind
	Status int // set for LocationErrHTTP
	Err    error
}

func (e *LocationError) Error() string {
	switch {
	case e.Kind == LocationErrHTTP:
		return fmt.Sprintf("location: %s %d", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("location: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("location: %s", e.Kind)
	}
}

func (e *LocationError) Unwrap() error {
	return e.Err
}
