package interfaces

import (
	"context"

	"github.com/valpere/pogoda/pkg/weather"
)

//go:generate mockgen -source=services.go -destination=../../tests/mocks/services_mock.go -package=mocks

// WeatherFetcherInterface looks up weather for a validated city.
type WeatherFetcherInterface interface {
	FetchWeather(ctx context.Context, city, language string) (*weather.View, error)
}

// LocationResolverInterface resolves a city from a client address.
type LocationResolverInterface interface {
	ResolveCityByIP(ctx context.Context, clientIP string) (string, error)
}

// LocalizationServiceInterface defines the interface for localization service operations
type LocalizationServiceInterface interface {
	T(ctx context.Context, language, key string, args ...any) string
	MatchLanguage(acceptLanguage string) string
	DefaultLanguage() string
}
