package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/valpere/pogoda/internal/config"
	"github.com/valpere/pogoda/pkg/fetch"
	"github.com/valpere/pogoda/pkg/metrics"
)

const apiIPAPI = "ipapi"

// ipapiResponse holds the only field the resolver reads.
type ipapiResponse struct {
	City string `json:"city"`
}

// LocationService resolves a city from the caller's IP address via ipapi.co.
type LocationService struct {
	client  *fetch.Client
	config  *config.LocationConfig
	metrics *metrics.Metrics
	logger  *zerolog.Logger
	tracer  trace.Tracer
}

func NewLocationService(cfg *config.LocationConfig, client *fetch.Client, metricsCollector *metrics.Metrics, logger *zerolog.Logger) *LocationService {
	return &LocationService{
		client:  client,
		config:  cfg,
		metrics: metricsCollector,
		logger:  logger,
		tracer:  otel.GetTracerProvider().Tracer("pogoda/location"),
	}
}

// ResolveCityByIP makes a single lookup. When clientIP is a public address
// it is looked up explicitly; otherwise ipapi.co geolocates the caller of
// the request. All failures are *LocationError.
func (s *LocationService) ResolveCityByIP(ctx context.Context, clientIP string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "location.resolve")
	defer span.End()

	city, err := s.resolve(ctx, clientIP)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn().
			Err(err).
			Str("client_ip", clientIP).
			Msg("Failed to resolve city by IP")
		return "", err
	}

	span.SetAttributes(attribute.String("city", city))
	s.logger.Debug().
		Str("client_ip", clientIP).
		Str("city", city).
		Msg("Resolved city by IP")
	return city, nil
}

func (s *LocationService) resolve(ctx context.Context, clientIP string) (string, error) {
	start := time.Now()
	resp, err := s.client.Get(ctx, s.lookupURL(clientIP), s.config.Timeout)
	s.metrics.ObserveHistogram(metrics.UpstreamRequestLatency, time.Since(start).Seconds(), apiIPAPI)
	if err != nil {
		s.metrics.IncrementCounter(metrics.UpstreamRequestsTotal, apiIPAPI, string(LocationErrTransport))
		return "", &LocationError{Kind: LocationErrTransport, Err: err}
	}

	if !resp.OK() {
		s.metrics.IncrementCounter(metrics.UpstreamRequestsTotal, apiIPAPI, string(LocationErrHTTP))
		return "", &LocationError{Kind: LocationErrHTTP, Status: resp.StatusCode}
	}

	// An unreadable body is a failed lookup, not an unknown city.
	var payload ipapiResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		s.metrics.IncrementCounter(metrics.UpstreamRequestsTotal, apiIPAPI, string(LocationErrTransport))
		return "", &LocationError{Kind: LocationErrTransport, Err: fmt.Errorf("decode ipapi response: %w", err)}
	}

	city := strings.TrimSpace(payload.City)
	if city == "" {
		s.metrics.IncrementCounter(metrics.UpstreamRequestsTotal, apiIPAPI, string(LocationErrUnresolved))
		return "", &LocationError{Kind: LocationErrUnresolved}
	}

	s.metrics.IncrementCounter(metrics.UpstreamRequestsTotal, apiIPAPI, "ok")
	return city, nil
}

func (s *LocationService) lookupURL(clientIP string) string {
	base := strings.TrimRight(s.config.BaseURL, "/")
	if isPublicIP(clientIP) {
		return fmt.Sprintf("%s/%s/json/", base, clientIP)
	}
	return base + "/json/"
}

func isPublicIP(raw string) bool {
	ip := net.ParseIP(strings.TrimSpace(raw))
	if ip == nil {
		return false
	}
	return !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() &&
		!ip.IsLinkLocalUnicast() && !ip.IsLinkLocalMulticast() && !ip.IsMulticast()
}
