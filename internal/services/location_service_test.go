package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/pogoda/pkg/fetch"
	"github.com/valpere/pogoda/pkg/metrics"
	"github.com/valpere/pogoda/tests/fixtures"
	"github.com/valpere/pogoda/tests/helpers"
)

func newTestLocationService(t *testing.T) *LocationService {
	t.Helper()

	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	cfg := helpers.GetTestConfig().Location

	return NewLocationService(&cfg, fetch.NewClient(httpClient, "Pogoda-Test/1.0"), metrics.New(), helpers.NewSilentTestLogger())
}

func TestLocationService_ResolveCityByIP(t *testing.T) {
	t.Run("resolves city for the caller", func(t *testing.T) {
		service := newTestLocationService(t)
		httpmock.RegisterResponder("GET", "https://ipapi.co/json/",
			httpmock.NewStringResponder(200, fixtures.GetIPAPIResponse("London")))

		city, err := service.ResolveCityByIP(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, "London", city)
		assert.Equal(t, 1, httpmock.GetTotalCallCount())
	})

	t.Run("looks up a public client address explicitly", func(t *testing.T) {
		service := newTestLocationService(t)
		httpmock.RegisterResponder("GET", "https://ipapi.co/81.2.69.142/json/",
			httpmock.NewStringResponder(200, fixtures.GetIPAPIResponse("Москва")))

		city, err := service.ResolveCityByIP(context.Background(), "81.2.69.142")

		require.NoError(t, err)
		assert.Equal(t, "Москва", city)
	})

	t.Run("private client address falls back to caller lookup", func(t *testing.T) {
		service := newTestLocationService(t)
		httpmock.RegisterResponder("GET", "https://ipapi.co/json/",
			httpmock.NewStringResponder(200, fixtures.GetIPAPIResponse("Minsk")))

		city, err := service.ResolveCityByIP(context.Background(), "192.168.1.10")

		require.NoError(t, err)
		assert.Equal(t, "Minsk", city)
	})

	t.Run("non-OK status", func(t *testing.T) {
		service := newTestLocationService(t)
		httpmock.RegisterResponder("GET", "https://ipapi.co/json/",
			httpmock.NewStringResponder(429, fixtures.GetIPAPIRateLimitedResponse()))

		city, err := service.ResolveCityByIP(context.Background(), "")

		assert.Empty(t, city)
		var lerr *LocationError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, LocationErrHTTP, lerr.Kind)
		assert.Equal(t, 429, lerr.Status)
		assert.Equal(t, "location: http 429", lerr.Error())
	})

	t.Run("missing or empty city", func(t *testing.T) {
		for _, body := range []string{`{"ip": "81.2.69.142"}`, `{"city": "  "}`, `{"city": null}`} {
			service := newTestLocationService(t)
			httpmock.RegisterResponder("GET", "https://ipapi.co/json/", httpmock.NewStringResponder(200, body))

			_, err := service.ResolveCityByIP(context.Background(), "")

			var lerr *LocationError
			require.ErrorAs(t, err, &lerr, body)
			assert.Equal(t, LocationErrUnresolved, lerr.Kind, body)
		}
	})

	t.Run("undecodable body is a transport failure", func(t *testing.T) {
		service := newTestLocationService(t)
		httpmock.RegisterResponder("GET", "https://ipapi.co/json/", httpmock.NewStringResponder(200, "<html>Too many requests</html>"))

		_, err := service.ResolveCityByIP(context.Background(), "")

		var lerr *LocationError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, LocationErrTransport, lerr.Kind)
		var syntaxErr *json.SyntaxError
		assert.ErrorAs(t, err, &syntaxErr)
		assert.Contains(t, err.Error(), "decode ipapi response")
	})

	t.Run("transport failure", func(t *testing.T) {
		service := newTestLocationService(t)
		httpmock.RegisterResponder("GET", "https://ipapi.co/json/", httpmock.NewErrorResponder(errors.New("no route to host")))

		_, err := service.ResolveCityByIP(context.Background(), "")

		var lerr *LocationError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, LocationErrTransport, lerr.Kind)
		var fe *fetch.Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, fetch.KindNetwork, fe.Kind)
		assert.Equal(t, 1, httpmock.GetTotalCallCount(), "location lookups are never retried")
	})

	t.Run("timeout is a transport failure", func(t *testing.T) {
		service := newTestLocationService(t)
		service.config.Timeout = 20 * time.Millisecond
		httpmock.RegisterResponder("GET", "https://ipapi.co/json/", func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})

		_, err := service.ResolveCityByIP(context.Background(), "")

		var lerr *LocationError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, LocationErrTransport, lerr.Kind)
		assert.True(t, fetch.IsTimeout(err))
	})
}

func TestIsPublicIP(t *testing.T) {
	assert.True(t, isPublicIP("81.2.69.142"))
	assert.True(t, isPublicIP("2a00:1450:4001:82a::200e"))
	assert.False(t, isPublicIP("127.0.0.1"))
	assert.False(t, isPublicIP("10.0.0.5"))
	assert.False(t, isPublicIP("::1"))
	assert.False(t, isPublicIP("fe80::1"))
	assert.False(t, isPublicIP(""))
	assert.False(t, isPublicIP("not-an-ip"))
}
