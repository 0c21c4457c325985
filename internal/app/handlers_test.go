package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/valpere/pogoda/internal/locales"
	"github.com/valpere/pogoda/internal/middleware"
	"github.com/valpere/pogoda/internal/services"
	"github.com/valpere/pogoda/internal/widget"
	"github.com/valpere/pogoda/pkg/metrics"
	"github.com/valpere/pogoda/pkg/weather"
	"github.com/valpere/pogoda/tests/helpers"
	"github.com/valpere/pogoda/tests/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStats struct{}

func (fakeStats) Stats() services.SystemStats {
	return services.SystemStats{UptimeSeconds: 12, WidgetRequests: 3, CacheEnabled: true}
}

type serverHarness struct {
	router   *gin.Engine
	fetcher  *mocks.MockWeatherFetcherInterface
	resolver *mocks.MockLocationResolverInterface
	metrics  *metrics.Metrics
}

func newServerHarness(t *testing.T, burst int) *serverHarness {
	t.Helper()

	ctrl := gomock.NewController(t)
	logger := helpers.NewSilentTestLogger()

	localizer := services.NewLocalizationService(logger, "ru-RU")
	require.NoError(t, localizer.LoadTranslations(locales.LocalesFS))

	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	m := metrics.New()

	limiter := middleware.NewClientRateLimiter(rate.Limit(1), burst)
	t.Cleanup(limiter.Stop)

	h := &serverHarness{
		fetcher:  mocks.NewMockWeatherFetcherInterface(ctrl),
		resolver: mocks.NewMockLocationResolverInterface(ctrl),
		metrics:  m,
	}
	w := widget.New(h.fetcher, h.resolver, localizer, m, logger)
	h.router = NewRouter(NewHandler(w, localizer, fakeStats{}, m, logger), limiter, logger)
	return h
}

func (h *serverHarness) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func londonView() *weather.View {
	return &weather.View{
		Area:    "London",
		Country: "United Kingdom",
		Current: weather.Conditions{TempC: "15", Humidity: "72", WindKmph: "11", IconURL: "https://cdn.example/a.png"},
		Forecast: []weather.ForecastDay{
			{Date: "2026-10-18", MaxTempC: "15", MinTempC: "5", Description: "Sunny"},
		},
	}
}

func TestIndex(t *testing.T) {
	h := newServerHarness(t, 5)

	t.Run("shows the consent prompt", func(t *testing.T) {
		w := h.do(httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `<html lang="ru-RU">`)
		assert.Contains(t, body, "Определить ваш город по IP-адресу?")
		assert.Contains(t, body, `placeholder="Введите город"`)
		assert.Contains(t, body, ">Узнать погоду</button>")
		assert.Contains(t, body, `data-state="idle"`)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("hides the prompt once answered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: consentCookie, Value: "no"})

		body := h.do(req).Body.String()

		assert.NotContains(t, body, "Определить ваш город по IP-адресу?")
	})

	t.Run("negotiates the language", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

		body := h.do(req).Body.String()

		assert.Contains(t, body, `<html lang="en-US">`)
		assert.Contains(t, body, ">Get weather</button>")
	})
}

func TestSubmitWeather(t *testing.T) {
	t.Run("renders the result", func(t *testing.T) {
		h := newServerHarness(t, 5)
		h.fetcher.EXPECT().FetchWeather(gomock.Any(), "London", "ru-RU").Return(londonView(), nil)

		w := h.do(postForm("/weather", url.Values{"city": {"London"}}))

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `data-state="success"`)
		assert.Contains(t, body, `value="London"`)
		assert.Contains(t, body, "<h2>London, United Kingdom</h2>")
		assert.Contains(t, body, `<img src="https://cdn.example/a.png" alt="icon">`)
		assert.Contains(t, body, "🌡 Макс: 15°C")
		assert.NotContains(t, body, " disabled>")
	})

	t.Run("invalid city is rejected without a lookup", func(t *testing.T) {
		h := newServerHarness(t, 5)
		h.fetcher.EXPECT().FetchWeather(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := h.do(postForm("/weather", url.Values{"city": {"<b>1</b>"}}))

		body := w.Body.String()
		assert.Contains(t, body, `data-state="error"`)
		assert.Contains(t, body, "Название города может содержать только буквы, пробелы и дефисы")
		assert.NotContains(t, body, "<b>1</b>")
		assert.NotContains(t, body, " disabled>")
	})

	t.Run("upstream failure", func(t *testing.T) {
		h := newServerHarness(t, 5)
		h.fetcher.EXPECT().FetchWeather(gomock.Any(), "London", "ru-RU").
			Return(nil, &services.WeatherError{Kind: services.WeatherErrNetwork, City: "London", Attempts: 3})

		body := h.do(postForm("/weather", url.Values{"city": {"London"}})).Body.String()

		assert.Contains(t, body, "Ошибка сети, проверьте подключение 🌐")
	})

	t.Run("rate limited", func(t *testing.T) {
		h := newServerHarness(t, 1)
		h.fetcher.EXPECT().FetchWeather(gomock.Any(), "London", "ru-RU").Return(londonView(), nil)

		require.Equal(t, http.StatusOK, h.do(postForm("/weather", url.Values{"city": {"London"}})).Code)
		w := h.do(postForm("/weather", url.Values{"city": {"London"}}))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "Слишком много запросов, попробуйте позже")
		assert.Equal(t, 1.0, h.metrics.GetCounterTotal(metrics.RateLimitedTotal, "surface", widget.SurfaceWeb))
	})
}

func TestAnswerLocation(t *testing.T) {
	t.Run("decline makes no calls and keeps the query", func(t *testing.T) {
		h := newServerHarness(t, 5)
		h.resolver.EXPECT().ResolveCityByIP(gomock.Any(), gomock.Any()).Times(0)
		h.fetcher.EXPECT().FetchWeather(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := h.do(postForm("/location", url.Values{"consent": {"no"}, "city": {"Tbilisi"}}))

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `value="Tbilisi"`)
		assert.Contains(t, body, `data-state="idle"`)
		assert.NotContains(t, body, "Определить ваш город по IP-адресу?")
		assert.Contains(t, w.Header().Get("Set-Cookie"), consentCookie+"=no")
	})

	t.Run("accept resolves the client and shows its weather", func(t *testing.T) {
		h := newServerHarness(t, 5)
		gomock.InOrder(
			h.resolver.EXPECT().ResolveCityByIP(gomock.Any(), "81.2.69.142").Return("London", nil),
			h.fetcher.EXPECT().FetchWeather(gomock.Any(), "London", "ru-RU").Return(londonView(), nil),
		)

		req := postForm("/location", url.Values{"consent": {"yes"}})
		req.RemoteAddr = "81.2.69.142:40000"
		body := h.do(req).Body.String()

		assert.Contains(t, body, `value="London"`)
		assert.Contains(t, body, "<h2>London, United Kingdom</h2>")
	})

	t.Run("unresolved city", func(t *testing.T) {
		h := newServerHarness(t, 5)
		h.resolver.EXPECT().ResolveCityByIP(gomock.Any(), gomock.Any()).
			Return("", &services.LocationError{Kind: services.LocationErrUnresolved})

		body := h.do(postForm("/location", url.Values{"consent": {"yes"}})).Body.String()

		assert.Contains(t, body, "Город по IP не определён")
	})
}

func TestAPIWeather(t *testing.T) {
	decode := func(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
		t.Helper()
		var resp apiResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	t.Run("success", func(t *testing.T) {
		h := newServerHarness(t, 5)
		h.fetcher.EXPECT().FetchWeather(gomock.Any(), "London", "ru-RU").Return(londonView(), nil)

		w := h.do(httptest.NewRequest(http.MethodGet, "/api/weather?city=London", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "success", resp.State)
		assert.Equal(t, "London", resp.Query)
		require.NotNil(t, resp.View)
		assert.Equal(t, "London", resp.View.Area)
		assert.Equal(t, 1.0, h.metrics.GetCounterTotal(metrics.WidgetRequestsTotal, "surface", SurfaceAPI))
	})

	t.Run("validation error", func(t *testing.T) {
		h := newServerHarness(t, 5)
		h.fetcher.EXPECT().FetchWeather(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := h.do(httptest.NewRequest(http.MethodGet, "/api/weather?city=", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "error", resp.State)
		assert.Equal(t, "Введите название города", resp.Message)
		assert.Nil(t, resp.View)
	})

	t.Run("upstream failure", func(t *testing.T) {
		h := newServerHarness(t, 5)
		h.fetcher.EXPECT().FetchWeather(gomock.Any(), "London", "en-US").
			Return(nil, &services.WeatherError{Kind: services.WeatherErrTimeout, City: "London"})

		req := httptest.NewRequest(http.MethodGet, "/api/weather?city=London", nil)
		req.Header.Set("Accept-Language", "en")
		w := h.do(req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "error", decode(t, w).State)
	})

	t.Run("rate limited", func(t *testing.T) {
		h := newServerHarness(t, 1)
		h.fetcher.EXPECT().FetchWeather(gomock.Any(), "Minsk", "ru-RU").Return(&weather.View{Area: "Minsk"}, nil)

		h.do(httptest.NewRequest(http.MethodGet, "/api/weather?city=Minsk", nil))
		w := h.do(httptest.NewRequest(http.MethodGet, "/api/weather?city=Minsk", nil))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "Слишком много запросов, попробуйте позже", resp.Message)
		assert.Equal(t, "Minsk", resp.Query)
	})
}

func TestAPIStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, apiStatus(nil))
	assert.Equal(t, http.StatusBadRequest, apiStatus(widget.ErrEmptyQuery))
	assert.Equal(t, http.StatusBadRequest, apiStatus(widget.ErrInvalidQuery))
	assert.Equal(t, http.StatusInternalServerError, apiStatus(widget.ErrInternal))
	assert.Equal(t, http.StatusBadGateway, apiStatus(&services.LocationError{Kind: services.LocationErrHTTP}))
}

func TestHealthAndMetrics(t *testing.T) {
	h := newServerHarness(t, 5)

	w := h.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status  string `json:"status"`
		Version struct {
			Version string `json:"version"`
		} `json:"version"`
		Stats services.SystemStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.NotEmpty(t, body.Version.Version)
	assert.Equal(t, 3.0, body.Stats.WidgetRequests)
	assert.True(t, body.Stats.CacheEnabled)

	m := h.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, m.Code)
}
