package app

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/valpere/pogoda/internal/interfaces"
	"github.com/valpere/pogoda/internal/middleware"
	"github.com/valpere/pogoda/internal/presenter"
	"github.com/valpere/pogoda/internal/services"
	"github.com/valpere/pogoda/internal/version"
	"github.com/valpere/pogoda/internal/widget"
	"github.com/valpere/pogoda/pkg/metrics"
	"github.com/valpere/pogoda/pkg/weather"
)

// SurfaceAPI labels metrics and logs produced by the JSON endpoint.
const SurfaceAPI = "api"

// consentCookie remembers that the geolocation prompt was answered.
const consentCookie = "pogoda_consent"

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// StatsProvider reports the numbers shown by /health.
type StatsProvider interface {
	Stats() services.SystemStats
}

// Handler serves the widget page, the JSON API and the operational endpoints.
type Handler struct {
	widget    *widget.Widget
	api       *widget.Widget
	localizer interfaces.LocalizationServiceInterface
	stats     StatsProvider
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
}

func NewHandler(
	w *widget.Widget,
	localizer interfaces.LocalizationServiceInterface,
	stats StatsProvider,
	metricsCollector *metrics.Metrics,
	logger *zerolog.Logger,
) *Handler {
	return &Handler{
		widget:    w,
		api:       w.ForSurface(SurfaceAPI),
		localizer: localizer,
		stats:     stats,
		metrics:   metricsCollector,
		logger:    logger,
	}
}

// pageData is the model for page.html.
type pageData struct {
	Lang            string
	Title           string
	Placeholder     string
	ConsentQuestion string
	ConsentYes      string
	ConsentNo       string
	ShowConsent     bool
	Page            presenter.Page
}

// apiResponse is the body of GET /api/weather.
type apiResponse struct {
	State   string        `json:"state"`
	Message string        `json:"message,omitempty"`
	Query   string        `json:"query"`
	View    *weather.View `json:"view,omitempty"`
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler, limiter *middleware.ClientRateLimiter, logger *zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logging(logger))
	router.SetHTMLTemplate(pageTemplate)

	limitPage := middleware.RateLimit(limiter, h.metrics, widget.SurfaceWeb, h.pageRateLimited)
	limitAPI := middleware.RateLimit(limiter, h.metrics, SurfaceAPI, h.apiRateLimited)

	router.GET("/", h.Index)
	router.POST("/weather", limitPage, h.SubmitWeather)
	router.POST("/location", limitPage, h.AnswerLocation)
	router.GET("/api/weather", limitAPI, h.APIWeather)

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	return router
}

func (h *Handler) language(c *gin.Context) string {
	return h.localizer.MatchLanguage(c.GetHeader("Accept-Language"))
}

func (h *Handler) newSink(ctx context.Context, lang string) *presenter.HTMLSink {
	return presenter.NewHTMLSink(h.widget.Labels(ctx, lang), h.logger)
}

// Index renders the empty widget, with the consent prompt until it was answered.
func (h *Handler) Index(c *gin.Context) {
	lang := h.language(c)
	sink := h.newSink(c.Request.Context(), lang)
	h.renderPage(c, http.StatusOK, lang, sink)
}

// SubmitWeather handles the city form.
func (h *Handler) SubmitWeather(c *gin.Context) {
	ctx := c.Request.Context()
	lang := h.language(c)
	city := c.PostForm("city")

	sink := h.newSink(ctx, lang)
	sink.SetQuery(city)
	_ = h.widget.Submit(ctx, sink, city, lang)

	h.renderPage(c, http.StatusOK, lang, sink)
}

// AnswerLocation handles the geolocation consent form. Declining leaves the
// page as it was.
func (h *Handler) AnswerLocation(c *gin.Context) {
	ctx := c.Request.Context()
	lang := h.language(c)
	accepted := c.PostForm("consent") == "yes"

	sink := h.newSink(ctx, lang)
	sink.SetQuery(c.PostForm("city"))
	_ = h.widget.AnswerConsent(ctx, sink, accepted, c.ClientIP(), lang)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(consentCookie, c.PostForm("consent"), int((365 * 24 * time.Hour).Seconds()), "/", "", false, true)
	h.renderPage(c, http.StatusOK, lang, sink)
}

// APIWeather runs the cycle for ?city= and answers with JSON: 200 with the
// view, 400 for a rejected query, 500 for an internal failure, 502 for any
// upstream failure.
func (h *Handler) APIWeather(c *gin.Context) {
	ctx := c.Request.Context()
	lang := h.language(c)
	city := c.Query("city")

	rec := presenter.NewRecorder(h.localizer.T(ctx, lang, "submit_label"))
	rec.SetQuery(city)
	err := h.api.Submit(ctx, rec, city, lang)

	c.JSON(apiStatus(err), apiResponse{
		State:   rec.State.State.String(),
		Message: rec.State.Message,
		Query:   rec.Query,
		View:    rec.State.View,
	})
}

func apiStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, widget.ErrEmptyQuery), errors.Is(err, widget.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, widget.ErrInternal):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// Health reports liveness, version and the service counters.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": version.GetInfo(),
		"time":    time.Now().Unix(),
		"stats":   h.stats.Stats(),
	})
}

func (h *Handler) pageRateLimited(c *gin.Context) {
	lang := h.language(c)
	sink := h.newSink(c.Request.Context(), lang)
	sink.SetQuery(c.PostForm("city"))
	sink.ShowError(h.localizer.T(c.Request.Context(), lang, "error_rate_limited"))
	h.renderPage(c, http.StatusTooManyRequests, lang, sink)
}

func (h *Handler) apiRateLimited(c *gin.Context) {
	lang := h.language(c)
	c.JSON(http.StatusTooManyRequests, apiResponse{
		State:   presenter.StateError.String(),
		Message: h.localizer.T(c.Request.Context(), lang, "error_rate_limited"),
		Query:   c.Query("city"),
	})
}

func (h *Handler) renderPage(c *gin.Context, status int, lang string, sink *presenter.HTMLSink) {
	ctx := c.Request.Context()
	_, err := c.Cookie(consentCookie)
	answered := err == nil || c.Request.Method == http.MethodPost && c.FullPath() == "/location"

	c.HTML(status, "page.html", pageData{
		Lang:            lang,
		Title:           h.localizer.T(ctx, lang, "page_title"),
		Placeholder:     h.localizer.T(ctx, lang, "city_placeholder"),
		ConsentQuestion: h.localizer.T(ctx, lang, "consent_question"),
		ConsentYes:      h.localizer.T(ctx, lang, "consent_yes"),
		ConsentNo:       h.localizer.T(ctx, lang, "consent_no"),
		ShowConsent:     !answered,
		Page:            sink.Page(),
	})
}
