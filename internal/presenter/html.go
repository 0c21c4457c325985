package presenter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"

	"github.com/valpere/pogoda/pkg/weather"
)

//go:embed templates/*.html
var templatesFS embed.FS

var resultTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// HTMLSink renders into a page model for one HTTP request.
type HTMLSink struct {
	labels         Labels
	logger         *zerolog.Logger
	state          RequestState
	query          string
	submitDisabled bool
	submitLabel    string
	result         template.HTML
	resets         int
}

// Page is the data handed to the page template.
type Page struct {
	Query          string
	SubmitLabel    string
	SubmitDisabled bool
	State          string
	Result         template.HTML
}

func NewHTMLSink(labels Labels, logger *zerolog.Logger) *HTMLSink {
	return &HTMLSink{
		labels:      labels,
		logger:      logger,
		state:       Idle(),
		submitLabel: labels.SubmitLabel,
	}
}

func (s *HTMLSink) ShowLoading(message string) {
	s.submitDisabled = true
	s.submitLabel = message
	s.state = Loading(message)
	s.result = s.renderOrFallback("loading", message)
}

func (s *HTMLSink) ShowError(message string) {
	s.restoreSubmit()
	s.state = Failure(message)
	s.result = s.renderOrFallback("error", message)
}

func (s *HTMLSink) ShowWeather(view *weather.View) {
	s.restoreSubmit()

	out, err := s.render("weather", struct {
		Labels Labels
		View   *weather.View
	}{s.labels, view})
	if err != nil || view == nil {
		s.logger.Error().
			Err(err).
			Msg("Failed to render weather view")
		s.ShowError(s.labels.GenericError)
		return
	}

	s.state = Success(view)
	s.result = out
}

func (s *HTMLSink) ResetSubmitControl() {
	s.restoreSubmit()
	s.resets++
}

func (s *HTMLSink) SetQuery(city string) {
	s.query = city
}

// State returns the current request state.
func (s *HTMLSink) State() RequestState {
	return s.state
}

// Resets returns how many times ResetSubmitControl was called.
func (s *HTMLSink) Resets() int {
	return s.resets
}

// Page returns the model for the page template.
func (s *HTMLSink) Page() Page {
	return Page{
		Query:          s.query,
		SubmitLabel:    s.submitLabel,
		SubmitDisabled: s.submitDisabled,
		State:          s.state.State.String(),
		Result:         s.result,
	}
}

func (s *HTMLSink) restoreSubmit() {
	s.submitDisabled = false
	s.submitLabel = s.labels.SubmitLabel
}

func (s *HTMLSink) renderOrFallback(name, message string) template.HTML {
	out, err := s.render(name, message)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("template", name).
			Msg("Failed to render fragment")
		return template.HTML(template.HTMLEscapeString(message))
	}
	return out
}

// render executes a fragment and converts panics into errors.
func (s *HTMLSink) render(name string, data any) (out template.HTML, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render %s: panic: %v", name, r)
		}
	}()

	var buf bytes.Buffer
	if err := resultTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil // #nosec G203 -- produced by html/template
}
