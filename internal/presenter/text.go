package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/valpere/pogoda/pkg/weather"
)

// FormatText renders a view as plain text. Image references are omitted.
func FormatText(view *weather.View, labels Labels) string {
	var b strings.Builder

	b.WriteString(view.Header())
	b.WriteString("\n")
	if view.Approximate {
		fmt.Fprintf(&b, "(%s)\n", labels.Approximate)
	}

	fmt.Fprintf(&b, "%s\n", labels.Value(view.Current.Description))
	fmt.Fprintf(&b, "🌡 %s\n", labels.WithUnit(view.Current.TempC, "°C"))
	fmt.Fprintf(&b, "💧 %s\n", labels.WithUnit(view.Current.Humidity, "%"))
	fmt.Fprintf(&b, "💨 %s\n", labels.WithUnit(view.Current.WindKmph, " "+labels.WindUnit))

	if len(view.Forecast) > 0 {
		fmt.Fprintf(&b, "\n%s\n", labels.ForecastTitle)
		for _, day := range view.Forecast {
			fmt.Fprintf(&b, "%s: %s, %s: %s, %s: %s\n",
				labels.Value(day.Date),
				labels.Value(day.Description),
				labels.Max, labels.WithUnit(day.MaxTempC, "°C"),
				labels.Min, labels.WithUnit(day.MinTempC, "°C"),
			)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// TextSink writes each state change as a line of text, for terminals.
type TextSink struct {
	out    io.Writer
	labels Labels
	logger *zerolog.Logger
	state  RequestState
	query  string
}

func NewTextSink(out io.Writer, labels Labels, logger *zerolog.Logger) *TextSink {
	return &TextSink{
		out:    out,
		labels: labels,
		logger: logger,
		state:  Idle(),
	}
}

func (s *TextSink) ShowLoading(message string) {
	s.state = Loading(message)
	s.write(message)
}

func (s *TextSink) ShowError(message string) {
	s.state = Failure(message)
	s.write(message)
}

func (s *TextSink) ShowWeather(view *weather.View) {
	text, err := s.format(view)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Failed to format weather view")
		s.ShowError(s.labels.GenericError)
		return
	}
	s.state = Success(view)
	s.write(text)
}

func (s *TextSink) ResetSubmitControl() {}

func (s *TextSink) SetQuery(city string) {
	s.query = city
}

// State returns the current request state.
func (s *TextSink) State() RequestState {
	return s.state
}

// Query returns the last query set on the sink.
func (s *TextSink) Query() string {
	return s.query
}

func (s *TextSink) format(view *weather.View) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("format: panic: %v", r)
		}
	}()
	if view == nil {
		return "", fmt.Errorf("format: nil view")
	}
	return FormatText(view, s.labels), nil
}

func (s *TextSink) write(line string) {
	if _, err := fmt.Fprintln(s.out, line); err != nil {
		s.logger.Warn().
			Err(err).
			Msg("Failed to write output")
	}
}
