package weather

import (
	"errors"
	"strings"
)

// ForecastDays is the maximum number of forecast entries in a View.
const ForecastDays = 3

// representativeHour is the hourly sample used for a forecast day (midday in
// the 3-hourly j1 series).
const representativeHour = 4

// ErrNoCurrent is returned by BuildView when current_condition[0] is missing.
var ErrNoCurrent = errors.New("no current conditions in response")

// View is the render-ready weather model. Empty strings mean "no data".
type View struct {
	Area        string        `json:"area"`
	Region      string        `json:"region,omitempty"`
	Country     string        `json:"country,omitempty"`
	Approximate bool          `json:"approximate,omitempty"`
	Current     Conditions    `json:"current"`
	Forecast    []ForecastDay `json:"forecast"`
}

// Conditions is the current weather block.
type Conditions struct {
	Description string `json:"description"`
	TempC       string `json:"temp_c"`
	Humidity    string `json:"humidity"`
	WindKmph    string `json:"wind_kmph"`
	IconURL     string `json:"icon_url,omitempty"`
}

// ForecastDay is one day of the short forecast.
type ForecastDay struct {
	Date        string `json:"date"`
	MaxTempC    string `json:"max_temp_c"`
	MinTempC    string `json:"min_temp_c"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url,omitempty"`
}

// Header joins area, region and country, skipping empty parts.
func (v *View) Header() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{v.Area, v.Region, v.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type viewOptions struct {
	language string
}

// ViewOption configures BuildView.
type ViewOption func(*viewOptions)

// WithLanguage prefers lang_<code> descriptions when the payload has them.
func WithLanguage(code string) ViewOption {
	return func(o *viewOptions) {
		o.language = LanguageCode(code)
	}
}

// LanguageCode reduces an IETF tag such as "ru-RU" to the two-letter code wttr.in uses.
func LanguageCode(tag string) string {
	code, _, _ := strings.Cut(strings.TrimSpace(tag), "-")
	return strings.ToLower(code)
}

// BuildView normalizes a raw payload. Each field falls back independently;
// only a missing current_condition[0] is an error.
func BuildView(raw *Response, fallbackCity string, opts ...ViewOption) (*View, error) {
	if raw == nil || len(raw.CurrentCondition) == 0 {
		return nil, ErrNoCurrent
	}

	var o viewOptions
	for _, opt := range opts {
		opt(&o)
	}

	var area Area
	if len(raw.NearestArea) > 0 {
		area = raw.NearestArea[0]
	}

	view := &View{
		Area:    area.AreaName.First(),
		Region:  area.Region.First(),
		Country: area.Country.First(),
		Current: currentConditions(raw.CurrentCondition[0], o.language),
	}
	if view.Area == "" {
		view.Area = strings.TrimSpace(fallbackCity)
	}

	days := raw.Weather
	if len(days) > ForecastDays {
		days = days[:ForecastDays]
	}
	view.Forecast = make([]ForecastDay, 0, len(days))
	for _, day := range days {
		view.Forecast = append(view.Forecast, forecastDay(day, o.language))
	}

	return view, nil
}

func currentConditions(c Condition, lang string) Conditions {
	return Conditions{
		Description: c.Description(lang),
		TempC:       c.TempC.String(),
		Humidity:    c.Humidity.String(),
		WindKmph:    c.WindspeedKmph.String(),
		IconURL:     FixIconURL(c.WeatherIconURL.First()),
	}
}

func forecastDay(d Day, lang string) ForecastDay {
	hour := RepresentativeHour(d.Hourly)
	return ForecastDay{
		Date:        d.Date.String(),
		MaxTempC:    d.MaxtempC.String(),
		MinTempC:    d.MintempC.String(),
		Description: hour.Description(lang),
		IconURL:     FixIconURL(hour.WeatherIconURL.First()),
	}
}

// RepresentativeHour picks hourly[4], else hourly[0], else an empty sample.
func RepresentativeHour(hourly []Condition) Condition {
	switch {
	case len(hourly) > representativeHour:
		return hourly[representativeHour]
	case len(hourly) > 0:
		return hourly[0]
	default:
		return Condition{}
	}
}

// FixIconURL makes an icon reference absolute. Protocol-relative and
// scheme-less values get https; an empty value stays empty.
func FixIconURL(raw string) string {
	u := strings.TrimSpace(raw)
	switch {
	case u == "":
		return ""
	case strings.HasPrefix(u, "https://"), strings.HasPrefix(u, "http://"):
		return u
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	default:
		return "https://" + strings.TrimLeft(u, "/")
	}
}
