// Package fixtures holds canned upstream payloads for tests.
package fixtures

import (
	"encoding/json"
	"fmt"
)

// GetWttrResponse returns a trimmed but realistic wttr.in j1 payload for London
// with four forecast days and eight hourly samples per day.
func GetWttrResponse() string {
	days := make([]map[string]interface{}, 0, 4)
	for i, date := range []string{"2026-10-18", "2026-10-19", "2026-10-20", "2026-10-21"} {
		hourly := make([]map[string]interface{}, 0, 8)
		for h := 0; h < 8; h++ {
			hourly = append(hourly, map[string]interface{}{
				"time":           fmt.Sprintf("%d", h*300),
				"tempC":          fmt.Sprintf("%d", 10+h),
				"weatherDesc":    []map[string]string{{"value": fmt.Sprintf("Day %d hour %d", i, h)}},
				"weatherIconUrl": []map[string]string{{"value": fmt.Sprintf("//cdn.worldweatheronline.com/images/d%dh%d.png", i, h)}},
				"lang_ru":        []map[string]string{{"value": fmt.Sprintf("День %d час %d", i, h)}},
			})
		}
		days = append(days, map[string]interface{}{
			"date":     date,
			"maxtempC": fmt.Sprintf("%d", 15+i),
			"mintempC": fmt.Sprintf("%d", 5+i),
			"hourly":   hourly,
		})
	}

	payload := map[string]interface{}{
		"current_condition": []map[string]interface{}{
			{
				"temp_C":         "15",
				"humidity":       "72",
				"windspeedKmph":  "11",
				"weatherDesc":    []map[string]string{{"value": "Partly cloudy"}},
				"weatherIconUrl": []map[string]string{{"value": "//cdn.worldweatheronline.com/images/wsymbol_0002.png"}},
				"lang_ru":        []map[string]string{{"value": "Переменная облачность"}},
			},
		},
		"nearest_area": []map[string]interface{}{
			{
				"areaName": []map[string]string{{"value": "London"}},
				"region":   []map[string]string{{"value": "City of London, Greater London"}},
				"country":  []map[string]string{{"value": "United Kingdom"}},
			},
		},
		"weather": days,
	}

	data, _ := json.Marshal(payload)
	return string(data)
}

// GetAreaOnlyResponse returns a payload whose nearest_area has no region or country.
func GetAreaOnlyResponse() string {
	return `{
		"current_condition": [{"temp_C": "3", "weatherDesc": [{"value": "Snow"}]}],
		"nearest_area": [{"areaName": [{"value": "Tromso"}]}],
		"weather": []
	}`
}

// GetSparseResponse returns a payload where almost every optional field is missing.
func GetSparseResponse() string {
	return `{
		"current_condition": [{}],
		"weather": [
			{"date": "2026-10-18"},
			{"date": "2026-10-19", "hourly": [{"weatherDesc": [{"value": "Fog"}]}]}
		]
	}`
}

// GetNoCurrentResponse returns a payload with an empty current_condition array.
func GetNoCurrentResponse() string {
	return `{"current_condition": [], "nearest_area": [], "weather": []}`
}

// GetMissingStructureResponse returns a payload without current_condition or weather.
func GetMissingStructureResponse() string {
	return `{"nearest_area": [{"areaName": [{"value": "Nowhere"}]}]}`
}

// GetInvalidJSONResponse returns a body that is not JSON.
func GetInvalidJSONResponse() string {
	return `Unknown location; please try ~48.8566,2.3522`
}

// GetIPAPIResponse returns an ipapi.co payload for the given city.
func GetIPAPIResponse(city string) string {
	data, _ := json.Marshal(map[string]interface{}{
		"ip":           "81.2.69.142",
		"city":         city,
		"region":       "England",
		"country_name": "United Kingdom",
	})
	return string(data)
}

// GetIPAPIRateLimitedResponse returns the ipapi.co error body for HTTP 429.
func GetIPAPIRateLimitedResponse() string {
	return `{"error": true, "reason": "RateLimited", "message": "Visit https://ipapi.co/ratelimited/ for details"}`
}
