package weather

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Text is a scalar leaf of an untrusted payload. It accepts a JSON string,
// number or boolean and keeps its textual form; null and any other JSON
// value decode to the empty string.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
	case 't', 'f', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*t = Text(data)
	default:
		*t = ""
	}
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Value is the `{"value": "..."}` wrapper used throughout the j1 format.
// A bare scalar is taken as the value itself; anything else is empty.
type Value struct {
	Value Text `json:"value"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Value{}
	if firstByte(data) != '{' {
		return v.Value.UnmarshalJSON(data)
	}

	type plain Value
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	*v = Value(p)
	return nil
}

// Values is a list of wrapped values; only the first element matters.
// A single value outside an array is accepted; other shapes decode to nil.
type Values []Value

// UnmarshalJSON implements json.Unmarshaler.
func (v *Values) UnmarshalJSON(data []byte) error {
	switch firstByte(data) {
	case '[':
		*v = lenientArray[Value](data)
	case 'n', 0:
		*v = nil
	default:
		var single Value
		_ = single.UnmarshalJSON(data)
		if single.Value == "" {
			*v = nil
			return nil
		}
		*v = Values{single}
	}
	return nil
}

// First returns the first value or "".
func (v Values) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Value.String()
}

// Response is the wttr.in `?format=j1` payload. Every field may be absent.
type Response struct {
	CurrentCondition []Condition `json:"current_condition"`
	NearestArea      []Area      `json:"nearest_area"`
	Weather          []Day       `json:"weather"`
}

// HasStructure reports whether both the current_condition and weather
// arrays were present in the payload. An empty array counts as present.
func (r *Response) HasStructure() bool {
	return r != nil && r.CurrentCondition != nil && r.Weather != nil
}

// Area is a nearest_area entry.
type Area struct {
	AreaName Values `json:"areaName"`
	Region   Values `json:"region"`
	Country  Values `json:"country"`
}

// UnmarshalJSON implements json.Unmarshaler. A non-object entry is empty.
func (a *Area) UnmarshalJSON(data []byte) error {
	type plain Area
	var p plain
	decodeObject(data, &p)
	*a = Area(p)
	return nil
}

// Condition is used both for current_condition and for hourly samples.
type Condition struct {
	TempC          Text   `json:"temp_C"`
	Humidity       Text   `json:"humidity"`
	WindspeedKmph  Text   `json:"windspeedKmph"`
	WeatherDesc    Values `json:"weatherDesc"`
	WeatherIconURL Values `json:"weatherIconUrl"`

	// Localized descriptions keyed by language code ("ru" for "lang_ru").
	Localized map[string]Values `json:"-"`
}

// UnmarshalJSON decodes the known fields and collects every lang_xx array.
// A non-object entry is an empty sample.
func (c *Condition) UnmarshalJSON(data []byte) error {
	type plain Condition
	var p plain
	if !decodeObject(data, &p) {
		*c = Condition{}
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		*c = Condition(p)
		return nil
	}
	for key, raw := range fields {
		code, ok := strings.CutPrefix(key, "lang_")
		if !ok || code == "" {
			continue
		}
		var values Values
		if err := json.Unmarshal(raw, &values); err != nil {
			continue
		}
		if p.Localized == nil {
			p.Localized = make(map[string]Values)
		}
		p.Localized[code] = values
	}

	*c = Condition(p)
	return nil
}

// Description returns the description in lang when available, else the default one.
func (c Condition) Description(lang string) string {
	if lang != "" {
		if desc := c.Localized[lang].First(); desc != "" {
			return desc
		}
	}
	return c.WeatherDesc.First()
}

// Day is a weather[] entry.
type Day struct {
	Date     Text  `json:"date"`
	MaxtempC Text  `json:"maxtempC"`
	MintempC Text  `json:"mintempC"`
	Hourly   Hours `json:"hourly"`
}

// UnmarshalJSON implements json.Unmarshaler. A non-object entry is empty.
func (d *Day) UnmarshalJSON(data []byte) error {
	type plain Day
	var p plain
	decodeObject(data, &p)
	*d = Day(p)
	return nil
}

// Hours is the hourly sample list of a day; a non-array value decodes to nil.
type Hours []Condition

// UnmarshalJSON implements json.Unmarshaler.
func (h *Hours) UnmarshalJSON(data []byte) error {
	*h = lenientArray[Condition](data)
	return nil
}

// lenientArray decodes the elements of a JSON array one by one and drops
// those that fail. Anything but an array yields nil.
func lenientArray[T any](data []byte) []T {
	if firstByte(data) != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// decodeObject fills dst from a JSON object and reports whether data was one.
// Fields that fail to decode are left at their zero value by their own
// unmarshalers.
func decodeObject(data []byte, dst any) bool {
	if firstByte(data) != '{' {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func firstByte(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

// Decode parses a j1 payload.
func Decode(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
