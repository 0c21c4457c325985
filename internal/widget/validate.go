package widget

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmptyQuery   = errors.New("widget: empty city query")
	ErrInvalidQuery = errors.New("widget: city query contains unsupported characters")
)

// queryPattern admits Latin and Cyrillic letters, whitespace and hyphens.
var queryPattern = regexp.MustCompile(`^[A-Za-z\x{0400}-\x{04FF}\s-]+$`)

// ValidateQuery trims raw and checks it before any network call.
func ValidateQuery(raw string) (string, error) {
	city := strings.TrimSpace(raw)
	if city == "" {
		return "", ErrEmptyQuery
	}
	if !queryPattern.MatchString(city) {
		return "", ErrInvalidQuery
	}
	return city, nil
}
