// Package internal holds application-wide constants.
package internal

const (
	// AppName is the human-readable application name.
	AppName = "Pogoda"

	// DefaultLanguage is the fallback language for translations and wttr.in descriptions.
	DefaultLanguage = "ru-RU"

	// DefaultUserAgent is sent to upstream APIs when none is configured.
	DefaultUserAgent = "Pogoda-Weather-Widget/1.0 (+https://github.com/valpere/pogoda)"
)
