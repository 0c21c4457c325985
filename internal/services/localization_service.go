package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/valpere/pogoda/internal"
)

// SupportedLanguage represents a supported language
type SupportedLanguage struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

type SupportedLanguages map[string]SupportedLanguage

type Translation map[string]string

type Translations map[string]Translation

// LocalizationService resolves user-facing widget texts. Russian is the
// default, as the widget's messages were originally written in it.
type LocalizationService struct {
	translations       Translations       // [language][key] = translation
	supportedLanguages SupportedLanguages // Supported languages
	defaultLanguage    string             // fallback language
	matcher            language.Matcher   // Accept-Language negotiation, rebuilt on load
	matcherCodes       []string
	logger             *zerolog.Logger
	mu                 sync.RWMutex
}

// NewLocalizationService creates a localization service. An empty
// defaultLanguage means internal.DefaultLanguage.
func NewLocalizationService(logger *zerolog.Logger, defaultLanguage string) *LocalizationService {
	if defaultLanguage == "" {
		defaultLanguage = internal.DefaultLanguage
	}
	return &LocalizationService{
		translations:    make(Translations),
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}
}

// LoadTranslations loads translation files from embedded filesystem
func (ls *LocalizationService) LoadTranslations(localesFS fs.FS) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	data, err := fs.ReadFile(localesFS, "languages.json")
	if err != nil {
		return err
	}

	supported := make(SupportedLanguages)
	if err := json.Unmarshal(data, &supported); err != nil {
		return err
	}
	ls.supportedLanguages = supported

	for code := range ls.supportedLanguages {
		filename := fmt.Sprintf("%s.json", code)

		data, err := fs.ReadFile(localesFS, filename)
		if err != nil {
			ls.logger.Error().
				Err(err).
				Str("language", code).
				Str("file", filename).
				Msg("Failed to read translation file")
			continue
		}

		translations := make(Translation)
		if err := json.Unmarshal(data, &translations); err != nil {
			ls.logger.Error().
				Err(err).
				Str("language", code).
				Msg("Failed to parse translation file")
			continue
		}

		ls.translations[code] = translations
		ls.logger.Info().
			Str("language", code).
			Int("keys", len(translations)).
			Msg("Loaded translations")
	}

	ls.buildMatcher()
	return nil
}

// buildMatcher must be called with mu held. The default language is listed
// first so it wins when nothing in the header matches.
func (ls *LocalizationService) buildMatcher() {
	codes := make([]string, 0, len(ls.translations))
	for code := range ls.translations {
		if code != ls.defaultLanguage {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	if _, ok := ls.translations[ls.defaultLanguage]; ok {
		codes = append([]string{ls.defaultLanguage}, codes...)
	}

	tags := make([]language.Tag, 0, len(codes))
	for _, code := range codes {
		tags = append(tags, language.Make(code))
	}

	ls.matcherCodes = codes
	if len(tags) > 0 {
		ls.matcher = language.NewMatcher(tags)
	} else {
		ls.matcher = nil
	}
}

// T translates a key to the specified language
func (ls *LocalizationService) T(ctx context.Context, language, key string, args ...any) string {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	// Try to get translation in requested language
	if langMap, exists := ls.translations[language]; exists {
		if translation, exists := langMap[key]; exists {
			if len(args) > 0 {
				return fmt.Sprintf(translation, args...)
			}
			return translation
		}
	}

	// Fall back to default language
	if langMap, exists := ls.translations[ls.defaultLanguage]; exists {
		if translation, exists := langMap[key]; exists {
			ls.logger.Debug().
				Str("key", key).
				Str("requested_lang", language).
				Str("fallback_lang", ls.defaultLanguage).
				Msg("Using fallback language for translation")

			if len(args) > 0 {
				return fmt.Sprintf(translation, args...)
			}
			return translation
		}
	}

	// If no translation found, return the key itself
	ls.logger.Warn().
		Str("key", key).
		Str("language", language).
		Msg("Translation key not found")

	return key
}

// MatchLanguage picks the best loaded language for an Accept-Language
// header value. Unparseable or unmatched headers yield the default.
func (ls *LocalizationService) MatchLanguage(acceptLanguage string) string {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	if ls.matcher == nil || acceptLanguage == "" {
		return ls.defaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return ls.defaultLanguage
	}

	_, index, confidence := ls.matcher.Match(tags...)
	if confidence == language.No {
		return ls.defaultLanguage
	}
	return ls.matcherCodes[index]
}

// DefaultLanguage returns the fallback language code.
func (ls *LocalizationService) DefaultLanguage() string {
	return ls.defaultLanguage
}

// IsLanguageSupported checks if a language code is supported
func (ls *LocalizationService) IsLanguageSupported(language string) bool {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	_, exists := ls.translations[language]
	return exists
}

// GetSupportedLanguages returns all supported languages
func (ls *LocalizationService) GetSupportedLanguages() SupportedLanguages {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	return ls.supportedLanguages
}

// GetLanguageByCode returns language info by code
func (ls *LocalizationService) GetLanguageByCode(code string) (SupportedLanguage, bool) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	if lang, exists := ls.supportedLanguages[code]; exists {
		return lang, exists
	}
	return ls.supportedLanguages[ls.defaultLanguage], false
}

// GetAvailableTranslationKeys returns all available translation keys for a language
func (ls *LocalizationService) GetAvailableTranslationKeys(language string) []string {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	langMap, exists := ls.translations[language]
	if !exists {
		return nil
	}

	keys := make([]string, 0, len(langMap))
	for key := range langMap {
		keys = append(keys, key)
	}

	return keys
}
