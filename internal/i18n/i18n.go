// Package i18n loads the UI message catalogs and hands out per-locale
// localizers. Indonesian is the default language, English the
// alternative.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const DefaultLocale = "id"

var supported = []string{"id", "en"}

// Supported reports whether locale names a shipped catalog.
func Supported(locale string) bool {
	for _, s := range supported {
		if s == locale {
			return true
		}
	}
	return false
}

type Catalog struct {
	bundle *goi18n.Bundle
}

func Load() (*Catalog, error) {
	bundle := goi18n.NewBundle(language.Indonesian)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, locale := range supported {
		name := fmt.Sprintf("locales/%s.json", locale)
		if _, err := bundle.LoadMessageFileFS(localeFS, name); err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
	}

	return &Catalog{bundle: bundle}, nil
}

func (c *Catalog) Localizer(locale string) *Localizer {
	if !Supported(locale) {
		locale = DefaultLocale
	}
	return &Localizer{
		inner:  goi18n.NewLocalizer(c.bundle, locale, DefaultLocale),
		locale: locale,
	}
}

type Localizer struct {
	inner  *goi18n.Localizer
	locale string
}

func (l *Localizer) Locale() string {
	return l.locale
}

// T resolves a message id, falling back to the id itself so a missing
// translation never blanks out the page.
func (l *Localizer) T(id string) string {
	msg, err := l.inner.Localize(&goi18n.LocalizeConfig{MessageID: id})
	if err != nil || msg == "" {
		return id
	}
	return msg
}

// Tf resolves a message id with template data.
func (l *Localizer) Tf(id string, data map[string]any) string {
	msg, err := l.inner.Localize(&goi18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil || msg == "" {
		return id
	}
	return msg
}
