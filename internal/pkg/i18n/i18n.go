// Package i18n renders user-facing chat and notification text from embedded
// message catalogues.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	mu            sync.RWMutex
	bundle        *i18n.Bundle
	defaultLocale = "en"
	initOnce      sync.Once
)

type ctxKey struct{}

// Init loads all locale files and sets the default locale.
func Init(defLocale string) error {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("i18n: read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
			return fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
	}

	mu.Lock()
	bundle = b
	if defLocale != "" {
		defaultLocale = defLocale
	}
	mu.Unlock()

	slog.Info("i18n loaded", "locale_files", len(entries), "default", defLocale)
	return nil
}

func current() (*i18n.Bundle, string) {
	initOnce.Do(func() {
		mu.RLock()
		ready := bundle != nil
		mu.RUnlock()
		if !ready {
			if err := Init(""); err != nil {
				slog.Error("failed to load default locales", "error", err)
			}
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return bundle, defaultLocale
}

// WithLocale returns a new context carrying the given locale (e.g. "id", "en").
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, locale)
}

// LocaleFromContext returns the locale set by WithLocale, or the default.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	_, def := current()
	return def
}

// T translates messageID using the locale from the context. Unknown IDs are
// returned unchanged.
func T(ctx context.Context, messageID string, templateData ...map[string]any) string {
	b, _ := current()
	if b == nil {
		return messageID
	}
	l := i18n.NewLocalizer(b, LocaleFromContext(ctx))

	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(templateData) > 0 && templateData[0] != nil {
		cfg.TemplateData = templateData[0]
	}

	msg, err := l.Localize(cfg)
	if err != nil {
		return messageID
	}
	return msg
}
