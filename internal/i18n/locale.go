package i18n

import (
	"context"
	"sync"

	"storefront/internal/util"

	"go.uber.org/zap"
)

// PreferenceStore persists the selected language of a visitor
type PreferenceStore interface {
	LoadLanguage(ctx context.Context) (string, error)
	SaveLanguage(ctx context.Context, lang string) error
}

// Locale holds the current language and notifies listeners on change
type Locale struct {
	mu        sync.RWMutex
	lang      Language
	prefs     PreferenceStore
	listeners []func(Language)
	logger    *zap.Logger
}

// NewLocale creates a locale set to the default language
func NewLocale(prefs PreferenceStore) *Locale {
	return &Locale{
		lang:   DefaultLanguage,
		prefs:  prefs,
		logger: util.GetLogger(),
	}
}

// Load restores the stored preference, keeping the default when none is stored
func (l *Locale) Load(ctx context.Context) Language {
	lang := DefaultLanguage

	stored, err := l.prefs.LoadLanguage(ctx)
	if err != nil {
		l.logger.Warn("Failed to load language preference", zap.Error(err))
	} else if parsed, ok := ParseLanguage(stored); ok {
		lang = parsed
	}

	l.mu.Lock()
	l.lang = lang
	l.mu.Unlock()
	return lang
}

// Language returns the current language
func (l *Locale) Language() Language {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lang
}

// Direction returns the text direction of the current language
func (l *Locale) Direction() Direction {
	return l.Language().Direction()
}

// Text picks the current variant of t
func (l *Locale) Text(t Text) string {
	return t.In(l.Language())
}

// Set changes the language, stores the preference and notifies listeners
func (l *Locale) Set(ctx context.Context, lang Language) {
	l.mu.Lock()
	l.lang = lang
	listeners := append([]func(Language){}, l.listeners...)
	l.mu.Unlock()

	if err := l.prefs.SaveLanguage(ctx, string(lang)); err != nil {
		l.logger.Error("Failed to save language preference",
			zap.String("language", string(lang)),
			zap.Error(err))
	}

	for _, fn := range listeners {
		fn(lang)
	}
}

// Toggle flips between Arabic and English
func (l *Locale) Toggle(ctx context.Context) Language {
	next := l.Language().Toggle()
	l.Set(ctx, next)
	return next
}

// OnChange registers a listener called after every language change
func (l *Locale) OnChange(fn func(Language)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}
