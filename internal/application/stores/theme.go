package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/site"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/api"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/templates"
)

// SettingsSource fetches tenant settings
type SettingsSource interface {
	GetSettings(ctx context.Context) (api.Settings, error)
}

// ThemeStore holds the tenant's brand settings and mirrors them onto the
// root Document. Nothing is persisted; the network is the only source.
type ThemeStore struct {
	mu     sync.RWMutex
	theme  site.ThemeSettings
	source SettingsSource
	doc    *templates.Document
	logger *logging.ChanneledLogger
}

// NewThemeStore starts from the defaults and applies them to doc
func NewThemeStore(source SettingsSource, doc *templates.Document, logger *logging.ChanneledLogger) *ThemeStore {
	t := &ThemeStore{
		theme:  site.DefaultTheme(),
		source: source,
		doc:    doc,
		logger: logger,
	}
	t.apply(t.theme)
	return t
}

func (t *ThemeStore) apply(theme site.ThemeSettings) {
	if err := t.doc.SetProperty("--primary-color", theme.PrimaryColor); err != nil {
		t.logger.Theme().Warn("Primary color rejected", "error", err)
	}
	t.doc.SetClassToken(templates.GroupFont, theme.PrimaryFont)
}

// FetchTheme replaces the theme with the remote settings and applies it.
// On failure the previous theme is kept and the error returned.
func (t *ThemeStore) FetchTheme(ctx context.Context) error {
	settings, err := t.source.GetSettings(ctx)
	if err != nil {
		t.logger.Theme().Warn("Theme fetch failed, keeping previous theme", "error", err)
		return fmt.Errorf("fetch theme: %w", err)
	}

	theme := settings.Theme().Normalized()

	t.mu.Lock()
	t.theme = theme
	t.apply(theme)
	t.mu.Unlock()

	t.logger.Theme().Info("Theme applied", "primaryColor", theme.PrimaryColor, "primaryFont", theme.PrimaryFont)
	return nil
}

// Theme returns the current settings
func (t *ThemeStore) Theme() site.ThemeSettings {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.theme
}

// Document returns the presentation scope the theme is applied to
func (t *ThemeStore) Document() *templates.Document { return t.doc }
