package services

import (
	"context"
	"fmt"

	"github.com/AtRiskMedia/storefront-go/internal/application/storefront"
	"github.com/AtRiskMedia/storefront-go/internal/application/stores"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/api"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
)

// SettingsService saves tenant settings and propagates the brand theme
type SettingsService struct {
	remote      RemoteAPI
	theme       *stores.ThemeStore
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSettingsService creates a new settings service
func NewSettingsService(remote RemoteAPI, theme *stores.ThemeStore, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SettingsService {
	return &SettingsService{remote: remote, theme: theme, logger: logger, perfTracker: perfTracker}
}

// SaveSettings posts settings with the profile's admin token, then refetches
// the theme so the change shows without a restart. A failed refetch is logged
// and does not undo the save.
func (s *SettingsService) SaveSettings(ctx context.Context, sf *storefront.Storefront, settings api.Settings) (api.Settings, error) {
	marker := s.perfTracker.StartOperation("settings:save", sf.ProfileID)
	defer marker.Complete()

	token := sf.Admin.Token(ctx)
	if token == "" {
		marker.SetError(ErrNotAuthenticated)
		return nil, ErrNotAuthenticated
	}

	saved, err := s.remote.UpdateSettings(ctx, token, settings)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("save settings: %w", err)
	}

	if err := s.theme.FetchTheme(ctx); err != nil {
		s.logger.Theme().Warn("Settings saved but theme refresh failed", "profileId", sf.ProfileID, "error", err)
	}

	marker.SetSuccess(true)
	return saved, nil
}

// Settings fetches the current tenant settings
func (s *SettingsService) Settings(ctx context.Context) (api.Settings, error) {
	return s.remote.GetSettings(ctx)
}
