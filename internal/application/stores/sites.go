package stores

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/site"
)

// WebsiteSource lists the storefronts an admin token may manage
type WebsiteSource interface {
	ListWebsites(ctx context.Context, token string) ([]site.Website, error)
}

// TokenSource yields the bearer token to use for a call, or ""
type TokenSource interface {
	Token(ctx context.Context) string
}

// SiteSelector holds the manageable websites and the admin's current pick.
// Memory only. An empty selection means all sites.
type SiteSelector struct {
	mu       sync.RWMutex
	websites []site.Website
	selected string
	source   WebsiteSource
	tokens   TokenSource
	deps     Deps
}

// NewSiteSelector creates an empty selector. tokens may be nil.
func NewSiteSelector(source WebsiteSource, tokens TokenSource, deps Deps) *SiteSelector {
	return &SiteSelector{
		websites: []site.Website{},
		source:   source,
		tokens:   tokens,
		deps:     deps,
	}
}

// FetchWebsites reloads the list. On failure the previous list is kept.
func (s *SiteSelector) FetchWebsites(ctx context.Context) error {
	token := ""
	if s.tokens != nil {
		token = s.tokens.Token(ctx)
	}

	websites, err := s.source.ListWebsites(ctx, token)
	if err != nil {
		s.deps.Logger.Site().Warn("Website fetch failed, keeping previous list", "profileId", s.deps.ProfileID, "error", err)
		return fmt.Errorf("fetch websites: %w", err)
	}
	if websites == nil {
		websites = []site.Website{}
	}

	s.mu.Lock()
	s.websites = websites
	s.mu.Unlock()

	s.deps.Logger.Site().Debug("Websites loaded", "profileId", s.deps.ProfileID, "count", len(websites))
	return nil
}

// Websites returns a copy of the loaded list
func (s *SiteSelector) Websites() []site.Website {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]site.Website, len(s.websites))
	copy(out, s.websites)
	return out
}

// SelectedWebsiteID returns the current pick, "" for all sites
func (s *SiteSelector) SelectedWebsiteID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SetSelectedWebsiteID changes the pick; "" clears it
func (s *SiteSelector) SetSelectedWebsiteID(id string) {
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
	s.deps.Logger.Site().Debug("Website selected", "profileId", s.deps.ProfileID, "websiteId", id)
}

// Scope returns the query parameters admin calls attach for the current pick
func (s *SiteSelector) Scope() url.Values {
	q := url.Values{}
	if id := s.SelectedWebsiteID(); id != "" {
		q.Set("websiteId", id)
	}
	return q
}

// SiteState is the selector's memory, carried across a profile reload
type SiteState struct {
	Websites []site.Website
	Selected string
}

// Snapshot returns a copy of the list and pick
func (s *SiteSelector) Snapshot() SiteState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	websites := make([]site.Website, len(s.websites))
	copy(websites, s.websites)
	return SiteState{Websites: websites, Selected: s.selected}
}

// Restore replaces the list and pick with a snapshot
func (s *SiteSelector) Restore(state SiteState) {
	websites := state.Websites
	if websites == nil {
		websites = []site.Website{}
	}
	s.mu.Lock()
	s.websites = websites
	s.selected = state.Selected
	s.mu.Unlock()
}
