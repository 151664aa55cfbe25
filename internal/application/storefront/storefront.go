// Package storefront builds and tracks one bundle of stores per browser
// profile, all sharing a single persistent backend.
package storefront

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/stores"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
)

// ProfilePrefix is the backend namespace of a profile's keys
func ProfilePrefix(profileID string) string {
	return "profile:" + profileID + ":"
}

// Storefront is the state of one browser profile
type Storefront struct {
	ProfileID string
	Store     kv.Store
	Cart      *stores.CartStore
	Wishlist  *stores.WishlistStore
	Customer  *stores.SessionStore
	Admin     *stores.SessionStore
	Sites     *stores.SiteSelector

	mu           sync.Mutex
	createdAt    time.Time
	lastAccessed time.Time

	// pins counts requests holding the bundle; pinned bundles are never evicted
	pins atomic.Int32
}

func newStorefront(ctx context.Context, profileID string, store kv.Store, websites stores.WebsiteSource, deps stores.Deps) *Storefront {
	now := time.Now().UTC()
	admin := stores.NewSessionStore(ctx, stores.AdminNamespace, deps)
	return &Storefront{
		ProfileID:    profileID,
		Store:        store,
		Cart:         stores.NewCartStore(ctx, deps),
		Wishlist:     stores.NewWishlistStore(ctx, deps),
		Customer:     stores.NewSessionStore(ctx, stores.CustomerNamespace, deps),
		Admin:        admin,
		Sites:        stores.NewSiteSelector(websites, admin, deps),
		createdAt:    now,
		lastAccessed: now,
	}
}

func (s *Storefront) touch(now time.Time) {
	s.mu.Lock()
	s.lastAccessed = now
	s.mu.Unlock()
}

// Pinned reports whether a request currently holds the bundle
func (s *Storefront) Pinned() bool {
	return s.pins.Load() > 0
}

// LastAccessed returns when the profile was last used
func (s *Storefront) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessed
}

// ProfileInfo summarizes a loaded profile
type ProfileInfo struct {
	ProfileID     string    `json:"profileId"`
	CreatedAt     time.Time `json:"createdAt"`
	LastAccessed  time.Time `json:"lastAccessed"`
	CartCount     int       `json:"cartCount"`
	WishlistCount int       `json:"wishlistCount"`
}

// Info returns a summary without touching the profile
func (s *Storefront) Info() ProfileInfo {
	s.mu.Lock()
	created, last := s.createdAt, s.lastAccessed
	s.mu.Unlock()
	return ProfileInfo{
		ProfileID:     s.ProfileID,
		CreatedAt:     created,
		LastAccessed:  last,
		CartCount:     s.Cart.Count(),
		WishlistCount: len(s.Wishlist.Items()),
	}
}
