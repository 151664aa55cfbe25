package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/stores"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/site"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noWebsites struct{}

func (noWebsites) ListWebsites(context.Context, string) ([]site.Website, error) {
	return []site.Website{}, nil
}

func newTestManager(t *testing.T, backend kv.Store, cfg Config) *Manager {
	t.Helper()
	sealer, err := security.NewSealer("test-secret")
	require.NoError(t, err)
	logger := logging.NewDiscardLogger()
	return NewManager(backend, sealer, messaging.NewEventBroadcaster(logger, 8), noWebsites{}, cfg,
		logger, performance.NewTracker(nil))
}

func TestManagerReturnsSameBundle(t *testing.T) {
	m := newTestManager(t, kv.NewMemoryStore(), Config{})
	ctx := context.Background()

	a, err := m.Get(ctx, "p1")
	require.NoError(t, err)
	b, err := m.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, m.Count())

	_, err = m.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestProfilesAreIsolated(t *testing.T) {
	backend := kv.NewMemoryStore()
	m := newTestManager(t, backend, Config{})
	ctx := context.Background()

	a, err := m.Get(ctx, "a")
	require.NoError(t, err)
	b, err := m.Get(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, a.Cart.AddToCart(ctx, catalog.ProductRef{ID: "p1", Price: 3}, 1))
	assert.Equal(t, 0, b.Cart.Count())
	assert.Equal(t, []string{"profile:a:cart"}, backend.Keys("profile:"))
}

func TestEvictedProfileRebuildsFromStorage(t *testing.T) {
	backend := kv.NewMemoryStore()
	m := newTestManager(t, backend, Config{})
	ctx := context.Background()

	sf, err := m.Get(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, sf.Cart.AddToCart(ctx, catalog.ProductRef{ID: "x", Price: 2}, 2))
	require.NoError(t, sf.Admin.Login(ctx, session.UserRef{"id": "a1"}, "admin-tok"))

	raw, err := backend.Get(ctx, "profile:p1:adminToken")
	require.NoError(t, err)
	assert.NotContains(t, raw, "admin-tok")

	assert.True(t, m.Evict("p1"))
	assert.False(t, m.Evict("p1"))

	rebuilt, err := m.Get(ctx, "p1")
	require.NoError(t, err)
	assert.NotSame(t, sf, rebuilt)
	assert.Equal(t, 4.0, rebuilt.Cart.CartTotal())
	assert.Equal(t, "admin-tok", rebuilt.Admin.Token(ctx))
}

func TestEvictIdle(t *testing.T) {
	m := newTestManager(t, kv.NewMemoryStore(), Config{IdleTimeout: time.Minute})
	ctx := context.Background()
	now := time.Now()
	m.now = func() time.Time { return now }

	_, err := m.Get(ctx, "old")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = m.Get(ctx, "fresh")
	require.NoError(t, err)

	worker := NewCleanupWorker(m, time.Hour, logging.NewDiscardLogger())
	assert.Equal(t, 1, worker.RunOnce())
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, "fresh", m.Profiles()[0].ProfileID)
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	m := newTestManager(t, kv.NewMemoryStore(), Config{MaxProfiles: 2})
	ctx := context.Background()
	now := time.Now()
	m.now = func() time.Time { return now }

	for _, id := range []string{"a", "b"} {
		_, err := m.Get(ctx, id)
		require.NoError(t, err)
		now = now.Add(time.Second)
	}
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)
	now = now.Add(time.Second)

	_, err = m.Get(ctx, "c")
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, p := range m.Profiles() {
		ids[p.ProfileID] = true
	}
	assert.Equal(t, map[string]bool{"a": true, "c": true}, ids)
}

func TestWritesArePublished(t *testing.T) {
	logger := logging.NewDiscardLogger()
	broker := messaging.NewEventBroadcaster(logger, 8)
	m := NewManager(kv.NewMemoryStore(), nil, broker, noWebsites{}, Config{}, logger, performance.NewTracker(nil))
	ctx := context.Background()

	events := broker.Subscribe("p1")
	sf, err := m.Get(ctx, "p1")
	require.NoError(t, err)

	_, err = sf.Wishlist.ToggleWishlist(ctx, catalog.ProductRef{ID: "w"})
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, "wishlist", ev.Key)
		assert.Equal(t, kv.OpSet, ev.Op)
	default:
		t.Fatal("expected a storage event")
	}
}

func TestPinnedProfileSurvivesCapacityEviction(t *testing.T) {
	backend := kv.NewMemoryStore()
	m := newTestManager(t, backend, Config{MaxProfiles: 1})
	ctx := context.Background()

	first, releaseFirst, err := m.Acquire(ctx, "p")
	require.NoError(t, err)
	first.Sites.SetSelectedWebsiteID("w1")

	// another shopper arrives while p is still mid-request
	_, releaseOther, err := m.Acquire(ctx, "other")
	require.NoError(t, err)
	releaseOther()

	second, releaseSecond, err := m.Acquire(ctx, "p")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, "w1", second.Sites.SelectedWebsiteID())

	require.NoError(t, first.Cart.AddToCart(ctx, catalog.ProductRef{ID: "a", Price: 1}, 1))
	require.NoError(t, second.Cart.AddToCart(ctx, catalog.ProductRef{ID: "b", Price: 1}, 1))
	releaseFirst()
	releaseSecond()
	releaseSecond()
	assert.False(t, first.Pinned())

	reloaded, err := newTestManager(t, backend, Config{}).Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Cart.Count())
}

func TestEvictIdleSkipsPinnedProfiles(t *testing.T) {
	m := newTestManager(t, kv.NewMemoryStore(), Config{IdleTimeout: time.Minute})
	ctx := context.Background()
	now := time.Now()
	m.now = func() time.Time { return now }

	_, release, err := m.Acquire(ctx, "busy")
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)

	assert.Equal(t, 0, m.EvictIdle())
	assert.False(t, m.Evict("busy"))

	release()
	assert.Equal(t, 1, m.EvictIdle())
	assert.Equal(t, 0, m.Count())
}

func TestSiteSelectionOutlivesEvictionWhileAdminSignedIn(t *testing.T) {
	m := newTestManager(t, kv.NewMemoryStore(), Config{})
	ctx := context.Background()

	sf, err := m.Get(ctx, "p")
	require.NoError(t, err)
	require.NoError(t, sf.Admin.Login(ctx, session.UserRef{"id": "a1"}, "admin-tok"))
	sf.Sites.Restore(stores.SiteState{Websites: []site.Website{{ID: "w1", Name: "One"}}, Selected: "w1"})

	require.True(t, m.Evict("p"))
	rebuilt, err := m.Get(ctx, "p")
	require.NoError(t, err)
	assert.NotSame(t, sf, rebuilt)
	assert.Equal(t, "w1", rebuilt.Sites.SelectedWebsiteID())
	assert.Equal(t, "w1", rebuilt.Sites.Scope().Get("websiteId"))
	assert.Len(t, rebuilt.Sites.Websites(), 1)

	// a signed-out admin does not get the old scope back
	require.NoError(t, rebuilt.Admin.Logout(ctx))
	require.True(t, m.Evict("p"))
	again, err := m.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "", again.Sites.SelectedWebsiteID())
}
