package storefront

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/stores"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
)

// ErrInvalidProfile is returned for an empty profile id
var ErrInvalidProfile = errors.New("invalid profile id")

// Config bounds the number and lifetime of loaded profiles
type Config struct {
	MaxProfiles     int
	IdleTimeout     time.Duration
	CleanupInterval time.Duration
}

// Manager lazily builds a Storefront per profile over a shared backend.
// Evicting a profile only drops memory; its persisted state is read back
// the next time the profile is used, and its site selection, which is never
// persisted, is held here until then.
type Manager struct {
	backend  kv.Store
	sealer   kv.Sealer
	events   kv.Publisher
	websites stores.WebsiteSource
	config   Config

	profiles       map[string]*Storefront
	parked         map[string]stores.SiteState
	profileMutexes sync.Map
	globalMutex    sync.RWMutex

	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	now         func() time.Time
}

// NewManager creates a profile manager. sealer and events may be nil.
func NewManager(backend kv.Store, sealer kv.Sealer, events kv.Publisher, websites stores.WebsiteSource,
	config Config, logger *logging.ChanneledLogger, perfTracker *performance.Tracker,
) *Manager {
	return &Manager{
		backend:     backend,
		sealer:      sealer,
		events:      events,
		websites:    websites,
		config:      config,
		profiles:    make(map[string]*Storefront),
		parked:      make(map[string]stores.SiteState),
		logger:      logger,
		perfTracker: perfTracker,
		now:         time.Now,
	}
}

// StoreFor returns the profile's view of the backend: scoped to its prefix,
// with token keys sealed and writes announced when configured.
func (m *Manager) StoreFor(profileID string) kv.Store {
	var store kv.Store = kv.Scope(m.backend, ProfilePrefix(profileID))
	if m.sealer != nil {
		store = kv.Seal(store, m.sealer, stores.SealedKeys...)
	}
	if m.events != nil {
		store = kv.Notify(store, profileID, m.events)
	}
	return store
}

// Get returns the profile's Storefront, building it from storage on first use
func (m *Manager) Get(ctx context.Context, profileID string) (*Storefront, error) {
	return m.load(ctx, profileID, false)
}

// Acquire is Get for the length of a request. The bundle stays pinned
// against eviction until release is called, so no second bundle for the
// same profile can be built while this one is in use.
func (m *Manager) Acquire(ctx context.Context, profileID string) (*Storefront, func(), error) {
	sf, err := m.load(ctx, profileID, true)
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	return sf, func() { once.Do(func() { sf.pins.Add(-1) }) }, nil
}

func (m *Manager) load(ctx context.Context, profileID string, pin bool) (*Storefront, error) {
	if profileID == "" {
		return nil, ErrInvalidProfile
	}

	if sf := m.lookup(profileID, pin); sf != nil {
		return sf, nil
	}

	profileMutexInterface, _ := m.profileMutexes.LoadOrStore(profileID, &sync.Mutex{})
	profileMutex := profileMutexInterface.(*sync.Mutex)
	profileMutex.Lock()
	defer profileMutex.Unlock()

	if sf := m.lookup(profileID, pin); sf != nil {
		return sf, nil
	}

	return m.create(ctx, profileID, pin), nil
}

// lookup pins under the read lock, so eviction (write lock) sees the pin
func (m *Manager) lookup(profileID string, pin bool) *Storefront {
	m.globalMutex.RLock()
	defer m.globalMutex.RUnlock()

	sf, exists := m.profiles[profileID]
	if !exists {
		return nil
	}
	if pin {
		sf.pins.Add(1)
	}
	sf.touch(m.now().UTC())
	return sf
}

func (m *Manager) create(ctx context.Context, profileID string, pin bool) *Storefront {
	marker := m.perfTracker.StartOperation("profile:load", profileID)
	defer marker.Complete()

	store := m.StoreFor(profileID)
	deps := stores.Deps{Store: store, Logger: m.logger, ProfileID: profileID}
	sf := newStorefront(ctx, profileID, store, m.websites, deps)
	sf.touch(m.now().UTC())
	if pin {
		sf.pins.Add(1)
	}

	m.globalMutex.Lock()
	parked, hadSites := m.parked[profileID]
	delete(m.parked, profileID)
	m.globalMutex.Unlock()

	// The selection outlives eviction only while the admin session it scopes does.
	if hadSites && sf.Admin.IsAuthenticated(ctx) {
		sf.Sites.Restore(parked)
	}

	m.globalMutex.Lock()
	if m.config.MaxProfiles > 0 && len(m.profiles) >= m.config.MaxProfiles {
		m.evictOldestLocked()
	}
	m.profiles[profileID] = sf
	count := len(m.profiles)
	m.globalMutex.Unlock()

	marker.SetSuccess(true)
	m.logger.WithProfile(logging.ChannelSystem, profileID).Debug("Profile loaded", "loaded", count, "sitesRestored", hadSites)
	return sf
}

// evictOldestLocked drops the least recently used unpinned profile. When
// every profile is pinned the limit is briefly exceeded instead.
func (m *Manager) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sf := range m.profiles {
		if sf.Pinned() {
			continue
		}
		last := sf.LastAccessed()
		if oldestID == "" || last.Before(oldest) {
			oldestID, oldest = id, last
		}
	}
	if oldestID == "" {
		m.logger.System().Warn("Profile limit exceeded, all profiles in use", "max", m.config.MaxProfiles, "loaded", len(m.profiles))
		return
	}
	m.removeLocked(oldestID)
	m.logger.System().Info("Profile evicted at capacity", "profileId", oldestID, "max", m.config.MaxProfiles)
}

// removeLocked forgets a loaded profile, parking its site selection
func (m *Manager) removeLocked(profileID string) {
	sf := m.profiles[profileID]
	delete(m.profiles, profileID)
	m.profileMutexes.Delete(profileID)
	if sf == nil {
		return
	}
	if state := sf.Sites.Snapshot(); state.Selected != "" || len(state.Websites) > 0 {
		if m.config.MaxProfiles > 0 && len(m.parked) >= m.config.MaxProfiles {
			for id := range m.parked {
				delete(m.parked, id)
				break
			}
		}
		m.parked[profileID] = state
	}
}

// Evict drops a profile from memory. Pinned profiles are kept.
func (m *Manager) Evict(profileID string) bool {
	m.globalMutex.Lock()
	defer m.globalMutex.Unlock()

	sf, ok := m.profiles[profileID]
	if !ok || sf.Pinned() {
		return false
	}
	m.removeLocked(profileID)
	return true
}

// EvictIdle drops every unpinned profile unused for longer than the idle timeout
func (m *Manager) EvictIdle() int {
	if m.config.IdleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().UTC().Add(-m.config.IdleTimeout)

	m.globalMutex.Lock()
	defer m.globalMutex.Unlock()

	evicted := 0
	for id, sf := range m.profiles {
		if !sf.Pinned() && sf.LastAccessed().Before(cutoff) {
			m.removeLocked(id)
			evicted++
		}
	}
	return evicted
}

// Count returns the number of loaded profiles
func (m *Manager) Count() int {
	m.globalMutex.RLock()
	defer m.globalMutex.RUnlock()
	return len(m.profiles)
}

// Profiles summarizes loaded profiles, most recently used first
func (m *Manager) Profiles() []ProfileInfo {
	m.globalMutex.RLock()
	loaded := make([]*Storefront, 0, len(m.profiles))
	for _, sf := range m.profiles {
		loaded = append(loaded, sf)
	}
	m.globalMutex.RUnlock()

	out := make([]ProfileInfo, 0, len(loaded))
	for _, sf := range loaded {
		out = append(out, sf.Info())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastAccessed.After(out[j].LastAccessed)
	})
	return out
}
