package performance

import (
	"sort"
	"sync"
	"time"
)

// Tracker aggregates completed markers and keeps a bounded window of recent ones
type Tracker struct {
	recent []*Marker
	stats  map[string]*OperationStats
	mu     sync.RWMutex
	config *TrackerConfig
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxRecent     int           `json:"maxRecent"`
	SlowThreshold time.Duration `json:"slowThreshold"`
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxRecent:     500,
		SlowThreshold: 500 * time.Millisecond,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	return &Tracker{
		recent: make([]*Marker, 0, config.MaxRecent),
		stats:  make(map[string]*OperationStats),
		config: config,
	}
}

// StartOperation creates a marker that reports back to this tracker on Complete
func (t *Tracker) StartOperation(operation, profileID string) *Marker {
	return &Marker{
		Operation: operation,
		ProfileID: profileID,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true,
		tracker:   t,
	}
}

func (t *Tracker) record(m *Marker) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.recent = append(t.recent, m)
	if len(t.recent) > t.config.MaxRecent {
		t.recent = t.recent[len(t.recent)-t.config.MaxRecent:]
	}

	s, ok := t.stats[m.Operation]
	if !ok {
		s = &OperationStats{Operation: m.Operation}
		t.stats[m.Operation] = s
	}
	s.Count++
	s.TotalTime += m.Duration
	if m.Duration > s.MaxDuration {
		s.MaxDuration = m.Duration
	}
	if !m.Success {
		s.Failures++
	}
	if m.Duration > t.config.SlowThreshold {
		s.SlowCount++
	}
}

// GetStats returns per-operation aggregates sorted by operation name
func (t *Tracker) GetStats() []OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]OperationStats, 0, len(t.stats))
	for _, s := range t.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// GetRecent returns completed markers for a profile within the given window
func (t *Tracker) GetRecent(profileID string, within time.Duration) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cutoff := time.Now().Add(-within)
	var out []Marker
	for _, m := range t.recent {
		if m.ProfileID == profileID && m.EndTime.After(cutoff) {
			out = append(out, *m)
		}
	}
	return out
}
