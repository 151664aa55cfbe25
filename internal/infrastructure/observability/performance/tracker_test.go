package performance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerAggregates(t *testing.T) {
	tracker := NewTracker(&TrackerConfig{MaxRecent: 2, SlowThreshold: time.Hour})

	for i := 0; i < 3; i++ {
		m := tracker.StartOperation("cart:add", "p1")
		if i == 2 {
			m.SetError(errors.New("boom"))
		}
		m.Complete()
		m.Complete() // second call is a no-op
	}
	tracker.StartOperation("theme:fetch", "system").Complete()

	stats := tracker.GetStats()
	require.Len(t, stats, 2)
	assert.Equal(t, "cart:add", stats[0].Operation)
	assert.Equal(t, 3, stats[0].Count)
	assert.Equal(t, 1, stats[0].Failures)
	assert.Equal(t, 0, stats[0].SlowCount)

	// Only the last two markers are retained.
	assert.Len(t, tracker.GetRecent("p1", time.Minute), 1)
	assert.Len(t, tracker.GetRecent("system", time.Minute), 1)
}

func TestMarkerMetadata(t *testing.T) {
	m := &Marker{}
	m.AddMetadata("path", "/cart")
	m.Complete()
	assert.Equal(t, "/cart", m.Metadata["path"])
	assert.True(t, m.Completed)
}
