package messaging

import (
	"testing"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBroadcasterIsolatesProfiles(t *testing.T) {
	b := NewEventBroadcaster(logging.NewDiscardLogger(), 4)

	a := b.Subscribe("a")
	other := b.Subscribe("b")
	assert.Equal(t, 1, b.ConnectionCount("a"))

	b.Publish("a", kv.Event{Key: "cart", Op: kv.OpSet, At: time.Now()})

	select {
	case ev := <-a:
		assert.Equal(t, "cart", ev.Key)
	default:
		t.Fatal("expected event for profile a")
	}
	assert.Len(t, other, 0)

	b.Unsubscribe(a, "a")
	assert.Equal(t, 0, b.ConnectionCount("a"))
	_, open := <-a
	assert.False(t, open)
}

func TestEventBroadcasterDropsWhenFull(t *testing.T) {
	b := NewEventBroadcaster(logging.NewDiscardLogger(), 1)
	ch := b.Subscribe("p")

	b.Publish("p", kv.Event{Key: "one"})
	b.Publish("p", kv.Event{Key: "two"})

	require.Len(t, ch, 1)
	assert.Equal(t, "one", (<-ch).Key)
}

func TestCloseAllClosesListeners(t *testing.T) {
	b := NewEventBroadcaster(logging.NewDiscardLogger(), 1)
	a := b.Subscribe("p1")
	c := b.Subscribe("p2")

	assert.Equal(t, 2, b.CloseAll())
	_, ok := <-a
	assert.False(t, ok)
	_, ok = <-c
	assert.False(t, ok)
	assert.Equal(t, 0, b.ConnectionCount("p1"))

	// Unsubscribing after CloseAll must not close twice.
	b.Unsubscribe(a, "p1")
}
