package messaging

import (
	"sync"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
)

// EventBroadcaster manages profile-scoped listeners for storage change events.
type EventBroadcaster struct {
	profiles   map[string][]chan kv.Event
	bufferSize int
	mu         sync.Mutex
	logger     *logging.ChanneledLogger
}

// NewEventBroadcaster creates a broadcaster whose listener channels hold bufferSize events.
func NewEventBroadcaster(logger *logging.ChanneledLogger, bufferSize int) *EventBroadcaster {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &EventBroadcaster{
		profiles:   make(map[string][]chan kv.Event),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// Subscribe registers a new listener for a profile.
func (b *EventBroadcaster) Subscribe(profileID string) chan kv.Event {
	ch := make(chan kv.Event, b.bufferSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.profiles[profileID] = append(b.profiles[profileID], ch)
	b.logger.Storage().Debug("Event listener registered", "profileId", profileID, "listeners", len(b.profiles[profileID]))
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *EventBroadcaster) Unsubscribe(ch chan kv.Event, profileID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	listeners, exists := b.profiles[profileID]
	if !exists {
		return
	}
	kept := make([]chan kv.Event, 0, len(listeners))
	for _, l := range listeners {
		if l == ch {
			close(l)
			continue
		}
		kept = append(kept, l)
	}
	if len(kept) == 0 {
		delete(b.profiles, profileID)
	} else {
		b.profiles[profileID] = kept
	}
	b.logger.Storage().Debug("Event listener unregistered", "profileId", profileID)
}

// ConnectionCount returns the number of listeners for a profile.
func (b *EventBroadcaster) ConnectionCount(profileID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.profiles[profileID])
}

// Publish delivers event to every listener of profileID. Slow listeners lose
// events rather than block the writer.
func (b *EventBroadcaster) Publish(profileID string, event kv.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.profiles[profileID] {
		select {
		case ch <- event:
		default:
			b.logger.Storage().Warn("Event channel full, event dropped", "profileId", profileID, "key", event.Key)
		}
	}
}

// CloseAll closes every listener channel so their websocket clients send a
// close frame and exit. Used on shutdown, since hijacked connections are not
// tracked by http.Server.
func (b *EventBroadcaster) CloseAll() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	closed := 0
	for profileID, listeners := range b.profiles {
		for _, ch := range listeners {
			close(ch)
			closed++
		}
		delete(b.profiles, profileID)
	}
	return closed
}
