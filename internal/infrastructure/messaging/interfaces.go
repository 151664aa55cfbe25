// Package messaging defines interfaces for real-time communication.
package messaging

import "github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"

// Broadcaster fans storage change events out to the listeners of a profile.
type Broadcaster interface {
	kv.Publisher
	Subscribe(profileID string) chan kv.Event
	Unsubscribe(ch chan kv.Event, profileID string)
	ConnectionCount(profileID string) int
}
