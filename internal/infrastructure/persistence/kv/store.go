// Package kv provides the persistent key-value bridge used by every
// storefront store as its durability mechanism.
package kv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key has never been written or was deleted.
	ErrNotFound = errors.New("key not found")
	// ErrCorrupt is returned by Get when a stored value exists but cannot be read back.
	ErrCorrupt = errors.New("stored value unreadable")
)

// Store is a string-keyed, string-valued durable map.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Backend is a Store that owns a connection.
type Backend interface {
	Store
	Name() string
	Ping(ctx context.Context) error
	Close() error
}

// Op names a mutation in a change Event.
type Op string

const (
	OpSet    Op = "set"
	OpDelete Op = "delete"
)

// Event describes one successful mutation observed through a Notifying store.
type Event struct {
	Key string    `json:"key"`
	Op  Op        `json:"op"`
	At  time.Time `json:"at"`
}

// Publisher receives change events for a profile.
type Publisher interface {
	Publish(profileID string, event Event)
}

// Sealer encrypts values at rest.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}
