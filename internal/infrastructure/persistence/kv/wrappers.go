package kv

import (
	"context"
	"fmt"
	"time"
)

// Scoped prefixes every key so several owners can share one backend
type Scoped struct {
	inner  Store
	prefix string
}

// Scope returns a view of s whose keys live under prefix
func Scope(s Store, prefix string) *Scoped {
	return &Scoped{inner: s, prefix: prefix}
}

func (s *Scoped) Get(ctx context.Context, key string) (string, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Prefix returns the namespace this view writes under
func (s *Scoped) Prefix() string { return s.prefix }

// Sealed encrypts the values of selected keys before they reach the inner store
type Sealed struct {
	inner  Store
	sealer Sealer
	keys   map[string]bool
}

// Seal wraps s so that values written under any of keys are encrypted with sealer
func Seal(s Store, sealer Sealer, keys ...string) *Sealed {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return &Sealed{inner: s, sealer: sealer, keys: set}
}

func (s *Sealed) Get(ctx context.Context, key string) (string, error) {
	val, err := s.inner.Get(ctx, key)
	if err != nil || !s.keys[key] {
		return val, err
	}
	plain, err := s.sealer.Open(val)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrCorrupt, key, err)
	}
	return plain, nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	if !s.keys[key] {
		return s.inner.Set(ctx, key, value)
	}
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return fmt.Errorf("seal %q: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Notifying publishes an Event after every successful write
type Notifying struct {
	inner     Store
	profileID string
	publisher Publisher
	now       func() time.Time
}

// Notify wraps s so writes are announced to publisher under profileID
func Notify(s Store, profileID string, publisher Publisher) *Notifying {
	return &Notifying{inner: s, profileID: profileID, publisher: publisher, now: time.Now}
}

func (n *Notifying) Get(ctx context.Context, key string) (string, error) {
	return n.inner.Get(ctx, key)
}

func (n *Notifying) Set(ctx context.Context, key, value string) error {
	if err := n.inner.Set(ctx, key, value); err != nil {
		return err
	}
	n.publisher.Publish(n.profileID, Event{Key: key, Op: OpSet, At: n.now().UTC()})
	return nil
}

func (n *Notifying) Delete(ctx context.Context, key string) error {
	if err := n.inner.Delete(ctx, key); err != nil {
		return err
	}
	n.publisher.Publish(n.profileID, Event{Key: key, Op: OpDelete, At: n.now().UTC()})
	return nil
}
