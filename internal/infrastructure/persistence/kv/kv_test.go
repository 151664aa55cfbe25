package kv

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSentinel(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", true},
		{"undefined", true},
		{`"undefined"`, true},
		{"null", true},
		{`"null"`, true},
		{"  null ", true},
		{`{"name":"A"}`, false},
		{`"tok123"`, false},
		{"tok123", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSentinel(tt.raw))
		})
	}
}

func TestDecode(t *testing.T) {
	type user struct {
		Name string `json:"name"`
	}

	got, err := Decode[user](`{"name":"A"}`)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)

	_, err = Decode[user]("undefined")
	assert.ErrorIs(t, err, ErrSentinel)

	_, err = Decode[user]("{not json")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, ok, err := Load[[]int](ctx, store, "missing")
	assert.False(t, ok)
	assert.NoError(t, err)

	require.NoError(t, Save(ctx, store, "nums", []int{1, 2, 3}))
	nums, ok, err := Load[[]int](ctx, store, "nums")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, nums)

	require.NoError(t, store.Set(ctx, "bad", "undefined"))
	_, ok, err = Load[[]int](ctx, store, "bad")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrSentinel)
}

func TestLoadString(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, Save(ctx, store, "quoted", "tok123"))
	require.NoError(t, store.Set(ctx, "raw", "tok456"))
	require.NoError(t, store.Set(ctx, "sentinel", `"undefined"`))

	got, ok, err := LoadString(ctx, store, "quoted")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok123", got)

	got, ok, err = LoadString(ctx, store, "raw")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok456", got)

	_, ok, err = LoadString(ctx, store, "sentinel")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrSentinel)
}

func TestScopedIsolatesPrefixes(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryStore()
	a := Scope(base, "profile:a:")
	b := Scope(base, "profile:b:")

	require.NoError(t, a.Set(ctx, "cart", "[1]"))

	_, err := b.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := base.Get(ctx, "profile:a:cart")
	require.NoError(t, err)
	assert.Equal(t, "[1]", got)
	assert.Equal(t, []string{"profile:a:cart"}, base.Keys("profile:"))
}

type reverseSealer struct{}

func (reverseSealer) Seal(p string) (string, error) { return "sealed:" + reverse(p), nil }

func (reverseSealer) Open(s string) (string, error) {
	if !strings.HasPrefix(s, "sealed:") {
		return "", errors.New("not sealed")
	}
	return reverse(strings.TrimPrefix(s, "sealed:")), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func TestSealedOnlyTouchesSelectedKeys(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryStore()
	sealed := Seal(base, reverseSealer{}, "token")

	require.NoError(t, sealed.Set(ctx, "token", "abc"))
	require.NoError(t, sealed.Set(ctx, "cart", "[]"))

	raw, err := base.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "sealed:cba", raw)

	plain, err := sealed.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", plain)

	raw, err = base.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	require.NoError(t, base.Set(ctx, "token", "tampered"))
	_, err = sealed.Get(ctx, "token")
	assert.ErrorIs(t, err, ErrCorrupt)
}

type recordingPublisher struct {
	events []Event
	ids    []string
}

func (p *recordingPublisher) Publish(profileID string, ev Event) {
	p.ids = append(p.ids, profileID)
	p.events = append(p.events, ev)
}

func TestNotifyingPublishesWrites(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	store := Notify(NewMemoryStore(), "p1", pub)

	require.NoError(t, store.Set(ctx, "cart", "[]"))
	require.NoError(t, store.Delete(ctx, "cart"))
	_, _ = store.Get(ctx, "cart")

	require.Len(t, pub.events, 2)
	assert.Equal(t, []string{"p1", "p1"}, pub.ids)
	assert.Equal(t, OpSet, pub.events[0].Op)
	assert.Equal(t, OpDelete, pub.events[1].Op)
	assert.Equal(t, "cart", pub.events[1].Key)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, ":memory:", PoolConfig{MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "cart", `[{"quantity":1}]`))
	require.NoError(t, store.Set(ctx, "cart", `[{"quantity":2}]`))

	got, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"quantity":2}]`, got)

	require.NoError(t, store.Delete(ctx, "cart"))
	_, err = store.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "etcd"})
	assert.Error(t, err)

	backend, err := Open(context.Background(), Options{Driver: "memory"})
	require.NoError(t, err)
	assert.Equal(t, "memory", backend.Name())
}
