// Package stores holds the storefront's client state containers: cart,
// wishlist, customer and admin sessions, theme and site selection. Each store
// owns a disjoint set of persisted keys and is safe for concurrent use.
package stores

import (
	"context"
	"errors"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
)

// Persisted keys, one set per store
const (
	KeyCart       = "cart"
	KeyWishlist   = "wishlist"
	KeyUser       = "user"
	KeyToken      = "token"
	KeyAdminUser  = "adminUser"
	KeyAdminToken = "adminToken"
)

// SealedKeys are the keys whose values are bearer tokens
var SealedKeys = []string{KeyToken, KeyAdminToken}

// Deps are the collaborators every persisted store needs
type Deps struct {
	Store     kv.Store
	Logger    *logging.ChanneledLogger
	ProfileID string
}

// logDecodeFailure records why a persisted value was treated as absent.
// Missing keys never reach here.
func logDecodeFailure(d Deps, key string, err error) {
	if err == nil {
		return
	}
	reason := "backend"
	switch {
	case errors.Is(err, kv.ErrSentinel):
		reason = "sentinel"
	case errors.Is(err, kv.ErrMalformed):
		reason = "malformed"
	case errors.Is(err, kv.ErrCorrupt):
		reason = "corrupt"
	}
	d.Logger.Storage().Warn("Persisted value treated as absent",
		"key", key, "reason", reason, "profileId", d.ProfileID, "error", err)
}

func persist(ctx context.Context, d Deps, key string, v any) error {
	start := time.Now()
	if err := kv.Save(ctx, d.Store, key, v); err != nil {
		d.Logger.LogError(logging.ChannelStorage, "persist "+key, err, map[string]any{"profileId": d.ProfileID})
		return err
	}
	d.Logger.LogStorageOperation("persist", key, time.Since(start), nil)
	return nil
}
