package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
)

// WishlistStore holds saved products with set semantics by product id
type WishlistStore struct {
	mu    sync.RWMutex
	items []catalog.ProductRef
	deps  Deps
}

// NewWishlistStore restores the wishlist from storage
func NewWishlistStore(ctx context.Context, deps Deps) *WishlistStore {
	w := &WishlistStore{deps: deps}

	saved, ok, err := kv.Load[[]catalog.ProductRef](ctx, deps.Store, KeyWishlist)
	if !ok {
		logDecodeFailure(deps, KeyWishlist, err)
		return w
	}
	seen := make(map[string]bool, len(saved))
	for _, p := range saved {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		w.items = append(w.items, p)
	}
	return w
}

func (w *WishlistStore) indexOf(productID string) int {
	for i, p := range w.items {
		if p.ID == productID {
			return i
		}
	}
	return -1
}

func (w *WishlistStore) save(ctx context.Context) error {
	if err := persist(ctx, w.deps, KeyWishlist, w.items); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	return nil
}

// ToggleWishlist removes product when present, adds it otherwise. added
// reports which happened.
func (w *WishlistStore) ToggleWishlist(ctx context.Context, product catalog.ProductRef) (added bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if i := w.indexOf(product.ID); i >= 0 {
		w.items = append(w.items[:i], w.items[i+1:]...)
	} else {
		w.items = append(w.items, product)
		added = true
	}
	w.deps.Logger.Wishlist().Debug("Toggled wishlist", "profileId", w.deps.ProfileID, "productId", product.ID, "added", added)
	return added, w.save(ctx)
}

// RemoveFromWishlist removes a product; unknown ids are ignored
func (w *WishlistStore) RemoveFromWishlist(ctx context.Context, productID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.indexOf(productID)
	if i < 0 {
		return nil
	}
	w.items = append(w.items[:i], w.items[i+1:]...)
	w.deps.Logger.Wishlist().Debug("Removed from wishlist", "profileId", w.deps.ProfileID, "productId", productID)
	return w.save(ctx)
}

// IsInWishlist reports membership
func (w *WishlistStore) IsInWishlist(productID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.indexOf(productID) >= 0
}

// Items returns a copy of the saved products
func (w *WishlistStore) Items() []catalog.ProductRef {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]catalog.ProductRef, len(w.items))
	copy(out, w.items)
	return out
}
