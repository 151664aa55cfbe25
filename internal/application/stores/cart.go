package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
)

// CartStore holds the shopping cart. Every mutation updates memory first and
// then writes the whole entry list under KeyCart. A failed write is returned
// but the in-memory change stands.
type CartStore struct {
	mu      sync.RWMutex
	entries []catalog.CartEntry
	deps    Deps
}

// NewCartStore restores the cart from storage. Unreadable state starts an empty cart.
func NewCartStore(ctx context.Context, deps Deps) *CartStore {
	c := &CartStore{deps: deps}

	saved, ok, err := kv.Load[[]catalog.CartEntry](ctx, deps.Store, KeyCart)
	if !ok {
		logDecodeFailure(deps, KeyCart, err)
		return c
	}
	c.entries = normalizeCart(saved)
	return c
}

// normalizeCart merges duplicate product ids and drops lines that could not
// have been produced by the store's own operations.
func normalizeCart(in []catalog.CartEntry) []catalog.CartEntry {
	out := make([]catalog.CartEntry, 0, len(in))
	index := make(map[string]int, len(in))
	for _, e := range in {
		if e.Product.ID == "" || e.Quantity < 1 {
			continue
		}
		if i, ok := index[e.Product.ID]; ok {
			out[i].Quantity += e.Quantity
			continue
		}
		index[e.Product.ID] = len(out)
		out = append(out, e)
	}
	return out
}

func (c *CartStore) indexOf(productID string) int {
	for i, e := range c.entries {
		if e.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *CartStore) save(ctx context.Context) error {
	if err := persist(ctx, c.deps, KeyCart, c.entries); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// AddToCart adds quantity of product, incrementing an existing line for the
// same id. Quantities below 1 count as 1. Stock is not checked here.
func (c *CartStore) AddToCart(ctx context.Context, product catalog.ProductRef, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(product.ID); i >= 0 {
		c.entries[i].Quantity += quantity
	} else {
		c.entries = append(c.entries, catalog.CartEntry{Product: product, Quantity: quantity})
	}
	c.deps.Logger.Cart().Debug("Added to cart", "profileId", c.deps.ProfileID, "productId", product.ID, "quantity", quantity)
	return c.save(ctx)
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
// Unknown ids are ignored.
func (c *CartStore) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return nil
	}
	if quantity <= 0 {
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
	} else {
		c.entries[i].Quantity = quantity
	}
	c.deps.Logger.Cart().Debug("Updated cart quantity", "profileId", c.deps.ProfileID, "productId", productID, "quantity", quantity)
	return c.save(ctx)
}

// RemoveFromCart drops a line; unknown ids are ignored
func (c *CartStore) RemoveFromCart(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return nil
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	c.deps.Logger.Cart().Debug("Removed from cart", "profileId", c.deps.ProfileID, "productId", productID)
	return c.save(ctx)
}

// ClearCart empties the cart
func (c *CartStore) ClearCart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = []catalog.CartEntry{}
	c.deps.Logger.Cart().Debug("Cleared cart", "profileId", c.deps.ProfileID)
	return c.save(ctx)
}

// RemoveLines subtracts lines that were handed off elsewhere, such as an
// order, leaving anything added or topped up since the snapshot.
func (c *CartStore) RemoveLines(ctx context.Context, lines []catalog.CartEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := make([]catalog.CartEntry, 0, len(c.entries))
	taken := make(map[string]int, len(lines))
	for _, l := range lines {
		taken[l.Product.ID] += l.Quantity
	}
	for _, e := range c.entries {
		e.Quantity -= taken[e.Product.ID]
		if e.Quantity > 0 {
			kept = append(kept, e)
		}
	}
	c.entries = kept
	c.deps.Logger.Cart().Debug("Removed ordered lines", "profileId", c.deps.ProfileID, "lines", len(lines), "remaining", len(kept))
	return c.save(ctx)
}

// CartTotal is the sum of price times quantity. Shipping, tax and discounts
// are the checkout's business.
func (c *CartStore) CartTotal() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total float64
	for _, e := range c.entries {
		total += e.Subtotal()
	}
	return total
}

// Items returns a copy of the cart lines in insertion order
func (c *CartStore) Items() []catalog.CartEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]catalog.CartEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Count is the total number of units in the cart
func (c *CartStore) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, e := range c.entries {
		n += e.Quantity
	}
	return n
}
