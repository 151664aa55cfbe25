package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// WishlistHandlers contains all wishlist-related HTTP handlers
type WishlistHandlers struct {
	logger *logging.ChanneledLogger
}

// NewWishlistHandlers creates wishlist handlers with injected dependencies
func NewWishlistHandlers(logger *logging.ChanneledLogger) *WishlistHandlers {
	return &WishlistHandlers{logger: logger}
}

// GetWishlist returns the saved products
func (h *WishlistHandlers) GetWishlist(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	items := sf.Wishlist.Items()
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// Toggle adds the product when absent and removes it when present
func (h *WishlistHandlers) Toggle(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}

	var product catalog.ProductRef
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if product.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product id is required"})
		return
	}

	added, err := sf.Wishlist.ToggleWishlist(c.Request.Context(), product)
	if err != nil {
		h.logger.Wishlist().Warn("Wishlist change not persisted", "profileId", sf.ProfileID, "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "inWishlist": added, "count": len(sf.Wishlist.Items())})
}

// Contains reports whether a product is saved
func (h *WishlistHandlers) Contains(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	productID := c.Param("productId")
	c.JSON(http.StatusOK, gin.H{"productId": productID, "inWishlist": sf.Wishlist.IsInWishlist(productID)})
}

// Remove drops a product from the wishlist
func (h *WishlistHandlers) Remove(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	if err := sf.Wishlist.RemoveFromWishlist(c.Request.Context(), c.Param("productId")); err != nil {
		h.logger.Wishlist().Warn("Wishlist change not persisted", "profileId", sf.ProfileID, "error", err)
	}
	items := sf.Wishlist.Items()
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}
