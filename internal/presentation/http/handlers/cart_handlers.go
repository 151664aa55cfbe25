package handlers

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// AddToCartRequest is the body of POST /cart
type AddToCartRequest struct {
	Product  catalog.ProductRef `json:"product"`
	Quantity int                `json:"quantity"`
}

// UpdateQuantityRequest is the body of PUT /cart/:productId
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartHandlers contains all cart-related HTTP handlers
type CartHandlers struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewCartHandlers creates cart handlers with injected dependencies
func NewCartHandlers(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CartHandlers {
	return &CartHandlers{logger: logger, perfTracker: perfTracker}
}

func cartBody(items []catalog.CartEntry, total float64) gin.H {
	return gin.H{"items": items, "count": len(items), "total": total}
}

// GetCart returns the cart with its total
func (h *CartHandlers) GetCart(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cartBody(sf.Cart.Items(), sf.Cart.CartTotal()))
}

// GetTotal returns only the cart total
func (h *CartHandlers) GetTotal(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": sf.Cart.CartTotal()})
}

// AddToCart adds a product, or raises the quantity of one already in the cart
func (h *CartHandlers) AddToCart(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	marker := h.perfTracker.StartOperation("add_to_cart_request", sf.ProfileID)
	defer marker.Complete()

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.Product.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product id is required"})
		return
	}

	// Persistence failures keep the in-memory change; the response still reflects it.
	if err := sf.Cart.AddToCart(c.Request.Context(), req.Product, req.Quantity); err != nil {
		h.logger.WithContext(logging.ChannelCart, c.Request.Context()).Warn("Cart change not persisted", "profileId", sf.ProfileID, "error", err)
	}
	h.logger.Cart().Info("Added to cart", "profileId", sf.ProfileID, "productId", req.Product.ID, "quantity", req.Quantity)

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, cartBody(sf.Cart.Items(), sf.Cart.CartTotal()))
	h.logger.Perf().Info("Performance for AddToCart request", "duration", time.Since(marker.StartTime), "profileId", sf.ProfileID)
}

// UpdateQuantity sets an entry's quantity; zero or less removes it
func (h *CartHandlers) UpdateQuantity(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	marker := h.perfTracker.StartOperation("update_cart_quantity_request", sf.ProfileID)
	defer marker.Complete()

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	productID := c.Param("productId")
	if err := sf.Cart.UpdateQuantity(c.Request.Context(), productID, *req.Quantity); err != nil {
		h.logger.WithContext(logging.ChannelCart, c.Request.Context()).Warn("Cart change not persisted", "profileId", sf.ProfileID, "error", err)
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, cartBody(sf.Cart.Items(), sf.Cart.CartTotal()))
}

// RemoveFromCart drops an entry
func (h *CartHandlers) RemoveFromCart(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	if err := sf.Cart.RemoveFromCart(c.Request.Context(), c.Param("productId")); err != nil {
		h.logger.WithContext(logging.ChannelCart, c.Request.Context()).Warn("Cart change not persisted", "profileId", sf.ProfileID, "error", err)
	}
	c.JSON(http.StatusOK, cartBody(sf.Cart.Items(), sf.Cart.CartTotal()))
}

// ClearCart empties the cart
func (h *CartHandlers) ClearCart(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	if err := sf.Cart.ClearCart(c.Request.Context()); err != nil {
		h.logger.WithContext(logging.ChannelCart, c.Request.Context()).Warn("Cart change not persisted", "profileId", sf.ProfileID, "error", err)
	}
	c.JSON(http.StatusOK, cartBody(sf.Cart.Items(), sf.Cart.CartTotal()))
}
