package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// CheckoutHandlers submits the cart as an order
type CheckoutHandlers struct {
	checkoutService *services.CheckoutService
	logger          *logging.ChanneledLogger
}

// NewCheckoutHandlers creates checkout handlers with injected dependencies
func NewCheckoutHandlers(checkoutService *services.CheckoutService, logger *logging.ChanneledLogger) *CheckoutHandlers {
	return &CheckoutHandlers{checkoutService: checkoutService, logger: logger}
}

// PlaceOrder handles POST /checkout. The cart is cleared only when the API accepts the order.
func (h *CheckoutHandlers) PlaceOrder(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	var details services.CheckoutDetails
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&details); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
	}
	if details.WebsiteID == "" {
		details.WebsiteID = sf.Sites.SelectedWebsiteID()
	}

	order, err := h.checkoutService.PlaceOrder(c.Request.Context(), sf, details)
	if err != nil {
		h.logger.WithContext(logging.ChannelCart, c.Request.Context()).Warn("Checkout failed", "profileId", sf.ProfileID, "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "cart": cartBody(sf.Cart.Items(), sf.Cart.CartTotal())})
}
