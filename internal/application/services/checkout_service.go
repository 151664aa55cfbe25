package services

import (
	"context"
	"fmt"

	"github.com/AtRiskMedia/storefront-go/internal/application/storefront"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/api"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
)

// CheckoutDetails is what the shopper adds to the cart contents
type CheckoutDetails struct {
	ShippingAddress map[string]any `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
	CouponCode      string         `json:"couponCode"`
	WebsiteID       string         `json:"websiteId"`
}

// CheckoutService places orders for the cart. Stock, coupons, tax and
// shipping are decided by the remote API.
type CheckoutService struct {
	remote      RemoteAPI
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(remote RemoteAPI, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CheckoutService {
	return &CheckoutService{remote: remote, logger: logger, perfTracker: perfTracker}
}

// PlaceOrder submits the cart and, once the API accepts the order, removes
// the ordered lines. Items added meanwhile stay in the cart.
// The customer token is sent when the profile has one.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sf *storefront.Storefront, details CheckoutDetails) (api.Order, error) {
	marker := s.perfTracker.StartOperation("checkout:place-order", sf.ProfileID)
	defer marker.Complete()

	items := sf.Cart.Items()
	if len(items) == 0 {
		marker.SetError(ErrEmptyCart)
		return nil, ErrEmptyCart
	}

	req := catalog.NewOrderRequest(items)
	req.ShippingAddress = details.ShippingAddress
	req.PaymentMethod = details.PaymentMethod
	req.CouponCode = details.CouponCode
	req.WebsiteID = details.WebsiteID

	order, err := s.remote.PlaceOrder(ctx, sf.Customer.Token(ctx), req)
	if err != nil {
		marker.SetError(err)
		s.logger.Cart().Warn("Order rejected", "profileId", sf.ProfileID, "status", api.StatusOf(err), "error", err)
		return nil, fmt.Errorf("place order: %w", err)
	}

	if err := sf.Cart.RemoveLines(ctx, items); err != nil {
		s.logger.Cart().Error("Order placed but cart not cleared from storage", "profileId", sf.ProfileID, "error", err)
	}

	marker.SetSuccess(true)
	marker.AddMetadata("items", len(items))
	s.logger.Cart().Info("Order placed", "profileId", sf.ProfileID, "items", len(items), "total", req.Total)
	return order, nil
}
