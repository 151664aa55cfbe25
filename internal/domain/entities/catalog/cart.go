package catalog

// CartEntry is one line of a cart. A cart holds at most one entry per product id.
type CartEntry struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
}

// Subtotal is price times quantity for this line
func (e CartEntry) Subtotal() float64 {
	return e.Product.Price * float64(e.Quantity)
}

// OrderLine is the per-item shape sent when placing an order
type OrderLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderRequest is the checkout payload. Shipping, tax and discounts are
// computed by the remote API.
type OrderRequest struct {
	Items           []OrderLine    `json:"items"`
	Total           float64        `json:"total"`
	ShippingAddress map[string]any `json:"shippingAddress,omitempty"`
	PaymentMethod   string         `json:"paymentMethod,omitempty"`
	CouponCode      string         `json:"couponCode,omitempty"`
	WebsiteID       string         `json:"websiteId,omitempty"`
}

// NewOrderRequest turns cart entries into an order payload
func NewOrderRequest(entries []CartEntry) OrderRequest {
	req := OrderRequest{Items: make([]OrderLine, 0, len(entries))}
	for _, e := range entries {
		req.Items = append(req.Items, OrderLine{
			ProductID: e.Product.ID,
			Name:      e.Product.Name,
			Price:     e.Product.Price,
			Quantity:  e.Quantity,
		})
		req.Total += e.Subtotal()
	}
	return req
}
