package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/site"
)

// Settings is the tenant settings object. Only the theme fields are
// interpreted here; everything else passes through.
type Settings map[string]any

// Theme extracts the brand fields. Missing fields come back empty.
func (s Settings) Theme() site.ThemeSettings {
	color, _ := s["primary_color"].(string)
	font, _ := s["primary_font"].(string)
	return site.ThemeSettings{PrimaryColor: color, PrimaryFont: font}
}

// Credentials is the email/password login body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Order is the remote API's order record
type Order map[string]any

// GetSettings fetches the tenant settings
func (c *Client) GetSettings(ctx context.Context) (Settings, error) {
	var raw map[string]json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/settings", nil, "", nil, &raw); err != nil {
		return nil, err
	}
	return unwrapSettings(raw)
}

// UpdateSettings saves tenant settings with an admin token
func (c *Client) UpdateSettings(ctx context.Context, token string, settings Settings) (Settings, error) {
	var raw map[string]json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/settings", nil, token, settings, &raw); err != nil {
		return nil, err
	}
	return unwrapSettings(raw)
}

func unwrapSettings(raw map[string]json.RawMessage) (Settings, error) {
	if inner, ok := raw["settings"]; ok {
		var s Settings
		if err := json.Unmarshal(inner, &s); err == nil && s != nil {
			return s, nil
		}
	}
	out := make(Settings, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		out[k] = val
	}
	return out, nil
}

// ListWebsites returns the storefronts the admin may manage
func (c *Client) ListWebsites(ctx context.Context, token string) ([]site.Website, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/websites", nil, token, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[site.Website](raw, "websites", "data")
}

// GetWebsite fetches one storefront
func (c *Client) GetWebsite(ctx context.Context, token, id string) (site.Website, error) {
	var w site.Website
	err := c.do(ctx, http.MethodGet, "/websites/"+url.PathEscape(id), nil, token, nil, &w)
	return w, err
}

// UpdateWebsite posts changed fields of a storefront
func (c *Client) UpdateWebsite(ctx context.Context, token, id string, fields map[string]any) (site.Website, error) {
	var w site.Website
	err := c.do(ctx, http.MethodPost, "/websites/"+url.PathEscape(id), nil, token, fields, &w)
	return w, err
}

// ListCategories lists catalog categories, optionally scoped
func (c *Client) ListCategories(ctx context.Context, scope url.Values) ([]catalog.Category, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/categories", scope, "", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[catalog.Category](raw, "categories", "data")
}

// ListProducts lists products. scope carries filters such as websiteId.
func (c *Client) ListProducts(ctx context.Context, token string, scope url.Values) ([]catalog.ProductRef, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products", scope, token, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[catalog.ProductRef](raw, "products", "data")
}

// PlaceOrder submits an order with the customer's token
func (c *Client) PlaceOrder(ctx context.Context, token string, order catalog.OrderRequest) (Order, error) {
	var out Order
	err := c.do(ctx, http.MethodPost, "/orders", nil, token, order, &out)
	return out, err
}

// Login authenticates a customer
func (c *Client) Login(ctx context.Context, creds Credentials) (session.LoginResult, error) {
	var out session.LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, "", creds, &out)
	return out, err
}

// Register creates a customer account; fields pass through to the API
func (c *Client) Register(ctx context.Context, fields map[string]any) (session.LoginResult, error) {
	var out session.LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, "", fields, &out)
	return out, err
}

// GoogleLogin exchanges a Google credential for a session
func (c *Client) GoogleLogin(ctx context.Context, credential string) (session.LoginResult, error) {
	var out session.LoginResult
	body := map[string]string{"credential": credential}
	err := c.do(ctx, http.MethodPost, "/auth/google-login", nil, "", body, &out)
	return out, err
}

// AdminLogin authenticates an operator. The response carries "admin".
func (c *Client) AdminLogin(ctx context.Context, creds Credentials) (session.LoginResult, error) {
	var out session.LoginResult
	err := c.do(ctx, http.MethodPost, "/admin/login", nil, "", creds, &out)
	return out, err
}
