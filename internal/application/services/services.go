// Package services provides application-level orchestration: the flows that
// combine a remote API call with a store mutation.
package services

import (
	"context"
	"errors"
	"net/url"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/site"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/api"
)

// RemoteAPI is the subset of the remote API client the services call
type RemoteAPI interface {
	GetSettings(ctx context.Context) (api.Settings, error)
	UpdateSettings(ctx context.Context, token string, settings api.Settings) (api.Settings, error)
	ListWebsites(ctx context.Context, token string) ([]site.Website, error)
	ListCategories(ctx context.Context, scope url.Values) ([]catalog.Category, error)
	ListProducts(ctx context.Context, token string, scope url.Values) ([]catalog.ProductRef, error)
	PlaceOrder(ctx context.Context, token string, order catalog.OrderRequest) (api.Order, error)
	Login(ctx context.Context, creds api.Credentials) (session.LoginResult, error)
	Register(ctx context.Context, fields map[string]any) (session.LoginResult, error)
	GoogleLogin(ctx context.Context, credential string) (session.LoginResult, error)
	AdminLogin(ctx context.Context, creds api.Credentials) (session.LoginResult, error)
}

var (
	// ErrNotAuthenticated means the flow needs a session the profile does not hold
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEmptyCart is returned when checking out an empty cart
	ErrEmptyCart = errors.New("cart is empty")
)
