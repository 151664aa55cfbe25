package services

import (
	"context"
	"net/url"

	"github.com/AtRiskMedia/storefront-go/internal/application/storefront"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
)

// CatalogService runs catalog queries, scoped by the admin's site selection
// where the caller asks for it.
type CatalogService struct {
	remote RemoteAPI
}

// NewCatalogService creates a new catalog service
func NewCatalogService(remote RemoteAPI) *CatalogService {
	return &CatalogService{remote: remote}
}

// Products lists storefront products with optional filters
func (s *CatalogService) Products(ctx context.Context, filters url.Values) ([]catalog.ProductRef, error) {
	return s.remote.ListProducts(ctx, "", filters)
}

// Categories lists storefront categories
func (s *CatalogService) Categories(ctx context.Context, filters url.Values) ([]catalog.Category, error) {
	return s.remote.ListCategories(ctx, filters)
}

// AdminProducts lists products for the admin, scoped to the selected website
func (s *CatalogService) AdminProducts(ctx context.Context, sf *storefront.Storefront, filters url.Values) ([]catalog.ProductRef, error) {
	token := sf.Admin.Token(ctx)
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	return s.remote.ListProducts(ctx, token, mergeScope(filters, sf.Sites.Scope()))
}

// AdminCategories lists categories scoped to the selected website
func (s *CatalogService) AdminCategories(ctx context.Context, sf *storefront.Storefront, filters url.Values) ([]catalog.Category, error) {
	if !sf.Admin.IsAuthenticated(ctx) {
		return nil, ErrNotAuthenticated
	}
	return s.remote.ListCategories(ctx, mergeScope(filters, sf.Sites.Scope()))
}

// mergeScope overlays scope onto filters; the selection wins
func mergeScope(filters, scope url.Values) url.Values {
	out := url.Values{}
	for k, v := range filters {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range scope {
		out[k] = append([]string(nil), v...)
	}
	return out
}
