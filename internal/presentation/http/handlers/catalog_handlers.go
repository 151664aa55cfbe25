package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/gin-gonic/gin"
)

// CatalogHandlers proxies product and category listings
type CatalogHandlers struct {
	catalogService *services.CatalogService
}

// NewCatalogHandlers creates catalog handlers with injected dependencies
func NewCatalogHandlers(catalogService *services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalogService: catalogService}
}

// Products handles GET /products; query parameters become API filters
func (h *CatalogHandlers) Products(c *gin.Context) {
	products, err := h.catalogService.Products(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// Categories handles GET /categories
func (h *CatalogHandlers) Categories(c *gin.Context) {
	categories, err := h.catalogService.Categories(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
}

// AdminProducts lists products for the selected website
func (h *CatalogHandlers) AdminProducts(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	products, err := h.catalogService.AdminProducts(c.Request.Context(), sf, c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products), "websiteId": sf.Sites.SelectedWebsiteID()})
}

// AdminCategories lists categories for the selected website
func (h *CatalogHandlers) AdminCategories(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	categories, err := h.catalogService.AdminCategories(c.Request.Context(), sf, c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories), "websiteId": sf.Sites.SelectedWebsiteID()})
}
