// Package handlers provides HTTP handlers for the storefront state API
package handlers

import (
	"errors"
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/application/storefront"
	"github.com/AtRiskMedia/storefront-go/internal/application/stores"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/api"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// profileFrom aborts with 500 when the profile middleware did not run
func profileFrom(c *gin.Context) (*storefront.Storefront, bool) {
	sf, ok := middleware.GetStorefront(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile context not found"})
		return nil, false
	}
	return sf, true
}

// statusFor maps service and remote errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated), errors.Is(err, stores.ErrRejectedToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrEmptyCart):
		return http.StatusBadRequest
	}
	if status := api.StatusOf(err); status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
