package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/application/stores"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/api"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not authenticated", services.ErrNotAuthenticated, http.StatusUnauthorized},
		{"rejected token", fmt.Errorf("login: %w", stores.ErrRejectedToken), http.StatusUnauthorized},
		{"empty cart", services.ErrEmptyCart, http.StatusBadRequest},
		{"remote conflict", fmt.Errorf("order: %w", &api.Error{Status: http.StatusConflict, Message: "out of stock"}), http.StatusConflict},
		{"remote outage", &api.Error{Status: http.StatusServiceUnavailable}, http.StatusBadGateway},
		{"transport", errors.New("dial tcp: refused"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
