package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AtRiskMedia/storefront-go/internal/application/storefront"
	"github.com/AtRiskMedia/storefront-go/internal/application/stores"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/api"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
)

// AuthService exchanges credentials with the remote API and records the
// resulting identity in the profile's session stores. Token issuance and
// validation stay with the remote API.
type AuthService struct {
	remote      RemoteAPI
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthService creates a new authentication service
func NewAuthService(remote RemoteAPI, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthService {
	return &AuthService{remote: remote, logger: logger, perfTracker: perfTracker}
}

func (a *AuthService) establish(ctx context.Context, sf *storefront.Storefront, store *stores.SessionStore, op string, call func() (session.LoginResult, error)) (session.Identity, error) {
	marker := a.perfTracker.StartOperation(op, sf.ProfileID)
	defer marker.Complete()

	result, err := call()
	if err != nil {
		marker.SetError(err)
		return session.Identity{}, fmt.Errorf("%s: %w", op, err)
	}

	// A persistence failure still leaves the session usable in memory.
	if err := store.Login(ctx, result.Principal(), result.Token); err != nil {
		marker.SetError(err)
		if errors.Is(err, stores.ErrRejectedToken) {
			return session.Identity{}, err
		}
		a.logger.Auth().Warn("Session established but not persisted", "profileId", sf.ProfileID, "error", err)
	}

	marker.SetSuccess(true)
	id, _ := store.Identity(ctx)
	return id, nil
}

// CustomerLogin signs a customer in with email and password
func (a *AuthService) CustomerLogin(ctx context.Context, sf *storefront.Storefront, creds api.Credentials) (session.Identity, error) {
	return a.establish(ctx, sf, sf.Customer, "auth:login", func() (session.LoginResult, error) {
		return a.remote.Login(ctx, creds)
	})
}

// Register creates an account and signs the customer in
func (a *AuthService) Register(ctx context.Context, sf *storefront.Storefront, fields map[string]any) (session.Identity, error) {
	return a.establish(ctx, sf, sf.Customer, "auth:register", func() (session.LoginResult, error) {
		return a.remote.Register(ctx, fields)
	})
}

// GoogleLogin signs a customer in with a Google credential
func (a *AuthService) GoogleLogin(ctx context.Context, sf *storefront.Storefront, credential string) (session.Identity, error) {
	return a.establish(ctx, sf, sf.Customer, "auth:google-login", func() (session.LoginResult, error) {
		return a.remote.GoogleLogin(ctx, credential)
	})
}

// AdminLogin signs an operator in and loads the websites they manage.
// A failed website load does not fail the login.
func (a *AuthService) AdminLogin(ctx context.Context, sf *storefront.Storefront, creds api.Credentials) (session.Identity, error) {
	id, err := a.establish(ctx, sf, sf.Admin, "admin:login", func() (session.LoginResult, error) {
		return a.remote.AdminLogin(ctx, creds)
	})
	if err != nil {
		return id, err
	}
	if err := sf.Sites.FetchWebsites(ctx); err != nil {
		a.logger.Site().Warn("Websites not loaded after admin login", "profileId", sf.ProfileID, "error", err)
	}
	return id, nil
}
