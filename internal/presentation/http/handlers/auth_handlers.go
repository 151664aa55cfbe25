package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/application/storefront"
	"github.com/AtRiskMedia/storefront-go/internal/application/stores"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/api"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// LoginRequest is the body of the password login endpoints
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries the Google identity credential
type GoogleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// AdoptSessionRequest installs an identity obtained outside this service
type AdoptSessionRequest struct {
	User  session.UserRef `json:"user"`
	Token string          `json:"token"`
}

// AuthHandlers contains the customer and admin session handlers
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{authService: authService, logger: logger, perfTracker: perfTracker}
}

// CustomerSession selects the shopper's session
func CustomerSession(sf *storefront.Storefront) *stores.SessionStore { return sf.Customer }

// AdminSession selects the operator's session
func AdminSession(sf *storefront.Storefront) *stores.SessionStore { return sf.Admin }

func sessionBody(c *gin.Context, store *stores.SessionStore) gin.H {
	ctx := c.Request.Context()
	body := gin.H{
		"state":           store.State(ctx),
		"isAuthenticated": store.IsAuthenticated(ctx),
		"user":            store.User(ctx),
	}
	if info, err := store.TokenInfo(ctx); err == nil {
		body["tokenInfo"] = info
		body["expired"] = info.Expired(time.Now())
	}
	return body
}

func (h *AuthHandlers) loginResponse(c *gin.Context, id session.Identity, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": id.User, "token": id.Token, "isAuthenticated": true})
}

// CustomerLogin handles POST /auth/login
func (h *AuthHandlers) CustomerLogin(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	id, err := h.authService.CustomerLogin(c.Request.Context(), sf, api.Credentials{Email: req.Email, Password: req.Password})
	h.loginResponse(c, id, err)
}

// Register handles POST /auth/register. The body is passed through untouched.
func (h *AuthHandlers) Register(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	id, err := h.authService.Register(c.Request.Context(), sf, fields)
	h.loginResponse(c, id, err)
}

// GoogleLogin handles POST /auth/google-login
func (h *AuthHandlers) GoogleLogin(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	id, err := h.authService.GoogleLogin(c.Request.Context(), sf, req.Credential)
	h.loginResponse(c, id, err)
}

// AdminLogin handles POST /admin/login
func (h *AuthHandlers) AdminLogin(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	id, err := h.authService.AdminLogin(c.Request.Context(), sf, api.Credentials{Email: req.Email, Password: req.Password})
	h.loginResponse(c, id, err)
}

// Session returns a handler reporting the selected namespace's state
func (h *AuthHandlers) Session(pick func(*storefront.Storefront) *stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := profileFrom(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, sessionBody(c, pick(sf)))
	}
}

// Adopt returns a handler that logs the namespace in with a supplied identity
func (h *AuthHandlers) Adopt(pick func(*storefront.Storefront) *stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := profileFrom(c)
		if !ok {
			return
		}
		var req AdoptSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
		store := pick(sf)
		if err := store.Login(c.Request.Context(), req.User, req.Token); err != nil {
			if errors.Is(err, stores.ErrRejectedToken) {
				respondError(c, err)
				return
			}
			h.logger.Auth().Warn("Session established but not persisted", "profileId", sf.ProfileID, "error", err)
		}
		c.JSON(http.StatusOK, sessionBody(c, store))
	}
}

// Logout returns a handler that clears the selected namespace
func (h *AuthHandlers) Logout(pick func(*storefront.Storefront) *stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := profileFrom(c)
		if !ok {
			return
		}
		store := pick(sf)
		if err := store.Logout(c.Request.Context()); err != nil {
			h.logger.Auth().Warn("Logout not persisted", "profileId", sf.ProfileID, "namespace", store.Namespace().Label, "error", err)
		}
		c.JSON(http.StatusOK, sessionBody(c, store))
	}
}
