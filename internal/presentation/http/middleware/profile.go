package middleware

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/storefront"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

const (
	// ProfileHeader carries the browser profile id
	ProfileHeader = "X-Storefront-Profile"
	// ProfileCookie is the fallback carrier, used by the websocket handshake
	ProfileCookie = "sf_profile"

	profileCookieMaxAge = 365 * 24 * 60 * 60
	storefrontKey       = "storefront"
)

// ProfileMiddleware resolves the caller's profile and loads its Storefront,
// pinned against eviction until the handler chain returns.
// Callers without a profile get a fresh id, returned in the header and cookie.
func ProfileMiddleware(manager *storefront.Manager, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		profileID := c.GetHeader(ProfileHeader)
		if profileID == "" {
			profileID, _ = c.Cookie(ProfileCookie)
		}

		minted := false
		if profileID == "" {
			profileID = security.NewProfileID()
			minted = true
		} else if !security.ValidProfileID(profileID) {
			logger.HTTP().Warn("Rejected malformed profile id", "path", c.Request.URL.Path)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
			c.Abort()
			return
		}

		marker := perfTracker.StartOperation("middleware_profile_resolution", profileID)
		defer marker.Complete()
		marker.AddMetadata("path", c.Request.URL.Path)
		marker.AddMetadata("minted", minted)

		sf, release, err := manager.Acquire(c.Request.Context(), profileID)
		if err != nil {
			marker.SetError(err)
			logger.HTTP().Error("Profile load failed", "error", err, "profileId", profileID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile unavailable"})
			c.Abort()
			return
		}

		if minted {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ProfileCookie, profileID, profileCookieMaxAge, "/", "", false, true)
		}
		c.Header(ProfileHeader, profileID)

		logger.HTTP().Debug("Profile resolved",
			"profileId", profileID,
			"minted", minted,
			"duration", time.Since(start))
		marker.SetSuccess(true)

		c.Set(storefrontKey, sf)
		defer release()
		c.Next()
	}
}

// GetStorefront retrieves the profile's Storefront from gin context.
func GetStorefront(c *gin.Context) (*storefront.Storefront, bool) {
	v, exists := c.Get(storefrontKey)
	if !exists {
		return nil, false
	}
	sf, ok := v.(*storefront.Storefront)
	return sf, ok
}
