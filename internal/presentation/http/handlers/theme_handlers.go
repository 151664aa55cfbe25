package handlers

import (
	"net/http"
	"strconv"

	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/application/stores"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/api"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// ThemeHandlers serves the storefront theme and the admin settings editor
type ThemeHandlers struct {
	theme           *stores.ThemeStore
	settingsService *services.SettingsService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewThemeHandlers creates theme handlers with injected dependencies
func NewThemeHandlers(theme *stores.ThemeStore, settingsService *services.SettingsService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ThemeHandlers {
	return &ThemeHandlers{theme: theme, settingsService: settingsService, logger: logger, perfTracker: perfTracker}
}

func (h *ThemeHandlers) themeBody() gin.H {
	doc := h.theme.Document()
	return gin.H{
		"theme":     h.theme.Theme(),
		"css":       doc.CSS(),
		"className": doc.ClassAttr(),
		"version":   doc.Version(),
	}
}

// GetTheme returns the active theme settings and their rendered form
func (h *ThemeHandlers) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, h.themeBody())
}

// RefreshTheme refetches settings. On failure the previous theme stays active.
func (h *ThemeHandlers) RefreshTheme(c *gin.Context) {
	marker := h.perfTracker.StartOperation("refresh_theme_request", "system")
	defer marker.Complete()

	if err := h.theme.FetchTheme(c.Request.Context()); err != nil {
		marker.SetError(err)
		body := h.themeBody()
		body["error"] = err.Error()
		c.JSON(statusFor(err), body)
		return
	}
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, h.themeBody())
}

// ThemeCSS serves the :root stylesheet
func (h *ThemeHandlers) ThemeCSS(c *gin.Context) {
	doc := h.theme.Document()
	etag := `"` + strconv.FormatUint(doc.Version(), 10) + `"`
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(doc.CSS()))
}

// GetSettings proxies the remote settings document
func (h *ThemeHandlers) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Settings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SaveSettings stores settings with the admin token, then refreshes the theme
func (h *ThemeHandlers) SaveSettings(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	var settings api.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	saved, err := h.settingsService.SaveSettings(c.Request.Context(), sf, settings)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": saved, "theme": h.theme.Theme()})
}
