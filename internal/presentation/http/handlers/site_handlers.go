package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// SelectWebsiteRequest picks the website admin views are scoped to; "" means all
type SelectWebsiteRequest struct {
	WebsiteID string `json:"websiteId"`
}

// SiteHandlers serves the admin's multi-site selector
type SiteHandlers struct {
	logger *logging.ChanneledLogger
}

// NewSiteHandlers creates site handlers with injected dependencies
func NewSiteHandlers(logger *logging.ChanneledLogger) *SiteHandlers {
	return &SiteHandlers{logger: logger}
}

func sitesBody(websites any, selected string) gin.H {
	return gin.H{"websites": websites, "selectedWebsiteId": selected}
}

// ListWebsites returns the cached website list and the current selection
func (h *SiteHandlers) ListWebsites(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sitesBody(sf.Sites.Websites(), sf.Sites.SelectedWebsiteID()))
}

// RefreshWebsites refetches the list with the admin token
func (h *SiteHandlers) RefreshWebsites(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	if err := sf.Sites.FetchWebsites(c.Request.Context()); err != nil {
		body := sitesBody(sf.Sites.Websites(), sf.Sites.SelectedWebsiteID())
		body["error"] = err.Error()
		c.JSON(statusFor(err), body)
		return
	}
	c.JSON(http.StatusOK, sitesBody(sf.Sites.Websites(), sf.Sites.SelectedWebsiteID()))
}

// SelectWebsite changes the selection. The id is not checked against the list.
func (h *SiteHandlers) SelectWebsite(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}
	var req SelectWebsiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	sf.Sites.SetSelectedWebsiteID(req.WebsiteID)
	h.logger.Site().Info("Website selected", "profileId", sf.ProfileID, "websiteId", req.WebsiteID)
	c.JSON(http.StatusOK, sitesBody(sf.Sites.Websites(), sf.Sites.SelectedWebsiteID()))
}
