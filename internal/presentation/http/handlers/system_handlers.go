package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/storefront"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
	"github.com/gin-gonic/gin"
)

// SystemHandlers reports service health and runtime state
type SystemHandlers struct {
	version     string
	backend     kv.Backend
	profiles    *storefront.Manager
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	started     time.Time
}

// NewSystemHandlers creates system handlers with injected dependencies
func NewSystemHandlers(version string, backend kv.Backend, profiles *storefront.Manager, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SystemHandlers {
	return &SystemHandlers{
		version:     version,
		backend:     backend,
		profiles:    profiles,
		logger:      logger,
		perfTracker: perfTracker,
		started:     time.Now(),
	}
}

// Health handles GET /health
func (h *SystemHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"version":  h.version,
		"storage":  h.backend.Name(),
		"profiles": h.profiles.Count(),
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}

// Profiles lists loaded profiles, most recently used first
func (h *SystemHandlers) Profiles(c *gin.Context) {
	profiles := h.profiles.Profiles()
	c.JSON(http.StatusOK, gin.H{"profiles": profiles, "count": len(profiles)})
}

// PerfStats returns per-operation timings and, with ?profileId=, that profile's recent operations
func (h *SystemHandlers) PerfStats(c *gin.Context) {
	body := gin.H{"operations": h.perfTracker.GetStats()}
	if profileID := c.Query("profileId"); profileID != "" {
		within := 5 * time.Minute
		if secs, err := strconv.Atoi(c.Query("seconds")); err == nil && secs > 0 {
			within = time.Duration(secs) * time.Second
		}
		body["recent"] = h.perfTracker.GetRecent(profileID, within)
	}
	c.JSON(http.StatusOK, body)
}

// GetLogLevels returns the current level of every log channel
func (h *SystemHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.logger.GetChannelLevels())
}

// SetLogLevel changes one channel's level at runtime
func (h *SystemHandlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), logging.ParseLevel(req.Level)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.System().Info("Log level changed", "channel", req.Channel, "level", req.Level)
	c.JSON(http.StatusOK, h.logger.GetChannelLevels())
}
