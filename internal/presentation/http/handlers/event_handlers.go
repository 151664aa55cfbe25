package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// EventHandlers streams a profile's storage changes to its open tabs
type EventHandlers struct {
	broadcaster messaging.Broadcaster
	upgrader    websocket.Upgrader
	logger      *logging.ChanneledLogger
}

// NewEventHandlers creates event handlers. Origins are checked by allowOrigin;
// nil accepts any origin.
func NewEventHandlers(broadcaster messaging.Broadcaster, allowOrigin func(*http.Request) bool, logger *logging.ChanneledLogger) *EventHandlers {
	return &EventHandlers{
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin,
		},
		logger: logger,
	}
}

// Stream upgrades to a websocket and relays events until the client leaves
func (h *EventHandlers) Stream(c *gin.Context) {
	sf, ok := profileFrom(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.HTTP().Warn("Websocket upgrade failed", "profileId", sf.ProfileID, "error", err)
		return
	}

	h.logger.HTTP().Debug("Event stream opened", "profileId", sf.ProfileID,
		"connections", h.broadcaster.ConnectionCount(sf.ProfileID)+1)
	messaging.NewEventClient(conn, sf.ProfileID, h.broadcaster).Serve()
}
