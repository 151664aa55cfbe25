package messaging

import (
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// EventMessage is the JSON frame pushed to websocket clients
type EventMessage struct {
	Key string    `json:"key"`
	Op  kv.Op     `json:"op"`
	At  time.Time `json:"at"`
}

// EventClient is one websocket connection following a profile's storage events.
type EventClient struct {
	Conn      *websocket.Conn
	ProfileID string
	events    chan kv.Event
	broker    Broadcaster
}

// NewEventClient subscribes conn to the events of profileID
func NewEventClient(conn *websocket.Conn, profileID string, broker Broadcaster) *EventClient {
	return &EventClient{
		Conn:      conn,
		ProfileID: profileID,
		events:    broker.Subscribe(profileID),
		broker:    broker,
	}
}

// Serve pumps events to the connection until either side goes away. Blocks.
func (c *EventClient) Serve() {
	done := make(chan struct{})
	go c.readPump(done)
	c.writePump(done)
}

// readPump only exists to process control frames and notice closure.
func (c *EventClient) readPump(done chan struct{}) {
	defer close(done)
	c.Conn.SetReadLimit(512)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *EventClient) writePump(done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.broker.Unsubscribe(c.events, c.ProfileID)
		c.Conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-c.events:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(EventMessage{Key: ev.Key, Op: ev.Op, At: ev.At}); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
