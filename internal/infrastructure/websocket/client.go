package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"royalchat/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Client represents a single live connection. It carries no identity until
// a join event binds it to a room.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte

	// Set by Manager.JoinRoom, cleared on unregister. Guarded by the
	// manager's lock.
	participantID string

	// True once Unregister has closed Send. Guarded by the manager's
	// lock; checked before every channel send so delivery can never hit
	// a closed channel.
	closed bool
}

// ReadPump reads frames from the connection and hands them to the
// manager's event dispatch. On transport error the connection is
// unregistered, which is the only cleanup a disconnect needs.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Unexpected close: %v", err)
			}
			break
		}

		m.HandleClientMessage(c, frame)
	}
}

// WritePump drains the Send channel onto the connection and keeps it
// alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
