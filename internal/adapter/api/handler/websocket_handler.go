package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "royalchat/internal/infrastructure/websocket"
	"royalchat/pkg/errors"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // You should restrict this in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
	}
}

// HandleWebSocket upgrades the connection and starts its pumps. The
// connection carries no identity until the client sends a join event,
// which binds it to that participant's room.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.ServiceUnavailable("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
