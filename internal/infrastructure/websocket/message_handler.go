package websocket

import (
	"context"
	"encoding/json"

	"royalchat/pkg/logger"
)

// Wire events. Incoming: join, sendMessage, removeUser. Outgoing:
// receiveMessage (fan-out to both rooms), removed (advisory revocation),
// errorMessage (to the originating connection only).
const (
	EventJoin           = "join"
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
	EventRemoveUser     = "removeUser"
	EventRemoved        = "removed"
	EventError          = "errorMessage"
)

// WSEvent is the frame envelope in both directions.
type WSEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type wsIncoming struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendMessagePayload is the push-path send request. It mirrors the REST
// body exactly: both paths converge on the same use case.
type SendMessagePayload struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Message  string `json:"message"`
	FileURL  string `json:"fileUrl"`
	Type     string `json:"type"`
}

// ChatService is the slice of the chat use case the push path needs.
// Persistence and fan-out both happen behind this call.
type ChatService interface {
	SendFromPush(ctx context.Context, payload SendMessagePayload) error
}

// SetChatService wires the send path. Must be called before the first
// connection is accepted.
func (m *Manager) SetChatService(svc ChatService) {
	m.chatService = svc
}

// HandleClientMessage dispatches one incoming frame. Failures are reported
// to the originating connection as an errorMessage event and never
// terminate the connection.
func (m *Manager) HandleClientMessage(client *Client, frame []byte) {
	var incoming wsIncoming
	if err := json.Unmarshal(frame, &incoming); err != nil {
		m.sendToClient(client, EventError, map[string]string{"error": "Invalid message format"})
		return
	}

	switch incoming.Event {
	case EventJoin:
		m.handleJoin(client, incoming.Data)

	case EventSendMessage:
		m.handleSendMessage(client, incoming.Data)

	case EventRemoveUser:
		m.handleRemoveUser(incoming.Data)

	default:
		logger.Warn("Unknown event %q from client", incoming.Event)
		m.sendToClient(client, EventError, map[string]string{"error": "Unknown event type"})
	}
}

func (m *Manager) handleJoin(client *Client, data json.RawMessage) {
	var participantID string
	if err := json.Unmarshal(data, &participantID); err != nil || participantID == "" {
		m.sendToClient(client, EventError, map[string]string{"error": "Invalid join payload"})
		return
	}

	m.JoinRoom(client, participantID)
}

func (m *Manager) handleSendMessage(client *Client, data json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		m.sendToClient(client, EventError, map[string]string{"error": "Invalid send payload"})
		return
	}

	if m.chatService == nil {
		logger.Error("sendMessage received before chat service was wired")
		m.sendToClient(client, EventError, map[string]string{"error": "Chat service unavailable"})
		return
	}

	if err := m.chatService.SendFromPush(context.Background(), payload); err != nil {
		logger.Warn("Push send from %s failed: %v", payload.Sender, err)
		m.sendToClient(client, EventError, map[string]string{"error": "Failed to send message"})
	}
}

func (m *Manager) handleRemoveUser(data json.RawMessage) {
	var participantID string
	if err := json.Unmarshal(data, &participantID); err != nil || participantID == "" {
		return
	}

	// Advisory only: the client is told it was revoked, the connection
	// is left open.
	m.Publish(participantID, EventRemoved, nil)
}
