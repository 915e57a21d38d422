package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"

	"royalchat/pkg/logger"
)

// Manager is the presence registry: it maps participant identities to live
// connections so events can be pushed to the right sockets. A participant
// may hold several connections at once (one per device or tab); all of them
// receive events published to that participant's room. Membership is
// rebuilt from scratch on every connect, nothing is persisted.
type Manager struct {
	rooms map[string]map[*Client]bool
	mutex sync.RWMutex

	rdb       *redis.Client
	bridgeCtx context.Context

	chatService ChatService
}

const bridgeChannel = "chat:events"

// bridgeEnvelope carries a published frame between processes over Redis.
type bridgeEnvelope struct {
	Room  string          `json:"room"`
	Frame json.RawMessage `json:"frame"`
}

func NewManager() *Manager {
	return &Manager{
		rooms: make(map[string]map[*Client]bool),
	}
}

// JoinRoom binds a connection to the room named by participantID. Until a
// connection joins it receives nothing. A joined connection may rebind to
// another room; its send channel stays open across the move.
func (m *Manager) JoinRoom(client *Client, participantID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if client.closed {
		return
	}

	if client.participantID != "" && client.participantID != participantID {
		m.removeLocked(client)
	}

	client.participantID = participantID
	if m.rooms[participantID] == nil {
		m.rooms[participantID] = make(map[*Client]bool)
	}
	m.rooms[participantID][client] = true

	logger.Info("Client joined room %s (%d connections)", participantID, len(m.rooms[participantID]))
}

// Unregister removes a connection from its room and closes its send
// channel. Called by the read pump when the transport detects a
// disconnect; no explicit leave is required. Only Unregister closes Send,
// a rebind never does.
func (m *Manager) Unregister(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.removeLocked(client)

	if !client.closed {
		client.closed = true
		close(client.Send)
	}
}

func (m *Manager) removeLocked(client *Client) {
	if client.participantID == "" {
		return
	}

	if conns, ok := m.rooms[client.participantID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(m.rooms, client.participantID)
		}
	}
	client.participantID = ""
}

// Publish delivers an event to every connection joined under
// participantID. No connections joined models "offline": the event is
// silently dropped, never an error. With the Redis bridge enabled the
// frame takes a round trip through Redis so every process delivers it to
// its own local connections.
func (m *Manager) Publish(participantID, event string, data interface{}) {
	frame, err := json.Marshal(WSEvent{Event: event, Data: data})
	if err != nil {
		logger.Error("Failed to encode %s event for room %s: %v", event, participantID, err)
		return
	}

	if m.rdb != nil {
		envelope, _ := json.Marshal(bridgeEnvelope{Room: participantID, Frame: frame})
		if err := m.rdb.Publish(m.bridgeCtx, bridgeChannel, envelope).Err(); err != nil {
			logger.Error("Redis publish failed for room %s: %v", participantID, err)
		}
		return
	}

	m.deliverLocal(participantID, frame)
}

// deliverLocal sends under the read lock: Unregister closes Send under the
// write lock, so a send here can never hit a closed channel.
func (m *Manager) deliverLocal(participantID string, frame []byte) {
	var slow []*Client

	m.mutex.RLock()
	for client := range m.rooms[participantID] {
		select {
		case client.Send <- frame:
		default:
			slow = append(slow, client)
		}
	}
	m.mutex.RUnlock()

	// Slow consumers: drop the connection rather than block fan-out to
	// everyone else. Done after releasing the read lock because
	// Unregister needs the write lock.
	for _, client := range slow {
		m.Unregister(client)
		client.Conn.Close()
	}
}

// sendToClient targets one connection only, bypassing rooms. Used for
// error events that must not reach the participant's other devices.
func (m *Manager) sendToClient(client *Client, event string, data interface{}) {
	frame, err := json.Marshal(WSEvent{Event: event, Data: data})
	if err != nil {
		logger.Error("Failed to encode %s event: %v", event, err)
		return
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if client.closed {
		return
	}

	select {
	case client.Send <- frame:
	default:
	}
}

// RoomSize reports how many connections are joined under participantID.
func (m *Manager) RoomSize(participantID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms[participantID])
}
