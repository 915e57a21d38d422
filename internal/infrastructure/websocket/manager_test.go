package websocket

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return &Client{Send: make(chan []byte, 8)}
}

func receiveEvent(t *testing.T, client *Client) WSEvent {
	t.Helper()

	select {
	case frame := <-client.Send:
		var event WSEvent
		require.NoError(t, json.Unmarshal(frame, &event))
		return event
	default:
		t.Fatal("expected a frame on the send channel")
		return WSEvent{}
	}
}

func TestPublishReachesJoinedConnection(t *testing.T) {
	m := NewManager()
	client := newTestClient()
	m.JoinRoom(client, "user-1")

	m.Publish("user-1", EventReceiveMessage, map[string]string{"message": "hi"})

	event := receiveEvent(t, client)
	assert.Equal(t, EventReceiveMessage, event.Event)
}

func TestPublishToOfflineParticipantIsNoOp(t *testing.T) {
	m := NewManager()

	// Nobody joined: must neither error nor panic.
	m.Publish("nobody", EventReceiveMessage, map[string]string{"message": "hi"})

	assert.Zero(t, m.RoomSize("nobody"))
}

func TestMultiDeviceFanOut(t *testing.T) {
	m := NewManager()
	phone := newTestClient()
	laptop := newTestClient()
	m.JoinRoom(phone, "user-1")
	m.JoinRoom(laptop, "user-1")

	require.Equal(t, 2, m.RoomSize("user-1"))

	m.Publish("user-1", EventReceiveMessage, "payload")

	assert.Equal(t, EventReceiveMessage, receiveEvent(t, phone).Event)
	assert.Equal(t, EventReceiveMessage, receiveEvent(t, laptop).Event)
}

func TestPublishIsScopedToRoom(t *testing.T) {
	m := NewManager()
	alice := newTestClient()
	bob := newTestClient()
	m.JoinRoom(alice, "user-1")
	m.JoinRoom(bob, "user-2")

	m.Publish("user-1", EventReceiveMessage, "for alice")

	assert.Len(t, alice.Send, 1)
	assert.Len(t, bob.Send, 0)
}

func TestUnregisterRemovesConnection(t *testing.T) {
	m := NewManager()
	client := newTestClient()
	m.JoinRoom(client, "user-1")

	m.Unregister(client)

	assert.Zero(t, m.RoomSize("user-1"))
	_, open := <-client.Send
	assert.False(t, open, "the send channel is closed on unregister")

	// A second unregister of the same client must be harmless.
	m.Unregister(client)
}

func TestRejoinUnderNewIdentityLeavesOldRoom(t *testing.T) {
	m := NewManager()
	client := newTestClient()
	m.JoinRoom(client, "user-1")
	m.JoinRoom(client, "user-2")

	assert.Zero(t, m.RoomSize("user-1"))
	assert.Equal(t, 1, m.RoomSize("user-2"))
}

func TestPublishAfterRebindStillDelivers(t *testing.T) {
	m := NewManager()
	client := newTestClient()
	m.JoinRoom(client, "user-1")
	m.JoinRoom(client, "user-2")

	// The send channel must survive the move to the new room.
	m.Publish("user-2", EventReceiveMessage, "after rebind")

	event := receiveEvent(t, client)
	assert.Equal(t, EventReceiveMessage, event.Event)

	m.Publish("user-1", EventReceiveMessage, "old room")
	assert.Len(t, client.Send, 0, "the old room no longer reaches the connection")
}

func TestUnregisterAfterRebindClosesOnce(t *testing.T) {
	m := NewManager()
	client := newTestClient()
	m.JoinRoom(client, "user-1")
	m.JoinRoom(client, "user-2")

	m.Unregister(client)

	_, open := <-client.Send
	assert.False(t, open)

	// A join attempt on a disconnected client must not resurrect it.
	m.JoinRoom(client, "user-3")
	assert.Zero(t, m.RoomSize("user-3"))
	m.Publish("user-3", EventReceiveMessage, "nobody home")
}

type recordingChatService struct {
	payloads []SendMessagePayload
	err      error
}

func (s *recordingChatService) SendFromPush(ctx context.Context, payload SendMessagePayload) error {
	s.payloads = append(s.payloads, payload)
	return s.err
}

func TestHandleClientMessageJoinThenSend(t *testing.T) {
	m := NewManager()
	svc := &recordingChatService{}
	m.SetChatService(svc)

	client := newTestClient()
	m.HandleClientMessage(client, []byte(`{"event":"join","data":"user-1"}`))
	require.Equal(t, 1, m.RoomSize("user-1"))

	m.HandleClientMessage(client, []byte(`{"event":"sendMessage","data":{"sender":"user-1","receiver":"admin-1","message":"hello"}}`))

	require.Len(t, svc.payloads, 1)
	assert.Equal(t, "user-1", svc.payloads[0].Sender)
	assert.Equal(t, "admin-1", svc.payloads[0].Receiver)
	assert.Equal(t, "hello", svc.payloads[0].Message)
}

func TestHandleClientMessageMalformedFrame(t *testing.T) {
	m := NewManager()
	client := newTestClient()

	m.HandleClientMessage(client, []byte(`not json`))

	event := receiveEvent(t, client)
	assert.Equal(t, EventError, event.Event)
}

func TestHandleClientMessageUnknownEvent(t *testing.T) {
	m := NewManager()
	client := newTestClient()

	m.HandleClientMessage(client, []byte(`{"event":"teleport","data":null}`))

	event := receiveEvent(t, client)
	assert.Equal(t, EventError, event.Event)
}

func TestSendFailureReportedOnlyToOriginatingConnection(t *testing.T) {
	m := NewManager()
	svc := &recordingChatService{err: assert.AnError}
	m.SetChatService(svc)

	origin := newTestClient()
	other := newTestClient()
	m.HandleClientMessage(origin, []byte(`{"event":"join","data":"user-1"}`))
	m.HandleClientMessage(other, []byte(`{"event":"join","data":"user-1"}`))

	m.HandleClientMessage(origin, []byte(`{"event":"sendMessage","data":{"sender":"user-1","receiver":"admin-1","message":"x"}}`))

	event := receiveEvent(t, origin)
	assert.Equal(t, EventError, event.Event)
	assert.Len(t, other.Send, 0, "error events never reach the participant's other devices")
}

func TestRemoveUserEventIsAdvisory(t *testing.T) {
	m := NewManager()
	client := newTestClient()
	m.JoinRoom(client, "user-1")

	m.HandleClientMessage(newTestClient(), []byte(`{"event":"removeUser","data":"user-1"}`))

	event := receiveEvent(t, client)
	assert.Equal(t, EventRemoved, event.Event)
	assert.Equal(t, 1, m.RoomSize("user-1"), "the connection is not force-closed")
}
