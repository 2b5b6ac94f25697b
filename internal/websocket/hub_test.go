package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub()
	go hub.Run(ctx)
	return hub
}

func connect(hub *Hub, email string) *Client {
	c := &Client{hub: hub, Send: make(chan []byte, 4), Email: email}
	hub.Register <- c
	return c
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		require.True(t, ok, "client channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.Send:
		t.Fatalf("unexpected message %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BroadcastReachesEveryone(t *testing.T) {
	hub := startHub(t)
	a := connect(hub, "a@x.com")
	b := connect(hub, "b@x.com")
	require.Equal(t, 2, hub.ClientCount())

	hub.NotifyMessage(models.AppMessage{ID: "1", To: "all", Content: "hello", Type: models.MessageBroadcast})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.Equal(t, ActionNewMessage, msg.Action)
		payload := msg.Payload.(map[string]interface{})
		assert.Equal(t, "hello", payload["content"])
	}
}

func TestHub_PrivateReachesOnlyRecipient(t *testing.T) {
	hub := startHub(t)
	a := connect(hub, "a@x.com")
	a2 := connect(hub, "a@x.com")
	b := connect(hub, "b@x.com")
	require.Equal(t, 3, hub.ClientCount())

	hub.NotifyMessage(models.AppMessage{ID: "1", To: " A@x.com", Content: "hi", Type: models.MessagePrivate})

	receive(t, a)
	receive(t, a2)
	assertSilent(t, b)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	a := connect(hub, "a@x.com")
	hub.Unregister <- a

	_, ok := <-a.Send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())

	hub.NotifyMessage(models.AppMessage{ID: "1", To: "a@x.com", Content: "late", Type: models.MessagePrivate})
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := startHub(t)
	slow := &Client{hub: hub, Send: make(chan []byte), Email: "slow@x.com"}
	hub.Register <- slow
	fast := connect(hub, "fast@x.com")

	hub.NotifyMessage(models.AppMessage{ID: "1", To: "all", Content: "x", Type: models.MessageBroadcast})
	receive(t, fast)

	assert.Equal(t, 1, hub.ClientCount())
	_, ok := <-slow.Send
	assert.False(t, ok)
}

func TestMessages_Encode(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal(NewErrorMessage("boom"), &msg))
	assert.Equal(t, ActionError, msg.Action)

	require.NoError(t, json.Unmarshal(NewPongMessage(), &msg))
	assert.Equal(t, ActionPong, msg.Action)
}

func TestClient_ReplyOnlyWhileRegistered(t *testing.T) {
	hub := startHub(t)
	a := connect(hub, "a@x.com")
	b := connect(hub, "a@x.com")

	a.Reply(NewPongMessage())
	assert.Equal(t, ActionPong, receive(t, a).Action)
	assertSilent(t, b)

	hub.Unregister <- a
	_, ok := <-a.Send
	require.False(t, ok)
	a.Reply(NewPongMessage())
	assert.Equal(t, 1, hub.ClientCount())
}
