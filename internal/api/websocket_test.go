package api

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, sessionID string, buffer int) *Client {
	return &Client{send: make(chan []byte, buffer), sessionID: sessionID, hub: h}
}

func TestHub_SendToSession(t *testing.T) {
	h := NewHub(zerolog.New(io.Discard))
	a := newTestClient(h, "s1", 1)
	b := newTestClient(h, "s1", 1)
	other := newTestClient(h, "s2", 1)
	h.addClient(a)
	h.addClient(b)
	h.addClient(other)

	assert.Equal(t, 2, h.Watchers("s1"))
	h.SendToSession("s1", Message{Type: "sessionUpdate", SessionID: "s1"})

	for _, c := range []*Client{a, b} {
		select {
		case data := <-c.send:
			var m Message
			require.NoError(t, json.Unmarshal(data, &m))
			assert.Equal(t, "sessionUpdate", m.Type)
		default:
			t.Fatal("watcher did not receive the update")
		}
	}
	assert.Empty(t, other.send)
}

func TestHub_FullBufferDropsUpdate(t *testing.T) {
	h := NewHub(zerolog.New(io.Discard))
	c := newTestClient(h, "s1", 1)
	h.addClient(c)

	h.SendToSession("s1", Message{Type: "first"})
	h.SendToSession("s1", Message{Type: "second"})

	assert.Len(t, c.send, 1)
}

func TestHub_RemoveClient(t *testing.T) {
	h := NewHub(zerolog.New(io.Discard))
	c := newTestClient(h, "s1", 1)
	h.addClient(c)

	h.removeClient(c)
	_, open := <-c.send
	assert.False(t, open, "send channel is closed")
	assert.Equal(t, 0, h.Watchers("s1"))

	// Removing twice must not close the channel again
	assert.NotPanics(t, func() { h.removeClient(c) })
}

func TestHub_RunStopsOnCancel(t *testing.T) {
	h := NewHub(zerolog.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := newTestClient(h, "s1", 1)
	h.register <- c
	require.Eventually(t, func() bool { return h.Watchers("s1") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	_, open := <-c.send
	assert.False(t, open)
	assert.Equal(t, 0, h.Watchers("s1"))

	// Late unregistrations return instead of blocking
	select {
	case h.unregister <- c:
		t.Fatal("nobody should be receiving")
	case <-h.done:
	}
}
