package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outpost/internal/app/ports"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	var m Message
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Clients() == n }, 2*time.Second, 5*time.Millisecond)
}

func TestHub_SendsStateThenEvents(t *testing.T) {
	h := NewHub(func() any { return map[string]int{"hours": 5} }, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	first := read(t, conn)
	assert.Equal(t, "state", first.Type)
	waitClients(t, h, 1)

	h.Broadcast(ports.Event{Seq: 1, Topic: "arrival", Payload: map[string]any{"value": "p2"}})
	got := read(t, conn)
	assert.Equal(t, "event", got.Type)
	require.NotNil(t, got.Event)
	assert.Equal(t, "arrival", got.Event.Topic)
}

func TestHub_TopicFilter(t *testing.T) {
	h := NewHub(nil, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	waitClients(t, h, 1)

	require.NoError(t, conn.WriteJSON(Subscribe{Topics: []string{"win"}}))
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		for _, c := range h.clients {
			return !c.wants("click")
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	h.Broadcast(ports.Event{Seq: 1, Topic: "click"})
	h.Broadcast(ports.Event{Seq: 2, Topic: "win"})
	got := read(t, conn)
	require.NotNil(t, got.Event)
	assert.Equal(t, int64(2), got.Event.Seq)
}

func TestHub_ClientLeaves(t *testing.T) {
	h := NewHub(nil, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv)
	waitClients(t, h, 1)
	require.NoError(t, conn.Close())
	waitClients(t, h, 0)
}
