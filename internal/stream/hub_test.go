package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_PublishReachesClient(t *testing.T) {
	h := NewHub()
	conn := dial(t, h)

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	h.Publish("batch", map[string]int{"connections": 10})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev struct {
		Type string         `json:"type"`
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, "batch", ev.Type)
	assert.Equal(t, 10, ev.Data["connections"])
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	h := NewHub()
	conn := dial(t, h)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := NewHub()
	slow := &client{send: make(chan []byte, 1), done: make(chan struct{})}
	require.True(t, h.register(slow))

	h.Publish("a", nil) // заполняет буфер
	assert.Equal(t, 1, h.ClientCount())

	h.Publish("b", nil)
	assert.Equal(t, 0, h.ClientCount())
	select {
	case <-slow.done:
	default:
		t.Fatal("slow client was not stopped")
	}
}

func TestHub_CloseRejectsNewClients(t *testing.T) {
	h := NewHub()
	h.Close()

	c := &client{send: make(chan []byte, 1), done: make(chan struct{})}
	assert.False(t, h.register(c))
	assert.Zero(t, h.ClientCount())
}
