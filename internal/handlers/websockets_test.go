package handlers

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"roadwatch/internal/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHub struct {
	mu         sync.Mutex
	registered []*websocket.Conn
	removed    chan *websocket.Conn
}

func (h *recordingHub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registered = append(h.registered, conn)
}

func (h *recordingHub) Unregister(conn *websocket.Conn) {
	h.removed <- conn
}

func (h *recordingHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.registered)
}

func TestViewWebsocketHandler_RegistersUntilDisconnect(t *testing.T) {
	hub := &recordingHub{removed: make(chan *websocket.Conn, 1)}
	server := httptest.NewServer(ViewWebsocketHandler(hub, logger.Nop()))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return hub.count() == 1 }, time.Second, 5*time.Millisecond)

	client.Close()

	select {
	case conn := <-hub.removed:
		assert.NotNil(t, conn)
	case <-time.After(2 * time.Second):
		t.Fatal("viewer was not unregistered")
	}
}

func TestViewWebsocketHandler_RejectsPlainHTTP(t *testing.T) {
	hub := &recordingHub{removed: make(chan *websocket.Conn, 1)}
	rec := httptest.NewRecorder()

	ViewWebsocketHandler(hub, logger.Nop()).ServeHTTP(rec, httptest.NewRequest("GET", "/ws", nil))

	assert.Equal(t, 400, rec.Code)
	assert.Zero(t, hub.count())
}
