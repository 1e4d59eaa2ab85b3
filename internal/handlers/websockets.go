package handlers

import (
	"net/http"
	"time"

	"roadwatch/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Subscribers is the part of the hub the viewer endpoint needs.
type Subscribers interface {
	Register(conn *websocket.Conn)
	Unregister(conn *websocket.Conn)
}

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewWebsocketHandler subscribes the caller to published results. Viewers
// only listen; anything they send is discarded.
func ViewWebsocketHandler(hub Subscribers, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warning("WebSocket upgrade error: %v", err)
			return
		}
		connection.SetReadLimit(512)
		connection.SetReadDeadline(time.Now().Add(pongWait))
		connection.SetPongHandler(func(string) error {
			connection.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		hub.Register(connection)
		defer hub.Unregister(connection)

		done := make(chan struct{})
		defer close(done)
		go keepAlive(connection, done)

		logger.Info("Viewer connected from %s", r.RemoteAddr)

		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				logger.Info("Viewer disconnected: %v", err)
				return
			}
		}
	}
}

func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

const writeWait = 5 * time.Second
