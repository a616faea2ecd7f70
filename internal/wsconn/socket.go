// Package wsconn wraps a single websocket connection behind a narrow
// interface so the rest of the module never imports gorilla/websocket
// directly.
package wsconn

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Socket is the narrow surface the gateway needs from a live connection.
//
//go:generate mockgen -destination=mock_socket.go -package=wsconn . Socket
type Socket interface {
	WriteJSON(v any) error
	ReadJSON(v any) error
	WriteControl(messageType int, deadline time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool {
		// No origin restriction in the baseline; extension point for callers
		// that front this with an authenticating reverse proxy.
		return true
	},
	EnableCompression: true,
}

// WebSocket is the gorilla/websocket-backed implementation of Socket.
type WebSocket struct {
	conn *websocket.Conn
}

// Upgrade upgrades the HTTP request to a websocket connection.
func Upgrade(w http.ResponseWriter, r *http.Request) (*WebSocket, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	conn.EnableWriteCompression(true)
	return &WebSocket{conn: conn}, nil
}

// WriteJSON serializes v and writes it as a single text frame.
func (s *WebSocket) WriteJSON(v any) error {
	return s.conn.WriteJSON(v)
}

// ReadJSON blocks until a text frame arrives and unmarshals it into v.
func (s *WebSocket) ReadJSON(v any) error {
	return s.conn.ReadJSON(v)
}

// WriteControl sends a low-level control frame (used for liveness PINGs).
func (s *WebSocket) WriteControl(messageType int, deadline time.Time) error {
	return s.conn.WriteControl(messageType, nil, deadline)
}

// SetPongHandler installs the callback invoked when a PONG control frame
// arrives on this connection.
func (s *WebSocket) SetPongHandler(h func(appData string) error) {
	s.conn.SetPongHandler(h)
}

// Close closes the underlying network connection.
func (s *WebSocket) Close() error {
	return s.conn.Close()
}

// PingMessage/PongMessage re-export the control frame constants so callers
// don't need to import gorilla/websocket themselves.
const (
	PingMessage = websocket.PingMessage
	PongMessage = websocket.PongMessage
)
