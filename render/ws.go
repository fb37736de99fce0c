package render

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketSink streams snapshots as JSON messages over a WebSocket
// connection, one message per snapshot.
type WebSocketSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// DialWebSocket connects to a WebSocket endpoint (ws:// or wss:// URL)
// and returns a sink writing to it.
func DialWebSocket(url string) (*WebSocketSink, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("render: dial %s: %w", url, err)
	}
	return &WebSocketSink{conn: conn}, nil
}

// NewWebSocketSink wraps an existing connection.
func NewWebSocketSink(conn *websocket.Conn) *WebSocketSink {
	return &WebSocketSink{conn: conn}
}

// Publish writes the snapshot as one JSON text message.
func (s *WebSocketSink) Publish(snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.WriteJSON(snapshot); err != nil {
		return fmt.Errorf("render: websocket write: %w", err)
	}
	return nil
}

// Close sends a close frame and tears down the connection.
func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return s.conn.Close()
}
