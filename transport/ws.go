package transport

import (
	"net"
	"sync"

	"github.com/gorilla/websocket"
)

// WS adapts an established websocket connection to the Datagram interface:
// every binary websocket message carries exactly one datagram. The peer is
// fixed at upgrade time, so the addr passed to WriteTo is ignored.
type WS struct {
	conn *websocket.Conn

	// gorilla allows only one concurrent writer per connection.
	mu sync.Mutex
}

func NewWS(conn *websocket.Conn) *WS {
	return &WS{conn: conn}
}

func (w *WS) WriteTo(p []byte, _ net.Addr) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}

	return len(p), nil
}

func (w *WS) ReadFrom(p []byte) (int, net.Addr, error) {
	for {
		kind, data, err := w.conn.ReadMessage()
		if err != nil {
			return 0, nil, err
		}

		// Text and control frames are not datagrams.
		if kind != websocket.BinaryMessage {
			continue
		}

		n := copy(p, data)
		return n, w.conn.RemoteAddr(), nil
	}
}

// Close closes the underlying websocket connection.
func (w *WS) Close() error {
	return w.conn.Close()
}
