package transport

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func wsPair(t *testing.T) (*WS, *WS) {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	serverSide := make(chan *WS, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		serverSide <- NewWS(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	client := NewWS(conn)
	t.Cleanup(func() { client.Close() })

	server := <-serverSide
	t.Cleanup(func() { server.Close() })

	return client, server
}

func TestWSRoundTrip(t *testing.T) {
	client, server := wsPair(t)

	payload := []byte{0x01, 0x02, 0x03, 0xff}
	if _, err := client.WriteTo(payload, nil); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	buf := make([]byte, 1500)
	n, addr, err := server.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if addr == nil {
		t.Fatalf("expected a peer address")
	}
	if !bytes.Equal(buf[:n], payload) {
		t.Fatalf("datagram corrupted: got %v want %v", buf[:n], payload)
	}
}

func TestWSMessageBoundariesPreserved(t *testing.T) {
	client, server := wsPair(t)

	first := []byte("first datagram")
	second := []byte("second")

	if _, err := client.WriteTo(first, nil); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := client.WriteTo(second, nil); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	buf := make([]byte, 1500)

	n, _, err := server.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(buf[:n], first) {
		t.Fatalf("expected first datagram, got %q", buf[:n])
	}

	n, _, err = server.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(buf[:n], second) {
		t.Fatalf("expected second datagram, got %q", buf[:n])
	}
}
