package netchan

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/gamevidea/netcode/transport"
)

func TestListenerRoutesPackets(t *testing.T) {
	srvConn, err := transport.ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("server socket: %v", err)
	}
	defer srvConn.Close()

	cliConn, err := transport.ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("client socket: %v", err)
	}
	defer cliConn.Close()

	srvAddr := srvConn.LocalAddr().(*net.UDPAddr)
	cliAddr := cliConn.LocalAddr().(*net.UDPAddr)

	listener := NewListener(srvConn, nil)

	var oobPayloads [][]byte
	listener.HandleOOB(func(addr net.Addr, payload []byte) {
		cp := make([]byte, len(payload))
		copy(cp, payload)
		oobPayloads = append(oobPayloads, cp)
	})

	// Connectionless handshake first, the way a client discovers a server.
	if err := OutOfBandPrint(cliConn, srvAddr, "getchallenge"); err != nil {
		t.Fatalf("out-of-band send failed: %v", err)
	}

	if err := srvConn.SetPollDeadline(2 * time.Second); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	ch, payload, err := listener.Poll(0)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if ch != nil || payload != nil {
		t.Fatalf("out-of-band packet leaked into the sequenced path")
	}
	if len(oobPayloads) != 1 || !bytes.Equal(oobPayloads[0], []byte("getchallenge")) {
		t.Fatalf("out-of-band handler got %v", oobPayloads)
	}

	// After the handshake the server registers a channel for the client.
	srvChan := NewChannel(RoleServer, srvConn, cliAddr, 777, 0)
	listener.Register(cliAddr, srvChan)

	cliChan := NewChannel(RoleClient, cliConn, srvAddr, 777, 0)

	want := []byte("tick payload")
	if err := cliChan.Transmit(want, 0); err != nil {
		t.Fatalf("transmit failed: %v", err)
	}

	if err := srvConn.SetPollDeadline(2 * time.Second); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	ch, payload, err = listener.Poll(0)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if ch != srvChan {
		t.Fatalf("payload routed to the wrong channel")
	}
	if !bytes.Equal(payload, want) {
		t.Fatalf("payload corrupted: got %q want %q", payload, want)
	}
}

func TestListenerDropsUnknownPeers(t *testing.T) {
	srvConn, err := transport.ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("server socket: %v", err)
	}
	defer srvConn.Close()

	cliConn, err := transport.ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("client socket: %v", err)
	}
	defer cliConn.Close()

	srvAddr := srvConn.LocalAddr().(*net.UDPAddr)
	listener := NewListener(srvConn, nil)

	cliChan := NewChannel(RoleClient, cliConn, srvAddr, 1, 0)
	if err := cliChan.Transmit([]byte("hi"), 0); err != nil {
		t.Fatalf("transmit failed: %v", err)
	}

	if err := srvConn.SetPollDeadline(2 * time.Second); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	ch, payload, err := listener.Poll(0)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if ch != nil || payload != nil {
		t.Fatalf("packet from unregistered peer was delivered")
	}
}
