package main

import (
	"io"
	"net"
	"sync"
	"testing"

	"github.com/camlink-project/camlink-go/pkg/transport"
)

func TestControllerSendAcrossReconnects(t *testing.T) {
	ctl := &controller{}

	if err := ctl.Send([]byte{0x01}); err != transport.ErrConnClosed {
		t.Fatalf("Send() with no connection = %v, want ErrConnClosed", err)
	}

	// The reconnect loop replaces the connection while interactive commands
	// and session continuations keep sending. Sends must always hit either
	// the old or the new connection, never a torn pointer.
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				_ = ctl.Send([]byte{0x01})
			}
		}
	}()

	for i := 0; i < 10; i++ {
		local, remote := net.Pipe()
		go func() { _, _ = io.Copy(io.Discard, remote) }()

		conn := transport.NewConn(local, nil, transport.ConnConfig{DisableKeepAlive: true})
		t.Cleanup(func() { _ = conn.Close() })

		old := ctl.conn.Load()
		ctl.conn.Store(conn)
		if old != nil {
			_ = old.Close()
		}
	}

	close(done)
	wg.Wait()
}
