package transport

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeepAliveConfigDefaults(t *testing.T) {
	ka := NewKeepAlive(KeepAliveConfig{}, func(uint32) error { return nil }, nil)
	if ka.config.PingInterval != DefaultPingInterval {
		t.Errorf("PingInterval = %v, want %v", ka.config.PingInterval, DefaultPingInterval)
	}
	if ka.config.PongTimeout != DefaultPongTimeout {
		t.Errorf("PongTimeout = %v, want %v", ka.config.PongTimeout, DefaultPongTimeout)
	}
	if ka.config.MaxMissedPongs != DefaultMaxMissedPongs {
		t.Errorf("MaxMissedPongs = %d, want %d", ka.config.MaxMissedPongs, DefaultMaxMissedPongs)
	}
}

func TestKeepAliveDetectionDelay(t *testing.T) {
	c := DefaultKeepAliveConfig()
	want := 33 * time.Second
	if got := c.DetectionDelay(); got != want {
		t.Errorf("DetectionDelay() = %v, want %v", got, want)
	}
}

func TestKeepAlivePingPong(t *testing.T) {
	var mu sync.Mutex
	var pings []uint32

	var ka *KeepAlive
	ka = NewKeepAlive(
		KeepAliveConfig{
			PingInterval:   20 * time.Millisecond,
			PongTimeout:    10 * time.Millisecond,
			MaxMissedPongs: 3,
		},
		func(seq uint32) error {
			mu.Lock()
			pings = append(pings, seq)
			mu.Unlock()
			// Echo the pong right back.
			ka.PongReceived(seq)
			return nil
		},
		func() { t.Error("timeout fired with a healthy peer") },
	)

	var pongs atomic.Int32
	ka.SetPongReceivedCallback(func(seq uint32, latency time.Duration) {
		pongs.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ka.Start(ctx)
	defer ka.Stop()

	time.Sleep(90 * time.Millisecond)

	mu.Lock()
	nPings := len(pings)
	mu.Unlock()
	if nPings < 3 {
		t.Errorf("sent %d pings, want at least 3", nPings)
	}
	if pongs.Load() < 1 {
		t.Error("pong callback never invoked")
	}

	stats := ka.Stats()
	if stats.MissedPongs != 0 {
		t.Errorf("missed pongs = %d with a healthy peer, want 0", stats.MissedPongs)
	}
	if stats.LastPongTime.IsZero() {
		t.Error("last pong time never recorded")
	}
}

func TestKeepAliveTimeout(t *testing.T) {
	timedOut := make(chan struct{})
	var once sync.Once

	ka := NewKeepAlive(
		KeepAliveConfig{
			PingInterval:   10 * time.Millisecond,
			PongTimeout:    5 * time.Millisecond,
			MaxMissedPongs: 2,
		},
		func(seq uint32) error { return nil }, // Pings vanish; no pongs ever come.
		func() { once.Do(func() { close(timedOut) }) },
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ka.Start(ctx)
	defer ka.Stop()

	select {
	case <-timedOut:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout callback never fired with a silent peer")
	}
}

func TestKeepAliveStopIdempotent(t *testing.T) {
	ka := NewKeepAlive(DefaultKeepAliveConfig(), func(uint32) error { return nil }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ka.Start(ctx)

	if !ka.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	ka.Stop()
	ka.Stop()

	if ka.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}
