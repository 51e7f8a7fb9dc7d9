package connection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	t.Run("DefaultSequence", func(t *testing.T) {
		b := NewBackoff()

		// Expected sequence (without jitter): 1s, 2s, 4s, 8s, 16s, 30s, 30s...
		expected := []time.Duration{
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
			8 * time.Second,
			16 * time.Second,
			30 * time.Second,
			30 * time.Second, // Should stay at max
		}

		for i, exp := range expected {
			// Get the base (current) value before adding jitter
			base := b.Current()
			_ = b.Next() // Advance

			// Allow for some floating point imprecision
			if base < exp-time.Millisecond || base > exp+time.Millisecond {
				t.Errorf("Attempt %d: base = %v, want %v", i, base, exp)
			}
		}
	})

	t.Run("Jitter", func(t *testing.T) {
		b := NewBackoff()

		// Collect multiple samples to verify jitter is being applied
		samples := make([]time.Duration, 10)
		for i := range samples {
			samples[i] = b.Peek()
		}

		// All samples should be between 1s and 1.25s (with jitter)
		for i, s := range samples {
			if s < 1*time.Second || s > time.Duration(float64(1*time.Second)*1.25)+time.Millisecond {
				t.Errorf("Sample %d: %v out of expected range [1s, 1.25s]", i, s)
			}
		}

		// At least some samples should be different (jitter should vary)
		allSame := true
		for i := 1; i < len(samples); i++ {
			if samples[i] != samples[0] {
				allSame = false
				break
			}
		}
		if allSame {
			t.Error("All jittered samples are identical - jitter may not be working")
		}
	})

	t.Run("Reset", func(t *testing.T) {
		b := NewBackoff()

		// Advance a few times
		for i := 0; i < 5; i++ {
			b.Next()
		}

		if b.Current() <= InitialBackoff {
			t.Error("Backoff should have increased")
		}

		b.Reset()

		if b.Current() != InitialBackoff {
			t.Errorf("Current() = %v after reset, want %v", b.Current(), InitialBackoff)
		}
		if b.Attempts() != 0 {
			t.Errorf("Attempts() = %d after reset, want 0", b.Attempts())
		}
	})

	t.Run("Attempts", func(t *testing.T) {
		b := NewBackoff()

		if b.Attempts() != 0 {
			t.Errorf("Initial Attempts() = %d, want 0", b.Attempts())
		}

		for i := 1; i <= 5; i++ {
			b.Next()
			if b.Attempts() != i {
				t.Errorf("After %d calls, Attempts() = %d", i, b.Attempts())
			}
		}
	})

	t.Run("CustomConfig", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{
			Initial:    100 * time.Millisecond,
			Max:        500 * time.Millisecond,
			Multiplier: 2.0,
			Jitter:     0, // No jitter for deterministic test
		})

		expected := []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
			500 * time.Millisecond, // Max
			500 * time.Millisecond,
		}

		for i, exp := range expected {
			got := b.Next()
			if got != exp {
				t.Errorf("Attempt %d: got %v, want %v", i, got, exp)
			}
		}
	})
}

func TestManager(t *testing.T) {
	t.Run("InitialState", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil })
		defer m.Close()

		if m.State() != StateDown {
			t.Errorf("Initial state = %v, want StateDown", m.State())
		}
		if m.IsUp() {
			t.Error("IsUp() = true, want false")
		}
	})

	t.Run("SuccessfulConnect", func(t *testing.T) {
		connectCalled := false
		m := NewManager(func(ctx context.Context) error {
			connectCalled = true
			return nil
		})
		defer m.Close()

		var gotRestored []bool
		m.OnLinkUp(func(restored bool) {
			gotRestored = append(gotRestored, restored)
		})

		err := m.Connect(context.Background())
		if err != nil {
			t.Fatalf("Connect() error = %v", err)
		}

		if !connectCalled {
			t.Error("Connect function was not called")
		}
		if len(gotRestored) != 1 || gotRestored[0] {
			t.Errorf("OnLinkUp reported %v, want [false] (first establishment)", gotRestored)
		}
		if m.State() != StateUp {
			t.Errorf("State() = %v, want StateUp", m.State())
		}
	})

	t.Run("FailedConnect", func(t *testing.T) {
		expectedErr := errors.New("connection failed")
		m := NewManager(func(ctx context.Context) error {
			return expectedErr
		})
		defer m.Close()

		err := m.Connect(context.Background())
		if err != expectedErr {
			t.Errorf("Connect() error = %v, want %v", err, expectedErr)
		}
		if m.State() != StateDown {
			t.Errorf("State() = %v, want StateDown", m.State())
		}
	})

	t.Run("AlreadyConnected", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil })
		defer m.Close()

		m.Connect(context.Background())

		err := m.Connect(context.Background())
		if err != ErrAlreadyConnected {
			t.Errorf("Second Connect() error = %v, want ErrAlreadyConnected", err)
		}
	})

	t.Run("Disconnect", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil })
		defer m.Close()

		m.Connect(context.Background())

		var lostCalled bool
		m.OnLinkLost(func() {
			lostCalled = true
		})

		m.Disconnect()

		if !lostCalled {
			t.Error("OnLinkLost callback was not called")
		}
		if m.State() != StateDown {
			t.Errorf("State() = %v, want StateDown (deliberate disconnect)", m.State())
		}
	})

	t.Run("StateChangeCallback", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil })
		defer m.Close()

		var transitions []struct{ from, to State }
		m.OnStateChange(func(from, to State) {
			transitions = append(transitions, struct{ from, to State }{from, to})
		})

		m.Connect(context.Background())
		m.Disconnect()

		expected := []struct{ from, to State }{
			{StateDown, StateConnecting},
			{StateConnecting, StateUp},
			{StateUp, StateDown},
		}

		if len(transitions) != len(expected) {
			t.Fatalf("Got %d transitions, want %d", len(transitions), len(expected))
		}

		for i, exp := range expected {
			if transitions[i].from != exp.from || transitions[i].to != exp.to {
				t.Errorf("Transition %d: got %v to %v, want %v to %v",
					i, transitions[i].from, transitions[i].to, exp.from, exp.to)
			}
		}
	})
}

func TestManagerReconnect(t *testing.T) {
	t.Run("RestoredAfterLoss", func(t *testing.T) {
		var connectCount atomic.Int32
		m := NewManager(func(ctx context.Context) error {
			connectCount.Add(1)
			return nil
		})

		// Shorter backoff to keep the test fast
		m.backoff = NewBackoffWithConfig(BackoffConfig{
			Initial:    20 * time.Millisecond,
			Max:        100 * time.Millisecond,
			Multiplier: 2.0,
			Jitter:     0,
		})

		var mu sync.Mutex
		var gotRestored []bool
		m.OnLinkUp(func(restored bool) {
			mu.Lock()
			gotRestored = append(gotRestored, restored)
			mu.Unlock()
		})

		m.StartReconnectLoop()
		defer m.Close()

		if err := m.Connect(context.Background()); err != nil {
			t.Fatalf("Initial Connect() error = %v", err)
		}

		m.NotifyLinkLost()

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) && !m.IsUp() {
			time.Sleep(5 * time.Millisecond)
		}

		if m.State() != StateUp {
			t.Fatalf("State() = %v, want StateUp after reconnect", m.State())
		}
		if connectCount.Load() < 2 {
			t.Errorf("Connect was only called %d times, want at least 2", connectCount.Load())
		}

		mu.Lock()
		defer mu.Unlock()
		if len(gotRestored) != 2 || gotRestored[0] || !gotRestored[1] {
			t.Errorf("OnLinkUp reported %v, want [false true]", gotRestored)
		}
	})

	t.Run("BackoffOnFailure", func(t *testing.T) {
		var connectCount atomic.Int32
		var mu sync.Mutex
		var attempts []time.Time

		m := NewManager(func(ctx context.Context) error {
			mu.Lock()
			attempts = append(attempts, time.Now())
			mu.Unlock()

			count := connectCount.Add(1)
			if count < 3 {
				return errors.New("not yet")
			}
			return nil // Third attempt succeeds
		})

		m.backoff = NewBackoffWithConfig(BackoffConfig{
			Initial:    50 * time.Millisecond,
			Max:        200 * time.Millisecond,
			Multiplier: 2.0,
			Jitter:     0,
		})

		m.StartReconnectLoop()
		defer m.Close()

		// Start in reconnecting state
		m.mu.Lock()
		m.state = StateReconnecting
		m.mu.Unlock()
		m.triggerReconnect()

		time.Sleep(500 * time.Millisecond)

		mu.Lock()
		attemptsCopy := make([]time.Time, len(attempts))
		copy(attemptsCopy, attempts)
		mu.Unlock()

		if len(attemptsCopy) < 3 {
			t.Fatalf("Expected at least 3 attempts, got %d", len(attemptsCopy))
		}

		// Verify backoff is being applied: the gaps between attempts include
		// the backoff time plus execution time.
		delay1 := attemptsCopy[1].Sub(attemptsCopy[0])
		if delay1 < 30*time.Millisecond {
			t.Errorf("First delay = %v, expected at least 30ms", delay1)
		}

		if m.State() != StateUp {
			t.Errorf("Final state = %v, want StateUp", m.State())
		}
	})

	t.Run("DisabledAutoReconnect", func(t *testing.T) {
		var connectCount atomic.Int32
		m := NewManager(func(ctx context.Context) error {
			connectCount.Add(1)
			return nil
		})
		m.SetAutoReconnect(false)
		m.StartReconnectLoop()
		defer m.Close()

		m.Connect(context.Background())
		m.NotifyLinkLost()

		time.Sleep(100 * time.Millisecond)

		if m.State() != StateDown {
			t.Errorf("State() = %v, want StateDown (no auto-reconnect)", m.State())
		}

		if connectCount.Load() != 1 {
			t.Errorf("Connect called %d times, want 1 (no reconnection)", connectCount.Load())
		}
	})
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDown, "DOWN"},
		{StateConnecting, "CONNECTING"},
		{StateUp, "UP"},
		{StateReconnecting, "RECONNECTING"},
		{StateClosed, "CLOSED"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBackoffSequence(t *testing.T) {
	seq := BackoffSequence()

	if len(seq) != 6 {
		t.Errorf("BackoffSequence() has %d elements, want 6", len(seq))
	}

	if seq[0] != 1*time.Second {
		t.Errorf("First element = %v, want 1s", seq[0])
	}

	if seq[len(seq)-1] != MaxBackoff {
		t.Errorf("Last element = %v, want %v", seq[len(seq)-1], MaxBackoff)
	}
}
