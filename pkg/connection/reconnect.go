package connection

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Link errors.
var (
	ErrLinkClosed        = errors.New("link closed")
	ErrReconnectDisabled = errors.New("reconnection disabled")
	ErrConnectTimeout    = errors.New("connection timeout")
	ErrAlreadyConnected  = errors.New("already connected")
	ErrNotConnected      = errors.New("not connected")
)

// connectTimeout bounds a single reconnection attempt.
const connectTimeout = 30 * time.Second

// State represents the telemetry link state.
type State uint8

const (
	// StateDown indicates no active link.
	StateDown State = iota

	// StateConnecting indicates a connection attempt is in progress.
	StateConnecting

	// StateUp indicates an active link.
	StateUp

	// StateReconnecting indicates automatic reconnection is in progress.
	StateReconnecting

	// StateClosed indicates the link manager has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDown:
		return "DOWN"
	case StateConnecting:
		return "CONNECTING"
	case StateUp:
		return "UP"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ConnectFunc is called to establish the underlying link.
// It should return nil on success or an error on failure.
type ConnectFunc func(ctx context.Context) error

// Manager manages the telemetry link lifecycle with automatic reconnection.
//
// The manager distinguishes the link coming up for the FIRST time from the
// link being RESTORED after a loss; consumers that must re-resolve addressing
// on either transition (such as a camera session refreshing its target
// identifiers) subscribe via OnLinkUp.
type Manager struct {
	mu sync.RWMutex

	state State

	backoff *Backoff

	connectFn ConnectFunc

	autoReconnect bool

	// True once the link has come up at least once. Decides whether the
	// next successful connect reports restored=true.
	everConnected bool

	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup

	reconnectCh chan struct{}

	// Callbacks
	onStateChange  func(oldState, newState State)
	onLinkUp       func(restored bool)
	onLinkLost     func()
	onReconnecting func(attempt int, delay time.Duration)
}

// NewManager creates a new link manager.
func NewManager(connectFn ConnectFunc) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		state:         StateDown,
		backoff:       NewBackoff(),
		connectFn:     connectFn,
		autoReconnect: true,
		ctx:           ctx,
		cancel:        cancel,
		reconnectCh:   make(chan struct{}, 1),
	}
}

// State returns the current link state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsUp returns true if the link is currently up.
func (m *Manager) IsUp() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateUp
}

// SetAutoReconnect enables or disables automatic reconnection.
func (m *Manager) SetAutoReconnect(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoReconnect = enabled
}

// Connect brings the link up.
// Returns ErrAlreadyConnected if the link is already up.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateUp {
		m.mu.Unlock()
		return ErrAlreadyConnected
	}
	if m.state == StateClosed {
		m.mu.Unlock()
		return ErrLinkClosed
	}

	oldState := m.state
	m.state = StateConnecting
	m.mu.Unlock()

	m.notifyStateChange(oldState, StateConnecting)

	err := m.connectFn(ctx)

	m.mu.Lock()
	if err != nil {
		m.state = StateDown
		m.mu.Unlock()
		m.notifyStateChange(StateConnecting, StateDown)
		return err
	}

	restored := m.everConnected
	m.state = StateUp
	m.everConnected = true
	m.backoff.Reset()
	m.mu.Unlock()

	m.notifyStateChange(StateConnecting, StateUp)
	m.notifyLinkUp(restored)

	return nil
}

// NotifyLinkLost should be called when loss of the link is detected.
// This triggers automatic reconnection if enabled.
func (m *Manager) NotifyLinkLost() {
	m.mu.Lock()
	if m.state != StateUp {
		m.mu.Unlock()
		return
	}

	oldState := m.state
	autoReconnect := m.autoReconnect

	if autoReconnect {
		m.state = StateReconnecting
	} else {
		m.state = StateDown
	}
	newState := m.state
	m.mu.Unlock()

	m.notifyStateChange(oldState, newState)
	if m.onLinkLost != nil {
		m.onLinkLost()
	}

	if autoReconnect {
		m.triggerReconnect()
	}
}

// Disconnect takes the link down deliberately.
// Unlike NotifyLinkLost, this never triggers reconnection.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	if m.state != StateUp {
		m.mu.Unlock()
		return
	}

	oldState := m.state
	m.state = StateDown
	m.mu.Unlock()

	m.notifyStateChange(oldState, StateDown)
	if m.onLinkLost != nil {
		m.onLinkLost()
	}
}

// StartReconnectLoop starts the background reconnection loop.
// Must be called once before automatic reconnection will work.
func (m *Manager) StartReconnectLoop() {
	m.wg.Add(1)
	go m.reconnectLoop()
}

// Close shuts down the link manager.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}

	oldState := m.state
	m.state = StateClosed
	m.mu.Unlock()

	m.notifyStateChange(oldState, StateClosed)

	m.cancel()
	m.wg.Wait()
}

// triggerReconnect signals that reconnection should be attempted.
func (m *Manager) triggerReconnect() {
	select {
	case m.reconnectCh <- struct{}{}:
	default:
		// Already pending
	}
}

// reconnectLoop runs in a goroutine and handles reconnection attempts.
func (m *Manager) reconnectLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.reconnectCh:
			m.attemptReconnect()
		}
	}
}

// attemptReconnect performs reconnection with backoff until the link is up
// or the manager closes.
func (m *Manager) attemptReconnect() {
	for {
		m.mu.RLock()
		state := m.state
		m.mu.RUnlock()

		if state == StateClosed || state == StateUp {
			return
		}

		delay := m.backoff.Next()
		attempts := m.backoff.Attempts()

		if m.onReconnecting != nil {
			m.onReconnecting(attempts, delay)
		}

		select {
		case <-m.ctx.Done():
			return
		case <-time.After(delay):
		}

		m.mu.Lock()
		if m.state == StateClosed || m.state == StateUp {
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()

		ctx, cancel := context.WithTimeout(m.ctx, connectTimeout)
		err := m.connectFn(ctx)
		cancel()

		if err == nil {
			m.mu.Lock()
			oldState := m.state
			restored := m.everConnected
			m.state = StateUp
			m.everConnected = true
			m.backoff.Reset()
			m.mu.Unlock()

			m.notifyStateChange(oldState, StateUp)
			m.notifyLinkUp(restored)
			return
		}

		// Failed - continue looping with next backoff
	}
}

func (m *Manager) notifyStateChange(oldState, newState State) {
	if m.onStateChange != nil {
		m.onStateChange(oldState, newState)
	}
}

func (m *Manager) notifyLinkUp(restored bool) {
	if m.onLinkUp != nil {
		m.onLinkUp(restored)
	}
}

// OnStateChange sets a callback for state changes.
func (m *Manager) OnStateChange(fn func(oldState, newState State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

// OnLinkUp sets a callback invoked when the link comes up.
// restored is false on the first establishment and true on every
// re-establishment after a loss.
func (m *Manager) OnLinkUp(fn func(restored bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLinkUp = fn
}

// OnLinkLost sets a callback for link loss.
func (m *Manager) OnLinkLost(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLinkLost = fn
}

// OnReconnecting sets a callback for reconnection attempts.
func (m *Manager) OnReconnecting(fn func(attempt int, delay time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReconnecting = fn
}

// BackoffAttempts returns the current number of reconnection attempts.
func (m *Manager) BackoffAttempts() int {
	return m.backoff.Attempts()
}
