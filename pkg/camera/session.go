package camera

import (
	"errors"
	"sync"
	"time"

	"github.com/camlink-project/camlink-go/pkg/log"
	"github.com/camlink-project/camlink-go/pkg/wire"
)

// HeartbeatTimeout is the watchdog window: if no heartbeat arrives within
// this window after the last one, the accessory is declared disconnected.
const HeartbeatTimeout = 5000 * time.Millisecond

// Session errors.
var (
	// ErrNoSender indicates the session was configured without a transport sender.
	ErrNoSender = errors.New("no sender configured")

	// ErrPendingRequest indicates a request is already outstanding for the
	// command channel (RejectPending policy only).
	ErrPendingRequest = errors.New("request already pending for command")
)

// Sender is the interface for handing fully-built outbound messages to the
// telemetry link. Send must not block; the link offers no delivery guarantee.
type Sender interface {
	Send(data []byte) error
}

// SenderFunc adapts a plain function to the Sender interface.
type SenderFunc func(data []byte) error

// Send calls f(data).
func (f SenderFunc) Send(data []byte) error { return f(data) }

// TargetSource provides the addressing identifiers stamped on outgoing
// requests. Implemented by whatever owns the vehicle link state.
type TargetSource interface {
	// TargetSystem returns the system ID of the vehicle carrying the accessory.
	TargetSystem() uint8

	// TargetComponent returns the component ID of the accessory gateway.
	TargetComponent() uint8
}

// SetCallback is invoked exactly once when the matching set-response
// arrives, or never if the pending request is purged on disconnect.
type SetCallback func(cmd wire.Command, success bool)

// GetCallback is invoked exactly once when the matching get-response
// arrives, or never if the pending request is purged on disconnect.
type GetCallback func(cmd wire.Command, value uint8)

// LinkEvent is an upstream telemetry-link lifecycle notification.
type LinkEvent uint8

const (
	// LinkEstablished indicates the telemetry link came up for the first time.
	LinkEstablished LinkEvent = 0

	// LinkRestored indicates the telemetry link came back after a loss.
	LinkRestored LinkEvent = 1

	// LinkLost indicates the telemetry link went down.
	LinkLost LinkEvent = 2
)

// String returns the link event name.
func (e LinkEvent) String() string {
	switch e {
	case LinkEstablished:
		return "ESTABLISHED"
	case LinkRestored:
		return "RESTORED"
	case LinkLost:
		return "LOST"
	default:
		return "UNKNOWN"
	}
}

// PendingPolicy controls what happens when a request is issued for a
// command channel that already has an unresolved request outstanding.
type PendingPolicy uint8

const (
	// OverwritePending silently replaces the stored continuation; the
	// earlier one is permanently orphaned and never invoked. This matches
	// the accessory protocol's historical behavior and is the default.
	OverwritePending PendingPolicy = 0

	// RejectPending makes SendSet/SendGet return ErrPendingRequest instead
	// of overwriting.
	RejectPending PendingPolicy = 1
)

// Config configures a camera session.
type Config struct {
	// Sender hands outbound messages to the telemetry link. Required.
	Sender Sender

	// Target provides request addressing. Optional; without it requests
	// carry zero target identifiers until RefreshTarget is possible.
	Target TargetSource

	// Timeout is the heartbeat watchdog window. Default: HeartbeatTimeout.
	Timeout time.Duration

	// Pending selects the duplicate-request policy. Default: OverwritePending.
	Pending PendingPolicy

	// Logger receives protocol events. Default: no logging.
	Logger log.Logger

	// LinkID tags emitted log events. Optional.
	LinkID string
}

// Session is the control-plane session for one camera accessory.
type Session struct {
	mu sync.Mutex

	status wire.Status

	// Pending continuations, one namespace per request kind.
	pendingSet map[wire.Command]SetCallback
	pendingGet map[wire.Command]GetCallback

	// Heartbeat watchdog, owned exclusively by this session.
	watchdog *watchdog
	timeout  time.Duration

	sender Sender
	target TargetSource
	policy PendingPolicy

	// Addressing stamped on outgoing requests, refreshed on link events.
	targetSystem    uint8
	targetComponent uint8

	logger log.Logger
	linkID string

	onStatusChange    func(status wire.Status)
	onSequenceFailure func(reason string)
}

// NewSession creates a session in the DISCONNECTED state.
// The watchdog stays disarmed until the first heartbeat arrives.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Sender == nil {
		return nil, ErrNoSender
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = HeartbeatTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}

	s := &Session{
		status:     wire.StatusDisconnected,
		pendingSet: make(map[wire.Command]SetCallback),
		pendingGet: make(map[wire.Command]GetCallback),
		timeout:    cfg.Timeout,
		sender:     cfg.Sender,
		target:     cfg.Target,
		policy:     cfg.Pending,
		logger:     cfg.Logger,
		linkID:     cfg.LinkID,
	}
	s.watchdog = newWatchdog(s.handleTimeout)

	if s.target != nil {
		s.RefreshTarget()
	}

	return s, nil
}

// Close disarms the watchdog. Pending continuations are not invoked.
func (s *Session) Close() {
	s.watchdog.Stop()
}

// OnStatusChange sets a callback invoked whenever the accessory status
// changes, by heartbeat or by watchdog expiry.
func (s *Session) OnStatusChange(fn func(status wire.Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStatusChange = fn
}

// OnSequenceFailure sets a callback invoked when a dependent command
// sequence aborts because a step was rejected.
func (s *Session) OnSequenceFailure(fn func(reason string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSequenceFailure = fn
}

// Status returns the current accessory status.
func (s *Session) Status() wire.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// IsConnected returns true if the accessory is reachable (connected or
// in an active sub-state such as recording).
func (s *Session) IsConnected() bool {
	return s.Status().IsActive()
}

// IsRecording returns true if the accessory is currently recording.
func (s *Session) IsRecording() bool {
	return s.Status() == wire.StatusRecording
}

// HandleHeartbeat processes an inbound accessory heartbeat.
// It updates the status, purges pending work when the accessory drops out
// of an active state, and rearms the watchdog unconditionally.
func (s *Session) HandleHeartbeat(hb *wire.Heartbeat) {
	if hb == nil {
		return
	}

	s.mu.Lock()
	old := s.status
	changed := hb.Status != s.status
	if changed {
		s.status = hb.Status
		if !hb.Status.IsActive() {
			s.purgePendingLocked()
		}
	}
	// Rearm under the session mutex so a concurrent expiry that already
	// passed its generation check is invalidated before it can act.
	s.watchdog.Reset(s.timeout)
	notify := s.onStatusChange
	s.mu.Unlock()

	if changed {
		s.logStatusChange(old, hb.Status, "heartbeat")
		if notify != nil {
			notify(hb.Status)
		}
	}
}

// handleTimeout is called by the watchdog when no heartbeat arrived within
// the window. Idempotent: a timeout racing a disconnect heartbeat is a no-op,
// and a firing superseded by a heartbeat that rearmed the watchdog while the
// expiry was in flight is discarded by the generation re-check.
func (s *Session) handleTimeout(gen uint64) {
	s.mu.Lock()
	if !s.watchdog.Current(gen) || s.status == wire.StatusDisconnected {
		s.mu.Unlock()
		return
	}
	old := s.status
	s.status = wire.StatusDisconnected
	s.purgePendingLocked()
	notify := s.onStatusChange
	s.mu.Unlock()

	s.logStatusChange(old, wire.StatusDisconnected, "heartbeat timeout")
	if notify != nil {
		notify(wire.StatusDisconnected)
	}
}

// SendSet sends a set-request for the given command channel.
//
// A non-nil callback is stored until the matching response arrives or the
// accessory disconnects. Under the default OverwritePending policy a second
// request for the same channel replaces the stored callback and the earlier
// one is never invoked. A nil callback sends fire-and-forget: nothing is
// stored and a response arriving with no registration is dropped.
func (s *Session) SendSet(cmd wire.Command, value uint8, cb SetCallback) error {
	s.mu.Lock()
	if cb != nil {
		if s.policy == RejectPending {
			if _, exists := s.pendingSet[cmd]; exists {
				s.mu.Unlock()
				return ErrPendingRequest
			}
		}
		s.pendingSet[cmd] = cb
	}
	req := wire.SetRequest{
		TargetSystem:    s.targetSystem,
		TargetComponent: s.targetComponent,
		CommandID:       cmd,
		Value:           value,
	}
	sender := s.sender
	s.mu.Unlock()

	data, err := wire.EncodeSetRequest(&req)
	if err != nil {
		return err
	}
	if err := sender.Send(data); err != nil {
		return err
	}

	s.logMessage(log.DirectionOut, wire.TypeSetRequest, &cmd, &value, nil, nil)
	return nil
}

// SendGet sends a get-request for the given command channel.
// Callback semantics match SendSet, using the get-request namespace.
func (s *Session) SendGet(cmd wire.Command, cb GetCallback) error {
	s.mu.Lock()
	if cb != nil {
		if s.policy == RejectPending {
			if _, exists := s.pendingGet[cmd]; exists {
				s.mu.Unlock()
				return ErrPendingRequest
			}
		}
		s.pendingGet[cmd] = cb
	}
	req := wire.GetRequest{
		TargetSystem:    s.targetSystem,
		TargetComponent: s.targetComponent,
		CommandID:       cmd,
	}
	sender := s.sender
	s.mu.Unlock()

	data, err := wire.EncodeGetRequest(&req)
	if err != nil {
		return err
	}
	if err := sender.Send(data); err != nil {
		return err
	}

	s.logMessage(log.DirectionOut, wire.TypeGetRequest, &cmd, nil, nil, nil)
	return nil
}

// HandleSetResponse resolves the pending set continuation for the response's
// command channel, if one is registered. Unmatched responses are dropped.
func (s *Session) HandleSetResponse(resp *wire.SetResponse) {
	if resp == nil {
		return
	}

	s.mu.Lock()
	cb, ok := s.pendingSet[resp.CommandID]
	if ok {
		delete(s.pendingSet, resp.CommandID)
	}
	s.mu.Unlock()

	s.logMessage(log.DirectionIn, wire.TypeSetResponse, &resp.CommandID, nil, &resp.Result, nil)

	if ok && cb != nil {
		cb(resp.CommandID, resp.Result.IsSuccess())
	}
}

// HandleGetResponse resolves the pending get continuation for the response's
// command channel, if one is registered. Unmatched responses are dropped.
func (s *Session) HandleGetResponse(resp *wire.GetResponse) {
	if resp == nil {
		return
	}

	s.mu.Lock()
	cb, ok := s.pendingGet[resp.CommandID]
	if ok {
		delete(s.pendingGet, resp.CommandID)
	}
	s.mu.Unlock()

	s.logMessage(log.DirectionIn, wire.TypeGetResponse, &resp.CommandID, &resp.Value, nil, nil)

	if ok && cb != nil {
		cb(resp.CommandID, resp.Value)
	}
}

// HandleLinkEvent reacts to telemetry-link lifecycle notifications.
// A (re)established link refreshes the target identifiers stamped on all
// future requests; already-pending continuations are unaffected. Any other
// event is ignored.
func (s *Session) HandleLinkEvent(ev LinkEvent) {
	switch ev {
	case LinkEstablished, LinkRestored:
		s.RefreshTarget()
	}
}

// SetSender replaces the transport sender. Used when the telemetry link is
// re-established over a new connection.
func (s *Session) SetSender(sender Sender) error {
	if sender == nil {
		return ErrNoSender
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
	return nil
}

// RefreshTarget re-reads the target addressing identifiers from the
// configured TargetSource.
func (s *Session) RefreshTarget() {
	if s.target == nil {
		return
	}
	sys := s.target.TargetSystem()
	comp := s.target.TargetComponent()

	s.mu.Lock()
	s.targetSystem = sys
	s.targetComponent = comp
	s.mu.Unlock()
}

// PendingCounts reports the number of unresolved set and get requests.
// Intended for diagnostics.
func (s *Session) PendingCounts() (set, get int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pendingSet), len(s.pendingGet)
}

// purgePendingLocked discards all pending continuations. Purged
// continuations are never invoked, even if a matching response arrives
// later. Caller must hold s.mu.
func (s *Session) purgePendingLocked() {
	clear(s.pendingSet)
	clear(s.pendingGet)
}

// sequenceFailed surfaces a sequence abort to the registered callback.
func (s *Session) sequenceFailed(reason string) {
	s.mu.Lock()
	notify := s.onSequenceFailure
	s.mu.Unlock()

	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		LinkID:    s.linkID,
		Layer:     log.LayerSession,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerSession,
			Message: reason,
			Context: "recording sequence",
		},
	})

	if notify != nil {
		notify(reason)
	}
}

func (s *Session) logStatusChange(old, current wire.Status, reason string) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		LinkID:    s.linkID,
		Direction: log.DirectionIn,
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityAccessory,
			OldState: old.String(),
			NewState: current.String(),
			Reason:   reason,
		},
	})
}

func (s *Session) logMessage(dir log.Direction, typ wire.MessageType, cmd *wire.Command, value *uint8, result *wire.Result, status *wire.Status) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		LinkID:    s.linkID,
		Direction: dir,
		Layer:     log.LayerWire,
		Category:  log.CategoryMessage,
		Message: &log.MessageEvent{
			Type:    typ,
			Command: cmd,
			Value:   value,
			Result:  result,
			Status:  status,
		},
	})
}
