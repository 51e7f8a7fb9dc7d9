package log

// Logger receives CamLink protocol events from the transport and camera
// layers.
type Logger interface {
	// Log records one protocol event. Called from transport read loops and
	// session callbacks, so implementations must be safe for concurrent use
	// and must not block for long.
	Log(event Event)
}

// NoopLogger drops every event. It is the default when no logger is
// configured and is usable as a zero value.
type NoopLogger struct{}

func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
