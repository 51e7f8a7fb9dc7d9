package wire

// Status represents the accessory status reported in heartbeats.
// Exactly one status is current at any time; transitions happen only via
// an inbound heartbeat or via the liveness watchdog forcing DISCONNECTED.
type Status uint8

const (
	// StatusDisconnected indicates no accessory is attached or it stopped
	// responding.
	StatusDisconnected Status = 0

	// StatusIncompatible indicates an accessory is attached but speaks an
	// unsupported protocol revision.
	StatusIncompatible Status = 1

	// StatusConnected indicates the accessory is attached and idle.
	StatusConnected Status = 2

	// StatusRecording indicates the accessory is attached and recording.
	StatusRecording Status = 3
)

// IsActive returns true if the accessory is reachable and usable,
// i.e. connected or in an active sub-state such as recording.
func (s Status) IsActive() bool {
	return s == StatusConnected || s == StatusRecording
}

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "DISCONNECTED"
	case StatusIncompatible:
		return "INCOMPATIBLE"
	case StatusConnected:
		return "CONNECTED"
	case StatusRecording:
		return "RECORDING"
	default:
		return "UNKNOWN"
	}
}

// Command identifies a logical command channel on the accessory.
// Distinct commands are independent; the protocol implies no ordering
// between them.
type Command uint8

const (
	// CommandPower toggles accessory power.
	CommandPower Command = 0

	// CommandCaptureMode selects the capture mode (video, photo, burst).
	CommandCaptureMode Command = 1

	// CommandShutter toggles the shutter (start/stop capture).
	CommandShutter Command = 2
)

// String returns the command channel name.
func (c Command) String() string {
	switch c {
	case CommandPower:
		return "POWER"
	case CommandCaptureMode:
		return "CAPTURE_MODE"
	case CommandShutter:
		return "SHUTTER"
	default:
		return "UNKNOWN"
	}
}

// Command channel values understood by the accessory.
const (
	// PowerOn powers the accessory on.
	PowerOn uint8 = 1

	// CaptureModeVideo selects video capture.
	CaptureModeVideo uint8 = 0

	// ShutterStart starts capturing.
	ShutterStart uint8 = 1

	// ShutterStop stops capturing.
	ShutterStop uint8 = 0
)

// Result is the outcome code carried in a set-response.
type Result uint8

const (
	// ResultFailure indicates the accessory rejected the request.
	ResultFailure Result = 0

	// ResultSuccess indicates the accessory accepted the request.
	ResultSuccess Result = 1
)

// IsSuccess returns true if the result denotes success.
func (r Result) IsSuccess() bool {
	return r == ResultSuccess
}

// String returns the result name.
func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "SUCCESS"
	case ResultFailure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}
