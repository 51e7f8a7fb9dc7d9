package camera

import (
	"github.com/camlink-project/camlink-go/pkg/wire"
)

// Sequence failure reasons surfaced via OnSequenceFailure.
const (
	// ReasonPowerOnRejected: the accessory rejected the power-on step.
	ReasonPowerOnRejected = "unable to power accessory on"

	// ReasonCaptureModeRejected: the accessory rejected the mode switch.
	ReasonCaptureModeRejected = "unable to switch to video mode"
)

// StartRecording runs the dependent command chain that gets the accessory
// recording: power on, switch to video mode, then open the shutter.
//
// Each step waits for the previous step's response and the chain aborts on
// the first rejection, surfacing a sequence failure. The final shutter step
// is fire-and-forget: the transition to RECORDING is confirmed only by a
// later heartbeat, never by this call.
//
// Calling while disconnected or already recording is a silent no-op.
// The returned error reports only a local send failure on the first step.
func (s *Session) StartRecording() error {
	if !s.IsConnected() || s.IsRecording() {
		return nil
	}

	return s.SendSet(wire.CommandPower, wire.PowerOn, func(_ wire.Command, ok bool) {
		if !ok {
			s.sequenceFailed(ReasonPowerOnRejected)
			return
		}

		// Powered on; switch to video mode.
		_ = s.SendSet(wire.CommandCaptureMode, wire.CaptureModeVideo, func(_ wire.Command, ok bool) {
			if !ok {
				s.sequenceFailed(ReasonCaptureModeRejected)
				return
			}

			// Open the shutter. No continuation: the status change to
			// RECORDING arrives via heartbeat.
			_ = s.SendSet(wire.CommandShutter, wire.ShutterStart, nil)
		})
	})
}

// StopRecording closes the shutter. Fire-and-forget: the accessory leaving
// RECORDING is confirmed only by a later heartbeat.
//
// Calling while disconnected or not recording is a silent no-op.
func (s *Session) StopRecording() error {
	if !s.IsConnected() || !s.IsRecording() {
		return nil
	}

	return s.SendSet(wire.CommandShutter, wire.ShutterStop, nil)
}
