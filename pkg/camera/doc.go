// Package camera implements the control-plane session for a CamLink
// camera accessory.
//
// The accessory is reachable only over an unreliable, fire-and-forget
// telemetry link shared with other traffic. Session makes that link behave
// like a reliable session by combining three pieces of state-machine logic:
//
//   - Liveness monitoring: periodic heartbeats report the accessory status;
//     a rearmable watchdog forces DISCONNECTED when heartbeats stop for
//     HeartbeatTimeout.
//   - Command correlation: each outstanding set/get request is matched to
//     its eventual response by command channel; unmatched and late
//     responses are dropped, and all pending work is purged on disconnect.
//   - Command sequencing: StartRecording and StopRecording express
//     dependent command chains (power on, switch mode, toggle shutter)
//     that short-circuit on the first rejected step.
//
// Heartbeats, responses, watchdog expiry, and link lifecycle events may
// arrive from different goroutines; a single session mutex serializes them.
// Status-change and sequence-failure callbacks are invoked outside the
// mutex, so a continuation may issue the next command of a chain directly.
package camera
