// Package log provides structured protocol event logging for CamLink.
//
// Every layer of the stack can emit Events describing frames, decoded
// messages, state changes, and errors, tagged with the link connection ID
// so a capture can be correlated across layers.
//
// Applications choose a sink by implementing Logger or by using one of the
// provided implementations:
//
//   - NoopLogger: discards everything (the default)
//   - SlogAdapter: forwards events to a log/slog logger for console output
//   - FileLogger: writes a CBOR stream of events to a capture file
//   - MultiLogger: fans out to several sinks at once
package log
