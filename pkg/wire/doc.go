// Package wire defines the CamLink protocol messages and their CBOR encoding.
//
// CamLink messages travel over a shared vehicle telemetry link with no
// delivery, ordering, or latency guarantees. Every message is a small CBOR
// map with integer keys wrapped in an envelope carrying a type tag:
//
//	{
//	  1: type,   // uint8: message type
//	  N: body    // one type-specific body map (key depends on type)
//	}
//
// Message kinds:
//   - Heartbeat: periodic accessory status report (accessory -> controller)
//   - SetRequest / SetResponse: write a command channel value
//   - GetRequest / GetResponse: read a command channel value
//   - Ping / Pong: link-level keepalive control messages
//
// The envelope decoder is lenient: unknown message types decode without
// error and are expected to be dropped by the caller, so newer peers can
// add message kinds without breaking older ones.
package wire
