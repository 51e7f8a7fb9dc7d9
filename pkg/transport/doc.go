// Package transport provides the CamLink link-layer transport.
//
// The transport layer handles:
//   - Length-prefixed message framing over a stream connection
//   - Decoding inbound frames and dispatching them to a session handler
//   - Link-level ping/pong keepalive
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      CBOR Messages             │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│   Telemetry bridge stream      │
//	│   (TCP, serial, pipe, ...)     │
//	└────────────────────────────────┘
//
// The telemetry bridge multiplexes camera traffic with other vehicle
// traffic; this package only sees the camera byte stream. Link liveness
// (is the bridge reachable) is monitored here with ping/pong; accessory
// liveness (is the camera alive behind the bridge) is the camera session's
// heartbeat watchdog and is a separate concern.
//
// # Keep-Alive
//
// Link liveness is monitored using ping/pong messages:
//   - Ping interval: 10 seconds
//   - Pong timeout: 3 seconds
//   - Max missed pongs: 3
package transport
