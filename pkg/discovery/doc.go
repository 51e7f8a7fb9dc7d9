// Package discovery provides mDNS discovery of telemetry bridges.
//
// Telemetry bridges that expose a CamLink endpoint advertise a
// "_camlink._tcp" service on the local network. The TXT record carries the
// addressing identifiers a controller needs to reach the camera accessory
// behind the bridge (system ID and component ID) plus the protocol version.
//
// A controller browses for bridges and picks one; the resolved address
// becomes the stream the transport layer frames over, and the TXT
// identifiers seed the camera session's request targeting.
package discovery
