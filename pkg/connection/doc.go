// Package connection provides telemetry link lifecycle management.
//
// This package handles:
//   - Exponential backoff for reconnection attempts
//   - Jitter to prevent thundering herd
//   - Link state tracking
//   - Automatic reconnection on link loss
//   - First-establishment vs restoration reporting
//
// # Reconnection Strategy
//
// When the telemetry link is lost, the controller uses exponential backoff:
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s
//  3. Maximum delay: 30 seconds
//  4. Continue at 30s until successful
//  5. Reset to 1s on successful reconnection
//
// # Jitter
//
// To prevent thundering herd when multiple controllers reconnect:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// # Establishment vs Restoration
//
// The OnLinkUp callback reports whether the link came up for the first time
// or was restored after a loss. Both transitions require consumers to
// re-resolve anything they cached from the link (the camera session refreshes
// its target system and component identifiers on either one).
package connection
