package wire

import (
	"fmt"
)

// MessageType discriminates envelope bodies.
type MessageType uint8

const (
	// TypeHeartbeat is a periodic accessory status report.
	TypeHeartbeat MessageType = 1

	// TypeSetRequest writes a value to a command channel.
	TypeSetRequest MessageType = 2

	// TypeSetResponse acknowledges a set-request.
	TypeSetResponse MessageType = 3

	// TypeGetRequest reads a value from a command channel.
	TypeGetRequest MessageType = 4

	// TypeGetResponse answers a get-request.
	TypeGetResponse MessageType = 5

	// TypePing is a link-level liveness probe.
	TypePing MessageType = 6

	// TypePong answers a ping.
	TypePong MessageType = 7
)

// String returns the message type name.
func (t MessageType) String() string {
	switch t {
	case TypeHeartbeat:
		return "heartbeat"
	case TypeSetRequest:
		return "set-request"
	case TypeSetResponse:
		return "set-response"
	case TypeGetRequest:
		return "get-request"
	case TypeGetResponse:
		return "get-response"
	case TypePing:
		return "ping"
	case TypePong:
		return "pong"
	default:
		return "unknown"
	}
}

// Envelope wraps exactly one CamLink message with its type tag.
//
// CBOR encoding:
//
//	{
//	  1: type,         // uint8
//	  2..8: body       // one body pointer, key matches the type tag offset
//	}
type Envelope struct {
	Type        MessageType  `cbor:"1,keyasint"`
	Heartbeat   *Heartbeat   `cbor:"2,keyasint,omitempty"`
	SetRequest  *SetRequest  `cbor:"3,keyasint,omitempty"`
	SetResponse *SetResponse `cbor:"4,keyasint,omitempty"`
	GetRequest  *GetRequest  `cbor:"5,keyasint,omitempty"`
	GetResponse *GetResponse `cbor:"6,keyasint,omitempty"`
	Control     *Control     `cbor:"7,keyasint,omitempty"`
}

// Validate checks that the envelope carries the body its type tag announces.
// Unknown types validate successfully with no body; callers drop them.
func (e *Envelope) Validate() error {
	switch e.Type {
	case TypeHeartbeat:
		if e.Heartbeat == nil {
			return fmt.Errorf("heartbeat envelope without body")
		}
	case TypeSetRequest:
		if e.SetRequest == nil {
			return fmt.Errorf("set-request envelope without body")
		}
	case TypeSetResponse:
		if e.SetResponse == nil {
			return fmt.Errorf("set-response envelope without body")
		}
	case TypeGetRequest:
		if e.GetRequest == nil {
			return fmt.Errorf("get-request envelope without body")
		}
	case TypeGetResponse:
		if e.GetResponse == nil {
			return fmt.Errorf("get-response envelope without body")
		}
	case TypePing, TypePong:
		if e.Control == nil {
			return fmt.Errorf("%s envelope without body", e.Type)
		}
	}
	return nil
}

// Heartbeat is the periodic liveness message from the accessory.
//
// CBOR encoding:
//
//	{
//	  1: status  // uint8
//	}
type Heartbeat struct {
	Status Status `cbor:"1,keyasint"`
}

// SetRequest writes a value to a command channel on the accessory.
//
// CBOR encoding:
//
//	{
//	  1: targetSystem,     // uint8
//	  2: targetComponent,  // uint8
//	  3: commandId,        // uint8
//	  4: value             // uint8
//	}
type SetRequest struct {
	TargetSystem    uint8   `cbor:"1,keyasint"`
	TargetComponent uint8   `cbor:"2,keyasint"`
	CommandID       Command `cbor:"3,keyasint"`
	Value           uint8   `cbor:"4,keyasint"`
}

// SetResponse acknowledges a set-request. Result 1 denotes success.
//
// CBOR encoding:
//
//	{
//	  1: commandId,  // uint8
//	  2: result      // uint8: 1=success
//	}
type SetResponse struct {
	CommandID Command `cbor:"1,keyasint"`
	Result    Result  `cbor:"2,keyasint"`
}

// GetRequest reads a value from a command channel on the accessory.
//
// CBOR encoding:
//
//	{
//	  1: targetSystem,     // uint8
//	  2: targetComponent,  // uint8
//	  3: commandId         // uint8
//	}
type GetRequest struct {
	TargetSystem    uint8   `cbor:"1,keyasint"`
	TargetComponent uint8   `cbor:"2,keyasint"`
	CommandID       Command `cbor:"3,keyasint"`
}

// GetResponse answers a get-request with the channel's current value.
//
// CBOR encoding:
//
//	{
//	  1: commandId,  // uint8
//	  2: value       // uint8
//	}
type GetResponse struct {
	CommandID Command `cbor:"1,keyasint"`
	Value     uint8   `cbor:"2,keyasint"`
}

// Control is the body for link-level ping/pong messages.
//
// CBOR encoding:
//
//	{
//	  1: sequence  // uint32
//	}
type Control struct {
	Sequence uint32 `cbor:"1,keyasint"`
}
