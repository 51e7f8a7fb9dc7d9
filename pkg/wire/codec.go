package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder mode for CamLink messages.
// Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for CamLink messages.
var decMode cbor.DecMode

func init() {
	var err error

	// Configure encoder for deterministic output
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical, // Deterministic key ordering
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnix, // Unix timestamps
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Configure decoder to be lenient for forward compatibility
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet, // Ignore duplicate keys (last wins)
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Marshal encodes a value to CBOR bytes.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR bytes into a value.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Encode encodes an envelope to CBOR bytes.
func Encode(env *Envelope) ([]byte, error) {
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}
	return Marshal(env)
}

// Decode decodes CBOR bytes into an envelope.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}
	return &env, nil
}

// EncodeHeartbeat encodes a heartbeat message.
func EncodeHeartbeat(status Status) ([]byte, error) {
	return Encode(&Envelope{Type: TypeHeartbeat, Heartbeat: &Heartbeat{Status: status}})
}

// EncodeSetRequest encodes a set-request message.
func EncodeSetRequest(req *SetRequest) ([]byte, error) {
	return Encode(&Envelope{Type: TypeSetRequest, SetRequest: req})
}

// EncodeSetResponse encodes a set-response message.
func EncodeSetResponse(resp *SetResponse) ([]byte, error) {
	return Encode(&Envelope{Type: TypeSetResponse, SetResponse: resp})
}

// EncodeGetRequest encodes a get-request message.
func EncodeGetRequest(req *GetRequest) ([]byte, error) {
	return Encode(&Envelope{Type: TypeGetRequest, GetRequest: req})
}

// EncodeGetResponse encodes a get-response message.
func EncodeGetResponse(resp *GetResponse) ([]byte, error) {
	return Encode(&Envelope{Type: TypeGetResponse, GetResponse: resp})
}

// EncodePing encodes a ping control message.
func EncodePing(seq uint32) ([]byte, error) {
	return Encode(&Envelope{Type: TypePing, Control: &Control{Sequence: seq}})
}

// EncodePong encodes a pong control message.
func EncodePong(seq uint32) ([]byte, error) {
	return Encode(&Envelope{Type: TypePong, Control: &Control{Sequence: seq}})
}
