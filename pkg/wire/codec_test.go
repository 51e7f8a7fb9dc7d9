package wire

import (
	"testing"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
	}{
		{
			name: "heartbeat",
			env: Envelope{
				Type:      TypeHeartbeat,
				Heartbeat: &Heartbeat{Status: StatusRecording},
			},
		},
		{
			name: "set request",
			env: Envelope{
				Type: TypeSetRequest,
				SetRequest: &SetRequest{
					TargetSystem:    1,
					TargetComponent: 154,
					CommandID:       CommandPower,
					Value:           PowerOn,
				},
			},
		},
		{
			name: "set response",
			env: Envelope{
				Type:        TypeSetResponse,
				SetResponse: &SetResponse{CommandID: CommandShutter, Result: ResultSuccess},
			},
		},
		{
			name: "get request",
			env: Envelope{
				Type: TypeGetRequest,
				GetRequest: &GetRequest{
					TargetSystem:    1,
					TargetComponent: 154,
					CommandID:       CommandCaptureMode,
				},
			},
		},
		{
			name: "get response",
			env: Envelope{
				Type:        TypeGetResponse,
				GetResponse: &GetResponse{CommandID: CommandCaptureMode, Value: CaptureModeVideo},
			},
		},
		{
			name: "ping",
			env: Envelope{
				Type:    TypePing,
				Control: &Control{Sequence: 42},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(&tt.env)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}

			got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}

			if got.Type != tt.env.Type {
				t.Errorf("Type = %v, want %v", got.Type, tt.env.Type)
			}

			switch tt.env.Type {
			case TypeHeartbeat:
				if got.Heartbeat == nil || got.Heartbeat.Status != tt.env.Heartbeat.Status {
					t.Errorf("Heartbeat = %+v, want %+v", got.Heartbeat, tt.env.Heartbeat)
				}
			case TypeSetRequest:
				if got.SetRequest == nil || *got.SetRequest != *tt.env.SetRequest {
					t.Errorf("SetRequest = %+v, want %+v", got.SetRequest, tt.env.SetRequest)
				}
			case TypeSetResponse:
				if got.SetResponse == nil || *got.SetResponse != *tt.env.SetResponse {
					t.Errorf("SetResponse = %+v, want %+v", got.SetResponse, tt.env.SetResponse)
				}
			case TypeGetRequest:
				if got.GetRequest == nil || *got.GetRequest != *tt.env.GetRequest {
					t.Errorf("GetRequest = %+v, want %+v", got.GetRequest, tt.env.GetRequest)
				}
			case TypeGetResponse:
				if got.GetResponse == nil || *got.GetResponse != *tt.env.GetResponse {
					t.Errorf("GetResponse = %+v, want %+v", got.GetResponse, tt.env.GetResponse)
				}
			case TypePing:
				if got.Control == nil || got.Control.Sequence != tt.env.Control.Sequence {
					t.Errorf("Control = %+v, want %+v", got.Control, tt.env.Control)
				}
			}
		})
	}
}

func TestEncodeMismatchedBody(t *testing.T) {
	// Type tag says heartbeat but no body is set.
	_, err := Encode(&Envelope{Type: TypeHeartbeat})
	if err == nil {
		t.Fatal("Encode() should fail for envelope without body")
	}
}

func TestDecodeUnknownTypeTolerated(t *testing.T) {
	// A future message type must decode without error so callers can drop it.
	data, err := Marshal(map[int]any{1: 200})
	if err != nil {
		t.Fatal(err)
	}

	env, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if env.Type != MessageType(200) {
		t.Errorf("Type = %d, want 200", env.Type)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte{0xff, 0x00, 0x13}); err == nil {
		t.Error("Decode() should fail on malformed CBOR")
	}
}

func TestStatusIsActive(t *testing.T) {
	tests := []struct {
		status Status
		active bool
	}{
		{StatusDisconnected, false},
		{StatusIncompatible, false},
		{StatusConnected, true},
		{StatusRecording, true},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, want %v", got, tt.active)
			}
		})
	}
}

func TestEnumStrings(t *testing.T) {
	if got := CommandShutter.String(); got != "SHUTTER" {
		t.Errorf("CommandShutter.String() = %q", got)
	}
	if got := StatusRecording.String(); got != "RECORDING" {
		t.Errorf("StatusRecording.String() = %q", got)
	}
	if got := ResultSuccess.String(); got != "SUCCESS" {
		t.Errorf("ResultSuccess.String() = %q", got)
	}
	if got := Command(99).String(); got != "UNKNOWN" {
		t.Errorf("Command(99).String() = %q", got)
	}
	if got := TypeSetRequest.String(); got != "set-request" {
		t.Errorf("TypeSetRequest.String() = %q", got)
	}
}
