package discovery

import (
	"errors"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceType is the service type for CamLink telemetry bridges.
	ServiceType = "_camlink._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default CamLink bridge port.
	DefaultPort = 5760
)

// TXT record key constants.
const (
	// TXTKeySystemID is the target system identifier (required).
	TXTKeySystemID = "sys"

	// TXTKeyComponentID is the target component identifier (optional,
	// defaults to DefaultComponentID).
	TXTKeyComponentID = "comp"

	// TXTKeyVersion is the CamLink protocol version (required).
	TXTKeyVersion = "cl"

	// TXTKeyName is a user-friendly bridge name (optional).
	TXTKeyName = "name"
)

// DefaultComponentID is the component identifier cameras answer on when the
// bridge does not advertise one.
const DefaultComponentID = 154

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("service not found")
	ErrBrowseTimeout       = errors.New("browse timeout")
)

// BridgeInfo describes a telemetry bridge to advertise.
type BridgeInfo struct {
	// Name is a user-friendly bridge name.
	Name string

	// SystemID is the system identifier of the vehicle behind the bridge.
	SystemID uint8

	// ComponentID is the component identifier the camera answers on.
	// 0 selects DefaultComponentID.
	ComponentID uint8

	// Version is the CamLink protocol version, e.g. "1.0".
	Version string

	// Port is the bridge's CamLink port. 0 selects DefaultPort.
	Port uint16
}

// BridgeService describes a discovered telemetry bridge.
type BridgeService struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Host is the bridge's hostname.
	Host string

	// Port is the bridge's CamLink port.
	Port uint16

	// Addresses are the bridge's resolved IP addresses.
	Addresses []string

	// SystemID is the system identifier of the vehicle behind the bridge.
	SystemID uint8

	// ComponentID is the component identifier the camera answers on.
	ComponentID uint8

	// Version is the advertised CamLink protocol version.
	Version string

	// Name is the user-friendly bridge name, if advertised.
	Name string
}

// TargetSystem returns the system identifier for request targeting.
func (s *BridgeService) TargetSystem() uint8 { return s.SystemID }

// TargetComponent returns the component identifier for request targeting.
func (s *BridgeService) TargetComponent() uint8 { return s.ComponentID }
