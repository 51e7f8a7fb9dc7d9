package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeBridgeTXT creates TXT records for bridge discovery.
func EncodeBridgeTXT(info *BridgeInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeySystemID] = strconv.FormatUint(uint64(info.SystemID), 10)
	txt[TXTKeyVersion] = info.Version

	// Optional fields
	if info.ComponentID != 0 {
		txt[TXTKeyComponentID] = strconv.FormatUint(uint64(info.ComponentID), 10)
	}
	if info.Name != "" {
		txt[TXTKeyName] = info.Name
	}

	return txt
}

// DecodeBridgeTXT parses TXT records from bridge discovery.
func DecodeBridgeTXT(txt TXTRecordMap) (*BridgeInfo, error) {
	info := &BridgeInfo{}

	// Parse system ID (required)
	sysStr, ok := txt[TXTKeySystemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeySystemID)
	}
	sys, err := strconv.ParseUint(sysStr, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid system ID %q", ErrInvalidTXTRecord, sysStr)
	}
	info.SystemID = uint8(sys)

	// Parse version (required)
	info.Version, ok = txt[TXTKeyVersion]
	if !ok || info.Version == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}

	// Parse component ID (optional, defaulted)
	info.ComponentID = DefaultComponentID
	if compStr, ok := txt[TXTKeyComponentID]; ok {
		comp, err := strconv.ParseUint(compStr, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid component ID %q", ErrInvalidTXTRecord, compStr)
		}
		info.ComponentID = uint8(comp)
	}

	// Optional fields
	info.Name = txt[TXTKeyName]

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value" strings.
// This format is commonly used by mDNS libraries.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
