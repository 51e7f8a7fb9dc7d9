package discovery

import (
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBridgeTXT(t *testing.T) {
	t.Run("AllFields", func(t *testing.T) {
		txt := EncodeBridgeTXT(&BridgeInfo{
			Name:        "Bench Rig",
			SystemID:    1,
			ComponentID: 154,
			Version:     "1.0",
		})

		assert.Equal(t, "1", txt[TXTKeySystemID])
		assert.Equal(t, "154", txt[TXTKeyComponentID])
		assert.Equal(t, "1.0", txt[TXTKeyVersion])
		assert.Equal(t, "Bench Rig", txt[TXTKeyName])
	})

	t.Run("OptionalOmitted", func(t *testing.T) {
		txt := EncodeBridgeTXT(&BridgeInfo{SystemID: 1, Version: "1.0"})

		assert.NotContains(t, txt, TXTKeyComponentID)
		assert.NotContains(t, txt, TXTKeyName)
	})
}

func TestDecodeBridgeTXT(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		orig := &BridgeInfo{
			Name:        "Bench Rig",
			SystemID:    1,
			ComponentID: 154,
			Version:     "1.0",
		}

		decoded, err := DecodeBridgeTXT(EncodeBridgeTXT(orig))
		require.NoError(t, err)
		assert.Equal(t, orig, decoded)
	})

	t.Run("DefaultComponent", func(t *testing.T) {
		decoded, err := DecodeBridgeTXT(TXTRecordMap{
			TXTKeySystemID: "2",
			TXTKeyVersion:  "1.0",
		})
		require.NoError(t, err)
		assert.Equal(t, uint8(DefaultComponentID), decoded.ComponentID)
	})

	t.Run("MissingSystemID", func(t *testing.T) {
		_, err := DecodeBridgeTXT(TXTRecordMap{TXTKeyVersion: "1.0"})
		assert.ErrorIs(t, err, ErrMissingRequired)
	})

	t.Run("MissingVersion", func(t *testing.T) {
		_, err := DecodeBridgeTXT(TXTRecordMap{TXTKeySystemID: "1"})
		assert.ErrorIs(t, err, ErrMissingRequired)
	})

	t.Run("MalformedSystemID", func(t *testing.T) {
		_, err := DecodeBridgeTXT(TXTRecordMap{
			TXTKeySystemID: "banana",
			TXTKeyVersion:  "1.0",
		})
		assert.ErrorIs(t, err, ErrInvalidTXTRecord)
	})

	t.Run("SystemIDOutOfRange", func(t *testing.T) {
		_, err := DecodeBridgeTXT(TXTRecordMap{
			TXTKeySystemID: "300",
			TXTKeyVersion:  "1.0",
		})
		assert.ErrorIs(t, err, ErrInvalidTXTRecord)
	})
}

func TestTXTRecordStrings(t *testing.T) {
	txt := TXTRecordMap{"sys": "1", "cl": "1.0"}

	strs := TXTRecordsToStrings(txt)
	assert.Len(t, strs, 2)

	back := StringsToTXTRecords(strs)
	assert.Equal(t, txt, back)
}

func TestStringsToTXTRecordsFlags(t *testing.T) {
	txt := StringsToTXTRecords([]string{"sys=1", "flag", ""})

	assert.Equal(t, "1", txt["sys"])
	v, ok := txt["flag"]
	assert.True(t, ok)
	assert.Empty(t, v)
	assert.NotContains(t, txt, "")
}

func TestValidateInstanceName(t *testing.T) {
	assert.NoError(t, ValidateInstanceName("CamLink-1"))
	assert.Error(t, ValidateInstanceName(""))

	long := make([]byte, MaxInstanceNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, ValidateInstanceName(string(long)), ErrInstanceNameTooLong)
}

func TestEntryToBridge(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		entry := &zeroconf.ServiceEntry{
			ServiceRecord: zeroconf.ServiceRecord{Instance: "CamLink-1"},
			HostName:      "bridge.local.",
			Port:          DefaultPort,
			Text:          []string{"sys=1", "comp=154", "cl=1.0"},
			AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
		}

		svc := entryToBridge(entry)
		require.NotNil(t, svc)
		assert.Equal(t, "CamLink-1", svc.InstanceName)
		assert.Equal(t, uint8(1), svc.SystemID)
		assert.Equal(t, uint8(154), svc.ComponentID)
		assert.Equal(t, "1.0", svc.Version)
		assert.Equal(t, []string{"192.168.1.50"}, svc.Addresses)
		assert.Equal(t, uint8(1), svc.TargetSystem())
		assert.Equal(t, uint8(154), svc.TargetComponent())
	})

	t.Run("InvalidTXTSkipped", func(t *testing.T) {
		entry := &zeroconf.ServiceEntry{
			ServiceRecord: zeroconf.ServiceRecord{Instance: "broken"},
			Text:          []string{"cl=1.0"}, // no system ID
		}
		assert.Nil(t, entryToBridge(entry))
	})
}

func TestMergeAddresses(t *testing.T) {
	got := mergeAddresses(
		[]string{"192.168.1.50", "fe80::1"},
		[]string{"192.168.1.50", "10.0.0.5"},
	)
	assert.Equal(t, []string{"192.168.1.50", "fe80::1", "10.0.0.5"}, got)
}

func TestRemoveAddresses(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		AddrIPv4: []net.IP{net.ParseIP("192.168.1.50")},
	}

	got := removeAddresses([]string{"192.168.1.50", "10.0.0.5"}, entry)
	assert.Equal(t, []string{"10.0.0.5"}, got)
}
