package lorawan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rot226/loraflexsim/types"
)

func TestMHDREncodeDecodeRoundTrip(t *testing.T) {
	h := MHDR{MType: MTypeConfirmedDataUp, Major: Major1_0}
	got := DecodeMHDR(h.Encode())
	assert.Equal(t, h, got)
}

func TestDeriveSessionKeys10Deterministic(t *testing.T) {
	var appKey AES128Key
	for i := range appKey {
		appKey[i] = byte(i)
	}
	joinNonce := [3]byte{1, 2, 3}
	netID := [3]byte{4, 5, 6}

	k1, err := DeriveSessionKeys10(appKey, joinNonce, netID, 42)
	require.NoError(t, err)
	k2, err := DeriveSessionKeys10(appKey, joinNonce, netID, 42)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1.NwkSKey, k1.AppSKey)
}

func TestDeriveSessionKeys11ProducesFourDistinctKeys(t *testing.T) {
	var nwkKey, appKey AES128Key
	for i := range nwkKey {
		nwkKey[i] = byte(i)
		appKey[i] = byte(32 - i)
	}
	joinEUI := EUI64{1, 2, 3, 4, 5, 6, 7, 8}

	keys, err := DeriveSessionKeys11(nwkKey, appKey, 7, joinEUI, 99)
	require.NoError(t, err)

	seen := map[AES128Key]bool{}
	for _, k := range []AES128Key{keys.AppSKey, keys.FNwkSIntKey, keys.SNwkSIntKey, keys.NwkSEncKey} {
		assert.False(t, seen[k], "session keys must be pairwise distinct")
		seen[k] = true
	}
}

func TestJoinAcceptEncryptDecryptRoundTrip(t *testing.T) {
	var key AES128Key
	for i := range key {
		key[i] = byte(i * 3)
	}
	payload := []byte("0123456789abcdef") // 16 bytes, no padding needed

	encrypted, err := EncryptJoinAccept(key, payload)
	require.NoError(t, err)
	decrypted, err := DecryptJoinAccept(key, encrypted)
	require.NoError(t, err)
	assert.Equal(t, payload, decrypted)
}

func TestComputeMICIsDeterministicAndKeyed(t *testing.T) {
	var key1, key2 AES128Key
	for i := range key1 {
		key1[i] = byte(i)
		key2[i] = byte(i + 1)
	}
	msg := []byte("an uplink frame used only for testing purposes")

	mic1a, err := ComputeMIC(key1, msg)
	require.NoError(t, err)
	mic1b, err := ComputeMIC(key1, msg)
	require.NoError(t, err)
	assert.Equal(t, mic1a, mic1b)

	mic2, err := ComputeMIC(key2, msg)
	require.NoError(t, err)
	assert.NotEqual(t, mic1a, mic2)
}

func TestComputeMICHandlesEmptyAndNonBlockAlignedInput(t *testing.T) {
	var key AES128Key
	_, err := ComputeMIC(key, nil)
	require.NoError(t, err)
	_, err = ComputeMIC(key, []byte{1, 2, 3})
	require.NoError(t, err)
	_, err = ComputeMIC(key, make([]byte, 32))
	require.NoError(t, err)
}

func TestParseAndEncodeMACCommandsRoundTrip(t *testing.T) {
	cmds := []MACCommand{
		{CID: CIDLinkCheck, Payload: nil},
		{CID: CIDLinkADR, Payload: []byte{0x12}},
	}
	encoded := EncodeMACCommands(cmds)
	parsed, err := ParseMACCommands(true, encoded)
	require.NoError(t, err)
	assert.Equal(t, cmds, parsed)
}

func TestParseMACCommandsRejectsUnknownCID(t *testing.T) {
	_, err := ParseMACCommands(true, []byte{0xFF})
	assert.Error(t, err)
}

func TestLinkADRReqAndAnsRoundTrip(t *testing.T) {
	req := LinkADRReq(5, 3, 0x00FF, 0, 1)
	assert.Equal(t, CIDLinkADR, req.CID)
	assert.Len(t, req.Payload, 4)

	status, err := DecodeLinkADRAns([]byte{0x7})
	require.NoError(t, err)
	assert.True(t, status.ChannelMaskAck)
	assert.True(t, status.DataRateAck)
	assert.True(t, status.PowerAck)
}

func TestRegionPresetsCoverAllSixRegions(t *testing.T) {
	for _, id := range []types.RegionID{
		types.RegionEU868, types.RegionUS915, types.RegionAU915,
		types.RegionAS923, types.RegionIN865, types.RegionKR920,
	} {
		r := PresetFor(id)
		assert.Equal(t, id, r.ID)
		assert.NotEmpty(t, r.DataRates)
	}
}

func TestEU868RX1DataRateOffset(t *testing.T) {
	r := PresetFor(types.RegionEU868)
	assert.Equal(t, types.DataRate(3), r.RX1DataRate(5, 2))
}
