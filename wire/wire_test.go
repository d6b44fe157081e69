package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestNetworkInfo_DecodesHandEncodedBytes(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("peer"))
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, "/ip4/127.0.0.1/tcp/8336")
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, "/ip4/10.0.0.1/udp/8336/quic-v1")
	b = protowire.AppendTag(b, 3, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 0x3ff8000000000000) // 1.5
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, 1_700_000_000_000)
	b = protowire.AppendTag(b, 5, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{1, 4, 21})

	var m NetworkInfo
	require.NoError(t, m.UnmarshalWire(b))
	assert.Equal(t, []byte("peer"), m.PeerID)
	assert.Equal(t, []string{"/ip4/127.0.0.1/tcp/8336", "/ip4/10.0.0.1/udp/8336/quic-v1"}, m.Multiaddrs)
	assert.Equal(t, 1.5, m.PeerScore)
	assert.Equal(t, int64(1_700_000_000_000), m.Timestamp)
	assert.Equal(t, []byte{1, 4, 21}, m.Version)
	assert.Nil(t, m.Signature)
}

func TestClockFrame_SkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, make([]byte, 32))
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("aggregate proofs"))
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, 42)
	b = protowire.AppendTag(b, 100, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 7)
	b = protowire.AppendTag(b, 101, protowire.StartGroupType)
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)
	b = protowire.AppendTag(b, 101, protowire.EndGroupType)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, 50000)

	var m ClockFrame
	require.NoError(t, m.UnmarshalWire(b))
	assert.Len(t, m.Filter, 32)
	assert.Equal(t, uint64(42), m.FrameNumber)
	assert.Equal(t, uint32(50000), m.Difficulty)
}

func TestClockFrame_WrongWireType(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{1})

	var m ClockFrame
	err := m.UnmarshalWire(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ClockFrame field 2")
}

func TestNetworkInfoResponse_OneMalformedEntryFailsWholeResponse(t *testing.T) {
	var good []byte
	good = protowire.AppendTag(good, 1, protowire.BytesType)
	good = protowire.AppendBytes(good, []byte("peer"))

	var bad []byte
	bad = protowire.AppendTag(bad, 4, protowire.BytesType)
	bad = protowire.AppendBytes(bad, []byte("not a varint"))

	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, good)
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, bad)

	var m NetworkInfoResponse
	err := m.UnmarshalWire(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NetworkInfo field 4")
}

func TestTruncatedInput(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendVarint(b, 10)
	b = append(b, 1, 2, 3)

	var m TokenInfoResponse
	require.Error(t, m.UnmarshalWire(b))
}

func TestNegativeTimestampSurvives(t *testing.T) {
	in := PeerInfo{PeerID: []byte("p"), Timestamp: -5}
	b, err := in.MarshalWire()
	require.NoError(t, err)

	var out PeerInfo
	require.NoError(t, out.UnmarshalWire(b))
	assert.Equal(t, int64(-5), out.Timestamp)
}

func TestPeerInfoResponse_KeepsListsApart(t *testing.T) {
	in := PeerInfoResponse{
		PeerInfo:              []PeerInfo{{PeerID: []byte("a")}, {PeerID: []byte("b")}},
		UncooperativePeerInfo: []PeerInfo{{PeerID: []byte("c")}},
	}
	b, err := in.MarshalWire()
	require.NoError(t, err)

	var out PeerInfoResponse
	require.NoError(t, out.UnmarshalWire(b))
	require.Len(t, out.PeerInfo, 2)
	require.Len(t, out.UncooperativePeerInfo, 1)
	assert.Equal(t, []byte("b"), out.PeerInfo[1].PeerID)
	assert.Equal(t, []byte("c"), out.UncooperativePeerInfo[0].PeerID)
}

func TestFrameInfoResponse_PreservesPayloadBytes(t *testing.T) {
	frame := ClockFrame{Filter: make([]byte, 32), FrameNumber: 9}
	payload, err := frame.MarshalWire()
	require.NoError(t, err)
	// Fields this package does not model must pass through untouched.
	payload = protowire.AppendTag(payload, 50, protowire.BytesType)
	payload = protowire.AppendBytes(payload, []byte("opaque"))

	b, err := (&FrameInfoResponse{ClockFrame: payload}).MarshalWire()
	require.NoError(t, err)

	var out FrameInfoResponse
	require.NoError(t, out.UnmarshalWire(b))
	assert.Equal(t, payload, out.ClockFrame)

	var missing FrameInfoResponse
	require.NoError(t, missing.UnmarshalWire(nil))
	assert.Nil(t, missing.ClockFrame)
}

func TestCodec(t *testing.T) {
	c := Codec{}
	assert.Equal(t, "proto", c.Name())

	_, err := c.Marshal("not a message")
	require.Error(t, err)
	require.Error(t, c.Unmarshal(nil, new(int)))

	b, err := c.Marshal(&GetFramesRequest{Filter: []byte{1}, FromFrameNumber: 1, ToFrameNumber: 5, IncludeCandidates: true})
	require.NoError(t, err)
	var req GetFramesRequest
	require.NoError(t, c.Unmarshal(b, &req))
	assert.True(t, req.IncludeCandidates)
	assert.Equal(t, uint64(5), req.ToFrameNumber)
}
