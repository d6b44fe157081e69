package export_test

import (
	"bytes"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilclient/quilclient/errs"
	"github.com/quilclient/quilclient/export"
	"github.com/quilclient/quilclient/identity"
	"github.com/quilclient/quilclient/keys"
	"github.com/quilclient/quilclient/record"
	"github.com/quilclient/quilclient/wire"
)

func peer(t *testing.T, label string, score float64, addrs ...string) record.PeerRecord {
	t.Helper()
	s, err := keys.New(identity.SchemeEd448, bytes.Repeat([]byte{9}, keys.RootSeedSize), label)
	require.NoError(t, err)
	sr, err := keys.SignRecord(s, 1_700_000_000_123, []byte{1, 4, 21})
	require.NoError(t, err)
	rec, err := record.BuildPeer(wire.NetworkInfo{
		PeerID:     sr.PeerID,
		Multiaddrs: addrs,
		PeerScore:  score,
		Timestamp:  sr.Timestamp,
		Version:    sr.Version,
		Signature:  sr.Signature,
		PublicKey:  sr.PublicKey,
	})
	require.NoError(t, err)
	return rec
}

func write(t *testing.T, tbl export.Table) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, tbl))
	return buf.String()
}

func TestPeerTable_DeterministicTwoRecordExport(t *testing.T) {
	recs := []record.PeerRecord{
		peer(t, "a", 1.25, "/ip4/127.0.0.1/tcp/8336"),
		peer(t, "b", -3, "/ip4/10.0.0.2/udp/8336/quic-v1"),
	}
	tbl := export.PeerTable(recs)

	first := write(t, tbl)
	second := write(t, tbl)
	assert.Equal(t, first, second)

	lines := strings.Split(strings.TrimSuffix(first, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "peer_id,multiaddr,peer_score,timestamp,version", lines[0])
	assert.Equal(t, recs[0].PeerID().String()+",/ip4/127.0.0.1/tcp/8336,1.250000,2023-11-14T22:13:20.123Z,1.4.21", lines[1])
	assert.Equal(t, recs[1].PeerID().String()+",/ip4/10.0.0.2/udp/8336/quic-v1,-3.000000,2023-11-14T22:13:20.123Z,1.4.21", lines[2])

	d1, err := export.Digest(tbl)
	require.NoError(t, err)
	d2, err := export.Digest(tbl)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)
}

func TestPeerTable_FlattensMultiaddrs(t *testing.T) {
	tbl := export.PeerTable([]record.PeerRecord{
		peer(t, "a", 0, "/ip4/1.1.1.1/tcp/1", "/ip4/2.2.2.2/tcp/2"),
		peer(t, "b", 0),
	})
	rows := slices.Collect(tbl.Rows)
	require.Len(t, rows, 3)
	assert.Equal(t, "/ip4/1.1.1.1/tcp/1", rows[0][1])
	assert.Equal(t, "/ip4/2.2.2.2/tcp/2", rows[1][1])
	assert.Equal(t, rows[0][0], rows[1][0])
	assert.Equal(t, "", rows[2][1])
}

func TestRowsStopEarly(t *testing.T) {
	tbl := export.PeerTable([]record.PeerRecord{
		peer(t, "a", 0, "/ip4/1.1.1.1/tcp/1", "/ip4/2.2.2.2/tcp/2"),
		peer(t, "b", 0),
	})
	n := 0
	for range tbl.Rows {
		n++
		if n == 1 {
			break
		}
	}
	assert.Equal(t, 1, n)
	// Restartable after an early stop.
	assert.Len(t, slices.Collect(tbl.Rows), 3)
}

func TestFrameTable(t *testing.T) {
	sel := bytes.Repeat([]byte{0xab}, 32)
	m, err := record.BuildFrame(wire.ClockFrame{
		Filter:         record.CeremonyApplicationFilter.Bytes(),
		FrameNumber:    1234,
		Timestamp:      0,
		Difficulty:     200000,
		ParentSelector: sel,
	})
	require.NoError(t, err)

	got := write(t, export.FrameTable([]record.FrameMetadata{m}))
	want := "filter,frame_number,timestamp,difficulty,parent_selector\n" +
		"ceremony-application,1234,1970-01-01T00:00:00.000Z,200000," + strings.Repeat("ab", 32) + "\n"
	assert.Equal(t, want, got)
}

func TestWriteCSV_Quoting(t *testing.T) {
	tbl := export.Table{
		Header: []string{"a", "b", "c", "d"},
		Rows: slices.Values([][]string{
			{"plain", "with,comma", `with "quote"`, "line\nbreak"},
			{" leading", "", "x", "y"},
		}),
	}
	got := write(t, tbl)
	want := "a,b,c,d\n" +
		"plain,\"with,comma\",\"with \"\"quote\"\"\",\"line\nbreak\"\n" +
		"\" leading\",,x,y\n"
	assert.Equal(t, want, got)
}

func TestWriteCSV_BugsAreExportErrors(t *testing.T) {
	cases := map[string]export.Table{
		"short row":    {Header: []string{"a", "b"}, Rows: slices.Values([][]string{{"1"}})},
		"invalid utf8": {Header: []string{"a"}, Rows: slices.Values([][]string{{string([]byte{0xff, 0xfe})}})},
		"empty header": {},
	}
	for name, tbl := range cases {
		t.Run(name, func(t *testing.T) {
			err := export.WriteCSV(&bytes.Buffer{}, tbl)
			require.Error(t, err)
			assert.True(t, errs.IsKind(err, errs.KindExport))
			assert.True(t, errs.IsBug(err))
		})
	}
}

func TestFormatScore(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.000000"},
		{math.Copysign(0, -1), "0.000000"},
		{0.1, "0.100000"},
		{123.456, "123.456000"},
		{-1.5, "-1.500000"},
		{1e-7, "0.000000"},
		{1e20, "100000000000000000000.000000"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, export.FormatScore(tc.in), "score %v", tc.in)
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	ts := time.Date(2024, 2, 29, 3, 4, 5, 678_900_000, loc)
	assert.Equal(t, "2024-02-29T00:04:05.678Z", export.FormatTimestamp(ts))
}
