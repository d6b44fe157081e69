package amount

import (
	"encoding/hex"
	"math/big"
	"math/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilclient/quilclient/errs"
)

func be32(t *testing.T, n *big.Int) []byte {
	t.Helper()
	out := make([]byte, Width)
	n.FillBytes(out)
	return out
}

func mustHex32(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	require.Len(t, b, Width)
	return b
}

func TestDecode_RejectsEveryOtherLength(t *testing.T) {
	for n := 0; n <= 64; n++ {
		if n == Width {
			continue
		}
		_, err := Decode(make([]byte, n))
		require.Error(t, err, "length %d", n)
		assert.True(t, errs.IsKind(err, errs.KindInvalidLength), "length %d: got %v", n, err)
		assert.Equal(t, "AMOUNT-LEN-001", errs.RuleID(err))
	}
}

func TestDecode_AcceptsAny32Bytes(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		b := make([]byte, Width)
		r.Read(b)
		u, err := Decode(b)
		require.NoError(t, err)
		got := u.Bytes32()
		assert.Equal(t, b, got[:])
	}
}

func TestDecode_Endianness(t *testing.T) {
	b := make([]byte, Width)
	b[Width-1] = 1
	u, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "1", u.String())

	// 2^192 big-endian has its set bit in byte 7.
	b = make([]byte, Width)
	b[7] = 1
	u, err = Decode(b)
	require.NoError(t, err)
	want := new(big.Int).Lsh(big.NewInt(1), 192)
	assert.Equal(t, want.String(), u.String())
}

func TestDecode_Max(t *testing.T) {
	b := make([]byte, Width)
	for i := range b {
		b[i] = 0xff
	}
	u, err := Decode(b)
	require.NoError(t, err)
	maxVal := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	assert.Equal(t, maxVal.String(), u.String())
}

func TestDisplay_FloorDivisionScenario(t *testing.T) {
	s := MustScale(100_000_000)
	u, err := Decode(be32(t, big.NewInt(123_456_789_000)))
	require.NoError(t, err)
	d := u.Display(s)
	assert.Equal(t, "1234", d.String())
	v, ok := d.Uint64()
	assert.True(t, ok)
	assert.Equal(t, uint64(1234), v)
}

func TestDisplay_MatchesBigIntFloor(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	scales := []uint64{1, 7, 100_000_000, DefaultUnitsPerToken, 1<<63 + 5}
	for i := 0; i < 300; i++ {
		b := make([]byte, Width)
		r.Read(b)
		u, err := Decode(b)
		require.NoError(t, err)
		for _, sc := range scales {
			want := new(big.Int).Div(new(big.Int).SetBytes(b), new(big.Int).SetUint64(sc))
			assert.Equal(t, want.String(), u.Display(MustScale(sc)).String())
		}
	}
}

func TestDisplay_FloorsAroundScale(t *testing.T) {
	s := DefaultScale()
	below, err := Decode(be32(t, new(big.Int).SetUint64(DefaultUnitsPerToken-1)))
	require.NoError(t, err)
	assert.Equal(t, "0", below.Display(s).String())

	above, err := Decode(be32(t, new(big.Int).SetUint64(DefaultUnitsPerToken+1)))
	require.NoError(t, err)
	assert.Equal(t, "1", above.Display(s).String())
}

func TestDisplay_NetworkFixtures(t *testing.T) {
	// Owned balance of a node that took part in the first ceremony phase.
	balance := mustHex32(t, "0000000000000000000000000000000000000000000000000000005d21dba000")
	// Confirmed supply at the start of the same ceremony.
	supply := mustHex32(t, "0000000000000000000000000000000000000000000000000141d2c26be86000")

	p, err := NewPair(balance, DefaultScale())
	require.NoError(t, err)
	assert.Equal(t, "50", p.Display.String())

	p, err = NewPair(supply, DefaultScale())
	require.NoError(t, err)
	assert.Equal(t, "11323150", p.Display.String())
}

func TestDisplay_MaxFitsBitBudget(t *testing.T) {
	b := make([]byte, Width)
	for i := range b {
		b[i] = 0xff
	}
	u, err := Decode(b)
	require.NoError(t, err)
	d := u.Display(DefaultScale())
	n, err := uint256.FromDecimal(d.String())
	require.NoError(t, err)
	// 2^32 < 8e9 < 2^33, so the quotient loses 32 or 33 bits; here it is 32.
	assert.Equal(t, 256-32, n.BitLen())
}

func TestNewScale_RejectsZero(t *testing.T) {
	_, err := NewScale(0)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindMalformedField))
	assert.Equal(t, DefaultUnitsPerToken, Scale{}.UnitsPerToken())
}

func TestNewPair_PropagatesLengthError(t *testing.T) {
	_, err := NewPair(make([]byte, 31), DefaultScale())
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInvalidLength))
}

func TestUnits_ZeroValue(t *testing.T) {
	var u Units
	assert.True(t, u.IsZero())
	assert.Equal(t, "0", u.String())
	assert.Equal(t, "0", u.Display(DefaultScale()).String())
}
