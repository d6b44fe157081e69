// Package amount decodes fixed-width token quantities reported by a node and
// converts them to whole display units.
//
// The wire representation is a 32-byte big-endian unsigned integer counting
// the smallest divisible unit (an oblivious transfer unit). Display values are
// whole tokens obtained by floor division with a configured Scale.
package amount

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/quilclient/quilclient/errs"
)

// Width is the exact byte length of an encoded amount.
const Width = 32

// DefaultUnitsPerToken is the number of oblivious transfer units in one QUIL.
const DefaultUnitsPerToken uint64 = 8_000_000_000

// Units is a 256-bit raw token quantity. The only way to obtain a non-zero
// Units is Decode, so a Units value always came through the length check.
type Units struct {
	v uint256.Int
}

// Decode interprets b as a 32-byte big-endian unsigned integer.
// Shorter and longer inputs are rejected; there is no padding or truncation.
func Decode(b []byte) (Units, error) {
	if len(b) != Width {
		return Units{}, errs.New(errs.KindInvalidLength, "AMOUNT-LEN-001", "",
			fmt.Sprintf("expected %d bytes, got %d", Width, len(b)))
	}
	var u Units
	u.v.SetBytes32(b)
	return u, nil
}

// Bytes32 returns the canonical big-endian encoding.
func (u Units) Bytes32() [Width]byte { return u.v.Bytes32() }

// IsZero reports whether u is zero.
func (u Units) IsZero() bool { return u.v.IsZero() }

// Cmp compares u and o and returns -1, 0 or +1.
func (u Units) Cmp(o Units) int { return u.v.Cmp(&o.v) }

// String renders u in base 10.
func (u Units) String() string { return u.v.Dec() }

// Display converts u to whole display units, discarding any remainder.
func (u Units) Display(s Scale) Display {
	var d Display
	d.v.Div(&u.v, s.divisor())
	return d
}

// Display is a whole number of display units. It is a presentation value and
// cannot be converted back into Units.
type Display struct {
	v uint256.Int
}

// String renders d in base 10.
func (d Display) String() string { return d.v.Dec() }

// Uint64 returns d as a uint64 and whether it fit.
func (d Display) Uint64() (uint64, bool) {
	return d.v.Uint64(), d.v.IsUint64()
}

// Cmp compares d and o and returns -1, 0 or +1.
func (d Display) Cmp(o Display) int { return d.v.Cmp(&o.v) }

// Scale is the number of raw units in one display unit. Its zero value means
// DefaultUnitsPerToken.
type Scale struct {
	n uint64
}

// NewScale returns a Scale of n raw units per display unit. n must be positive.
func NewScale(n uint64) (Scale, error) {
	if n == 0 {
		return Scale{}, errs.New(errs.KindMalformedField, "AMOUNT-SCALE-001", "units_per_token", "scale must be positive")
	}
	return Scale{n: n}, nil
}

// MustScale is like NewScale but panics on error.
func MustScale(n uint64) Scale {
	s, err := NewScale(n)
	if err != nil {
		panic(err)
	}
	return s
}

// DefaultScale returns the network's canonical units-per-QUIL ratio.
func DefaultScale() Scale { return Scale{n: DefaultUnitsPerToken} }

// UnitsPerToken returns the divisor.
func (s Scale) UnitsPerToken() uint64 {
	if s.n == 0 {
		return DefaultUnitsPerToken
	}
	return s.n
}

func (s Scale) divisor() *uint256.Int { return uint256.NewInt(s.UnitsPerToken()) }

// Pair is a raw amount together with its display value. Both halves are
// always produced by NewPair so they never disagree.
type Pair struct {
	Raw     Units
	Display Display
}

// NewPair decodes b and derives its display value with s.
func NewPair(b []byte, s Scale) (Pair, error) {
	u, err := Decode(b)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Raw: u, Display: u.Display(s)}, nil
}
