package record

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/holiman/uint256"

	"github.com/quilclient/quilclient/errs"
	"github.com/quilclient/quilclient/wire"
)

// FilterWidth is the byte length of a frame filter.
const FilterWidth = 32

// SelectorWidth is the byte length of a non-empty parent selector.
const SelectorWidth = 32

// FrameFilter is the 32-byte domain separator naming the clock a frame belongs to.
type FrameFilter [FilterWidth]byte

var (
	// MasterClockFilter is the filter of the master clock.
	MasterClockFilter = FrameFilter(bytes.Repeat([]byte{0xff}, FilterWidth))
	// CeremonyApplicationFilter is the filter of the ceremony application.
	CeremonyApplicationFilter = mustFilterHex("34001be7432c2e6669ada0279788682ab9f62671b1b538ab99504694d981cbd3")
)

var knownFilters = []struct {
	name   string
	filter FrameFilter
}{
	{"master-clock", MasterClockFilter},
	{"ceremony-application", CeremonyApplicationFilter},
}

func mustFilterHex(s string) FrameFilter {
	f, err := FilterFromHex(s)
	if err != nil {
		panic(err)
	}
	return f
}

// ParseFrameFilter validates b as a frame filter.
func ParseFrameFilter(b []byte) (FrameFilter, error) {
	if len(b) != FilterWidth {
		return FrameFilter{}, errs.New(errs.KindMalformedField, "RECORD-FILTER-001", "filter",
			fmt.Sprintf("expected %d bytes, got %d", FilterWidth, len(b)))
	}
	return FrameFilter(b), nil
}

// FilterFromHex parses a 64-character hex filter.
func FilterFromHex(s string) (FrameFilter, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return FrameFilter{}, errs.Wrap(errs.KindMalformedField, "RECORD-FILTER-002", "filter", "invalid hex", err)
	}
	return ParseFrameFilter(b)
}

// FilterByName resolves a filter name as printed by FrameFilter.Name, or a raw
// hex filter.
func FilterByName(name string) (FrameFilter, error) {
	for _, k := range knownFilters {
		if k.name == name {
			return k.filter, nil
		}
	}
	return FilterFromHex(strings.TrimPrefix(name, "unknown-"))
}

// Name returns "master-clock", "ceremony-application", or "unknown-<hex>".
func (f FrameFilter) Name() string {
	for _, k := range knownFilters {
		if k.filter == f {
			return k.name
		}
	}
	return "unknown-" + f.Hex()
}

func (f FrameFilter) String() string { return f.Name() }

// Hex returns the lowercase hex encoding of f.
func (f FrameFilter) Hex() string { return hex.EncodeToString(f[:]) }

// Bytes returns a copy of f.
func (f FrameFilter) Bytes() []byte { return append([]byte(nil), f[:]...) }

// FrameNumber is a frame height. Comparisons go through Cmp; callers must not
// assume it fits in a machine word.
type FrameNumber struct {
	v uint256.Int
}

// FrameNumberFrom returns n as a FrameNumber.
func FrameNumberFrom(n uint64) FrameNumber {
	var f FrameNumber
	f.v.SetUint64(n)
	return f
}

// ParseFrameNumber parses a base-10 frame number.
func ParseFrameNumber(s string) (FrameNumber, error) {
	var f FrameNumber
	if err := f.v.SetFromDecimal(s); err != nil {
		return FrameNumber{}, errs.Wrap(errs.KindMalformedField, "RECORD-FRAME-002", "frame_number", "not a base-10 number", err)
	}
	return f, nil
}

// Cmp compares n and o and returns -1, 0 or +1.
func (n FrameNumber) Cmp(o FrameNumber) int { return n.v.Cmp(&o.v) }

// Uint64 returns n and whether it fits in 64 bits.
func (n FrameNumber) Uint64() (uint64, bool) {
	v, overflow := n.v.Uint64WithOverflow()
	return v, !overflow
}

func (n FrameNumber) String() string { return n.v.Dec() }

// FrameAddress identifies a downloadable frame payload.
type FrameAddress struct {
	Filter FrameFilter
	Number FrameNumber
}

// FrameMetadata describes a frame without its payload.
type FrameMetadata struct {
	filter         FrameFilter
	number         FrameNumber
	timestamp      time.Time
	difficulty     uint32
	parentSelector []byte
}

func (m FrameMetadata) Filter() FrameFilter { return m.filter }
func (m FrameMetadata) Number() FrameNumber { return m.number }
func (m FrameMetadata) Timestamp() time.Time { return m.timestamp }
func (m FrameMetadata) Difficulty() uint32 { return m.difficulty }
func (m FrameMetadata) Address() FrameAddress { return FrameAddress{Filter: m.filter, Number: m.number} }
func (m FrameMetadata) ParentSelector() []byte { return append([]byte(nil), m.parentSelector...) }
func (m FrameMetadata) HasParentSelector() bool { return len(m.parentSelector) != 0 }

// BuildFrame validates a wire frame.
func BuildFrame(in wire.ClockFrame) (FrameMetadata, error) {
	filter, err := ParseFrameFilter(in.Filter)
	if err != nil {
		return FrameMetadata{}, err
	}
	ts, err := timestamp(in.Timestamp)
	if err != nil {
		return FrameMetadata{}, err
	}
	switch len(in.ParentSelector) {
	case 0, SelectorWidth:
	default:
		return FrameMetadata{}, errs.New(errs.KindMalformedField, "RECORD-FRAME-001", "parent_selector",
			fmt.Sprintf("expected 0 or %d bytes, got %d", SelectorWidth, len(in.ParentSelector)))
	}
	var sel []byte
	if len(in.ParentSelector) != 0 {
		sel = append([]byte(nil), in.ParentSelector...)
	}
	return FrameMetadata{
		filter:         filter,
		number:         FrameNumberFrom(in.FrameNumber),
		timestamp:      ts,
		difficulty:     in.Difficulty,
		parentSelector: sel,
	}, nil
}

func timestamp(ms int64) (time.Time, error) {
	if ms < 0 {
		return time.Time{}, errs.New(errs.KindMalformedField, "RECORD-TS-001", "timestamp",
			fmt.Sprintf("negative timestamp %d", ms))
	}
	return time.UnixMilli(ms).UTC(), nil
}
