// Package export renders validated records as CSV with a fixed column layout.
//
// Headers are a compatibility contract with downstream consumers: columns are
// never reordered or renamed. Rows are produced lazily and every call to
// Table.Rows starts over from the first record, so a table can be written more
// than once with identical output.
package export

import (
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"iter"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/multiformats/go-multiaddr"
	"golang.org/x/crypto/sha3"

	"github.com/quilclient/quilclient/errs"
	"github.com/quilclient/quilclient/record"
)

// TimestampLayout is the rendering of every timestamp cell.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var (
	PeerHeader  = []string{"peer_id", "multiaddr", "peer_score", "timestamp", "version"}
	SyncHeader  = []string{"peer_id", "multiaddr", "max_frame", "timestamp", "version"}
	FrameHeader = []string{"filter", "frame_number", "timestamp", "difficulty", "parent_selector"}
)

// Table is a header plus a restartable sequence of rows.
type Table struct {
	Header []string
	Rows   iter.Seq[[]string]
}

// PeerTable renders peer store records, one row per multiaddr.
func PeerTable(records []record.PeerRecord) Table {
	return Table{
		Header: PeerHeader,
		Rows: func(yield func([]string) bool) {
			for _, r := range records {
				for _, addr := range addrCells(r.Multiaddrs()) {
					row := []string{
						r.PeerID().String(),
						addr,
						FormatScore(r.Score()),
						FormatTimestamp(r.Timestamp()),
						r.Version().String(),
					}
					if !yield(row) {
						return
					}
				}
			}
		},
	}
}

// SyncTable renders sync broadcast records, one row per multiaddr.
func SyncTable(records []record.SyncRecord) Table {
	return Table{
		Header: SyncHeader,
		Rows: func(yield func([]string) bool) {
			for _, r := range records {
				for _, addr := range addrCells(r.Multiaddrs()) {
					row := []string{
						r.PeerID().String(),
						addr,
						r.MaxFrame().String(),
						FormatTimestamp(r.Timestamp()),
						r.Version().String(),
					}
					if !yield(row) {
						return
					}
				}
			}
		},
	}
}

// FrameTable renders frame metadata, one row per frame.
func FrameTable(frames []record.FrameMetadata) Table {
	return Table{
		Header: FrameHeader,
		Rows: func(yield func([]string) bool) {
			for _, f := range frames {
				row := []string{
					f.Filter().Name(),
					f.Number().String(),
					FormatTimestamp(f.Timestamp()),
					strconv.FormatUint(uint64(f.Difficulty()), 10),
					hex.EncodeToString(f.ParentSelector()),
				}
				if !yield(row) {
					return
				}
			}
		},
	}
}

// addrCells yields one cell per address, or a single empty cell when there are none.
func addrCells(addrs []multiaddr.Multiaddr) []string {
	if len(addrs) == 0 {
		return []string{""}
	}
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return out
}

// FormatScore renders v with exactly six fractional digits. Negative zero
// renders as zero.
func FormatScore(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// WriteCSV writes t to w. A malformed row is an error of this package, reported
// as KindExport.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := checkRow(-1, t.Header, len(t.Header)); err != nil {
		return err
	}
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	n := 0
	if t.Rows != nil {
		for row := range t.Rows {
			if err := checkRow(n, row, len(t.Header)); err != nil {
				return err
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("export: write row %d: %w", n, err)
			}
			n++
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}

func checkRow(n int, row []string, width int) error {
	where := "header"
	if n >= 0 {
		where = fmt.Sprintf("row %d", n)
	}
	if width == 0 {
		return errs.New(errs.KindExport, "EXPORT-ROW-002", "", "empty header")
	}
	if len(row) != width {
		return errs.New(errs.KindExport, "EXPORT-ROW-001", "",
			fmt.Sprintf("%s has %d cells, header has %d", where, len(row), width))
	}
	for i, cell := range row {
		if !utf8.ValidString(cell) {
			return errs.New(errs.KindExport, "EXPORT-CELL-001", "",
				fmt.Sprintf("%s cell %d is not valid UTF-8", where, i))
		}
	}
	return nil
}

// Digest returns the hex SHA3-256 of the CSV rendering of t.
func Digest(t Table) (string, error) {
	h := sha3.New256()
	if err := WriteCSV(h, t); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
