package localfs

import (
	"os"
	"strings"
	"testing"

	"github.com/quilclient/quilclient/cidutil"
	"github.com/quilclient/quilclient/record"
	"github.com/quilclient/quilclient/storage"
	"github.com/quilclient/quilclient/storage/testkit"
)

func TestLocalFS_Conformance(t *testing.T) {
	testkit.RunFrameStoreConformance(t, func(t *testing.T) storage.FrameStore {
		t.Helper()
		s, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		return s
	})
}

func TestLocalFS_RejectMutationByOverwrite(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	orig := []byte("frame payload v1")
	id, err := s.Put(orig)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Corrupt the stored payload out-of-band.
	path := s.blockPath(id)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Get must detect hash mismatch.
	if _, err := s.Get(id); err != storage.ErrCIDMismatch {
		t.Fatalf("Get mismatch: got %v want %v", err, storage.ErrCIDMismatch)
	}

	// Put must not "repair" or overwrite the corrupted payload.
	if _, err := s.Put(orig); err != storage.ErrImmutable {
		t.Fatalf("Put after corruption: got %v want %v", err, storage.ErrImmutable)
	}

	wantID, err := cidutil.PayloadCID(orig)
	if err != nil {
		t.Fatalf("PayloadCID failed: %v", err)
	}
	if id != wantID {
		t.Fatalf("unexpected CID: got %s want %s", id, wantID)
	}
}

func TestLocalFS_FramePathUsesFilterAndNumber(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	addr := record.FrameAddress{Filter: record.CeremonyApplicationFilter, Number: record.FrameNumberFrom(1234)}
	if _, err := storage.StoreFrame(s, addr, []byte("p")); err != nil {
		t.Fatalf("StoreFrame failed: %v", err)
	}
	if _, err := os.Stat(s.framePath(addr)); err != nil {
		t.Fatalf("index entry missing: %v", err)
	}
	want := "34001be7432c2e6669ada0279788682ab9f62671b1b538ab99504694d981cbd3"
	if got := s.framePath(addr); !strings.Contains(got, want) || !strings.HasSuffix(got, "1234") {
		t.Fatalf("unexpected frame path %s", got)
	}
}
