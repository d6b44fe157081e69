// Package testkit holds conformance suites for storage implementations.
package testkit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ipfs/go-cid"

	"github.com/quilclient/quilclient/cidutil"
	"github.com/quilclient/quilclient/record"
	"github.com/quilclient/quilclient/storage"
)

// NewStore constructs a fresh, empty store for a test.
// The returned store MUST be isolated from other tests.
type NewStore func(t *testing.T) storage.FrameStore

// RunFrameStoreConformance checks the CAS and FrameIndex contracts.
func RunFrameStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	payload := []byte{0x0a, 0x20, 0xff, 0xff, 0x10, 0x2a, 0xfa, 0x01, 0x03, 'r', 'a', 'w'}
	addr := record.FrameAddress{Filter: record.MasterClockFilter, Number: record.FrameNumberFrom(42)}

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		s := newStore(t)

		id, err := s.Put(payload)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		wantID, err := cidutil.PayloadCID(payload)
		if err != nil {
			t.Fatalf("PayloadCID failed: %v", err)
		}
		if id != wantID {
			t.Fatalf("Put CID mismatch: got %s want %s", id, wantID)
		}

		got, err := s.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("Get bytes mismatch")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		s := newStore(t)
		id1, err := s.Put(payload)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := s.Put(payload)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		s := newStore(t)
		id, err := cidutil.PayloadCID(payload)
		if err != nil {
			t.Fatalf("PayloadCID failed: %v", err)
		}
		if s.Has(id) {
			t.Fatalf("Has returned true for missing CID")
		}
		if _, err := s.Get(id); !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}
		if _, err := s.Put(payload); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !s.Has(id) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		s := newStore(t)
		var undef cid.Cid
		if s.Has(undef) {
			t.Fatalf("Has should be false for undefined CID")
		}
		if _, err := s.Get(undef); err == nil {
			t.Fatalf("Get should fail for undefined CID")
		}
		if err := s.Link(addr, undef); err == nil {
			t.Fatalf("Link should fail for undefined CID")
		}
	})

	t.Run("StoreAndLoadFrame", func(t *testing.T) {
		s := newStore(t)
		if _, _, err := storage.LoadFrame(s, addr); !storage.IsNotFound(err) {
			t.Fatalf("LoadFrame before store: got err=%v want ErrNotFound", err)
		}
		id, err := storage.StoreFrame(s, addr, payload)
		if err != nil {
			t.Fatalf("StoreFrame failed: %v", err)
		}
		got, gotID, err := storage.LoadFrame(s, addr)
		if err != nil {
			t.Fatalf("LoadFrame failed: %v", err)
		}
		if gotID != id || !bytes.Equal(got, payload) {
			t.Fatalf("LoadFrame mismatch")
		}
		// Same payload again is fine.
		if _, err := storage.StoreFrame(s, addr, payload); err != nil {
			t.Fatalf("StoreFrame(2) failed: %v", err)
		}
	})

	t.Run("LinkIsImmutable", func(t *testing.T) {
		s := newStore(t)
		if _, err := storage.StoreFrame(s, addr, payload); err != nil {
			t.Fatalf("StoreFrame failed: %v", err)
		}
		_, err := storage.StoreFrame(s, addr, []byte("different payload"))
		if !errors.Is(err, storage.ErrImmutable) {
			t.Fatalf("relink: got err=%v want ErrImmutable", err)
		}

		other := record.FrameAddress{Filter: record.CeremonyApplicationFilter, Number: record.FrameNumberFrom(42)}
		if _, err := s.Resolve(other); !storage.IsNotFound(err) {
			t.Fatalf("Resolve other filter: got err=%v want ErrNotFound", err)
		}
	})
}
