package cidutil

import (
	"testing"

	"github.com/ipfs/go-cid"
)

func TestPayloadCID_Stable(t *testing.T) {
	a, err := PayloadCID([]byte("frame"))
	if err != nil {
		t.Fatalf("PayloadCID: %v", err)
	}
	b, err := PayloadCID([]byte("frame"))
	if err != nil {
		t.Fatalf("PayloadCID: %v", err)
	}
	if !a.Equals(b) {
		t.Fatalf("expected equal cids")
	}
	if a.Version() != 1 || a.Type() != cid.Raw {
		t.Fatalf("unexpected cid shape: %s", a)
	}
	// sha2-256 of "frame" under CIDv1 raw always starts with the base32 "bafkrei" prefix.
	if got := a.String()[:7]; got != "bafkrei" {
		t.Fatalf("unexpected prefix %q", got)
	}
}

func TestVerify(t *testing.T) {
	id, err := PayloadCID([]byte("frame"))
	if err != nil {
		t.Fatalf("PayloadCID: %v", err)
	}
	if err := Verify(id, []byte("frame")); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := Verify(id, []byte("other")); err == nil {
		t.Fatalf("expected mismatch")
	}
	if err := Verify(cid.Undef, nil); err == nil {
		t.Fatalf("expected undefined cid error")
	}
}
