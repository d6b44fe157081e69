package keys

import (
	"bytes"
	"testing"

	"github.com/quilclient/quilclient/identity"
)

func testRoot() []byte {
	root := make([]byte, RootSeedSize)
	for i := range root {
		root[i] = byte(i)
	}
	return root
}

func TestDeriveSeedDeterministic(t *testing.T) {
	root := testRoot()

	a, err := DeriveSeed(root, "peer-1", 57)
	if err != nil {
		t.Fatalf("DeriveSeed: %v", err)
	}
	b, err := DeriveSeed(root, "peer-1", 57)
	if err != nil {
		t.Fatalf("DeriveSeed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("expected deterministic derivation")
	}

	c, err := DeriveSeed(root, "peer-2", 57)
	if err != nil {
		t.Fatalf("DeriveSeed: %v", err)
	}
	if bytes.Equal(a, c) {
		t.Fatalf("expected different labels to derive different seeds")
	}
}

func TestDeriveSeedRejectsBadInput(t *testing.T) {
	if _, err := DeriveSeed(make([]byte, 31), "x", 32); err == nil {
		t.Fatalf("expected short root to fail")
	}
	if _, err := DeriveSeed(testRoot(), "bad label", 32); err == nil {
		t.Fatalf("expected label with a space to fail")
	}
	if _, err := DeriveSeed(testRoot(), "x", 0); err == nil {
		t.Fatalf("expected zero size to fail")
	}
}

func TestParseSeedHex(t *testing.T) {
	seed, err := ParseSeedHex("0x"+"ab"+string(bytes.Repeat([]byte("00"), 31)), 32)
	if err != nil {
		t.Fatalf("ParseSeedHex: %v", err)
	}
	if seed[0] != 0xab {
		t.Fatalf("unexpected first byte %x", seed[0])
	}
	if _, err := ParseSeedHex("abcd", 32); err == nil {
		t.Fatalf("expected length error")
	}
}

func TestSignRecord_VerifiesForBothSchemes(t *testing.T) {
	for _, scheme := range []identity.Scheme{identity.SchemeEd448, identity.SchemeLibp2p} {
		t.Run(scheme.String(), func(t *testing.T) {
			s, err := New(scheme, testRoot(), "node-a")
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			rec, err := SignRecord(s, 1_700_000_000_000, []byte{1, 4, 21})
			if err != nil {
				t.Fatalf("SignRecord: %v", err)
			}
			if err := identity.VerifySignature(rec.Timestamp, rec.Version, rec.PublicKey, rec.Signature); err != nil {
				t.Fatalf("VerifySignature: %v", err)
			}
			id, err := identity.DerivePeerID(rec.PublicKey)
			if err != nil {
				t.Fatalf("DerivePeerID: %v", err)
			}
			if string(rec.PeerID) != string(id) {
				t.Fatalf("peer id mismatch")
			}
		})
	}
}
