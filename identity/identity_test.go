package identity_test

import (
	"bytes"
	"testing"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilclient/quilclient/errs"
	"github.com/quilclient/quilclient/identity"
	"github.com/quilclient/quilclient/keys"
)

var (
	testTimestamp = int64(1_700_000_000_123)
	testVersion   = []byte{1, 4, 21}
)

func root(b byte) []byte {
	return bytes.Repeat([]byte{b}, keys.RootSeedSize)
}

func signer(t *testing.T, scheme identity.Scheme, label string) keys.Signer {
	t.Helper()
	s, err := keys.New(scheme, root(7), label)
	require.NoError(t, err)
	return s
}

func schemes() []identity.Scheme {
	return []identity.Scheme{identity.SchemeEd448, identity.SchemeLibp2p}
}

func TestParsePublicKey_Scheme(t *testing.T) {
	for _, scheme := range schemes() {
		k, err := identity.ParsePublicKey(signer(t, scheme, "a").PublicKey())
		require.NoError(t, err)
		assert.Equal(t, scheme, k.Scheme())
	}
}

func TestParsePublicKey_Rejects(t *testing.T) {
	_, err := identity.ParsePublicKey(nil)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindMalformedField))
	assert.Equal(t, "IDENT-KEY-002", errs.RuleID(err))

	_, err = identity.ParsePublicKey([]byte{0xde, 0xad, 0xbe, 0xef})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindMalformedField))
	assert.Equal(t, "IDENT-KEY-001", errs.RuleID(err))
}

func TestDerivePeerID_Deterministic(t *testing.T) {
	for _, scheme := range schemes() {
		t.Run(scheme.String(), func(t *testing.T) {
			pub := signer(t, scheme, "a").PublicKey()

			a, err := identity.DerivePeerID(pub)
			require.NoError(t, err)
			b, err := identity.DerivePeerID(append([]byte(nil), pub...))
			require.NoError(t, err)
			assert.Equal(t, a, b)

			other, err := identity.DerivePeerID(signer(t, scheme, "b").PublicKey())
			require.NoError(t, err)
			assert.NotEqual(t, a, other)

			// Round trips through the base58 text form.
			decoded, err := peer.Decode(a.String())
			require.NoError(t, err)
			assert.Equal(t, a, decoded)
		})
	}
}

func TestDerivePeerID_Libp2pMatchesLibrary(t *testing.T) {
	pub := signer(t, identity.SchemeLibp2p, "a").PublicKey()
	k, err := identity.ParsePublicKey(pub)
	require.NoError(t, err)

	got, err := k.PeerID()
	require.NoError(t, err)

	// An Ed25519 marshaled key is short enough to be inlined.
	assert.True(t, len(pub) <= 42)
	extracted, err := got.ExtractPublicKey()
	require.NoError(t, err)
	assert.NotNil(t, extracted)
}

func TestDerivePeerID_Ed448Hashed(t *testing.T) {
	pub := signer(t, identity.SchemeEd448, "a").PublicKey()
	id, err := identity.DerivePeerID(pub)
	require.NoError(t, err)

	// 61-byte marshaled key exceeds the inline limit so the id is sha2-256 based.
	assert.Equal(t, "Qm", id.String()[:2])
}

func TestVerifySignature_Accepts(t *testing.T) {
	for _, scheme := range schemes() {
		t.Run(scheme.String(), func(t *testing.T) {
			rec, err := keys.SignRecord(signer(t, scheme, "a"), testTimestamp, testVersion)
			require.NoError(t, err)
			assert.NoError(t, identity.VerifySignature(rec.Timestamp, rec.Version, rec.PublicKey, rec.Signature))
		})
	}
}

func flip(b []byte, bit int) []byte {
	out := append([]byte(nil), b...)
	out[bit/8] ^= 1 << (bit % 8)
	return out
}

func TestVerifySignature_RejectsSingleBitFlips(t *testing.T) {
	for _, scheme := range schemes() {
		t.Run(scheme.String(), func(t *testing.T) {
			rec, err := keys.SignRecord(signer(t, scheme, "a"), testTimestamp, testVersion)
			require.NoError(t, err)

			for _, bit := range []int{0, 13, len(rec.Signature)*8 - 1} {
				err := identity.VerifySignature(rec.Timestamp, rec.Version, rec.PublicKey, flip(rec.Signature, bit))
				require.Error(t, err, "signature bit %d", bit)
				assert.True(t, errs.IsKind(err, errs.KindSignature))
			}

			for _, delta := range []int64{1, -1, 1 << 40} {
				err := identity.VerifySignature(rec.Timestamp^delta, rec.Version, rec.PublicKey, rec.Signature)
				require.Error(t, err, "timestamp delta %d", delta)
				assert.True(t, errs.IsKind(err, errs.KindSignature))
			}

			err = identity.VerifySignature(rec.Timestamp, flip(rec.Version, 0), rec.PublicKey, rec.Signature)
			require.Error(t, err)
			assert.True(t, errs.IsKind(err, errs.KindSignature))
		})
	}
}

func TestVerifySignature_RejectsTamperedKey(t *testing.T) {
	// Flipping a bit in a raw Ed448 key yields another 57-byte key (or an
	// invalid point); either way the signature must not verify.
	rec, err := keys.SignRecord(signer(t, identity.SchemeEd448, "a"), testTimestamp, testVersion)
	require.NoError(t, err)
	err = identity.VerifySignature(rec.Timestamp, rec.Version, flip(rec.PublicKey, 9), rec.Signature)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindSignature))

	// A different valid key over the same payload shape is also rejected.
	other := signer(t, identity.SchemeLibp2p, "b").PublicKey()
	rec2, err := keys.SignRecord(signer(t, identity.SchemeLibp2p, "a"), testTimestamp, testVersion)
	require.NoError(t, err)
	err = identity.VerifySignature(rec2.Timestamp, rec2.Version, other, rec2.Signature)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindSignature))
}

func TestVerifySignature_MissingSignature(t *testing.T) {
	pub := signer(t, identity.SchemeEd448, "a").PublicKey()
	err := identity.VerifySignature(testTimestamp, testVersion, pub, nil)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindMalformedField))
	assert.Equal(t, "IDENT-SIG-002", errs.RuleID(err))
}

func TestVerifySignature_WrongLengthEd448(t *testing.T) {
	pub := signer(t, identity.SchemeEd448, "a").PublicKey()
	err := identity.VerifySignature(testTimestamp, testVersion, pub, make([]byte, 64))
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindSignature))
}

func TestSignedPayload_Layout(t *testing.T) {
	got := identity.SignedPayload(0x0102030405060708, []byte{9}, []byte{10, 11})
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, got)
}
