// Package identity derives libp2p peer ids from public keys and verifies the
// signatures nodes attach to their self-reported peer records.
//
// Two key encodings are accepted:
//   - raw 57-byte Ed448 keys, which is how nodes on the network identify themselves;
//   - libp2p protobuf-marshaled keys (Ed25519, Secp256k1, ECDSA, RSA).
package identity

import (
	"encoding/binary"
	"fmt"

	"github.com/cloudflare/circl/sign/ed448"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multihash"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/quilclient/quilclient/errs"
)

// Scheme names the signature scheme of a public key.
type Scheme int

const (
	SchemeLibp2p Scheme = iota + 1
	SchemeEd448
)

func (s Scheme) String() string {
	switch s {
	case SchemeLibp2p:
		return "libp2p"
	case SchemeEd448:
		return "ed448"
	default:
		return "unknown"
	}
}

// KeyTypeEd448 is the libp2p key type number the network assigns to Ed448.
const KeyTypeEd448 = 4

// maxInlineKeyLength mirrors libp2p: marshaled keys up to this size are
// embedded in the peer id with the identity multihash.
const maxInlineKeyLength = 42

// PublicKey is a parsed public key.
type PublicKey struct {
	scheme Scheme
	raw    []byte
	lp     crypto.PubKey
}

// ParsePublicKey decodes b. A 57-byte input is a raw Ed448 key; anything else
// must be a libp2p-marshaled key.
func ParsePublicKey(b []byte) (PublicKey, error) {
	if len(b) == 0 {
		return PublicKey{}, errs.New(errs.KindMalformedField, "IDENT-KEY-002", "public_key", "missing public key")
	}
	if len(b) == ed448.PublicKeySize {
		return PublicKey{scheme: SchemeEd448, raw: append([]byte(nil), b...)}, nil
	}
	pk, err := crypto.UnmarshalPublicKey(b)
	if err != nil {
		return PublicKey{}, errs.Wrap(errs.KindMalformedField, "IDENT-KEY-001", "public_key", "undecodable public key", err)
	}
	return PublicKey{scheme: SchemeLibp2p, raw: append([]byte(nil), b...), lp: pk}, nil
}

// Scheme returns the key's signature scheme.
func (k PublicKey) Scheme() Scheme { return k.scheme }

// Bytes returns a copy of the key as it appeared on the wire.
func (k PublicKey) Bytes() []byte { return append([]byte(nil), k.raw...) }

// PeerID derives the libp2p peer id of k.
func (k PublicKey) PeerID() (peer.ID, error) {
	switch k.scheme {
	case SchemeLibp2p:
		id, err := peer.IDFromPublicKey(k.lp)
		if err != nil {
			return "", errs.Wrap(errs.KindMalformedField, "IDENT-KEY-003", "public_key", "cannot derive peer id", err)
		}
		return id, nil
	case SchemeEd448:
		return idFromMarshaledKey(marshalEd448(k.raw))
	default:
		return "", errs.New(errs.KindInternal, "IDENT-INT-001", "", "zero PublicKey")
	}
}

// Verify reports whether sig is a valid signature of msg under k.
func (k PublicKey) Verify(msg, sig []byte) (bool, error) {
	switch k.scheme {
	case SchemeLibp2p:
		return k.lp.Verify(msg, sig)
	case SchemeEd448:
		if len(sig) != ed448.SignatureSize {
			return false, nil
		}
		return ed448.Verify(ed448.PublicKey(k.raw), msg, sig, ""), nil
	default:
		return false, errs.New(errs.KindInternal, "IDENT-INT-001", "", "zero PublicKey")
	}
}

// marshalEd448 encodes the key the way libp2p marshals its crypto.pb.PublicKey:
// field 1 is the key type, field 2 the key bytes.
func marshalEd448(raw []byte) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, KeyTypeEd448)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, raw)
	return b
}

func idFromMarshaledKey(b []byte) (peer.ID, error) {
	code := uint64(multihash.SHA2_256)
	if len(b) <= maxInlineKeyLength {
		code = multihash.IDENTITY
	}
	mh, err := multihash.Sum(b, code, -1)
	if err != nil {
		return "", errs.Wrap(errs.KindInternal, "IDENT-INT-002", "", "multihash failed", err)
	}
	return peer.IDFromBytes(mh)
}

// DerivePeerID returns the peer id for a public key. Equal keys always yield
// equal ids.
func DerivePeerID(publicKey []byte) (peer.ID, error) {
	k, err := ParsePublicKey(publicKey)
	if err != nil {
		return "", err
	}
	return k.PeerID()
}

// SignedPayload returns the byte sequence a node signs for its peer record.
//
// Layout (v1): 8-byte big-endian timestamp in milliseconds, the version bytes,
// then the public key bytes as carried on the wire.
func SignedPayload(timestampMillis int64, version, publicKey []byte) []byte {
	out := make([]byte, 0, 8+len(version)+len(publicKey))
	out = binary.BigEndian.AppendUint64(out, uint64(timestampMillis))
	out = append(out, version...)
	out = append(out, publicKey...)
	return out
}

// VerifySignature checks signature over SignedPayload(timestamp, version, publicKey).
func VerifySignature(timestampMillis int64, version, publicKey, signature []byte) error {
	k, err := ParsePublicKey(publicKey)
	if err != nil {
		return err
	}
	return k.VerifyRecord(timestampMillis, version, signature)
}

// VerifyRecord is VerifySignature for an already parsed key.
func (k PublicKey) VerifyRecord(timestampMillis int64, version, signature []byte) error {
	if len(signature) == 0 {
		return errs.New(errs.KindMalformedField, "IDENT-SIG-002", "signature", "missing signature")
	}
	ok, err := k.Verify(SignedPayload(timestampMillis, version, k.raw), signature)
	if err != nil {
		return errs.Wrap(errs.KindSignature, "IDENT-SIG-001", "signature",
			fmt.Sprintf("%s signature invalid", k.scheme), err)
	}
	if !ok {
		return errs.New(errs.KindSignature, "IDENT-SIG-001", "signature",
			fmt.Sprintf("%s signature invalid", k.scheme))
	}
	return nil
}
