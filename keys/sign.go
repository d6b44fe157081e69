package keys

import (
	"crypto/ed25519"
	"fmt"

	"github.com/cloudflare/circl/sign/ed448"
	"github.com/libp2p/go-libp2p/core/crypto"

	"github.com/quilclient/quilclient/identity"
)

// Signer signs peer record payloads.
type Signer interface {
	// PublicKey returns the key bytes as a node puts them on the wire.
	PublicKey() []byte
	Sign(msg []byte) ([]byte, error)
}

// Ed448Signer signs with a raw Ed448 key, the network's native scheme.
type Ed448Signer struct {
	priv ed448.PrivateKey
	pub  ed448.PublicKey
}

// NewEd448 returns an Ed448 signer for a 57-byte seed.
func NewEd448(seed []byte) (*Ed448Signer, error) {
	if len(seed) != ed448.SeedSize {
		return nil, fmt.Errorf("ed448 seed must be %d bytes, got %d", ed448.SeedSize, len(seed))
	}
	priv := ed448.NewKeyFromSeed(seed)
	return &Ed448Signer{priv: priv, pub: priv.Public().(ed448.PublicKey)}, nil
}

func (s *Ed448Signer) PublicKey() []byte { return append([]byte(nil), s.pub...) }

func (s *Ed448Signer) Sign(msg []byte) ([]byte, error) {
	return ed448.Sign(s.priv, msg, ""), nil
}

// Libp2pSigner signs with a libp2p private key and publishes the
// libp2p-marshaled public key.
type Libp2pSigner struct {
	priv crypto.PrivKey
	pub  []byte
}

// NewEd25519 returns a libp2p Ed25519 signer for a 32-byte seed.
func NewEd25519(seed []byte) (*Libp2pSigner, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv, err := crypto.UnmarshalEd25519PrivateKey(ed25519.NewKeyFromSeed(seed))
	if err != nil {
		return nil, err
	}
	return NewLibp2p(priv)
}

// NewLibp2p wraps an existing libp2p private key.
func NewLibp2p(priv crypto.PrivKey) (*Libp2pSigner, error) {
	pub, err := crypto.MarshalPublicKey(priv.GetPublic())
	if err != nil {
		return nil, err
	}
	return &Libp2pSigner{priv: priv, pub: pub}, nil
}

func (s *Libp2pSigner) PublicKey() []byte { return append([]byte(nil), s.pub...) }

func (s *Libp2pSigner) Sign(msg []byte) ([]byte, error) { return s.priv.Sign(msg) }

// New returns a signer of the given scheme derived from root and label.
func New(scheme identity.Scheme, root []byte, label string) (Signer, error) {
	switch scheme {
	case identity.SchemeEd448:
		seed, err := DeriveSeed(root, label, ed448.SeedSize)
		if err != nil {
			return nil, err
		}
		return NewEd448(seed)
	case identity.SchemeLibp2p:
		seed, err := DeriveSeed(root, label, ed25519.SeedSize)
		if err != nil {
			return nil, err
		}
		return NewEd25519(seed)
	default:
		return nil, fmt.Errorf("unsupported scheme %s", scheme)
	}
}

// SignedRecord is the identity block a node attaches to a peer record.
type SignedRecord struct {
	PeerID    []byte
	Timestamp int64
	Version   []byte
	PublicKey []byte
	Signature []byte
}

// SignRecord signs (timestamp, version, public key) with s.
func SignRecord(s Signer, timestampMillis int64, version []byte) (SignedRecord, error) {
	pub := s.PublicKey()
	id, err := identity.DerivePeerID(pub)
	if err != nil {
		return SignedRecord{}, err
	}
	sig, err := s.Sign(identity.SignedPayload(timestampMillis, version, pub))
	if err != nil {
		return SignedRecord{}, err
	}
	return SignedRecord{
		PeerID:    []byte(id),
		Timestamp: timestampMillis,
		Version:   append([]byte(nil), version...),
		PublicKey: pub,
		Signature: sig,
	}, nil
}
