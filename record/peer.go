package record

import (
	"fmt"
	"math"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"

	"github.com/quilclient/quilclient/errs"
	"github.com/quilclient/quilclient/identity"
	"github.com/quilclient/quilclient/wire"
)

// VersionWidth is the byte length of a node version.
const VersionWidth = 3

// Version is a node software version, rendered as a.b.c.
type Version [VersionWidth]byte

// ParseVersion validates b as a version.
func ParseVersion(b []byte) (Version, error) {
	if len(b) != VersionWidth {
		return Version{}, errs.New(errs.KindMalformedField, "RECORD-VERSION-001", "version",
			fmt.Sprintf("expected %d bytes, got %d", VersionWidth, len(b)))
	}
	return Version(b), nil
}

func (v Version) String() string { return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2]) }

// signedIdentity is the part shared by peer store and sync entries: who the
// peer is, where it listens and the signature binding them.
type signedIdentity struct {
	id         peer.ID
	multiaddrs []multiaddr.Multiaddr
	timestamp  time.Time
	version    Version
	publicKey  []byte
	signature  []byte
}

func (s signedIdentity) PeerID() peer.ID { return s.id }
func (s signedIdentity) Timestamp() time.Time { return s.timestamp }
func (s signedIdentity) Version() Version { return s.version }
func (s signedIdentity) PublicKey() []byte { return append([]byte(nil), s.publicKey...) }
func (s signedIdentity) Signature() []byte { return append([]byte(nil), s.signature...) }

func (s signedIdentity) Multiaddrs() []multiaddr.Multiaddr {
	return append([]multiaddr.Multiaddr(nil), s.multiaddrs...)
}

type identityFields struct {
	peerID     []byte
	multiaddrs []string
	timestamp  int64
	version    []byte
	signature  []byte
	publicKey  []byte
}

// build checks field shape first, then the key and claimed id, and the
// signature last.
func (in identityFields) build() (signedIdentity, error) {
	switch {
	case len(in.peerID) == 0:
		return signedIdentity{}, errs.New(errs.KindMalformedField, "RECORD-REQ-001", "peer_id", "missing peer id")
	case len(in.publicKey) == 0:
		return signedIdentity{}, errs.New(errs.KindMalformedField, "RECORD-REQ-001", "public_key", "missing public key")
	case len(in.signature) == 0:
		return signedIdentity{}, errs.New(errs.KindMalformedField, "RECORD-REQ-001", "signature", "missing signature")
	}

	ts, err := timestamp(in.timestamp)
	if err != nil {
		return signedIdentity{}, err
	}
	version, err := ParseVersion(in.version)
	if err != nil {
		return signedIdentity{}, err
	}
	addrs := make([]multiaddr.Multiaddr, 0, len(in.multiaddrs))
	for i, s := range in.multiaddrs {
		a, err := multiaddr.NewMultiaddr(s)
		if err != nil {
			return signedIdentity{}, errs.Wrap(errs.KindMalformedField, "RECORD-ADDR-001",
				fmt.Sprintf("multiaddrs[%d]", i), fmt.Sprintf("unparsable multiaddr %q", s), err)
		}
		addrs = append(addrs, a)
	}

	key, err := identity.ParsePublicKey(in.publicKey)
	if err != nil {
		return signedIdentity{}, err
	}
	derived, err := key.PeerID()
	if err != nil {
		return signedIdentity{}, err
	}
	claimed, err := peer.IDFromBytes(in.peerID)
	if err != nil {
		return signedIdentity{}, errs.Wrap(errs.KindMalformedField, "RECORD-ID-002", "peer_id", "undecodable peer id", err)
	}
	if claimed != derived {
		return signedIdentity{}, errs.New(errs.KindIdentifierMismatch, "RECORD-ID-001", "peer_id",
			fmt.Sprintf("claimed %s, public key derives %s", claimed, derived))
	}

	if err := key.VerifyRecord(in.timestamp, in.version, in.signature); err != nil {
		return signedIdentity{}, err
	}

	return signedIdentity{
		id:         derived,
		multiaddrs: addrs,
		timestamp:  ts,
		version:    version,
		publicKey:  key.Bytes(),
		signature:  append([]byte(nil), in.signature...),
	}, nil
}

// PeerRecord is a validated entry of a node's peer store.
type PeerRecord struct {
	signedIdentity
	score float64
}

// Score is the peer's reputation score as reported by the node.
func (r PeerRecord) Score() float64 { return r.score }

// SyncRecord is a validated entry of the sync broadcast.
type SyncRecord struct {
	signedIdentity
	maxFrame FrameNumber
}

// MaxFrame is the highest frame the peer claims to hold.
func (r SyncRecord) MaxFrame() FrameNumber { return r.maxFrame }

// BuildPeer validates a peer store entry.
func BuildPeer(in wire.NetworkInfo) (PeerRecord, error) {
	if math.IsNaN(in.PeerScore) || math.IsInf(in.PeerScore, 0) {
		return PeerRecord{}, errs.New(errs.KindMalformedField, "RECORD-SCORE-001", "peer_score",
			fmt.Sprintf("non-finite score %v", in.PeerScore))
	}
	id, err := identityFields{
		peerID:     in.PeerID,
		multiaddrs: in.Multiaddrs,
		timestamp:  in.Timestamp,
		version:    in.Version,
		signature:  in.Signature,
		publicKey:  in.PublicKey,
	}.build()
	if err != nil {
		return PeerRecord{}, err
	}
	return PeerRecord{signedIdentity: id, score: in.PeerScore}, nil
}

// BuildSync validates a sync broadcast entry.
func BuildSync(in wire.PeerInfo) (SyncRecord, error) {
	id, err := identityFields{
		peerID:     in.PeerID,
		multiaddrs: in.Multiaddrs,
		timestamp:  in.Timestamp,
		version:    in.Version,
		signature:  in.Signature,
		publicKey:  in.PublicKey,
	}.build()
	if err != nil {
		return SyncRecord{}, err
	}
	return SyncRecord{signedIdentity: id, maxFrame: FrameNumberFrom(in.MaxFrame)}, nil
}
