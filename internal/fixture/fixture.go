// Package fixture turns a TOML description of a node's state into the
// responses served by node.StaticServer. Peer records are signed with keys
// derived from the fixture's root seed, so the same file always produces the
// same peer ids and signatures.
package fixture

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/holiman/uint256"

	"github.com/quilclient/quilclient/identity"
	"github.com/quilclient/quilclient/keys"
	"github.com/quilclient/quilclient/node"
	"github.com/quilclient/quilclient/record"
	"github.com/quilclient/quilclient/wire"
)

// Peer lists a peer can appear in.
const (
	ListNetwork       = "network"
	ListCooperative   = "cooperative"
	ListUncooperative = "uncooperative"
)

// Tamper modes corrupt a signed peer after signing.
const (
	TamperSignature = "signature"
	TamperPeerID    = "peer_id"
	TamperVersion   = "version"
)

// File is the decoded fixture.
type File struct {
	RootSeed string  `toml:"root_seed"`
	Peers    []Peer  `toml:"peers"`
	Frames   []Frame `toml:"frames"`
	Tokens   Tokens  `toml:"tokens"`
}

type Peer struct {
	Label      string   `toml:"label"`
	Scheme     string   `toml:"scheme"`
	Lists      []string `toml:"lists"`
	Multiaddrs []string `toml:"multiaddrs"`
	Score      float64  `toml:"score"`
	MaxFrame   uint64   `toml:"max_frame"`
	Timestamp  int64    `toml:"timestamp"`
	Version    string   `toml:"version"`
	Tamper     string   `toml:"tamper"`
}

type Frame struct {
	Filter         string `toml:"filter"`
	Number         uint64 `toml:"number"`
	Timestamp      int64  `toml:"timestamp"`
	Difficulty     uint32 `toml:"difficulty"`
	ParentSelector string `toml:"parent_selector"`
	// Payload is the hex frame body returned by GetFrameInfo. Empty means
	// the encoded metadata.
	Payload string `toml:"payload"`
}

// Tokens holds base-unit amounts as decimal strings.
type Tokens struct {
	ConfirmedSupply   string `toml:"confirmed_supply"`
	UnconfirmedSupply string `toml:"unconfirmed_supply"`
	Owned             string `toml:"owned"`
	UnconfirmedOwned  string `toml:"unconfirmed_owned"`
}

// Load decodes path. Unknown keys are rejected.
func Load(path string) (*File, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("load fixture: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load fixture: unknown key %s", undecoded[0])
	}
	return &f, nil
}

// Decode parses a fixture held in memory.
func Decode(data string) (*File, error) {
	var f File
	meta, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode fixture: unknown key %s", undecoded[0])
	}
	return &f, nil
}

// Apply signs every peer and installs all responses on srv.
func (f *File) Apply(srv *node.StaticServer) error {
	root, err := keys.ParseSeedHex(f.RootSeed, keys.RootSeedSize)
	if err != nil {
		return fmt.Errorf("root_seed: %w", err)
	}

	var (
		network wire.NetworkInfoResponse
		peers   wire.PeerInfoResponse
	)
	for i, p := range f.Peers {
		signed, err := p.sign(root)
		if err != nil {
			return fmt.Errorf("peers[%d] (%s): %w", i, p.Label, err)
		}
		lists := p.Lists
		if len(lists) == 0 {
			lists = []string{ListNetwork}
		}
		for _, l := range lists {
			switch l {
			case ListNetwork:
				network.NetworkInfo = append(network.NetworkInfo, wire.NetworkInfo{
					PeerID:     signed.PeerID,
					Multiaddrs: p.Multiaddrs,
					PeerScore:  p.Score,
					Timestamp:  signed.Timestamp,
					Version:    signed.Version,
					Signature:  signed.Signature,
					PublicKey:  signed.PublicKey,
				})
			case ListCooperative, ListUncooperative:
				info := wire.PeerInfo{
					PeerID:     signed.PeerID,
					Multiaddrs: p.Multiaddrs,
					MaxFrame:   p.MaxFrame,
					Timestamp:  signed.Timestamp,
					Version:    signed.Version,
					Signature:  signed.Signature,
					PublicKey:  signed.PublicKey,
				}
				if l == ListCooperative {
					peers.PeerInfo = append(peers.PeerInfo, info)
				} else {
					peers.UncooperativePeerInfo = append(peers.UncooperativePeerInfo, info)
				}
			default:
				return fmt.Errorf("peers[%d] (%s): unknown list %q", i, p.Label, l)
			}
		}
	}

	tokens, err := f.Tokens.build()
	if err != nil {
		return err
	}

	type frame struct {
		meta    wire.ClockFrame
		payload []byte
	}
	frames := make([]frame, 0, len(f.Frames))
	for i, fr := range f.Frames {
		meta, payload, err := fr.build()
		if err != nil {
			return fmt.Errorf("frames[%d]: %w", i, err)
		}
		frames = append(frames, frame{meta, payload})
	}

	for _, fr := range frames {
		srv.AddFrame(fr.meta, fr.payload)
	}
	srv.SetNetworkInfo(network)
	srv.SetPeerInfo(peers)
	srv.SetTokenInfo(tokens)
	return nil
}

func parseScheme(s string) (identity.Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ed448":
		return identity.SchemeEd448, nil
	case "libp2p", "ed25519":
		return identity.SchemeLibp2p, nil
	default:
		return 0, fmt.Errorf("unknown scheme %q", s)
	}
}

func parseVersion(s string) ([]byte, error) {
	if s == "" {
		return []byte{0, 0, 0}, nil
	}
	parts := strings.Split(s, ".")
	out := make([]byte, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("version %q: %w", s, err)
		}
		out = append(out, byte(n))
	}
	return out, nil
}

func (p Peer) sign(root []byte) (keys.SignedRecord, error) {
	scheme, err := parseScheme(p.Scheme)
	if err != nil {
		return keys.SignedRecord{}, err
	}
	version, err := parseVersion(p.Version)
	if err != nil {
		return keys.SignedRecord{}, err
	}
	signer, err := keys.New(scheme, root, p.Label)
	if err != nil {
		return keys.SignedRecord{}, err
	}
	rec, err := keys.SignRecord(signer, p.Timestamp, version)
	if err != nil {
		return keys.SignedRecord{}, err
	}

	switch p.Tamper {
	case "":
	case TamperSignature:
		rec.Signature[0] ^= 0x01
	case TamperPeerID:
		rec.PeerID[len(rec.PeerID)-1] ^= 0x01
	case TamperVersion:
		rec.Version = append(rec.Version, 0)
	default:
		return keys.SignedRecord{}, fmt.Errorf("unknown tamper mode %q", p.Tamper)
	}
	return rec, nil
}

func (fr Frame) build() (wire.ClockFrame, []byte, error) {
	name := fr.Filter
	if name == "" {
		name = record.CeremonyApplicationFilter.Name()
	}
	filter, err := record.FilterByName(name)
	if err != nil {
		return wire.ClockFrame{}, nil, err
	}
	meta := wire.ClockFrame{
		Filter:      filter.Bytes(),
		FrameNumber: fr.Number,
		Timestamp:   fr.Timestamp,
		Difficulty:  fr.Difficulty,
	}
	if fr.ParentSelector != "" {
		meta.ParentSelector, err = hex.DecodeString(fr.ParentSelector)
		if err != nil {
			return wire.ClockFrame{}, nil, fmt.Errorf("parent_selector: %w", err)
		}
	}
	var payload []byte
	if fr.Payload != "" {
		payload, err = hex.DecodeString(fr.Payload)
		if err != nil {
			return wire.ClockFrame{}, nil, fmt.Errorf("payload: %w", err)
		}
	}
	return meta, payload, nil
}

func (t Tokens) build() (wire.TokenInfoResponse, error) {
	var out wire.TokenInfoResponse
	fields := []struct {
		name string
		in   string
		dst  *[]byte
	}{
		{"tokens.confirmed_supply", t.ConfirmedSupply, &out.ConfirmedTokenSupply},
		{"tokens.unconfirmed_supply", t.UnconfirmedSupply, &out.UnconfirmedTokenSupply},
		{"tokens.owned", t.Owned, &out.OwnedTokens},
		{"tokens.unconfirmed_owned", t.UnconfirmedOwned, &out.UnconfirmedOwnedTokens},
	}
	var errList []error
	for _, f := range fields {
		b, err := encodeUnits(f.in)
		if err != nil {
			errList = append(errList, fmt.Errorf("%s: %w", f.name, err))
			continue
		}
		*f.dst = b
	}
	return out, errors.Join(errList...)
}

// encodeUnits renders a decimal base-unit amount as the 32-byte wire form.
func encodeUnits(s string) ([]byte, error) {
	if s == "" {
		s = "0"
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, err
	}
	b := v.Bytes32()
	return b[:], nil
}
