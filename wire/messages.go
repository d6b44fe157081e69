// Package wire holds the protobuf messages of the node's NodeService.
//
// Messages are encoded and decoded directly with protowire so the module does
// not depend on generated code. Decoders skip field numbers they do not know,
// which keeps older clients working against newer nodes.
package wire

// Message is implemented by every request and response type in this package.
type Message interface {
	MarshalWire() ([]byte, error)
	UnmarshalWire(b []byte) error
}

// ClockFrame is the subset of a clock frame needed to describe it. Remaining
// fields (inputs, outputs, proofs) are skipped on decode.
type ClockFrame struct {
	Filter         []byte
	FrameNumber    uint64
	Timestamp      int64
	Difficulty     uint32
	ParentSelector []byte
}

func (m *ClockFrame) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytes(b, 1, m.Filter)
	b = appendVarint(b, 2, m.FrameNumber)
	b = appendVarint(b, 3, uint64(m.Timestamp))
	b = appendVarint(b, 4, uint64(m.Difficulty))
	b = appendBytes(b, 5, m.ParentSelector)
	return b, nil
}

func (m *ClockFrame) UnmarshalWire(b []byte) error {
	*m = ClockFrame{}
	return walk("ClockFrame", b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Filter, err = f.asBytes()
		case 2:
			m.FrameNumber, err = f.asUint64()
		case 3:
			m.Timestamp, err = f.asInt64()
		case 4:
			m.Difficulty, err = f.asUint32()
		case 5:
			m.ParentSelector, err = f.asBytes()
		}
		return err
	})
}

// PeerInfo is one entry of the sync broadcast returned by GetPeerInfo.
type PeerInfo struct {
	PeerID     []byte
	Multiaddrs []string
	MaxFrame   uint64
	Timestamp  int64
	Version    []byte
	Signature  []byte
	PublicKey  []byte
}

func (m *PeerInfo) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytes(b, 1, m.PeerID)
	for _, a := range m.Multiaddrs {
		b = appendMessage(b, 2, []byte(a))
	}
	b = appendVarint(b, 3, m.MaxFrame)
	b = appendVarint(b, 4, uint64(m.Timestamp))
	b = appendBytes(b, 5, m.Version)
	b = appendBytes(b, 6, m.Signature)
	b = appendBytes(b, 7, m.PublicKey)
	return b, nil
}

func (m *PeerInfo) UnmarshalWire(b []byte) error {
	*m = PeerInfo{}
	return walk("PeerInfo", b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.PeerID, err = f.asBytes()
		case 2:
			var s string
			if s, err = f.asString(); err == nil {
				m.Multiaddrs = append(m.Multiaddrs, s)
			}
		case 3:
			m.MaxFrame, err = f.asUint64()
		case 4:
			m.Timestamp, err = f.asInt64()
		case 5:
			m.Version, err = f.asBytes()
		case 6:
			m.Signature, err = f.asBytes()
		case 7:
			m.PublicKey, err = f.asBytes()
		}
		return err
	})
}

// NetworkInfo is one entry of the peer store returned by GetNetworkInfo.
type NetworkInfo struct {
	PeerID     []byte
	Multiaddrs []string
	PeerScore  float64
	Timestamp  int64
	Version    []byte
	Signature  []byte
	PublicKey  []byte
}

func (m *NetworkInfo) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytes(b, 1, m.PeerID)
	for _, a := range m.Multiaddrs {
		b = appendMessage(b, 2, []byte(a))
	}
	b = appendDouble(b, 3, m.PeerScore)
	b = appendVarint(b, 4, uint64(m.Timestamp))
	b = appendBytes(b, 5, m.Version)
	b = appendBytes(b, 6, m.Signature)
	b = appendBytes(b, 7, m.PublicKey)
	return b, nil
}

func (m *NetworkInfo) UnmarshalWire(b []byte) error {
	*m = NetworkInfo{}
	return walk("NetworkInfo", b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.PeerID, err = f.asBytes()
		case 2:
			var s string
			if s, err = f.asString(); err == nil {
				m.Multiaddrs = append(m.Multiaddrs, s)
			}
		case 3:
			m.PeerScore, err = f.asDouble()
		case 4:
			m.Timestamp, err = f.asInt64()
		case 5:
			m.Version, err = f.asBytes()
		case 6:
			m.Signature, err = f.asBytes()
		case 7:
			m.PublicKey, err = f.asBytes()
		}
		return err
	})
}

// PeerInfoResponse carries the cooperative and uncooperative sync broadcasts.
type PeerInfoResponse struct {
	PeerInfo              []PeerInfo
	UncooperativePeerInfo []PeerInfo
}

func (m *PeerInfoResponse) MarshalWire() ([]byte, error) {
	var b []byte
	for i := range m.PeerInfo {
		sub, _ := m.PeerInfo[i].MarshalWire()
		b = appendMessage(b, 1, sub)
	}
	for i := range m.UncooperativePeerInfo {
		sub, _ := m.UncooperativePeerInfo[i].MarshalWire()
		b = appendMessage(b, 2, sub)
	}
	return b, nil
}

func (m *PeerInfoResponse) UnmarshalWire(b []byte) error {
	*m = PeerInfoResponse{}
	return walk("PeerInfoResponse", b, func(f field) error {
		var dst *[]PeerInfo
		switch f.num {
		case 1:
			dst = &m.PeerInfo
		case 2:
			dst = &m.UncooperativePeerInfo
		default:
			return nil
		}
		if err := f.want(bytesType); err != nil {
			return err
		}
		var p PeerInfo
		if err := p.UnmarshalWire(f.raw); err != nil {
			return err
		}
		*dst = append(*dst, p)
		return nil
	})
}

// NetworkInfoResponse is the peer store snapshot.
type NetworkInfoResponse struct {
	NetworkInfo []NetworkInfo
}

func (m *NetworkInfoResponse) MarshalWire() ([]byte, error) {
	var b []byte
	for i := range m.NetworkInfo {
		sub, _ := m.NetworkInfo[i].MarshalWire()
		b = appendMessage(b, 1, sub)
	}
	return b, nil
}

func (m *NetworkInfoResponse) UnmarshalWire(b []byte) error {
	*m = NetworkInfoResponse{}
	return walk("NetworkInfoResponse", b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		if err := f.want(bytesType); err != nil {
			return err
		}
		var n NetworkInfo
		if err := n.UnmarshalWire(f.raw); err != nil {
			return err
		}
		m.NetworkInfo = append(m.NetworkInfo, n)
		return nil
	})
}

// GetFramesRequest asks for frames of one filter in [FromFrameNumber, ToFrameNumber).
type GetFramesRequest struct {
	Filter            []byte
	FromFrameNumber   uint64
	ToFrameNumber     uint64
	IncludeCandidates bool
}

func (m *GetFramesRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytes(b, 1, m.Filter)
	b = appendVarint(b, 2, m.FromFrameNumber)
	b = appendVarint(b, 3, m.ToFrameNumber)
	b = appendBool(b, 4, m.IncludeCandidates)
	return b, nil
}

func (m *GetFramesRequest) UnmarshalWire(b []byte) error {
	*m = GetFramesRequest{}
	return walk("GetFramesRequest", b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Filter, err = f.asBytes()
		case 2:
			m.FromFrameNumber, err = f.asUint64()
		case 3:
			m.ToFrameNumber, err = f.asUint64()
		case 4:
			m.IncludeCandidates, err = f.asBool()
		}
		return err
	})
}

// FramesResponse lists truncated frames (metadata only).
type FramesResponse struct {
	TruncatedClockFrames []ClockFrame
}

func (m *FramesResponse) MarshalWire() ([]byte, error) {
	var b []byte
	for i := range m.TruncatedClockFrames {
		sub, _ := m.TruncatedClockFrames[i].MarshalWire()
		b = appendMessage(b, 1, sub)
	}
	return b, nil
}

func (m *FramesResponse) UnmarshalWire(b []byte) error {
	*m = FramesResponse{}
	return walk("FramesResponse", b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		if err := f.want(bytesType); err != nil {
			return err
		}
		var c ClockFrame
		if err := c.UnmarshalWire(f.raw); err != nil {
			return err
		}
		m.TruncatedClockFrames = append(m.TruncatedClockFrames, c)
		return nil
	})
}

// GetFrameInfoRequest addresses one full frame.
type GetFrameInfoRequest struct {
	Filter      []byte
	FrameNumber uint64
	Selector    []byte
}

func (m *GetFrameInfoRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytes(b, 1, m.Filter)
	b = appendVarint(b, 2, m.FrameNumber)
	b = appendBytes(b, 3, m.Selector)
	return b, nil
}

func (m *GetFrameInfoRequest) UnmarshalWire(b []byte) error {
	*m = GetFrameInfoRequest{}
	return walk("GetFrameInfoRequest", b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Filter, err = f.asBytes()
		case 2:
			m.FrameNumber, err = f.asUint64()
		case 3:
			m.Selector, err = f.asBytes()
		}
		return err
	})
}

// FrameInfoResponse keeps the clock frame as the exact bytes the node sent.
// A nil ClockFrame means the node has no such frame.
type FrameInfoResponse struct {
	ClockFrame []byte
}

func (m *FrameInfoResponse) MarshalWire() ([]byte, error) {
	if m.ClockFrame == nil {
		return nil, nil
	}
	return appendMessage(nil, 1, m.ClockFrame), nil
}

func (m *FrameInfoResponse) UnmarshalWire(b []byte) error {
	*m = FrameInfoResponse{}
	return walk("FrameInfoResponse", b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		if err := f.want(bytesType); err != nil {
			return err
		}
		m.ClockFrame = append([]byte{}, f.raw...)
		return nil
	})
}

// TokenInfoResponse carries four 32-byte big-endian amounts.
type TokenInfoResponse struct {
	ConfirmedTokenSupply   []byte
	UnconfirmedTokenSupply []byte
	OwnedTokens            []byte
	UnconfirmedOwnedTokens []byte
}

func (m *TokenInfoResponse) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytes(b, 1, m.ConfirmedTokenSupply)
	b = appendBytes(b, 2, m.UnconfirmedTokenSupply)
	b = appendBytes(b, 3, m.OwnedTokens)
	b = appendBytes(b, 4, m.UnconfirmedOwnedTokens)
	return b, nil
}

func (m *TokenInfoResponse) UnmarshalWire(b []byte) error {
	*m = TokenInfoResponse{}
	return walk("TokenInfoResponse", b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.ConfirmedTokenSupply, err = f.asBytes()
		case 2:
			m.UnconfirmedTokenSupply, err = f.asBytes()
		case 3:
			m.OwnedTokens, err = f.asBytes()
		case 4:
			m.UnconfirmedOwnedTokens, err = f.asBytes()
		}
		return err
	})
}

// Empty is the request of the parameterless RPCs.
type Empty struct{}

func (*Empty) MarshalWire() ([]byte, error) { return nil, nil }

func (*Empty) UnmarshalWire(b []byte) error {
	return walk("Empty", b, func(field) error { return nil })
}
