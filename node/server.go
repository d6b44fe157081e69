package node

import (
	"context"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/quilclient/quilclient/record"
	"github.com/quilclient/quilclient/wire"
)

// StaticServer serves fixed responses. It backs the fixture daemon and tests.
type StaticServer struct {
	UnimplementedNodeServiceServer

	mu      sync.RWMutex
	network wire.NetworkInfoResponse
	peers   wire.PeerInfoResponse
	tokens  wire.TokenInfoResponse
	frames  []storedFrame
}

type storedFrame struct {
	meta    wire.ClockFrame
	payload []byte
}

// SetNetworkInfo replaces the peer store response.
func (s *StaticServer) SetNetworkInfo(r wire.NetworkInfoResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.network = r
}

// SetPeerInfo replaces the sync broadcast response.
func (s *StaticServer) SetPeerInfo(r wire.PeerInfoResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers = r
}

// SetTokenInfo replaces the token info response.
func (s *StaticServer) SetTokenInfo(r wire.TokenInfoResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = r
}

// AddFrame stores a frame. A nil payload is replaced by the metadata encoding.
func (s *StaticServer) AddFrame(meta wire.ClockFrame, payload []byte) {
	if payload == nil {
		payload, _ = meta.MarshalWire()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, storedFrame{meta: meta, payload: append([]byte{}, payload...)})
}

func (s *StaticServer) GetFrames(_ context.Context, in *wire.GetFramesRequest) (*wire.FramesResponse, error) {
	filter, err := record.ParseFrameFilter(in.Filter)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := &wire.FramesResponse{}
	for _, f := range s.frames {
		if string(f.meta.Filter) != string(filter[:]) {
			continue
		}
		if f.meta.FrameNumber < in.FromFrameNumber || f.meta.FrameNumber >= in.ToFrameNumber {
			continue
		}
		out.TruncatedClockFrames = append(out.TruncatedClockFrames, f.meta)
	}
	return out, nil
}

func (s *StaticServer) GetFrameInfo(_ context.Context, in *wire.GetFrameInfoRequest) (*wire.FrameInfoResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.frames {
		if string(f.meta.Filter) == string(in.Filter) && f.meta.FrameNumber == in.FrameNumber {
			return &wire.FrameInfoResponse{ClockFrame: f.payload}, nil
		}
	}
	return nil, status.Error(codes.NotFound, "frame not found")
}

func (s *StaticServer) GetPeerInfo(context.Context, *wire.Empty) (*wire.PeerInfoResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.peers
	return &r, nil
}

func (s *StaticServer) GetNetworkInfo(context.Context, *wire.Empty) (*wire.NetworkInfoResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.network
	return &r, nil
}

func (s *StaticServer) GetTokenInfo(context.Context, *wire.Empty) (*wire.TokenInfoResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.tokens
	return &r, nil
}
