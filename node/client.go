// Package node is a gRPC client (and test server) for a node's NodeService.
package node

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/quilclient/quilclient/record"
	"github.com/quilclient/quilclient/wire"
)

// DefaultMaxMsgBytes is the default receive limit. Frame payloads routinely
// exceed gRPC's 4 MiB default.
const DefaultMaxMsgBytes = 25 * 1024 * 1024

// Client talks to one node.
type Client struct {
	cc     *grpc.ClientConn
	client NodeServiceClient
	log    zerolog.Logger

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout, when non-zero, makes Dial connect eagerly and fail if the
	// connection is not ready in time. Zero leaves the connection lazy.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes; zero means DefaultMaxMsgBytes.
	MaxMsgBytes int

	// Logger receives one debug line per RPC. Nil disables logging.
	Logger *zerolog.Logger
}

// Target converts a node address into a gRPC dial target. Accepted forms are
// http://host:port, host:port and a /ip4|ip6|dns/.../tcp/port multiaddr.
func Target(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return "", errors.New("empty node uri")
	case strings.HasPrefix(uri, "/"):
		ma, err := multiaddr.NewMultiaddr(uri)
		if err != nil {
			return "", fmt.Errorf("node uri %q: %w", uri, err)
		}
		network, hostport, err := manet.DialArgs(ma)
		if err != nil {
			return "", fmt.Errorf("node uri %q: %w", uri, err)
		}
		if !strings.HasPrefix(network, "tcp") {
			return "", fmt.Errorf("node uri %q: gRPC needs a tcp address, got %s", uri, network)
		}
		return hostport, nil
	case strings.Contains(uri, "://"):
		u, err := url.Parse(uri)
		if err != nil {
			return "", fmt.Errorf("node uri %q: %w", uri, err)
		}
		switch u.Scheme {
		case "http", "grpc":
		default:
			return "", fmt.Errorf("node uri %q: unsupported scheme %q", uri, u.Scheme)
		}
		if u.Host == "" {
			return "", fmt.Errorf("node uri %q: missing host", uri)
		}
		return u.Host, nil
	default:
		return uri, nil
	}
}

// Dial connects to a node. uri is anything Target accepts.
func Dial(uri string, opts DialOptions) (*Client, error) {
	target, err := Target(uri)
	if err != nil {
		return nil, err
	}
	maxMsg := opts.MaxMsgBytes
	if maxMsg <= 0 {
		maxMsg = DefaultMaxMsgBytes
	}
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMsg),
			grpc.MaxCallSendMsgSize(maxMsg),
		),
	}

	cc, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	if opts.Timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		defer cancel()
		if err := waitReady(ctx, cc); err != nil {
			_ = cc.Close()
			return nil, fmt.Errorf("dial %s: %w", target, err)
		}
	}
	return NewClient(cc, opts.Logger), nil
}

// waitReady connects cc and blocks until it is ready or ctx is done.
func waitReady(ctx context.Context, cc *grpc.ClientConn) error {
	for {
		state := cc.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Idle:
			cc.Connect()
		}
		if !cc.WaitForStateChange(ctx, state) {
			return fmt.Errorf("%w: last state %s", ctx.Err(), state)
		}
	}
}

// NewClient wraps an existing connection.
func NewClient(cc *grpc.ClientConn, log *zerolog.Logger) *Client {
	l := zerolog.Nop()
	if log != nil {
		l = log.With().Str("component", "node").Logger()
	}
	return &Client{cc: cc, client: NewNodeServiceClient(cc), log: l}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// FramesQuery selects frames of one filter in [From, To).
type FramesQuery struct {
	Filter            record.FrameFilter
	From              uint64
	To                uint64
	IncludeCandidates bool
}

// Frames fetches frame metadata.
func (c *Client) Frames(ctx context.Context, q FramesQuery) (*wire.FramesResponse, error) {
	var out *wire.FramesResponse
	err := c.call(ctx, "GetFrames", func(ctx context.Context) (err error) {
		out, err = c.client.GetFrames(ctx, &wire.GetFramesRequest{
			Filter:            q.Filter.Bytes(),
			FromFrameNumber:   q.From,
			ToFrameNumber:     q.To,
			IncludeCandidates: q.IncludeCandidates,
		})
		return err
	})
	return out, err
}

// FrameInfo fetches the full frame at addr. The payload is returned exactly as
// the node encoded it. found is false when the node has no such frame.
func (c *Client) FrameInfo(ctx context.Context, addr record.FrameAddress) (payload []byte, found bool, err error) {
	number, ok := addr.Number.Uint64()
	if !ok {
		return nil, false, fmt.Errorf("GetFrameInfo: frame number %s exceeds 64 bits", addr.Number)
	}
	var out *wire.FrameInfoResponse
	err = c.call(ctx, "GetFrameInfo", func(ctx context.Context) (err error) {
		out, err = c.client.GetFrameInfo(ctx, &wire.GetFrameInfoRequest{
			Filter:      addr.Filter.Bytes(),
			FrameNumber: number,
		})
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if out.ClockFrame == nil {
		return nil, false, nil
	}
	return out.ClockFrame, true, nil
}

// NetworkInfo fetches the node's peer store.
func (c *Client) NetworkInfo(ctx context.Context) (*wire.NetworkInfoResponse, error) {
	var out *wire.NetworkInfoResponse
	err := c.call(ctx, "GetNetworkInfo", func(ctx context.Context) (err error) {
		out, err = c.client.GetNetworkInfo(ctx, &wire.Empty{})
		return err
	})
	return out, err
}

// PeerInfo fetches the sync broadcast the node has seen.
func (c *Client) PeerInfo(ctx context.Context) (*wire.PeerInfoResponse, error) {
	var out *wire.PeerInfoResponse
	err := c.call(ctx, "GetPeerInfo", func(ctx context.Context) (err error) {
		out, err = c.client.GetPeerInfo(ctx, &wire.Empty{})
		return err
	})
	return out, err
}

// TokenInfo fetches token supply and balances.
func (c *Client) TokenInfo(ctx context.Context) (*wire.TokenInfoResponse, error) {
	var out *wire.TokenInfoResponse
	err := c.call(ctx, "GetTokenInfo", func(ctx context.Context) (err error) {
		out, err = c.client.GetTokenInfo(ctx, &wire.Empty{})
		return err
	})
	return out, err
}

func (c *Client) call(ctx context.Context, method string, fn func(context.Context) error) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("%s: %w: client not connected", method, ErrUnavailable)
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	start := time.Now()
	err := mapRPC(method, fn(ctx))
	c.log.Debug().
		Str("method", method).
		Dur("elapsed", time.Since(start)).
		Err(err).
		Msg("rpc")
	return err
}
