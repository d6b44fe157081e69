package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quilclient/quilclient/internal/config"
	"github.com/quilclient/quilclient/internal/logging"
	"github.com/quilclient/quilclient/node"
	"github.com/quilclient/quilclient/record"
	"github.com/quilclient/quilclient/wire"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// nodeAPI is the subset of *node.Client the commands use.
type nodeAPI interface {
	Frames(ctx context.Context, q node.FramesQuery) (*wire.FramesResponse, error)
	FrameInfo(ctx context.Context, addr record.FrameAddress) ([]byte, bool, error)
	NetworkInfo(ctx context.Context) (*wire.NetworkInfoResponse, error)
	PeerInfo(ctx context.Context) (*wire.PeerInfoResponse, error)
	TokenInfo(ctx context.Context) (*wire.TokenInfoResponse, error)
	Close() error
}

type deps struct {
	getenv func(string) string
	dial   func(uri string, opts node.DialOptions) (nodeAPI, error)
}

func defaultDeps() deps {
	return deps{
		getenv: os.Getenv,
		dial: func(uri string, opts node.DialOptions) (nodeAPI, error) {
			return node.Dial(uri, opts)
		},
	}
}

// globals are accepted before or after the command name.
type globals struct {
	nodeURI    string
	configPath string
	logLevel   string
}

func (g *globals) register(fs *flag.FlagSet) {
	fs.StringVar(&g.nodeURI, "node-uri", g.nodeURI, "gRPC URI of the node, e.g. http://1.2.3.4:8337 (env "+config.EnvNodeURI+")")
	fs.StringVar(&g.nodeURI, "u", g.nodeURI, "shorthand for --node-uri")
	fs.StringVar(&g.configPath, "config", g.configPath, "TOML config file")
	fs.StringVar(&g.logLevel, "log-level", g.logLevel, "trace|debug|info|warn|error|disabled")
}

// session is what a command needs once flags are parsed.
type session struct {
	cfg    config.Config
	log    zerolog.Logger
	out    io.Writer
	errOut io.Writer
	deps   deps
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	return runWith(args, out, errOut, defaultDeps())
}

func runWith(args []string, out io.Writer, errOut io.Writer, d deps) int {
	var g globals
	fs := flag.NewFlagSet("quilclient", flag.ContinueOnError)
	fs.SetOutput(errOut)
	g.register(fs)
	fs.Usage = func() { printUsage(errOut) }
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(errOut)
		return 2
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		switch rest[0] {
		case "help", "-h", "--help":
			printUsage(out)
			return 0
		}
		fmt.Fprintf(errOut, "unknown command: %s\n\n", rest[0])
		printUsage(errOut)
		return 2
	}

	sub := flag.NewFlagSet("quilclient "+rest[0], flag.ContinueOnError)
	sub.SetOutput(errOut)
	g.register(sub)
	bind := cmd.flags(sub)
	if err := sub.Parse(rest[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	s, code := newSession(g, out, errOut, d)
	if code != 0 {
		return code
	}
	return bind(s, sub.Args())
}

func newSession(g globals, out, errOut io.Writer, d deps) (*session, int) {
	cfg, err := config.Load(g.configPath, d.getenv)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return nil, 2
	}
	if g.nodeURI != "" {
		cfg.Node.URI = g.nodeURI
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return nil, 2
	}
	return &session{
		cfg:    cfg,
		log:    logging.New("quilclient", level, errOut),
		out:    out,
		errOut: errOut,
		deps:   d,
	}, 0
}

// connect dials the configured node. It reports a usage error when no node
// address is configured.
func (s *session) connect() (nodeAPI, int) {
	if strings.TrimSpace(s.cfg.Node.URI) == "" {
		fmt.Fprintf(s.errOut, "the --node-uri flag or the %s environment variable must be set\n", config.EnvNodeURI)
		return nil, 2
	}
	client, err := s.deps.dial(s.cfg.Node.URI, node.DialOptions{
		Timeout:     s.cfg.Node.DialTimeout,
		MaxMsgBytes: s.cfg.Node.MaxMsgBytes,
		Logger:      &s.log,
	})
	if err != nil {
		s.log.Error().Err(err).Str("uri", s.cfg.Node.URI).Msg("dial failed")
		return nil, 1
	}
	if c, ok := client.(*node.Client); ok {
		c.Timeout = s.cfg.Node.CallTimeout
	}
	return client, 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "quilclient: read-only client for a node's NodeService")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  quilclient [-u <uri>] [--config <file>] [--log-level <level>] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  network-info                                    peer store as CSV")
	fmt.Fprintln(w, "  peer-info [cooperative|uncooperative]           sync broadcast as CSV")
	fmt.Fprintln(w, "  frames [--filter F] [--from N] [--to M] [--include-candidates]")
	fmt.Fprintln(w, "  download-frame [--filter F] [--frame-number N] [--out PATH] [--cas-dir DIR]")
	fmt.Fprintln(w, "  token-balance [--raw]                           owned tokens in QUIL")
	fmt.Fprintln(w, "  token-supply [--raw]                            confirmed supply in QUIL")
	fmt.Fprintln(w, "  snapshot --dir DIR                              all tables plus token info, fetched concurrently")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - filters: ceremony-application, master-clock, or 64 hex chars")
	fmt.Fprintln(w, "  - invalid records are logged to stderr and skipped; the exit code is then 1")
	fmt.Fprintln(w, "  - download-frame writes the frame bytes exactly as the node sent them")
}
