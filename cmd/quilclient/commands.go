package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/quilclient/quilclient/amount"
	"github.com/quilclient/quilclient/cidutil"
	"github.com/quilclient/quilclient/errs"
	"github.com/quilclient/quilclient/export"
	"github.com/quilclient/quilclient/node"
	"github.com/quilclient/quilclient/record"
	"github.com/quilclient/quilclient/storage"
	"github.com/quilclient/quilclient/storage/localfs"
	"github.com/quilclient/quilclient/wire"
)

// action runs a command after flag parsing and returns the exit code.
type action func(s *session, args []string) int

type command struct {
	flags func(fs *flag.FlagSet) action
}

var commands = map[string]command{
	"network-info":   {flags: networkInfoCmd},
	"peer-info":      {flags: peerInfoCmd},
	"frames":         {flags: framesCmd},
	"download-frame": {flags: downloadFrameCmd},
	"token-balance":  {flags: tokenCmd(func(t record.TokenInfo) amount.Pair { return t.Owned })},
	"token-supply":   {flags: tokenCmd(func(t record.TokenInfo) amount.Pair { return t.ConfirmedSupply })},
	"snapshot":       {flags: snapshotCmd},
}

const (
	defaultFilter    = "ceremony-application"
	defaultFrameFrom = 1
	defaultFrameTo   = 11
)

func networkInfoCmd(fs *flag.FlagSet) action {
	return func(s *session, args []string) int {
		if len(args) != 0 {
			fmt.Fprintln(s.errOut, "network-info takes no arguments")
			return 2
		}
		return s.withClient(func(ctx context.Context, c nodeAPI) int {
			resp, err := c.NetworkInfo(ctx)
			if err != nil {
				return s.fail("GetNetworkInfo", err)
			}
			outcomes := record.BuildPeers(resp.NetworkInfo)
			failed := s.logFailures(record.Failures(outcomes))
			return s.emit(export.PeerTable(record.Successes(outcomes)), failed)
		})
	}
}

func peerInfoCmd(fs *flag.FlagSet) action {
	return func(s *session, args []string) int {
		kind := "cooperative"
		switch len(args) {
		case 0:
		case 1:
			kind = args[0]
		default:
			fmt.Fprintln(s.errOut, "peer-info takes at most one argument")
			return 2
		}
		if kind != "cooperative" && kind != "uncooperative" {
			fmt.Fprintf(s.errOut, "peer-info: unknown peer kind %q (want cooperative or uncooperative)\n", kind)
			return 2
		}
		return s.withClient(func(ctx context.Context, c nodeAPI) int {
			resp, err := c.PeerInfo(ctx)
			if err != nil {
				return s.fail("GetPeerInfo", err)
			}
			entries := resp.PeerInfo
			if kind == "uncooperative" {
				entries = resp.UncooperativePeerInfo
			}
			outcomes := record.BuildSyncs(entries)
			failed := s.logFailures(record.Failures(outcomes))
			return s.emit(export.SyncTable(record.Successes(outcomes)), failed)
		})
	}
}

func framesCmd(fs *flag.FlagSet) action {
	filterName := fs.String("filter", defaultFilter, "frame filter name or 64 hex chars")
	from := fs.Uint64("from", defaultFrameFrom, "first frame number (inclusive)")
	to := fs.Uint64("to", defaultFrameTo, "last frame number (exclusive)")
	candidates := fs.Bool("include-candidates", false, "include candidate frames")
	return func(s *session, args []string) int {
		filter, err := record.FilterByName(*filterName)
		if err != nil {
			fmt.Fprintln(s.errOut, err)
			return 2
		}
		if *to < *from {
			fmt.Fprintf(s.errOut, "frames: --to %d is below --from %d\n", *to, *from)
			return 2
		}
		q := node.FramesQuery{Filter: filter, From: *from, To: *to, IncludeCandidates: *candidates}
		return s.withClient(func(ctx context.Context, c nodeAPI) int {
			resp, err := c.Frames(ctx, q)
			if err != nil {
				return s.fail("GetFrames", err)
			}
			outcomes := record.BuildFrames(resp.TruncatedClockFrames)
			failed := s.logFailures(record.Failures(outcomes))
			return s.emit(export.FrameTable(record.Successes(outcomes)), failed)
		})
	}
}

func downloadFrameCmd(fs *flag.FlagSet) action {
	filterName := fs.String("filter", defaultFilter, "frame filter name or 64 hex chars")
	number := fs.String("frame-number", "1", "frame number")
	outPath := fs.String("out", "", "output file (default ./frame-<filter>-<n>.pb)")
	var casDirs stringList
	fs.Var(&casDirs, "cas-dir", "also store the frame in this local CAS; repeat to replicate (overrides storage.frame_cas_dir)")
	return func(s *session, args []string) int {
		if len(args) != 0 {
			fmt.Fprintln(s.errOut, "download-frame takes no positional arguments")
			return 2
		}
		filter, err := record.FilterByName(*filterName)
		if err != nil {
			fmt.Fprintln(s.errOut, err)
			return 2
		}
		n, err := record.ParseFrameNumber(*number)
		if err != nil {
			fmt.Fprintln(s.errOut, err)
			return 2
		}
		addr := record.FrameAddress{Filter: filter, Number: n}
		path := *outPath
		if path == "" {
			path = fmt.Sprintf("./frame-%s-%s.pb", filter.Name(), n)
		}
		dirs := []string(casDirs)
		if len(dirs) == 0 && s.cfg.Storage.FrameCASDir != "" {
			dirs = []string{s.cfg.Storage.FrameCASDir}
		}

		return s.withClient(func(ctx context.Context, c nodeAPI) int {
			payload, found, err := c.FrameInfo(ctx, addr)
			if err != nil {
				return s.fail("GetFrameInfo", err)
			}
			if !found {
				fmt.Fprintf(s.errOut, "frame %s not found for frame filter %s\n", n, filter.Name())
				return 1
			}
			id, err := cidutil.PayloadCID(payload)
			if err != nil {
				s.log.Error().Err(err).Msg("compute frame CID")
				return 1
			}
			if err := os.WriteFile(path, payload, 0o644); err != nil {
				s.log.Error().Err(err).Str("path", path).Msg("write frame")
				return 1
			}
			if len(dirs) > 0 {
				store, err := openFrameStore(dirs)
				if err != nil {
					s.log.Error().Err(err).Strs("dirs", dirs).Msg("open frame CAS")
					return 1
				}
				if _, err := storage.StoreFrame(store, addr, payload); err != nil {
					s.log.Error().Err(err).Strs("dirs", dirs).Msg("store frame")
					return 1
				}
			}
			s.log.Info().
				Str("filter", filter.Name()).
				Str("frame", n.String()).
				Int("bytes", len(payload)).
				Str("cid", id.String()).
				Str("path", path).
				Msg("frame downloaded")
			fmt.Fprintln(s.out, id.String())
			return 0
		})
	}
}

// openFrameStore opens one local CAS per directory, replicating across them
// when there is more than one.
func openFrameStore(dirs []string) (storage.FrameStore, error) {
	stores := make([]storage.NamedStore, 0, len(dirs))
	for _, dir := range dirs {
		st, err := localfs.New(dir)
		if err != nil {
			return nil, err
		}
		stores = append(stores, storage.NamedStore{Name: dir, Store: st})
	}
	if len(stores) == 1 {
		return stores[0].Store, nil
	}
	return storage.Replicating{Stores: stores}, nil
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("empty value")
	}
	*l = append(*l, v)
	return nil
}

func tokenCmd(pick func(record.TokenInfo) amount.Pair) func(fs *flag.FlagSet) action {
	return func(fs *flag.FlagSet) action {
		raw := fs.Bool("raw", false, "print base units instead of whole QUIL")
		return func(s *session, args []string) int {
			if len(args) != 0 {
				fmt.Fprintf(s.errOut, "%s takes no positional arguments\n", fs.Name())
				return 2
			}
			scale, err := s.cfg.Scale()
			if err != nil {
				fmt.Fprintln(s.errOut, err)
				return 2
			}
			return s.withClient(func(ctx context.Context, c nodeAPI) int {
				resp, err := c.TokenInfo(ctx)
				if err != nil {
					return s.fail("GetTokenInfo", err)
				}
				info, err := record.BuildTokenInfo(*resp, scale)
				if err != nil {
					s.logRecordError(err)
					return 1
				}
				p := pick(info)
				if *raw {
					fmt.Fprintln(s.out, p.Raw.String())
				} else {
					fmt.Fprintln(s.out, p.Display.String())
				}
				return 0
			})
		}
	}
}

func snapshotCmd(fs *flag.FlagSet) action {
	dir := fs.String("dir", "", "output directory")
	filterName := fs.String("filter", defaultFilter, "frame filter for frames.csv")
	from := fs.Uint64("from", defaultFrameFrom, "first frame number (inclusive)")
	to := fs.Uint64("to", defaultFrameTo, "last frame number (exclusive)")
	return func(s *session, args []string) int {
		if *dir == "" || len(args) != 0 {
			fmt.Fprintln(s.errOut, "snapshot requires --dir and no positional arguments")
			return 2
		}
		filter, err := record.FilterByName(*filterName)
		if err != nil {
			fmt.Fprintln(s.errOut, err)
			return 2
		}
		scale, err := s.cfg.Scale()
		if err != nil {
			fmt.Fprintln(s.errOut, err)
			return 2
		}
		if err := os.MkdirAll(*dir, 0o755); err != nil {
			s.log.Error().Err(err).Str("dir", *dir).Msg("create snapshot dir")
			return 1
		}

		return s.withClient(func(ctx context.Context, c nodeAPI) int {
			var (
				network *wire.NetworkInfoResponse
				peers   *wire.PeerInfoResponse
				frames  *wire.FramesResponse
				tokens  *wire.TokenInfoResponse
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() (err error) {
				network, err = c.NetworkInfo(gctx)
				return err
			})
			g.Go(func() (err error) {
				peers, err = c.PeerInfo(gctx)
				return err
			})
			g.Go(func() (err error) {
				frames, err = c.Frames(gctx, node.FramesQuery{Filter: filter, From: *from, To: *to})
				return err
			})
			g.Go(func() (err error) {
				tokens, err = c.TokenInfo(gctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return s.fail("snapshot", err)
			}

			peerOut := record.BuildPeers(network.NetworkInfo)
			syncOut := record.BuildSyncs(peers.PeerInfo)
			frameOut := record.BuildFrames(frames.TruncatedClockFrames)
			failed := s.logFailures(record.Failures(peerOut))
			failed = s.logFailures(record.Failures(syncOut)) || failed
			failed = s.logFailures(record.Failures(frameOut)) || failed

			code := s.writeTables(*dir, []namedTable{
				{"peers.csv", export.PeerTable(record.Successes(peerOut))},
				{"sync.csv", export.SyncTable(record.Successes(syncOut))},
				{"frames.csv", export.FrameTable(record.Successes(frameOut))},
			})
			if code != 0 {
				return code
			}

			info, err := record.BuildTokenInfo(*tokens, scale)
			if err != nil {
				s.logRecordError(err)
				failed = true
			} else if err := writeTokenFile(filepath.Join(*dir, "tokens.txt"), info); err != nil {
				s.log.Error().Err(err).Msg("write tokens")
				return 1
			}

			s.log.Info().
				Str("dir", *dir).
				Int("peers", len(record.Successes(peerOut))).
				Int("sync", len(record.Successes(syncOut))).
				Int("frames", len(record.Successes(frameOut))).
				Msg("snapshot written")
			if failed {
				return 1
			}
			return 0
		})
	}
}

type namedTable struct {
	name  string
	table export.Table
}

// writeTables writes each table to dir/name. Export errors are bugs and exit 3.
func (s *session) writeTables(dir string, tables []namedTable) int {
	for _, t := range tables {
		err := writeTableFile(filepath.Join(dir, t.name), t.table)
		if err == nil {
			continue
		}
		if errs.IsBug(err) {
			logExportError(s.log.With().Str("file", t.name).Logger(), err)
			return 3
		}
		s.log.Error().Err(err).Str("file", t.name).Msg("write table")
		return 1
	}
	return 0
}

func writeTableFile(path string, t export.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeTokenFile(path string, info record.TokenInfo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	lines := []struct {
		name string
		p    amount.Pair
	}{
		{"confirmed_token_supply", info.ConfirmedSupply},
		{"unconfirmed_token_supply", info.UnconfirmedSupply},
		{"owned_tokens", info.Owned},
		{"unconfirmed_owned_tokens", info.UnconfirmedOwned},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(f, "%s=%s raw=%s\n", l.name, l.p.Display, l.p.Raw); err != nil {
			_ = f.Close()
			return err
		}
	}
	return f.Close()
}

// withClient dials, runs fn and closes the connection.
func (s *session) withClient(fn func(ctx context.Context, c nodeAPI) int) int {
	c, code := s.connect()
	if code != 0 {
		return code
	}
	defer func() { _ = c.Close() }()
	return fn(context.Background(), c)
}

func (s *session) fail(method string, err error) int {
	ev := s.log.Error().Err(err).Str("method", method)
	switch {
	case errors.Is(err, node.ErrUnavailable):
		ev.Msg("node unavailable")
	default:
		ev.Msg("request failed")
	}
	return 1
}

// logFailures logs each entry error and reports whether there were any.
func (s *session) logFailures(failures []error) bool {
	for _, err := range failures {
		s.logRecordError(err)
	}
	return len(failures) > 0
}

func (s *session) logRecordError(err error) {
	ev := s.log.Warn().
		Err(err).
		Str("kind", string(errs.KindOf(err))).
		Str("rule", errs.RuleID(err))
	var entry *errs.EntryError
	if errors.As(err, &entry) {
		ev = ev.Str("batch", entry.Batch).Int("index", entry.Index)
	}
	ev.Msg("record skipped")
}

// emit writes t to the session output. Export errors are bugs and exit 3.
func (s *session) emit(t export.Table, failed bool) int {
	if err := export.WriteCSV(s.out, t); err != nil {
		logExportError(s.log, err)
		if errs.IsBug(err) {
			return 3
		}
		return 1
	}
	if s.log.GetLevel() <= zerolog.DebugLevel {
		if sum, err := export.Digest(t); err == nil {
			s.log.Debug().Str("sha3_256", sum).Msg("table digest")
		}
	}
	if failed {
		return 1
	}
	return 0
}

func logExportError(log zerolog.Logger, err error) {
	log.Error().Err(err).Str("rule", errs.RuleID(err)).Bool("bug", errs.IsBug(err)).Msg("export failed")
}
