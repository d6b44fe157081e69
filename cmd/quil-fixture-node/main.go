package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/quilclient/quilclient/internal/fixture"
	"github.com/quilclient/quilclient/internal/logging"
	"github.com/quilclient/quilclient/internal/metrics"
	"github.com/quilclient/quilclient/node"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

type options struct {
	listen        string
	metricsListen string
	fixturePath   string
	logLevel      string
}

func run(ctx context.Context, args []string, errOut io.Writer) int {
	var o options
	fs := flag.NewFlagSet("quil-fixture-node", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&o.listen, "listen", "127.0.0.1:8337", "gRPC listen address")
	fs.StringVar(&o.metricsListen, "metrics-listen", "", "Prometheus listen address (empty disables)")
	fs.StringVar(&o.fixturePath, "fixture", "", "TOML fixture describing the node state")
	fs.StringVar(&o.logLevel, "log-level", logging.DefaultLevel, "trace|debug|info|warn|error|disabled")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if o.fixturePath == "" {
		fmt.Fprintln(errOut, "--fixture is required")
		return 2
	}
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	log := logging.New("quil-fixture-node", level, errOut)

	f, err := fixture.Load(o.fixturePath)
	if err != nil {
		log.Error().Err(err).Msg("load fixture")
		return 2
	}
	srv := &node.StaticServer{}
	if err := f.Apply(srv); err != nil {
		log.Error().Err(err).Str("fixture", o.fixturePath).Msg("apply fixture")
		return 2
	}

	lis, err := net.Listen("tcp", o.listen)
	if err != nil {
		log.Error().Err(err).Str("listen", o.listen).Msg("listen")
		return 1
	}
	var metricsLis net.Listener
	if o.metricsListen != "" {
		metricsLis, err = net.Listen("tcp", o.metricsListen)
		if err != nil {
			_ = lis.Close()
			log.Error().Err(err).Str("listen", o.metricsListen).Msg("metrics listen")
			return 1
		}
	}

	if err := serve(ctx, log, srv, lis, metricsLis); err != nil {
		log.Error().Err(err).Msg("serve")
		return 1
	}
	return 0
}

// serve runs the NodeService on lis, and the metrics endpoint on metricsLis
// when it is not nil, until ctx is done.
func serve(ctx context.Context, log zerolog.Logger, srv node.NodeServiceServer, lis, metricsLis net.Listener) error {
	reg := prometheus.NewRegistry()
	rpc, err := metrics.NewRPC(reg)
	if err != nil {
		return err
	}

	opts := append(node.ServerOptions(), grpc.ChainUnaryInterceptor(rpc.UnaryServerInterceptor()))
	s := grpc.NewServer(opts...)
	node.RegisterNodeServiceServer(s, srv)

	errCh := make(chan error, 2)
	go func() { errCh <- s.Serve(lis) }()

	var httpSrv *http.Server
	if metricsLis != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		httpSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := httpSrv.Serve(metricsLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
		log.Info().Str("addr", metricsLis.Addr().String()).Msg("metrics listening")
	}
	log.Info().Str("addr", lis.Addr().String()).Msg("node service listening")

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}
	s.GracefulStop()
	log.Info().Msg("stopped")
	return serveErr
}
