// Package metrics exposes Prometheus collectors for the fixture node.
package metrics

import (
	"context"
	"net/http"
	"path"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// RPC counts and times NodeService calls.
type RPC struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRPC creates the collectors and registers them with reg.
func NewRPC(reg prometheus.Registerer) (*RPC, error) {
	m := &RPC{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quil",
				Subsystem: "fixture",
				Name:      "rpc_requests_total",
				Help:      "Total NodeService requests.",
			},
			[]string{"method", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "quil",
				Subsystem: "fixture",
				Name:      "rpc_request_duration_seconds",
				Help:      "NodeService request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one finished call.
func (m *RPC) Observe(method string, err error, elapsed time.Duration) {
	m.requests.WithLabelValues(method, status.Code(err).String()).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// UnaryServerInterceptor observes every unary call.
func (m *RPC) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.Observe(path.Base(info.FullMethod), err, time.Since(start))
		return resp, err
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
