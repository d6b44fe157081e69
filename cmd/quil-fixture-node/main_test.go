package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilclient/quilclient/amount"
	"github.com/quilclient/quilclient/internal/fixture"
	"github.com/quilclient/quilclient/node"
	"github.com/quilclient/quilclient/record"
)

const testFixture = `
root_seed = "` + "0303030303030303030303030303030303030303030303030303030303030303" + `"

[[peers]]
label = "alpha"
multiaddrs = ["/ip4/127.0.0.1/tcp/8336"]
score = 1.0
timestamp = 1700000000123
version = "1.4.21"

[tokens]
owned = "8000000000"
`

func TestServe_ClientRoundTripAndMetrics(t *testing.T) {
	f, err := fixture.Decode(testFixture)
	require.NoError(t, err)
	srv := &node.StaticServer{}
	require.NoError(t, f.Apply(srv))

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	metricsLis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, zerolog.Nop(), srv, lis, metricsLis) }()

	client, err := node.Dial(lis.Addr().String(), node.DialOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)
	defer client.Close()
	client.Timeout = 5 * time.Second

	resp, err := client.NetworkInfo(context.Background())
	require.NoError(t, err)
	peers := record.BuildPeers(resp.NetworkInfo)
	require.Len(t, peers, 1)
	require.True(t, peers[0].OK(), "%v", peers[0].Err)

	tokens, err := client.TokenInfo(context.Background())
	require.NoError(t, err)
	info, err := record.BuildTokenInfo(*tokens, amount.DefaultScale())
	require.NoError(t, err)
	assert.Equal(t, "1", info.Owned.Display.String())

	res, err := http.Get("http://" + metricsLis.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	_ = res.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `quil_fixture_rpc_requests_total{code="OK",method="GetNetworkInfo"} 1`)
	assert.Contains(t, string(body), `quil_fixture_rpc_requests_total{code="OK",method="GetTokenInfo"} 1`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestRun_FlagErrors(t *testing.T) {
	var errOut bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &errOut))
	assert.Contains(t, errOut.String(), "--fixture is required")

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`root_seed = "00"`), 0o600))
	errOut.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"--fixture", bad}, &errOut))
	assert.True(t, strings.Contains(errOut.String(), "apply fixture"))

	errOut.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"--fixture", bad, "--log-level", "loud"}, &errOut))
}
