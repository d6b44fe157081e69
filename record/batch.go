package record

import (
	"github.com/quilclient/quilclient/errs"
	"github.com/quilclient/quilclient/wire"
)

// Batch names used in entry errors.
const (
	BatchNetworkInfo = "network_info"
	BatchPeerInfo    = "peer_info"
	BatchFrames      = "clock_frames"
)

// Outcome is the result of building one entry of a batch. Exactly one of
// Record and Err is meaningful.
type Outcome[T any] struct {
	Index  int
	Record T
	Err    error
}

// OK reports whether the entry was built.
func (o Outcome[T]) OK() bool { return o.Err == nil }

func buildAll[In, T any](batch string, in []In, build func(In) (T, error)) []Outcome[T] {
	out := make([]Outcome[T], len(in))
	for i := range in {
		rec, err := build(in[i])
		out[i] = Outcome[T]{Index: i, Record: rec, Err: errs.AtIndex(batch, i, err)}
	}
	return out
}

// BuildPeers builds every entry of a peer store response independently.
func BuildPeers(in []wire.NetworkInfo) []Outcome[PeerRecord] {
	return buildAll(BatchNetworkInfo, in, BuildPeer)
}

// BuildSyncs builds every entry of a sync broadcast independently.
func BuildSyncs(in []wire.PeerInfo) []Outcome[SyncRecord] {
	return buildAll(BatchPeerInfo, in, BuildSync)
}

// BuildFrames builds every frame of a frames response independently.
func BuildFrames(in []wire.ClockFrame) []Outcome[FrameMetadata] {
	return buildAll(BatchFrames, in, BuildFrame)
}

// Successes returns the built records in input order.
func Successes[T any](outcomes []Outcome[T]) []T {
	out := make([]T, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			out = append(out, o.Record)
		}
	}
	return out
}

// Failures returns the entry errors in input order.
func Failures[T any](outcomes []Outcome[T]) []error {
	var out []error
	for _, o := range outcomes {
		if !o.OK() {
			out = append(out, o.Err)
		}
	}
	return out
}
