// Package cidutil computes the content ids under which frame payloads are stored.
package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// PayloadCID returns the CIDv1 (raw codec, sha2-256 multihash) of data.
func PayloadCID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Verify reports whether data hashes to id.
func Verify(id cid.Cid, data []byte) error {
	if !id.Defined() {
		return fmt.Errorf("cidutil: undefined cid")
	}
	got, err := PayloadCID(data)
	if err != nil {
		return err
	}
	if !got.Equals(id) {
		return fmt.Errorf("cidutil: payload hashes to %s, want %s", got, id)
	}
	return nil
}
