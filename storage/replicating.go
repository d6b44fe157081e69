package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/quilclient/quilclient/cidutil"
	"github.com/quilclient/quilclient/record"
)

// NamedStore associates a FrameStore with a stable name used in errors.
type NamedStore struct {
	Name  string
	Store FrameStore
}

// Replicating writes every block and index entry to all stores.
//
// Reads fall back in slice order; callers MUST supply a fixed order.
// A store that returns a CID other than the payload's yields ErrCIDMismatch.
type Replicating struct {
	Stores []NamedStore
}

var _ FrameStore = Replicating{}

// PutAll writes payload to every store and returns the per-store CIDs.
func (r Replicating) PutAll(payload []byte) (cid.Cid, map[string]cid.Cid, error) {
	want, err := cidutil.PayloadCID(payload)
	if err != nil {
		return cid.Undef, nil, err
	}
	if len(r.Stores) == 0 {
		return cid.Undef, nil, fmt.Errorf("storage: Replicating has no stores")
	}

	out := make(map[string]cid.Cid, len(r.Stores))
	for _, s := range r.Stores {
		if s.Store == nil {
			return cid.Undef, nil, fmt.Errorf("storage: nil store %q", s.Name)
		}
		got, err := s.Store.Put(payload)
		if err != nil {
			return cid.Undef, out, fmt.Errorf("storage: put to %q: %w", s.Name, err)
		}
		out[s.Name] = got
		if got != want {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (r Replicating) Put(payload []byte) (cid.Cid, error) {
	id, _, err := r.PutAll(payload)
	return id, err
}

func (r Replicating) Get(id cid.Cid) ([]byte, error) {
	for _, s := range r.Stores {
		if s.Store == nil {
			continue
		}
		out, err := s.Store.Get(id)
		if err == nil {
			return out, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (r Replicating) Has(id cid.Cid) bool {
	for _, s := range r.Stores {
		if s.Store != nil && s.Store.Has(id) {
			return true
		}
	}
	return false
}

// Link records addr -> id in every store.
func (r Replicating) Link(addr record.FrameAddress, id cid.Cid) error {
	if len(r.Stores) == 0 {
		return fmt.Errorf("storage: Replicating has no stores")
	}
	for _, s := range r.Stores {
		if s.Store == nil {
			return fmt.Errorf("storage: nil store %q", s.Name)
		}
		if err := s.Store.Link(addr, id); err != nil {
			return fmt.Errorf("storage: link in %q: %w", s.Name, err)
		}
	}
	return nil
}

// Resolve returns the first store's mapping for addr.
func (r Replicating) Resolve(addr record.FrameAddress) (cid.Cid, error) {
	for _, s := range r.Stores {
		if s.Store == nil {
			continue
		}
		id, err := s.Store.Resolve(addr)
		if err == nil {
			return id, nil
		}
		if IsNotFound(err) {
			continue
		}
		return cid.Undef, err
	}
	return cid.Undef, ErrNotFound
}
