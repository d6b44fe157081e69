// Package localfs keeps frame payloads in a directory.
//
// Layout under the root:
//
//	blocks/<cid[:2]>/<cid>               payload bytes, read-only
//	frames/<filter-hex>/<frame-number>   the payload CID as text
package localfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ipfs/go-cid"

	"github.com/quilclient/quilclient/cidutil"
	"github.com/quilclient/quilclient/record"
	"github.com/quilclient/quilclient/storage"
)

// Store is a filesystem frame store. It never uses the network.
type Store struct {
	root string
}

var _ storage.FrameStore = (*Store)(nil)

// New opens a store rooted at root, creating the directory if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) Put(payload []byte) (cid.Cid, error) {
	id, err := cidutil.PayloadCID(payload)
	if err != nil {
		return cid.Undef, err
	}
	path := s.blockPath(id)
	err = writeOnce(path, payload)
	if errors.Is(err, os.ErrExist) {
		existing, rerr := s.Get(id)
		if rerr != nil || string(existing) != string(payload) {
			// Present but unreadable or corrupted; never overwrite.
			return cid.Undef, storage.ErrImmutable
		}
		return id, nil
	}
	if err != nil {
		return cid.Undef, err
	}
	return id, nil
}

func (s *Store) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	b, err := os.ReadFile(s.blockPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if err := cidutil.Verify(id, b); err != nil {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

func (s *Store) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(s.blockPath(id))
	return err == nil
}

func (s *Store) Link(addr record.FrameAddress, id cid.Cid) error {
	if !id.Defined() {
		return storage.ErrInvalidCID
	}
	path := s.framePath(addr)
	err := writeOnce(path, []byte(id.String()))
	if errors.Is(err, os.ErrExist) {
		existing, rerr := s.Resolve(addr)
		if rerr != nil || !existing.Equals(id) {
			return storage.ErrImmutable
		}
		return nil
	}
	return err
}

func (s *Store) Resolve(addr record.FrameAddress) (cid.Cid, error) {
	b, err := os.ReadFile(s.framePath(addr))
	if err != nil {
		if os.IsNotExist(err) {
			return cid.Undef, storage.ErrNotFound
		}
		return cid.Undef, err
	}
	id, err := cid.Decode(strings.TrimSpace(string(b)))
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: %v", storage.ErrInvalidCID, err)
	}
	return id, nil
}

// writeOnce creates path with data. It fails with os.ErrExist if path exists.
func writeOnce(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func (s *Store) blockPath(id cid.Cid) string {
	c := id.String()
	if len(c) < 2 {
		return filepath.Join(s.root, "blocks", c)
	}
	return filepath.Join(s.root, "blocks", c[:2], c)
}

func (s *Store) framePath(addr record.FrameAddress) string {
	return filepath.Join(s.root, "frames", addr.Filter.Hex(), addr.Number.String())
}
