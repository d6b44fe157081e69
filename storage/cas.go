// Package storage defines where downloaded frame payloads are kept.
package storage

import (
	"errors"

	"github.com/ipfs/go-cid"

	"github.com/quilclient/quilclient/record"
)

// CAS is a content-addressable store of frame payloads.
//
// Contract:
// - Put MUST be idempotent.
// - Stored payloads MUST be immutable.
// - CIDs MUST be derived from the payload bytes exactly as received.
// - Get MUST return ErrNotFound when the CID is absent.
type CAS interface {
	Put(payload []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// FrameIndex maps frame addresses to payload CIDs.
//
// Link MUST return ErrImmutable when addr is already linked to a different CID.
// Resolve MUST return ErrNotFound for unknown addresses.
type FrameIndex interface {
	Link(addr record.FrameAddress, id cid.Cid) error
	Resolve(addr record.FrameAddress) (cid.Cid, error)
}

// FrameStore is a CAS that also indexes payloads by frame address.
type FrameStore interface {
	CAS
	FrameIndex
}

// StoreFrame stores payload and links it to addr.
func StoreFrame(s FrameStore, addr record.FrameAddress, payload []byte) (cid.Cid, error) {
	id, err := s.Put(payload)
	if err != nil {
		return cid.Undef, err
	}
	if err := s.Link(addr, id); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

// LoadFrame returns the payload stored for addr.
func LoadFrame(s FrameStore, addr record.FrameAddress) ([]byte, cid.Cid, error) {
	id, err := s.Resolve(addr)
	if err != nil {
		return nil, cid.Undef, err
	}
	b, err := s.Get(id)
	if err != nil {
		return nil, cid.Undef, err
	}
	return b, id, nil
}

var (
	ErrNotFound    = errors.New("storage: not found")
	ErrInvalidCID  = errors.New("storage: invalid cid")
	ErrCIDMismatch = errors.New("storage: cid mismatch")
	ErrImmutable   = errors.New("storage: immutable object mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
