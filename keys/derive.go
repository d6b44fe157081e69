package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// RootSeedSize is the size of a root seed accepted by DeriveSeed.
const RootSeedSize = 32

// DeriveSeed deterministically derives a size-byte seed for label from a root seed.
//
// The derivation is SHAKE256(root || 0x00 || "quilclient-keys-v1" || 0x00 || "label:" || label).
func DeriveSeed(root []byte, label string, size int) ([]byte, error) {
	if len(root) != RootSeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", RootSeedSize)
	}
	if err := CheckLabel(label); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, errors.New("seed size must be positive")
	}

	h := sha3.NewShake256()
	_, _ = h.Write(root)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("quilclient-keys-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("label:"))
	_, _ = h.Write([]byte(label))
	out := make([]byte, size)
	_, _ = h.Read(out)
	return out, nil
}

// CheckLabel validates a derivation label.
func CheckLabel(label string) error {
	if label == "" {
		return errors.New("label cannot be empty")
	}
	for _, char := range label {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' || char == '.' {
			continue
		}
		return fmt.Errorf("invalid character %q in label", char)
	}
	return nil
}

// ParseSeedHex decodes a hex seed, optionally 0x-prefixed, of exactly size bytes.
func ParseSeedHex(seedHex string, size int) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != size {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", size, len(data))
	}
	return data, nil
}
