package core

import (
	"fmt"

	"github.com/minio/highwayhash"
)

// fingerprintKey is fixed so fingerprints are comparable across runs and processes.
var fingerprintKey = []byte("paxclean-table-fingerprint-key!!")

// Fingerprint is a 64-bit content hash rendered as hex.
type Fingerprint string

// String returns the string representation
func (f Fingerprint) String() string {
	return string(f)
}

// IsEmpty checks if the fingerprint is empty
func (f Fingerprint) IsEmpty() bool {
	return f == ""
}

// Hasher accumulates bytes into a fingerprint.
type Hasher struct {
	h interface {
		Write([]byte) (int, error)
		Sum64() uint64
	}
}

// NewHasher creates a hasher keyed with the package fingerprint key.
func NewHasher() (*Hasher, error) {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return nil, fmt.Errorf("init highwayhash: %w", err)
	}
	return &Hasher{h: h}, nil
}

// Write adds data to the running hash.
func (h *Hasher) Write(p []byte) {
	_, _ = h.h.Write(p)
}

// WriteString adds s followed by a separator byte.
func (h *Hasher) WriteString(s string) {
	h.Write([]byte(s))
	h.Write([]byte{0})
}

// Sum returns the fingerprint of everything written so far.
func (h *Hasher) Sum() Fingerprint {
	return Fingerprint(fmt.Sprintf("%016x", h.h.Sum64()))
}

// NewFingerprint hashes a single byte slice.
func NewFingerprint(data []byte) (Fingerprint, error) {
	h, err := NewHasher()
	if err != nil {
		return "", err
	}
	h.Write(data)
	return h.Sum(), nil
}
