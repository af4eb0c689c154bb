package uid

import (
	"crypto/rand"
	"encoding/hex"
)

// Hex generates random lowercase hex strings from crypto/rand.
type Hex struct {
	size int
}

// NewHex returns a generator producing size random bytes (2*size hex chars).
func NewHex(size int) *Hex {
	if size <= 0 {
		size = 16
	}
	return &Hex{size: size}
}

// Generate returns a fresh random hex string.
func (h *Hex) Generate() string {
	b := make([]byte, h.size)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
