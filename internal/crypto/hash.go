package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"sort"

	sha256 "github.com/minio/sha256-simd"
	"golang.org/x/crypto/sha3"
)

// Algorithm names accepted by NewEngine
const (
	SHA256    = "sha256"
	SHA3_256  = "sha3-256"
	Keccak256 = "keccak256"
)

// ErrUnknownAlgorithm is returned when the digest engine cannot be set up
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

var constructors = map[string]func() hash.Hash{
	SHA256:    sha256.New,
	SHA3_256:  sha3.New256,
	Keccak256: sha3.NewLegacyKeccak256,
}

// Algorithms lists the supported algorithm names
func Algorithms() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Engine produces hashers for one digest algorithm.
// It is safe to share; the hashers it hands out are not.
type Engine struct {
	name string
	newH func() hash.Hash
	size int
}

// NewEngine looks up a digest algorithm by name
func NewEngine(name string) (*Engine, error) {
	newH, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownAlgorithm, name, Algorithms())
	}
	return &Engine{
		name: name,
		newH: newH,
		size: newH().Size(),
	}, nil
}

// Name returns the algorithm name
func (e *Engine) Name() string {
	return e.name
}

// HexLen is the length of a hex digest produced by this engine
func (e *Engine) HexLen() int {
	return e.size * 2
}

// NewHasher creates a hasher with its own state and buffers, for use by a single goroutine
func (e *Engine) NewHasher() *Hasher {
	return &Hasher{
		h:      e.newH(),
		sum:    make([]byte, 0, e.size),
		hexBuf: make([]byte, e.size*2),
	}
}

// Hasher computes hex digests reusing its buffers between calls
type Hasher struct {
	h      hash.Hash
	sum    []byte
	hexBuf []byte
}

// DigestHex hashes data and returns the lowercase hex digest.
// The returned slice is overwritten by the next call.
func (h *Hasher) DigestHex(data []byte) []byte {
	h.h.Reset()
	h.h.Write(data)
	sum := h.h.Sum(h.sum[:0])
	hex.Encode(h.hexBuf, sum)
	return h.hexBuf
}

// Digest hashes data and returns the lowercase hex digest as a string
func (h *Hasher) Digest(data []byte) string {
	return string(h.DigestHex(data))
}
