package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	tests := []struct {
		name   string
		algo   string
		hexLen int
		empty  string
	}{
		{
			name:   "sha256",
			algo:   SHA256,
			hexLen: 64,
			empty:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:   "sha3-256",
			algo:   SHA3_256,
			hexLen: 64,
			empty:  "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a",
		},
		{
			name:   "keccak256",
			algo:   Keccak256,
			hexLen: 64,
			empty:  "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(tt.algo)
			require.NoError(t, err)
			assert.Equal(t, tt.algo, engine.Name())
			assert.Equal(t, tt.hexLen, engine.HexLen())

			h := engine.NewHasher()
			assert.Equal(t, tt.empty, h.Digest(nil))
		})
	}
}

func TestNewEngineUnknown(t *testing.T) {
	engine, err := NewEngine("md5")
	assert.Nil(t, engine)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestHasherDeterministic(t *testing.T) {
	engine, err := NewEngine(SHA256)
	require.NoError(t, err)

	h := engine.NewHasher()
	a := h.Digest([]byte("block_0_nonce_0"))
	b := h.Digest([]byte("block_0_nonce_1"))
	c := h.Digest([]byte("block_0_nonce_0"))

	assert.Equal(t, a, c)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64)

	// a fresh hasher agrees with a reused one
	assert.Equal(t, a, engine.NewHasher().Digest([]byte("block_0_nonce_0")))
}

func TestDigestHexReusesBuffer(t *testing.T) {
	engine, err := NewEngine(SHA256)
	require.NoError(t, err)

	h := engine.NewHasher()
	first := h.DigestHex([]byte("a"))
	firstCopy := string(first)
	second := h.DigestHex([]byte("b"))

	assert.Equal(t, &first[0], &second[0])
	assert.NotEqual(t, firstCopy, string(second))
	assert.Equal(t, "ca978112ca1bbdcafac231b39a23dc4da786eff8147c4e72b9807785afee48bb", firstCopy)
}

func TestAlgorithms(t *testing.T) {
	assert.Equal(t, []string{Keccak256, SHA256, SHA3_256}, Algorithms())
}
