// Package pow holds the pure pieces of the search: block data encoding,
// the leading-zero-bit difficulty check and nonce space partitioning.
package pow

import (
	"math"
	"math/bits"
	"strconv"
)

const (
	blockPrefix = "block_"
	nonceInfix  = "_nonce_"
)

// MaxBlockDataLen is the longest encoding BlockData can produce
const MaxBlockDataLen = len(blockPrefix) + 20 + len(nonceInfix) + 20

// BlockData encodes seed and nonce as "block_<seed>_nonce_<nonce>"
func BlockData(seed, nonce uint64) []byte {
	return AppendBlockData(make([]byte, 0, MaxBlockDataLen), seed, nonce)
}

// AppendBlockData appends the encoding of seed and nonce to dst.
// Workers pass a reused buffer so the hot loop does not allocate.
func AppendBlockData(dst []byte, seed, nonce uint64) []byte {
	dst = append(dst, blockPrefix...)
	dst = strconv.AppendUint(dst, seed, 10)
	dst = append(dst, nonceInfix...)
	return strconv.AppendUint(dst, nonce, 10)
}

// Digest is a lowercase hex digest, either as a string or a raw byte buffer
type Digest interface {
	~string | ~[]byte
}

func nibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	// not hex: treat as a set bit so the scan stops
	return 0xf
}

// MeetsDifficulty reports whether digest has at least difficulty leading zero bits.
// The scan stops at the first non-zero nibble.
func MeetsDifficulty[D Digest](digest D, difficulty uint32) bool {
	if difficulty == 0 {
		return true
	}
	var zeros uint32
	for i := 0; i < len(digest); i++ {
		v := nibble(digest[i])
		if v == 0 {
			zeros += 4
		} else {
			zeros += uint32(bits.LeadingZeros8(uint8(v)) - 4)
		}
		if zeros >= difficulty {
			return true
		}
		if v != 0 {
			return false
		}
	}
	return false
}

// LeadingZeroBits counts leading zero bits of a hex digest
func LeadingZeroBits[D Digest](digest D) int {
	n := 0
	for i := 0; i < len(digest); i++ {
		v := nibble(digest[i])
		if v != 0 {
			return n + bits.LeadingZeros8(uint8(v)) - 4
		}
		n += 4
	}
	return n
}

// Range is the starting nonce and nominal length of one worker's share
type Range struct {
	Start uint64
	Size  uint64
}

// ChunkSize is 2^64 / threads, truncated. A single worker cannot express
// 2^64 and gets math.MaxUint64.
func ChunkSize(threads int) uint64 {
	if threads <= 1 {
		return math.MaxUint64
	}
	q, _ := bits.Div64(1, 0, uint64(threads))
	return q
}

// Remainder is the part of the 2^64 space left over by truncating ChunkSize.
// It is not handed to any worker; the last worker simply keeps counting past
// its nominal end if it gets that far.
func Remainder(threads int) uint64 {
	if threads <= 1 {
		return 1
	}
	_, r := bits.Div64(1, 0, uint64(threads))
	return r
}

// Partition splits the nonce space starting at seed into threads ranges.
// Start offsets wrap modulo 2^64.
func Partition(seed uint64, threads int) []Range {
	if threads < 1 {
		threads = 1
	}
	chunk := ChunkSize(threads)
	ranges := make([]Range, threads)
	for i := range ranges {
		ranges[i] = Range{
			Start: seed + uint64(i)*chunk,
			Size:  chunk,
		}
	}
	return ranges
}
