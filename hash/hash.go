// Package hash implements the 160-bit identifiers used throughout the
// Kademlia overlay: node IDs, lookup targets, and storage keys are all
// hash.Hash values, and every distance computation in routing and storage
// is built on the primitives defined here.
//
// A Hash is a fixed-width unsigned integer. The only metric the rest of
// the module cares about is XOR distance, and the only thing it needs to
// know about a distance is its height: one plus the position of its
// highest set bit. Bucket assignment, the bounce traversal, and
// distance-based storage expiry are all expressed in terms of Height,
// Ones, and Zeroes.
package hash

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/ripemd160"

	"github.com/TheWaWaR/subotai/internal/logging"
)

// Size is the width of a Hash in bits.
const Size = 160

// byteLen is the width of a Hash in bytes.
const byteLen = Size / 8

// Hash is a fixed-width 160-bit identifier. The zero value is the all-zero
// hash and is a valid, comparable value.
type Hash [byteLen]byte

// Zero is the all-zero hash, used as a sentinel in a handful of places
// (e.g. height is undefined for it).
var Zero = Hash{}

// Random returns a uniformly random Hash.
func Random() (Hash, error) {
	var h Hash
	if _, err := rand.Read(h[:]); err != nil {
		return Hash{}, fmt.Errorf("hash: generating random bytes: %w", err)
	}
	return h, nil
}

// FromBytes derives a Hash from arbitrary key material by taking its
// RIPEMD-160 digest, which is exactly byteLen (20) bytes wide. This is how
// a node derives a stable identifier from, for example, a serialized
// public key.
func FromBytes(data []byte) Hash {
	logger := logging.New("hash", "FromBytes")
	digest := ripemd160.New()
	digest.Write(data) //nolint:errcheck // hash.Hash.Write never returns an error
	var h Hash
	copy(h[:], digest.Sum(nil))
	logger.WithField("input_len", len(data)).Debug("derived hash from bytes")
	return h
}

// FromHex parses a Hash from its hexadecimal string representation.
func FromHex(s string) (Hash, error) {
	if len(s) != byteLen*2 {
		return Hash{}, fmt.Errorf("hash: invalid hex length %d, want %d", len(s), byteLen*2)
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("hash: decoding hex: %w", err)
	}
	var h Hash
	copy(h[:], data)
	return h, nil
}

// String returns the hexadecimal string representation of the Hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Equal reports whether h and other represent the same identifier.
func (h Hash) Equal(other Hash) bool {
	return h == other
}

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == Zero
}

// Xor returns the bitwise XOR distance between h and other.
func (h Hash) Xor(other Hash) Hash {
	var result Hash
	for i := 0; i < byteLen; i++ {
		result[i] = h[i] ^ other[i]
	}
	return result
}

// Height returns one plus the position (from the least significant bit) of
// the highest set bit, i.e. the number of bits needed to represent h. It
// returns 0 for the zero hash, where height is otherwise undefined.
//
// Height is what routing uses to place a peer in a bucket: a node whose
// XOR distance from the table's parent has height i+1 belongs in bucket i.
func (h Hash) Height() int {
	for i := 0; i < byteLen; i++ {
		b := h[i]
		if b == 0 {
			continue
		}
		// Most significant non-zero byte: find its highest set bit.
		bitInByte := 0
		for j := 7; j >= 0; j-- {
			if (b>>uint(j))&1 == 1 {
				bitInByte = j
				break
			}
		}
		bytePositionFromMSB := i
		bitsAboveThisByte := (byteLen - 1 - bytePositionFromMSB) * 8
		return bitsAboveThisByte + bitInByte + 1
	}
	return 0
}

// Ones returns the ascending bit positions (0 = least significant) of the
// set bits in h.
func (h Hash) Ones() []int {
	return h.bitPositions(true)
}

// Zeroes returns the ascending bit positions (0 = least significant) of the
// cleared bits in h.
func (h Hash) Zeroes() []int {
	return h.bitPositions(false)
}

func (h Hash) bitPositions(set bool) []int {
	positions := make([]int, 0, Size)
	for bit := 0; bit < Size; bit++ {
		if h.bitAt(bit) == set {
			positions = append(positions, bit)
		}
	}
	return positions
}

// bitAt reports whether the bit at the given position (0 = least
// significant) is set.
func (h Hash) bitAt(position int) bool {
	byteIndex := byteLen - 1 - position/8
	bitIndex := uint(position % 8)
	return (h[byteIndex]>>bitIndex)&1 == 1
}

// setBitAt sets or clears the bit at the given position (0 = least
// significant).
func (h *Hash) setBitAt(position int, value bool) {
	byteIndex := byteLen - 1 - position/8
	bitIndex := uint(position % 8)
	if value {
		h[byteIndex] |= 1 << bitIndex
	} else {
		h[byteIndex] &^= 1 << bitIndex
	}
}

// RandomAtDistance returns a Hash x such that (self.Xor(x)).Height() == d,
// for 0 < d <= Size. The bits of the distance below d-1 are filled
// uniformly at random; the rest are fixed so the height comes out exactly
// d. It is the caller's responsibility to pass a d in (0, Size]; d == 0 has
// no solution other than x == self, which this function does not produce.
func RandomAtDistance(self Hash, d int) (Hash, error) {
	if d <= 0 || d > Size {
		return Hash{}, fmt.Errorf("hash: distance %d out of range (0, %d]", d, Size)
	}

	var distance Hash
	randomBits := make([]byte, byteLen)
	if _, err := rand.Read(randomBits); err != nil {
		return Hash{}, fmt.Errorf("hash: generating random bytes: %w", err)
	}
	for bit := 0; bit < d-1; bit++ {
		byteIdx := bit / 8
		bitIdx := uint(bit % 8)
		value := (randomBits[byteIdx]>>bitIdx)&1 == 1
		distance.setBitAt(bit, value)
	}
	// Bit d-1 must be set: it's the highest set bit, defining the height.
	distance.setBitAt(d-1, true)

	return self.Xor(distance), nil
}
