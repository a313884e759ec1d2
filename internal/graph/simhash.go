package graph

import (
	"hash/fnv"
	"math/bits"
)

// Fingerprint computes a 64-bit order-independent digest of a token
// multiset: each token votes its hash bits into a 64-slot vector
// (incrementing for set bits, decrementing for unset bits) and output
// bit i is set when vote i is positive. The second return value is
// false for an empty multiset, which carries no fingerprint.
func Fingerprint(tokens []string) (uint64, bool) {
	if len(tokens) == 0 {
		return 0, false
	}

	var votes [64]int
	for _, token := range tokens {
		h := hashToken64(token)
		for bit := 0; bit < 64; bit++ {
			if h&(uint64(1)<<bit) != 0 {
				votes[bit]++
			} else {
				votes[bit]--
			}
		}
	}

	var result uint64
	for bit := 0; bit < 64; bit++ {
		if votes[bit] > 0 {
			result |= uint64(1) << bit
		}
	}
	return result, true
}

// HammingDistance counts the differing bits of two fingerprints.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

func hashToken64(token string) uint64 {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(token))
	return hasher.Sum64()
}
