// Package dedup reduces a burst of classifier codes to a count of distinct
// devices under Hamming-distance tolerance (spec §3/§4.C, component C).
//
// Ported from the original firmware's counter.rs (deduplicate_probes /
// is_duplicate): the first code always survives; each subsequent code
// becomes a new survivor only if it differs from every existing survivor
// by more than the tolerance. Order-dependence ("first wins") is
// intentional per spec §4.C.
package dedup

import (
	"math/bits"

	"github.com/daugt/trailsense-edge/internal/classifier"
)

// Tolerance is τ from spec §4.C: two codes count as the same device when
// their Hamming distance is at most this many bits.
const Tolerance = 2

// CountDistinct returns the number of distinct devices represented by
// codes, under Tolerance-bit Hamming dedup. Empty input returns 0.
func CountDistinct(codes []classifier.Code) uint32 {
	if len(codes) == 0 {
		return 0
	}

	survivors := make([]classifier.Code, 0, len(codes))
	survivors = append(survivors, codes[0])

	for _, c := range codes[1:] {
		if !isDuplicate(c, survivors) {
			survivors = append(survivors, c)
		}
	}

	return uint32(len(survivors))
}

func isDuplicate(c classifier.Code, survivors []classifier.Code) bool {
	for _, s := range survivors {
		if bits.OnesCount16(uint16(c^s)) <= Tolerance {
			return true
		}
	}
	return false
}
