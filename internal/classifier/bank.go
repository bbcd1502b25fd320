// Package classifier implements the boosted bank of weak bitmask classifiers
// that compresses a probe-request body into a fixed-width Code (spec §3/§4.A).
//
// Ported from the original firmware's fingerprint_probe (see
// _examples/original_source/trailsense-edge/src/probes/probe_parser.rs):
// for each classifier, score every overlapping byte position by counting the
// positive-mask bits minus the negative-mask bits, then threshold the
// running score into a single output bit.
package classifier

import "fmt"

// Code is the fixed-width classifier output. Bit j is classifier j's
// output, MSB-first: classifier 0 produces the most significant bit.
type Code uint16

// MaxClassifiers bounds the bank so a Code fits in a 16-bit word (spec §3:
// "N ≤ 16 ... the bank may be widened to 32 if required").
const MaxClassifiers = 16

// Weak is a single weak classifier: a positive and a negative byte mask,
// both indexed by body byte position, plus a signed Threshold.
type Weak struct {
	PositiveMask []byte
	NegativeMask []byte
	Threshold    int32
}

// overlaps reports whether PositiveMask and NegativeMask share any set bit
// at the same byte position — a programmer error per spec §4.A ("may be
// checked only in debug builds").
func (w Weak) overlaps() (pos int, bad bool) {
	n := len(w.PositiveMask)
	if len(w.NegativeMask) < n {
		n = len(w.NegativeMask)
	}
	for i := 0; i < n; i++ {
		if w.PositiveMask[i]&w.NegativeMask[i] != 0 {
			return i, true
		}
	}
	return 0, false
}

// Bank is an immutable, process-global, ordered sequence of weak
// classifiers. It is compiled in at build time by the external training
// tool (spec §4.A/§9) and never mutated at runtime.
type Bank struct {
	weak []Weak
}

// NewBank builds a Bank from a compiled table of weak classifiers. It
// panics if the table is larger than MaxClassifiers (a build-time
// programming error in the generated table, not a runtime condition) or if
// any classifier's masks overlap.
func NewBank(weak []Weak) *Bank {
	if len(weak) > MaxClassifiers {
		panic(fmt.Sprintf("classifier: bank has %d classifiers, max is %d", len(weak), MaxClassifiers))
	}
	for i, w := range weak {
		if pos, bad := w.overlaps(); bad {
			panic(fmt.Sprintf("classifier: mask overlap in classifier %d at byte %d", i, pos))
		}
	}
	cp := make([]Weak, len(weak))
	copy(cp, weak)
	return &Bank{weak: cp}
}

// Len returns the number of classifiers in the bank.
func (b *Bank) Len() int { return len(b.weak) }
