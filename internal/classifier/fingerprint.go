package classifier

import "math/bits"

// Fingerprint computes the Code for a probe body against the bank. It is
// pure, total, and constant-time in the classifier bank size (spec §4.A):
// it never allocates and its running time depends only on Len() and the
// mask lengths, never on the content of body.
func (b *Bank) Fingerprint(body []byte) Code {
	var code Code
	for _, w := range b.weak {
		l := len(body)
		if len(w.PositiveMask) < l {
			l = len(w.PositiveMask)
		}
		if len(w.NegativeMask) < l {
			l = len(w.NegativeMask)
		}

		var score int32
		for i := 0; i < l; i++ {
			score += int32(bits.OnesCount8(body[i] & w.PositiveMask[i]))
			score -= int32(bits.OnesCount8(body[i] & w.NegativeMask[i]))
		}

		var bit Code
		if score >= w.Threshold {
			bit = 1
		}
		code = (code << 1) | bit
	}
	return code
}
