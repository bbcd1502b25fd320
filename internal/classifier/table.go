// This file stands in for the output of the offline Python training tool
// spec §4.A/§9 describes ("the classifier bank is generated by an external
// offline tool. The core consumes it as an immutable table, not the
// training procedure"). The real tool and its trained weights are outside
// this repo's scope; DefaultTable is a representative 12-classifier bank
// scored over the first four bytes of a probe-request body (every mask
// starts at body byte 0), compiled in exactly the way a generated table would be linked in.
package classifier

// DefaultTable returns the compiled-in classifier bank used when no
// alternate table is supplied at boot.
func DefaultTable() []Weak {
	return []Weak{
		// Capability info field (offset 0-1): prefer responder/poll bits.
		{PositiveMask: []byte{0x31, 0x04}, NegativeMask: []byte{0x00, 0x00}, Threshold: 1},
		{PositiveMask: []byte{0x00, 0x00}, NegativeMask: []byte{0x31, 0x04}, Threshold: 0},
		// Further two-byte masks, also scored over body bytes 0-1.
		{PositiveMask: []byte{0xFF, 0x0F}, NegativeMask: []byte{0x00, 0xF0}, Threshold: 3},
		{PositiveMask: []byte{0x0F, 0xFF}, NegativeMask: []byte{0xF0, 0x00}, Threshold: 4},
		{PositiveMask: []byte{0xAA, 0x55}, NegativeMask: []byte{0x55, 0xAA}, Threshold: 2},
		// Four-byte masks, scored over body bytes 0-3.
		{PositiveMask: []byte{0xFF, 0x00, 0xFF, 0x00}, NegativeMask: []byte{0x00, 0xFF, 0x00, 0xFF}, Threshold: 4},
		{PositiveMask: []byte{0x0F, 0xF0, 0x0F, 0xF0}, NegativeMask: []byte{0xF0, 0x0F, 0xF0, 0x0F}, Threshold: 0},
		{PositiveMask: []byte{0x88, 0x44, 0x22, 0x11}, NegativeMask: []byte{0x11, 0x22, 0x44, 0x88}, Threshold: -2},
		// Further four-byte masks, also scored over body bytes 0-3.
		{PositiveMask: []byte{0xC3, 0x3C, 0xC3, 0x3C}, NegativeMask: []byte{0x3C, 0xC3, 0x3C, 0xC3}, Threshold: 1},
		{PositiveMask: []byte{0x18, 0x81, 0x18, 0x81}, NegativeMask: []byte{0x81, 0x18, 0x81, 0x18}, Threshold: 0},
		{PositiveMask: []byte{0xF0, 0x0F, 0xF0, 0x0F}, NegativeMask: []byte{0x0F, 0xF0, 0x0F, 0xF0}, Threshold: -1},
		{PositiveMask: []byte{0x66, 0x99, 0x66, 0x99}, NegativeMask: []byte{0x99, 0x66, 0x99, 0x66}, Threshold: 2},
	}
}
