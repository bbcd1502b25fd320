package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1 from spec §8: single classifier, mask length 2, body [0xA5, 0xFF].
// score = popcount(0xA5 & 0x0F) = popcount(0x05) = 2 >= threshold 2 -> bit 1.
func TestFingerprint_S1(t *testing.T) {
	bank := NewBank([]Weak{
		{
			PositiveMask: []byte{0x0F, 0x00},
			NegativeMask: []byte{0x00, 0x00},
			Threshold:    2,
		},
	})

	code := bank.Fingerprint([]byte{0xA5, 0xFF})
	assert.Equal(t, Code(1), code)
}

func TestFingerprint_Pure(t *testing.T) {
	bank := NewBank([]Weak{
		{PositiveMask: []byte{0xFF}, NegativeMask: []byte{0x00}, Threshold: 1},
		{PositiveMask: []byte{0x0F}, NegativeMask: []byte{0xF0}, Threshold: 0},
	})

	body := []byte{0x3C, 0x7E, 0x01}
	first := bank.Fingerprint(body)
	second := bank.Fingerprint(body)
	assert.Equal(t, first, second)
}

func TestFingerprint_EmptyBody(t *testing.T) {
	// Every score is 0; every bit is 1 iff threshold <= 0.
	bank := NewBank([]Weak{
		{PositiveMask: []byte{0xFF}, NegativeMask: []byte{0x00}, Threshold: 0},
		{PositiveMask: []byte{0xFF}, NegativeMask: []byte{0x00}, Threshold: 1},
		{PositiveMask: []byte{0xFF}, NegativeMask: []byte{0x00}, Threshold: -1},
	})

	code := bank.Fingerprint(nil)
	// bits MSB-first: classifier0(th=0)->1, classifier1(th=1)->0, classifier2(th=-1)->1
	assert.Equal(t, Code(0b101), code)
}

func TestFingerprint_BodyShorterThanMasks(t *testing.T) {
	bank := NewBank([]Weak{
		{PositiveMask: []byte{0xFF, 0xFF, 0xFF}, NegativeMask: []byte{0, 0, 0}, Threshold: 1},
	})

	// Only byte 0 (0xFF) is scored; bytes 1-2 of the mask are unreachable.
	code := bank.Fingerprint([]byte{0xFF})
	assert.Equal(t, Code(1), code)
}

func TestNewBank_PanicsOnOverlap(t *testing.T) {
	assert.Panics(t, func() {
		NewBank([]Weak{
			{PositiveMask: []byte{0x0F}, NegativeMask: []byte{0x0F}, Threshold: 0},
		})
	})
}

func TestNewBank_PanicsOnTooManyClassifiers(t *testing.T) {
	weak := make([]Weak, MaxClassifiers+1)
	for i := range weak {
		weak[i] = Weak{PositiveMask: []byte{0xFF}, NegativeMask: []byte{0x00}, Threshold: 0}
	}
	assert.Panics(t, func() { NewBank(weak) })
}

func TestBank_Len(t *testing.T) {
	bank := NewBank([]Weak{
		{PositiveMask: []byte{0xFF}, NegativeMask: []byte{0x00}, Threshold: 0},
		{PositiveMask: []byte{0xFF}, NegativeMask: []byte{0x00}, Threshold: 0},
	})
	require.Equal(t, 2, bank.Len())
}
