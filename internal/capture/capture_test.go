package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daugt/trailsense-edge/internal/classifier"
	"github.com/daugt/trailsense-edge/internal/fingerprintbuf"
)

// buildFrame assembles a minimal 24-byte 802.11 MAC header (type/subtype,
// flags, duration, three addresses, sequence control) followed by body.
func buildFrame(frameType, subtype byte, transmitter [6]byte, body []byte) []byte {
	frame := make([]byte, 24)
	frame[0] = (subtype << 4) | (frameType << 2)
	frame[1] = 0x00 // flags
	// duration/id left zero
	copy(frame[4:10], []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}) // addr1
	copy(frame[10:16], transmitter[:])                            // addr2
	copy(frame[16:22], []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}) // addr3
	// sequence control left zero
	return append(frame, body...)
}

const (
	mgmtType        = 0x0
	probeReqSubtype = 0x4
	beaconSubtype   = 0x8
)

func testBank(t *testing.T) *classifier.Bank {
	t.Helper()
	return classifier.NewBank([]classifier.Weak{
		{PositiveMask: []byte{0xFF}, NegativeMask: []byte{0x00}, Threshold: 0},
	})
}

func TestHandleFrame_AcceptsProbeRequest(t *testing.T) {
	bank := testBank(t)
	buf := fingerprintbuf.New(4)
	h := New(bank, buf, nil, nil)

	frame := buildFrame(mgmtType, probeReqSubtype, [6]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}, []byte{0xA5})

	h.HandleFrame(frame)

	assert.Equal(t, 1, buf.Len())
}

func TestHandleFrame_RejectsShortFrame(t *testing.T) {
	bank := testBank(t)
	buf := fingerprintbuf.New(4)
	h := New(bank, buf, nil, nil)

	h.HandleFrame(make([]byte, 10))

	assert.Equal(t, 0, buf.Len())
}

func TestHandleFrame_RejectsNonProbeRequest(t *testing.T) {
	bank := testBank(t)
	buf := fingerprintbuf.New(4)
	h := New(bank, buf, nil, nil)

	frame := buildFrame(mgmtType, beaconSubtype, [6]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}, []byte{0xA5})
	h.HandleFrame(frame)

	assert.Equal(t, 0, buf.Len())
}

func TestHandleFrame_RejectsDenylistedTransmitter(t *testing.T) {
	bank := testBank(t)
	buf := fingerprintbuf.New(4)
	denylist := [][3]byte{{0x54, 0x8A, 0xBA}}
	h := New(bank, buf, denylist, nil)

	frame := buildFrame(mgmtType, probeReqSubtype, [6]byte{0x54, 0x8A, 0xBA, 0x01, 0x02, 0x03}, []byte{0xA5})
	h.HandleFrame(frame)

	assert.Equal(t, 0, buf.Len())
}

type countingRecorder struct {
	accepted int
	dropped  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{dropped: make(map[string]int)}
}

func (r *countingRecorder) Accepted()           { r.accepted++ }
func (r *countingRecorder) Dropped(reason string) { r.dropped[reason]++ }

func TestHandleFrame_RecordsOutcomes(t *testing.T) {
	bank := testBank(t)
	buf := fingerprintbuf.New(4)
	rec := newCountingRecorder()
	h := New(bank, buf, nil, rec)

	h.HandleFrame(buildFrame(mgmtType, probeReqSubtype, [6]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, []byte{0x00}))
	h.HandleFrame(buildFrame(mgmtType, beaconSubtype, [6]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, []byte{0x00}))

	assert.Equal(t, 1, rec.accepted)
	assert.Equal(t, 1, rec.dropped["not_probe_request"])
}

func TestHandleFrame_OverflowWarnsAndDrops(t *testing.T) {
	bank := testBank(t)
	buf := fingerprintbuf.New(1)
	rec := newCountingRecorder()
	h := New(bank, buf, nil, rec)

	frame := buildFrame(mgmtType, probeReqSubtype, [6]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, []byte{0x00})
	h.HandleFrame(frame)
	h.HandleFrame(frame)

	require.Equal(t, 1, buf.Len())
	assert.Equal(t, 1, rec.dropped["buffer_full"])
}
