// Package capture implements the capture callback (spec §4.B, component E):
// the function invoked by the radio driver for every frame received while
// promiscuous mode is on.
//
// Grounded on the original firmware's probe_parser.rs (read_packet /
// fingerprint_probe) for the filter order — denylist before type check,
// mgmt/probe-request only, 24-byte header skip — and on wmap's
// packet_handler.go for decoding 802.11 frames with gopacket/layers.
package capture

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/daugt/trailsense-edge/internal/classifier"
	"github.com/daugt/trailsense-edge/internal/fingerprintbuf"
	"github.com/daugt/trailsense-edge/internal/xlog"
)

// Recorder observes capture outcomes for telemetry. Both methods must be
// safe to call from the capture callback's context, i.e. non-blocking.
type Recorder interface {
	Accepted()
	Dropped(reason string)
}

type noopRecorder struct{}

func (noopRecorder) Accepted()      {}
func (noopRecorder) Dropped(string) {}

// Handler holds everything the capture callback needs: the classifier bank
// that turns a probe body into a Code, the buffer that Code is pushed into,
// and the denylist of transmitter OUIs to ignore.
type Handler struct {
	bank     *classifier.Bank
	buf      *fingerprintbuf.Buffer
	denylist [][3]byte
	rec      Recorder
}

// New builds a Handler. A nil recorder is replaced with a no-op.
func New(bank *classifier.Bank, buf *fingerprintbuf.Buffer, denylist [][3]byte, rec Recorder) *Handler {
	if rec == nil {
		rec = noopRecorder{}
	}
	return &Handler{bank: bank, buf: buf, denylist: denylist, rec: rec}
}

// HandleFrame is the capture callback contract from spec §4.B. frame is the
// raw 802.11 MAC frame (no radiotap header) as delivered by the radio
// driver. It must never block, allocate beyond what gopacket's lazy,
// no-copy decode needs, or call into the network stack.
func (h *Handler) HandleFrame(frame []byte) {
	packet := gopacket.NewPacket(frame, layers.LayerTypeDot11, gopacket.DecodeOptions{
		Lazy:   true,
		NoCopy: true,
	})

	dot11Layer := packet.Layer(layers.LayerTypeDot11)
	if dot11Layer == nil {
		h.rec.Dropped("parse_error")
		return
	}
	dot11, ok := dot11Layer.(*layers.Dot11)
	if !ok {
		h.rec.Dropped("parse_error")
		return
	}

	if len(dot11.Address2) < 6 {
		h.rec.Dropped("no_transmitter")
		return
	}

	if h.isDenied(dot11.Address2) {
		h.rec.Dropped("denylisted")
		return
	}

	if dot11.Type != layers.Dot11TypeMgmtProbeReq {
		h.rec.Dropped("not_probe_request")
		return
	}

	if len(frame) < 24 {
		h.rec.Dropped("short_frame")
		return
	}

	code := h.bank.Fingerprint(frame[24:])

	body := frame[24:]
	n := len(body)
	if n > 16 {
		n = 16
	}
	xlog.Debugf("capture: transmitter=%02x:%02x:%02x:%02x:%02x:%02x body[0:%d]=% x fingerprint=%016b",
		dot11.Address2[0], dot11.Address2[1], dot11.Address2[2],
		dot11.Address2[3], dot11.Address2[4], dot11.Address2[5],
		n, body[:n], uint16(code))

	if !h.buf.Push(code) {
		xlog.Warnf("fingerprint buffer full, dropping code %d", code)
		h.rec.Dropped("buffer_full")
		return
	}

	h.rec.Accepted()
}

// isDenied reports whether mac's 24-bit OUI prefix matches an entry in the
// denylist.
func (h *Handler) isDenied(mac []byte) bool {
	for _, d := range h.denylist {
		if mac[0] == d[0] && mac[1] == d[1] && mac[2] == d[2] {
			return true
		}
	}
	return false
}
