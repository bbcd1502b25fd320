// Package netstack is the network stack glue (spec §4.H, component I): it
// exposes the link-state handle the uploader waits on and derives the two
// independent seeds the original firmware's init_stack produces from the
// hardware RNG.
//
// Grounded on the original firmware's wifi/mod.rs (init_stack: two raw RNG
// reads compose the IP stack seed, two more compose the TLS seed, per spec
// §3's "64 bits composed from two 32-bit reads"). HKDF is substituted for
// the original's direct concatenation of the raw bits so the two seeds are
// statistically independent of each other even if the RNG has mild
// correlation between consecutive reads; golang.org/x/crypto already ships
// HKDF and is otherwise used by the teacher only for bcrypt, which has no
// analogue on a node with no user accounts.
package netstack

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"
)

// ErrLinkTimeout is returned by WaitForLink when the link does not come up
// with an IPv4 configuration within the bound.
var ErrLinkTimeout = errors.New("netstack: timed out waiting for link")

const pollInterval = 50 * time.Millisecond

// RNG reads one 32-bit value from the hardware random number generator.
type RNG func() uint32

// LinkState reports the station interface's current link and IP
// configuration state. Implementations wrap the platform's network stack.
type LinkState interface {
	IsLinkUp() bool
	HasIPv4() bool
}

// WifiCtx bundles the link handle with the two seeds init_stack derives:
// NetSeed for the IP stack's internal randomization, TLSSeed for the
// uploader's TLS client randomness.
type WifiCtx struct {
	Link    LinkState
	NetSeed uint64
	TLSSeed uint64
}

// InitStack reads four 32-bit values from rng — two per seed, matching spec
// §3's "64 bits composed from two 32-bit reads" — and derives NetSeed and
// TLSSeed from them via HKDF (extract, then expand), each under a distinct info label so
// neither seed can be recovered from the other.
func InitStack(rng RNG, link LinkState) (*WifiCtx, error) {
	netSeed, err := deriveSeed(rng(), rng(), []byte("trailsense-edge net stack seed"))
	if err != nil {
		return nil, err
	}
	tlsSeed, err := deriveSeed(rng(), rng(), []byte("trailsense-edge tls seed"))
	if err != nil {
		return nil, err
	}
	return &WifiCtx{Link: link, NetSeed: netSeed, TLSSeed: tlsSeed}, nil
}

func deriveSeed(hi, lo uint32, info []byte) (uint64, error) {
	var ikm [8]byte
	binary.BigEndian.PutUint32(ikm[:4], hi)
	binary.BigEndian.PutUint32(ikm[4:], lo)

	r := hkdf.New(sha256.New, ikm[:], nil, info)
	var out [8]byte
	if _, err := io.ReadFull(r, out[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(out[:]), nil
}

// WaitForLink polls link until it reports both link-up and an IPv4
// configuration, or timeout elapses. Polling is non-suspending work
// interleaved with timer waits per spec §5.
func WaitForLink(ctx context.Context, link LinkState, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if link.IsLinkUp() && link.HasIPv4() {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrLinkTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
