package uploader

import (
	"crypto/tls"
	"math/rand"
)

// TLSVerifier builds the *tls.Config used for the upload connection. It
// exists as a strategy seam so verification can be switched from "none" to
// a pinned certificate without touching the rest of this package — see
// spec §6's note that certificate verification is a known, tracked gap.
type TLSVerifier interface {
	ClientTLSConfig(seed uint64) *tls.Config
}

// InsecureVerifier implements the firmware's current behavior:
// TlsVerify::None. The per-connection TLS randomness is seeded
// deterministically from WifiCtx.TLSSeed, matching the original's
// TlsConfig::new(tls_seed, ...) rather than drawing on a full-entropy
// source the embedded target may not have at TLS-handshake time.
type InsecureVerifier struct{}

// ClientTLSConfig returns a config with server certificate verification
// disabled and a seeded deterministic random source.
func (InsecureVerifier) ClientTLSConfig(seed uint64) *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
		Rand:               rand.New(rand.NewSource(int64(seed))),
		MinVersion:         tls.VersionTLS12,
	}
}
