// Package config captures the build-time environment variables
// trailsense-edge reads once at process start, in the style of wmap's
// internal/config package (env-var helpers layered over documented
// defaults) but without the flag-based CLI: this is firmware, not a tool
// invoked from a shell (spec §6: "No CLI on device").
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultBaseURL is the ingestion endpoint used when TRAILSENSE_BASE_URL is unset.
const DefaultBaseURL = "https://api.trailsense.daugt.com"

// DefaultEdgeID is the fixed node identifier used when TRAILSENSE_EDGE_ID is unset.
const DefaultEdgeID = "71ec4873-944e-49c1-b7c4-4b856797715f"

// Config holds every build-time setting the node reads once at startup.
type Config struct {
	BaseURL string
	EdgeID  uuid.UUID

	// SSID/Password are empty when the corresponding env var is absent; the
	// connectivity task treats that as "run without connectivity" per spec §4.F.
	SSID     string
	Password string

	// Denylist holds the MAC-prefix (OUI) denylist as raw 3-byte prefixes.
	Denylist [][3]byte
}

// Load reads the build-time configuration from the environment. It never
// fails outright: a malformed TRAILSENSE_EDGE_ID falls back to
// DefaultEdgeID, and a missing SSID/Password is left for the connectivity
// task to report per spec §4.F.
func Load() *Config {
	cfg := &Config{
		BaseURL:  getEnv("TRAILSENSE_BASE_URL", DefaultBaseURL),
		SSID:     getEnv("WIFI_SSID", ""),
		Password: getEnv("WIFI_PASSWORD", ""),
	}

	id, err := uuid.Parse(getEnv("TRAILSENSE_EDGE_ID", DefaultEdgeID))
	if err != nil {
		id = uuid.MustParse(DefaultEdgeID)
	}
	cfg.EdgeID = id

	cfg.Denylist = parseDenylist(getEnv("TRAILSENSE_DENYLIST", ""))
	if len(cfg.Denylist) == 0 {
		cfg.Denylist = DefaultDenylist()
	}

	return cfg
}

// DefaultDenylist is the hard-coded OUI denylist recovered from the
// original firmware's src/bin/main.rs: the node's own vendor OUI plus three
// vendor-infrastructure prefixes excluded "for testing purposes" in the
// source this spec was distilled from.
func DefaultDenylist() [][3]byte {
	return [][3]byte{
		{0x54, 0x8A, 0xBA},
		{0x34, 0x98, 0x7A},
		{0x70, 0xD3, 0x79},
		{0x10, 0x3C, 0x59},
	}
}

func parseDenylist(s string) [][3]byte {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var out [][3]byte
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		entry = strings.ReplaceAll(entry, "-", ":")
		parts := strings.Split(entry, ":")
		if len(parts) < 3 {
			continue
		}
		var prefix [3]byte
		ok := true
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseUint(parts[i], 16, 8)
			if err != nil {
				ok = false
				break
			}
			prefix[i] = byte(v)
		}
		if ok {
			out = append(out, prefix)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
