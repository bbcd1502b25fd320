package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TRAILSENSE_BASE_URL", "")
	t.Setenv("TRAILSENSE_EDGE_ID", "")
	t.Setenv("WIFI_SSID", "")
	t.Setenv("WIFI_PASSWORD", "")
	t.Setenv("TRAILSENSE_DENYLIST", "")

	cfg := Load()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultEdgeID, cfg.EdgeID.String())
	assert.Empty(t, cfg.SSID)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, DefaultDenylist(), cfg.Denylist)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TRAILSENSE_BASE_URL", "https://ingest.example.com")
	t.Setenv("TRAILSENSE_EDGE_ID", "not-a-uuid")
	t.Setenv("WIFI_SSID", "lab-net")
	t.Setenv("WIFI_PASSWORD", "hunter2")
	t.Setenv("TRAILSENSE_DENYLIST", "AA:BB:CC, dd-ee-ff")

	cfg := Load()

	assert.Equal(t, "https://ingest.example.com", cfg.BaseURL)
	// Malformed UUID falls back to the documented default.
	assert.Equal(t, DefaultEdgeID, cfg.EdgeID.String())
	assert.Equal(t, "lab-net", cfg.SSID)
	assert.Equal(t, "hunter2", cfg.Password)
	assert.Equal(t, [][3]byte{{0xAA, 0xBB, 0xCC}, {0xDD, 0xEE, 0xFF}}, cfg.Denylist)
}
