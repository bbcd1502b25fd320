package iplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLink_NonexistentInterface_ReportsDown(t *testing.T) {
	l := New("trailsense-test-nonexistent0")
	assert.False(t, l.IsLinkUp())
	assert.False(t, l.HasIPv4())
}

func TestLink_Loopback_ReportsUpWithIPv4(t *testing.T) {
	l := New("lo")
	if !l.IsLinkUp() {
		t.Skip("loopback interface not named lo or not up in this environment")
	}
	assert.True(t, l.HasIPv4(), "loopback interface is expected to carry 127.0.0.1")
}
