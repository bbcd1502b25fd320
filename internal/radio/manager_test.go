package radio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSniffer struct {
	mu        sync.Mutex
	enabled   bool
	calls     int
	failNext  bool
	lastCB    func([]byte)
}

func (f *fakeSniffer) SetPromiscuous(enabled bool, cb func([]byte)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failNext {
		f.failNext = false
		return errors.New("driver error")
	}
	f.enabled = enabled
	f.lastCB = cb
	return nil
}

func (f *fakeSniffer) state() (bool, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled, f.calls
}

func TestManager_StartSniffing_EnablesPromiscuousWithCallback(t *testing.T) {
	sniffer := &fakeSniffer{}
	capture := func([]byte) {}
	cmds := make(chan Cmd, CmdChanCapacity)
	m := NewManager(sniffer, capture, cmds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	cmds <- StartSniffing
	require.Eventually(t, func() bool {
		enabled, _ := sniffer.state()
		return enabled
	}, time.Second, time.Millisecond)
}

func TestManager_StopSniffing_DisablesPromiscuous(t *testing.T) {
	sniffer := &fakeSniffer{enabled: true}
	cmds := make(chan Cmd, CmdChanCapacity)
	m := NewManager(sniffer, func([]byte) {}, cmds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	cmds <- StopSniffing
	require.Eventually(t, func() bool {
		enabled, _ := sniffer.state()
		return !enabled
	}, time.Second, time.Millisecond)
}

func TestManager_DriverError_IsNotFatal(t *testing.T) {
	sniffer := &fakeSniffer{failNext: true}
	cmds := make(chan Cmd, CmdChanCapacity)
	m := NewManager(sniffer, func([]byte) {}, cmds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	cmds <- StartSniffing // fails
	cmds <- StartSniffing // succeeds

	require.Eventually(t, func() bool {
		enabled, calls := sniffer.state()
		return enabled && calls == 2
	}, time.Second, time.Millisecond)
}

func TestManager_Run_StopsOnContextCancel(t *testing.T) {
	sniffer := &fakeSniffer{}
	cmds := make(chan Cmd, CmdChanCapacity)
	m := NewManager(sniffer, func([]byte) {}, cmds)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}

func TestCmd_String(t *testing.T) {
	assert.Equal(t, "StartSniffing", StartSniffing.String())
	assert.Equal(t, "StopSniffing", StopSniffing.String())
	assert.Equal(t, "Unknown", Cmd(99).String())
}
