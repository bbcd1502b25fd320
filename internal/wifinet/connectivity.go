// Package wifinet implements the connectivity task (spec §4.F, component
// G): the sole owner of the Wi-Fi station controller, driving it through
// Idle -> Configured -> Started -> Connecting -> Connected.
//
// The original firmware's wifi/tasks.rs drives this from controller events
// (wait_for_event(StaDisconnected)); this version is redesigned per the
// spec to poll a non-blocking control channel each iteration instead, so
// that an external Reconnect/RestartController command can interrupt the
// loop between any two suspension points. Loop shape grounded on the
// teacher's ChannelHopper select loop (internal/adapters/sniffer/hopping/
// hopper.go).
package wifinet

import (
	"context"
	"time"

	"github.com/daugt/trailsense-edge/internal/xlog"
)

// ControlCmd is a command delivered to the connectivity task's inbound
// channel.
type ControlCmd int

const (
	// Reconnect forces Connected -> Idle: disconnect, then settle.
	Reconnect ControlCmd = iota
	// RestartController forces any state -> Idle: disconnect, stop, settle.
	RestartController
)

// ControlChanCapacity is the inbound channel depth from spec §5.
const ControlChanCapacity = 4

const (
	reconnectSettleDelay = 2 * time.Second
	restartSettleDelay   = 2 * time.Second
	pollInterval         = 500 * time.Millisecond
	retryDelay           = 5 * time.Second
)

// Controller abstracts the Wi-Fi station controller. Implementations wrap
// the platform's radio driver.
type Controller interface {
	IsConnected() bool
	IsStarted() bool
	ApplyClientConfig(ctx context.Context, ssid, password string) error
	StartAsync(ctx context.Context) error
	ConnectAsync(ctx context.Context) error
	DisconnectAsync(ctx context.Context) error
	StopAsync(ctx context.Context) error
}

// Task drives Controller per the connectivity state machine.
type Task struct {
	controller Controller
	ssid       string
	password   string
	control    <-chan ControlCmd
	sleep      func(ctx context.Context, d time.Duration)
}

// NewTask builds a Task. An empty ssid or password is reported by Run and
// causes it to exit immediately, leaving the node sniffing-only.
func NewTask(controller Controller, ssid, password string, control <-chan ControlCmd) *Task {
	return &Task{
		controller: controller,
		ssid:       ssid,
		password:   password,
		control:    control,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Run drives the connectivity state machine until ctx is cancelled. It
// returns immediately, without looping, if SSID or password is unset.
func (t *Task) Run(ctx context.Context) {
	if t.ssid == "" {
		xlog.Errorf("wifinet: WIFI_SSID not set")
		return
	}
	if t.password == "" {
		xlog.Errorf("wifinet: WIFI_PASSWORD not set")
		return
	}

	xlog.Infof("wifinet: connecting to wifi")

	for {
		if ctx.Err() != nil {
			return
		}

		if t.pollControl(ctx) {
			continue
		}

		if t.controller.IsConnected() {
			t.sleep(ctx, pollInterval)
			continue
		}

		if !t.controller.IsStarted() {
			if err := t.controller.ApplyClientConfig(ctx, t.ssid, t.password); err != nil {
				xlog.Errorf("wifinet: configure client: %v", err)
				t.sleep(ctx, retryDelay)
				continue
			}
			if err := t.controller.StartAsync(ctx); err != nil {
				xlog.Errorf("wifinet: start controller: %v", err)
				t.sleep(ctx, retryDelay)
				continue
			}
		}

		if err := t.controller.ConnectAsync(ctx); err != nil {
			xlog.Errorf("wifinet: connect: %v", err)
			t.sleep(ctx, retryDelay)
			continue
		}
		xlog.Infof("wifinet: connected")
	}
}

// pollControl non-blockingly checks for a control command and, if one is
// present, executes it. It reports whether a command was processed so the
// caller can re-evaluate state from the top of the loop.
func (t *Task) pollControl(ctx context.Context) bool {
	select {
	case cmd, ok := <-t.control:
		if !ok {
			return false
		}
		t.applyControl(ctx, cmd)
		return true
	default:
		return false
	}
}

func (t *Task) applyControl(ctx context.Context, cmd ControlCmd) {
	switch cmd {
	case Reconnect:
		if err := t.controller.DisconnectAsync(ctx); err != nil {
			xlog.Errorf("wifinet: disconnect (reconnect): %v", err)
		}
		t.sleep(ctx, reconnectSettleDelay)
	case RestartController:
		if err := t.controller.DisconnectAsync(ctx); err != nil {
			xlog.Errorf("wifinet: disconnect (restart): %v", err)
		}
		if err := t.controller.StopAsync(ctx); err != nil {
			xlog.Errorf("wifinet: stop controller (restart): %v", err)
		}
		t.sleep(ctx, restartSettleDelay)
	default:
		xlog.Warnf("wifinet: unknown control command %v", cmd)
	}
}
