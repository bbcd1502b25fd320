// Package supervisor is the boot sequencer (spec §4.H/§4.J, component J):
// hardware/radio init with retry, station interface creation with a fatal
// path, network stack init, and task fan-out. Grounded on the original
// firmware's src/bin/main.rs boot order (init hardware -> start RTOS ->
// init radio controller with retry -> create station interface, fatal on
// failure -> init stack -> spawn tasks) and on the teacher's
// cmd/wmap-agent/main.go task fan-out shape (goroutine-per-task, a
// cancelable context standing in for the original's "tasks run for the
// lifetime of the device").
package supervisor

import (
	"context"
	"time"

	"github.com/daugt/trailsense-edge/internal/capture"
	"github.com/daugt/trailsense-edge/internal/classifier"
	"github.com/daugt/trailsense-edge/internal/config"
	"github.com/daugt/trailsense-edge/internal/fingerprintbuf"
	"github.com/daugt/trailsense-edge/internal/netstack"
	"github.com/daugt/trailsense-edge/internal/packagebuf"
	"github.com/daugt/trailsense-edge/internal/radio"
	"github.com/daugt/trailsense-edge/internal/uploader"
	"github.com/daugt/trailsense-edge/internal/wifinet"
	"github.com/daugt/trailsense-edge/internal/xlog"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// radioInitBackoff is the fixed retry delay for radio controller init per
// spec §4.H ("initialize the radio controller with retry (5 s backoff,
// infinite — this is a prerequisite)"). A var, not a const, so tests can
// shrink it instead of waiting out the real delay.
var radioInitBackoff = 5 * time.Second

// fatalIdleTick is the sleep granularity of fatal_idle per spec §4.H/§7.1.
const fatalIdleTick = 1 * time.Second

// Deps bundles every collaborator the boot sequence wires together. The
// platform-specific implementations (radio driver, Wi-Fi controller, link
// state, hardware RNG) are injected by cmd/trailsense-edge/main.go; this
// package only sequences them.
type Deps struct {
	Config *config.Config
	Bank   *classifier.Bank

	FingerprintCapacity int
	PackageCapacity     int

	Sniffer    radio.Sniffer
	Controller wifinet.Controller
	Link       netstack.LinkState
	RNG        netstack.RNG

	// RadioInit is the init-fatal hardware radio controller bring-up
	// (spec §7.1's esp_radio::init() analog). Retried with a fixed 5s
	// backoff until it succeeds or ctx is cancelled.
	RadioInit func(ctx context.Context) error
	// StationInit is the station interface creation step. Its failure is
	// init-fatal per spec §4.H/§7.1: the supervisor enters fatal_idle.
	StationInit func(ctx context.Context) error

	CaptureRecorder  capture.Recorder
	UploaderRecorder uploader.Recorder
	Tracer           trace.Tracer
}

// Run executes the boot sequence and then blocks, running every task until
// ctx is cancelled. It returns nil on an orderly shutdown. If StationInit
// fails, Run enters fatal_idle and only returns once ctx is cancelled,
// matching the original's "sleep forever; a watchdog reset is the
// recovery" — in this Go port, the process supervisor (init/systemd)
// plays the role of the watchdog.
func Run(ctx context.Context, deps Deps) error {
	xlog.Infof("supervisor: booting trailsense-edge node %s", deps.Config.EdgeID)

	if deps.RadioInit != nil {
		if err := retryRadioInit(ctx, deps.RadioInit); err != nil {
			return err // ctx cancelled during init retry
		}
	}

	if deps.StationInit != nil {
		if err := deps.StationInit(ctx); err != nil {
			xlog.Errorf("supervisor: station interface creation failed, entering fatal_idle: %v", err)
			fatalIdle(ctx)
			return ctx.Err()
		}
	}

	wifiCtx, err := netstack.InitStack(deps.RNG, deps.Link)
	if err != nil {
		xlog.Errorf("supervisor: network stack init failed, entering fatal_idle: %v", err)
		fatalIdle(ctx)
		return ctx.Err()
	}

	fingerprints := fingerprintbuf.New(deps.FingerprintCapacity)
	packages := packagebuf.New(deps.PackageCapacity)

	radioCmds := make(chan radio.Cmd, radio.CmdChanCapacity)
	controlCmds := make(chan wifinet.ControlCmd, wifinet.ControlChanCapacity)

	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("trailsense-edge/uploader")
	}

	captureHandler := capture.New(deps.Bank, fingerprints, deps.Config.Denylist, deps.CaptureRecorder)
	radioManager := radio.NewManager(deps.Sniffer, captureHandler.HandleFrame, radioCmds)
	connTask := wifinet.NewTask(deps.Controller, deps.Config.SSID, deps.Config.Password, controlCmds)
	up := uploader.New(uploader.Deps{
		BaseURL:      deps.Config.BaseURL,
		NodeID:       deps.Config.EdgeID.String(),
		WifiCtx:      wifiCtx,
		Fingerprints: fingerprints,
		Packages:     packages,
		RadioCmds:    radioCmds,
		ControlCmds:  controlCmds,
		Tracer:       tracer,
		Recorder:     deps.UploaderRecorder,
	})

	spawn(ctx, "radio-manager", radioManager.Run)
	spawn(ctx, "connectivity", connTask.Run)
	spawn(ctx, "uploader", up.Run)

	radioCmds <- radio.StartSniffing

	<-ctx.Done()
	xlog.Infof("supervisor: shutting down")
	return nil
}

// spawn starts a task goroutine. Task-spawn failures have no return value
// to fail with in this port (tasks are plain functions, not fallible
// constructors) so this is a thin, named wrapper purely for the log line
// spec §7.2 expects ("logged, non-fatal per task").
func spawn(ctx context.Context, name string, run func(context.Context)) {
	xlog.Infof("supervisor: starting task %s", name)
	go run(ctx)
}

func retryRadioInit(ctx context.Context, init func(ctx context.Context) error) error {
	for {
		if err := init(ctx); err != nil {
			xlog.Errorf("supervisor: radio controller init failed, retrying in %s: %v", radioInitBackoff, err)
		} else {
			return nil
		}

		t := time.NewTimer(radioInitBackoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// fatalIdle sleeps forever in 1s ticks, matching spec §4.H's "enter
// fatal_idle: sleep forever in 1 s ticks" until the process is restarted
// by its supervisor (the watchdog-reset analog on real hardware).
func fatalIdle(ctx context.Context) {
	ticker := time.NewTicker(fatalIdleTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
