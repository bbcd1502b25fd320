// Command trailsense-edge is the node firmware's entry point (spec §4.H/
// §4.J, component J). On the embedded target this would be the #[main]
// function in src/bin/main.rs; on this Go port it wires the platform
// adapters (internal/platform/*) to the core pipeline and hands control to
// internal/supervisor.
package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"os"
	"os/signal"
	"syscall"

	"github.com/daugt/trailsense-edge/internal/classifier"
	"github.com/daugt/trailsense-edge/internal/config"
	"github.com/daugt/trailsense-edge/internal/netstack"
	"github.com/daugt/trailsense-edge/internal/platform/iplink"
	"github.com/daugt/trailsense-edge/internal/platform/linuxsniffer"
	"github.com/daugt/trailsense-edge/internal/platform/wificli"
	"github.com/daugt/trailsense-edge/internal/supervisor"
	"github.com/daugt/trailsense-edge/internal/telemetry"
	"github.com/daugt/trailsense-edge/internal/xlog"
)

// Interface names are read from the environment rather than flags: this is
// firmware (spec §6 "No CLI on device"), so even the host port's
// platform-specific wiring stays env-driven instead of growing a flag.*
// surface the way a conventional CLI tool would.
func monitorInterface() string {
	if v := os.Getenv("TRAILSENSE_MONITOR_IFACE"); v != "" {
		return v
	}
	return "wlan0mon"
}

func stationInterface() string {
	if v := os.Getenv("TRAILSENSE_STATION_IFACE"); v != "" {
		return v
	}
	return "wlan0"
}

// hardwareRNG stands in for the board's hardware random number generator
// (spec §3: "64 bits composed from two 32-bit reads"). crypto/rand is the
// closest host analog to a hardware entropy source.
func hardwareRNG() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		xlog.Errorf("main: hardware RNG read failed, falling back to zero: %v", err)
		return 0
	}
	return binary.BigEndian.Uint32(b[:])
}

func main() {
	cfg := config.Load()

	telemetry.InitMetrics()
	shutdownTracer, err := telemetry.InitTracer(cfg.EdgeID.String())
	if err != nil {
		xlog.Errorf("main: tracer init failed, proceeding without tracing: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bank := classifier.NewBank(classifier.DefaultTable())

	monIface := monitorInterface()
	staIface := stationInterface()

	sniffer := linuxsniffer.New(monIface)
	controller := wificli.New(staIface, nil)
	link := iplink.New(staIface)

	deps := supervisor.Deps{
		Config:              cfg,
		Bank:                bank,
		FingerprintCapacity: 0, // 0 -> fingerprintbuf.DefaultCapacity (spec CAP_F)
		PackageCapacity:     0, // 0 -> packagebuf.DefaultCapacity (spec CAP_P)
		Sniffer:             sniffer,
		Controller:          controller,
		Link:                link,
		RNG:                 netstack.RNG(hardwareRNG),
		RadioInit: func(ctx context.Context) error {
			// Host analog of esp_radio::init(): on real hardware this
			// brings up the Wi-Fi/BLE radio controller; on a host with a
			// monitor-mode NIC already present there is nothing further
			// to initialize.
			return nil
		},
		StationInit: func(ctx context.Context) error {
			// Host analog of creating the station interface. The
			// wificli.Controller talks to wpa_supplicant lazily on first
			// use, so there is no separate creation step to fail here.
			return nil
		},
		CaptureRecorder:  telemetry.CaptureRecorder{},
		UploaderRecorder: telemetry.UploaderRecorder{},
		Tracer:           telemetry.Tracer(),
	}

	xlog.Infof("main: trailsense-edge starting (monitor=%s station=%s base_url=%s)", monIface, staIface, cfg.BaseURL)

	if err := supervisor.Run(ctx, deps); err != nil && ctx.Err() == nil {
		xlog.Errorf("main: supervisor exited with error: %v", err)
	}

	if shutdownTracer != nil {
		if err := shutdownTracer(context.Background()); err != nil {
			xlog.Errorf("main: tracer shutdown: %v", err)
		}
	}
}
