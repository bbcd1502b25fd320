// Package wificli is the host analog of the Wi-Fi station controller spec
// §4.F/§1 treats as an external collaborator (on the embedded target,
// esp_radio's WifiController). It drives wpa_supplicant's control socket
// through wpa_cli and reads link state from `wpa_cli status`, grounded on the
// teacher's internal/adapters/sniffer/driver/wireless_utils.go
// CommandExecutor-injection pattern (SystemCommandExecutor default,
// swappable for tests).
package wificli

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandExecutor abstracts system command execution, mirroring the
// teacher's driver.CommandExecutor seam.
type CommandExecutor interface {
	Execute(name string, args ...string) ([]byte, error)
}

// SystemCommandExecutor runs commands via os/exec.
type SystemCommandExecutor struct{}

func (SystemCommandExecutor) Execute(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// Controller implements internal/wifinet.Controller against a named
// wpa_supplicant control interface.
type Controller struct {
	iface    string
	executor CommandExecutor

	configured bool
	started    bool
}

// New builds a Controller for the given wpa_supplicant interface name
// (e.g. "wlan0"). A nil executor defaults to SystemCommandExecutor.
func New(iface string, executor CommandExecutor) *Controller {
	if executor == nil {
		executor = SystemCommandExecutor{}
	}
	return &Controller{iface: iface, executor: executor}
}

// IsConnected reports whether wpa_cli status shows a completed association.
func (c *Controller) IsConnected() bool {
	out, err := c.executor.Execute("wpa_cli", "-i", c.iface, "status")
	if err != nil {
		return false
	}
	return strings.Contains(string(out), "wpa_state=COMPLETED")
}

// IsStarted reports whether the supplicant has been configured and
// started this process; it does not probe the OS since wpa_supplicant is
// typically already running as a system service.
func (c *Controller) IsStarted() bool {
	return c.started
}

// ApplyClientConfig pushes SSID/passphrase to the running supplicant via
// wpa_cli, matching the firmware's "apply client configuration" step.
func (c *Controller) ApplyClientConfig(_ context.Context, ssid, password string) error {
	netID, err := c.executor.Execute("wpa_cli", "-i", c.iface, "add_network")
	if err != nil {
		return fmt.Errorf("wificli: add_network: %w", err)
	}
	id := strings.TrimSpace(string(netID))

	if _, err := c.executor.Execute("wpa_cli", "-i", c.iface, "set_network", id, "ssid", fmt.Sprintf("%q", ssid)); err != nil {
		return fmt.Errorf("wificli: set ssid: %w", err)
	}
	if _, err := c.executor.Execute("wpa_cli", "-i", c.iface, "set_network", id, "psk", fmt.Sprintf("%q", password)); err != nil {
		return fmt.Errorf("wificli: set psk: %w", err)
	}
	if _, err := c.executor.Execute("wpa_cli", "-i", c.iface, "enable_network", id); err != nil {
		return fmt.Errorf("wificli: enable_network: %w", err)
	}
	c.configured = true
	return nil
}

// StartAsync marks the controller started. wpa_supplicant itself is
// expected to already be running as a daemon; there is no separate
// "start" syscall to issue on a host the way there is on the embedded
// target's WifiController::start.
func (c *Controller) StartAsync(_ context.Context) error {
	if !c.configured {
		return fmt.Errorf("wificli: start before configure")
	}
	c.started = true
	return nil
}

// ConnectAsync asks wpa_supplicant to (re)associate.
func (c *Controller) ConnectAsync(_ context.Context) error {
	if _, err := c.executor.Execute("wpa_cli", "-i", c.iface, "reassociate"); err != nil {
		return fmt.Errorf("wificli: reassociate: %w", err)
	}
	return nil
}

// DisconnectAsync asks wpa_supplicant to drop the current association.
func (c *Controller) DisconnectAsync(_ context.Context) error {
	if _, err := c.executor.Execute("wpa_cli", "-i", c.iface, "disconnect"); err != nil {
		return fmt.Errorf("wificli: disconnect: %w", err)
	}
	return nil
}

// StopAsync tears down the supplicant's configured network, the closest
// host analog to the embedded WifiController::stop.
func (c *Controller) StopAsync(_ context.Context) error {
	if _, err := c.executor.Execute("wpa_cli", "-i", c.iface, "disable_network", "all"); err != nil {
		return fmt.Errorf("wificli: disable_network: %w", err)
	}
	c.started = false
	c.configured = false
	return nil
}
