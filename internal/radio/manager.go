// Package radio implements the radio manager (spec §4.E, component F): the
// sole owner of the sniffer handle and its promiscuous-mode receive
// callback.
//
// Grounded on the teacher's ChannelHopper (internal/adapters/sniffer/
// hopping/hopper.go) for the goroutine-with-select task shape, generalized
// from "hop on a ticker" to "react to commands on a bounded channel."
package radio

import (
	"context"

	"github.com/daugt/trailsense-edge/internal/xlog"
)

// Cmd is a command delivered to the radio manager's inbound channel.
type Cmd int

const (
	// StartSniffing enables promiscuous mode and (re)installs the capture
	// callback.
	StartSniffing Cmd = iota
	// StopSniffing disables promiscuous mode.
	StopSniffing
)

func (c Cmd) String() string {
	switch c {
	case StartSniffing:
		return "StartSniffing"
	case StopSniffing:
		return "StopSniffing"
	default:
		return "Unknown"
	}
}

// CmdChanCapacity is the inbound channel depth from spec §5: enough for the
// longest command burst (a StopSniffing/StartSniffing pair) plus slack.
const CmdChanCapacity = 4

// Sniffer abstracts the radio driver's promiscuous-mode control surface.
// enabled toggles promiscuous mode; callback receives each captured 802.11
// frame and is only meaningful while enabled is true.
type Sniffer interface {
	SetPromiscuous(enabled bool, callback func(frame []byte)) error
}

// Manager owns the sniffer handle exclusively and drives it from commands
// received on cmds.
type Manager struct {
	sniffer Sniffer
	capture func(frame []byte)
	cmds    <-chan Cmd
}

// NewManager builds a Manager. capture is installed as the receive callback
// whenever sniffing starts.
func NewManager(sniffer Sniffer, capture func(frame []byte), cmds <-chan Cmd) *Manager {
	return &Manager{sniffer: sniffer, capture: capture, cmds: cmds}
}

// Run drives the manager until ctx is cancelled or the command channel is
// closed. Driver errors are logged and never fatal: the manager keeps
// looping regardless of outcome.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-m.cmds:
			if !ok {
				return
			}
			m.handle(cmd)
		}
	}
}

func (m *Manager) handle(cmd Cmd) {
	switch cmd {
	case StartSniffing:
		if err := m.sniffer.SetPromiscuous(true, m.capture); err != nil {
			xlog.Errorf("radio: enable promiscuous mode: %v", err)
		}
	case StopSniffing:
		if err := m.sniffer.SetPromiscuous(false, nil); err != nil {
			xlog.Errorf("radio: disable promiscuous mode: %v", err)
		}
	default:
		xlog.Warnf("radio: unknown command %v", cmd)
	}
}
