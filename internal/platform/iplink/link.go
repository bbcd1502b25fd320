// Package iplink is the host analog of the network stack glue's link-state
// query (spec §4.H: "stack.is_link_up, stack.config_v4 polls"). On the
// embedded target this reads embassy_net's Stack directly; on a host it
// inspects the named interface's operational state and address list via
// net.Interface, the same stdlib surface wmap uses for interface discovery
// (internal/adapters/sniffer/driver/wireless_utils.go shells out to `iw`
// for capability queries, but link-up/IPv4-configured is exactly what
// net.Interface already reports without spawning a process, so no
// ecosystem or teacher library is reached for here).
package iplink

import "net"

// Link implements internal/netstack.LinkState by polling a named network
// interface.
type Link struct {
	iface string
}

// New builds a Link for the given interface name.
func New(iface string) *Link {
	return &Link{iface: iface}
}

// IsLinkUp reports whether the interface exists and is administratively
// and operationally up.
func (l *Link) IsLinkUp() bool {
	ifi, err := net.InterfaceByName(l.iface)
	if err != nil {
		return false
	}
	return ifi.Flags&net.FlagUp != 0 && ifi.Flags&net.FlagRunning != 0
}

// HasIPv4 reports whether the interface has at least one IPv4 address
// assigned (DHCP lease or static), standing in for the firmware's
// stack.config_v4().is_some().
func (l *Link) HasIPv4() bool {
	ifi, err := net.InterfaceByName(l.iface)
	if err != nil {
		return false
	}
	addrs, err := ifi.Addrs()
	if err != nil {
		return false
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ipNet.IP.To4() != nil {
			return true
		}
	}
	return false
}
