//go:build linux

// Package linuxsniffer is the host analog of the radio driver's
// promiscuous-mode receive path (spec §1 names "raw radio driver
// internals" an external collaborator; on the embedded target this is
// esp_radio's set_promiscuous_mode/set_receive_cb). On a Linux host it is
// an AF_PACKET raw socket bound to a monitor-mode interface, grounded on
// the teacher's internal/adapters/sniffer/raw_socket_linux.go (same
// syscall.Socket/Bind/SockaddrLinklayer shape), generalized from transmit
// to receive.
package linuxsniffer

import (
	"fmt"
	"net"
	"sync"
	"syscall"

	"github.com/daugt/trailsense-edge/internal/xlog"
)

// htons converts a 16-bit value to network byte order, mirroring what the
// teacher's comment in raw_socket_linux.go worked through by hand.
func htons(v uint16) uint16 {
	return (v<<8)&0xff00 | (v>>8)&0x00ff
}

const ethPAll = 0x0003

// Sniffer implements internal/radio.Sniffer by binding an AF_PACKET raw
// socket to iface and spawning a read loop while promiscuous mode is on.
// It is the sole owner of the socket fd, matching spec §4.E's "the task is
// the sole owner of the sniffer handle."
type Sniffer struct {
	iface string

	mu      sync.Mutex
	fd      int
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// New builds a Sniffer bound to the given network interface name (e.g.
// "wlan0mon", already in monitor mode — entering monitor mode is itself
// driver/platform-specific and out of this repo's scope per spec §1).
func New(iface string) *Sniffer {
	return &Sniffer{iface: iface}
}

// SetPromiscuous implements internal/radio.Sniffer.
func (s *Sniffer) SetPromiscuous(enabled bool, callback func(frame []byte)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enabled {
		if s.running {
			return nil
		}
		fd, err := s.open()
		if err != nil {
			return err
		}
		s.fd = fd
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		s.running = true
		go s.readLoop(fd, callback, s.stop, s.done)
		return nil
	}

	if !s.running {
		return nil
	}
	close(s.stop)
	syscall.Close(s.fd)
	<-s.done
	s.running = false
	return nil
}

func (s *Sniffer) open() (int, error) {
	ifi, err := net.InterfaceByName(s.iface)
	if err != nil {
		return 0, fmt.Errorf("linuxsniffer: interface %s not found: %w", s.iface, err)
	}

	fd, err := syscall.Socket(syscall.AF_PACKET, syscall.SOCK_RAW, int(htons(ethPAll)))
	if err != nil {
		return 0, fmt.Errorf("linuxsniffer: socket: %w", err)
	}

	ll := syscall.SockaddrLinklayer{
		Protocol: htons(ethPAll),
		Ifindex:  ifi.Index,
	}
	if err := syscall.Bind(fd, &ll); err != nil {
		syscall.Close(fd)
		return 0, fmt.Errorf("linuxsniffer: bind to %s: %w", s.iface, err)
	}
	return fd, nil
}

// readLoop blocks on Read until the socket is closed by SetPromiscuous(false,
// ...); each frame is handed to callback synchronously, matching the
// embedded driver's direct receive-callback invocation.
func (s *Sniffer) readLoop(fd int, callback func([]byte), stop, done chan struct{}) {
	defer close(done)

	buf := make([]byte, 65536)
	for {
		select {
		case <-stop:
			return
		default:
		}

		n, _, err := syscall.Recvfrom(fd, buf, 0)
		if err != nil {
			select {
			case <-stop:
				return
			default:
				xlog.Warnf("linuxsniffer: recvfrom %s: %v", s.iface, err)
				return
			}
		}
		if callback != nil && n > 0 {
			frame := make([]byte, n)
			copy(frame, buf[:n])
			callback(frame)
		}
	}
}
