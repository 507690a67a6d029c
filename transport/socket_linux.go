//go:build linux

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// setSocketOptions sets SO_REUSEADDR and, where the kernel supports it (3.9+),
// SO_REUSEPORT, so the multicast listener can bind 5353 alongside another
// local mDNS responder.
func setSocketOptions(fd uintptr) error {
	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}
	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		if err != unix.ENOPROTOOPT {
			return fmt.Errorf("setsockopt SO_REUSEPORT: %w", err)
		}
	}
	return nil
}

func platformControl(_, _ string, c syscall.RawConn) error {
	var sockErr error
	if err := c.Control(func(fd uintptr) { sockErr = setSocketOptions(fd) }); err != nil {
		return fmt.Errorf("raw conn control: %w", err)
	}
	return sockErr
}

// PlatformControl is installed as net.ListenConfig.Control by
// DialMulticast so its bind gets the platform's reuse options. DialUDP and
// DialTCP do not use it.
func PlatformControl(network, address string, c syscall.RawConn) error {
	return platformControl(network, address, c)
}
