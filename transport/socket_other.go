//go:build !linux

package transport

import "syscall"

// PlatformControl is a no-op outside Linux: SO_REUSEPORT is Linux/BSD-family
// specific and this client works correctly without it (it only affects
// whether a second process can bind the same local port concurrently).
func PlatformControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
