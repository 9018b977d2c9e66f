//go:build !windows

package bridge

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlSocket marks the listening address reusable, so that a bridge
// restarted on the same port does not have to wait out TIME_WAIT.
func controlSocket(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(
			int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
