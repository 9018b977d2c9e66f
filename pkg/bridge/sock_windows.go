package bridge

import "syscall"

// Rebinding a port in TIME_WAIT works without SO_REUSEADDR on Windows, and
// setting it there has unrelated (and unwanted) hijacking semantics.
func controlSocket(network, address string, c syscall.RawConn) error {
	return nil
}
