//go:build windows

package ipc

import (
	"fmt"
	"net"
	"time"
)

// windowsAddr is the loopback endpoint used in place of a Unix socket.
// Binding loopback only keeps the daemon invisible off-host; the fixed
// port doubles as a second single-instance guard.
const windowsAddr = "127.0.0.1:52384"

func Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", windowsAddr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", windowsAddr, err)
	}
	return ln, nil
}

func dialEndpoint(timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("tcp", windowsAddr, timeout)
}

// CleanupEndpoint is a no-op on Windows; the TCP port releases with the
// process.
func CleanupEndpoint() {}
