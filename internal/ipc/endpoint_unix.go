//go:build !windows

package ipc

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/finnvos/voxd/internal/config"
)

// Listen binds the daemon's Unix socket endpoint. A stale socket file
// from a crashed daemon is removed before binding; the live socket is
// chmodded to 0600 so only the owning user can drive the daemon.
func Listen() (net.Listener, error) {
	path := config.SocketPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", path, err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	return ln, nil
}

func dialEndpoint(timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", config.SocketPath(), timeout)
}

// CleanupEndpoint removes the socket file on shutdown.
func CleanupEndpoint() {
	os.Remove(config.SocketPath())
}
