// Package netutil probes local TCP listeners.
package netutil

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	dialTimeout  = 2 * time.Second
	pollInterval = 500 * time.Millisecond
)

// WaitForPort polls host:port until a TCP connection succeeds or timeout
// elapses. It returns ctx.Err() when the caller cancels first.
func WaitForPort(ctx context.Context, host string, port int, timeout time.Duration) error {
	address := net.JoinHostPort(host, strconv.Itoa(port))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var dialer net.Dialer
	for {
		dctx, dcancel := context.WithTimeout(ctx, dialTimeout)
		conn, err := dialer.DialContext(dctx, "tcp", address)
		dcancel()
		if err == nil {
			_ = conn.Close()
			return nil
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("timeout waiting for %s after %s: %w", address, timeout, err)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
