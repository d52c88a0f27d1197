// internal/poller/tcp/prober.go
package tcp

import (
	"net"
	"strconv"
	"time"
)

// Prober implements poller.Prober with a plain TCP connect.
// Reachability only: nothing is written to or read from the socket.
type Prober struct{}

func (Prober) Probe(address string, port uint16, timeout time.Duration) bool {
	return Probe(address, port, timeout)
}

// Probe reports whether address:port accepts a TCP connection within
// timeout. Refused, timed out and unresolvable all yield false.
// The connection is closed immediately.
func Probe(address string, port uint16, timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(address, strconv.Itoa(int(port))), timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
