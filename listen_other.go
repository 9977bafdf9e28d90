//go:build !unix

package listener

import (
	"fmt"
	"net"
)

// Listen binds port on every IPv4 interface. The backlog is left to the platform.
func Listen(port int) (net.Listener, error) {
	if err := checkPort(port); err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, &BindError{Port: port, Err: err}
	}
	return ln, nil
}
