//go:build unix

package listener

import (
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Listen binds port on every IPv4 interface with SO_REUSEADDR set and a backlog of Backlog.
// Port 0 picks an ephemeral port.
func Listen(port int) (net.Listener, error) {
	if err := checkPort(port); err != nil {
		return nil, err
	}

	fd, err := socket()
	if err != nil {
		return nil, &BindError{Port: port, Err: os.NewSyscallError("socket", err)}
	}

	// A previous instance's socket lingering in TIME_WAIT must not block the bind.
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, &BindError{Port: port, Err: os.NewSyscallError("setsockopt", err)}
	}

	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
		_ = unix.Close(fd)
		return nil, &BindError{Port: port, Err: os.NewSyscallError("bind", err)}
	}

	if err := unix.Listen(fd, Backlog); err != nil {
		_ = unix.Close(fd)
		return nil, &BindError{Port: port, Err: os.NewSyscallError("listen", err)}
	}

	// FileListener dups the descriptor, so ours is closed either way.
	f := os.NewFile(uintptr(fd), "listener")
	defer func() {
		_ = f.Close()
	}()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, &BindError{Port: port, Err: err}
	}
	return ln, nil
}
