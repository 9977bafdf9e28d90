package listener

import "golang.org/x/sys/unix"

// socket returns a close-on-exec IPv4 stream socket.
func socket() (int, error) {
	return unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
}
