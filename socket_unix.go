//go:build unix && !linux

package listener

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// socket returns a close-on-exec IPv4 stream socket. Holding ForkLock keeps a concurrent
// exec from inheriting the descriptor before the flag is set.
func socket() (int, error) {
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, err
	}
	unix.CloseOnExec(fd)
	return fd, nil
}
