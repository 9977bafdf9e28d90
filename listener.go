// Package listener implements a diagnostic TCP endpoint which prints everything its clients
// send and, optionally, echoes it back to them.
package listener

import (
	"crypto/mlkem"
	"errors"
	"fmt"
)

const (
	// DefaultPort is the port the listener binds when none is given.
	DefaultPort = 9000

	// Backlog is the depth of the pending-connection queue of the listening socket.
	Backlog = 5

	// ChunkSize is the largest number of bytes read from a connection at once.
	ChunkSize = 1024
)

// Config is the immutable configuration of a Server. It is passed by value and never
// modified after the server is created.
type Config struct {
	// Port is the TCP port to listen on.
	Port int
	// Echo, if true, writes every received chunk back to its sender.
	Echo bool
	// MaxConns caps the number of concurrently handled connections. Connections accepted
	// past the cap are closed immediately. Zero means no cap.
	MaxConns int
	// Key, if non-nil, requires clients to use the encrypted transport.
	Key *mlkem.DecapsulationKey768
	// Verbose logs connection lifecycle events.
	Verbose bool
}

// DefaultConfig is the configuration of a listener started without options: port
// DefaultPort, no echo, no connection cap, plaintext.
var DefaultConfig = Config{
	Port: DefaultPort,
}

// BindError is returned when the listening socket cannot be established.
type BindError struct {
	Port int
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("listener: bind port %d: %v", e.Port, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// AcceptError is returned by Serve when the listening socket fails.
type AcceptError struct {
	Err error
}

func (e *AcceptError) Error() string {
	return fmt.Sprintf("listener: accept: %v", e.Err)
}

func (e *AcceptError) Unwrap() error { return e.Err }

// ConnError is a read or write failure on a single connection.
type ConnError struct {
	Op  string
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("listener: %s: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

func checkPort(port int) error {
	if port < 0 || port > 65535 {
		return &BindError{Port: port, Err: errors.New("port out of range")}
	}
	return nil
}
