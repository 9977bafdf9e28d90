package listener

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/mygooglyeyes/cc3000-listener/internal/secure"
)

// Server accepts connections and relays their bytes to a Sink.
type Server struct {
	config Config
	sink   io.Writer
	log    *log.Logger
	active atomic.Int64
	group  errgroup.Group
}

// NewServer returns a Server which writes received bytes to sink. If logger is nil,
// diagnostics are discarded.
func NewServer(config Config, sink io.Writer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	s := &Server{
		config: config,
		sink:   sink,
		log:    logger,
	}
	if config.MaxConns > 0 {
		s.group.SetLimit(config.MaxConns)
	}
	return s
}

// Active returns the number of connections currently being handled. Rejected connections
// are never counted.
func (s *Server) Active() int64 {
	return s.active.Load()
}

// Serve accepts connections from ln until ctx is cancelled or ln fails, handling each one on
// its own goroutine. It closes ln before returning. Cancellation returns nil; any other
// failure is an *AcceptError. Handlers still running are left alone.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()
	defer func() {
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, net.ErrClosed) {
				return nil
			}
			return &AcceptError{Err: err}
		}

		if !s.group.TryGo(func() error {
			s.handle(conn)
			return nil
		}) {
			if s.config.Verbose {
				s.log.Println("rejected connection from", conn.RemoteAddr())
			}
			_ = conn.Close()
		}
	}
}

func (s *Server) handle(conn net.Conn) {
	s.active.Add(1)
	defer s.active.Add(-1)

	if s.config.Verbose {
		s.log.Println("accepted connection from", conn.RemoteAddr())
	}
	defer func() {
		_ = conn.Close()
		if s.config.Verbose {
			s.log.Println("closed connection from", conn.RemoteAddr())
		}
	}()

	var rw io.ReadWriter = conn
	if s.config.Key != nil {
		sc, err := secure.Respond(conn, s.config.Key, nil)
		if err != nil {
			if s.config.Verbose {
				s.log.Println("error during handshake", err)
			}
			return
		}
		rw = sc
	}

	if err := relay(rw, s.sink, s.config.Echo); err != nil && s.config.Verbose {
		s.log.Println("connection error", err)
	}
}

// relay copies chunks from rw to sink, and back to rw if echo is set, until rw reports EOF
// or any read or write fails. EOF returns nil.
func relay(rw io.ReadWriter, sink io.Writer, echo bool) error {
	buf := make([]byte, ChunkSize)
	for {
		n, err := rw.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if _, err := sink.Write(chunk); err != nil {
				return &ConnError{Op: "write sink", Err: err}
			}
			if echo {
				if _, err := rw.Write(chunk); err != nil {
					return &ConnError{Op: "echo", Err: err}
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &ConnError{Op: "read", Err: err}
		}
	}
}
