package listener

import (
	"io"
	"sync"
)

// Sink is an output stream shared by every connection. Each Write reaches the underlying
// writer whole and unbuffered before the next one starts, so chunks from different
// connections interleave but never split each other. A failed Write does not affect later
// ones.
type Sink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSink returns a Sink writing to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.w.Write(p)
}
