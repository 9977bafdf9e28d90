package secure

import (
	"crypto/mlkem"
	"encoding/binary"
	"io"
	"time"

	"github.com/codahale/lockstitch-go"
)

// maxFrameLen is the largest payload a 3-byte length header can describe.
const maxFrameLen = 1<<24 - 1

// Stream is an established encrypted session. A frame is an encrypted 3-byte big-endian
// length followed by the sealed payload. A zero length marks a ratchet frame, whose payload
// is a sealed ML-KEM ciphertext.
type Stream struct {
	rw          io.ReadWriter
	in, out     lockstitch.Protocol
	pending     []byte
	local       *mlkem.DecapsulationKey768
	remote      *mlkem.EncapsulationKey768
	sent        int
	ratchetedAt time.Time
	config      Config
}

func newStream(rw io.ReadWriter, in, out lockstitch.Protocol, local *mlkem.DecapsulationKey768, remote *mlkem.EncapsulationKey768, config *Config) *Stream {
	return &Stream{
		rw:          rw,
		in:          in,
		out:         out,
		local:       local,
		remote:      remote,
		ratchetedAt: time.Now(),
		config:      *config,
	}
}

// Read returns decrypted bytes from the current frame, reading the next frame when the
// current one is used up.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for len(s.pending) == 0 {
		if err := s.readFrame(); err != nil {
			return 0, err
		}
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *Stream) readFrame() error {
	var header [4]byte
	if _, err := io.ReadFull(s.rw, header[1:]); err != nil {
		return err
	}
	s.in.Decrypt("header", header[1:1], header[1:])
	size := int(binary.BigEndian.Uint32(header[:]))

	if size == 0 {
		ct := make([]byte, mlkem.CiphertextSize768+lockstitch.TagLen)
		if _, err := io.ReadFull(s.rw, ct); err != nil {
			return unexpected(err)
		}
		ct, err := s.in.Open("message", ct[:0], ct)
		if err != nil {
			return ErrInvalidFrame
		}
		ss, err := s.local.Decapsulate(ct)
		if err != nil {
			return ErrInvalidFrame
		}
		s.in.Mix("ratchet-ss", ss)
		return nil
	}

	msg := make([]byte, size+lockstitch.TagLen)
	if _, err := io.ReadFull(s.rw, msg); err != nil {
		return unexpected(err)
	}
	msg, err := s.in.Open("message", msg[:0], msg)
	if err != nil {
		return ErrInvalidFrame
	}
	s.pending = msg
	return nil
}

// Write encrypts p as one or more frames.
func (s *Stream) Write(p []byte) (int, error) {
	var n int
	for len(p) > 0 {
		frame := p[:min(len(p), maxFrameLen)]
		if err := s.writeFrame(frame); err != nil {
			return n, err
		}
		n += len(frame)
		p = p[len(frame):]
	}
	return n, nil
}

func (s *Stream) writeFrame(p []byte) error {
	s.sent += len(p)
	if now := time.Now(); s.sent > s.config.RatchetAfterBytes || now.Sub(s.ratchetedAt) > s.config.RatchetAfterTime {
		if err := s.ratchet(now); err != nil {
			return err
		}
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(p)))
	frame := make([]byte, 0, 3+len(p)+lockstitch.TagLen)
	frame = s.out.Encrypt("header", frame, header[1:])
	frame = s.out.Seal("message", frame, p)
	_, err := s.rw.Write(frame)
	return err
}

func (s *Stream) ratchet(now time.Time) error {
	s.sent = 0
	s.ratchetedAt = now

	ss, ct := s.remote.Encapsulate()

	var zero [3]byte
	frame := make([]byte, 0, len(zero)+len(ct)+lockstitch.TagLen)
	frame = s.out.Encrypt("header", frame, zero[:])
	frame = s.out.Seal("message", frame, ct)
	if _, err := s.rw.Write(frame); err != nil {
		return err
	}

	s.out.Mix("ratchet-ss", ss)
	return nil
}

// unexpected turns a clean EOF in the middle of a frame into io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
