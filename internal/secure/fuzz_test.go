package secure

import (
	"bytes"
	"crypto/mlkem"
	"errors"
	"io"
	"testing"

	"github.com/codahale/lockstitch-go"
)

// recordedRequest returns the bytes a client sends to open a handshake with server.
func recordedRequest(tb testing.TB, server *mlkem.DecapsulationKey768) []byte {
	tb.Helper()

	client, err := mlkem.GenerateKey768()
	if err != nil {
		tb.Fatal(err)
	}

	req := new(bytes.Buffer)
	rw := struct {
		io.Reader
		io.Writer
	}{bytes.NewReader(nil), req}
	if _, err := Initiate(rw, client, server.EncapsulationKey(), nil); err == nil {
		tb.Fatal("expected handshake without a response to fail")
	}
	if req.Len() != requestLen {
		tb.Fatalf("expected a %d byte request but was %d", requestLen, req.Len())
	}
	return req.Bytes()
}

func FuzzRespondCutShort(f *testing.F) {
	server, err := mlkem.GenerateKey768()
	if err != nil {
		f.Fatal(err)
	}
	req := recordedRequest(f, server)

	f.Add(uint16(0))
	f.Add(uint16(mlkem.CiphertextSize768))
	f.Add(uint16(requestLen - 1))
	f.Fuzz(func(t *testing.T, cut uint16) {
		n := int(cut) % requestLen
		resp := new(bytes.Buffer)
		rw := struct {
			io.Reader
			io.Writer
		}{bytes.NewReader(req[:n]), resp}

		s, err := Respond(rw, server, nil)
		if err == nil {
			t.Fatalf("should not have responded to %d of %d bytes but did: %v", n, requestLen, s)
		}
		if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("expected a short read error but was %v", err)
		}
		if resp.Len() != 0 {
			t.Errorf("expected no response to a partial request but wrote %d bytes", resp.Len())
		}
	})
}

func FuzzCorruptedFrameHeader(f *testing.F) {
	key, err := mlkem.GenerateKey768()
	if err != nil {
		f.Fatal(err)
	}

	f.Add([]byte{0, 0, 1})
	f.Add([]byte{0xff, 0xff, 0xff})
	f.Add([]byte{0, 0, 5})
	f.Fuzz(func(t *testing.T, mask []byte) {
		if len(mask) != 3 || bytes.Equal(mask, []byte{0, 0, 0}) {
			return
		}

		// Matching protocol states on both ends stand in for a completed handshake.
		wire := new(bytes.Buffer)
		sender := newStream(wire, lockstitch.NewProtocol("b"), lockstitch.NewProtocol("a"), key, key.EncapsulationKey(), &DefaultConfig)
		receiver := newStream(wire, lockstitch.NewProtocol("a"), lockstitch.NewProtocol("b"), key, key.EncapsulationKey(), &DefaultConfig)

		if _, err := sender.Write([]byte("hello")); err != nil {
			t.Fatal(err)
		}
		raw := wire.Bytes()
		for i, b := range mask {
			raw[i] ^= b
		}

		buf := make([]byte, 16)
		if n, err := receiver.Read(buf); err == nil {
			t.Errorf("expected corrupted header to be rejected but read %q", buf[:n])
		}
	})
}
