// Package secure implements an optional encrypted transport for the listener. Both sides hold
// a static ML-KEM-768 key pair; the client must know the server's public key in advance. After
// the handshake every message travels as a length-prefixed, sealed frame, and each side
// periodically ratchets its sending key with a fresh encapsulated secret.
package secure

import (
	"crypto/mlkem"
	"errors"
	"io"
	"time"

	"github.com/codahale/lockstitch-go"
)

const protocolName = "cc3000-listener.secure.v1"

type Config struct {
	RatchetAfterBytes int
	RatchetAfterTime  time.Duration
}

var DefaultConfig = Config{
	RatchetAfterBytes: 1024 * 1024 * 1024, // 1GiB
	RatchetAfterTime:  15 * time.Minute,
}

var (
	ErrInvalidHandshake = errors.New("secure: invalid handshake")
	ErrInvalidFrame     = errors.New("secure: invalid frame")
)

const (
	// server ciphertext + client static key + client ephemeral key + tag
	requestLen = mlkem.CiphertextSize768 + 2*mlkem.EncapsulationKeySize768 + lockstitch.TagLen
	// client static ciphertext + client ephemeral ciphertext + tag
	responseLen = 2*mlkem.CiphertextSize768 + lockstitch.TagLen
)

// Initiate runs the client side of the handshake over rw, using local as the client's static
// key and remote as the server's public key.
func Initiate(rw io.ReadWriter, local *mlkem.DecapsulationKey768, remote *mlkem.EncapsulationKey768, config *Config) (*Stream, error) {
	if config == nil {
		config = &DefaultConfig
	}

	ephemeral, err := mlkem.GenerateKey768()
	if err != nil {
		return nil, err
	}

	p := lockstitch.NewProtocol(protocolName)
	p.Mix("server-key", remote.Bytes())

	// Encapsulate a secret to the server's static key; only the server can recover it.
	ss, ct := remote.Encapsulate()
	p.Mix("server-ct", ct)
	p.Mix("server-ss", ss)

	req := make([]byte, 0, requestLen)
	req = append(req, ct...)
	req = p.Encrypt("client-key", req, local.EncapsulationKey().Bytes())
	req = p.Seal("ephemeral-key", req, ephemeral.EncapsulationKey().Bytes())
	if _, err := rw.Write(req); err != nil {
		return nil, err
	}

	resp := make([]byte, responseLen)
	if _, err := io.ReadFull(rw, resp); err != nil {
		return nil, err
	}
	staticCT, ephemeralCT := resp[:mlkem.CiphertextSize768], resp[mlkem.CiphertextSize768:]

	staticCT = p.Decrypt("client-ct", staticCT[:0], staticCT)
	staticSS, err := local.Decapsulate(staticCT)
	if err != nil {
		return nil, ErrInvalidHandshake
	}
	p.Mix("client-ss", staticSS)

	ephemeralCT, err = p.Open("ephemeral-ct", ephemeralCT[:0], ephemeralCT)
	if err != nil {
		return nil, ErrInvalidHandshake
	}
	ephemeralSS, err := ephemeral.Decapsulate(ephemeralCT)
	if err != nil {
		return nil, ErrInvalidHandshake
	}
	p.Mix("ephemeral-ss", ephemeralSS)

	in, out := p.Clone(), p
	out.Mix("sender", []byte("client"))
	in.Mix("sender", []byte("server"))

	return newStream(rw, in, out, local, remote, config), nil
}

// Respond runs the server side of the handshake over rw. Any client key is accepted.
func Respond(rw io.ReadWriter, local *mlkem.DecapsulationKey768, config *Config) (*Stream, error) {
	if config == nil {
		config = &DefaultConfig
	}

	p := lockstitch.NewProtocol(protocolName)
	p.Mix("server-key", local.EncapsulationKey().Bytes())

	req := make([]byte, requestLen)
	if _, err := io.ReadFull(rw, req); err != nil {
		return nil, err
	}
	ct := req[:mlkem.CiphertextSize768]
	clientKey := req[mlkem.CiphertextSize768 : mlkem.CiphertextSize768+mlkem.EncapsulationKeySize768]
	ephemeralKey := req[mlkem.CiphertextSize768+mlkem.EncapsulationKeySize768:]

	p.Mix("server-ct", ct)
	ss, err := local.Decapsulate(ct)
	if err != nil {
		return nil, ErrInvalidHandshake
	}
	p.Mix("server-ss", ss)

	remote, err := mlkem.NewEncapsulationKey768(p.Decrypt("client-key", clientKey[:0], clientKey))
	if err != nil {
		return nil, ErrInvalidHandshake
	}

	ephemeralKey, err = p.Open("ephemeral-key", ephemeralKey[:0], ephemeralKey)
	if err != nil {
		return nil, ErrInvalidHandshake
	}
	ephemeral, err := mlkem.NewEncapsulationKey768(ephemeralKey)
	if err != nil {
		return nil, ErrInvalidHandshake
	}

	resp := make([]byte, 0, responseLen)

	staticSS, staticCT := remote.Encapsulate()
	resp = p.Encrypt("client-ct", resp, staticCT)
	p.Mix("client-ss", staticSS)

	ephemeralSS, ephemeralCT := ephemeral.Encapsulate()
	resp = p.Seal("ephemeral-ct", resp, ephemeralCT)
	p.Mix("ephemeral-ss", ephemeralSS)

	if _, err := rw.Write(resp); err != nil {
		return nil, err
	}

	in, out := p.Clone(), p
	in.Mix("sender", []byte("client"))
	out.Mix("sender", []byte("server"))

	return newStream(rw, in, out, local, remote, config), nil
}
