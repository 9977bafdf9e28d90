package main

import (
	"io"
	"log"
	"net"
	"os"

	"github.com/alexflint/go-arg"

	"github.com/mygooglyeyes/cc3000-listener/internal/secure"
)

type args struct {
	Addr      string `arg:"-a,--addr" default:"127.0.0.1:9000" help:"the address to connect to"`
	ClientKey string `arg:"--client-key,env:CONNECT_CLIENT_KEY" help:"hex private key of the client, if any"`
	ServerKey string `arg:"--server-key" help:"hex public key of the listener, if any"`
}

func (args) Description() string {
	return "Sends standard input to a listener and prints whatever comes back."
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if (a.ClientKey == "") != (a.ServerKey == "") {
		p.Fail("must specify either both --client-key and --server-key or neither")
	}

	log.Println("connecting to", a.Addr)
	conn, err := net.Dial("tcp", a.Addr)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = conn.Close()
	}()

	rw, err := dial(conn, a.ClientKey, a.ServerKey)
	if err != nil {
		log.Fatal(err)
	}

	done := make(chan struct{}, 2)
	go func() {
		if _, err := io.Copy(rw, os.Stdin); err != nil {
			log.Println("error reading from stdin", err)
		}
		done <- struct{}{}
	}()
	go func() {
		if _, err := io.Copy(os.Stdout, rw); err != nil {
			log.Println("error writing to stdout", err)
		}
		done <- struct{}{}
	}()
	<-done
}

// dial wraps conn in the encrypted transport when keys are given.
func dial(conn net.Conn, clientKey, serverKey string) (io.ReadWriter, error) {
	if clientKey == "" {
		return conn, nil
	}

	local, err := secure.ParsePrivateKey(clientKey)
	if err != nil {
		return nil, err
	}
	remote, err := secure.ParsePublicKey(serverKey)
	if err != nil {
		return nil, err
	}

	log.Println("securely connecting to", conn.RemoteAddr())
	return secure.Initiate(conn, local, remote, nil)
}
