package main

import (
	"io"
	"log"
	"net"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/mygooglyeyes/cc3000-listener/internal/secure"
)

type args struct {
	Addr      string `arg:"-a,--addr" default:"127.0.0.1:9000" help:"the address to connect to"`
	Size      int64  `arg:"-s,--size" default:"1048576" help:"the number of bytes to write"`
	Byte      uint8  `arg:"--byte" default:"34" help:"the byte value to repeat"`
	ClientKey string `arg:"--client-key,env:STREAM_CLIENT_KEY" help:"hex private key of the client, if any"`
	ServerKey string `arg:"--server-key" help:"hex public key of the listener, if any"`
}

func (args) Description() string {
	return "Writes a stream of bytes to a listener and reports the throughput."
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if (a.ClientKey == "") != (a.ServerKey == "") {
		p.Fail("must specify either both --client-key and --server-key or neither")
	}
	if a.Size < 0 {
		p.Fail("size must not be negative")
	}

	log.Println("connecting to", a.Addr)
	conn, err := net.Dial("tcp", a.Addr)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = conn.Close()
	}()

	var w io.Writer = conn
	if a.ClientKey != "" {
		local, err := secure.ParsePrivateKey(a.ClientKey)
		if err != nil {
			log.Fatal(err)
		}
		remote, err := secure.ParsePublicKey(a.ServerKey)
		if err != nil {
			log.Fatal(err)
		}

		log.Println("securely connecting to", a.Addr)
		w, err = secure.Initiate(conn, local, remote, nil)
		if err != nil {
			log.Fatal(err)
		}
	}

	start := time.Now()
	n, err := io.CopyBuffer(w, io.LimitReader(constReader{b: a.Byte}, a.Size), make([]byte, 64*1024))
	if err != nil {
		log.Println("error writing data", err)
	}
	elapsed := time.Since(start)

	log.Printf("wrote %v bytes in %v (%f MiB/sec)", n, elapsed, float64(n)/1024/1024/elapsed.Seconds())
}

type constReader struct {
	b byte
}

func (c constReader) Read(p []byte) (n int, err error) {
	for i := range p {
		p[i] = c.b
	}
	return len(p), err
}
