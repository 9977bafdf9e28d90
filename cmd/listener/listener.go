package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"

	listener "github.com/mygooglyeyes/cc3000-listener"
	"github.com/mygooglyeyes/cc3000-listener/internal/secure"
)

type args struct {
	Port     int    `arg:"-p,--port" help:"port for listening for TCP connections"`
	Echo     bool   `arg:"-e,--echo" help:"echo the data received back out to the client"`
	MaxConns int    `arg:"--max-conns" help:"maximum number of concurrent connections, 0 for no limit"`
	Key      string `arg:"--key,env:LISTENER_KEY" help:"hex private key; if set, clients must connect securely"`
	Verbose  bool   `arg:"-v,--verbose" help:"log connections to stderr"`
}

func (args) Description() string {
	return "Listens for TCP connections and prints all data received to standard output.\n" +
		"Runs until interrupted."
}

// newArgs returns args holding the library defaults, which go-arg reports as the defaults.
func newArgs() args {
	return args{
		Port:     listener.DefaultConfig.Port,
		Echo:     listener.DefaultConfig.Echo,
		MaxConns: listener.DefaultConfig.MaxConns,
	}
}

func main() {
	a := newArgs()
	p := arg.MustParse(&a)
	if a.Port < 1 || a.Port > 65535 {
		p.Fail("port must be between 1 and 65535")
	}
	if a.MaxConns < 0 {
		p.Fail("max-conns must not be negative")
	}

	config := listener.Config{
		Port:     a.Port,
		Echo:     a.Echo,
		MaxConns: a.MaxConns,
		Verbose:  a.Verbose,
	}
	if a.Key != "" {
		k, err := secure.ParsePrivateKey(a.Key)
		if err != nil {
			log.Fatal(err)
		}
		config.Key = k

		log.Println("listening for secure connections")
	}

	ln, err := listener.Listen(config.Port)
	if err != nil {
		log.Fatalf("failed to listen on port %d: %v", config.Port, errors.Unwrap(err))
	}
	log.Println("listening on", ln.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := listener.NewServer(config, listener.NewSink(os.Stdout), log.Default())
	if err := server.Serve(ctx, ln); err != nil {
		log.Fatal(err)
	}
}
