// Command chrpc-serve runs a chrpc server exposing a small set of
// demonstration endpoints over a TCP socket channel.
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/chathamware/chrpc/internal/chchannel"
	"github.com/chathamware/chrpc/internal/endpoint"
	"github.com/chathamware/chrpc/internal/mlog"
	"github.com/chathamware/chrpc/internal/rpcproto"
	"github.com/chathamware/chrpc/internal/rpcserver"
	"github.com/chathamware/chrpc/internal/wire"
)

var (
	listenAddr     string
	metricsAddr    string
	maxConnections int
	numWorkers     int
	maxMsgSize     int
	idleTimeout    time.Duration
	logLevel       string
)

func main() {
	root := &cobra.Command{
		Use:   "chrpc-serve",
		Short: "Run a chrpc RPC server",
		RunE:  runServe,
	}

	root.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:4242", "address to listen on")
	root.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (empty disables)")
	root.Flags().IntVar(&maxConnections, "max-connections", 256, "maximum concurrently admitted channels")
	root.Flags().IntVar(&numWorkers, "num-workers", 8, "number of worker goroutines")
	root.Flags().IntVar(&maxMsgSize, "max-msg-size", 1<<20, "maximum message size in bytes")
	root.Flags().DurationVar(&idleTimeout, "idle-timeout", 5*time.Minute, "disconnect a channel after this long without activity")
	root.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn, error, or fatal")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	level, err := mlog.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	mlog.AddLogger("stderr", os.Stderr, level, true)

	eps, err := endpoint.NewSet(demoEndpoints())
	if err != nil {
		return fmt.Errorf("building endpoint set: %w", err)
	}

	srv, err := rpcserver.New(nil, eps, rpcserver.Attrs{
		MaxConnections:  maxConnections,
		NumWorkers:      numWorkers,
		MaxMsgSize:      maxMsgSize,
		IdleTimeout:     idleTimeout,
		WorkerUsleepAmt: 2 * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}

	listener, err := chchannel.ListenSocket("tcp", listenAddr, maxConnections)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", listenAddr, err)
	}
	mlog.Info("chrpc-serve: listening on %s", listenAddr)

	if metricsAddr != "" {
		go serveMetrics(metricsAddr)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		acceptLoop(listener, srv)
	}()

	<-sigCh
	mlog.Info("chrpc-serve: shutting down")
	listener.Close()
	srv.Shutdown()
	<-acceptDone

	return nil
}

// acceptLoop admits one Socket channel per accepted connection until the
// listener is closed, at which point Accept starts failing and the loop
// returns.
func acceptLoop(listener net.Listener, srv *rpcserver.Server) {
	cfg := chchannel.SocketConfig{QueueDepth: 64, MaxMsgSize: maxMsgSize}

	for {
		sock, err := chchannel.Accept(listener, cfg)
		if err != nil {
			mlog.Debug("chrpc-serve: accept loop stopping: %v", err)
			return
		}
		if err := srv.GiveChannel(sock); err != nil {
			mlog.Warn("chrpc-serve: rejecting new connection: %v", err)
			sock.Close()
		}
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mlog.Info("chrpc-serve: metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		mlog.Error("chrpc-serve: metrics server: %v", err)
	}
}

func demoEndpoints() []*endpoint.Endpoint {
	echo, err := endpoint.New("echo", []*wire.Type{wire.StringType}, wire.StringType,
		func(channelID uint64, serverState any, args []wire.Value) (*wire.Value, rpcproto.Directive) {
			ret := wire.NewString(args[0].Str())
			return &ret, rpcproto.KeepAlive
		})
	if err != nil {
		mlog.Fatal("building echo endpoint: %v", err)
	}

	add, err := endpoint.New("add", []*wire.Type{wire.I64Type, wire.I64Type}, wire.I64Type,
		func(channelID uint64, serverState any, args []wire.Value) (*wire.Value, rpcproto.Directive) {
			ret := wire.NewI64(args[0].I64() + args[1].I64())
			return &ret, rpcproto.KeepAlive
		})
	if err != nil {
		mlog.Fatal("building add endpoint: %v", err)
	}

	logout, err := endpoint.New("logout", nil, nil,
		func(channelID uint64, serverState any, args []wire.Value) (*wire.Value, rpcproto.Directive) {
			return nil, rpcproto.Disconnect
		})
	if err != nil {
		mlog.Fatal("building logout endpoint: %v", err)
	}

	return []*endpoint.Endpoint{echo, add, logout}
}
