package rpcserver_test

import (
	"strings"
	"testing"
	"time"

	"github.com/chathamware/chrpc/internal/chchannel"
	"github.com/chathamware/chrpc/internal/endpoint"
	"github.com/chathamware/chrpc/internal/rpcclient"
	"github.com/chathamware/chrpc/internal/rpcproto"
	"github.com/chathamware/chrpc/internal/rpcserver"
	"github.com/chathamware/chrpc/internal/wire"
)

func echoEndpoint(t *testing.T) *endpoint.Endpoint {
	t.Helper()
	ep, err := endpoint.New("echo", []*wire.Type{wire.StringType}, wire.StringType,
		func(channelID uint64, serverState any, args []wire.Value) (*wire.Value, rpcproto.Directive) {
			ret := wire.NewString(args[0].Str())
			return &ret, rpcproto.KeepAlive
		})
	if err != nil {
		t.Fatalf("building echo endpoint: %v", err)
	}
	return ep
}

func logoutEndpoint(t *testing.T) *endpoint.Endpoint {
	t.Helper()
	ep, err := endpoint.New("logout", nil, nil,
		func(channelID uint64, serverState any, args []wire.Value) (*wire.Value, rpcproto.Directive) {
			return nil, rpcproto.Disconnect
		})
	if err != nil {
		t.Fatalf("building logout endpoint: %v", err)
	}
	return ep
}

// bigEndpoint returns a STRING far larger than any of this file's small
// test channels can carry, to exercise the oversized-response path.
func bigEndpoint(t *testing.T) *endpoint.Endpoint {
	t.Helper()
	ep, err := endpoint.New("big", nil, wire.StringType,
		func(channelID uint64, serverState any, args []wire.Value) (*wire.Value, rpcproto.Directive) {
			ret := wire.NewString(strings.Repeat("x", 500))
			return &ret, rpcproto.KeepAlive
		})
	if err != nil {
		t.Fatalf("building big endpoint: %v", err)
	}
	return ep
}

func testChannelConfig() chchannel.LocalConfig {
	return chchannel.LocalConfig{QueueDepth: 16, MaxMsgSize: 4096}
}

func testServerAttrs() rpcserver.Attrs {
	return rpcserver.Attrs{
		MaxConnections:  8,
		NumWorkers:      2,
		MaxMsgSize:      4096,
		WorkerUsleepAmt: time.Millisecond,
	}
}

// TestEcho is spec scenario 1: a single echo endpoint over an in-process
// paired channel returns exactly what it was given.
func TestEcho(t *testing.T) {
	eps, err := endpoint.NewSet([]*endpoint.Endpoint{echoEndpoint(t)})
	if err != nil {
		t.Fatalf("building endpoint set: %v", err)
	}
	srv, err := rpcserver.New(nil, eps, testServerAttrs())
	if err != nil {
		t.Fatalf("building server: %v", err)
	}
	defer srv.Shutdown()

	client, err := rpcclient.DialLocal(srv, testChannelConfig(), rpcclient.Attrs{
		Cadence: time.Millisecond,
		Timeout: time.Second,
	})
	if err != nil {
		t.Fatalf("dialing local client: %v", err)
	}

	ret, err := client.Call("echo", []wire.Value{wire.NewString("hi")})
	if err != nil {
		t.Fatalf("echo call failed: %v", err)
	}
	if ret == nil || ret.Str() != "hi" {
		t.Fatalf("expected echo to return %q, got %v", "hi", ret)
	}
}

// TestUnknownEndpoint is spec scenario 2: calling an undeclared name
// reports UNKNOWN_ENDPOINT without tearing down the channel.
func TestUnknownEndpoint(t *testing.T) {
	eps, err := endpoint.NewSet([]*endpoint.Endpoint{echoEndpoint(t)})
	if err != nil {
		t.Fatalf("building endpoint set: %v", err)
	}
	srv, err := rpcserver.New(nil, eps, testServerAttrs())
	if err != nil {
		t.Fatalf("building server: %v", err)
	}
	defer srv.Shutdown()

	client, err := rpcclient.DialLocal(srv, testChannelConfig(), rpcclient.Attrs{
		Cadence: time.Millisecond,
		Timeout: time.Second,
	})
	if err != nil {
		t.Fatalf("dialing local client: %v", err)
	}

	_, err = client.Call("missing", nil)
	if err != rpcproto.StatusUnknownEndpoint {
		t.Fatalf("expected StatusUnknownEndpoint, got %v", err)
	}

	ret, err := client.Call("echo", []wire.Value{wire.NewString("still alive")})
	if err != nil {
		t.Fatalf("echo call after unknown-endpoint failed: %v", err)
	}
	if ret == nil || ret.Str() != "still alive" {
		t.Fatalf("expected echo to return %q, got %v", "still alive", ret)
	}
}

// TestArgumentMismatch is spec scenario 3: sending the wrong number of
// arguments reports ARGUMENT_MISMATCH.
func TestArgumentMismatch(t *testing.T) {
	eps, err := endpoint.NewSet([]*endpoint.Endpoint{echoEndpoint(t)})
	if err != nil {
		t.Fatalf("building endpoint set: %v", err)
	}
	srv, err := rpcserver.New(nil, eps, testServerAttrs())
	if err != nil {
		t.Fatalf("building server: %v", err)
	}
	defer srv.Shutdown()

	client, err := rpcclient.DialLocal(srv, testChannelConfig(), rpcclient.Attrs{
		Cadence: time.Millisecond,
		Timeout: time.Second,
	})
	if err != nil {
		t.Fatalf("dialing local client: %v", err)
	}

	_, err = client.Call("echo", []wire.Value{wire.NewString("a"), wire.NewString("b")})
	if err != rpcproto.StatusArgumentMismatch {
		t.Fatalf("expected StatusArgumentMismatch, got %v", err)
	}
}

// TestIdleTimeout is spec scenario 4: a channel that produces nothing
// for longer than IdleTimeout is disconnected by the worker pool, and a
// subsequent call against it fails with a disconnect or a channel error.
func TestIdleTimeout(t *testing.T) {
	eps, err := endpoint.NewSet([]*endpoint.Endpoint{echoEndpoint(t)})
	if err != nil {
		t.Fatalf("building endpoint set: %v", err)
	}
	attrs := testServerAttrs()
	attrs.IdleTimeout = 200 * time.Millisecond
	srv, err := rpcserver.New(nil, eps, attrs)
	if err != nil {
		t.Fatalf("building server: %v", err)
	}
	defer srv.Shutdown()

	client, err := rpcclient.DialLocal(srv, testChannelConfig(), rpcclient.Attrs{
		Cadence: time.Millisecond,
		Timeout: time.Second,
	})
	if err != nil {
		t.Fatalf("dialing local client: %v", err)
	}

	if _, err := client.Call("echo", []wire.Value{wire.NewString("first")}); err != nil {
		t.Fatalf("first echo call failed: %v", err)
	}

	time.Sleep(600 * time.Millisecond)

	_, err = client.Call("echo", []wire.Value{wire.NewString("second")})
	if err != rpcproto.StatusDisconnect && err != rpcproto.StatusClientChannelError {
		t.Fatalf("expected disconnect or channel error after idle timeout, got %v", err)
	}
}

// TestDisconnectDirective is spec scenario 5: an endpoint that returns
// the Disconnect directive tears down the channel after its response is
// delivered, and any later call against the same client fails.
func TestDisconnectDirective(t *testing.T) {
	eps, err := endpoint.NewSet([]*endpoint.Endpoint{echoEndpoint(t), logoutEndpoint(t)})
	if err != nil {
		t.Fatalf("building endpoint set: %v", err)
	}
	srv, err := rpcserver.New(nil, eps, testServerAttrs())
	if err != nil {
		t.Fatalf("building server: %v", err)
	}
	defer srv.Shutdown()

	client, err := rpcclient.DialLocal(srv, testChannelConfig(), rpcclient.Attrs{
		Cadence: time.Millisecond,
		Timeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("dialing local client: %v", err)
	}

	ret, err := client.Call("logout", nil)
	if err != nil {
		t.Fatalf("logout call failed: %v", err)
	}
	if ret != nil {
		t.Fatalf("expected logout to return nothing, got %v", ret)
	}

	// The server has torn down its side of the channel; a further call
	// either gets no reply (StatusDisconnect, once the poll times out) or
	// a hard channel error - never success.
	_, err = client.Call("echo", []wire.Value{wire.NewString("anyone there")})
	if err != rpcproto.StatusClientChannelError && err != rpcproto.StatusDisconnect {
		t.Fatalf("expected disconnect or channel error after server-initiated disconnect, got %v", err)
	}
}

// TestBufferTooSmall is spec scenario 6: an endpoint whose return value
// doesn't fit in the channel's max message size gets a BUFFER_TOO_SMALL
// response instead of being disconnected, and the channel stays usable.
func TestBufferTooSmall(t *testing.T) {
	eps, err := endpoint.NewSet([]*endpoint.Endpoint{echoEndpoint(t), bigEndpoint(t)})
	if err != nil {
		t.Fatalf("building endpoint set: %v", err)
	}
	srv, err := rpcserver.New(nil, eps, testServerAttrs())
	if err != nil {
		t.Fatalf("building server: %v", err)
	}
	defer srv.Shutdown()

	// A channel too small to carry the "big" endpoint's 500-byte return
	// value, but big enough for ordinary requests/responses.
	client, err := rpcclient.DialLocal(srv, chchannel.LocalConfig{QueueDepth: 16, MaxMsgSize: 96}, rpcclient.Attrs{
		Cadence: time.Millisecond,
		Timeout: time.Second,
	})
	if err != nil {
		t.Fatalf("dialing local client: %v", err)
	}

	_, err = client.Call("big", nil)
	if err != rpcproto.StatusBufferTooSmall {
		t.Fatalf("expected StatusBufferTooSmall, got %v", err)
	}

	ret, err := client.Call("echo", []wire.Value{wire.NewString("ok")})
	if err != nil {
		t.Fatalf("echo call after buffer-too-small failed: %v", err)
	}
	if ret == nil || ret.Str() != "ok" {
		t.Fatalf("expected echo to return %q, got %v", "ok", ret)
	}
}

// TestServerFull is the admission-limit counterpart to the scenarios
// above: once MaxConnections channels are admitted, a further
// GiveChannel fails with ServerFull rather than blocking.
func TestServerFull(t *testing.T) {
	eps, err := endpoint.NewSet([]*endpoint.Endpoint{echoEndpoint(t)})
	if err != nil {
		t.Fatalf("building endpoint set: %v", err)
	}
	attrs := testServerAttrs()
	attrs.MaxConnections = 1
	attrs.NumWorkers = 1
	srv, err := rpcserver.New(nil, eps, attrs)
	if err != nil {
		t.Fatalf("building server: %v", err)
	}
	defer srv.Shutdown()

	_, err = rpcclient.DialLocal(srv, testChannelConfig(), rpcclient.DefaultAttrs)
	if err != nil {
		t.Fatalf("first DialLocal should have succeeded: %v", err)
	}

	_, err = rpcclient.DialLocal(srv, testChannelConfig(), rpcclient.DefaultAttrs)
	if err != rpcproto.StatusServerFull {
		t.Fatalf("expected StatusServerFull, got %v", err)
	}
}
