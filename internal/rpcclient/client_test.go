package rpcclient

import (
	"testing"
	"time"

	"github.com/chathamware/chrpc/internal/chchannel"
	"github.com/chathamware/chrpc/internal/rpcproto"
)

func TestNewRejectsNilChannel(t *testing.T) {
	if _, err := New(nil, DefaultAttrs); err != rpcproto.StatusClientCreationError {
		t.Fatalf("expected StatusClientCreationError, got %v", err)
	}
}

func TestNewRejectsNonPositiveAttrs(t *testing.T) {
	local, err := chchannel.NewLocal(chchannel.LocalConfig{QueueDepth: 4, MaxMsgSize: 256})
	if err != nil {
		t.Fatalf("building local channel: %v", err)
	}
	if _, err := New(local, Attrs{}); err != rpcproto.StatusClientCreationError {
		t.Fatalf("expected StatusClientCreationError for zero-value Attrs, got %v", err)
	}
}

// TestCallAfterChannelDeathFailsFast confirms a Client that already
// tore down its channel refuses further calls without touching the
// channel again.
func TestCallAfterChannelDeathFailsFast(t *testing.T) {
	local, err := chchannel.NewLocal(chchannel.LocalConfig{QueueDepth: 4, MaxMsgSize: 256})
	if err != nil {
		t.Fatalf("building local channel: %v", err)
	}
	c, err := New(local, Attrs{Cadence: time.Millisecond, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	c.channel = nil

	if _, err := c.Call("anything", nil); err != rpcproto.StatusClientChannelError {
		t.Fatalf("expected StatusClientChannelError, got %v", err)
	}
}

// TestCallTimesOutWithNoResponder exercises the poll loop's timeout
// path directly: nothing ever answers the far end, so Call must give
// up after attrs.Timeout rather than block forever.
func TestCallTimesOutWithNoResponder(t *testing.T) {
	// A Paired channel's two ends read and write disjoint queues, so
	// leaving the far end untouched genuinely models "nobody answers" -
	// unlike a bare Local, whose own Send would otherwise echo straight
	// back into its own Receive.
	clientEnd, _, err := chchannel.NewPairedEnds(chchannel.LocalConfig{QueueDepth: 4, MaxMsgSize: 256})
	if err != nil {
		t.Fatalf("building paired channel: %v", err)
	}
	c, err := New(clientEnd, Attrs{Cadence: 5 * time.Millisecond, Timeout: 40 * time.Millisecond})
	if err != nil {
		t.Fatalf("building client: %v", err)
	}

	start := time.Now()
	_, err = c.Call("noop", nil)
	elapsed := time.Since(start)

	if err != rpcproto.StatusDisconnect {
		t.Fatalf("expected StatusDisconnect on timeout, got %v", err)
	}
	if elapsed < 40*time.Millisecond {
		t.Fatalf("expected Call to wait out the timeout, returned after %v", elapsed)
	}
	if c.channel != nil {
		t.Fatalf("expected channel to be cleared after a timeout")
	}
}
