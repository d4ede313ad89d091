// Package rpcclient implements the synchronous RPC client: one call at
// a time over one channel, built from the same fixed request/response
// protocol the server speaks.
package rpcclient

import (
	"time"

	"github.com/chathamware/chrpc/internal/chchannel"
	"github.com/chathamware/chrpc/internal/rpcproto"
	"github.com/chathamware/chrpc/internal/rpcserver"
	"github.com/chathamware/chrpc/internal/wire"
)

// Attrs configures a Client's polling behavior.
type Attrs struct {
	// Cadence is how long Call sleeps between polls of the channel
	// while awaiting a response.
	Cadence time.Duration

	// Timeout is the total time Call will wait for a response before
	// giving up and reporting rpcproto.StatusDisconnect.
	Timeout time.Duration
}

// DefaultAttrs mirrors the reference client's defaults: a 50ms poll
// cadence and a 5s total timeout.
var DefaultAttrs = Attrs{
	Cadence: 50 * time.Millisecond,
	Timeout: 5 * time.Second,
}

// Client issues synchronous request/response calls over one Channel.
// Once the channel suffers a fatal transport error, the Client marks
// itself disconnected and every subsequent Call fails fast with
// rpcproto.StatusClientChannelError.
type Client struct {
	attrs   Attrs
	channel chchannel.Channel
	scratch []byte
}

// New wraps chn as a Client. chn's MaxMsgSize is queried once and used
// to size the client's scratch buffer.
func New(chn chchannel.Channel, attrs Attrs) (*Client, error) {
	if chn == nil || attrs.Cadence <= 0 || attrs.Timeout <= 0 {
		return nil, rpcproto.StatusClientCreationError
	}

	mms, err := chn.MaxMsgSize()
	if err != nil {
		return nil, rpcproto.StatusClientCreationError
	}

	return &Client{
		attrs:   attrs,
		channel: chn,
		scratch: make([]byte, mms),
	}, nil
}

// Call issues one request against name with args, and blocks until a
// response arrives, the channel is disconnected, or the poll timeout
// elapses. A nil *wire.Value with a nil error means the endpoint
// succeeded with no return value.
func (c *Client) Call(name string, args []wire.Value) (*wire.Value, error) {
	if c.channel == nil {
		return nil, rpcproto.StatusClientChannelError
	}

	serializedArgs := make([][]byte, len(args))
	for i, a := range args {
		buf, err := wire.SerializeValue(a)
		if err != nil {
			return nil, err
		}
		serializedArgs[i] = buf
	}

	reqVal, err := rpcproto.NewRequest(name, serializedArgs)
	if err != nil {
		return nil, err
	}

	reqBytes, err := c.serializeIntoScratch(reqVal)
	if err != nil {
		return nil, err
	}

	if err := c.channel.Send(reqBytes); err != nil {
		c.channel = nil
		return nil, rpcproto.StatusClientChannelError
	}

	n, err := c.poll()
	if err != nil {
		return nil, err
	}

	respVal, _, err := wire.ValueFromBufferWithLength(c.scratch[:n])
	if err != nil {
		return nil, rpcproto.StatusBadResponse
	}

	status, serializedReturn, err := rpcproto.ParseResponse(respVal)
	if err != nil {
		return nil, rpcproto.StatusBadResponse
	}
	if status != rpcproto.StatusSuccess {
		return nil, status
	}

	if len(serializedReturn) == 0 {
		return nil, nil
	}

	retVal, _, err := wire.ValueFromBufferWithLength(serializedReturn)
	if err != nil {
		return nil, rpcproto.StatusBadResponse
	}
	return &retVal, nil
}

// poll repeatedly refreshes and receives on the channel until a
// message arrives, the timeout elapses, or a fatal channel error
// occurs.
func (c *Client) poll() (int, error) {
	var waited time.Duration

	for {
		if err := c.channel.Refresh(); err != nil {
			c.channel = nil
			return 0, rpcproto.StatusClientChannelError
		}

		n, err := c.channel.Receive(c.scratch)
		if err == nil {
			return n, nil
		}

		status, known := chchannel.AsStatus(err)
		if !known || status != chchannel.StatusNoIncomingMsg {
			c.channel = nil
			return 0, rpcproto.StatusClientChannelError
		}

		if waited >= c.attrs.Timeout {
			c.channel = nil
			return 0, rpcproto.StatusDisconnect
		}

		time.Sleep(c.attrs.Cadence)
		waited += c.attrs.Cadence
	}
}

func (c *Client) serializeIntoScratch(v wire.Value) ([]byte, error) {
	n, err := wire.ValueToBufferWithLength(v, c.scratch)
	if err != nil {
		return nil, err
	}
	return c.scratch[:n], nil
}

// DialLocal builds a fresh bidirectional in-process channel, hands one
// end to server via GiveChannel, and wraps the other end in a new
// Client - a convenience for wiring a client/server pair within one
// process without hand-building a Paired core.
func DialLocal(server *rpcserver.Server, cfg chchannel.LocalConfig, attrs Attrs) (*Client, error) {
	clientEnd, serverEnd, err := chchannel.NewPairedEnds(cfg)
	if err != nil {
		return nil, rpcproto.StatusClientCreationError
	}

	if err := server.GiveChannel(serverEnd); err != nil {
		return nil, err
	}

	return New(clientEnd, attrs)
}
