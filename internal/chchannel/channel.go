// Package chchannel implements the message-boundary transport contract
// that an RPC client and server exchange framed values over: a bounded
// in-process queue, a bidirectional pairing of two such queues, an
// OS-file-descriptor transport, and a TCP-socket transport built on the
// same framing as the fd transport.
package chchannel

// Channel is the capability set every transport in this package
// implements. A Channel carries whole messages, never partial ones:
// Send either enqueues an entire message or fails, and Receive either
// consumes an entire message or leaves it in place.
type Channel interface {
	// MaxMsgSize returns the largest message this Channel will carry in
	// either direction.
	MaxMsgSize() (int, error)

	// Send atomically enqueues msg. len(msg) must be in [1, MaxMsgSize()].
	Send(msg []byte) error

	// Refresh gives the Channel a chance to advance internal I/O state
	// (e.g. draining a file descriptor into reassembly buffers). Pure
	// in-memory channels treat this as a no-op.
	Refresh() error

	// IncomingLen reports the size of the next readable message without
	// consuming it. Returns StatusNoIncomingMsg if none is ready.
	IncomingLen() (int, error)

	// Receive consumes the next message into buf, iff buf is large
	// enough to hold it. If buf is too small the message is left in
	// place and StatusBufferTooSmall is returned - a subsequent Receive
	// with a larger buffer will succeed.
	Receive(buf []byte) (int, error)
}
