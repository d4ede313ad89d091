package chchannel

import (
	"encoding/binary"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/netutil"
)

// SocketConfig configures a TCP-backed Channel. It mirrors FDConfig's
// queueing/framing knobs but drives a net.Conn instead of raw
// descriptors.
type SocketConfig struct {
	QueueDepth int
	WriteOver  bool
	MaxMsgSize int
}

// Socket carries the same u32-length-prefixed framing as FD, over a
// net.Conn instead of raw file descriptors. Outgoing messages are
// drained by a background goroutine exactly as in FD; incoming frames
// are reassembled by a dedicated reader goroutine, since net.Conn reads
// block and so cannot be driven from Refresh the way a non-blocking fd
// read can.
type Socket struct {
	conn net.Conn
	cfg  SocketConfig

	outMu   sync.Mutex
	outCond *sync.Cond
	out     [][]byte
	closed  bool

	inMu  sync.Mutex
	ready [][]byte
	inErr error

	writerDone chan struct{}
}

// NewSocket wraps conn as a Channel and starts its background
// reader/writer goroutines.
func NewSocket(conn net.Conn, cfg SocketConfig) (*Socket, error) {
	if cfg.MaxMsgSize == 0 || cfg.QueueDepth == 0 {
		return nil, StatusInvalidArgs
	}

	s := &Socket{
		conn:       conn,
		cfg:        cfg,
		writerDone: make(chan struct{}),
	}
	s.outCond = sync.NewCond(&s.outMu)

	go s.drainWrites()
	go s.readLoop()

	return s, nil
}

// Close stops the background goroutines and closes the underlying
// connection.
func (s *Socket) Close() error {
	s.outMu.Lock()
	s.closed = true
	s.outCond.Broadcast()
	s.outMu.Unlock()
	<-s.writerDone

	return s.conn.Close()
}

func (s *Socket) MaxMsgSize() (int, error) {
	return s.cfg.MaxMsgSize, nil
}

func (s *Socket) Send(msg []byte) error {
	if len(msg) == 0 || len(msg) > s.cfg.MaxMsgSize {
		return StatusInvalidMsgSize
	}

	frame := make([]byte, frameHeaderLen+len(msg))
	binary.LittleEndian.PutUint32(frame, uint32(len(msg)))
	copy(frame[frameHeaderLen:], msg)

	s.outMu.Lock()
	defer s.outMu.Unlock()

	if s.cfg.QueueDepth > 0 && len(s.out) == s.cfg.QueueDepth {
		if !s.cfg.WriteOver {
			return StatusChannelFull
		}
		s.out = s.out[1:]
	}

	s.out = append(s.out, frame)
	s.outCond.Broadcast()
	return nil
}

func (s *Socket) drainWrites() {
	defer close(s.writerDone)

	for {
		s.outMu.Lock()
		for len(s.out) == 0 && !s.closed {
			s.outCond.Wait()
		}
		if s.closed && len(s.out) == 0 {
			s.outMu.Unlock()
			return
		}
		frame := s.out[0]
		s.out = s.out[1:]
		s.outMu.Unlock()

		s.conn.SetWriteDeadline(time.Time{})
		if _, err := s.conn.Write(frame); err != nil {
			// Connection is likely dead; the reader goroutine will
			// observe the same failure and surface it via IncomingLen
			// / Receive.
			return
		}
	}
}

// readLoop blocks on the connection reading complete length-prefixed
// frames and appends each to the ready queue.
func (s *Socket) readLoop() {
	var header [frameHeaderLen]byte

	for {
		if _, err := readFull(s.conn, header[:]); err != nil {
			s.recordReadErr(err)
			return
		}
		msgLen := int(binary.LittleEndian.Uint32(header[:]))

		msg := make([]byte, msgLen)
		if _, err := readFull(s.conn, msg); err != nil {
			s.recordReadErr(err)
			return
		}

		s.inMu.Lock()
		s.ready = append(s.ready, msg)
		s.inMu.Unlock()
	}
}

func (s *Socket) recordReadErr(err error) {
	s.inMu.Lock()
	s.inErr = errors.Wrap(err, "chchannel: socket read")
	s.inMu.Unlock()
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Refresh is a no-op for Socket: reassembly is driven by a dedicated
// blocking reader goroutine rather than by polling.
func (s *Socket) Refresh() error {
	return nil
}

func (s *Socket) IncomingLen() (int, error) {
	s.inMu.Lock()
	defer s.inMu.Unlock()

	if len(s.ready) == 0 {
		if s.inErr != nil {
			return 0, StatusUnknownError
		}
		return 0, StatusNoIncomingMsg
	}
	return len(s.ready[0]), nil
}

func (s *Socket) Receive(buf []byte) (int, error) {
	s.inMu.Lock()
	defer s.inMu.Unlock()

	if len(s.ready) == 0 {
		if s.inErr != nil {
			return 0, StatusUnknownError
		}
		return 0, StatusNoIncomingMsg
	}

	msg := s.ready[0]
	if len(msg) > len(buf) {
		return 0, StatusBufferTooSmall
	}

	s.ready = s.ready[1:]
	return copy(buf, msg), nil
}

// ListenSocket opens a TCP listener at addr, capped to maxConns
// concurrently-accepted connections via netutil.LimitListener - the
// same mechanism used to cap raw connection counts independent of
// whatever admission limit the RPC server layers on top of accepted
// Channels.
func ListenSocket(network, addr string, maxConns int) (net.Listener, error) {
	l, err := net.Listen(network, addr)
	if err != nil {
		return nil, errors.Wrap(err, "chchannel: listen")
	}
	if maxConns > 0 {
		l = netutil.LimitListener(l, maxConns)
	}
	return l, nil
}

// Accept blocks for the next incoming connection on l and wraps it as
// a Socket Channel.
func Accept(l net.Listener, cfg SocketConfig) (*Socket, error) {
	conn, err := l.Accept()
	if err != nil {
		return nil, errors.Wrap(err, "chchannel: accept")
	}
	return NewSocket(conn, cfg)
}

// DialSocket connects to addr and wraps the connection as a Socket
// Channel.
func DialSocket(network, addr string, cfg SocketConfig) (*Socket, error) {
	conn, err := net.Dial(network, addr)
	if err != nil {
		return nil, errors.Wrap(err, "chchannel: dial")
	}
	return NewSocket(conn, cfg)
}
