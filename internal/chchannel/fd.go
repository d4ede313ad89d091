package chchannel

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// frameHeaderLen is the size of the u32 length prefix every message
// carries on an FD or Socket transport.
const frameHeaderLen = 4

// FDConfig configures an OS-file-descriptor-backed Channel. The
// resulting Channel owns both descriptors and Close closes them. If
// NewFD fails after validating cfg, it closes both descriptors itself.
type FDConfig struct {
	// ReadFD and WriteFD may name the same descriptor.
	ReadFD  int
	WriteFD int

	QueueDepth int
	WriteOver  bool
	MaxMsgSize int

	// ReadChunkSize is how much is read from ReadFD per non-blocking
	// read attempt. It may be larger than MaxMsgSize.
	ReadChunkSize int
}

// FD carries length-prefixed frames over a pair of raw file
// descriptors: a background goroutine drains a mutex-guarded outgoing
// queue with blocking writes, while Refresh performs non-blocking reads
// into a reassembly buffer and segments out complete frames.
type FD struct {
	cfg FDConfig

	outMu   sync.Mutex
	outCond *sync.Cond
	out     [][]byte
	closed  bool

	inMu  sync.Mutex
	ready [][]byte

	reassembly []byte
	chunk      []byte

	writerDone chan struct{}
}

// NewFD constructs a Channel over cfg's descriptors and starts its
// background write-draining goroutine.
func NewFD(cfg FDConfig) (*FD, error) {
	if cfg.MaxMsgSize == 0 || cfg.QueueDepth == 0 || cfg.ReadFD < 0 || cfg.WriteFD < 0 {
		return nil, StatusInvalidArgs
	}
	if cfg.ReadChunkSize == 0 {
		cfg.ReadChunkSize = cfg.MaxMsgSize
	}

	if err := unix.SetNonblock(cfg.ReadFD, true); err != nil {
		unix.Close(cfg.ReadFD)
		if cfg.WriteFD != cfg.ReadFD {
			unix.Close(cfg.WriteFD)
		}
		return nil, errors.Wrap(err, "chchannel: set read fd non-blocking")
	}

	f := &FD{
		cfg:        cfg,
		chunk:      make([]byte, cfg.ReadChunkSize),
		writerDone: make(chan struct{}),
	}
	f.outCond = sync.NewCond(&f.outMu)

	go f.drainWrites()

	return f, nil
}

// Close stops the write-draining goroutine and closes both descriptors.
func (f *FD) Close() error {
	f.outMu.Lock()
	f.closed = true
	f.outCond.Broadcast()
	f.outMu.Unlock()
	<-f.writerDone

	err1 := unix.Close(f.cfg.ReadFD)
	var err2 error
	if f.cfg.WriteFD != f.cfg.ReadFD {
		err2 = unix.Close(f.cfg.WriteFD)
	}
	if err1 != nil {
		return errors.Wrap(err1, "chchannel: close read fd")
	}
	if err2 != nil {
		return errors.Wrap(err2, "chchannel: close write fd")
	}
	return nil
}

func (f *FD) MaxMsgSize() (int, error) {
	return f.cfg.MaxMsgSize, nil
}

func (f *FD) Send(msg []byte) error {
	if len(msg) == 0 || len(msg) > f.cfg.MaxMsgSize {
		return StatusInvalidMsgSize
	}

	frame := make([]byte, frameHeaderLen+len(msg))
	binary.LittleEndian.PutUint32(frame, uint32(len(msg)))
	copy(frame[frameHeaderLen:], msg)

	f.outMu.Lock()
	defer f.outMu.Unlock()

	if f.cfg.QueueDepth > 0 && len(f.out) == f.cfg.QueueDepth {
		if !f.cfg.WriteOver {
			return StatusChannelFull
		}
		f.out = f.out[1:]
	}

	f.out = append(f.out, frame)
	f.outCond.Broadcast()
	return nil
}

func (f *FD) drainWrites() {
	defer close(f.writerDone)

	for {
		f.outMu.Lock()
		for len(f.out) == 0 && !f.closed {
			f.outCond.Wait()
		}
		if f.closed && len(f.out) == 0 {
			f.outMu.Unlock()
			return
		}
		frame := f.out[0]
		f.out = f.out[1:]
		f.outMu.Unlock()

		if err := writeFull(f.cfg.WriteFD, frame); err != nil {
			// The write failed; the frame is lost. A future Send may
			// succeed once whatever blocked the descriptor clears.
			continue
		}
	}
}

func writeFull(fd int, buf []byte) error {
	for len(buf) > 0 {
		n, err := unix.Write(fd, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// Refresh performs one non-blocking read of up to ReadChunkSize bytes
// from ReadFD, appends it to the reassembly buffer, and segments out
// any complete frames into the ready queue. A read that would block
// (EAGAIN/EWOULDBLOCK) is not an error.
func (f *FD) Refresh() error {
	n, err := unix.Read(f.cfg.ReadFD, f.chunk)
	if err != nil && err != unix.EAGAIN && err != unix.EWOULDBLOCK && err != unix.EINTR {
		return StatusUnknownError
	}
	if n > 0 {
		f.reassembly = append(f.reassembly, f.chunk[:n]...)
	}

	f.inMu.Lock()
	defer f.inMu.Unlock()

	for {
		if len(f.reassembly) < frameHeaderLen {
			return nil
		}
		msgLen := int(binary.LittleEndian.Uint32(f.reassembly))
		if len(f.reassembly) < frameHeaderLen+msgLen {
			return nil
		}

		msg := make([]byte, msgLen)
		copy(msg, f.reassembly[frameHeaderLen:frameHeaderLen+msgLen])
		f.ready = append(f.ready, msg)
		f.reassembly = f.reassembly[frameHeaderLen+msgLen:]
	}
}

func (f *FD) IncomingLen() (int, error) {
	f.inMu.Lock()
	defer f.inMu.Unlock()

	if len(f.ready) == 0 {
		return 0, StatusNoIncomingMsg
	}
	return len(f.ready[0]), nil
}

func (f *FD) Receive(buf []byte) (int, error) {
	f.inMu.Lock()
	defer f.inMu.Unlock()

	if len(f.ready) == 0 {
		return 0, StatusNoIncomingMsg
	}

	msg := f.ready[0]
	if len(msg) > len(buf) {
		return 0, StatusBufferTooSmall
	}

	f.ready = f.ready[1:]
	return copy(buf, msg), nil
}
