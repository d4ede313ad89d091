package chchannel

import "sync"

// LocalConfig configures a single-ended in-process Channel.
type LocalConfig struct {
	// QueueDepth is the number of messages the channel can hold at
	// once. Zero means unbounded.
	QueueDepth int

	// WriteOver controls what happens to an incoming Send when the
	// queue is at QueueDepth: true drops the oldest queued message to
	// make room, false fails the Send with StatusChannelFull. Ignored
	// when QueueDepth is 0.
	WriteOver bool

	MaxMsgSize int
}

// Local is a FIFO of owned message buffers (bounded unless QueueDepth
// is 0), safe for concurrent
// use by multiple goroutines. It is single-ended: whatever is Sent is
// exactly what a subsequent Receive on the same Local returns - pairing
// two Locals into a bidirectional conversation is Paired's job.
type Local struct {
	cfg LocalConfig

	mu    sync.Mutex
	queue [][]byte
}

// NewLocal builds a Local channel from cfg. cfg is copied; it may be
// reused or discarded by the caller afterward.
func NewLocal(cfg LocalConfig) (*Local, error) {
	if cfg.MaxMsgSize <= 0 || cfg.QueueDepth < 0 {
		return nil, StatusInvalidArgs
	}
	return &Local{cfg: cfg}, nil
}

func (l *Local) MaxMsgSize() (int, error) {
	return l.cfg.MaxMsgSize, nil
}

func (l *Local) Send(msg []byte) error {
	if len(msg) == 0 || len(msg) > l.cfg.MaxMsgSize {
		return StatusInvalidMsgSize
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cfg.QueueDepth > 0 && len(l.queue) == l.cfg.QueueDepth {
		if !l.cfg.WriteOver {
			return StatusChannelFull
		}
		l.queue = l.queue[1:]
	}

	cp := make([]byte, len(msg))
	copy(cp, msg)
	l.queue = append(l.queue, cp)
	return nil
}

// Refresh is a no-op: Local has no external I/O state to advance.
func (l *Local) Refresh() error {
	return nil
}

func (l *Local) IncomingLen() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return 0, StatusNoIncomingMsg
	}
	return len(l.queue[0]), nil
}

func (l *Local) Receive(buf []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return 0, StatusNoIncomingMsg
	}

	msg := l.queue[0]
	if len(msg) > len(buf) {
		return 0, StatusBufferTooSmall
	}

	l.queue = l.queue[1:]
	return copy(buf, msg), nil
}
