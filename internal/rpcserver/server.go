// Package rpcserver implements the worker-pool RPC server: a registry
// of admitted channels drained by a fixed pool of long-lived worker
// goroutines, each dispatching one request at a time against an
// endpoint.Set.
package rpcserver

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/chathamware/chrpc/internal/chchannel"
	"github.com/chathamware/chrpc/internal/endpoint"
	"github.com/chathamware/chrpc/internal/mlog"
	"github.com/chathamware/chrpc/internal/rpcproto"
)

// MinMaxMsgSize is the floor every admitted channel's MaxMsgSize must
// clear - below this, the fixed request/response STRUCT framing
// cannot possibly fit.
const MinMaxMsgSize = 64

// Attrs configures a Server's admission limits and worker behavior. All
// tunables arrive through this struct at construction time.
type Attrs struct {
	MaxConnections int
	NumWorkers     int
	MaxMsgSize     int

	// IdleTimeout is how long a channel may sit without producing a
	// message before a worker disconnects it. Zero disables idle
	// disconnection.
	IdleTimeout time.Duration

	// WorkerUsleepAmt is how long an idle worker sleeps between polls
	// of an empty queue, or after dequeuing a channel with nothing to
	// read.
	WorkerUsleepAmt time.Duration
}

func (a Attrs) validate() error {
	if a.MaxConnections < 1 {
		return fmt.Errorf("rpcserver: max_connections must be >= 1")
	}
	if a.NumWorkers < 1 || a.NumWorkers > a.MaxConnections {
		return fmt.Errorf("rpcserver: num_workers must be in [1, max_connections]")
	}
	if a.MaxMsgSize < MinMaxMsgSize {
		return fmt.Errorf("rpcserver: max_msg_size must be >= %d", MinMaxMsgSize)
	}
	if a.WorkerUsleepAmt <= 0 {
		return fmt.Errorf("rpcserver: worker_usleep_amt must be positive")
	}
	return nil
}

// Server owns a registry of admitted channels and a pool of worker
// goroutines that drain it, dispatching requests to endpoints. The
// shape mirrors a mutex-protected registry serviced by long-lived
// goroutines rather than one goroutine per connection.
type Server struct {
	serverState any
	eps         *endpoint.Set
	attrs       Attrs

	mu          sync.Mutex
	queue       []*channelEntry
	nextID      uint64
	numChannels int

	exitMu     sync.Mutex
	shouldExit bool

	wg sync.WaitGroup
}

// New builds a Server over serverState (an opaque value handed to
// every endpoint invocation) and eps, and starts attrs.NumWorkers
// worker goroutines immediately.
func New(serverState any, eps *endpoint.Set, attrs Attrs) (*Server, error) {
	if eps == nil {
		return nil, fmt.Errorf("rpcserver: endpoint set must not be nil")
	}
	if err := attrs.validate(); err != nil {
		return nil, err
	}

	s := &Server{
		serverState: serverState,
		eps:         eps,
		attrs:       attrs,
	}

	for i := 0; i < attrs.NumWorkers; i++ {
		s.wg.Add(1)
		go s.workerLoop(i)
	}

	mlog.Debug("rpcserver: started with %d workers, max_connections=%d", attrs.NumWorkers, attrs.MaxConnections)

	return s, nil
}

// GiveChannel admits ch to the server. The server owns ch from this
// point: a worker will eventually close it, whether on idle timeout,
// channel error, endpoint Disconnect directive, or server shutdown.
func (s *Server) GiveChannel(ch chchannel.Channel) error {
	mms, err := ch.MaxMsgSize()
	if err != nil {
		return err
	}
	if mms < MinMaxMsgSize || mms > s.attrs.MaxMsgSize {
		return fmt.Errorf("rpcserver: channel max_msg_size %d outside [%d, %d]", mms, MinMaxMsgSize, s.attrs.MaxMsgSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.numChannels >= s.attrs.MaxConnections {
		return rpcproto.StatusServerFull
	}

	id := s.nextID
	s.nextID++
	s.numChannels++
	activeChannels.Inc()

	s.queue = append(s.queue, &channelEntry{
		channel:      ch,
		id:           id,
		lastActivity: time.Now(),
	})

	return nil
}

// dequeue pops the front entry off the round-robin work queue, or
// returns nil if it is empty.
func (s *Server) dequeue() *channelEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return nil
	}
	e := s.queue[0]
	s.queue = s.queue[1:]
	return e
}

// requeue pushes entry back onto the tail of the work queue.
func (s *Server) requeue(e *channelEntry) {
	s.mu.Lock()
	s.queue = append(s.queue, e)
	s.mu.Unlock()
}

// disconnect closes entry's channel (if it supports closing) and
// removes it from the server's live-channel count. entry must already
// be dequeued.
func (s *Server) disconnect(e *channelEntry, reason string) {
	if closer, ok := e.channel.(io.Closer); ok {
		closer.Close()
	}

	s.mu.Lock()
	s.numChannels--
	s.mu.Unlock()

	activeChannels.Dec()
	disconnectsTotal.WithLabelValues(reason).Inc()
	mlog.Debug("rpcserver: disconnected channel %d (%s)", e.id, reason)
}

func (s *Server) exiting() bool {
	s.exitMu.Lock()
	defer s.exitMu.Unlock()
	return s.shouldExit
}

// Shutdown signals every worker to stop after its current poll cycle,
// waits for them to exit, then closes every remaining queued channel
// and releases the endpoint set.
func (s *Server) Shutdown() {
	s.exitMu.Lock()
	s.shouldExit = true
	s.exitMu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	remaining := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, e := range remaining {
		s.disconnect(e, "shutdown")
	}

	s.eps = nil
	mlog.Debug("rpcserver: shutdown complete")
}
