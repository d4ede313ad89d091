package rpcserver

import (
	"time"

	"github.com/chathamware/chrpc/internal/chchannel"
	"github.com/chathamware/chrpc/internal/mlog"
	"github.com/chathamware/chrpc/internal/rpcproto"
	"github.com/chathamware/chrpc/internal/wire"
)

// workerLoop is one of attrs.NumWorkers long-lived goroutines draining
// the shared channel queue. No goroutine is spawned per request: the
// worker services one dequeued channel's next message, then loops.
func (s *Server) workerLoop(idx int) {
	defer s.wg.Done()

	scratch := make([]byte, s.attrs.MaxMsgSize)

	for {
		if s.exiting() {
			return
		}

		e := s.dequeue()
		if e == nil {
			time.Sleep(s.attrs.WorkerUsleepAmt)
			continue
		}

		s.serviceOnce(e, scratch)
	}
}

// serviceOnce runs one poll-and-dispatch cycle for entry, per the
// worker loop steps: refresh, receive, parse, dispatch, respond,
// requeue or disconnect.
func (s *Server) serviceOnce(e *channelEntry, scratch []byte) {
	if err := e.channel.Refresh(); err != nil {
		s.disconnect(e, "refresh-error")
		return
	}

	n, err := e.channel.Receive(scratch)
	if err != nil {
		if status, ok := chchannel.AsStatus(err); ok && status == chchannel.StatusNoIncomingMsg {
			if s.attrs.IdleTimeout > 0 && time.Since(e.lastActivity) > s.attrs.IdleTimeout {
				s.disconnect(e, "idle-timeout")
				return
			}
			s.requeue(e)
			time.Sleep(s.attrs.WorkerUsleepAmt)
			return
		}
		s.disconnect(e, "receive-error")
		return
	}

	reqVal, _, err := wire.ValueFromBufferWithLength(scratch[:n])
	if err != nil {
		s.replyError(e, rpcproto.StatusBadRequest)
		e.lastActivity = time.Now()
		s.requeue(e)
		return
	}

	name, serializedArgs, err := rpcproto.ParseRequest(reqVal)
	if err != nil {
		s.replyError(e, rpcproto.StatusBadRequest)
		e.lastActivity = time.Now()
		s.requeue(e)
		return
	}

	ep := s.eps.Lookup(name)
	if ep == nil {
		requestsTotal.WithLabelValues(name, "unknown_endpoint").Inc()
		s.replyError(e, rpcproto.StatusUnknownEndpoint)
		e.lastActivity = time.Now()
		s.requeue(e)
		return
	}

	if len(serializedArgs) != len(ep.ArgTypes) {
		s.replyError(e, rpcproto.StatusArgumentMismatch)
		e.lastActivity = time.Now()
		s.requeue(e)
		return
	}

	args := make([]wire.Value, len(serializedArgs))
	for i, raw := range serializedArgs {
		v, _, err := wire.ValueFromBufferWithLength(raw)
		if err != nil {
			s.replyError(e, rpcproto.StatusArgumentMismatch)
			e.lastActivity = time.Now()
			s.requeue(e)
			return
		}
		args[i] = v
	}
	if !ep.CheckArgTypes(args) {
		s.replyError(e, rpcproto.StatusArgumentMismatch)
		e.lastActivity = time.Now()
		s.requeue(e)
		return
	}

	dispatchStart := time.Now()
	ret, directive := ep.Handler(e.id, s.serverState, args)
	dispatchLatency.WithLabelValues(name).Observe(time.Since(dispatchStart).Seconds())

	if !ep.CheckReturnType(ret) {
		requestsTotal.WithLabelValues(name, "server_internal_error").Inc()
		s.replyError(e, rpcproto.StatusServerInternalError)
		e.lastActivity = time.Now()
		s.requeue(e)
		return
	}

	var serializedReturn []byte
	if ret != nil {
		serializedReturn, err = wire.SerializeValue(*ret)
		if err != nil {
			s.replyError(e, rpcproto.StatusServerInternalError)
			e.lastActivity = time.Now()
			s.requeue(e)
			return
		}
	}

	respVal, err := rpcproto.NewResponse(rpcproto.StatusSuccess, serializedReturn)
	if err != nil {
		s.replyError(e, rpcproto.StatusServerInternalError)
		e.lastActivity = time.Now()
		s.requeue(e)
		return
	}

	if err := s.send(e, respVal); err != nil {
		if status, ok := chchannel.AsStatus(err); ok && status == chchannel.StatusInvalidMsgSize {
			// The response doesn't fit in this channel's max message
			// size. The request itself was fine - recoverable, so reply
			// with BUFFER_TOO_SMALL and keep the channel alive, rather
			// than treating this like any other send failure.
			s.replyError(e, rpcproto.StatusBufferTooSmall)
			e.lastActivity = time.Now()
			s.requeue(e)
			return
		}
		s.disconnect(e, "send-error")
		return
	}

	requestsTotal.WithLabelValues(name, "success").Inc()
	e.lastActivity = time.Now()

	if directive == rpcproto.Disconnect {
		s.disconnect(e, "endpoint-directive")
		return
	}
	s.requeue(e)
}

// replyError sends an error response carrying status. A send failure
// here is not itself escalated to a disconnect by the caller's caller;
// callers that need disconnect-on-send-failure semantics call send
// directly instead (see serviceOnce's success path).
func (s *Server) replyError(e *channelEntry, status rpcproto.Status) {
	errorsTotal.WithLabelValues(statusLabel(status)).Inc()

	respVal, err := rpcproto.NewResponse(status, nil)
	if err != nil {
		mlog.Error("rpcserver: building error response: %v", err)
		return
	}
	if err := s.send(e, respVal); err != nil {
		mlog.Debug("rpcserver: failed to send error response to channel %d: %v", e.id, err)
	}
}

// send serializes v and writes it to entry's channel, growing the
// scratch buffer as needed.
func (s *Server) send(e *channelEntry, v wire.Value) error {
	return wire.SendValue(v, e.channel.Send)
}

func statusLabel(s rpcproto.Status) string {
	switch s {
	case rpcproto.StatusBadRequest:
		return "bad_request"
	case rpcproto.StatusUnknownEndpoint:
		return "unknown_endpoint"
	case rpcproto.StatusArgumentMismatch:
		return "argument_mismatch"
	case rpcproto.StatusServerInternalError:
		return "server_internal_error"
	case rpcproto.StatusServerFull:
		return "server_full"
	case rpcproto.StatusBufferTooSmall:
		return "buffer_too_small"
	default:
		return "other"
	}
}
