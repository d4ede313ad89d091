package rpcserver

import (
	"time"

	"github.com/chathamware/chrpc/internal/chchannel"
)

// channelEntry is one admitted channel sitting in the server's
// round-robin work queue: the channel handle itself, a server-assigned
// id, and the wall-clock time it last produced or consumed a message.
type channelEntry struct {
	channel      chchannel.Channel
	id           uint64
	lastActivity time.Time
}
