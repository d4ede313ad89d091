// Package endpoint implements the named, typed procedure registry an
// RPC server dispatches requests against.
package endpoint

import (
	"github.com/chathamware/chrpc/internal/rpcproto"
	"github.com/chathamware/chrpc/internal/wire"
)

// MaxArgs is the largest number of arguments an Endpoint may declare.
const MaxArgs = 10

// Handler is the callable behind an Endpoint. It receives the
// channel-id the request arrived on, the opaque server state, and the
// already-type-checked argument Values, and returns an optional return
// Value plus a Directive telling the server whether to keep serving
// this channel.
type Handler func(channelID uint64, serverState any, args []wire.Value) (*wire.Value, rpcproto.Directive)

// Endpoint is one named, typed RPC procedure: a name, its declared
// argument Types (in order), an optional declared return Type, and the
// Handler to invoke once a request has been validated against them.
type Endpoint struct {
	Name       string
	ArgTypes   []*wire.Type
	ReturnType *wire.Type // nil if the endpoint returns nothing
	Handler    Handler
}

// New builds an Endpoint, validating that it declares at most MaxArgs
// arguments.
func New(name string, argTypes []*wire.Type, returnType *wire.Type, h Handler) (*Endpoint, error) {
	if len(argTypes) > MaxArgs {
		return nil, rpcproto.StatusTooManyArguments
	}
	types := make([]*wire.Type, len(argTypes))
	copy(types, argTypes)

	return &Endpoint{
		Name:       name,
		ArgTypes:   types,
		ReturnType: returnType,
		Handler:    h,
	}, nil
}

// CheckArgTypes reports whether args exactly matches e's declared
// argument arity and Types, in order.
func (e *Endpoint) CheckArgTypes(args []wire.Value) bool {
	if len(args) != len(e.ArgTypes) {
		return false
	}
	for i, a := range args {
		if !a.Type().Equals(e.ArgTypes[i]) {
			return false
		}
	}
	return true
}

// CheckReturnType reports whether ret matches e's declared return
// Type - "no return" counts as equal to "no declared return Type".
func (e *Endpoint) CheckReturnType(ret *wire.Value) bool {
	if e.ReturnType == nil {
		return ret == nil
	}
	if ret == nil {
		return false
	}
	return ret.Type().Equals(e.ReturnType)
}
