package endpoint

import (
	"testing"

	"github.com/chathamware/chrpc/internal/rpcproto"
	"github.com/chathamware/chrpc/internal/wire"
)

func echoEndpoint(t *testing.T) *Endpoint {
	t.Helper()
	e, err := New("echo", []*wire.Type{wire.StringType}, wire.StringType,
		func(channelID uint64, serverState any, args []wire.Value) (*wire.Value, rpcproto.Directive) {
			v := args[0]
			return &v, rpcproto.KeepAlive
		})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestNewSetRejectsEmpty(t *testing.T) {
	if _, err := NewSet(nil); err == nil {
		t.Fatal("expected error for empty endpoint set")
	}
}

func TestNewSetRejectsDuplicateNames(t *testing.T) {
	e1 := echoEndpoint(t)
	e2 := echoEndpoint(t)
	if _, err := NewSet([]*Endpoint{e1, e2}); err == nil {
		t.Fatal("expected error for duplicate endpoint names")
	}
}

func TestSetLookup(t *testing.T) {
	e := echoEndpoint(t)
	set, err := NewSet([]*Endpoint{e})
	if err != nil {
		t.Fatal(err)
	}

	if set.Lookup("echo") != e {
		t.Fatal("expected to find echo endpoint")
	}
	if set.Lookup("missing") != nil {
		t.Fatal("expected nil for unregistered name")
	}
}

func TestNewRejectsTooManyArgs(t *testing.T) {
	args := make([]*wire.Type, MaxArgs+1)
	for i := range args {
		args[i] = wire.ByteType
	}
	_, err := New("toomany", args, nil, nil)
	if err != rpcproto.StatusTooManyArguments {
		t.Fatalf("expected StatusTooManyArguments, got %v", err)
	}
}

func TestCheckArgTypes(t *testing.T) {
	e := echoEndpoint(t)
	if !e.CheckArgTypes([]wire.Value{wire.NewString("hi")}) {
		t.Error("expected matching arg types to pass")
	}
	if e.CheckArgTypes([]wire.Value{wire.NewI32(1)}) {
		t.Error("expected mismatched arg type to fail")
	}
	if e.CheckArgTypes([]wire.Value{}) {
		t.Error("expected arity mismatch to fail")
	}
}

func TestCheckReturnType(t *testing.T) {
	e := echoEndpoint(t)
	v := wire.NewString("hi")
	if !e.CheckReturnType(&v) {
		t.Error("expected matching return type to pass")
	}
	if e.CheckReturnType(nil) {
		t.Error("expected missing return to fail when a return type is declared")
	}

	noReturn, err := New("logout", nil, nil,
		func(uint64, any, []wire.Value) (*wire.Value, rpcproto.Directive) {
			return nil, rpcproto.Disconnect
		})
	if err != nil {
		t.Fatal(err)
	}
	if !noReturn.CheckReturnType(nil) {
		t.Error("nil return should match a nil declared return type")
	}
}
