package rpcproto

import "github.com/chathamware/chrpc/internal/wire"

// RequestType and ResponseType are built once, here, and reused by
// every client and server - never reconstructed per call.
var (
	// RequestType: STRUCT { STRING endpoint_name; ARRAY(ARRAY(BYTE)) serialized_args; }
	RequestType *wire.Type

	// ResponseType: STRUCT { BYTE status; ARRAY(BYTE) serialized_return; }
	ResponseType *wire.Type
)

func init() {
	var err error
	RequestType, err = wire.NewStructType([]*wire.Type{
		wire.StringType,
		wire.NewArrayType(wire.NewArrayType(wire.ByteType)),
	})
	if err != nil {
		panic("rpcproto: building RequestType: " + err.Error())
	}

	ResponseType, err = wire.NewStructType([]*wire.Type{
		wire.ByteType,
		wire.NewArrayType(wire.ByteType),
	})
	if err != nil {
		panic("rpcproto: building ResponseType: " + err.Error())
	}
}

// NewRequest builds a request Value out of an endpoint name and
// already-serialized argument byte strings (each the
// ValueToBufferWithLength form of one argument Value).
func NewRequest(name string, serializedArgs [][]byte) (wire.Value, error) {
	argElems := make([]wire.Value, len(serializedArgs))
	for i, a := range serializedArgs {
		argElems[i] = wire.NewByteArray(a)
	}
	args, err := wire.NewArray(wire.NewArrayType(wire.ByteType), argElems)
	if err != nil {
		return wire.Value{}, err
	}

	return wire.NewStruct([]wire.Value{
		wire.NewString(name),
		args,
	})
}

// ParseRequest extracts the endpoint name and raw per-argument byte
// strings out of a request Value of RequestType.
func ParseRequest(v wire.Value) (name string, serializedArgs [][]byte, err error) {
	if !v.Type().Equals(RequestType) {
		return "", nil, StatusBadRequest
	}
	fields := v.StructFields()
	name = fields[0].Str()

	argElems := fields[1].CompositeArray()
	serializedArgs = make([][]byte, len(argElems))
	for i, a := range argElems {
		serializedArgs[i] = a.ByteArray()
	}
	return name, serializedArgs, nil
}

// NewResponse builds a response Value carrying status and (if status
// is StatusSuccess and the endpoint returned a value) the
// already-serialized return Value.
func NewResponse(status Status, serializedReturn []byte) (wire.Value, error) {
	if serializedReturn == nil {
		serializedReturn = []byte{}
	}
	return wire.NewStruct([]wire.Value{
		wire.NewByte(uint8(status)),
		wire.NewByteArray(serializedReturn),
	})
}

// ParseResponse extracts the status and raw return bytes out of a
// response Value of ResponseType. serializedReturn is empty when the
// endpoint had no return value or status was not Success.
func ParseResponse(v wire.Value) (status Status, serializedReturn []byte, err error) {
	if !v.Type().Equals(ResponseType) {
		return 0, nil, StatusBadResponse
	}
	fields := v.StructFields()
	return Status(fields[0].Byte()), fields[1].ByteArray(), nil
}
