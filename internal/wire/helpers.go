package wire

// SendValue serializes v in its length-prefixed form and hands the
// resulting bytes to send. send is expected to be a Channel's Send
// method, but is taken as a plain function here so this package need
// not import chchannel.
func SendValue(v Value, send func([]byte) error) error {
	buf, err := SerializeValue(v)
	if err != nil {
		return err
	}
	return send(buf)
}

// SerializeValue is the length-prefixed form of v, grown from an
// estimate of v's encoded size and doubled until it fits. The RPC
// client and server both repeat this exact sequence - for a request or
// response struct, for each of its arguments, and for its return value
// - so it lives here once rather than three times.
func SerializeValue(v Value) ([]byte, error) {
	scratch := make([]byte, estimateSize(v)+typeSizeEstimate(v.typ))
	for {
		n, err := ValueToBufferWithLength(v, scratch)
		if err == nil {
			return scratch[:n], nil
		}
		if err != StatusBufferTooSmall {
			return nil, err
		}
		scratch = make([]byte, len(scratch)*2+64)
	}
}

// ReceiveValue reads exactly one length-prefixed Value out of buf, as
// produced by SendValue on the other end.
func ReceiveValue(buf []byte) (Value, error) {
	v, _, err := ValueFromBufferWithLength(buf)
	return v, err
}

// estimateSize and typeSizeEstimate exist only to size SerializeValue's
// first scratch-buffer attempt reasonably; SerializeValue's retry loop
// makes their exact accuracy unimportant.
func estimateSize(v Value) int {
	switch v.typ.Tag() {
	case TagString:
		return len(v.inner.(string)) + 8
	case TagByte:
		return 9
	default:
		return 64
	}
}

func typeSizeEstimate(t *Type) int {
	switch t.Tag() {
	case TagArray:
		return 2 + typeSizeEstimate(t.Elem())
	case TagStruct:
		n := 2
		for _, f := range t.Fields() {
			n += typeSizeEstimate(f)
		}
		return n
	default:
		return 1
	}
}
