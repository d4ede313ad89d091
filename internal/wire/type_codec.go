package wire

import "bytes"

// encodeType appends the grammar serialization of t to buf:
//
//	tag                                 for primitives
//	ARRAY_TAG, encodeType(elem)          for ARRAY(elem)
//	STRUCT_TAG, n(uint8), encodeType(f1), ...  for STRUCT(f1, ..., fn)
func encodeType(t *Type, buf *bytes.Buffer) {
	buf.WriteByte(byte(t.tag))

	switch t.tag {
	case TagArray:
		encodeType(t.elem, buf)
	case TagStruct:
		buf.WriteByte(byte(len(t.fields)))
		for _, f := range t.fields {
			encodeType(f, buf)
		}
	}
}

// decodeType parses one Type from buf (already trimmed to the readable
// bytes), returning the number of bytes consumed.
func decodeType(buf []byte) (*Type, int, error) {
	if len(buf) < 1 {
		return nil, 0, StatusUnexpectedEnd
	}

	tag := Tag(buf[0])
	pos := 1

	if prim, ok := PrimitiveFromTag(tag); ok {
		return prim, pos, nil
	}

	switch tag {
	case TagArray:
		elem, n, err := decodeType(buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		return NewArrayType(elem), pos, nil

	case TagStruct:
		if len(buf) < pos+1 {
			return nil, 0, StatusUnexpectedEnd
		}
		numFields := int(buf[pos])
		pos++

		if numFields == 0 {
			return nil, 0, StatusEmptyStructType
		}
		if numFields > MaxStructFields {
			return nil, 0, StatusStructTypeTooLarge
		}

		fields := make([]*Type, numFields)
		for i := 0; i < numFields; i++ {
			f, n, err := decodeType(buf[pos:])
			if err != nil {
				return nil, 0, err
			}
			fields[i] = f
			pos += n
		}

		st, err := NewStructType(fields)
		if err != nil {
			return nil, 0, err
		}
		return st, pos, nil

	default:
		return nil, 0, StatusSyntaxError
	}
}

// ToBuffer writes the serialization of t into buf, returning the number
// of bytes written. Returns StatusBufferTooSmall if buf is not large
// enough to hold the whole serialization - buf is left unmodified in
// that case.
func (t *Type) ToBuffer(buf []byte) (int, error) {
	var scratch bytes.Buffer
	encodeType(t, &scratch)

	if scratch.Len() > len(buf) {
		return 0, StatusBufferTooSmall
	}
	return copy(buf, scratch.Bytes()), nil
}

// TypeFromBuffer parses one Type from the front of buf, returning the
// Type and the number of bytes consumed.
func TypeFromBuffer(buf []byte) (*Type, int, error) {
	return decodeType(buf)
}
