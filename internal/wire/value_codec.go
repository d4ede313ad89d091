package wire

import (
	"bytes"
	"encoding/binary"
	"math"
)

// encodeValue appends the serialization of v's InnerValue (per t) to
// buf. t must equal v.Type() - callers besides the exported entry
// points always pass t == v.typ, so that precondition is never actually
// violated internally.
func encodeValue(t *Type, v Value, buf *bytes.Buffer) {
	switch t.Tag() {
	case TagByte:
		buf.WriteByte(v.inner.(uint8))
	case TagI16:
		writeU16(buf, uint16(v.inner.(int16)))
	case TagI32:
		writeU32(buf, uint32(v.inner.(int32)))
	case TagI64:
		writeU64(buf, uint64(v.inner.(int64)))
	case TagU16:
		writeU16(buf, v.inner.(uint16))
	case TagU32:
		writeU32(buf, v.inner.(uint32))
	case TagU64:
		writeU64(buf, v.inner.(uint64))
	case TagF32:
		writeU32(buf, math.Float32bits(v.inner.(float32)))
	case TagF64:
		writeU64(buf, math.Float64bits(v.inner.(float64)))
	case TagString:
		writeString(buf, v.inner.(string))
	case TagStruct:
		fields := v.inner.([]Value)
		fieldTypes := t.Fields()
		for i, f := range fields {
			encodeValue(fieldTypes[i], f, buf)
		}
	case TagArray:
		encodeArray(t, v, buf)
	}
}

func encodeArray(t *Type, v Value, buf *bytes.Buffer) {
	elem := t.Elem()
	switch elem.Tag() {
	case TagByte:
		xs := v.inner.([]uint8)
		writeU32(buf, uint32(len(xs)))
		buf.Write(xs)
	case TagI16:
		xs := v.inner.([]int16)
		writeU32(buf, uint32(len(xs)))
		for _, x := range xs {
			writeU16(buf, uint16(x))
		}
	case TagI32:
		xs := v.inner.([]int32)
		writeU32(buf, uint32(len(xs)))
		for _, x := range xs {
			writeU32(buf, uint32(x))
		}
	case TagI64:
		xs := v.inner.([]int64)
		writeU32(buf, uint32(len(xs)))
		for _, x := range xs {
			writeU64(buf, uint64(x))
		}
	case TagU16:
		xs := v.inner.([]uint16)
		writeU32(buf, uint32(len(xs)))
		for _, x := range xs {
			writeU16(buf, x)
		}
	case TagU32:
		xs := v.inner.([]uint32)
		writeU32(buf, uint32(len(xs)))
		for _, x := range xs {
			writeU32(buf, x)
		}
	case TagU64:
		xs := v.inner.([]uint64)
		writeU32(buf, uint32(len(xs)))
		for _, x := range xs {
			writeU64(buf, x)
		}
	case TagF32:
		xs := v.inner.([]float32)
		writeU32(buf, uint32(len(xs)))
		for _, x := range xs {
			writeU32(buf, math.Float32bits(x))
		}
	case TagF64:
		xs := v.inner.([]float64)
		writeU32(buf, uint32(len(xs)))
		for _, x := range xs {
			writeU64(buf, math.Float64bits(x))
		}
	case TagString:
		xs := v.inner.([]string)
		writeU32(buf, uint32(len(xs)))
		for _, s := range xs {
			writeString(buf, s)
		}
	case TagStruct, TagArray:
		xs := v.inner.([]Value)
		writeU32(buf, uint32(len(xs)))
		for _, e := range xs {
			encodeValue(elem, e, buf)
		}
	}
}

func writeU16(buf *bytes.Buffer, x uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], x)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, x uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], x)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, x uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], x)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

// decodeValue parses one InnerValue of Type t from the front of data,
// returning the resulting Value and the number of bytes consumed.
func decodeValue(t *Type, data []byte) (Value, int, error) {
	switch t.Tag() {
	case TagByte:
		if len(data) < 1 {
			return Value{}, 0, StatusUnexpectedEnd
		}
		return NewByte(data[0]), 1, nil
	case TagI16:
		x, n, err := readU16(data)
		if err != nil {
			return Value{}, 0, err
		}
		return NewI16(int16(x)), n, nil
	case TagI32:
		x, n, err := readU32(data)
		if err != nil {
			return Value{}, 0, err
		}
		return NewI32(int32(x)), n, nil
	case TagI64:
		x, n, err := readU64(data)
		if err != nil {
			return Value{}, 0, err
		}
		return NewI64(int64(x)), n, nil
	case TagU16:
		x, n, err := readU16(data)
		if err != nil {
			return Value{}, 0, err
		}
		return NewU16(x), n, nil
	case TagU32:
		x, n, err := readU32(data)
		if err != nil {
			return Value{}, 0, err
		}
		return NewU32(x), n, nil
	case TagU64:
		x, n, err := readU64(data)
		if err != nil {
			return Value{}, 0, err
		}
		return NewU64(x), n, nil
	case TagF32:
		x, n, err := readU32(data)
		if err != nil {
			return Value{}, 0, err
		}
		return NewF32(math.Float32frombits(x)), n, nil
	case TagF64:
		x, n, err := readU64(data)
		if err != nil {
			return Value{}, 0, err
		}
		return NewF64(math.Float64frombits(x)), n, nil
	case TagString:
		s, n, err := readString(data)
		if err != nil {
			return Value{}, 0, err
		}
		return NewString(s), n, nil
	case TagStruct:
		return decodeStruct(t, data)
	case TagArray:
		return decodeArray(t, data)
	default:
		return Value{}, 0, StatusMalformedType
	}
}

func decodeStruct(t *Type, data []byte) (Value, int, error) {
	fieldTypes := t.Fields()
	fields := make([]Value, len(fieldTypes))
	pos := 0
	for i, ft := range fieldTypes {
		f, n, err := decodeValue(ft, data[pos:])
		if err != nil {
			return Value{}, 0, err
		}
		fields[i] = f
		pos += n
	}
	return Value{typ: t, inner: fields}, pos, nil
}

func decodeArray(t *Type, data []byte) (Value, int, error) {
	elem := t.Elem()
	count, pos, err := readU32(data)
	if err != nil {
		return Value{}, 0, err
	}
	n := int(count)

	switch elem.Tag() {
	case TagByte:
		if len(data) < pos+n {
			return Value{}, 0, StatusUnexpectedEnd
		}
		xs := make([]uint8, n)
		copy(xs, data[pos:pos+n])
		pos += n
		return Value{typ: t, inner: xs}, pos, nil
	case TagI16:
		xs := make([]int16, n)
		for i := 0; i < n; i++ {
			x, m, err := readU16(data[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			xs[i] = int16(x)
			pos += m
		}
		return Value{typ: t, inner: xs}, pos, nil
	case TagI32:
		xs := make([]int32, n)
		for i := 0; i < n; i++ {
			x, m, err := readU32(data[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			xs[i] = int32(x)
			pos += m
		}
		return Value{typ: t, inner: xs}, pos, nil
	case TagI64:
		xs := make([]int64, n)
		for i := 0; i < n; i++ {
			x, m, err := readU64(data[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			xs[i] = int64(x)
			pos += m
		}
		return Value{typ: t, inner: xs}, pos, nil
	case TagU16:
		xs := make([]uint16, n)
		for i := 0; i < n; i++ {
			x, m, err := readU16(data[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			xs[i] = x
			pos += m
		}
		return Value{typ: t, inner: xs}, pos, nil
	case TagU32:
		xs := make([]uint32, n)
		for i := 0; i < n; i++ {
			x, m, err := readU32(data[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			xs[i] = x
			pos += m
		}
		return Value{typ: t, inner: xs}, pos, nil
	case TagU64:
		xs := make([]uint64, n)
		for i := 0; i < n; i++ {
			x, m, err := readU64(data[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			xs[i] = x
			pos += m
		}
		return Value{typ: t, inner: xs}, pos, nil
	case TagF32:
		xs := make([]float32, n)
		for i := 0; i < n; i++ {
			x, m, err := readU32(data[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			xs[i] = math.Float32frombits(x)
			pos += m
		}
		return Value{typ: t, inner: xs}, pos, nil
	case TagF64:
		xs := make([]float64, n)
		for i := 0; i < n; i++ {
			x, m, err := readU64(data[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			xs[i] = math.Float64frombits(x)
			pos += m
		}
		return Value{typ: t, inner: xs}, pos, nil
	case TagString:
		xs := make([]string, n)
		for i := 0; i < n; i++ {
			s, m, err := readString(data[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			xs[i] = s
			pos += m
		}
		return Value{typ: t, inner: xs}, pos, nil
	case TagStruct, TagArray:
		xs := make([]Value, n)
		for i := 0; i < n; i++ {
			e, m, err := decodeValue(elem, data[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			xs[i] = e
			pos += m
		}
		return Value{typ: t, inner: xs}, pos, nil
	default:
		return Value{}, 0, StatusMalformedType
	}
}

func readU16(data []byte) (uint16, int, error) {
	if len(data) < 2 {
		return 0, 0, StatusUnexpectedEnd
	}
	return binary.LittleEndian.Uint16(data), 2, nil
}

func readU32(data []byte) (uint32, int, error) {
	if len(data) < 4 {
		return 0, 0, StatusUnexpectedEnd
	}
	return binary.LittleEndian.Uint32(data), 4, nil
}

func readU64(data []byte) (uint64, int, error) {
	if len(data) < 8 {
		return 0, 0, StatusUnexpectedEnd
	}
	return binary.LittleEndian.Uint64(data), 8, nil
}

func readString(data []byte) (string, int, error) {
	length, pos, err := readU32(data)
	if err != nil {
		return "", 0, err
	}
	n := int(length)
	if len(data) < pos+n {
		return "", 0, StatusUnexpectedEnd
	}
	s := string(data[pos : pos+n])
	return s, pos + n, nil
}

// SerializeInto writes v's InnerValue (per v.Type()) into buf, returning
// the number of bytes written. Returns StatusBufferTooSmall if buf
// cannot hold the full serialization.
func (v Value) SerializeInto(buf []byte) (int, error) {
	var scratch bytes.Buffer
	encodeValue(v.typ, v, &scratch)

	if scratch.Len() > len(buf) {
		return 0, StatusBufferTooSmall
	}
	return copy(buf, scratch.Bytes()), nil
}

// ParseValue parses an InnerValue of the given Type from the front of
// buf.
func ParseValue(t *Type, buf []byte) (Value, int, error) {
	return decodeValue(t, buf)
}

// ValueToBufferWithLength writes Serial(Type), Serial(InnerValue) into
// buf: a complete, self-describing framing of v.
func ValueToBufferWithLength(v Value, buf []byte) (int, error) {
	var scratch bytes.Buffer
	encodeType(v.typ, &scratch)
	encodeValue(v.typ, v, &scratch)

	if scratch.Len() > len(buf) {
		return 0, StatusBufferTooSmall
	}
	return copy(buf, scratch.Bytes()), nil
}

// ValueFromBufferWithLength parses a Type followed by a matching
// InnerValue from the front of buf - the inverse of
// ValueToBufferWithLength.
func ValueFromBufferWithLength(buf []byte) (Value, int, error) {
	t, n, err := decodeType(buf)
	if err != nil {
		return Value{}, 0, err
	}
	v, m, err := decodeValue(t, buf[n:])
	if err != nil {
		return Value{}, 0, err
	}
	return v, n + m, nil
}
