package wire

import "fmt"

// Value is a (Type, InnerValue) pair - the unit that crosses the wire.
// A Value is immutable once constructed: every constructor below either
// succeeds with a fully-formed Value or reports an error.
//
// The payload held for a given Type:
//
//	scalar T           -> the Go scalar (uint8, int16, ..., float64)
//	STRING             -> string
//	STRUCT             -> []Value, len == len(Type.Fields()), pointwise-typed
//	ARRAY(prim scalar)  -> the matching Go slice ([]uint8, []int16, ...)
//	ARRAY(STRING)       -> []string
//	ARRAY(composite)    -> []Value, each matching Type.Elem()
type Value struct {
	typ   *Type
	inner any
}

// Type returns the Type describing v.
func (v Value) Type() *Type { return v.typ }

func newScalar(t *Type, inner any) Value { return Value{typ: t, inner: inner} }

func NewByte(x uint8) Value     { return newScalar(ByteType, x) }
func NewI16(x int16) Value      { return newScalar(I16Type, x) }
func NewI32(x int32) Value      { return newScalar(I32Type, x) }
func NewI64(x int64) Value      { return newScalar(I64Type, x) }
func NewU16(x uint16) Value     { return newScalar(U16Type, x) }
func NewU32(x uint32) Value     { return newScalar(U32Type, x) }
func NewU64(x uint64) Value     { return newScalar(U64Type, x) }
func NewF32(x float32) Value    { return newScalar(F32Type, x) }
func NewF64(x float64) Value    { return newScalar(F64Type, x) }
func NewString(x string) Value  { return newScalar(StringType, x) }

// NewStruct builds a STRUCT value out of fields, in declaration order.
// The struct's Type is derived from the fields' own Types. Fails if
// fields is empty or has more than MaxStructFields entries.
func NewStruct(fields []Value) (Value, error) {
	fieldTypes := make([]*Type, len(fields))
	for i, f := range fields {
		fieldTypes[i] = f.typ
	}
	st, err := NewStructType(fieldTypes)
	if err != nil {
		return Value{}, err
	}

	cp := make([]Value, len(fields))
	copy(cp, fields)
	return Value{typ: st, inner: cp}, nil
}

// NewByteArray, NewI16Array, ... build ARRAY(prim) values directly from
// a native Go slice of the matching primitive type.
func NewByteArray(xs []uint8) Value   { return Value{typ: NewArrayType(ByteType), inner: append([]uint8{}, xs...)} }
func NewI16Array(xs []int16) Value    { return Value{typ: NewArrayType(I16Type), inner: append([]int16{}, xs...)} }
func NewI32Array(xs []int32) Value    { return Value{typ: NewArrayType(I32Type), inner: append([]int32{}, xs...)} }
func NewI64Array(xs []int64) Value    { return Value{typ: NewArrayType(I64Type), inner: append([]int64{}, xs...)} }
func NewU16Array(xs []uint16) Value   { return Value{typ: NewArrayType(U16Type), inner: append([]uint16{}, xs...)} }
func NewU32Array(xs []uint32) Value   { return Value{typ: NewArrayType(U32Type), inner: append([]uint32{}, xs...)} }
func NewU64Array(xs []uint64) Value   { return Value{typ: NewArrayType(U64Type), inner: append([]uint64{}, xs...)} }
func NewF32Array(xs []float32) Value  { return Value{typ: NewArrayType(F32Type), inner: append([]float32{}, xs...)} }
func NewF64Array(xs []float64) Value  { return Value{typ: NewArrayType(F64Type), inner: append([]float64{}, xs...)} }
func NewStringArray(xs []string) Value {
	return Value{typ: NewArrayType(StringType), inner: append([]string{}, xs...)}
}

// NewArray builds ARRAY(elemType) out of elems, validating that every
// element's Type exactly equals elemType. Use the typed NewXxxArray
// helpers above for arrays of primitives; this constructor is for
// arrays of STRUCT or ARRAY elements (and works for primitives too, at
// the cost of a per-element Type check).
func NewArray(elemType *Type, elems []Value) (Value, error) {
	for _, e := range elems {
		if !e.typ.Equals(elemType) {
			return Value{}, StatusMalformedType
		}
	}

	switch elemType.Tag() {
	case TagStruct, TagArray:
		cp := make([]Value, len(elems))
		copy(cp, elems)
		return Value{typ: NewArrayType(elemType), inner: cp}, nil
	default:
		return arrayFromScalars(elemType, elems)
	}
}

func arrayFromScalars(elemType *Type, elems []Value) (Value, error) {
	switch elemType.Tag() {
	case TagByte:
		xs := make([]uint8, len(elems))
		for i, e := range elems {
			xs[i] = e.inner.(uint8)
		}
		return NewByteArray(xs), nil
	case TagI16:
		xs := make([]int16, len(elems))
		for i, e := range elems {
			xs[i] = e.inner.(int16)
		}
		return NewI16Array(xs), nil
	case TagI32:
		xs := make([]int32, len(elems))
		for i, e := range elems {
			xs[i] = e.inner.(int32)
		}
		return NewI32Array(xs), nil
	case TagI64:
		xs := make([]int64, len(elems))
		for i, e := range elems {
			xs[i] = e.inner.(int64)
		}
		return NewI64Array(xs), nil
	case TagU16:
		xs := make([]uint16, len(elems))
		for i, e := range elems {
			xs[i] = e.inner.(uint16)
		}
		return NewU16Array(xs), nil
	case TagU32:
		xs := make([]uint32, len(elems))
		for i, e := range elems {
			xs[i] = e.inner.(uint32)
		}
		return NewU32Array(xs), nil
	case TagU64:
		xs := make([]uint64, len(elems))
		for i, e := range elems {
			xs[i] = e.inner.(uint64)
		}
		return NewU64Array(xs), nil
	case TagF32:
		xs := make([]float32, len(elems))
		for i, e := range elems {
			xs[i] = e.inner.(float32)
		}
		return NewF32Array(xs), nil
	case TagF64:
		xs := make([]float64, len(elems))
		for i, e := range elems {
			xs[i] = e.inner.(float64)
		}
		return NewF64Array(xs), nil
	case TagString:
		xs := make([]string, len(elems))
		for i, e := range elems {
			xs[i] = e.inner.(string)
		}
		return NewStringArray(xs), nil
	default:
		return Value{}, StatusMalformedType
	}
}

// Equals reports whether v and other are structurally equal: equal
// Types, and equal payloads (strings compared byte-for-byte, floats
// compared bitwise so that NaN == NaN under this relation).
func (v Value) Equals(other Value) bool {
	if !v.typ.Equals(other.typ) {
		return false
	}
	return innerEquals(v.typ, v.inner, other.inner)
}

func innerEquals(t *Type, a, b any) bool {
	switch t.Tag() {
	case TagF32:
		return f32Bits(a.(float32)) == f32Bits(b.(float32))
	case TagF64:
		return f64Bits(a.(float64)) == f64Bits(b.(float64))
	case TagStruct:
		af, bf := a.([]Value), b.([]Value)
		fields := t.Fields()
		for i := range af {
			if !innerEquals(fields[i], af[i].inner, bf[i].inner) {
				return false
			}
		}
		return true
	case TagArray:
		return arrayEquals(t, a, b)
	default:
		return a == b
	}
}

func arrayEquals(t *Type, a, b any) bool {
	elem := t.Elem()
	switch elem.Tag() {
	case TagStruct, TagArray:
		av, bv := a.([]Value), b.([]Value)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !innerEquals(elem, av[i].inner, bv[i].inner) {
				return false
			}
		}
		return true
	case TagByte:
		return bytesEqual(a.([]uint8), b.([]uint8))
	case TagString:
		as, bs := a.([]string), b.([]string)
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if as[i] != bs[i] {
				return false
			}
		}
		return true
	case TagF32:
		as, bs := a.([]float32), b.([]float32)
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if f32Bits(as[i]) != f32Bits(bs[i]) {
				return false
			}
		}
		return true
	case TagF64:
		as, bs := a.([]float64), b.([]float64)
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if f64Bits(as[i]) != f64Bits(bs[i]) {
				return false
			}
		}
		return true
	default:
		return genericNumericArrayEquals(elem.Tag(), a, b)
	}
}

func bytesEqual(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func genericNumericArrayEquals(tag Tag, a, b any) bool {
	switch tag {
	case TagI16:
		return i16SliceEqual(a.([]int16), b.([]int16))
	case TagI32:
		return i32SliceEqual(a.([]int32), b.([]int32))
	case TagI64:
		return i64SliceEqual(a.([]int64), b.([]int64))
	case TagU16:
		return u16SliceEqual(a.([]uint16), b.([]uint16))
	case TagU32:
		return u32SliceEqual(a.([]uint32), b.([]uint32))
	case TagU64:
		return u64SliceEqual(a.([]uint64), b.([]uint64))
	default:
		panic(fmt.Sprintf("wire: unreachable array element tag %v", tag))
	}
}

func i16SliceEqual(a, b []int16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func i32SliceEqual(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func i64SliceEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func u16SliceEqual(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func u32SliceEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func u64SliceEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
