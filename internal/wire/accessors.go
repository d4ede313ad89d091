package wire

import "math"

func f32Bits(f float32) uint32 { return math.Float32bits(f) }
func f64Bits(f float64) uint64 { return math.Float64bits(f) }

// The accessors below panic if called against a Value of the wrong
// Type, mirroring the union-field-access contract of the original C
// InnerValue: callers are expected to check Type()/Tag() first, exactly
// as they must check type_id before reading a chrpc_inner_value_t
// union field.

func (v Value) Byte() uint8     { return v.inner.(uint8) }
func (v Value) I16() int16      { return v.inner.(int16) }
func (v Value) I32() int32      { return v.inner.(int32) }
func (v Value) I64() int64      { return v.inner.(int64) }
func (v Value) U16() uint16     { return v.inner.(uint16) }
func (v Value) U32() uint32     { return v.inner.(uint32) }
func (v Value) U64() uint64     { return v.inner.(uint64) }
func (v Value) F32() float32    { return v.inner.(float32) }
func (v Value) F64() float64    { return v.inner.(float64) }
func (v Value) Str() string     { return v.inner.(string) }

// StructFields returns a STRUCT value's fields in declaration order.
func (v Value) StructFields() []Value { return v.inner.([]Value) }

// CompositeArray returns an ARRAY(STRUCT) or ARRAY(ARRAY) value's
// elements.
func (v Value) CompositeArray() []Value { return v.inner.([]Value) }

func (v Value) ByteArray() []uint8    { return v.inner.([]uint8) }
func (v Value) I16Array() []int16     { return v.inner.([]int16) }
func (v Value) I32Array() []int32     { return v.inner.([]int32) }
func (v Value) I64Array() []int64     { return v.inner.([]int64) }
func (v Value) U16Array() []uint16    { return v.inner.([]uint16) }
func (v Value) U32Array() []uint32    { return v.inner.([]uint32) }
func (v Value) U64Array() []uint64    { return v.inner.([]uint64) }
func (v Value) F32Array() []float32   { return v.inner.([]float32) }
func (v Value) F64Array() []float64   { return v.inner.([]float64) }
func (v Value) StringArray() []string { return v.inner.([]string) }
