package wire

import (
	"math"
	"testing"

	"github.com/go-test/deep"
)

func TestScalarRoundTrip(t *testing.T) {
	cases := []Value{
		NewByte(0xAB),
		NewI16(-1234),
		NewI32(-123456789),
		NewI64(-123456789012345),
		NewU16(0xBEEF),
		NewU32(0xDEADBEEF),
		NewU64(0xDEADBEEFCAFEF00D),
		NewF32(3.14159),
		NewF64(2.718281828),
		NewString("hello, chrpc"),
	}

	for _, v := range cases {
		buf := make([]byte, 256)
		n, err := ValueToBufferWithLength(v, buf)
		if err != nil {
			t.Fatalf("%v: %v", v.Type(), err)
		}

		parsed, m, err := ValueFromBufferWithLength(buf[:n])
		if err != nil {
			t.Fatalf("%v: %v", v.Type(), err)
		}
		if m != n {
			t.Fatalf("%v: consumed %d, wrote %d", v.Type(), m, n)
		}
		if !v.Equals(parsed) {
			t.Errorf("%v: round trip mismatch", v.Type())
		}
	}
}

func TestStructRoundTrip(t *testing.T) {
	inner, err := NewStruct([]Value{NewI32(7), NewString("nested")})
	if err != nil {
		t.Fatal(err)
	}
	outer, err := NewStruct([]Value{
		NewByte(1),
		inner,
		NewByteArray([]byte{1, 2, 3, 4}),
	})
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 256)
	n, err := ValueToBufferWithLength(outer, buf)
	if err != nil {
		t.Fatal(err)
	}

	parsed, _, err := ValueFromBufferWithLength(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	if !outer.Equals(parsed) {
		t.Error("round trip mismatch for nested struct")
	}
}

func TestArrayOfStringsRoundTrip(t *testing.T) {
	v := NewStringArray([]string{"alpha", "beta", "", "gamma"})

	buf := make([]byte, 256)
	n, err := ValueToBufferWithLength(v, buf)
	if err != nil {
		t.Fatal(err)
	}

	parsed, _, err := ValueFromBufferWithLength(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(v.StringArray(), parsed.StringArray()); diff != nil {
		t.Error(diff)
	}
}

func TestArrayOfCompositeRoundTrip(t *testing.T) {
	elemType, err := NewStructType([]*Type{I32Type, StringType})
	if err != nil {
		t.Fatal(err)
	}

	a, err := NewStruct([]Value{NewI32(1), NewString("a")})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewStruct([]Value{NewI32(2), NewString("b")})
	if err != nil {
		t.Fatal(err)
	}

	arr, err := NewArray(elemType, []Value{a, b})
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 256)
	n, err := ValueToBufferWithLength(arr, buf)
	if err != nil {
		t.Fatal(err)
	}

	parsed, _, err := ValueFromBufferWithLength(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	if !arr.Equals(parsed) {
		t.Error("round trip mismatch for ARRAY(STRUCT)")
	}
}

func TestFloatEqualityIsBitwise(t *testing.T) {
	nan1 := NewF64(math.NaN())
	nan2 := NewF64(math.NaN())
	// Two independently produced NaNs need not share a bit pattern; this
	// only asserts that a NaN equals itself under bitwise comparison.
	if !nan1.Equals(nan1) {
		t.Error("a NaN value must equal itself under bitwise comparison")
	}
	_ = nan2
}

func TestNewArrayRejectsMismatchedElementType(t *testing.T) {
	_, err := NewArray(I32Type, []Value{NewI32(1), NewString("oops")})
	if err != StatusMalformedType {
		t.Fatalf("expected StatusMalformedType, got %v", err)
	}
}

func TestSerializeIntoBufferTooSmall(t *testing.T) {
	v := NewString("this needs more than one byte")
	buf := make([]byte, 1)
	if _, err := v.SerializeInto(buf); err != StatusBufferTooSmall {
		t.Fatalf("expected StatusBufferTooSmall, got %v", err)
	}
}
